package domain

import (
	"slices"
	"time"
)

// ThreadType classifies a discussion thread.
type ThreadType string

const (
	ThreadGeneral       ThreadType = "general"
	ThreadChapter       ThreadType = "chapter"
	ThreadSpoilerFree   ThreadType = "spoiler-free"
	ThreadSpoiler       ThreadType = "spoiler"
	ThreadQA            ThreadType = "qa"
	ThreadBookSelection ThreadType = "book-selection"
)

// Valid reports whether t is a known thread type.
func (t ThreadType) Valid() bool {
	switch t {
	case ThreadGeneral, ThreadChapter, ThreadSpoilerFree, ThreadSpoiler, ThreadQA, ThreadBookSelection:
		return true
	default:
		return false
	}
}

// ThreadReply is a reply embedded in its thread.
type ThreadReply struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Thread is a discussion post scoped to a club and the book that was current
// when it was created. The book binding never changes.
//
// ReplyCount mirrors len(Replies). Only AppendReply and RemoveReply touch
// either field.
type Thread struct {
	Base
	ClubID       string        `json:"club_id"`
	BookID       string        `json:"book_id"`
	BookGoogleID string        `json:"book_google_id"`
	AuthorID     string        `json:"author_id"`
	Title        string        `json:"title"`
	Content      string        `json:"content"`
	Type         ThreadType    `json:"thread_type"`
	ChapterRange string        `json:"chapter_range,omitempty"`
	IsPinned     bool          `json:"is_pinned"`
	IsLocked     bool          `json:"is_locked"`
	Replies      []ThreadReply `json:"replies"`
	ReplyCount   int           `json:"reply_count"`
}

// AppendReply adds a reply and keeps ReplyCount in step.
func (t *Thread) AppendReply(reply ThreadReply) {
	t.Replies = append(t.Replies, reply)
	t.ReplyCount = len(t.Replies)
	t.Touch()
}

// FindReply returns the reply with replyID, or nil.
func (t *Thread) FindReply(replyID string) *ThreadReply {
	i := slices.IndexFunc(t.Replies, func(r ThreadReply) bool { return r.ID == replyID })
	if i < 0 {
		return nil
	}
	return &t.Replies[i]
}

// RemoveReply deletes the reply with replyID. The counter never drops below zero.
// Returns false if no such reply exists.
func (t *Thread) RemoveReply(replyID string) bool {
	before := len(t.Replies)
	t.Replies = slices.DeleteFunc(t.Replies, func(r ThreadReply) bool { return r.ID == replyID })
	if len(t.Replies) == before {
		return false
	}
	t.ReplyCount = max(t.ReplyCount-1, 0)
	t.Touch()
	return true
}
