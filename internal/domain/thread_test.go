package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThread_Replies(t *testing.T) {
	th := &Thread{}
	th.InitTimestamps()
	created := th.UpdatedAt

	time.Sleep(time.Millisecond)
	th.AppendReply(ThreadReply{ID: "r1", Text: "one"})
	th.AppendReply(ThreadReply{ID: "r2", Text: "two"})
	assert.Equal(t, 2, th.ReplyCount)
	assert.True(t, th.UpdatedAt.After(created))

	require.NotNil(t, th.FindReply("r2"))
	assert.Nil(t, th.FindReply("r3"))

	assert.True(t, th.RemoveReply("r1"))
	assert.False(t, th.RemoveReply("r1"))
	assert.Equal(t, 1, th.ReplyCount)
}

func TestThread_ReplyCountFloor(t *testing.T) {
	th := &Thread{Replies: []ThreadReply{{ID: "r1"}}, ReplyCount: 0}

	assert.True(t, th.RemoveReply("r1"))
	assert.Zero(t, th.ReplyCount, "the counter never goes negative")
}

func TestThreadType_Valid(t *testing.T) {
	assert.True(t, ThreadSpoilerFree.Valid())
	assert.True(t, ThreadBookSelection.Valid())
	assert.False(t, ThreadType("rant").Valid())
}
