package store

import (
	"context"

	"github.com/njohnson2897/bookmarkd-sub000/internal/domain"
)

// ThreadLookupClub lists threads by club.
const ThreadLookupClub = "club"

func (s *Store) initThreads() {
	s.Threads = NewEntity[domain.Thread](s, prefixThread, func(t *domain.Thread) string { return t.ID }).
		WithLookup(ThreadLookupClub, func(t *domain.Thread) []string {
			return []string{t.ClubID}
		})
}

// ThreadsForClub returns every thread in clubID in key order.
func (s *Store) ThreadsForClub(ctx context.Context, clubID string) ([]*domain.Thread, error) {
	return Collect(s.Threads.ListByLookup(ctx, ThreadLookupClub, clubID))
}
