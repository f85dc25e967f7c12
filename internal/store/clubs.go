package store

import "github.com/njohnson2897/bookmarkd-sub000/internal/domain"

func (s *Store) initClubs() {
	s.Clubs = NewEntity[domain.Club](s, prefixClub, func(c *domain.Club) string { return c.ID })
}
