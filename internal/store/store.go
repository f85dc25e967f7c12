// Package store provides the badger-backed document store for bookmarkd.
package store

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/njohnson2897/bookmarkd-sub000/internal/domain"
)

// maxConflictRetries bounds how often a write transaction is replayed after
// losing an optimistic-concurrency conflict to a concurrent writer.
const maxConflictRetries = 8

// Store wraps a Badger database instance and exposes one typed repository
// per entity.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	Users         *Entity[domain.User]
	Books         *Entity[domain.Book]
	Clubs         *Entity[domain.Club]
	Reviews       *Entity[domain.Review]
	Likes         *Entity[domain.Like]
	Comments      *Entity[domain.Comment]
	Follows       *Entity[domain.Follow]
	Threads       *Entity[domain.Thread]
	Notifications *Entity[domain.Notification]
	Contacts      *Entity[domain.Contact]
	JoinRequests  *Entity[domain.JoinRequest]
	Invitations   *Entity[domain.Invitation]
}

// New opens (or creates) the database at path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	s := &Store{
		db:     db,
		logger: logger,
	}

	s.initUsers()
	s.initBooks()
	s.initClubs()
	s.initReviews()
	s.initSocial()
	s.initThreads()
	s.initNotifications()
	s.initJoinWorkflow()

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return s, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// Ping performs a trivial read to verify the database is usable.
func (s *Store) Ping() error {
	return s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte("__ping__"))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// update runs fn in a read-write transaction, replaying it when badger
// reports a conflict with a concurrent transaction.
func (s *Store) update(fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := range maxConflictRetries {
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		if s.logger != nil {
			s.logger.Debug("transaction conflict, retrying", "attempt", attempt+1)
		}
	}
	return fmt.Errorf("transaction retries exhausted: %w", err)
}
