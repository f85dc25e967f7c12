package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// Entity provides generic document operations for any domain type.
//
// Key layout under the entity prefix:
//
//	<prefix><id>                          -> JSON document
//	<prefix>idx:<name>:<value>            -> id   (unique index)
//	<prefix>lkp:<name>:<value>:<id>       -> nil  (non-unique lookup)
//
// Lookup values may themselves contain ':' to build composite, ordered keys
// (for example "<user>:<inverted timestamp>"), and a scan for value v covers
// every key whose value starts with "v:".
type Entity[T any] struct {
	store   *Store
	prefix  string
	idOf    func(*T) string
	indexes []Index[T]
	lookups []Lookup[T]
}

// Index defines a unique secondary index on an entity.
type Index[T any] struct {
	name            string
	keyGen          func(*T) []string
	lookupTransform func(string) string
}

// Lookup defines a non-unique secondary index on an entity.
type Lookup[T any] struct {
	name   string
	keyGen func(*T) []string
}

// NewEntity creates a new Entity instance for type T. idOf extracts the
// primary key from a document.
func NewEntity[T any](s *Store, prefix string, idOf func(*T) string) *Entity[T] {
	return &Entity[T]{
		store:  s,
		prefix: prefix,
		idOf:   idOf,
	}
}

// WithIndex adds a unique secondary index to the entity.
func (e *Entity[T]) WithIndex(name string, keyGen func(*T) []string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{
		name:   name,
		keyGen: keyGen,
	})
	return e
}

// WithIndexTransform adds a unique secondary index with lookup transformation.
// The lookupTransform function is applied to search values before index lookup,
// enabling case-insensitive searches, normalization, etc.
func (e *Entity[T]) WithIndexTransform(name string, keyGen func(*T) []string, lookupTransform func(string) string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{
		name:            name,
		keyGen:          keyGen,
		lookupTransform: lookupTransform,
	})
	return e
}

// WithLookup adds a non-unique secondary index to the entity.
func (e *Entity[T]) WithLookup(name string, keyGen func(*T) []string) *Entity[T] {
	e.lookups = append(e.lookups, Lookup[T]{
		name:   name,
		keyGen: keyGen,
	})
	return e
}

func (e *Entity[T]) primaryKey(id string) []byte {
	return []byte(e.prefix + id)
}

func (e *Entity[T]) indexKey(name, value string) []byte {
	return []byte(e.prefix + "idx:" + name + ":" + value)
}

func (e *Entity[T]) lookupKey(name, value, id string) []byte {
	return []byte(e.prefix + "lkp:" + name + ":" + value + ":" + id)
}

func (e *Entity[T]) lookupPrefix(name, value string) []byte {
	return []byte(e.prefix + "lkp:" + name + ":" + value + ":")
}

// Create stores a new entity.
// Returns ErrAlreadyExists if the ID or any unique index value is taken.
func (e *Entity[T]) Create(ctx context.Context, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	id := e.idOf(entity)
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	return e.store.update(func(txn *badger.Txn) error {
		_, err := txn.Get(e.primaryKey(id))
		if err == nil {
			return ErrAlreadyExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("failed to check existing key: %w", err)
		}

		if err := e.checkIndexConflicts(txn, nil, entity); err != nil {
			return err
		}

		return e.writeInTxn(txn, id, data, nil, entity)
	})
}

// Get retrieves an entity by ID.
// Returns ErrNotFound if the entity does not exist.
func (e *Entity[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entity *T
	err := e.store.db.View(func(txn *badger.Txn) error {
		var err error
		entity, err = e.getInTxn(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// GetByIndex retrieves an entity by unique secondary index.
// If the index has a lookup transform, it will be applied to the value before lookup.
func (e *Entity[T]) GetByIndex(ctx context.Context, indexName, value string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	transformedValue := value
	for _, idx := range e.indexes {
		if idx.name == indexName && idx.lookupTransform != nil {
			transformedValue = idx.lookupTransform(value)
			break
		}
	}

	var entity *T
	err := e.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(e.indexKey(indexName, transformedValue))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}

		entity, err = e.getInTxn(txn, string(id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// Update replaces an existing entity.
// Returns ErrNotFound if the entity does not exist.
func (e *Entity[T]) Update(ctx context.Context, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	id := e.idOf(entity)
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	return e.store.update(func(txn *badger.Txn) error {
		old, err := e.getInTxn(txn, id)
		if err != nil {
			return err
		}

		if err := e.checkIndexConflicts(txn, old, entity); err != nil {
			return err
		}

		return e.writeInTxn(txn, id, data, old, entity)
	})
}

// ErrNoChange may be returned from a Mutate callback to abort the write
// without an error. Mutate then returns the unchanged document.
var ErrNoChange = errors.New("no change")

// Mutate performs an atomic read-modify-write of a single document.
// fn receives the current document and modifies it in place. The read and the
// write happen in one transaction, so concurrent mutations of the same
// document never lose updates. Returns the document as stored.
func (e *Entity[T]) Mutate(ctx context.Context, id string, fn func(*T) error) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var result *T
	err := e.store.update(func(txn *badger.Txn) error {
		old, err := e.getInTxn(txn, id)
		if err != nil {
			return err
		}
		current, err := e.getInTxn(txn, id)
		if err != nil {
			return err
		}

		if err := fn(current); err != nil {
			if errors.Is(err, ErrNoChange) {
				result = current
				return nil
			}
			return err
		}

		if e.idOf(current) != id {
			return fmt.Errorf("mutate %s: primary key changed", id)
		}

		if err := e.checkIndexConflicts(txn, old, current); err != nil {
			return err
		}

		data, err := json.Marshal(current)
		if err != nil {
			return fmt.Errorf("failed to marshal entity: %w", err)
		}

		if err := e.writeInTxn(txn, id, data, old, current); err != nil {
			return err
		}
		result = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete deletes an entity by ID.
// This operation is idempotent - it does not return an error if the entity does not exist.
func (e *Entity[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return e.store.update(func(txn *badger.Txn) error {
		entity, err := e.getInTxn(txn, id)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := e.deleteSecondaryKeys(txn, id, entity); err != nil {
			return err
		}

		if err := txn.Delete(e.primaryKey(id)); err != nil {
			return fmt.Errorf("failed to delete key: %w", err)
		}
		return nil
	})
}

// List returns an iterator over all entities.
func (e *Entity[T]) List(ctx context.Context) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		prefix := []byte(e.prefix)
		//nolint:errcheck // errors are delivered through yield
		e.store.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			opts.PrefetchValues = true

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				if ctx.Err() != nil {
					yield(nil, ctx.Err())
					return ctx.Err()
				}

				remainder := string(it.Item().Key()[len(prefix):])
				if strings.HasPrefix(remainder, "idx:") || strings.HasPrefix(remainder, "lkp:") {
					continue
				}

				var entity T
				err := it.Item().Value(func(val []byte) error {
					return json.Unmarshal(val, &entity)
				})
				if err != nil {
					yield(nil, err)
					return err
				}

				if !yield(&entity, nil) {
					return nil
				}
			}
			return nil
		})
	}
}

// ListByLookup iterates over entities whose lookup value starts with value.
// Iteration follows key order, so composite values with an inverted
// timestamp come out newest first.
func (e *Entity[T]) ListByLookup(ctx context.Context, lookupName, value string) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		prefix := e.lookupPrefix(lookupName, value)
		//nolint:errcheck // errors are delivered through yield
		e.store.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			opts.PrefetchValues = false

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				if ctx.Err() != nil {
					yield(nil, ctx.Err())
					return ctx.Err()
				}

				entity, err := e.getInTxn(txn, idFromLookupKey(it.Item().Key()))
				if errors.Is(err, ErrNotFound) {
					// Dangling lookup key; the document was removed.
					continue
				}
				if err != nil {
					yield(nil, err)
					return err
				}

				if !yield(entity, nil) {
					return nil
				}
			}
			return nil
		})
	}
}

// CountByLookup counts lookup keys for value without loading documents.
func (e *Entity[T]) CountByLookup(ctx context.Context, lookupName, value string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	prefix := e.lookupPrefix(lookupName, value)
	count := 0
	err := e.store.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// Collect drains an entity iterator into a slice.
func Collect[T any](seq iter.Seq2[*T, error]) ([]*T, error) {
	out := make([]*T, 0)
	for item, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func idFromLookupKey(key []byte) string {
	k := string(key)
	return k[strings.LastIndexByte(k, ':')+1:]
}

func (e *Entity[T]) getInTxn(txn *badger.Txn, id string) (*T, error) {
	item, err := txn.Get(e.primaryKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}

	var entity T
	err = item.Value(func(val []byte) error {
		if err := json.Unmarshal(val, &entity); err != nil {
			return fmt.Errorf("failed to unmarshal entity: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// checkIndexConflicts verifies that every unique index value of next is free
// or already owned by old.
func (e *Entity[T]) checkIndexConflicts(txn *badger.Txn, old, next *T) error {
	for _, idx := range e.indexes {
		owned := make(map[string]bool)
		if old != nil {
			for _, k := range idx.keyGen(old) {
				owned[k] = true
			}
		}

		for _, value := range idx.keyGen(next) {
			if owned[value] {
				continue
			}
			_, err := txn.Get(e.indexKey(idx.name, value))
			if err == nil {
				return fmt.Errorf("index %s conflict on key %s: %w", idx.name, value, ErrAlreadyExists)
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("failed to check index key: %w", err)
			}
		}
	}
	return nil
}

// writeInTxn stores the document and moves its secondary keys from old to next.
func (e *Entity[T]) writeInTxn(txn *badger.Txn, id string, data []byte, old, next *T) error {
	if old != nil {
		if err := e.deleteSecondaryKeys(txn, id, old); err != nil {
			return err
		}
	}

	if err := txn.Set(e.primaryKey(id), data); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}

	for _, idx := range e.indexes {
		for _, value := range idx.keyGen(next) {
			if err := txn.Set(e.indexKey(idx.name, value), []byte(id)); err != nil {
				return fmt.Errorf("failed to set index key: %w", err)
			}
		}
	}

	for _, lkp := range e.lookups {
		for _, value := range lkp.keyGen(next) {
			if err := txn.Set(e.lookupKey(lkp.name, value, id), []byte{}); err != nil {
				return fmt.Errorf("failed to set lookup key: %w", err)
			}
		}
	}
	return nil
}

func (e *Entity[T]) deleteSecondaryKeys(txn *badger.Txn, id string, entity *T) error {
	for _, idx := range e.indexes {
		for _, value := range idx.keyGen(entity) {
			if err := txn.Delete(e.indexKey(idx.name, value)); err != nil {
				return fmt.Errorf("failed to delete index key: %w", err)
			}
		}
	}
	for _, lkp := range e.lookups {
		for _, value := range lkp.keyGen(entity) {
			if err := txn.Delete(e.lookupKey(lkp.name, value, id)); err != nil {
				return fmt.Errorf("failed to delete lookup key: %w", err)
			}
		}
	}
	return nil
}
