package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// Entity provides generic CRUD over one key prefix. Secondary indexes map a
// derived key to exactly one entity ID, so an index value must be unique
// across entities of the type.
type Entity[T any] struct {
	store   *Store
	prefix  string
	indexes []index[T]
}

type index[T any] struct {
	name      string
	keysOf    func(*T) []string
	canonical func(string) string // applied to lookup values, nil for exact match
}

// NewEntity creates an Entity for type T under the given key prefix.
func NewEntity[T any](s *Store, prefix string) *Entity[T] {
	return &Entity[T]{store: s, prefix: prefix}
}

// WithIndex adds a secondary index whose keys come from keysOf.
func (e *Entity[T]) WithIndex(name string, keysOf func(*T) []string) *Entity[T] {
	e.indexes = append(e.indexes, index[T]{name: name, keysOf: keysOf})
	return e
}

// WithIndexTransform adds a secondary index that canonicalizes lookup values
// before matching, e.g. lowercasing for case-insensitive email lookup. keysOf
// must produce already-canonical keys.
func (e *Entity[T]) WithIndexTransform(name string, keysOf func(*T) []string, canonical func(string) string) *Entity[T] {
	e.indexes = append(e.indexes, index[T]{name: name, keysOf: keysOf, canonical: canonical})
	return e
}

func (e *Entity[T]) dataKey(id string) []byte {
	return []byte(e.prefix + id)
}

func (e *Entity[T]) indexKey(name, value string) []byte {
	return []byte(e.prefix + "idx:" + name + ":" + value)
}

func (e *Entity[T]) decodeItem(item *badger.Item, into *T) error {
	return item.Value(func(val []byte) error {
		if err := json.Unmarshal(val, into); err != nil {
			return fmt.Errorf("failed to unmarshal entity: %w", err)
		}
		return nil
	})
}

// assertIndexesFree fails with ErrAlreadyExists when any index key the
// entity wants is already taken. Keys listed in held are exempt.
func (e *Entity[T]) assertIndexesFree(txn *badger.Txn, entity *T, held map[string]bool) error {
	for _, idx := range e.indexes {
		for _, value := range idx.keysOf(entity) {
			if held[idx.name+"\x00"+value] {
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

func (e *Entity[T]) writeIndexes(txn *badger.Txn, entity *T, id string) error {
	for _, idx := range e.indexes {
		for _, value := range idx.keysOf(entity) {
			if err := txn.Set(e.indexKey(idx.name, value), []byte(id)); err != nil {
				return fmt.Errorf("failed to set index key: %w", err)
			}
		}
	}
	return nil
}

func (e *Entity[T]) dropIndexes(txn *badger.Txn, entity *T) error {
	for _, idx := range e.indexes {
		for _, value := range idx.keysOf(entity) {
			if err := txn.Delete(e.indexKey(idx.name, value)); err != nil {
				return fmt.Errorf("failed to delete index key: %w", err)
			}
		}
	}
	return nil
}

// Create stores a new entity under the given ID. Fails with ErrAlreadyExists
// when the ID or any of its index keys is taken.
func (e *Entity[T]) Create(ctx context.Context, id string, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	return e.store.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(e.dataKey(id))
		if err == nil {
			return ErrAlreadyExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("failed to check existing key: %w", err)
		}

		if err := e.assertIndexesFree(txn, entity, nil); err != nil {
			return err
		}
		if err := txn.Set(e.dataKey(id), data); err != nil {
			return fmt.Errorf("failed to set key: %w", err)
		}
		return e.writeIndexes(txn, entity, id)
	})
}

// Get loads an entity by ID, or ErrNotFound.
func (e *Entity[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entity T
	err := e.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(e.dataKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get key: %w", err)
		}
		return e.decodeItem(item, &entity)
	})
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// GetByIndex loads an entity through a secondary index. The index's
// canonicalizer, if any, is applied to the lookup value first.
func (e *Entity[T]) GetByIndex(ctx context.Context, indexName, value string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, idx := range e.indexes {
		if idx.name == indexName && idx.canonical != nil {
			value = idx.canonical(value)
			break
		}
	}

	var id string
	err := e.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(e.indexKey(indexName, value))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return e.Get(ctx, id)
}

// Update replaces an existing entity, moving its index keys as needed.
// Fails with ErrNotFound when the ID is unknown, and with ErrAlreadyExists
// when a new index key collides with another entity.
func (e *Entity[T]) Update(ctx context.Context, id string, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	return e.store.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(e.dataKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get existing key: %w", err)
		}

		var previous T
		if err := e.decodeItem(item, &previous); err != nil {
			return err
		}

		// Index keys the previous version held are free to reclaim.
		held := make(map[string]bool)
		for _, idx := range e.indexes {
			for _, value := range idx.keysOf(&previous) {
				held[idx.name+"\x00"+value] = true
			}
		}

		if err := e.assertIndexesFree(txn, entity, held); err != nil {
			return err
		}
		if err := e.dropIndexes(txn, &previous); err != nil {
			return err
		}
		if err := txn.Set(e.dataKey(id), data); err != nil {
			return fmt.Errorf("failed to set key: %w", err)
		}
		return e.writeIndexes(txn, entity, id)
	})
}

// Delete removes an entity and its index keys. Deleting an unknown ID is a
// no-op.
func (e *Entity[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return e.store.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(e.dataKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get key: %w", err)
		}

		var entity T
		if err := e.decodeItem(item, &entity); err != nil {
			return err
		}
		if err := e.dropIndexes(txn, &entity); err != nil {
			return err
		}
		if err := txn.Delete(e.dataKey(id)); err != nil {
			return fmt.Errorf("failed to delete key: %w", err)
		}
		return nil
	})
}

// List iterates all entities under the prefix in key order.
func (e *Entity[T]) List(ctx context.Context) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		//nolint:errcheck // iteration errors reach the consumer through yield
		e.store.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte(e.prefix)
			opts.PrefetchValues = true

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek([]byte(e.prefix)); it.ValidForPrefix([]byte(e.prefix)); it.Next() {
				if err := ctx.Err(); err != nil {
					yield(nil, err)
					return err
				}

				// Index keys live under the same prefix.
				rest := strings.TrimPrefix(string(it.Item().Key()), e.prefix)
				if strings.HasPrefix(rest, "idx:") {
					continue
				}

				var entity T
				if err := e.decodeItem(it.Item(), &entity); err != nil {
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
