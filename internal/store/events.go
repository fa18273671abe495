package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/readkeepapp/readkeep-server/internal/domain"
)

const (
	readingEventPrefix    = "revt:"
	eventByUserPrefix     = "revt:idx:user:"
	eventByUserBookPrefix = "revt:idx:userbook:"
)

// ErrEventNotFound is returned when a reading event does not exist.
var ErrEventNotFound = ErrNotFound.WithMessage("reading event not found")

// CreateReadingEvent stores an event and its indexes atomically.
// Events are immutable - no Update method exists.
func (s *Store) CreateReadingEvent(ctx context.Context, event *domain.ReadingEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return writeEvent(txn, event)
	})
}

// writeEvent sets an event's primary key and indexes inside a transaction.
func writeEvent(txn *badger.Txn, event *domain.ReadingEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := txn.Set([]byte(readingEventPrefix+event.ID), data); err != nil {
		return fmt.Errorf("set event: %w", err)
	}

	// Index: by user, keyed on day so scans come out chronologically.
	userIdx := eventByUserPrefix + event.UserID + ":" + event.DayKey() + ":" + event.ID
	if err := txn.Set([]byte(userIdx), []byte(event.ID)); err != nil {
		return fmt.Errorf("set user index: %w", err)
	}

	// Index: by user+book
	userBookIdx := eventByUserBookPrefix + event.UserID + ":" + event.BookID + ":" + event.ID
	if err := txn.Set([]byte(userBookIdx), []byte(event.ID)); err != nil {
		return fmt.Errorf("set user-book index: %w", err)
	}

	return nil
}

// GetReadingEvent retrieves an event by ID.
func (s *Store) GetReadingEvent(ctx context.Context, id string) (*domain.ReadingEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var event domain.ReadingEvent
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(readingEventPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrEventNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &event)
		})
	})

	if err != nil {
		return nil, err
	}
	return &event, nil
}

// GetEventsForUser retrieves all events for a user, oldest day first.
func (s *Store) GetEventsForUser(ctx context.Context, userID string) ([]*domain.ReadingEvent, error) {
	return s.getEventsByPrefix(ctx, eventByUserPrefix+userID+":")
}

// GetEventsForUserBook retrieves all events for a user+book combination.
func (s *Store) GetEventsForUserBook(ctx context.Context, userID, bookID string) ([]*domain.ReadingEvent, error) {
	return s.getEventsByPrefix(ctx, eventByUserBookPrefix+userID+":"+bookID+":")
}

// GetReadingDaysForUser returns the distinct calendar days a user has read
// on, oldest first. This is the input set for the streak and XP engines.
func (s *Store) GetReadingDaysForUser(ctx context.Context, userID string) ([]time.Time, error) {
	events, err := s.GetEventsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var days []time.Time
	seen := make(map[string]struct{}, len(events))
	for _, e := range events {
		key := e.DayKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		days = append(days, e.Day)
	}
	return days, nil
}

// getEventsByPrefix retrieves events matching an index prefix.
// Uses a single transaction to collect IDs and fetch all events (no N+1).
func (s *Store) getEventsByPrefix(ctx context.Context, prefix string) ([]*domain.ReadingEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var events []*domain.ReadingEvent

	err := s.db.View(func(txn *badger.Txn) error {
		// First pass: collect event IDs from index
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		var eventIDs []string
		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				eventIDs = append(eventIDs, string(val))
				return nil
			})
			if err != nil {
				return err
			}
		}

		// Second pass: batch fetch all events in same transaction
		events = make([]*domain.ReadingEvent, 0, len(eventIDs))
		for _, id := range eventIDs {
			item, err := txn.Get([]byte(readingEventPrefix + id))
			if err != nil {
				continue // Skip missing events
			}

			var event domain.ReadingEvent
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &event)
			}); err != nil {
				continue // Skip corrupt events
			}
			events = append(events, &event)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return events, nil
}
