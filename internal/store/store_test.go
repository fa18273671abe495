package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readkeepapp/readkeep-server/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestUsersCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := &domain.User{Email: "reader@example.com", DisplayName: "Reader"}
	user.ID = "user-1"
	user.InitTimestamps()

	require.NoError(t, s.Users.Create(ctx, user.ID, user))

	// Duplicate ID rejected.
	err := s.Users.Create(ctx, user.ID, user)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	got, err := s.Users.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", got.Email)

	// Email index is case-insensitive.
	byEmail, err := s.Users.GetByIndex(ctx, "email", "Reader@Example.COM")
	require.NoError(t, err)
	assert.Equal(t, "user-1", byEmail.ID)

	// Second user with the same email collides on the index.
	dup := &domain.User{Email: "READER@example.com"}
	dup.ID = "user-2"
	err = s.Users.Create(ctx, dup.ID, dup)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, err = s.Users.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookCRUDAndOwnerListing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mk := func(id, owner, title string, status domain.ReadingStatus) *domain.BookRecord {
		b := &domain.BookRecord{OwnerID: owner, Title: title, Author: "A", Genre: "SF", Status: status}
		b.ID = id
		b.InitTimestamps()
		require.NoError(t, s.CreateBook(ctx, b))
		return b
	}

	mk("book-1", "user-1", "Backlog Book", domain.StatusToBeRead())
	mk("book-2", "user-1", "Current Book", domain.StatusReading())
	mk("book-3", "user-1", "Old Finish", domain.StatusYear(2022))
	mk("book-4", "user-2", "Someone Else", domain.StatusReading())

	books, err := s.ListBooksForOwner(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, books, 3)

	// Most active status first: Reading, then years, then TBR.
	assert.Equal(t, "book-2", books[0].ID)
	assert.Equal(t, "book-3", books[1].ID)
	assert.Equal(t, "book-1", books[2].ID)

	// Soft-deleted books are filtered out.
	books[0].MarkDeleted()
	require.NoError(t, s.UpdateBook(ctx, books[0]))
	books, err = s.ListBooksForOwner(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, books, 2)

	require.NoError(t, s.DeleteBook(ctx, "book-1"))
	_, err = s.Books.Get(ctx, "book-1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Delete is idempotent.
	assert.NoError(t, s.DeleteBook(ctx, "book-1"))
}

func TestSaveBookWithEvents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	book := &domain.BookRecord{OwnerID: "user-1", Title: "T", Author: "A", Genre: "SF", Status: domain.StatusToBeRead()}
	book.ID = "book-1"
	book.InitTimestamps()
	require.NoError(t, s.CreateBook(ctx, book))

	now := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	updated, events := book.StartReading(now)
	for i := range events {
		events[i].ID = "revt-1"
	}

	require.NoError(t, s.SaveBookWithEvents(ctx, &updated, events))

	got, err := s.Books.Get(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReading(), got.Status)

	stored, err := s.GetEventsForUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "book-1", stored[0].BookID)

	// Saving a book that was never created fails without writing events.
	ghost := &domain.BookRecord{OwnerID: "user-1"}
	ghost.ID = "book-ghost"
	ghostEvent := domain.NewReadingEvent("user-1", "book-ghost", now)
	ghostEvent.ID = "revt-ghost"
	err = s.SaveBookWithEvents(ctx, ghost, []domain.ReadingEvent{ghostEvent})
	assert.ErrorIs(t, err, ErrBookNotFound)

	stored, err = s.GetEventsForUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestReadingDaysForUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	days := []time.Time{
		time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), // duplicate day, different book
	}
	for i, d := range days {
		event := domain.NewReadingEvent("user-1", "book-1", d)
		event.ID = "revt-" + string(rune('a'+i))
		require.NoError(t, s.CreateReadingEvent(ctx, &event))
	}

	got, err := s.GetReadingDaysForUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// User index is keyed by day, so days come back sorted.
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), got[0])
	assert.Equal(t, time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC), got[1])

	other, err := s.GetReadingDaysForUser(ctx, "user-2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSessionRefreshIndex(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sess := &domain.Session{
		ID:               "sess-1",
		UserID:           "user-1",
		RefreshTokenHash: "hash-abc",
		ExpiresAt:        time.Now().Add(time.Hour),
	}
	require.NoError(t, s.Sessions.Create(ctx, sess.ID, sess))

	got, err := s.Sessions.GetByIndex(ctx, "refresh", "hash-abc")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", got.ID)

	require.NoError(t, s.Sessions.Delete(ctx, "sess-1"))
	_, err = s.Sessions.GetByIndex(ctx, "refresh", "hash-abc")
	assert.ErrorIs(t, err, ErrNotFound)
}
