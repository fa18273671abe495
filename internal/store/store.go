// Package store persists domain entities in a Badger key-value database.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/readkeepapp/readkeep-server/internal/domain"
)

// SearchIndexer receives book changes so the search index stays current.
// Declared here rather than importing the search package, which itself
// depends on the store.
type SearchIndexer interface {
	IndexBook(ctx context.Context, book *domain.BookRecord) error
	DeleteBook(ctx context.Context, bookID string) error
}

// NoopSearchIndexer discards index updates. Tests use it when search
// behavior is not under test.
type NoopSearchIndexer struct{}

func (NoopSearchIndexer) IndexBook(context.Context, *domain.BookRecord) error { return nil }

func (NoopSearchIndexer) DeleteBook(context.Context, string) error { return nil }

// Store is the Badger-backed persistence layer. All entities live in one
// database, partitioned by key prefix.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// Wired in via SetSearchIndexer once the search service exists.
	searchIndexer SearchIndexer

	Users    *Entity[domain.User]
	Sessions *Entity[domain.Session]
	Books    *Entity[domain.BookRecord]
}

// New opens the Badger database at path and prepares the entity handles.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Badger's own logger is too chatty
	opts.SyncWrites = true       // reading events are precious, fsync them
	opts.CompactL0OnClose = true // keeps the next startup fast

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	store := &Store{db: db, logger: logger}
	store.initUsers()
	store.initSessions()
	store.initBooks()

	if logger != nil {
		logger.Info("Badger database opened", "path", path)
	}

	return store, nil
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database")
	}
	return s.db.Close()
}

// SetSearchIndexer attaches the search indexer. Called after construction
// because the search service needs the store to exist first.
func (s *Store) SetSearchIndexer(indexer SearchIndexer) {
	s.searchIndexer = indexer
}

// initUsers sets up the Users entity. The email index is case-insensitive,
// so lookups normalize the same way writes do.
func (s *Store) initUsers() {
	s.Users = NewEntity[domain.User](s, "user:").
		WithIndexTransform("email",
			func(u *domain.User) []string {
				return []string{normalizeEmail(u.Email)}
			},
			normalizeEmail,
		)
}

// initSessions initializes the Sessions entity on the store.
// Indexed by refresh token hash so logout and refresh can find the session
// without knowing its ID.
func (s *Store) initSessions() {
	s.Sessions = NewEntity[domain.Session](s, "sess:").
		WithIndex("refresh", func(sess *domain.Session) []string {
			return []string{sess.RefreshTokenHash}
		})
}

// initBooks initializes the Books entity on the store. Owner filtering goes
// through ListBooksForOwner rather than an index: index values must be unique
// per entity and many books share an owner.
func (s *Store) initBooks() {
	s.Books = NewEntity[domain.BookRecord](s, "book:")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
