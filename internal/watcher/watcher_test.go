package watcher

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readkeepapp/readkeep-server/internal/service"
	"github.com/readkeepapp/readkeep-server/internal/store"
)

const dropExport = `Title,Author,Genre
Dune,Frank Herbert,Science Fiction
The Dispossessed,Ursula K. Le Guin,Science Fiction
`

func newTestWatcher(t *testing.T, dropDir string) (*ImportWatcher, *store.Store) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := store.New(t.TempDir(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	importer := service.NewImportService(s, logger)

	w, err := New(importer, s, logger, Options{
		WatchPath:   dropDir,
		OwnerID:     "user-1",
		SettleDelay: 50 * time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	return w, s
}

// waitForBooks polls until the owner's library reaches the expected size.
func waitForBooks(t *testing.T, s *store.Store, ownerID string, want int) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		books, err := s.ListBooksForOwner(context.Background(), ownerID)
		require.NoError(t, err)
		if len(books) >= want {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d books", want)
}

func TestWatcherImportsDroppedExport(t *testing.T) {
	dropDir := t.TempDir()
	w, s := newTestWatcher(t, dropDir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	exportPath := filepath.Join(dropDir, "library.csv")
	require.NoError(t, os.WriteFile(exportPath, []byte(dropExport), 0o600))

	waitForBooks(t, s, "user-1", 2)

	// The export is renamed so it cannot be imported twice.
	assert.Eventually(t, func() bool {
		_, err := os.Stat(exportPath + importedSuffix)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatcherSweepsExistingExports(t *testing.T) {
	dropDir := t.TempDir()

	// File is already in the folder before the watcher starts.
	require.NoError(t, os.WriteFile(filepath.Join(dropDir, "old.csv"), []byte(dropExport), 0o600))

	w, s := newTestWatcher(t, dropDir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	waitForBooks(t, s, "user-1", 2)
}

func TestWatcherIgnoresNonCSV(t *testing.T) {
	dropDir := t.TempDir()
	w, s := newTestWatcher(t, dropDir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(dropDir, "notes.txt"), []byte("not an export"), 0o600))

	time.Sleep(200 * time.Millisecond)
	books, err := s.ListBooksForOwner(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, books)
}
