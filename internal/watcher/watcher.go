// Package watcher monitors a drop folder for CSV library exports and imports
// them automatically.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/readkeepapp/readkeep-server/internal/service"
	"github.com/readkeepapp/readkeep-server/internal/store"
)

// defaultSettleDelay is how long a file must stay unchanged before it is
// considered fully written. Exports are copied into the drop folder, so a
// write event does not mean the file is complete.
const defaultSettleDelay = 2 * time.Second

// importedSuffix marks files that have already been processed. Renaming keeps
// the original export around for inspection without re-importing it.
const importedSuffix = ".imported"

// Options configures the import watcher.
type Options struct {
	// WatchPath is the drop folder to monitor.
	WatchPath string
	// OwnerID attributes imports to a user. Empty means the root user,
	// resolved at import time.
	OwnerID string
	// SettleDelay overrides the default write-settle delay.
	SettleDelay time.Duration
}

// ImportWatcher watches a drop folder and feeds settled CSV files into the
// import service.
type ImportWatcher struct {
	importer *service.ImportService
	store    *store.Store
	logger   *slog.Logger
	opts     Options

	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*pendingFile
	done    chan struct{}
}

// pendingFile tracks a file that may still be changing.
type pendingFile struct {
	size    int64
	modTime time.Time
	timer   *time.Timer
}

// New creates an import watcher for the given drop folder.
func New(importer *service.ImportService, s *store.Store, logger *slog.Logger, opts Options) (*ImportWatcher, error) {
	if opts.WatchPath == "" {
		return nil, fmt.Errorf("watch path is required")
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = defaultSettleDelay
	}

	if err := os.MkdirAll(opts.WatchPath, 0o750); err != nil {
		return nil, fmt.Errorf("create watch path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(opts.WatchPath); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", opts.WatchPath, err)
	}

	return &ImportWatcher{
		importer: importer,
		store:    s,
		logger:   logger,
		opts:     opts,
		watcher:  fsw,
		pending:  make(map[string]*pendingFile),
		done:     make(chan struct{}),
	}, nil
}

// Run sweeps the folder for existing exports, then blocks processing events
// until the context is cancelled.
func (w *ImportWatcher) Run(ctx context.Context) error {
	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", "error", err)
		}
	}
}

// Stop releases the watcher and cancels pending timers.
func (w *ImportWatcher) Stop() error {
	close(w.done)

	w.mu.Lock()
	for _, p := range w.pending {
		p.timer.Stop()
	}
	clear(w.pending)
	w.mu.Unlock()

	return w.watcher.Close()
}

// sweep imports any exports already sitting in the drop folder.
func (w *ImportWatcher) sweep(ctx context.Context) {
	entries, err := os.ReadDir(w.opts.WatchPath)
	if err != nil {
		w.logger.Warn("Failed to read watch path", "path", w.opts.WatchPath, "error", err)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.opts.WatchPath, entry.Name())
		if !isCSV(path) {
			continue
		}
		w.importFile(ctx, path)
	}
}

func (w *ImportWatcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	path := event.Name
	if !isCSV(path) {
		return
	}

	if event.Op&fsnotify.Remove != 0 {
		w.cancelPending(path)
		return
	}

	if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
		w.startSettling(ctx, path)
	}
}

// startSettling waits for the file to stop changing before importing it.
func (w *ImportWatcher) startSettling(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if p, exists := w.pending[path]; exists {
		p.timer.Stop()
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		delete(w.pending, path)
		return
	}

	p := &pendingFile{
		size:    info.Size(),
		modTime: info.ModTime(),
	}
	p.timer = time.AfterFunc(w.opts.SettleDelay, func() {
		w.checkSettled(ctx, path)
	})
	w.pending[path] = p
}

func (w *ImportWatcher) checkSettled(ctx context.Context, path string) {
	w.mu.Lock()
	p, exists := w.pending[path]
	if !exists {
		w.mu.Unlock()
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		delete(w.pending, path)
		w.mu.Unlock()
		return
	}

	if info.Size() != p.size || !info.ModTime().Equal(p.modTime) {
		// Still being written, restart the timer.
		p.size = info.Size()
		p.modTime = info.ModTime()
		p.timer = time.AfterFunc(w.opts.SettleDelay, func() {
			w.checkSettled(ctx, path)
		})
		w.mu.Unlock()
		return
	}

	delete(w.pending, path)
	w.mu.Unlock()

	w.importFile(ctx, path)
}

func (w *ImportWatcher) cancelPending(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p, exists := w.pending[path]; exists {
		p.timer.Stop()
		delete(w.pending, path)
	}
}

// importFile runs one export through the import service and renames it so it
// is never imported twice.
func (w *ImportWatcher) importFile(ctx context.Context, path string) {
	ownerID, err := w.resolveOwner(ctx)
	if err != nil {
		w.logger.Warn("Skipping import, no owner available", "path", path, "error", err)
		return
	}

	f, err := os.Open(path) //#nosec G304 -- path comes from the configured drop folder
	if err != nil {
		w.logger.Warn("Failed to open export", "path", path, "error", err)
		return
	}

	result, err := w.importer.ImportCSV(ctx, ownerID, f)
	_ = f.Close()
	if err != nil {
		w.logger.Error("Import failed", "path", path, "error", err)
		return
	}

	if err := os.Rename(path, path+importedSuffix); err != nil {
		w.logger.Warn("Failed to mark export as imported", "path", path, "error", err)
	}

	w.logger.Info("Drop folder import finished",
		"path", path,
		"imported", result.Imported,
		"skipped", result.Skipped,
	)
}

// resolveOwner returns the configured owner, or the root user when none is
// configured.
func (w *ImportWatcher) resolveOwner(ctx context.Context) (string, error) {
	if w.opts.OwnerID != "" {
		return w.opts.OwnerID, nil
	}

	for user, err := range w.store.Users.List(ctx) {
		if err != nil {
			return "", fmt.Errorf("list users: %w", err)
		}
		if user.IsRoot {
			return user.ID, nil
		}
	}
	return "", fmt.Errorf("no root user exists yet")
}

// isCSV reports whether the path looks like an unprocessed CSV export.
func isCSV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}
