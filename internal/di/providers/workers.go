package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/readkeepapp/readkeep-server/internal/config"
	"github.com/readkeepapp/readkeep-server/internal/logger"
	"github.com/readkeepapp/readkeep-server/internal/service"
	"github.com/readkeepapp/readkeep-server/internal/watcher"
)

// ImportWatcherHandle wraps the drop folder watcher with shutdown capability.
// Watcher is nil when no drop folder is configured.
type ImportWatcherHandle struct {
	*watcher.ImportWatcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *ImportWatcherHandle) Shutdown() error {
	if h.ImportWatcher == nil {
		return nil
	}
	h.cancel()
	return h.Stop()
}

// ProvideImportWatcher provides the CSV drop folder watcher.
func ProvideImportWatcher(i do.Injector) (*ImportWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Import.WatchPath == "" {
		log.Info("Import watcher disabled, no watch path configured")
		return &ImportWatcherHandle{}, nil
	}

	storeHandle := do.MustInvoke[*StoreHandle](i)
	importService := do.MustInvoke[*service.ImportService](i)

	w, err := watcher.New(importService, storeHandle.Store, log.Logger, watcher.Options{
		WatchPath: cfg.Import.WatchPath,
		OwnerID:   cfg.Import.OwnerID,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			log.Error("Import watcher error", "error", err)
		}
	}()

	log.Info("Import watcher started", "path", cfg.Import.WatchPath)

	return &ImportWatcherHandle{
		ImportWatcher: w,
		cancel:        cancel,
	}, nil
}

// SessionCleanupJob runs periodic session cleanup.
type SessionCleanupJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *SessionCleanupJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideSessionCleanupJob provides the periodic session cleanup job.
func ProvideSessionCleanupJob(i do.Injector) (*SessionCleanupJob, error) {
	sessionService := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	sweep := func() {
		count, err := sessionService.DeleteExpiredSessions(ctx)
		switch {
		case err != nil:
			log.Warn("Session cleanup failed", "error", err)
		case count > 0:
			log.Info("Session cleanup completed", "deleted", count)
		}
	}

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		sweep() // catch sessions that expired while the server was down

		for {
			select {
			case <-ticker.C:
				sweep()
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Session cleanup job started")

	return &SessionCleanupJob{cancel: cancel}, nil
}
