package worker

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-risk/pkg/domain/model"
	"github.com/secmon-lab/grc-risk/pkg/utils/logging"
)

// DirectorySource loads the people and contexts stubs are resolved against
type DirectorySource interface {
	Load(ctx context.Context) ([]*model.Person, []*model.Context, error)
}

// DirectorySeeder stores a loaded directory
type DirectorySeeder interface {
	SeedDirectory(ctx context.Context, people []*model.Person, contexts []*model.Context) error
}

// DirectoryRefreshWorker reloads the directory from its source at a fixed
// interval. A failed load keeps the previously stored entries.
type DirectoryRefreshWorker struct {
	source   DirectorySource
	seeder   DirectorySeeder
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewDirectoryRefreshWorker(source DirectorySource, seeder DirectorySeeder, interval time.Duration) *DirectoryRefreshWorker {
	return &DirectoryRefreshWorker{
		source:   source,
		seeder:   seeder,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the initial load and the refresh loop in a goroutine
func (w *DirectoryRefreshWorker) Start(ctx context.Context) error {
	if w.interval <= 0 {
		return goerr.New("refresh interval must be positive", goerr.V("interval", w.interval))
	}

	logging.Default().Info("directory refresh worker starting",
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *DirectoryRefreshWorker) Stop() {
	logging.Default().Info("directory refresh worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("directory refresh worker stopped")
}

func (w *DirectoryRefreshWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	if err := w.Refresh(ctx); err != nil {
		logging.Default().Error("initial directory refresh failed (will retry next interval)",
			"error", err.Error())
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.Refresh(ctx); err != nil {
				logging.Default().Error("directory refresh failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("directory refresh worker context cancelled")
			return
		}
	}
}

// Refresh performs a single load and store cycle
func (w *DirectoryRefreshWorker) Refresh(ctx context.Context) error {
	startTime := time.Now()

	people, contexts, err := w.source.Load(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to load directory")
	}

	if err := w.seeder.SeedDirectory(ctx, people, contexts); err != nil {
		return goerr.Wrap(err, "failed to store directory",
			goerr.V("people", len(people)), goerr.V("contexts", len(contexts)))
	}

	logging.Default().Info("directory refresh completed",
		"people", len(people),
		"contexts", len(contexts),
		"duration", time.Since(startTime).String())
	return nil
}
