// Package watch discovers in-flight documents over the REST API and hands
// them to the tracker. It is the daemon's connect trigger: anything the
// backend reports as uploaded or processing, and any pending translation
// task, gets a progress connection.
package watch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/briefhub/docsync/internal/api"
	"github.com/briefhub/docsync/internal/model"
)

// DocumentLister lists documents by status; *api.Client satisfies it.
type DocumentLister interface {
	ListAllDocuments(ctx context.Context, opts api.ListDocumentsOptions) ([]model.Document, error)
}

// Tracker receives discovered documents.
type Tracker interface {
	Connect(doc model.Document)
	ConnectTranslation(doc model.Document)
}

// Config holds watcher configuration.
type Config struct {
	Interval time.Duration // Scan interval
	PageSize int           // Listing page size
	Timeout  time.Duration // Per-scan timeout
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: 30 * time.Second,
		PageSize: 100,
		Timeout:  20 * time.Second,
	}
}

// Watcher periodically scans for in-flight documents.
type Watcher struct {
	cfg     Config
	lister  DocumentLister
	tracker Tracker
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Watcher.
func New(cfg Config, lister DocumentLister, tracker Tracker, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		cfg:     cfg,
		lister:  lister,
		tracker: tracker,
		logger:  logger.With("component", "watch"),
	}
}

// Start begins the scan loop.
func (w *Watcher) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go w.run()

	w.logger.Info("document watcher started", "interval", w.cfg.Interval)
	return nil
}

// Stop gracefully shuts down the watcher.
func (w *Watcher) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.cancel()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("document watcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the main scan loop.
func (w *Watcher) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	// Scan immediately on start.
	w.scan()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.scan()
		}
	}
}

// scan lists in-flight documents and connects them. A failed listing is
// logged and retried on the next tick.
func (w *Watcher) scan() {
	ctx, cancel := context.WithTimeout(w.ctx, w.cfg.Timeout)
	defer cancel()

	var connected int
	// Processed documents are scanned too: their translation task can still
	// be in flight after processing finishes.
	statuses := []model.DocumentStatus{model.StatusUploaded, model.StatusProcessing, model.StatusProcessed}
	for _, status := range statuses {
		docs, err := w.lister.ListAllDocuments(ctx, api.ListDocumentsOptions{
			Status: string(status),
			Limit:  w.cfg.PageSize,
		})
		if err != nil {
			w.logger.Warn("document scan failed", "status", status, "error", err)
			continue
		}

		for _, doc := range docs {
			if !doc.Status.Terminal() {
				w.tracker.Connect(doc)
				connected++
			}
			if doc.Translation != nil && !doc.Translation.Status.Terminal() {
				w.tracker.ConnectTranslation(doc)
			}
		}
	}

	w.logger.Debug("scan complete", "in_flight", connected)
}
