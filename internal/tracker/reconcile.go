package tracker

import (
	"context"
	"time"

	"github.com/briefhub/docsync/internal/model"
	"github.com/briefhub/docsync/internal/progress"
)

// spawnReconcileLocked kicks off a single best-effort REST fetch for the
// document's authoritative state. The REST client retries transient failures
// internally; a fetch that still fails is logged and abandoned.
func (r *Registry) spawnReconcileLocked(e *entry) {
	if r.fetcher == nil || r.closed {
		return
	}
	r.wg.Add(1)
	go r.reconcile(e.documentID, e.purpose)
}

func (r *Registry) reconcile(id string, purpose Purpose) {
	defer r.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.ReconcileTimeout)
	defer cancel()

	doc, err := r.fetcher.GetDocument(ctx, id)
	if err != nil {
		r.logger.Warn("reconciliation fetch failed", "document_id", id, "error", err)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e := r.entries[id]; e != nil {
		d := doc
		e.document = &d
	}
	if r.sink != nil {
		r.sink.RecordStatus(restRecord(doc, purpose))
	}
	r.logger.Debug("reconciled", "document_id", id, "status", doc.Status)
	r.notify()
}

// restRecord converts the REST document view into a status record. REST
// carries no progress percentage; a successful terminal status reads as 100.
func restRecord(doc model.Document, purpose Purpose) model.StatusRecord {
	rec := model.StatusRecord{
		DocumentID: doc.ID,
		Source:     "rest",
		RecordedAt: time.Now(),
	}

	if purpose == PurposeTranslation && doc.Translation != nil {
		rec.TaskType = progress.TaskTranslation
		rec.Status = string(doc.Translation.Status)
		if doc.Translation.Status == model.TranslationCompleted {
			rec.Progress = 100
		}
		return rec
	}

	rec.TaskType = progress.TaskProcessing
	rec.Status = string(doc.Status)
	if doc.Status == model.StatusProcessed {
		rec.Progress = 100
	}
	if doc.Error != nil {
		rec.ErrorMessage = doc.Error.Message
	}
	return rec
}
