package archive

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/briefhub/docsync/internal/model"
)

func testRecord(id string) model.StatusRecord {
	return model.StatusRecord{
		DocumentID: id,
		TaskType:   "document_processing",
		Status:     "processing",
		Progress:   42,
		Stage:      "extracting text",
		Source:     "ws",
		RecordedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
}

func TestTransform(t *testing.T) {
	w := NewWriter(DefaultConfig(), nil, nil)

	rec := testRecord("doc-1")
	rec.ErrorMessage = "corrupt PDF"
	row := w.transform(rec)

	if row.ID == uuid.Nil {
		t.Error("row ID should be generated")
	}
	if row.DocumentID != "doc-1" || row.TaskType != "document_processing" {
		t.Errorf("unexpected row: %+v", row)
	}
	if row.Progress != 42 || row.Stage != "extracting text" {
		t.Errorf("unexpected row: %+v", row)
	}
	if row.ErrorMessage != "corrupt PDF" || row.Source != "ws" {
		t.Errorf("unexpected row: %+v", row)
	}
	if row.RecordedAt != rec.RecordedAt.UnixMicro() {
		t.Errorf("RecordedAt = %d, want %d", row.RecordedAt, rec.RecordedAt.UnixMicro())
	}
}

func TestTransformUniqueIDs(t *testing.T) {
	w := NewWriter(DefaultConfig(), nil, nil)

	a := w.transform(testRecord("doc-1"))
	b := w.transform(testRecord("doc-1"))
	if a.ID == b.ID {
		t.Error("identical records must get distinct row IDs")
	}
}

func TestRecordStatusNeverBlocks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BufferSize = 2
	w := NewWriter(cfg, nil, nil)

	// Nothing consumes; the third record must drop instead of blocking.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			w.RecordStatus(testRecord("doc-1"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RecordStatus blocked on a full buffer")
	}

	if got := w.Stats().Dropped; got != 3 {
		t.Errorf("Dropped = %d, want 3", got)
	}
}

func TestBatchAccumulation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BatchSize = 100 // above what we add, so no flush is triggered
	w := NewWriter(cfg, nil, nil)

	for i := 0; i < 7; i++ {
		w.handleRecord(testRecord("doc-1"))
	}

	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	if len(w.batch) != 7 {
		t.Errorf("batch length = %d, want 7", len(w.batch))
	}
}

func TestStopWithoutStart(t *testing.T) {
	w := NewWriter(DefaultConfig(), nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := w.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}
