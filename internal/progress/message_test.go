package progress

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/briefhub/docsync/internal/model"
)

func TestDecodeProcessingUpdate(t *testing.T) {
	data := []byte(`{
		"document_id": "doc-1",
		"task_type": "document_processing",
		"status": "processing",
		"progress_percentage": 45,
		"current_stage": "extracting text",
		"updated_at": "2026-08-30T12:00:00Z"
	}`)

	u, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	p, ok := u.(*ProcessingUpdate)
	if !ok {
		t.Fatalf("expected *ProcessingUpdate, got %T", u)
	}
	if p.DocumentID() != "doc-1" {
		t.Errorf("DocumentID = %q, want doc-1", p.DocumentID())
	}
	if p.TaskType() != TaskProcessing {
		t.Errorf("TaskType = %q, want %q", p.TaskType(), TaskProcessing)
	}
	if p.Percent() != 45 {
		t.Errorf("Percent = %d, want 45", p.Percent())
	}
	if p.Stage() != "extracting text" {
		t.Errorf("Stage = %q, want 'extracting text'", p.Stage())
	}
	if p.Status != model.StatusProcessing {
		t.Errorf("Status = %q, want processing", p.Status)
	}
	if p.Complete() || p.Failed() {
		t.Error("mid-flight update should be neither complete nor failed")
	}
}

func TestDecodeTranslationUpdate(t *testing.T) {
	data := []byte(`{
		"document_id": "doc-2",
		"task_type": "translation",
		"status": "translating",
		"progress_percentage": 60,
		"current_stage": "translating pages",
		"task_id": "task-9",
		"target_language": "de"
	}`)

	u, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	tr, ok := u.(*TranslationUpdate)
	if !ok {
		t.Fatalf("expected *TranslationUpdate, got %T", u)
	}
	if tr.TaskID != "task-9" || tr.TargetLanguage != "de" {
		t.Errorf("unexpected task fields: %+v", tr)
	}
	if tr.Complete() || tr.Failed() {
		t.Error("mid-flight update should be neither complete nor failed")
	}
}

func TestDecodeUnknownTaskType(t *testing.T) {
	data := []byte(`{"document_id": "doc-1", "task_type": "ocr_cleanup"}`)

	_, err := Decode(data)
	if !errors.Is(err, ErrUnknownTask) {
		t.Fatalf("expected ErrUnknownTask, got %v", err)
	}
}

func TestDecodeMalformedJSON(t *testing.T) {
	if _, err := Decode([]byte(`{not json`)); err == nil {
		t.Fatal("expected error for malformed frame")
	}
	if _, err := Decode([]byte(`{"task_type":"document_processing","progress_percentage":"high"}`)); err == nil {
		t.Fatal("expected error for wrong field type")
	}
}

func TestCompleteOnStatus(t *testing.T) {
	tests := []struct {
		name     string
		update   Update
		complete bool
		failed   bool
	}{
		{
			name:     "processed status",
			update:   &ProcessingUpdate{header: header{Progress: 80}, Status: model.StatusProcessed},
			complete: true,
		},
		{
			name:     "processing at 100 percent",
			update:   &ProcessingUpdate{header: header{Progress: 100}, Status: model.StatusProcessing},
			complete: true,
		},
		{
			name:   "failed status",
			update: &ProcessingUpdate{header: header{Progress: 30}, Status: model.StatusFailed},
			failed: true,
		},
		{
			name:     "translation completed",
			update:   &TranslationUpdate{header: header{Progress: 99}, Status: model.TranslationCompleted},
			complete: true,
		},
		{
			name:     "translation at 100 percent",
			update:   &TranslationUpdate{header: header{Progress: 100}, Status: model.TranslationTranslating},
			complete: true,
		},
		{
			name:   "translation failed",
			update: &TranslationUpdate{header: header{Progress: 10}, Status: model.TranslationFailed},
			failed: true,
		},
		{
			name:   "uploaded at zero",
			update: &ProcessingUpdate{Status: model.StatusUploaded},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.update.Complete(); got != tt.complete {
				t.Errorf("Complete() = %v, want %v", got, tt.complete)
			}
			if got := tt.update.Failed(); got != tt.failed {
				t.Errorf("Failed() = %v, want %v", got, tt.failed)
			}
		})
	}
}

func TestErrorDetail(t *testing.T) {
	p := &ProcessingUpdate{Status: model.StatusFailed, Error: &ProcessingFault{Message: "corrupt PDF", Type: "parse_error"}}
	if p.ErrorDetail() != "corrupt PDF" {
		t.Errorf("ErrorDetail = %q, want 'corrupt PDF'", p.ErrorDetail())
	}

	noErr := &ProcessingUpdate{Status: model.StatusProcessing}
	if noErr.ErrorDetail() != "" {
		t.Errorf("ErrorDetail = %q, want empty", noErr.ErrorDetail())
	}

	tr := &TranslationUpdate{Status: model.TranslationFailed, Error: "quota exceeded"}
	if tr.ErrorDetail() != "quota exceeded" {
		t.Errorf("ErrorDetail = %q, want 'quota exceeded'", tr.ErrorDetail())
	}
}

func TestIsPong(t *testing.T) {
	if !IsPong([]byte(`{"type":"pong"}`)) {
		t.Error("pong frame not recognized")
	}
	if IsPong([]byte(`{"type":"ping"}`)) {
		t.Error("ping frame treated as pong")
	}
	if IsPong([]byte(`{"task_type":"translation"}`)) {
		t.Error("update frame treated as pong")
	}
	if IsPong([]byte(`garbage`)) {
		t.Error("malformed frame treated as pong")
	}
}

func TestPingFrame(t *testing.T) {
	data := Ping("doc-7")

	var got map[string]string
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("ping frame is not valid JSON: %v", err)
	}
	if got["type"] != "ping" {
		t.Errorf("type = %q, want ping", got["type"])
	}
	if got["document_id"] != "doc-7" {
		t.Errorf("document_id = %q, want doc-7", got["document_id"])
	}
}
