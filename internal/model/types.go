package model

import "time"

// DocumentStatus is the processing state of a document at the REST layer.
type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusProcessed  DocumentStatus = "processed"
	StatusFailed     DocumentStatus = "failed"
)

// Terminal reports whether no further processing transitions are expected.
func (s DocumentStatus) Terminal() bool {
	return s == StatusProcessed || s == StatusFailed
}

// TranslationStatus is the state of a document's translation task.
type TranslationStatus string

const (
	TranslationPending     TranslationStatus = "pending"
	TranslationTranslating TranslationStatus = "translating"
	TranslationCompleted   TranslationStatus = "completed"
	TranslationFailed      TranslationStatus = "failed"
)

// Terminal reports whether the translation task has finished.
func (s TranslationStatus) Terminal() bool {
	return s == TranslationCompleted || s == TranslationFailed
}

// Document is a user-uploaded file tracked through
// upload -> processing -> processed/failed.
type Document struct {
	ID        string // Primary key, opaque identifier
	Name      string // Display name (original filename)
	FolderID  string // Containing folder, empty for root
	Status    DocumentStatus
	PageCount int
	SizeBytes int64

	// Error is set when Status is "failed".
	Error *ProcessingError

	// Translation is the document's translation task, nil when none was
	// requested.
	Translation *TranslationTask

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProcessingError describes why a document failed to process.
type ProcessingError struct {
	Message   string
	Type      string
	Timestamp time.Time
}

// TranslationTask tracks a translation of a document into a target language.
type TranslationTask struct {
	TaskID         string
	TargetLanguage string // BCP 47 tag (e.g. "de", "pt-BR")
	Status         TranslationStatus
}

// StatusRecord is one observed point in a document task's progress history.
// The tracker emits one per inbound update and per reconciliation result;
// the archive persists them.
type StatusRecord struct {
	DocumentID   string
	TaskType     string // "document_processing" or "translation"
	Status       string
	Progress     int // 0-100
	Stage        string
	ErrorMessage string // Empty unless the task failed
	Source       string // "ws" or "rest"
	RecordedAt   time.Time
}
