package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/briefhub/docsync/internal/model"
)

// Task type tags on the wire.
const (
	TaskProcessing  = "document_processing"
	TaskTranslation = "translation"
)

// ErrUnknownTask marks a frame whose task_type tag is not recognized.
var ErrUnknownTask = errors.New("unknown task type")

// Update is a parsed progress frame for one document task.
type Update interface {
	// DocumentID returns the document the update belongs to.
	DocumentID() string

	// TaskType returns the wire task_type tag.
	TaskType() string

	// Percent returns progress in the 0-100 range.
	Percent() int

	// Stage returns the free-text stage label.
	Stage() string

	// StatusText returns the task status as its wire string.
	StatusText() string

	// Complete reports a successful terminal condition: a terminal success
	// status, or 100% progress regardless of status.
	Complete() bool

	// Failed reports a failed terminal condition.
	Failed() bool

	// ErrorDetail returns the failure description, empty when none.
	ErrorDetail() string
}

// header holds the fields common to both update variants.
type header struct {
	DocID     string    `json:"document_id"`
	Task      string    `json:"task_type"`
	Progress  int       `json:"progress_percentage"`
	CurStage  string    `json:"current_stage"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (h header) DocumentID() string { return h.DocID }
func (h header) TaskType() string   { return h.Task }
func (h header) Percent() int       { return h.Progress }
func (h header) Stage() string      { return h.CurStage }

// ProcessingUpdate is a progress frame for a document processing task.
type ProcessingUpdate struct {
	header
	Status model.DocumentStatus `json:"status"`
	Error  *ProcessingFault     `json:"error,omitempty"`
}

// ProcessingFault is the structured error attached to failed processing
// updates.
type ProcessingFault struct {
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

func (u *ProcessingUpdate) StatusText() string { return string(u.Status) }

func (u *ProcessingUpdate) Complete() bool {
	return u.Status == model.StatusProcessed || u.Progress >= 100
}

func (u *ProcessingUpdate) Failed() bool {
	return u.Status == model.StatusFailed
}

func (u *ProcessingUpdate) ErrorDetail() string {
	if u.Error == nil {
		return ""
	}
	return u.Error.Message
}

// TranslationUpdate is a progress frame for a document translation task.
type TranslationUpdate struct {
	header
	Status         model.TranslationStatus `json:"status"`
	TaskID         string                  `json:"task_id"`
	TargetLanguage string                  `json:"target_language"`
	Error          string                  `json:"error,omitempty"`
}

func (u *TranslationUpdate) StatusText() string { return string(u.Status) }

func (u *TranslationUpdate) Complete() bool {
	return u.Status == model.TranslationCompleted || u.Progress >= 100
}

func (u *TranslationUpdate) Failed() bool {
	return u.Status == model.TranslationFailed
}

func (u *TranslationUpdate) ErrorDetail() string { return u.Error }

// envelope is used to discriminate frames before the full parse.
type envelope struct {
	Type string `json:"type"`
	Task string `json:"task_type"`
}

// IsPong reports whether the frame is the keep-alive pong sentinel.
func IsPong(data []byte) bool {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return false
	}
	return env.Type == "pong"
}

// Decode parses a frame into its task-specific Update variant. Frames with
// an unrecognized task_type are rejected with ErrUnknownTask.
func Decode(data []byte) (Update, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse frame: %w", err)
	}

	switch env.Task {
	case TaskProcessing:
		var u ProcessingUpdate
		if err := json.Unmarshal(data, &u); err != nil {
			return nil, fmt.Errorf("parse processing update: %w", err)
		}
		return &u, nil

	case TaskTranslation:
		var u TranslationUpdate
		if err := json.Unmarshal(data, &u); err != nil {
			return nil, fmt.Errorf("parse translation update: %w", err)
		}
		return &u, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTask, env.Task)
	}
}

// pingFrame is the outbound keep-alive message.
type pingFrame struct {
	Type       string `json:"type"`
	DocumentID string `json:"document_id"`
}

// Ping returns the keep-alive frame sent on an open connection.
func Ping(documentID string) []byte {
	data, _ := json.Marshal(pingFrame{Type: "ping", DocumentID: documentID})
	return data
}
