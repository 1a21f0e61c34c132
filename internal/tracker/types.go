package tracker

import (
	"context"
	"time"

	"github.com/briefhub/docsync/internal/model"
)

// Purpose identifies which task a connection tracks.
type Purpose string

const (
	PurposeProcessing  Purpose = "processing"
	PurposeTranslation Purpose = "translation"
)

// DocumentFetcher fetches current document state from the REST API. It is
// consumed for terminal reconciliation; *api.Client satisfies it.
type DocumentFetcher interface {
	GetDocument(ctx context.Context, id string) (model.Document, error)
}

// StatusSink receives one record per observed status point. Implementations
// must not block; the archive writer buffers internally.
type StatusSink interface {
	RecordStatus(rec model.StatusRecord)
}

// Config configures the Registry.
type Config struct {
	// APIBaseURL is the HTTP(S) base URL of the document backend. WebSocket
	// URLs are derived from it by scheme rewrite.
	APIBaseURL string

	// Cooldown suppresses new connect attempts for a document after an
	// error, counted from the last failure.
	Cooldown time.Duration

	// RetryBaseDelay and RetryMaxDelay bound the reconnect backoff:
	// base doubled per attempt, capped at max.
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration

	// MaxRetries is the number of reconnect attempts after the initial
	// connection before giving up.
	MaxRetries int

	// PingInterval is the keep-alive send period while a connection is open.
	PingInterval time.Duration

	// GraceDelay is how long a terminal entry lingers before removal, so
	// late subscribers still observe the final state.
	GraceDelay time.Duration

	// DialTimeout bounds the WebSocket handshake.
	DialTimeout time.Duration

	// WriteTimeout is the write deadline for outbound frames.
	WriteTimeout time.Duration

	// ReconcileTimeout bounds the terminal REST reconciliation fetch.
	ReconcileTimeout time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Cooldown:         60 * time.Second,
		RetryBaseDelay:   2 * time.Second,
		RetryMaxDelay:    30 * time.Second,
		MaxRetries:       3,
		PingInterval:     15 * time.Second,
		GraceDelay:       time.Second,
		DialTimeout:      10 * time.Second,
		WriteTimeout:     5 * time.Second,
		ReconcileTimeout: 10 * time.Second,
	}
}

// EntryInfo is a point-in-time view of one tracked document, exposed for the
// health endpoint and CLI output.
type EntryInfo struct {
	DocumentID    string
	Purpose       Purpose
	Connected     bool
	Terminal      bool
	HasError      bool
	RetryCount    int
	MessageCount  int
	LastMessageAt time.Time
	Status        string
	Progress      int
	Stage         string
}

// Stats summarizes the registry.
type Stats struct {
	Tracked  int
	Open     int
	Terminal int
	Errored  int
}
