package tracker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/briefhub/docsync/internal/auth"
	"github.com/briefhub/docsync/internal/model"
	"github.com/briefhub/docsync/internal/notify"
	"github.com/briefhub/docsync/internal/progress"
)

// Registry tracks per-document WebSocket connections.
type Registry struct {
	cfg      Config
	tokens   auth.Source
	fetcher  DocumentFetcher
	sink     StatusSink
	notifier *notify.Notifier
	logger   *slog.Logger

	mu      sync.Mutex
	entries map[string]*entry
	closed  bool
	wg      sync.WaitGroup
}

// New creates a Registry. tokens is required; fetcher, sink and notifier may
// be nil, disabling reconciliation, archiving and change signals.
func New(cfg Config, tokens auth.Source, fetcher DocumentFetcher, sink StatusSink, notifier *notify.Notifier, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	return &Registry{
		cfg:      cfg,
		tokens:   tokens,
		fetcher:  fetcher,
		sink:     sink,
		notifier: notifier,
		logger:   logger.With("component", "tracker"),
		entries:  make(map[string]*entry),
	}
}

// Connect starts tracking the document's processing task. The call never
// fails; ineligible documents (already terminal, already tracked, inside the
// error cooldown) are skipped silently and connection errors are absorbed by
// the retry policy.
func (r *Registry) Connect(doc model.Document) {
	r.connect(doc, PurposeProcessing)
}

// ConnectTranslation starts tracking the document's translation task. Same
// contract as Connect.
func (r *Registry) ConnectTranslation(doc model.Document) {
	r.connect(doc, PurposeTranslation)
}

func (r *Registry) connect(doc model.Document, purpose Purpose) {
	if restTerminal(doc, purpose) {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	e := r.entries[doc.ID]
	if e == nil {
		e = &entry{documentID: doc.ID, purpose: purpose}
		r.entries[doc.ID] = e
	}
	d := doc
	e.document = &d

	if e.phase == phaseConnecting || e.phase == phaseOpen {
		return
	}
	if e.terminal {
		return
	}
	if e.hasError && time.Since(e.lastErrorTime) < r.cfg.Cooldown {
		r.logger.Debug("connect suppressed by cooldown", "document_id", doc.ID)
		return
	}

	tok, err := r.tokens.Token()
	if err != nil {
		r.logger.Warn("connect aborted, no token", "document_id", doc.ID, "error", err)
		return
	}
	r.startDialLocked(e, tok)
}

// startDialLocked moves the entry to CONNECTING and dials off the lock.
func (r *Registry) startDialLocked(e *entry, token string) {
	e.phase = phaseConnecting
	e.gen++
	u := wsURL(r.cfg.APIBaseURL, e.documentID, token)

	r.wg.Add(1)
	go r.dial(e.documentID, e.gen, u)
}

func (r *Registry) dial(id string, gen int, url string) {
	defer r.wg.Done()

	dialer := websocket.Dialer{HandshakeTimeout: r.cfg.DialTimeout}
	conn, resp, err := dialer.Dial(url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.entries[id]
	if e == nil || e.gen != gen || r.closed {
		if conn != nil {
			conn.Close()
		}
		return
	}

	if err != nil {
		r.logger.Warn("websocket dial failed", "document_id", id, "error", err)
		e.phase = phaseClosed
		e.hasError = true
		e.lastErrorTime = time.Now()
		r.scheduleRetryLocked(e)
		return
	}

	e.conn = conn
	e.phase = phaseOpen
	e.retryCount = 0
	e.hasError = false
	e.pingStop = make(chan struct{})

	r.wg.Add(2)
	go r.readLoop(id, e.gen, conn)
	go r.pingLoop(id, conn, &e.writeMu, e.pingStop)

	r.logger.Debug("websocket connected", "document_id", id, "purpose", e.purpose)
	r.notify()
}

func (r *Registry) readLoop(id string, gen int, conn *websocket.Conn) {
	defer r.wg.Done()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			r.handleClose(id, gen, err)
			return
		}
		if !r.handleFrame(id, gen, data) {
			return
		}
	}
}

// handleFrame applies one inbound frame. It returns false when the read loop
// should stop, either because the entry went terminal or because this
// connection was superseded.
func (r *Registry) handleFrame(id string, gen int, data []byte) bool {
	if progress.IsPong(data) {
		return true
	}

	u, err := progress.Decode(data)

	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.entries[id]
	if e == nil || e.gen != gen {
		return false
	}
	if err != nil {
		r.logger.Warn("dropping bad frame", "document_id", id, "error", err)
		return true
	}

	e.lastStatus = u
	e.messageCount++
	e.lastMessageTime = time.Now()

	done := u.Complete() || u.Failed()
	if done {
		e.terminal = true
		e.teardown(true)
		r.scheduleDeleteLocked(e)
		r.spawnReconcileLocked(e)
		r.logger.Info("document task finished",
			"document_id", id, "status", u.StatusText(), "progress", u.Percent())
	}

	r.recordLocked(e, u)
	r.notify()
	return !done
}

// handleClose runs when the read loop exits with an error. A stale
// generation means teardown already handled this connection.
func (r *Registry) handleClose(id string, gen int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.entries[id]
	if e == nil || e.gen != gen {
		return
	}

	e.stopPing()
	if e.conn != nil {
		e.conn.Close()
		e.conn = nil
	}
	e.phase = phaseClosed
	e.gen++

	if abnormalClose(err) {
		r.logger.Warn("websocket closed abnormally", "document_id", id, "error", err)
		e.hasError = true
		e.lastErrorTime = time.Now()
		r.scheduleRetryLocked(e)
	} else {
		r.logger.Debug("websocket closed", "document_id", id)
	}
	r.notify()
}

// scheduleRetryLocked arms the reconnect timer, or gives up and reconciles
// once the retry budget is spent.
func (r *Registry) scheduleRetryLocked(e *entry) {
	if e.terminal {
		return
	}
	if e.retryCount >= r.cfg.MaxRetries {
		r.logger.Warn("reconnect attempts exhausted",
			"document_id", e.documentID, "attempts", e.retryCount)
		r.spawnReconcileLocked(e)
		return
	}

	delay := RetryDelay(r.cfg.RetryBaseDelay, r.cfg.RetryMaxDelay, e.retryCount)
	e.retryCount++

	id, gen := e.documentID, e.gen
	e.retryTimer = time.AfterFunc(delay, func() {
		r.retryDial(id, gen)
	})
	r.logger.Debug("reconnect scheduled",
		"document_id", id, "delay", delay, "attempt", e.retryCount)
}

func (r *Registry) retryDial(id string, gen int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	e := r.entries[id]
	if e == nil || e.gen != gen || e.terminal || e.phase != phaseClosed {
		return
	}

	tok, err := r.tokens.Token()
	if err != nil {
		r.logger.Warn("reconnect aborted, no token", "document_id", id, "error", err)
		e.hasError = true
		e.lastErrorTime = time.Now()
		return
	}
	r.startDialLocked(e, tok)
}

// scheduleDeleteLocked arms the grace-deletion timer for a terminal entry.
func (r *Registry) scheduleDeleteLocked(e *entry) {
	id, gen := e.documentID, e.gen
	if e.deleteTimer != nil {
		e.deleteTimer.Stop()
	}
	e.deleteTimer = time.AfterFunc(r.cfg.GraceDelay, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		cur := r.entries[id]
		if cur == nil || cur.gen != gen {
			return
		}
		delete(r.entries, id)
		r.notify()
	})
}

func (r *Registry) pingLoop(id string, conn *websocket.Conn, writeMu *sync.Mutex, stop chan struct{}) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.cfg.PingInterval)
	defer ticker.Stop()
	frame := progress.Ping(id)

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			writeMu.Lock()
			conn.SetWriteDeadline(time.Now().Add(r.cfg.WriteTimeout))
			err := conn.WriteMessage(websocket.TextMessage, frame)
			writeMu.Unlock()
			if err != nil {
				r.logger.Debug("keep-alive write failed", "document_id", id, "error", err)
				return
			}
		}
	}
}

// SendPing sends one keep-alive frame immediately. Best effort; a no-op
// unless the connection is open.
func (r *Registry) SendPing(id string) {
	r.mu.Lock()
	e := r.entries[id]
	if e == nil || e.phase != phaseOpen || e.conn == nil {
		r.mu.Unlock()
		return
	}
	conn, writeMu := e.conn, &e.writeMu
	r.mu.Unlock()

	writeMu.Lock()
	defer writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(r.cfg.WriteTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, progress.Ping(id)); err != nil {
		r.logger.Debug("ping write failed", "document_id", id, "error", err)
	}
}

// Disconnect closes the document's connection with a normal close frame.
// Idempotent. Non-terminal entries remain and may be reconnected later;
// terminal entries proceed to grace deletion.
func (r *Registry) Disconnect(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.entries[id]
	if e == nil {
		return
	}
	e.teardown(true)
	if e.terminal {
		r.scheduleDeleteLocked(e)
	}
	r.notify()
}

// DisconnectAll tears down every entry and empties the registry.
func (r *Registry) DisconnectAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		e.teardown(true)
		if e.deleteTimer != nil {
			e.deleteTimer.Stop()
			e.deleteTimer = nil
		}
	}
	r.entries = make(map[string]*entry)
	r.notify()
}

// Close shuts the registry down: no further connects are accepted, every
// connection is torn down, and outstanding goroutines are awaited up to the
// context deadline.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	r.DisconnectAll()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns the last parsed update for the document, nil when none has
// arrived or the document is not tracked.
func (r *Registry) Status(id string) progress.Update {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.entries[id]
	if e == nil {
		return nil
	}
	return e.lastStatus
}

// IsConnected reports whether the document has an open connection.
func (r *Registry) IsConnected(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.entries[id]
	return e != nil && e.phase == phaseOpen
}

// MessageCount returns the number of progress updates applied for the
// document across all of its connections.
func (r *Registry) MessageCount(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.entries[id]
	if e == nil {
		return 0
	}
	return e.messageCount
}

// Document returns a copy of the last known REST view of the document, nil
// when untracked.
func (r *Registry) Document(id string) *model.Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.entries[id]
	if e == nil || e.document == nil {
		return nil
	}
	d := *e.document
	return &d
}

// Snapshot returns a view of every tracked document.
func (r *Registry) Snapshot() []EntryInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]EntryInfo, 0, len(r.entries))
	for _, e := range r.entries {
		info := EntryInfo{
			DocumentID:    e.documentID,
			Purpose:       e.purpose,
			Connected:     e.phase == phaseOpen,
			Terminal:      e.terminal,
			HasError:      e.hasError,
			RetryCount:    e.retryCount,
			MessageCount:  e.messageCount,
			LastMessageAt: e.lastMessageTime,
		}
		if e.lastStatus != nil {
			info.Status = e.lastStatus.StatusText()
			info.Progress = e.lastStatus.Percent()
			info.Stage = e.lastStatus.Stage()
		}
		out = append(out, info)
	}
	return out
}

// Stats returns registry counters for the health endpoint.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Stats{Tracked: len(r.entries)}
	for _, e := range r.entries {
		if e.phase == phaseOpen {
			s.Open++
		}
		if e.terminal {
			s.Terminal++
		}
		if e.hasError {
			s.Errored++
		}
	}
	return s
}

func (r *Registry) notify() {
	if r.notifier != nil {
		r.notifier.Notify()
	}
}

func (r *Registry) recordLocked(e *entry, u progress.Update) {
	if r.sink == nil {
		return
	}
	r.sink.RecordStatus(model.StatusRecord{
		DocumentID:   e.documentID,
		TaskType:     u.TaskType(),
		Status:       u.StatusText(),
		Progress:     u.Percent(),
		Stage:        u.Stage(),
		ErrorMessage: u.ErrorDetail(),
		Source:       "ws",
		RecordedAt:   time.Now(),
	})
}
