package tracker

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/briefhub/docsync/internal/model"
	"github.com/briefhub/docsync/internal/progress"
)

// connPhase is the connection lifecycle state of an entry.
type connPhase int

const (
	phaseIdle connPhase = iota
	phaseConnecting
	phaseOpen
	phaseClosed
)

// entry is the tracked state for one document. All fields are guarded by the
// registry mutex except writeMu, which serializes frame writes between the
// keep-alive loop and SendPing.
type entry struct {
	documentID string
	purpose    Purpose

	phase connPhase
	conn  *websocket.Conn

	// gen invalidates callbacks from goroutines and timers spawned for a
	// previous connection. Every teardown bumps it.
	gen int

	writeMu sync.Mutex

	document   *model.Document
	lastStatus progress.Update
	terminal   bool

	retryCount    int
	hasError      bool
	lastErrorTime time.Time

	messageCount    int
	lastMessageTime time.Time

	pingStop    chan struct{}
	retryTimer  *time.Timer
	deleteTimer *time.Timer
}

func (e *entry) stopPing() {
	if e.pingStop != nil {
		close(e.pingStop)
		e.pingStop = nil
	}
}

// teardown releases the connection-scoped resources: retry timer, keep-alive
// goroutine, and the socket itself. With normal set, a close frame is sent
// first. The deletion timer is left alone; it outlives the connection.
func (e *entry) teardown(normal bool) {
	if e.retryTimer != nil {
		e.retryTimer.Stop()
		e.retryTimer = nil
	}
	e.stopPing()
	if e.conn != nil {
		if normal {
			e.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
		}
		e.conn.Close()
		e.conn = nil
	}
	e.gen++
	e.phase = phaseClosed
}

// restTerminal reports whether the REST view of the document says the task
// is already finished, making a connection pointless. A document without a
// translation task is never eligible for a translation connection.
func restTerminal(doc model.Document, purpose Purpose) bool {
	if purpose == PurposeTranslation {
		return doc.Translation == nil || doc.Translation.Status.Terminal()
	}
	return doc.Status.Terminal()
}
