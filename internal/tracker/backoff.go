package tracker

import (
	"errors"
	"time"

	"github.com/gorilla/websocket"
)

// RetryDelay returns the reconnect delay for the given attempt: base doubled
// per prior attempt, capped at max. retryCount is zero-based.
func RetryDelay(base, max time.Duration, retryCount int) time.Duration {
	if base <= 0 {
		return max
	}
	if retryCount > 30 {
		return max
	}
	d := base << uint(retryCount)
	if d > max || d <= 0 {
		return max
	}
	return d
}

// abnormalClose reports whether a read error warrants reconnection. Close
// frames with codes 1000 (normal) and 1001 (going away) are deliberate
// server-side closes; everything else, including non-close transport errors,
// counts as abnormal.
func abnormalClose(err error) bool {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return ce.Code != websocket.CloseNormalClosure && ce.Code != websocket.CloseGoingAway
	}
	return true
}
