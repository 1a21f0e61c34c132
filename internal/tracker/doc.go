// Package tracker maintains one WebSocket connection per in-flight document
// task and tracks its progress to completion.
//
// The Registry owns every per-document resource: the socket, the keep-alive
// goroutine, the reconnect timer, and the grace-deletion timer. All state
// transitions run under one mutex, and each entry carries a generation
// counter so callbacks from goroutines and timers that outlive a teardown
// are discarded instead of mutating a successor connection.
//
// Failures never propagate to callers. Dial errors, abnormal closes and
// unparseable frames are logged, retried within policy, and finally
// reconciled against the REST API.
package tracker
