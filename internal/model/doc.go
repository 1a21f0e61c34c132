// Package model defines the shared domain types: documents, their processing
// and translation statuses, and the status history records bound for the
// archive. Wire formats live with the components that parse them (internal/api
// for REST, internal/progress for WebSocket frames).
package model
