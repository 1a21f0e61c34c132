// Package api provides a client for the document backend's REST API.
//
// The client covers the read surface the sync agent needs: fetching a single
// document and listing documents with status filters and cursor pagination.
// Transient failures (5xx, 429) are retried with jittered exponential
// backoff.
package api
