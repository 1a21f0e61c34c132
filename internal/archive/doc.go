// Package archive persists document status history to Postgres.
//
// The Writer is the tracker's status sink: it accepts records without
// blocking, batches them, and flushes on size or interval. Rows carry a
// generated UUID and insert with ON CONFLICT DO NOTHING, so a replayed flush
// after a transient failure cannot duplicate history.
package archive
