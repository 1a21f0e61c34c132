// Package database manages the Postgres connection pool backing the status
// archive.
package database
