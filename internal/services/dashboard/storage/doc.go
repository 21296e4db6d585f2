// Package storage defines persistence contracts for dashboard sessions.
//
// Handlers depend on these interfaces so they can be tested without a
// concrete SQLite schema.
package storage
