// Package sqlite provides SQLite-backed dashboard session persistence.
//
// It stores the dashboard's own session records only; tickets and logs stay
// on the backend.
package sqlite
