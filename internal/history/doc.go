// Package history persists finished downloads to a local SQLite database.
// It is an audit log: entries are written once when a download reaches a
// terminal state and are never used to resume transfers.
package history
