package storage

import (
	"errors"
	"time"
)

var (
	ErrClosed    = errors.New("storage closed")
	ErrNotFound  = errors.New("storage: not found")
	ErrDuplicate = errors.New("storage: duplicate")
)

// Config configures storage.
//
// Driver values:
//   - "sqlite": SQLite database file (default)
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // 0 means default
}

// AuditEntry records an operator action.
// Keep it compact and schema-stable.
type AuditEntry struct {
	At        time.Time
	ActorID   int64
	ActorName string
	Action    string
	Target    string
	OK        bool
	Error     string
	Meta      string
}
