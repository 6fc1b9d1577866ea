// Package storage is the SQLite persistence layer of the admin app.
//
// It holds:
//   - Administrators and haikus
//   - Slice ticks written by the slicer callback
//   - Audit log appends (operator actions)
//
// Whether a haiku is running is never stored; the slicer owns that state.
package storage
