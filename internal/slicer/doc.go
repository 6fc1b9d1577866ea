// Package slicer runs the recurring "slicer" job of each haiku.
//
// The scheduler keeps an in-memory registry of at most one job per derived key
// (owner username + haiku id). Timers are provided by robfig/cron; each job is
// an interval entry whose first fire happens one full interval after Start.
// The registry is process-lifetime only and is never persisted.
package slicer
