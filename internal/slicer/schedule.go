package slicer

import (
	"time"

	"github.com/robfig/cron/v3"
)

// deferredSchedule wraps a constant-delay schedule and pins the first run to
// exactly one period after registration. After the first run, it delegates to
// the base schedule.
//
// cron.Every alone truncates to whole seconds, which could fire up to a second
// early on the first run.
type deferredSchedule struct {
	base  cron.Schedule
	first time.Time
}

func (s *deferredSchedule) Next(t time.Time) time.Time {
	if !s.first.IsZero() && t.Before(s.first) {
		return s.first
	}
	return s.base.Next(t)
}

func newDeferredSchedule(every time.Duration, registered time.Time) cron.Schedule {
	return &deferredSchedule{base: cron.Every(every), first: registered.Add(every)}
}
