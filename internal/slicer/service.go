package slicer

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"haikuadmin/internal/eventbus"
	logx "haikuadmin/pkg/logx"
)

// New returns a scheduler with an empty registry. Jobs may be started before
// Run, but nothing fires until Run is called.
func New(cfg Config, dir OwnerDirectory, log logx.Logger, bus eventbus.Bus) *Scheduler {
	if log.IsZero() {
		log = logx.Nop()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	cl := cronLogger{log: log}
	chain := []cron.JobWrapper{cron.Recover(cl)}
	if cfg.Overlap == OverlapSkipIfRunning {
		chain = append(chain, cron.SkipIfStillRunning(cl))
	}
	return &Scheduler{
		cfg:     cfg,
		dir:     dir,
		log:     log,
		bus:     bus,
		c:       cron.New(cron.WithLocation(loc), cron.WithLogger(cl), cron.WithChain(chain...)),
		entries: map[string]*entry{},
	}
}

// Run starts the timer facility. It is a no-op when already running or closed.
func (s *Scheduler) Run() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running || s.closed {
		return
	}
	s.c.Start()
	s.running = true
	s.log.Info("slicer scheduler started", logx.Int("jobs", len(s.entries)), logx.String("tz", s.c.Location().String()))
}

// Running reports whether the timer facility is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Close cancels every timer, clears the registry and waits (bounded by ctx)
// for in-flight callbacks to return. The scheduler cannot be reused.
func (s *Scheduler) Close(ctx context.Context) error {
	start := time.Now()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	dropped := make([]Job, 0, len(s.entries))
	for key, e := range s.entries {
		s.c.Remove(e.entryID)
		delete(s.entries, key)
		dropped = append(dropped, e.job)
	}
	wasRunning := s.running
	s.running = false
	s.mu.Unlock()

	for _, j := range dropped {
		s.publish(EventStopped, j)
	}

	if wasRunning {
		select {
		case <-s.c.Stop().Done():
		case <-ctx.Done():
			s.log.Warn("slicer close timed out waiting for running jobs", logx.Err(ctx.Err()))
			return ctx.Err()
		}
	}
	s.log.Info("slicer scheduler stopped", logx.Int("dropped", len(dropped)), logx.Duration("took", time.Since(start)))
	return nil
}

func (s *Scheduler) publish(typ string, j Job) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(eventbus.Event{
		Type: typ,
		Data: JobEvent{Key: j.Key, HaikuID: j.HaikuID, Interval: j.Interval},
	})
}
