package slicer

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	logx "haikuadmin/pkg/logx"
)

// Key derives the job key of an instance: owner username followed by the
// decimal instance id ("alice" + 7 -> "alice7").
func (s *Scheduler) Key(ctx context.Context, inst Instance) (string, error) {
	if s.dir == nil {
		return "", fmt.Errorf("%w: no owner directory", ErrOwnerNotFound)
	}
	name, err := s.dir.OwnerName(ctx, inst.OwnerID)
	if err != nil {
		return "", fmt.Errorf("%w: owner %d of instance %d: %w", ErrOwnerNotFound, inst.OwnerID, inst.ID, err)
	}
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: owner %d of instance %d has no name", ErrOwnerNotFound, inst.OwnerID, inst.ID)
	}
	return name + strconv.FormatInt(inst.ID, 10), nil
}

// Find returns the job registered for inst. ok is false when there is none.
func (s *Scheduler) Find(ctx context.Context, inst Instance) (job Job, ok bool, err error) {
	key, err := s.Key(ctx, inst)
	if err != nil {
		return Job{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return Job{}, false, nil
	}
	return e.job, true, nil
}

// Exists reports whether a job is registered for inst.
func (s *Scheduler) Exists(ctx context.Context, inst Instance) (bool, error) {
	_, ok, err := s.Find(ctx, inst)
	return ok, err
}

// Start registers a recurring job for inst that calls fn every
// inst.SlicingInterval seconds, first one full interval from now.
//
// When a job for the same key already exists nothing changes and ok is false;
// that is an expected outcome, not an error.
func (s *Scheduler) Start(ctx context.Context, inst Instance, fn Func) (job Job, ok bool, err error) {
	if fn == nil {
		return Job{}, false, fmt.Errorf("%w: nil callback for instance %d", ErrInvalidInstance, inst.ID)
	}
	if inst.SlicingInterval <= 0 {
		return Job{}, false, fmt.Errorf("%w: instance %d slicing interval must be > 0, got %d", ErrInvalidInstance, inst.ID, inst.SlicingInterval)
	}
	key, err := s.Key(ctx, inst)
	if err != nil {
		return Job{}, false, err
	}
	every := time.Duration(inst.SlicingInterval) * time.Second

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Job{}, false, ErrClosed
	}
	if _, exists := s.entries[key]; exists {
		s.mu.Unlock()
		s.log.Debug("slicer already running", logx.String("key", key))
		return Job{}, false, nil
	}
	now := time.Now()
	e := &entry{
		job: Job{Key: key, HaikuID: inst.ID, Interval: every, Created: now},
		fn:  fn,
	}
	e.entryID = s.c.Schedule(newDeferredSchedule(every, now), s.fireJob(e))
	s.entries[key] = e
	s.mu.Unlock()

	s.log.Info("slicer started", logx.String("key", key), logx.Int64("haiku", inst.ID), logx.Duration("every", every))
	s.publish(EventStarted, e.job)
	return e.job, true, nil
}

// Stop cancels the job registered for inst. Stopping an instance without a job
// is a no-op and returns false. A fire that was already dispatched runs to
// completion; no fire starts after Stop returns.
func (s *Scheduler) Stop(ctx context.Context, inst Instance) (bool, error) {
	key, err := s.Key(ctx, inst)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		return false, nil
	}
	s.c.Remove(e.entryID)
	delete(s.entries, key)
	s.mu.Unlock()

	s.log.Info("slicer stopped", logx.String("key", key), logx.Int64("haiku", inst.ID), logx.Uint64("fires", e.fires.Load()))
	s.publish(EventStopped, e.job)
	return true, nil
}

// Len returns the number of registered jobs.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Jobs returns the registered jobs sorted by key.
func (s *Scheduler) Jobs() []Job {
	s.mu.Lock()
	out := make([]Job, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.job)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// fireJob builds the cron job for e. The registry is re-checked before each
// call so a fire picked up concurrently with Stop does not run the callback.
func (s *Scheduler) fireJob(e *entry) cron.Job {
	return cron.FuncJob(func() {
		s.mu.Lock()
		cur, ok := s.entries[e.job.Key]
		s.mu.Unlock()
		if !ok || cur != e {
			return
		}
		e.fires.Add(1)
		e.lastFire.Store(time.Now().UnixNano())
		s.publish(EventFired, e.job)
		e.fn()
	})
}
