package slicer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"haikuadmin/internal/eventbus"
	logx "haikuadmin/pkg/logx"
)

// Event types published on the bus.
const (
	EventStarted = "slicer.started"
	EventStopped = "slicer.stopped"
	EventFired   = "slicer.fired"
)

type OverlapPolicy int

const (
	// OverlapSkipIfRunning drops a fire while the previous run of the same job is
	// still in flight, so a slow callback only delays its own next fire.
	OverlapSkipIfRunning OverlapPolicy = iota
	OverlapAllow
)

// Config controls the scheduler.
type Config struct {
	Overlap  OverlapPolicy
	Location *time.Location // nil means time.Local
}

// Instance is the part of a game instance the scheduler needs.
type Instance struct {
	ID              int64
	OwnerID         int64
	SlicingInterval int // seconds
}

// OwnerDirectory resolves the display name of an instance owner.
//
// Key derivation calls it on every lookup, so it is a required collaborator
// call rather than a pure function.
type OwnerDirectory interface {
	OwnerName(ctx context.Context, ownerID int64) (string, error)
}

// Func is the unit of work invoked on every fire.
type Func func()

// Job is an immutable view of a registered job.
type Job struct {
	Key      string
	HaikuID  int64
	Interval time.Duration
	Created  time.Time
}

// JobEvent is the payload of slicer bus events.
type JobEvent struct {
	Key      string        `json:"key"`
	HaikuID  int64         `json:"haiku_id"`
	Interval time.Duration `json:"interval"`
}

// entry is the registry record: the job plus the handles it owns.
type entry struct {
	job     Job
	fn      Func
	entryID cron.EntryID

	fires    atomic.Uint64
	lastFire atomic.Int64 // unix nano
}

type Scheduler struct {
	cfg Config
	dir OwnerDirectory
	log logx.Logger
	bus eventbus.Bus

	mu      sync.Mutex
	c       *cron.Cron
	running bool
	closed  bool
	entries map[string]*entry
}

type JobInfo struct {
	Key      string        `json:"key"`
	HaikuID  int64         `json:"haiku_id"`
	Interval time.Duration `json:"interval"`
	Created  time.Time     `json:"created"`
	Next     time.Time     `json:"next"`
	Prev     time.Time     `json:"prev"`
	Fires    uint64        `json:"fires"`
	LastFire time.Time     `json:"last_fire"`
}

type Snapshot struct {
	Running  bool      `json:"running"`
	Timezone string    `json:"timezone"`
	Count    int       `json:"count"`
	Jobs     []JobInfo `json:"jobs"`
}
