package slicer

import (
	"testing"
	"time"

	logx "haikuadmin/pkg/logx"
)

func nopLog() logx.Logger { return logx.Nop() }

func TestDeferredScheduleFirstRun(t *testing.T) {
	t.Parallel()
	reg := time.Date(2026, 1, 2, 3, 4, 5, 600_000_000, time.UTC)
	sched := newDeferredSchedule(5*time.Second, reg)

	first := sched.Next(reg)
	if want := reg.Add(5 * time.Second); !first.Equal(want) {
		t.Fatalf("first Next = %v, want %v", first, want)
	}
	// Later runs follow the constant-delay base schedule.
	second := sched.Next(first)
	if second.Sub(first) > 5*time.Second || second.Sub(first) < 4*time.Second {
		t.Fatalf("second Next = %v (delta %v)", second, second.Sub(first))
	}
}
