package slicer

import (
	"sort"
	"time"
)

func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	running := s.running
	entries := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.Unlock()

	items := make([]JobInfo, 0, len(entries))
	for _, e := range entries {
		it := JobInfo{
			Key:      e.job.Key,
			HaikuID:  e.job.HaikuID,
			Interval: e.job.Interval,
			Created:  e.job.Created,
			Fires:    e.fires.Load(),
		}
		if ns := e.lastFire.Load(); ns != 0 {
			it.LastFire = time.Unix(0, ns)
		}
		// Entry() goes through the cron run loop; keep it outside s.mu.
		ce := s.c.Entry(e.entryID)
		it.Next = ce.Next
		it.Prev = ce.Prev
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Key < items[j].Key })

	return Snapshot{
		Running:  running,
		Timezone: s.c.Location().String(),
		Count:    len(items),
		Jobs:     items,
	}
}
