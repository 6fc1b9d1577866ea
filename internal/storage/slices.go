package storage

import (
	"context"
	"time"
)

// RecordSlice appends one slice tick for a haiku.
func (s *Store) RecordSlice(ctx context.Context, haikuID int64, at time.Time) error {
	if err := s.usable(); err != nil {
		return err
	}
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO slices(haiku_id, at) VALUES(?,?)`, haikuID, formatTime(at))
	return err
}

// SliceCount returns the number of ticks recorded for a haiku.
func (s *Store) SliceCount(ctx context.Context, haikuID int64) (int64, error) {
	if err := s.usable(); err != nil {
		return 0, err
	}
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM slices WHERE haiku_id = ?`, haikuID).Scan(&n)
	return n, err
}

// SliceCounts returns tick counts keyed by haiku id. Haikus without ticks are
// absent from the map.
func (s *Store) SliceCounts(ctx context.Context) (map[int64]int64, error) {
	if err := s.usable(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT haiku_id, COUNT(1) FROM slices GROUP BY haiku_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[int64]int64{}
	for rows.Next() {
		var id, n int64
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}
