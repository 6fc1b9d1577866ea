package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"haikuadmin/internal/game"
)

const haikuCols = `id, title, created_by, created_on, slug, started, finished,
	word_round_length, slicing_interval, min_blind_submissions,
	blind_submission_value, decay_mean_lifetime, seed_capital`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHaiku(r rowScanner) (game.Haiku, error) {
	var (
		h       game.Haiku
		created string
	)
	err := r.Scan(&h.ID, &h.Title, &h.CreatedBy, &created, &h.Slug, &h.Started, &h.Finished,
		&h.WordRoundLength, &h.SlicingInterval, &h.MinBlindSubmissions,
		&h.BlindSubmissionValue, &h.DecayMeanLifetime, &h.SeedCapital)
	if err != nil {
		return game.Haiku{}, err
	}
	h.CreatedOn = parseTime(created)
	return h, nil
}

// CreateHaiku inserts h and sets its ID.
func (s *Store) CreateHaiku(ctx context.Context, h *game.Haiku) error {
	if err := s.usable(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO haikus(title, created_by, created_on, slug, started, finished,
			word_round_length, slicing_interval, min_blind_submissions,
			blind_submission_value, decay_mean_lifetime, seed_capital)
		 VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`,
		h.Title, h.CreatedBy, formatTime(h.CreatedOn), h.Slug, h.Started, h.Finished,
		h.WordRoundLength, h.SlicingInterval, h.MinBlindSubmissions,
		h.BlindSubmissionValue, h.DecayMeanLifetime, h.SeedCapital,
	)
	if isUnique(err) {
		return fmt.Errorf("%w: haiku %q", ErrDuplicate, h.Slug)
	}
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = id
	return nil
}

func (s *Store) HaikuByID(ctx context.Context, id int64) (game.Haiku, bool, error) {
	return s.queryHaiku(ctx, `SELECT `+haikuCols+` FROM haikus WHERE id = ?`, id)
}

func (s *Store) HaikuBySlug(ctx context.Context, slug string) (game.Haiku, bool, error) {
	return s.queryHaiku(ctx, `SELECT `+haikuCols+` FROM haikus WHERE slug = ?`, slug)
}

func (s *Store) HaikuByTitle(ctx context.Context, title string) (game.Haiku, bool, error) {
	return s.queryHaiku(ctx, `SELECT `+haikuCols+` FROM haikus WHERE title = ?`, title)
}

func (s *Store) queryHaiku(ctx context.Context, q string, arg any) (game.Haiku, bool, error) {
	if err := s.usable(); err != nil {
		return game.Haiku{}, false, err
	}
	h, err := scanHaiku(s.db.QueryRowContext(ctx, q, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return game.Haiku{}, false, nil
	}
	if err != nil {
		return game.Haiku{}, false, err
	}
	return h, true, nil
}

// ListHaikus returns every haiku, newest first.
func (s *Store) ListHaikus(ctx context.Context) ([]game.Haiku, error) {
	if err := s.usable(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+haikuCols+` FROM haikus ORDER BY created_on DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []game.Haiku
	for rows.Next() {
		h, err := scanHaiku(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// DeleteHaiku removes a haiku and its slice ticks. It reports whether a row
// was deleted.
func (s *Store) DeleteHaiku(ctx context.Context, id int64) (bool, error) {
	if err := s.usable(); err != nil {
		return false, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM slices WHERE haiku_id = ?`, id); err != nil {
		return false, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM haikus WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, tx.Commit()
}
