package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"haikuadmin/internal/game"
)

const adminCols = `id, username, password_hash, is_admin, created_at`

// CreateAdmin inserts a and sets its ID.
func (s *Store) CreateAdmin(ctx context.Context, a *game.Admin) error {
	if err := s.usable(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO admins(username, password_hash, is_admin, created_at) VALUES(?,?,?,?)`,
		a.Username, a.PasswordHash, a.IsAdmin, formatTime(a.CreatedAt),
	)
	if isUnique(err) {
		return fmt.Errorf("%w: username %q", ErrDuplicate, a.Username)
	}
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = id
	return nil
}

// AdministratorExists reports whether any admin account is registered.
func (s *Store) AdministratorExists(ctx context.Context) (bool, error) {
	if err := s.usable(); err != nil {
		return false, err
	}
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM admins WHERE is_admin = 1`).Scan(&n)
	return n > 0, err
}

func (s *Store) AdminByName(ctx context.Context, username string) (game.Admin, bool, error) {
	return s.queryAdmin(ctx, `SELECT `+adminCols+` FROM admins WHERE username = ?`, username)
}

func (s *Store) AdminByID(ctx context.Context, id int64) (game.Admin, bool, error) {
	return s.queryAdmin(ctx, `SELECT `+adminCols+` FROM admins WHERE id = ?`, id)
}

// IsAdmin reports whether id names a registered administrator. Unknown ids
// are not admins.
func (s *Store) IsAdmin(ctx context.Context, id int64) (bool, error) {
	a, ok, err := s.AdminByID(ctx, id)
	if err != nil || !ok {
		return false, err
	}
	return a.IsAdmin, nil
}

// OwnerName resolves the username of the admin that owns a haiku.
func (s *Store) OwnerName(ctx context.Context, ownerID int64) (string, error) {
	a, ok, err := s.AdminByID(ctx, ownerID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: admin %d", ErrNotFound, ownerID)
	}
	return a.Username, nil
}

func (s *Store) queryAdmin(ctx context.Context, q string, arg any) (game.Admin, bool, error) {
	if err := s.usable(); err != nil {
		return game.Admin{}, false, err
	}
	var (
		a       game.Admin
		created string
	)
	err := s.db.QueryRowContext(ctx, q, arg).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.IsAdmin, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Admin{}, false, nil
	}
	if err != nil {
		return game.Admin{}, false, err
	}
	a.CreatedAt = parseTime(created)
	return a, true, nil
}
