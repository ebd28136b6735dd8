package auth

import (
	"context"
	"database/sql"
	"errors"

	"ITPORTAL-backend/internal/platform/db"
)

type Account struct {
	ID           string // 社内ユーザULID（usersコレクションと共通）
	Email        string
	PasswordHash string
	Role         string
	IsDisabled   bool
	CreatedAt    string
}

type AccountStore interface {
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByID(ctx context.Context, id string) (*Account, error)
	EmailExists(ctx context.Context, tx db.DBTX, email string) (bool, error)
	Create(ctx context.Context, tx db.DBTX, a *Account) error
	UpdatePassword(ctx context.Context, id, passwordHash string) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
}

type Store struct{ db *sql.DB }

func NewStore(sqlDB *sql.DB) AccountStore {
	return &Store{db: sqlDB}
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*Account, error) {
	const q = `
SELECT id, email, password_hash, role, is_disabled, created_at
FROM auth_accounts
WHERE email = ?
LIMIT 1
`
	return s.scanOne(s.db.QueryRowContext(ctx, q, email))
}

func (s *Store) GetByID(ctx context.Context, id string) (*Account, error) {
	const q = `
SELECT id, email, password_hash, role, is_disabled, created_at
FROM auth_accounts
WHERE id = ?
LIMIT 1
`
	return s.scanOne(s.db.QueryRowContext(ctx, q, id))
}

func (s *Store) scanOne(row *sql.Row) (*Account, error) {
	var a Account
	var isDisabledInt int
	err := row.Scan(
		&a.ID,
		&a.Email,
		&a.PasswordHash,
		&a.Role,
		&isDisabledInt,
		&a.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if isDisabledInt != 0 {
		a.IsDisabled = true
	}
	return &a, nil
}

func (s *Store) EmailExists(ctx context.Context, tx db.DBTX, email string) (bool, error) {
	const q = `SELECT COUNT(*) FROM auth_accounts WHERE email = ?`
	var n int
	if err := tx.QueryRowContext(ctx, q, email).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create runs inside the caller's transaction so the duplicate check and the
// insert see the same state.
func (s *Store) Create(ctx context.Context, tx db.DBTX, a *Account) error {
	const q = `
INSERT INTO auth_accounts (id, email, password_hash, role, is_disabled, created_at)
VALUES (?, ?, ?, ?, 0, NOW(6))
`
	_, err := tx.ExecContext(ctx, q, a.ID, a.Email, a.PasswordHash, a.Role)
	return err
}

func (s *Store) UpdatePassword(ctx context.Context, id, passwordHash string) (int64, error) {
	const q = `UPDATE auth_accounts SET password_hash = ? WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, passwordHash, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	const q = `DELETE FROM auth_accounts WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
