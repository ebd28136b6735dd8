package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"

	"ITPORTAL-backend/internal/platform/db"
)

var (
	ErrAlreadyExists = errors.New("already exists")
	ErrNotFound      = errors.New("not found")
	ErrAuthFailed    = errors.New("authentication failed")
)

// DirectoryWriter maintains the matching directory user when an account is
// registered or removed. Implemented by the users service; accounts and
// directory documents share the same ULID id.
type DirectoryWriter interface {
	CreateUser(ctx context.Context, id, fullname, email, role string) error
	DeleteUser(ctx context.Context, id string) error
	Fullname(ctx context.Context, id string) (string, error)
}

type Service struct {
	db        *sql.DB
	store     AccountStore
	directory DirectoryWriter
	secret    []byte
	tokenTTL  time.Duration
}

func NewService(sqlDB *sql.DB, directory DirectoryWriter, secret []byte, tokenTTL time.Duration) *Service {
	return &Service{
		db:        sqlDB,
		store:     NewStore(sqlDB),
		directory: directory,
		secret:    secret,
		tokenTTL:  tokenTTL,
	}
}

type RegisterInput struct {
	Fullname string
	Email    string
	Password string
	Role     string
}

func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	acct, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if acct == nil || acct.IsDisabled {
		return "", ErrAuthFailed
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return "", ErrAuthFailed
	}

	fullname := ""
	// 表示名はディレクトリ側が持つ。未解決でもログインは通す。
	if name, derr := s.directory.Fullname(ctx, acct.ID); derr == nil {
		fullname = name
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  acct.ID,
		"role": acct.Role,
		"name": fullname,
		"exp":  time.Now().Add(s.tokenTTL).Unix(),
	})
	return token.SignedString(s.secret)
}

// Register creates the login account and the matching directory user.
// The account insert runs in a transaction so the email-duplicate check and
// the insert cannot interleave with a concurrent registration.
func (s *Service) Register(ctx context.Context, in RegisterInput) (string, error) {
	if in.Role != RoleAdmin && in.Role != RoleEmployee {
		in.Role = RoleEmployee
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	id := ulid.MustNew(ulid.Timestamp(time.Now().UTC()), ulid.Monotonic(rand.Reader, 0)).String()

	err = db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		exists, err := s.store.EmailExists(ctx, tx, in.Email)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyExists
		}
		return s.store.Create(ctx, tx, &Account{
			ID:           id,
			Email:        in.Email,
			PasswordHash: string(hash),
			Role:         in.Role,
		})
	})
	if err != nil {
		return "", err
	}

	if err := s.directory.CreateUser(ctx, id, in.Fullname, in.Email, in.Role); err != nil {
		// アカウントだけ残すと中途半端なので巻き戻す
		_, _ = s.store.Delete(ctx, id)
		return "", err
	}
	return id, nil
}

func (s *Service) ChangePassword(ctx context.Context, id, current, next string) error {
	acct, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if acct == nil {
		return ErrNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(current)); err != nil {
		return ErrAuthFailed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	n, err := s.store.UpdatePassword(ctx, id, string(hash))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	n, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return s.directory.DeleteUser(ctx, id)
}
