package users

import (
	"context"
	"strings"
	"time"

	"ITPORTAL-backend/internal/platform/apperr"
)

type Clock interface{ Now() time.Time }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

type Service struct {
	store UserStore
	clock Clock
}

func NewService(store UserStore) *Service {
	return &Service{store: store, clock: realClock{}}
}

// ===== ディレクトリCRUD =====

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	u, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, apperr.ErrUnavailable("user store unavailable", err)
	}
	if u == nil {
		return nil, apperr.ErrNotFound("user not found")
	}
	return u, nil
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	out, err := s.store.List(ctx)
	if err != nil {
		return nil, apperr.ErrUnavailable("user store unavailable", err)
	}
	return out, nil
}

type UpdateUserInput struct {
	Fullname *string
	Email    *string
	Role     *string
	Active   *bool
}

func (s *Service) Update(ctx context.Context, id string, in UpdateUserInput) (*User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Fullname != nil {
		if strings.TrimSpace(*in.Fullname) == "" {
			return nil, apperr.ErrInvalid("fullname must not be empty")
		}
		u.Fullname = *in.Fullname
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.Role != nil {
		if *in.Role != "admin" && *in.Role != "employee" {
			return nil, apperr.ErrInvalid("role must be admin or employee")
		}
		u.Role = *in.Role
	}
	if in.Active != nil {
		u.Active = *in.Active
	}

	if err := s.store.Replace(ctx, u); err != nil {
		return nil, apperr.ErrUnavailable("user store unavailable", err)
	}
	return u, nil
}

// ===== auth.DirectoryWriter =====

func (s *Service) CreateUser(ctx context.Context, id, fullname, email, role string) error {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(fullname) == "" {
		return apperr.ErrInvalid("id and fullname are required")
	}
	u := &User{
		ID:        id,
		Fullname:  fullname,
		Email:     email,
		Role:      role,
		Active:    true,
		CreatedAt: s.clock.Now(),
	}
	if err := s.store.Insert(ctx, u); err != nil {
		return apperr.ErrUnavailable("user store unavailable", err)
	}
	return nil
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	n, err := s.store.Delete(ctx, id)
	if err != nil {
		return apperr.ErrUnavailable("user store unavailable", err)
	}
	if n == 0 {
		return apperr.ErrNotFound("user not found")
	}
	return nil
}

func (s *Service) Fullname(ctx context.Context, id string) (string, error) {
	u, err := s.store.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", nil
	}
	return u.Fullname, nil
}

// Exists reports whether the id resolves to a directory user.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	u, err := s.store.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return u != nil, nil
}

// ===== 履歴向けの参照解決 =====

// Resolve maps a user id to a display reference. Deleted or unknown ids
// resolve to the sentinel name instead of failing the caller's query.
func (s *Service) Resolve(ctx context.Context, id string) Ref {
	if id == "" {
		return Ref{Fullname: UnknownUserName}
	}
	u, err := s.store.Get(ctx, id)
	if err != nil || u == nil || u.Fullname == "" {
		return Ref{ID: id, Fullname: UnknownUserName}
	}
	return Ref{ID: u.ID, Fullname: u.Fullname}
}
