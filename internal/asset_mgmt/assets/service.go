package assets

import (
	"context"
	"crypto/rand"
	"strings"
	"time"

	ulid "github.com/oklog/ulid/v2"

	"ITPORTAL-backend/internal/platform/apperr"
)

// ===== Clock & ID =====

type Clock interface{ Now() time.Time }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

type IDGen interface{ NewULID(t time.Time) string }

type ulidGen struct{}

func (ulidGen) NewULID(t time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// ===== Service =====

type Service struct {
	store AssetStore
	clock Clock
	id    IDGen
}

func NewService(store AssetStore) *Service {
	return &Service{store: store, clock: realClock{}, id: ulidGen{}}
}

func (s *Service) Create(ctx context.Context, in CreateAssetRequest, createdBy string) (AssetResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return AssetResponse{}, apperr.ErrInvalid("name is required")
	}
	st := Status(in.Status)
	if !st.Valid() {
		return AssetResponse{}, apperr.ErrInvalid("status must be one of free, using, maintenance, retired")
	}
	if in.Quantity < 1 {
		return AssetResponse{}, apperr.ErrInvalid("quantity must be >= 1")
	}

	now := s.clock.Now()
	a := &Asset{
		ID:           s.id.NewULID(now),
		Name:         in.Name,
		CategoryID:   in.CategoryID,
		SerialNumber: in.SerialNumber,
		Status:       st,
		Quantity:     in.Quantity,
		CreatedBy:    createdBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.Remark != nil {
		a.Remark = *in.Remark
	}

	if err := s.store.Insert(ctx, a); err != nil {
		return AssetResponse{}, apperr.ErrUnavailable("asset store unavailable", err)
	}
	return buildAssetResponse(a), nil
}

func (s *Service) Get(ctx context.Context, id string) (AssetResponse, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return AssetResponse{}, err
	}
	return buildAssetResponse(a), nil
}

func (s *Service) List(ctx context.Context, q SearchQuery) ([]AssetResponse, error) {
	if q.Status != nil && !q.Status.Valid() {
		return nil, apperr.ErrInvalid("invalid status filter")
	}
	items, err := s.store.List(ctx, q)
	if err != nil {
		return nil, apperr.ErrUnavailable("asset store unavailable", err)
	}
	out := make([]AssetResponse, 0, len(items))
	for i := range items {
		out = append(out, buildAssetResponse(&items[i]))
	}
	return out, nil
}

// ListForUser returns the assets currently assigned to the given user.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]AssetResponse, error) {
	return s.List(ctx, SearchQuery{AssigneeID: &userID})
}

// Update touches descriptive fields only. Status and assignee belong to the
// lifecycle engine so the history log always sees those changes.
func (s *Service) Update(ctx context.Context, id string, in UpdateAssetRequest) (AssetResponse, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return AssetResponse{}, err
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return AssetResponse{}, apperr.ErrInvalid("name must not be empty")
		}
		a.Name = *in.Name
	}
	if in.CategoryID != nil {
		a.CategoryID = *in.CategoryID
	}
	if in.SerialNumber != nil {
		a.SerialNumber = *in.SerialNumber
	}
	if in.Quantity != nil {
		if *in.Quantity < 1 {
			return AssetResponse{}, apperr.ErrInvalid("quantity must be >= 1")
		}
		a.Quantity = *in.Quantity
	}
	if in.Remark != nil {
		a.Remark = *in.Remark
	}
	a.UpdatedAt = s.clock.Now()

	if err := s.store.Save(ctx, a); err != nil {
		return AssetResponse{}, apperr.ErrUnavailable("asset store unavailable", err)
	}
	return buildAssetResponse(a), nil
}

// Delete removes the asset document. History records for the id are kept
// as-is; reconstruction for a deleted asset id is no longer meaningful.
func (s *Service) Delete(ctx context.Context, id string) error {
	n, err := s.store.Delete(ctx, id)
	if err != nil {
		return apperr.ErrUnavailable("asset store unavailable", err)
	}
	if n == 0 {
		return apperr.ErrNotFound("asset not found")
	}
	return nil
}

func (s *Service) load(ctx context.Context, id string) (*Asset, error) {
	a, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, apperr.ErrUnavailable("asset store unavailable", err)
	}
	if a == nil {
		return nil, apperr.ErrNotFound("asset not found")
	}
	return a, nil
}
