package lifecycle

import (
	"context"
	"crypto/rand"
	"time"

	ulid "github.com/oklog/ulid/v2"

	"ITPORTAL-backend/internal/asset_mgmt/assets"
	"ITPORTAL-backend/internal/asset_mgmt/history"
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

// ===== 依存インターフェース =====

// AssetStore is the slice of the asset collection the engine touches.
type AssetStore interface {
	Get(ctx context.Context, id string) (*assets.Asset, error) // (nil, nil) when missing
	Save(ctx context.Context, a *assets.Asset) error
}

// UserChecker verifies that an assignee id resolves to a directory user.
type UserChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// ===== Engine =====

// Service is the asset lifecycle engine: it owns assign / changeStatus and
// the "entering free releases the holder" rule, and appends one history
// event per mutation. The asset save and the history append are two
// independent writes — the store has no cross-record transaction — so a
// failure between them surfaces as PARTIAL_WRITE, not as a rollback.
type Service struct {
	assets AssetStore
	users  UserChecker
	events history.EventStore
	writer *history.Writer
	clock  Clock
	id     IDGen
}

func NewService(assetStore AssetStore, userChecker UserChecker, events history.EventStore, writer *history.Writer) *Service {
	return &Service{
		assets: assetStore,
		users:  userChecker,
		events: events,
		writer: writer,
		clock:  realClock{},
		id:     ulidGen{},
	}
}

// Assign hands the asset to newUserID, recording who held it before. The
// previous holder comes from the live assignee when that is usable, else
// from the most recent assignment event in the log.
func (s *Service) Assign(ctx context.Context, assetID, newUserID string, handoverDate time.Time, actingAdminID string) error {
	if assetID == "" || newUserID == "" || actingAdminID == "" {
		return apperr.ErrInvalid("asset_id, user_id and acting admin are required")
	}
	if handoverDate.IsZero() {
		return apperr.ErrInvalid("handover_date is required")
	}

	a, err := s.loadAsset(ctx, assetID)
	if err != nil {
		return err
	}

	ok, err := s.users.Exists(ctx, newUserID)
	if err != nil {
		return apperr.ErrUnavailable("user store unavailable", err)
	}
	if !ok {
		return apperr.ErrNotFound("user not found")
	}

	previousUserID, err := s.resolvePreviousHolder(ctx, a, newUserID)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	a.AssigneeID = newUserID
	a.HandoverDate = handoverDate
	a.Status = assets.StatusUsing
	a.UpdatedAt = now

	if err := s.assets.Save(ctx, a); err != nil {
		return apperr.ErrUnavailable("failed to save asset", err)
	}

	ev := &history.Event{
		ID:        s.id.NewULID(now),
		AssetID:   a.ID,
		CreatedAt: now,
		Kind:      history.KindAssignment,
		Assignment: &history.AssignmentFields{
			AssignedTo:     newUserID,
			PreviousUserID: previousUserID,
			HandoverDate:   handoverDate,
			AssignedBy:     actingAdminID,
		},
	}
	if err := s.writer.Append(ctx, ev); err != nil {
		// 資産は書けて履歴が落ちた状態。自動修復はしない。
		return apperr.ErrPartialWrite("asset saved but history append failed", err)
	}
	return nil
}

// ChangeStatus relabels the asset. The four statuses are mutually exclusive
// labels with no adjacency table; the one enforced rule is that entering
// free always releases the holder, even when the caller only meant to change
// the label.
func (s *Service) ChangeStatus(ctx context.Context, assetID string, newStatus assets.Status, actingAdminID string) error {
	if assetID == "" || actingAdminID == "" {
		return apperr.ErrInvalid("asset_id and acting admin are required")
	}
	if !newStatus.Valid() {
		return apperr.ErrInvalid("status must be one of free, using, maintenance, retired")
	}

	a, err := s.loadAsset(ctx, assetID)
	if err != nil {
		return err
	}

	previousStatus := a.Status
	releasedHolder := ""
	if newStatus == assets.StatusFree && previousStatus != assets.StatusFree {
		if a.Assigned() {
			releasedHolder = a.AssigneeID
		}
		a.ClearAssignment()
	}

	now := s.clock.Now()
	a.Status = newStatus
	a.UpdatedAt = now

	if err := s.assets.Save(ctx, a); err != nil {
		return apperr.ErrUnavailable("failed to save asset", err)
	}

	sc := &history.StatusChangeFields{
		NewStatus:      newStatus,
		PreviousStatus: previousStatus,
		ChangedBy:      actingAdminID,
		ChangeDate:     now,
	}
	if releasedHolder != "" {
		sc.PreviousUserID = releasedHolder
		sc.UnassignedDate = now
	}
	ev := &history.Event{
		ID:           s.id.NewULID(now),
		AssetID:      a.ID,
		CreatedAt:    now,
		Kind:         history.KindStatusChange,
		StatusChange: sc,
	}
	if err := s.writer.Append(ctx, ev); err != nil {
		return apperr.ErrPartialWrite("asset saved but history append failed", err)
	}
	return nil
}

// resolvePreviousHolder: まずライブ状態、だめなら履歴ログへフォールバック。
// ライブ状態は書き込み失敗の残骸で欠けていることがあるため、
// 追加の1リードで追記専用ログから復元する。
func (s *Service) resolvePreviousHolder(ctx context.Context, a *assets.Asset, newUserID string) (string, error) {
	if a.Assigned() && a.AssigneeID != newUserID {
		return a.AssigneeID, nil
	}

	ev, err := s.events.LastAssignmentExcluding(ctx, a.ID, newUserID)
	if err != nil {
		return "", apperr.ErrUnavailable("history store unavailable", err)
	}
	if ev == nil || ev.Assignment == nil {
		// 初回割当。前保有者なしはエラーではない。
		return "", nil
	}
	return ev.Assignment.AssignedTo, nil
}

func (s *Service) loadAsset(ctx context.Context, id string) (*assets.Asset, error) {
	a, err := s.assets.Get(ctx, id)
	if err != nil {
		return nil, apperr.ErrUnavailable("asset store unavailable", err)
	}
	if a == nil {
		return nil, apperr.ErrNotFound("asset not found")
	}
	return a, nil
}
