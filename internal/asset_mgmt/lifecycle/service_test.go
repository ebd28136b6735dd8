package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"ITPORTAL-backend/internal/asset_mgmt/assets"
	"ITPORTAL-backend/internal/asset_mgmt/history"
	"ITPORTAL-backend/internal/platform/apperr"
)

// ===== fakes =====

type fakeAssetStore struct {
	byID    map[string]*assets.Asset
	saveErr error
}

func newFakeAssetStore(items ...*assets.Asset) *fakeAssetStore {
	m := make(map[string]*assets.Asset)
	for _, a := range items {
		cp := *a
		m[a.ID] = &cp
	}
	return &fakeAssetStore{byID: m}
}

func (f *fakeAssetStore) Get(_ context.Context, id string) (*assets.Asset, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAssetStore) Save(_ context.Context, a *assets.Asset) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	cp := *a
	f.byID[a.ID] = &cp
	return nil
}

type fakeUserChecker struct{ ids map[string]bool }

func (f *fakeUserChecker) Exists(_ context.Context, id string) (bool, error) {
	return f.ids[id], nil
}

type fakeEventStore struct {
	events    []history.Event
	insertErr error
}

func (f *fakeEventStore) Insert(_ context.Context, e *history.Event) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.events = append(f.events, *e)
	return nil
}

func (f *fakeEventStore) ListByAsset(_ context.Context, assetID string) ([]history.Event, error) {
	var out []history.Event
	// 追記順の逆 = created_at 降順（クロックは単調増加）
	for i := len(f.events) - 1; i >= 0; i-- {
		if f.events[i].AssetID == assetID {
			out = append(out, f.events[i])
		}
	}
	return out, nil
}

func (f *fakeEventStore) LastAssignmentExcluding(_ context.Context, assetID, excludeUserID string) (*history.Event, error) {
	for i := len(f.events) - 1; i >= 0; i-- {
		e := f.events[i]
		if e.AssetID != assetID || e.Kind != history.KindAssignment {
			continue
		}
		if e.Assignment.AssignedTo == excludeUserID {
			continue
		}
		cp := e
		return &cp, nil
	}
	return nil, nil
}

type stepClock struct{ t time.Time }

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

type seqID struct{ n int }

func (g *seqID) NewULID(time.Time) string {
	g.n++
	return fmt.Sprintf("EV%04d", g.n)
}

func newTestService(assetStore *fakeAssetStore, events *fakeEventStore, userIDs ...string) *Service {
	ids := make(map[string]bool)
	for _, id := range userIDs {
		ids[id] = true
	}
	svc := NewService(assetStore, &fakeUserChecker{ids: ids}, events, history.NewWriter(events))
	svc.clock = &stepClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	svc.id = &seqID{}
	return svc
}

func freeAsset(id string) *assets.Asset {
	return &assets.Asset{
		ID:       id,
		Name:     "ThinkPad X1",
		Status:   assets.StatusFree,
		Quantity: 1,
	}
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// ===== assign =====

func TestAssignFirstEver(t *testing.T) {
	ctx := context.Background()
	as := newFakeAssetStore(freeAsset("A1"))
	es := &fakeEventStore{}
	svc := newTestService(as, es, "U1", "admin1")

	if err := svc.Assign(ctx, "A1", "U1", date("2024-01-10"), "admin1"); err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	a, _ := as.Get(ctx, "A1")
	if a.Status != assets.StatusUsing {
		t.Fatalf("status = %s, want using", a.Status)
	}
	if a.AssigneeID != "U1" {
		t.Fatalf("assignee = %q, want U1", a.AssigneeID)
	}
	if !a.HandoverDate.Equal(date("2024-01-10")) {
		t.Fatalf("handover date = %v", a.HandoverDate)
	}

	if len(es.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(es.events))
	}
	ev := es.events[0]
	if ev.Kind != history.KindAssignment {
		t.Fatalf("kind = %s", ev.Kind)
	}
	if ev.Assignment.AssignedTo != "U1" {
		t.Fatalf("assigned_to = %s", ev.Assignment.AssignedTo)
	}
	if ev.Assignment.PreviousUserID != "" {
		t.Fatalf("first assignment must have no previous user, got %q", ev.Assignment.PreviousUserID)
	}
	if ev.Assignment.AssignedBy != "admin1" {
		t.Fatalf("assigned_by = %s", ev.Assignment.AssignedBy)
	}
}

func TestAssignResolvesPreviousHolderFromLiveState(t *testing.T) {
	ctx := context.Background()
	as := newFakeAssetStore(freeAsset("A1"))
	es := &fakeEventStore{}
	svc := newTestService(as, es, "U1", "U2", "admin1")

	if err := svc.Assign(ctx, "A1", "U1", date("2024-01-10"), "admin1"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Assign(ctx, "A1", "U2", date("2024-02-01"), "admin1"); err != nil {
		t.Fatal(err)
	}

	if len(es.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(es.events))
	}
	second := es.events[1]
	if second.Assignment.AssignedTo != "U2" {
		t.Fatalf("assigned_to = %s", second.Assignment.AssignedTo)
	}
	if second.Assignment.PreviousUserID != "U1" {
		t.Fatalf("previous user = %q, want U1", second.Assignment.PreviousUserID)
	}
	// 既存イベントは不変
	if es.events[0].Assignment.AssignedTo != "U1" || es.events[0].Assignment.PreviousUserID != "" {
		t.Fatal("earlier event was mutated")
	}
}

func TestAssignFallsBackToHistoryWhenLiveStateMissing(t *testing.T) {
	ctx := context.Background()
	as := newFakeAssetStore(freeAsset("A1"))
	es := &fakeEventStore{}
	svc := newTestService(as, es, "U1", "U2", "admin1")

	if err := svc.Assign(ctx, "A1", "U1", date("2024-01-10"), "admin1"); err != nil {
		t.Fatal(err)
	}
	// 前回書き込み失敗の残骸を再現：ライブ状態から保有者が消えている
	a, _ := as.Get(ctx, "A1")
	a.ClearAssignment()
	a.Status = assets.StatusFree
	if err := as.Save(ctx, a); err != nil {
		t.Fatal(err)
	}

	if err := svc.Assign(ctx, "A1", "U2", date("2024-02-01"), "admin1"); err != nil {
		t.Fatal(err)
	}
	last := es.events[len(es.events)-1]
	if last.Assignment.PreviousUserID != "U1" {
		t.Fatalf("previous user = %q, want U1 (from history fallback)", last.Assignment.PreviousUserID)
	}
}

func TestAssignReassignToSameUserSkipsSelfInFallback(t *testing.T) {
	ctx := context.Background()
	as := newFakeAssetStore(freeAsset("A1"))
	es := &fakeEventStore{}
	svc := newTestService(as, es, "U1", "U2", "admin1")

	if err := svc.Assign(ctx, "A1", "U1", date("2024-01-10"), "admin1"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Assign(ctx, "A1", "U2", date("2024-02-01"), "admin1"); err != nil {
		t.Fatal(err)
	}
	// U2→U2 の再割当。ライブ状態の保有者が新保有者と同じなので履歴へ落ち、
	// 自分自身は除外されて U1 が返る。
	if err := svc.Assign(ctx, "A1", "U2", date("2024-03-01"), "admin1"); err != nil {
		t.Fatal(err)
	}
	last := es.events[len(es.events)-1]
	if last.Assignment.PreviousUserID != "U1" {
		t.Fatalf("previous user = %q, want U1", last.Assignment.PreviousUserID)
	}
}

func TestAssignUnknownAssetOrUser(t *testing.T) {
	ctx := context.Background()
	as := newFakeAssetStore(freeAsset("A1"))
	es := &fakeEventStore{}
	svc := newTestService(as, es, "U1", "admin1")

	err := svc.Assign(ctx, "NOPE", "U1", date("2024-01-10"), "admin1")
	if apperr.CodeOf(err) != apperr.CodeNotFound {
		t.Fatalf("want NOT_FOUND for unknown asset, got %v", err)
	}

	err = svc.Assign(ctx, "A1", "GHOST", date("2024-01-10"), "admin1")
	if apperr.CodeOf(err) != apperr.CodeNotFound {
		t.Fatalf("want NOT_FOUND for unknown user, got %v", err)
	}
	if len(es.events) != 0 {
		t.Fatalf("no events may be written on failed preconditions, got %d", len(es.events))
	}
}

func TestAssignPartialWriteWhenHistoryAppendFails(t *testing.T) {
	ctx := context.Background()
	as := newFakeAssetStore(freeAsset("A1"))
	es := &fakeEventStore{insertErr: errors.New("mongo down")}
	svc := newTestService(as, es, "U1", "admin1")

	err := svc.Assign(ctx, "A1", "U1", date("2024-01-10"), "admin1")
	if apperr.CodeOf(err) != apperr.CodePartialWrite {
		t.Fatalf("want PARTIAL_WRITE, got %v", err)
	}
	// 資産側の書き込みは成立したまま
	a, _ := as.Get(ctx, "A1")
	if a.AssigneeID != "U1" {
		t.Fatalf("asset write should have landed, assignee = %q", a.AssigneeID)
	}
}

func TestAssignPersistenceErrorWhenAssetSaveFails(t *testing.T) {
	ctx := context.Background()
	as := newFakeAssetStore(freeAsset("A1"))
	as.saveErr = errors.New("timeout")
	es := &fakeEventStore{}
	svc := newTestService(as, es, "U1", "admin1")

	err := svc.Assign(ctx, "A1", "U1", date("2024-01-10"), "admin1")
	if apperr.CodeOf(err) != apperr.CodeUnavailable {
		t.Fatalf("want UNAVAILABLE, got %v", err)
	}
	if len(es.events) != 0 {
		t.Fatal("history must not be written when the asset save failed")
	}
}

// ===== changeStatus =====

func TestChangeStatusKeepsHolderWhenNotEnteringFree(t *testing.T) {
	ctx := context.Background()
	as := newFakeAssetStore(freeAsset("A1"))
	es := &fakeEventStore{}
	svc := newTestService(as, es, "U2", "admin1")

	if err := svc.Assign(ctx, "A1", "U2", date("2024-02-01"), "admin1"); err != nil {
		t.Fatal(err)
	}
	if err := svc.ChangeStatus(ctx, "A1", assets.StatusMaintenance, "admin1"); err != nil {
		t.Fatal(err)
	}

	a, _ := as.Get(ctx, "A1")
	if a.Status != assets.StatusMaintenance {
		t.Fatalf("status = %s", a.Status)
	}
	if a.AssigneeID != "U2" || a.HandoverDate.IsZero() {
		t.Fatal("assignee/handover must be untouched when not entering free")
	}

	ev := es.events[len(es.events)-1]
	if ev.Kind != history.KindStatusChange {
		t.Fatalf("kind = %s", ev.Kind)
	}
	sc := ev.StatusChange
	if sc.NewStatus != assets.StatusMaintenance || sc.PreviousStatus != assets.StatusUsing {
		t.Fatalf("transition = %s -> %s", sc.PreviousStatus, sc.NewStatus)
	}
	if sc.PreviousUserID != "" || !sc.UnassignedDate.IsZero() {
		t.Fatal("no holder release fields expected")
	}
}

func TestChangeStatusEnteringFreeReleasesHolder(t *testing.T) {
	ctx := context.Background()
	as := newFakeAssetStore(freeAsset("A1"))
	es := &fakeEventStore{}
	svc := newTestService(as, es, "U2", "admin1")

	if err := svc.Assign(ctx, "A1", "U2", date("2024-02-01"), "admin1"); err != nil {
		t.Fatal(err)
	}
	if err := svc.ChangeStatus(ctx, "A1", assets.StatusMaintenance, "admin1"); err != nil {
		t.Fatal(err)
	}
	if err := svc.ChangeStatus(ctx, "A1", assets.StatusFree, "admin1"); err != nil {
		t.Fatal(err)
	}

	a, _ := as.Get(ctx, "A1")
	if a.Status != assets.StatusFree {
		t.Fatalf("status = %s", a.Status)
	}
	if a.AssigneeID != "" || !a.HandoverDate.IsZero() {
		t.Fatal("entering free must clear assignee and handover date")
	}

	sc := es.events[len(es.events)-1].StatusChange
	if sc.NewStatus != assets.StatusFree || sc.PreviousStatus != assets.StatusMaintenance {
		t.Fatalf("transition = %s -> %s", sc.PreviousStatus, sc.NewStatus)
	}
	if sc.PreviousUserID != "U2" {
		t.Fatalf("previous user = %q, want U2", sc.PreviousUserID)
	}
	if sc.UnassignedDate.IsZero() {
		t.Fatal("unassigned date must be set when a holder was released")
	}
}

func TestChangeStatusEnteringFreeWithoutHolder(t *testing.T) {
	ctx := context.Background()
	a := freeAsset("A1")
	a.Status = assets.StatusMaintenance
	as := newFakeAssetStore(a)
	es := &fakeEventStore{}
	svc := newTestService(as, es, "admin1")

	if err := svc.ChangeStatus(ctx, "A1", assets.StatusFree, "admin1"); err != nil {
		t.Fatal(err)
	}
	sc := es.events[0].StatusChange
	if sc.PreviousUserID != "" || !sc.UnassignedDate.IsZero() {
		t.Fatal("no release fields expected when nobody held the asset")
	}
}

func TestChangeStatusArbitraryJumpsAllowed(t *testing.T) {
	ctx := context.Background()
	as := newFakeAssetStore(freeAsset("A1"))
	es := &fakeEventStore{}
	svc := newTestService(as, es, "admin1")

	// 隣接制限なし：free→retired→maintenance→free すべて通る
	for _, st := range []assets.Status{assets.StatusRetired, assets.StatusMaintenance, assets.StatusFree} {
		if err := svc.ChangeStatus(ctx, "A1", st, "admin1"); err != nil {
			t.Fatalf("transition to %s rejected: %v", st, err)
		}
	}
	if len(es.events) != 3 {
		t.Fatalf("expected one event per call, got %d", len(es.events))
	}
}

func TestChangeStatusInvalidEnum(t *testing.T) {
	ctx := context.Background()
	as := newFakeAssetStore(freeAsset("A1"))
	es := &fakeEventStore{}
	svc := newTestService(as, es, "admin1")

	err := svc.ChangeStatus(ctx, "A1", assets.Status("broken"), "admin1")
	if apperr.CodeOf(err) != apperr.CodeInvalidArgument {
		t.Fatalf("want INVALID_ARGUMENT, got %v", err)
	}
	if len(es.events) != 0 {
		t.Fatal("no event may be appended for a rejected status")
	}
}

func TestEventCountMatchesOperationCount(t *testing.T) {
	ctx := context.Background()
	as := newFakeAssetStore(freeAsset("A1"))
	es := &fakeEventStore{}
	svc := newTestService(as, es, "U1", "U2", "admin1")

	ops := 0
	if err := svc.Assign(ctx, "A1", "U1", date("2024-01-10"), "admin1"); err != nil {
		t.Fatal(err)
	}
	ops++
	if err := svc.ChangeStatus(ctx, "A1", assets.StatusMaintenance, "admin1"); err != nil {
		t.Fatal(err)
	}
	ops++
	if err := svc.Assign(ctx, "A1", "U2", date("2024-02-01"), "admin1"); err != nil {
		t.Fatal(err)
	}
	ops++
	if err := svc.ChangeStatus(ctx, "A1", assets.StatusFree, "admin1"); err != nil {
		t.Fatal(err)
	}
	ops++

	if len(es.events) != ops {
		t.Fatalf("events = %d, ops = %d", len(es.events), ops)
	}

	// created_at は厳密に降順で読める
	list, _ := es.ListByAsset(ctx, "A1")
	for i := 1; i < len(list); i++ {
		if !list[i].CreatedAt.Before(list[i-1].CreatedAt) {
			t.Fatalf("created_at not strictly descending at %d", i)
		}
	}
}
