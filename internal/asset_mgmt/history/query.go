package history

import (
	"context"

	"ITPORTAL-backend/internal/platform/apperr"
	"ITPORTAL-backend/internal/users"
)

// NameResolver maps user ids to display references. Missing referents come
// back as the "Unknown User" sentinel, never as an error.
type NameResolver interface {
	Resolve(ctx context.Context, id string) users.Ref
}

// QueryService reconstructs the audit trail for one asset. Each call re-reads
// the full event set; per-asset history is short, so there is no cursor.
type QueryService struct {
	store    EventStore
	resolver NameResolver
}

func NewQueryService(store EventStore, resolver NameResolver) *QueryService {
	return &QueryService{store: store, resolver: resolver}
}

// GetHistory returns the asset's events, most recent first. An asset with no
// events yields an empty slice, not an error.
func (q *QueryService) GetHistory(ctx context.Context, assetID string) ([]NormalizedEvent, error) {
	if assetID == "" {
		return nil, apperr.ErrInvalid("asset id is required")
	}

	events, err := q.store.ListByAsset(ctx, assetID)
	if err != nil {
		return nil, apperr.ErrUnavailable("history store unavailable", err)
	}

	out := make([]NormalizedEvent, 0, len(events))
	for i := range events {
		n, err := q.normalize(ctx, &events[i])
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (q *QueryService) normalize(ctx context.Context, e *Event) (NormalizedEvent, error) {
	n := NormalizedEvent{
		ID:        e.ID,
		AssetID:   e.AssetID,
		Type:      e.Kind,
		CreatedAt: e.CreatedAt,
	}

	switch e.Kind {
	case KindAssignment:
		if e.Assignment == nil {
			return NormalizedEvent{}, apperr.ErrInternal("assignment event without assignment fields")
		}
		a := e.Assignment
		n.AssignedTo = q.ref(ctx, a.AssignedTo)
		n.AssignedBy = q.ref(ctx, a.AssignedBy)
		if a.PreviousUserID != "" {
			n.PreviousUser = q.ref(ctx, a.PreviousUserID)
		}
		hd := a.HandoverDate
		n.HandoverDate = &hd

	case KindStatusChange:
		if e.StatusChange == nil {
			return NormalizedEvent{}, apperr.ErrInternal("status_change event without status_change fields")
		}
		sc := e.StatusChange
		n.NewStatus = sc.NewStatus
		n.PreviousStatus = sc.PreviousStatus
		n.ChangedBy = q.ref(ctx, sc.ChangedBy)
		cd := sc.ChangeDate
		n.ChangeDate = &cd
		if sc.PreviousUserID != "" {
			n.PreviousUser = q.ref(ctx, sc.PreviousUserID)
			ud := sc.UnassignedDate
			n.UnassignedDate = &ud
		}

	default:
		return NormalizedEvent{}, apperr.ErrInternal("unknown history event kind")
	}

	return n, nil
}

func (q *QueryService) ref(ctx context.Context, id string) *users.Ref {
	r := q.resolver.Resolve(ctx, id)
	return &r
}
