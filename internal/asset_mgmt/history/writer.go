package history

import (
	"context"

	"ITPORTAL-backend/internal/platform/apperr"
)

// Writer appends immutable history events. Pure insert; validation is limited
// to the variant shapes.
type Writer struct {
	store EventStore
}

func NewWriter(store EventStore) *Writer {
	return &Writer{store: store}
}

func (w *Writer) Append(ctx context.Context, e *Event) error {
	if e.ID == "" || e.AssetID == "" || e.CreatedAt.IsZero() {
		return apperr.ErrInvalid("history event requires id, asset_id and created_at")
	}
	switch e.Kind {
	case KindAssignment:
		if e.Assignment == nil || e.StatusChange != nil {
			return apperr.ErrInvalid("assignment event must carry exactly the assignment fields")
		}
		if e.Assignment.AssignedTo == "" || e.Assignment.AssignedBy == "" {
			return apperr.ErrInvalid("assignment event requires assigned_to and assigned_by")
		}
	case KindStatusChange:
		if e.StatusChange == nil || e.Assignment != nil {
			return apperr.ErrInvalid("status_change event must carry exactly the status_change fields")
		}
		if !e.StatusChange.NewStatus.Valid() {
			return apperr.ErrInvalid("status_change event requires a valid new_status")
		}
	default:
		return apperr.ErrInvalid("unknown history event kind")
	}

	if err := w.store.Insert(ctx, e); err != nil {
		return apperr.ErrUnavailable("history store unavailable", err)
	}
	return nil
}
