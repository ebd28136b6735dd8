package history

import (
	"time"

	"ITPORTAL-backend/internal/asset_mgmt/assets"
	"ITPORTAL-backend/internal/users"
)

// NormalizedEvent is the caller-facing view of one history event. The two
// variants are flattened into a single shape; which fields are present
// follows from Type.
type NormalizedEvent struct {
	ID        string    `json:"id"`
	AssetID   string    `json:"asset_id"`
	Type      Kind      `json:"type"`
	CreatedAt time.Time `json:"created_at"`

	// assignment
	AssignedTo   *users.Ref `json:"assigned_to,omitempty"`
	HandoverDate *time.Time `json:"handover_date,omitempty"`
	AssignedBy   *users.Ref `json:"assigned_by,omitempty"`

	// status_change
	NewStatus      assets.Status `json:"new_status,omitempty"`
	PreviousStatus assets.Status `json:"previous_status,omitempty"`
	ChangedBy      *users.Ref    `json:"changed_by,omitempty"`
	ChangeDate     *time.Time    `json:"change_date,omitempty"`
	UnassignedDate *time.Time    `json:"unassigned_date,omitempty"`

	// both variants
	PreviousUser *users.Ref `json:"previous_user,omitempty"`
}
