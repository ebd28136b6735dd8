package history

import (
	"time"

	"ITPORTAL-backend/internal/asset_mgmt/assets"
)

// Kind is the immutable tag of a history event. It determines which variant
// struct is populated and never changes after the append.
type Kind string

const (
	KindAssignment   Kind = "assignment"
	KindStatusChange Kind = "status_change"
)

// Event は asset_history コレクションの1ドキュメント。追記専用で、
// 更新・削除の経路はコード上に存在しない。
// Kind に応じて Assignment / StatusChange のどちらか一方だけが入る。
type Event struct {
	ID        string    `bson:"_id"`
	AssetID   string    `bson:"asset_id"`
	CreatedAt time.Time `bson:"created_at"`
	Kind      Kind      `bson:"kind"`

	Assignment   *AssignmentFields   `bson:"assignment,omitempty"`
	StatusChange *StatusChangeFields `bson:"status_change,omitempty"`
}

type AssignmentFields struct {
	AssignedTo     string    `bson:"assigned_to"`
	PreviousUserID string    `bson:"previous_user,omitempty"`
	HandoverDate   time.Time `bson:"handover_date"`
	AssignedBy     string    `bson:"assigned_by"`
}

type StatusChangeFields struct {
	NewStatus      assets.Status `bson:"new_status"`
	PreviousStatus assets.Status `bson:"previous_status"`
	ChangedBy      string        `bson:"changed_by"`
	ChangeDate     time.Time     `bson:"change_date"`
	// 遷移で保有者が外れた場合のみ入る
	PreviousUserID string    `bson:"previous_user,omitempty"`
	UnassignedDate time.Time `bson:"unassigned_date,omitempty"`
}
