package assets

import "time"

// Status は資産の現在状態。4値は排他なラベルで、遷移の隣接制限は置かない。
// 「free へ入るとき保有者を必ず解除する」だけがルール（lifecycle側で適用）。
type Status string

const (
	StatusFree        Status = "free"
	StatusUsing       Status = "using"
	StatusMaintenance Status = "maintenance"
	StatusRetired     Status = "retired"
)

func (s Status) Valid() bool {
	switch s {
	case StatusFree, StatusUsing, StatusMaintenance, StatusRetired:
		return true
	}
	return false
}

// Asset は assets コレクションの1ドキュメント。
// AssigneeID と HandoverDate は両方セットか両方ゼロ値。
// free へ入る遷移で必ずクリアされる（maintenance/retired では保持）。
type Asset struct {
	ID           string    `bson:"_id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	CategoryID   string    `bson:"category_id" json:"category_id"`
	SerialNumber string    `bson:"serial_number" json:"serial_number"`
	Status       Status    `bson:"status" json:"status"`
	Quantity     int       `bson:"quantity" json:"quantity"`
	Remark       string    `bson:"remark,omitempty" json:"remark,omitempty"`
	AssigneeID   string    `bson:"assignee_id,omitempty" json:"assignee_id,omitempty"`
	HandoverDate time.Time `bson:"handover_date,omitempty" json:"handover_date,omitempty"`
	CreatedBy    string    `bson:"created_by,omitempty" json:"created_by,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// Assigned reports whether the asset currently has a holder.
func (a *Asset) Assigned() bool { return a.AssigneeID != "" }

// ClearAssignment releases the holder. Called whenever the asset leaves "using"
// into "free", regardless of what the caller intended.
func (a *Asset) ClearAssignment() {
	a.AssigneeID = ""
	a.HandoverDate = time.Time{}
}

// 検索条件
type SearchQuery struct {
	CategoryID *string
	Status     *Status
	AssigneeID *string
	Keyword    *string // name / serial_number / remark の部分一致
}
