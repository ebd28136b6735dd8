package assets

import "time"

// ===== Requests =====

type CreateAssetRequest struct {
	Name         string  `json:"name" binding:"required"`
	CategoryID   string  `json:"category_id" binding:"required"`
	SerialNumber string  `json:"serial_number" binding:"required"`
	Status       string  `json:"status" binding:"required"`
	Quantity     int     `json:"quantity" binding:"required"`
	Remark       *string `json:"remark,omitempty"`
}

type UpdateAssetRequest struct {
	Name         *string `json:"name,omitempty"`
	CategoryID   *string `json:"category_id,omitempty"`
	SerialNumber *string `json:"serial_number,omitempty"`
	Quantity     *int    `json:"quantity,omitempty"`
	Remark       *string `json:"remark,omitempty"`
}

// ===== Responses =====

type AssetResponse struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	CategoryID   string     `json:"category_id"`
	SerialNumber string     `json:"serial_number"`
	Status       Status     `json:"status"`
	Quantity     int        `json:"quantity"`
	Remark       *string    `json:"remark,omitempty"`
	AssigneeID   *string    `json:"assignee_id,omitempty"`
	HandoverDate *time.Time `json:"handover_date,omitempty"`
	CreatedBy    *string    `json:"created_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func buildAssetResponse(a *Asset) AssetResponse {
	resp := AssetResponse{
		ID:           a.ID,
		Name:         a.Name,
		CategoryID:   a.CategoryID,
		SerialNumber: a.SerialNumber,
		Status:       a.Status,
		Quantity:     a.Quantity,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
	if a.Remark != "" {
		val := a.Remark
		resp.Remark = &val
	}
	if a.AssigneeID != "" {
		val := a.AssigneeID
		resp.AssigneeID = &val
	}
	if !a.HandoverDate.IsZero() {
		val := a.HandoverDate
		resp.HandoverDate = &val
	}
	if a.CreatedBy != "" {
		val := a.CreatedBy
		resp.CreatedBy = &val
	}
	return resp
}
