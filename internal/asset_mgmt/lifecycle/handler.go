package lifecycle

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ITPORTAL-backend/internal/asset_mgmt/assets"
	"ITPORTAL-backend/internal/platform/apperr"
	"ITPORTAL-backend/internal/platform/auth"
	"ITPORTAL-backend/internal/platform/metrics"
)

type Handler struct{ svc *Service }

// RegisterRoutes: 割当・状態変更は admin 専用（上位でRequireRole済み）
func RegisterRoutes(adminOnly gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	adminOnly.POST("/assets/:asset_id/assign", h.Assign)
	adminOnly.POST("/assets/:asset_id/status", h.ChangeStatus)
}

type AssignRequest struct {
	UserID string `json:"user_id" binding:"required"`
	// "2006-01-02" 形式の文字列を想定（DATE）
	HandoverDate string `json:"handover_date" binding:"required"`
}

func (h *Handler) Assign(c *gin.Context) {
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiErr(apperr.CodeInvalidArgument, "invalid json"))
		return
	}

	handoverDate, err := time.Parse("2006-01-02", req.HandoverDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, apiErr(apperr.CodeInvalidArgument, "invalid handover_date format, expected YYYY-MM-DD"))
		return
	}

	metrics.OpsTotal.WithLabelValues("assign").Inc()
	err = h.svc.Assign(c.Request.Context(), c.Param("asset_id"), req.UserID, handoverDate, auth.UserID(c))
	if err != nil {
		metrics.OpErrorsTotal.WithLabelValues("assign", string(apperr.CodeOf(err))).Inc()
		c.JSON(apperr.ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "assigned"})
}

type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) ChangeStatus(c *gin.Context) {
	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiErr(apperr.CodeInvalidArgument, "invalid json"))
		return
	}

	metrics.OpsTotal.WithLabelValues("change_status").Inc()
	err := h.svc.ChangeStatus(c.Request.Context(), c.Param("asset_id"), assets.Status(req.Status), auth.UserID(c))
	if err != nil {
		metrics.OpErrorsTotal.WithLabelValues("change_status", string(apperr.CodeOf(err))).Inc()
		c.JSON(apperr.ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "status changed"})
}

// ===== helpers =====

type errDTO struct {
	Error struct {
		Code    apperr.Code `json:"code"`
		Message string      `json:"message"`
	} `json:"error"`
}

func apiErr(code apperr.Code, msg string) errDTO {
	var e errDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

func apiErrFrom(err error) errDTO {
	return apiErr(apperr.CodeOf(err), err.Error())
}
