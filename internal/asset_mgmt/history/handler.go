package history

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"ITPORTAL-backend/internal/asset_mgmt/assets"
	"ITPORTAL-backend/internal/platform/apperr"
	"ITPORTAL-backend/internal/platform/auth"
	"ITPORTAL-backend/internal/platform/metrics"
)

// AssetReader is the lookup the permission gate needs: history is visible to
// admins and to the asset's current assignee only.
type AssetReader interface {
	Get(ctx context.Context, id string) (*assets.Asset, error)
}

type Handler struct {
	svc    *QueryService
	assets AssetReader
}

func RegisterRoutes(authed gin.IRoutes, svc *QueryService, assetReader AssetReader) {
	h := &Handler{svc: svc, assets: assetReader}
	authed.GET("/assets/:asset_id/history", h.GetHistory)
}

func (h *Handler) GetHistory(c *gin.Context) {
	assetID := c.Param("asset_id")

	a, err := h.assets.Get(c.Request.Context(), assetID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, apiErr(apperr.CodeUnavailable, "asset store unavailable"))
		return
	}
	if a == nil {
		c.JSON(http.StatusNotFound, apiErr(apperr.CodeNotFound, "asset not found"))
		return
	}

	if !auth.IsAdmin(c) && a.AssigneeID != auth.UserID(c) {
		c.JSON(http.StatusForbidden, apiErr(apperr.Code("FORBIDDEN"), "history is visible to admins and the current assignee"))
		return
	}

	metrics.OpsTotal.WithLabelValues("get_history").Inc()
	items, err := h.svc.GetHistory(c.Request.Context(), assetID)
	if err != nil {
		metrics.OpErrorsTotal.WithLabelValues("get_history", string(apperr.CodeOf(err))).Inc()
		c.JSON(apperr.ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
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
