package assets

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ITPORTAL-backend/internal/platform/apperr"
	"ITPORTAL-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

// RegisterRoutes: 閲覧系は認証のみ、登録・変更・削除・一覧・エクスポートは admin
func RegisterRoutes(authed gin.IRoutes, adminOnly gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	adminOnly.GET("/assets", h.List)
	adminOnly.POST("/assets", h.Create)
	adminOnly.GET("/assets/export.csv", h.ExportCSV)
	adminOnly.PUT("/assets/:asset_id", h.Update)
	adminOnly.DELETE("/assets/:asset_id", h.Delete)
	adminOnly.GET("/users/:user_id/assets", h.ListForUserID)

	authed.GET("/assets/mine", h.ListMine)
	authed.GET("/assets/:asset_id", h.Get)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiErr(apperr.CodeInvalidArgument, "invalid json"))
		return
	}
	res, err := h.svc.Create(c.Request.Context(), req, auth.UserID(c))
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.Header("Location", "/assets/"+res.ID)
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) Get(c *gin.Context) {
	res, err := h.svc.Get(c.Request.Context(), c.Param("asset_id"))
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) List(c *gin.Context) {
	q := parseSearchQuery(c)
	items, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

func (h *Handler) ListMine(c *gin.Context) {
	items, err := h.svc.ListForUser(c.Request.Context(), auth.UserID(c))
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

func (h *Handler) ListForUserID(c *gin.Context) {
	items, err := h.svc.ListForUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiErr(apperr.CodeInvalidArgument, "invalid json"))
		return
	}
	res, err := h.svc.Update(c.Request.Context(), c.Param("asset_id"), req)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("asset_id")); err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// ===== helpers =====

func parseSearchQuery(c *gin.Context) SearchQuery {
	var q SearchQuery
	if v := c.Query("category_id"); v != "" {
		q.CategoryID = &v
	}
	if v := c.Query("status"); v != "" {
		st := Status(v)
		q.Status = &st
	}
	if v := c.Query("assignee_id"); v != "" {
		q.AssigneeID = &v
	}
	if v := c.Query("q"); v != "" {
		q.Keyword = &v
	}
	return q
}

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
