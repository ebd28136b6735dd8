package users

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ITPORTAL-backend/internal/platform/apperr"
	"ITPORTAL-backend/internal/platform/auth"
)

// AccountRemover removes the login account together with the directory user.
// Implemented by the auth service; both rows share the same id.
type AccountRemover interface {
	Delete(ctx context.Context, id string) error
}

type Handler struct {
	svc      *Service
	accounts AccountRemover
}

// RegisterRoutes: ディレクトリ管理は admin 専用（routerは上位でRequireRole済み）
func RegisterRoutes(r gin.IRoutes, svc *Service, accounts AccountRemover) {
	h := &Handler{svc: svc, accounts: accounts}
	r.GET("/users", h.List)
	r.GET("/users/:user_id", h.Get)
	r.PUT("/users/:user_id", h.Update)
	r.DELETE("/users/:user_id", h.Delete)
}

func (h *Handler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	if items == nil {
		items = []User{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

func (h *Handler) Get(c *gin.Context) {
	u, err := h.svc.Get(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, u)
}

type UpdateUserRequest struct {
	Fullname *string `json:"fullname,omitempty"`
	Email    *string `json:"email,omitempty"`
	Role     *string `json:"role,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiErr(apperr.CodeInvalidArgument, "invalid json"))
		return
	}
	u, err := h.svc.Update(c.Request.Context(), c.Param("user_id"), UpdateUserInput{
		Fullname: req.Fullname,
		Email:    req.Email,
		Role:     req.Role,
		Active:   req.Active,
	})
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, u)
}

// Delete removes the login account and the directory document. History events
// referencing the id stay; later reads render the name as UnknownUserName.
func (h *Handler) Delete(c *gin.Context) {
	if err := h.accounts.Delete(c.Request.Context(), c.Param("user_id")); err != nil {
		if errors.Is(err, auth.ErrNotFound) || apperr.CodeOf(err) == apperr.CodeNotFound {
			c.JSON(http.StatusNotFound, apiErr(apperr.CodeNotFound, "user not found"))
			return
		}
		c.JSON(apperr.ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
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
