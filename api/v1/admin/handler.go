// Package admin implements the dashboard management endpoints: account
// listing and removal, the login audit trail, and manual paid-membership
// management.
package admin

import (
	"time"

	"pairtalk/internal/accounts"
	"pairtalk/internal/httpx"
	"pairtalk/internal/paywall"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler handles admin management requests
type Handler struct {
	accounts *accounts.Service
	paywall  *paywall.Service
}

// NewHandler creates a new admin handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		accounts: accounts.NewService(db),
		paywall:  paywall.NewService(db),
	}
}

type pageRequest struct {
	Page     int `form:"page"`
	PageSize int `form:"pageSize"`
}

func (r *pageRequest) defaults() {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PageSize < 1 || r.PageSize > 100 {
		r.PageSize = 20
	}
}

// ListUsers handles GET /api/admin/users
func (h *Handler) ListUsers(c *gin.Context) {
	var req pageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}
	req.defaults()

	accts, total, err := h.accounts.List(req.Page, req.PageSize)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("query failed", err))
		return
	}
	httpx.OKItems(c, accts, total, req.Page, req.PageSize)
}

type userURI struct {
	ID int `uri:"id" binding:"required"`
}

// DeleteUser handles DELETE /api/admin/users/:id. Removes the account
// together with its membership and login history.
func (h *Handler) DeleteUser(c *gin.Context) {
	var uri userURI
	if err := c.ShouldBindUri(&uri); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}

	acct, err := h.accounts.FindByID(uri.ID)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("query failed", err))
		return
	}
	if acct == nil {
		httpx.FailErr(c, httpx.ErrNotFound("account not found"))
		return
	}

	if err := h.accounts.DeleteCascade(acct); err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("delete failed", err))
		return
	}
	httpx.OKMsg(c, "account deleted", gin.H{"id": acct.ID})
}

// ListAttempts handles GET /api/admin/login-attempts, newest first
func (h *Handler) ListAttempts(c *gin.Context) {
	var req pageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}
	req.defaults()

	attempts, total, err := h.accounts.ListAttempts(req.Page, req.PageSize)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("query failed", err))
		return
	}
	httpx.OKItems(c, attempts, total, req.Page, req.PageSize)
}

// ListMemberships handles GET /api/admin/memberships
func (h *Handler) ListMemberships(c *gin.Context) {
	var req pageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}
	req.defaults()

	members, total, err := h.paywall.List(req.Page, req.PageSize)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("query failed", err))
		return
	}
	httpx.OKItems(c, members, total, req.Page, req.PageSize)
}

// CreateMembershipRequest grants a membership by hand, outside the
// payment webhook
type CreateMembershipRequest struct {
	Email  string `json:"email" binding:"required"`
	Plan   string `json:"plan"`
	Amount string `json:"amount"`
	Coupon string `json:"coupon"`
}

// CreateMembership handles POST /api/admin/memberships
func (h *Handler) CreateMembership(c *gin.Context) {
	var req CreateMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing("email is required"))
		return
	}

	created, err := h.paywall.Register(req.Email, req.Plan, req.Amount, req.Coupon, time.Now())
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to create membership", err))
		return
	}
	if !created {
		httpx.FailErr(c, httpx.ErrAlreadyExists("membership already exists"))
		return
	}
	httpx.OKMsg(c, "membership created", nil)
}

type membershipURI struct {
	Email string `uri:"email" binding:"required"`
}

// DeleteMembership handles DELETE /api/admin/memberships/:email
func (h *Handler) DeleteMembership(c *gin.Context) {
	var uri membershipURI
	if err := c.ShouldBindUri(&uri); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}

	if err := h.paywall.Delete(uri.Email); err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("delete failed", err))
		return
	}
	httpx.OKMsg(c, "membership deleted", nil)
}
