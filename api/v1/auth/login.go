package auth

import (
	"context"

	"pairtalk/internal/accounts"
	"pairtalk/internal/auth"
	"pairtalk/internal/httpx"
	"pairtalk/internal/secconfig"

	"github.com/gin-gonic/gin"
)

// ValidatePin handles POST /api/auth/validate-pin
func (h *Handler) ValidatePin(c *gin.Context) {
	h.verifyPin(c, false)
}

// AdminLogin handles POST /api/auth/admin-login. Same verification as
// ValidatePin, but the account must hold the persisted admin flag: a
// correct PIN on a non-admin account is still refused.
func (h *Handler) AdminLogin(c *gin.Context) {
	h.verifyPin(c, true)
}

func (h *Handler) verifyPin(c *gin.Context, requireAdmin bool) {
	var req PinLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing("pin is required"))
		return
	}

	ctx := c.Request.Context()
	email := accounts.NormalizeEmail(req.Email)
	ip := c.ClientIP()

	// Rate limiting comes first, keyed by the submitted email when there
	// is one and the caller address otherwise. A limited caller learns
	// nothing else about the account.
	key := email
	if key == "" {
		key = ip
	}
	limited, err := h.limiter.TooManyRecent(ctx, key)
	if err != nil {
		httpx.FailErr(c, httpx.ErrInternalError("", err))
		return
	}
	if limited {
		httpx.FailErr(c, httpx.ErrRateLimited(""))
		return
	}

	if email == "" {
		httpx.FailErr(c, httpx.ErrParamMissing("email is required"))
		return
	}

	cfg, err := h.config.Get()
	if err != nil {
		httpx.FailErr(c, httpx.ErrInternalError("", err))
		return
	}
	if appErr := h.requireMembership(secconfig.Gates(cfg).Paywall, email); appErr != nil {
		httpx.FailErr(c, appErr)
		return
	}

	acct, err := h.accounts.FindByEmail(email)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("", err))
		return
	}
	if acct == nil {
		h.countFailure(ctx, key)
		h.audit(nil, email, false, ip, "unknown account")
		httpx.FailErr(c, httpx.ErrNotFound("account not found"))
		return
	}
	if !acct.HasPin() {
		h.audit(&acct.ID, email, false, ip, "no pin set")
		httpx.FailErr(c, httpx.ErrStateConflict("no pin set, create one first"))
		return
	}

	if err := auth.ComparePin(acct.PinHash, req.Pin); err != nil {
		h.countFailure(ctx, key)
		h.audit(&acct.ID, email, false, ip, "wrong pin")
		httpx.FailErr(c, httpx.ErrUnauthorized("invalid credentials"))
		return
	}

	if requireAdmin && !acct.IsAdmin {
		// The PIN was right, so this does not count toward the
		// brute-force limit. It is still audited.
		h.audit(&acct.ID, email, false, ip, "admin login refused")
		httpx.FailErr(c, httpx.ErrForbidden("admin access required"))
		return
	}

	if err := h.limiter.Reset(ctx, key); err != nil {
		h.log.WithError(err).Warn("failed to reset rate limiter")
	}
	note := "pin login"
	if requireAdmin {
		note = "admin login"
	}
	h.finishLogin(c, acct, note)
}

// countFailure records a failed attempt against the limiter key. Limiter
// errors are logged, not surfaced: the caller already has an error to send.
func (h *Handler) countFailure(ctx context.Context, key string) {
	if err := h.limiter.AddFailure(ctx, key); err != nil {
		h.log.WithError(err).Warn("failed to record limiter failure")
	}
}
