package auth

import (
	"pairtalk/internal/httpx"
	"pairtalk/internal/secconfig"

	"github.com/gin-gonic/gin"
)

// Me handles GET /api/auth/me, returning the profile behind the session
func (h *Handler) Me(c *gin.Context) {
	uid, ok := c.Get("uid")
	if !ok {
		httpx.FailErr(c, httpx.ErrUnauthorized("missing session"))
		return
	}

	acct, err := h.accounts.FindByID(uid.(int))
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("", err))
		return
	}
	if acct == nil {
		httpx.FailErr(c, httpx.ErrNotFound("account not found"))
		return
	}
	httpx.OK(c, acct)
}

// CheckPaywall handles POST /api/auth/check-paywall. Public: clients call
// it as soon as they know the visitor's email to decide whether to render
// the purchase screen. When the paywall gate is off everyone has access.
func (h *Handler) CheckPaywall(c *gin.Context) {
	var req CheckPaywallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing("email is required"))
		return
	}

	cfg, err := h.config.Get()
	if err != nil {
		httpx.FailErr(c, httpx.ErrInternalError("", err))
		return
	}
	if !secconfig.Gates(cfg).Paywall {
		httpx.OK(c, gin.H{
			"hasAccess":      true,
			"paywallEnabled": false,
		})
		return
	}

	has, err := h.paywall.HasMembership(req.Email)
	if err != nil {
		// Fail closed: an unreadable membership table grants nothing
		httpx.FailErr(c, httpx.ErrDatabaseError("", err))
		return
	}
	httpx.OK(c, gin.H{
		"hasAccess":      has,
		"paywallEnabled": true,
		"title":          cfg.PaywallTitle,
		"message":        cfg.PaywallMessage,
		"links":          cfg.PaywallLinks,
	})
}
