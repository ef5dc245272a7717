package auth

import (
	"pairtalk/internal/accounts"
	"pairtalk/internal/gate"
	"pairtalk/internal/httpx"
	"pairtalk/internal/secconfig"
	"pairtalk/internal/validation"

	"github.com/gin-gonic/gin"
)

// Validate handles POST /api/auth/validate. The embedding host's asserted
// identity comes in, and the outcome tells the client which screen to show
// next: PIN creation, PIN entry, or straight into the app.
func (h *Handler) Validate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing("user is required"))
		return
	}
	if appErr := checkAsserted(req.User, h.now()); appErr != nil {
		httpx.FailErr(c, appErr)
		return
	}

	cfg, err := h.config.Get()
	if err != nil {
		httpx.FailErr(c, httpx.ErrInternalError("", err))
		return
	}
	gates := secconfig.Gates(cfg)
	email := accounts.NormalizeEmail(req.User.Email)
	ip := c.ClientIP()

	// Paywall is checked before any outcome is computed. On lookup failure
	// access is denied, not granted.
	if gates.Paywall {
		has, err := h.paywall.HasMembership(email)
		if err != nil {
			httpx.FailErr(c, httpx.ErrDatabaseError("", err))
			return
		}
		if !has {
			httpx.FailErr(c, httpx.ErrPaywallBlocked(""))
			return
		}
	}

	acct, err := h.accounts.FindByEmail(email)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("", err))
		return
	}

	status := gate.Next(gates, gate.Facts{
		AccountExists: acct != nil,
		HasPin:        acct != nil && acct.HasPin(),
	})

	if status == gate.StatusNewUser {
		token, err := h.tokens.Create(c.Request.Context(), validation.Identity{
			Email:      email,
			ExternalID: req.User.PublicUID,
			Name:       req.User.Name,
			IsAdmin:    req.User.IsAdmin,
		})
		if err != nil {
			httpx.FailErr(c, httpx.ErrInternalError("failed to issue validation token", err))
			return
		}
		httpx.OK(c, ValidateResponse{
			Status:          string(gate.StatusNewUser),
			ValidationToken: token,
			PinRequired:     gates.Pin,
			IsAdmin:         req.User.IsAdmin,
		})
		return
	}

	// The embedding host may reissue a different public uid for the same
	// email. Email wins: adopt the new uid and audit the change.
	if acct.ExternalID != req.User.PublicUID {
		if err := h.accounts.ReissueExternalID(acct, req.User.PublicUID, ip); err != nil {
			httpx.FailErr(c, httpx.ErrDatabaseError("", err))
			return
		}
	}

	// The asserted admin flag can promote a known account, never demote it
	effectiveAdmin := acct.IsAdmin || req.User.IsAdmin

	switch status {
	case gate.StatusAutoLogin:
		if req.User.IsAdmin && !acct.IsAdmin {
			if err := h.accounts.PromoteAdmin(acct); err != nil {
				httpx.FailErr(c, httpx.ErrDatabaseError("", err))
				return
			}
		}
		if err := h.accounts.TouchLastLogin(acct); err != nil {
			httpx.FailErr(c, httpx.ErrDatabaseError("", err))
			return
		}
		session, err := h.issueSession(acct)
		if err != nil {
			httpx.FailErr(c, httpx.ErrInternalError("failed to issue session", err))
			return
		}
		h.audit(&acct.ID, email, true, ip, "auto login")
		httpx.OK(c, ValidateResponse{
			Status:       string(gate.StatusAutoLogin),
			SessionToken: session,
			UserID:       acct.ID,
			IsAdmin:      acct.IsAdmin,
		})

	case gate.StatusMissingPin:
		token, err := h.tokens.Create(c.Request.Context(), validation.Identity{
			Email:      email,
			ExternalID: req.User.PublicUID,
			Name:       req.User.Name,
			IsAdmin:    effectiveAdmin,
			AccountID:  acct.ID,
		})
		if err != nil {
			httpx.FailErr(c, httpx.ErrInternalError("failed to issue validation token", err))
			return
		}
		httpx.OK(c, ValidateResponse{
			Status:          string(gate.StatusMissingPin),
			ValidationToken: token,
			PinRequired:     true,
			DBUserID:        acct.ID,
			IsAdmin:         effectiveAdmin,
		})

	default:
		httpx.OK(c, ValidateResponse{
			Status:      string(gate.StatusExistingUser),
			PinRequired: true,
			IsAdmin:     effectiveAdmin,
		})
	}
}
