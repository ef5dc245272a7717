package auth

import (
	"errors"

	"pairtalk/internal/accounts"
	"pairtalk/internal/auth"
	"pairtalk/internal/httpx"
	"pairtalk/internal/model"
	"pairtalk/internal/secconfig"
	"pairtalk/internal/validation"

	"github.com/gin-gonic/gin"
)

// CreatePin handles POST /api/auth/create-pin. It redeems the validation
// token minted at validate time, finalizes the local account, attaches the
// PIN, and establishes a session in one step.
func (h *Handler) CreatePin(c *gin.Context) {
	var req CreatePinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing("email, public_uid, pin and validation_token are required"))
		return
	}
	if !auth.ValidPinFormat(req.Pin) {
		httpx.FailErr(c, httpx.ErrParamInvalid("pin must be 4 to 6 digits"))
		return
	}

	cfg, err := h.config.Get()
	if err != nil {
		httpx.FailErr(c, httpx.ErrInternalError("", err))
		return
	}
	gates := secconfig.Gates(cfg)
	email := accounts.NormalizeEmail(req.Email)

	// Paywall is re-checked here: the membership may have been revoked
	// between validate and PIN submission.
	if appErr := h.requireMembership(gates.Paywall, email); appErr != nil {
		httpx.FailErr(c, appErr)
		return
	}

	id, appErr := h.redeem(c, req.ValidationToken, email, req.PublicUID)
	if appErr != nil {
		httpx.FailErr(c, appErr)
		return
	}

	acct, err := h.redeemedAccount(id, email)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("", err))
		return
	}
	if acct != nil && acct.HasPin() {
		httpx.FailErr(c, httpx.ErrStateConflict("pin already set, use login"))
		return
	}

	hash, err := auth.HashPin(req.Pin)
	if err != nil {
		httpx.FailErr(c, httpx.ErrInternalError("failed to hash pin", err))
		return
	}

	// Identity fields come from the redeemed token, not the request body
	if acct == nil {
		acct, err = h.accounts.Create(id.Email, id.ExternalID, id.Name, id.IsAdmin)
		if err != nil {
			httpx.FailErr(c, httpx.ErrDatabaseError("failed to create account", err))
			return
		}
	} else if id.IsAdmin && !acct.IsAdmin {
		if err := h.accounts.PromoteAdmin(acct); err != nil {
			httpx.FailErr(c, httpx.ErrDatabaseError("", err))
			return
		}
	}
	if err := h.accounts.AttachPinHash(acct, hash); err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to store pin", err))
		return
	}

	h.finishLogin(c, acct, "pin created")
}

// CreateUserNoPin handles POST /api/auth/create-user-no-pin, the account
// finalization path for deployments that keep the PIN gate off.
func (h *Handler) CreateUserNoPin(c *gin.Context) {
	var req CreateUserNoPinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing("email, public_uid and validation_token are required"))
		return
	}

	cfg, err := h.config.Get()
	if err != nil {
		httpx.FailErr(c, httpx.ErrInternalError("", err))
		return
	}
	gates := secconfig.Gates(cfg)
	if gates.Pin {
		httpx.FailErr(c, httpx.ErrForbidden("pin creation is required"))
		return
	}
	email := accounts.NormalizeEmail(req.Email)

	if appErr := h.requireMembership(gates.Paywall, email); appErr != nil {
		httpx.FailErr(c, appErr)
		return
	}

	id, appErr := h.redeem(c, req.ValidationToken, email, req.PublicUID)
	if appErr != nil {
		httpx.FailErr(c, appErr)
		return
	}

	acct, err := h.redeemedAccount(id, email)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("", err))
		return
	}
	if acct == nil {
		acct, err = h.accounts.Create(id.Email, id.ExternalID, id.Name, id.IsAdmin)
		if err != nil {
			httpx.FailErr(c, httpx.ErrDatabaseError("failed to create account", err))
			return
		}
		h.finishLogin(c, acct, "account created without pin")
		return
	}

	// Account already finalized, this is just a login
	if id.IsAdmin && !acct.IsAdmin {
		if err := h.accounts.PromoteAdmin(acct); err != nil {
			httpx.FailErr(c, httpx.ErrDatabaseError("", err))
			return
		}
	}
	h.finishLogin(c, acct, "auto login")
}

// requireMembership enforces the paywall gate. A lookup failure denies
// access rather than granting it.
func (h *Handler) requireMembership(active bool, email string) *httpx.AppError {
	if !active {
		return nil
	}
	has, err := h.paywall.HasMembership(email)
	if err != nil {
		return httpx.ErrDatabaseError("", err)
	}
	if !has {
		return httpx.ErrPaywallBlocked("")
	}
	return nil
}

// redeemedAccount resolves the account a redeemed token finalizes. Tokens
// minted for an account that existed at validate time carry its id, so
// redemption updates that row even if the email was re-cased meanwhile; a
// vanished id falls back to the email lookup.
func (h *Handler) redeemedAccount(id *validation.Identity, email string) (*model.Account, error) {
	if id.AccountID != 0 {
		acct, err := h.accounts.FindByID(id.AccountID)
		if err != nil || acct != nil {
			return acct, err
		}
	}
	return h.accounts.FindByEmail(email)
}

// redeem consumes a validation token and checks that the request attests
// the same identity the token was minted for. The token is gone after the
// lookup either way: a failed redemption starts the flow over.
func (h *Handler) redeem(c *gin.Context, token, email, externalID string) (*validation.Identity, *httpx.AppError) {
	id, err := h.tokens.Consume(c.Request.Context(), token)
	if errors.Is(err, validation.ErrNotFound) {
		return nil, httpx.ErrFlowRestart("")
	}
	if err != nil {
		return nil, httpx.ErrInternalError("failed to redeem validation token", err)
	}
	if id.Email != email || id.ExternalID != externalID {
		return nil, httpx.ErrFlowRestart("identity mismatch, restart authentication")
	}
	return id, nil
}

// finishLogin stamps the login, audits it, and responds with a session
func (h *Handler) finishLogin(c *gin.Context, acct *model.Account, note string) {
	ip := c.ClientIP()
	if err := h.accounts.TouchLastLogin(acct); err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("", err))
		return
	}
	session, err := h.issueSession(acct)
	if err != nil {
		httpx.FailErr(c, httpx.ErrInternalError("failed to issue session", err))
		return
	}
	h.audit(&acct.ID, acct.Email, true, ip, note)
	httpx.OK(c, SessionResponse{
		Success:      true,
		SessionToken: session,
		UserID:       acct.ID,
		IsAdmin:      acct.IsAdmin,
	})
}
