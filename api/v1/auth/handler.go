// Package auth implements the public authentication endpoints: identity
// validation, PIN creation and verification, paywall lookup, and the
// session profile endpoint.
package auth

import (
	"time"

	"pairtalk/internal/accounts"
	"pairtalk/internal/auth"
	"pairtalk/internal/config"
	"pairtalk/internal/events"
	"pairtalk/internal/model"
	"pairtalk/internal/paywall"
	"pairtalk/internal/ratelimit"
	"pairtalk/internal/secconfig"
	"pairtalk/internal/validation"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Handler carries the services the auth endpoints depend on
type Handler struct {
	accounts *accounts.Service
	paywall  *paywall.Service
	config   *secconfig.Service
	tokens   validation.Store
	limiter  ratelimit.Limiter
	jwt      config.JWTConfig
	log      *logrus.Logger

	now func() time.Time
}

// NewHandler creates the auth endpoint handler
func NewHandler(db *gorm.DB, tokens validation.Store, limiter ratelimit.Limiter, jwtCfg config.JWTConfig, log *logrus.Logger) *Handler {
	return &Handler{
		accounts: accounts.NewService(db),
		paywall:  paywall.NewService(db),
		config:   secconfig.NewService(db),
		tokens:   tokens,
		limiter:  limiter,
		jwt:      jwtCfg,
		log:      log,
		now:      time.Now,
	}
}

// issueSession signs a session token for the account
func (h *Handler) issueSession(acct *model.Account) (string, error) {
	expireAt := h.now().Add(time.Duration(h.jwt.ExpireMinutes) * time.Minute)
	return auth.GenerateSessionToken(acct.ID, acct.Email, acct.IsAdmin, expireAt, h.jwt.Issuer)
}

// audit appends a login-attempt record and streams it to dashboards. Audit
// failures are logged, never surfaced: they must not break the auth flow.
func (h *Handler) audit(accountID *int, email string, success bool, ip, note string) {
	if err := h.accounts.RecordAttempt(accountID, email, success, ip, note); err != nil {
		h.log.WithError(err).Warn("failed to record login attempt")
	}
	events.PublishAttempt(accounts.NormalizeEmail(email), success, ip, note)
}
