// Package config exposes the security configuration: a public read the
// embedded client bootstraps from, and an admin write that repairs gate
// dependencies instead of rejecting them.
package config

import (
	"pairtalk/internal/events"
	"pairtalk/internal/gate"
	"pairtalk/internal/httpx"
	"pairtalk/internal/model"
	"pairtalk/internal/secconfig"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Handler handles security configuration requests
type Handler struct {
	config *secconfig.Service
}

// NewHandler creates a new configuration handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{config: secconfig.NewService(db)}
}

// Get handles GET /api/config. Public: every embedded client reads this
// before any identity exists, so operational fields stay out of it.
func (h *Handler) Get(c *gin.Context) {
	cfg, err := h.config.Get()
	if err != nil {
		httpx.FailErr(c, httpx.ErrInternalError("", err))
		return
	}

	httpx.OK(c, gin.H{
		"require_origin":     cfg.RequireOrigin,
		"require_host_login": cfg.RequireHostLogin,
		"require_paywall":    cfg.RequirePaywall,
		"require_pin":        cfg.RequirePin,
		"allowed_origin":     cfg.AllowedOrigin,
		"paywall_title":      cfg.PaywallTitle,
		"paywall_message":    cfg.PaywallMessage,
		"paywall_links":      cfg.PaywallLinks,
		"environment":        cfg.Environment,
	})
}

// GetFull handles GET /api/admin/config, the unredacted row
func (h *Handler) GetFull(c *gin.Context) {
	cfg, err := h.config.Get()
	if err != nil {
		httpx.FailErr(c, httpx.ErrInternalError("", err))
		return
	}
	httpx.OK(c, cfg)
}

// UpdateRequest is a partial configuration update. Nil fields are left
// unchanged.
type UpdateRequest struct {
	RequireOrigin    *bool           `json:"require_origin"`
	RequireHostLogin *bool           `json:"require_host_login"`
	RequirePaywall   *bool           `json:"require_paywall"`
	RequirePin       *bool           `json:"require_pin"`
	AllowedOrigin    *string         `json:"allowed_origin"`
	PaywallTitle     *string         `json:"paywall_title"`
	PaywallMessage   *string         `json:"paywall_message"`
	PaywallLinks     *datatypes.JSON `json:"paywall_links"`
	WebhookURL       *string         `json:"webhook_url"`
	Environment      *string         `json:"environment"`
}

// Update handles PATCH /api/config (admin session required). Gate writes
// are normalized, so enabling a gate force-enables its prerequisites and
// the write always lands.
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}

	if req.Environment != nil && *req.Environment != model.EnvDevelopment && *req.Environment != model.EnvProduction {
		httpx.FailErr(c, httpx.ErrParamIllegal("environment must be development or production"))
		return
	}

	cfg, err := h.config.Update(secconfig.Patch{
		Gates: gate.Patch{
			Origin:    req.RequireOrigin,
			HostLogin: req.RequireHostLogin,
			Paywall:   req.RequirePaywall,
			Pin:       req.RequirePin,
		},
		AllowedOrigin:  req.AllowedOrigin,
		PaywallTitle:   req.PaywallTitle,
		PaywallMessage: req.PaywallMessage,
		PaywallLinks:   req.PaywallLinks,
		WebhookURL:     req.WebhookURL,
		Environment:    req.Environment,
	})
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to update config", err))
		return
	}

	events.PublishConfigUpdated(cfg)
	httpx.OK(c, cfg)
}
