// Package secconfig reads and writes the single global security
// configuration row. All writes pass through gate.Normalize, so gate
// dependencies are repaired rather than rejected.
package secconfig

import (
	"fmt"

	"pairtalk/internal/gate"
	"pairtalk/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service wraps security configuration persistence
type Service struct {
	db *gorm.DB
}

// NewService creates a new security configuration service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Get returns the global configuration row. The row is seeded at startup;
// a missing row is an infrastructure error, not a user condition.
func (s *Service) Get() (*model.SecurityConfig, error) {
	var cfg model.SecurityConfig
	if err := s.db.First(&cfg).Error; err != nil {
		return nil, fmt.Errorf("security config not available: %w", err)
	}
	return &cfg, nil
}

// Gates extracts the four gates from a configuration row
func Gates(cfg *model.SecurityConfig) gate.Gates {
	return gate.Gates{
		Origin:    cfg.RequireOrigin,
		HostLogin: cfg.RequireHostLogin,
		Paywall:   cfg.RequirePaywall,
		Pin:       cfg.RequirePin,
	}
}

// Patch is a partial update of the configuration. Nil fields are left
// unchanged.
type Patch struct {
	Gates          gate.Patch
	AllowedOrigin  *string
	PaywallTitle   *string
	PaywallMessage *string
	PaywallLinks   *datatypes.JSON
	WebhookURL     *string
	Environment    *string
}

// Update applies a patch and persists the normalized result
func (s *Service) Update(p Patch) (*model.SecurityConfig, error) {
	cfg, err := s.Get()
	if err != nil {
		return nil, err
	}

	normalized := gate.Normalize(Gates(cfg), p.Gates)
	cfg.RequireOrigin = normalized.Origin
	cfg.RequireHostLogin = normalized.HostLogin
	cfg.RequirePaywall = normalized.Paywall
	cfg.RequirePin = normalized.Pin

	if p.AllowedOrigin != nil {
		cfg.AllowedOrigin = *p.AllowedOrigin
	}
	if p.PaywallTitle != nil {
		cfg.PaywallTitle = *p.PaywallTitle
	}
	if p.PaywallMessage != nil {
		cfg.PaywallMessage = *p.PaywallMessage
	}
	if p.PaywallLinks != nil {
		cfg.PaywallLinks = *p.PaywallLinks
	}
	if p.WebhookURL != nil {
		cfg.WebhookURL = *p.WebhookURL
	}
	if p.Environment != nil {
		if *p.Environment != model.EnvDevelopment && *p.Environment != model.EnvProduction {
			return nil, fmt.Errorf("invalid environment %q", *p.Environment)
		}
		cfg.Environment = *p.Environment
	}

	if err := s.db.Save(cfg).Error; err != nil {
		return nil, fmt.Errorf("failed to save security config: %w", err)
	}
	return cfg, nil
}
