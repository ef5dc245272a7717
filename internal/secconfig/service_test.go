package secconfig

import (
	"testing"

	"pairtalk/internal/gate"
	"pairtalk/internal/model"
	"pairtalk/internal/testdb"
)

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func newSeeded(t *testing.T) *Service {
	t.Helper()
	gdb := testdb.Open(t)
	if err := gdb.Create(&model.SecurityConfig{Environment: model.EnvProduction}).Error; err != nil {
		t.Fatalf("failed to seed config: %v", err)
	}
	return NewService(gdb)
}

func TestService_Get(t *testing.T) {
	s := newSeeded(t)

	cfg, err := s.Get()
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if cfg.RequireOrigin || cfg.RequireHostLogin || cfg.RequirePaywall || cfg.RequirePin {
		t.Error("Seeded config should have all gates off")
	}
	if cfg.Environment != model.EnvProduction {
		t.Errorf("Expected production environment, got %s", cfg.Environment)
	}
}

func TestService_Get_Unseeded(t *testing.T) {
	s := NewService(testdb.Open(t))
	if _, err := s.Get(); err == nil {
		t.Error("Get() should fail when the config row is missing")
	}
}

func TestService_Update_NormalizesGates(t *testing.T) {
	s := newSeeded(t)

	// Turning on the PIN gate alone force-enables its whole chain,
	// never rejects the write
	cfg, err := s.Update(Patch{Gates: gate.Patch{Pin: boolPtr(true)}})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	if !cfg.RequirePin {
		t.Error("Expected PIN gate on")
	}
	if !cfg.RequireHostLogin {
		t.Error("Expected host-login gate force-enabled")
	}
	if !cfg.RequireOrigin {
		t.Error("Expected origin gate force-enabled")
	}
	if cfg.RequirePaywall {
		t.Error("Paywall gate must not be touched")
	}

	// And the result is persisted
	reloaded, _ := s.Get()
	if !reloaded.RequireHostLogin || !reloaded.RequireOrigin {
		t.Error("Normalized gates should be persisted")
	}
}

func TestService_Update_Fields(t *testing.T) {
	s := newSeeded(t)

	cfg, err := s.Update(Patch{
		AllowedOrigin: strPtr("https://community.example.com"),
		PaywallTitle:  strPtr("Members only"),
		WebhookURL:    strPtr("https://hooks.example.com/payment"),
		Environment:   strPtr(model.EnvDevelopment),
	})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	if cfg.AllowedOrigin != "https://community.example.com" {
		t.Errorf("Unexpected allowed origin %s", cfg.AllowedOrigin)
	}
	if cfg.PaywallTitle != "Members only" {
		t.Errorf("Unexpected paywall title %s", cfg.PaywallTitle)
	}
	if cfg.Environment != model.EnvDevelopment {
		t.Errorf("Unexpected environment %s", cfg.Environment)
	}
}

func TestService_Update_InvalidEnvironment(t *testing.T) {
	s := newSeeded(t)

	if _, err := s.Update(Patch{Environment: strPtr("staging")}); err == nil {
		t.Error("Update() should reject unknown environment")
	}
}

func TestService_Update_PartialPatchLeavesRest(t *testing.T) {
	s := newSeeded(t)

	s.Update(Patch{AllowedOrigin: strPtr("https://community.example.com")})
	cfg, err := s.Update(Patch{PaywallTitle: strPtr("Members only")})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	if cfg.AllowedOrigin != "https://community.example.com" {
		t.Error("Fields absent from the patch must be preserved")
	}
}
