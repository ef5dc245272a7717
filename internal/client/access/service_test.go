package access

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"pairtalk/internal/client/bridge"
	"pairtalk/internal/httpx"

	"github.com/sirupsen/logrus"
)

type stubServer struct {
	cfg           RemoteConfig
	validateCode  int
	validateData  ValidateResult
	validateCalls atomic.Int64
	lastValidate  map[string]any
	srv           *httptest.Server
}

func newStubServer(t *testing.T, cfg RemoteConfig) *stubServer {
	t.Helper()
	s := &stubServer{cfg: cfg, validateCode: httpx.CodeSuccess}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/config", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, httpx.CodeSuccess, "success", s.cfg)
	})
	mux.HandleFunc("/api/auth/validate", func(w http.ResponseWriter, r *http.Request) {
		s.validateCalls.Add(1)
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		s.lastValidate, _ = body["user"].(map[string]any)
		if s.validateCode != httpx.CodeSuccess {
			w.WriteHeader(http.StatusForbidden)
			writeEnvelope(w, s.validateCode, "refused", nil)
			return
		}
		writeEnvelope(w, httpx.CodeSuccess, "success", s.validateData)
	})

	s.srv = httptest.NewServer(mux)
	t.Cleanup(s.srv.Close)
	return s
}

func writeEnvelope(w http.ResponseWriter, code int, message string, data any) {
	json.NewEncoder(w).Encode(map[string]any{
		"code":    code,
		"message": message,
		"data":    data,
	})
}

func newService(t *testing.T, s *stubServer) *Service {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	svc := NewService(NewClient(s.srv.URL), log)
	svc.identityWait = 50 * time.Millisecond
	return svc
}

func identityChan(ids ...bridge.Identity) <-chan bridge.Identity {
	ch := make(chan bridge.Identity, len(ids))
	for _, id := range ids {
		ch <- id
	}
	return ch
}

func janeIdentity() bridge.Identity {
	return bridge.Identity{PublicUID: "uid-1", Email: "jane@example.com", Name: "Jane Doe"}
}

func TestResolve_AllGatesOff(t *testing.T) {
	s := newStubServer(t, RemoteConfig{})
	svc := newService(t, s)

	out := svc.Resolve(context.Background(), nil, nil)
	if out.State != StateAuthenticated {
		t.Errorf("Expected authenticated, got %s", out.State)
	}
	if s.validateCalls.Load() != 0 {
		t.Error("No identity check should happen with all gates off")
	}
}

func TestResolve_OnlyOriginGate(t *testing.T) {
	s := newStubServer(t, RemoteConfig{RequireOrigin: true})
	svc := newService(t, s)

	out := svc.Resolve(context.Background(), nil, nil)
	if out.State != StateAuthenticated {
		t.Errorf("Expected authenticated, got %s", out.State)
	}
}

func TestResolve_PaywallWithoutHostLogin(t *testing.T) {
	s := newStubServer(t, RemoteConfig{
		RequirePaywall: true,
		PaywallMessage: "Buy the course first",
	})
	svc := newService(t, s)

	out := svc.Resolve(context.Background(), identityChan(janeIdentity()), nil)
	if out.State != StatePaywallBlocked {
		t.Fatalf("Expected paywall_blocked, got %s", out.State)
	}
	if out.Message != "Buy the course first" {
		t.Errorf("Unexpected message %q", out.Message)
	}
	if s.validateCalls.Load() != 0 {
		t.Error("Paywall without host login must block before any server call")
	}
}

func TestResolve_DevelopmentModeUsesMockIdentity(t *testing.T) {
	s := newStubServer(t, RemoteConfig{
		RequireHostLogin: true,
		Environment:      "development",
	})
	s.validateData = ValidateResult{Status: "auto_login", SessionToken: "tok", UserID: 7, IsAdmin: true}
	svc := newService(t, s)

	out := svc.Resolve(context.Background(), nil, nil)
	if out.State != StateAuthenticated || out.SessionToken != "tok" {
		t.Fatalf("Unexpected outcome %+v", out)
	}
	if s.lastValidate["email"] != MockIdentity.Email {
		t.Errorf("Expected the mock identity, got %v", s.lastValidate["email"])
	}
}

func TestResolve_StatusMapping(t *testing.T) {
	tests := []struct {
		name      string
		result    ValidateResult
		wantState State
	}{
		{"new user", ValidateResult{Status: "new_user", ValidationToken: "vt", PinRequired: true}, StateNewUser},
		{"missing pin", ValidateResult{Status: "missing_pin", ValidationToken: "vt", DBUserID: 3}, StateNewUser},
		{"existing user", ValidateResult{Status: "existing_user", PinRequired: true}, StateExistingUser},
		{"auto login", ValidateResult{Status: "auto_login", SessionToken: "tok", UserID: 5}, StateAuthenticated},
		{"unknown status", ValidateResult{Status: "surprise"}, StateError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStubServer(t, RemoteConfig{RequireOrigin: true, RequireHostLogin: true, RequirePin: true})
			s.validateData = tt.result
			svc := newService(t, s)

			out := svc.Resolve(context.Background(), identityChan(janeIdentity()), nil)
			if out.State != tt.wantState {
				t.Errorf("Expected %s, got %s", tt.wantState, out.State)
			}
			if tt.result.Status == "missing_pin" && out.AccountID != 3 {
				t.Errorf("Expected account id carried through, got %d", out.AccountID)
			}
		})
	}
}

func TestResolve_PaywallBlockedAtValidate(t *testing.T) {
	s := newStubServer(t, RemoteConfig{
		RequireHostLogin: true,
		RequirePaywall:   true,
		PaywallMessage:   "Members only",
	})
	s.validateCode = httpx.CodePaywallBlocked
	svc := newService(t, s)

	out := svc.Resolve(context.Background(), identityChan(janeIdentity()), nil)
	if out.State != StatePaywallBlocked {
		t.Fatalf("Expected paywall_blocked, got %s", out.State)
	}
	if out.Message != "Members only" {
		t.Errorf("Unexpected message %q", out.Message)
	}
}

func TestResolve_NoIdentityArrives(t *testing.T) {
	s := newStubServer(t, RemoteConfig{RequireHostLogin: true})
	svc := newService(t, s)

	out := svc.Resolve(context.Background(), identityChan(), nil)
	if out.State != StatePublicLanding {
		t.Errorf("Expected public_landing, got %s", out.State)
	}
}

func TestResolve_ServerError(t *testing.T) {
	s := newStubServer(t, RemoteConfig{RequireHostLogin: true})
	s.validateCode = httpx.CodeInternalError
	svc := newService(t, s)

	out := svc.Resolve(context.Background(), identityChan(janeIdentity()), nil)
	if out.State != StateError {
		t.Errorf("Expected error state, got %s", out.State)
	}
	if out.Message == "" {
		t.Error("Error outcome should carry a message")
	}
}

type silentSource struct {
	ch chan bridge.Message
}

func (s silentSource) Messages() <-chan bridge.Message { return s.ch }

func TestResolve_OriginGateFailure(t *testing.T) {
	s := newStubServer(t, RemoteConfig{RequireOrigin: true, RequireHostLogin: true})
	svc := newService(t, s)
	svc.identityWait = time.Second

	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	// Nothing ever arrives from the allowed origin, so the bridge ends with
	// its origin error well before the identity wait runs out.
	b := bridge.New(silentSource{ch: make(chan bridge.Message)}, bridge.NewMemoryStore(), bridge.Options{
		RequireOrigin: true,
		AllowedOrigin: "https://host.example.com",
		OriginTimeout: 10 * time.Millisecond,
		Log:           quiet,
	})
	done := make(chan error, 1)
	go func() { done <- b.Run(context.Background()) }()

	out := svc.Resolve(context.Background(), b.Identities(), done)
	if out.State != StateError {
		t.Fatalf("Expected error state, got %s", out.State)
	}
	if out.Message == "" {
		t.Error("Origin failure should carry a message")
	}
	if s.validateCalls.Load() != 0 {
		t.Error("No identity check should happen when the origin gate fails")
	}
}

func TestResolve_BridgeEndsCleanly(t *testing.T) {
	s := newStubServer(t, RemoteConfig{RequireHostLogin: true})
	svc := newService(t, s)

	closed := make(chan bridge.Identity)
	close(closed)
	done := make(chan error, 1)
	done <- nil

	out := svc.Resolve(context.Background(), closed, done)
	if out.State != StatePublicLanding {
		t.Errorf("Expected public_landing, got %s", out.State)
	}
}

func TestResolve_ConfigUnreachable(t *testing.T) {
	svc := NewService(NewClient("http://127.0.0.1:1"), nil)

	out := svc.Resolve(context.Background(), nil, nil)
	if out.State != StateError {
		t.Errorf("Expected error state, got %s", out.State)
	}
}
