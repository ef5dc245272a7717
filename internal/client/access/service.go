// Package access decides what an embedded client should show the visitor:
// straight into the app, a PIN screen, a purchase screen, or the public
// landing page. It combines the security configuration with the identity
// arriving over the bridge and with the server's validate decision.
package access

import (
	"context"
	"errors"
	"time"

	"pairtalk/internal/client/bridge"
	"pairtalk/internal/gate"

	"github.com/sirupsen/logrus"
)

// State is where the visitor's flow stands
type State string

const (
	StateWaiting        State = "waiting"
	StateValidating     State = "validating"
	StateNewUser        State = "new_user"
	StateExistingUser   State = "existing_user"
	StateAuthenticated  State = "authenticated"
	StateError          State = "error"
	StatePublicLanding  State = "public_landing"
	StatePaywallBlocked State = "paywall_blocked"
)

// DefaultIdentityWait is how long Resolve waits for the bridge to deliver
// an identity before concluding the visitor is not logged into the host.
const DefaultIdentityWait = 10 * time.Second

// Outcome is the terminal result of a resolve pass. Message is
// human-readable and set for error and paywall outcomes.
type Outcome struct {
	State    State
	Message  string
	Identity *bridge.Identity

	// Set when the flow continues with PIN creation or entry
	ValidationToken string
	PinRequired     bool
	AccountID       int

	// Set when a session was established
	SessionToken string
	UserID       int
	IsAdmin      bool
}

// MockIdentity is the identity synthesized in development mode, where no
// embedding host exists to assert one.
var MockIdentity = bridge.Identity{
	PublicUID: "dev-user-001",
	Email:     "dev@example.com",
	Name:      "Dev User",
	IsAdmin:   true,
}

// Service drives the client-side access flow
type Service struct {
	api          *Client
	log          *logrus.Entry
	identityWait time.Duration
}

// NewService creates an access service over the API client
func NewService(api *Client, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
	}
	return &Service{
		api:          api,
		log:          log.WithField("component", "access"),
		identityWait: DefaultIdentityWait,
	}
}

// Resolve runs the access decision once: fetch configuration, short-circuit
// where no identity is needed, otherwise obtain an identity and validate it
// with the server. identities is the bridge output and bridgeDone receives
// the result of its Run; either may be nil when the caller already knows no
// identity will arrive.
func (s *Service) Resolve(ctx context.Context, identities <-chan bridge.Identity, bridgeDone <-chan error) Outcome {
	cfg, err := s.api.FetchConfig(ctx)
	if err != nil {
		s.log.WithError(err).Error("failed to load security configuration")
		return Outcome{State: StateError, Message: "could not load security configuration"}
	}
	g := cfg.Gates()

	switch gate.EntryDecision(g) {
	case gate.EntryDirect:
		// No email source is configured, so presence is sufficient
		return Outcome{State: StateAuthenticated}
	case gate.EntryPaywallBlocked:
		// Paywall without host login can never learn an email
		return Outcome{
			State:   StatePaywallBlocked,
			Message: paywallMessage(cfg),
		}
	}

	var id bridge.Identity
	if devMode(cfg) {
		id = MockIdentity
		s.log.Info("development mode, using mock identity")
	} else {
		got, outcome := s.awaitIdentity(ctx, identities, bridgeDone)
		if outcome != nil {
			return *outcome
		}
		id = got
	}

	return s.validate(ctx, cfg, id)
}

// awaitIdentity waits for the bridge. An exhausted wait means the visitor
// is not logged into the host; a closed channel means the bridge ended and
// its Run result decides the outcome.
func (s *Service) awaitIdentity(ctx context.Context, identities <-chan bridge.Identity, bridgeDone <-chan error) (bridge.Identity, *Outcome) {
	if identities == nil {
		return bridge.Identity{}, &Outcome{State: StatePublicLanding}
	}

	timer := time.NewTimer(s.identityWait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return bridge.Identity{}, &Outcome{State: StateError, Message: "cancelled while waiting for the host"}
	case <-timer.C:
		return bridge.Identity{}, &Outcome{State: StatePublicLanding}
	case id, ok := <-identities:
		if !ok {
			return bridge.Identity{}, s.bridgeEnded(bridgeDone)
		}
		return id, nil
	}
}

// bridgeEnded maps a finished bridge to an outcome. The bridge closes its
// output right before Run returns, so reading the result here does not
// block for long. A failed origin gate is terminal: the page is embedded
// in the wrong place and no identity can ever arrive.
func (s *Service) bridgeEnded(bridgeDone <-chan error) *Outcome {
	if bridgeDone == nil {
		return &Outcome{State: StatePublicLanding}
	}
	err := <-bridgeDone
	if errors.Is(err, bridge.ErrOriginInvalid) {
		s.log.Warn("origin gate failed, access restricted")
		return &Outcome{
			State:   StateError,
			Message: "access restricted, please open this page from its original location",
		}
	}
	return &Outcome{State: StatePublicLanding}
}

// validate submits the identity and maps the server's decision to a state
func (s *Service) validate(ctx context.Context, cfg *RemoteConfig, id bridge.Identity) Outcome {
	s.log.WithField("email", id.Email).Info("validating identity")

	res, err := s.api.Validate(ctx, id)
	if errors.Is(err, ErrPaywallBlocked) {
		return Outcome{
			State:    StatePaywallBlocked,
			Message:  paywallMessage(cfg),
			Identity: &id,
		}
	}
	if err != nil {
		s.log.WithError(err).Error("validate call failed")
		return Outcome{State: StateError, Message: "could not verify your identity, please try again", Identity: &id}
	}

	switch res.Status {
	case "new_user":
		return Outcome{
			State:           StateNewUser,
			Identity:        &id,
			ValidationToken: res.ValidationToken,
			PinRequired:     res.PinRequired,
		}
	case "missing_pin":
		return Outcome{
			State:           StateNewUser,
			Identity:        &id,
			ValidationToken: res.ValidationToken,
			PinRequired:     true,
			AccountID:       res.DBUserID,
		}
	case "existing_user":
		return Outcome{
			State:       StateExistingUser,
			Identity:    &id,
			PinRequired: true,
		}
	case "auto_login":
		return Outcome{
			State:        StateAuthenticated,
			Identity:     &id,
			SessionToken: res.SessionToken,
			UserID:       res.UserID,
			IsAdmin:      res.IsAdmin,
		}
	default:
		s.log.WithField("status", res.Status).Error("unknown validate status")
		return Outcome{State: StateError, Message: "unexpected server response", Identity: &id}
	}
}

// devMode reports whether the configuration describes local development:
// host login expected but no real embedding to deliver it.
func devMode(cfg *RemoteConfig) bool {
	return !cfg.RequireOrigin && cfg.RequireHostLogin && cfg.Environment == "development"
}

func paywallMessage(cfg *RemoteConfig) string {
	if cfg.PaywallMessage != "" {
		return cfg.PaywallMessage
	}
	return "paid membership required"
}
