// Package gate holds the pure decision logic of the layered access scheme.
// Nothing here touches storage or the network; both the server handlers and
// the client access service share these rules.
package gate

// Gates is the four ordered access gates from the security configuration.
type Gates struct {
	Origin    bool `json:"require_origin"`
	HostLogin bool `json:"require_host_login"`
	Paywall   bool `json:"require_paywall"`
	Pin       bool `json:"require_pin"`
}

// Patch is a partial gate update. Nil fields are left unchanged.
type Patch struct {
	Origin    *bool
	HostLogin *bool
	Paywall   *bool
	Pin       *bool
}

// Normalize applies a patch to the current gates and force-enables the
// prerequisites of every gate the patch turns on, instead of rejecting the
// write. Host login presumes the embedding origin; paywall and PIN both
// presume host login (no email can be obtained without it). Turning a gate
// off never cascades.
func Normalize(current Gates, patch Patch) Gates {
	next := current
	if patch.Origin != nil {
		next.Origin = *patch.Origin
	}
	if patch.HostLogin != nil {
		next.HostLogin = *patch.HostLogin
	}
	if patch.Paywall != nil {
		next.Paywall = *patch.Paywall
	}
	if patch.Pin != nil {
		next.Pin = *patch.Pin
	}

	enabledPaywall := patch.Paywall != nil && *patch.Paywall && !current.Paywall
	enabledPin := patch.Pin != nil && *patch.Pin && !current.Pin
	if enabledPaywall || enabledPin {
		next.HostLogin = true
	}

	// Any off-to-on transition of host login, explicit or forced, pulls
	// the origin gate with it. Disabling origin afterwards is a separate
	// write (that is how the development configuration is reached).
	if next.HostLogin && !current.HostLogin {
		next.Origin = true
	}

	return next
}

// Status is the outcome of a server-side validate decision.
type Status string

const (
	StatusNewUser      Status = "new_user"
	StatusMissingPin   Status = "missing_pin"
	StatusExistingUser Status = "existing_user"
	StatusAutoLogin    Status = "auto_login"
)

// Facts are what the server knows about the visitor at validate time.
type Facts struct {
	AccountExists bool
	HasPin        bool
}

// Next selects the validate outcome for a visitor. Order matters: an
// unknown email is a new user regardless of the PIN gate; a known account
// skips the PIN flow entirely while gate 4 is off.
func Next(g Gates, f Facts) Status {
	switch {
	case !f.AccountExists:
		return StatusNewUser
	case !g.Pin:
		return StatusAutoLogin
	case !f.HasPin:
		return StatusMissingPin
	default:
		return StatusExistingUser
	}
}

// Entry is the client-side short-circuit decision taken from configuration
// alone, before any identity is available.
type Entry int

const (
	// EntryDirect: no identity check at all, go straight to the app.
	EntryDirect Entry = iota
	// EntryPaywallBlocked: paywall is on but no host login means the
	// visitor's email can never be obtained; fail closed.
	EntryPaywallBlocked
	// EntryIdentity: wait for the identity bridge and validate.
	EntryIdentity
)

// EntryDecision classifies the configuration before any identity arrives.
// With host login off there is no email source: paywall fails closed and
// everything else passes through (presence on the correct origin is itself
// sufficient when only gate 1 is on).
func EntryDecision(g Gates) Entry {
	if !g.HostLogin {
		if g.Paywall {
			return EntryPaywallBlocked
		}
		return EntryDirect
	}
	return EntryIdentity
}
