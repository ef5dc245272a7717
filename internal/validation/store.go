// Package validation holds the one-time validation token store bridging
// "identity confirmed" and "local account finalized". A token attests the
// identity fields captured at validate time so PIN setup cannot be
// completed with client-fabricated identity data.
package validation

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"
)

// TTL is how long a validation token stays redeemable after creation.
const TTL = 5 * time.Minute

// ErrNotFound is returned when a token is missing, expired, or already
// consumed. Callers cannot distinguish the three cases by design.
var ErrNotFound = errors.New("validation token not found or expired")

// Identity is the attested identity a validation token maps to.
// AccountID is non-zero when the token was minted for an existing account
// that has not set a PIN yet, so redemption updates instead of inserting.
type Identity struct {
	Email      string    `json:"email"`
	ExternalID string    `json:"externalId"`
	Name       string    `json:"name"`
	IsAdmin    bool      `json:"isAdmin"`
	AccountID  int       `json:"accountId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Store issues and redeems single-use validation tokens.
//
// Contract: Consume deletes the entry the moment it is looked up, whether
// or not the caller's subsequent checks succeed, so a failed redemption
// cannot be retried with the same token. Entries expire TTL after
// creation even if never consumed.
type Store interface {
	Create(ctx context.Context, id Identity) (string, error)
	Consume(ctx context.Context, token string) (*Identity, error)
}

// NewToken generates a random opaque token string
func NewToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
