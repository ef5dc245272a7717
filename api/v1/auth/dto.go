package auth

import (
	"regexp"
	"strings"
	"time"

	"pairtalk/internal/httpx"
)

// assertionMaxSkew is how far in the past an identity assertion's
// timestamp may lie. Older assertions (and any future-dated ones) are
// treated as potential replays.
const assertionMaxSkew = 60 * time.Second

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AssertedUser is the identity the embedding host asserts for a visitor
type AssertedUser struct {
	PublicUID string `json:"publicUid"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	IsAdmin   bool   `json:"isAdmin"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
}

// ValidateRequest is the body of POST /api/auth/validate
type ValidateRequest struct {
	User AssertedUser `json:"user" binding:"required"`
}

// ValidateResponse is the outcome of a validate decision. Fields beyond
// Status are populated per branch.
type ValidateResponse struct {
	Status          string `json:"status"`
	ValidationToken string `json:"validation_token,omitempty"`
	PinRequired     bool   `json:"pin_required"`
	DBUserID        int    `json:"db_user_id,omitempty"`
	SessionToken    string `json:"session_token,omitempty"`
	UserID          int    `json:"user_id,omitempty"`
	IsAdmin         bool   `json:"is_admin"`
}

// CreatePinRequest is the body of POST /api/auth/create-pin
type CreatePinRequest struct {
	Email           string `json:"email" binding:"required"`
	PublicUID       string `json:"public_uid" binding:"required"`
	Name            string `json:"name"`
	Pin             string `json:"pin" binding:"required"`
	ValidationToken string `json:"validation_token" binding:"required"`
}

// CreateUserNoPinRequest is the body of POST /api/auth/create-user-no-pin
type CreateUserNoPinRequest struct {
	Email           string `json:"email" binding:"required"`
	PublicUID       string `json:"public_uid" binding:"required"`
	Name            string `json:"name"`
	ValidationToken string `json:"validation_token" binding:"required"`
}

// PinLoginRequest is the body of the PIN verification endpoints
type PinLoginRequest struct {
	Email string `json:"email"`
	Pin   string `json:"pin" binding:"required"`
}

// SessionResponse is returned whenever a session is established
type SessionResponse struct {
	Success      bool   `json:"success"`
	SessionToken string `json:"session_token"`
	UserID       int    `json:"user_id"`
	IsAdmin      bool   `json:"is_admin"`
}

// CheckPaywallRequest is the body of POST /api/auth/check-paywall
type CheckPaywallRequest struct {
	Email string `json:"email" binding:"required"`
}

// checkAsserted validates an asserted identity before any state is read
// or written. Returns nil when the assertion is acceptable.
func checkAsserted(u AssertedUser, now time.Time) *httpx.AppError {
	if u.PublicUID == "" {
		return httpx.ErrParamMissing("publicUid is required")
	}
	if !emailPattern.MatchString(u.Email) {
		return httpx.ErrParamInvalid("email format is invalid")
	}
	if len(strings.Fields(u.Name)) < 2 {
		return httpx.ErrParamInvalid("name must include first and last name")
	}

	asserted := time.UnixMilli(u.Timestamp)
	age := now.Sub(asserted)
	if age < 0 {
		return httpx.ErrParamIllegal("assertion timestamp is in the future")
	}
	if age > assertionMaxSkew {
		return httpx.ErrParamIllegal("assertion timestamp is too old")
	}
	return nil
}
