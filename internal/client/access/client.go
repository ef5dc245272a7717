package access

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"pairtalk/internal/client/bridge"
	"pairtalk/internal/gate"
	"pairtalk/internal/httpx"

	"github.com/google/uuid"
)

// ErrPaywallBlocked is returned by API calls the server refused because no
// paid membership exists for the email.
var ErrPaywallBlocked = errors.New("paid membership required")

// APIError is a non-success envelope from the server
type APIError struct {
	HTTPStatus int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server refused: %s (code=%d, http=%d)", e.Message, e.Code, e.HTTPStatus)
}

// Client is a typed client for the authentication API
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates an API client for the given base URL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// RemoteConfig is the public security configuration
type RemoteConfig struct {
	RequireOrigin    bool            `json:"require_origin"`
	RequireHostLogin bool            `json:"require_host_login"`
	RequirePaywall   bool            `json:"require_paywall"`
	RequirePin       bool            `json:"require_pin"`
	AllowedOrigin    string          `json:"allowed_origin"`
	PaywallTitle     string          `json:"paywall_title"`
	PaywallMessage   string          `json:"paywall_message"`
	PaywallLinks     json.RawMessage `json:"paywall_links"`
	Environment      string          `json:"environment"`
}

// Gates extracts the gate set from the configuration
func (c *RemoteConfig) Gates() gate.Gates {
	return gate.Gates{
		Origin:    c.RequireOrigin,
		HostLogin: c.RequireHostLogin,
		Paywall:   c.RequirePaywall,
		Pin:       c.RequirePin,
	}
}

// ValidateResult is the outcome of the server's validate decision
type ValidateResult struct {
	Status          string `json:"status"`
	ValidationToken string `json:"validation_token"`
	PinRequired     bool   `json:"pin_required"`
	DBUserID        int    `json:"db_user_id"`
	SessionToken    string `json:"session_token"`
	UserID          int    `json:"user_id"`
	IsAdmin         bool   `json:"is_admin"`
}

// Session is an established session
type Session struct {
	Success      bool   `json:"success"`
	SessionToken string `json:"session_token"`
	UserID       int    `json:"user_id"`
	IsAdmin      bool   `json:"is_admin"`
}

// PaywallStatus is the outcome of a paywall check
type PaywallStatus struct {
	HasAccess      bool            `json:"hasAccess"`
	PaywallEnabled bool            `json:"paywallEnabled"`
	Title          string          `json:"title"`
	Message        string          `json:"message"`
	Links          json.RawMessage `json:"links"`
}

// FetchConfig reads the public security configuration
func (c *Client) FetchConfig(ctx context.Context) (*RemoteConfig, error) {
	var out RemoteConfig
	if err := c.call(ctx, http.MethodGet, "/api/config", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Validate submits an asserted identity to the server
func (c *Client) Validate(ctx context.Context, id bridge.Identity) (*ValidateResult, error) {
	body := map[string]any{
		"user": map[string]any{
			"publicUid": id.PublicUID,
			"email":     id.Email,
			"name":      id.Name,
			"isAdmin":   id.IsAdmin,
			"timestamp": time.Now().UnixMilli(),
		},
	}
	var out ValidateResult
	if err := c.call(ctx, http.MethodPost, "/api/auth/validate", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePin finalizes an account with a PIN, redeeming the validation token
func (c *Client) CreatePin(ctx context.Context, id bridge.Identity, pin, validationToken string) (*Session, error) {
	body := map[string]any{
		"email":            id.Email,
		"public_uid":       id.PublicUID,
		"name":             id.Name,
		"pin":              pin,
		"validation_token": validationToken,
	}
	var out Session
	if err := c.call(ctx, http.MethodPost, "/api/auth/create-pin", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateUserNoPin finalizes an account on deployments with the PIN gate off
func (c *Client) CreateUserNoPin(ctx context.Context, id bridge.Identity, validationToken string) (*Session, error) {
	body := map[string]any{
		"email":            id.Email,
		"public_uid":       id.PublicUID,
		"name":             id.Name,
		"validation_token": validationToken,
	}
	var out Session
	if err := c.call(ctx, http.MethodPost, "/api/auth/create-user-no-pin", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidatePin verifies a PIN for an existing account
func (c *Client) ValidatePin(ctx context.Context, email, pin string) (*Session, error) {
	var out Session
	err := c.call(ctx, http.MethodPost, "/api/auth/validate-pin", map[string]string{
		"email": email,
		"pin":   pin,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckPaywall asks whether the email may pass the paywall gate
func (c *Client) CheckPaywall(ctx context.Context, email string) (*PaywallStatus, error) {
	var out PaywallStatus
	err := c.call(ctx, http.MethodPost, "/api/auth/check-paywall", map[string]string{
		"email": email,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// call performs one API request and decodes the response envelope into out
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("malformed response from %s: %w", path, err)
	}

	if env.Code != httpx.CodeSuccess {
		if env.Code == httpx.CodePaywallBlocked {
			return ErrPaywallBlocked
		}
		return &APIError{HTTPStatus: resp.StatusCode, Code: env.Code, Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}
