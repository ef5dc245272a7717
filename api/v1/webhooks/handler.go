// Package webhooks receives payment notifications from the embedding
// platform and turns them into paid memberships.
package webhooks

import (
	"crypto/subtle"
	"time"

	"pairtalk/internal/httpx"
	"pairtalk/internal/paywall"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler handles inbound webhook requests
type Handler struct {
	paywall *paywall.Service
	secret  string
}

// NewHandler creates a new webhook handler
func NewHandler(db *gorm.DB, secret string) *Handler {
	return &Handler{paywall: paywall.NewService(db), secret: secret}
}

// PaymentRequest is the payload of a payment notification
type PaymentRequest struct {
	Email  string `json:"email" binding:"required"`
	Plan   string `json:"plan"`
	Amount string `json:"amount"`
	Coupon string `json:"coupon"`
	PaidAt string `json:"paid_at"`
}

// Payment handles POST /webhooks/circle-payment. Retries from the payment
// provider are expected, so a duplicate email is a success, not an error.
func (h *Handler) Payment(c *gin.Context) {
	provided := c.GetHeader("X-Webhook-Secret")
	if subtle.ConstantTimeCompare([]byte(provided), []byte(h.secret)) != 1 {
		httpx.FailErr(c, httpx.ErrUnauthorized("invalid webhook secret"))
		return
	}

	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing("email is required"))
		return
	}

	paidAt := time.Now()
	if req.PaidAt != "" {
		if t, err := time.Parse(time.RFC3339, req.PaidAt); err == nil {
			paidAt = t
		}
	}

	created, err := h.paywall.Register(req.Email, req.Plan, req.Amount, req.Coupon, paidAt)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to register membership", err))
		return
	}
	if !created {
		httpx.OKMsg(c, "already registered", nil)
		return
	}
	httpx.OKMsg(c, "membership registered", nil)
}
