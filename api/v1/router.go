// Package v1 wires the HTTP surface: public auth endpoints, the admin
// dashboard API, the payment webhook, and the admin event stream.
package v1

import (
	"pairtalk/api/v1/admin"
	"pairtalk/api/v1/auth"
	apiconfig "pairtalk/api/v1/config"
	"pairtalk/api/v1/middleware"
	"pairtalk/api/v1/webhooks"
	"pairtalk/internal/config"
	"pairtalk/internal/events"
	"pairtalk/internal/httpx"
	"pairtalk/internal/ratelimit"
	"pairtalk/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SetupRouter sets up all routes
func SetupRouter(r *gin.Engine, db *gorm.DB, cfg *config.Config, tokens validation.Store, limiter ratelimit.Limiter, log *logrus.Logger) {
	authHandler := auth.NewHandler(db, tokens, limiter, cfg.JWT, log)
	configHandler := apiconfig.NewHandler(db)
	adminHandler := admin.NewHandler(db)
	webhookHandler := webhooks.NewHandler(db, cfg.Webhook.Secret)

	api := r.Group("/api")
	{
		api.GET("/ping", pingHandler)

		// Public: the embedded client bootstraps from this before any
		// identity exists. Writes need an admin session.
		api.GET("/config", configHandler.Get)
		api.PATCH("/config", middleware.AuthRequired(), middleware.AdminRequired(db), configHandler.Update)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/validate", authHandler.Validate)
			authGroup.POST("/create-pin", authHandler.CreatePin)
			authGroup.POST("/create-user-no-pin", authHandler.CreateUserNoPin)
			authGroup.POST("/validate-pin", authHandler.ValidatePin)
			authGroup.POST("/admin-login", authHandler.AdminLogin)
			authGroup.POST("/check-paywall", authHandler.CheckPaywall)

			authGroup.GET("/me", middleware.AuthRequired(), authHandler.Me)
		}

		adminGroup := api.Group("/admin")
		adminGroup.Use(middleware.AuthRequired(), middleware.AdminRequired(db))
		{
			adminGroup.GET("/config", configHandler.GetFull)

			adminGroup.GET("/users", adminHandler.ListUsers)
			adminGroup.DELETE("/users/:id", adminHandler.DeleteUser)
			adminGroup.GET("/login-attempts", adminHandler.ListAttempts)

			adminGroup.GET("/memberships", adminHandler.ListMemberships)
			adminGroup.POST("/memberships", adminHandler.CreateMembership)
			adminGroup.DELETE("/memberships/:email", adminHandler.DeleteMembership)
		}
	}

	// Authenticated by the payment provider's shared secret, not a session
	r.POST("/webhooks/circle-payment", webhookHandler.Payment)

	// Socket.IO handshake and transport for the admin event stream
	if events.Server != nil {
		handler := events.AuthMiddleware(events.Server)
		r.GET("/socket.io/*any", gin.WrapH(handler))
		r.POST("/socket.io/*any", gin.WrapH(handler))
	}
}

// pingHandler handles the ping request using unified response
func pingHandler(c *gin.Context) {
	httpx.OK(c, gin.H{
		"pong": true,
	})
}
