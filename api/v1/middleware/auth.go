package middleware

import (
	"errors"
	"strings"

	"pairtalk/internal/accounts"
	"pairtalk/internal/auth"
	"pairtalk/internal/httpx"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// AuthRequired is a middleware that validates the session token and
// attaches the decoded account id and email to the request context
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httpx.FailErr(c, httpx.ErrUnauthorized("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			httpx.FailErr(c, httpx.ErrUnauthorized("invalid authorization header format"))
			c.Abort()
			return
		}

		tokenString := parts[1]

		claims, err := auth.ParseSessionToken(tokenString)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				httpx.FailErr(c, httpx.ErrTokenExpired("token expired"))
			} else {
				httpx.FailErr(c, httpx.ErrInvalidToken("invalid token"))
			}
			c.Abort()
			return
		}

		c.Set("uid", claims.UID)
		c.Set("email", claims.Email)

		c.Next()
	}
}

// AdminRequired loads the account behind the session and requires its
// persisted admin flag. The token's admin claim is not trusted here: the
// flag may have been demoted since the token was issued.
func AdminRequired(db *gorm.DB) gin.HandlerFunc {
	svc := accounts.NewService(db)
	return func(c *gin.Context) {
		uid, ok := c.Get("uid")
		if !ok {
			httpx.FailErr(c, httpx.ErrUnauthorized("missing session"))
			c.Abort()
			return
		}

		acct, err := svc.FindByID(uid.(int))
		if err != nil {
			httpx.FailErr(c, httpx.ErrDatabaseError("database error", err))
			c.Abort()
			return
		}
		if acct == nil {
			httpx.FailErr(c, httpx.ErrUnauthorized("account no longer exists"))
			c.Abort()
			return
		}
		if !acct.IsAdmin {
			httpx.FailErr(c, httpx.ErrForbidden("admin access required"))
			c.Abort()
			return
		}

		c.Set("account", acct)
		c.Next()
	}
}
