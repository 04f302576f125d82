package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Kiranbanna12/xrozen-chat/internal/model"
	"github.com/Kiranbanna12/xrozen-chat/middleware/jwt"
)

// Context keys set by AuthMiddleware.
const (
	CtxIdentity  = "identity"
	CtxUserID    = "user_id"
	CtxProjectID = "token_project_id"
	CtxShareID   = "token_share_id"
)

// AuthMiddleware resolves the caller's identity from a Bearer token or,
// for WebSocket upgrades, a token query parameter. Both registered-user
// and share-guest tokens are accepted; handlers read the identity union
// from the context.
func AuthMiddleware(tokens *jwt.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				token = parts[1]
			}
		}

		// Browsers cannot set headers on WebSocket dials.
		if token == "" {
			token = c.Query("token")
		}

		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authentication token"})
			return
		}

		claims, err := tokens.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		switch claims.Kind {
		case jwt.KindUser:
			c.Set(CtxIdentity, model.UserIdentity(claims.UserID))
			c.Set(CtxUserID, claims.UserID)
		case jwt.KindGuest:
			c.Set(CtxIdentity, model.GuestIdentity(claims.GuestName))
			c.Set(CtxProjectID, claims.ProjectID)
			c.Set(CtxShareID, claims.ShareID)
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unrecognized token kind"})
			return
		}

		c.Next()
	}
}

// OptionalAuthMiddleware resolves the caller's identity when a token is
// present and lets anonymous requests pass. Used on share resolution,
// where guests have no token yet.
func OptionalAuthMiddleware(tokens *jwt.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.Next()
			return
		}

		claims, err := tokens.ParseToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		if claims.Kind == jwt.KindUser {
			c.Set(CtxIdentity, model.UserIdentity(claims.UserID))
			c.Set(CtxUserID, claims.UserID)
		}

		c.Next()
	}
}

// Identity returns the caller identity placed by AuthMiddleware.
func Identity(c *gin.Context) (model.Identity, bool) {
	v, ok := c.Get(CtxIdentity)
	if !ok {
		return model.Identity{}, false
	}
	identity, ok := v.(model.Identity)
	return identity, ok
}

// RequireUser returns the registered user ID, failing the request when
// the caller is a guest.
func RequireUser(c *gin.Context) (string, bool) {
	userID := c.GetString(CtxUserID)
	if userID == "" {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "a registered account is required"})
		return "", false
	}
	return userID, true
}
