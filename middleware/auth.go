package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/swiftcart-api/auth"
)

const sessionContextKey = "session"

// ValidateToken requires a bearer application token and attaches the session,
// with its role derived from the allow-list, to the request context.
// Websocket upgrades cannot set headers, so a token query parameter is accepted there.
func ValidateToken(tokens *auth.TokenIssuer, roles *auth.RoleResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
		if tokenString == "" && c.IsWebsocket() {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
			c.Abort()
			return
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		session := claims.Session(roles)
		c.Set(sessionContextKey, session)
		c.Request = c.Request.WithContext(auth.WithSession(c.Request.Context(), session))
		c.Next()
	}
}

// Session returns the session set by ValidateToken, or nil.
func Session(c *gin.Context) *auth.Session {
	return auth.FromContext(c.Request.Context())
}
