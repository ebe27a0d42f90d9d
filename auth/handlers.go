package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SignupHandler validates the new-account form and creates the identity.
func SignupHandler(signup *Signup) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in SignupInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
			return
		}

		uid, err := signup.Register(c.Request.Context(), in)
		if err != nil {
			status := http.StatusBadGateway
			var ve *ValidationError
			switch {
			case errors.As(err, &ve):
				status = http.StatusBadRequest
			case errors.Is(err, ErrEmailExists), errors.Is(err, ErrPhoneExists):
				status = http.StatusConflict
			}
			c.JSON(status, gin.H{"error": UserMessage(err)})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "Account created. Please verify your email before logging in.",
			"uid":     uid,
		})
	}
}

// EstablishSessionHandler exchanges a provider ID token for an application token.
func EstablishSessionHandler(provider IdentityProvider, bridge *SessionBridge, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			IDToken string `json:"idToken" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
			return
		}

		ctx := c.Request.Context()
		identity, err := provider.VerifyIDToken(ctx, req.IDToken)
		if err != nil {
			log.Warn("id token rejected", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"error": UserMessage(ErrInvalidCredentials)})
			return
		}

		session, token, err := bridge.Handle(ctx, SessionEvent{Kind: SessionEstablished, Identity: identity})
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, ErrEmailNotVerified) || errors.Is(err, ErrUnauthenticated) {
				status = http.StatusForbidden
			} else {
				log.Error("failed to establish session", zap.Error(err))
			}
			c.JSON(status, gin.H{"error": UserMessage(err)})
			return
		}

		user, err := bridge.User(ctx, session)
		if err != nil {
			log.Error("failed to load user", zap.String("user_id", session.UserID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": UserMessage(err)})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Login successful",
			"token":   token,
			"user":    user,
		})
	}
}

// ClearSessionHandler acknowledges a sign-out. Tokens are dropped client side.
func ClearSessionHandler(bridge *SessionBridge) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, _, _ = bridge.Handle(c.Request.Context(), SessionEvent{Kind: SessionCleared})
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}
