package userControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/swiftcart-api/auth"
	"github.com/junaidrashid-git/swiftcart-api/middleware"
	"go.uber.org/zap"
)

// GET /user
func GetUser(bridge *auth.SessionBridge, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := bridge.User(c.Request.Context(), middleware.Session(c))
		if err != nil {
			log.Error("failed to load user", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// GET /admin/users
func GetAllUsers(bridge *auth.SessionBridge, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := bridge.Users(c.Request.Context())
		if err != nil {
			log.Error("failed to fetch users", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

// PUT /user
func UpdateUser(bridge *auth.SessionBridge, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input auth.ProfileUpdate
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
			return
		}

		user, err := bridge.UpdateProfile(c.Request.Context(), middleware.Session(c), input)
		if err != nil {
			var ve *auth.ValidationError
			if errors.As(err, &ve) {
				c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message})
				return
			}
			log.Error("failed to update user", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
			return
		}
		c.JSON(http.StatusOK, user)
	}
}
