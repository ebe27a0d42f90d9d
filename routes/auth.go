package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/swiftcart-api/auth"
)

// SetupAuthRoutes registers all "/auth/*" endpoints.
func SetupAuthRoutes(r *gin.Engine, d Deps) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/signup", auth.SignupHandler(d.Signup))
		authGroup.POST("/session", auth.EstablishSessionHandler(d.Provider, d.Sessions, d.Log))
		authGroup.DELETE("/session", auth.ClearSessionHandler(d.Sessions))
	}
}
