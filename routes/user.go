package routes

import (
	"github.com/gin-gonic/gin"
	userControllers "github.com/junaidrashid-git/swiftcart-api/controllers/user"
)

// SetupUserRoutes registers all "/user" endpoints. Requires JWT middleware.
func SetupUserRoutes(r *gin.Engine, d Deps) {
	userGroup := r.Group("/user")
	userGroup.Use(d.authenticated())
	{
		userGroup.GET("", userControllers.GetUser(d.Sessions, d.Log))    // GET /user
		userGroup.PUT("", userControllers.UpdateUser(d.Sessions, d.Log)) // PUT /user
	}
}
