package routes

import (
	"github.com/gin-gonic/gin"
	adminController "github.com/junaidrashid-git/swiftcart-api/controllers/admin"
	productcontroller "github.com/junaidrashid-git/swiftcart-api/controllers/product"
	userControllers "github.com/junaidrashid-git/swiftcart-api/controllers/user"
	"github.com/junaidrashid-git/swiftcart-api/middleware"
)

// SetupAdminRoutes registers all "/admin/*" endpoints. The role comes from the
// allow-list on every request.
func SetupAdminRoutes(r *gin.Engine, d Deps) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(d.authenticated(), middleware.RequireAdmin)
	{
		adminGroup.GET("/users", userControllers.GetAllUsers(d.Sessions, d.Log))

		adminGroup.GET("/products/export-excel", productcontroller.ExportProductsToExcel(d.Catalog, d.Log))

		adminGroup.POST("/banner/upload", adminController.UploadBanner(d.Catalog, d.Server.UploadDir, d.Server.PublicURL, d.Log))
	}
}
