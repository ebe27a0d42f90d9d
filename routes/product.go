package routes

import (
	"github.com/gin-gonic/gin"
	adminController "github.com/junaidrashid-git/swiftcart-api/controllers/admin"
	productcontroller "github.com/junaidrashid-git/swiftcart-api/controllers/product"
	"github.com/junaidrashid-git/swiftcart-api/middleware"
)

func SetupProductRoutes(r *gin.Engine, d Deps) {
	products := r.Group("/products")
	{
		products.GET("", productcontroller.GetProducts(d.Catalog, d.Log))
		products.GET("/:id", productcontroller.GetProductByID(d.Catalog, d.Log))

		products.POST("/:id/reviews", d.authenticated(), productcontroller.AddReview(d.Catalog, d.Log))
		products.POST("/:id/reviews/:reviewId/like", d.authenticated(), productcontroller.LikeReview(d.Catalog, d.Log))

		products.POST("", d.authenticated(), middleware.RequireAdmin, productcontroller.CreateProduct(d.Catalog, d.Log))
		products.PUT("/:id", d.authenticated(), middleware.RequireAdmin, productcontroller.UpdateProduct(d.Catalog, d.Log))
		products.DELETE("/:id", d.authenticated(), middleware.RequireAdmin, productcontroller.DeleteProduct(d.Catalog, d.Log))
	}
}

func SetupBannerRoutes(r *gin.Engine, d Deps) {
	r.GET("/banners", adminController.GetBanners(d.Catalog, d.Log))
	r.POST("/banners", d.authenticated(), middleware.RequireAdmin, adminController.SaveBanners(d.Catalog, d.Log))
}
