package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/swiftcart-api/middleware"
	"github.com/junaidrashid-git/swiftcart-api/models"
	"github.com/junaidrashid-git/swiftcart-api/services/catalog"
	"go.uber.org/zap"
)

// UpdateProduct replaces the product at /products/:id with the JSON body.
func UpdateProduct(svc *catalog.Service, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var product models.Product
		if err := c.ShouldBindJSON(&product); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
			return
		}
		product.ID = c.Param("id")

		existing, err := svc.Product(c.Request.Context(), product.ID)
		if err != nil {
			respondError(c, log, err, "Failed to update product")
			return
		}
		if existing == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}

		saved, err := svc.SaveProduct(c.Request.Context(), middleware.Session(c), product)
		if err != nil {
			respondError(c, log, err, "Failed to update product")
			return
		}
		c.JSON(http.StatusOK, saved)
	}
}
