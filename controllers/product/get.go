package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/swiftcart-api/services/catalog"
	"go.uber.org/zap"
)

// GetProductByID returns a single product.
// URL param: /products/:id
func GetProductByID(svc *catalog.Service, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := svc.Product(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, log, err, "Failed to retrieve product")
			return
		}
		if product == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusOK, product)
	}
}
