package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/swiftcart-api/services/catalog"
	"go.uber.org/zap"
)

// GetProducts lists products, optionally filtered by search, category, brand,
// min_price, max_price and trending, and ordered by sort_by and order.
func GetProducts(svc *catalog.Service, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := catalog.ParseQuery(c.Request.URL.Query())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		products, err := svc.Products(c.Request.Context(), q)
		if err != nil {
			respondError(c, log, err, "Failed to fetch products")
			return
		}
		c.JSON(http.StatusOK, products)
	}
}
