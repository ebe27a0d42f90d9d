package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/swiftcart-api/middleware"
	"github.com/junaidrashid-git/swiftcart-api/models"
	"github.com/junaidrashid-git/swiftcart-api/services/catalog"
	"go.uber.org/zap"
)

// CreateProduct saves a product from a JSON body. The caller's role comes from the
// session only.
func CreateProduct(svc *catalog.Service, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var product models.Product
		if err := c.ShouldBindJSON(&product); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
			return
		}

		saved, err := svc.SaveProduct(c.Request.Context(), middleware.Session(c), product)
		if err != nil {
			respondError(c, log, err, "Failed to save product")
			return
		}
		c.JSON(http.StatusCreated, saved)
	}
}
