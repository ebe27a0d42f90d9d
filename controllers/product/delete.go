package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/swiftcart-api/middleware"
	"github.com/junaidrashid-git/swiftcart-api/services/catalog"
	"go.uber.org/zap"
)

func DeleteProduct(svc *catalog.Service, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.DeleteProduct(c.Request.Context(), middleware.Session(c), c.Param("id")); err != nil {
			respondError(c, log, err, "Failed to delete product")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
	}
}
