package productcontroller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/swiftcart-api/auth"
	"github.com/junaidrashid-git/swiftcart-api/services/catalog"
	"go.uber.org/zap"
)

func respondError(c *gin.Context, log *zap.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, catalog.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
	case errors.Is(err, auth.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Please log in first"})
	case errors.Is(err, catalog.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
	case errors.Is(err, catalog.ErrInvalidProduct), errors.Is(err, catalog.ErrInvalidReview):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error(fallback, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
