package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/swiftcart-api/middleware"
	"github.com/junaidrashid-git/swiftcart-api/services/catalog"
	"go.uber.org/zap"
)

// AddReview posts a review on /products/:id/reviews as the session user.
func AddReview(svc *catalog.Service, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in catalog.ReviewInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
			return
		}
		review, err := svc.AddReview(c.Request.Context(), middleware.Session(c), c.Param("id"), in)
		if err != nil {
			respondError(c, log, err, "Failed to add review")
			return
		}
		c.JSON(http.StatusCreated, review)
	}
}

func LikeReview(svc *catalog.Service, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		review, err := svc.LikeReview(c.Request.Context(), c.Param("id"), c.Param("reviewId"))
		if err != nil {
			respondError(c, log, err, "Failed to like review")
			return
		}
		c.JSON(http.StatusOK, review)
	}
}
