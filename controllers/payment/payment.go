package paymentControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/swiftcart-api/middleware"
	"github.com/junaidrashid-git/swiftcart-api/payment"
)

// PaymentRequestHandler starts a checkout session. The body is
// {amount, orderId, email, name} and the reply is {success, payment_session_id?}.
func PaymentRequestHandler(g *payment.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req payment.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, payment.Result{Message: "Invalid request payload"})
			return
		}
		if s := middleware.Session(c); s != nil && req.Phone == "" {
			req.Phone = s.Phone
		}

		res := g.InitiatePayment(c.Request.Context(), req)
		if !res.Success {
			c.JSON(http.StatusInternalServerError, res)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}
