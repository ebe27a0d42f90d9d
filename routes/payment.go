package routes

import (
	"github.com/gin-gonic/gin"
	paymentControllers "github.com/junaidrashid-git/swiftcart-api/controllers/payment"
)

func SetupPaymentRoutes(r *gin.Engine, d Deps) {
	payment := r.Group("/api/payment")
	{
		payment.POST("/initiate", paymentControllers.PaymentRequestHandler(d.Payments))
	}
}
