package routes

import (
	"github.com/gin-gonic/gin"
	orderControllers "github.com/junaidrashid-git/swiftcart-api/controllers/order"
	"github.com/junaidrashid-git/swiftcart-api/middleware"
)

func SetupOrderRoutes(r *gin.Engine, d Deps) {
	orders := r.Group("/orders")
	orders.Use(d.authenticated())
	{
		// All orders for admins, own orders otherwise
		orders.GET("", orderControllers.GetOrdersHandler(d.Orders, d.Log))

		orders.POST("", orderControllers.PlaceOrderHandler(d.Orders, d.Log))

		// websocket endpoint for real-time order updates
		orders.GET("/ws", middleware.RequireAdmin, orderControllers.OrderWebSocketHandler(d.Hub))

		orders.GET("/:orderID", orderControllers.GetOrderHandler(d.Orders, d.Log))

		// Advance order status (Ordered -> Shipped -> OutForDelivery -> Delivered)
		orders.PATCH("/:orderID", middleware.RequireAdmin, orderControllers.UpdateOrderStatusHandler(d.Orders, d.Log))
	}
}
