package orderControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/swiftcart-api/middleware"
	"github.com/junaidrashid-git/swiftcart-api/models"
	"github.com/junaidrashid-git/swiftcart-api/services/orders"
	"go.uber.org/zap"
)

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// GetOrdersHandler lists every order for admins and the caller's own orders otherwise.
func GetOrdersHandler(m *orders.Manager, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := middleware.Session(c)
		var (
			list []models.Order
			err  error
		)
		if session.IsAdmin() {
			list, err = m.List(c.Request.Context())
		} else {
			list, err = m.ListForUser(c.Request.Context(), session.UserID)
		}
		if err != nil {
			log.Error("failed to fetch orders", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// GetOrderHandler hides orders of other users behind a 404.
func GetOrderHandler(m *orders.Manager, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := m.Get(c.Request.Context(), c.Param("orderID"))
		if err != nil {
			log.Error("failed to fetch order", zap.String("order_id", c.Param("orderID")), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
			return
		}
		session := middleware.Session(c)
		if order == nil || (!session.IsAdmin() && order.UserID != session.UserID) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// PlaceOrderHandler creates an order owned by the caller. Any status or tracking
// fields in the body are ignored.
func PlaceOrderHandler(m *orders.Manager, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req orders.CreateInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
			return
		}

		order, err := m.Create(c.Request.Context(), middleware.Session(c).UserID, req)
		if err != nil {
			if errors.Is(err, orders.ErrInvalidOrder) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			log.Error("failed to place order", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}

// UpdateOrderStatusHandler advances an order one step along its lifecycle.
func UpdateOrderStatusHandler(m *orders.Manager, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Status is required"})
			return
		}
		status, err := models.ParseOrderStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order status"})
			return
		}

		id := c.Param("orderID")
		found, err := m.UpdateStatus(c.Request.Context(), id, status)
		switch {
		case errors.Is(err, orders.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		case err != nil:
			log.Error("failed to update order status", zap.String("order_id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status"})
			return
		case !found:
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "status": status})
	}
}
