package orderControllers

import (
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/swiftcart-api/events"
)

// OrderWebSocketHandler streams order events to the connected client.
func OrderWebSocketHandler(hub *events.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		hub.ServeWS(c.Writer, c.Request)
	}
}
