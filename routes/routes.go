package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/swiftcart-api/auth"
	"github.com/junaidrashid-git/swiftcart-api/config"
	"github.com/junaidrashid-git/swiftcart-api/events"
	"github.com/junaidrashid-git/swiftcart-api/middleware"
	"github.com/junaidrashid-git/swiftcart-api/payment"
	"github.com/junaidrashid-git/swiftcart-api/services/catalog"
	"github.com/junaidrashid-git/swiftcart-api/services/orders"
	"go.uber.org/zap"
)

// Deps are the services the HTTP layer dispatches to.
type Deps struct {
	Server   config.ServerConfig
	Log      *zap.Logger
	Tokens   *auth.TokenIssuer
	Roles    *auth.RoleResolver
	Provider auth.IdentityProvider
	Signup   *auth.Signup
	Sessions *auth.SessionBridge
	Orders   *orders.Manager
	Catalog  *catalog.Service
	Payments *payment.Gateway
	Hub      *events.Hub
}

func (d Deps) authenticated() gin.HandlerFunc {
	return middleware.ValidateToken(d.Tokens, d.Roles)
}

// SetupRoutes is the single entry point that wires every route group.
func SetupRoutes(r *gin.Engine, d Deps) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public auth routes
	SetupAuthRoutes(r, d)

	// Signed-in user routes
	SetupUserRoutes(r, d)

	// Catalog: public reads, admin writes
	SetupProductRoutes(r, d)
	SetupBannerRoutes(r, d)

	// Admin-only tooling
	SetupAdminRoutes(r, d)

	SetupOrderRoutes(r, d)

	SetupPaymentRoutes(r, d)

	// Uploaded images and the single page app
	SetupStaticRoutes(r, d)
}
