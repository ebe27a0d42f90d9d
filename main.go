package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/junaidrashid-git/swiftcart-api/auth"
	"github.com/junaidrashid-git/swiftcart-api/backup"
	"github.com/junaidrashid-git/swiftcart-api/config"
	"github.com/junaidrashid-git/swiftcart-api/events"
	"github.com/junaidrashid-git/swiftcart-api/logger"
	"github.com/junaidrashid-git/swiftcart-api/middleware"
	"github.com/junaidrashid-git/swiftcart-api/models"
	"github.com/junaidrashid-git/swiftcart-api/payment"
	"github.com/junaidrashid-git/swiftcart-api/persistence"
	"github.com/junaidrashid-git/swiftcart-api/routes"
	"github.com/junaidrashid-git/swiftcart-api/services/catalog"
	"github.com/junaidrashid-git/swiftcart-api/services/orders"
	"github.com/junaidrashid-git/swiftcart-api/store"
	"go.uber.org/zap"
)

const devJWTSecret = "swiftcart-dev-secret"

type collections struct {
	products *persistence.Collection[models.Product]
	orders   *persistence.Collection[models.Order]
	users    *persistence.Collection[models.User]
	banners  *persistence.Collection[string]
}

func (c collections) keys() []string {
	return []string{c.products.Key(), c.orders.Key(), c.users.Key(), c.banners.Key()}
}

func main() {
	// Load environment variables
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	zlog, err := logger.New(cfg.Logger, cfg.Server.IsDevelopment())
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate(); err != nil {
		zlog.Fatal("invalid configuration", zap.Error(err))
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		zlog.Fatal("failed to open store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer st.Close()

	remote := persistence.NewRemote(cfg.Remote, zlog)
	colls := openCollections(st, remote, zlog)

	roles := auth.NewRoleResolver(cfg.Auth.AdminEmails, cfg.Auth.AdminMobiles)
	tokens := auth.NewTokenIssuer(jwtSecret(cfg, zlog), cfg.Auth.TokenTTL)
	provider := identityProvider(ctx, cfg.Auth, zlog)

	hub := events.NewHub(zlog)
	publishers := events.Multi{hub}
	if len(cfg.Events.KafkaBrokers) > 0 {
		kafka := events.NewKafkaPublisher(cfg.Events.KafkaBrokers, cfg.Events.KafkaTopic)
		defer kafka.Close()
		publishers = append(publishers, kafka)
	}

	orderMgr := orders.NewManager(colls.orders, publishers, zlog, orders.Options{SimulateTracking: cfg.Tracking.Simulate})
	catalogSvc := catalog.NewService(colls.products, colls.banners, orderMgr, zlog)
	if err := catalogSvc.Seed(ctx); err != nil {
		zlog.Error("failed to seed catalog", zap.Error(err))
	}

	if cfg.Backup.Dir != "" {
		go backup.NewJob(cfg.Backup, st, colls.keys(), cfg.Server.UploadDir, zlog).Run(ctx)
	}

	if !cfg.Server.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(zlog), gin.Recovery())
	r.MaxMultipartMemory = 32 << 20

	// CORS settings
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(r, routes.Deps{
		Server:   cfg.Server,
		Log:      zlog,
		Tokens:   tokens,
		Roles:    roles,
		Provider: provider,
		Signup:   auth.NewSignup(provider, roles, zlog),
		Sessions: auth.NewSessionBridge(colls.users, roles, tokens, zlog),
		Orders:   orderMgr,
		Catalog:  catalogSvc,
		Payments: payment.NewGateway(cfg.Payment, zlog),
		Hub:      hub,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zlog.Info("server running", zap.String("port", cfg.Server.Port), zap.String("store", cfg.Store.Driver), zap.Bool("remote_api", remote.Enabled()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
}

func openCollections(st store.Store, remote *persistence.Remote, zlog *zap.Logger) collections {
	return collections{
		products: persistence.NewCollection[models.Product](st, remote, zlog, persistence.Options{
			Name:           "products",
			Version:        "v15",
			LegacyVersions: []string{"v14"},
			SchemaVersion:  1,
			Migrations:     map[int]persistence.Migration{0: fillProductDefaults},
			RemotePath:     "/products",
		}),
		orders: persistence.NewCollection[models.Order](st, remote, zlog, persistence.Options{
			Name:          "orders",
			Version:       "v1",
			SchemaVersion: 1,
			RemotePath:    "/orders",
		}),
		users: persistence.NewCollection[models.User](st, remote, zlog, persistence.Options{
			Name:          "users",
			Version:       "v_final",
			SchemaVersion: 1,
		}),
		banners: persistence.NewCollection[string](st, remote, zlog, persistence.Options{
			Name:           "banners",
			Version:        "v4",
			LegacyVersions: []string{"v3"},
			SchemaVersion:  1,
			RemotePath:     "/banners",
		}),
	}
}

// fillProductDefaults gives products written before reviews existed empty review fields.
func fillProductDefaults(raw json.RawMessage) (json.RawMessage, error) {
	var products []map[string]interface{}
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, err
	}
	for _, p := range products {
		if _, ok := p["reviews"]; !ok {
			p["reviews"] = []interface{}{}
			p["reviewsCount"] = 0
		}
	}
	return json.Marshal(products)
}

func jwtSecret(cfg *config.Config, zlog *zap.Logger) string {
	if cfg.Auth.JWTSecret != "" {
		return cfg.Auth.JWTSecret
	}
	if !cfg.Server.IsDevelopment() {
		zlog.Fatal("JWT_SECRET is required outside development")
	}
	zlog.Warn("JWT_SECRET not set, using development secret")
	return devJWTSecret
}

func identityProvider(ctx context.Context, cfg config.AuthConfig, zlog *zap.Logger) auth.IdentityProvider {
	if cfg.FirebaseCredentialsJSON == "" {
		zlog.Warn("firebase credentials not set, sign-in is disabled")
		return auth.DisabledProvider{}
	}
	provider, err := auth.NewFirebaseProvider(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsJSON)
	if err != nil {
		zlog.Fatal("failed to init firebase", zap.Error(err))
	}
	return provider
}
