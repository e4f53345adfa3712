// Package app contains the application setup for the storefront.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Nerzal/gocloak/v13"
	"github.com/bindassticks/storefront/internal/config"
	"github.com/bindassticks/storefront/internal/media"
	"github.com/bindassticks/storefront/internal/service"
	"github.com/bindassticks/storefront/internal/session"
	"github.com/bindassticks/storefront/internal/store"
	"github.com/bindassticks/storefront/internal/transport/rest"
	"github.com/bindassticks/storefront/pkg/auth"
	"github.com/bindassticks/storefront/pkg/bootstrap"
	pkgconfig "github.com/bindassticks/storefront/pkg/config"
	"github.com/bindassticks/storefront/pkg/messaging"
	"github.com/bindassticks/storefront/pkg/server"
	"github.com/bindassticks/storefront/pkg/web"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const ServiceName = "storefront"

type Dependencies struct {
	CatalogService  service.CatalogService
	CheckoutService service.CheckoutService
	Sessions        *session.Manager
	Cookie          session.CookieOptions
	// Verifier is nil when the admin console is disabled.
	Verifier      auth.Verifier
	AllowedAdmins []string
	// AdminAuth is nil unless admin sign-in is configured.
	AdminAuth      service.AdminAuthService
	Limits         rest.Limits
	MetricsHandler http.Handler
	MetricsPath    string
	Validate       *validator.Validate
	Logger         *slog.Logger
}

// Backends are the collaborators SetupDependencies builds the services on.
type Backends struct {
	Products  store.ProductStore
	Uploader  media.Uploader
	Sessions  session.Store
	Publisher messaging.Publisher
	Verifier  auth.Verifier
	// IdPClient signs admins in; nil disables POST /api/v1/admin/login.
	IdPClient service.IdPClient
	// MetricsHandler serves the Prometheus registry; nil leaves /metrics unrouted.
	MetricsHandler http.Handler
}

func SetupDependencies(cfg *config.Config, b Backends, logger *slog.Logger) (*Dependencies, error) {
	sameSite, err := cfg.Session.SameSiteMode()
	if err != nil {
		return nil, err
	}
	validate := validator.New()
	pricing := service.Pricing{
		MinimumOrder:   cfg.Checkout.MinimumOrder,
		DeliveryCharge: cfg.Checkout.DeliveryCharge,
	}

	var adminAuth service.AdminAuthService
	if cfg.Admin.Enabled && b.IdPClient != nil {
		adminAuth = service.NewAdminAuth(b.IdPClient, cfg.Admin.Login, validate, logger)
	}

	return &Dependencies{
		CatalogService:  service.NewCatalog(b.Products, b.Uploader, cfg.Media.MaxUploadBytes, validate, logger),
		CheckoutService: service.NewCheckout(pricing, b.Publisher, validate, logger),
		Sessions:        session.NewManager(b.Sessions, cfg.Session.TTL, logger),
		Cookie: session.CookieOptions{
			Name:     cfg.Session.CookieName,
			Secure:   cfg.Session.Secure,
			SameSite: sameSite,
		},
		Verifier:      b.Verifier,
		AllowedAdmins: cfg.Admin.IdP.AllowedEmails,
		AdminAuth:     adminAuth,
		Limits: rest.Limits{
			MaxBodyBytes:   cfg.HTTPServer.MaxBodyBytes,
			MaxUploadBytes: cfg.Media.MaxUploadBytes,
		},
		MetricsHandler: b.MetricsHandler,
		MetricsPath:    cfg.Telemetry.Metrics.Path,
		Validate:       validate,
		Logger:         logger,
	}, nil
}

// SetupHttpHandler initializes the router and routes of the storefront.
// Used by tests to get the full middleware chain without a listener.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	h := rest.NewHandler(deps.CatalogService, deps.CheckoutService, deps.AdminAuth, deps.Sessions, deps.Limits, deps.Validate, deps.Logger)
	sessionMW := session.Middleware(deps.Sessions, deps.Cookie, deps.Logger)
	h.RegisterRoutes(mux, sessionMW, adminMiddleware(deps))
	mux.Delete("/api/v1/session", session.DestroyHandler(deps.Sessions, deps.Cookie, deps.Logger))
	if deps.MetricsHandler != nil {
		mux.Method(http.MethodGet, deps.MetricsPath, deps.MetricsHandler)
	}
}

func adminMiddleware(deps *Dependencies) func(http.Handler) http.Handler {
	if deps.Verifier != nil {
		return auth.RequireAdmin(deps.Verifier, deps.AllowedAdmins, deps.Logger)
	}
	return func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			web.RespondError(w, deps.Logger, http.StatusNotFound, "Admin console is disabled")
		})
	}
}

// SetupHttpServer creates the HTTP server of the storefront.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	return server.NewHTTPServer(cfg.HTTPServer, ServiceName, SetupHttpHandler(deps))
}

// Closer releases a backend.
type Closer func()

// NewProductStore opens the product store selected by cfg.Driver.
func NewProductStore(ctx context.Context, cfg config.CatalogConfig, logger *slog.Logger) (store.ProductStore, Closer, error) {
	switch cfg.Driver {
	case config.CatalogDriverFirestore:
		client, err := bootstrap.NewFirestoreClient(ctx, cfg.Firestore)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using firestore product store", "project", cfg.Firestore.ProjectID, "collection", cfg.Firestore.Collection)
		return store.NewFirestoreStore(client, cfg.Firestore.Collection), func() {
			if err := client.Close(); err != nil {
				logger.Error("Failed to close firestore client", "error", err)
			}
		}, nil
	case config.CatalogDriverPostgres:
		if cfg.Database.Migrate {
			if err := store.Migrate(cfg.Database.URL); err != nil {
				return nil, nil, err
			}
			logger.Info("Database migrations applied")
		}
		pool, err := bootstrap.NewDbPool(ctx, cfg.Database.URL, cfg.Database.Timeout)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Successfully connected to the database!")
		return store.NewPgStore(pool), pool.Close, nil
	default:
		logger.Warn("Using in-memory product store; products are lost on restart")
		return store.NewMemoryStore(), func() {}, nil
	}
}

// NewUploader builds the image uploader selected by cfg.Driver, wrapped in retries and a circuit breaker.
func NewUploader(ctx context.Context, cfg config.MediaConfig, logger *slog.Logger) (media.Uploader, Closer, error) {
	switch cfg.Driver {
	case config.MediaDriverR2:
		client, err := media.NewR2Client(ctx, cfg.R2)
		if err != nil {
			return nil, nil, err
		}
		up := media.NewR2Uploader(client, cfg.R2.Bucket, cfg.R2.PublicURL)
		return media.NewBreakerUploader(up, cfg.Resilience, logger), func() {}, nil
	case config.MediaDriverGCS:
		client, err := media.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, nil, err
		}
		up := media.NewGCSUploader(client, cfg.GCS.Bucket, cfg.GCS.PublicURL)
		return media.NewBreakerUploader(up, cfg.Resilience, logger), func() {
			if err := client.Close(); err != nil {
				logger.Error("Failed to close gcs client", "error", err)
			}
		}, nil
	default:
		logger.Warn("Image uploads are disabled")
		return media.Disabled{}, func() {}, nil
	}
}

// NewSessionStore builds the session store selected by cfg.Driver.
func NewSessionStore(ctx context.Context, cfg pkgconfig.SessionConfig, logger *slog.Logger) (session.Store, Closer, error) {
	if cfg.Driver == pkgconfig.SessionDriverRedis {
		client, err := bootstrap.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return session.NewRedisStore(client, cfg.Redis.KeyPrefix), func() {
			if err := client.Close(); err != nil {
				logger.Error("Failed to close redis client", "error", err)
			}
		}, nil
	}
	s := session.NewMemoryStore(cfg.TTL, cfg.Capacity)
	return s, s.Close, nil
}

// NewVerifier returns the admin token verifier, or nil when the admin console is disabled.
func NewVerifier(ctx context.Context, cfg config.AdminConfig) (auth.Verifier, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	v, err := auth.NewJWTVerifier(ctx, cfg.IdP)
	if err != nil {
		return nil, fmt.Errorf("failed to create admin token verifier: %w", err)
	}
	return v, nil
}

// NewIdPClient returns the Keycloak client for admin sign-in, or nil when the
// admin console is disabled or has no login realm.
func NewIdPClient(cfg config.AdminConfig) service.IdPClient {
	if !cfg.Enabled || !cfg.Login.Configured() {
		return nil
	}
	return gocloak.NewClient(cfg.Login.URL)
}
