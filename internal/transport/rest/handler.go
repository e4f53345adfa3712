// Package rest provides the HTTP JSON API of the storefront.
package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bindassticks/storefront/internal/catalog"
	storeerrors "github.com/bindassticks/storefront/internal/errors"
	"github.com/bindassticks/storefront/internal/service"
	"github.com/bindassticks/storefront/internal/session"
	"github.com/bindassticks/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

const (
	maxLimit     = 100
	defaultLimit = 0
)

// SessionSaver persists a session after a handler changed it.
type SessionSaver interface {
	Save(ctx context.Context, s *session.Session) error
}

// Limits bounds request sizes.
type Limits struct {
	MaxBodyBytes   int64
	MaxUploadBytes int64
}

type Handler struct {
	catalog  service.CatalogService
	checkout service.CheckoutService
	// adminAuth is nil when admin sign-in is not configured.
	adminAuth service.AdminAuthService
	sessions  SessionSaver
	limits    Limits
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewHandler creates a new instance of Handler with the provided services.
func NewHandler(catalogSvc service.CatalogService, checkoutSvc service.CheckoutService, adminAuth service.AdminAuthService, sessions SessionSaver, limits Limits, validate *validator.Validate, logger *slog.Logger) *Handler {
	return &Handler{
		catalog:   catalogSvc,
		checkout:  checkoutSvc,
		adminAuth: adminAuth,
		sessions:  sessions,
		limits:    limits,
		validate:  validate,
		logger:    logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the storefront routes. sessionMW attaches the shopper
// session and adminMW guards the admin console.
func (h *Handler) RegisterRoutes(r chi.Router, sessionMW, adminMW func(http.Handler) http.Handler) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.ListCategories)
			r.Get("/{category}", h.GetCategory)
			r.Get("/{category}/products", h.ListCategoryProducts)
			r.Get("/{category}/{subcategory}/products", h.ListCategoryProducts)
		})
		r.Get("/products/new", h.NewArrivals)

		r.Group(func(r chi.Router) {
			r.Use(sessionMW)
			r.Get("/products/{id}", h.GetProduct)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.GetCart)
				r.Delete("/", h.ClearCart)
				r.Post("/items", h.AddCartItem)
				r.Put("/items/{id}", h.UpdateCartItem)
				r.Delete("/items/{id}", h.RemoveCartItem)
			})

			r.Route("/favorites", func(r chi.Router) {
				r.Get("/", h.ListFavorites)
				r.Post("/", h.AddFavorite)
				r.Get("/{id}", h.IsFavorite)
				r.Delete("/{id}", h.RemoveFavorite)
				r.Post("/{id}/toggle", h.ToggleFavorite)
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/", h.GetCheckout)
				r.Put("/address", h.SaveAddress)
				r.Post("/orders", h.PlaceOrder)
			})
		})

		r.Post("/admin/login", h.AdminLogin)
		r.Route("/admin/products", func(r chi.Router) {
			r.Use(adminMW)
			r.Get("/", h.AdminListProducts)
			r.Post("/", h.AdminCreateProduct)
			r.Put("/{id}", h.AdminUpdateProduct)
			r.Delete("/{id}", h.AdminDeleteProduct)
		})
	})
	r.Get("/healthz", h.HealthCheck)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}

// currentSession returns the request's session or answers 500 when the
// session middleware is missing from the route.
func (h *Handler) currentSession(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*session.Session, bool) {
	s, err := session.FromContext(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "Session is not available", "error", err)
		web.RespondError(w, logger, http.StatusInternalServerError, "Session is not available")
		return nil, false
	}
	return s, true
}

// saveSession persists s and answers 503 when the session store fails.
func (h *Handler) saveSession(w http.ResponseWriter, r *http.Request, logger *slog.Logger, s *session.Session) bool {
	if err := h.sessions.Save(r.Context(), s); err != nil {
		logger.ErrorContext(r.Context(), "Failed to save session", "error", err)
		web.RespondError(w, logger, http.StatusServiceUnavailable, "Failed to save session")
		return false
	}
	return true
}

// respondServiceError maps service and store errors to HTTP responses.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrors):
		web.RespondValidation(w, r, logger, err)
	case errors.Is(err, storeerrors.ErrProductNotFound):
		logger.WarnContext(r.Context(), "Product not found", "error", err)
		web.RespondError(w, logger, http.StatusNotFound, "Product not found")
	case errors.Is(err, catalog.ErrUnknownCategory), errors.Is(err, catalog.ErrUnknownSubcategory):
		logger.WarnContext(r.Context(), "Unknown category route", "error", err)
		web.RespondError(w, logger, http.StatusNotFound, err.Error())
	case errors.Is(err, storeerrors.ErrEmptyCart),
		errors.Is(err, storeerrors.ErrBelowMinimumOrder),
		errors.Is(err, storeerrors.ErrMissingAddress):
		logger.WarnContext(r.Context(), "Checkout rejected", "error", err)
		web.RespondError(w, logger, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, storeerrors.ErrImageRequired), errors.Is(err, storeerrors.ErrUnsupportedImage):
		web.RespondError(w, logger, http.StatusBadRequest, err.Error())
	case errors.Is(err, storeerrors.ErrImageTooLarge):
		web.RespondError(w, logger, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, storeerrors.ErrStorageUnavailable):
		logger.ErrorContext(r.Context(), "Image storage unavailable", "error", err)
		web.RespondError(w, logger, http.StatusServiceUnavailable, "Image storage is temporarily unavailable")
	case errors.Is(err, storeerrors.ErrUploadFailed):
		logger.ErrorContext(r.Context(), "Image upload failed", "error", err)
		web.RespondError(w, logger, http.StatusBadGateway, "Failed to upload image")
	case errors.Is(err, storeerrors.ErrInvalidCredentials):
		web.RespondError(w, logger, http.StatusUnauthorized, err.Error())
	case errors.Is(err, storeerrors.ErrIdPInteractionFailed):
		logger.ErrorContext(r.Context(), "Identity provider unavailable", "error", err)
		web.RespondError(w, logger, http.StatusBadGateway, "Sign-in is temporarily unavailable")
	case errors.Is(err, session.ErrNotProvided):
		logger.ErrorContext(r.Context(), "Session is not available", "error", err)
		web.RespondError(w, logger, http.StatusInternalServerError, "Session is not available")
	default:
		logger.ErrorContext(r.Context(), "Request failed", "error", err)
		web.RespondError(w, logger, http.StatusInternalServerError, "Internal server error")
	}
}

// parseLimit reads the optional limit query parameter.
func (h *Handler) parseLimit(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (int, bool) {
	return web.ParseOptionalInt(r, w, logger, "limit", defaultLimit, web.Between(1, maxLimit))
}
