package rest

import (
	"net/http"

	"github.com/bindassticks/storefront/internal/cart"
	"github.com/bindassticks/storefront/internal/service"
	"github.com/bindassticks/storefront/internal/session"
	"github.com/bindassticks/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
)

// CartView is the cart with its totals and checkout quote.
type CartView struct {
	Items      []cart.Item   `json:"items"`
	TotalItems int           `json:"totalItems"`
	TotalPrice int64         `json:"totalPrice"`
	Quote      service.Quote `json:"quote"`
}

type AddCartItemRequest struct {
	ProductID  string         `json:"productId" validate:"required"`
	Quantity   int            `json:"quantity" validate:"omitempty,min=1,max=99"`
	Attributes map[string]any `json:"attributes"`
}

type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,max=99"`
}

func (h *Handler) cartView(c *cart.Cart) CartView {
	return CartView{
		Items:      c.Items(),
		TotalItems: c.TotalItems(),
		TotalPrice: c.TotalPrice(),
		Quote:      h.checkout.Quote(c),
	}
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	c, err := session.CartFrom(r.Context())
	if err != nil {
		h.respondServiceError(w, r, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, h.cartView(c))
}

// AddCartItem adds Quantity units of a product, one addToCart per unit.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	s, ok := h.currentSession(w, r, mLogger)
	if !ok {
		return
	}
	var req AddCartItemRequest
	if !web.DecodeJSON(w, r, mLogger, h.limits.MaxBodyBytes, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		web.RespondValidation(w, r, mLogger, err)
		return
	}

	product, err := h.catalog.FindByID(r.Context(), req.ProductID)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err)
		return
	}
	p := cart.Product{
		ID:         product.ID,
		Name:       product.Name,
		Price:      product.Price,
		ImageURL:   product.ImageURL,
		Attributes: req.Attributes,
	}
	for range max(req.Quantity, 1) {
		s.Cart.Add(p)
	}
	if !h.saveSession(w, r, mLogger, s) {
		return
	}
	mLogger.DebugContext(r.Context(), "Added to cart", "product_id", p.ID, "quantity", max(req.Quantity, 1))
	web.RespondJSON(w, mLogger, http.StatusOK, h.cartView(s.Cart))
}

// UpdateCartItem sets the quantity of a cart line; zero or less removes it.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	s, ok := h.currentSession(w, r, mLogger)
	if !ok {
		return
	}
	var req UpdateCartItemRequest
	if !web.DecodeJSON(w, r, mLogger, h.limits.MaxBodyBytes, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		web.RespondValidation(w, r, mLogger, err)
		return
	}
	s.Cart.UpdateQuantity(chi.URLParam(r, "id"), *req.Quantity)
	if !h.saveSession(w, r, mLogger, s) {
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, h.cartView(s.Cart))
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	s, ok := h.currentSession(w, r, mLogger)
	if !ok {
		return
	}
	s.Cart.Remove(chi.URLParam(r, "id"))
	if !h.saveSession(w, r, mLogger, s) {
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, h.cartView(s.Cart))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	s, ok := h.currentSession(w, r, mLogger)
	if !ok {
		return
	}
	s.Cart.Clear()
	if !h.saveSession(w, r, mLogger, s) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
