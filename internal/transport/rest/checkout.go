package rest

import (
	"net/http"

	"github.com/bindassticks/storefront/internal/service"
	"github.com/bindassticks/storefront/internal/session"
	"github.com/bindassticks/storefront/pkg/web"
)

type CheckoutView struct {
	Quote   service.Quote            `json:"quote"`
	Address *session.ShippingAddress `json:"address"`
	Items   int                      `json:"items"`
}

func (h *Handler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	s, ok := h.currentSession(w, r, mLogger)
	if !ok {
		return
	}
	view := CheckoutView{Quote: h.checkout.Quote(s.Cart), Items: s.Cart.TotalItems()}
	if addr, ok := s.Address(); ok {
		view.Address = &addr
	}
	web.RespondJSON(w, mLogger, http.StatusOK, view)
}

func (h *Handler) SaveAddress(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	s, ok := h.currentSession(w, r, mLogger)
	if !ok {
		return
	}
	var addr session.ShippingAddress
	if !web.DecodeJSON(w, r, mLogger, h.limits.MaxBodyBytes, &addr) {
		return
	}
	if err := h.checkout.SaveAddress(s, addr); err != nil {
		h.respondServiceError(w, r, mLogger, err)
		return
	}
	if !h.saveSession(w, r, mLogger, s) {
		return
	}
	saved, _ := s.Address()
	web.RespondJSON(w, mLogger, http.StatusOK, saved)
}

func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	s, ok := h.currentSession(w, r, mLogger)
	if !ok {
		return
	}
	order, err := h.checkout.PlaceOrder(r.Context(), s)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err)
		return
	}
	if !h.saveSession(w, r, mLogger, s) {
		return
	}
	mLogger.InfoContext(r.Context(), "Order placed successfully", "ID", order.ID)
	web.RespondJSON(w, mLogger, http.StatusCreated, order)
}
