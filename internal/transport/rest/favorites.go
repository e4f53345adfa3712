package rest

import (
	"net/http"

	"github.com/bindassticks/storefront/internal/favorites"
	"github.com/bindassticks/storefront/internal/service"
	"github.com/bindassticks/storefront/internal/session"
	"github.com/bindassticks/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
)

type FavoritesView struct {
	Items []favorites.Item `json:"items"`
	Total int              `json:"total"`
}

type FavoriteStatus struct {
	ID       string `json:"id"`
	Favorite bool   `json:"favorite"`
	Total    int    `json:"total"`
}

type AddFavoriteRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

func favoritesView(f *favorites.Favorites) FavoritesView {
	return FavoritesView{Items: f.Items(), Total: f.Count()}
}

func toFavorite(p *service.ProductDto) favorites.Item {
	return favorites.Item{
		ProductID:   p.ID,
		Name:        p.Name,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Category:    p.Category,
		Subcategory: p.Subcategory,
	}
}

func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	f, err := session.FavoritesFrom(r.Context())
	if err != nil {
		h.respondServiceError(w, r, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, favoritesView(f))
}

func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	s, ok := h.currentSession(w, r, mLogger)
	if !ok {
		return
	}
	var req AddFavoriteRequest
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
	s.Favorites.Add(toFavorite(product))
	if !h.saveSession(w, r, mLogger, s) {
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, favoritesView(s.Favorites))
}

// ToggleFavorite removes a liked product or adds an unliked one.
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	s, ok := h.currentSession(w, r, mLogger)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	// Only a product being added needs its details; removal goes by id.
	item := favorites.Item{ProductID: id}
	if !s.Favorites.Contains(id) {
		product, err := h.catalog.FindByID(r.Context(), id)
		if err != nil {
			h.respondServiceError(w, r, mLogger, err)
			return
		}
		item = toFavorite(product)
	}
	favorite := s.Favorites.Toggle(item)
	if !h.saveSession(w, r, mLogger, s) {
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, FavoriteStatus{ID: id, Favorite: favorite, Total: s.Favorites.Count()})
}

func (h *Handler) IsFavorite(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	f, err := session.FavoritesFrom(r.Context())
	if err != nil {
		h.respondServiceError(w, r, mLogger, err)
		return
	}
	id := chi.URLParam(r, "id")
	web.RespondJSON(w, mLogger, http.StatusOK, FavoriteStatus{ID: id, Favorite: f.Contains(id), Total: f.Count()})
}

func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	s, ok := h.currentSession(w, r, mLogger)
	if !ok {
		return
	}
	s.Favorites.Remove(chi.URLParam(r, "id"))
	if !h.saveSession(w, r, mLogger, s) {
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, favoritesView(s.Favorites))
}
