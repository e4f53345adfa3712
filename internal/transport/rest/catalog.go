package rest

import (
	"net/http"

	"github.com/bindassticks/storefront/internal/catalog"
	"github.com/bindassticks/storefront/internal/service"
	"github.com/bindassticks/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
)

// ProductDetail is a product together with the shopper's favorite flag.
type ProductDetail struct {
	service.ProductDto
	Favorite bool `json:"favorite"`
}

// ProductList is the response of the product listing endpoints.
type ProductList struct {
	Category    *catalog.Category    `json:"category,omitempty"`
	Subcategory *catalog.Subcategory `json:"subcategory,omitempty"`
	Products    []service.ProductDto `json:"products"`
	Total       int                  `json:"total"`
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	web.RespondJSON(w, h.loggerWithReqID(r), http.StatusOK, catalog.All())
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	route, err := catalog.Resolve(chi.URLParam(r, "category"), "")
	if err != nil {
		h.respondServiceError(w, r, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, route.Category)
}

// ListCategoryProducts serves both the category and the subcategory listing.
func (h *Handler) ListCategoryProducts(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	limit, ok := h.parseLimit(w, r, mLogger)
	if !ok {
		return
	}
	route, err := catalog.Resolve(chi.URLParam(r, "category"), chi.URLParam(r, "subcategory"))
	if err != nil {
		h.respondServiceError(w, r, mLogger, err)
		return
	}

	products, err := h.catalog.List(r.Context(), service.ListQuery{
		Category:    route.Category.Slug,
		Subcategory: route.SubcategorySlug(),
		Search:      r.URL.Query().Get("q"),
		Limit:       limit,
	})
	if err != nil {
		h.respondServiceError(w, r, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, ProductList{
		Category:    &route.Category,
		Subcategory: route.Subcategory,
		Products:    products,
		Total:       len(products),
	})
}

func (h *Handler) NewArrivals(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	limit, ok := h.parseLimit(w, r, mLogger)
	if !ok {
		return
	}
	products, err := h.catalog.NewArrivals(r.Context(), limit)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, ProductList{Products: products, Total: len(products)})
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	s, ok := h.currentSession(w, r, mLogger)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	found, err := h.catalog.FindByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, ProductDetail{
		ProductDto: *found,
		Favorite:   s.Favorites.Contains(found.ID),
	})
}
