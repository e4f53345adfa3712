// Package service provides the storefront business logic on top of the stores.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bindassticks/storefront/internal/catalog"
	storeerrors "github.com/bindassticks/storefront/internal/errors"
	"github.com/bindassticks/storefront/internal/media"
	"github.com/bindassticks/storefront/internal/store"
	"github.com/go-playground/validator/v10"
)

// DefaultNewArrivals is the number of products shown as new arrivals when no limit is given.
const DefaultNewArrivals = 8

// CatalogService defines the methods for browsing and managing products.
type CatalogService interface {
	// List returns the products of a category route, newest first.
	// An empty Category lists every product.
	// Returns catalog.ErrUnknownCategory or catalog.ErrUnknownSubcategory for invalid routes.
	List(ctx context.Context, query ListQuery) ([]ProductDto, error)

	// NewArrivals returns the most recently added products.
	NewArrivals(ctx context.Context, limit int) ([]ProductDto, error)

	// FindByID returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id string) (*ProductDto, error)

	// Create adds a product. An image is required.
	Create(ctx context.Context, in ProductInput, image *media.Object) (*ProductDto, error)

	// Update modifies a product. Without an image the current image URL is kept.
	Update(ctx context.Context, id string, in ProductInput, image *media.Object) (*ProductDto, error)

	Delete(ctx context.Context, id string) error
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       int64     `json:"price"`
	Category    string    `json:"category"`
	Subcategory string    `json:"subcategory,omitempty"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProductInput carries the admin editable fields of a product.
type ProductInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Price       int64  `json:"price" validate:"min=0"`
	Category    string `json:"category" validate:"required"`
	Subcategory string `json:"subcategory"`
	Description string `json:"description" validate:"max=2000"`
}

// ListQuery narrows List. Search matches product names case-insensitively.
type ListQuery struct {
	Category    string
	Subcategory string
	Search      string
	Limit       int
}

// Catalog implements CatalogService.
type Catalog struct {
	products      store.ProductStore
	uploader      media.Uploader
	maxImageBytes int64
	validate      *validator.Validate
	logger        *slog.Logger
}

func NewCatalog(products store.ProductStore, uploader media.Uploader, maxImageBytes int64, validate *validator.Validate, logger *slog.Logger) *Catalog {
	return &Catalog{
		products:      products,
		uploader:      uploader,
		maxImageBytes: maxImageBytes,
		validate:      validate,
		logger:        logger,
	}
}

func (c *Catalog) List(ctx context.Context, query ListQuery) ([]ProductDto, error) {
	filter := store.Filter{Limit: query.Limit}
	if query.Category != "" {
		route, err := catalog.Resolve(query.Category, query.Subcategory)
		if err != nil {
			return nil, err
		}
		filter.Category = route.Category.Slug
		filter.Subcategory = route.SubcategorySlug()
	}

	search := strings.ToLower(strings.TrimSpace(query.Search))
	if search != "" {
		// limit applies to the matches, not to the scanned page
		filter.Limit = 0
	}
	products, err := c.products.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	dtos := make([]ProductDto, 0, len(products))
	for _, p := range products {
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		dtos = append(dtos, toDto(p))
		if query.Limit > 0 && len(dtos) == query.Limit {
			break
		}
	}
	return dtos, nil
}

func (c *Catalog) NewArrivals(ctx context.Context, limit int) ([]ProductDto, error) {
	if limit <= 0 {
		limit = DefaultNewArrivals
	}
	return c.List(ctx, ListQuery{Limit: limit})
}

func (c *Catalog) FindByID(ctx context.Context, id string) (*ProductDto, error) {
	p, err := c.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toDto(*p)
	return &dto, nil
}

func (c *Catalog) Create(ctx context.Context, in ProductInput, image *media.Object) (*ProductDto, error) {
	p, err := c.prepare(in)
	if err != nil {
		return nil, err
	}
	if image == nil {
		return nil, storeerrors.ErrImageRequired
	}
	if p.ImageURL, err = c.upload(ctx, *image); err != nil {
		return nil, err
	}

	created, err := c.products.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	c.logger.InfoContext(ctx, "Product created", "id", created.ID, "category", created.Category)
	dto := toDto(*created)
	return &dto, nil
}

func (c *Catalog) Update(ctx context.Context, id string, in ProductInput, image *media.Object) (*ProductDto, error) {
	p, err := c.prepare(in)
	if err != nil {
		return nil, err
	}
	existing, err := c.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.ID = existing.ID
	p.CreatedAt = existing.CreatedAt
	p.ImageURL = existing.ImageURL
	if image != nil {
		if p.ImageURL, err = c.upload(ctx, *image); err != nil {
			return nil, err
		}
	}

	updated, err := c.products.Update(ctx, p)
	if err != nil {
		return nil, err
	}
	c.logger.InfoContext(ctx, "Product updated", "id", updated.ID)
	dto := toDto(*updated)
	return &dto, nil
}

func (c *Catalog) Delete(ctx context.Context, id string) error {
	if err := c.products.Delete(ctx, id); err != nil {
		return err
	}
	c.logger.InfoContext(ctx, "Product deleted", "id", id)
	return nil
}

// prepare validates in and normalises its category route to canonical slugs.
func (c *Catalog) prepare(in ProductInput) (store.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := c.validate.Struct(in); err != nil {
		return store.Product{}, err
	}
	route, err := catalog.Resolve(in.Category, in.Subcategory)
	if err != nil {
		return store.Product{}, err
	}
	return store.Product{
		Name:        in.Name,
		Price:       in.Price,
		Category:    route.Category.Slug,
		Subcategory: route.SubcategorySlug(),
		Description: in.Description,
	}, nil
}

func (c *Catalog) upload(ctx context.Context, image media.Object) (string, error) {
	if err := media.Validate(image, c.maxImageBytes); err != nil {
		return "", err
	}
	url, err := c.uploader.Upload(ctx, image)
	if err != nil {
		if errors.Is(err, storeerrors.ErrStorageUnavailable) || errors.Is(err, storeerrors.ErrUploadFailed) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", storeerrors.ErrUploadFailed, err)
	}
	return url, nil
}

func toDto(p store.Product) ProductDto {
	return ProductDto{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Category:    p.Category,
		Subcategory: p.Subcategory,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
