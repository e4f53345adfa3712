// Package store provides product persistence.
package store

import (
	"context"
	"time"
)

// Product is a sticker offered in the shop. Price is in minor currency units.
type Product struct {
	ID          string    `firestore:"-"`
	Name        string    `firestore:"name"`
	Price       int64     `firestore:"price"`
	Category    string    `firestore:"category"`
	Subcategory string    `firestore:"subcategory"`
	Description string    `firestore:"description"`
	ImageURL    string    `firestore:"imageUrl"`
	CreatedAt   time.Time `firestore:"createdAt"`
	UpdatedAt   time.Time `firestore:"updatedAt"`
}

// Filter narrows Find. Empty fields match everything; a Limit of 0 means no limit.
type Filter struct {
	Category    string
	Subcategory string
	Limit       int
}

// ProductStore is an interface for product storage operations.
// Results of Find are ordered newest first.
type ProductStore interface {
	// FindByID returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id string) (*Product, error)

	Find(ctx context.Context, filter Filter) ([]Product, error)

	// Create assigns ID, CreatedAt and UpdatedAt.
	Create(ctx context.Context, p Product) (*Product, error)

	// Update replaces the editable fields of p.ID and refreshes UpdatedAt.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, p Product) (*Product, error)

	// Delete returns ErrProductNotFound if no product exists with the given ID.
	Delete(ctx context.Context, id string) error
}
