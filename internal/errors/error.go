// Package errors provides the sentinel errors of the storefront.
package errors

import "errors"

// product store
var (
	ErrProductNotFound     = errors.New("product not found")
	ErrFailedToFindProduct = errors.New("failed to find product")
	ErrCreateProduct       = errors.New("failed to create product")
	ErrUpdateProduct       = errors.New("failed to update product")
	ErrDeleteProduct       = errors.New("failed to delete product")
)

// checkout
var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrBelowMinimumOrder = errors.New("order total is below the minimum order value")
	ErrMissingAddress    = errors.New("shipping address is missing")
)

// admin product images
var (
	ErrImageRequired      = errors.New("product image is required")
	ErrUnsupportedImage   = errors.New("unsupported image type")
	ErrImageTooLarge      = errors.New("image is too large")
	ErrUploadFailed       = errors.New("failed to upload image")
	ErrStorageUnavailable = errors.New("image storage is temporarily unavailable")
)

// admin login
var (
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrIdPInteractionFailed = errors.New("identity provider interaction failed")
)
