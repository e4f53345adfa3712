package session

import (
	"context"
	"errors"

	"github.com/bindassticks/storefront/internal/cart"
	"github.com/bindassticks/storefront/internal/favorites"
)

// ErrNotProvided means the code ran outside a request scope that carries a session.
// It signals a wiring mistake, not a shopper error.
var ErrNotProvided = errors.New("session: no session in context, is the session middleware installed")

type sessionKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session attached by NewContext.
func FromContext(ctx context.Context) (*Session, error) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	if !ok || s == nil {
		return nil, ErrNotProvided
	}
	return s, nil
}

// CartFrom returns the cart of the session in ctx.
func CartFrom(ctx context.Context) (*cart.Cart, error) {
	s, err := FromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.Cart, nil
}

// FavoritesFrom returns the favorites of the session in ctx.
func FavoritesFrom(ctx context.Context) (*favorites.Favorites, error) {
	s, err := FromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.Favorites, nil
}
