// Package session scopes a cart and a favorites list to one anonymous shopper.
//
// The Session travels in the request context; handlers obtain the stores with
// CartFrom and FavoritesFrom, which fail with ErrNotProvided when no session
// was attached. Between requests a Session is kept as a Snapshot in a Store.
package session

import (
	"sync"
	"time"

	"github.com/bindassticks/storefront/internal/cart"
	"github.com/bindassticks/storefront/internal/favorites"
)

// ShippingAddress is the delivery address collected before checkout.
type ShippingAddress struct {
	FullName string `json:"fullName" validate:"required,max=100"`
	Phone    string `json:"phone" validate:"required,min=7,max=20"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Address  string `json:"address" validate:"required,max=300"`
	City     string `json:"city" validate:"required,max=100"`
	State    string `json:"state" validate:"required,max=100"`
	Pincode  string `json:"pincode" validate:"required,numeric,len=6"`
}

type Session struct {
	ID        string
	Cart      *cart.Cart
	Favorites *favorites.Favorites

	mu      sync.RWMutex
	address *ShippingAddress
}

// Snapshot is the stored form of a Session.
type Snapshot struct {
	Cart      []cart.Item      `json:"cart"`
	Favorites []favorites.Item `json:"favorites"`
	Address   *ShippingAddress `json:"address,omitempty"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// New returns an empty session.
func New(id string) *Session {
	return &Session{
		ID:        id,
		Cart:      cart.New(),
		Favorites: favorites.New(),
	}
}

// Restore rebuilds a session from a snapshot.
func Restore(id string, snap Snapshot) *Session {
	s := &Session{
		ID:        id,
		Cart:      cart.Restore(snap.Cart),
		Favorites: favorites.Restore(snap.Favorites),
	}
	if snap.Address != nil {
		addr := *snap.Address
		s.address = &addr
	}
	return s
}

// Snapshot captures the current state of the session.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Cart:      s.Cart.Items(),
		Favorites: s.Favorites.Items(),
		UpdatedAt: time.Now().UTC(),
	}
	if addr, ok := s.Address(); ok {
		snap.Address = &addr
	}
	return snap
}

// Address returns the saved shipping address.
func (s *Session) Address() (ShippingAddress, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.address == nil {
		return ShippingAddress{}, false
	}
	return *s.address, true
}

func (s *Session) SetAddress(addr ShippingAddress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.address = &addr
}

func (s *Session) ClearAddress() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.address = nil
}
