package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bindassticks/storefront/internal/cart"
	storeerrors "github.com/bindassticks/storefront/internal/errors"
	"github.com/bindassticks/storefront/internal/session"
	"github.com/bindassticks/storefront/pkg/messaging"
	"github.com/bindassticks/storefront/pkg/messaging/events"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event messaging.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func validAddress() session.ShippingAddress {
	return session.ShippingAddress{
		FullName: "Asha Rao",
		Phone:    "9876543210",
		Email:    "asha@example.com",
		Address:  "12 MG Road",
		City:     "Bengaluru",
		State:    "Karnataka",
		Pincode:  "560001",
	}
}

func newTestCheckout(publisher messaging.Publisher) *Checkout {
	c := NewCheckout(DefaultPricing, publisher, validator.New(), discardLogger())
	c.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return c
}

func Test_Checkout_Quote(t *testing.T) {
	c := newTestCheckout(new(mockPublisher))

	tests := []struct {
		name      string
		price     int64
		quantity  int
		eligible  bool
		shortfall int64
	}{
		{name: "empty cart", eligible: false, shortfall: 200_00},
		{name: "below minimum", price: 75_00, quantity: 2, eligible: false, shortfall: 50_00},
		{name: "exactly minimum", price: 100_00, quantity: 2, eligible: true},
		{name: "above minimum", price: 150_00, quantity: 2, eligible: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct := cart.New()
			if tt.quantity > 0 {
				ct.Add(cart.Product{ID: "p1", Price: tt.price})
				ct.UpdateQuantity("p1", tt.quantity)
			}
			q := c.Quote(ct)
			subtotal := tt.price * int64(tt.quantity)
			assert.Equal(t, subtotal, q.Subtotal)
			assert.Equal(t, int64(50_00), q.DeliveryCharge)
			assert.Equal(t, subtotal+50_00, q.Total)
			assert.Equal(t, int64(200_00), q.MinimumOrder)
			assert.Equal(t, tt.eligible, q.Eligible)
			assert.Equal(t, tt.shortfall, q.Shortfall)
		})
	}
}

func Test_Checkout_SaveAddress(t *testing.T) {
	c := newTestCheckout(new(mockPublisher))

	t.Run("valid", func(t *testing.T) {
		s := session.New("s1")
		addr := validAddress()
		addr.City = "  Bengaluru "
		require.NoError(t, c.SaveAddress(s, addr))
		saved, ok := s.Address()
		require.True(t, ok)
		assert.Equal(t, "Bengaluru", saved.City)
	})

	t.Run("email is optional", func(t *testing.T) {
		s := session.New("s1")
		addr := validAddress()
		addr.Email = ""
		assert.NoError(t, c.SaveAddress(s, addr))
	})

	t.Run("invalid", func(t *testing.T) {
		s := session.New("s1")
		addr := validAddress()
		addr.Email = "not-an-email"
		addr.Pincode = "12AB"
		err := c.SaveAddress(s, addr)

		var validationErrors validator.ValidationErrors
		require.ErrorAs(t, err, &validationErrors)
		fields := make([]string, 0, len(validationErrors))
		for _, fe := range validationErrors {
			fields = append(fields, fe.Field())
		}
		assert.ElementsMatch(t, []string{"Email", "Pincode"}, fields)
		_, ok := s.Address()
		assert.False(t, ok)
	})
}

func readySession() *session.Session {
	s := session.New("sess-1")
	s.Cart.Add(cart.Product{ID: "p1", Name: "Luffy", Price: 99_00})
	s.Cart.Add(cart.Product{ID: "p1", Name: "Luffy", Price: 99_00})
	s.Cart.Add(cart.Product{ID: "p2", Name: "Zoro", Price: 49_00})
	s.SetAddress(validAddress())
	return s
}

func Test_Checkout_PlaceOrder(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		publisher := new(mockPublisher)
		publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e messaging.Event) bool {
			ev, ok := e.(events.OrderPlacedEvent)
			return ok && ev.SessionID == "sess-1" && ev.Total == 297_00 && len(ev.Items) == 2 && ev.Address.Email == "asha@example.com"
		})).Return(nil).Once()
		c := newTestCheckout(publisher)
		s := readySession()

		order, err := c.PlaceOrder(context.Background(), s)
		require.NoError(t, err)
		assert.NotEmpty(t, order.ID)
		assert.Equal(t, int64(247_00), order.Subtotal)
		assert.Equal(t, int64(50_00), order.DeliveryCharge)
		assert.Equal(t, int64(297_00), order.Total)
		assert.Equal(t, PaymentCOD, order.PaymentMethod)
		require.Len(t, order.Items, 2)
		assert.Equal(t, 2, order.Items[0].Quantity)
		assert.Equal(t, int64(198_00), order.Items[0].Subtotal)

		assert.Zero(t, s.Cart.Len())
		_, ok := s.Address()
		assert.False(t, ok)
		publisher.AssertNumberOfCalls(t, "Publish", 1)
	})

	t.Run("publish failure does not fail the order", func(t *testing.T) {
		publisher := new(mockPublisher)
		publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("nats down")).Once()
		c := newTestCheckout(publisher)
		s := readySession()

		_, err := c.PlaceOrder(context.Background(), s)
		require.NoError(t, err)
		assert.Zero(t, s.Cart.Len())
	})

	tests := []struct {
		name    string
		prepare func(s *session.Session)
		wantErr error
	}{
		{name: "empty cart", prepare: func(s *session.Session) { s.Cart.Clear() }, wantErr: storeerrors.ErrEmptyCart},
		{name: "below minimum", prepare: func(s *session.Session) { s.Cart.Remove("p1") }, wantErr: storeerrors.ErrBelowMinimumOrder},
		{name: "missing address", prepare: func(s *session.Session) { s.ClearAddress() }, wantErr: storeerrors.ErrMissingAddress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publisher := new(mockPublisher)
			c := newTestCheckout(publisher)
			s := readySession()
			tt.prepare(s)
			before := s.Cart.Items()

			_, err := c.PlaceOrder(context.Background(), s)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, s.Cart.Items())
			publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
		})
	}
}
