package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bindassticks/storefront/internal/cart"
	storeerrors "github.com/bindassticks/storefront/internal/errors"
	"github.com/bindassticks/storefront/internal/session"
	"github.com/bindassticks/storefront/pkg/messaging"
	"github.com/bindassticks/storefront/pkg/messaging/events"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
)

// PaymentCOD is the only payment method: cash on delivery.
const PaymentCOD = "COD"

// Pricing holds the checkout amounts in minor currency units.
type Pricing struct {
	MinimumOrder   int64
	DeliveryCharge int64
}

// DefaultPricing is ₹200 minimum order and ₹50 delivery.
var DefaultPricing = Pricing{MinimumOrder: 200_00, DeliveryCharge: 50_00}

// CheckoutService defines the checkout steps of a session.
type CheckoutService interface {
	Quote(c *cart.Cart) Quote

	// SaveAddress validates addr and stores it on the session.
	SaveAddress(s *session.Session, addr session.ShippingAddress) error

	// PlaceOrder turns the session cart into an order, then clears the cart and the saved address.
	// Returns ErrEmptyCart, ErrBelowMinimumOrder or ErrMissingAddress when the session is not ready.
	PlaceOrder(ctx context.Context, s *session.Session) (*OrderDto, error)
}

// Quote is the price breakdown of a cart.
type Quote struct {
	Subtotal       int64 `json:"subtotal"`
	DeliveryCharge int64 `json:"deliveryCharge"`
	Total          int64 `json:"total"`
	MinimumOrder   int64 `json:"minimumOrder"`
	// Shortfall is what is missing to reach MinimumOrder.
	Shortfall int64 `json:"shortfall"`
	Eligible  bool  `json:"eligible"`
}

type OrderDto struct {
	ID             string                  `json:"id"`
	SessionID      string                  `json:"-"`
	Items          []OrderItemDto          `json:"items"`
	Subtotal       int64                   `json:"subtotal"`
	DeliveryCharge int64                   `json:"deliveryCharge"`
	Total          int64                   `json:"total"`
	PaymentMethod  string                  `json:"paymentMethod"`
	Address        session.ShippingAddress `json:"address"`
	CreatedAt      time.Time               `json:"createdAt"`
}

type OrderItemDto struct {
	ProductID string `json:"id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

// Checkout implements CheckoutService.
type Checkout struct {
	pricing       Pricing
	publisher     messaging.Publisher
	validate      *validator.Validate
	logger        *slog.Logger
	ordersCounter metric.Int64Counter
	now           func() time.Time
}

func NewCheckout(pricing Pricing, publisher messaging.Publisher, validate *validator.Validate, logger *slog.Logger) *Checkout {
	meter := otel.Meter("storefront")
	ordersCounter, err := meter.Int64Counter("orders_placed", metric.WithDescription("Total number of placed orders"))
	if err != nil {
		panic(fmt.Sprintf("failed to create orders_placed counter: %v", err))
	}
	return &Checkout{
		pricing:       pricing,
		publisher:     publisher,
		validate:      validate,
		logger:        logger,
		ordersCounter: ordersCounter,
		now:           time.Now,
	}
}

func (c *Checkout) Quote(ct *cart.Cart) Quote {
	return c.quote(ct.TotalPrice())
}

func (c *Checkout) quote(subtotal int64) Quote {
	q := Quote{
		Subtotal:       subtotal,
		DeliveryCharge: c.pricing.DeliveryCharge,
		Total:          subtotal + c.pricing.DeliveryCharge,
		MinimumOrder:   c.pricing.MinimumOrder,
		Eligible:       subtotal >= c.pricing.MinimumOrder,
	}
	if !q.Eligible {
		q.Shortfall = c.pricing.MinimumOrder - subtotal
	}
	return q
}

func (c *Checkout) SaveAddress(s *session.Session, addr session.ShippingAddress) error {
	addr = trimAddress(addr)
	if err := c.validate.Struct(addr); err != nil {
		return err
	}
	s.SetAddress(addr)
	return nil
}

func (c *Checkout) PlaceOrder(ctx context.Context, s *session.Session) (*OrderDto, error) {
	items := s.Cart.Items()
	if len(items) == 0 {
		return nil, storeerrors.ErrEmptyCart
	}

	var subtotal int64
	orderItems := make([]OrderItemDto, len(items))
	for i, item := range items {
		orderItems[i] = OrderItemDto{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal(),
		}
		subtotal += item.Subtotal()
	}

	q := c.quote(subtotal)
	if !q.Eligible {
		return nil, fmt.Errorf("%w: subtotal %d, minimum %d", storeerrors.ErrBelowMinimumOrder, q.Subtotal, q.MinimumOrder)
	}
	addr, ok := s.Address()
	if !ok {
		return nil, storeerrors.ErrMissingAddress
	}

	order := &OrderDto{
		ID:             uuid.NewString(),
		SessionID:      s.ID,
		Items:          orderItems,
		Subtotal:       q.Subtotal,
		DeliveryCharge: q.DeliveryCharge,
		Total:          q.Total,
		PaymentMethod:  PaymentCOD,
		Address:        addr,
		CreatedAt:      c.now().UTC(),
	}

	carrier := make(propagation.MapCarrier)
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	if err := c.publisher.Publish(ctx, toEvent(order, carrier)); err != nil {
		c.logger.ErrorContext(ctx, "Failed to publish OrderPlacedEvent", "order_id", order.ID, "error", err)
	}
	c.ordersCounter.Add(ctx, 1)
	c.logger.InfoContext(ctx, "Order placed", "order_id", order.ID, "items", len(order.Items), "total", order.Total)

	s.Cart.Clear()
	s.ClearAddress()
	return order, nil
}

func toEvent(o *OrderDto, carrier propagation.MapCarrier) events.OrderPlacedEvent {
	items := make([]events.OrderItem, len(o.Items))
	for i, it := range o.Items {
		items[i] = events.OrderItem{ProductID: it.ProductID, Name: it.Name, Price: it.Price, Quantity: it.Quantity}
	}
	return events.OrderPlacedEvent{
		Carrier:        carrier,
		OrderID:        o.ID,
		SessionID:      o.SessionID,
		Items:          items,
		Subtotal:       o.Subtotal,
		DeliveryCharge: o.DeliveryCharge,
		Total:          o.Total,
		PaymentMethod:  o.PaymentMethod,
		Address: events.ShippingAddress{
			FullName: o.Address.FullName,
			Phone:    o.Address.Phone,
			Email:    o.Address.Email,
			Address:  o.Address.Address,
			City:     o.Address.City,
			State:    o.Address.State,
			Pincode:  o.Address.Pincode,
		},
		CreatedAt: o.CreatedAt,
	}
}

func trimAddress(a session.ShippingAddress) session.ShippingAddress {
	return session.ShippingAddress{
		FullName: strings.TrimSpace(a.FullName),
		Phone:    strings.TrimSpace(a.Phone),
		Email:    strings.TrimSpace(a.Email),
		Address:  strings.TrimSpace(a.Address),
		City:     strings.TrimSpace(a.City),
		State:    strings.TrimSpace(a.State),
		Pincode:  strings.TrimSpace(a.Pincode),
	}
}
