package events

import (
	"encoding/json"
	"time"

	"github.com/bindassticks/storefront/pkg/messaging"
	"go.opentelemetry.io/otel/propagation"
)

type OrderItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

type ShippingAddress struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Email    string `json:"email,omitempty"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	Pincode  string `json:"pincode"`
}

// OrderPlacedEvent is published once per placed order. Amounts are in minor currency units.
type OrderPlacedEvent struct {
	Carrier        propagation.MapCarrier `json:"carrier,omitempty"`
	OrderID        string                 `json:"order_id"`
	SessionID      string                 `json:"session_id"`
	Items          []OrderItem            `json:"items"`
	Subtotal       int64                  `json:"subtotal"`
	DeliveryCharge int64                  `json:"delivery_charge"`
	Total          int64                  `json:"total"`
	PaymentMethod  string                 `json:"payment_method"`
	Address        ShippingAddress        `json:"address"`
	CreatedAt      time.Time              `json:"created_at"`
}

func (o OrderPlacedEvent) Subject() string {
	return messaging.OrdersPlacedSubject
}

func (o OrderPlacedEvent) Payload() ([]byte, error) {
	return json.Marshal(o)
}

func (o OrderPlacedEvent) MessageID() string {
	return o.OrderID
}
