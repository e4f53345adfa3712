package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/bindassticks/storefront/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderPlacedEvent(t *testing.T) {
	event := OrderPlacedEvent{
		OrderID:        "ord-1",
		SessionID:      "sess-1",
		Items:          []OrderItem{{ProductID: "p1", Name: "Luffy", Price: 9900, Quantity: 2}},
		Subtotal:       19800,
		DeliveryCharge: 5000,
		Total:          24800,
		PaymentMethod:  "COD",
		Address:        ShippingAddress{FullName: "Asha", Email: "asha@example.com"},
		CreatedAt:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	assert.Equal(t, messaging.OrdersPlacedSubject, event.Subject())
	assert.Equal(t, "ord-1", event.MessageID())

	payload, err := event.Payload()
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(payload, &raw))
	assert.Equal(t, "ord-1", raw["order_id"])
	assert.EqualValues(t, 24800, raw["total"])
	assert.Equal(t, "asha@example.com", raw["address"].(map[string]any)["email"])
}
