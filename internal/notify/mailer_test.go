package notify

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/bindassticks/storefront/pkg/messaging/events"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrder() events.OrderPlacedEvent {
	return events.OrderPlacedEvent{
		OrderID:   "ord-1",
		SessionID: "sess-1",
		Items: []events.OrderItem{
			{ProductID: "p1", Name: "Luffy <Gear 5>", Price: 99_00, Quantity: 2},
			{ProductID: "p2", Name: "Zoro", Price: 49_50, Quantity: 1},
		},
		Subtotal:       247_50,
		DeliveryCharge: 50_00,
		Total:          297_50,
		PaymentMethod:  "COD",
		Address: events.ShippingAddress{
			FullName: "Asha Rao",
			Phone:    "9876543210",
			Email:    "asha@example.com",
			Address:  "12 MG Road",
			City:     "Bengaluru",
			State:    "Karnataka",
			Pincode:  "560001",
		},
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestRupees(t *testing.T) {
	assert.Equal(t, "₹0.00", Rupees(0))
	assert.Equal(t, "₹50.00", Rupees(50_00))
	assert.Equal(t, "₹297.05", Rupees(297_05))
	assert.Equal(t, "-₹1.50", Rupees(-1_50))
}

func TestRenderConfirmation(t *testing.T) {
	c, err := RenderConfirmation(testOrder())
	require.NoError(t, err)

	assert.Equal(t, "Your order ord-1 is confirmed", c.Subject)
	assert.Contains(t, c.Text, "2 x Luffy <Gear 5>  ₹198.00")
	assert.Contains(t, c.Text, "Total:    ₹297.50 (COD)")
	assert.Contains(t, c.Text, "Bengaluru, Karnataka 560001")
	assert.Contains(t, c.HTML, "Luffy &lt;Gear 5&gt;")
	assert.NotContains(t, c.HTML, "<Gear 5>")
}

func TestBuildMessage(t *testing.T) {
	from := mail.NewEmail("BindasSticks", "orders@bindassticks.in")

	msg, err := BuildMessage(from, testOrder())
	require.NoError(t, err)
	assert.Equal(t, "Your order ord-1 is confirmed", msg.Subject)
	require.Len(t, msg.Personalizations, 1)
	require.Len(t, msg.Personalizations[0].To, 1)
	assert.Equal(t, "asha@example.com", msg.Personalizations[0].To[0].Address)
	assert.Len(t, msg.Content, 2)

	order := testOrder()
	order.Address.Email = ""
	_, err = BuildMessage(from, order)
	assert.Error(t, err)
}

func TestLogMailer(t *testing.T) {
	m := NewLogMailer(slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.NoError(t, m.SendOrderConfirmation(context.Background(), testOrder()))
}
