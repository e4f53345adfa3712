// Package notify sends order confirmation e-mails for placed orders.
package notify

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	"text/template"

	"github.com/bindassticks/storefront/pkg/messaging/events"
)

// Mailer delivers the confirmation for one order.
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, order events.OrderPlacedEvent) error
}

// Confirmation is a rendered confirmation e-mail.
type Confirmation struct {
	Subject string
	Text    string
	HTML    string
}

const textBody = `Hi {{.Address.FullName}},

Thanks for shopping with us! Your order {{.OrderID}} has been placed.

{{range .Items}}{{.Quantity}} x {{.Name}}  {{rupees (lineTotal .)}}
{{end}}
Subtotal: {{rupees .Subtotal}}
Delivery: {{rupees .DeliveryCharge}}
Total:    {{rupees .Total}} ({{.PaymentMethod}})

Shipping to:
{{.Address.Address}}
{{.Address.City}}, {{.Address.State}} {{.Address.Pincode}}
`

const htmlBody = `<p>Hi {{.Address.FullName}},</p>
<p>Thanks for shopping with us! Your order <b>{{.OrderID}}</b> has been placed.</p>
<table>
{{range .Items}}<tr><td>{{.Quantity}} &times; {{.Name}}</td><td>{{rupees (lineTotal .)}}</td></tr>
{{end}}<tr><td>Subtotal</td><td>{{rupees .Subtotal}}</td></tr>
<tr><td>Delivery</td><td>{{rupees .DeliveryCharge}}</td></tr>
<tr><td><b>Total</b></td><td><b>{{rupees .Total}}</b> ({{.PaymentMethod}})</td></tr>
</table>
<p>Shipping to:<br>{{.Address.Address}}<br>{{.Address.City}}, {{.Address.State}} {{.Address.Pincode}}</p>
`

var funcs = map[string]any{
	"rupees":    Rupees,
	"lineTotal": func(i events.OrderItem) int64 { return i.Price * int64(i.Quantity) },
}

var (
	textTmpl = template.Must(template.New("text").Funcs(funcs).Parse(textBody))
	htmlTmpl = htmltemplate.Must(htmltemplate.New("html").Funcs(funcs).Parse(htmlBody))
)

// Rupees formats an amount in paise.
func Rupees(paise int64) string {
	sign := ""
	if paise < 0 {
		sign = "-"
		paise = -paise
	}
	return fmt.Sprintf("%s₹%d.%02d", sign, paise/100, paise%100)
}

// RenderConfirmation renders the confirmation e-mail of order.
func RenderConfirmation(order events.OrderPlacedEvent) (Confirmation, error) {
	var text, html bytes.Buffer
	if err := textTmpl.Execute(&text, order); err != nil {
		return Confirmation{}, fmt.Errorf("render text: %w", err)
	}
	if err := htmlTmpl.Execute(&html, order); err != nil {
		return Confirmation{}, fmt.Errorf("render html: %w", err)
	}
	return Confirmation{
		Subject: fmt.Sprintf("Your order %s is confirmed", order.OrderID),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

// LogMailer only logs confirmations. Used when no mail provider is configured.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendOrderConfirmation(ctx context.Context, order events.OrderPlacedEvent) error {
	c, err := RenderConfirmation(order)
	if err != nil {
		return err
	}
	m.logger.InfoContext(ctx, "order confirmation",
		slog.String("order_id", order.OrderID),
		slog.String("to", order.Address.Email),
		slog.String("subject", c.Subject))
	return nil
}
