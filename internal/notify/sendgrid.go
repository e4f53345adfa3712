package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bindassticks/storefront/pkg/config"
	"github.com/bindassticks/storefront/pkg/messaging/events"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridMailer sends confirmations through the SendGrid v3 API.
type SendGridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
	logger *slog.Logger
}

func NewSendGridMailer(cfg config.MailConfig, logger *slog.Logger) *SendGridMailer {
	return &SendGridMailer{
		client: sendgrid.NewSendClient(cfg.APIKey),
		from:   mail.NewEmail(cfg.FromName, cfg.FromEmail),
		logger: logger,
	}
}

func (m *SendGridMailer) SendOrderConfirmation(ctx context.Context, order events.OrderPlacedEvent) error {
	message, err := BuildMessage(m.from, order)
	if err != nil {
		return err
	}
	response, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d, body=%s", response.StatusCode, response.Body)
	}
	m.logger.InfoContext(ctx, "order confirmation sent",
		slog.String("order_id", order.OrderID),
		slog.Int("status", response.StatusCode))
	return nil
}

// BuildMessage renders the confirmation of order as a SendGrid message.
func BuildMessage(from *mail.Email, order events.OrderPlacedEvent) (*mail.SGMailV3, error) {
	if order.Address.Email == "" {
		return nil, fmt.Errorf("order %s has no e-mail address", order.OrderID)
	}
	c, err := RenderConfirmation(order)
	if err != nil {
		return nil, err
	}
	to := mail.NewEmail(order.Address.FullName, order.Address.Email)
	return mail.NewSingleEmail(from, c.Subject, to, c.Text, c.HTML), nil
}
