package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/bindassticks/storefront/pkg/config"
	"github.com/bindassticks/storefront/pkg/messaging/events"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

// Message is the part of jetstream.Msg the handler needs.
type Message interface {
	Data() []byte
	Subject() string
	Ack() error
	Nak() error
}

// Handler turns OrderPlacedEvent messages into confirmation e-mails.
type Handler struct {
	mailer Mailer
	logger *slog.Logger
}

func NewHandler(mailer Mailer, logger *slog.Logger) *Handler {
	return &Handler{mailer: mailer, logger: logger}
}

// Start creates the durable consumer and runs cfg.Workers workers until ctx is done.
func Start(ctx context.Context, js jetstream.JetStream, cfg config.SubscriberConfig, h *Handler, logger *slog.Logger) error {
	consumer, err := js.CreateOrUpdateConsumer(ctx, cfg.Stream, jetstream.ConsumerConfig{
		FilterSubject: cfg.Subject,
		Durable:       cfg.Consumer,
		AckPolicy:     jetstream.AckExplicitPolicy,
		MaxDeliver:    cfg.MaxDeliver,
	})
	if err != nil {
		return err
	}
	g, gCtx := errgroup.WithContext(ctx)
	for range cfg.Workers {
		g.Go(func() error {
			return runWorker(gCtx, consumer, cfg, h, logger)
		})
	}
	return g.Wait()
}

func runWorker(ctx context.Context, consumer jetstream.Consumer, cfg config.SubscriberConfig, h *Handler, logger *slog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			batch, err := consumer.Fetch(cfg.Batch, jetstream.FetchMaxWait(cfg.Timeout))
			if err != nil {
				if errors.Is(err, nats.ErrTimeout) {
					continue
				}
				logger.Error("failed to fetch messages", "error", err)
				time.Sleep(cfg.Interval)
				continue
			}
			for msg := range batch.Messages() {
				h.Handle(ctx, msg)
			}
			if err := batch.Error(); err != nil && !errors.Is(err, nats.ErrTimeout) {
				logger.Warn("batch finished with error", "error", err)
			}
		}
	}
}

// Handle processes one message. It acks after the e-mail is handed over and naks on failure.
func (h *Handler) Handle(ctx context.Context, msg Message) {
	if msg == nil {
		h.logger.Error("received nil message")
		return
	}
	var event events.OrderPlacedEvent
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		h.logger.Error("failed to unmarshal message", "error", err, "subject", msg.Subject())
		h.nak(msg)
		return
	}

	ctx = otel.GetTextMapPropagator().Extract(ctx, event.Carrier)
	ctx, span := otel.Tracer("notifier").Start(ctx, "notify.order_placed")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", event.OrderID))

	h.logger.InfoContext(ctx, "received order placed event",
		slog.String("subject", msg.Subject()),
		slog.String("order_id", event.OrderID),
		slog.Int64("total", event.Total),
		slog.String("created_at", event.CreatedAt.Format(time.RFC3339)))

	if event.Address.Email == "" {
		h.logger.InfoContext(ctx, "order has no e-mail address, skipping confirmation", "order_id", event.OrderID)
	} else if err := h.mailer.SendOrderConfirmation(ctx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send failed")
		h.logger.ErrorContext(ctx, "failed to send order confirmation", "order_id", event.OrderID, "error", err)
		h.nak(msg)
		return
	}

	if err := msg.Ack(); err != nil {
		h.logger.ErrorContext(ctx, "failed to ack message", "error", err)
	}
}

func (h *Handler) nak(msg Message) {
	if err := msg.Nak(); err != nil {
		h.logger.Error("failed to nack message", "error", err)
	}
}
