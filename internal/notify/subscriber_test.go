package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/bindassticks/storefront/pkg/messaging/events"
	"github.com/stretchr/testify/mock"
)

type mockAckableMsg struct {
	mock.Mock
}

func (m *mockAckableMsg) Data() []byte {
	args := m.Called()
	return args.Get(0).([]byte)
}

func (m *mockAckableMsg) Subject() string {
	return "orders.placed"
}

func (m *mockAckableMsg) Ack() error {
	args := m.Called()
	return args.Error(0)
}

func (m *mockAckableMsg) Nak() error {
	args := m.Called()
	return args.Error(0)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendOrderConfirmation(ctx context.Context, order events.OrderPlacedEvent) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func payload(order events.OrderPlacedEvent) []byte {
	data, _ := order.Payload()
	return data
}

func Test_Handle(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	testCases := []struct {
		name          string
		newMockMsg    func() *mockAckableMsg
		newMockMailer func() *mockMailer
	}{
		{
			name: "valid message",
			newMockMsg: func() *mockAckableMsg {
				msg := new(mockAckableMsg)
				msg.On("Data").Return(payload(testOrder())).Once()
				msg.On("Ack").Return(nil).Once()
				return msg
			},
			newMockMailer: func() *mockMailer {
				m := new(mockMailer)
				m.On("SendOrderConfirmation", mock.Anything, mock.MatchedBy(func(o events.OrderPlacedEvent) bool {
					return o.OrderID == "ord-1" && o.Address.Email == "asha@example.com"
				})).Return(nil).Once()
				return m
			},
		},
		{
			name: "order without e-mail is acked without sending",
			newMockMsg: func() *mockAckableMsg {
				order := testOrder()
				order.Address.Email = ""
				msg := new(mockAckableMsg)
				msg.On("Data").Return(payload(order)).Once()
				msg.On("Ack").Return(nil).Once()
				return msg
			},
			newMockMailer: func() *mockMailer { return new(mockMailer) },
		},
		{
			name: "invalid message",
			newMockMsg: func() *mockAckableMsg {
				msg := new(mockAckableMsg)
				msg.On("Data").Return([]byte("invalid data")).Once()
				msg.On("Nak").Return(nil).Once()
				return msg
			},
			newMockMailer: func() *mockMailer { return new(mockMailer) },
		},
		{
			name: "send failure",
			newMockMsg: func() *mockAckableMsg {
				msg := new(mockAckableMsg)
				msg.On("Data").Return(payload(testOrder())).Once()
				msg.On("Nak").Return(nil).Once()
				return msg
			},
			newMockMailer: func() *mockMailer {
				m := new(mockMailer)
				m.On("SendOrderConfirmation", mock.Anything, mock.Anything).Return(errors.New("sendgrid down")).Once()
				return m
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			mockMsg := tc.newMockMsg()
			mailer := tc.newMockMailer()
			h := NewHandler(mailer, logger)

			// when
			h.Handle(context.Background(), mockMsg)

			// then
			mockMsg.AssertExpectations(t)
			mailer.AssertExpectations(t)
		})
	}
}
