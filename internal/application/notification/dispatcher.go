package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/printshop/backoffice/internal/domain/shared"
)

// Error codes raised by the dispatcher.
const (
	ErrCodeTransportNotConfigured = "TRANSPORT_NOT_CONFIGURED"
	ErrCodeTransportFailure       = "TRANSPORT_FAILURE"
)

// Transport submits a composed message and reports the message
// identifier it was handed to the mail system under.
type Transport interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// Dispatcher submits validated messages to the mail transport with
// delivery-state logging. Messages are composed and validated by the
// New* constructors before they reach the dispatcher.
type Dispatcher struct {
	transport Transport
	logger    *zap.Logger
}

// NewDispatcher creates a Dispatcher on the given transport.
func NewDispatcher(transport Transport, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{transport: transport, logger: logger}
}

// Dispatch submits one message and returns the transport's message ID.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) (string, error) {
	if d.transport == nil {
		return "", shared.NewDomainError(ErrCodeTransportNotConfigured, "mail transport credentials are not configured")
	}
	if msg.Recipient == "" {
		return "", shared.NewDomainError(ErrCodeValidation, "message recipient is required")
	}

	messageID, err := d.transport.Send(ctx, msg)
	if err != nil {
		d.logger.Error("notification dispatch failed",
			zap.String("kind", string(msg.Kind)),
			zap.String("recipient", msg.Recipient),
			zap.Error(err),
		)
		return "", err
	}

	d.logger.Info("notification dispatched",
		zap.String("kind", string(msg.Kind)),
		zap.String("recipient", msg.Recipient),
		zap.String("message_id", messageID),
	)
	return messageID, nil
}
