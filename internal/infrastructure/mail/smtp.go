// Package mail implements the notification transport over SMTP.
package mail

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/printshop/backoffice/internal/application/notification"
	"github.com/printshop/backoffice/internal/domain/shared"
	"github.com/printshop/backoffice/internal/infrastructure/config"
)

var _ notification.Transport = (*SMTPTransport)(nil)

// SMTPTransport delivers composed notification messages over SMTP.
type SMTPTransport struct {
	client *gomail.Client
	from   string
	host   string
	logger *zap.Logger
}

// NewSMTPTransport creates a transport from mail configuration.
// Missing credentials are a configuration error, reported up front
// rather than on the first delivery attempt.
func NewSMTPTransport(cfg config.SMTPConfig, logger *zap.Logger) (*SMTPTransport, error) {
	if !cfg.Configured() {
		return nil, shared.NewDomainError(notification.ErrCodeTransportNotConfigured,
			"mail transport credentials are not configured")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.User),
		gomail.WithPassword(cfg.Password),
	}
	if cfg.Secure {
		opts = append(opts, gomail.WithSSLPort(false))
	} else {
		opts = append(opts, gomail.WithTLSPortPolicy(gomail.TLSMandatory))
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, shared.WrapDomainError(notification.ErrCodeTransportNotConfigured,
			"building mail client", err)
	}

	return &SMTPTransport{
		client: client,
		from:   cfg.FromAddress(),
		host:   cfg.Host,
		logger: logger,
	}, nil
}

// Send delivers one message and returns its message ID.
func (t *SMTPTransport) Send(ctx context.Context, msg notification.Message) (string, error) {
	m := gomail.NewMsg()
	if err := m.From(t.from); err != nil {
		return "", shared.WrapDomainError(notification.ErrCodeTransportFailure, "invalid sender address", err)
	}
	if err := m.To(msg.Recipient); err != nil {
		return "", shared.WrapDomainError(notification.ErrCodeTransportFailure, "invalid recipient address", err)
	}
	if msg.ArchiveCopy != "" {
		if err := m.Bcc(msg.ArchiveCopy); err != nil {
			return "", shared.WrapDomainError(notification.ErrCodeTransportFailure, "invalid archive address", err)
		}
	}

	messageID := fmt.Sprintf("%s@%s", uuid.NewString(), t.host)
	m.SetMessageIDWithValue(messageID)
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.TextBody)
	if msg.HTMLBody != "" {
		m.AddAlternativeString(gomail.TypeTextHTML, msg.HTMLBody)
	}
	if msg.Attachment != nil {
		err := m.AttachReader(msg.Attachment.FileName, bytes.NewReader(msg.Attachment.Content),
			gomail.WithFileContentType(gomail.ContentType(msg.Attachment.ContentType)))
		if err != nil {
			return "", shared.WrapDomainError(notification.ErrCodeTransportFailure, "attaching invoice PDF", err)
		}
	}

	if err := t.client.DialAndSendWithContext(ctx, m); err != nil {
		return "", shared.WrapDomainError(notification.ErrCodeTransportFailure, "mail submission failed", err)
	}

	t.logger.Debug("mail submitted",
		zap.String("recipient", msg.Recipient),
		zap.String("message_id", messageID),
	)
	return messageID, nil
}
