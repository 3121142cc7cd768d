package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lawdesk/crm/internal/core/domain"
	"github.com/lawdesk/crm/internal/core/ports"
)

type EmailService struct {
	mailer    ports.Mailer
	recipient string
	logger    zerolog.Logger
}

// NewEmailService builds the diagnostics mail service. mailer may be nil when
// SMTP is not configured.
func NewEmailService(mailer ports.Mailer, recipient string, logger zerolog.Logger) *EmailService {
	return &EmailService{mailer: mailer, recipient: recipient, logger: logger}
}

// SendTest delivers a fixed message to the configured recipient so operators
// can verify SMTP settings.
func (s *EmailService) SendTest(ctx context.Context) error {
	if s.mailer == nil || s.recipient == "" {
		return domain.ErrMailUnavailable
	}
	msg := ports.EmailMessage{
		To:      []string{s.recipient},
		Subject: "Test Email",
		Text:    "This is a test email from the CRM system.",
		HTML:    "<h1>Test Email</h1><p>This is a test email from the CRM system.</p>",
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Error().Err(err).Str("to", s.recipient).Msg("test email failed")
		return fmt.Errorf("send test email: %w", err)
	}
	s.logger.Info().Str("to", s.recipient).Msg("test email sent")
	return nil
}
