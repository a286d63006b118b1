package mailer

import (
	"context"
	"errors"
	"fmt"

	"seva-health/internal/logging"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

type Email struct {
	To      string
	Subject string
	HTML    string
}

// Mailer delivers transactional email.
type Mailer interface {
	Send(ctx context.Context, email Email) (id string, err error)
}

// New returns a Resend-backed mailer, or a log-only mailer when apiKey is empty.
func New(apiKey, from string, logger *zap.Logger) Mailer {
	logger = logging.OrNop(logger)
	if apiKey == "" {
		logger.Warn("RESEND_API_KEY not set, email will only be logged")
		return NewLogMailer(logger)
	}
	return NewResendMailer(apiKey, from, logger)
}

type ResendMailer struct {
	client *resend.Client
	from   string
	log    *zap.Logger
}

func NewResendMailer(apiKey, from string, logger *zap.Logger) *ResendMailer {
	return &ResendMailer{
		client: resend.NewClient(apiKey),
		from:   from,
		log:    logging.OrNop(logger).Named("mailer"),
	}
}

func (m *ResendMailer) Send(ctx context.Context, email Email) (string, error) {
	if email.To == "" {
		return "", errors.New("mailer: recipient is required")
	}

	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{email.To},
		Subject: email.Subject,
		Html:    email.HTML,
	}

	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	m.log.Info("email sent", zap.String("id", sent.Id), zap.String("subject", email.Subject))
	return sent.Id, nil
}

// LogMailer writes emails to the log instead of delivering them.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{log: logging.OrNop(logger).Named("mailer")}
}

func (m *LogMailer) Send(_ context.Context, email Email) (string, error) {
	m.log.Info("[dev mode] email not delivered",
		zap.String("to", email.To),
		zap.String("subject", email.Subject),
		zap.String("html", email.HTML),
	)
	return "", nil
}
