package notify

import (
	"context"
	"fmt"
	"html"

	"seva-health/internal/logging"
	"seva-health/internal/mailer"

	"go.uber.org/zap"
)

// Sender delivers a fired notification to the user.
type Sender interface {
	Publish(ctx context.Context, c Content) error
}

// LogSender writes notifications to the log.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{log: logging.OrNop(logger).Named("notify")}
}

func (s *LogSender) Publish(_ context.Context, c Content) error {
	s.log.Info("🔔 "+c.Title,
		zap.String("body", c.Body),
		zap.String("reminder_id", c.Data[DataReminderID]),
	)
	return nil
}

// MailSender delivers notifications as email through a mailer.
type MailSender struct {
	mailer mailer.Mailer
	to     string
}

func NewMailSender(m mailer.Mailer, to string) *MailSender {
	return &MailSender{mailer: m, to: to}
}

func (s *MailSender) Publish(ctx context.Context, c Content) error {
	_, err := s.mailer.Send(ctx, mailer.Email{
		To:      s.to,
		Subject: c.Title,
		HTML:    fmt.Sprintf(`<p style="font-family: sans-serif;">%s</p>`, html.EscapeString(c.Body)),
	})
	return err
}

// MultiSender publishes to every sender and reports the first failure.
type MultiSender []Sender

func (m MultiSender) Publish(ctx context.Context, c Content) error {
	var first error
	for _, s := range m {
		if err := s.Publish(ctx, c); err != nil && first == nil {
			first = err
		}
	}
	return first
}
