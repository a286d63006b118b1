package account

import (
	"context"
	"fmt"
	"html"

	"seva-health/internal/mailer"
	"seva-health/internal/metrics"
	"seva-health/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// RequestRecovery mails a single-use password reset token to email. Unknown
// addresses succeed without sending anything. linkBase is the public URL the
// mailed link points at; the token is appended as a query parameter.
func (s *Service) RequestRecovery(ctx context.Context, email, linkBase string) error {
	email = normalizeEmail(email)
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}

	// Rate limiting: max 5 requests per email in 10 minutes
	count, err := s.recovery.CountRecentByEmail(ctx, email, recoveryRateWindow)
	if err != nil {
		return fmt.Errorf("check recovery rate: %w", err)
	}
	if count >= recoveryRateLimit {
		metrics.RecoveryRequests.WithLabelValues("rate_limited").Inc()
		return ErrTooManyRequests
	}

	ident, err := s.identities.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("find identity: %w", err)
	}
	if ident == nil {
		metrics.RecoveryRequests.WithLabelValues("unknown_email").Inc()
		s.log.Debug("recovery requested for unknown email")
		return nil
	}

	token := &models.RecoveryToken{
		ID:        uuid.NewString(),
		Email:     email,
		Token:     uuid.NewString(),
		ExpiresAt: s.now().Add(recoveryTokenTTL),
	}
	if err := s.recovery.Create(ctx, token); err != nil {
		return fmt.Errorf("store recovery token: %w", err)
	}

	link := fmt.Sprintf("%s?token=%s", linkBase, token.Token)
	if _, err := s.mailer.Send(ctx, recoveryEmail(email, token.Token, link)); err != nil {
		// Token is stored, delivery is best-effort.
		s.log.Warn("recovery email not sent", zap.String("user_id", ident.ID), zap.Error(err))
	}

	metrics.RecoveryRequests.WithLabelValues("sent").Inc()
	s.log.Info("recovery token issued", zap.String("user_id", ident.ID))
	return nil
}

// CompleteRecovery sets a new password using a mailed token and ends every
// open session of the identity.
func (s *Service) CompleteRecovery(ctx context.Context, tokenValue, newPassword string) error {
	if tokenValue == "" {
		return ErrInvalidToken
	}

	token, err := s.recovery.FindByToken(ctx, tokenValue)
	if err != nil {
		return fmt.Errorf("find recovery token: %w", err)
	}
	if token == nil {
		return ErrInvalidToken
	}
	if token.IsExpired(s.now()) {
		return ErrTokenExpired
	}
	if token.IsUsed {
		return ErrTokenUsed
	}
	if err := s.checkPassword(newPassword); err != nil {
		return err
	}

	ident, err := s.identities.FindByEmail(ctx, token.Email)
	if err != nil {
		return fmt.Errorf("find identity: %w", err)
	}
	if ident == nil {
		return ErrInvalidToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.recovery.MarkUsed(ctx, tokenValue); err != nil {
		return fmt.Errorf("mark token used: %w", err)
	}
	if err := s.identities.UpdatePassword(ctx, ident.ID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	n, err := s.sessions.DeleteByUser(ctx, ident.ID)
	if err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	s.log.Info("password reset", zap.String("user_id", ident.ID), zap.Int64("sessions_ended", n))
	return nil
}

func recoveryEmail(to, token, link string) mailer.Email {
	return mailer.Email{
		To:      to,
		Subject: "Reset your Seva password",
		HTML: fmt.Sprintf(`
			<div style="font-family: sans-serif; max-width: 480px; margin: 0 auto; padding: 24px;">
				<h2 style="color: #333;">Password reset</h2>
				<p>Use this code to choose a new password:</p>
				<p style="font-family: monospace; font-size: 16px; background: #f3f4f6; padding: 12px; border-radius: 8px;">%s</p>
				<p>or open <a href="%s">this link</a>.</p>
				<p style="color: #888; font-size: 14px; margin-top: 16px;">
					This code expires in 15 minutes and can only be used once.
				</p>
				<p style="color: #aaa; font-size: 12px;">
					If you didn't request this, you can safely ignore this email.
				</p>
			</div>
		`, html.EscapeString(token), html.EscapeString(link)),
	}
}
