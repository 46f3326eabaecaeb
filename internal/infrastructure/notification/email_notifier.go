// Package notification delivers customer alerts by email.
package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"time"

	appnotification "github.com/corebank/backend/internal/application/notification"
	"github.com/corebank/backend/internal/infrastructure/config"
	"github.com/jordan-wright/email"
	"go.uber.org/zap"
)

// sendFunc delivers a composed message
type sendFunc func(e *email.Email) error

// EmailNotifier sends notifications over SMTP
type EmailNotifier struct {
	from     string
	renderer *Renderer
	send     sendFunc
	logger   *zap.Logger
}

// NewEmailNotifier creates an SMTP notifier from cfg. Authentication is only
// attempted when a user is configured.
func NewEmailNotifier(cfg config.SMTPConfig, logger *zap.Logger) (*EmailNotifier, error) {
	renderer, err := NewRenderer(cfg.Locale)
	if err != nil {
		return nil, err
	}
	var auth smtp.Auth
	if cfg.User != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host)
	}
	addr := cfg.Addr()
	return newEmailNotifier(cfg.From, renderer, func(e *email.Email) error {
		return e.Send(addr, auth)
	}, logger), nil
}

func newEmailNotifier(from string, renderer *Renderer, send sendFunc, logger *zap.Logger) *EmailNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailNotifier{from: from, renderer: renderer, send: send, logger: logger.Named("email")}
}

// Send renders n and mails it to n.Recipient. The SMTP client takes no
// context, so cancellation is only checked before sending.
func (n *EmailNotifier) Send(ctx context.Context, msg appnotification.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.Recipient == "" {
		return fmt.Errorf("notification %s has no recipient", msg.Template)
	}

	subject, body, err := n.renderer.Render(msg)
	if err != nil {
		return err
	}
	e := email.NewEmail()
	e.From = n.from
	e.To = []string{msg.Recipient}
	e.Subject = subject
	e.Text = []byte(body)

	start := time.Now()
	if err := n.send(e); err != nil {
		n.logger.Error("Failed to send email",
			zap.String("template", msg.Template),
			zap.String("recipient", msg.Recipient),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send %s email: %w", msg.Template, err)
	}
	n.logger.Info("Email sent",
		zap.String("template", msg.Template),
		zap.String("recipient", msg.Recipient),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// New returns the notifier the process should use: SMTP when enabled,
// otherwise one that only logs
func New(cfg config.SMTPConfig, logger *zap.Logger) (appnotification.Notifier, error) {
	if !cfg.Enabled {
		return appnotification.NewLoggingNotifier(logger), nil
	}
	return NewEmailNotifier(cfg, logger)
}

var _ appnotification.Notifier = (*EmailNotifier)(nil)
