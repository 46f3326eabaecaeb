// Package notification turns committed ledger events into customer alerts.
package notification

import (
	"context"

	"go.uber.org/zap"
)

// Template keys understood by notifiers
const (
	TemplateTransactionAlert = "transaction_alert"
	TemplateMaturityAlert    = "maturity_alert"
)

// Notification is one message for one recipient. Data carries the template
// fields; money values are decimal.Decimal and formatted by the notifier.
type Notification struct {
	Recipient string
	Template  string
	Data      map[string]any
}

// Notifier delivers notifications over some channel
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// LoggingNotifier writes notifications to the log instead of delivering them.
// It is used when no SMTP host is configured.
type LoggingNotifier struct {
	logger *zap.Logger
}

// NewLoggingNotifier creates a new logging notifier
func NewLoggingNotifier(logger *zap.Logger) *LoggingNotifier {
	return &LoggingNotifier{logger: logger}
}

// Send logs the notification
func (n *LoggingNotifier) Send(ctx context.Context, msg Notification) error {
	n.logger.Info("Notification",
		zap.String("recipient", msg.Recipient),
		zap.String("template", msg.Template),
		zap.Any("data", msg.Data),
	)
	return nil
}

var _ Notifier = (*LoggingNotifier)(nil)
