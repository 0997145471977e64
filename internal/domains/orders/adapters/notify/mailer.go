package notify

import (
	"context"
	"log/slog"
)

// Mailer delivers a composed email.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// LogMailer simulates delivery by writing the message to the structured log.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, email Email) error {
	m.logger.LogAttrs(ctx, slog.LevelInfo, "email simulation",
		slog.String("order.id", email.OrderID),
		slog.String("from", email.From),
		slog.Any("to", email.To),
		slog.String("subject", email.Subject),
		slog.String("body", email.Body),
	)
	return nil
}
