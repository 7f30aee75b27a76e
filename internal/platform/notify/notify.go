// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package notify publishes user-facing notifications (welcome mail, password
reset links, lock/unlock notices) to the mailer pipeline.

The API never talks to an SMTP server itself. It emits a [Message] onto a
Kafka topic and the mailer service renders and delivers it. Delivery is
best-effort: callers use [Deliver], which logs and swallows failures so that
a broker outage never fails a registration or an admin action.
*/
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/shopii/internal/platform/ctxutil"
)

// Kind identifies the template the mailer should render.
type Kind string

const (
	KindWelcome         Kind = "welcome"
	KindPasswordReset   Kind = "password_reset"
	KindPasswordChanged Kind = "password_changed"
	KindAccountLocked   Kind = "account_locked"
	KindAccountUnlocked Kind = "account_unlocked"
	KindAdminCreated    Kind = "admin_created"
)

// Message is a single notification addressed to one recipient.
type Message struct {
	Kind       Kind              `json:"kind"`
	To         string            `json:"to"`
	Subject    string            `json:"subject"`
	Body       string            `json:"body"`
	Data       map[string]string `json:"data,omitempty"`
	OccurredAt time.Time         `json:"occurredAt"`
}

// Publisher hands a message to the delivery pipeline.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// Deliver publishes msg and logs, rather than returns, any failure.
func Deliver(ctx context.Context, publisher Publisher, msg Message) {
	if msg.OccurredAt.IsZero() {
		msg.OccurredAt = time.Now().UTC()
	}

	if err := publisher.Publish(ctx, msg); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "notification_delivery_failed",
			slog.String("kind", string(msg.Kind)),
			slog.String("error", err.Error()),
		)
	}
}

// # Log Publisher

// LogPublisher writes notifications to the log instead of a broker.
// It is used when no Kafka brokers are configured (local development).
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a publisher that logs every message at info level.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish implements [Publisher]. The body is omitted as it may carry reset links.
func (p *LogPublisher) Publish(ctx context.Context, msg Message) error {
	p.logger.InfoContext(ctx, "notification_logged",
		slog.String("kind", string(msg.Kind)),
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
	)
	return nil
}
