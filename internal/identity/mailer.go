// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 People Directory Contributors

package identity

import (
	"context"
	"log/slog"
)

// MailContext carries the data the delivery layer renders into a message
// body. The core never formats HTML; the caller owns templates and
// localization.
type MailContext struct {
	Principal *Principal
	// Secret is the verification code or reset token to embed.
	Secret string
	// BaseURL is the application base URL for links in the message.
	BaseURL string
}

// Mailer delivers rendered notification messages. Implementations may block
// on I/O and must honor the context deadline.
type Mailer interface {
	Send(ctx context.Context, to, subject string, mc MailContext) error
}

// LogMailer is a development Mailer that logs instead of delivering.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a LogMailer. A nil logger falls back to slog.Default.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

// Send logs the would-be delivery. The secret itself is not logged.
func (m *LogMailer) Send(ctx context.Context, to, subject string, mc MailContext) error {
	m.logger.InfoContext(ctx, "mail delivery skipped (log mailer)",
		"to", to,
		"subject", subject,
		"base_url", mc.BaseURL,
	)
	return nil
}

// Compile-time interface check.
var _ Mailer = (*LogMailer)(nil)
