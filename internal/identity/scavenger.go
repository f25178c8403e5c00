// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 People Directory Contributors

package identity

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"

	"github.com/peopledir/peopledir/pkg/errutil"
)

// DefaultScavengeInterval is how often expired secrets are purged.
const DefaultScavengeInterval = time.Hour

// Scavenger periodically removes expired verification codes and reset
// tokens. Expired rows are already unusable; this keeps the tables from
// growing without bound.
type Scavenger struct {
	codes    *CodeIssuer
	tokens   *TokenIssuer
	interval time.Duration
	logger   *slog.Logger
}

// NewScavenger creates a Scavenger. A non-positive interval falls back to
// DefaultScavengeInterval.
func NewScavenger(codes *CodeIssuer, tokens *TokenIssuer, interval time.Duration, logger *slog.Logger) (*Scavenger, error) {
	if codes == nil {
		return nil, oops.Errorf("code issuer is required")
	}
	if tokens == nil {
		return nil, oops.Errorf("token issuer is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultScavengeInterval
	}
	return &Scavenger{codes: codes, tokens: tokens, interval: interval, logger: logger}, nil
}

// Run purges on the configured interval until the context is cancelled.
// One purge runs immediately on start.
func (s *Scavenger) Run(ctx context.Context) {
	s.purge(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.purge(ctx)
		}
	}
}

// purge removes expired secrets of both kinds. Failures are logged; the
// next tick retries.
func (s *Scavenger) purge(ctx context.Context) {
	codes, err := s.codes.PurgeExpired(ctx)
	if err != nil {
		errutil.LogError(s.logger, "verification code purge failed", err)
	} else if codes > 0 {
		SecretsPurged.WithLabelValues("verification_code").Add(float64(codes))
		s.logger.Debug("purged expired verification codes", "count", codes)
	}

	tokens, err := s.tokens.PurgeExpired(ctx)
	if err != nil {
		errutil.LogError(s.logger, "reset token purge failed", err)
	} else if tokens > 0 {
		SecretsPurged.WithLabelValues("reset_token").Add(float64(tokens))
		s.logger.Debug("purged expired reset tokens", "count", tokens)
	}
}
