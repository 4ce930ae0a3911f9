// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import (
	"context"
	"time"

	"github.com/bonitasoft/bonita-engine-sub001/internal/log"
)

// Sweeper periodically removes expired sessions.
type Sweeper struct {
	Service  *Service
	Interval time.Duration
}

// Run starts the sweeper loop and blocks until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	if s.Interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	logger := log.WithComponentFromContext(ctx, "session")
	logger.Info().Dur("interval", s.Interval).Msg("session sweeper started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce performs exactly one sweep pass.
func (s *Sweeper) SweepOnce(ctx context.Context) int {
	logger := log.WithComponentFromContext(ctx, "session")
	n, err := s.Service.Sweep(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("session sweep failed")
		return n
	}
	if n > 0 {
		logger.Debug().Str(log.FieldEvent, "session.swept").Int("count", n).Msg("expired sessions removed")
	}
	return n
}
