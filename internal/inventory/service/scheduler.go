package service

import (
	"context"
	"time"

	"github.com/maestranza/inventory-backend/pkg/logger"
)

// AlertScheduler runs the alert generators on a fixed interval. The expired
// batch sweep is one of the generators. An interval of zero disables it
// entirely.
type AlertScheduler struct {
	alerts   *AlertService
	interval time.Duration
	logger   *logger.Logger
	cancel   context.CancelFunc
}

// NewAlertScheduler creates a new alert scheduler
func NewAlertScheduler(alerts *AlertService, interval time.Duration, log *logger.Logger) *AlertScheduler {
	return &AlertScheduler{
		alerts:   alerts,
		interval: interval,
		logger:   log,
	}
}

// Start starts the scheduler in a background goroutine. The first cycle runs
// immediately, then repeats every interval until Stop or context cancellation.
func (s *AlertScheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info().Msg("alert scheduler disabled")
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)

	go func() {
		s.logger.Info().Dur("interval", s.interval).Msg("alert scheduler started")

		s.runCycle(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Info().Msg("alert scheduler stopped")
				return
			case <-ticker.C:
				s.runCycle(ctx)
			}
		}
	}()
}

// Stop stops the scheduler goroutine
func (s *AlertScheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *AlertScheduler) runCycle(ctx context.Context) {
	start := time.Now()
	s.logger.Info().Msg("starting alert cycle")

	result, err := s.alerts.GenerateAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("alert generation completed with errors")
	}

	fields := s.logger.Info().Dur("duration", time.Since(start))
	if result != nil {
		fields = fields.Int("alerts_created", result.Total)
	}
	fields.Msg("alert cycle completed")
}
