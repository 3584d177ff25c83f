// Package sweeper runs periodic expiry sweeps over TTL-bounded in-memory
// stores so they cannot grow without bound.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"wareworks/internal/platform/metrics"
)

// Store is any keyed store that can remove entries whose lifetime has fully
// elapsed. Implementations must iterate a snapshot and delete by key rather
// than holding their lock for the duration of the scan work.
type Store interface {
	DeleteExpired(ctx context.Context, now time.Time) (removed int, err error)
}

type Option func(*Sweeper)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sweeper) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithInterval(interval time.Duration) Option {
	return func(s *Sweeper) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Sweeper) {
		s.metrics = m
	}
}

// Sweeper periodically deletes expired entries from a single store.
// One sweeper runs per store, on its own interval, independent of request
// traffic.
type Sweeper struct {
	name     string
	store    Store
	logger   *slog.Logger
	interval time.Duration
	metrics  *metrics.Metrics
}

func New(name string, store Store, opts ...Option) *Sweeper {
	s := &Sweeper{
		name:     name,
		store:    store,
		logger:   slog.Default(),
		interval: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start runs the sweep loop until the context is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			start := time.Now()
			removed, err := s.RunOnce(ctx)
			duration := time.Since(start)

			if err != nil {
				s.logger.Error("expiry_sweep_failed",
					"store", s.name,
					"error", err,
					"duration_ms", duration.Milliseconds(),
				)
				if s.metrics != nil {
					s.metrics.SweepRunsTotal.WithLabelValues(s.name, "error").Inc()
					s.metrics.SweepDurationSeconds.Observe(duration.Seconds())
				}
				continue
			}

			s.logger.Info("expiry_sweep_completed",
				"store", s.name,
				"entries_removed", removed,
				"duration_ms", duration.Milliseconds(),
			)
			if s.metrics != nil {
				s.metrics.SweepRunsTotal.WithLabelValues(s.name, "success").Inc()
				s.metrics.SweepEntriesRemoved.WithLabelValues(s.name).Add(float64(removed))
				s.metrics.SweepDurationSeconds.Observe(duration.Seconds())
			}

		case <-ctx.Done():
			s.logger.Info("expiry sweeper stopping", "store", s.name, "reason", ctx.Err())
			return ctx.Err()
		}
	}
}

// RunOnce executes a single sweep. Logging is handled by the caller (Start).
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	return s.store.DeleteExpired(ctx, time.Now())
}
