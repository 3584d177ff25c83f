package checker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"wareworks/internal/platform/metrics"
	"wareworks/internal/platform/privacy"
	"wareworks/internal/ratelimit/config"
	"wareworks/internal/ratelimit/models"
)

const keyPrefixIP = "ip"

// WindowStore defines the persistence interface for rate limit counters.
type WindowStore interface {
	// Allow counts a request against the key's current window and reports
	// whether it is within limit.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)

	// Reset clears the counter for a key.
	Reset(ctx context.Context, key string) error
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// Service handles rate limit checking for all endpoint classes.
// Exceeding the limit is a normal Allowed=false result, never an error; store
// failures fail open so a degraded counter backend cannot take the intake
// form down.
type Service struct {
	windows WindowStore
	logger  *slog.Logger
	config  *config.Config
	metrics *metrics.Metrics
}

func New(windows WindowStore, opts ...Option) (*Service, error) {
	if windows == nil {
		return nil, fmt.Errorf("window store is required")
	}

	svc := &Service{
		windows: windows,
		logger:  slog.Default(),
		config:  config.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Check counts one request from clientKey against the class limit.
func (s *Service) Check(ctx context.Context, clientKey string, class models.EndpointClass) (*models.RateLimitResult, error) {
	maxRequests, window := s.config.GetLimit(class)

	key := fmt.Sprintf("%s:%s:%s", keyPrefixIP, clientKey, class)
	result, err := s.windows.Allow(ctx, key, maxRequests, window)
	if err != nil {
		// Fail open: a broken counter backend must not reject applicants.
		s.logger.ErrorContext(ctx, "rate limit store failure, allowing request",
			"error", err,
			"endpoint_class", class,
			"client_prefix", privacy.AnonymizeIP(clientKey),
		)
		return &models.RateLimitResult{
			Allowed:   true,
			Limit:     maxRequests,
			Remaining: maxRequests,
			ResetAt:   time.Now().Add(window),
		}, nil
	}

	if !result.Allowed {
		if s.metrics != nil {
			s.metrics.RateLimitExceeded.WithLabelValues(class.String()).Inc()
		}
		s.logger.InfoContext(ctx, "rate_limit_exceeded",
			"client_prefix", privacy.AnonymizeIP(clientKey),
			"endpoint_class", class,
			"limit", maxRequests,
			"window_seconds", int(window.Seconds()),
			"log_type", "audit",
		)
	}

	return result, nil
}

// Reset clears the counter for a client within a class. Operator escape
// hatch, not exposed publicly.
func (s *Service) Reset(ctx context.Context, clientKey string, class models.EndpointClass) error {
	key := fmt.Sprintf("%s:%s:%s", keyPrefixIP, clientKey, class)
	return s.windows.Reset(ctx, key)
}
