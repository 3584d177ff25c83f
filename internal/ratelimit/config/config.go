package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"wareworks/internal/ratelimit/models"
)

// Limit defines fixed-window rate limit parameters for an endpoint class.
type Limit struct {
	MaxRequests int
	Window      time.Duration
}

// Config holds per-endpoint-class rate limiting configuration.
type Config struct {
	Limits map[models.EndpointClass]Limit

	// SweepInterval bounds memory held by fully elapsed windows.
	SweepInterval time.Duration
}

// DefaultConfig returns the endpoint-class defaults. Submissions are kept
// deliberately tight: an applicant has no legitimate reason to submit more
// than a few times per quarter hour.
func DefaultConfig() *Config {
	return &Config{
		Limits: map[models.EndpointClass]Limit{
			models.ClassSubmission: {MaxRequests: 3, Window: 15 * time.Minute},
			models.ClassAPI:        {MaxRequests: 100, Window: 5 * time.Minute},
			models.ClassUpload:     {MaxRequests: 10, Window: 10 * time.Minute},
			models.ClassDownload:   {MaxRequests: 5, Window: time.Minute},
		},
		SweepInterval: 5 * time.Minute,
	}
}

// FromEnv returns the default config with per-class environment overrides
// applied, e.g. RATE_LIMIT_SUBMISSION_MAX=5 RATE_LIMIT_SUBMISSION_WINDOW=10m.
func FromEnv() *Config {
	cfg := DefaultConfig()
	for class, limit := range cfg.Limits {
		prefix := "RATE_LIMIT_" + strings.ToUpper(class.String())
		if v := os.Getenv(prefix + "_MAX"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit.MaxRequests = n
			}
		}
		if v := os.Getenv(prefix + "_WINDOW"); v != "" {
			if d, err := time.ParseDuration(v); err == nil && d > 0 {
				limit.Window = d
			}
		}
		cfg.Limits[class] = limit
	}
	if v := os.Getenv("RATE_LIMIT_SWEEP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.SweepInterval = d
		}
	}
	return cfg
}

// GetLimit returns the limit for an endpoint class, defaulting to the API
// class for unknown values.
func (c *Config) GetLimit(class models.EndpointClass) (maxRequests int, window time.Duration) {
	if limit, ok := c.Limits[class]; ok {
		return limit.MaxRequests, limit.Window
	}
	fallback := c.Limits[models.ClassAPI]
	return fallback.MaxRequests, fallback.Window
}
