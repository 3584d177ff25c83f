package models

import "time"

// EndpointClass buckets routes that share a rate-limit policy.
type EndpointClass string

const (
	// ClassSubmission: application submission (3 req / 15 min) - POST /api/submit
	ClassSubmission EndpointClass = "submission"
	// ClassAPI: generic API reads (100 req / 5 min) - /api/config, /api/csrf-token
	ClassAPI EndpointClass = "api"
	// ClassUpload: document uploads (10 req / 10 min) - POST /api/uploads
	ClassUpload EndpointClass = "upload"
	// ClassDownload: document downloads (5 req / 1 min) - GET document endpoints
	ClassDownload EndpointClass = "download"
)

func (c EndpointClass) IsValid() bool {
	switch c {
	case ClassSubmission, ClassAPI, ClassUpload, ClassDownload:
		return true
	}
	return false
}

func (c EndpointClass) String() string {
	return string(c)
}

// RateLimitResult reports the outcome of a single counted request.
type RateLimitResult struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

// RateLimitExceededResponse is the 429 body returned by the middleware.
type RateLimitExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retryAfter"`
}
