package csrf

import (
	"log/slog"
	"net/http"

	"wareworks/pkg/httputil"
)

// Middleware short-circuits state-changing requests that fail the CSRF check
// before any business logic or side effects run.
func Middleware(guard *Guard, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := guard.ValidateRequest(r); err != nil {
				if guard.metrics != nil {
					guard.metrics.CSRFFailures.Inc()
				}
				logger.WarnContext(r.Context(), "csrf_validation_failed",
					"method", r.Method,
					"path", r.URL.Path,
					"log_type", "audit",
				)
				httputil.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
