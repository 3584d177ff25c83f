// Package httptransport wires the public HTTP surface. It delegates to the
// domain services without embedding business logic so transport concerns
// remain isolated.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wareworks/internal/csrf"
	"wareworks/internal/platform/metrics"
	"wareworks/internal/platform/middleware"
	ratelimitmiddleware "wareworks/internal/ratelimit/middleware"
	ratelimitmodels "wareworks/internal/ratelimit/models"
	"wareworks/internal/storage"
	"wareworks/internal/submission/handler"
	"wareworks/pkg/httputil"
)

// Deps collects everything the router mounts.
type Deps struct {
	Submission *handler.Handler
	Config     *handler.ConfigHandler
	CSRF       *csrf.Handler
	CSRFGuard  *csrf.Guard
	Uploads    *storage.Handler
	RateLimit  *ratelimitmiddleware.Middleware
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
}

// NewRouter assembles the middleware stack and all public endpoints.
//
// Ordering matters at the gate: rate limiting runs before the CSRF check so
// a flood of forged requests burns its budget without touching token
// validation, and both run before any body is read.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientIP)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Latency(d.Metrics))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Group(func(g chi.Router) {
			g.Use(d.RateLimit.RateLimit(ratelimitmodels.ClassAPI))
			g.Get("/csrf-token", d.CSRF.HandleIssueToken)
			g.Post("/csrf-token", d.CSRF.HandleIssueToken)
			g.Get("/config", d.Config.HandleConfig)
		})

		api.Group(func(g chi.Router) {
			g.Use(d.RateLimit.RateLimit(ratelimitmodels.ClassSubmission))
			g.Use(csrf.Middleware(d.CSRFGuard, d.Logger))
			g.Use(middleware.ContentTypeJSON)
			g.Post("/submit", d.Submission.HandleSubmit)
		})

		api.Group(func(g chi.Router) {
			g.Use(d.RateLimit.RateLimit(ratelimitmodels.ClassUpload))
			g.Use(csrf.Middleware(d.CSRFGuard, d.Logger))
			g.Post("/uploads", d.Uploads.HandleUpload)
		})

		api.Group(func(g chi.Router) {
			g.Use(d.RateLimit.RateLimit(ratelimitmodels.ClassDownload))
			g.Get("/uploads/{documentID}", d.Uploads.HandleDownloadUpload)
			g.Get("/submissions/{submissionID}/document", d.Submission.HandleDownload)
		})
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
