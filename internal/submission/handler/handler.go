// Package handler exposes the submission pipeline over HTTP.
package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"wareworks/internal/platform/middleware"
	ratelimitconfig "wareworks/internal/ratelimit/config"
	"wareworks/internal/submission/models"
	"wareworks/internal/submission/service"
	dErrors "wareworks/pkg/domain-errors"
	"wareworks/pkg/httputil"
)

// MaxSubmissionBytes caps the JSON payload. Applications are text; anything
// larger is not a legitimate submission.
const MaxSubmissionBytes = 1 << 20

// Handler serves submission, download and config endpoints.
type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

func NewHandler(svc *service.Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// HandleSubmit accepts one employment application.
//
// Responses follow the accept-or-reject contract: 400 carries every
// validation violation, 200 means accepted even when auxiliary steps failed
// (their outcomes ride in details), 500 is reserved for unexpected errors
// and carries no internal detail.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, MaxSubmissionBytes)

	payload, ok := httputil.DecodeJSON[models.SubmissionPayload](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, validation, err := h.service.Submit(ctx, payload,
		middleware.GetClientIP(ctx), r.UserAgent())
	if err != nil {
		h.logger.ErrorContext(ctx, "submission_pipeline_error",
			"error", err,
			"request_id", requestID)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "submission failed"))
		return
	}
	if validation != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, models.ValidationErrorResponse{
			Error:  "validation_failed",
			Errors: validation.Errors,
		})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.SubmitResponse{
		Success:       true,
		SubmissionID:  result.SubmissionID,
		DownloadToken: result.DownloadToken,
		Details:       result.Details,
	})
}

// HandleDownload serves a retained generated document. Access requires the
// signed token issued with the submission response; documents expire with
// the retention window.
func (h *Handler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	submissionID := chi.URLParam(r, "submissionID")
	if submissionID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "submission id is required"))
		return
	}

	grantedID, err := h.service.VerifyDownloadToken(r.URL.Query().Get("token"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if grantedID != submissionID {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "token does not grant access to this submission"))
		return
	}

	doc, err := h.service.Document(r.Context(), submissionID)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "document lookup failed"))
		return
	}
	if doc == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "document expired or does not exist"))
		return
	}

	w.Header().Set("Content-Type", doc.MIMEType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(doc.Bytes)
}

// ConfigResponse advertises feature availability and client-relevant limits
// to the frontend.
type ConfigResponse struct {
	Features  ConfigFeatures         `json:"features"`
	Limits    map[string]ConfigLimit `json:"limits"`
	Languages []string               `json:"languages"`
}

type ConfigFeatures struct {
	PDFGeneration      bool `json:"pdfGeneration"`
	EmailNotifications bool `json:"emailNotifications"`
	GoogleSheets       bool `json:"googleSheets"`
}

type ConfigLimit struct {
	MaxRequests   int `json:"maxRequests"`
	WindowSeconds int `json:"windowSeconds"`
}

// ConfigHandler serves GET /api/config behind an origin allow-list.
type ConfigHandler struct {
	response       ConfigResponse
	allowedOrigins []string
	logger         *slog.Logger
}

func NewConfigHandler(features ConfigFeatures, limits *ratelimitconfig.Config, languages, allowedOrigins []string, logger *slog.Logger) *ConfigHandler {
	response := ConfigResponse{
		Features:  features,
		Limits:    make(map[string]ConfigLimit, len(limits.Limits)),
		Languages: languages,
	}
	for class, limit := range limits.Limits {
		response.Limits[class.String()] = ConfigLimit{
			MaxRequests:   limit.MaxRequests,
			WindowSeconds: int(limit.Window.Seconds()),
		}
	}
	return &ConfigHandler{
		response:       response,
		allowedOrigins: allowedOrigins,
		logger:         logger,
	}
}

func (h *ConfigHandler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	if !h.originAllowed(r) {
		h.logger.Warn("config_request_from_disallowed_origin",
			"origin", r.Header.Get("Origin"),
			"referer", r.Referer())
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "origin not allowed"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.response)
}

// originAllowed checks Origin, falling back to Referer. An empty allow-list
// permits everything (development default).
func (h *ConfigHandler) originAllowed(r *http.Request) bool {
	if len(h.allowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		origin = r.Referer()
	}
	if origin == "" {
		return false
	}
	for _, allowed := range h.allowedOrigins {
		if origin == allowed || strings.HasPrefix(origin, allowed+"/") {
			return true
		}
	}
	return false
}
