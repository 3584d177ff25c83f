package storage

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	domainerrors "wareworks/pkg/domain-errors"
	"wareworks/pkg/httputil"
)

// MaxUploadBytes caps supporting-document uploads.
const MaxUploadBytes = 10 << 20

// allowed MIME types for supporting documents.
var allowedUploadTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

// Handler exposes upload storage over HTTP.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// HandleUpload accepts one multipart supporting document.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if !h.service.Configured() {
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeUnavailable, "document uploads are not available"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		httputil.WriteError(w, domainerrors.Wrap(err, domainerrors.CodeBadRequest, "upload exceeds the size limit or is not multipart"))
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeBadRequest, "multipart field \"document\" is required"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !allowedUploadTypes[contentType] {
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeInvalidInput, "unsupported document type"))
		return
	}

	stored, err := h.service.StoreUpload(r.Context(), header.Filename, contentType, file, header.Size)
	if err != nil {
		h.logger.Error("upload_store_failed", "error", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, stored)
}

// HandleDownloadUpload streams a stored supporting document back.
func (h *Handler) HandleDownloadUpload(w http.ResponseWriter, r *http.Request) {
	if !h.service.Configured() {
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeUnavailable, "document uploads are not available"))
		return
	}

	documentID := chi.URLParam(r, "documentID")
	reader, info, err := h.service.OpenUpload(r.Context(), documentID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", info.ContentType)
	w.Header().Set("Content-Disposition", "attachment")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Error("upload_stream_failed", "document_id", documentID, "error", err)
	}
}
