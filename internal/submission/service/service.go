// Package service orchestrates the submission pipeline: enrich, validate,
// generate documents, then fan out the best-effort side effects. The
// pipeline is stateless between requests; everything a step needs travels
// with the payload.
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"wareworks/internal/notify"
	"wareworks/internal/pdf"
	"wareworks/internal/platform/config"
	"wareworks/internal/platform/metrics"
	"wareworks/internal/platform/privacy"
	"wareworks/internal/sheets"
	"wareworks/internal/submission/models"
	"wareworks/internal/submission/token"
)

// Generator produces a filled PDF for one template.
type Generator interface {
	Generate(ctx context.Context, t pdf.Template, p *models.SubmissionPayload) (*models.GeneratedDocument, error)
}

// DocumentStore retains generated documents for the download window.
type DocumentStore interface {
	Put(ctx context.Context, submissionID string, doc *models.GeneratedDocument) error
	Get(ctx context.Context, submissionID string) (*models.GeneratedDocument, error)
}

// Archiver persists generated documents to long-term object storage.
// A nil-backed implementation reports Configured() == false.
type Archiver interface {
	Configured() bool
	ArchiveDocument(ctx context.Context, submissionID string, doc *models.GeneratedDocument) error
}

// Service runs the submission pipeline.
type Service struct {
	generator  Generator
	dispatcher notify.Dispatcher
	appender   sheets.Appender
	documents  DocumentStore
	archiver   Archiver
	tokens     *token.Issuer
	features   config.Features

	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	clock   func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides time for deterministic submission IDs in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.clock = now }
}

// WithArchiver wires optional object storage for generated documents.
func WithArchiver(a Archiver) Option {
	return func(s *Service) { s.archiver = a }
}

func New(
	generator Generator,
	dispatcher notify.Dispatcher,
	appender sheets.Appender,
	documents DocumentStore,
	tokens *token.Issuer,
	features config.Features,
	opts ...Option,
) *Service {
	s := &Service{
		generator:  generator,
		dispatcher: dispatcher,
		appender:   appender,
		documents:  documents,
		tokens:     tokens,
		features:   features,
		logger:     slog.Default(),
		tracer:     otel.Tracer("wareworks/submission"),
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSubmissionID builds the public submission identifier. The millisecond
// timestamp gives operators a sortable prefix; the random suffix prevents
// collisions within the same millisecond.
func (s *Service) NewSubmissionID() string {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		// The timestamp alone still identifies the submission.
		return fmt.Sprintf("app_%d_00000000", s.clock().UnixMilli())
	}
	return fmt.Sprintf("app_%d_%s", s.clock().UnixMilli(), hex.EncodeToString(suffix))
}

// Submit runs the full pipeline for one payload. A non-nil ValidationResult
// means the payload was rejected before any side effect ran. A non-nil
// SubmitResult means the submission was accepted; individual step outcomes
// live in its Details and never fail the submission.
func (s *Service) Submit(ctx context.Context, p *models.SubmissionPayload, clientIP, userAgent string) (*models.SubmitResult, *models.ValidationResult, error) {
	ctx, span := s.tracer.Start(ctx, "submission.Submit")
	defer span.End()

	if s.metrics != nil {
		s.metrics.SubmissionsReceived.Inc()
	}

	p.Normalize()
	p.Meta = models.ServerMetadata{
		SubmissionID:    s.NewSubmissionID(),
		ServerTimestamp: s.clock().UTC(),
		ClientIP:        privacy.AnonymizeIP(clientIP),
		UserAgent:       userAgent,
	}
	span.SetAttributes(attribute.String("submission_id", p.Meta.SubmissionID))

	if vr := p.Validate(); !vr.IsValid {
		if s.metrics != nil {
			s.metrics.SubmissionsRejected.WithLabelValues("validation").Inc()
		}
		s.logger.Info("submission_rejected",
			"submission_id", p.Meta.SubmissionID,
			"violations", len(vr.Errors),
			"client_ip", p.Meta.ClientIP)
		return nil, &vr, nil
	}

	if s.metrics != nil {
		s.metrics.SubmissionsAccepted.Inc()
	}
	s.logger.Info("submission_accepted",
		"submission_id", p.Meta.SubmissionID,
		"applicant", p.FullName(),
		"client_ip", p.Meta.ClientIP)

	result := &models.SubmitResult{
		SubmissionID: p.Meta.SubmissionID,
		Details:      make(map[models.StepName]models.StepOutcome),
	}

	docs := s.generateDocuments(ctx, p, result)
	s.archiveDocuments(ctx, p, docs, result)
	s.dispatchSideEffects(ctx, p, docs, result)

	if len(docs) > 0 && s.tokens != nil {
		downloadToken, err := s.tokens.Issue(p.Meta.SubmissionID)
		if err != nil {
			s.logger.Error("download_token_issue_failed",
				"submission_id", p.Meta.SubmissionID,
				"error", err)
		} else {
			result.DownloadToken = downloadToken
		}
	}

	return result, nil, nil
}

// generateDocuments fills both application forms and retains them for
// download. Generation failures are recorded, never fatal.
func (s *Service) generateDocuments(ctx context.Context, p *models.SubmissionPayload, result *models.SubmitResult) []*models.GeneratedDocument {
	if !s.features.PDFGeneration || s.generator == nil {
		result.Details[models.StepPDFGeneration] = models.StepOutcome{Skipped: true}
		return nil
	}

	templates := []pdf.Template{pdf.TemplateApplication}
	if p.CitizenshipStatus != "" {
		templates = append(templates, pdf.TemplateI9)
	}

	var docs []*models.GeneratedDocument
	for _, t := range templates {
		doc, err := s.generator.Generate(ctx, t, p)
		if err != nil {
			s.stepFailed(result, models.StepPDFGeneration, "pdf_generation", p.Meta.SubmissionID, err)
			if len(docs) == 0 {
				return nil
			}
			// The application form already generated; keep it downloadable
			// and report the step as a partial success.
			result.Details[models.StepPDFGeneration] = models.StepOutcome{Success: true, Error: err.Error()}
			break
		}
		docs = append(docs, doc)
	}

	// Retain only the primary application form for applicant download.
	if err := s.documents.Put(ctx, p.Meta.SubmissionID, docs[0]); err != nil {
		s.logger.Error("document_retention_failed",
			"submission_id", p.Meta.SubmissionID,
			"error", err)
	}

	if _, recorded := result.Details[models.StepPDFGeneration]; !recorded {
		result.Details[models.StepPDFGeneration] = models.StepOutcome{Success: true}
	}
	return docs
}

func (s *Service) archiveDocuments(ctx context.Context, p *models.SubmissionPayload, docs []*models.GeneratedDocument, result *models.SubmitResult) {
	if s.archiver == nil || !s.archiver.Configured() || len(docs) == 0 {
		result.Details[models.StepDocumentArchive] = models.StepOutcome{Skipped: true}
		return
	}

	for _, doc := range docs {
		if err := s.archiver.ArchiveDocument(ctx, p.Meta.SubmissionID, doc); err != nil {
			s.stepFailed(result, models.StepDocumentArchive, "document_archive", p.Meta.SubmissionID, err)
			return
		}
	}
	result.Details[models.StepDocumentArchive] = models.StepOutcome{Success: true}
}

// dispatchSideEffects runs the email notification and the spreadsheet append
// concurrently. Both are best-effort: each outcome is recorded and the
// submission succeeds regardless.
func (s *Service) dispatchSideEffects(ctx context.Context, p *models.SubmissionPayload, docs []*models.GeneratedDocument, result *models.SubmitResult) {
	var mu sync.Mutex
	record := func(step models.StepName, outcome models.StepOutcome) {
		mu.Lock()
		defer mu.Unlock()
		result.Details[step] = outcome
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if !s.features.EmailNotifications || s.dispatcher == nil {
			record(models.StepEmailNotification, models.StepOutcome{Skipped: true})
			return nil
		}
		msg := notify.Compose(p, docs)
		if err := s.dispatcher.Send(ctx, msg); err != nil {
			mu.Lock()
			s.stepFailed(result, models.StepEmailNotification, "email_notification", p.Meta.SubmissionID, err)
			mu.Unlock()
			return nil
		}
		if s.metrics != nil {
			s.metrics.NotificationsSent.WithLabelValues(s.dispatcher.Transport()).Inc()
		}
		record(models.StepEmailNotification, models.StepOutcome{Success: true})
		return nil
	})

	g.Go(func() error {
		if !s.features.GoogleSheets || s.appender == nil {
			record(models.StepSheetsAppend, models.StepOutcome{Skipped: true})
			return nil
		}
		if err := s.appender.Append(ctx, p); err != nil {
			mu.Lock()
			s.stepFailed(result, models.StepSheetsAppend, "sheets_append", p.Meta.SubmissionID, err)
			mu.Unlock()
			return nil
		}
		record(models.StepSheetsAppend, models.StepOutcome{Success: true})
		return nil
	})

	// Steps report through result.Details, never through the group error.
	_ = g.Wait()
}

func (s *Service) stepFailed(result *models.SubmitResult, step models.StepName, metricStep, submissionID string, err error) {
	s.logger.Error("pipeline_step_failed",
		"step", metricStep,
		"submission_id", submissionID,
		"error", err)
	if s.metrics != nil {
		s.metrics.PipelineStepFailures.WithLabelValues(metricStep).Inc()
	}
	result.Details[step] = models.StepOutcome{Success: false, Error: err.Error()}
}

// Document returns a retained generated document for download.
func (s *Service) Document(ctx context.Context, submissionID string) (*models.GeneratedDocument, error) {
	return s.documents.Get(ctx, submissionID)
}

// VerifyDownloadToken checks a signed download token and returns the
// submission it grants access to.
func (s *Service) VerifyDownloadToken(tokenString string) (string, error) {
	return s.tokens.Verify(tokenString)
}
