// Package pdf generates the filled application documents. The primary path
// fills a real PDF template through pdfcpu; when that fails for any reason a
// synthesized document is built from scratch so the pipeline always has a
// usable artifact to attach and archive.
package pdf

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"wareworks/internal/platform/config"
	"wareworks/internal/platform/metrics"
	"wareworks/internal/submission/models"
)

// Filler produces a flat PDF for a validated submission.
type Filler struct {
	templates config.Templates
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

type Option func(*Filler)

func WithLogger(logger *slog.Logger) Option {
	return func(f *Filler) { f.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Filler) { f.metrics = m }
}

func NewFiller(templates config.Templates, opts ...Option) *Filler {
	f := &Filler{
		templates: templates,
		logger:    slog.Default(),
		tracer:    otel.Tracer("wareworks/pdf"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Filler) templatePath(t Template) string {
	if t == TemplateI9 {
		return f.templates.I9Path
	}
	return f.templates.ApplicationPath
}

// Generate fills the named template with the payload. Template failures are
// downgraded to the synthesized fallback; an error is returned only when the
// fallback itself cannot be encoded, which leaves nothing to serve.
func (f *Filler) Generate(ctx context.Context, t Template, p *models.SubmissionPayload) (*models.GeneratedDocument, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("unknown template %q", t)
	}

	_, span := f.tracer.Start(ctx, "pdf.Generate",
		trace.WithAttributes(attribute.String("template", string(t))))
	defer span.End()

	start := time.Now()
	defer func() {
		if f.metrics != nil {
			f.metrics.PDFGenerationDuration.Observe(time.Since(start).Seconds())
		}
	}()

	mappings, err := MappingsFor(t)
	if err != nil {
		return nil, err
	}

	filled, fillErr := fillTemplate(f.templatePath(t), mappings, p)
	if fillErr == nil {
		return &models.GeneratedDocument{
			Bytes:    filled,
			MIMEType: "application/pdf",
			Filename: models.AttachmentFilename(p),
		}, nil
	}

	f.logger.Warn("pdf_template_fill_failed",
		"template", string(t),
		"submission_id", p.Meta.SubmissionID,
		"error", fillErr)
	span.SetAttributes(attribute.Bool("fallback", true))
	if f.metrics != nil {
		f.metrics.PDFFallbacks.Inc()
	}

	synthesized, err := synthesize(t, p)
	if err != nil {
		return nil, fmt.Errorf("synthesize fallback: %w", err)
	}
	return &models.GeneratedDocument{
		Bytes:    synthesized,
		MIMEType: "application/pdf",
		Filename: models.AttachmentFilename(p),
	}, nil
}

// CheckTemplates verifies that every mapped field exists in the configured
// template files. In development a drift is fatal at startup; production
// callers log the returned error and continue on the fallback path.
func (f *Filler) CheckTemplates() error {
	for _, t := range []Template{TemplateApplication, TemplateI9} {
		mappings, err := MappingsFor(t)
		if err != nil {
			return err
		}
		present, err := templateFieldNames(f.templatePath(t))
		if err != nil {
			return fmt.Errorf("template %s: %w", t, err)
		}
		if missing := missingFields(mappings, present); len(missing) > 0 {
			return fmt.Errorf("template %s is missing mapped fields %v", t, missing)
		}
	}
	return nil
}
