// Package sheets appends a summary row per accepted submission to a Google
// spreadsheet. The append is an optional pipeline step; when the feature is
// off or credentials are absent a no-op appender stands in.
package sheets

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"wareworks/internal/platform/config"
	"wareworks/internal/platform/privacy"
	"wareworks/internal/submission/models"
	domainerrors "wareworks/pkg/domain-errors"
)

// Appender records one submission row.
type Appender interface {
	Append(ctx context.Context, p *models.SubmissionPayload) error
}

// NewAppender builds a Google Sheets appender from configuration, or the
// no-op when the spreadsheet or credentials are not configured.
func NewAppender(ctx context.Context, cfg config.Sheets, logger *slog.Logger) (Appender, error) {
	if cfg.SpreadsheetID == "" || cfg.CredentialsJSON == "" {
		return &noopAppender{logger: logger}, nil
	}

	svc, err := sheetsapi.NewService(ctx, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "sheets client setup")
	}
	return &googleAppender{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		writeRange:    cfg.Range,
		logger:        logger,
	}, nil
}

type googleAppender struct {
	svc           *sheetsapi.Service
	spreadsheetID string
	writeRange    string
	logger        *slog.Logger
}

func (a *googleAppender) Append(ctx context.Context, p *models.SubmissionPayload) error {
	vr := &sheetsapi.ValueRange{Values: [][]interface{}{rowFor(p)}}

	_, err := a.svc.Spreadsheets.Values.
		Append(a.spreadsheetID, a.writeRange, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeUnavailable, "sheets append failed")
	}

	a.logger.Info("sheets_row_appended",
		"submission_id", p.Meta.SubmissionID,
		"spreadsheet_id", a.spreadsheetID)
	return nil
}

// rowFor flattens a submission into one spreadsheet row. The SSN is masked;
// the full value lives only in the archived PDF.
func rowFor(p *models.SubmissionPayload) []interface{} {
	schedule := "part_time"
	if p.FullTime {
		schedule = "full_time"
	}
	return []interface{}{
		p.Meta.SubmissionID,
		p.Meta.ServerTimestamp.Format("2006-01-02 15:04:05"),
		p.LegalLastName,
		p.LegalFirstName,
		p.PhoneNumber,
		p.Email,
		privacy.MaskSSN(p.SocialSecurityNumber),
		p.City + ", " + p.State + " " + p.ZipCode,
		p.PositionDesired,
		p.AvailableStartDate,
		schedule,
		p.CitizenshipStatus,
		strconv.Itoa(len(p.Education)),
		strconv.Itoa(len(p.Employment)),
		strings.ToLower(strings.TrimSpace(p.Language)),
	}
}

type noopAppender struct {
	logger *slog.Logger
}

func (a *noopAppender) Append(_ context.Context, p *models.SubmissionPayload) error {
	a.logger.Debug("sheets_append_skipped_not_configured",
		"submission_id", p.Meta.SubmissionID)
	return nil
}
