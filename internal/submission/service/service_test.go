package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wareworks/internal/notify"
	"wareworks/internal/pdf"
	"wareworks/internal/platform/config"
	"wareworks/internal/submission/models"
	"wareworks/internal/submission/store"
	"wareworks/internal/submission/token"
)

type fakeGenerator struct {
	err    error
	errFor pdf.Template // when set, only this template fails
	calls  []pdf.Template
}

func (g *fakeGenerator) Generate(_ context.Context, t pdf.Template, p *models.SubmissionPayload) (*models.GeneratedDocument, error) {
	g.calls = append(g.calls, t)
	if g.err != nil && (g.errFor == "" || g.errFor == t) {
		return nil, g.err
	}
	return &models.GeneratedDocument{
		Bytes:    []byte("%PDF-1.7 fake"),
		MIMEType: "application/pdf",
		Filename: models.AttachmentFilename(p),
	}, nil
}

type sendRecorder struct {
	err  error
	sent int
	last *notify.Message
}

func (d *sendRecorder) Transport() string { return "fake" }

func (d *sendRecorder) Send(_ context.Context, msg *notify.Message) error {
	if d.err != nil {
		return d.err
	}
	d.sent++
	d.last = msg
	return nil
}

type fakeAppender struct {
	err  error
	rows int
}

func (a *fakeAppender) Append(_ context.Context, _ *models.SubmissionPayload) error {
	if a.err != nil {
		return a.err
	}
	a.rows++
	return nil
}

func validPayload() *models.SubmissionPayload {
	return &models.SubmissionPayload{
		LegalFirstName:       "Maria",
		LegalLastName:        "Santos",
		StreetAddress:        "412 Dock Street",
		City:                 "Tacoma",
		State:                "WA",
		ZipCode:              "98402",
		PhoneNumber:          "253-555-0142",
		SocialSecurityNumber: "123-45-6789",
	}
}

var submissionIDPattern = regexp.MustCompile(`^app_\d{13}_[0-9a-f]{8}$`)

func newService(t *testing.T, gen Generator, dispatcher *sendRecorder, appender *fakeAppender, features config.Features, opts ...Option) *Service {
	t.Helper()
	docs := store.NewInMemoryDocumentStore(time.Hour)
	issuer := token.NewIssuer("test-signing-key", time.Hour)
	return New(gen, dispatcher, appender, docs, issuer, features, opts...)
}

func TestSubmitHappyPath(t *testing.T) {
	gen := &fakeGenerator{}
	dispatcher := &sendRecorder{}
	appender := &fakeAppender{}
	svc := newService(t, gen, dispatcher, appender, config.Features{
		PDFGeneration:      true,
		EmailNotifications: true,
		GoogleSheets:       true,
	})

	result, vr, err := svc.Submit(context.Background(), validPayload(), "203.0.113.7", "test-agent")
	require.NoError(t, err)
	require.Nil(t, vr)
	require.NotNil(t, result)

	assert.Regexp(t, submissionIDPattern, result.SubmissionID)
	assert.NotEmpty(t, result.DownloadToken)
	assert.True(t, result.Details[models.StepPDFGeneration].Success)
	assert.True(t, result.Details[models.StepEmailNotification].Success)
	assert.True(t, result.Details[models.StepSheetsAppend].Success)
	assert.True(t, result.Details[models.StepDocumentArchive].Skipped)
	assert.Equal(t, 1, dispatcher.sent)
	assert.Equal(t, 1, appender.rows)
}

func TestSubmitRejectsInvalidPayload(t *testing.T) {
	gen := &fakeGenerator{}
	dispatcher := &sendRecorder{}
	svc := newService(t, gen, dispatcher, &fakeAppender{}, config.Features{
		PDFGeneration:      true,
		EmailNotifications: true,
	})

	p := validPayload()
	p.SocialSecurityNumber = "not-an-ssn"
	p.ZipCode = ""

	result, vr, err := svc.Submit(context.Background(), p, "203.0.113.7", "test-agent")
	require.NoError(t, err)
	require.Nil(t, result)
	require.NotNil(t, vr)

	assert.False(t, vr.IsValid)
	assert.GreaterOrEqual(t, len(vr.Errors), 2)
	// No side effect may run for a rejected payload.
	assert.Empty(t, gen.calls)
	assert.Zero(t, dispatcher.sent)
}

func TestSubmitRecordsNotificationFailure(t *testing.T) {
	dispatcher := &sendRecorder{err: errors.New("smtp unreachable")}
	svc := newService(t, &fakeGenerator{}, dispatcher, &fakeAppender{}, config.Features{
		PDFGeneration:      true,
		EmailNotifications: true,
	})

	result, vr, err := svc.Submit(context.Background(), validPayload(), "203.0.113.7", "test-agent")
	require.NoError(t, err)
	require.Nil(t, vr)
	require.NotNil(t, result)

	outcome := result.Details[models.StepEmailNotification]
	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Error, "smtp unreachable")
	// The submission is still accepted with a usable document.
	assert.True(t, result.Details[models.StepPDFGeneration].Success)
	assert.NotEmpty(t, result.DownloadToken)
}

func TestSubmitSkipsDisabledSteps(t *testing.T) {
	dispatcher := &sendRecorder{}
	svc := newService(t, &fakeGenerator{}, dispatcher, &fakeAppender{}, config.Features{})

	result, vr, err := svc.Submit(context.Background(), validPayload(), "203.0.113.7", "test-agent")
	require.NoError(t, err)
	require.Nil(t, vr)

	assert.True(t, result.Details[models.StepPDFGeneration].Skipped)
	assert.True(t, result.Details[models.StepEmailNotification].Skipped)
	assert.True(t, result.Details[models.StepSheetsAppend].Skipped)
	assert.Empty(t, result.DownloadToken)
	assert.Zero(t, dispatcher.sent)
}

func TestSubmitGeneratesI9ForCitizenshipStatus(t *testing.T) {
	gen := &fakeGenerator{}
	svc := newService(t, gen, &sendRecorder{}, &fakeAppender{}, config.Features{PDFGeneration: true})

	p := validPayload()
	p.CitizenshipStatus = "citizen"

	_, _, err := svc.Submit(context.Background(), p, "203.0.113.7", "test-agent")
	require.NoError(t, err)
	assert.Equal(t, []pdf.Template{pdf.TemplateApplication, pdf.TemplateI9}, gen.calls)
}

func TestSubmitRecordsTotalGenerationFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("template unreadable")}
	svc := newService(t, gen, &sendRecorder{}, &fakeAppender{}, config.Features{PDFGeneration: true})

	result, vr, err := svc.Submit(context.Background(), validPayload(), "203.0.113.7", "test-agent")
	require.NoError(t, err)
	require.Nil(t, vr)

	outcome := result.Details[models.StepPDFGeneration]
	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Error, "template unreadable")
	// Nothing to download without a document.
	assert.Empty(t, result.DownloadToken)
}

func TestSubmitKeepsApplicationWhenI9Fails(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("i9 template unreadable"), errFor: pdf.TemplateI9}
	svc := newService(t, gen, &sendRecorder{}, &fakeAppender{}, config.Features{PDFGeneration: true})

	p := validPayload()
	p.CitizenshipStatus = "citizen"

	result, vr, err := svc.Submit(context.Background(), p, "203.0.113.7", "test-agent")
	require.NoError(t, err)
	require.Nil(t, vr)

	outcome := result.Details[models.StepPDFGeneration]
	assert.True(t, outcome.Success)
	assert.Contains(t, outcome.Error, "i9 template unreadable")

	// The application form stays downloadable despite the failed I-9.
	require.NotEmpty(t, result.DownloadToken)
	submissionID, err := svc.VerifyDownloadToken(result.DownloadToken)
	require.NoError(t, err)

	doc, err := svc.Document(context.Background(), submissionID)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "application/pdf", doc.MIMEType)
}

func TestSubmitRetainsDocumentForDownload(t *testing.T) {
	svc := newService(t, &fakeGenerator{}, &sendRecorder{}, &fakeAppender{}, config.Features{PDFGeneration: true})

	result, _, err := svc.Submit(context.Background(), validPayload(), "203.0.113.7", "test-agent")
	require.NoError(t, err)

	submissionID, err := svc.VerifyDownloadToken(result.DownloadToken)
	require.NoError(t, err)
	assert.Equal(t, result.SubmissionID, submissionID)

	doc, err := svc.Document(context.Background(), submissionID)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "application/pdf", doc.MIMEType)
}

func TestSubmitAnonymizesClientIP(t *testing.T) {
	svc := newService(t, &fakeGenerator{}, &sendRecorder{}, &fakeAppender{}, config.Features{})

	p := validPayload()
	_, _, err := svc.Submit(context.Background(), p, "203.0.113.77", "test-agent")
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.0", p.Meta.ClientIP)
}

func TestNewSubmissionIDFormat(t *testing.T) {
	fixed := time.Date(2026, 8, 28, 14, 30, 0, 0, time.UTC)
	svc := newService(t, &fakeGenerator{}, &sendRecorder{}, &fakeAppender{}, config.Features{},
		WithClock(func() time.Time { return fixed }))

	id := svc.NewSubmissionID()
	assert.Regexp(t, submissionIDPattern, id)
	assert.Contains(t, id, "app_1787927400000_")

	// Random suffix keeps same-millisecond submissions distinct.
	assert.NotEqual(t, id, svc.NewSubmissionID())
}
