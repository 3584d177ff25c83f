package models

import (
	"fmt"
	"strings"
	"time"

	"wareworks/pkg/validation"
)

// SubmissionPayload is an employment application as submitted by the client,
// plus server-assigned metadata. Required-field presence is enforced before
// any side-effecting operation runs.
type SubmissionPayload struct {
	// Identity
	LegalFirstName  string `json:"legalFirstName" validate:"required,notblank"`
	LegalMiddleName string `json:"legalMiddleName,omitempty"`
	LegalLastName   string `json:"legalLastName" validate:"required,notblank"`
	OtherLastNames  string `json:"otherLastNames,omitempty"`
	DateOfBirth     string `json:"dateOfBirth,omitempty"`

	// Contact
	StreetAddress        string `json:"streetAddress" validate:"required,notblank"`
	AptNumber            string `json:"aptNumber,omitempty"`
	City                 string `json:"city" validate:"required,notblank"`
	State                string `json:"state" validate:"required,notblank"`
	ZipCode              string `json:"zipCode" validate:"required,uszip"`
	PhoneNumber          string `json:"phoneNumber" validate:"required,usphone"`
	Email                string `json:"email,omitempty" validate:"omitempty,email"`
	SocialSecurityNumber string `json:"socialSecurityNumber" validate:"required,ssn"`

	// Position
	PositionDesired    string `json:"positionDesired,omitempty"`
	AvailableStartDate string `json:"availableStartDate,omitempty"`
	DesiredPay         string `json:"desiredPay,omitempty"`
	FullTime           bool   `json:"fullTime,omitempty"`

	// Work authorization (I-9)
	CitizenshipStatus       string `json:"citizenshipStatus,omitempty" validate:"omitempty,oneof=citizen national permanent_resident authorized_alien"`
	AlienRegistrationNumber string `json:"alienRegistrationNumber,omitempty"`
	WorkAuthExpiration      string `json:"workAuthExpiration,omitempty"`

	// History
	Education  []EducationEntry  `json:"education,omitempty" validate:"dive"`
	Employment []EmploymentEntry `json:"employment,omitempty" validate:"dive"`

	// Uploaded supporting documents (stored separately; referenced by id)
	Documents []DocumentRef `json:"documents,omitempty"`

	Language string `json:"language,omitempty"`

	// Server-assigned; ignored on input.
	Meta ServerMetadata `json:"meta,omitempty"`
}

// EducationEntry is one school record; templates hold a fixed number of
// slots, extra entries are truncated at fill time.
type EducationEntry struct {
	SchoolName     string `json:"schoolName" validate:"required,notblank"`
	Location       string `json:"location,omitempty"`
	Degree         string `json:"degree,omitempty"`
	FieldOfStudy   string `json:"fieldOfStudy,omitempty"`
	GraduationYear string `json:"graduationYear,omitempty"`
}

// EmploymentEntry is one prior-employer record.
type EmploymentEntry struct {
	Employer         string `json:"employer" validate:"required,notblank"`
	Position         string `json:"position,omitempty"`
	StartDate        string `json:"startDate,omitempty"`
	EndDate          string `json:"endDate,omitempty"`
	Responsibilities string `json:"responsibilities,omitempty"`
	ReasonForLeaving string `json:"reasonForLeaving,omitempty"`
	MayContact       bool   `json:"mayContact,omitempty"`
}

// DocumentRef points at a previously uploaded supporting document.
type DocumentRef struct {
	DocumentID string `json:"documentId"`
	Filename   string `json:"filename,omitempty"`
	Kind       string `json:"kind,omitempty"`
}

// ServerMetadata is attached once by the orchestrator and immutable after.
type ServerMetadata struct {
	SubmissionID    string    `json:"submissionId,omitempty"`
	ServerTimestamp time.Time `json:"serverTimestamp,omitempty"`
	ClientIP        string    `json:"clientIp,omitempty"`
	UserAgent       string    `json:"userAgent,omitempty"`
}

// Normalize trims surrounding whitespace from the fields applicants most
// commonly paste.
func (p *SubmissionPayload) Normalize() {
	p.LegalFirstName = strings.TrimSpace(p.LegalFirstName)
	p.LegalMiddleName = strings.TrimSpace(p.LegalMiddleName)
	p.LegalLastName = strings.TrimSpace(p.LegalLastName)
	p.StreetAddress = strings.TrimSpace(p.StreetAddress)
	p.City = strings.TrimSpace(p.City)
	p.State = strings.TrimSpace(p.State)
	p.ZipCode = strings.TrimSpace(p.ZipCode)
	p.PhoneNumber = strings.TrimSpace(p.PhoneNumber)
	p.Email = strings.TrimSpace(p.Email)
	p.SocialSecurityNumber = strings.TrimSpace(p.SocialSecurityNumber)
	p.PositionDesired = strings.TrimSpace(p.PositionDesired)
}

// ValidationResult lists every violation found in a payload, in field order.
type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// Validate checks required-field presence and formats. All violations are
// collected, not fail-fast, so the caller can report every problem at once.
// Pure function: no I/O, no mutation of the payload.
func (p *SubmissionPayload) Validate() ValidationResult {
	errs := validation.Collect(p)
	return ValidationResult{
		IsValid: len(errs) == 0,
		Errors:  errs,
	}
}

// FullName returns "First Last" for notification and filename use.
func (p *SubmissionPayload) FullName() string {
	return strings.TrimSpace(p.LegalFirstName + " " + p.LegalLastName)
}

// StepName identifies one best-effort pipeline step in response details.
type StepName string

const (
	StepPDFGeneration     StepName = "pdfGeneration"
	StepEmailNotification StepName = "emailNotification"
	StepSheetsAppend      StepName = "sheetsAppend"
	StepDocumentArchive   StepName = "documentArchive"
)

// StepOutcome records the result of one best-effort pipeline step.
// Failures here never abort the submission; they are reported to operators
// through the response details and logs, invisible to the applicant.
type StepOutcome struct {
	Success bool   `json:"success"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SubmitResult aggregates the accept decision with per-step outcomes.
type SubmitResult struct {
	SubmissionID  string                   `json:"submissionId"`
	DownloadToken string                   `json:"downloadToken,omitempty"`
	Details       map[StepName]StepOutcome `json:"details"`
}

// SubmitResponse is the 200 body: the submission was accepted even if
// auxiliary steps partially failed.
type SubmitResponse struct {
	Success       bool                     `json:"success"`
	SubmissionID  string                   `json:"submissionId"`
	DownloadToken string                   `json:"downloadToken,omitempty"`
	Details       map[StepName]StepOutcome `json:"details"`
}

// ValidationErrorResponse is the 400 body listing all violations.
type ValidationErrorResponse struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors"`
}

// GeneratedDocument is a filled or synthesized PDF. Owned exclusively by the
// call that created it until handed to the dispatcher or the HTTP response;
// never shared or mutated concurrently.
type GeneratedDocument struct {
	Bytes    []byte
	MIMEType string
	Filename string
}

// AttachmentFilename derives a deterministic name from the applicant and
// submission id.
func AttachmentFilename(p *SubmissionPayload) string {
	sanitize := func(s string) string {
		s = strings.TrimSpace(s)
		s = strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
				return r
			default:
				return '_'
			}
		}, s)
		if s == "" {
			return "applicant"
		}
		return s
	}
	return fmt.Sprintf("%s_%s_%s.pdf",
		sanitize(p.LegalLastName),
		sanitize(p.LegalFirstName),
		p.Meta.SubmissionID,
	)
}
