package pdf

import (
	"fmt"
	"strconv"

	"wareworks/internal/submission/models"
)

// Template names a known fillable form.
type Template string

const (
	// TemplateApplication is the general employment application form.
	TemplateApplication Template = "application"
	// TemplateI9 is the employment eligibility verification form.
	TemplateI9 Template = "i9"
)

func (t Template) IsValid() bool {
	return t == TemplateApplication || t == TemplateI9
}

// Slot counts fixed by the template layouts. Extra payload entries are
// truncated at fill time.
const (
	educationSlots  = 3
	employmentSlots = 3
)

// Mapping binds one payload attribute to one named template field.
// Exactly one of Text, Checked or Choice is set; it determines the write
// operation (text field, checkbox, radio button group). Missing payload
// values produce empty strings rather than failures.
type Mapping struct {
	PayloadField  string
	TemplateField string
	Text          func(p *models.SubmissionPayload) string
	Checked       func(p *models.SubmissionPayload) bool
	Choice        func(p *models.SubmissionPayload) string
}

func text(payloadField, templateField string, value func(p *models.SubmissionPayload) string) Mapping {
	return Mapping{PayloadField: payloadField, TemplateField: templateField, Text: value}
}

func checkbox(payloadField, templateField string, value func(p *models.SubmissionPayload) bool) Mapping {
	return Mapping{PayloadField: payloadField, TemplateField: templateField, Checked: value}
}

func choice(payloadField, templateField string, value func(p *models.SubmissionPayload) string) Mapping {
	return Mapping{PayloadField: payloadField, TemplateField: templateField, Choice: value}
}

// ApplicationMappings is the static table for the general application
// template. It is checked against the template's actual field set at startup
// so drift fails fast in development instead of silently producing blank
// fields in production.
func ApplicationMappings() []Mapping {
	mappings := []Mapping{
		text("legalFirstName", "first_name", func(p *models.SubmissionPayload) string { return p.LegalFirstName }),
		text("legalMiddleName", "middle_name", func(p *models.SubmissionPayload) string { return p.LegalMiddleName }),
		text("legalLastName", "last_name", func(p *models.SubmissionPayload) string { return p.LegalLastName }),
		text("streetAddress", "street_address", func(p *models.SubmissionPayload) string { return p.StreetAddress }),
		text("aptNumber", "apt_number", func(p *models.SubmissionPayload) string { return p.AptNumber }),
		text("city", "city", func(p *models.SubmissionPayload) string { return p.City }),
		text("state", "state", func(p *models.SubmissionPayload) string { return p.State }),
		text("zipCode", "zip_code", func(p *models.SubmissionPayload) string { return p.ZipCode }),
		text("phoneNumber", "phone_number", func(p *models.SubmissionPayload) string { return p.PhoneNumber }),
		text("email", "email", func(p *models.SubmissionPayload) string { return p.Email }),
		text("socialSecurityNumber", "ssn", func(p *models.SubmissionPayload) string { return p.SocialSecurityNumber }),
		text("positionDesired", "position_desired", func(p *models.SubmissionPayload) string { return p.PositionDesired }),
		text("availableStartDate", "available_start_date", func(p *models.SubmissionPayload) string { return p.AvailableStartDate }),
		text("desiredPay", "desired_pay", func(p *models.SubmissionPayload) string { return p.DesiredPay }),
		checkbox("fullTime", "full_time", func(p *models.SubmissionPayload) bool { return p.FullTime }),
		text("meta.submissionId", "submission_id", func(p *models.SubmissionPayload) string { return p.Meta.SubmissionID }),
	}
	mappings = append(mappings, educationMappings()...)
	mappings = append(mappings, employmentMappings()...)
	return mappings
}

func educationMappings() []Mapping {
	var mappings []Mapping
	for i := 0; i < educationSlots; i++ {
		slot := i
		n := strconv.Itoa(i + 1)
		entry := func(p *models.SubmissionPayload) *models.EducationEntry {
			if slot < len(p.Education) {
				return &p.Education[slot]
			}
			return nil
		}
		mappings = append(mappings,
			text("education["+n+"].schoolName", "edu"+n+"_school", func(p *models.SubmissionPayload) string {
				if e := entry(p); e != nil {
					return e.SchoolName
				}
				return ""
			}),
			text("education["+n+"].degree", "edu"+n+"_degree", func(p *models.SubmissionPayload) string {
				if e := entry(p); e != nil {
					return e.Degree
				}
				return ""
			}),
			text("education["+n+"].graduationYear", "edu"+n+"_year", func(p *models.SubmissionPayload) string {
				if e := entry(p); e != nil {
					return e.GraduationYear
				}
				return ""
			}),
		)
	}
	return mappings
}

func employmentMappings() []Mapping {
	var mappings []Mapping
	for i := 0; i < employmentSlots; i++ {
		slot := i
		n := strconv.Itoa(i + 1)
		entry := func(p *models.SubmissionPayload) *models.EmploymentEntry {
			if slot < len(p.Employment) {
				return &p.Employment[slot]
			}
			return nil
		}
		mappings = append(mappings,
			text("employment["+n+"].employer", "emp"+n+"_employer", func(p *models.SubmissionPayload) string {
				if e := entry(p); e != nil {
					return e.Employer
				}
				return ""
			}),
			text("employment["+n+"].position", "emp"+n+"_position", func(p *models.SubmissionPayload) string {
				if e := entry(p); e != nil {
					return e.Position
				}
				return ""
			}),
			text("employment["+n+"].startDate", "emp"+n+"_start", func(p *models.SubmissionPayload) string {
				if e := entry(p); e != nil {
					return e.StartDate
				}
				return ""
			}),
			text("employment["+n+"].endDate", "emp"+n+"_end", func(p *models.SubmissionPayload) string {
				if e := entry(p); e != nil {
					return e.EndDate
				}
				return ""
			}),
			checkbox("employment["+n+"].mayContact", "emp"+n+"_may_contact", func(p *models.SubmissionPayload) bool {
				if e := entry(p); e != nil {
					return e.MayContact
				}
				return false
			}),
		)
	}
	return mappings
}

// I9Mappings is the static table for the employment eligibility form.
func I9Mappings() []Mapping {
	return []Mapping{
		text("legalLastName", "i9_last_name", func(p *models.SubmissionPayload) string { return p.LegalLastName }),
		text("legalFirstName", "i9_first_name", func(p *models.SubmissionPayload) string { return p.LegalFirstName }),
		text("legalMiddleName", "i9_middle_initial", func(p *models.SubmissionPayload) string {
			if p.LegalMiddleName == "" {
				return ""
			}
			return p.LegalMiddleName[:1]
		}),
		text("otherLastNames", "i9_other_last_names", func(p *models.SubmissionPayload) string { return p.OtherLastNames }),
		text("streetAddress", "i9_address", func(p *models.SubmissionPayload) string { return p.StreetAddress }),
		text("aptNumber", "i9_apt_number", func(p *models.SubmissionPayload) string { return p.AptNumber }),
		text("city", "i9_city", func(p *models.SubmissionPayload) string { return p.City }),
		text("state", "i9_state", func(p *models.SubmissionPayload) string { return p.State }),
		text("zipCode", "i9_zip_code", func(p *models.SubmissionPayload) string { return p.ZipCode }),
		text("dateOfBirth", "i9_date_of_birth", func(p *models.SubmissionPayload) string { return p.DateOfBirth }),
		text("socialSecurityNumber", "i9_ssn", func(p *models.SubmissionPayload) string { return p.SocialSecurityNumber }),
		text("email", "i9_email", func(p *models.SubmissionPayload) string { return p.Email }),
		text("phoneNumber", "i9_phone", func(p *models.SubmissionPayload) string { return p.PhoneNumber }),
		choice("citizenshipStatus", "i9_citizenship_status", func(p *models.SubmissionPayload) string { return p.CitizenshipStatus }),
		text("alienRegistrationNumber", "i9_alien_number", func(p *models.SubmissionPayload) string { return p.AlienRegistrationNumber }),
		text("workAuthExpiration", "i9_work_auth_expiration", func(p *models.SubmissionPayload) string { return p.WorkAuthExpiration }),
	}
}

// MappingsFor returns the mapping table for a template.
func MappingsFor(t Template) ([]Mapping, error) {
	switch t {
	case TemplateApplication:
		return ApplicationMappings(), nil
	case TemplateI9:
		return I9Mappings(), nil
	default:
		return nil, fmt.Errorf("unknown template %q", t)
	}
}
