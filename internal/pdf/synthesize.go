package pdf

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"wareworks/internal/submission/models"
)

// synthesize builds a plain formatted PDF from the payload without any
// template. It is the fallback when template filling fails and must always
// produce a usable document, so it only reports an error when the PDF
// encoder itself fails.
func synthesize(t Template, p *models.SubmissionPayload) ([]byte, error) {
	doc := fpdf.New("P", "mm", "Letter", "")
	doc.SetTitle(synthTitle(t), false)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 10, synthTitle(t), "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 9)
	doc.SetTextColor(110, 110, 110)
	doc.CellFormat(0, 5, fmt.Sprintf("Submission %s, received %s",
		p.Meta.SubmissionID, p.Meta.ServerTimestamp.Format("2006-01-02 15:04 MST")), "", 1, "L", false, 0, "")
	doc.Ln(4)
	doc.SetTextColor(0, 0, 0)

	synthSection(doc, "Applicant")
	synthRow(doc, "Name", p.FullName())
	synthRow(doc, "Other last names", p.OtherLastNames)
	synthRow(doc, "Date of birth", p.DateOfBirth)
	synthRow(doc, "Address", synthAddress(p))
	synthRow(doc, "Phone", p.PhoneNumber)
	synthRow(doc, "Email", p.Email)
	synthRow(doc, "SSN", p.SocialSecurityNumber)

	if t == TemplateI9 {
		synthSection(doc, "Employment Eligibility")
		synthRow(doc, "Citizenship status", p.CitizenshipStatus)
		synthRow(doc, "Alien registration number", p.AlienRegistrationNumber)
		synthRow(doc, "Work authorization expires", p.WorkAuthExpiration)
	} else {
		synthSection(doc, "Position")
		synthRow(doc, "Position desired", p.PositionDesired)
		synthRow(doc, "Available start date", p.AvailableStartDate)
		synthRow(doc, "Desired pay", p.DesiredPay)
		if p.FullTime {
			synthRow(doc, "Schedule", "Full time")
		} else {
			synthRow(doc, "Schedule", "Part time")
		}

		if len(p.Education) > 0 {
			synthSection(doc, "Education")
			for _, e := range p.Education {
				synthRow(doc, e.SchoolName, synthJoin(e.Degree, e.FieldOfStudy, e.GraduationYear))
			}
		}
		if len(p.Employment) > 0 {
			synthSection(doc, "Employment History")
			for _, e := range p.Employment {
				synthRow(doc, e.Employer, synthJoin(e.Position, e.StartDate+" to "+e.EndDate))
			}
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("encode pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func synthTitle(t Template) string {
	if t == TemplateI9 {
		return "WareWorks Employment Eligibility Verification"
	}
	return "WareWorks Employment Application"
}

func synthSection(doc *fpdf.Fpdf, title string) {
	doc.Ln(3)
	doc.SetFont("Helvetica", "B", 12)
	doc.CellFormat(0, 8, title, "B", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 11)
}

// synthRow renders one labeled value, skipping empty values so optional
// payload attributes do not leave dangling labels.
func synthRow(doc *fpdf.Fpdf, label, value string) {
	if value == "" {
		return
	}
	doc.SetFont("Helvetica", "B", 10)
	doc.CellFormat(55, 7, label, "", 0, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.MultiCell(0, 7, value, "", "L", false)
}

func synthAddress(p *models.SubmissionPayload) string {
	line := p.StreetAddress
	if p.AptNumber != "" {
		line += " Apt " + p.AptNumber
	}
	return fmt.Sprintf("%s, %s, %s %s", line, p.City, p.State, p.ZipCode)
}

func synthJoin(parts ...string) string {
	out := ""
	for _, part := range parts {
		if part == "" || part == " to " {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += part
	}
	return out
}
