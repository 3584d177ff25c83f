package notify

import (
	"fmt"
	"html"
	"strings"

	"github.com/mssola/useragent"

	"wareworks/internal/platform/privacy"
	"wareworks/internal/submission/models"
)

// Compose builds the hiring-team notification for one submission. SSNs are
// masked in both bodies; the full value only ever appears inside the
// attached PDF.
func Compose(p *models.SubmissionPayload, docs []*models.GeneratedDocument) *Message {
	msg := &Message{
		Subject:   fmt.Sprintf("New employment application: %s", p.FullName()),
		PlainBody: composePlain(p),
		HTMLBody:  composeHTML(p),
	}
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		msg.Attachments = append(msg.Attachments, Attachment{
			Filename: doc.Filename,
			MIMEType: doc.MIMEType,
			Bytes:    doc.Bytes,
		})
	}
	return msg
}

func composePlain(p *models.SubmissionPayload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A new employment application was received.\n\n")
	fmt.Fprintf(&b, "Submission ID: %s\n", p.Meta.SubmissionID)
	fmt.Fprintf(&b, "Received:      %s\n\n", p.Meta.ServerTimestamp.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "Applicant:     %s\n", p.FullName())
	fmt.Fprintf(&b, "Phone:         %s\n", p.PhoneNumber)
	if p.Email != "" {
		fmt.Fprintf(&b, "Email:         %s\n", p.Email)
	}
	fmt.Fprintf(&b, "SSN:           %s\n", privacy.MaskSSN(p.SocialSecurityNumber))
	fmt.Fprintf(&b, "Address:       %s, %s, %s %s\n", p.StreetAddress, p.City, p.State, p.ZipCode)
	if p.PositionDesired != "" {
		fmt.Fprintf(&b, "Position:      %s\n", p.PositionDesired)
	}
	if p.AvailableStartDate != "" {
		fmt.Fprintf(&b, "Start date:    %s\n", p.AvailableStartDate)
	}
	if summary := clientSummary(p); summary != "" {
		fmt.Fprintf(&b, "\nSubmitted via %s\n", summary)
	}
	b.WriteString("\nThe completed application forms are attached.\n")
	return b.String()
}

func composeHTML(p *models.SubmissionPayload) string {
	var b strings.Builder
	b.WriteString("<h2>New Employment Application</h2>")
	b.WriteString("<table cellpadding=\"4\">")
	htmlRow(&b, "Submission ID", p.Meta.SubmissionID)
	htmlRow(&b, "Received", p.Meta.ServerTimestamp.Format("2006-01-02 15:04:05 MST"))
	htmlRow(&b, "Applicant", p.FullName())
	htmlRow(&b, "Phone", p.PhoneNumber)
	htmlRow(&b, "Email", p.Email)
	htmlRow(&b, "SSN", privacy.MaskSSN(p.SocialSecurityNumber))
	htmlRow(&b, "Address", fmt.Sprintf("%s, %s, %s %s", p.StreetAddress, p.City, p.State, p.ZipCode))
	htmlRow(&b, "Position", p.PositionDesired)
	htmlRow(&b, "Start date", p.AvailableStartDate)
	htmlRow(&b, "Submitted via", clientSummary(p))
	b.WriteString("</table>")
	b.WriteString("<p>The completed application forms are attached.</p>")
	return b.String()
}

func htmlRow(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "<tr><td><b>%s</b></td><td>%s</td></tr>", html.EscapeString(label), html.EscapeString(value))
}

// clientSummary turns the raw User-Agent header into a short human line for
// the hiring team, e.g. "Chrome 120 on Linux".
func clientSummary(p *models.SubmissionPayload) string {
	if p.Meta.UserAgent == "" {
		return ""
	}
	ua := useragent.New(p.Meta.UserAgent)
	browser, version := ua.Browser()
	if browser == "" {
		return ""
	}
	if i := strings.Index(version, "."); i > 0 {
		version = version[:i]
	}
	summary := browser
	if version != "" {
		summary += " " + version
	}
	if os := ua.OS(); os != "" {
		summary += " on " + os
	}
	if ua.Mobile() {
		summary += " (mobile)"
	}
	return summary
}
