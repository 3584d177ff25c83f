package pdf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"wareworks/internal/submission/models"
)

// fillForm is the JSON fill document pdfcpu consumes. The templates use text
// fields, checkboxes and radio button groups.
type fillForm struct {
	TextField        []fillTextField  `json:"textfield,omitempty"`
	CheckBox         []fillCheckBox   `json:"checkbox,omitempty"`
	RadioButtonGroup []fillRadioGroup `json:"radiobuttongroup,omitempty"`
}

type fillTextField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type fillCheckBox struct {
	Name  string `json:"name"`
	Value bool   `json:"value"`
}

type fillRadioGroup struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type fillDocument struct {
	Forms []fillForm `json:"forms"`
}

// buildFillDocument renders the mapping table against a payload into the
// JSON document pdfcpu's form filler accepts. Unset optional values are
// written as empty strings so previously filled fields cannot leak through
// template reuse.
func buildFillDocument(mappings []Mapping, p *models.SubmissionPayload) ([]byte, error) {
	var form fillForm
	for _, m := range mappings {
		switch {
		case m.Text != nil:
			form.TextField = append(form.TextField, fillTextField{Name: m.TemplateField, Value: m.Text(p)})
		case m.Checked != nil:
			form.CheckBox = append(form.CheckBox, fillCheckBox{Name: m.TemplateField, Value: m.Checked(p)})
		case m.Choice != nil:
			form.RadioButtonGroup = append(form.RadioButtonGroup, fillRadioGroup{Name: m.TemplateField, Value: m.Choice(p)})
		default:
			return nil, fmt.Errorf("mapping for %s has no writer", m.PayloadField)
		}
	}
	return json.Marshal(fillDocument{Forms: []fillForm{form}})
}

// fillTemplate fills the template at path and returns the flat PDF bytes.
func fillTemplate(path string, mappings []Mapping, p *models.SubmissionPayload) ([]byte, error) {
	doc, err := buildFillDocument(mappings, p)
	if err != nil {
		return nil, fmt.Errorf("build fill document: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}
	defer f.Close()

	var out bytes.Buffer
	if err := api.FillForm(f, bytes.NewReader(doc), &out, nil); err != nil {
		return nil, fmt.Errorf("fill form: %w", err)
	}
	return out.Bytes(), nil
}

// templateFieldNames lists the named form fields present in the template at
// path. Used to detect drift between the mapping tables and the template
// files themselves.
func templateFieldNames(path string) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}
	defer f.Close()

	fields, err := api.FormFields(f, nil)
	if err != nil {
		return nil, fmt.Errorf("list form fields: %w", err)
	}

	names := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		names[field.Name] = struct{}{}
		if field.ID != "" {
			names[field.ID] = struct{}{}
		}
	}
	return names, nil
}

// missingFields returns the template field names a mapping table expects but
// the template does not define.
func missingFields(mappings []Mapping, present map[string]struct{}) []string {
	var missing []string
	for _, m := range mappings {
		if _, ok := present[m.TemplateField]; !ok {
			missing = append(missing, m.TemplateField)
		}
	}
	return missing
}
