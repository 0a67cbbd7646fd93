// Package rx builds the printable summary handed to a patient after vitals
// are taken: mission header, patient details, the latest reading with its
// blood pressure category, and every identifier the patient holds.
package rx

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/medmission/medmission/internal/domain/catalog"
	"github.com/medmission/medmission/internal/domain/mission"
	"github.com/medmission/medmission/internal/domain/patientid"
	"github.com/medmission/medmission/internal/domain/registry"
)

// ServiceLine is one identifier and the service it was minted for.
type ServiceLine struct {
	Identifier string
	Service    string
}

type Summary struct {
	MissionName     string
	MissionLocation string
	MissionDate     string
	Organizer       string

	Identifier string
	FullName   string
	Age        string
	Sex        string
	Address    string
	Contact    string
	Service    string

	BloodPressure string
	Category      string
	Weight        string
	Notes         string

	// Services is only filled when the patient holds more than one
	// identifier.
	Services []ServiceLine

	Recorded   string
	RecordedBy string
}

// Build assembles the summary for identifier, which should be one of the
// patient's identifiers.
func Build(p registry.Patient, v registry.Vitals, identifier string, info mission.Info, cat *catalog.Catalog) Summary {
	name := info.Name
	if name == "" {
		name = mission.DefaultName
	}

	code := patientid.ServiceCodeOf(identifier)
	if c, ok := p.ServiceFor(identifier); ok {
		code = c
	}

	s := Summary{
		MissionName:     name,
		MissionLocation: info.Location,
		Organizer:       info.Organizer,

		Identifier: identifier,
		FullName:   FullName(p.FirstName, p.MiddleName, p.LastName),
		Age:        Age(p.Age, string(p.AgeUnit)),
		Sex:        string(p.Sex),
		Address:    Address(p.Street, p.Barangay, p.City, p.Province),
		Contact:    PhoneNumber(p.ContactNumber),
		Service:    cat.DisplayName(code),

		BloodPressure: BloodPressure(v.BloodPressureSystolic, v.BloodPressureDiastolic),
		Category:      string(v.Category()),
		Weight:        Weight(v.Weight),
		Notes:         v.Notes,

		RecordedBy: v.RecordedBy,
	}
	if !info.Date.IsZero() {
		s.MissionDate = Date(info.Date)
	}
	if !v.RecordedDate.IsZero() {
		s.Recorded = DateTime(v.RecordedDate)
	}

	if len(p.PatientIDs) > 1 {
		for i, pid := range p.PatientIDs {
			var svc string
			if i < len(p.ServiceCodes) {
				svc = p.ServiceCodes[i]
			}
			s.Services = append(s.Services, ServiceLine{Identifier: pid, Service: cat.DisplayName(svc)})
		}
	}
	return s
}

const layout = `{{ .MissionName }}
{{- with .MissionLocation }}
{{ . }}{{ end }}
{{- with .MissionDate }}
{{ . }}{{ end }}
{{- with .Organizer }}
Organized by: {{ . }}{{ end }}
{{ rule }}
PATIENT INFORMATION
Patient ID:  {{ .Identifier }}
Name:        {{ .FullName }}
Age/Sex:     {{ .Age }} / {{ .Sex }}
Address:     {{ .Address }}
{{- with .Contact }}
Contact:     {{ . }}{{ end }}
Service:     {{ .Service }}
{{ rule }}
VITAL SIGNS
Blood Pressure:  {{ .BloodPressure }} mmHg ({{ .Category }})
Weight:          {{ .Weight }}
{{- with .Notes }}
Notes:           {{ . }}{{ end }}
{{ rule }}
{{- if .Services }}
ALL SERVICES AVAILED
{{- range .Services }}
  {{ printf "%-12s" .Identifier }} {{ .Service }}
{{- end }}
{{ rule }}
{{- end }}
Recorded:    {{ .Recorded }}
{{- with .RecordedBy }}
Recorded by: {{ . }}{{ end }}


________________________________
Healthcare Provider Signature
`

const ruleWidth = 48

var summaryTemplate = template.Must(template.New("rx").Funcs(template.FuncMap{
	"rule": func() string { return strings.Repeat("-", ruleWidth) },
}).Parse(layout))

// Render writes the plain-text layout of s to w.
func Render(w io.Writer, s Summary) error {
	if err := summaryTemplate.Execute(w, s); err != nil {
		return fmt.Errorf("render summary: %w", err)
	}
	return nil
}
