package rx

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/medmission/medmission/internal/domain/catalog"
	"github.com/medmission/medmission/internal/domain/mission"
	"github.com/medmission/medmission/internal/domain/registry"
)

func samplePatient() registry.Patient {
	return registry.Patient{
		ID:            "rec-1",
		PatientIDs:    []string{"MA-000001", "ES-000004"},
		FirstName:     "Juan",
		MiddleName:    "Santos",
		LastName:      "Dela Cruz",
		Age:           42,
		AgeUnit:       registry.AgeYears,
		Sex:           registry.SexMale,
		Barangay:      "San Isidro",
		City:          "Cainta",
		Province:      "Rizal",
		ContactNumber: "0917-123-4567",
		ServiceCodes:  []string{"MA", "ES"},
	}
}

func sampleVitals() registry.Vitals {
	return registry.Vitals{
		ID:                     "v-1",
		PatientID:              "ES-000004",
		BloodPressureSystolic:  135,
		BloodPressureDiastolic: 85,
		Weight:                 68,
		RecordedDate:           time.Date(2026, 5, 2, 1, 15, 0, 0, time.UTC),
		RecordedBy:             "Nurse Ana",
		Notes:                  "Advised low-salt diet",
	}
}

func sampleMission() mission.Info {
	return mission.Info{
		Name:      "Lighthouse Medical Mission",
		Location:  "Cainta Covered Court",
		Date:      time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC),
		Organizer: "Lighthouse Cainta",
	}
}

func TestBuild(t *testing.T) {
	v := sampleVitals()
	s := Build(samplePatient(), v, "ES-000004", sampleMission(), catalog.Default())

	checks := []struct {
		field, got, want string
	}{
		{"MissionName", s.MissionName, "Lighthouse Medical Mission"},
		{"MissionDate", s.MissionDate, "May 2, 2026"},
		{"FullName", s.FullName, "Juan Santos Dela Cruz"},
		{"Age", s.Age, "42 years"},
		{"Sex", s.Sex, "Male"},
		{"Address", s.Address, "San Isidro, Cainta, Rizal"},
		{"Contact", s.Contact, "0917 123 4567"},
		{"Service", s.Service, "Eye Screening"},
		{"BloodPressure", s.BloodPressure, "135/85"},
		{"Category", s.Category, "Stage 1 Hypertension"},
		{"Weight", s.Weight, "68.0 kg"},
		{"Recorded", s.Recorded, DateTime(v.RecordedDate)},
		{"RecordedBy", s.RecordedBy, "Nurse Ana"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.field, c.got, c.want)
		}
	}

	if len(s.Services) != 2 || s.Services[0] != (ServiceLine{Identifier: "MA-000001", Service: "Medical Adult"}) {
		t.Errorf("Services = %+v", s.Services)
	}
}

func TestBuild_SingleServiceAndDefaults(t *testing.T) {
	p := samplePatient()
	p.PatientIDs = []string{"ZZ-000001"}
	p.ServiceCodes = []string{"ZZ"}

	s := Build(p, sampleVitals(), "ZZ-000001", mission.Info{}, catalog.Default())
	if s.Services != nil {
		t.Errorf("expected no service list for a single identifier, got %+v", s.Services)
	}
	if s.MissionName != mission.DefaultName {
		t.Errorf("MissionName = %q", s.MissionName)
	}
	if s.MissionDate != "" {
		t.Errorf("MissionDate = %q, want empty for zero date", s.MissionDate)
	}
	if s.Service != "ZZ" {
		t.Errorf("Service = %q, want the raw code for an unknown service", s.Service)
	}
}

func TestRender(t *testing.T) {
	s := Build(samplePatient(), sampleVitals(), "ES-000004", sampleMission(), catalog.Default())

	var buf bytes.Buffer
	if err := Render(&buf, s); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()

	for _, line := range []string{
		"Lighthouse Medical Mission\nCainta Covered Court\nMay 2, 2026\nOrganized by: Lighthouse Cainta\n",
		"Patient ID:  ES-000004\n",
		"Age/Sex:     42 years / Male\n",
		"Contact:     0917 123 4567\n",
		"Blood Pressure:  135/85 mmHg (Stage 1 Hypertension)\n",
		"Notes:           Advised low-salt diet\n",
		"ALL SERVICES AVAILED\n  MA-000001    Medical Adult\n  ES-000004    Eye Screening\n",
		"Recorded by: Nurse Ana\n",
		"Healthcare Provider Signature\n",
	} {
		if !strings.Contains(out, line) {
			t.Errorf("output missing %q:\n%s", line, out)
		}
	}
}

func TestRender_OmitsBlankSections(t *testing.T) {
	p := samplePatient()
	p.PatientIDs = p.PatientIDs[:1]
	p.ServiceCodes = p.ServiceCodes[:1]
	p.ContactNumber = ""
	v := sampleVitals()
	v.Notes = ""
	v.RecordedBy = ""

	var buf bytes.Buffer
	if err := Render(&buf, Build(p, v, "MA-000001", mission.Info{Name: "Outreach"}, catalog.Default())); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()

	for _, absent := range []string{"Contact:", "Notes:", "ALL SERVICES", "Recorded by:", "Organized by:"} {
		if strings.Contains(out, absent) {
			t.Errorf("output should not contain %q:\n%s", absent, out)
		}
	}
	if !strings.HasPrefix(out, "Outreach\n---") {
		t.Errorf("unexpected header:\n%s", out)
	}
}
