package registry

import (
	"strings"
	"time"

	"github.com/medmission/medmission/internal/domain/vitals"
)

type AgeUnit string

const (
	AgeYears  AgeUnit = "years"
	AgeMonths AgeUnit = "months"
)

type Sex string

const (
	SexMale   Sex = "Male"
	SexFemale Sex = "Female"
)

// Patient is one registered person. PatientIDs[i] was minted for
// ServiceCodes[i]; the two slices always have the same length.
type Patient struct {
	ID               string    `json:"id"`
	PatientIDs       []string  `json:"patientIds"`
	FirstName        string    `json:"firstName"`
	MiddleName       string    `json:"middleName"`
	LastName         string    `json:"lastName"`
	Age              int       `json:"age"`
	AgeUnit          AgeUnit   `json:"ageUnit"`
	Sex              Sex       `json:"sex"`
	Street           string    `json:"street"`
	Barangay         string    `json:"barangay"`
	City             string    `json:"city"`
	Province         string    `json:"province"`
	ContactNumber    string    `json:"contactNumber"`
	ServiceCodes     []string  `json:"serviceCodes"`
	RegistrationDate time.Time `json:"registrationDate"`
	RegisteredBy     string    `json:"registeredBy,omitempty"`
}

// PatientInput carries every caller-supplied field of a Patient.
type PatientInput struct {
	FirstName     string
	MiddleName    string
	LastName      string
	Age           int
	AgeUnit       AgeUnit
	Sex           Sex
	Street        string
	Barangay      string
	City          string
	Province      string
	ContactNumber string
	ServiceCodes  []string
	RegisteredBy  string
}

// Input returns the mutable fields of p, e.g. as the base for an edit.
func (p Patient) Input() PatientInput {
	return PatientInput{
		FirstName:     p.FirstName,
		MiddleName:    p.MiddleName,
		LastName:      p.LastName,
		Age:           p.Age,
		AgeUnit:       p.AgeUnit,
		Sex:           p.Sex,
		Street:        p.Street,
		Barangay:      p.Barangay,
		City:          p.City,
		Province:      p.Province,
		ContactNumber: p.ContactNumber,
		ServiceCodes:  append([]string(nil), p.ServiceCodes...),
		RegisteredBy:  p.RegisteredBy,
	}
}

// FullName joins the non-empty name parts with single spaces.
func (p Patient) FullName() string {
	return joinNonEmpty(" ", p.FirstName, p.MiddleName, p.LastName)
}

// ServiceFor returns the service code the identifier was minted for.
func (p Patient) ServiceFor(identifier string) (string, bool) {
	for i, pid := range p.PatientIDs {
		if pid == identifier && i < len(p.ServiceCodes) {
			return p.ServiceCodes[i], true
		}
	}
	return "", false
}

// HasIdentifier reports whether identifier belongs to p.
func (p Patient) HasIdentifier(identifier string) bool {
	for _, pid := range p.PatientIDs {
		if pid == identifier {
			return true
		}
	}
	return false
}

func (p Patient) clone() Patient {
	p.PatientIDs = append([]string(nil), p.PatientIDs...)
	p.ServiceCodes = append([]string(nil), p.ServiceCodes...)
	return p
}

// Vitals is one append-only vital-signs reading. PatientID is a minted
// identifier, not the patient's internal id, and is not checked against the
// patient collection.
type Vitals struct {
	ID                     string    `json:"id"`
	PatientID              string    `json:"patientId"`
	BloodPressureSystolic  float64   `json:"bloodPressureSystolic"`
	BloodPressureDiastolic float64   `json:"bloodPressureDiastolic"`
	Weight                 float64   `json:"weight"`
	RecordedDate           time.Time `json:"recordedDate"`
	RecordedBy             string    `json:"recordedBy,omitempty"`
	Notes                  string    `json:"notes,omitempty"`
}

type VitalsInput struct {
	PatientID              string
	BloodPressureSystolic  float64
	BloodPressureDiastolic float64
	Weight                 float64
	RecordedBy             string
	Notes                  string
}

// Signs returns the values the vitals validators check.
func (in VitalsInput) Signs() vitals.Signs {
	return vitals.Signs{
		Systolic:  in.BloodPressureSystolic,
		Diastolic: in.BloodPressureDiastolic,
		Weight:    in.Weight,
	}
}

func (v Vitals) Signs() vitals.Signs {
	return vitals.Signs{
		Systolic:  v.BloodPressureSystolic,
		Diastolic: v.BloodPressureDiastolic,
		Weight:    v.Weight,
	}
}

// Category classifies the blood pressure reading.
func (v Vitals) Category() vitals.Category {
	return vitals.Categorize(v.BloodPressureSystolic, v.BloodPressureDiastolic)
}

// VitalsPatch lists the fields UpdateVitals may change; nil leaves a field
// as it is. ID and RecordedDate are never patched.
type VitalsPatch struct {
	PatientID              *string
	BloodPressureSystolic  *float64
	BloodPressureDiastolic *float64
	Weight                 *float64
	RecordedBy             *string
	Notes                  *string
}

func (p VitalsPatch) apply(v Vitals) Vitals {
	if p.PatientID != nil {
		v.PatientID = *p.PatientID
	}
	if p.BloodPressureSystolic != nil {
		v.BloodPressureSystolic = *p.BloodPressureSystolic
	}
	if p.BloodPressureDiastolic != nil {
		v.BloodPressureDiastolic = *p.BloodPressureDiastolic
	}
	if p.Weight != nil {
		v.Weight = *p.Weight
	}
	if p.RecordedBy != nil {
		v.RecordedBy = *p.RecordedBy
	}
	if p.Notes != nil {
		v.Notes = *p.Notes
	}
	return v
}

// IdentifierRow is one (identifier, patient) pair, as shown when looking a
// patient up to record vitals.
type IdentifierRow struct {
	Identifier  string `json:"identifier"`
	FullName    string `json:"full_name"`
	ServiceCode string `json:"service_code"`
	ServiceName string `json:"service_name"`
	RecordID    string `json:"record_id"`
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
