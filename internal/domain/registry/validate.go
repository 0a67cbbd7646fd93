package registry

import (
	"fmt"
	"strings"

	"github.com/medmission/medmission/internal/domain/catalog"
)

// ValidateInput checks a registration form before it reaches the store and
// returns every problem found.
func ValidateInput(in PatientInput, cat *catalog.Catalog) []string {
	var errs []string

	if strings.TrimSpace(in.FirstName) == "" {
		errs = append(errs, "First name is required")
	}
	if strings.TrimSpace(in.LastName) == "" {
		errs = append(errs, "Last name is required")
	}
	if in.Age <= 0 {
		errs = append(errs, "Valid age is required")
	}
	if in.AgeUnit != AgeYears && in.AgeUnit != AgeMonths {
		errs = append(errs, fmt.Sprintf("Age unit must be %q or %q", AgeYears, AgeMonths))
	}
	if in.Sex != SexMale && in.Sex != SexFemale {
		errs = append(errs, fmt.Sprintf("Sex must be %q or %q", SexMale, SexFemale))
	}
	if strings.TrimSpace(in.Barangay) == "" {
		errs = append(errs, "Barangay is required")
	}
	if strings.TrimSpace(in.City) == "" {
		errs = append(errs, "City is required")
	}
	if len(in.ServiceCodes) == 0 {
		errs = append(errs, "Please select at least one service")
	}
	for _, code := range in.ServiceCodes {
		if !cat.Has(code) {
			errs = append(errs, fmt.Sprintf("Unknown service code %q", code))
		}
	}

	return errs
}
