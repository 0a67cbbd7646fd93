package registry

import (
	"context"
	"fmt"
	"strings"
)

func (in PatientInput) toPatient() Patient {
	return Patient{
		FirstName:     in.FirstName,
		MiddleName:    in.MiddleName,
		LastName:      in.LastName,
		Age:           in.Age,
		AgeUnit:       in.AgeUnit,
		Sex:           in.Sex,
		Street:        in.Street,
		Barangay:      in.Barangay,
		City:          in.City,
		Province:      in.Province,
		ContactNumber: in.ContactNumber,
		ServiceCodes:  append([]string(nil), in.ServiceCodes...),
		RegisteredBy:  in.RegisteredBy,
	}
}

// CreatePatient mints one identifier per selected service and appends the
// new patient. If minting fails nothing is stored, though identifiers minted
// before the failure stay consumed.
func (s *Store) CreatePatient(ctx context.Context, in PatientInput) (Patient, error) {
	if len(in.ServiceCodes) == 0 {
		return Patient{}, ErrNoServices
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.minter.MintBatch(ctx, in.ServiceCodes)
	if err != nil {
		return Patient{}, fmt.Errorf("mint identifiers: %w", err)
	}

	p := in.toPatient()
	p.ID = s.newID()
	p.PatientIDs = ids
	p.RegistrationDate = s.now().UTC()

	s.patients = append(s.patients, p)
	s.metrics.PatientRegistered()
	s.logger.Info().
		Str("patient_id", p.ID).
		Strs("identifiers", p.PatientIDs).
		Msg("patient registered")

	return p.clone(), s.flushPatients(ctx)
}

// UpdatePatient replaces every mutable field of the patient with id. The
// identifiers are kept when the service list is unchanged (same codes, same
// order); otherwise the store's IdentifierPolicy decides. RegistrationDate
// is never changed.
func (s *Store) UpdatePatient(ctx context.Context, id string, in PatientInput) (Patient, error) {
	if len(in.ServiceCodes) == 0 {
		return Patient{}, ErrNoServices
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOfPatient(id)
	if idx < 0 {
		return Patient{}, fmt.Errorf("%w: %s", ErrPatientNotFound, id)
	}
	existing := s.patients[idx]

	ids := existing.PatientIDs
	if !sameCodes(existing.ServiceCodes, in.ServiceCodes) {
		var err error
		ids, err = s.reassign(ctx, existing, in.ServiceCodes)
		if err != nil {
			return Patient{}, fmt.Errorf("mint identifiers: %w", err)
		}
		s.logger.Info().
			Str("patient_id", id).
			Strs("old_identifiers", existing.PatientIDs).
			Strs("identifiers", ids).
			Str("policy", s.policy.String()).
			Msg("patient services changed")
	}

	p := in.toPatient()
	p.ID = existing.ID
	p.PatientIDs = append([]string(nil), ids...)
	p.RegistrationDate = existing.RegistrationDate
	s.patients[idx] = p

	return p.clone(), s.flushPatients(ctx)
}

func sameCodes(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// reassign produces identifiers for codes under the configured policy.
func (s *Store) reassign(ctx context.Context, existing Patient, codes []string) ([]string, error) {
	if s.policy != PolicyReuse {
		return s.minter.MintBatch(ctx, codes)
	}

	// Old identifiers per code, in the order they were minted.
	pool := make(map[string][]string)
	for i, code := range existing.ServiceCodes {
		if i < len(existing.PatientIDs) {
			pool[code] = append(pool[code], existing.PatientIDs[i])
		}
	}

	ids := make([]string, len(codes))
	var missing []string
	var missingAt []int
	for i, code := range codes {
		if old := pool[code]; len(old) > 0 {
			ids[i] = old[0]
			pool[code] = old[1:]
			continue
		}
		missing = append(missing, code)
		missingAt = append(missingAt, i)
	}

	if len(missing) > 0 {
		minted, err := s.minter.MintBatch(ctx, missing)
		if err != nil {
			return nil, err
		}
		for j, at := range missingAt {
			ids[at] = minted[j]
		}
	}
	return ids, nil
}

// DeletePatient removes the patient with id. Unknown ids are a no-op.
// Vitals recorded against the patient's identifiers are kept.
func (s *Store) DeletePatient(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOfPatient(id)
	if idx < 0 {
		return nil
	}
	s.patients = append(s.patients[:idx:idx], s.patients[idx+1:]...)
	s.logger.Info().Str("patient_id", id).Msg("patient deleted")
	return s.flushPatients(ctx)
}

func (s *Store) indexOfPatient(id string) int {
	for i := range s.patients {
		if s.patients[i].ID == id {
			return i
		}
	}
	return -1
}

// PatientByID looks a patient up by internal id.
func (s *Store) PatientByID(id string) (Patient, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx := s.indexOfPatient(id); idx >= 0 {
		return s.patients[idx].clone(), true
	}
	return Patient{}, false
}

// PatientByIdentifier returns the first patient holding identifier.
func (s *Store) PatientByIdentifier(identifier string) (Patient, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.patients {
		if p.HasIdentifier(identifier) {
			return p.clone(), true
		}
	}
	return Patient{}, false
}

// Patients returns every patient in registration order.
func (s *Store) Patients() []Patient {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Patient, len(s.patients))
	for i, p := range s.patients {
		out[i] = p.clone()
	}
	return out
}

// SearchPatients returns, in registration order, every patient whose full
// name or any identifier contains query, ignoring case. An empty query
// matches everyone.
func (s *Store) SearchPatients(query string) []Patient {
	q := strings.ToLower(query)

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Patient
	for _, p := range s.patients {
		if matchesPatient(p, q) {
			out = append(out, p.clone())
		}
	}
	return out
}

func matchesPatient(p Patient, lowerQuery string) bool {
	if strings.Contains(strings.ToLower(p.FullName()), lowerQuery) {
		return true
	}
	for _, pid := range p.PatientIDs {
		if strings.Contains(strings.ToLower(pid), lowerQuery) {
			return true
		}
	}
	return false
}

// FilterByService returns the patients who selected code.
func (s *Store) FilterByService(code string) []Patient {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Patient
	for _, p := range s.patients {
		for _, c := range p.ServiceCodes {
			if c == code {
				out = append(out, p.clone())
				break
			}
		}
	}
	return out
}

// IdentifierRows flattens patients into one row per identifier and keeps the
// rows whose identifier, full name or service name contains query, ignoring
// case.
func (s *Store) IdentifierRows(query string) []IdentifierRow {
	q := strings.ToLower(strings.TrimSpace(query))

	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []IdentifierRow
	for _, p := range s.patients {
		name := p.FullName()
		for i, pid := range p.PatientIDs {
			var code string
			if i < len(p.ServiceCodes) {
				code = p.ServiceCodes[i]
			}
			row := IdentifierRow{
				Identifier:  pid,
				FullName:    name,
				ServiceCode: code,
				ServiceName: s.catalog.DisplayName(code),
				RecordID:    p.ID,
			}
			if q == "" ||
				strings.Contains(strings.ToLower(row.Identifier), q) ||
				strings.Contains(strings.ToLower(row.FullName), q) ||
				strings.Contains(strings.ToLower(row.ServiceName), q) {
				rows = append(rows, row)
			}
		}
	}
	return rows
}
