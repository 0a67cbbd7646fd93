package registry

import (
	"context"
	"fmt"
	"sort"
)

// AddVitals appends a reading stamped with the current time. The input is
// stored as given; run vitals.Validate first.
func (s *Store) AddVitals(ctx context.Context, in VitalsInput) (Vitals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := Vitals{
		ID:                     s.newID(),
		PatientID:              in.PatientID,
		BloodPressureSystolic:  in.BloodPressureSystolic,
		BloodPressureDiastolic: in.BloodPressureDiastolic,
		Weight:                 in.Weight,
		RecordedDate:           s.now().UTC(),
		RecordedBy:             in.RecordedBy,
		Notes:                  in.Notes,
	}
	s.vitals = append(s.vitals, v)
	s.metrics.VitalsRecorded()
	s.logger.Info().
		Str("vitals_id", v.ID).
		Str("identifier", v.PatientID).
		Msg("vitals recorded")

	return v, s.flushVitals(ctx)
}

// VitalsFor returns every reading for identifier, newest first. Readings
// with the same RecordedDate are ordered latest-appended first.
func (s *Store) VitalsFor(identifier string) []Vitals {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Vitals
	for i := len(s.vitals) - 1; i >= 0; i-- {
		if s.vitals[i].PatientID == identifier {
			out = append(out, s.vitals[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RecordedDate.After(out[j].RecordedDate)
	})
	return out
}

// LatestVitals returns the reading with the greatest RecordedDate for
// identifier; on a tie the one appended last wins.
func (s *Store) LatestVitals(identifier string) (Vitals, bool) {
	records := s.VitalsFor(identifier)
	if len(records) == 0 {
		return Vitals{}, false
	}
	return records[0], true
}

// UpdateVitals merges patch into the reading with id.
func (s *Store) UpdateVitals(ctx context.Context, id string, patch VitalsPatch) (Vitals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.vitals {
		if s.vitals[i].ID != id {
			continue
		}
		s.vitals[i] = patch.apply(s.vitals[i])
		s.logger.Info().Str("vitals_id", id).Msg("vitals updated")
		return s.vitals[i], s.flushVitals(ctx)
	}
	return Vitals{}, fmt.Errorf("%w: %s", ErrVitalsNotFound, id)
}

// VitalsByID returns the reading with id.
func (s *Store) VitalsByID(id string) (Vitals, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range s.vitals {
		if v.ID == id {
			return v, true
		}
	}
	return Vitals{}, false
}

// AllVitals returns every reading in the order it was recorded.
func (s *Store) AllVitals() []Vitals {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Vitals(nil), s.vitals...)
}
