package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/medmission/medmission/internal/domain/vitals"
	"github.com/medmission/medmission/internal/platform/kv"
	"github.com/medmission/medmission/internal/platform/kv/kvtest"
)

func reading(identifier string, sys, dia, weight float64) VitalsInput {
	return VitalsInput{
		PatientID:              identifier,
		BloodPressureSystolic:  sys,
		BloodPressureDiastolic: dia,
		Weight:                 weight,
	}
}

func TestAddVitals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v, err := f.store.AddVitals(ctx, reading("MA-000001", 120, 80, 65.5))
	if err != nil {
		t.Fatalf("AddVitals: %v", err)
	}
	if v.ID != "rec-1" || v.PatientID != "MA-000001" {
		t.Errorf("unexpected record %+v", v)
	}
	if v.RecordedDate.IsZero() || v.RecordedDate.Location() != time.UTC {
		t.Errorf("RecordedDate = %v, want UTC timestamp", v.RecordedDate)
	}
	if v.Category() != vitals.Stage1Hypertension {
		t.Errorf("Category() = %q", v.Category())
	}

	// Identifiers need not belong to a registered patient.
	if _, ok := f.store.PatientByIdentifier("MA-000001"); ok {
		t.Fatal("fixture should have no patients")
	}
	if got := f.store.VitalsFor("MA-000001"); len(got) != 1 {
		t.Errorf("VitalsFor = %d records, want 1", len(got))
	}
}

func TestLatestVitals_GreatestDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _ = f.store.AddVitals(ctx, reading("DE-000001", 110, 70, 50))
	_, _ = f.store.AddVitals(ctx, reading("MA-000001", 150, 95, 80))
	_, _ = f.store.AddVitals(ctx, reading("DE-000001", 130, 85, 51))

	latest, ok := f.store.LatestVitals("DE-000001")
	if !ok {
		t.Fatal("expected a reading")
	}
	if latest.BloodPressureSystolic != 130 {
		t.Errorf("latest systolic = %v, want 130", latest.BloodPressureSystolic)
	}

	history := f.store.VitalsFor("DE-000001")
	if len(history) != 2 || history[0].BloodPressureSystolic != 130 || history[1].BloodPressureSystolic != 110 {
		t.Errorf("VitalsFor = %+v", history)
	}

	if _, ok := f.store.LatestVitals("OBC-000001"); ok {
		t.Error("expected absent for identifier without readings")
	}
}

func TestLatestVitals_TieLaterAppendedWins(t *testing.T) {
	f := newFixture(t)
	f.clock.step = 0
	ctx := context.Background()

	_, _ = f.store.AddVitals(ctx, reading("MP-000001", 100, 60, 12))
	_, _ = f.store.AddVitals(ctx, reading("MP-000001", 105, 65, 12.4))

	latest, _ := f.store.LatestVitals("MP-000001")
	if latest.BloodPressureSystolic != 105 {
		t.Errorf("latest systolic = %v, want 105", latest.BloodPressureSystolic)
	}
}

func TestUpdateVitals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v, _ := f.store.AddVitals(ctx, reading("MA-000001", 120, 80, 65))

	weight := 66.2
	notes := "rechecked"
	updated, err := f.store.UpdateVitals(ctx, v.ID, VitalsPatch{Weight: &weight, Notes: &notes})
	if err != nil {
		t.Fatalf("UpdateVitals: %v", err)
	}
	if updated.Weight != 66.2 || updated.Notes != "rechecked" {
		t.Errorf("patch not applied: %+v", updated)
	}
	if updated.BloodPressureSystolic != 120 || !updated.RecordedDate.Equal(v.RecordedDate) {
		t.Errorf("unpatched fields changed: %+v", updated)
	}
	if got, _ := f.store.VitalsByID(v.ID); got.Weight != 66.2 {
		t.Errorf("VitalsByID weight = %v", got.Weight)
	}

	_, err = f.store.UpdateVitals(ctx, "missing", VitalsPatch{Weight: &weight})
	if !errors.Is(err, ErrVitalsNotFound) {
		t.Errorf("expected ErrVitalsNotFound, got %v", err)
	}
}

func TestAllVitalsAndClear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _ = f.store.AddVitals(ctx, reading("MA-000001", 120, 80, 65))
	_, _ = f.store.AddVitals(ctx, reading("MA-000002", 118, 76, 70))

	all := f.store.AllVitals()
	if len(all) != 2 || all[0].PatientID != "MA-000001" {
		t.Errorf("AllVitals = %+v", all)
	}

	if err := f.store.ClearVitals(ctx); err != nil {
		t.Fatalf("ClearVitals: %v", err)
	}
	if len(f.store.AllVitals()) != 0 {
		t.Error("expected no vitals after clear")
	}
	if _, err := f.records.Get(ctx, kv.KeyVitals); !errors.Is(err, kv.ErrNotFound) {
		t.Errorf("expected vitals key removed, got %v", err)
	}
}

func TestAddVitals_PersistFailure(t *testing.T) {
	records := kvtest.NewFlaky()
	f := newFixtureWithStore(t, records)
	ctx := context.Background()

	records.FailWrites(true)
	v, err := f.store.AddVitals(ctx, reading("ES-000001", 120, 80, 60))
	if !errors.Is(err, ErrNotPersisted) {
		t.Fatalf("expected ErrNotPersisted, got %v", err)
	}
	if _, ok := f.store.VitalsByID(v.ID); !ok {
		t.Error("in-memory state should keep the reading")
	}
}
