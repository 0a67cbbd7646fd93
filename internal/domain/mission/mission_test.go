package mission

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/medmission/medmission/internal/platform/kv"
	"github.com/medmission/medmission/internal/platform/kv/kvtest"
)

var fixedNow = time.Date(2026, 5, 2, 9, 30, 0, 0, time.UTC)

func newTestService(store kv.Store) *Service {
	return NewService(store, zerolog.Nop(), WithClock(func() time.Time { return fixedNow }))
}

func strPtr(s string) *string { return &s }

func TestGet_Default(t *testing.T) {
	s := newTestService(kv.NewMemory())

	info, err := s.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if info.Name != DefaultName {
		t.Errorf("Name = %q, want %q", info.Name, DefaultName)
	}
	if !info.Date.Equal(fixedNow) {
		t.Errorf("Date = %v, want %v", info.Date, fixedNow)
	}
	if info.Location != "" || info.Organizer != "" || info.ContactInfo != "" {
		t.Errorf("expected empty optional fields, got %+v", info)
	}
}

func TestUpdate_MergesAndPersists(t *testing.T) {
	store := kv.NewMemory()
	s := newTestService(store)
	ctx := context.Background()

	if _, err := s.Update(ctx, InfoPatch{Location: strPtr("Cainta Covered Court")}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	info, err := s.Update(ctx, InfoPatch{Organizer: strPtr("Rotary Club")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if info.Name != DefaultName || info.Location != "Cainta Covered Court" || info.Organizer != "Rotary Club" {
		t.Errorf("merged info = %+v", info)
	}

	raw, err := store.Get(ctx, kv.KeyMissionInfo)
	if err != nil {
		t.Fatalf("Get mission_info: %v", err)
	}
	if !strings.Contains(string(raw), `"organizer":"Rotary Club"`) {
		t.Errorf("stored mission = %s", raw)
	}

	reloaded, _ := newTestService(store).Get(ctx)
	if reloaded.Location != "Cainta Covered Court" {
		t.Errorf("reloaded Location = %q", reloaded.Location)
	}
}

func TestUpdate_Date(t *testing.T) {
	s := newTestService(kv.NewMemory())
	manila := time.FixedZone("PHT", 8*60*60)
	day := time.Date(2026, 6, 1, 8, 0, 0, 0, manila)

	info, _ := s.Update(context.Background(), InfoPatch{Date: &day})
	if !info.Date.Equal(day) || info.Date.Location() != time.UTC {
		t.Errorf("Date = %v, want %v in UTC", info.Date, day)
	}
}

func TestUpdate_WriteFailure(t *testing.T) {
	store := kvtest.NewFlaky()
	store.FailWrites(true)
	s := newTestService(store)

	info, err := s.Update(context.Background(), InfoPatch{Name: strPtr("Bayanihan")})
	if !errors.Is(err, kvtest.ErrWriteFailed) {
		t.Fatalf("expected write failure, got %v", err)
	}
	if info.Name != "Bayanihan" {
		t.Errorf("expected merged info alongside the error, got %+v", info)
	}
}

func TestReset(t *testing.T) {
	store := kv.NewMemory()
	s := newTestService(store)
	ctx := context.Background()
	_, _ = s.Update(ctx, InfoPatch{Name: strPtr("Bayanihan")})

	info, err := s.Reset(ctx)
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if info.Name != DefaultName {
		t.Errorf("Reset name = %q", info.Name)
	}
	if _, err := store.Get(ctx, kv.KeyMissionInfo); !errors.Is(err, kv.ErrNotFound) {
		t.Errorf("expected mission_info removed, got %v", err)
	}
}

func TestInfoPatch_IsEmpty(t *testing.T) {
	if !(InfoPatch{}).IsEmpty() {
		t.Error("zero patch should be empty")
	}
	if (InfoPatch{Organizer: strPtr("x")}).IsEmpty() {
		t.Error("patch with organizer should not be empty")
	}
}
