package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/medmission/medmission/internal/config"
	"github.com/medmission/medmission/internal/domain/registry"
	"github.com/medmission/medmission/internal/platform/hipaa"
	"github.com/medmission/medmission/internal/platform/kv"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func testConfig(driver, path string) *config.Config {
	return &config.Config{
		Env:         "production",
		LogLevel:    "info",
		StoreDriver: driver,
		StorePath:   path,
		IDPolicy:    config.PolicyRemint,
	}
}

func register(t *testing.T, a *App, codes ...string) registry.Patient {
	t.Helper()
	p, err := a.Records.CreatePatient(context.Background(), registry.PatientInput{
		FirstName:    "Lito",
		LastName:     "Bautista",
		Age:          55,
		AgeUnit:      registry.AgeYears,
		Sex:          registry.SexMale,
		Barangay:     "San Juan",
		City:         "Cainta",
		ServiceCodes: codes,
	})
	if err != nil {
		t.Fatalf("CreatePatient: %v", err)
	}
	return p
}

func TestNew_Memory(t *testing.T) {
	a, err := New(context.Background(), testConfig(config.DriverMemory, ""), zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	p := register(t, a, "MA", "OBP")
	if p.PatientIDs[0] != "MA-000001" || p.PatientIDs[1] != "OBP-000001" {
		t.Errorf("PatientIDs = %v", p.PatientIDs)
	}

	info, err := a.Mission.Get(context.Background())
	if err != nil || info.Name != "Medical Mission" {
		t.Errorf("Mission.Get = %+v, %v", info, err)
	}
}

func TestNew_SQLiteSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mission.db")
	ctx := context.Background()

	a, err := New(ctx, testConfig(config.DriverSQLite, path), zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	register(t, a, "DE")
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	b, err := New(ctx, testConfig(config.DriverSQLite, path), zerolog.Nop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close()

	if _, ok := b.Records.PatientByIdentifier("DE-000001"); !ok {
		t.Error("patient lost across restart")
	}
	p := register(t, b, "DE")
	if p.PatientIDs[0] != "DE-000002" {
		t.Errorf("counter not resumed, got %v", p.PatientIDs)
	}
}

func TestNew_EncryptedFileStore(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(config.DriverFile, dir)
	cfg.StoreEncryptionKey = testKey

	a, err := New(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()
	register(t, a, "MA")

	raw, err := os.ReadFile(filepath.Join(dir, kv.KeyPatients+".json"))
	if err != nil {
		t.Fatalf("read patients file: %v", err)
	}
	if strings.Contains(string(raw), "Bautista") {
		t.Error("patient name stored in plaintext")
	}
	if !hipaa.IsSealed(raw) {
		t.Error("expected sealed value on disk")
	}
}

func TestCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mission.db")
	a, err := New(context.Background(), testConfig(config.DriverSQLite, path), zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()
	register(t, a, "MA", "MA")

	h, err := a.Check(context.Background())
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !h.Healthy || h.Location != path || h.Patients != 1 || h.Counters["MA"] != 2 {
		t.Errorf("unexpected health %+v", h)
	}
}

func TestCheck_UnreadableValue(t *testing.T) {
	a, err := New(context.Background(), testConfig(config.DriverMemory, ""), zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	_ = a.Store.Put(context.Background(), kv.KeyMissionInfo, []byte("{broken"))
	h, err := a.Check(context.Background())
	if err == nil || h.Healthy || h.Error == "" {
		t.Errorf("expected unhealthy result, got %+v, %v", h, err)
	}
}

func TestNew_ReusePolicy(t *testing.T) {
	cfg := testConfig(config.DriverMemory, "")
	cfg.IDPolicy = config.PolicyReuse
	a, err := New(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	p := register(t, a, "MA")
	in := p.Input()
	in.ServiceCodes = []string{"MA", "PT"}
	updated, err := a.Records.UpdatePatient(context.Background(), p.ID, in)
	if err != nil {
		t.Fatalf("UpdatePatient: %v", err)
	}
	if updated.PatientIDs[0] != "MA-000001" || updated.PatientIDs[1] != "PT-000001" {
		t.Errorf("PatientIDs = %v", updated.PatientIDs)
	}
}

func TestNew_PostgresUnreachable(t *testing.T) {
	cfg := testConfig(config.DriverPostgres, "")
	cfg.DatabaseURL = "postgres://%zz"
	if _, err := New(context.Background(), cfg, zerolog.Nop()); err == nil {
		t.Fatal("expected error for malformed database url")
	}
}

func TestWriteMetrics(t *testing.T) {
	cfg := testConfig(config.DriverMemory, "")
	cfg.MetricsFile = filepath.Join(t.TempDir(), "medmission.prom")
	a, err := New(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()
	register(t, a, "ES")

	if err := a.WriteMetrics(); err != nil {
		t.Fatalf("WriteMetrics: %v", err)
	}
	data, err := os.ReadFile(cfg.MetricsFile)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	for _, want := range []string{
		`medmission_identifiers_minted_total{service="ES"} 1`,
		`medmission_patients_registered_total 1`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("metrics missing %q:\n%s", want, data)
		}
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig(config.DriverMemory, "")
	cfg.LogLevel = "warn"

	logger := NewLogger(&buf, cfg)
	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"message":"shown"`) {
		t.Errorf("unexpected log output: %s", out)
	}

	cfg.LogLevel = "nonsense"
	if got := NewLogger(&buf, cfg).GetLevel(); got != zerolog.InfoLevel {
		t.Errorf("level = %v, want info for an unknown level", got)
	}
}
