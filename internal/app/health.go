package app

import (
	"context"
	"fmt"

	"github.com/medmission/medmission/internal/platform/db"
	"github.com/medmission/medmission/internal/platform/kv"
)

// Health summarises the state of the store for the doctor command.
type Health struct {
	Driver    string         `json:"driver"`
	Location  string         `json:"location,omitempty"`
	Encrypted bool           `json:"encrypted"`
	Policy    string         `json:"id_policy"`
	Patients  int            `json:"patients"`
	Vitals    int            `json:"vitals"`
	Counters  map[string]int `json:"counters"`
	Pool      *db.PoolStats  `json:"pool,omitempty"`
	Healthy   bool           `json:"healthy"`
	Error     string         `json:"error,omitempty"`
}

// Check reads every collection back from the store and, for postgres,
// pings the database. The returned error is also recorded in Health.Error.
func (a *App) Check(ctx context.Context) (*Health, error) {
	h := &Health{
		Driver:    a.Config.StoreDriver,
		Encrypted: a.Config.StoreEncryptionKey != "",
		Policy:    a.Config.IDPolicy,
		Patients:  len(a.Records.Patients()),
		Vitals:    len(a.Records.AllVitals()),
	}

	err := a.check(ctx, h)
	if err != nil {
		h.Error = err.Error()
	}
	h.Healthy = err == nil
	return h, err
}

func (a *App) check(ctx context.Context, h *Health) error {
	switch b := a.backend.(type) {
	case *kv.SQLite:
		h.Location = b.Path()
		if err := b.Ping(ctx); err != nil {
			return fmt.Errorf("ping sqlite: %w", err)
		}
	case *kv.File:
		h.Location = b.Dir()
	case *kv.Postgres:
		stats, err := db.Check(ctx, b.Pool())
		h.Pool = stats
		if err != nil {
			return fmt.Errorf("ping postgres: %w", err)
		}
	}

	counters, err := a.IDs.Counters(ctx)
	if err != nil {
		return err
	}
	h.Counters = counters

	// Read the collections back to catch undecryptable or corrupt values.
	for _, key := range []string{kv.KeyPatients, kv.KeyVitals, kv.KeyMissionInfo} {
		if _, _, err := kv.NewDocument[any](a.Store, key, a.Logger).Load(ctx); err != nil {
			return err
		}
	}
	return nil
}
