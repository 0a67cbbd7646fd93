// Package kv provides the key-value persistence boundary for medmission.
// Every durable piece of state (counters, patients, vitals, mission info) is a
// single JSON document under one logical key, so the backends only need to
// store opaque byte values: an in-memory map, one file per key, an embedded
// SQLite table, or a Postgres table.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been written or has
// been deleted.
var ErrNotFound = errors.New("kv: key not found")

// Logical keys shared by the domain packages.
const (
	KeyPatients    = "patients"
	KeyVitals      = "vitals"
	KeyCounters    = "patient_id_counters"
	KeyMissionInfo = "mission_info"
)

// Store is a synchronous byte-valued key-value store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}
