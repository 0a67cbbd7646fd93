// Package registry is the record store: it owns the patient and vitals
// collections, keeps them in insertion order, and ties patient creation and
// service changes to identifier minting.
//
// Every mutation is applied in memory first and then flushed to the kv
// store. A failed flush does not roll the change back; the operation returns
// its result together with an error wrapping ErrNotPersisted and the caller
// decides whether to warn.
package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medmission/medmission/internal/domain/catalog"
	"github.com/medmission/medmission/internal/platform/kv"
	"github.com/medmission/medmission/internal/platform/telemetry"
)

// IdentifierMinter mints one identifier per service code, index-aligned.
type IdentifierMinter interface {
	MintBatch(ctx context.Context, codes []string) ([]string, error)
}

// IdentifierPolicy decides what happens to a patient's identifiers when the
// selected services change.
type IdentifierPolicy int

const (
	// PolicyRemint mints a fresh identifier for every entry of the new
	// service list, discarding the old ones.
	PolicyRemint IdentifierPolicy = iota
	// PolicyReuse keeps the old identifier of every service that is still
	// selected and mints only for newly added services.
	PolicyReuse
)

func (p IdentifierPolicy) String() string {
	if p == PolicyReuse {
		return "reuse"
	}
	return "remint"
}

type Store struct {
	mu       sync.Mutex
	patients []Patient
	vitals   []Vitals

	patientDoc *kv.Document[[]Patient]
	vitalsDoc  *kv.Document[[]Vitals]

	minter  IdentifierMinter
	catalog *catalog.Catalog
	policy  IdentifierPolicy
	now     func() time.Time
	newID   func() string
	logger  zerolog.Logger
	metrics *telemetry.Metrics
}

type Option func(*Store)

func WithPolicy(p IdentifierPolicy) Option {
	return func(s *Store) { s.policy = p }
}

func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Store) { s.catalog = c }
}

// WithClock replaces time.Now for registration and recording timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the UUID generator for internal record ids.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// Open loads both collections from store.
func Open(ctx context.Context, store kv.Store, minter IdentifierMinter, logger zerolog.Logger, opts ...Option) (*Store, error) {
	logger = logger.With().Str("component", "registry").Logger()
	s := &Store{
		patientDoc: kv.NewDocument[[]Patient](store, kv.KeyPatients, logger),
		vitalsDoc:  kv.NewDocument[[]Vitals](store, kv.KeyVitals, logger),
		minter:     minter,
		catalog:    catalog.Default(),
		now:        time.Now,
		newID:      uuid.NewString,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	patients, _, err := s.patientDoc.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load patients: %w", err)
	}
	vitalsRecords, _, err := s.vitalsDoc.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load vitals: %w", err)
	}
	s.patients = patients
	s.vitals = vitalsRecords

	s.logger.Debug().
		Int("patients", len(s.patients)).
		Int("vitals", len(s.vitals)).
		Str("policy", s.policy.String()).
		Msg("record store opened")
	return s, nil
}

func (s *Store) flushPatients(ctx context.Context) error {
	if err := s.patientDoc.Flush(ctx, s.patients); err != nil {
		return notPersisted(err)
	}
	return nil
}

func (s *Store) flushVitals(ctx context.Context) error {
	if err := s.vitalsDoc.Flush(ctx, s.vitals); err != nil {
		return notPersisted(err)
	}
	return nil
}

// Flush writes both collections, e.g. to retry after ErrNotPersisted.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.flushPatients(ctx); err != nil {
		return err
	}
	return s.flushVitals(ctx)
}

// ClearPatients drops every patient and removes the stored collection.
// Counters are left alone.
func (s *Store) ClearPatients(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.patients)
	s.patients = nil
	s.logger.Warn().Int("removed", n).Msg("patients cleared")
	if err := s.patientDoc.Remove(ctx); err != nil {
		return notPersisted(err)
	}
	return nil
}

// ClearVitals drops every vitals record and removes the stored collection.
func (s *Store) ClearVitals(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.vitals)
	s.vitals = nil
	s.logger.Warn().Int("removed", n).Msg("vitals cleared")
	if err := s.vitalsDoc.Remove(ctx); err != nil {
		return notPersisted(err)
	}
	return nil
}
