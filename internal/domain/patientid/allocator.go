// Package patientid mints the human-facing CODE-NNNNNN patient identifiers.
// Each service code has its own monotonic counter, persisted as a single
// JSON map under the patient_id_counters key.
package patientid

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/medmission/medmission/internal/platform/kv"
	"github.com/medmission/medmission/internal/platform/telemetry"
)

// Counters maps a service code to the last sequence number issued for it.
type Counters map[string]int

// Allocator owns the counter map. It keeps no cached copy: every call reads
// the stored map, so a failed write cannot leave memory and storage apart.
type Allocator struct {
	mu      sync.Mutex
	doc     *kv.Document[Counters]
	logger  zerolog.Logger
	metrics *telemetry.Metrics
}

type Option func(*Allocator)

// WithMetrics counts minted identifiers per service.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(a *Allocator) { a.metrics = m }
}

func NewAllocator(store kv.Store, logger zerolog.Logger, opts ...Option) *Allocator {
	logger = logger.With().Str("component", "patientid").Logger()
	a := &Allocator{
		doc:    kv.NewDocument[Counters](store, kv.KeyCounters, logger),
		logger: logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Allocator) load(ctx context.Context) (Counters, error) {
	counters, _, err := a.doc.Load(ctx)
	if err != nil {
		return nil, err
	}
	if counters == nil {
		counters = Counters{}
	}
	return counters, nil
}

// Mint increments the counter for code, persists it and returns the new
// identifier. If the write fails no identifier is returned and the stored
// counter is unchanged.
func (a *Allocator) Mint(ctx context.Context, code string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mint(ctx, code)
}

func (a *Allocator) mint(ctx context.Context, code string) (string, error) {
	counters, err := a.load(ctx)
	if err != nil {
		return "", fmt.Errorf("mint %s: %w", code, err)
	}
	next := counters[code] + 1
	counters[code] = next
	if err := a.doc.Flush(ctx, counters); err != nil {
		return "", fmt.Errorf("mint %s: %w", code, err)
	}

	a.metrics.IdentifierMinted(code)
	id := Format(code, next)
	a.logger.Debug().Str("service", code).Str("identifier", id).Msg("identifier minted")
	return id, nil
}

// MintBatch mints one identifier per code, in order. It is not atomic: on
// error the identifiers minted before the failure are returned with it and
// their counters stay advanced.
func (a *Allocator) MintBatch(ctx context.Context, codes []string) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	ids := make([]string, 0, len(codes))
	for _, code := range codes {
		id, err := a.mint(ctx, code)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Current returns the last sequence issued for code, 0 if none.
func (a *Allocator) Current(ctx context.Context, code string) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	counters, err := a.load(ctx)
	if err != nil {
		return 0, err
	}
	return counters[code], nil
}

// Counters returns a copy of the whole counter map.
func (a *Allocator) Counters(ctx context.Context) (Counters, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.load(ctx)
}

// Codes returns the service codes that have a counter, sorted.
func (c Counters) Codes() []string {
	codes := make([]string, 0, len(c))
	for code := range c {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Reset forgets the counter for code. Identifiers already issued stay on
// their records and will collide with the next mints for that code.
func (a *Allocator) Reset(ctx context.Context, code string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	counters, err := a.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := counters[code]; !ok {
		return nil
	}
	delete(counters, code)
	if err := a.doc.Flush(ctx, counters); err != nil {
		return fmt.Errorf("reset %s: %w", code, err)
	}
	a.logger.Warn().Str("service", code).Msg("counter reset")
	return nil
}

// ResetAll removes the counter map entirely.
func (a *Allocator) ResetAll(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.doc.Remove(ctx); err != nil {
		return fmt.Errorf("reset all counters: %w", err)
	}
	a.logger.Warn().Msg("all counters reset")
	return nil
}
