// Package kvtest provides kv.Store doubles for tests in other packages.
package kvtest

import (
	"context"
	"errors"
	"sync"

	"github.com/medmission/medmission/internal/platform/kv"
)

// ErrWriteFailed is returned by a Flaky store whose writes are switched off.
var ErrWriteFailed = errors.New("kvtest: write failed")

// Flaky wraps a Memory store and fails every Put/Delete while FailWrites is
// set, the way a full disk or storage quota would.
type Flaky struct {
	*kv.Memory

	mu         sync.Mutex
	failWrites bool
	writes     int
}

func NewFlaky() *Flaky {
	return &Flaky{Memory: kv.NewMemory()}
}

// FailWrites toggles write failures.
func (f *Flaky) FailWrites(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWrites = fail
}

// Writes returns the number of successful Put/Delete calls.
func (f *Flaky) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

func (f *Flaky) Put(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return ErrWriteFailed
	}
	f.writes++
	return f.Memory.Put(ctx, key, value)
}

func (f *Flaky) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return ErrWriteFailed
	}
	f.writes++
	return f.Memory.Delete(ctx, key)
}
