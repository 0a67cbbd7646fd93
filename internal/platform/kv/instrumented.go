package kv

import (
	"context"

	"github.com/medmission/medmission/internal/platform/telemetry"
)

// Instrumented counts writes and deletes, split by outcome.
type Instrumented struct {
	next    Store
	metrics *telemetry.Metrics
}

func NewInstrumented(next Store, metrics *telemetry.Metrics) *Instrumented {
	return &Instrumented{next: next, metrics: metrics}
}

func (i *Instrumented) Get(ctx context.Context, key string) ([]byte, error) {
	return i.next.Get(ctx, key)
}

func (i *Instrumented) Put(ctx context.Context, key string, value []byte) error {
	err := i.next.Put(ctx, key, value)
	i.metrics.StoreWrite(key, err)
	return err
}

func (i *Instrumented) Delete(ctx context.Context, key string) error {
	err := i.next.Delete(ctx, key)
	i.metrics.StoreWrite(key, err)
	return err
}

func (i *Instrumented) Close() error { return i.next.Close() }
