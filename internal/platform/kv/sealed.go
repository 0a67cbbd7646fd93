package kv

import (
	"context"

	"github.com/medmission/medmission/internal/platform/hipaa"
)

// Sealed encrypts values before they reach the wrapped Store. Values written
// before encryption was switched on are returned as-is and get sealed on the
// next Put.
type Sealed struct {
	next   Store
	sealer *hipaa.Sealer
}

func NewSealed(next Store, sealer *hipaa.Sealer) *Sealed {
	return &Sealed{next: next, sealer: sealer}
}

func (s *Sealed) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.next.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !hipaa.IsSealed(data) {
		return data, nil
	}
	return s.sealer.Open(data)
}

func (s *Sealed) Put(ctx context.Context, key string, value []byte) error {
	sealed, err := s.sealer.Seal(value)
	if err != nil {
		return err
	}
	return s.next.Put(ctx, key, sealed)
}

func (s *Sealed) Delete(ctx context.Context, key string) error {
	return s.next.Delete(ctx, key)
}

func (s *Sealed) Close() error { return s.next.Close() }
