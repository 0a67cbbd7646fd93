package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Document is a typed JSON value stored under one key. Flush is the single
// write-through step used by the domain packages; a failed write is logged
// and returned, never swallowed.
type Document[T any] struct {
	store  Store
	key    string
	logger zerolog.Logger
}

func NewDocument[T any](store Store, key string, logger zerolog.Logger) *Document[T] {
	return &Document[T]{
		store:  store,
		key:    key,
		logger: logger.With().Str("key", key).Logger(),
	}
}

// Key returns the logical key of the document.
func (d *Document[T]) Key() string { return d.key }

// Load decodes the stored value. found is false when the key is absent, in
// which case v is the zero value and err is nil.
func (d *Document[T]) Load(ctx context.Context) (v T, found bool, err error) {
	data, err := d.store.Get(ctx, d.key)
	if errors.Is(err, ErrNotFound) {
		return v, false, nil
	}
	if err != nil {
		d.logger.Error().Err(err).Msg("read failed")
		return v, false, fmt.Errorf("read %s: %w", d.key, err)
	}
	if err := json.Unmarshal(data, &v); err != nil {
		d.logger.Error().Err(err).Msg("decode failed")
		return v, false, fmt.Errorf("decode %s: %w", d.key, err)
	}
	return v, true, nil
}

// Flush encodes v and writes it to the store.
func (d *Document[T]) Flush(ctx context.Context, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", d.key, err)
	}
	if err := d.store.Put(ctx, d.key, data); err != nil {
		d.logger.Error().Err(err).Msg("write failed")
		return fmt.Errorf("write %s: %w", d.key, err)
	}
	return nil
}

// Remove deletes the key.
func (d *Document[T]) Remove(ctx context.Context) error {
	if err := d.store.Delete(ctx, d.key); err != nil {
		d.logger.Error().Err(err).Msg("remove failed")
		return fmt.Errorf("remove %s: %w", d.key, err)
	}
	return nil
}
