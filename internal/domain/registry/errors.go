package registry

import (
	"errors"
	"fmt"
)

var (
	ErrPatientNotFound = errors.New("patient not found")
	ErrVitalsNotFound  = errors.New("vitals record not found")
	ErrNoServices      = errors.New("at least one service is required")

	// ErrNotPersisted marks a change that was applied in memory but could not
	// be written to the store. The accompanying record reflects the change.
	ErrNotPersisted = errors.New("change applied but not persisted")
)

func notPersisted(err error) error {
	return fmt.Errorf("%w: %w", ErrNotPersisted, err)
}
