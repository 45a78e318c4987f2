package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition      = errors.New("invalid transition")
	ErrForbidden              = errors.New("forbidden")
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrDocumentNotFound       = errors.New("document not found")
	ErrInvalidInput           = errors.New("invalid input")
	ErrStorageUnavailable     = errors.New("storage unavailable")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
