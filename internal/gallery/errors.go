package gallery

import (
	"errors"
	"fmt"
)

// Sentinel errors for permission and lookup failures.
var (
	ErrPermissionDenied  = errors.New("permission denied")
	ErrCharacterNotFound = errors.New("character not found")
)

// ValidationError reports rejected input (oversized file, disallowed
// format, empty filename or path). Detected before any mutation.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// StorageError reports a blob I/O failure. "Not found" on delete is not a
// StorageError; deletes are idempotent.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorage reports whether err is a StorageError.
func IsStorage(err error) bool {
	var s *StorageError
	return errors.As(err, &s)
}
