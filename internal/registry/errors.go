package registry

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange is returned when a record index does not exist.
var ErrIndexOutOfRange = errors.New("host index out of range")

// CorruptedStoreError reports a backing store that exists but cannot be
// parsed. The caller decides whether to Reset or abort.
type CorruptedStoreError struct {
	Path string
	Err  error
}

func (e *CorruptedStoreError) Error() string {
	return fmt.Sprintf("host list %s is corrupted: %v", e.Path, e.Err)
}

func (e *CorruptedStoreError) Unwrap() error { return e.Err }

// ResolutionError reports a dynamic name that did not resolve. The record is
// kept but cannot be woken until a later resolution succeeds.
type ResolutionError struct {
	Index       int
	Name        string
	DynamicName string
}

func (e *ResolutionError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("failed to resolve DDNS address %q", e.DynamicName)
	}
	return fmt.Sprintf("failed to resolve DDNS address %q for %s", e.DynamicName, e.Name)
}

func outOfRange(index, n int) error {
	return fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, index, n)
}
