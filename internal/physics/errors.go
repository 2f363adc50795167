package physics

import (
	"errors"
	"fmt"
)

// Precondition errors for body operations.
var (
	// ErrNonPositiveMass indicates a mass that is not a positive finite number.
	ErrNonPositiveMass = errors.New("physics: mass must be positive")

	// ErrSingularInertia indicates an inertia tensor with |det| below the
	// singular threshold.
	ErrSingularInertia = errors.New("physics: inertia tensor is not invertible")

	// ErrBodyIndex indicates an index outside the store.
	ErrBodyIndex = errors.New("physics: body index out of range")

	// ErrInconsistentStore indicates per-body slices of different lengths,
	// usually after a caller resized an Access slice.
	ErrInconsistentStore = errors.New("physics: store slices have different lengths")
)

// BodyError wraps an error with the body operation that produced it.
type BodyError struct {
	Op    string
	Index int
	Err   error
}

func (e *BodyError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s body %d: %v", e.Op, e.Index, e.Err)
}

func (e *BodyError) Unwrap() error {
	return e.Err
}
