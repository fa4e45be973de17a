package nn

import (
	"errors"
	"fmt"
)

var (
	// ErrDimensionMismatch reports a parameter or input vector whose length
	// disagrees with the declared topology.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrInvalidConfiguration reports a malformed constructor argument.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

func dimensionError(what string, got, want int) error {
	return fmt.Errorf("%w: %s got=%d want=%d", ErrDimensionMismatch, what, got, want)
}

func configError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}
