package vectorindex

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation reports bad caller input, e.g. building from no texts.
	ErrValidation = errors.New("vectorindex: invalid input")

	// ErrDimensionMismatch reports a vector whose length differs from the index.
	ErrDimensionMismatch = errors.New("vectorindex: dimension mismatch")
)

// EmbeddingError wraps a failure of the embedding provider.
type EmbeddingError struct {
	Op  string
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("vectorindex: embedding failed during %s: %v", e.Op, e.Err)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Err
}
