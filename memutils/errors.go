package memutils

import (
	"fmt"

	"github.com/pkg/errors"
)

// PowerOfTwoError is the error returned from CheckPow2 or other methods if the number being tested is not a power of two
var PowerOfTwoError error = errors.New("number must be a power of two")

// ErrOutOfRange is the error wrapped by every failed bounds check in the rack containers. Use errors.Is
// to test for it and errors.As with *IndexError to recover the index and size involved.
var ErrOutOfRange error = errors.New("index out of range")

// IndexError reports an access at Index into a container that held Size live elements at the time
// of the access. The container is left unchanged.
type IndexError struct {
	Index int
	Size  int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: index=%d, size=%d", ErrOutOfRange.Error(), e.Index, e.Size)
}

func (e *IndexError) Unwrap() error {
	return ErrOutOfRange
}
