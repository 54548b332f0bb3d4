package memutils

import (
	cerrors "github.com/cockroachdb/errors"
	"golang.org/x/exp/constraints"
)

type Number interface {
	constraints.Integer
}

func CheckPow2[T Number](number T, name string) error {
	if number <= 0 || number&(number-1) != 0 {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

// CheckIndex returns an *IndexError (wrapping ErrOutOfRange) if index does not address one of
// size live elements.
func CheckIndex(index, size int) error {
	if index < 0 || index >= size {
		return cerrors.WithStack(&IndexError{Index: index, Size: size})
	}
	return nil
}

// ChunkCapacity converts a target chunk size in bytes into a number of element slots for elements
// of elemSize bytes. Every chunk holds at least one slot, and zero-sized elements get one slot
// per byte.
func ChunkCapacity(chunkBytes int, elemSize uintptr) int {
	if elemSize == 0 {
		elemSize = 1
	}
	slots := chunkBytes / int(elemSize)
	if slots < 1 {
		return 1
	}
	return slots
}
