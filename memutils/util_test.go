package memutils

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

var pow2TestCases = map[string]struct {
	Value  int
	IsPow2 bool
}{
	"Zero": {
		Value:  0,
		IsPow2: false,
	},
	"Negative": {
		Value:  -4,
		IsPow2: false,
	},
	"One": {
		Value:  1,
		IsPow2: true,
	},
	"Power": {
		Value:  4096,
		IsPow2: true,
	},
	"Between Powers": {
		Value:  10000,
		IsPow2: false,
	},
}

func TestPow2(t *testing.T) {
	for name, testCase := range pow2TestCases {
		t.Run(name, func(t *testing.T) {
			err := CheckPow2(testCase.Value, "value")
			if testCase.IsPow2 {
				require.NoError(t, err)
			} else {
				require.True(t, errors.Is(err, PowerOfTwoError))
			}
		})
	}
}

func TestCheckIndex(t *testing.T) {
	require.NoError(t, CheckIndex(0, 1))
	require.NoError(t, CheckIndex(9, 10))

	err := CheckIndex(10, 10)
	require.True(t, errors.Is(err, ErrOutOfRange))

	var indexErr *IndexError
	require.True(t, errors.As(err, &indexErr))
	require.Equal(t, 10, indexErr.Index)
	require.Equal(t, 10, indexErr.Size)
	require.Equal(t, "index out of range: index=10, size=10", indexErr.Error())

	err = CheckIndex(-1, 3)
	require.True(t, errors.As(err, &indexErr))
	require.Equal(t, -1, indexErr.Index)
}

var chunkCapacityTestCases = map[string]struct {
	ChunkBytes int
	ElemSize   uintptr
	Slots      int
}{
	"Page Of Int64": {
		ChunkBytes: 4096,
		ElemSize:   8,
		Slots:      512,
	},
	"Remainder Dropped": {
		ChunkBytes: 100,
		ElemSize:   24,
		Slots:      4,
	},
	"Element Larger Than Chunk": {
		ChunkBytes: 16,
		ElemSize:   64,
		Slots:      1,
	},
	"Zero Sized Element": {
		ChunkBytes: 8,
		ElemSize:   0,
		Slots:      8,
	},
}

func TestChunkCapacity(t *testing.T) {
	for name, testCase := range chunkCapacityTestCases {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, testCase.Slots, ChunkCapacity(testCase.ChunkBytes, testCase.ElemSize))
		})
	}
}
