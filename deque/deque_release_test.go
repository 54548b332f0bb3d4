//go:build !debug_rack

package deque_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/rack/deque"
)

func TestPopFrontThenBackOnSingleElement(t *testing.T) {
	d := deque.NewWithChunkBytes[int64](smallChunkBytes)
	d.PushBack(1)

	d.PopFront()
	d.PopBack()
	require.True(t, d.Empty())
	require.NoError(t, d.Validate())

	d.PushBack(2)
	d.PopBack()
	d.PopFront()
	require.True(t, d.Empty())
	require.NoError(t, d.Validate())
}
