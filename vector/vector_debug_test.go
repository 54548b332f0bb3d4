//go:build debug_rack

package vector_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/rack/vector"
)

func TestEmptyAccessAsserts(t *testing.T) {
	vec := vector.New[int]()
	require.Panics(t, func() { vec.Front() })
	require.Panics(t, func() { vec.Back() })
	require.Panics(t, func() { vec.PopBack() })

	vec.PushBack(1)
	require.NotPanics(t, func() { vec.PopBack() })
	require.Panics(t, func() { vec.PopBack() })
}
