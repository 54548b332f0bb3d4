package memutils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestZeroElementOps(t *testing.T) {
	var ops ElementOps[*int]
	value := 5
	src := &value

	var dst *int
	ops.CopyConstruct(&dst, &src)
	require.Same(t, src, dst)

	ops.DestroyAt(&dst)
	require.Nil(t, dst)

	ops.Construct(&dst, nil)
	require.Nil(t, dst)
}

func TestElementOpsHooks(t *testing.T) {
	var events []string
	ops := ElementOps[int]{
		Copy: func(dst *int, src *int) {
			events = append(events, "copy")
			*dst = *src * 10
		},
		Destroy: func(value *int) {
			events = append(events, "destroy")
		},
	}

	values := []int{1, 2, 0}
	ops.Relocate(&values[2], &values[0])
	require.Equal(t, []int{0, 2, 10}, values)
	require.Equal(t, []string{"copy", "destroy"}, events)

	ops.DestroyRange(values[1:])
	require.Equal(t, []int{0, 0, 0}, values)
	require.Equal(t, []string{"copy", "destroy", "destroy", "destroy"}, events)

	ops.Construct(&values[0], func(slot *int) { *slot = 7 })
	require.Equal(t, 7, values[0])
}
