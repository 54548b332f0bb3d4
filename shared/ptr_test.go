package shared_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/rack/shared"
)

type widget struct {
	Name  string
	Count int
}

func TestMakeCopyResetLifecycle(t *testing.T) {
	original := shared.Make(1)
	require.True(t, original.Valid())
	require.Equal(t, 1, *original.Get())
	require.Equal(t, 1, original.UseCount())

	copy1 := original.Clone()
	copy2 := original.Clone()
	require.Equal(t, 3, original.UseCount())
	require.Equal(t, 3, copy1.UseCount())
	require.Equal(t, 3, copy2.UseCount())
	require.Same(t, original.Get(), copy2.Get())

	copy1.Reset()
	require.False(t, copy1.Valid())
	require.Equal(t, 0, copy1.UseCount())
	require.Equal(t, 2, original.UseCount())

	copy2.Reset()
	require.Equal(t, 1, original.UseCount())
	require.True(t, original.Unique())

	original.Reset()
	require.Equal(t, 0, original.UseCount())
	require.False(t, original.Valid())
	require.Nil(t, original.Get())
}

var copyCountTestCases = map[string]struct {
	Copies int
}{
	"Single Owner": {Copies: 1},
	"Two Owners":   {Copies: 2},
	"Many Owners":  {Copies: 17},
}

func TestCopiesShareCount(t *testing.T) {
	for name, testCase := range copyCountTestCases {
		t.Run(name, func(t *testing.T) {
			deleted := 0
			owners := []*shared.Ptr[widget]{
				shared.NewWithDeleter(&widget{Name: "gear"}, func(value *widget) {
					deleted++
				}),
			}
			for i := 1; i < testCase.Copies; i++ {
				owners = append(owners, owners[0].Clone())
			}

			for _, owner := range owners {
				require.Equal(t, testCase.Copies, owner.UseCount())
				require.Equal(t, testCase.Copies == 1, owner.Unique())
			}

			for i, owner := range owners {
				owner.Reset()
				remaining := testCase.Copies - i - 1

				for _, other := range owners[i+1:] {
					require.Equal(t, remaining, other.UseCount())
					require.Equal(t, remaining == 1, other.Unique())
				}

				if remaining > 0 {
					require.Equal(t, 0, deleted)
				}
			}

			require.Equal(t, 1, deleted)
		})
	}
}

func TestDeleterReceivesValue(t *testing.T) {
	value := &widget{Name: "sprocket", Count: 3}
	var received *widget

	p := shared.NewWithDeleter(value, func(value *widget) {
		received = value
	})
	require.Equal(t, "sprocket", p.Get().Name)

	p.Get().Count++
	p.Reset()
	require.Same(t, value, received)
	require.Equal(t, 4, received.Count)

	// further resets do nothing
	p.Reset()
	require.Same(t, value, received)
}

func TestNewNilIsEmpty(t *testing.T) {
	called := false
	p := shared.NewWithDeleter[widget](nil, func(value *widget) {
		called = true
	})

	require.False(t, p.Valid())
	require.Equal(t, 0, p.UseCount())
	require.False(t, p.Unique())

	clone := p.Clone()
	require.False(t, clone.Valid())

	p.Reset()
	clone.Reset()
	require.False(t, called)
}

func TestZeroPtrIsEmpty(t *testing.T) {
	var p shared.Ptr[int]
	require.False(t, p.Valid())
	require.Equal(t, 0, p.UseCount())

	p.ResetTo(new(int))
	require.True(t, p.Valid())
	require.True(t, p.Unique())
}

func TestAssign(t *testing.T) {
	deletedA := 0
	deletedB := 0
	a := shared.NewWithDeleter(&widget{Name: "a"}, func(value *widget) { deletedA++ })
	b := shared.NewWithDeleter(&widget{Name: "b"}, func(value *widget) { deletedB++ })

	a.Assign(b)
	require.Equal(t, 1, deletedA)
	require.Equal(t, 0, deletedB)
	require.Equal(t, "b", a.Get().Name)
	require.Equal(t, 2, a.UseCount())
	require.Equal(t, 2, b.UseCount())

	a.Assign(a)
	a.Assign(b)
	require.Equal(t, 2, b.UseCount())

	a.Reset()
	b.Reset()
	require.Equal(t, 1, deletedB)
}

func TestAssignEmpty(t *testing.T) {
	deleted := 0
	p := shared.NewWithDeleter(&widget{}, func(value *widget) { deleted++ })

	p.Assign(&shared.Ptr[widget]{})
	require.Equal(t, 1, deleted)
	require.False(t, p.Valid())
}

func TestResetTo(t *testing.T) {
	deleted := 0
	p := shared.NewWithDeleter(&widget{Name: "old"}, func(value *widget) { deleted++ })
	other := p.Clone()

	replacement := &widget{Name: "new"}
	p.ResetTo(replacement)
	require.Equal(t, 0, deleted)
	require.Same(t, replacement, p.Get())
	require.True(t, p.Unique())
	require.True(t, other.Unique())

	other.Reset()
	require.Equal(t, 1, deleted)

	p.ResetTo(nil)
	require.False(t, p.Valid())
}

func TestSwap(t *testing.T) {
	a := shared.Make(widget{Name: "a"})
	b := shared.Make(widget{Name: "b"})
	bCopy := b.Clone()

	a.Swap(b)
	require.Equal(t, "b", a.Get().Name)
	require.Equal(t, "a", b.Get().Name)

	// counts follow the control blocks, not the variables
	require.Equal(t, 2, a.UseCount())
	require.Equal(t, 1, b.UseCount())

	bCopy.Reset()
	require.True(t, a.Unique())
	require.Equal(t, "b", a.Get().Name)

	empty := &shared.Ptr[widget]{}
	empty.Swap(a)
	require.False(t, a.Valid())
	require.Equal(t, 0, a.UseCount())
	require.True(t, empty.Unique())
}

func TestMove(t *testing.T) {
	deleted := 0
	p := shared.NewWithDeleter(&widget{Name: "moving"}, func(value *widget) { deleted++ })
	clone := p.Clone()

	moved := p.Move()
	require.False(t, p.Valid())
	require.Equal(t, 0, p.UseCount())
	require.Equal(t, 2, moved.UseCount())
	require.Equal(t, "moving", moved.Get().Name)

	var target shared.Ptr[widget]
	target.MoveFrom(moved)
	require.False(t, moved.Valid())
	require.Equal(t, 2, target.UseCount())

	target.MoveFrom(&target)
	require.Equal(t, 2, target.UseCount())

	target.Reset()
	clone.Reset()
	require.Equal(t, 1, deleted)
}

func TestMoveFromReleasesTarget(t *testing.T) {
	deleted := 0
	target := shared.NewWithDeleter(&widget{Name: "target"}, func(value *widget) { deleted++ })
	source := shared.Make(widget{Name: "source"})

	target.MoveFrom(source)
	require.Equal(t, 1, deleted)
	require.Equal(t, "source", target.Get().Name)
	require.True(t, target.Unique())
	require.False(t, source.Valid())
}
