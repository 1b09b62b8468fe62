package scope

import (
	"math"
	"testing"

	"github.com/femira-lang/femira/errz"
	"github.com/femira-lang/femira/object"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	s := New()
	arr := object.NewArray(nil)
	s.Write("x", object.NewInt(42))
	s.Write("arr", arr)

	value, err := s.Read("x")
	require.Nil(t, err)
	require.Equal(t, object.NewInt(42), value)

	value, err = s.Read("arr")
	require.Nil(t, err)
	require.Same(t, arr, value)
}

func TestReadMissIsLookupError(t *testing.T) {
	parent := New()
	parent.Write("x", object.NewInt(1))
	child, err := parent.Derive(nil, nil)
	require.Nil(t, err)
	parent.Write("late", object.NewInt(2))

	_, err = child.Read("late")
	require.Error(t, err)
	require.True(t, errz.Is(err, errz.ErrLookup))
	require.Contains(t, err.Error(), `undefined name "late"`)
}

func TestReadMissSuggestsCloseNames(t *testing.T) {
	s := New()
	s.Write("count", object.NewInt(1))
	_, err := s.Read("coutn")
	var se *errz.StructuredError
	require.ErrorAs(t, err, &se)
	require.Equal(t, "did you mean 'count'?", se.Hint)

	_, err = s.Read("unrelated")
	require.ErrorAs(t, err, &se)
	require.Empty(t, se.Hint)
}

func TestDeriveSnapshotsParent(t *testing.T) {
	parent := New()
	parent.Write("x", object.NewInt(1))
	child, err := parent.Derive(nil, nil)
	require.Nil(t, err)
	require.Equal(t, []string{"x"}, child.Names())
	require.Equal(t, parent, child.Parent())
	require.Equal(t, 1, parent.ChildCount())
}

func TestParentWritePropagatesOnlyToChildrenHoldingName(t *testing.T) {
	parent := New()
	parent.Write("x", object.NewInt(1))
	child, err := parent.Derive(nil, nil)
	require.Nil(t, err)

	parent.Write("x", object.NewInt(2))
	value, err := child.Read("x")
	require.Nil(t, err)
	require.Equal(t, object.NewInt(2), value)

	parent.Write("y", object.NewInt(3))
	require.False(t, child.Has("y"))
}

func TestPropagationIsTransitive(t *testing.T) {
	root := New()
	root.Write("x", object.NewInt(1))
	mid, _ := root.Derive(nil, nil)
	leaf, _ := mid.Derive(nil, nil)

	root.Write("x", object.NewInt(9))
	value, _ := leaf.Read("x")
	require.Equal(t, object.NewInt(9), value)
}

func TestChildWritePropagatesUpward(t *testing.T) {
	root := New()
	root.Write("counter", object.NewInt(0))
	mid, _ := root.Derive(nil, nil)
	sibling, _ := root.Derive(nil, nil)
	leaf, _ := mid.Derive(nil, nil)

	leaf.Write("counter", object.NewInt(5))
	for _, s := range []*Scope{root, mid, sibling, leaf} {
		value, err := s.Read("counter")
		require.Nil(t, err)
		require.Equal(t, object.NewInt(5), value)
	}
}

func TestNaNWriteTerminates(t *testing.T) {
	root := New()
	root.Write("x", object.NewFloat(0))
	mid, _ := root.Derive(nil, nil)
	sibling, _ := root.Derive(nil, nil)
	leaf, _ := mid.Derive(nil, nil)

	leaf.Write("x", object.NewFloat(math.NaN()))
	for _, s := range []*Scope{root, mid, sibling, leaf} {
		value, err := s.Read("x")
		require.Nil(t, err)
		f, ok := value.(*object.Float)
		require.True(t, ok)
		require.True(t, math.IsNaN(f.Value()))
	}

	// Writing NaN again is a no-op rather than another walk.
	root.Write("x", object.NewFloat(math.NaN()))
	value, _ := leaf.Read("x")
	require.True(t, math.IsNaN(value.(*object.Float).Value()))
}

func TestLocalWriteDoesNotLeak(t *testing.T) {
	root := New()
	child, _ := root.Derive(nil, nil)
	child.Write("local", object.NewInt(1))
	require.False(t, root.Has("local"))
}

func TestUpwardWalkStopsAtFirstAncestorWithoutName(t *testing.T) {
	root := New()
	mid, _ := root.Derive(nil, nil)
	mid.Write("x", object.NewInt(1))
	leaf, _ := mid.Derive(nil, nil)

	leaf.Write("x", object.NewInt(2))
	value, _ := mid.Read("x")
	require.Equal(t, object.NewInt(2), value)
	require.False(t, root.Has("x"))
}

func TestParametersStayLocal(t *testing.T) {
	root := New()
	root.Write("n", object.NewInt(100))
	call, err := root.Derive([]string{"n", "m"}, []object.Object{object.NewInt(1), object.NewInt(2)})
	require.Nil(t, err)

	n, _ := call.Read("n")
	m, _ := call.Read("m")
	require.Equal(t, object.NewInt(1), n)
	require.Equal(t, object.NewInt(2), m)

	call.Release()
	n, _ = root.Read("n")
	require.Equal(t, object.NewInt(100), n)
	require.False(t, root.Has("m"))
}

func TestDeriveArgumentMismatch(t *testing.T) {
	_, err := New().Derive([]string{"a"}, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "expected 1 arguments, got 0")
}

func TestReleaseDeregisters(t *testing.T) {
	root := New()
	root.Write("x", object.NewInt(1))
	a, _ := root.Derive(nil, nil)
	b, _ := root.Derive(nil, nil)
	require.Equal(t, 2, root.ChildCount())

	a.Release()
	a.Release()
	require.Equal(t, 1, root.ChildCount())
	require.Nil(t, a.Parent())

	root.Write("x", object.NewInt(2))
	value, _ := a.Read("x")
	require.Equal(t, object.NewInt(1), value)
	value, _ = b.Read("x")
	require.Equal(t, object.NewInt(2), value)
}

func TestWriteSameValueIsNoop(t *testing.T) {
	root := New()
	arr := object.NewArray(nil)
	root.Write("a", arr)
	child, _ := root.Derive(nil, nil)
	child.Write("a", arr)
	require.Equal(t, 1, root.Len())

	other := object.NewArray(nil)
	child.Write("a", other)
	value, _ := root.Read("a")
	require.Same(t, other, value)
}

func TestNewWithBindings(t *testing.T) {
	s := NewWithBindings(map[string]object.Object{
		"b": object.NewString("two"),
		"a": object.NewInt(1),
	})
	require.Equal(t, []string{"a", "b"}, s.Names())
	snap := s.Snapshot()
	snap["c"] = object.Nil
	require.False(t, s.Has("c"))
}
