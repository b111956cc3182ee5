package native_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wldfngrs/olive/lang/native"
	"github.com/wldfngrs/olive/lang/value"
)

func TestRegistryRegisterAndGet(t *testing.T) {
	r := native.NewRegistry()
	fn := func(argc int, argv []value.Value) (value.Value, bool) {
		return value.Number(1), true
	}
	n := r.Register("one", fn)
	require.Equal(t, "one", n.Name)

	got, ok := r.Get("one")
	require.True(t, ok)
	require.Same(t, n, got)
}

func TestRegistryGetMissing(t *testing.T) {
	r := native.NewRegistry()
	_, ok := r.Get("nope")
	require.False(t, ok)
}

func TestRegistryRange(t *testing.T) {
	r := native.NewRegistry()
	r.Register("a", native.Clock)
	r.Register("b", native.Clock)

	seen := map[string]bool{}
	r.Range(func(name string, n *value.ObjNative) bool {
		seen[name] = true
		return true
	})
	require.Equal(t, map[string]bool{"a": true, "b": true}, seen)
}

func TestRegistryRangeStopsEarly(t *testing.T) {
	r := native.NewRegistry()
	r.Register("a", native.Clock)
	r.Register("b", native.Clock)

	count := 0
	r.Range(func(name string, n *value.ObjNative) bool {
		count++
		return false
	})
	require.Equal(t, 1, count)
}

func TestClockRejectsArguments(t *testing.T) {
	_, ok := native.Clock(1, []value.Value{value.Number(0)})
	require.False(t, ok)
}

func TestClockReturnsIncreasingSeconds(t *testing.T) {
	v1, ok := native.Clock(0, nil)
	require.True(t, ok)
	n1, ok := v1.(value.Number)
	require.True(t, ok)
	require.Greater(t, float64(n1), 0.0)

	v2, ok := native.Clock(0, nil)
	require.True(t, ok)
	n2, ok := v2.(value.Number)
	require.True(t, ok)
	require.GreaterOrEqual(t, float64(n2), float64(n1))
}
