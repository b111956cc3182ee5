package value_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wldfngrs/olive/lang/value"
)

func TestTruthy(t *testing.T) {
	cases := []struct {
		desc string
		v    value.Value
		want bool
	}{
		{"null is falsey", value.Null{}, false},
		{"false is falsey", value.Bool(false), false},
		{"true is truthy", value.Bool(true), true},
		{"zero number is truthy", value.Number(0), true},
		{"empty string is truthy", &value.ObjString{Chars: ""}, true},
	}
	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			require.Equal(t, tc.want, value.Truthy(tc.v))
		})
	}
}

func TestNumberString(t *testing.T) {
	require.Equal(t, "3", value.Number(3).String())
	require.Equal(t, "3.5", value.Number(3.5).String())
}

func TestEqual(t *testing.T) {
	a := &value.ObjString{Chars: "hi"}
	b := &value.ObjString{Chars: "hi"}

	require.True(t, value.Equal(value.Number(1), value.Number(1)))
	require.False(t, value.Equal(value.Number(1), value.Number(2)))
	require.True(t, value.Equal(value.Null{}, value.Null{}))
	require.False(t, value.Equal(value.Bool(true), value.Bool(false)))
	require.True(t, value.Equal(a, a))
	// distinct ObjString instances are not equal even with the same content:
	// the intern table, not this function, is what guarantees a and b would
	// never both exist in a running VM.
	require.False(t, value.Equal(a, b))
}

func TestCompareNumbers(t *testing.T) {
	c, err := value.Compare(value.Number(1), value.Number(2))
	require.NoError(t, err)
	require.Equal(t, -1, c)

	c, err = value.Compare(value.Number(2), value.Number(1))
	require.NoError(t, err)
	require.Equal(t, 1, c)
}

func TestCompareStrings(t *testing.T) {
	a := &value.ObjString{Chars: "abc"}
	b := &value.ObjString{Chars: "abd"}
	c, err := value.Compare(a, b)
	require.NoError(t, err)
	require.Equal(t, -1, c)
}

func TestCompareMixedTypesErrors(t *testing.T) {
	_, err := value.Compare(value.Number(1), &value.ObjString{Chars: "x"})
	require.Error(t, err)
}

func TestCoerceToString(t *testing.T) {
	s, err := value.CoerceToString(value.Bool(true))
	require.NoError(t, err)
	require.Equal(t, "true", s)

	s, err = value.CoerceToString(value.Null{})
	require.NoError(t, err)
	require.Equal(t, "NULL", s)

	s, err = value.CoerceToString(value.Newline{})
	require.NoError(t, err)
	require.Equal(t, "\n", s)

	_, err = value.CoerceToString(&value.ObjClass{Name: &value.ObjString{Chars: "C"}})
	require.Error(t, err)
}

func TestKeyOf(t *testing.T) {
	_, ok := value.KeyOf(value.Bool(true))
	require.True(t, ok)

	_, ok = value.KeyOf(&value.ObjString{Chars: "x"})
	require.True(t, ok)

	_, ok = value.KeyOf(&value.ObjClass{Name: &value.ObjString{Chars: "C"}})
	require.False(t, ok)
}
