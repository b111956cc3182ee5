package value

import "fmt"

// formatNumber renders n using the shortest round-trip representation, per
// the specification's string-conversion table ("Number | shortest
// round-trip (%g)").
func formatNumber(n float64) string {
	return fmt.Sprintf("%g", n)
}

// CoerceToString implements the §4.6 string-conversion table used when one
// operand of `+` is a string or Newline and the other is not: every
// primitive kind has a defined rendering, but a non-String Obj is a
// conversion error.
func CoerceToString(v Value) (string, error) {
	switch v := v.(type) {
	case Null:
		// the coercion table renders null as "NULL", distinct from Null's own
		// String() ("null") used for general debug/print output.
		return "NULL", nil
	case Bool, Number, Newline:
		return v.String(), nil
	case *ObjString:
		return v.Chars, nil
	default:
		return "", fmt.Errorf("cannot convert %s to string", v.Type())
	}
}
