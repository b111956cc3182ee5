package value

import "fmt"

// Equal implements the language's equality: structural for primitives,
// identity for heap objects — except strings, where identity and content
// equality coincide because of interning, so a plain Chars comparison would
// also work but pointer identity is what the specification actually calls
// for.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case Bool:
		b, ok := b.(Bool)
		return ok && a == b
	case Null:
		_, ok := b.(Null)
		return ok
	case Number:
		b, ok := b.(Number)
		return ok && a == b
	case Newline:
		_, ok := b.(Newline)
		return ok
	default:
		return a == b // identity for every Obj variant, including *ObjString
	}
}

// Compare implements the natural ordering used by <, <=, >, >=: numeric
// operands compare by value, string operands compare lexicographically by
// byte, and any other pairing (including a type mismatch) is a runtime
// error.
func Compare(a, b Value) (int, error) {
	bType := b.Type()
	switch a := a.(type) {
	case Number:
		nb, ok := b.(Number)
		if !ok {
			return 0, fmt.Errorf("cannot compare %s and %s", a.Type(), bType)
		}
		switch {
		case a < nb:
			return -1, nil
		case a > nb:
			return 1, nil
		default:
			return 0, nil
		}
	case *ObjString:
		sb, ok := b.(*ObjString)
		if !ok {
			return 0, fmt.Errorf("cannot compare %s and %s", a.Type(), bType)
		}
		switch {
		case a.Chars < sb.Chars:
			return -1, nil
		case a.Chars > sb.Chars:
			return 1, nil
		default:
			return 0, nil
		}
	default:
		return 0, fmt.Errorf("operands must be numbers or strings")
	}
}
