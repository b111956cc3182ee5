// Package value implements Olive's runtime value representation: the
// Bool/Null/Number/Newline primitives and the Obj-rooted heap object
// variants (String, Function, Closure, Upvalue, Class, Instance,
// BoundMethod, Native).
package value

// Value is the interface implemented by every value the VM can hold on its
// stack, in a local, or in a table. Primitive kinds (Bool, Null, Number,
// Newline) are plain Go values; heap kinds are pointers to a type embedding
// Header, so the garbage collector can treat any Value behind an Obj check
// uniformly.
type Value interface {
	String() string
	Type() string
}

// Bool is the Value for the two boolean literals.
type Bool bool

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}
func (Bool) Type() string { return "bool" }

// Null is the Value for the null literal. There is exactly one null value;
// it is represented as an empty struct so all Null values compare equal
// under Go's == (used by the VM's identity/structural equality check).
type Null struct{}

func (Null) String() string { return "null" }
func (Null) Type() string   { return "null" }

// Number is the Value for Olive's one numeric type, an IEEE-754 double.
type Number float64

func (n Number) String() string { return formatNumber(float64(n)) }
func (Number) Type() string     { return "number" }

// Newline is a sentinel Value used only by the string-coercion rules for
// interpolation and mixed `+`: it renders as a literal newline character,
// matching how the interpolation lowering treats a bare virtual-line break
// passed through a concatenation chain.
type Newline struct{}

func (Newline) String() string { return "\n" }
func (Newline) Type() string   { return "newline" }

// Truthy implements the language's truthiness rule: null and false are
// falsey, everything else (including zero and the empty string) is truthy.
func Truthy(v Value) bool {
	switch v := v.(type) {
	case Null:
		return false
	case Bool:
		return bool(v)
	default:
		return true
	}
}
