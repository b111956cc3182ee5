package value

import "github.com/wldfngrs/olive/lang/table"

// Interner is the string-intern set described by the data model: for any two
// interned strings with identical content, Intern returns the same
// *ObjString, so reference equality can stand in for content equality
// everywhere a Value is compared. It is shared by the compiler (which interns
// every name and string literal it turns into a constant) and the VM (which
// interns the result of runtime string concatenation), and persists across
// REPL turns so a name compiled in one turn is identical to the same name
// compiled in the next.
type Interner struct {
	strings table.Table[*ObjString]

	// OnAlloc, if set, is called with every newly allocated *ObjString
	// before it is inserted into the intern table — mirroring the original
	// VM's discipline of making a fresh allocation reachable from a root
	// before doing anything that could trigger a collection. The VM sets
	// this to its own object-tracking hook so every interned string,
	// whether allocated by the compiler or by runtime concatenation, is
	// linked into the same all-objects list the collector walks.
	OnAlloc func(*ObjString)
}

// NewInterner returns an empty intern set.
func NewInterner() *Interner {
	return &Interner{}
}

// Intern returns the canonical *ObjString for s, allocating one the first
// time s is seen.
func (in *Interner) Intern(s string) *ObjString {
	key := table.StringKey(s)
	if v, ok := in.strings.Get(key); ok {
		return v
	}
	obj := &ObjString{Chars: s}
	if in.OnAlloc != nil {
		in.OnAlloc(obj)
	}
	in.strings.Set(key, obj)
	return obj
}

// Sweep removes every interned string whose GC mark bit is unset, called by
// the collector after marking roots and before sweeping the general object
// list. This is what keeps otherwise-unreachable interned strings from being
// pinned alive by the intern table itself.
func (in *Interner) Sweep() {
	var dead []string
	in.strings.Range(func(k table.Key, s *ObjString) bool {
		if !s.Marked {
			dead = append(dead, s.Chars)
		}
		return true
	})
	for _, chars := range dead {
		in.strings.Delete(table.StringKey(chars))
	}
}
