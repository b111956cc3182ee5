package value

// ObjString is an interned string. Two ObjString pointers reachable from
// the VM are equal (by Go's ==) iff their Chars are byte-equal; the VM's
// intern table is what enforces that invariant at construction time, this
// type itself is just the payload.
type ObjString struct {
	Header
	Chars string
}

func (s *ObjString) String() string { return s.Chars }
func (*ObjString) Type() string     { return "string" }
