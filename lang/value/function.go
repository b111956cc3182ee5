package value

import "github.com/wldfngrs/olive/lang/chunk"

// ObjFunction is a compiled function: its own chunk of bytecode, arity, and
// a borrowed handle to the constants pool its chunk's CONSTANT operands
// index into. Immutable once the compiler finishes it.
type ObjFunction struct {
	Header
	Chunk       *chunk.Chunk
	Arity       int
	NumUpvalues int
	Name        *ObjString // nil for the top-level script
}

func (f *ObjFunction) String() string {
	if f.Name == nil {
		return "<script>"
	}
	return "<fn " + f.Name.Chars + ">"
}
func (*ObjFunction) Type() string { return "function" }

// UpvalueCount satisfies chunk's upvalueCounter interface, letting the
// disassembler walk a CLOSURE instruction's trailing (is_local, index)
// pairs without lang/chunk importing this package.
func (f *ObjFunction) UpvalueCount() int { return f.NumUpvalues }

// ObjUpvalue is a reference to a variable that outlived (or may yet outlive)
// the stack frame that declared it. While open, Location points into a
// slot of the VM's value stack; closing copies that slot's value into
// Closed and repoints Location at it.
type ObjUpvalue struct {
	Header
	Location *Value
	Closed   Value

	// NextOpen links this upvalue into the VM's open-upvalue list, sorted by
	// descending stack address, distinct from Header.Next (the all-objects
	// list). Nil once closed.
	NextOpen *ObjUpvalue

	// Slot is the stack index Location pointed into while open, letting the
	// VM walk the open-upvalue list and decide what to close purely from
	// this field, without doing pointer arithmetic against the stack array.
	// Meaningless once Close has run.
	Slot int
}

func (u *ObjUpvalue) String() string { return "<upvalue>" }
func (*ObjUpvalue) Type() string     { return "upvalue" }

// Close moves the referenced stack value into the upvalue itself and
// repoints Location at it, detaching it from the stack slot it used to
// track.
func (u *ObjUpvalue) Close() {
	u.Closed = *u.Location
	u.Location = &u.Closed
	u.NextOpen = nil
}

// ObjClosure pairs a Function with its own array of upvalues; multiple
// closures may share one Function but never share upvalue arrays.
type ObjClosure struct {
	Header
	Function *ObjFunction
	Upvalues []*ObjUpvalue
}

func (c *ObjClosure) String() string { return c.Function.String() }
func (*ObjClosure) Type() string     { return "closure" }
