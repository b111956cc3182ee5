package value

// NativeFn is a host function exposed to scripts via register_native. It
// returns the result value, or ok=false to signal a runtime error (in which
// case the returned Value, if any, is ignored and the VM raises an error
// using the function's name).
type NativeFn func(argc int, argv []Value) (result Value, ok bool)

// ObjNative wraps a host function so it can be called like any other
// callable Value.
type ObjNative struct {
	Header
	Name string
	Fn   NativeFn
}

func (n *ObjNative) String() string { return "<native fn " + n.Name + ">" }
func (*ObjNative) Type() string     { return "native function" }
