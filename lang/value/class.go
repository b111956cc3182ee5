package value

import "github.com/wldfngrs/olive/lang/table"

// ObjClass is a single-inheritance class value. Methods maps method name to
// closure; Init, if non-nil, is the cached initializer closure, set when the
// class's `init` method is defined (or inherited) so that instantiation never
// re-resolves it.
type ObjClass struct {
	Header
	Name    *ObjString
	Methods table.Table[*ObjClosure]
	Init    *ObjClosure
}

func (c *ObjClass) String() string { return c.Name.Chars }
func (*ObjClass) Type() string     { return "class" }

// Inherit copies every method of base into c's method table. Called once,
// by the INHERIT opcode, right after c is declared with `class C : Base`.
func (c *ObjClass) Inherit(base *ObjClass) {
	base.Methods.Range(func(k table.Key, closure *ObjClosure) bool {
		c.Methods.Set(k, closure)
		return true
	})
	c.Init = base.Init
}

// ObjInstance is an instance of a class: a class pointer plus its own field
// table.
type ObjInstance struct {
	Header
	Class  *ObjClass
	Fields table.Table[Value]
}

func (i *ObjInstance) String() string { return i.Class.Name.Chars + " instance" }
func (*ObjInstance) Type() string     { return "instance" }

// ObjBoundMethod pairs a receiver with one of its class's closures, the
// result of evaluating `instance.method` without calling it.
type ObjBoundMethod struct {
	Header
	Receiver Value
	Method   *ObjClosure
}

func (m *ObjBoundMethod) String() string { return m.Method.String() }
func (*ObjBoundMethod) Type() string     { return "bound method" }
