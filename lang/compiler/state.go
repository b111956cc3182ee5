package compiler

import "github.com/wldfngrs/olive/lang/value"

// scopeCount bounds both the locals array and the upvalues array of a single
// function, matching the 8-bit slot operands GET_LOCAL/GET_UPVALUE encode.
const scopeCount = 256

type funcKind int

const (
	kindScript funcKind = iota
	kindFunction
	kindMethod
	kindInitializer
)

// local is one entry of a funcState's flat locals array. depth is -1 while
// the local is declared but its initializer hasn't finished compiling yet,
// which is what makes `var x = x;` a compile error: the reference to x on
// the right-hand side resolves to this same uninitialized slot.
type local struct {
	name       string
	depth      int
	isCaptured bool
	isConst    bool
}

type upvalue struct {
	index   byte
	isLocal bool
}

// loop tracks one active loop or switch's break/continue targets. A switch
// forwards continue to the nearest enclosing loop via prev, since a switch
// has no loop-back target of its own.
type loop struct {
	prev      *loop
	isSwitch  bool
	exits     []int // BREAK placeholder offsets, patched to after the construct
	continues []int // CONTINUE placeholder offsets, patched to just before the closing LOOP
}

// classState tracks whether the class currently being compiled has a base
// class, so `base` can be rejected at compile time outside of one.
type classState struct {
	enclosing *classState
	hasBase   bool
}

// funcState is one frame of the compiler chain: one per function body being
// compiled, linked to its lexically enclosing frame so name resolution can
// walk outward for upvalue capture.
type funcState struct {
	enclosing *funcState
	function  *value.ObjFunction
	kind      funcKind

	locals     []local
	scopeDepth int
	upvalues   []upvalue

	loop *loop
}

func (f *funcState) resolveLocal(name string, p *Parser) (slot int, ok bool) {
	for i := len(f.locals) - 1; i >= 0; i-- {
		if f.locals[i].name == name {
			if f.locals[i].depth == -1 {
				p.errorAtPrevious("cannot read local variable %q in its own initializer", name)
			}
			return i, true
		}
	}
	return 0, false
}

// resolveUpvalue searches f's enclosing chain for name, registering an
// upvalue in every intermediate frame along the way (recursive capture), per
// the specification's upvalue-capture algorithm.
func (f *funcState) resolveUpvalue(name string, p *Parser) (slot int, ok bool) {
	if f.enclosing == nil {
		return 0, false
	}
	if local, found := f.enclosing.resolveLocal(name, p); found {
		f.enclosing.locals[local].isCaptured = true
		return f.addUpvalue(byte(local), true, p), true
	}
	if up, found := f.enclosing.resolveUpvalue(name, p); found {
		return f.addUpvalue(byte(up), false, p), true
	}
	return 0, false
}

func (f *funcState) addUpvalue(index byte, isLocal bool, p *Parser) int {
	for i, u := range f.upvalues {
		if u.index == index && u.isLocal == isLocal {
			return i
		}
	}
	if len(f.upvalues) >= scopeCount {
		p.errorAtPrevious("too many captured variables in one function")
		return 0
	}
	f.upvalues = append(f.upvalues, upvalue{index: index, isLocal: isLocal})
	f.function.NumUpvalues = len(f.upvalues)
	return len(f.upvalues) - 1
}
