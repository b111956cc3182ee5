// Package vm implements Olive's stack-based bytecode interpreter: the
// fetch-decode-dispatch loop, call frames, closures, classes, the
// tri-color mark-sweep collector, and the native-function bridge.
package vm

import (
	"io"
	"os"

	"github.com/dolthub/swiss"

	"github.com/wldfngrs/olive/lang/chunk"
	"github.com/wldfngrs/olive/lang/compiler"
	"github.com/wldfngrs/olive/lang/native"
	"github.com/wldfngrs/olive/lang/table"
	"github.com/wldfngrs/olive/lang/value"
)

// framesMax bounds simultaneous call depth; CALL past this is a runtime
// "stack overflow" error rather than a Go stack overflow.
const framesMax = 64

// stackMax is sized so the value stack is allocated once, as a fixed array,
// and never reallocated — open upvalues hold raw pointers into it
// (*value.Value), and a reallocating slice would invalidate every such
// pointer on growth. 256 is the largest number of locals one function frame
// can declare (scopeCount in lang/compiler); expression temporaries pushed
// above a frame's locals are not counted in this bound, and push does not
// check it.
const stackMax = framesMax * 256

// CallFrame is one active function invocation: the closure running, its
// instruction pointer into that closure's chunk, and the base index into
// the VM's value stack where its locals begin (slot 0 is the receiver for a
// method, or unused for a plain function).
type CallFrame struct {
	closure *value.ObjClosure
	ip      int
	slots   int
}

// Result classifies how Interpret finished, mirroring the specification's
// three-way host API result.
type Result int

const (
	ResultOK Result = iota
	ResultCompileError
	ResultRuntimeError
)

// methodCacheKey identifies one class's resolution of one method name, used
// to memoize repeated GET_PROPERTY/INVOKE lookups against the same class.
type methodCacheKey struct {
	class *value.ObjClass
	name  string
}

// VM is one Olive execution context: a persistent REPL session if Interpret
// is called more than once, or a single script run otherwise. Globals, the
// string intern set, and the compiler's global_constant_index all live on
// VM and are never reset between Interpret calls, which is what lets a REPL
// keep seeing variables declared on earlier lines.
type VM struct {
	stack [stackMax]value.Value
	top   int

	frames     [framesMax]CallFrame
	frameCount int

	openUpvalues *value.ObjUpvalue

	globals     table.Table[value.Value]
	globalNames *compiler.GlobalTable
	interner    *value.Interner
	constants   *chunk.ValueArray

	natives     *native.Registry
	methodCache *swiss.Map[methodCacheKey, *value.ObjClosure]

	initString *value.ObjString

	switchFallThrough bool

	// objects is the intrusive singly-linked list of every heap-allocated
	// Obj the VM itself has allocated at run time (not compile-time
	// ObjFunction values — see gc.go for why those don't need to be here).
	objects        value.Obj
	bytesAllocated int
	nextGC         int

	// StressGC forces a collection on every single allocation, for testing
	// GC correctness under maximal pressure rather than realistic timing.
	StressGC bool

	// Stdout is where the `print` statement writes. Defaults to os.Stdout.
	Stdout io.Writer
}

const initialNextGC = 1 << 10 // 1 KiB; doubled on every collection thereafter

// New returns a freshly initialized VM: empty globals, an empty string
// intern set, and the standard native functions (currently just clock)
// registered and exposed as globals.
func New() *VM {
	vm := &VM{
		globalNames: compiler.NewGlobalTable(),
		interner:    value.NewInterner(),
		constants:   &chunk.ValueArray{},
		natives:     native.NewRegistry(),
		methodCache: swiss.NewMap[methodCacheKey, *value.ObjClosure](8),
		Stdout:      os.Stdout,
		nextGC:      initialNextGC,
	}
	vm.interner.OnAlloc = func(s *value.ObjString) { vm.registerObject(s) }
	vm.initString = vm.interner.Intern("init")
	vm.RegisterNative("clock", native.Clock)
	return vm
}

// RegisterNative wires fn into vm.natives, the GC's object list, and the
// globals table, then pre-declares it in globalNames so the compiler can
// resolve a bare reference to name as an ordinary global read — exactly the
// defineNative sequence in the original VM (push the name and the function
// value so an interleaved GC can't collect either before the table insert
// completes; here there is no interleaved GC to race, since collections
// only run synchronously inside registerObject, but the ordering --
// register before any further allocation that depends on it -- is kept for
// fidelity). Hosts call it before the first Interpret to expose their own
// functions to scripts.
func (vm *VM) RegisterNative(name string, fn value.NativeFn) {
	n := vm.natives.Register(name, fn)
	vm.registerObject(n)
	nameObj := vm.interner.Intern(name)
	idx := vm.constants.AddDedup(nameObj)
	vm.globalNames.DeclareNative(name, idx)
	vm.globals.Set(table.StringKey(name), n)
}

// Interpret compiles and runs source against this VM's persistent globals,
// intern set, and constant pool. There is no separate REPL mode: a caller
// running a REPL calls this repeatedly against the same VM, and the turn
// isolation this implies (fresh compiler/chunk per call, same globals and
// interned strings across calls) falls out naturally from source and
// constants/globalNames/interner being threaded through exactly as shown
// here, with no special-cased REPL branch required.
func (vm *VM) Interpret(source []byte) (Result, error) {
	fn, errs := compiler.Compile(source, vm.constants, vm.globalNames, vm.interner)
	if len(errs) > 0 {
		return ResultCompileError, errs
	}

	vm.top = 0
	vm.frameCount = 0
	vm.openUpvalues = nil

	// rooted on the stack before registerObject, which may collect.
	closure := &value.ObjClosure{Function: fn}
	vm.push(closure)
	vm.registerObject(closure)
	if err := vm.call(closure, 0); err != nil {
		return ResultRuntimeError, err
	}
	if err := vm.run(); err != nil {
		return ResultRuntimeError, err
	}
	return ResultOK, nil
}

// InterpretREPL runs one turn of a REPL session. It is Interpret under
// another name: see SPEC_FULL.md's "REPL turn isolation" note for why no
// separate code path is needed.
func (vm *VM) InterpretREPL(source []byte) (Result, error) {
	return vm.Interpret(source)
}

// --- value stack ------------------------------------------------------

func (vm *VM) push(v value.Value) {
	vm.stack[vm.top] = v
	vm.top++
}

func (vm *VM) pop() value.Value {
	vm.top--
	return vm.stack[vm.top]
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.top-1-distance]
}

// --- calling ------------------------------------------------------------

// call pushes a new frame for closure, validating arity and the frame-depth
// cap. argc values plus the callee itself are already sitting on top of the
// stack, in the same layout CALL expects: [..., callee, arg0, ..., argN-1].
func (vm *VM) call(closure *value.ObjClosure, argc int) error {
	if argc != closure.Function.Arity {
		return vm.runtimeError("expected %d arguments but got %d", closure.Function.Arity, argc)
	}
	if vm.frameCount == framesMax {
		return vm.runtimeError("stack overflow")
	}
	frame := &vm.frames[vm.frameCount]
	vm.frameCount++
	frame.closure = closure
	frame.ip = 0
	frame.slots = vm.top - argc - 1
	return nil
}

// callValue dispatches a CALL/INVOKE-style call by the callee's concrete
// kind: a plain closure, a class (construction), a bound method, or a
// native function.
func (vm *VM) callValue(callee value.Value, argc int) error {
	switch c := callee.(type) {
	case *value.ObjClosure:
		return vm.call(c, argc)

	case *value.ObjClass:
		calleeSlot := vm.top - argc - 1
		inst := &value.ObjInstance{Class: c}
		vm.stack[calleeSlot] = inst
		vm.registerObject(inst)
		if c.Init != nil {
			return vm.call(c.Init, argc)
		}
		if argc != 0 {
			return vm.runtimeError("expected 0 arguments but got %d", argc)
		}
		vm.top = calleeSlot + 1
		return nil

	case *value.ObjBoundMethod:
		calleeSlot := vm.top - argc - 1
		vm.stack[calleeSlot] = c.Receiver
		return vm.call(c.Method, argc)

	case *value.ObjNative:
		args := vm.stack[vm.top-argc : vm.top]
		result, ok := c.Fn(argc, args)
		if !ok {
			return vm.runtimeError("call to native function %q failed", c.Name)
		}
		vm.top -= argc + 1
		vm.push(result)
		return nil

	default:
		return vm.runtimeError("can only call functions and classes")
	}
}

// resolveMethod looks up name on cls, consulting (and populating) the
// method-resolution cache before falling back to the class's own method
// table. Per SPEC_FULL.md's domain-stack wiring, this cache is the VM's
// second use of github.com/dolthub/swiss.
func (vm *VM) resolveMethod(cls *value.ObjClass, name string) (*value.ObjClosure, bool) {
	key := methodCacheKey{class: cls, name: name}
	if closure, ok := vm.methodCache.Get(key); ok {
		return closure, true
	}
	closure, ok := cls.Methods.Get(table.StringKey(name))
	if !ok {
		return nil, false
	}
	vm.methodCache.Put(key, closure)
	return closure, true
}

// invoke fuses a property read with a call, per §4.3: an instance field
// shadows a method of the same name (and is called generically, as any
// other callable value would be); otherwise the receiver's class must
// supply the method.
func (vm *VM) invoke(name string, argc int) error {
	receiverSlot := vm.top - argc - 1
	inst, ok := vm.stack[receiverSlot].(*value.ObjInstance)
	if !ok {
		return vm.runtimeError("only instances have methods")
	}
	if field, ok := inst.Fields.Get(table.StringKey(name)); ok {
		vm.stack[receiverSlot] = field
		return vm.callValue(field, argc)
	}
	method, ok := vm.resolveMethod(inst.Class, name)
	if !ok {
		return vm.runtimeError("undefined property %q", name)
	}
	return vm.call(method, argc)
}
