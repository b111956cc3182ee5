package vm

import (
	"github.com/wldfngrs/olive/lang/table"
	"github.com/wldfngrs/olive/lang/value"
)

// gcGrowthFactor is how much nextGC scales after each collection, per the
// specification's "next_gc is multiplied by a growth factor (2)".
const gcGrowthFactor = 2

// objSize is a rough, constant-per-kind estimate of an Obj's footprint, used
// only to drive the bytesAllocated/nextGC heuristic that decides when to
// collect. It does not need to be exact: Go's own allocator and GC do the
// real memory accounting underneath; this one exists to faithfully
// reproduce the specification's mark-sweep trigger condition and the
// observable behavior (collections happen, and happen more often under
// StressGC) rather than to track real bytes.
func objSize(obj value.Obj) int {
	switch o := obj.(type) {
	case *value.ObjString:
		return 16 + len(o.Chars)
	case *value.ObjClosure:
		return 16 + 8*len(o.Upvalues)
	case *value.ObjUpvalue:
		return 24
	case *value.ObjClass:
		return 32
	case *value.ObjInstance:
		return 32
	case *value.ObjBoundMethod:
		return 24
	case *value.ObjFunction:
		return 32
	case *value.ObjNative:
		return 24
	default:
		return 16
	}
}

// registerObject links obj into the VM's all-objects list and accounts for
// its allocation, triggering a collection if the allocator has crossed
// nextGC (or StressGC demands one on every allocation). Every Obj the VM
// allocates at run time — closures, upvalues, instances, classes, bound
// methods, natives, and interned strings (via Interner.OnAlloc) — passes
// through here exactly once.
func (vm *VM) registerObject(obj value.Obj) {
	h := obj.GCHeader()
	h.Next = vm.objects
	vm.objects = obj
	vm.bytesAllocated += objSize(obj)

	if vm.StressGC || vm.bytesAllocated > vm.nextGC {
		vm.collectGarbage()
	}
}

// collectGarbage runs one full mark-sweep cycle: mark every root, transitively
// blacken every object reached from a root, weak-sweep the string intern
// table, then sweep vm.objects of everything left unmarked.
func (vm *VM) collectGarbage() {
	var gray []value.Obj
	mark := func(v value.Value) {
		if obj, ok := v.(value.Obj); ok {
			h := obj.GCHeader()
			if !h.Marked {
				h.Marked = true
				gray = append(gray, obj)
			}
		}
	}
	markObj := func(obj value.Obj) {
		if obj == nil {
			return
		}
		h := obj.GCHeader()
		if !h.Marked {
			h.Marked = true
			gray = append(gray, obj)
		}
	}

	// roots: the value stack, active frames' closures, the open-upvalue
	// list, the globals table, the native registry, the init-method
	// sentinel string, and — conservatively — the entire shared constants
	// pool (see the note below).
	for i := 0; i < vm.top; i++ {
		mark(vm.stack[i])
	}
	for i := 0; i < vm.frameCount; i++ {
		markObj(vm.frames[i].closure)
	}
	for uv := vm.openUpvalues; uv != nil; uv = uv.NextOpen {
		markObj(uv)
	}
	vm.globals.Range(func(_ table.Key, v value.Value) bool {
		mark(v)
		return true
	})
	vm.natives.Range(func(_ string, n *value.ObjNative) bool {
		markObj(n)
		return true
	})

	if vm.initString != nil {
		markObj(vm.initString)
	}

	// The shared constants pool holds every compiled ObjFunction and every
	// literal the compiler interned, for the lifetime of the VM (REPL
	// entries are never evicted, per lang/chunk's ValueArray doc comment).
	// Treating it as a root — rather than threading reachability through
	// CLOSURE operands that may belong to functions no live closure
	// references anymore — means a function value technically outlives the
	// last closure over it, which is harmless (it costs the one ObjFunction
	// and its Name string, not the closures/instances/etc. built from it)
	// and avoids having to track per-entry liveness in a pool that is, by
	// design, append-only and shared across REPL turns.
	for _, c := range vm.constants.Values {
		if v, ok := c.(value.Value); ok {
			mark(v)
		}
	}

	for len(gray) > 0 {
		n := len(gray) - 1
		obj := gray[n]
		gray = gray[:n]
		vm.blacken(obj, markObj, mark)
	}

	// Weak-sweep the intern table before the general sweep: an interned
	// string that nothing else marked is removed from the table here, then
	// freed below in the same pass as everything else unmarked.
	vm.interner.Sweep()

	var prev value.Obj
	cur := vm.objects
	for cur != nil {
		h := cur.GCHeader()
		next := h.Next
		if h.Marked {
			h.Marked = false
			prev = cur
		} else {
			vm.bytesAllocated -= objSize(cur)
			if prev == nil {
				vm.objects = next
			} else {
				prev.GCHeader().Next = next
			}
		}
		cur = next
	}

	vm.nextGC = vm.bytesAllocated * gcGrowthFactor
	if vm.nextGC < initialNextGC {
		vm.nextGC = initialNextGC
	}
}

// blacken marks every object directly reachable from obj, per its concrete
// kind — the "color every outgoing reference" half of tri-color marking.
func (vm *VM) blacken(obj value.Obj, markObj func(value.Obj), mark func(value.Value)) {
	switch o := obj.(type) {
	case *value.ObjUpvalue:
		mark(*o.Location)
	case *value.ObjClosure:
		markObj(o.Function)
		for _, up := range o.Upvalues {
			// CLOSURE registers the closure before filling its upvalues
			if up != nil {
				markObj(up)
			}
		}
	case *value.ObjFunction:
		if o.Name != nil { // the top-level script has no name
			markObj(o.Name)
		}
	case *value.ObjClass:
		markObj(o.Name)
		if o.Init != nil {
			markObj(o.Init)
		}
		o.Methods.Range(func(_ table.Key, closure *value.ObjClosure) bool {
			markObj(closure)
			return true
		})
	case *value.ObjInstance:
		markObj(o.Class)
		o.Fields.Range(func(_ table.Key, v value.Value) bool {
			mark(v)
			return true
		})
	case *value.ObjBoundMethod:
		mark(o.Receiver)
		markObj(o.Method)
	case *value.ObjString, *value.ObjNative:
		// no outgoing references
	}
}
