package vm

import "github.com/wldfngrs/olive/lang/value"

// captureUpvalue returns the open upvalue for stack slot, creating one if
// none exists yet. The VM's open-upvalue list is sorted by descending slot
// so both this lookup and closeUpvalues only ever need to walk the prefix
// of upvalues that could possibly be affected.
func (vm *VM) captureUpvalue(slot int) *value.ObjUpvalue {
	var prev *value.ObjUpvalue
	cur := vm.openUpvalues
	for cur != nil && cur.Slot > slot {
		prev = cur
		cur = cur.NextOpen
	}
	if cur != nil && cur.Slot == slot {
		return cur
	}

	// linked into the open-upvalue list (a GC root) before registerObject,
	// which may collect.
	uv := &value.ObjUpvalue{Location: &vm.stack[slot], Slot: slot, NextOpen: cur}
	if prev == nil {
		vm.openUpvalues = uv
	} else {
		prev.NextOpen = uv
	}
	vm.registerObject(uv)
	return uv
}

// closeUpvalues closes every open upvalue at or above lastSlot, copying each
// one's stack value into itself before the frame that owned that slot goes
// away. Because the list is sorted descending, the affected upvalues are
// always exactly its head.
func (vm *VM) closeUpvalues(lastSlot int) {
	for vm.openUpvalues != nil && vm.openUpvalues.Slot >= lastSlot {
		uv := vm.openUpvalues
		vm.openUpvalues = uv.NextOpen
		uv.Close()
	}
}
