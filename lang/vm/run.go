package vm

import (
	"fmt"

	"github.com/wldfngrs/olive/lang/chunk"
	"github.com/wldfngrs/olive/lang/table"
	"github.com/wldfngrs/olive/lang/value"
)

func (vm *VM) readByte(frame *CallFrame) byte {
	b := frame.closure.Function.Chunk.Code[frame.ip]
	frame.ip++
	return b
}

func (vm *VM) readUint16(frame *CallFrame) uint16 {
	lo := frame.closure.Function.Chunk.Code[frame.ip]
	hi := frame.closure.Function.Chunk.Code[frame.ip+1]
	frame.ip += 2
	return uint16(lo) | uint16(hi)<<8
}

// readConstant reads a short (1-byte) or long (3-byte little-endian) pool
// index, per the CONSTANT/CONSTANT_LONG and GET_GLOBAL/etc. encoding.
func (vm *VM) readConstant(frame *CallFrame, long bool) any {
	var idx int
	if long {
		b0 := vm.readByte(frame)
		b1 := vm.readByte(frame)
		b2 := vm.readByte(frame)
		idx = int(b0) | int(b1)<<8 | int(b2)<<16
	} else {
		idx = int(vm.readByte(frame))
	}
	return vm.constants.Values[idx]
}

func (vm *VM) readString(frame *CallFrame, long bool) *value.ObjString {
	return vm.readConstant(frame, long).(*value.ObjString)
}

// run is the fetch-decode-dispatch loop. It drains frames until the frame
// pushed by the Interpret call that invoked it returns, at which point
// frameCount reaches 0 and this returns nil for success, or an error
// (always a *RuntimeError) the moment any opcode fails.
func (vm *VM) run() error {
	frame := &vm.frames[vm.frameCount-1]

	for {
		op := chunk.Opcode(vm.readByte(frame))

		switch op {
		case chunk.CONSTANT:
			vm.push(vm.readConstant(frame, false).(value.Value))
		case chunk.CONSTANT_LONG:
			vm.push(vm.readConstant(frame, true).(value.Value))

		case chunk.NULL:
			vm.push(value.Null{})
		case chunk.TRUE:
			vm.push(value.Bool(true))
		case chunk.FALSE:
			vm.push(value.Bool(false))

		case chunk.POP:
			vm.pop()
		case chunk.POPN:
			n := int(vm.readByte(frame))
			vm.top -= n

		case chunk.GET_LOCAL:
			slot := int(vm.readByte(frame))
			vm.push(vm.stack[frame.slots+slot])
		case chunk.SET_LOCAL:
			slot := int(vm.readByte(frame))
			vm.stack[frame.slots+slot] = vm.peek(0)

		case chunk.GET_UPVALUE:
			slot := int(vm.readByte(frame))
			vm.push(*frame.closure.Upvalues[slot].Location)
		case chunk.SET_UPVALUE:
			slot := int(vm.readByte(frame))
			*frame.closure.Upvalues[slot].Location = vm.peek(0)

		case chunk.GET_GLOBAL, chunk.GET_GLOBAL_LONG:
			name := vm.readString(frame, op == chunk.GET_GLOBAL_LONG)
			v, ok := vm.globals.Get(table.StringKey(name.Chars))
			if !ok {
				return vm.runtimeError("undefined variable %q", name.Chars)
			}
			vm.push(v)

		case chunk.DEFINE_GLOBAL, chunk.DEFINE_GLOBAL_LONG:
			name := vm.readString(frame, op == chunk.DEFINE_GLOBAL_LONG)
			vm.globals.Set(table.StringKey(name.Chars), vm.peek(0))
			vm.pop()

		case chunk.SET_GLOBAL, chunk.SET_GLOBAL_LONG:
			name := vm.readString(frame, op == chunk.SET_GLOBAL_LONG)
			isNew := vm.globals.Set(table.StringKey(name.Chars), vm.peek(0))
			if isNew {
				vm.globals.Delete(table.StringKey(name.Chars))
				return vm.runtimeError("undefined variable %q", name.Chars)
			}

		case chunk.GET_PROPERTY:
			idx := int(vm.readByte(frame))
			name := vm.constants.Values[idx].(*value.ObjString)
			inst, ok := vm.peek(0).(*value.ObjInstance)
			if !ok {
				return vm.runtimeError("only instances have properties")
			}
			if field, ok := inst.Fields.Get(table.StringKey(name.Chars)); ok {
				vm.stack[vm.top-1] = field
				break
			}
			method, ok := vm.resolveMethod(inst.Class, name.Chars)
			if !ok {
				return vm.runtimeError("undefined property %q", name.Chars)
			}
			// replaces the receiver on the stack before registerObject,
			// which may collect.
			bm := &value.ObjBoundMethod{Receiver: inst, Method: method}
			vm.stack[vm.top-1] = bm
			vm.registerObject(bm)

		case chunk.SET_PROPERTY:
			idx := int(vm.readByte(frame))
			name := vm.constants.Values[idx].(*value.ObjString)
			val := vm.pop()
			inst, ok := vm.pop().(*value.ObjInstance)
			if !ok {
				return vm.runtimeError("only instances have fields")
			}
			inst.Fields.Set(table.StringKey(name.Chars), val)
			vm.push(val)

		case chunk.GET_BASE:
			idx := int(vm.readByte(frame))
			name := vm.constants.Values[idx].(*value.ObjString)
			base, ok := vm.pop().(*value.ObjClass)
			if !ok {
				return vm.runtimeError("base must be a class")
			}
			method, ok := vm.resolveMethod(base, name.Chars)
			if !ok {
				return vm.runtimeError("undefined property %q", name.Chars)
			}
			receiver := vm.peek(0)
			bm := &value.ObjBoundMethod{Receiver: receiver, Method: method}
			vm.stack[vm.top-1] = bm
			vm.registerObject(bm)

		case chunk.DELATTR:
			name, ok := vm.pop().(*value.ObjString)
			if !ok {
				return vm.runtimeError("attribute name must be a string")
			}
			inst, ok := vm.pop().(*value.ObjInstance)
			if !ok {
				return vm.runtimeError("only instances have attributes")
			}
			if !inst.Fields.Delete(table.StringKey(name.Chars)) {
				return vm.runtimeError("undefined property %q", name.Chars)
			}

		case chunk.EQUAL:
			b, a := vm.pop(), vm.pop()
			vm.push(value.Bool(value.Equal(a, b)))
		case chunk.NOT_EQUAL:
			b, a := vm.pop(), vm.pop()
			vm.push(value.Bool(!value.Equal(a, b)))

		case chunk.SWITCH_EQUAL:
			v := vm.pop()
			if vm.switchFallThrough {
				vm.switchFallThrough = false
				vm.push(value.Bool(true))
			} else {
				vm.push(value.Bool(value.Equal(vm.peek(0), v)))
			}

		case chunk.GREATER, chunk.GREATER_EQUAL, chunk.LESS, chunk.LESS_EQUAL:
			b, a := vm.pop(), vm.pop()
			cmp, err := value.Compare(a, b)
			if err != nil {
				return vm.runtimeError("%s", err)
			}
			var result bool
			switch op {
			case chunk.GREATER:
				result = cmp > 0
			case chunk.GREATER_EQUAL:
				result = cmp >= 0
			case chunk.LESS:
				result = cmp < 0
			case chunk.LESS_EQUAL:
				result = cmp <= 0
			}
			vm.push(value.Bool(result))

		case chunk.TERNARY:
			elseVal := vm.pop()
			thenVal := vm.pop()
			cond := vm.pop()
			if value.Truthy(cond) {
				vm.push(thenVal)
			} else {
				vm.push(elseVal)
			}

		case chunk.ADD:
			if err := vm.add(); err != nil {
				return err
			}
		case chunk.SUBTRACT:
			b, a, err := vm.popNumbers()
			if err != nil {
				return err
			}
			vm.push(a - b)
		case chunk.MULTIPLY:
			b, a, err := vm.popNumbers()
			if err != nil {
				return err
			}
			vm.push(a * b)
		case chunk.DIVIDE:
			b, a, err := vm.popNumbers()
			if err != nil {
				return err
			}
			vm.push(a / b)
		case chunk.MOD:
			b, a, err := vm.popNumbers()
			if err != nil {
				return err
			}
			if int64(b) == 0 {
				return vm.runtimeError("division by zero")
			}
			vm.push(value.Number(int64(a) % int64(b)))

		case chunk.NOT:
			vm.push(value.Bool(!value.Truthy(vm.pop())))
		case chunk.NEGATE:
			n, ok := vm.peek(0).(value.Number)
			if !ok {
				return vm.runtimeError("operand must be a number")
			}
			vm.pop()
			vm.push(-n)

		case chunk.PRINT:
			v := vm.pop()
			fmt.Fprintln(vm.Stdout, v.String())

		case chunk.JUMP:
			offset := vm.readUint16(frame)
			frame.ip += int(offset)
		case chunk.JUMP_IF_FALSE:
			offset := vm.readUint16(frame)
			if !value.Truthy(vm.peek(0)) {
				frame.ip += int(offset)
			}
		case chunk.LOOP:
			offset := vm.readUint16(frame)
			frame.ip -= int(offset)
		case chunk.CONTINUE, chunk.BREAK:
			offset := vm.readUint16(frame)
			frame.ip += int(offset)
		case chunk.FALLTHROUGH:
			vm.switchFallThrough = true

		case chunk.CALL:
			argc := int(vm.readByte(frame))
			callee := vm.peek(argc)
			if err := vm.callValue(callee, argc); err != nil {
				return err
			}
			frame = &vm.frames[vm.frameCount-1]

		case chunk.INVOKE:
			idx := int(vm.readByte(frame))
			argc := int(vm.readByte(frame))
			name := vm.constants.Values[idx].(*value.ObjString)
			if err := vm.invoke(name.Chars, argc); err != nil {
				return err
			}
			frame = &vm.frames[vm.frameCount-1]

		case chunk.BASE_INVOKE:
			idx := int(vm.readByte(frame))
			argc := int(vm.readByte(frame))
			name := vm.constants.Values[idx].(*value.ObjString)
			base, ok := vm.pop().(*value.ObjClass)
			if !ok {
				return vm.runtimeError("base must be a class")
			}
			method, ok := vm.resolveMethod(base, name.Chars)
			if !ok {
				return vm.runtimeError("undefined property %q", name.Chars)
			}
			if err := vm.call(method, argc); err != nil {
				return err
			}
			frame = &vm.frames[vm.frameCount-1]

		case chunk.CLOSURE:
			idx := int(vm.readByte(frame))
			fn := vm.constants.Values[idx].(*value.ObjFunction)
			closure := &value.ObjClosure{Function: fn, Upvalues: make([]*value.ObjUpvalue, fn.NumUpvalues)}
			vm.push(closure) // rooted on the stack before any allocation below
			vm.registerObject(closure)
			for i := 0; i < fn.NumUpvalues; i++ {
				isLocal := vm.readByte(frame)
				index := int(vm.readByte(frame))
				if isLocal == 1 {
					closure.Upvalues[i] = vm.captureUpvalue(frame.slots + index)
				} else {
					closure.Upvalues[i] = frame.closure.Upvalues[index]
				}
			}

		case chunk.CLOSE_UPVALUE:
			vm.closeUpvalues(vm.top - 1)
			vm.top--

		case chunk.RETURN:
			result := vm.pop()
			vm.closeUpvalues(frame.slots)
			vm.frameCount--
			if vm.frameCount == 0 {
				vm.pop() // the top-level script closure itself
				return nil
			}
			vm.top = frame.slots
			vm.push(result)
			frame = &vm.frames[vm.frameCount-1]

		case chunk.CLASS:
			idx := int(vm.readByte(frame))
			name := vm.constants.Values[idx].(*value.ObjString)
			cls := &value.ObjClass{Name: name}
			vm.push(cls)
			vm.registerObject(cls)

		case chunk.INHERIT:
			derivedVal := vm.pop()
			baseCls, ok := vm.peek(0).(*value.ObjClass)
			if !ok {
				return vm.runtimeError("base must be a class")
			}
			derivedCls, ok := derivedVal.(*value.ObjClass)
			if !ok {
				return vm.runtimeError("derived must be a class")
			}
			derivedCls.Inherit(baseCls)

		case chunk.METHOD:
			idx := int(vm.readByte(frame))
			name := vm.constants.Values[idx].(*value.ObjString)
			closure := vm.pop().(*value.ObjClosure)
			cls := vm.peek(0).(*value.ObjClass)
			cls.Methods.Set(table.StringKey(name.Chars), closure)
			if name.Chars == "init" {
				cls.Init = closure
			}

		default:
			return vm.runtimeError("illegal opcode %d", op)
		}
	}
}

// popNumbers pops b then a (the order they were pushed, left operand
// first) and requires both to be Number, for the arithmetic opcodes that
// aren't overloaded for strings.
func (vm *VM) popNumbers() (b, a value.Number, err error) {
	bv := vm.pop()
	av := vm.pop()
	bn, bok := bv.(value.Number)
	an, aok := av.(value.Number)
	if !bok || !aok {
		return 0, 0, vm.runtimeError("operands must be numbers")
	}
	return bn, an, nil
}

// add implements the overloaded ADD opcode per §4.6: number+number adds,
// string+string concatenates directly, and any pairing where at least one
// side is a string or the Newline sentinel coerces both sides through the
// string-conversion table and concatenates.
func (vm *VM) add() error {
	b := vm.pop()
	a := vm.pop()

	if an, ok := a.(value.Number); ok {
		if bn, ok := b.(value.Number); ok {
			vm.push(an + bn)
			return nil
		}
	}
	if as, ok := a.(*value.ObjString); ok {
		if bs, ok := b.(*value.ObjString); ok {
			vm.push(vm.interner.Intern(as.Chars + bs.Chars))
			return nil
		}
	}

	_, aStr := a.(*value.ObjString)
	_, aNL := a.(value.Newline)
	_, bStr := b.(*value.ObjString)
	_, bNL := b.(value.Newline)
	if aStr || aNL || bStr || bNL {
		aConv, err := value.CoerceToString(a)
		if err != nil {
			return vm.runtimeError("%s", err)
		}
		bConv, err := value.CoerceToString(b)
		if err != nil {
			return vm.runtimeError("%s", err)
		}
		vm.push(vm.interner.Intern(aConv + bConv))
		return nil
	}

	return vm.runtimeError("operands must be numbers or strings")
}
