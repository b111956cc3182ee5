package chunk

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Disassemble renders every instruction in c to human-readable text, one
// line per instruction, prefixed with name. It is not on any execution path;
// it exists for debugging and for tests that assert on compiler output.
func (c *Chunk) Disassemble(name string) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "== %s ==\n", name)
	for offset := 0; offset < len(c.Code); {
		text, next := c.DisassembleInstruction(offset)
		buf.WriteString(text)
		buf.WriteByte('\n')
		offset = next
	}
	return buf.String()
}

// DisassembleInstruction renders the single instruction at offset and
// returns the offset of the following instruction.
func (c *Chunk) DisassembleInstruction(offset int) (string, int) {
	var buf strings.Builder
	fmt.Fprintf(&buf, "%04d ", offset)

	line := c.GetLine(offset)
	if offset > 0 && line == c.GetLine(offset-1) {
		buf.WriteString("   | ")
	} else {
		fmt.Fprintf(&buf, "%4d ", line)
	}

	op := Opcode(c.Code[offset])
	switch op {
	case CONSTANT, GET_GLOBAL, DEFINE_GLOBAL, SET_GLOBAL, GET_PROPERTY,
		SET_PROPERTY, GET_BASE, CLASS, METHOD:
		return c.byteInstruction(buf.String(), op, offset)
	case CONSTANT_LONG, GET_GLOBAL_LONG, DEFINE_GLOBAL_LONG, SET_GLOBAL_LONG:
		return c.longInstruction(buf.String(), op, offset)
	case GET_LOCAL, SET_LOCAL, GET_UPVALUE, SET_UPVALUE, POPN, CALL:
		return c.byteInstruction(buf.String(), op, offset)
	case INVOKE, BASE_INVOKE:
		return c.invokeInstruction(buf.String(), op, offset)
	case JUMP, JUMP_IF_FALSE, LOOP, CONTINUE, BREAK:
		return c.jumpInstruction(buf.String(), op, offset)
	case CLOSURE:
		return c.closureInstruction(buf.String(), offset)
	default:
		fmt.Fprintf(&buf, "%s", op)
		return buf.String(), offset + 1
	}
}

func (c *Chunk) byteInstruction(prefix string, op Opcode, offset int) (string, int) {
	idx := c.Code[offset+1]
	var buf strings.Builder
	buf.WriteString(prefix)
	fmt.Fprintf(&buf, "%-16s %4d", op, idx)
	if int(idx) < len(c.Constants.Values) {
		fmt.Fprintf(&buf, " (%v)", c.Constants.Values[idx])
	}
	return buf.String(), offset + 2
}

func (c *Chunk) longInstruction(prefix string, op Opcode, offset int) (string, int) {
	idx := int(c.Code[offset+1]) | int(c.Code[offset+2])<<8 | int(c.Code[offset+3])<<16
	var buf strings.Builder
	buf.WriteString(prefix)
	fmt.Fprintf(&buf, "%-16s %4d", op, idx)
	if idx < len(c.Constants.Values) {
		fmt.Fprintf(&buf, " (%v)", c.Constants.Values[idx])
	}
	return buf.String(), offset + 4
}

func (c *Chunk) invokeInstruction(prefix string, op Opcode, offset int) (string, int) {
	idx := c.Code[offset+1]
	argc := c.Code[offset+2]
	var buf strings.Builder
	buf.WriteString(prefix)
	fmt.Fprintf(&buf, "%-16s %4d (%d args)", op, idx, argc)
	if int(idx) < len(c.Constants.Values) {
		fmt.Fprintf(&buf, " (%v)", c.Constants.Values[idx])
	}
	return buf.String(), offset + 3
}

func (c *Chunk) jumpInstruction(prefix string, op Opcode, offset int) (string, int) {
	delta := binary.LittleEndian.Uint16(c.Code[offset+1:])
	var buf strings.Builder
	buf.WriteString(prefix)
	sign := 1
	if op == LOOP {
		sign = -1
	}
	fmt.Fprintf(&buf, "%-16s %4d -> %d", op, offset, offset+3+sign*int(delta))
	return buf.String(), offset + 3
}

func (c *Chunk) closureInstruction(prefix string, offset int) (string, int) {
	var buf strings.Builder
	buf.WriteString(prefix)
	idx := c.Code[offset+1]
	fmt.Fprintf(&buf, "%-16s %4d", CLOSURE, idx)
	if int(idx) < len(c.Constants.Values) {
		fmt.Fprintf(&buf, " (%v)", c.Constants.Values[idx])
	}
	next := offset + 2

	// upvalue_count is a property of the Function constant just loaded, not
	// of the instruction stream, so the caller must know how many (is_local,
	// index) pairs follow. Disassembly asks the constant (if it exposes one)
	// via the upvalueCounter interface to stay decoupled from lang/value.
	if fn, ok := c.Constants.Values[idx].(upvalueCounter); ok {
		for i := 0; i < fn.UpvalueCount(); i++ {
			isLocal := c.Code[next]
			index := c.Code[next+1]
			kind := "upvalue"
			if isLocal != 0 {
				kind = "local"
			}
			fmt.Fprintf(&buf, "\n%04d      |                     %s %d", next, kind, index)
			next += 2
		}
	}
	return buf.String(), next
}

// upvalueCounter is implemented by lang/value.Function; it lets the
// disassembler walk a CLOSURE instruction's trailing upvalue pairs without
// importing lang/value.
type upvalueCounter interface {
	UpvalueCount() int
}
