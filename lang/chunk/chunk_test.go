package chunk_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wldfngrs/olive/lang/chunk"
)

func TestWriteAndLineTable(t *testing.T) {
	c := chunk.New(&chunk.ValueArray{})
	c.WriteOpcode(chunk.NULL, 1)
	c.WriteOpcode(chunk.TRUE, 1)
	c.WriteOpcode(chunk.POP, 2)
	c.WriteOpcode(chunk.RETURN, 2)

	require.Equal(t, []byte{byte(chunk.NULL), byte(chunk.TRUE), byte(chunk.POP), byte(chunk.RETURN)}, c.Code)
	require.Equal(t, 1, c.GetLine(0))
	require.Equal(t, 1, c.GetLine(1))
	require.Equal(t, 2, c.GetLine(2))
	require.Equal(t, 2, c.GetLine(3))
}

func TestWriteConstantShortForm(t *testing.T) {
	c := chunk.New(&chunk.ValueArray{})
	idx := c.AddConstant(1.5)
	c.WriteConstant(chunk.CONSTANT, chunk.CONSTANT_LONG, idx, 1)

	require.Equal(t, []byte{byte(chunk.CONSTANT), byte(idx)}, c.Code)
}

func TestWriteConstantLongForm(t *testing.T) {
	c := chunk.New(&chunk.ValueArray{})
	for i := 0; i < 256; i++ {
		c.AddConstant(float64(i))
	}
	idx := c.AddConstant(3.14)
	c.WriteConstant(chunk.CONSTANT, chunk.CONSTANT_LONG, idx, 1)

	require.Equal(t, chunk.CONSTANT_LONG, chunk.Opcode(c.Code[0]))
	decoded := int(c.Code[1]) | int(c.Code[2])<<8 | int(c.Code[3])<<16
	require.Equal(t, idx, decoded)
}

func TestPatchUint16(t *testing.T) {
	c := chunk.New(&chunk.ValueArray{})
	c.WriteOpcode(chunk.JUMP_IF_FALSE, 1)
	offset := c.WriteUint16(0xffff, 1)
	c.PatchUint16(offset, 7)

	require.Equal(t, byte(7), c.Code[offset])
	require.Equal(t, byte(0), c.Code[offset+1])
}

func TestGetLineOnEmptyChunk(t *testing.T) {
	c := chunk.New(&chunk.ValueArray{})
	require.Equal(t, 0, c.GetLine(0))
}

func TestAddDedupSharesOneEntryPerValue(t *testing.T) {
	pool := &chunk.ValueArray{}
	a := pool.AddDedup("name")
	b := pool.AddDedup("name")
	require.Equal(t, a, b)
	require.Len(t, pool.Values, 1)

	c := pool.AddDedup("other")
	require.NotEqual(t, a, c)
	require.Len(t, pool.Values, 2)
}

func TestSharedConstantsPool(t *testing.T) {
	pool := &chunk.ValueArray{}
	a := chunk.New(pool)
	b := chunk.New(pool)

	idx := a.AddConstant("shared")
	require.Equal(t, "shared", b.Constants.Values[idx])
}

func TestDisassembleSimpleProgram(t *testing.T) {
	c := chunk.New(&chunk.ValueArray{})
	idx := c.AddConstant(1.0)
	c.WriteConstant(chunk.CONSTANT, chunk.CONSTANT_LONG, idx, 1)
	c.WriteOpcode(chunk.PRINT, 1)
	c.WriteOpcode(chunk.RETURN, 2)

	out := c.Disassemble("test")
	require.Contains(t, out, "== test ==")
	require.Contains(t, out, "CONSTANT")
	require.Contains(t, out, "PRINT")
	require.Contains(t, out, "RETURN")
}

func TestDisassembleJumpShowsTarget(t *testing.T) {
	c := chunk.New(&chunk.ValueArray{})
	c.WriteOpcode(chunk.JUMP_IF_FALSE, 1)
	off := c.WriteUint16(0, 1)
	c.WriteOpcode(chunk.POP, 1)
	c.PatchUint16(off, uint16(len(c.Code)-off-2))

	out := c.Disassemble("jump")
	require.Contains(t, out, "JUMP_IF_FALSE")
	require.Contains(t, out, "->")
}
