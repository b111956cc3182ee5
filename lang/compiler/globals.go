package compiler

// globalBinding is the compiler's record of one declared global: the
// constant-pool index of its interned name (the operand every GET_GLOBAL /
// SET_GLOBAL / DEFINE_GLOBAL family opcode carries) and whether it was
// declared const.
type globalBinding struct {
	index   int
	isConst bool
}

// GlobalTable is the compiler's global_constant_index: the set of globals
// declared so far, keyed by name. It is owned by the caller (the VM, for a
// running REPL) and passed into Compile so that a name declared in one REPL
// turn is still visible — and its const-ness still enforced — in the next.
type GlobalTable struct {
	byName map[string]*globalBinding
}

// NewGlobalTable returns an empty table, ready for a fresh program or the
// first turn of a REPL session.
func NewGlobalTable() *GlobalTable {
	return &GlobalTable{byName: make(map[string]*globalBinding)}
}

// DeclareNative registers name as a non-const global bound to idx, the
// constant-pool index of its interned name. The VM calls this at startup,
// once per native function, so `resolveAndEmit` can compile a reference to
// e.g. "clock" into a GET_GLOBAL the same way it would any user-declared
// global, before any user source has been compiled.
func (g *GlobalTable) DeclareNative(name string, idx int) {
	g.byName[name] = &globalBinding{index: idx}
}
