package chunk

import "fmt"

// An Opcode is a single bytecode instruction tag. Operands, when present,
// immediately follow the opcode byte in a Chunk's code.
type Opcode uint8

//nolint:revive
const (
	CONSTANT Opcode = iota // CONSTANT idx8          push constants[idx]
	CONSTANT_LONG          // CONSTANT_LONG idx24     push constants[idx]
	NULL                   // NULL                    push Null
	TRUE                   // TRUE                    push Bool(true)
	FALSE                  // FALSE                   push Bool(false)
	POP                    // POP                     pop one value
	POPN                   // POPN n8                 pop n values

	GET_LOCAL  // GET_LOCAL slot8
	SET_LOCAL  // SET_LOCAL slot8
	GET_UPVALUE
	SET_UPVALUE

	// Global name references use the same short (8-bit index)/long (24-bit
	// index) split as CONSTANT/CONSTANT_LONG, per the constant pool strategy.
	GET_GLOBAL
	GET_GLOBAL_LONG
	DEFINE_GLOBAL
	DEFINE_GLOBAL_LONG
	SET_GLOBAL
	SET_GLOBAL_LONG

	GET_PROPERTY // GET_PROPERTY idx8   receiver -> field-or-bound-method
	SET_PROPERTY // SET_PROPERTY idx8   receiver value -> value
	GET_BASE     // GET_BASE idx8       this base -> bound base method
	DELATTR      // DELATTR             receiver name -> -

	EQUAL
	SWITCH_EQUAL // peeks the discriminant, compares without popping it
	NOT_EQUAL
	GREATER
	GREATER_EQUAL
	LESS
	LESS_EQUAL
	TERNARY // cond thenVal elseVal -> result (both arms evaluated eagerly)

	ADD
	SUBTRACT
	MULTIPLY
	DIVIDE
	MOD
	NOT
	NEGATE

	PRINT

	JUMP          // JUMP off16
	JUMP_IF_FALSE // JUMP_IF_FALSE off16
	LOOP          // LOOP off16          ip -= off
	CONTINUE      // CONTINUE off16      ip += off, patched like a forward jump
	BREAK         // BREAK off16         ip += off, patched like a forward jump
	FALLTHROUGH   // FALLTHROUGH         forces the next SWITCH_EQUAL to pass

	CALL // CALL argc8

	CLOSURE // CLOSURE idx8, then one (is_local8, index8) pair per upvalue of the function
	CLOSE_UPVALUE
	RETURN

	CLASS    // CLASS idx8
	INHERIT  // INHERIT             base derived -> base (derived is popped; base stays to back the `base` local)
	METHOD   // METHOD idx8         class closure -> class
	INVOKE   // INVOKE idx8 argc8
	BASE_INVOKE // BASE_INVOKE idx8 argc8

	opcodeMax
)

var opcodeNames = [...]string{
	CONSTANT:           "CONSTANT",
	CONSTANT_LONG:      "CONSTANT_LONG",
	NULL:               "NULL",
	TRUE:               "TRUE",
	FALSE:              "FALSE",
	POP:                "POP",
	POPN:               "POPN",
	GET_LOCAL:          "GET_LOCAL",
	SET_LOCAL:          "SET_LOCAL",
	GET_UPVALUE:        "GET_UPVALUE",
	SET_UPVALUE:        "SET_UPVALUE",
	GET_GLOBAL:         "GET_GLOBAL",
	GET_GLOBAL_LONG:    "GET_GLOBAL_LONG",
	DEFINE_GLOBAL:      "DEFINE_GLOBAL",
	DEFINE_GLOBAL_LONG: "DEFINE_GLOBAL_LONG",
	SET_GLOBAL:         "SET_GLOBAL",
	SET_GLOBAL_LONG:    "SET_GLOBAL_LONG",
	GET_PROPERTY:       "GET_PROPERTY",
	SET_PROPERTY:       "SET_PROPERTY",
	GET_BASE:           "GET_BASE",
	DELATTR:            "DELATTR",
	EQUAL:              "EQUAL",
	SWITCH_EQUAL:       "SWITCH_EQUAL",
	NOT_EQUAL:          "NOT_EQUAL",
	GREATER:            "GREATER",
	GREATER_EQUAL:      "GREATER_EQUAL",
	LESS:               "LESS",
	LESS_EQUAL:         "LESS_EQUAL",
	TERNARY:            "TERNARY",
	ADD:                "ADD",
	SUBTRACT:           "SUBTRACT",
	MULTIPLY:           "MULTIPLY",
	DIVIDE:             "DIVIDE",
	MOD:                "MOD",
	NOT:                "NOT",
	NEGATE:             "NEGATE",
	PRINT:              "PRINT",
	JUMP:               "JUMP",
	JUMP_IF_FALSE:      "JUMP_IF_FALSE",
	LOOP:               "LOOP",
	CONTINUE:           "CONTINUE",
	BREAK:              "BREAK",
	FALLTHROUGH:        "FALLTHROUGH",
	CALL:               "CALL",
	CLOSURE:            "CLOSURE",
	CLOSE_UPVALUE:      "CLOSE_UPVALUE",
	RETURN:             "RETURN",
	CLASS:              "CLASS",
	INHERIT:            "INHERIT",
	METHOD:             "METHOD",
	INVOKE:             "INVOKE",
	BASE_INVOKE:        "BASE_INVOKE",
}

func (op Opcode) String() string {
	if op < opcodeMax {
		if name := opcodeNames[op]; name != "" {
			return name
		}
	}
	return fmt.Sprintf("illegal opcode (%d)", op)
}
