// Package compiler implements Olive's single-pass Pratt parser: it consumes
// tokens left-to-right from a scanner.Scanner and emits bytecode directly
// into the current function's chunk as it goes. No AST is ever materialized.
package compiler

import (
	"github.com/wldfngrs/olive/lang/chunk"
	"github.com/wldfngrs/olive/lang/scanner"
	"github.com/wldfngrs/olive/lang/token"
	"github.com/wldfngrs/olive/lang/value"
)

// Parser drives the whole single-pass compile: it owns the scanner, the
// current/previous token lookahead pair, the chain of in-progress function
// compilers, and the state that's shared across that chain (globals, the
// string interner, the shared constants pool).
type Parser struct {
	sc       *scanner.Scanner
	current  scanner.Token
	previous scanner.Token

	hadError  bool
	panicMode bool
	errors    ErrorList

	current_ *funcState // the innermost (currently compiling) function frame
	class    *classState

	globals   *GlobalTable
	interner  *value.Interner
	constants *chunk.ValueArray

	braceLessDepth int
}

// Compile compiles source into a top-level script function. constants,
// globals and interner are owned by the caller and may be reused across
// calls — this is what lets a REPL keep every previously defined global,
// interned string, and constant-pool entry alive and visible to the next
// line typed at the prompt. The returned ErrorList is empty on success.
func Compile(source []byte, constants *chunk.ValueArray, globals *GlobalTable, interner *value.Interner) (*value.ObjFunction, ErrorList) {
	p := &Parser{
		sc:        scanner.New(source),
		globals:   globals,
		interner:  interner,
		constants: constants,
	}
	p.current_ = &funcState{
		function: &value.ObjFunction{Chunk: chunk.New(constants)},
		kind:     kindScript,
	}
	// slot 0 of every frame holds the callee; reserve it here the same way
	// function() reserves it for nested frames, so top-level locals resolve
	// to the stack slots their values actually occupy.
	p.current_.locals = append(p.current_.locals, local{name: ""})

	p.advance()
	for !p.match(token.EOF) {
		p.declaration()
	}

	fn := p.endCompiler()
	if p.hadError {
		return nil, p.errors
	}
	return fn, nil
}

// --- token stream -----------------------------------------------------

func (p *Parser) advance() {
	p.previous = p.current
	for {
		p.current = p.sc.Next()
		if p.current.Type != token.ERROR {
			break
		}
		p.errorAtCurrent("%s", p.current.Lexeme)
	}
}

func (p *Parser) check(tt token.Token) bool { return p.current.Type == tt }

func (p *Parser) match(tt token.Token) bool {
	if !p.check(tt) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) consume(tt token.Token, format string, args ...any) {
	if p.current.Type == tt {
		p.advance()
		return
	}
	p.errorAtCurrent(format, args...)
}

// lexeme returns the source text of tok (quotes stripped for strings).
func (p *Parser) lexeme(tok scanner.Token) string { return p.sc.Lexeme(tok) }

// endOfStatement consumes the statement terminator: a ';', or a NEWLINE that
// a brace-less body will also treat as its own end, or silently accepts EOF
// for the last statement of a file with no trailing semicolon.
func (p *Parser) endOfStatement() {
	switch {
	case p.match(token.SEMICOLON):
	case p.check(token.NEWLINE), p.check(token.EOF), p.check(token.RIGHT_BRACE):
	default:
		p.errorAtCurrent("expect ';' after statement")
	}
}

// --- emission -----------------------------------------------------------

func (p *Parser) chunk() *chunk.Chunk { return p.current_.function.Chunk }

func (p *Parser) emitByte(b byte) { p.chunk().Write(b, p.previous.Line) }

func (p *Parser) emitOpcode(op chunk.Opcode) { p.chunk().WriteOpcode(op, p.previous.Line) }

func (p *Parser) emitBytes(op chunk.Opcode, operand byte) {
	p.emitOpcode(op)
	p.emitByte(operand)
}

// emitJump emits op followed by a 16-bit placeholder, returning the offset
// of the placeholder's first byte for a later patchJump call.
func (p *Parser) emitJump(op chunk.Opcode) int {
	p.emitOpcode(op)
	return p.chunk().WriteUint16(0xFFFF, p.previous.Line)
}

// patchJump backfills the placeholder at offset with the distance from just
// past the placeholder to the current end of the chunk.
func (p *Parser) patchJump(offset int) {
	dist := len(p.chunk().Code) - offset - 2
	if dist > 0xFFFF {
		p.errorAtPrevious("jump target too far")
	}
	p.chunk().PatchUint16(offset, uint16(dist))
}

// emitLoop emits a LOOP back to loopStart, the one opcode whose offset is
// subtracted rather than added at run time.
func (p *Parser) emitLoop(loopStart int) {
	p.emitOpcode(chunk.LOOP)
	dist := len(p.chunk().Code) - loopStart + 2
	if dist > 0xFFFF {
		p.errorAtPrevious("loop body too large")
	}
	p.chunk().WriteUint16(uint16(dist), p.previous.Line)
}

func (p *Parser) emitConstant(v any) {
	idx := p.constants.AddDedup(v)
	p.chunk().WriteConstant(chunk.CONSTANT, chunk.CONSTANT_LONG, idx, p.previous.Line)
}

// identifierConstant interns name and pools it as a constant, returning its
// pool index — the operand used by GET_GLOBAL/GET_PROPERTY/METHOD/etc. to
// name the thing they reference at run time. Repeated references to one
// name share one pool entry, which matters for the opcodes below whose
// operand has no long form.
func (p *Parser) identifierConstant(name string) int {
	return p.constants.AddDedup(p.interner.Intern(name))
}

// byteOperand narrows a constants-pool index to the opcodes whose operand
// is a single byte with no long variant (CLOSURE, CLASS, METHOD, property
// and invoke names). Running out of these is a compile error, not a silent
// truncation.
func (p *Parser) byteOperand(idx int) byte {
	if idx > 0xFF {
		p.errorAtPrevious("too many constants in one program")
		return 0
	}
	return byte(idx)
}

// endCompiler closes out the current function frame: an implicit NULL+RETURN
// (or, for an initializer, a `return this`), then pops back to the enclosing
// frame and returns the finished function. The frame's upvalue list is not
// returned; the CLOSURE-emitting caller reads it before calling this.
func (p *Parser) endCompiler() *value.ObjFunction {
	if p.current_.kind == kindInitializer {
		p.emitBytes(chunk.GET_LOCAL, 0)
	} else {
		p.emitOpcode(chunk.NULL)
	}
	p.emitOpcode(chunk.RETURN)

	fn := p.current_.function
	p.current_ = p.current_.enclosing
	return fn
}

// --- scopes ---------------------------------------------------------------

func (p *Parser) beginScope() { p.current_.scopeDepth++ }

func (p *Parser) endScope() {
	p.current_.scopeDepth--
	f := p.current_
	popCount := 0
	for len(f.locals) > 0 && f.locals[len(f.locals)-1].depth > f.scopeDepth {
		last := f.locals[len(f.locals)-1]
		if last.isCaptured {
			if popCount > 0 {
				p.emitBytes(chunk.POPN, byte(popCount))
				popCount = 0
			}
			p.emitOpcode(chunk.CLOSE_UPVALUE)
		} else {
			popCount++
		}
		f.locals = f.locals[:len(f.locals)-1]
	}
	if popCount > 0 {
		p.emitBytes(chunk.POPN, byte(popCount))
	}
}
