package compiler

import (
	"strconv"

	"github.com/wldfngrs/olive/lang/chunk"
	"github.com/wldfngrs/olive/lang/token"
	"github.com/wldfngrs/olive/lang/value"
)

func (p *Parser) expression() { p.parsePrecedence(precAssignment) }

// parsePrecedence is the heart of the Pratt parser: consume one token,
// dispatch its prefix rule, then keep consuming and dispatching infix rules
// as long as the current token binds at least as tightly as prec.
func (p *Parser) parsePrecedence(prec precedence) {
	p.advance()
	prefixRule := getRule(p.previous.Type).prefix
	if prefixRule == nil {
		p.errorAtPrevious("expect an expression")
		return
	}
	canAssign := prec <= precAssignment
	prefixRule(p, canAssign)

	for prec <= getRule(p.current.Type).prec {
		p.advance()
		infixRule := getRule(p.previous.Type).infix
		infixRule(p, canAssign)
	}

	if canAssign && p.match(token.EQUAL) {
		p.errorAtPrevious("invalid assignment target")
	}
}

func (p *Parser) grouping(canAssign bool) {
	p.expression()
	p.consume(token.RIGHT_PAREN, "expect ')' after expression")
}

// argumentList parses a comma-separated expression list up to ')'. The
// caller is responsible for having already consumed the opening '('.
func (p *Parser) argumentList() int {
	argc := 0
	if !p.check(token.RIGHT_PAREN) {
		for {
			p.expression()
			if argc == 255 {
				p.errorAtPrevious("cannot have more than 255 arguments")
			}
			argc++
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RIGHT_PAREN, "expect ')' after arguments")
	return argc
}

func (p *Parser) call(canAssign bool) {
	argc := p.argumentList()
	p.emitBytes(chunk.CALL, byte(argc))
}

func (p *Parser) dot(canAssign bool) {
	p.consume(token.IDENTIFIER, "expect a property name after '.'")
	name := p.lexeme(p.previous)
	idx := p.identifierConstant(name)

	switch {
	case canAssign && p.match(token.EQUAL):
		p.expression()
		p.emitBytes(chunk.SET_PROPERTY, p.byteOperand(idx))
	case p.match(token.LEFT_PAREN):
		argc := p.argumentList()
		p.emitOpcode(chunk.INVOKE)
		p.emitByte(p.byteOperand(idx))
		p.emitByte(byte(argc))
	default:
		p.emitBytes(chunk.GET_PROPERTY, p.byteOperand(idx))
	}
}

var binaryOpcodes = map[token.Token]chunk.Opcode{
	token.BANG_EQUAL:    chunk.NOT_EQUAL,
	token.EQUAL_EQUAL:   chunk.EQUAL,
	token.GREATER:       chunk.GREATER,
	token.GREATER_EQUAL: chunk.GREATER_EQUAL,
	token.LESS:          chunk.LESS,
	token.LESS_EQUAL:    chunk.LESS_EQUAL,
	token.PLUS:          chunk.ADD,
	token.MINUS:         chunk.SUBTRACT,
	token.STAR:          chunk.MULTIPLY,
	token.SLASH:         chunk.DIVIDE,
	token.PERCENT:       chunk.MOD,
}

// binary compiles the right-hand operand of an already-parsed left operand
// and emits exactly one opcode, per binaryOpcodes: a straight table lookup,
// with no case labels that could fall through to a second opcode.
func (p *Parser) binary(canAssign bool) {
	opTok := p.previous.Type
	r := getRule(opTok)
	p.parsePrecedence(r.prec + 1)
	p.emitOpcode(binaryOpcodes[opTok])
}

func (p *Parser) unary(canAssign bool) {
	opTok := p.previous.Type
	p.parsePrecedence(precUnary)
	switch opTok {
	case token.BANG:
		p.emitOpcode(chunk.NOT)
	case token.MINUS:
		p.emitOpcode(chunk.NEGATE)
	}
}

// ternary compiles `cond ? then : else` into the eager TERNARY opcode: the
// condition is already on the stack from the expression that preceded '?'.
func (p *Parser) ternary(canAssign bool) {
	p.parsePrecedence(precAssignment)
	p.consume(token.COLON, "expect ':' in ternary expression")
	p.parsePrecedence(precTernary)
	p.emitOpcode(chunk.TERNARY)
}

func (p *Parser) and(canAssign bool) {
	endJump := p.emitJump(chunk.JUMP_IF_FALSE)
	p.emitOpcode(chunk.POP)
	p.parsePrecedence(precAnd)
	p.patchJump(endJump)
}

func (p *Parser) or(canAssign bool) {
	elseJump := p.emitJump(chunk.JUMP_IF_FALSE)
	endJump := p.emitJump(chunk.JUMP)
	p.patchJump(elseJump)
	p.emitOpcode(chunk.POP)
	p.parsePrecedence(precOr)
	p.patchJump(endJump)
}

func (p *Parser) number(canAssign bool) {
	text := p.lexeme(p.previous)
	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		p.errorAtPrevious("invalid number literal %q", text)
		return
	}
	p.emitConstant(value.Number(n))
}

func (p *Parser) stringLiteral(canAssign bool) {
	p.emitConstant(p.interner.Intern(p.lexeme(p.previous)))
}

// interpolation compiles "foo${expr}bar${expr2}baz" as a left-associative
// chain of ADD (the overloaded string-concatenation opcode): the scanner has
// already split it into an INTERPOLATION("foo") fragment, the tokens of
// expr, a synthetic CONCAT, and a continuation that is itself either a
// closing STRING or another INTERPOLATION fragment.
func (p *Parser) interpolation(canAssign bool) {
	p.emitConstant(p.interner.Intern(p.lexeme(p.previous)))
	for {
		p.expression()
		if !p.check(token.CONCAT) {
			p.errorAtCurrent("malformed string interpolation")
			return
		}
		p.advance() // consume the synthetic CONCAT
		p.emitOpcode(chunk.ADD)

		switch {
		case p.match(token.STRING):
			p.emitConstant(p.interner.Intern(p.lexeme(p.previous)))
			p.emitOpcode(chunk.ADD)
			return
		case p.match(token.INTERPOLATION):
			p.emitConstant(p.interner.Intern(p.lexeme(p.previous)))
			p.emitOpcode(chunk.ADD)
			// loop again: an embedded expression immediately follows
		default:
			p.errorAtCurrent("expect string continuation after interpolated expression")
			return
		}
	}
}

func (p *Parser) literal(canAssign bool) {
	switch p.previous.Type {
	case token.TRUE:
		p.emitOpcode(chunk.TRUE)
	case token.FALSE:
		p.emitOpcode(chunk.FALSE)
	case token.NULL:
		p.emitOpcode(chunk.NULL)
	}
}

func (p *Parser) this(canAssign bool) {
	if p.class == nil {
		p.errorAtPrevious("'this' used outside a class method")
		return
	}
	p.loadVariable("this")
}

func (p *Parser) base(canAssign bool) {
	if p.class == nil {
		p.errorAtPrevious("'base' used outside a class")
		return
	}
	if !p.class.hasBase {
		p.errorAtPrevious("'base' used in a class with no base class")
		return
	}
	p.consume(token.DOT, "expect '.' after 'base'")
	p.consume(token.IDENTIFIER, "expect a base class method name")
	name := p.lexeme(p.previous)
	idx := p.identifierConstant(name)

	p.loadVariable("this")
	if p.match(token.LEFT_PAREN) {
		argc := p.argumentList()
		p.loadVariable("base")
		p.emitOpcode(chunk.BASE_INVOKE)
		p.emitByte(p.byteOperand(idx))
		p.emitByte(byte(argc))
	} else {
		p.loadVariable("base")
		p.emitBytes(chunk.GET_BASE, p.byteOperand(idx))
	}
}

func (p *Parser) variable(canAssign bool) {
	p.resolveAndEmit(p.lexeme(p.previous), canAssign)
}

// loadVariable emits a read of name without ever treating it as an
// assignment target, used for the compiler's own synthetic references
// (`this`, `base`, a class's own name while defining its methods).
func (p *Parser) loadVariable(name string) {
	p.resolveAndEmit(name, false)
}

// resolveAndEmit implements the three-step name resolution algorithm: local,
// then upvalue, then global, emitting the matching GET or (if canAssign and
// an '=' follows) SET opcode.
func (p *Parser) resolveAndEmit(name string, canAssign bool) {
	f := p.current_

	if slot, ok := f.resolveLocal(name, p); ok {
		if canAssign && p.match(token.EQUAL) {
			if f.locals[slot].isConst {
				p.errorAtPrevious("cannot assign to const variable %q", name)
			}
			p.expression()
			p.emitBytes(chunk.SET_LOCAL, byte(slot))
		} else {
			p.emitBytes(chunk.GET_LOCAL, byte(slot))
		}
		return
	}

	if slot, ok := f.resolveUpvalue(name, p); ok {
		if canAssign && p.match(token.EQUAL) {
			p.expression()
			p.emitBytes(chunk.SET_UPVALUE, byte(slot))
		} else {
			p.emitBytes(chunk.GET_UPVALUE, byte(slot))
		}
		return
	}

	gb, ok := p.globals.byName[name]
	if !ok {
		p.errorAtPrevious("undeclared variable %q", name)
		return
	}
	if canAssign && p.match(token.EQUAL) {
		if gb.isConst {
			p.errorAtPrevious("cannot assign to const variable %q", name)
		}
		p.expression()
		p.chunk().WriteConstant(chunk.SET_GLOBAL, chunk.SET_GLOBAL_LONG, gb.index, p.previous.Line)
	} else {
		p.chunk().WriteConstant(chunk.GET_GLOBAL, chunk.GET_GLOBAL_LONG, gb.index, p.previous.Line)
	}
}
