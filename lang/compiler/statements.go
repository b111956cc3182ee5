package compiler

import (
	"github.com/wldfngrs/olive/lang/chunk"
	"github.com/wldfngrs/olive/lang/token"
)

// synchronize discards tokens after a parse error until it finds a
// plausible statement boundary, so one bad statement doesn't cascade into
// spurious errors for the rest of the file.
func (p *Parser) synchronize() {
	p.panicMode = false
	for !p.check(token.EOF) {
		if p.previous.Type == token.SEMICOLON {
			return
		}
		switch p.current.Type {
		case token.CLASS, token.DEF, token.VAR, token.CONST,
			token.FOR, token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		p.advance()
	}
}

func (p *Parser) declaration() {
	switch {
	case p.match(token.CLASS):
		p.classDeclaration()
	case p.match(token.DEF):
		p.funDeclaration()
	case p.match(token.VAR):
		p.varDeclaration(false)
	case p.match(token.CONST):
		p.varDeclaration(true)
	default:
		p.statement()
	}
	if p.panicMode {
		p.synchronize()
	}
}

func (p *Parser) statement() {
	switch {
	case p.match(token.NEWLINE):
		// a blank virtual line between statements; nothing to compile.
	case p.match(token.PRINT):
		p.printStatement()
	case p.match(token.DEL_ATTR):
		p.delAttrStatement()
	case p.match(token.IF):
		p.ifStatement()
	case p.match(token.WHILE):
		p.whileStatement()
	case p.match(token.FOR):
		p.forStatement()
	case p.match(token.SWITCH):
		p.switchStatement()
	case p.match(token.BREAK):
		p.breakStatement()
	case p.match(token.CONTINUE):
		p.continueStatement()
	case p.match(token.RETURN):
		p.returnStatement()
	case p.match(token.LEFT_BRACE):
		p.beginScope()
		p.blockBody()
		p.endScope()
	default:
		p.expressionStatement()
	}
}

func (p *Parser) blockBody() {
	for !p.check(token.RIGHT_BRACE) && !p.check(token.EOF) {
		p.declaration()
	}
	p.consume(token.RIGHT_BRACE, "expect '}' after block")
}

// body compiles an if/while/for/case body: a braced block, or — per the
// brace-less single-line form — statements parsed until the scanner crosses
// a newline.
func (p *Parser) body() {
	if p.match(token.LEFT_BRACE) {
		p.beginScope()
		p.blockBody()
		p.endScope()
		return
	}
	p.braceLessDepth++
	for {
		p.statement()
		if p.match(token.NEWLINE) {
			break
		}
		if p.check(token.EOF) || p.check(token.RIGHT_BRACE) || p.check(token.ELSE) {
			break
		}
	}
	p.braceLessDepth--
}

// skipToNewline is used by break inside a brace-less body: the body ends at
// the newline regardless of how much of the virtual line is left unparsed.
// The NEWLINE itself is left for body() to consume as its terminator.
func (p *Parser) skipToNewline() {
	for !p.check(token.NEWLINE) && !p.check(token.EOF) {
		p.advance()
	}
}

func (p *Parser) printStatement() {
	p.expression()
	p.endOfStatement()
	p.emitOpcode(chunk.PRINT)
}

func (p *Parser) delAttrStatement() {
	p.consume(token.LEFT_PAREN, "expect '(' after 'del_attr'")
	p.expression() // instance
	p.consume(token.COMMA, "expect ',' between del_attr arguments")
	p.expression() // attribute name
	p.consume(token.RIGHT_PAREN, "expect ')' after del_attr arguments")
	p.endOfStatement()
	p.emitOpcode(chunk.DELATTR)
}

func (p *Parser) expressionStatement() {
	p.expression()
	p.endOfStatement()
	p.emitOpcode(chunk.POP)
}

func (p *Parser) ifStatement() {
	p.consume(token.LEFT_PAREN, "expect '(' after 'if'")
	p.expression()
	p.consume(token.RIGHT_PAREN, "expect ')' after condition")

	thenJump := p.emitJump(chunk.JUMP_IF_FALSE)
	p.emitOpcode(chunk.POP)
	p.body()

	elseJump := p.emitJump(chunk.JUMP)
	p.patchJump(thenJump)
	p.emitOpcode(chunk.POP)

	if p.match(token.ELSE) {
		p.body()
	}
	p.patchJump(elseJump)
}

func (p *Parser) pushLoop(isSwitch bool) {
	p.current_.loop = &loop{prev: p.current_.loop, isSwitch: isSwitch}
}

func (p *Parser) popLoop() {
	p.current_.loop = p.current_.loop.prev
}

func (p *Parser) patchLoopExits(l *loop) {
	for _, off := range l.exits {
		p.patchJump(off)
	}
}

func (p *Parser) patchLoopContinues(l *loop) {
	for _, off := range l.continues {
		p.patchJump(off)
	}
}

func (p *Parser) whileStatement() {
	loopStart := len(p.chunk().Code)
	p.pushLoop(false)

	p.consume(token.LEFT_PAREN, "expect '(' after 'while'")
	p.expression()
	p.consume(token.RIGHT_PAREN, "expect ')' after condition")

	exitJump := p.emitJump(chunk.JUMP_IF_FALSE)
	p.emitOpcode(chunk.POP)
	p.body()

	p.patchLoopContinues(p.current_.loop)
	p.emitLoop(loopStart)

	p.patchJump(exitJump)
	p.emitOpcode(chunk.POP)
	p.patchLoopExits(p.current_.loop)
	p.popLoop()
}

func (p *Parser) forStatement() {
	p.beginScope()
	p.consume(token.LEFT_PAREN, "expect '(' after 'for'")

	switch {
	case p.match(token.SEMICOLON):
		// no initializer
	case p.match(token.VAR):
		p.varDeclaration(false)
	default:
		p.expressionStatement()
	}

	loopStart := len(p.chunk().Code)
	exitJump := -1
	if !p.check(token.SEMICOLON) {
		p.expression()
		p.consume(token.SEMICOLON, "expect ';' after loop condition")
		exitJump = p.emitJump(chunk.JUMP_IF_FALSE)
		p.emitOpcode(chunk.POP)
	} else {
		p.advance() // consume ';'
	}

	if !p.check(token.RIGHT_PAREN) {
		bodyJump := p.emitJump(chunk.JUMP)
		incrementStart := len(p.chunk().Code)
		p.expression()
		p.emitOpcode(chunk.POP)
		p.consume(token.RIGHT_PAREN, "expect ')' after for clauses")

		p.emitLoop(loopStart)
		loopStart = incrementStart
		p.patchJump(bodyJump)
	} else {
		p.advance() // consume ')'
	}

	p.pushLoop(false)
	p.body()
	p.patchLoopContinues(p.current_.loop)
	p.emitLoop(loopStart)

	if exitJump != -1 {
		p.patchJump(exitJump)
		p.emitOpcode(chunk.POP)
	}
	p.patchLoopExits(p.current_.loop)
	p.popLoop()

	p.endScope()
}

func (p *Parser) switchStatement() {
	p.consume(token.LEFT_PAREN, "expect '(' after 'switch'")
	p.expression()
	p.consume(token.RIGHT_PAREN, "expect ')' after switch discriminant")
	p.consume(token.LEFT_BRACE, "expect '{' before switch body")

	p.pushLoop(true)
	sawDefault := false

	for !p.check(token.RIGHT_BRACE) && !p.check(token.EOF) {
		switch {
		case p.match(token.NEWLINE):
			// blank virtual line between the discriminant and the first case

		case p.match(token.CASE):
			p.expression()
			p.consume(token.COLON, "expect ':' after case value")
			p.emitOpcode(chunk.SWITCH_EQUAL)
			nextCase := p.emitJump(chunk.JUMP_IF_FALSE)
			p.emitOpcode(chunk.POP)

			p.caseBody()

			// A case that runs off its end continues into the next case's
			// body: FALLTHROUGH forces that case's SWITCH_EQUAL to pass, and
			// the jump below skips the false-path POP so the stack holds only
			// the discriminant on both paths. A case that ended in `break`
			// already jumped past all of this.
			if p.check(token.CASE) {
				p.emitOpcode(chunk.FALLTHROUGH)
			}
			closeJump := p.emitJump(chunk.JUMP)
			p.patchJump(nextCase)
			p.emitOpcode(chunk.POP) // the failed comparison result
			p.patchJump(closeJump)

		case p.match(token.DEFAULT):
			if sawDefault {
				p.errorAtPrevious("switch can only have one 'default' case")
			}
			sawDefault = true
			p.consume(token.COLON, "expect ':' after 'default'")
			p.caseBody()
			if p.check(token.CASE) {
				p.emitOpcode(chunk.FALLTHROUGH)
			}

		default:
			p.errorAtCurrent("expect 'case' or 'default' inside switch body")
			p.advance()
		}
	}
	p.consume(token.RIGHT_BRACE, "expect '}' after switch body")

	// every way out of the switch — all tests failed, the last case ran off
	// its end, or a `break` — converges here with the discriminant still on
	// the stack.
	p.patchLoopExits(p.current_.loop)
	p.emitOpcode(chunk.POP)
	p.popLoop()
}

func (p *Parser) caseBody() {
	for !p.check(token.CASE) && !p.check(token.DEFAULT) && !p.check(token.RIGHT_BRACE) && !p.check(token.EOF) {
		p.statement()
	}
}

func (p *Parser) breakStatement() {
	if p.current_.loop == nil {
		p.errorAtPrevious("'break' outside a loop or switch")
	} else {
		off := p.emitJump(chunk.BREAK)
		p.current_.loop.exits = append(p.current_.loop.exits, off)
	}
	p.endOfStatement()
	if p.braceLessDepth > 0 {
		p.skipToNewline()
	}
}

func (p *Parser) continueStatement() {
	l := p.current_.loop
	for l != nil && l.isSwitch {
		l = l.prev
	}
	if l == nil {
		p.errorAtPrevious("'continue' outside a loop")
	} else {
		off := p.emitJump(chunk.CONTINUE)
		l.continues = append(l.continues, off)
	}
	p.endOfStatement()
}

func (p *Parser) returnStatement() {
	if p.current_.kind == kindScript {
		p.errorAtPrevious("cannot return from top-level code")
	}
	if p.match(token.SEMICOLON) || p.check(token.NEWLINE) || p.check(token.EOF) {
		if p.current_.kind == kindInitializer {
			p.emitBytes(chunk.GET_LOCAL, 0)
		} else {
			p.emitOpcode(chunk.NULL)
		}
	} else {
		if p.current_.kind == kindInitializer {
			p.errorAtPrevious("cannot return a value from an initializer")
		}
		p.expression()
		p.endOfStatement()
	}
	p.emitOpcode(chunk.RETURN)
}
