package compiler

import (
	"github.com/wldfngrs/olive/lang/chunk"
	"github.com/wldfngrs/olive/lang/token"
	"github.com/wldfngrs/olive/lang/value"
)

// binding is where declareVariable leaves a name for defineVariable to
// finish: either a slot in the current function's locals array, or an index
// into the shared constants pool naming a global.
type binding struct {
	isGlobal bool
	idx      int // constants-pool index when isGlobal, otherwise unused
}

// declareVariable reserves name either as a new local (if inside a scope) or
// as an entry in global_constant_index (at the top level). Locals are left
// uninitialized (depth -1) until defineVariable runs.
func (p *Parser) declareVariable(name string, isConst bool) binding {
	if p.current_.scopeDepth == 0 {
		idx := p.identifierConstant(name)
		if existing, ok := p.globals.byName[name]; ok {
			existing.isConst = isConst
		} else {
			p.globals.byName[name] = &globalBinding{index: idx, isConst: isConst}
		}
		return binding{isGlobal: true, idx: idx}
	}

	f := p.current_
	for i := len(f.locals) - 1; i >= 0; i-- {
		if f.locals[i].depth != -1 && f.locals[i].depth < f.scopeDepth {
			break
		}
		if f.locals[i].name == name {
			p.errorAtPrevious("%q is already declared in this scope", name)
		}
	}
	if len(f.locals) >= scopeCount {
		p.errorAtPrevious("too many local variables in one function")
		return binding{}
	}
	f.locals = append(f.locals, local{name: name, depth: -1, isConst: isConst})
	return binding{}
}

// markInitialized flips the most recently declared local from "declared" to
// "usable", which is also what makes a function's own name resolvable
// inside its own body for recursion.
func (p *Parser) markInitialized() {
	if p.current_.scopeDepth == 0 {
		return
	}
	p.current_.locals[len(p.current_.locals)-1].depth = p.current_.scopeDepth
}

// defineVariable finishes a declareVariable: for a local it just marks it
// initialized (its value is already sitting in the right stack slot); for a
// global it emits DEFINE_GLOBAL against whatever value is on top of stack.
func (p *Parser) defineVariable(b binding) {
	if !b.isGlobal {
		p.markInitialized()
		return
	}
	p.chunk().WriteConstant(chunk.DEFINE_GLOBAL, chunk.DEFINE_GLOBAL_LONG, b.idx, p.previous.Line)
}

func (p *Parser) varDeclaration(isConst bool) {
	p.consume(token.IDENTIFIER, "expect a variable name")
	name := p.lexeme(p.previous)
	b := p.declareVariable(name, isConst)
	if !b.isGlobal {
		// leave the local uninitialized until its initializer (if any)
		// finishes compiling, so `var x = x;` sees x as not-yet-declared.
	}
	if p.match(token.EQUAL) {
		p.expression()
	} else {
		p.emitOpcode(chunk.NULL)
	}
	p.endOfStatement()
	p.defineVariable(b)
}

func (p *Parser) funDeclaration() {
	p.consume(token.IDENTIFIER, "expect a function name")
	name := p.lexeme(p.previous)
	b := p.declareVariable(name, false)
	if !b.isGlobal {
		p.markInitialized() // a local function can call itself
	}
	p.function(kindFunction, name)
	p.defineVariable(b)
}

// function compiles `(params) { body }` into a fresh funcState, then emits
// the result into the *enclosing* chunk as CLOSURE plus one (is_local,
// index) pair per captured upvalue.
func (p *Parser) function(kind funcKind, name string) {
	p.current_ = &funcState{
		enclosing: p.current_,
		kind:      kind,
		function: &value.ObjFunction{
			Chunk: chunk.New(p.constants),
			Name:  p.interner.Intern(name),
		},
	}

	// every local declared from here on — slot 0, then each parameter —
	// belongs to the function's own outermost scope, not the top level.
	p.beginScope()

	slot0 := ""
	if kind == kindMethod || kind == kindInitializer {
		slot0 = "this"
	}
	p.current_.locals = append(p.current_.locals, local{name: slot0, depth: p.current_.scopeDepth})

	p.consume(token.LEFT_PAREN, "expect '(' after function name")
	if !p.check(token.RIGHT_PAREN) {
		for {
			p.current_.function.Arity++
			if p.current_.function.Arity > 255 {
				p.errorAtCurrent("cannot have more than 255 parameters")
			}
			p.consume(token.IDENTIFIER, "expect a parameter name")
			b := p.declareVariable(p.lexeme(p.previous), false)
			p.defineVariable(b)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RIGHT_PAREN, "expect ')' after parameters")
	p.consume(token.LEFT_BRACE, "expect '{' before function body")
	p.blockBody()

	// capture the child frame's upvalue list before endCompiler discards the
	// frame in favor of the enclosing one.
	childUpvalues := p.current_.upvalues
	fn := p.endCompiler()

	idx := p.chunk().AddConstant(fn)
	p.emitBytes(chunk.CLOSURE, p.byteOperand(idx))
	for _, up := range childUpvalues {
		isLocal := byte(0)
		if up.isLocal {
			isLocal = 1
		}
		p.emitByte(isLocal)
		p.emitByte(up.index)
	}
}

func (p *Parser) classDeclaration() {
	p.consume(token.IDENTIFIER, "expect a class name")
	name := p.lexeme(p.previous)
	nameIdx := p.identifierConstant(name)
	b := p.declareVariable(name, false)

	p.emitBytes(chunk.CLASS, p.byteOperand(nameIdx))
	p.defineVariable(b)

	cs := &classState{enclosing: p.class}
	p.class = cs

	if p.match(token.COLON) {
		p.consume(token.IDENTIFIER, "expect a base class name")
		baseName := p.lexeme(p.previous)
		if baseName == name {
			p.errorAtPrevious("a class cannot inherit from itself")
		}
		p.loadVariable(baseName)

		p.beginScope()
		p.current_.locals = append(p.current_.locals, local{name: "base", depth: p.current_.scopeDepth})

		p.loadVariable(name)
		p.emitOpcode(chunk.INHERIT)
		cs.hasBase = true
	}

	p.loadVariable(name)
	p.consume(token.LEFT_BRACE, "expect '{' before class body")
	for !p.check(token.RIGHT_BRACE) && !p.check(token.EOF) {
		if p.match(token.NEWLINE) {
			continue
		}
		p.method()
	}
	p.consume(token.RIGHT_BRACE, "expect '}' after class body")
	p.emitOpcode(chunk.POP)

	if cs.hasBase {
		p.endScope()
	}
	p.class = cs.enclosing
}

func (p *Parser) method() {
	p.consume(token.IDENTIFIER, "expect a method name")
	name := p.lexeme(p.previous)
	idx := p.identifierConstant(name)

	kind := kindMethod
	if name == "init" {
		kind = kindInitializer
	}
	p.function(kind, name)
	p.emitBytes(chunk.METHOD, p.byteOperand(idx))
}
