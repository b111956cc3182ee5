package compiler

import (
	"fmt"
	goscanner "go/scanner"
	gotoken "go/token"

	"github.com/wldfngrs/olive/lang/scanner"
)

// Error and ErrorList are reused directly from the standard library's
// go/scanner package, exactly as the teacher repo aliases them for its own
// scanner diagnostics: a position plus message, accumulated rather than
// returned as a single first error, so a full compile reports every syntax
// error it finds in one pass.
type (
	Error     = goscanner.Error
	ErrorList = goscanner.ErrorList
)

// errorAt records a compile error at tok's position, entering panic mode so
// that cascading errors from the same bad token aren't also reported.
func (p *Parser) errorAt(tok scanner.Token, format string, args ...any) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	p.hadError = true
	line, col := tok.Pos.LineCol()
	if line == 0 {
		line = tok.Line
	}
	p.errors.Add(gotoken.Position{Line: line, Column: col}, fmt.Sprintf(format, args...))
}

func (p *Parser) errorAtCurrent(format string, args ...any) {
	p.errorAt(p.current, format, args...)
}

func (p *Parser) errorAtPrevious(format string, args ...any) {
	p.errorAt(p.previous, format, args...)
}
