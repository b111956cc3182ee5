package compiler

import "github.com/wldfngrs/olive/lang/token"

// precedence levels, ascending, per the language's Pratt grammar.
type precedence int

const (
	precNone precedence = iota
	precAssignment
	precTernary
	precOr
	precAnd
	precEquality
	precComparison
	// precInterpolation is the slot CONCAT occupies in the grammar's
	// precedence ordering. CONCAT deliberately has no entry in rules: the
	// interpolation prefix handler consumes it itself, and leaving it
	// rule-less (precNone) is what makes the embedded expression's
	// parsePrecedence stop right in front of it.
	precInterpolation
	precTerm
	precFactor
	precUnary
	precCall
	precPrimary
)

// parseFn is either a prefix or infix parsing routine. canAssign is only
// meaningful to prefix rules for identifier- and property-shaped
// expressions; every other rule ignores it.
type parseFn func(p *Parser, canAssign bool)

type rule struct {
	prefix parseFn
	infix  parseFn
	prec   precedence
}

// rules is indexed by token.Token, mirroring the enum-indexed-array idiom
// used throughout this module (token.tokenNames, chunk.opcodeNames).
//
// It is populated in init() rather than via a top-level initializer because
// its entries reference parsing functions that transitively call getRule,
// which reads rules itself; the Go compiler's (purely syntactic, not
// execution-order-aware) initialization-cycle check flags that as a cycle
// even though no function here is actually invoked during initialization.
var rules [token.BASE + 1]rule

func init() {
	rules = [len(rules)]rule{
		token.LEFT_PAREN:    {prefix: (*Parser).grouping, infix: (*Parser).call, prec: precCall},
		token.DOT:           {infix: (*Parser).dot, prec: precCall},
		token.MINUS:         {prefix: (*Parser).unary, infix: (*Parser).binary, prec: precTerm},
		token.PLUS:          {infix: (*Parser).binary, prec: precTerm},
		token.SLASH:         {infix: (*Parser).binary, prec: precFactor},
		token.STAR:          {infix: (*Parser).binary, prec: precFactor},
		token.PERCENT:       {infix: (*Parser).binary, prec: precFactor},
		token.QUESTION:      {infix: (*Parser).ternary, prec: precTernary},
		token.BANG:          {prefix: (*Parser).unary},
		token.BANG_EQUAL:    {infix: (*Parser).binary, prec: precEquality},
		token.EQUAL_EQUAL:   {infix: (*Parser).binary, prec: precEquality},
		token.GREATER:       {infix: (*Parser).binary, prec: precComparison},
		token.GREATER_EQUAL: {infix: (*Parser).binary, prec: precComparison},
		token.LESS:          {infix: (*Parser).binary, prec: precComparison},
		token.LESS_EQUAL:    {infix: (*Parser).binary, prec: precComparison},
		token.AND:           {infix: (*Parser).and, prec: precAnd},
		token.OR:            {infix: (*Parser).or, prec: precOr},
		token.IDENTIFIER:    {prefix: (*Parser).variable},
		token.NUMBER:        {prefix: (*Parser).number},
		token.STRING:        {prefix: (*Parser).stringLiteral},
		token.INTERPOLATION: {prefix: (*Parser).interpolation},
		token.TRUE:          {prefix: (*Parser).literal},
		token.FALSE:         {prefix: (*Parser).literal},
		token.NULL:          {prefix: (*Parser).literal},
		token.THIS:          {prefix: (*Parser).this},
		token.BASE:          {prefix: (*Parser).base},
	}
}

func getRule(tok token.Token) rule {
	if int(tok) < len(rules) {
		return rules[tok]
	}
	return rule{}
}
