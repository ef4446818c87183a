package virtext

import (
	"fmt"
	"strconv"

	"github.com/gnolang/virfix/internal/vir"
)

// Binding powers, lowest first.
const (
	precLowest = iota
	precCond
	precImplies
	precOr
	precAnd
	precEquality
	precCompare
	precSum
	precProduct
	precPrefix
	precPostfix
)

var binaryOps = map[string]struct {
	op   vir.BinaryOp
	prec int
}{
	"==>": {vir.OpImplies, precImplies},
	"||":  {vir.OpOr, precOr},
	"&&":  {vir.OpAnd, precAnd},
	"==":  {vir.OpEq, precEquality},
	"!=":  {vir.OpNeq, precEquality},
	"<":   {vir.OpLt, precCompare},
	"<=":  {vir.OpLte, precCompare},
	">":   {vir.OpGt, precCompare},
	">=":  {vir.OpGte, precCompare},
	"+":   {vir.OpAdd, precSum},
	"-":   {vir.OpSub, precSum},
	"*":   {vir.OpMul, precProduct},
	"/":   {vir.OpDiv, precProduct},
	"%":   {vir.OpMod, precProduct},
}

// SyntaxError reports a malformed or ill-scoped expression.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d col %d: %s", e.Line, e.Col, e.Msg)
}

// ParseExpr parses the textual form of an expression, the one produced by
// vir.Expr.String. Names are resolved in scope. The result carries no
// positions.
func ParseExpr(src string, scope *Scope) (vir.Expr, error) {
	return ParseExprAt(src, scope, vir.NoPosition)
}

// ParseExprAt is ParseExpr for an expression found at base in some
// enclosing document. Every node is positioned at its first token, or at
// its operator for binary expressions.
//
// An integer literal directly preceded by '-' parses as a negative
// literal.
func ParseExprAt(src string, scope *Scope, base vir.Position) (vir.Expr, error) {
	tokens, err := Lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens, scope: scope, base: base}
	e, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Type != TokenEOF {
		return nil, p.errorf(tok, "unexpected %q after expression", tok.Value)
	}
	return e, nil
}

type parser struct {
	tokens []Token
	cur    int
	scope  *Scope
	base   vir.Position
}

func (p *parser) peek() Token {
	return p.tokens[p.cur]
}

func (p *parser) next() Token {
	tok := p.tokens[p.cur]
	if tok.Type != TokenEOF {
		p.cur++
	}
	return tok
}

func (p *parser) is(value string) bool {
	tok := p.peek()
	return tok.Type == TokenPunct && tok.Value == value
}

func (p *parser) expect(value string) (Token, error) {
	tok := p.next()
	if tok.Type != TokenPunct || tok.Value != value {
		return tok, p.errorf(tok, "expected %q, found %s", value, describe(tok))
	}
	return tok, nil
}

func (p *parser) ident() (Token, error) {
	tok := p.next()
	if tok.Type != TokenIdent {
		return tok, p.errorf(tok, "expected identifier, found %s", describe(tok))
	}
	return tok, nil
}

func (p *parser) errorf(tok Token, format string, args ...any) error {
	pos := p.pos(tok)
	if !pos.IsValid() {
		pos = vir.Position{Line: tok.Line, Column: tok.Col}
	}
	return &SyntaxError{Line: pos.Line, Col: pos.Column, Msg: fmt.Sprintf(format, args...)}
}

// pos translates the location of tok to the enclosing document.
func (p *parser) pos(tok Token) vir.Position {
	if !p.base.IsValid() {
		return vir.NoPosition
	}
	pos := vir.Position{Line: p.base.Line + tok.Line - 1, Column: tok.Col}
	if tok.Line == 1 {
		pos.Column = p.base.Column + tok.Col - 1
	}
	return pos
}

func describe(tok Token) string {
	if tok.Type == TokenEOF {
		return "end of expression"
	}
	return strconv.Quote(tok.Value)
}

func (p *parser) parseExpr(prec int) (vir.Expr, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.Type != TokenPunct {
			return left, nil
		}
		switch {
		case tok.Value == "." && prec < precPostfix:
			p.next()
			name, err := p.ident()
			if err != nil {
				return nil, err
			}
			field, ok := p.scope.lookupField(name.Value)
			if !ok {
				return nil, p.errorf(name, "undeclared field %q", name.Value)
			}
			left = vir.FieldExpr{Base: left, Field: field, Position: p.pos(tok)}
		case tok.Value == "?" && prec < precCond:
			p.next()
			then, err := p.parseExpr(precLowest)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(":"); err != nil {
				return nil, err
			}
			els, err := p.parseExpr(precCond - 1)
			if err != nil {
				return nil, err
			}
			left = vir.CondExpr{Guard: left, Then: then, Else: els, Position: p.pos(tok)}
		default:
			bin, ok := binaryOps[tok.Value]
			if !ok || bin.prec <= prec {
				return left, nil
			}
			p.next()
			rprec := bin.prec
			if bin.op == vir.OpImplies {
				rprec-- // right associative
			}
			right, err := p.parseExpr(rprec)
			if err != nil {
				return nil, err
			}
			left = vir.BinaryExpr{Op: bin.op, Left: left, Right: right, Position: p.pos(tok)}
		}
	}
}

func (p *parser) parsePrefix() (vir.Expr, error) {
	tok := p.next()
	switch tok.Type {
	case TokenInt:
		return p.intLit(tok, "")
	case TokenIdent:
		return p.parseName(tok)
	case TokenPunct:
		switch tok.Value {
		case "(":
			e, err := p.parseExpr(precLowest)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(")"); err != nil {
				return nil, err
			}
			return e, nil
		case "!":
			arg, err := p.parseExpr(precPrefix)
			if err != nil {
				return nil, err
			}
			return vir.UnaryExpr{Op: vir.OpNot, Arg: arg, Position: p.pos(tok)}, nil
		case "-":
			if lit := p.peek(); lit.Type == TokenInt && lit.Line == tok.Line && lit.Col == tok.Col+1 {
				p.next()
				c, err := p.intLit(lit, "-")
				if err != nil {
					return nil, err
				}
				return vir.WithPos(c, p.pos(tok)), nil
			}
			arg, err := p.parseExpr(precPrefix)
			if err != nil {
				return nil, err
			}
			return vir.UnaryExpr{Op: vir.OpNeg, Arg: arg, Position: p.pos(tok)}, nil
		}
	}
	return nil, p.errorf(tok, "unexpected %s", describe(tok))
}

func (p *parser) intLit(tok Token, sign string) (vir.Expr, error) {
	n, err := strconv.ParseInt(sign+tok.Value, 10, 64)
	if err != nil {
		return nil, p.errorf(tok, "integer literal %s%s out of range", sign, tok.Value)
	}
	return vir.ConstExpr{Kind: vir.ConstInt, Int: n, Position: p.pos(tok)}, nil
}

func (p *parser) parseName(tok Token) (vir.Expr, error) {
	pos := p.pos(tok)
	switch tok.Value {
	case "true", "false":
		return vir.ConstExpr{Kind: vir.ConstBool, Bool: tok.Value == "true", Position: pos}, nil
	case "null":
		return vir.ConstExpr{Kind: vir.ConstNull, Position: pos}, nil
	case "old":
		return p.parseOld(tok)
	case "forall":
		return p.parseQuantifier(tok, vir.ForAllKind)
	case "exists":
		return p.parseQuantifier(tok, vir.ExistsKind)
	}

	if p.is("(") {
		return p.parseCall(tok)
	}
	v, ok := p.scope.lookupVar(tok.Value)
	if !ok {
		return nil, p.errorf(tok, "undeclared variable %q", tok.Value)
	}
	return vir.LocalExpr{Var: v, Position: pos}, nil
}

// old[label](inner)
func (p *parser) parseOld(tok Token) (vir.Expr, error) {
	if _, err := p.expect("["); err != nil {
		return nil, err
	}
	label, err := p.ident()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("]"); err != nil {
		return nil, err
	}
	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	inner, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}
	return vir.LabelledOldExpr{Label: label.Value, Inner: inner, Position: p.pos(tok)}, nil
}

func (p *parser) parseCall(tok Token) (vir.Expr, error) {
	sig, ok := p.scope.lookupFunc(tok.Value)
	if !ok {
		return nil, p.errorf(tok, "undeclared function %q", tok.Value)
	}
	p.next() // (
	args, err := p.parseList(")")
	if err != nil {
		return nil, err
	}
	if len(args) != len(sig.formalArgs) {
		return nil, p.errorf(tok, "function %q takes %d arguments, got %d", tok.Value, len(sig.formalArgs), len(args))
	}
	return vir.FuncAppExpr{
		Name:       tok.Value,
		Args:       args,
		FormalArgs: sig.formalArgs,
		ReturnType: sig.returnType,
		Position:   p.pos(tok),
	}, nil
}

// parseList parses comma separated expressions up to and including end.
// An empty list is nil.
func (p *parser) parseList(end string) ([]vir.Expr, error) {
	var exprs []vir.Expr
	if p.is(end) {
		p.next()
		return exprs, nil
	}
	for {
		e, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
		if p.is(",") {
			p.next()
			continue
		}
		if _, err := p.expect(end); err != nil {
			return nil, err
		}
		return exprs, nil
	}
}

// forall x: T, y: U :: {trigger, ...} ... body
func (p *parser) parseQuantifier(tok Token, kind vir.QuantifierKind) (vir.Expr, error) {
	var vars []vir.LocalVar
	for {
		v, err := p.parseVarDecl()
		if err != nil {
			return nil, err
		}
		vars = append(vars, v)
		if !p.is(",") {
			break
		}
		p.next()
	}
	if _, err := p.expect("::"); err != nil {
		return nil, err
	}

	outer := p.scope
	p.scope = outer.Child(vars...)
	defer func() { p.scope = outer }()

	var triggers []vir.Trigger
	for p.is("{") {
		p.next()
		exprs, err := p.parseList("}")
		if err != nil {
			return nil, err
		}
		triggers = append(triggers, vir.Trigger(exprs))
	}
	body, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, err
	}
	return vir.QuantifierExpr{
		Kind:     kind,
		Vars:     vars,
		Triggers: triggers,
		Body:     body,
		Position: p.pos(tok),
	}, nil
}

func (p *parser) parseVarDecl() (vir.LocalVar, error) {
	name, err := p.ident()
	if err != nil {
		return vir.LocalVar{}, err
	}
	if _, err := p.expect(":"); err != nil {
		return vir.LocalVar{}, err
	}
	typ, err := p.ident()
	if err != nil {
		return vir.LocalVar{}, err
	}
	return vir.NewLocalVar(name.Value, vir.ParseType(typ.Value)), nil
}

// ParseVarDecl parses a declaration of the form "name: Type".
func ParseVarDecl(src string) (vir.LocalVar, error) {
	tokens, err := Lex(src)
	if err != nil {
		return vir.LocalVar{}, err
	}
	p := &parser{tokens: tokens, scope: NewScope()}
	v, err := p.parseVarDecl()
	if err != nil {
		return vir.LocalVar{}, err
	}
	if tok := p.peek(); tok.Type != TokenEOF {
		return vir.LocalVar{}, p.errorf(tok, "unexpected %q after declaration", tok.Value)
	}
	return v, nil
}
