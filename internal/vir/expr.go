package vir

import (
	"reflect"
	"strconv"
	"strings"
)

// Expr represents a VIR expression.
type Expr interface {
	isExpr()
	Pos() Position
	String() string
}

// LocalExpr is a reference to a local variable.
type LocalExpr struct {
	Var      LocalVar
	Position Position
}

func (LocalExpr) isExpr()          {}
func (e LocalExpr) Pos() Position  { return e.Position }
func (e LocalExpr) String() string { return e.Var.Name }

// ConstKind distinguishes the literal kinds.
type ConstKind int

const (
	_ ConstKind = iota
	ConstBool
	ConstInt
	ConstNull
)

// ConstExpr is a literal.
type ConstExpr struct {
	Kind     ConstKind
	Bool     bool
	Int      int64
	Position Position
}

func (ConstExpr) isExpr()         {}
func (e ConstExpr) Pos() Position { return e.Position }
func (e ConstExpr) String() string {
	switch e.Kind {
	case ConstBool:
		return strconv.FormatBool(e.Bool)
	case ConstInt:
		return strconv.FormatInt(e.Int, 10)
	case ConstNull:
		return "null"
	default:
		return "?"
	}
}

// FieldExpr is a heap field access base.f.
type FieldExpr struct {
	Base     Expr
	Field    Field
	Position Position
}

func (FieldExpr) isExpr()          {}
func (e FieldExpr) Pos() Position  { return e.Position }
func (e FieldExpr) String() string { return e.Base.String() + "." + e.Field.Name }

// UnaryOp represents unary operators.
type UnaryOp int

const (
	OpNot UnaryOp = iota
	OpNeg
)

func (op UnaryOp) String() string {
	switch op {
	case OpNot:
		return "!"
	case OpNeg:
		return "-"
	default:
		return "?"
	}
}

// UnaryExpr is a unary operation.
type UnaryExpr struct {
	Op       UnaryOp
	Arg      Expr
	Position Position
}

func (UnaryExpr) isExpr()          {}
func (e UnaryExpr) Pos() Position  { return e.Position }
func (e UnaryExpr) String() string { return "(" + e.Op.String() + e.Arg.String() + ")" }

// BinaryOp represents binary operators.
type BinaryOp int

const (
	_ BinaryOp = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpAnd
	OpOr
	OpImplies
)

func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpEq:
		return "=="
	case OpNeq:
		return "!="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	case OpImplies:
		return "==>"
	default:
		return "?"
	}
}

// BinaryExpr is a binary operation.
type BinaryExpr struct {
	Op       BinaryOp
	Left     Expr
	Right    Expr
	Position Position
}

func (BinaryExpr) isExpr()         {}
func (e BinaryExpr) Pos() Position { return e.Position }
func (e BinaryExpr) String() string {
	return "(" + e.Left.String() + " " + e.Op.String() + " " + e.Right.String() + ")"
}

// CondExpr is the conditional expression guard ? then : else.
type CondExpr struct {
	Guard    Expr
	Then     Expr
	Else     Expr
	Position Position
}

func (CondExpr) isExpr()         {}
func (e CondExpr) Pos() Position { return e.Position }
func (e CondExpr) String() string {
	return "(" + e.Guard.String() + " ? " + e.Then.String() + " : " + e.Else.String() + ")"
}

// QuantifierKind distinguishes universal from existential quantifiers.
type QuantifierKind int

const (
	ForAllKind QuantifierKind = iota
	ExistsKind
)

func (k QuantifierKind) String() string {
	if k == ExistsKind {
		return "exists"
	}
	return "forall"
}

// Trigger is a set of expressions that instantiate a quantifier.
type Trigger []Expr

// QuantifierExpr binds Vars in Body.
type QuantifierExpr struct {
	Kind     QuantifierKind
	Vars     []LocalVar
	Triggers []Trigger
	Body     Expr
	Position Position
}

func (QuantifierExpr) isExpr()         {}
func (e QuantifierExpr) Pos() Position { return e.Position }
func (e QuantifierExpr) String() string {
	var b strings.Builder
	b.WriteString("(" + e.Kind.String() + " ")
	for i, v := range e.Vars {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(v.String())
	}
	b.WriteString(" :: ")
	for _, trigger := range e.Triggers {
		b.WriteString("{" + joinExprs(trigger) + "} ")
	}
	b.WriteString(e.Body.String() + ")")
	return b.String()
}

// FuncAppExpr is an application of a pure function.
type FuncAppExpr struct {
	Name       string
	Args       []Expr
	FormalArgs []LocalVar
	ReturnType Type
	Position   Position
}

func (FuncAppExpr) isExpr()          {}
func (e FuncAppExpr) Pos() Position  { return e.Position }
func (e FuncAppExpr) String() string { return e.Name + "(" + joinExprs(e.Args) + ")" }

// LabelledOldExpr is the value Inner had at the program point tagged Label.
type LabelledOldExpr struct {
	Label    string
	Inner    Expr
	Position Position
}

func (LabelledOldExpr) isExpr()          {}
func (e LabelledOldExpr) Pos() Position  { return e.Position }
func (e LabelledOldExpr) String() string { return "old[" + e.Label + "](" + e.Inner.String() + ")" }

func joinExprs(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

// EqualExpr reports whether two expressions are structurally equal,
// positions included.
func EqualExpr(a, b Expr) bool {
	return reflect.DeepEqual(a, b)
}

// WithPos returns e with its own position replaced. Children keep theirs.
func WithPos(e Expr, pos Position) Expr {
	switch e := e.(type) {
	case LocalExpr:
		e.Position = pos
		return e
	case ConstExpr:
		e.Position = pos
		return e
	case FieldExpr:
		e.Position = pos
		return e
	case UnaryExpr:
		e.Position = pos
		return e
	case BinaryExpr:
		e.Position = pos
		return e
	case CondExpr:
		e.Position = pos
		return e
	case QuantifierExpr:
		e.Position = pos
		return e
	case FuncAppExpr:
		e.Position = pos
		return e
	case LabelledOldExpr:
		e.Position = pos
		return e
	default:
		return e
	}
}

// Helper functions to construct expressions

// Local creates a reference to v.
func Local(v LocalVar) Expr {
	return LocalExpr{Var: v}
}

// Var creates a reference to a fresh local variable description.
func Var(name string, typ Type) Expr {
	return LocalExpr{Var: LocalVar{Name: name, Typ: typ}}
}

// BoolLit creates a boolean literal.
func BoolLit(v bool) Expr {
	return ConstExpr{Kind: ConstBool, Bool: v}
}

// True and False are the boolean literals without position.
var (
	True  = BoolLit(true)
	False = BoolLit(false)
)

// IntLit creates an integer literal.
func IntLit(v int64) Expr {
	return ConstExpr{Kind: ConstInt, Int: v}
}

// NullLit creates the null reference literal.
func NullLit() Expr {
	return ConstExpr{Kind: ConstNull}
}

// FieldOf creates a field access.
func FieldOf(base Expr, f Field) Expr {
	return FieldExpr{Base: base, Field: f}
}

// Unary creates a unary expression.
func Unary(op UnaryOp, arg Expr) Expr {
	return UnaryExpr{Op: op, Arg: arg}
}

// Not creates a logical negation.
func Not(e Expr) Expr {
	return UnaryExpr{Op: OpNot, Arg: e}
}

// Neg creates an arithmetic negation.
func Neg(e Expr) Expr {
	return UnaryExpr{Op: OpNeg, Arg: e}
}

// Binary creates a binary expression.
func Binary(op BinaryOp, left, right Expr) Expr {
	return BinaryExpr{Op: op, Left: left, Right: right}
}

// BinaryAt creates a binary expression at pos.
func BinaryAt(op BinaryOp, left, right Expr, pos Position) Expr {
	return BinaryExpr{Op: op, Left: left, Right: right, Position: pos}
}

func And(left, right Expr) Expr     { return Binary(OpAnd, left, right) }
func Or(left, right Expr) Expr      { return Binary(OpOr, left, right) }
func Implies(left, right Expr) Expr { return Binary(OpImplies, left, right) }
func Eq(left, right Expr) Expr      { return Binary(OpEq, left, right) }
func Neq(left, right Expr) Expr     { return Binary(OpNeq, left, right) }
func Lt(left, right Expr) Expr      { return Binary(OpLt, left, right) }
func Lte(left, right Expr) Expr     { return Binary(OpLte, left, right) }
func Gt(left, right Expr) Expr      { return Binary(OpGt, left, right) }
func Gte(left, right Expr) Expr     { return Binary(OpGte, left, right) }
func Add(left, right Expr) Expr     { return Binary(OpAdd, left, right) }
func Sub(left, right Expr) Expr     { return Binary(OpSub, left, right) }
func Mul(left, right Expr) Expr     { return Binary(OpMul, left, right) }

// Cond creates a conditional expression.
func Cond(guard, then, els Expr) Expr {
	return CondExpr{Guard: guard, Then: then, Else: els}
}

// ForAll creates a universal quantifier.
func ForAll(vars []LocalVar, triggers []Trigger, body Expr) Expr {
	return QuantifierExpr{Kind: ForAllKind, Vars: vars, Triggers: triggers, Body: body}
}

// Exists creates an existential quantifier.
func Exists(vars []LocalVar, triggers []Trigger, body Expr) Expr {
	return QuantifierExpr{Kind: ExistsKind, Vars: vars, Triggers: triggers, Body: body}
}

// FuncApp creates a function application.
func FuncApp(name string, args []Expr, formalArgs []LocalVar, returnType Type) Expr {
	return FuncAppExpr{Name: name, Args: args, FormalArgs: formalArgs, ReturnType: returnType}
}

// Old creates a labelled old expression.
func Old(label string, inner Expr) Expr {
	return LabelledOldExpr{Label: label, Inner: inner}
}

// OldAt creates a labelled old expression at pos.
func OldAt(label string, inner Expr, pos Position) Expr {
	return LabelledOldExpr{Label: label, Inner: inner, Position: pos}
}
