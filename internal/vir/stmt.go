package vir

import (
	"reflect"
	"strings"
)

// Stmt represents a VIR statement.
type Stmt interface {
	isStmt()
	Pos() Position
	String() string
}

// CommentStmt carries a comment into the generated program.
type CommentStmt struct {
	Text     string
	Position Position
}

func (CommentStmt) isStmt()          {}
func (s CommentStmt) Pos() Position  { return s.Position }
func (s CommentStmt) String() string { return "// " + s.Text }

// LabelStmt defines the snapshot point Name that labelled old
// expressions refer to.
type LabelStmt struct {
	Name     string
	Position Position
}

func (LabelStmt) isStmt()          {}
func (s LabelStmt) Pos() Position  { return s.Position }
func (s LabelStmt) String() string { return "label " + s.Name }

// AssignStmt assigns Value to Target, a LocalExpr or a FieldExpr.
type AssignStmt struct {
	Target   Expr
	Value    Expr
	Position Position
}

func (AssignStmt) isStmt()          {}
func (s AssignStmt) Pos() Position  { return s.Position }
func (s AssignStmt) String() string { return s.Target.String() + " := " + s.Value.String() }

// IfStmt is a conditional. Else may be nil.
type IfStmt struct {
	Guard    Expr
	Then     Stmt
	Else     Stmt
	Position Position
}

func (IfStmt) isStmt()         {}
func (s IfStmt) Pos() Position { return s.Position }
func (s IfStmt) String() string {
	result := "if (" + s.Guard.String() + ") " + block(s.Then)
	if s.Else != nil {
		result += " else " + block(s.Else)
	}
	return result
}

// SeqnStmt is a block: local declarations scoped to the block followed by
// a sequence of statements.
type SeqnStmt struct {
	Decls    []LocalVar
	Stmts    []Stmt
	Position Position
}

func (SeqnStmt) isStmt()         {}
func (s SeqnStmt) Pos() Position { return s.Position }
func (s SeqnStmt) String() string {
	parts := make([]string, 0, len(s.Decls)+len(s.Stmts))
	for _, d := range s.Decls {
		parts = append(parts, "var "+d.String())
	}
	for _, st := range s.Stmts {
		parts = append(parts, st.String())
	}
	if len(parts) == 0 {
		return "{}"
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

// WhileStmt is a loop. Invariant is assumed at the loop head.
type WhileStmt struct {
	Cond      Expr
	Invariant Expr
	Body      Stmt
	Position  Position
}

func (WhileStmt) isStmt()         {}
func (s WhileStmt) Pos() Position { return s.Position }
func (s WhileStmt) String() string {
	return "while (" + s.Cond.String() + ") invariant " + s.Invariant.String() + " " + block(s.Body)
}

// MethodCallStmt calls a method and assigns its results to Targets.
type MethodCallStmt struct {
	Name     string
	Args     []Expr
	Targets  []LocalVar
	Position Position
}

func (MethodCallStmt) isStmt()         {}
func (s MethodCallStmt) Pos() Position { return s.Position }
func (s MethodCallStmt) String() string {
	call := s.Name + "(" + joinExprs(s.Args) + ")"
	if len(s.Targets) == 0 {
		return call
	}
	names := make([]string, len(s.Targets))
	for i, t := range s.Targets {
		names[i] = t.Name
	}
	return strings.Join(names, ", ") + " := " + call
}

// AssertStmt checks Expr.
type AssertStmt struct {
	Expr     Expr
	Position Position
}

func (AssertStmt) isStmt()          {}
func (s AssertStmt) Pos() Position  { return s.Position }
func (s AssertStmt) String() string { return "assert " + s.Expr.String() }

// AssumeStmt assumes Expr.
type AssumeStmt struct {
	Expr     Expr
	Position Position
}

func (AssumeStmt) isStmt()          {}
func (s AssumeStmt) Pos() Position  { return s.Position }
func (s AssumeStmt) String() string { return "assume " + s.Expr.String() }

// InhaleStmt adds the permissions and facts of Expr.
type InhaleStmt struct {
	Expr     Expr
	Position Position
}

func (InhaleStmt) isStmt()          {}
func (s InhaleStmt) Pos() Position  { return s.Position }
func (s InhaleStmt) String() string { return "inhale " + s.Expr.String() }

// ExhaleStmt checks and removes the permissions of Expr.
type ExhaleStmt struct {
	Expr     Expr
	Position Position
}

func (ExhaleStmt) isStmt()          {}
func (s ExhaleStmt) Pos() Position  { return s.Position }
func (s ExhaleStmt) String() string { return "exhale " + s.Expr.String() }

// HavocStmt resets Var to an arbitrary value.
type HavocStmt struct {
	Var      LocalVar
	Position Position
}

func (HavocStmt) isStmt()          {}
func (s HavocStmt) Pos() Position  { return s.Position }
func (s HavocStmt) String() string { return "havoc " + s.Var.Name }

func block(s Stmt) string {
	if seqn, ok := s.(SeqnStmt); ok {
		return seqn.String()
	}
	return "{ " + s.String() + " }"
}

// EqualStmt reports whether two statements are structurally equal,
// positions included.
func EqualStmt(a, b Stmt) bool {
	return reflect.DeepEqual(a, b)
}

// Helper functions to construct statements

// Comment creates a comment statement.
func Comment(text string) Stmt {
	return CommentStmt{Text: text}
}

// Label creates a label statement.
func Label(name string) Stmt {
	return LabelStmt{Name: name}
}

// Assign creates an assignment.
func Assign(target, value Expr) Stmt {
	return AssignStmt{Target: target, Value: value}
}

// If creates a conditional. els may be nil.
func If(guard Expr, then, els Stmt) Stmt {
	return IfStmt{Guard: guard, Then: then, Else: els}
}

// Seqn creates a block without declarations.
func Seqn(stmts ...Stmt) SeqnStmt {
	return SeqnStmt{Stmts: stmts}
}

// Block creates a block declaring decls.
func Block(decls []LocalVar, stmts ...Stmt) SeqnStmt {
	return SeqnStmt{Decls: decls, Stmts: stmts}
}

// While creates a loop.
func While(cond, invariant Expr, body Stmt) WhileStmt {
	return WhileStmt{Cond: cond, Invariant: invariant, Body: body}
}

// Call creates a method call.
func Call(name string, args []Expr, targets []LocalVar) Stmt {
	return MethodCallStmt{Name: name, Args: args, Targets: targets}
}

func Assert(e Expr) Stmt { return AssertStmt{Expr: e} }
func Assume(e Expr) Stmt { return AssumeStmt{Expr: e} }
func Inhale(e Expr) Stmt { return InhaleStmt{Expr: e} }
func Exhale(e Expr) Stmt { return ExhaleStmt{Expr: e} }

// Havoc creates a havoc statement for v.
func Havoc(v LocalVar) Stmt {
	return HavocStmt{Var: v}
}
