package vir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestConjoinDisjoin(t *testing.T) {
	t.Parallel()
	e1, e2, e3 := Var("a", BoolType), Var("b", BoolType), Var("c", BoolType)
	pos := at(7)

	tests := []struct {
		name   string
		reduce func([]Expr, Position) Expr
		input  []Expr
		want   Expr
	}{
		{"conjoin empty", Conjoin, nil, BoolLit(true)},
		{"disjoin empty", Disjoin, []Expr{}, BoolLit(false)},
		{"conjoin single", Conjoin, []Expr{e1}, e1},
		{"disjoin single", Disjoin, []Expr{e1}, e1},
		{"conjoin two", Conjoin, []Expr{e1, e2}, BinaryAt(OpAnd, e1, e2, pos)},
		{
			"conjoin left associated", Conjoin, []Expr{e1, e2, e3},
			BinaryAt(OpAnd, BinaryAt(OpAnd, e1, e2, pos), e3, pos),
		},
		{
			"disjoin left associated", Disjoin, []Expr{e1, e2, e3},
			BinaryAt(OpOr, BinaryAt(OpOr, e1, e2, pos), e3, pos),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.reduce(tt.input, pos))
		})
	}
}

func TestMapOldExprIdentity(t *testing.T) {
	t.Parallel()
	e := sampleExpr()

	got := MapOldExprAt(e, func(label string, inner Expr, pos Position) Expr {
		return OldAt(label, inner, pos)
	})
	assert.True(t, EqualExpr(e, got))

	unpositioned := And(Old("l0", Var("x", IntType)), LocalExpr{Var: yVar, Position: at(3)})
	got = MapOldExpr(unpositioned, Old)
	assert.True(t, EqualExpr(unpositioned, got))
}

func TestMapOldExprTouchesOnlyOldNodes(t *testing.T) {
	t.Parallel()
	e := sampleExpr()

	got := MapOldExpr(e, func(string, Expr) Expr {
		return ConstExpr{Kind: ConstInt, Int: 42}
	}).(CondExpr)

	orig := e.(CondExpr)
	assert.Equal(t, orig.Guard, got.Guard)
	assert.Equal(t, orig.Else, got.Else)
	quant := got.Then.(QuantifierExpr)
	assert.Equal(t, orig.Then.(QuantifierExpr).Triggers, quant.Triggers)
	assert.Equal(t, "((0 <= i) ==> (f(i) >= 42))", quant.Body.String())
	assert.Empty(t, oldLabels(got))
}

func TestMapOldExprPassesRawInner(t *testing.T) {
	t.Parallel()
	x, y := Local(xVar), Local(yVar)
	nested := Old("outer", Add(x, Old("inner", y)))

	var calls []string
	shallow := MapOldExpr(nested, func(label string, inner Expr) Expr {
		calls = append(calls, label)
		assert.Equal(t, Add(x, Old("inner", y)), inner)
		return Old(label+"'", inner)
	})
	assert.Equal(t, []string{"outer"}, calls)
	assert.Equal(t, "old[outer']((x + old[inner](y)))", shallow.String())

	var deep func(label string, inner Expr) Expr
	deep = func(label string, inner Expr) Expr {
		return Old(label+"'", MapOldExpr(inner, deep))
	}
	assert.Equal(t, []string{"outer'", "inner'"}, oldLabels(MapOldExpr(nested, deep)))
}

func TestMapOldExprLabel(t *testing.T) {
	t.Parallel()
	inner := Add(Local(xVar), Old("deep", Local(yVar)))
	e := ForAll([]LocalVar{iVar}, nil, Implies(
		Gt(Local(iVar), IntLit(0)),
		Eq(OldAt("l0", inner, at(5)), Old("l1", Local(iVar))),
	))

	got := MapOldExprLabel(e, func(label string) string { return "renamed_" + label })

	body := got.(QuantifierExpr).Body.(BinaryExpr).Right.(BinaryExpr)
	first := body.Left.(LabelledOldExpr)
	assert.Equal(t, "renamed_l0", first.Label)
	assert.Equal(t, at(5), first.Position)
	// the wrapped expression is left untouched, nested labels included
	assert.Equal(t, inner, first.Inner)
	assert.Equal(t, "renamed_l1", body.Right.(LabelledOldExpr).Label)
}

func TestMapExpr(t *testing.T) {
	t.Parallel()
	s := sampleStmt()

	var seen int
	got := MapExpr(s, func(e Expr) Expr {
		seen++
		return Not(e)
	})

	top := got.(SeqnStmt)
	require.Len(t, top.Stmts, 9)
	assert.Equal(t, s.(SeqnStmt).Stmts[1], top.Stmts[1])
	outer := top.Stmts[2].(WhileStmt)
	assert.Equal(t, Not(sampleExpr()), outer.Invariant)
	assert.Equal(t, at(34), outer.Position)
	assign := outer.Body.(SeqnStmt).Stmts[1].(WhileStmt).Body.(SeqnStmt).Stmts[0].(AssignStmt)
	assert.IsType(t, UnaryExpr{}, assign.Target)
	assert.IsType(t, UnaryExpr{}, assign.Value)
	// loop conditions and invariants, inner assignment, guard in the outer
	// body, call argument, assertion statements, final conditional assignment
	assert.Equal(t, 4+2+1+1+4+3, seen)
}

func TestFreeVars(t *testing.T) {
	t.Parallel()
	e := And(
		ForAll([]LocalVar{iVar}, nil, Gt(Local(iVar), Local(xVar))),
		Gt(Local(iVar), Old("l", Local(yVar))),
	)

	assert.Equal(t, []LocalVar{xVar, iVar, yVar}, FreeVars(e))
}

func TestSetLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })

	e := Old("l", Var("x", IntType))
	MapOldExprLabel(e, func(label string) string { return label })
	MapOldExpr(e, func(label string, inner Expr) Expr { return inner })

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "Expr.MapOldExprLabel", entries[0].Message)
	assert.Equal(t, "old[l](x)", entries[0].ContextMap()["expr"])
	assert.Equal(t, "Expr.MapOldExpr", entries[1].Message)
}

// oldLabels returns the labels of all labelled old expressions of e,
// nested ones included, in first-occurrence order.
func oldLabels(e Expr) []string {
	var labels []string
	seen := make(map[string]bool)
	w := &ExprWalker{
		LabelledOld: func(_ *ExprWalker, old LabelledOldExpr) bool {
			if !seen[old.Label] {
				seen[old.Label] = true
				labels = append(labels, old.Label)
			}
			return true
		},
	}
	w.Walk(e)
	return labels
}
