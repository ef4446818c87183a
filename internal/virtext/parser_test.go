package virtext

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/virfix/internal/vir"
)

var (
	xVar = vir.NewLocalVar("x", vir.IntType)
	yVar = vir.NewLocalVar("y", vir.IntType)
	bVar = vir.NewLocalVar("b", vir.BoolType)
	rVar = vir.NewLocalVar("r", vir.TypedRef("Node"))
	valF = vir.NewField("val", vir.IntType)
	next = vir.NewField("next", vir.TypedRef("Node"))
	nArg = vir.NewLocalVar("n", vir.IntType)
)

func testScope() *Scope {
	s := NewScope()
	s.DeclareVars(xVar, yVar, bVar, rVar)
	s.DeclareField(valF)
	s.DeclareField(next)
	s.DeclareFunc("f", []vir.LocalVar{nArg}, vir.IntType)
	s.DeclareFunc("zero", nil, vir.IntType)
	return s
}

func TestParseExprRoundTrip(t *testing.T) {
	t.Parallel()

	x, y, b, r := vir.Local(xVar), vir.Local(yVar), vir.Local(bVar), vir.Local(rVar)
	i := vir.NewLocalVar("i", vir.IntType)
	fi := vir.FuncApp("f", []vir.Expr{vir.Local(i)}, []vir.LocalVar{nArg}, vir.IntType)

	tests := []vir.Expr{
		x,
		vir.IntLit(42),
		vir.IntLit(-7),
		vir.True,
		vir.NullLit(),
		vir.Add(x, vir.Mul(y, vir.IntLit(2))),
		vir.Sub(vir.Sub(x, y), vir.IntLit(1)),
		vir.Binary(vir.OpMod, vir.Binary(vir.OpDiv, x, y), vir.IntLit(3)),
		vir.Implies(b, vir.Implies(b, vir.Not(b))),
		vir.Or(vir.And(b, b), vir.Neq(x, y)),
		vir.Neg(x),
		vir.Cond(b, x, vir.Cond(b, y, vir.IntLit(0))),
		vir.FieldOf(vir.FieldOf(r, next), valF),
		vir.Eq(r, vir.NullLit()),
		vir.FuncApp("zero", nil, nil, vir.IntType),
		vir.Old("l$1", vir.Add(x, vir.Old(vir.PreLabel, y))),
		vir.ForAll([]vir.LocalVar{i}, []vir.Trigger{{fi}}, vir.Implies(vir.Lte(vir.IntLit(0), vir.Local(i)), vir.Gte(fi, x))),
		vir.Exists([]vir.LocalVar{i, vir.NewLocalVar("j", vir.BoolType)}, nil, vir.Lt(vir.Local(i), x)),
	}
	for _, want := range tests {
		t.Run(want.String(), func(t *testing.T) {
			t.Parallel()

			got, err := ParseExpr(want.String(), testScope())
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("ParseExpr(%q) mismatch (-want +got):\n%s", want.String(), diff)
			}
		})
	}
}

func TestParseExprPrecedence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src  string
		want string
	}{
		{"x + y * 2", "(x + (y * 2))"},
		{"x - y - 1", "((x - y) - 1)"},
		{"b ==> b ==> b", "(b ==> (b ==> b))"},
		{"b || b && b", "(b || (b && b))"},
		{"x < y == b", "((x < y) == b)"},
		{"!b && b", "((!b) && b)"},
		{"-x * y", "((-x) * y)"},
		{"x - -1", "(x - -1)"},
		{"r.val + 1", "(r.val + 1)"},
		{"b ? x : b ? y : 0", "(b ? x : (b ? y : 0))"},
		{"b ==> b ? x : y", "((b ==> b) ? x : y)"},
		{"forall i: Int :: i > x && b", "(forall i: Int :: ((i > x) && b))"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			t.Parallel()

			got, err := ParseExpr(tt.src, testScope())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseExprErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src string
		msg string
	}{
		{"x +", "line 1 col 4: unexpected end of expression"},
		{"z", `line 1 col 1: undeclared variable "z"`},
		{"r.size", `line 1 col 3: undeclared field "size"`},
		{"g(x)", `line 1 col 1: undeclared function "g"`},
		{"f(x, y)", `line 1 col 1: function "f" takes 1 arguments, got 2`},
		{"old[l(x)", `line 1 col 6: expected "]", found "("`},
		{"x y", `line 1 col 3: unexpected "y" after expression`},
		{"forall i: Int i", `line 1 col 15: expected "::", found "i"`},
		{"(x", `line 1 col 3: expected ")", found end of expression`},
		{"99999999999999999999", "line 1 col 1: integer literal 99999999999999999999 out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			t.Parallel()

			_, err := ParseExpr(tt.src, testScope())
			require.Error(t, err)
			assert.Equal(t, tt.msg, err.Error())
		})
	}
}

func TestParseExprQuantifierScope(t *testing.T) {
	t.Parallel()

	_, err := ParseExpr("(forall k: Int :: k > 0) && k > 0", testScope())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `undeclared variable "k"`)
}

func TestParseExprAt(t *testing.T) {
	t.Parallel()

	base := vir.Position{Line: 3, Column: 5}
	got, err := ParseExprAt("x +\n  y", testScope(), base)
	require.NoError(t, err)

	bin := got.(vir.BinaryExpr)
	assert.Equal(t, vir.Position{Line: 3, Column: 7}, bin.Position)
	assert.Equal(t, vir.Position{Line: 3, Column: 5}, bin.Left.Pos())
	assert.Equal(t, vir.Position{Line: 4, Column: 3}, bin.Right.Pos())

	_, err = ParseExprAt("x + z", testScope(), base)
	require.Error(t, err)
	assert.Equal(t, `line 3 col 9: undeclared variable "z"`, err.Error())
}

func TestParseVarDecl(t *testing.T) {
	t.Parallel()

	v, err := ParseVarDecl("head: Node")
	require.NoError(t, err)
	assert.Equal(t, vir.NewLocalVar("head", vir.TypedRef("Node")), v)

	_, err = ParseVarDecl("head")
	assert.Error(t, err)
	_, err = ParseVarDecl("a: Int b")
	assert.Error(t, err)
}
