package fixes

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/virfix/internal/vir"
)

func loopUntil(limit int64, body ...vir.Stmt) vir.WhileStmt {
	return vir.While(vir.Lt(x, vir.IntLit(limit)), vir.True, vir.Seqn(body...))
}

func TestAssignedLocals(t *testing.T) {
	t.Parallel()

	zVar := vir.NewLocalVar("z", vir.IntType)
	wVar := vir.NewLocalVar("w", vir.IntType)
	vVar := vir.NewLocalVar("v", vir.IntType)
	rVar := vir.NewLocalVar("r", vir.RefType)
	valF := vir.NewField("val", vir.IntType)

	body := vir.Seqn(
		vir.Assign(x, vir.IntLit(1)),
		vir.Assign(vir.FieldOf(vir.Local(rVar), valF), x),
		vir.Call("callee", []vir.Expr{x}, []vir.LocalVar{yVar, xVar}),
		vir.Havoc(zVar),
		vir.If(b, vir.Seqn(vir.Assign(vir.Local(wVar), x)), nil),
		vir.While(b, vir.True, vir.Seqn(vir.Assign(vir.Local(vVar), x), inc(x))),
		vir.Assert(vir.Gt(x, vir.IntLit(0))),
	)
	assert.Equal(t, []vir.LocalVar{xVar, yVar, zVar, wVar, vVar}, AssignedLocals(body))
}

func TestAssignedLocalsNone(t *testing.T) {
	t.Parallel()

	body := vir.Seqn(vir.Assert(b), vir.Label("l"), vir.Comment("nothing"))
	assert.Empty(t, AssignedLocals(body))
}

func TestAssignedLocalsScoped(t *testing.T) {
	t.Parallel()

	body := vir.Block([]vir.LocalVar{tmpVar},
		vir.Assign(tmp, x),
		vir.Assign(y, tmp),
	)
	assert.Equal(t, []vir.LocalVar{yVar}, AssignedLocals(body))
	assert.Equal(t, []vir.LocalVar{tmpVar, yVar}, HavocOptions{IncludeScoped: true}.AssignedLocals(body))

	// the declaration only covers its own block
	body = vir.Seqn(
		vir.Block([]vir.LocalVar{tmpVar}, vir.Assign(tmp, x)),
		vir.Assign(tmp, y),
	)
	assert.Equal(t, []vir.LocalVar{tmpVar}, AssignedLocals(body))
}

func TestHavocAssignedLocals(t *testing.T) {
	t.Parallel()

	pos := vir.Position{Line: 4, Column: 2}
	loop := loopUntil(10, inc(x), vir.Assign(y, x))
	loop.Position = pos

	got := HavocAssignedLocals(loop)
	want := vir.SeqnStmt{
		Stmts: []vir.Stmt{
			vir.HavocStmt{Var: xVar, Position: pos},
			vir.HavocStmt{Var: yVar, Position: pos},
			loop,
		},
		Position: pos,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("HavocAssignedLocals() mismatch (-want +got):\n%s", diff)
	}
}

func TestHavocLoops(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   vir.Stmt
		want vir.Stmt
	}{
		{
			name: "no loops",
			in:   vir.Seqn(inc(x), vir.Assert(b)),
			want: vir.Seqn(inc(x), vir.Assert(b)),
		},
		{
			name: "loop without assignments",
			in:   vir.Seqn(loopUntil(1, vir.Assert(b))),
			want: vir.Seqn(loopUntil(1, vir.Assert(b))),
		},
		{
			name: "havocs go right before the loop",
			in:   vir.Seqn(inc(y), loopUntil(10, inc(x)), vir.Assert(b)),
			want: vir.Seqn(inc(y), vir.Havoc(xVar), loopUntil(10, inc(x)), vir.Assert(b)),
		},
		{
			name: "nested loops",
			in: vir.Seqn(
				loopUntil(10, inc(x), loopUntil(5, inc(y))),
			),
			want: vir.Seqn(
				vir.Havoc(xVar),
				vir.Havoc(yVar),
				loopUntil(10, inc(x), vir.Havoc(yVar), loopUntil(5, inc(y))),
			),
		},
		{
			name: "loop outside a block",
			in:   vir.If(b, loopUntil(10, inc(x)), nil),
			want: vir.If(b, vir.Seqn(vir.Havoc(xVar), loopUntil(10, inc(x))), nil),
		},
		{
			name: "existing havocs are kept",
			in:   vir.Seqn(vir.Havoc(xVar), loopUntil(10, inc(x), inc(y))),
			want: vir.Seqn(vir.Havoc(xVar), vir.Havoc(yVar), loopUntil(10, inc(x), inc(y))),
		},
		{
			name: "block local stays in the body",
			in: vir.Seqn(
				loopUntil(10, vir.Block([]vir.LocalVar{tmpVar}, vir.Assign(tmp, x), inc(x))),
			),
			want: vir.Seqn(
				vir.Havoc(xVar),
				loopUntil(10, vir.Block([]vir.LocalVar{tmpVar}, vir.Assign(tmp, x), inc(x))),
			),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := HavocLoops(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("HavocLoops() mismatch (-want +got):\n%s", diff)
			}
			again := HavocLoops(got)
			if diff := cmp.Diff(got, again); diff != "" {
				t.Errorf("HavocLoops() is not idempotent (-once +twice):\n%s", diff)
			}
		})
	}
}

func TestHavocLoopsIncludeScoped(t *testing.T) {
	t.Parallel()

	in := vir.Seqn(loopUntil(10, vir.Block([]vir.LocalVar{tmpVar}, vir.Assign(tmp, x))))
	got := HavocOptions{IncludeScoped: true}.HavocLoops(in)
	assert.Equal(t, "{ havoc tmp; "+in.Stmts[0].String()+" }", got.String())
}

func TestHavocLoopsConservative(t *testing.T) {
	t.Parallel()

	// every local assigned anywhere in the body is havocked, even on a
	// branch the loop may never take
	in := vir.Seqn(loopUntil(10,
		vir.If(b, vir.Seqn(vir.Assign(y, x)), vir.Seqn(vir.Call("reset", nil, []vir.LocalVar{tmpVar}))),
		inc(x),
	))
	got := HavocLoops(in).(vir.SeqnStmt)
	require.Len(t, got.Stmts, 4)

	var havocked []string
	for _, st := range got.Stmts[:3] {
		havocked = append(havocked, st.(vir.HavocStmt).Var.Name)
	}
	assert.Equal(t, []string{"y", "tmp", "x"}, havocked)
}

func TestHavocMethod(t *testing.T) {
	t.Parallel()

	m := method(vir.Seqn(loopUntil(10, inc(x))))
	got := HavocMethod(m)
	assert.Equal(t, vir.Seqn(vir.Havoc(xVar), loopUntil(10, inc(x))), *got.Body)
	assert.Equal(t, vir.Seqn(loopUntil(10, inc(x))), *m.Body, "input must not change")

	abstract := vir.Method{Name: "abs"}
	assert.Equal(t, abstract, HavocMethod(abstract))
}
