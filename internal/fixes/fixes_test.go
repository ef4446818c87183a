package fixes

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gnolang/virfix/internal/vir"
)

func TestFixMethod(t *testing.T) {
	t.Parallel()

	// an unrolled first iteration followed by the loop itself
	m := method(vir.Seqn(
		vir.Label("iter"),
		inc(x),
		vir.Assert(vir.Gt(x, vir.Old("iter", x))),
		vir.Label("iter"),
		vir.While(vir.Lt(x, vir.IntLit(10)), vir.Gte(x, vir.Old("iter", x)), vir.Seqn(inc(x), vir.Assign(y, x))),
	))
	m.Pres = []vir.Expr{vir.Gte(vir.Old(vir.PreLabel, x), vir.IntLit(0))}
	m.Posts = []vir.Expr{vir.Gt(x, vir.Old(vir.PreLabel, x))}

	got, err := FixMethod(m, HavocOptions{})
	require.NoError(t, err)

	want := m
	want.Pres = []vir.Expr{vir.Gte(x, vir.IntLit(0))}
	body := vir.Seqn(
		vir.Label("iter"),
		inc(x),
		vir.Assert(vir.Gt(x, vir.Old("iter", x))),
		vir.Label("iter$1"),
		vir.Havoc(xVar),
		vir.Havoc(yVar),
		vir.While(vir.Lt(x, vir.IntLit(10)), vir.Gte(x, vir.Old("iter$1", x)), vir.Seqn(inc(x), vir.Assign(y, x))),
	)
	want.Body = &body
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FixMethod() mismatch (-want +got):\n%s", diff)
	}

	again, err := FixMethod(got, HavocOptions{})
	require.NoError(t, err)
	if diff := cmp.Diff(got, again); diff != "" {
		t.Errorf("FixMethod() is not idempotent (-once +twice):\n%s", diff)
	}
}

func TestFixMethodDefect(t *testing.T) {
	t.Parallel()

	m := method(vir.Seqn(
		vir.While(b, vir.True, vir.Seqn(inc(x))),
		vir.Assert(vir.Eq(vir.Old("nowhere", x), x)),
	))
	got, err := FixMethod(m, HavocOptions{})
	requireDefect(t, err, DanglingLabel)
	assert.Equal(t, m, got)
	assert.Contains(t, err.Error(), `label "nowhere" is not defined`)
}

func TestFixMethodLogs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })

	m := method(vir.Seqn(
		vir.Label("l"),
		vir.Label("l"),
		vir.While(b, vir.True, vir.Seqn(inc(x))),
	))
	_, err := FixMethod(m, HavocOptions{})
	require.NoError(t, err)

	renamed := logs.FilterMessage("label renamed").All()
	require.Len(t, renamed, 1)
	assert.Equal(t, map[string]interface{}{"method": "m", "label": "l", "name": "l$1"}, renamed[0].ContextMap())

	havocked := logs.FilterMessage("loop targets havocked").All()
	require.Len(t, havocked, 1)
	assert.Equal(t, []interface{}{"x"}, havocked[0].ContextMap()["vars"])

	_, err = FixMethod(method(vir.Seqn(vir.Assert(vir.Old("gone", x)))), HavocOptions{})
	requireDefect(t, err, DanglingLabel)
	assert.Equal(t, 1, logs.FilterMessage("encoding defect").Len())
}
