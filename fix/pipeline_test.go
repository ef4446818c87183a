package fix

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gnolang/virfix/internal/fixes"
	"github.com/gnolang/virfix/internal/vir"
	"github.com/gnolang/virfix/internal/virtext"
)

type mockFixer struct {
	mock.Mock
}

func (m *mockFixer) FixMethod(meth vir.Method) (vir.Method, error) {
	args := m.Called(meth)
	return args.Get(0).(vir.Method), args.Error(1)
}

func (m *mockFixer) FixFunction(f vir.Function) (vir.Function, error) {
	args := m.Called(f)
	return args.Get(0).(vir.Function), args.Error(1)
}

func unit(name string) vir.Method {
	body := vir.Seqn(vir.Label(name))
	return vir.Method{Name: name, Body: &body}
}

func fixedUnit(name string) vir.Method {
	m := unit(name)
	m.GhostLabels = []string{"fixed"}
	return m
}

func TestFixProgramIsolatesDefects(t *testing.T) {
	t.Parallel()

	defect := &fixes.EncodingDefect{Kind: fixes.DanglingLabel, Unit: "b", Label: "gone"}
	fn := vir.Function{Name: "f", ReturnType: vir.IntType}

	fixer := new(mockFixer)
	fixer.On("FixFunction", fn).Return(fn, nil)
	fixer.On("FixMethod", unit("a")).Return(fixedUnit("a"), nil)
	fixer.On("FixMethod", unit("b")).Return(unit("b"), defect)
	fixer.On("FixMethod", unit("c")).Return(fixedUnit("c"), nil)

	prog := vir.Program{
		Functions: []vir.Function{fn},
		Methods:   []vir.Method{unit("a"), unit("b"), unit("c")},
	}
	p := NewWithFixer(Config{Workers: 2}, nil, fixer)
	report, err := p.FixProgram(context.Background(), prog)
	require.NoError(t, err)
	fixer.AssertExpectations(t)

	assert.Equal(t, []vir.Method{fixedUnit("a"), unit("b"), fixedUnit("c")}, report.Program.Methods)
	assert.Equal(t, []UnitResult{
		{Kind: FunctionUnit, Name: "f"},
		{Kind: MethodUnit, Name: "a"},
		{Kind: MethodUnit, Name: "b", Err: defect},
		{Kind: MethodUnit, Name: "c"},
	}, report.Units)
	assert.Equal(t, []*fixes.EncodingDefect{defect}, report.Defects())
	assert.True(t, report.Failed())

	// the input program is left alone
	assert.Equal(t, unit("a"), prog.Methods[0])
}

func TestFixProgramFailFast(t *testing.T) {
	t.Parallel()

	defect := &fixes.EncodingDefect{Kind: fixes.DanglingLabel, Unit: "b", Label: "gone"}
	fixer := new(mockFixer)
	fixer.On("FixMethod", unit("a")).Return(fixedUnit("a"), nil)
	fixer.On("FixMethod", unit("b")).Return(unit("b"), defect)
	fixer.On("FixMethod", unit("c")).Return(fixedUnit("c"), nil).Maybe()

	p := NewWithFixer(Config{Workers: 1, FailFast: true}, nil, fixer)
	_, err := p.FixProgram(context.Background(), vir.Program{
		Methods: []vir.Method{unit("a"), unit("b"), unit("c")},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, defect))
	assert.Contains(t, err.Error(), "method b: ")
	fixer.AssertExpectations(t)
}

func TestFixProgramCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fixer := new(mockFixer)
	p := NewWithFixer(DefaultConfig(), nil, fixer)
	_, err := p.FixProgram(ctx, vir.Program{Methods: []vir.Method{unit("a")}})
	assert.ErrorIs(t, err, context.Canceled)
	fixer.AssertNotCalled(t, "FixMethod", mock.Anything)
}

const pipelineProgram = `
functions:
  - name: pure
    args: ["n: Int"]
    returns: Int
    body: "old[l](n)"
methods:
  - name: sum
    args: ["n: Int"]
    returns: ["res: Int"]
    locals: ["i: Int"]
    body:
      - label: l
      - assign: i
        value: 0
      - label: l
      - while: "i < n"
        invariant: "i >= old[l](i)"
        body:
          - assign: i
            value: "i + 1"
          - assign: res
            value: "res + i"
  - name: broken
    args: ["n: Int"]
    body:
      - assert: "old[nowhere](n) == n"
`

func TestPipelineFixesProgram(t *testing.T) {
	t.Parallel()

	prog, err := virtext.DecodeProgram([]byte(pipelineProgram))
	require.NoError(t, err)

	core, logs := observer.New(zapcore.InfoLevel)
	p := New(Config{Workers: 4}, zap.New(core))
	report, err := p.FixProgram(context.Background(), prog)
	require.NoError(t, err)

	defects := report.Defects()
	require.Len(t, defects, 2)
	assert.Equal(t, fixes.OldInFunction, defects[0].Kind)
	assert.Equal(t, fixes.DanglingLabel, defects[1].Kind)
	assert.Equal(t, "broken", defects[1].Unit)

	sum, ok := report.Program.Method("sum")
	require.True(t, ok)
	var got []string
	for _, s := range sum.Body.Stmts {
		got = append(got, s.String())
	}
	assert.Equal(t, []string{
		"label l",
		"i := 0",
		"label l$1",
		"havoc i",
		"havoc res",
		"while ((i < n)) invariant (i >= old[l$1](i)) { i := (i + 1); res := (res + i) }",
	}, got)

	broken, ok := report.Program.Method("broken")
	require.True(t, ok)
	assert.Equal(t, prog.Methods[1], broken)

	entries := logs.FilterMessage("program fixed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(2), entries[0].ContextMap()["defects"])
}

func TestPipelineFixMethod(t *testing.T) {
	t.Parallel()

	x := vir.NewLocalVar("x", vir.IntType)
	body := vir.Seqn(vir.While(vir.True, vir.True, vir.Seqn(vir.Assign(vir.Local(x), vir.IntLit(1)))))
	m := vir.Method{Name: "m", Locals: []vir.LocalVar{x}, Body: &body}

	got, err := New(DefaultConfig(), nil).FixMethod(m)
	require.NoError(t, err)
	assert.Len(t, got.Body.Stmts, 2)
	assert.Equal(t, vir.Havoc(x), got.Body.Stmts[0])
}
