package fix

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gnolang/virfix/internal/fixes"
	"github.com/gnolang/virfix/internal/vir"
)

// UnitFixer fixes a single verification unit. On a defect it returns the
// unit unchanged together with an *fixes.EncodingDefect.
type UnitFixer interface {
	FixMethod(m vir.Method) (vir.Method, error)
	FixFunction(f vir.Function) (vir.Function, error)
}

// passes runs the ghost variable pass and the loop havoc pass.
type passes struct {
	opts fixes.HavocOptions
}

func (p passes) FixMethod(m vir.Method) (vir.Method, error) {
	return fixes.FixMethod(m, p.opts)
}

func (p passes) FixFunction(f vir.Function) (vir.Function, error) {
	return fixes.FixFunctionGhostVars(f)
}

// UnitKind distinguishes the units of a program.
type UnitKind string

const (
	MethodUnit   UnitKind = "method"
	FunctionUnit UnitKind = "function"
)

// UnitResult is the outcome of fixing one unit.
type UnitResult struct {
	Kind UnitKind
	Name string
	// Err is nil when the unit was fixed. Otherwise the unit was kept as
	// it was.
	Err error
}

// Defect returns the encoding defect of the unit, if any.
func (r UnitResult) Defect() (*fixes.EncodingDefect, bool) {
	var defect *fixes.EncodingDefect
	ok := errors.As(r.Err, &defect)
	return defect, ok
}

// Report is the outcome of fixing a program: the fixed program and one
// result per function and method, functions first, in declaration order.
type Report struct {
	Program vir.Program
	Units   []UnitResult
}

// Defects returns the encoding defects found in the program.
func (r Report) Defects() []*fixes.EncodingDefect {
	var defects []*fixes.EncodingDefect
	for _, u := range r.Units {
		if defect, ok := u.Defect(); ok {
			defects = append(defects, defect)
		}
	}
	return defects
}

// Failed reports whether some unit could not be fixed.
func (r Report) Failed() bool {
	for _, u := range r.Units {
		if u.Err != nil {
			return true
		}
	}
	return false
}

// Pipeline applies the fix passes to programs.
type Pipeline struct {
	cfg    Config
	logger *zap.Logger
	fixer  UnitFixer
}

// New returns a pipeline running the fix passes configured by cfg. A nil
// logger discards the log output.
func New(cfg Config, logger *zap.Logger) *Pipeline {
	return NewWithFixer(cfg, logger, passes{opts: cfg.HavocOptions()})
}

// NewWithFixer returns a pipeline fixing units with fixer.
func NewWithFixer(cfg Config, logger *zap.Logger, fixer UnitFixer) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{cfg: cfg, logger: logger, fixer: fixer}
}

// FixMethod fixes a single method.
func (p *Pipeline) FixMethod(m vir.Method) (vir.Method, error) {
	fixed, err := p.fixer.FixMethod(m)
	if err != nil {
		p.logger.Debug("method kept unchanged", zap.String("method", m.Name), zap.Error(err))
		return m, err
	}
	p.logger.Debug("method fixed", zap.String("method", m.Name))
	return fixed, nil
}

// FixFunction fixes a single function.
func (p *Pipeline) FixFunction(f vir.Function) (vir.Function, error) {
	fixed, err := p.fixer.FixFunction(f)
	if err != nil {
		p.logger.Debug("function kept unchanged", zap.String("function", f.Name), zap.Error(err))
		return f, err
	}
	return fixed, nil
}

// FixProgram fixes the functions and methods of prog concurrently. A
// defective unit is kept unchanged and reported in its UnitResult while
// the other units are still fixed, unless the configuration asks to fail
// fast. Cancelling ctx stops the run before the next unit starts.
func (p *Pipeline) FixProgram(ctx context.Context, prog vir.Program) (Report, error) {
	fixed := prog
	fixed.Functions = append([]vir.Function(nil), prog.Functions...)
	fixed.Methods = append([]vir.Method(nil), prog.Methods...)
	results := make([]UnitResult, len(prog.Functions)+len(prog.Methods))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.workers())

	// each goroutine owns the slots of its unit
	run := func(slot int, kind UnitKind, name string, fix func() error) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			err := fix()
			results[slot] = UnitResult{Kind: kind, Name: name, Err: err}
			if err != nil && p.cfg.FailFast {
				return fmt.Errorf("%s %s: %w", kind, name, err)
			}
			return nil
		})
	}
	for i, f := range prog.Functions {
		run(i, FunctionUnit, f.Name, func() error {
			var err error
			fixed.Functions[i], err = p.FixFunction(f)
			return err
		})
	}
	offset := len(prog.Functions)
	for i, m := range prog.Methods {
		run(offset+i, MethodUnit, m.Name, func() error {
			var err error
			fixed.Methods[i], err = p.FixMethod(m)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	report := Report{Program: fixed, Units: results}
	p.logger.Info("program fixed",
		zap.Int("units", len(results)),
		zap.Int("defects", len(report.Defects())),
	)
	return report, nil
}
