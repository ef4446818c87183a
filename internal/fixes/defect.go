package fixes

import (
	"fmt"

	"github.com/gnolang/virfix/internal/vir"
)

// DefectKind classifies an encoding defect.
type DefectKind int

const (
	// DanglingLabel: an old expression refers to a label that no statement
	// defines and that was not declared as a ghost label.
	DanglingLabel DefectKind = iota
	// OutOfScope: an old expression mentions a variable that is not in
	// scope at the snapshot point of its label.
	OutOfScope
	// OldInFunction: a pure function refers to a historical state.
	OldInFunction
)

func (k DefectKind) String() string {
	switch k {
	case DanglingLabel:
		return "dangling-label"
	case OutOfScope:
		return "out-of-scope"
	case OldInFunction:
		return "old-in-function"
	default:
		return "unknown"
	}
}

// EncodingDefect reports a structurally inconsistent input tree.
type EncodingDefect struct {
	Kind     DefectKind
	Unit     string // method or function name
	Label    string
	Variable string // set for OutOfScope
	Expr     vir.Expr
	Pos      vir.Position
}

func (d *EncodingDefect) Error() string {
	return fmt.Sprintf("%s: %s: %s: %s", d.Pos, d.Unit, d.Kind, d.Message())
}

// Message describes the defect without its location.
func (d *EncodingDefect) Message() string {
	switch d.Kind {
	case DanglingLabel:
		return fmt.Sprintf("label %q is not defined", d.Label)
	case OutOfScope:
		return fmt.Sprintf("variable %q is not in scope at label %q", d.Variable, d.Label)
	default:
		return d.Expr.String()
	}
}
