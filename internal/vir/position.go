package vir

import "fmt"

// Position is an opaque source location attached to expressions and
// statements. The zero value is NoPosition.
type Position struct {
	Line   int
	Column int
	ID     string // optional identifier assigned by the upstream encoder
}

// NoPosition marks synthesized nodes that have no source location.
var NoPosition = Position{}

// IsValid reports whether the position points at a source location.
func (p Position) IsValid() bool {
	return p.Line > 0 && p.Column > 0
}

func (p Position) String() string {
	if !p.IsValid() {
		if p.ID != "" {
			return "#" + p.ID
		}
		return "<no position>"
	}
	if p.ID != "" {
		return fmt.Sprintf("%d:%d#%s", p.Line, p.Column, p.ID)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}
