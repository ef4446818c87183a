// Package vir defines the intermediate verification representation (VIR)
// that the fix passes operate on, together with a generic fold/walk
// framework over its expression and statement trees.
//
// VIR trees are values. A pass never mutates the tree it receives; it
// builds and returns a replacement. Folds rebuild only what their hooks
// touch: for a fold whose hooks never fire, the result is structurally
// equal to the input, positions included.
//
// Key components:
//
// Expr / Stmt: closed sum types over expression and statement variants.
// LabelledOldExpr is the historical-state reference "inner, evaluated at
// the program point tagged by label"; LabelStmt defines such a point.
//
// ExprFolder / ExprWalker / StmtFolder / StmtWalker: traversals driven by
// optional per-variant hooks. Unset hooks recurse (walk) or rebuild the
// variant from folded children (fold).
//
// MapExpr, MapOldExpr, MapOldExprLabel, Conjoin, Disjoin: substitution and
// reduction helpers built on the framework.
//
// Usage:
//
//	renamed := vir.MapOldExprLabel(inv, func(label string) string {
//	    return "loop_" + label
//	})
package vir
