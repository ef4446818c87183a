package vir

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var pkgLogger atomic.Pointer[zap.Logger]

// SetLogger routes the trace output of this package to l. It is safe to
// call while other goroutines use the package.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	pkgLogger.Store(l)
}

func logger() *zap.Logger {
	if l := pkgLogger.Load(); l != nil {
		return l
	}
	return zap.NewNop()
}

// MapExpr substitutes every expression directly embedded in s with
// substitutor(e). The shape of s is preserved.
func MapExpr(s Stmt, substitutor func(Expr) Expr) Stmt {
	logger().Debug("Stmt.MapExpr", zap.Stringer("stmt", s))
	f := &StmtFolder{Expr: substitutor}
	return f.Fold(s)
}

// MapOldExpr replaces every labelled old expression old[label](inner) of
// e with substitutor(label, inner). The inner expression is passed as is;
// substitutor decides whether to recurse into it.
func MapOldExpr(e Expr, substitutor func(label string, inner Expr) Expr) Expr {
	logger().Debug("Expr.MapOldExpr", zap.Stringer("expr", e))
	return MapOldExprAt(e, func(label string, inner Expr, _ Position) Expr {
		return substitutor(label, inner)
	})
}

// MapOldExprAt is MapOldExpr with the position of the replaced node
// passed to substitutor.
func MapOldExprAt(e Expr, substitutor func(label string, inner Expr, pos Position) Expr) Expr {
	f := &ExprFolder{
		LabelledOld: func(_ *ExprFolder, old LabelledOldExpr) Expr {
			return substitutor(old.Label, old.Inner, old.Position)
		},
	}
	return f.Fold(e)
}

// MapOldExprLabel renames the label of every labelled old expression of
// e. The wrapped expressions are left untouched.
func MapOldExprLabel(e Expr, substitutor func(label string) string) Expr {
	logger().Debug("Expr.MapOldExprLabel", zap.Stringer("expr", e))
	f := &ExprFolder{
		LabelledOld: func(_ *ExprFolder, old LabelledOldExpr) Expr {
			old.Label = substitutor(old.Label)
			return old
		},
	}
	return f.Fold(e)
}

// Conjoin reduces exprs to a left-associated conjunction whose combining
// nodes carry pos. It returns true for no elements and the element itself
// for one.
func Conjoin(exprs []Expr, pos Position) Expr {
	return reduce(exprs, OpAnd, True, pos)
}

// Disjoin reduces exprs to a left-associated disjunction whose combining
// nodes carry pos. It returns false for no elements and the element itself
// for one.
func Disjoin(exprs []Expr, pos Position) Expr {
	return reduce(exprs, OpOr, False, pos)
}

func reduce(exprs []Expr, op BinaryOp, empty Expr, pos Position) Expr {
	if len(exprs) == 0 {
		return empty
	}
	acc := exprs[0]
	for _, e := range exprs[1:] {
		acc = BinaryAt(op, acc, e, pos)
	}
	return acc
}

// FreeVars returns the local variables referenced by e that are not bound
// by an enclosing quantifier of e, in first-occurrence order.
func FreeVars(e Expr) []LocalVar {
	var (
		vars  []LocalVar
		seen  = make(map[string]bool)
		bound = make(map[string]int)
	)
	w := &ExprWalker{
		Local: func(_ *ExprWalker, l LocalExpr) bool {
			if bound[l.Var.Name] == 0 && !seen[l.Var.Name] {
				seen[l.Var.Name] = true
				vars = append(vars, l.Var)
			}
			return false
		},
		Quantifier: func(w *ExprWalker, q QuantifierExpr) bool {
			for _, v := range q.Vars {
				bound[v.Name]++
			}
			w.WalkChildren(q)
			for _, v := range q.Vars {
				bound[v.Name]--
			}
			return false
		},
	}
	w.Walk(e)
	return vars
}
