package vir

// ExprFolder rebuilds an expression tree. Each hook replaces the node of
// its variant; an unset hook rebuilds the variant with folded children.
// Hooks receive the folder so they can recurse with Fold or fall back to
// the default with FoldChildren.
//
// The zero ExprFolder is the identity fold.
type ExprFolder struct {
	Local       func(f *ExprFolder, e LocalExpr) Expr
	Const       func(f *ExprFolder, e ConstExpr) Expr
	Field       func(f *ExprFolder, e FieldExpr) Expr
	Unary       func(f *ExprFolder, e UnaryExpr) Expr
	Binary      func(f *ExprFolder, e BinaryExpr) Expr
	Cond        func(f *ExprFolder, e CondExpr) Expr
	Quantifier  func(f *ExprFolder, e QuantifierExpr) Expr
	FuncApp     func(f *ExprFolder, e FuncAppExpr) Expr
	LabelledOld func(f *ExprFolder, e LabelledOldExpr) Expr
}

// Fold dispatches e to the hook of its variant.
func (f *ExprFolder) Fold(e Expr) Expr {
	switch e := e.(type) {
	case LocalExpr:
		if f.Local != nil {
			return f.Local(f, e)
		}
	case ConstExpr:
		if f.Const != nil {
			return f.Const(f, e)
		}
	case FieldExpr:
		if f.Field != nil {
			return f.Field(f, e)
		}
	case UnaryExpr:
		if f.Unary != nil {
			return f.Unary(f, e)
		}
	case BinaryExpr:
		if f.Binary != nil {
			return f.Binary(f, e)
		}
	case CondExpr:
		if f.Cond != nil {
			return f.Cond(f, e)
		}
	case QuantifierExpr:
		if f.Quantifier != nil {
			return f.Quantifier(f, e)
		}
	case FuncAppExpr:
		if f.FuncApp != nil {
			return f.FuncApp(f, e)
		}
	case LabelledOldExpr:
		if f.LabelledOld != nil {
			return f.LabelledOld(f, e)
		}
	}
	return f.FoldChildren(e)
}

// FoldChildren rebuilds e with every child folded, keeping the variant and
// its position.
func (f *ExprFolder) FoldChildren(e Expr) Expr {
	switch e := e.(type) {
	case FieldExpr:
		e.Base = f.Fold(e.Base)
		return e
	case UnaryExpr:
		e.Arg = f.Fold(e.Arg)
		return e
	case BinaryExpr:
		e.Left = f.Fold(e.Left)
		e.Right = f.Fold(e.Right)
		return e
	case CondExpr:
		e.Guard = f.Fold(e.Guard)
		e.Then = f.Fold(e.Then)
		e.Else = f.Fold(e.Else)
		return e
	case QuantifierExpr:
		if e.Triggers != nil {
			triggers := make([]Trigger, len(e.Triggers))
			for i, trigger := range e.Triggers {
				triggers[i] = f.FoldAll(trigger)
			}
			e.Triggers = triggers
		}
		e.Body = f.Fold(e.Body)
		return e
	case FuncAppExpr:
		e.Args = f.FoldAll(e.Args)
		return e
	case LabelledOldExpr:
		e.Inner = f.Fold(e.Inner)
		return e
	default:
		// LocalExpr, ConstExpr and nil have no children.
		return e
	}
}

// FoldAll folds every expression of exprs into a new slice. A nil slice
// stays nil.
func (f *ExprFolder) FoldAll(exprs []Expr) []Expr {
	if exprs == nil {
		return nil
	}
	folded := make([]Expr, len(exprs))
	for i, e := range exprs {
		folded[i] = f.Fold(e)
	}
	return folded
}

// ExprWalker visits an expression tree without rebuilding it. A hook
// returns whether the walk descends into the children of its node; an
// unset hook always descends.
type ExprWalker struct {
	Local       func(w *ExprWalker, e LocalExpr) bool
	Const       func(w *ExprWalker, e ConstExpr) bool
	Field       func(w *ExprWalker, e FieldExpr) bool
	Unary       func(w *ExprWalker, e UnaryExpr) bool
	Binary      func(w *ExprWalker, e BinaryExpr) bool
	Cond        func(w *ExprWalker, e CondExpr) bool
	Quantifier  func(w *ExprWalker, e QuantifierExpr) bool
	FuncApp     func(w *ExprWalker, e FuncAppExpr) bool
	LabelledOld func(w *ExprWalker, e LabelledOldExpr) bool
}

// Walk visits e and, unless its hook says otherwise, its children.
func (w *ExprWalker) Walk(e Expr) {
	descend := true
	switch e := e.(type) {
	case nil:
		return
	case LocalExpr:
		if w.Local != nil {
			descend = w.Local(w, e)
		}
	case ConstExpr:
		if w.Const != nil {
			descend = w.Const(w, e)
		}
	case FieldExpr:
		if w.Field != nil {
			descend = w.Field(w, e)
		}
	case UnaryExpr:
		if w.Unary != nil {
			descend = w.Unary(w, e)
		}
	case BinaryExpr:
		if w.Binary != nil {
			descend = w.Binary(w, e)
		}
	case CondExpr:
		if w.Cond != nil {
			descend = w.Cond(w, e)
		}
	case QuantifierExpr:
		if w.Quantifier != nil {
			descend = w.Quantifier(w, e)
		}
	case FuncAppExpr:
		if w.FuncApp != nil {
			descend = w.FuncApp(w, e)
		}
	case LabelledOldExpr:
		if w.LabelledOld != nil {
			descend = w.LabelledOld(w, e)
		}
	}
	if descend {
		w.WalkChildren(e)
	}
}

// WalkChildren walks the direct children of e.
func (w *ExprWalker) WalkChildren(e Expr) {
	switch e := e.(type) {
	case FieldExpr:
		w.Walk(e.Base)
	case UnaryExpr:
		w.Walk(e.Arg)
	case BinaryExpr:
		w.Walk(e.Left)
		w.Walk(e.Right)
	case CondExpr:
		w.Walk(e.Guard)
		w.Walk(e.Then)
		w.Walk(e.Else)
	case QuantifierExpr:
		for _, trigger := range e.Triggers {
			for _, t := range trigger {
				w.Walk(t)
			}
		}
		w.Walk(e.Body)
	case FuncAppExpr:
		for _, arg := range e.Args {
			w.Walk(arg)
		}
	case LabelledOldExpr:
		w.Walk(e.Inner)
	}
}
