package vir

// StmtFolder rebuilds a statement tree. Each statement hook replaces the
// node of its variant; an unset hook rebuilds the variant with folded
// children. Children are folded in program order.
//
// Expr is applied to every expression a statement embeds (targets,
// values, guards, loop conditions and invariants, call arguments and the
// operands of specification statements). It does not descend into the
// expression; an unset Expr leaves expressions unchanged.
type StmtFolder struct {
	Expr func(e Expr) Expr

	Comment    func(f *StmtFolder, s CommentStmt) Stmt
	Label      func(f *StmtFolder, s LabelStmt) Stmt
	Assign     func(f *StmtFolder, s AssignStmt) Stmt
	If         func(f *StmtFolder, s IfStmt) Stmt
	Seqn       func(f *StmtFolder, s SeqnStmt) Stmt
	While      func(f *StmtFolder, s WhileStmt) Stmt
	MethodCall func(f *StmtFolder, s MethodCallStmt) Stmt
	Assert     func(f *StmtFolder, s AssertStmt) Stmt
	Assume     func(f *StmtFolder, s AssumeStmt) Stmt
	Inhale     func(f *StmtFolder, s InhaleStmt) Stmt
	Exhale     func(f *StmtFolder, s ExhaleStmt) Stmt
	Havoc      func(f *StmtFolder, s HavocStmt) Stmt
}

// Fold dispatches s to the hook of its variant.
func (f *StmtFolder) Fold(s Stmt) Stmt {
	switch s := s.(type) {
	case CommentStmt:
		if f.Comment != nil {
			return f.Comment(f, s)
		}
	case LabelStmt:
		if f.Label != nil {
			return f.Label(f, s)
		}
	case AssignStmt:
		if f.Assign != nil {
			return f.Assign(f, s)
		}
	case IfStmt:
		if f.If != nil {
			return f.If(f, s)
		}
	case SeqnStmt:
		if f.Seqn != nil {
			return f.Seqn(f, s)
		}
	case WhileStmt:
		if f.While != nil {
			return f.While(f, s)
		}
	case MethodCallStmt:
		if f.MethodCall != nil {
			return f.MethodCall(f, s)
		}
	case AssertStmt:
		if f.Assert != nil {
			return f.Assert(f, s)
		}
	case AssumeStmt:
		if f.Assume != nil {
			return f.Assume(f, s)
		}
	case InhaleStmt:
		if f.Inhale != nil {
			return f.Inhale(f, s)
		}
	case ExhaleStmt:
		if f.Exhale != nil {
			return f.Exhale(f, s)
		}
	case HavocStmt:
		if f.Havoc != nil {
			return f.Havoc(f, s)
		}
	}
	return f.FoldChildren(s)
}

// FoldChildren rebuilds s with its embedded expressions passed through
// FoldExpr and its nested statements folded.
func (f *StmtFolder) FoldChildren(s Stmt) Stmt {
	switch s := s.(type) {
	case AssignStmt:
		s.Target = f.FoldExpr(s.Target)
		s.Value = f.FoldExpr(s.Value)
		return s
	case IfStmt:
		s.Guard = f.FoldExpr(s.Guard)
		s.Then = f.Fold(s.Then)
		if s.Else != nil {
			s.Else = f.Fold(s.Else)
		}
		return s
	case SeqnStmt:
		return f.FoldSeqn(s)
	case WhileStmt:
		s.Cond = f.FoldExpr(s.Cond)
		s.Invariant = f.FoldExpr(s.Invariant)
		s.Body = f.Fold(s.Body)
		return s
	case MethodCallStmt:
		if s.Args != nil {
			args := make([]Expr, len(s.Args))
			for i, arg := range s.Args {
				args[i] = f.FoldExpr(arg)
			}
			s.Args = args
		}
		return s
	case AssertStmt:
		s.Expr = f.FoldExpr(s.Expr)
		return s
	case AssumeStmt:
		s.Expr = f.FoldExpr(s.Expr)
		return s
	case InhaleStmt:
		s.Expr = f.FoldExpr(s.Expr)
		return s
	case ExhaleStmt:
		s.Expr = f.FoldExpr(s.Expr)
		return s
	default:
		// CommentStmt, LabelStmt and HavocStmt embed no expression.
		return s
	}
}

// FoldSeqn folds the statements of a block, keeping its declarations.
func (f *StmtFolder) FoldSeqn(s SeqnStmt) SeqnStmt {
	if s.Stmts != nil {
		stmts := make([]Stmt, len(s.Stmts))
		for i, st := range s.Stmts {
			stmts[i] = f.Fold(st)
		}
		s.Stmts = stmts
	}
	return s
}

// FoldExpr applies the Expr hook to e.
func (f *StmtFolder) FoldExpr(e Expr) Expr {
	if f.Expr == nil || e == nil {
		return e
	}
	return f.Expr(e)
}

// StmtWalker visits a statement tree without rebuilding it. A statement
// hook returns whether the walk descends into the node; an unset hook
// always descends. Expr, when set, receives every embedded expression of
// the statements the walk descends into.
type StmtWalker struct {
	Expr func(e Expr)

	Comment    func(w *StmtWalker, s CommentStmt) bool
	Label      func(w *StmtWalker, s LabelStmt) bool
	Assign     func(w *StmtWalker, s AssignStmt) bool
	If         func(w *StmtWalker, s IfStmt) bool
	Seqn       func(w *StmtWalker, s SeqnStmt) bool
	While      func(w *StmtWalker, s WhileStmt) bool
	MethodCall func(w *StmtWalker, s MethodCallStmt) bool
	Assert     func(w *StmtWalker, s AssertStmt) bool
	Assume     func(w *StmtWalker, s AssumeStmt) bool
	Inhale     func(w *StmtWalker, s InhaleStmt) bool
	Exhale     func(w *StmtWalker, s ExhaleStmt) bool
	Havoc      func(w *StmtWalker, s HavocStmt) bool
}

// Walk visits s and, unless its hook says otherwise, its children.
func (w *StmtWalker) Walk(s Stmt) {
	descend := true
	switch s := s.(type) {
	case nil:
		return
	case CommentStmt:
		if w.Comment != nil {
			descend = w.Comment(w, s)
		}
	case LabelStmt:
		if w.Label != nil {
			descend = w.Label(w, s)
		}
	case AssignStmt:
		if w.Assign != nil {
			descend = w.Assign(w, s)
		}
	case IfStmt:
		if w.If != nil {
			descend = w.If(w, s)
		}
	case SeqnStmt:
		if w.Seqn != nil {
			descend = w.Seqn(w, s)
		}
	case WhileStmt:
		if w.While != nil {
			descend = w.While(w, s)
		}
	case MethodCallStmt:
		if w.MethodCall != nil {
			descend = w.MethodCall(w, s)
		}
	case AssertStmt:
		if w.Assert != nil {
			descend = w.Assert(w, s)
		}
	case AssumeStmt:
		if w.Assume != nil {
			descend = w.Assume(w, s)
		}
	case InhaleStmt:
		if w.Inhale != nil {
			descend = w.Inhale(w, s)
		}
	case ExhaleStmt:
		if w.Exhale != nil {
			descend = w.Exhale(w, s)
		}
	case HavocStmt:
		if w.Havoc != nil {
			descend = w.Havoc(w, s)
		}
	}
	if descend {
		w.WalkChildren(s)
	}
}

// WalkChildren visits the embedded expressions and nested statements of s.
func (w *StmtWalker) WalkChildren(s Stmt) {
	switch s := s.(type) {
	case AssignStmt:
		w.walkExpr(s.Target)
		w.walkExpr(s.Value)
	case IfStmt:
		w.walkExpr(s.Guard)
		w.Walk(s.Then)
		w.Walk(s.Else)
	case SeqnStmt:
		for _, st := range s.Stmts {
			w.Walk(st)
		}
	case WhileStmt:
		w.walkExpr(s.Cond)
		w.walkExpr(s.Invariant)
		w.Walk(s.Body)
	case MethodCallStmt:
		for _, arg := range s.Args {
			w.walkExpr(arg)
		}
	case AssertStmt:
		w.walkExpr(s.Expr)
	case AssumeStmt:
		w.walkExpr(s.Expr)
	case InhaleStmt:
		w.walkExpr(s.Expr)
	case ExhaleStmt:
		w.walkExpr(s.Expr)
	}
}

func (w *StmtWalker) walkExpr(e Expr) {
	if w.Expr != nil && e != nil {
		w.Expr(e)
	}
}
