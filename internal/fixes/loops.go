package fixes

import (
	"go.uber.org/zap"

	"github.com/gnolang/virfix/internal/vir"
)

// HavocOptions configures the loop havoc pass.
type HavocOptions struct {
	// IncludeScoped also havocs variables declared by a block inside the
	// loop body. They never escape the body, so by default they are left
	// out.
	IncludeScoped bool
}

// AssignedLocals returns the locals that body may assign, in order of
// first assignment. See HavocOptions.AssignedLocals.
func AssignedLocals(body vir.Stmt) []vir.LocalVar {
	return HavocOptions{}.AssignedLocals(body)
}

// HavocAssignedLocals returns a block that havocs every local assigned by
// the body of loop and then runs loop.
func HavocAssignedLocals(loop vir.WhileStmt) vir.SeqnStmt {
	return HavocOptions{}.HavocAssignedLocals(loop)
}

// HavocLoops inserts havoc statements in front of every loop of s.
func HavocLoops(s vir.Stmt) vir.Stmt {
	return HavocOptions{}.HavocLoops(s)
}

// HavocMethod inserts havoc statements in front of every loop of m.
func HavocMethod(m vir.Method) vir.Method {
	return HavocOptions{}.HavocMethod(m)
}

// AssignedLocals returns the locals that body may assign, in order of
// first assignment: targets of local assignments and method calls, and
// havocked variables. Every branch counts, and so do the bodies of nested
// loops.
func (o HavocOptions) AssignedLocals(body vir.Stmt) []vir.LocalVar {
	var (
		vars   []vir.LocalVar
		seen   = make(map[string]bool)
		scoped = make(map[string]int)
	)
	add := func(v vir.LocalVar) {
		if scoped[v.Name] > 0 || seen[v.Name] {
			return
		}
		seen[v.Name] = true
		vars = append(vars, v)
	}
	w := &vir.StmtWalker{
		Seqn: func(w *vir.StmtWalker, s vir.SeqnStmt) bool {
			if o.IncludeScoped {
				return true
			}
			for _, d := range s.Decls {
				scoped[d.Name]++
			}
			w.WalkChildren(s)
			for _, d := range s.Decls {
				scoped[d.Name]--
			}
			return false
		},
		Assign: func(_ *vir.StmtWalker, s vir.AssignStmt) bool {
			if local, ok := s.Target.(vir.LocalExpr); ok {
				add(local.Var)
			}
			return false
		},
		MethodCall: func(_ *vir.StmtWalker, s vir.MethodCallStmt) bool {
			for _, target := range s.Targets {
				add(target)
			}
			return false
		},
		Havoc: func(_ *vir.StmtWalker, s vir.HavocStmt) bool {
			add(s.Var)
			return false
		},
	}
	w.Walk(body)
	return vars
}

// HavocAssignedLocals returns a block that havocs every local assigned by
// the body of loop and then runs loop. The havoc statements take the
// position of the loop.
func (o HavocOptions) HavocAssignedLocals(loop vir.WhileStmt) vir.SeqnStmt {
	vars := o.AssignedLocals(loop.Body)
	stmts := make([]vir.Stmt, 0, len(vars)+1)
	for _, v := range vars {
		stmts = append(stmts, vir.HavocStmt{Var: v, Position: loop.Position})
	}
	stmts = append(stmts, loop)
	return vir.SeqnStmt{Stmts: stmts, Position: loop.Position}
}

// HavocLoops inserts havoc statements in front of every loop of s, inner
// loops first. Inside a block the havocs are spliced right before the loop
// and variables already havocked by the statements immediately preceding
// it are skipped, so HavocLoops(HavocLoops(s)) equals HavocLoops(s). A loop
// that is not a direct child of a block is replaced by HavocAssignedLocals.
func (o HavocOptions) HavocLoops(s vir.Stmt) vir.Stmt {
	f := &vir.StmtFolder{
		Seqn: func(f *vir.StmtFolder, s vir.SeqnStmt) vir.Stmt {
			return o.havocSeqn(f, s)
		},
		While: func(f *vir.StmtFolder, loop vir.WhileStmt) vir.Stmt {
			return o.HavocAssignedLocals(f.FoldChildren(loop).(vir.WhileStmt))
		},
	}
	return f.Fold(s)
}

// HavocMethod applies HavocLoops to the body of m.
func (o HavocOptions) HavocMethod(m vir.Method) vir.Method {
	if m.Body == nil {
		return m
	}
	body := o.HavocLoops(*m.Body).(vir.SeqnStmt)
	m.Body = &body
	return m
}

func (o HavocOptions) havocSeqn(f *vir.StmtFolder, s vir.SeqnStmt) vir.SeqnStmt {
	if s.Stmts == nil {
		return s
	}
	stmts := make([]vir.Stmt, 0, len(s.Stmts))
	for _, st := range s.Stmts {
		loop, ok := st.(vir.WhileStmt)
		if !ok {
			stmts = append(stmts, f.Fold(st))
			continue
		}
		loop = f.FoldChildren(loop).(vir.WhileStmt)
		havocked := trailingHavocs(stmts)
		var added []string
		for _, v := range o.AssignedLocals(loop.Body) {
			if !havocked[v.Name] {
				stmts = append(stmts, vir.HavocStmt{Var: v, Position: loop.Position})
				added = append(added, v.Name)
			}
		}
		if len(added) > 0 {
			logger().Debug("loop targets havocked", zap.Stringer("pos", loop.Position), zap.Strings("vars", added))
		}
		stmts = append(stmts, loop)
	}
	s.Stmts = stmts
	return s
}

// trailingHavocs returns the variables havocked by the run of havoc
// statements at the end of stmts.
func trailingHavocs(stmts []vir.Stmt) map[string]bool {
	havocked := make(map[string]bool)
	for i := len(stmts) - 1; i >= 0; i-- {
		h, ok := stmts[i].(vir.HavocStmt)
		if !ok {
			break
		}
		havocked[h.Var.Name] = true
	}
	return havocked
}
