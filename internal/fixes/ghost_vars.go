package fixes

import (
	"fmt"
	"maps"

	"go.uber.org/zap"

	"github.com/gnolang/virfix/internal/vir"
)

// FixGhostVars resolves every labelled old expression of m to the label
// statement that defines its snapshot.
//
// Label statements are collected in program order. When a label is defined
// more than once (an inlined or unrolled body), the first definition keeps
// its name and later ones are renamed to fresh names; each old expression
// then refers to the nearest definition preceding it. An old expression
// whose label has no defining statement evaluates to its current value if
// the label is one of m.GhostLabels, and is an EncodingDefect otherwise.
//
// The label pre denotes method entry. In preconditions old[pre](e) is e.
//
// On a defect the original method is returned together with the first
// defect in program order.
func FixGhostVars(m vir.Method) (vir.Method, error) {
	g := newGhostVarFixer(m)
	if m.Body != nil {
		g.collectLabels(*m.Body)
	}

	fixed := m
	fixed.Pres = mapExprs(m.Pres, g.resolvePre)
	if m.Body != nil {
		body := g.fixBody(*m.Body)
		fixed.Body = &body
	}
	fixed.Posts = mapExprs(m.Posts, g.resolve)
	fixed.GhostLabels = g.ghostLabels()

	if g.err != nil {
		return m, g.err
	}
	return fixed, nil
}

// FixFunctionGhostVars checks that a pure function does not refer to any
// historical state. The function is returned unchanged.
func FixFunctionGhostVars(f vir.Function) (vir.Function, error) {
	var defect *EncodingDefect
	w := &vir.ExprWalker{
		LabelledOld: func(_ *vir.ExprWalker, old vir.LabelledOldExpr) bool {
			if defect == nil {
				defect = &EncodingDefect{
					Kind:  OldInFunction,
					Unit:  f.Name,
					Label: old.Label,
					Expr:  old,
					Pos:   old.Position,
				}
			}
			return false
		},
	}
	for _, pre := range f.Pres {
		w.Walk(pre)
	}
	w.Walk(f.Body)
	for _, post := range f.Posts {
		w.Walk(post)
	}
	if defect != nil {
		return f, defect
	}
	return f, nil
}

// labelDef is one label statement of the body.
type labelDef struct {
	name  string          // name after deduplication
	scope map[string]bool // variables declared at the statement
}

type ghostVarFixer struct {
	unit       string
	ghost      []string
	declared   map[string]bool
	methodVars map[string]bool
	entryVars  map[string]bool // formal arguments
	known      map[string]bool // method variables and block declarations

	defs     map[string][]labelDef // by source label, in program order
	consumed map[string]int
	current  map[string]labelDef

	err error
}

func newGhostVarFixer(m vir.Method) *ghostVarFixer {
	g := &ghostVarFixer{
		unit:       m.Name,
		ghost:      m.GhostLabels,
		declared:   make(map[string]bool, len(m.GhostLabels)),
		methodVars: make(map[string]bool),
		entryVars:  make(map[string]bool, len(m.FormalArgs)),
		known:      make(map[string]bool),
		defs:       make(map[string][]labelDef),
		consumed:   make(map[string]int),
		current:    make(map[string]labelDef),
	}
	for _, label := range m.GhostLabels {
		g.declared[label] = true
	}
	for _, v := range m.FormalArgs {
		g.entryVars[v.Name] = true
	}
	for _, v := range m.Vars() {
		g.methodVars[v.Name] = true
		g.known[v.Name] = true
	}
	return g
}

func (g *ghostVarFixer) collectLabels(body vir.SeqnStmt) {
	taken := map[string]bool{vir.PreLabel: true}
	for _, label := range g.ghost {
		taken[label] = true
	}
	names := &vir.StmtWalker{
		Label: func(_ *vir.StmtWalker, s vir.LabelStmt) bool {
			taken[s.Name] = true
			return false
		},
	}
	names.Walk(body)

	blockVars := make(map[string]int)
	w := &vir.StmtWalker{
		Seqn: func(w *vir.StmtWalker, s vir.SeqnStmt) bool {
			for _, d := range s.Decls {
				blockVars[d.Name]++
				g.known[d.Name] = true
			}
			w.WalkChildren(s)
			for _, d := range s.Decls {
				blockVars[d.Name]--
			}
			return false
		},
		Label: func(_ *vir.StmtWalker, s vir.LabelStmt) bool {
			name := s.Name
			if len(g.defs[s.Name]) > 0 || s.Name == vir.PreLabel {
				name = freshLabel(s.Name, taken)
				logger().Debug("label renamed",
					zap.String("method", g.unit),
					zap.String("label", s.Name),
					zap.String("name", name),
				)
			}
			scope := maps.Clone(g.methodVars)
			for v, n := range blockVars {
				if n > 0 {
					scope[v] = true
				}
			}
			g.defs[s.Name] = append(g.defs[s.Name], labelDef{name: name, scope: scope})
			return false
		},
	}
	w.Walk(body)
}

func freshLabel(label string, taken map[string]bool) string {
	for k := 1; ; k++ {
		candidate := fmt.Sprintf("%s$%d", label, k)
		if !taken[candidate] {
			taken[candidate] = true
			return candidate
		}
	}
}

func (g *ghostVarFixer) fixBody(body vir.SeqnStmt) vir.SeqnStmt {
	f := &vir.StmtFolder{
		Expr: g.resolve,
		Label: func(_ *vir.StmtFolder, s vir.LabelStmt) vir.Stmt {
			def := g.defs[s.Name][g.consumed[s.Name]]
			g.consumed[s.Name]++
			g.current[s.Name] = def
			s.Name = def.name
			return s
		},
		If: func(f *vir.StmtFolder, s vir.IfStmt) vir.Stmt {
			s.Guard = f.FoldExpr(s.Guard)
			before := maps.Clone(g.current)
			s.Then = f.Fold(s.Then)
			afterThen := g.current
			g.current = maps.Clone(before)
			if s.Else != nil {
				s.Else = f.Fold(s.Else)
			}
			// the definition latest in program order wins
			for label, def := range afterThen {
				if g.current[label].name == before[label].name {
					g.current[label] = def
				}
			}
			return s
		},
	}
	return f.FoldSeqn(body)
}

// lookup returns the definition of label in effect at the current point of
// the fold. Forward references resolve to the first definition.
func (g *ghostVarFixer) lookup(label string) (labelDef, bool) {
	if def, ok := g.current[label]; ok {
		return def, true
	}
	if defs := g.defs[label]; len(defs) > 0 {
		return defs[0], true
	}
	return labelDef{}, false
}

func (g *ghostVarFixer) resolve(e vir.Expr) vir.Expr {
	return vir.MapOldExprAt(e, func(label string, inner vir.Expr, pos vir.Position) vir.Expr {
		inner = g.resolve(inner)
		old := vir.OldAt(label, inner, pos)
		if label == vir.PreLabel {
			g.checkScope(old, g.entryVars)
			return old
		}
		if def, ok := g.lookup(label); ok {
			g.checkScope(old, def.scope)
			// inner is already resolved; only the outer label changes
			return vir.MapOldExprLabel(old, func(string) string { return def.name })
		}
		if g.declared[label] {
			return inner
		}
		g.dangling(old)
		return old
	})
}

// resolvePre resolves a precondition, which is evaluated at method entry
// where no body label is defined yet.
func (g *ghostVarFixer) resolvePre(e vir.Expr) vir.Expr {
	return vir.MapOldExprAt(e, func(label string, inner vir.Expr, pos vir.Position) vir.Expr {
		inner = g.resolvePre(inner)
		old := vir.OldAt(label, inner, pos)
		switch {
		case label == vir.PreLabel:
			g.checkScope(old, g.entryVars)
			return inner
		case g.declared[label] && len(g.defs[label]) == 0:
			return inner
		default:
			g.dangling(old)
			return old
		}
	})
}

// checkScope reports the first variable of the snapshot e that is declared
// by the method but not in scope at the label. Other variables are bound by
// an enclosing quantifier.
func (g *ghostVarFixer) checkScope(e vir.Expr, scope map[string]bool) {
	old := e.(vir.LabelledOldExpr)
	for _, v := range snapshotVars(old.Inner) {
		if g.known[v.Name] && !scope[v.Name] {
			g.fail(&EncodingDefect{
				Kind:     OutOfScope,
				Unit:     g.unit,
				Label:    old.Label,
				Variable: v.Name,
				Expr:     old,
				Pos:      old.Position,
			})
			return
		}
	}
}

func (g *ghostVarFixer) dangling(e vir.Expr) {
	old := e.(vir.LabelledOldExpr)
	g.fail(&EncodingDefect{
		Kind:  DanglingLabel,
		Unit:  g.unit,
		Label: old.Label,
		Expr:  old,
		Pos:   old.Position,
	})
}

func (g *ghostVarFixer) fail(defect *EncodingDefect) {
	if g.err == nil {
		logger().Debug("encoding defect", zap.String("method", g.unit), zap.Error(defect))
		g.err = defect
	}
}

// ghostLabels re-declares the ghost labels under their final names. Labels
// without a defining statement are gone from the tree and are dropped.
func (g *ghostVarFixer) ghostLabels() []string {
	if g.ghost == nil {
		return nil
	}
	labels := make([]string, 0, len(g.ghost))
	for _, label := range g.ghost {
		for _, def := range g.defs[label] {
			labels = append(labels, def.name)
		}
	}
	return labels
}

// snapshotVars returns the free variables of e that are evaluated at the
// snapshot of the enclosing old expression: variables bound by a
// quantifier or wrapped in a nested old expression are excluded.
func snapshotVars(e vir.Expr) []vir.LocalVar {
	current := vir.MapOldExpr(e, func(string, vir.Expr) vir.Expr { return vir.True })
	return vir.FreeVars(current)
}

func mapExprs(exprs []vir.Expr, f func(vir.Expr) vir.Expr) []vir.Expr {
	if exprs == nil {
		return nil
	}
	mapped := make([]vir.Expr, len(exprs))
	for i, e := range exprs {
		mapped[i] = f(e)
	}
	return mapped
}
