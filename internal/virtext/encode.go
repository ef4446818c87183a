package virtext

import "github.com/gnolang/virfix/internal/vir"

func encodeProgram(p vir.Program) programFile {
	var f programFile
	for _, field := range p.Fields {
		f.Fields = append(f.Fields, vir.NewLocalVar(field.Name, field.Typ).String())
	}
	for _, d := range p.Domains {
		dn := domainNode{Name: d.Name}
		for _, fn := range d.Functions {
			dn.Functions = append(dn.Functions, domainFuncNode{
				Name:    fn.Name,
				Args:    encodeDecls(fn.FormalArgs),
				Returns: fn.ReturnType.String(),
				Unique:  fn.Unique,
			})
		}
		for _, ax := range d.Axioms {
			dn.Axioms = append(dn.Axioms, axiomNode{Name: ax.Name, Expr: encodeExpr(ax.Expr)})
		}
		f.Domains = append(f.Domains, dn)
	}
	for _, fn := range p.Functions {
		node := functionNode{
			Name:     fn.Name,
			Args:     encodeDecls(fn.FormalArgs),
			Returns:  fn.ReturnType.String(),
			Requires: encodeExprs(fn.Pres),
			Ensures:  encodeExprs(fn.Posts),
		}
		if fn.Body != nil {
			body := encodeExpr(fn.Body)
			node.Body = &body
		}
		f.Functions = append(f.Functions, node)
	}
	for _, pred := range p.Predicates {
		node := predicateNode{Name: pred.Name, Args: encodeDecls(pred.FormalArgs)}
		if pred.Body != nil {
			body := encodeExpr(pred.Body)
			node.Body = &body
		}
		f.Predicates = append(f.Predicates, node)
	}
	for _, m := range p.Methods {
		f.Methods = append(f.Methods, encodeMethod(m))
	}
	return f
}

func encodeMethod(m vir.Method) methodNode {
	node := methodNode{
		Name:        m.Name,
		Args:        encodeDecls(m.FormalArgs),
		Returns:     encodeDecls(m.FormalReturns),
		Locals:      encodeDecls(m.Locals),
		GhostLabels: m.GhostLabels,
		Requires:    encodeExprs(m.Pres),
		Ensures:     encodeExprs(m.Posts),
	}
	if m.Body != nil {
		node.Decls = encodeDecls(m.Body.Decls)
		body := encodeStmts(m.Body.Stmts)
		node.Body = &body
	}
	return node
}

func encodeStmts(stmts []vir.Stmt) []stmtNode {
	nodes := make([]stmtNode, 0, len(stmts))
	for _, s := range stmts {
		nodes = append(nodes, encodeStmt(s))
	}
	return nodes
}

// encodeBlock flattens a block without declarations into its statements.
func encodeBlock(s vir.Stmt) []stmtNode {
	if seqn, ok := s.(vir.SeqnStmt); ok && len(seqn.Decls) == 0 {
		return encodeStmts(seqn.Stmts)
	}
	return []stmtNode{encodeStmt(s)}
}

func encodeStmt(s vir.Stmt) stmtNode {
	var n stmtNode
	switch s := s.(type) {
	case vir.CommentStmt:
		n.Comment = &s.Text
	case vir.LabelStmt:
		n.Label = &s.Name
	case vir.AssignStmt:
		target, value := encodeExpr(s.Target), encodeExpr(s.Value)
		n.Assign, n.Value = &target, &value
	case vir.IfStmt:
		guard := encodeExpr(s.Guard)
		n.If = &guard
		n.Then = encodeBlock(s.Then)
		if s.Else != nil {
			els := encodeBlock(s.Else)
			n.Else = &els
		}
	case vir.SeqnStmt:
		stmts := encodeStmts(s.Stmts)
		n.Seqn = &stmts
		n.Decls = encodeDecls(s.Decls)
	case vir.WhileStmt:
		cond, inv := encodeExpr(s.Cond), encodeExpr(s.Invariant)
		n.While, n.Invariant = &cond, &inv
		n.Body = encodeBlock(s.Body)
	case vir.MethodCallStmt:
		n.Call = &s.Name
		n.Args = encodeExprs(s.Args)
		for _, target := range s.Targets {
			n.Targets = append(n.Targets, target.Name)
		}
	case vir.AssertStmt:
		e := encodeExpr(s.Expr)
		n.Assert = &e
	case vir.AssumeStmt:
		e := encodeExpr(s.Expr)
		n.Assume = &e
	case vir.InhaleStmt:
		e := encodeExpr(s.Expr)
		n.Inhale = &e
	case vir.ExhaleStmt:
		e := encodeExpr(s.Expr)
		n.Exhale = &e
	case vir.HavocStmt:
		n.Havoc = &s.Var.Name
	}
	return n
}

func encodeExpr(e vir.Expr) exprNode {
	return exprNode{Text: e.String()}
}

func encodeExprs(exprs []vir.Expr) []exprNode {
	if exprs == nil {
		return nil
	}
	nodes := make([]exprNode, len(exprs))
	for i, e := range exprs {
		nodes[i] = encodeExpr(e)
	}
	return nodes
}

func encodeDecls(vars []vir.LocalVar) []string {
	if vars == nil {
		return nil
	}
	decls := make([]string, len(vars))
	for i, v := range vars {
		decls[i] = v.String()
	}
	return decls
}
