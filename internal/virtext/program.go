package virtext

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gnolang/virfix/internal/vir"
)

// programFile is the YAML form of a program. Expressions and variable
// declarations are written in their textual form.
type programFile struct {
	Fields     []string        `yaml:"fields,omitempty"`
	Domains    []domainNode    `yaml:"domains,omitempty"`
	Functions  []functionNode  `yaml:"functions,omitempty"`
	Predicates []predicateNode `yaml:"predicates,omitempty"`
	Methods    []methodNode    `yaml:"methods,omitempty"`
}

type domainNode struct {
	Name      string           `yaml:"name"`
	Functions []domainFuncNode `yaml:"functions,omitempty"`
	Axioms    []axiomNode      `yaml:"axioms,omitempty"`
}

type domainFuncNode struct {
	Name    string   `yaml:"name"`
	Args    []string `yaml:"args,omitempty"`
	Returns string   `yaml:"returns"`
	Unique  bool     `yaml:"unique,omitempty"`
}

type axiomNode struct {
	Name string   `yaml:"name"`
	Expr exprNode `yaml:"expr"`
}

type functionNode struct {
	Name     string     `yaml:"name"`
	Args     []string   `yaml:"args,omitempty"`
	Returns  string     `yaml:"returns"`
	Requires []exprNode `yaml:"requires,omitempty"`
	Ensures  []exprNode `yaml:"ensures,omitempty"`
	Body     *exprNode  `yaml:"body,omitempty"`
}

type predicateNode struct {
	Name string    `yaml:"name"`
	Args []string  `yaml:"args,omitempty"`
	Body *exprNode `yaml:"body,omitempty"`
}

type methodNode struct {
	Name        string      `yaml:"name"`
	Args        []string    `yaml:"args,omitempty"`
	Returns     []string    `yaml:"returns,omitempty"`
	Locals      []string    `yaml:"locals,omitempty"`
	GhostLabels []string    `yaml:"ghost_labels,omitempty"`
	Requires    []exprNode  `yaml:"requires,omitempty"`
	Ensures     []exprNode  `yaml:"ensures,omitempty"`
	Decls       []string    `yaml:"decls,omitempty"`
	Body        *[]stmtNode `yaml:"body,omitempty"`
}

// exprNode is an expression together with its location in the file.
type exprNode struct {
	Text   string
	Line   int
	Column int
}

func (e *exprNode) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d col %d: expression must be a string", n.Line, n.Column)
	}
	e.Text, e.Line, e.Column = n.Value, n.Line, n.Column
	// the node starts at the opening quote
	if n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 {
		e.Column++
	}
	return nil
}

func (e exprNode) MarshalYAML() (interface{}, error) {
	return e.Text, nil
}

func (e exprNode) pos() vir.Position {
	return vir.Position{Line: e.Line, Column: e.Column}
}

// stmtNode is a statement. Exactly one of the keys naming a statement kind
// is set; the others complete it.
type stmtNode struct {
	Comment *string     `yaml:"comment,omitempty"`
	Label   *string     `yaml:"label,omitempty"`
	Assign  *exprNode   `yaml:"assign,omitempty"`
	If      *exprNode   `yaml:"if,omitempty"`
	Seqn    *[]stmtNode `yaml:"seqn,omitempty"`
	While   *exprNode   `yaml:"while,omitempty"`
	Call    *string     `yaml:"call,omitempty"`
	Assert  *exprNode   `yaml:"assert,omitempty"`
	Assume  *exprNode   `yaml:"assume,omitempty"`
	Inhale  *exprNode   `yaml:"inhale,omitempty"`
	Exhale  *exprNode   `yaml:"exhale,omitempty"`
	Havoc   *string     `yaml:"havoc,omitempty"`

	Value     *exprNode   `yaml:"value,omitempty"`
	Then      []stmtNode  `yaml:"then,omitempty"`
	Else      *[]stmtNode `yaml:"else,omitempty"`
	Decls     []string    `yaml:"decls,omitempty"`
	Invariant *exprNode   `yaml:"invariant,omitempty"`
	Body      []stmtNode  `yaml:"body,omitempty"`
	Args      []exprNode  `yaml:"args,omitempty"`
	Targets   []string    `yaml:"targets,omitempty"`

	Line   int `yaml:"-"`
	Column int `yaml:"-"`
}

func (s *stmtNode) UnmarshalYAML(n *yaml.Node) error {
	type plain stmtNode
	if err := n.Decode((*plain)(s)); err != nil {
		return err
	}
	s.Line, s.Column = n.Line, n.Column
	return nil
}

const stmtKinds = "comment, label, assign, if, seqn, while, call, assert, assume, inhale, exhale or havoc"

func (s *stmtNode) kinds() int {
	n := 0
	for _, set := range []bool{
		s.Comment != nil, s.Label != nil, s.Assign != nil, s.If != nil,
		s.Seqn != nil, s.While != nil, s.Call != nil, s.Assert != nil,
		s.Assume != nil, s.Inhale != nil, s.Exhale != nil, s.Havoc != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

// LoadProgram reads and decodes the program file at path.
func LoadProgram(path string) (vir.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return vir.Program{}, err
	}
	p, err := DecodeProgram(data)
	if err != nil {
		return vir.Program{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// DecodeProgram decodes a YAML program. Statements and expressions are
// positioned at their location in data.
func DecodeProgram(data []byte) (vir.Program, error) {
	var file programFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return vir.Program{}, err
	}
	return file.program()
}

// EncodeProgram encodes p in the format read by DecodeProgram. Positions
// are not encoded.
func EncodeProgram(p vir.Program) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(encodeProgram(p)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (f programFile) program() (vir.Program, error) {
	var p vir.Program
	for _, decl := range f.Fields {
		v, err := ParseVarDecl(decl)
		if err != nil {
			return p, fmt.Errorf("field %q: %w", decl, err)
		}
		p.Fields = append(p.Fields, vir.NewField(v.Name, v.Typ))
	}

	// signatures first, every body may refer to every function
	for _, dn := range f.Domains {
		d := vir.Domain{Name: dn.Name}
		for _, fn := range dn.Functions {
			args, err := parseDecls(fn.Args)
			if err != nil {
				return p, fmt.Errorf("domain function %s: %w", fn.Name, err)
			}
			d.Functions = append(d.Functions, vir.DomainFunc{
				Name:       fn.Name,
				FormalArgs: args,
				ReturnType: vir.ParseType(fn.Returns),
				Unique:     fn.Unique,
			})
		}
		p.Domains = append(p.Domains, d)
	}
	for _, fn := range f.Functions {
		args, err := parseDecls(fn.Args)
		if err != nil {
			return p, fmt.Errorf("function %s: %w", fn.Name, err)
		}
		p.Functions = append(p.Functions, vir.Function{
			Name:       fn.Name,
			FormalArgs: args,
			ReturnType: vir.ParseType(fn.Returns),
		})
	}
	global := ProgramScope(p)

	for i, dn := range f.Domains {
		for _, ax := range dn.Axioms {
			e, err := parseExprNode(ax.Expr, global)
			if err != nil {
				return p, fmt.Errorf("axiom %s: %w", ax.Name, err)
			}
			p.Domains[i].Axioms = append(p.Domains[i].Axioms, vir.DomainAxiom{Name: ax.Name, Expr: e})
		}
	}
	for i, fn := range f.Functions {
		if err := decodeFunction(&p.Functions[i], fn, global); err != nil {
			return p, fmt.Errorf("function %s: %w", fn.Name, err)
		}
	}
	for _, pn := range f.Predicates {
		pred, err := decodePredicate(pn, global)
		if err != nil {
			return p, fmt.Errorf("predicate %s: %w", pn.Name, err)
		}
		p.Predicates = append(p.Predicates, pred)
	}
	for _, mn := range f.Methods {
		m, err := decodeMethod(mn, global)
		if err != nil {
			return p, fmt.Errorf("method %s: %w", mn.Name, err)
		}
		p.Methods = append(p.Methods, m)
	}
	return p, nil
}

// ResultVar is the variable naming the result of a function in its
// postconditions.
func ResultVar(f vir.Function) vir.LocalVar {
	return vir.NewLocalVar("result", f.ReturnType)
}

func decodeFunction(f *vir.Function, fn functionNode, global *Scope) error {
	scope := global.Child(f.FormalArgs...)
	var err error
	if f.Pres, err = parseExprNodes(fn.Requires, scope); err != nil {
		return err
	}
	if f.Posts, err = parseExprNodes(fn.Ensures, scope.Child(ResultVar(*f))); err != nil {
		return err
	}
	if fn.Body != nil {
		if f.Body, err = parseExprNode(*fn.Body, scope); err != nil {
			return err
		}
	}
	return nil
}

func decodePredicate(pn predicateNode, global *Scope) (vir.Predicate, error) {
	args, err := parseDecls(pn.Args)
	if err != nil {
		return vir.Predicate{}, err
	}
	pred := vir.Predicate{Name: pn.Name, FormalArgs: args}
	if pn.Body != nil {
		if pred.Body, err = parseExprNode(*pn.Body, global.Child(args...)); err != nil {
			return vir.Predicate{}, err
		}
	}
	return pred, nil
}

func decodeMethod(mn methodNode, global *Scope) (vir.Method, error) {
	m := vir.Method{Name: mn.Name, GhostLabels: mn.GhostLabels}
	var err error
	if m.FormalArgs, err = parseDecls(mn.Args); err != nil {
		return m, err
	}
	if m.FormalReturns, err = parseDecls(mn.Returns); err != nil {
		return m, err
	}
	if m.Locals, err = parseDecls(mn.Locals); err != nil {
		return m, err
	}
	scope := global.Child(m.Vars()...)
	if m.Pres, err = parseExprNodes(mn.Requires, scope); err != nil {
		return m, err
	}
	if m.Posts, err = parseExprNodes(mn.Ensures, scope); err != nil {
		return m, err
	}
	if mn.Body == nil {
		if len(mn.Decls) > 0 {
			return m, errors.New("decls without a body")
		}
		return m, nil
	}
	decls, err := parseDecls(mn.Decls)
	if err != nil {
		return m, err
	}
	stmts, err := decodeStmts(*mn.Body, scope.Child(decls...))
	if err != nil {
		return m, err
	}
	m.Body = &vir.SeqnStmt{Decls: decls, Stmts: stmts}
	return m, nil
}

func decodeStmts(nodes []stmtNode, scope *Scope) ([]vir.Stmt, error) {
	if nodes == nil {
		return nil, nil
	}
	stmts := make([]vir.Stmt, 0, len(nodes))
	for _, n := range nodes {
		s, err := decodeStmt(n, scope)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}

func decodeStmt(n stmtNode, scope *Scope) (vir.Stmt, error) {
	if k := n.kinds(); k != 1 {
		return nil, fmt.Errorf("line %d col %d: statement must have exactly one of %s", n.Line, n.Column, stmtKinds)
	}
	pos := vir.Position{Line: n.Line, Column: n.Column}
	switch {
	case n.Comment != nil:
		return vir.CommentStmt{Text: *n.Comment, Position: pos}, nil
	case n.Label != nil:
		return vir.LabelStmt{Name: *n.Label, Position: pos}, nil
	case n.Assign != nil:
		if n.Value == nil {
			return nil, fmt.Errorf("line %d col %d: assign without value", n.Line, n.Column)
		}
		target, err := parseExprNode(*n.Assign, scope)
		if err != nil {
			return nil, err
		}
		switch target.(type) {
		case vir.LocalExpr, vir.FieldExpr:
		default:
			return nil, fmt.Errorf("line %d col %d: cannot assign to %s", n.Line, n.Column, target)
		}
		value, err := parseExprNode(*n.Value, scope)
		if err != nil {
			return nil, err
		}
		return vir.AssignStmt{Target: target, Value: value, Position: pos}, nil
	case n.If != nil:
		guard, err := parseExprNode(*n.If, scope)
		if err != nil {
			return nil, err
		}
		then, err := decodeBlock(n.Then, n.Line, n.Column, scope)
		if err != nil {
			return nil, err
		}
		s := vir.IfStmt{Guard: guard, Then: then, Position: pos}
		if n.Else != nil {
			if s.Else, err = decodeBlock(*n.Else, n.Line, n.Column, scope); err != nil {
				return nil, err
			}
		}
		return s, nil
	case n.Seqn != nil:
		decls, err := parseDecls(n.Decls)
		if err != nil {
			return nil, fmt.Errorf("line %d col %d: %w", n.Line, n.Column, err)
		}
		stmts, err := decodeStmts(*n.Seqn, scope.Child(decls...))
		if err != nil {
			return nil, err
		}
		return vir.SeqnStmt{Decls: decls, Stmts: stmts, Position: pos}, nil
	case n.While != nil:
		cond, err := parseExprNode(*n.While, scope)
		if err != nil {
			return nil, err
		}
		inv := vir.True
		if n.Invariant != nil {
			if inv, err = parseExprNode(*n.Invariant, scope); err != nil {
				return nil, err
			}
		}
		body, err := decodeBlock(n.Body, n.Line, n.Column, scope)
		if err != nil {
			return nil, err
		}
		return vir.WhileStmt{Cond: cond, Invariant: inv, Body: body, Position: pos}, nil
	case n.Call != nil:
		args, err := parseExprNodes(n.Args, scope)
		if err != nil {
			return nil, err
		}
		targets, err := lookupVars(n.Targets, scope)
		if err != nil {
			return nil, fmt.Errorf("line %d col %d: %w", n.Line, n.Column, err)
		}
		return vir.MethodCallStmt{Name: *n.Call, Args: args, Targets: targets, Position: pos}, nil
	case n.Havoc != nil:
		vars, err := lookupVars([]string{*n.Havoc}, scope)
		if err != nil {
			return nil, fmt.Errorf("line %d col %d: %w", n.Line, n.Column, err)
		}
		return vir.HavocStmt{Var: vars[0], Position: pos}, nil
	}

	var (
		node *exprNode
		wrap func(vir.Expr) vir.Stmt
	)
	switch {
	case n.Assert != nil:
		node, wrap = n.Assert, func(e vir.Expr) vir.Stmt { return vir.AssertStmt{Expr: e, Position: pos} }
	case n.Assume != nil:
		node, wrap = n.Assume, func(e vir.Expr) vir.Stmt { return vir.AssumeStmt{Expr: e, Position: pos} }
	case n.Inhale != nil:
		node, wrap = n.Inhale, func(e vir.Expr) vir.Stmt { return vir.InhaleStmt{Expr: e, Position: pos} }
	default:
		node, wrap = n.Exhale, func(e vir.Expr) vir.Stmt { return vir.ExhaleStmt{Expr: e, Position: pos} }
	}
	e, err := parseExprNode(*node, scope)
	if err != nil {
		return nil, err
	}
	return wrap(e), nil
}

// decodeBlock decodes the branch of a conditional or the body of a loop.
// A single nested seqn is the block itself.
func decodeBlock(nodes []stmtNode, line, col int, scope *Scope) (vir.Stmt, error) {
	if len(nodes) == 1 && nodes[0].Seqn != nil {
		return decodeStmt(nodes[0], scope)
	}
	stmts, err := decodeStmts(nodes, scope)
	if err != nil {
		return nil, err
	}
	if stmts == nil {
		stmts = []vir.Stmt{}
	}
	return vir.SeqnStmt{Stmts: stmts, Position: vir.Position{Line: line, Column: col}}, nil
}

func parseExprNode(n exprNode, scope *Scope) (vir.Expr, error) {
	return ParseExprAt(n.Text, scope, n.pos())
}

func parseExprNodes(nodes []exprNode, scope *Scope) ([]vir.Expr, error) {
	if nodes == nil {
		return nil, nil
	}
	exprs := make([]vir.Expr, 0, len(nodes))
	for _, n := range nodes {
		e, err := parseExprNode(n, scope)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}

func parseDecls(decls []string) ([]vir.LocalVar, error) {
	if decls == nil {
		return nil, nil
	}
	vars := make([]vir.LocalVar, 0, len(decls))
	for _, decl := range decls {
		v, err := ParseVarDecl(decl)
		if err != nil {
			return nil, fmt.Errorf("declaration %q: %w", decl, err)
		}
		vars = append(vars, v)
	}
	return vars, nil
}

func lookupVars(names []string, scope *Scope) ([]vir.LocalVar, error) {
	if names == nil {
		return nil, nil
	}
	vars := make([]vir.LocalVar, 0, len(names))
	for _, name := range names {
		v, ok := scope.lookupVar(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("undeclared variable %q", name)
		}
		vars = append(vars, v)
	}
	return vars, nil
}
