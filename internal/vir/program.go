package vir

import "strings"

// PreLabel names the implicit snapshot taken at method entry.
const PreLabel = "pre"

// Method is a verified unit with a statement body.
type Method struct {
	Name          string
	FormalArgs    []LocalVar
	FormalReturns []LocalVar
	Locals        []LocalVar
	Pres          []Expr
	Posts         []Expr
	Body          *SeqnStmt // nil for abstract methods

	// GhostLabels lists the snapshot labels the encoder created for ghost
	// bookkeeping. A reference to one of them whose defining statement
	// no longer exists falls back to the current value.
	GhostLabels []string
}

// Vars returns the formal arguments, formal returns and locals of m.
func (m Method) Vars() []LocalVar {
	vars := make([]LocalVar, 0, len(m.FormalArgs)+len(m.FormalReturns)+len(m.Locals))
	vars = append(vars, m.FormalArgs...)
	vars = append(vars, m.FormalReturns...)
	return append(vars, m.Locals...)
}

func (m Method) String() string {
	var b strings.Builder
	b.WriteString("method " + m.Name + "(" + joinVars(m.FormalArgs) + ")")
	if len(m.FormalReturns) > 0 {
		b.WriteString(" returns (" + joinVars(m.FormalReturns) + ")")
	}
	b.WriteString("\n")
	for _, pre := range m.Pres {
		b.WriteString("  requires " + pre.String() + "\n")
	}
	for _, post := range m.Posts {
		b.WriteString("  ensures " + post.String() + "\n")
	}
	if m.Body != nil {
		body := *m.Body
		body.Decls = append(append([]LocalVar(nil), m.Locals...), body.Decls...)
		b.WriteString(body.String() + "\n")
	}
	return b.String()
}

// Function is a pure function. Body may be nil.
type Function struct {
	Name       string
	FormalArgs []LocalVar
	ReturnType Type
	Pres       []Expr
	Posts      []Expr
	Body       Expr
}

func (f Function) String() string {
	result := "function " + f.Name + "(" + joinVars(f.FormalArgs) + "): " + f.ReturnType.String()
	if f.Body != nil {
		result += " { " + f.Body.String() + " }"
	}
	return result
}

// Predicate is an abstract or defined assertion.
type Predicate struct {
	Name       string
	FormalArgs []LocalVar
	Body       Expr
}

// DomainFunc is an uninterpreted function of a domain.
type DomainFunc struct {
	Name       string
	FormalArgs []LocalVar
	ReturnType Type
	Unique     bool
}

// DomainAxiom is a named axiom of a domain.
type DomainAxiom struct {
	Name string
	Expr Expr
}

// Domain groups uninterpreted functions and their axioms.
type Domain struct {
	Name      string
	Functions []DomainFunc
	Axioms    []DomainAxiom
}

// Program is the set of verified units produced by the encoder.
type Program struct {
	Domains    []Domain
	Fields     []Field
	Functions  []Function
	Predicates []Predicate
	Methods    []Method
}

// Method returns the method called name.
func (p Program) Method(name string) (Method, bool) {
	for _, m := range p.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return Method{}, false
}

func joinVars(vars []LocalVar) string {
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}
