package virtext

import "github.com/gnolang/virfix/internal/vir"

// Scope resolves the names an expression mentions: local variables, heap
// fields and functions. Scopes nest; lookups fall back to the parent.
type Scope struct {
	parent *Scope
	vars   map[string]vir.LocalVar
	fields map[string]vir.Field
	funcs  map[string]signature
}

type signature struct {
	formalArgs []vir.LocalVar
	returnType vir.Type
}

// NewScope returns an empty top-level scope.
func NewScope() *Scope {
	return &Scope{
		vars:   make(map[string]vir.LocalVar),
		fields: make(map[string]vir.Field),
		funcs:  make(map[string]signature),
	}
}

// ProgramScope returns a scope declaring the fields, functions and domain
// functions of p.
func ProgramScope(p vir.Program) *Scope {
	s := NewScope()
	for _, f := range p.Fields {
		s.DeclareField(f)
	}
	for _, d := range p.Domains {
		for _, f := range d.Functions {
			s.DeclareFunc(f.Name, f.FormalArgs, f.ReturnType)
		}
	}
	for _, f := range p.Functions {
		s.DeclareFunc(f.Name, f.FormalArgs, f.ReturnType)
	}
	return s
}

// Child returns a scope nested in s declaring vars.
func (s *Scope) Child(vars ...vir.LocalVar) *Scope {
	child := &Scope{
		parent: s,
		vars:   make(map[string]vir.LocalVar, len(vars)),
		fields: make(map[string]vir.Field),
		funcs:  make(map[string]signature),
	}
	child.DeclareVars(vars...)
	return child
}

func (s *Scope) DeclareVars(vars ...vir.LocalVar) {
	for _, v := range vars {
		s.vars[v.Name] = v
	}
}

func (s *Scope) DeclareField(f vir.Field) {
	s.fields[f.Name] = f
}

func (s *Scope) DeclareFunc(name string, formalArgs []vir.LocalVar, returnType vir.Type) {
	s.funcs[name] = signature{formalArgs: formalArgs, returnType: returnType}
}

func (s *Scope) lookupVar(name string) (vir.LocalVar, bool) {
	for ; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}
	return vir.LocalVar{}, false
}

func (s *Scope) lookupField(name string) (vir.Field, bool) {
	for ; s != nil; s = s.parent {
		if f, ok := s.fields[name]; ok {
			return f, true
		}
	}
	return vir.Field{}, false
}

func (s *Scope) lookupFunc(name string) (signature, bool) {
	for ; s != nil; s = s.parent {
		if f, ok := s.funcs[name]; ok {
			return f, true
		}
	}
	return signature{}, false
}
