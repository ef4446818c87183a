package vir

// TypeKind enumerates the VIR value types.
type TypeKind int

const (
	_ TypeKind = iota
	KindInt
	KindBool
	KindRef
	KindTypedRef
)

// Type is the type of a local variable, field or function result.
type Type struct {
	Kind TypeKind
	Name string // only set for KindTypedRef
}

var (
	IntType  = Type{Kind: KindInt}
	BoolType = Type{Kind: KindBool}
	RefType  = Type{Kind: KindRef}
)

// TypedRef returns a reference type carrying the name of the referenced
// source type.
func TypedRef(name string) Type {
	return Type{Kind: KindTypedRef, Name: name}
}

func (t Type) String() string {
	switch t.Kind {
	case KindInt:
		return "Int"
	case KindBool:
		return "Bool"
	case KindRef:
		return "Ref"
	case KindTypedRef:
		return t.Name
	default:
		return "?"
	}
}

// ParseType is the inverse of Type.String.
func ParseType(s string) Type {
	switch s {
	case "Int":
		return IntType
	case "Bool":
		return BoolType
	case "Ref":
		return RefType
	default:
		return TypedRef(s)
	}
}

// LocalVar is a named, typed local variable.
type LocalVar struct {
	Name string
	Typ  Type
}

// NewLocalVar creates a local variable.
func NewLocalVar(name string, typ Type) LocalVar {
	return LocalVar{Name: name, Typ: typ}
}

func (v LocalVar) String() string {
	return v.Name + ": " + v.Typ.String()
}

// Field is a heap field declaration.
type Field struct {
	Name string
	Typ  Type
}

// NewField creates a field declaration.
func NewField(name string, typ Type) Field {
	return Field{Name: name, Typ: typ}
}

func (f Field) String() string {
	return "field " + f.Name + ": " + f.Typ.String()
}
