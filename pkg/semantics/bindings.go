package semantics

import (
	"sync"

	"cppbind/pkg/ast"
	"cppbind/pkg/utils"
)

// Kind classifies a binding
type Kind int

const (
	KindNamespace Kind = iota
	KindClass
	KindEnumeration
	KindEnumerator
	KindTypedef
	KindVariable
	KindField
	KindFunction
	KindMethod
	KindParameter
	KindTemplateParameter
	KindLabel
	KindProblem
)

func (k Kind) String() string {
	switch k {
	case KindNamespace:
		return "namespace"
	case KindClass:
		return "class"
	case KindEnumeration:
		return "enumeration"
	case KindEnumerator:
		return "enumerator"
	case KindTypedef:
		return "typedef"
	case KindVariable:
		return "variable"
	case KindField:
		return "field"
	case KindFunction:
		return "function"
	case KindMethod:
		return "method"
	case KindParameter:
		return "parameter"
	case KindTemplateParameter:
		return "template parameter"
	case KindLabel:
		return "label"
	default:
		return "problem"
	}
}

// IsType reports whether bindings of kind k name types
func (k Kind) IsType() bool {
	switch k {
	case KindClass, KindEnumeration, KindTypedef, KindTemplateParameter:
		return true
	}
	return false
}

// Binding is the result of resolving a name
type Binding interface {
	ast.Binding
	Kind() Kind
	// Declarations lists every name that declares the entity, in the order
	// they were found.
	Declarations() []ast.Name
	// Definition is the defining name, or nil when only declarations exist
	Definition() ast.Name
}

// Entity is a declared C++ entity. A name declared more than once in a
// scope, such as a forward-declared class or an overloaded function, maps
// to one Entity holding all of its declarations.
type Entity struct {
	kind  Kind
	name  string
	owner *Scope

	// Key is the class key of a class binding
	Key ast.CompositeKey

	mu    sync.Mutex
	decls []ast.Name
	def   ast.Name

	// namespaces and classes: the nodes opening their member scope
	anchors []ast.Node
}

func newEntity(kind Kind, name string, owner *Scope) *Entity {
	return &Entity{kind: kind, name: name, owner: owner}
}

func (e *Entity) Name() string { return e.name }
func (e *Entity) Kind() Kind   { return e.kind }

// Owner is the scope the entity is declared in
func (e *Entity) Owner() *Scope { return e.owner }

// QualifiedName joins the names of the enclosing namespaces and classes
func (e *Entity) QualifiedName() string {
	parts := []string{e.name}
	for s := e.owner; s != nil; s = s.parent {
		if s.entity != nil && s.entity != e && s.entity.name != "" {
			parts = append(parts, s.entity.name)
		}
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return utils.JoinPath(parts)
}

func (e *Entity) Declarations() []ast.Name {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]ast.Name, len(e.decls))
	copy(out, e.decls)
	return out
}

func (e *Entity) Definition() ast.Name {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.def
}

// addDeclaration records n once; definition marks it as the defining name
// unless one is already known.
func (e *Entity) addDeclaration(n ast.Name, definition bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, d := range e.decls {
		if d == n {
			return
		}
	}
	e.decls = append(e.decls, n)
	if definition && e.def == nil {
		e.def = n
	}
}

func (e *Entity) String() string {
	return e.kind.String() + " " + e.QualifiedName()
}

// ProblemKind tells why a name has no binding
type ProblemKind int

const (
	Unresolved ProblemKind = iota
	Ambiguous
)

func (k ProblemKind) String() string {
	if k == Ambiguous {
		return "ambiguous"
	}
	return "unresolved"
}

// Problem is returned for a name that does not resolve to exactly one
// entity. An ambiguous problem lists the competing candidates.
type Problem struct {
	Reason     ProblemKind
	name       string
	Message    string
	Candidates []Binding
	// NeedsType marks member accesses that cannot be resolved without the
	// type of the object expression.
	NeedsType bool
}

func (p *Problem) Name() string             { return p.name }
func (p *Problem) Kind() Kind               { return KindProblem }
func (p *Problem) Declarations() []ast.Name { return nil }
func (p *Problem) Definition() ast.Name     { return nil }
func (p *Problem) String() string           { return p.Reason.String() + " " + p.name }

func unresolved(name, message string) *Problem {
	return &Problem{Reason: Unresolved, name: name, Message: message}
}

func ambiguous(name string, candidates []Binding) *Problem {
	return &Problem{Reason: Ambiguous, name: name, Message: "ambiguous name", Candidates: candidates}
}

// IsProblem reports whether b is nil or a Problem
func IsProblem(b ast.Binding) bool {
	if b == nil {
		return true
	}
	_, ok := b.(*Problem)
	return ok
}
