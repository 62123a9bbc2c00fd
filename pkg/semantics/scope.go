package semantics

import (
	"fmt"
	"sort"

	"cppbind/pkg/ast"
)

// ScopeKind classifies a scope by the construct that opens it
type ScopeKind int

const (
	ScopeTranslationUnit ScopeKind = iota
	ScopeNamespace
	ScopeClass
	ScopeFunction
	ScopeBlock
	ScopePrototype
	ScopeTemplate
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeTranslationUnit:
		return "translation unit"
	case ScopeNamespace:
		return "namespace"
	case ScopeClass:
		return "class"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	case ScopePrototype:
		return "function prototype"
	default:
		return "template"
	}
}

// Scope is a lexical region with its own name table. A namespace opened
// several times has a single scope covering every definition.
//
// A scope is filled once, when it is first built, and is read-only after.
type Scope struct {
	kind   ScopeKind
	node   ast.Node
	parent *Scope
	entity *Entity

	// ordered scopes only see names declared before the point of use
	ordered bool

	names      map[string][]*entry
	labels     map[string]*Entity
	directives []directive
}

// entry is one name in a scope table. Aliases and using-declarations keep
// the target name and resolve it on use.
type entry struct {
	entity      *Entity
	target      ast.Name
	visibleFrom int
}

// directive is a using-directive, or the implicit one of an unnamed namespace
type directive struct {
	target      ast.Name
	namespace   *Entity
	visibleFrom int
}

func newScope(kind ScopeKind, node ast.Node, parent *Scope) *Scope {
	return &Scope{
		kind:    kind,
		node:    node,
		parent:  parent,
		ordered: kind != ScopeClass,
		names:   make(map[string][]*entry),
	}
}

func (s *Scope) Kind() ScopeKind { return s.kind }

// Node is the construct that opens the scope; for a namespace it is the
// first definition.
func (s *Scope) Node() ast.Node { return s.node }

// Parent is the enclosing scope, nil for the translation unit
func (s *Scope) Parent() *Scope { return s.parent }

// Entity is the namespace or class owning the scope, if any
func (s *Scope) Entity() *Entity { return s.entity }

// Names returns the names declared directly in s, sorted
func (s *Scope) Names() []string {
	out := make([]string, 0, len(s.names)+len(s.labels))
	for name := range s.names {
		out = append(out, name)
	}
	for name := range s.labels {
		if _, dup := s.names[name]; !dup {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Local returns the entities declared in s under name, ignoring aliases,
// using-declarations and declaration order.
func (s *Scope) Local(name string) []*Entity {
	var out []*Entity
	for _, e := range s.names[name] {
		if e.entity != nil {
			out = append(out, e.entity)
		}
	}
	if l, ok := s.labels[name]; ok {
		out = append(out, l)
	}
	return out
}

func (s *Scope) String() string {
	if s.entity != nil && s.entity.name != "" {
		return fmt.Sprintf("%s %s", s.kind, s.entity.QualifiedName())
	}
	return s.kind.String()
}

// visible reports whether e may be seen from offset pos
func (s *Scope) visible(e *entry, pos int) bool {
	return !s.ordered || e.visibleFrom <= pos
}

// populator fills one scope while it is being built
type populator struct {
	r *Resolver
	s *Scope
}

func (p populator) declare(kind Kind, declName ast.Name, visibleFrom int, definition bool) *Entity {
	id := declName.Identifier()
	if id == "" {
		return nil
	}
	for _, e := range p.s.names[id] {
		if e.entity != nil && e.entity.kind == kind {
			e.entity.addDeclaration(declName, definition)
			p.r.register(declName, e.entity)
			return e.entity
		}
	}
	ent := newEntity(kind, id, p.s)
	ent.addDeclaration(declName, definition)
	p.s.names[id] = append(p.s.names[id], &entry{entity: ent, visibleFrom: visibleFrom})
	p.r.register(declName, ent)
	return ent
}

func (p populator) alias(name ast.Name, target ast.Name, visibleFrom int) {
	id := name.Identifier()
	if id == "" || target == nil {
		return
	}
	p.s.names[id] = append(p.s.names[id], &entry{target: target, visibleFrom: visibleFrom})
}

func (p populator) label(name *ast.SimpleName) {
	if name == nil || name.IsEmpty() {
		return
	}
	if p.s.labels == nil {
		p.s.labels = make(map[string]*Entity)
	}
	if l, ok := p.s.labels[name.Value]; ok {
		l.addDeclaration(name, false)
		p.r.register(name, l)
		return
	}
	l := newEntity(KindLabel, name.Value, p.s)
	l.addDeclaration(name, true)
	p.s.labels[name.Value] = l
	p.r.register(name, l)
}

func (p populator) declarations(decls []ast.Declaration) {
	for _, d := range decls {
		p.declaration(d)
	}
}

func (p populator) declaration(d ast.Declaration) {
	switch d := d.(type) {
	case *ast.SimpleDeclaration:
		p.simpleDeclaration(d)
	case *ast.FunctionDefinition:
		if d.Declarator == nil {
			return
		}
		name := d.Declarator.Name()
		if name == nil || isQualified(name) || d.Specifier != nil && d.Specifier.Flags().Friend {
			return
		}
		p.declare(p.functionKind(), name, name.EndOffset(), true)
	case *ast.NamespaceDefinition:
		p.namespace(d)
	case *ast.NamespaceAlias:
		p.alias(d.Alias, d.Target, d.EndOffset())
	case *ast.UsingDirective:
		if d.Namespace != nil {
			p.s.directives = append(p.s.directives, directive{target: d.Namespace, visibleFrom: d.EndOffset()})
		}
	case *ast.UsingDeclaration:
		if d.Name != nil {
			p.alias(ast.LastSegment(d.Name), d.Name, d.EndOffset())
		}
	case *ast.LinkageSpecification:
		p.declarations(d.Declarations())
	case *ast.TemplateDeclaration:
		p.declaration(d.Declaration)
	case *ast.TemplateSpecialization:
		p.declaration(d.Declaration)
	}
}

func (p populator) namespace(d *ast.NamespaceDefinition) {
	var ent *Entity
	if d.Name == nil || d.Name.IsEmpty() {
		ent = newEntity(KindNamespace, "", p.s)
		p.s.directives = append(p.s.directives, directive{namespace: ent, visibleFrom: d.Offset()})
	} else {
		ent = p.declare(KindNamespace, d.Name, d.Name.EndOffset(), true)
	}
	ent.anchors = append(ent.anchors, d)
	p.r.setNamespace(d, ent)
}

func (p populator) functionKind() Kind {
	if p.s.kind == ScopeClass {
		return KindMethod
	}
	return KindFunction
}

func (p populator) simpleDeclaration(d *ast.SimpleDeclaration) {
	var flags ast.Specifiers
	if d.Specifier != nil {
		flags = *d.Specifier.Flags()
	}
	declarators := d.Declarators()

	switch spec := d.Specifier.(type) {
	case *ast.CompositeTypeSpecifier:
		switch {
		case spec.Name != nil && spec.Name.Identifier() != "" && !isQualified(spec.Name):
			ent := p.declare(KindClass, spec.Name, spec.Name.EndOffset(), true)
			ent.Key = spec.Key
			ent.anchors = append(ent.anchors, spec)
		case spec.Name == nil || spec.Name.Identifier() == "":
			if len(declarators) == 0 && spec.Key == ast.KeyUnion {
				// members of an anonymous union belong to the enclosing scope
				p.declarations(spec.Members())
			}
		}
	case *ast.ElaboratedTypeSpecifier:
		if len(declarators) == 0 && !flags.Friend && spec.Name != nil && !isQualified(spec.Name) {
			kind := KindClass
			if spec.Kind == ast.ElaboratedEnum {
				kind = KindEnumeration
			}
			ent := p.declare(kind, spec.Name, spec.Name.EndOffset(), false)
			if ent != nil && kind == KindClass {
				ent.Key = compositeKey(spec.Kind)
			}
		}
	case *ast.EnumerationSpecifier:
		if spec.Name != nil && !spec.Name.IsEmpty() {
			p.declare(KindEnumeration, spec.Name, spec.Name.EndOffset(), true)
		}
		for _, en := range spec.Enumerators() {
			p.declare(KindEnumerator, en.Name, en.EndOffset(), true)
		}
	}

	if flags.Friend {
		return
	}
	for _, dc := range declarators {
		name := ast.InnermostName(dc)
		if name == nil || isQualified(name) {
			continue
		}
		switch {
		case flags.IsTypedef():
			p.declare(KindTypedef, name, dc.EndOffset(), true)
		case isFunction(dc):
			p.declare(p.functionKind(), name, name.EndOffset(), false)
		case p.s.kind == ScopeClass:
			p.declare(KindField, name, dc.EndOffset(), flags.Storage != ast.StorageStatic)
		default:
			def := flags.Storage != ast.StorageExtern || dc.Initializer() != nil
			p.declare(KindVariable, name, dc.EndOffset(), def)
		}
	}
}

func (p populator) parameters(params []*ast.ParameterDeclaration) {
	for _, param := range params {
		if param.Declarator == nil {
			continue
		}
		if name := ast.InnermostName(param.Declarator); name != nil && !isQualified(name) {
			p.declare(KindParameter, name, param.Declarator.EndOffset(), true)
		}
	}
}

func (p populator) statements(stmts []ast.Statement) {
	for _, st := range stmts {
		if ds, ok := st.(*ast.DeclarationStatement); ok {
			p.declaration(ds.Declaration)
		}
	}
}

// labels declares every label of a function body. Local classes have
// their own functions and are skipped.
func (p populator) labels(body ast.Node) {
	ast.Inspect(body, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.CompositeTypeSpecifier:
			return false
		case *ast.LabelStatement:
			p.label(n.Name)
		}
		return true
	})
}

func (p populator) templateParameters(params []ast.TemplateParameter) {
	for _, tp := range params {
		switch tp := tp.(type) {
		case *ast.SimpleTypeTemplateParameter:
			if tp.Name != nil && !tp.Name.IsEmpty() {
				p.declare(KindTemplateParameter, tp.Name, tp.Name.EndOffset(), true)
			}
		case *ast.TemplatedTypeTemplateParameter:
			if tp.Name != nil && !tp.Name.IsEmpty() {
				p.declare(KindTemplateParameter, tp.Name, tp.Name.EndOffset(), true)
			}
		case *ast.ParameterDeclaration:
			if tp.Declarator == nil {
				continue
			}
			if name := ast.InnermostName(tp.Declarator); name != nil && !isQualified(name) {
				p.declare(KindTemplateParameter, name, tp.Declarator.EndOffset(), true)
			}
		}
	}
}

func isQualified(n ast.Name) bool {
	_, ok := n.(*ast.QualifiedName)
	return ok
}

// isFunction reports whether d declares a function rather than a pointer
// or reference to one.
func isFunction(d ast.Declarator) bool {
	fd, ok := d.(*ast.FunctionDeclarator)
	if !ok {
		return false
	}
	for inner := fd.Nested(); inner != nil; inner = inner.Nested() {
		if len(inner.PointerOperators()) > 0 {
			return false
		}
	}
	return true
}

func compositeKey(k ast.ElaboratedKind) ast.CompositeKey {
	switch k {
	case ast.ElaboratedStruct:
		return ast.KeyStruct
	case ast.ElaboratedUnion:
		return ast.KeyUnion
	default:
		return ast.KeyClass
	}
}
