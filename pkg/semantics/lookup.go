package semantics

import (
	"math"

	"cppbind/pkg/ast"
	"cppbind/pkg/utils"
)

// filter selects the kinds a lookup may find
type filter int

const (
	anyKind filter = iota
	typeOnly
	// qualifiers name a namespace or a type
	qualifierOnly
)

func (f filter) accepts(k Kind) bool {
	switch f {
	case typeOnly:
		return k.IsType()
	case qualifierOnly:
		return k.IsType() || k == KindNamespace
	}
	return true
}

// query is one unqualified or member lookup
type query struct {
	id     string
	pos    int
	filter filter
}

// Lookup resolves n without consulting the cache. It implements
// ast.Resolver; callers normally use Resolve.
func (r *Resolver) Lookup(n ast.Name) ast.Binding {
	r.lookups.Add(1)
	b := r.lookup(n)
	if p, ok := b.(*Problem); ok {
		r.log.Debugf("%s: %s (%s)", n.String(), p.Reason, p.Message)
	}
	return b
}

func (r *Resolver) lookup(n ast.Name) Binding {
	if n.Identifier() == "" {
		return unresolved(n.String(), "empty name")
	}

	switch parent := n.Parent().(type) {
	case *ast.QualifiedName:
		for i, seg := range parent.Segments() {
			if seg == n {
				return r.lookupSegment(parent, i)
			}
		}
	case *ast.TemplateID:
		if ast.Node(parent.Template) == ast.Node(n) {
			return r.Resolve(parent)
		}
	}

	if q, ok := n.(*ast.QualifiedName); ok {
		b := r.Resolve(q.Last())
		if e, ok := b.(*Entity); ok {
			if def, declares := declaringContext(q); declares {
				e.addDeclaration(q, def)
			}
		}
		return b
	}

	// the scope holding a declared name is built on the way up
	scope := r.enclosingScope(n)
	if e := r.declaredBy(n); e != nil {
		return e
	}

	switch parent := n.Parent().(type) {
	case *ast.GotoStatement:
		return r.lookupLabel(scope, n)
	case *ast.FieldReference:
		if parent.Field == n {
			return r.lookupMemberAccess(parent, n)
		}
	case *ast.ConstructorChainInitializer:
		if parent.Member == n {
			if cs := classOf(scope); cs != nil {
				if b := r.selectFrom(r.searchScope(cs, r.query(n, anyKind, math.MaxInt), nil), n.String(), anyKind); b != nil {
					return b
				}
			}
		}
	}

	return r.lookupUnqualified(scope, r.query(n, contextFilter(n), n.Offset()), n)
}

func (r *Resolver) query(n ast.Name, f filter, pos int) query {
	return query{id: n.Identifier(), pos: pos, filter: f}
}

// contextFilter restricts names written where only a type can appear
func contextFilter(n ast.Name) filter {
	switch p := n.Parent().(type) {
	case *ast.NamedTypeSpecifier, *ast.ElaboratedTypeSpecifier, *ast.BaseSpecifier:
		return typeOnly
	case *ast.PointerToMember:
		if p.Class == n {
			return typeOnly
		}
	}
	return anyKind
}

// lookupUnqualified searches scope and its ancestors, innermost first
func (r *Resolver) lookupUnqualified(scope *Scope, q query, n ast.Name) Binding {
	for s := scope; s != nil; s = s.parent {
		if b := r.selectFrom(r.searchScope(s, q, map[*Scope]bool{}), n.String(), q.filter); b != nil {
			return b
		}
	}
	return unresolved(n.String(), "not declared in any enclosing scope")
}

// lookupLabel searches labels up to the nearest function scope only
func (r *Resolver) lookupLabel(scope *Scope, n ast.Name) Binding {
	for s := scope; s != nil; s = s.parent {
		if s.kind != ScopeFunction {
			continue
		}
		if l, ok := s.labels[n.Identifier()]; ok {
			return l
		}
		break
	}
	return unresolved(n.String(), "label not defined in this function")
}

// lookupMemberAccess resolves the field of "this->f". Other member
// accesses would need the type of the owner expression.
func (r *Resolver) lookupMemberAccess(ref *ast.FieldReference, n ast.Name) Binding {
	lit, ok := ref.Owner.(*ast.LiteralExpression)
	if !ok || lit.Kind != ast.LiteralThis || !ref.Arrow {
		p := unresolved(n.String(), "member access needs the type of the object")
		p.NeedsType = true
		return p
	}
	cs := classOf(r.enclosingScope(ref))
	if cs == nil {
		return unresolved(n.String(), "this used outside of a class")
	}
	if b := r.selectFrom(r.searchScope(cs, r.query(n, anyKind, math.MaxInt), nil), n.String(), anyKind); b != nil {
		return b
	}
	return unresolved(n.String(), "no member named "+n.Identifier())
}

// lookupSegment resolves segment i of q. The first segment is found by
// unqualified lookup, each later one in the scope named by its predecessor.
func (r *Resolver) lookupSegment(q *ast.QualifiedName, i int) Binding {
	segs := q.Segments()
	seg := segs[i]
	f := qualifierOnly
	if i == len(segs)-1 {
		f = contextFilter(q)
	}

	if i == 0 {
		if q.FullyQualified {
			return r.lookupIn(r.global, seg, f)
		}
		return r.lookupUnqualified(r.enclosingScope(q), r.query(seg, f, q.Offset()), seg)
	}

	prev := r.Resolve(segs[i-1])
	if IsProblem(prev) {
		return unresolved(q.String(), segs[i-1].String()+" does not resolve")
	}
	scope := r.MemberScope(prev)
	if scope == nil {
		return unresolved(q.String(), prev.Name()+" is not a namespace or defined class")
	}
	return r.lookupIn(scope, seg, f)
}

// lookupIn is a qualified lookup of n in the members of scope
func (r *Resolver) lookupIn(scope *Scope, n ast.Name, f filter) Binding {
	if b := r.selectFrom(r.searchScope(scope, r.query(n, f, math.MaxInt), nil), n.String(), f); b != nil {
		return b
	}
	return unresolved(n.String(), "no member named "+n.Identifier()+" in "+scope.String())
}

// searchScope returns the candidates for q in s: its own names, then the
// bases of a class, then namespaces nominated by using-directives.
// visited guards against directive and inheritance cycles.
func (r *Resolver) searchScope(s *Scope, q query, visited map[*Scope]bool) []Binding {
	if visited == nil {
		visited = map[*Scope]bool{}
	}
	if visited[s] {
		return nil
	}
	visited[s] = true

	found := r.local(s, q)
	if len(found) > 0 {
		return found
	}
	if s.kind == ScopeClass {
		if found = r.searchBases(s, q, visited); len(found) > 0 {
			return found
		}
	}
	nominated := query{id: q.id, pos: math.MaxInt, filter: q.filter}
	for _, d := range s.directives {
		if s.ordered && d.visibleFrom > q.pos {
			continue
		}
		ns := r.directiveScope(d)
		if ns == nil {
			continue
		}
		found = append(found, r.searchScope(ns, nominated, visited)...)
	}
	return found
}

// local returns the candidates declared directly in s
func (r *Resolver) local(s *Scope, q query) []Binding {
	var found []Binding
	for _, e := range s.names[q.id] {
		if !s.visible(e, q.pos) {
			continue
		}
		if e.entity != nil {
			found = append(found, e.entity)
			continue
		}
		if b := r.Resolve(e.target); !IsProblem(b) {
			found = append(found, b)
		}
	}
	return found
}

// searchBases looks q up in each base class. Candidates found through
// different bases are all returned, so that selectFrom can report them.
func (r *Resolver) searchBases(s *Scope, q query, visited map[*Scope]bool) []Binding {
	c, ok := s.node.(*ast.CompositeTypeSpecifier)
	if !ok {
		return nil
	}
	var found []Binding
	for _, base := range c.Bases() {
		if base.Name == nil {
			continue
		}
		bs := r.MemberScope(r.Resolve(base.Name))
		if bs == nil || bs.kind != ScopeClass {
			continue
		}
		found = append(found, r.searchScope(bs, query{id: q.id, pos: math.MaxInt, filter: q.filter}, visited)...)
	}
	return found
}

func (r *Resolver) directiveScope(d directive) *Scope {
	if d.namespace != nil {
		return r.namespaceScopeOf(d.namespace)
	}
	s := r.MemberScope(r.Resolve(d.target))
	if s == nil || s.kind != ScopeNamespace {
		return nil
	}
	return s
}

// selectFrom reduces candidates to a single binding. Duplicates reached
// through different paths collapse; a function or variable hides a class
// of the same name. Nil means nothing acceptable was found.
func (r *Resolver) selectFrom(candidates []Binding, name string, f filter) Binding {
	var unique []Binding
	seen := map[Binding]bool{}
	for _, c := range candidates {
		if seen[c] || !f.accepts(c.Kind()) {
			continue
		}
		seen[c] = true
		unique = append(unique, c)
	}

	if len(unique) > 1 && f == anyKind {
		var values []Binding
		for _, c := range unique {
			if !c.Kind().IsType() && c.Kind() != KindNamespace {
				values = append(values, c)
			}
		}
		if len(values) > 0 {
			unique = values
		}
	}

	switch len(unique) {
	case 0:
		return nil
	case 1:
		return unique[0]
	}
	return ambiguous(name, unique)
}

// classOf returns the innermost class scope at or above s
func classOf(s *Scope) *Scope {
	for ; s != nil; s = s.parent {
		if s.kind == ScopeClass {
			return s
		}
	}
	return nil
}

// declaringContext reports whether q is the declared name of a declarator,
// function definition or class, and whether that declaration defines it.
func declaringContext(q *ast.QualifiedName) (definition, declares bool) {
	switch p := q.Parent().(type) {
	case ast.Declarator:
		if ast.InnermostName(ast.Outermost(p)) != ast.Name(q) {
			return false, false
		}
		outer := ast.Outermost(p)
		if def, ok := outer.Parent().(*ast.FunctionDefinition); ok {
			return def.Body != nil || def.TryBlock, true
		}
		if _, ok := outer.Parent().(*ast.SimpleDeclaration); ok {
			_, fn := outer.(*ast.FunctionDeclarator)
			return !fn, true
		}
	case *ast.CompositeTypeSpecifier:
		return true, true
	}
	return false, false
}

// LookupPath resolves a qualified path such as ["N", "C", "m"] from the
// translation unit scope, ignoring declaration order.
func (r *Resolver) LookupPath(path []string) Binding {
	if len(path) == 0 {
		return unresolved("", "empty path")
	}
	scope := r.global
	var b Binding
	for i, id := range path {
		f := qualifierOnly
		if i == len(path)-1 {
			f = anyKind
		}
		q := query{id: id, pos: math.MaxInt, filter: f}
		if i == 0 {
			b = nil
			for s := scope; s != nil && b == nil; s = s.parent {
				b = r.selectFrom(r.searchScope(s, q, nil), id, f)
			}
		} else {
			b = r.selectFrom(r.searchScope(scope, q, nil), id, f)
		}
		if b == nil {
			return unresolved(utils.JoinPath(path[:i+1]), "no entity named "+id)
		}
		if IsProblem(b) || i == len(path)-1 {
			return b
		}
		if scope = r.MemberScope(b); scope == nil {
			return unresolved(utils.JoinPath(path[:i+1]), b.Name()+" is not a namespace or defined class")
		}
	}
	return b
}
