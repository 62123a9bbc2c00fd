// Package semantics binds names in a parsed translation unit to the
// entities they denote.
//
// Scopes are derived from the tree and kept in an arena keyed by the ID of
// the node that opens them. The translation unit scope is built by New;
// every other scope is built on first use, at most once, and is safe to
// request from several goroutines.
package semantics

import (
	"sync"
	"sync/atomic"

	"github.com/tliron/commonlog"

	"cppbind/pkg/ast"
	"cppbind/pkg/config"
)

// Option configures a Resolver
type Option func(*Resolver)

// WithConfig sets the resolution settings
func WithConfig(cfg config.Resolve) Option {
	return func(r *Resolver) { r.cfg = cfg }
}

// WithLogger replaces the default "cppbind.semantics" logger
func WithLogger(log commonlog.Logger) Option {
	return func(r *Resolver) { r.log = log }
}

type slot struct {
	once  sync.Once
	scope *Scope
}

// Resolver resolves the names of one translation unit. Bindings are cached
// on the name nodes, so a unit should be resolved by a single Resolver.
type Resolver struct {
	unit *ast.TranslationUnit
	cfg  config.Resolve
	log  commonlog.Logger

	global *Scope

	mu    sync.Mutex
	slots map[ast.NodeID]*slot

	declMu     sync.RWMutex
	declared   map[ast.Name]*Entity
	namespaces map[*ast.NamespaceDefinition]*Entity

	lookups atomic.Int64
}

// New builds the translation unit scope of unit. The unit is numbered if
// that has not happened yet.
func New(unit *ast.TranslationUnit, opts ...Option) *Resolver {
	if unit.ID() == 0 {
		ast.Number(unit)
	}
	r := &Resolver{
		unit:       unit,
		cfg:        config.Default().Resolve,
		log:        commonlog.GetLogger("cppbind.semantics"),
		slots:      make(map[ast.NodeID]*slot),
		declared:   make(map[ast.Name]*Entity),
		namespaces: make(map[*ast.NamespaceDefinition]*Entity),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.global = r.scopeAt(unit, func() *Scope {
		s := newScope(ScopeTranslationUnit, unit, nil)
		populator{r, s}.declarations(unit.Declarations())
		return s
	})
	return r
}

// Unit returns the translation unit being resolved
func (r *Resolver) Unit() *ast.TranslationUnit { return r.unit }

// Global returns the translation unit scope
func (r *Resolver) Global() *Scope { return r.global }

// Lookups returns how many uncached lookups have run
func (r *Resolver) Lookups() int64 { return r.lookups.Load() }

// Resolve returns the binding of n, computing it on the first call
func (r *Resolver) Resolve(n ast.Name) Binding {
	b := n.ResolveBinding(r)
	if bb, ok := b.(Binding); ok {
		return bb
	}
	return unresolved(n.String(), "no binding")
}

// ScopeOf returns the innermost scope containing n
func (r *Resolver) ScopeOf(n ast.Node) *Scope {
	return r.enclosingScope(n)
}

// MemberScope returns the scope of a namespace or defined class binding
func (r *Resolver) MemberScope(b Binding) *Scope {
	e, ok := b.(*Entity)
	if !ok || len(e.anchors) == 0 {
		return nil
	}
	switch e.kind {
	case KindNamespace:
		return r.namespaceScopeOf(e)
	case KindClass:
		return r.classScope(e.anchors[0].(*ast.CompositeTypeSpecifier))
	}
	return nil
}

// scopeAt returns the scope opened by anchor, building it on first request
func (r *Resolver) scopeAt(anchor ast.Node, build func() *Scope) *Scope {
	r.mu.Lock()
	sl, ok := r.slots[anchor.ID()]
	if !ok {
		sl = &slot{}
		r.slots[anchor.ID()] = sl
	}
	r.mu.Unlock()

	sl.once.Do(func() {
		sl.scope = build()
		r.log.Debugf("built %s scope at offset %d", sl.scope.kind, anchor.Offset())
	})
	return sl.scope
}

// Scopes returns the number of scopes built so far
func (r *Resolver) Scopes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.slots)
}

// AllScopes builds every scope of the unit and returns them in the order
// their anchors appear, the translation unit scope first.
func (r *Resolver) AllScopes() []*Scope {
	out := []*Scope{r.global}
	seen := map[*Scope]bool{r.global: true}
	ast.Inspect(r.unit, func(n ast.Node) bool {
		p := n.Parent()
		if p == nil {
			return true
		}
		if s := r.scopeOpenedBy(p, n); s != nil && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
		return true
	})
	return out
}

// Entities returns every entity declared in the unit, scope by scope
func (r *Resolver) Entities() []*Entity {
	var out []*Entity
	seen := map[*Entity]bool{}
	for _, s := range r.AllScopes() {
		for _, name := range s.Names() {
			for _, e := range s.Local(name) {
				if !seen[e] {
					seen[e] = true
					out = append(out, e)
				}
			}
		}
	}
	return out
}

func (r *Resolver) register(n ast.Name, e *Entity) {
	r.declMu.Lock()
	r.declared[n] = e
	r.declMu.Unlock()
}

func (r *Resolver) declaredBy(n ast.Name) *Entity {
	r.declMu.RLock()
	defer r.declMu.RUnlock()
	return r.declared[n]
}

func (r *Resolver) setNamespace(d *ast.NamespaceDefinition, e *Entity) {
	r.declMu.Lock()
	r.namespaces[d] = e
	r.declMu.Unlock()
}

func (r *Resolver) namespaceOf(d *ast.NamespaceDefinition) *Entity {
	r.declMu.RLock()
	defer r.declMu.RUnlock()
	return r.namespaces[d]
}

// enclosingScope walks up from n to the first node whose scope region
// contains it.
func (r *Resolver) enclosingScope(n ast.Node) *Scope {
	child := n
	for parent := n.Parent(); parent != nil; child, parent = parent, parent.Parent() {
		if s := r.scopeOpenedBy(parent, child); s != nil {
			return s
		}
	}
	return r.global
}

// scopeOpenedBy returns the scope parent opens for child, or nil when
// child lies outside of it.
func (r *Resolver) scopeOpenedBy(parent, child ast.Node) *Scope {
	switch p := parent.(type) {
	case *ast.TranslationUnit:
		return r.global
	case *ast.NamespaceDefinition:
		if child != ast.Node(p.Name) {
			return r.namespaceScope(p)
		}
	case *ast.CompositeTypeSpecifier:
		if _, member := child.(ast.Declaration); member {
			return r.classScope(p)
		}
	case *ast.FunctionDefinition:
		if child == ast.Node(p.Body) {
			return r.functionScope(p)
		}
		if _, ok := child.(*ast.CatchHandler); ok {
			return r.functionScope(p)
		}
	case *ast.FunctionDeclarator:
		switch child.(type) {
		case *ast.ParameterDeclaration, *ast.ConstructorChainInitializer:
			if def, ok := p.Parent().(*ast.FunctionDefinition); ok && def.Declarator == p {
				return r.functionScope(def)
			}
			return r.prototypeScope(p)
		}
	case *ast.CompoundStatement:
		if def, ok := p.Parent().(*ast.FunctionDefinition); ok && def.Body == p {
			return nil
		}
		return r.blockScope(p, func(pop populator) { pop.statements(p.Statements()) })
	case *ast.ForStatement:
		return r.blockScope(p, func(pop populator) {
			if ds, ok := p.Init.(*ast.DeclarationStatement); ok {
				pop.declaration(ds.Declaration)
			}
		})
	case *ast.CatchHandler:
		return r.blockScope(p, func(pop populator) {
			if p.Declaration != nil {
				pop.declaration(p.Declaration)
			}
		})
	case *ast.TemplateDeclaration:
		return r.scopeAt(p, func() *Scope {
			s := newScope(ScopeTemplate, p, r.enclosingScope(p))
			populator{r, s}.templateParameters(p.Parameters())
			return s
		})
	}
	return nil
}

func (r *Resolver) namespaceScope(d *ast.NamespaceDefinition) *Scope {
	// the enclosing scope registers the namespace entity
	r.enclosingScope(d)
	e := r.namespaceOf(d)
	if e == nil {
		return r.global
	}
	return r.namespaceScopeOf(e)
}

func (r *Resolver) namespaceScopeOf(e *Entity) *Scope {
	first := e.anchors[0]
	return r.scopeAt(first, func() *Scope {
		s := newScope(ScopeNamespace, first, e.owner)
		s.entity = e
		pop := populator{r, s}
		for _, a := range e.anchors {
			pop.declarations(a.(*ast.NamespaceDefinition).Declarations())
		}
		return s
	})
}

func (r *Resolver) classScope(c *ast.CompositeTypeSpecifier) *Scope {
	return r.scopeAt(c, func() *Scope {
		parent := r.enclosingScope(c)
		if q, ok := c.Name.(*ast.QualifiedName); ok {
			if qs := r.qualifierScope(q); qs != nil {
				parent = qs
			}
		}
		s := newScope(ScopeClass, c, parent)
		if c.Name != nil {
			s.entity = r.declaredBy(c.Name)
		}
		if s.entity == nil {
			s.entity = newEntity(KindClass, "", parent)
			s.entity.Key = c.Key
			s.entity.anchors = []ast.Node{c}
		}
		populator{r, s}.declarations(c.Members())
		return s
	})
}

// functionScope holds the parameters, the outermost block of the body and
// the labels. An out-of-class definition is nested in its class.
func (r *Resolver) functionScope(def *ast.FunctionDefinition) *Scope {
	return r.scopeAt(def, func() *Scope {
		parent := r.enclosingScope(def)
		if def.Declarator != nil {
			if q, ok := def.Declarator.Name().(*ast.QualifiedName); ok {
				if qs := r.qualifierScope(q); qs != nil {
					parent = qs
				}
			}
		}
		s := newScope(ScopeFunction, def, parent)
		pop := populator{r, s}
		if def.Declarator != nil {
			pop.parameters(def.Declarator.Parameters())
		}
		if def.Body != nil {
			pop.statements(def.Body.Statements())
			pop.labels(def.Body)
		}
		for _, h := range def.CatchHandlers() {
			pop.labels(h.Body)
		}
		return s
	})
}

func (r *Resolver) prototypeScope(fd *ast.FunctionDeclarator) *Scope {
	return r.scopeAt(fd, func() *Scope {
		s := newScope(ScopePrototype, fd, r.enclosingScope(fd))
		populator{r, s}.parameters(fd.Parameters())
		return s
	})
}

func (r *Resolver) blockScope(anchor ast.Node, fill func(populator)) *Scope {
	return r.scopeAt(anchor, func() *Scope {
		s := newScope(ScopeBlock, anchor, r.enclosingScope(anchor))
		fill(populator{r, s})
		return s
	})
}

// qualifierScope returns the member scope named by all but the last
// segment of q.
func (r *Resolver) qualifierScope(q *ast.QualifiedName) *Scope {
	segs := q.Segments()
	if len(segs) < 2 {
		if q.FullyQualified {
			return r.global
		}
		return nil
	}
	return r.MemberScope(r.Resolve(segs[len(segs)-2]))
}
