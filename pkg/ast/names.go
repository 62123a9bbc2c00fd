package ast

import (
	"strings"
	"sync/atomic"
)

// Binding is the semantic entity a Name resolves to. Concrete bindings live
// in the semantics package.
type Binding interface {
	Name() string
}

// Resolver performs an uncached lookup for a name
type Resolver interface {
	Lookup(n Name) Binding
}

// Name is any name node: simple, qualified, template-id, operator or
// conversion function name.
type Name interface {
	Node
	// String returns the name as written, with whitespace normalized
	String() string
	// Identifier returns the text used to look the name up in a scope
	Identifier() string
	// ResolveBinding resolves the name on first call and returns the cached
	// result afterwards.
	ResolveBinding(r Resolver) Binding
	// Binding returns the cached binding, or nil before the first resolve
	Binding() Binding
	memo() *bindingMemo
}

type bindingBox struct{ binding Binding }

type bindingMemo struct {
	cached atomic.Pointer[bindingBox]
}

// nameBase is embedded by every Name
type nameBase struct {
	nodeBase
	bm bindingMemo
}

func (n *nameBase) memo() *bindingMemo { return &n.bm }

func (n *nameBase) Binding() Binding {
	if box := n.bm.cached.Load(); box != nil {
		return box.binding
	}
	return nil
}

// resolveOnce runs the lookup at most once per name in sequential use.
// Concurrent first calls may both search, but every caller observes the
// binding stored by the first to finish.
func resolveOnce(n Name, r Resolver) Binding {
	m := n.memo()
	if box := m.cached.Load(); box != nil {
		return box.binding
	}
	b := r.Lookup(n)
	m.cached.CompareAndSwap(nil, &bindingBox{binding: b})
	return m.cached.Load().binding
}

// SimpleName is a single identifier. Destructor names keep their tilde
// ("~Foo"). An empty value marks the missing name of an abstract declarator.
type SimpleName struct {
	nameBase
	Value string
}

func (n *SimpleName) String() string                    { return n.Value }
func (n *SimpleName) Identifier() string                { return n.Value }
func (n *SimpleName) ResolveBinding(r Resolver) Binding { return resolveOnce(n, r) }

// IsEmpty reports whether the name is the placeholder of an abstract declarator
func (n *SimpleName) IsEmpty() bool { return n.Value == "" }

// QualifiedName is a sequence of names joined by ::
type QualifiedName struct {
	nameBase
	segments       NodeList[Name]
	FullyQualified bool // leading ::
}

// AddSegment appends the next segment
func (n *QualifiedName) AddSegment(seg Name) {
	n.segments.Add(Attach(n, seg))
}

// Segments returns the segments in source order
func (n *QualifiedName) Segments() []Name { return n.segments.All() }

// Last returns the final segment
func (n *QualifiedName) Last() Name {
	segs := n.segments.All()
	if len(segs) == 0 {
		return nil
	}
	return segs[len(segs)-1]
}

func (n *QualifiedName) String() string {
	var sb strings.Builder
	if n.FullyQualified {
		sb.WriteString("::")
	}
	for i, seg := range n.segments.All() {
		if i > 0 {
			sb.WriteString("::")
		}
		sb.WriteString(seg.String())
	}
	return sb.String()
}

func (n *QualifiedName) Identifier() string {
	if last := n.Last(); last != nil {
		return last.Identifier()
	}
	return ""
}

func (n *QualifiedName) ResolveBinding(r Resolver) Binding { return resolveOnce(n, r) }

// TemplateID is a template name followed by an argument list
type TemplateID struct {
	nameBase
	Template  *SimpleName
	arguments NodeList[TemplateArgument]
}

// AddArgument appends a *TypeID or Expression argument
func (n *TemplateID) AddArgument(arg TemplateArgument) {
	n.arguments.Add(Attach(n, arg))
}

// Arguments returns the template arguments
func (n *TemplateID) Arguments() []TemplateArgument { return n.arguments.All() }

func (n *TemplateID) String() string {
	var sb strings.Builder
	sb.WriteString(n.Template.Value)
	sb.WriteString("<")
	for i, arg := range n.arguments.All() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(NodeString(arg))
	}
	sb.WriteString(">")
	return sb.String()
}

func (n *TemplateID) Identifier() string                { return n.Template.Value }
func (n *TemplateID) ResolveBinding(r Resolver) Binding { return resolveOnce(n, r) }

// OperatorName is an operator function name such as "operator +"
type OperatorName struct {
	nameBase
	Op string
}

func (n *OperatorName) String() string                    { return "operator " + n.Op }
func (n *OperatorName) Identifier() string                { return n.String() }
func (n *OperatorName) ResolveBinding(r Resolver) Binding { return resolveOnce(n, r) }

// ConversionName is a conversion function name such as "operator int"
type ConversionName struct {
	nameBase
	Type *TypeID
}

func (n *ConversionName) String() string {
	return "operator " + NodeString(n.Type)
}

func (n *ConversionName) Identifier() string                { return n.String() }
func (n *ConversionName) ResolveBinding(r Resolver) Binding { return resolveOnce(n, r) }

// LastSegment returns the innermost simple part of a possibly qualified name
func LastSegment(n Name) Name {
	if q, ok := n.(*QualifiedName); ok {
		if last := q.Last(); last != nil {
			return last
		}
	}
	return n
}
