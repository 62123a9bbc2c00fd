// Package ast defines the abstract syntax tree produced by the C++ parser.
//
// Nodes are grouped into closed families (declarations, declaration
// specifiers, declarators, expressions, statements, names). Each family is a
// sealed interface; consumers switch on the concrete type. Every non-root
// node has exactly one parent, set when it is attached to its owner.
package ast

import (
	"fmt"
	"reflect"
)

// Position represents a position in the source file
type Position struct {
	Line   int
	Column int
	Offset int
}

// Range represents a range in the source file
type Range struct {
	Start Position
	End   Position
}

// AccessLevel represents member access in a class or base clause
type AccessLevel int

const (
	AccessUnknown AccessLevel = iota
	AccessPublic
	AccessProtected
	AccessPrivate
)

func (al AccessLevel) String() string {
	switch al {
	case AccessPublic:
		return "public"
	case AccessProtected:
		return "protected"
	case AccessPrivate:
		return "private"
	default:
		return "unknown"
	}
}

// NodeID identifies a node within one translation unit. IDs are assigned in
// pre-order by Number once parsing is complete; zero means unnumbered.
type NodeID uint32

// Node is implemented by every AST node
type Node interface {
	ID() NodeID
	Parent() Node
	Range() Range
	Offset() int
	EndOffset() int
	File() string

	base() *nodeBase
}

// nodeBase carries the fields shared by all nodes
type nodeBase struct {
	id     NodeID
	parent Node
	rng    Range
	file   string
}

func (b *nodeBase) ID() NodeID      { return b.id }
func (b *nodeBase) Parent() Node    { return b.parent }
func (b *nodeBase) Range() Range    { return b.rng }
func (b *nodeBase) Offset() int     { return b.rng.Start.Offset }
func (b *nodeBase) EndOffset() int  { return b.rng.End.Offset }
func (b *nodeBase) File() string    { return b.file }
func (b *nodeBase) base() *nodeBase { return b }

// SetRange records the source extent of n
func SetRange(n Node, file string, start, end Position) {
	b := n.base()
	b.file = file
	b.rng = Range{Start: start, End: end}
}

// SetEnd moves the end of n's extent
func SetEnd(n Node, end Position) {
	n.base().rng.End = end
}

// Attach makes parent the owner of child and returns child. A node can be
// attached once; attaching it to a second owner is a programming error.
func Attach[T Node](parent Node, child T) T {
	if isNilNode(child) {
		return child
	}
	b := child.base()
	switch {
	case b.parent == nil:
		b.parent = parent
	case b.parent != parent:
		panic(fmt.Sprintf("ast: %T already attached to %T", child, b.parent))
	}
	return child
}

func isNilNode(n Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// Declaration is a member of a translation unit, namespace, class or a
// declaration statement.
type Declaration interface {
	Node
	declarationNode()
}

// DeclSpecifier is the specifier part of a declaration
type DeclSpecifier interface {
	Node
	Flags() *Specifiers
	declSpecifierNode()
}

// Declarator names an entity and shapes its type
type Declarator interface {
	Node
	Name() Name
	Nested() Declarator
	PointerOperators() []PointerOperator
	Initializer() Initializer
	common() *declaratorBase
}

// Expression is any C++ expression
type Expression interface {
	Node
	expressionNode()
}

// Statement is any C++ statement
type Statement interface {
	Node
	statementNode()
}

// Initializer is the initializer attached to a declarator
type Initializer interface {
	Node
	initializerNode()
}

// PointerOperator is one of *, & or C::*
type PointerOperator interface {
	Node
	pointerOperatorNode()
}

// TemplateParameter is one entry of a template parameter list
type TemplateParameter interface {
	Node
	templateParameterNode()
}

// TemplateArgument is either a *TypeID or an Expression
type TemplateArgument interface {
	Node
}
