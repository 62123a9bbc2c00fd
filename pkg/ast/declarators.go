package ast

// declaratorBase is embedded by every Declarator
type declaratorBase struct {
	nodeBase
	pointerOps  NodeList[PointerOperator]
	name        Name
	nested      Declarator
	initializer Initializer
}

func (d *declaratorBase) common() *declaratorBase { return d }

func (d *declaratorBase) Name() Name                          { return d.name }
func (d *declaratorBase) Nested() Declarator                  { return d.nested }
func (d *declaratorBase) Initializer() Initializer            { return d.initializer }
func (d *declaratorBase) PointerOperators() []PointerOperator { return d.pointerOps.All() }

// SetName sets the declarator name of d
func SetName(d Declarator, n Name) {
	d.common().name = Attach(d, n)
}

// SetNested sets the parenthesized inner declarator of d
func SetNested(d Declarator, inner Declarator) {
	d.common().nested = Attach(d, inner)
}

// SetInitializer sets the initializer of d
func SetInitializer(d Declarator, init Initializer) {
	d.common().initializer = Attach(d, init)
}

// AddPointerOperator appends a pointer operator to d
func AddPointerOperator(d Declarator, op PointerOperator) {
	d.common().pointerOps.Add(Attach(d, op))
}

// InnermostName follows nested declarators to the declared name
func InnermostName(d Declarator) Name {
	for d != nil {
		if d.Nested() == nil {
			return d.Name()
		}
		d = d.Nested()
	}
	return nil
}

// Outermost returns the outermost declarator of a nested chain containing d
func Outermost(d Declarator) Declarator {
	for {
		p, ok := d.Parent().(Declarator)
		if !ok {
			return d
		}
		d = p
	}
}

// BasicDeclarator declares an object or type with no array or function suffix
type BasicDeclarator struct {
	declaratorBase
}

// ArrayDeclarator declares an array
type ArrayDeclarator struct {
	declaratorBase
	modifiers NodeList[*ArrayModifier]
}

// AddArrayModifier appends a [size] suffix
func (d *ArrayDeclarator) AddArrayModifier(m *ArrayModifier) {
	d.modifiers.Add(Attach(d, m))
}

// ArrayModifiers returns the [size] suffixes in order
func (d *ArrayDeclarator) ArrayModifiers() []*ArrayModifier { return d.modifiers.All() }

// ArrayModifier is one [size] suffix; Size is nil for []
type ArrayModifier struct {
	nodeBase
	Size Expression
}

// FunctionDeclarator declares a function
type FunctionDeclarator struct {
	declaratorBase
	params           NodeList[*ParameterDeclaration]
	exceptionSpec    NodeList[*TypeID]
	chain            NodeList[*ConstructorChainInitializer]
	VarArgs          bool
	Const            bool
	Volatile         bool
	PureVirtual      bool
	HasExceptionSpec bool
}

// AddParameter appends a parameter declaration
func (d *FunctionDeclarator) AddParameter(p *ParameterDeclaration) {
	d.params.Add(Attach(d, p))
}

// Parameters returns the parameter declarations
func (d *FunctionDeclarator) Parameters() []*ParameterDeclaration { return d.params.All() }

// AddExceptionType appends a type to the throw() specification
func (d *FunctionDeclarator) AddExceptionType(t *TypeID) {
	d.HasExceptionSpec = true
	d.exceptionSpec.Add(Attach(d, t))
}

// ExceptionSpecification returns the throw() types
func (d *FunctionDeclarator) ExceptionSpecification() []*TypeID { return d.exceptionSpec.All() }

// AddChainInitializer appends a constructor mem-initializer
func (d *FunctionDeclarator) AddChainInitializer(c *ConstructorChainInitializer) {
	d.chain.Add(Attach(d, c))
}

// ChainInitializers returns the constructor mem-initializers
func (d *FunctionDeclarator) ChainInitializers() []*ConstructorChainInitializer {
	return d.chain.All()
}

// FieldDeclarator declares a bit-field
type FieldDeclarator struct {
	declaratorBase
	BitWidth Expression
}

// ConstructorChainInitializer is one "member(args)" entry of a constructor
type ConstructorChainInitializer struct {
	nodeBase
	Member Name
	Value  Expression
}

// Pointer is the * operator with its cv-qualifiers
type Pointer struct {
	nodeBase
	Const    bool
	Volatile bool
	Restrict bool
}

// Reference is the & operator
type Reference struct {
	nodeBase
}

// PointerToMember is C::* with its cv-qualifiers
type PointerToMember struct {
	nodeBase
	Class    Name
	Const    bool
	Volatile bool
}

func (*Pointer) pointerOperatorNode()         {}
func (*Reference) pointerOperatorNode()       {}
func (*PointerToMember) pointerOperatorNode() {}

// InitializerExpression is "= expr"
type InitializerExpression struct {
	nodeBase
	Value Expression
}

// InitializerList is "= { a, b, ... }"
type InitializerList struct {
	nodeBase
	initializers NodeList[Initializer]
}

// AddInitializer appends a clause
func (l *InitializerList) AddInitializer(i Initializer) {
	l.initializers.Add(Attach(l, i))
}

// Initializers returns the clauses
func (l *InitializerList) Initializers() []Initializer { return l.initializers.All() }

// ConstructorInitializer is "(expr)" after a declarator
type ConstructorInitializer struct {
	nodeBase
	Value Expression
}

func (*InitializerExpression) initializerNode()  {}
func (*InitializerList) initializerNode()        {}
func (*ConstructorInitializer) initializerNode() {}

// ParameterDeclaration is one function or template parameter
type ParameterDeclaration struct {
	nodeBase
	Specifier  DeclSpecifier
	Declarator Declarator
}

func (*ParameterDeclaration) templateParameterNode() {}

// TypeID is a type written without a declared name, e.g. "const char *"
type TypeID struct {
	nodeBase
	Specifier  DeclSpecifier
	Declarator Declarator
}

// TemplateParameterKind is the keyword introducing a type template parameter
type TemplateParameterKind int

const (
	ParameterClass TemplateParameterKind = iota
	ParameterTypename
)

// SimpleTypeTemplateParameter is "class T" or "typename T = Default"
type SimpleTypeTemplateParameter struct {
	nodeBase
	Kind    TemplateParameterKind
	Name    *SimpleName
	Default *TypeID
}

// TemplatedTypeTemplateParameter is "template <...> class T = Default"
type TemplatedTypeTemplateParameter struct {
	nodeBase
	params  NodeList[TemplateParameter]
	Name    *SimpleName
	Default Expression
}

// AddParameter appends a nested template parameter
func (p *TemplatedTypeTemplateParameter) AddParameter(tp TemplateParameter) {
	p.params.Add(Attach(p, tp))
}

// Parameters returns the nested template parameters
func (p *TemplatedTypeTemplateParameter) Parameters() []TemplateParameter { return p.params.All() }

func (*SimpleTypeTemplateParameter) templateParameterNode()    {}
func (*TemplatedTypeTemplateParameter) templateParameterNode() {}
