package ast

// TranslationUnit is the root of a parsed file
type TranslationUnit struct {
	nodeBase
	declarations NodeList[Declaration]
}

// AddDeclaration appends a top-level declaration
func (u *TranslationUnit) AddDeclaration(d Declaration) {
	u.declarations.Add(Attach(u, d))
}

// Declarations returns the top-level declarations in order
func (u *TranslationUnit) Declarations() []Declaration { return u.declarations.All() }

// RemoveDeclaration nulls the declaration at index i, leaving a hole until
// the next read.
func (u *TranslationUnit) RemoveDeclaration(i int) bool { return u.declarations.Remove(i) }

// SimpleDeclaration is "specifiers declarator, declarator ;"
type SimpleDeclaration struct {
	nodeBase
	Specifier   DeclSpecifier
	declarators NodeList[Declarator]
}

// AddDeclarator appends an init-declarator
func (d *SimpleDeclaration) AddDeclarator(dc Declarator) {
	d.declarators.Add(Attach(d, dc))
}

// Declarators returns the declarators in order
func (d *SimpleDeclaration) Declarators() []Declarator { return d.declarators.All() }

// FunctionDefinition is a function declarator followed by a body. A
// function-try-block keeps its handlers here.
type FunctionDefinition struct {
	nodeBase
	Specifier  DeclSpecifier
	Declarator *FunctionDeclarator
	Body       *CompoundStatement
	TryBlock   bool
	handlers   NodeList[*CatchHandler]
}

// AddCatchHandler appends a handler of a function-try-block
func (f *FunctionDefinition) AddCatchHandler(h *CatchHandler) {
	f.handlers.Add(Attach(f, h))
}

// CatchHandlers returns the function-try-block handlers
func (f *FunctionDefinition) CatchHandlers() []*CatchHandler { return f.handlers.All() }

// NamespaceDefinition is "namespace N { ... }"; Name is empty for an
// unnamed namespace.
type NamespaceDefinition struct {
	nodeBase
	Name         *SimpleName
	declarations NodeList[Declaration]
}

// AddDeclaration appends a member declaration
func (n *NamespaceDefinition) AddDeclaration(d Declaration) {
	n.declarations.Add(Attach(n, d))
}

// Declarations returns the member declarations in order
func (n *NamespaceDefinition) Declarations() []Declaration { return n.declarations.All() }

// NamespaceAlias is "namespace A = B::C;"
type NamespaceAlias struct {
	nodeBase
	Alias  *SimpleName
	Target Name
}

// UsingDirective is "using namespace N;"
type UsingDirective struct {
	nodeBase
	Namespace Name
}

// UsingDeclaration is "using N::x;"
type UsingDeclaration struct {
	nodeBase
	Name     Name
	Typename bool
}

// LinkageSpecification is `extern "C" { ... }` or `extern "C" decl`
type LinkageSpecification struct {
	nodeBase
	Literal      string
	declarations NodeList[Declaration]
}

// AddDeclaration appends an enclosed declaration
func (l *LinkageSpecification) AddDeclaration(d Declaration) {
	l.declarations.Add(Attach(l, d))
}

// Declarations returns the enclosed declarations
func (l *LinkageSpecification) Declarations() []Declaration { return l.declarations.All() }

// TemplateDeclaration is "template <params> declaration"
type TemplateDeclaration struct {
	nodeBase
	Exported    bool
	params      NodeList[TemplateParameter]
	Declaration Declaration
}

// AddParameter appends a template parameter
func (t *TemplateDeclaration) AddParameter(p TemplateParameter) {
	t.params.Add(Attach(t, p))
}

// Parameters returns the template parameters
func (t *TemplateDeclaration) Parameters() []TemplateParameter { return t.params.All() }

// TemplateSpecialization is "template <> declaration"
type TemplateSpecialization struct {
	nodeBase
	Declaration Declaration
}

// ExplicitTemplateInstantiation is "template declaration" without parameters
type ExplicitTemplateInstantiation struct {
	nodeBase
	Declaration Declaration
}

// ASMDeclaration is `asm("...");`
type ASMDeclaration struct {
	nodeBase
	Assembly string
}

// VisibilityLabel is "public:" and friends inside a class body
type VisibilityLabel struct {
	nodeBase
	Visibility AccessLevel
}

// ProblemDeclaration stands in for a declaration that could not be parsed
type ProblemDeclaration struct {
	nodeBase
	Message string
}

func (*SimpleDeclaration) declarationNode()             {}
func (*FunctionDefinition) declarationNode()            {}
func (*NamespaceDefinition) declarationNode()           {}
func (*NamespaceAlias) declarationNode()                {}
func (*UsingDirective) declarationNode()                {}
func (*UsingDeclaration) declarationNode()              {}
func (*LinkageSpecification) declarationNode()          {}
func (*TemplateDeclaration) declarationNode()           {}
func (*TemplateSpecialization) declarationNode()        {}
func (*ExplicitTemplateInstantiation) declarationNode() {}
func (*ASMDeclaration) declarationNode()                {}
func (*VisibilityLabel) declarationNode()               {}
func (*ProblemDeclaration) declarationNode()            {}
