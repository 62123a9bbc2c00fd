package ast

// CompoundStatement is "{ ... }"
type CompoundStatement struct {
	nodeBase
	statements NodeList[Statement]
}

// AddStatement appends a statement
func (c *CompoundStatement) AddStatement(s Statement) {
	c.statements.Add(Attach(c, s))
}

// Statements returns the statements in order
func (c *CompoundStatement) Statements() []Statement { return c.statements.All() }

// DeclarationStatement wraps a declaration appearing in a block
type DeclarationStatement struct {
	nodeBase
	Declaration Declaration
}

// ExpressionStatement is "expr;"
type ExpressionStatement struct {
	nodeBase
	Expression Expression
}

// NullStatement is a lone ";"
type NullStatement struct {
	nodeBase
}

// IfStatement is "if (cond) then else"
type IfStatement struct {
	nodeBase
	Condition Expression
	Then      Statement
	Else      Statement
}

// WhileStatement is "while (cond) body"
type WhileStatement struct {
	nodeBase
	Condition Expression
	Body      Statement
}

// DoStatement is "do body while (cond);"
type DoStatement struct {
	nodeBase
	Body      Statement
	Condition Expression
}

// ForStatement is "for (init cond; iter) body". Init is an expression or
// declaration statement.
type ForStatement struct {
	nodeBase
	Init      Statement
	Condition Expression
	Iteration Expression
	Body      Statement
}

// SwitchStatement is "switch (e) body"
type SwitchStatement struct {
	nodeBase
	Controller Expression
	Body       Statement
}

// CaseStatement is "case e:"
type CaseStatement struct {
	nodeBase
	Value Expression
}

// DefaultStatement is "default:"
type DefaultStatement struct {
	nodeBase
}

// LabelStatement is "name:"; the labelled statement follows as a sibling
type LabelStatement struct {
	nodeBase
	Name *SimpleName
}

// GotoStatement is "goto name;"
type GotoStatement struct {
	nodeBase
	Name *SimpleName
}

// BreakStatement is "break;"
type BreakStatement struct {
	nodeBase
}

// ContinueStatement is "continue;"
type ContinueStatement struct {
	nodeBase
}

// ReturnStatement is "return e;"; Value is nil for a bare return
type ReturnStatement struct {
	nodeBase
	Value Expression
}

// TryBlockStatement is "try { } catch ..."
type TryBlockStatement struct {
	nodeBase
	Body     *CompoundStatement
	handlers NodeList[*CatchHandler]
}

// AddCatchHandler appends a handler
func (t *TryBlockStatement) AddCatchHandler(h *CatchHandler) {
	t.handlers.Add(Attach(t, h))
}

// CatchHandlers returns the handlers in order
func (t *TryBlockStatement) CatchHandlers() []*CatchHandler { return t.handlers.All() }

// CatchHandler is "catch (decl) { }"; Declaration is nil for catch (...)
type CatchHandler struct {
	nodeBase
	Declaration Declaration
	CatchAll    bool
	Body        *CompoundStatement
}

// ProblemStatement stands in for a statement that could not be parsed
type ProblemStatement struct {
	nodeBase
	Message string
}

func (*CompoundStatement) statementNode()    {}
func (*DeclarationStatement) statementNode() {}
func (*ExpressionStatement) statementNode()  {}
func (*NullStatement) statementNode()        {}
func (*IfStatement) statementNode()          {}
func (*WhileStatement) statementNode()       {}
func (*DoStatement) statementNode()          {}
func (*ForStatement) statementNode()         {}
func (*SwitchStatement) statementNode()      {}
func (*CaseStatement) statementNode()        {}
func (*DefaultStatement) statementNode()     {}
func (*LabelStatement) statementNode()       {}
func (*GotoStatement) statementNode()        {}
func (*BreakStatement) statementNode()       {}
func (*ContinueStatement) statementNode()    {}
func (*ReturnStatement) statementNode()      {}
func (*TryBlockStatement) statementNode()    {}
func (*ProblemStatement) statementNode()     {}
