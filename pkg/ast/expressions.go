package ast

// IdExpression is a name used as an expression
type IdExpression struct {
	nodeBase
	Name Name
}

// LiteralKind classifies a literal expression
type LiteralKind int

const (
	LiteralInteger LiteralKind = iota
	LiteralFloat
	LiteralChar
	LiteralString
	LiteralTrue
	LiteralFalse
	LiteralThis
	LiteralNullptr
)

// LiteralExpression is a literal, true/false or this
type LiteralExpression struct {
	nodeBase
	Kind  LiteralKind
	Value string
}

// UnaryOp is the operator of a unary expression
type UnaryOp int

const (
	UnaryPrefixIncr UnaryOp = iota
	UnaryPrefixDecr
	UnaryPlus
	UnaryMinus
	UnaryStar
	UnaryAmper
	UnaryTilde
	UnaryNot
	UnarySizeof
	UnaryPostfixIncr
	UnaryPostfixDecr
	UnaryBracketed
	UnaryThrow
	UnaryTypeid
)

var unaryOpNames = [...]string{
	UnaryPrefixIncr:  "++",
	UnaryPrefixDecr:  "--",
	UnaryPlus:        "+",
	UnaryMinus:       "-",
	UnaryStar:        "*",
	UnaryAmper:       "&",
	UnaryTilde:       "~",
	UnaryNot:         "!",
	UnarySizeof:      "sizeof",
	UnaryPostfixIncr: "++",
	UnaryPostfixDecr: "--",
	UnaryBracketed:   "()",
	UnaryThrow:       "throw",
	UnaryTypeid:      "typeid",
}

func (op UnaryOp) String() string {
	if int(op) < len(unaryOpNames) {
		return unaryOpNames[op]
	}
	return "?"
}

// UnaryExpression applies a unary operator; Operand is nil for a bare "throw"
type UnaryExpression struct {
	nodeBase
	Op      UnaryOp
	Operand Expression
}

// BinaryOp is the operator of a binary expression
type BinaryOp int

const (
	BinaryMultiply BinaryOp = iota
	BinaryDivide
	BinaryModulo
	BinaryPlus
	BinaryMinus
	BinaryShiftLeft
	BinaryShiftRight
	BinaryLess
	BinaryGreater
	BinaryLessEqual
	BinaryGreaterEqual
	BinaryBitAnd
	BinaryBitXor
	BinaryBitOr
	BinaryLogicalAnd
	BinaryLogicalOr
	BinaryAssign
	BinaryMultiplyAssign
	BinaryDivideAssign
	BinaryModuloAssign
	BinaryPlusAssign
	BinaryMinusAssign
	BinaryShiftLeftAssign
	BinaryShiftRightAssign
	BinaryBitAndAssign
	BinaryBitXorAssign
	BinaryBitOrAssign
	BinaryEquals
	BinaryNotEquals
	BinaryPmDot
	BinaryPmArrow
)

var binaryOpNames = [...]string{
	BinaryMultiply:         "*",
	BinaryDivide:           "/",
	BinaryModulo:           "%",
	BinaryPlus:             "+",
	BinaryMinus:            "-",
	BinaryShiftLeft:        "<<",
	BinaryShiftRight:       ">>",
	BinaryLess:             "<",
	BinaryGreater:          ">",
	BinaryLessEqual:        "<=",
	BinaryGreaterEqual:     ">=",
	BinaryBitAnd:           "&",
	BinaryBitXor:           "^",
	BinaryBitOr:            "|",
	BinaryLogicalAnd:       "&&",
	BinaryLogicalOr:        "||",
	BinaryAssign:           "=",
	BinaryMultiplyAssign:   "*=",
	BinaryDivideAssign:     "/=",
	BinaryModuloAssign:     "%=",
	BinaryPlusAssign:       "+=",
	BinaryMinusAssign:      "-=",
	BinaryShiftLeftAssign:  "<<=",
	BinaryShiftRightAssign: ">>=",
	BinaryBitAndAssign:     "&=",
	BinaryBitXorAssign:     "^=",
	BinaryBitOrAssign:      "|=",
	BinaryEquals:           "==",
	BinaryNotEquals:        "!=",
	BinaryPmDot:            ".*",
	BinaryPmArrow:          "->*",
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryOpNames) {
		return binaryOpNames[op]
	}
	return "?"
}

// BinaryExpression applies a binary operator
type BinaryExpression struct {
	nodeBase
	Op    BinaryOp
	Left  Expression
	Right Expression
}

// ConditionalExpression is "cond ? a : b"
type ConditionalExpression struct {
	nodeBase
	Condition Expression
	Positive  Expression
	Negative  Expression
}

// ExpressionList is a comma-separated expression sequence
type ExpressionList struct {
	nodeBase
	expressions NodeList[Expression]
}

// AddExpression appends an operand
func (l *ExpressionList) AddExpression(e Expression) {
	l.expressions.Add(Attach(l, e))
}

// Expressions returns the operands in order
func (l *ExpressionList) Expressions() []Expression { return l.expressions.All() }

// CastOp is the kind of cast expression
type CastOp int

const (
	CastC CastOp = iota
	CastDynamic
	CastStatic
	CastReinterpret
	CastConst
)

func (op CastOp) String() string {
	switch op {
	case CastDynamic:
		return "dynamic_cast"
	case CastStatic:
		return "static_cast"
	case CastReinterpret:
		return "reinterpret_cast"
	case CastConst:
		return "const_cast"
	default:
		return "cast"
	}
}

// CastExpression is "(T) e" or one of the named casts
type CastExpression struct {
	nodeBase
	Op      CastOp
	Type    *TypeID
	Operand Expression
}

// FunctionCallExpression is "f(args)"; Arguments is nil for an empty list
type FunctionCallExpression struct {
	nodeBase
	Function  Expression
	Arguments Expression
}

// ArraySubscriptExpression is "a[i]"
type ArraySubscriptExpression struct {
	nodeBase
	Array     Expression
	Subscript Expression
}

// FieldReference is "owner.field" or "owner->field"
type FieldReference struct {
	nodeBase
	Owner    Expression
	Field    Name
	Arrow    bool
	Template bool
}

// TypeIdOp is the operator of a type-id expression
type TypeIdOp int

const (
	TypeIdSizeof TypeIdOp = iota
	TypeIdTypeid
)

// TypeIdExpression is "sizeof(T)" or "typeid(T)"
type TypeIdExpression struct {
	nodeBase
	Op   TypeIdOp
	Type *TypeID
}

// NewExpression is a new-expression. Placement is nil when absent;
// NewTypeID records whether the type was written without parentheses.
type NewExpression struct {
	nodeBase
	Global      bool
	Placement   Expression
	Type        *TypeID
	NewTypeID   bool
	dimensions  NodeList[Expression]
	Initializer Expression
	HasInit     bool
}

// AddDimension appends a [size] of a new[] expression
func (n *NewExpression) AddDimension(e Expression) {
	n.dimensions.Add(Attach(n, e))
}

// Dimensions returns the array sizes of a new[] expression
func (n *NewExpression) Dimensions() []Expression { return n.dimensions.All() }

// DeleteExpression is "delete p" or "delete[] p"
type DeleteExpression struct {
	nodeBase
	Global  bool
	Vector  bool
	Operand Expression
}

// SimpleTypeConstructorExpression is "int(x)" and similar
type SimpleTypeConstructorExpression struct {
	nodeBase
	Type  string
	Value Expression
}

// TypenameExpression is "typename T::x(args)"
type TypenameExpression struct {
	nodeBase
	Name     Name
	Value    Expression
	Template bool
}

// ProblemExpression stands in for an expression that could not be parsed
type ProblemExpression struct {
	nodeBase
	Message string
}

func (*IdExpression) expressionNode()                    {}
func (*LiteralExpression) expressionNode()               {}
func (*UnaryExpression) expressionNode()                 {}
func (*BinaryExpression) expressionNode()                {}
func (*ConditionalExpression) expressionNode()           {}
func (*ExpressionList) expressionNode()                  {}
func (*CastExpression) expressionNode()                  {}
func (*FunctionCallExpression) expressionNode()          {}
func (*ArraySubscriptExpression) expressionNode()        {}
func (*FieldReference) expressionNode()                  {}
func (*TypeIdExpression) expressionNode()                {}
func (*NewExpression) expressionNode()                   {}
func (*DeleteExpression) expressionNode()                {}
func (*SimpleTypeConstructorExpression) expressionNode() {}
func (*TypenameExpression) expressionNode()              {}
func (*ProblemExpression) expressionNode()               {}
