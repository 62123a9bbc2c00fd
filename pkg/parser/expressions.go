package parser

import (
	"strings"

	"cppbind/pkg/ast"
	"cppbind/pkg/token"
)

var assignmentOps = map[token.Kind]ast.BinaryOp{
	token.Assign:           ast.BinaryAssign,
	token.StarAssign:       ast.BinaryMultiplyAssign,
	token.SlashAssign:      ast.BinaryDivideAssign,
	token.PercentAssign:    ast.BinaryModuloAssign,
	token.PlusAssign:       ast.BinaryPlusAssign,
	token.MinusAssign:      ast.BinaryMinusAssign,
	token.RightShiftAssign: ast.BinaryShiftRightAssign,
	token.LeftShiftAssign:  ast.BinaryShiftLeftAssign,
	token.AmpAssign:        ast.BinaryBitAndAssign,
	token.CaretAssign:      ast.BinaryBitXorAssign,
	token.PipeAssign:       ast.BinaryBitOrAssign,
}

var (
	logicalOrOps     = map[token.Kind]ast.BinaryOp{token.DoublePipe: ast.BinaryLogicalOr}
	logicalAndOps    = map[token.Kind]ast.BinaryOp{token.DoubleAmp: ast.BinaryLogicalAnd}
	inclusiveOrOps   = map[token.Kind]ast.BinaryOp{token.Pipe: ast.BinaryBitOr}
	exclusiveOrOps   = map[token.Kind]ast.BinaryOp{token.Caret: ast.BinaryBitXor}
	andOps           = map[token.Kind]ast.BinaryOp{token.Ampersand: ast.BinaryBitAnd}
	equalityOps      = map[token.Kind]ast.BinaryOp{token.DoubleEquals: ast.BinaryEquals, token.NotEquals: ast.BinaryNotEquals}
	shiftOps         = map[token.Kind]ast.BinaryOp{token.LeftShift: ast.BinaryShiftLeft, token.RightShift: ast.BinaryShiftRight}
	additiveOps      = map[token.Kind]ast.BinaryOp{token.Plus: ast.BinaryPlus, token.Minus: ast.BinaryMinus}
	multiplicativeOps = map[token.Kind]ast.BinaryOp{
		token.Star:    ast.BinaryMultiply,
		token.Slash:   ast.BinaryDivide,
		token.Percent: ast.BinaryModulo,
	}
	pmOps = map[token.Kind]ast.BinaryOp{token.DotStar: ast.BinaryPmDot, token.ArrowStar: ast.BinaryPmArrow}
)

var unaryOps = map[token.Kind]ast.UnaryOp{
	token.Star:        ast.UnaryStar,
	token.Ampersand:   ast.UnaryAmper,
	token.Plus:        ast.UnaryPlus,
	token.Minus:       ast.UnaryMinus,
	token.Exclamation: ast.UnaryNot,
	token.Tilde:       ast.UnaryTilde,
	token.PlusPlus:    ast.UnaryPrefixIncr,
	token.MinusMinus:  ast.UnaryPrefixDecr,
}

var namedCasts = map[token.Kind]ast.CastOp{
	token.DynamicCast:     ast.CastDynamic,
	token.StaticCast:      ast.CastStatic,
	token.ReinterpretCast: ast.CastReinterpret,
	token.ConstCast:       ast.CastConst,
}

// expression parses a comma-separated expression
func (p *state) expression() (ast.Expression, error) {
	first := p.la(1)
	e, err := p.assignmentExpression()
	if err != nil || p.lt(1) != token.Comma {
		return e, err
	}
	list := &ast.ExpressionList{}
	list.AddExpression(e)
	for p.lt(1) == token.Comma {
		_, _ = p.consume()
		next, err := p.assignmentExpression()
		if err != nil {
			return nil, err
		}
		list.AddExpression(next)
	}
	p.finish(list, first)
	return list, nil
}

// constantExpression is a conditional expression
func (p *state) constantExpression() (ast.Expression, error) {
	return p.conditionalExpression()
}

func (p *state) assignmentExpression() (ast.Expression, error) {
	if p.lt(1) == token.Throw {
		return p.throwExpression()
	}
	first := p.la(1)
	cond, err := p.conditionalExpression()
	if err != nil {
		return nil, err
	}
	if _, ok := cond.(*ast.ConditionalExpression); ok {
		return cond, nil
	}
	op, ok := assignmentOps[p.lt(1)]
	if !ok {
		return cond, nil
	}
	_, _ = p.consume()
	rhs, err := p.assignmentExpression()
	if err != nil {
		return nil, err
	}
	return p.binary(op, cond, rhs, first), nil
}

func (p *state) throwExpression() (ast.Expression, error) {
	first, err := p.expect(token.Throw, "throwExpression")
	if err != nil {
		return nil, err
	}
	u := &ast.UnaryExpression{Op: ast.UnaryThrow}
	switch p.lt(1) {
	case token.Semicolon, token.RightParen, token.Comma, token.Colon:
	default:
		operand, err := p.assignmentExpression()
		if err != nil {
			return nil, err
		}
		u.Operand = ast.Attach(u, operand)
	}
	p.finish(u, first)
	return u, nil
}

func (p *state) conditionalExpression() (ast.Expression, error) {
	first := p.la(1)
	cond, err := p.logicalOrExpression()
	if err != nil || p.lt(1) != token.Question {
		return cond, err
	}
	_, _ = p.consume()
	positive, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Colon, "conditionalExpression"); err != nil {
		return nil, err
	}
	negative, err := p.assignmentExpression()
	if err != nil {
		return nil, err
	}
	c := &ast.ConditionalExpression{}
	c.Condition = ast.Attach(c, cond)
	c.Positive = ast.Attach(c, positive)
	c.Negative = ast.Attach(c, negative)
	p.finish(c, first)
	return c, nil
}

// leftAssociative parses operand (op operand)* for one precedence level
func (p *state) leftAssociative(ops map[token.Kind]ast.BinaryOp, operand func() (ast.Expression, error)) (ast.Expression, error) {
	first := p.la(1)
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := ops[p.lt(1)]
		if !ok {
			return left, nil
		}
		_, _ = p.consume()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = p.binary(op, left, right, first)
	}
}

func (p *state) binary(op ast.BinaryOp, left, right ast.Expression, first token.Token) *ast.BinaryExpression {
	b := &ast.BinaryExpression{Op: op}
	b.Left = ast.Attach(b, left)
	b.Right = ast.Attach(b, right)
	p.finish(b, first)
	return b
}

func (p *state) logicalOrExpression() (ast.Expression, error) {
	return p.leftAssociative(logicalOrOps, p.logicalAndExpression)
}

func (p *state) logicalAndExpression() (ast.Expression, error) {
	return p.leftAssociative(logicalAndOps, p.inclusiveOrExpression)
}

func (p *state) inclusiveOrExpression() (ast.Expression, error) {
	return p.leftAssociative(inclusiveOrOps, p.exclusiveOrExpression)
}

func (p *state) exclusiveOrExpression() (ast.Expression, error) {
	return p.leftAssociative(exclusiveOrOps, p.andExpression)
}

func (p *state) andExpression() (ast.Expression, error) {
	return p.leftAssociative(andOps, p.equalityExpression)
}

func (p *state) equalityExpression() (ast.Expression, error) {
	return p.leftAssociative(equalityOps, p.relationalExpression)
}

// relationalExpression stops at a '>' that closes an open template
// argument list. A comparison whose right side does not parse is left
// for the caller.
func (p *state) relationalExpression() (ast.Expression, error) {
	first := p.la(1)
	left, err := p.shiftExpression()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinaryOp
		switch p.lt(1) {
		case token.Greater:
			if p.templateArgumentsOpen() {
				return left, nil
			}
			op = ast.BinaryGreater
		case token.Less:
			op = ast.BinaryLess
		case token.LessEqual:
			op = ast.BinaryLessEqual
		case token.GreaterEqual:
			op = ast.BinaryGreaterEqual
		default:
			return left, nil
		}
		m := p.cur.Mark()
		_, _ = p.consume()
		right, err := p.shiftExpression()
		if err != nil {
			if IsBacktrack(err) {
				p.retry(m)
				return left, nil
			}
			return nil, err
		}
		left = p.binary(op, left, right, first)
	}
}

func (p *state) shiftExpression() (ast.Expression, error) {
	return p.leftAssociative(shiftOps, p.additiveExpression)
}

func (p *state) additiveExpression() (ast.Expression, error) {
	return p.leftAssociative(additiveOps, p.multiplicativeExpression)
}

func (p *state) multiplicativeExpression() (ast.Expression, error) {
	return p.leftAssociative(multiplicativeOps, p.pmExpression)
}

func (p *state) pmExpression() (ast.Expression, error) {
	return p.leftAssociative(pmOps, p.castExpression)
}

// castExpression tries "( type-id ) cast-expression" and falls back to a
// unary expression.
func (p *state) castExpression() (ast.Expression, error) {
	if p.lt(1) != token.LeftParen {
		return p.unaryExpression()
	}
	m := p.cur.Mark()
	first, _ := p.consume()
	pushed := p.pushNesting(token.LeftParen)

	typeID, err := p.typeID()
	if err == nil {
		_, err = p.expect(token.RightParen, "castExpression")
	}
	p.popNesting(pushed)
	var operand ast.Expression
	if err == nil {
		operand, err = p.castExpression()
	}
	switch {
	case err == nil:
		c := &ast.CastExpression{Op: ast.CastC}
		c.Type = ast.Attach(c, typeID)
		c.Operand = ast.Attach(c, operand)
		p.finish(c, first)
		return c, nil
	case IsBacktrack(err):
		p.retry(m)
		return p.unaryExpression()
	default:
		return nil, err
	}
}

func (p *state) unaryExpression() (ast.Expression, error) {
	first := p.la(1)
	if op, ok := unaryOps[first.Kind]; ok {
		_, _ = p.consume()
		operand, err := p.castExpression()
		if err != nil {
			return nil, err
		}
		return p.unary(op, operand, first), nil
	}

	switch first.Kind {
	case token.Sizeof:
		_, _ = p.consume()
		if p.lt(1) == token.LeftParen {
			m := p.cur.Mark()
			_, _ = p.consume()
			typeID, err := p.typeID()
			if err == nil {
				_, err = p.expect(token.RightParen, "sizeof")
			}
			switch {
			case err == nil:
				e := &ast.TypeIdExpression{Op: ast.TypeIdSizeof}
				e.Type = ast.Attach(e, typeID)
				p.finish(e, first)
				return e, nil
			case IsBacktrack(err):
				p.retry(m)
			default:
				return nil, err
			}
		}
		operand, err := p.unaryExpression()
		if err != nil {
			return nil, err
		}
		return p.unary(ast.UnarySizeof, operand, first), nil
	case token.New:
		return p.newExpression()
	case token.Delete:
		return p.deleteExpression()
	case token.DoubleColon:
		switch p.lt(2) {
		case token.New:
			return p.newExpression()
		case token.Delete:
			return p.deleteExpression()
		}
	}
	return p.postfixExpression()
}

func (p *state) unary(op ast.UnaryOp, operand ast.Expression, first token.Token) *ast.UnaryExpression {
	u := &ast.UnaryExpression{Op: op}
	u.Operand = ast.Attach(u, operand)
	p.finish(u, first)
	return u
}

// deleteExpression parses "[::] delete [[]] cast-expression"
func (p *state) deleteExpression() (ast.Expression, error) {
	first := p.la(1)
	d := &ast.DeleteExpression{}
	if p.lt(1) == token.DoubleColon {
		_, _ = p.consume()
		d.Global = true
	}
	if _, err := p.expect(token.Delete, "deleteExpression"); err != nil {
		return nil, err
	}
	if p.lt(1) == token.LeftBracket {
		_, _ = p.consume()
		if _, err := p.expect(token.RightBracket, "deleteExpression"); err != nil {
			return nil, err
		}
		d.Vector = true
	}
	operand, err := p.castExpression()
	if err != nil {
		return nil, err
	}
	d.Operand = ast.Attach(d, operand)
	p.finish(d, first)
	return d, nil
}

func (p *state) postfixExpression() (ast.Expression, error) {
	first := p.la(1)
	var (
		expr ast.Expression
		err  error
	)

	switch first.Kind {
	case token.Typename:
		expr, err = p.typenameExpression()
	case token.Char, token.WcharT, token.Bool, token.Short, token.Int, token.Long,
		token.Signed, token.Unsigned, token.Float, token.Double:
		expr, err = p.simpleTypeConstructorExpression()
	case token.DynamicCast, token.StaticCast, token.ReinterpretCast, token.ConstCast:
		expr, err = p.namedCastExpression()
	case token.Typeid:
		expr, err = p.typeidExpression()
	default:
		expr, err = p.primaryExpression()
	}
	if err != nil {
		return nil, err
	}

	for {
		switch p.lt(1) {
		case token.LeftBracket:
			_, _ = p.consume()
			pushed := p.pushNesting(token.LeftBracket)
			sub, err := p.expression()
			if err == nil {
				_, err = p.expect(token.RightBracket, "arraySubscript")
			}
			p.popNesting(pushed)
			if err != nil {
				return nil, err
			}
			a := &ast.ArraySubscriptExpression{}
			a.Array = ast.Attach(a, expr)
			a.Subscript = ast.Attach(a, sub)
			p.finish(a, first)
			expr = a
		case token.LeftParen:
			_, _ = p.consume()
			pushed := p.pushNesting(token.LeftParen)
			var args ast.Expression
			var err error
			if p.lt(1) != token.RightParen {
				args, err = p.expression()
			}
			if err == nil {
				_, err = p.expect(token.RightParen, "functionCall")
			}
			p.popNesting(pushed)
			if err != nil {
				return nil, err
			}
			call := &ast.FunctionCallExpression{}
			call.Function = ast.Attach(call, expr)
			call.Arguments = ast.Attach(call, args)
			p.finish(call, first)
			expr = call
		case token.PlusPlus:
			_, _ = p.consume()
			expr = p.unary(ast.UnaryPostfixIncr, expr, first)
		case token.MinusMinus:
			_, _ = p.consume()
			expr = p.unary(ast.UnaryPostfixDecr, expr, first)
		case token.Dot, token.Arrow:
			t, _ := p.consume()
			ref := &ast.FieldReference{Arrow: t.Kind == token.Arrow}
			if p.lt(1) == token.Template {
				_, _ = p.consume()
				ref.Template = true
			}
			field, err := p.idExpressionName()
			if err != nil {
				return nil, err
			}
			ref.Owner = ast.Attach(ref, expr)
			ref.Field = ast.Attach(ref, field)
			p.finish(ref, first)
			expr = ref
		default:
			return expr, nil
		}
	}
}

// typenameExpression parses "typename [template] name ( expression )"
func (p *state) typenameExpression() (ast.Expression, error) {
	first, err := p.expect(token.Typename, "typenameExpression")
	if err != nil {
		return nil, err
	}
	e := &ast.TypenameExpression{}
	if p.lt(1) == token.Template {
		_, _ = p.consume()
		e.Template = true
	}
	name, err := p.name()
	if err != nil {
		return nil, err
	}
	value, err := p.parenthesizedExpression("typenameExpression", true)
	if err != nil {
		return nil, err
	}
	e.Name = ast.Attach(e, name)
	e.Value = ast.Attach(e, value)
	p.finish(e, first)
	return e, nil
}

// parenthesizedExpression parses "( expression )"; with allowEmpty the
// expression may be missing and nil is returned.
func (p *state) parenthesizedExpression(production string, allowEmpty bool) (ast.Expression, error) {
	if _, err := p.expect(token.LeftParen, production); err != nil {
		return nil, err
	}
	pushed := p.pushNesting(token.LeftParen)
	defer p.popNesting(pushed)

	var e ast.Expression
	if !allowEmpty || p.lt(1) != token.RightParen {
		var err error
		if e, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.RightParen, production); err != nil {
		return nil, err
	}
	return e, nil
}

// simpleTypeConstructorExpression parses "int(x)" and the like
func (p *state) simpleTypeConstructorExpression() (ast.Expression, error) {
	first, _ := p.consume()
	value, err := p.parenthesizedExpression("simpleTypeConstructor", true)
	if err != nil {
		return nil, err
	}
	e := &ast.SimpleTypeConstructorExpression{Type: first.Value}
	e.Value = ast.Attach(e, value)
	p.finish(e, first)
	return e, nil
}

// namedCastExpression parses "static_cast<T>(e)" and its siblings
func (p *state) namedCastExpression() (ast.Expression, error) {
	first, _ := p.consume()
	if _, err := p.expect(token.Less, "castExpression"); err != nil {
		return nil, err
	}
	pushed := p.pushNesting(token.Less)
	typeID, err := p.typeID()
	p.popNesting(pushed)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Greater, "castExpression"); err != nil {
		return nil, err
	}
	operand, err := p.parenthesizedExpression("castExpression", false)
	if err != nil {
		return nil, err
	}
	c := &ast.CastExpression{Op: namedCasts[first.Kind]}
	c.Type = ast.Attach(c, typeID)
	c.Operand = ast.Attach(c, operand)
	p.finish(c, first)
	return c, nil
}

// typeidExpression parses "typeid ( type-id )" or "typeid ( expression )"
func (p *state) typeidExpression() (ast.Expression, error) {
	first, _ := p.consume()
	if _, err := p.expect(token.LeftParen, "typeid"); err != nil {
		return nil, err
	}
	pushed := p.pushNesting(token.LeftParen)
	defer p.popNesting(pushed)

	var result ast.Expression
	m := p.cur.Mark()
	typeID, err := p.typeID()
	if err == nil && p.lt(1) == token.RightParen {
		e := &ast.TypeIdExpression{Op: ast.TypeIdTypeid}
		e.Type = ast.Attach(e, typeID)
		result = e
	} else {
		if err != nil && !IsBacktrack(err) {
			return nil, err
		}
		p.retry(m)
		operand, err := p.expression()
		if err != nil {
			return nil, err
		}
		u := &ast.UnaryExpression{Op: ast.UnaryTypeid}
		u.Operand = ast.Attach(u, operand)
		result = u
	}
	if _, err := p.expect(token.RightParen, "typeid"); err != nil {
		return nil, err
	}
	p.finish(result, first)
	return result, nil
}

func (p *state) primaryExpression() (ast.Expression, error) {
	first := p.la(1)
	switch first.Kind {
	case token.Number:
		_, _ = p.consume()
		return p.literal(numberKind(first.Value), first), nil
	case token.String:
		_, _ = p.consume()
		return p.literal(ast.LiteralString, first), nil
	case token.CharLiteral:
		_, _ = p.consume()
		return p.literal(ast.LiteralChar, first), nil
	case token.True:
		_, _ = p.consume()
		return p.literal(ast.LiteralTrue, first), nil
	case token.False:
		_, _ = p.consume()
		return p.literal(ast.LiteralFalse, first), nil
	case token.This:
		_, _ = p.consume()
		return p.literal(ast.LiteralThis, first), nil
	case token.Nullptr:
		_, _ = p.consume()
		return p.literal(ast.LiteralNullptr, first), nil
	case token.LeftParen:
		inner, err := p.parenthesizedExpression("primaryExpression", false)
		if err != nil {
			return nil, err
		}
		return p.unary(ast.UnaryBracketed, inner, first), nil
	case token.Identifier, token.DoubleColon, token.Operator, token.Tilde:
		m := p.cur.Mark()
		name, err := p.idExpressionName()
		if err != nil {
			return nil, err
		}
		if endsInTemplateID(name) && startsOperand(p.lt(1)) {
			// "a < 2 > 1": an operand cannot follow a template-id, so the
			// angle brackets are comparisons
			p.retry(m)
			if name, err = p.plainIDExpressionName(); err != nil {
				return nil, err
			}
		}
		id := &ast.IdExpression{}
		id.Name = ast.Attach(id, name)
		p.finish(id, first)
		return id, nil
	}
	return nil, p.backtrack("primaryExpression", "expected expression, found "+describe(first))
}

// idExpressionName parses a possibly qualified name that may end in an
// operator function name.
func (p *state) idExpressionName() (ast.Name, error) {
	return p.qualifiedOrOperatorName()
}

// plainIDExpressionName is idExpressionName with every '<' left for the
// relational operators
func (p *state) plainIDExpressionName() (ast.Name, error) {
	saved := p.noTemplateArgs
	p.noTemplateArgs = true
	defer func() { p.noTemplateArgs = saved }()
	return p.idExpressionName()
}

func endsInTemplateID(n ast.Name) bool {
	if q, ok := n.(*ast.QualifiedName); ok {
		n = q.Last()
	}
	_, ok := n.(*ast.TemplateID)
	return ok
}

// startsOperand reports whether k can only begin a new operand
func startsOperand(k token.Kind) bool {
	switch k {
	case token.Identifier, token.Number, token.String, token.CharLiteral,
		token.True, token.False, token.This, token.Nullptr:
		return true
	}
	return false
}

func (p *state) literal(kind ast.LiteralKind, t token.Token) *ast.LiteralExpression {
	l := &ast.LiteralExpression{Kind: kind, Value: t.Value}
	p.finish(l, t)
	return l
}

// numberKind tells floating literals from integer literals
func numberKind(text string) ast.LiteralKind {
	lower := strings.ToLower(text)
	if strings.HasPrefix(lower, "0x") {
		if strings.Contains(lower, ".") || strings.Contains(lower, "p") {
			return ast.LiteralFloat
		}
		return ast.LiteralInteger
	}
	if strings.ContainsAny(lower, ".e") {
		return ast.LiteralFloat
	}
	return ast.LiteralInteger
}

// newExpression parses
//
//	[::] new [( placement )] new-type-id [dims] [( init )]
//	[::] new [( placement )] ( type-id ) [dims] [( init )]
//
// A parenthesized group after "new" is read as a placement first and
// re-read as the type when no type follows it.
func (p *state) newExpression() (ast.Expression, error) {
	first := p.la(1)
	n := &ast.NewExpression{}
	if p.lt(1) == token.DoubleColon {
		_, _ = p.consume()
		n.Global = true
	}
	if _, err := p.expect(token.New, "newExpression"); err != nil {
		return nil, err
	}

	var placement ast.Expression
	afterNew := p.cur.Mark()
	if p.lt(1) == token.LeftParen {
		e, err := p.parenthesizedExpression("newExpression", false)
		switch {
		case err == nil:
			placement = e
		case IsBacktrack(err):
			p.retry(afterNew)
		default:
			return nil, err
		}
	}

	typeID, isNewTypeID, err := p.newTypeID()
	if err != nil && IsBacktrack(err) && placement != nil {
		p.retry(afterNew)
		placement = nil
		typeID, isNewTypeID, err = p.newTypeID()
	}
	if err != nil {
		return nil, err
	}
	n.Placement = ast.Attach(n, placement)
	n.Type = ast.Attach(n, typeID)
	n.NewTypeID = isNewTypeID

	for p.lt(1) == token.LeftBracket {
		_, _ = p.consume()
		pushed := p.pushNesting(token.LeftBracket)
		size, err := p.expression()
		if err == nil {
			_, err = p.expect(token.RightBracket, "newExpression")
		}
		p.popNesting(pushed)
		if err != nil {
			return nil, err
		}
		n.AddDimension(size)
	}

	if p.lt(1) == token.LeftParen {
		init, err := p.parenthesizedExpression("newInitializer", true)
		if err != nil {
			return nil, err
		}
		n.Initializer = ast.Attach(n, init)
		n.HasInit = true
	}
	p.finish(n, first)
	return n, nil
}

// newTypeID reads "( type-id )" or a new-type-id; the bool is true for the
// latter.
func (p *state) newTypeID() (*ast.TypeID, bool, error) {
	if p.lt(1) != token.LeftParen {
		t, err := p.shortTypeID()
		return t, true, err
	}
	m := p.cur.Mark()
	_, _ = p.consume()
	pushed := p.pushNesting(token.LeftParen)
	t, err := p.typeID()
	if err == nil {
		_, err = p.expect(token.RightParen, "newExpression")
	}
	p.popNesting(pushed)
	if err != nil {
		p.cur.Backup(m)
		return nil, false, err
	}
	return t, false, nil
}
