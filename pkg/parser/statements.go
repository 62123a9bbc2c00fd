package parser

import (
	"cppbind/pkg/ast"
	"cppbind/pkg/token"
)

// compoundStatement parses "{ statement* }". A statement that fails is
// recorded, replaced by a ProblemStatement and skipped.
func (p *state) compoundStatement() (*ast.CompoundStatement, error) {
	first, err := p.expect(token.LeftBrace, "compoundStatement")
	if err != nil {
		return nil, err
	}
	block := &ast.CompoundStatement{}
	for p.lt(1) != token.RightBrace {
		if p.cur.AtEOF() {
			return nil, ErrEndOfInput
		}
		start := p.la(1)
		m := p.cur.Mark()
		var stmt ast.Statement
		err := p.protect("statement", func() error {
			var err error
			stmt, err = p.statement()
			return err
		})
		switch {
		case err == nil:
			block.AddStatement(stmt)
		case IsBacktrack(err):
			p.failParse(err)
			p.cur.Backup(m)
			p.errorHandling()
			problem := &ast.ProblemStatement{Message: problemMessage(err)}
			p.finish(problem, start)
			block.AddStatement(problem)
		default:
			return nil, err
		}
		if p.cur.Mark() == m {
			p.diagnoseAt(SeverityError, start, "compoundStatement", "no progress")
			p.errorHandling()
		}
	}
	if _, err := p.expect(token.RightBrace, "compoundStatement"); err != nil {
		return nil, err
	}
	p.finish(block, first)
	return block, nil
}

func (p *state) statement() (ast.Statement, error) {
	first := p.la(1)
	switch first.Kind {
	case token.Case:
		_, _ = p.consume()
		value, err := p.constantExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Colon, "caseStatement"); err != nil {
			return nil, err
		}
		s := &ast.CaseStatement{}
		s.Value = ast.Attach(s, value)
		p.finish(s, first)
		return s, nil
	case token.Default:
		_, _ = p.consume()
		if _, err := p.expect(token.Colon, "defaultStatement"); err != nil {
			return nil, err
		}
		s := &ast.DefaultStatement{}
		p.finish(s, first)
		return s, nil
	case token.LeftBrace:
		return p.compoundStatement()
	case token.If:
		return p.ifStatement()
	case token.Switch:
		_, _ = p.consume()
		controller, err := p.parenthesizedExpression("switchStatement", false)
		if err != nil {
			return nil, err
		}
		body, err := p.statement()
		if err != nil {
			return nil, err
		}
		s := &ast.SwitchStatement{}
		s.Controller = ast.Attach(s, controller)
		s.Body = ast.Attach(s, body)
		p.finish(s, first)
		return s, nil
	case token.While:
		_, _ = p.consume()
		cond, err := p.parenthesizedExpression("whileStatement", false)
		if err != nil {
			return nil, err
		}
		body, err := p.statement()
		if err != nil {
			return nil, err
		}
		s := &ast.WhileStatement{}
		s.Condition = ast.Attach(s, cond)
		s.Body = ast.Attach(s, body)
		p.finish(s, first)
		return s, nil
	case token.Do:
		_, _ = p.consume()
		body, err := p.statement()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.While, "doStatement"); err != nil {
			return nil, err
		}
		cond, err := p.parenthesizedExpression("doStatement", false)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Semicolon, "doStatement"); err != nil {
			return nil, err
		}
		s := &ast.DoStatement{}
		s.Body = ast.Attach(s, body)
		s.Condition = ast.Attach(s, cond)
		p.finish(s, first)
		return s, nil
	case token.For:
		return p.forStatement()
	case token.Break:
		_, _ = p.consume()
		if _, err := p.expect(token.Semicolon, "breakStatement"); err != nil {
			return nil, err
		}
		s := &ast.BreakStatement{}
		p.finish(s, first)
		return s, nil
	case token.Continue:
		_, _ = p.consume()
		if _, err := p.expect(token.Semicolon, "continueStatement"); err != nil {
			return nil, err
		}
		s := &ast.ContinueStatement{}
		p.finish(s, first)
		return s, nil
	case token.Return:
		_, _ = p.consume()
		s := &ast.ReturnStatement{}
		if p.lt(1) != token.Semicolon {
			value, err := p.expression()
			if err != nil {
				return nil, err
			}
			s.Value = ast.Attach(s, value)
		}
		if _, err := p.expect(token.Semicolon, "returnStatement"); err != nil {
			return nil, err
		}
		p.finish(s, first)
		return s, nil
	case token.Goto:
		_, _ = p.consume()
		id, err := p.expect(token.Identifier, "gotoStatement")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Semicolon, "gotoStatement"); err != nil {
			return nil, err
		}
		s := &ast.GotoStatement{}
		s.Name = ast.Attach(s, p.simpleName(id))
		p.finish(s, first)
		return s, nil
	case token.Semicolon:
		_, _ = p.consume()
		s := &ast.NullStatement{}
		p.finish(s, first)
		return s, nil
	case token.Try:
		_, _ = p.consume()
		body, err := p.compoundStatement()
		if err != nil {
			return nil, err
		}
		s := &ast.TryBlockStatement{}
		s.Body = ast.Attach(s, body)
		if err := p.catchHandlerSequence(s.AddCatchHandler); err != nil {
			return nil, err
		}
		p.finish(s, first)
		return s, nil
	case token.Identifier:
		if p.lt(2) == token.Colon {
			id, _ := p.consume()
			_, _ = p.consume()
			s := &ast.LabelStatement{}
			s.Name = ast.Attach(s, p.simpleName(id))
			p.finish(s, first)
			return s, nil
		}
	}
	return p.expressionOrDeclarationStatement()
}

func (p *state) simpleName(id token.Token) *ast.SimpleName {
	n := &ast.SimpleName{Value: id.Value}
	ast.SetRange(n, p.file, startOf(id), endOf(id))
	return n
}

func (p *state) ifStatement() (ast.Statement, error) {
	first, _ := p.consume()
	cond, err := p.parenthesizedExpression("ifStatement", false)
	if err != nil {
		return nil, err
	}
	then, err := p.statement()
	if err != nil {
		return nil, err
	}
	s := &ast.IfStatement{}
	s.Condition = ast.Attach(s, cond)
	s.Then = ast.Attach(s, then)
	if p.lt(1) == token.Else {
		_, _ = p.consume()
		alt, err := p.statement()
		if err != nil {
			return nil, err
		}
		s.Else = ast.Attach(s, alt)
	}
	p.finish(s, first)
	return s, nil
}

// forStatement parses "for ( init [cond] ; [iter] ) body"
func (p *state) forStatement() (ast.Statement, error) {
	first, _ := p.consume()
	if _, err := p.expect(token.LeftParen, "forStatement"); err != nil {
		return nil, err
	}
	s := &ast.ForStatement{}

	init, err := p.forInitStatement()
	if err != nil {
		return nil, err
	}
	s.Init = ast.Attach(s, init)

	if p.lt(1) != token.Semicolon {
		cond, err := p.expression()
		if err != nil {
			return nil, err
		}
		s.Condition = ast.Attach(s, cond)
	}
	if _, err := p.expect(token.Semicolon, "forStatement"); err != nil {
		return nil, err
	}
	if p.lt(1) != token.RightParen {
		iter, err := p.expression()
		if err != nil {
			return nil, err
		}
		s.Iteration = ast.Attach(s, iter)
	}
	if _, err := p.expect(token.RightParen, "forStatement"); err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	s.Body = ast.Attach(s, body)
	p.finish(s, first)
	return s, nil
}

func (p *state) forInitStatement() (ast.Statement, error) {
	if p.lt(1) == token.Semicolon {
		first, _ := p.consume()
		s := &ast.NullStatement{}
		p.finish(s, first)
		return s, nil
	}
	return p.expressionOrDeclarationStatement()
}

// expressionOrDeclarationStatement reads "expr ;" first and falls back to
// a declaration. "A * b;" and "A & b = c;" parse as both; the declaration
// wins when it covers the same tokens.
func (p *state) expressionOrDeclarationStatement() (ast.Statement, error) {
	first := p.la(1)
	m := p.cur.Mark()

	expr, exprErr := p.expression()
	if exprErr == nil {
		_, exprErr = p.expect(token.Semicolon, "expressionStatement")
	}
	if exprErr != nil && !IsBacktrack(exprErr) {
		return nil, exprErr
	}

	if exprErr == nil && !looksLikeDeclaration(expr) {
		s := &ast.ExpressionStatement{}
		s.Expression = ast.Attach(s, expr)
		p.finish(s, first)
		return s, nil
	}

	exprEnd := p.cur.Mark()
	p.retry(m)
	decl, declErr := p.declaration()
	switch {
	case declErr == nil && (exprErr != nil || p.cur.Mark() == exprEnd):
		s := &ast.DeclarationStatement{}
		s.Declaration = ast.Attach(s, decl)
		p.finish(s, first)
		return s, nil
	case declErr != nil && !IsBacktrack(declErr):
		return nil, declErr
	case exprErr == nil:
		p.cur.Backup(exprEnd)
		s := &ast.ExpressionStatement{}
		s.Expression = ast.Attach(s, expr)
		p.finish(s, first)
		return s, nil
	}
	p.cur.Backup(m)
	return nil, pickFailure([]error{declErr, exprErr})
}

// looksLikeDeclaration matches "a * b", "a & b" and assignments to them,
// which also read as declarations of b.
func looksLikeDeclaration(e ast.Expression) bool {
	if b, ok := e.(*ast.BinaryExpression); ok && b.Op == ast.BinaryAssign {
		e = b.Left
	}
	b, ok := e.(*ast.BinaryExpression)
	if !ok || (b.Op != ast.BinaryMultiply && b.Op != ast.BinaryBitAnd) {
		return false
	}
	_, leftID := b.Left.(*ast.IdExpression)
	_, rightID := b.Right.(*ast.IdExpression)
	return leftID && rightID
}
