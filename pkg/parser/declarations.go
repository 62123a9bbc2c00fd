package parser

import (
	"fmt"
	"strings"

	"cppbind/pkg/ast"
	"cppbind/pkg/token"
)

// declaration dispatches on the leading keyword
func (p *state) declaration() (ast.Declaration, error) {
	switch p.lt(1) {
	case token.Asm:
		return p.asmDeclaration()
	case token.Namespace:
		return p.namespaceDefinitionOrAlias()
	case token.Using:
		return p.usingClause()
	case token.Export, token.Template:
		return p.templateDeclaration()
	case token.Extern:
		if p.lt(2) == token.String {
			return p.linkageSpecification()
		}
		if p.lt(2) == token.Template {
			return p.templateDeclaration()
		}
	case token.Static, token.Inline:
		if p.lt(2) == token.Template {
			return p.templateDeclaration()
		}
	}
	return p.simpleDeclarationStrategyUnion()
}

// simpleDeclarationStrategyUnion tries the constructor, function and
// variable readings of a simple declaration in that order. Once a reading
// commits (past an initializer '=' or into a body) its failure is final.
func (p *state) simpleDeclarationStrategyUnion() (ast.Declaration, error) {
	m := p.cur.Mark()
	var failures []error

	for _, st := range []strategy{tryConstructor, tryFunction, tryVariable} {
		p.speculating = true
		var decl ast.Declaration
		err := p.protect("simpleDeclaration", func() error {
			var err error
			decl, err = p.simpleDeclaration(st, false)
			return err
		})
		if p.fatal != nil {
			p.speculating = false
			return nil, p.fatal
		}
		if err == nil {
			p.speculating = false
			return decl, nil
		}
		if !IsBacktrack(err) {
			p.speculating = false
			return nil, err
		}
		if !p.speculating {
			// committed: the earlier failure wins only when this one
			// carries no description
			if len(failures) > 0 && !err.(*BacktrackError).HasProblem() {
				return nil, pickFailure(failures)
			}
			return nil, err
		}
		failures = append(failures, err)
		p.log.Debugf("%s:%d: %s strategy failed: %v", p.file, p.la(1).Line, st, err)
		p.retry(m)
	}

	p.speculating = false
	p.cur.Backup(m)
	return nil, pickFailure(failures)
}

// simpleDeclaration parses "decl-specifiers init-declarators ;" or a
// function definition. fromCatchHandler allows the declaration to end at
// the ')' of a catch clause.
func (p *state) simpleDeclaration(st strategy, fromCatchHandler bool) (ast.Declaration, error) {
	first := p.la(1)
	if first.Kind == token.LeftBrace {
		return nil, p.backtrackAt(first, "simpleDeclaration", "")
	}

	spec, err := p.declSpecifierSeq(false, st == tryConstructor)
	if err != nil {
		return nil, err
	}

	var declarators []ast.Declarator
	if p.lt(1) != token.Semicolon {
		d, err := p.initDeclarator(st)
		if err != nil {
			return nil, err
		}
		declarators = append(declarators, d)
		for p.lt(1) == token.Comma {
			_, _ = p.consume()
			d, err := p.initDeclarator(st)
			if err != nil {
				return nil, err
			}
			declarators = append(declarators, d)
		}
	}

	tryBlock := false
	var chain []*ast.ConstructorChainInitializer
	switch p.lt(1) {
	case token.Semicolon:
		if len(declarators) == 0 && declaresNothing(spec) {
			return nil, p.backtrack("simpleDeclaration", "declaration does not declare anything")
		}
		_, _ = p.consume()
		p.commit()
		decl := &ast.SimpleDeclaration{}
		decl.Specifier = ast.Attach(decl, spec)
		for _, d := range declarators {
			decl.AddDeclarator(d)
		}
		p.finish(decl, first)
		return decl, nil
	case token.Try:
		_, _ = p.consume()
		tryBlock = true
		if p.lt(1) == token.Colon {
			if chain, err = p.ctorInitializer(); err != nil {
				return nil, err
			}
		}
	case token.Colon:
		if chain, err = p.ctorInitializer(); err != nil {
			return nil, err
		}
	case token.LeftBrace:
	case token.RightParen:
		if !fromCatchHandler {
			return nil, p.backtrack("simpleDeclaration", "unexpected ')'")
		}
		decl := &ast.SimpleDeclaration{}
		decl.Specifier = ast.Attach(decl, spec)
		for _, d := range declarators {
			decl.AddDeclarator(d)
		}
		p.finish(decl, first)
		return decl, nil
	default:
		return nil, p.backtrack("simpleDeclaration", fmt.Sprintf("expected ';', found %s", describe(p.la(1))))
	}

	// function definition
	if p.lt(1) != token.LeftBrace {
		return nil, p.backtrack("functionDefinition", "expected function body")
	}
	if len(declarators) != 1 {
		return nil, p.backtrack("functionDefinition", "function definition declares more than one name")
	}
	fd, ok := declarators[0].(*ast.FunctionDeclarator)
	if !ok {
		return nil, p.backtrack("functionDefinition", "expected a function declarator before the body")
	}
	for _, c := range chain {
		fd.AddChainInitializer(c)
	}

	def := &ast.FunctionDefinition{TryBlock: tryBlock}
	def.Specifier = ast.Attach(def, spec)
	def.Declarator = ast.Attach(def, fd)
	p.commit()

	body, err := p.functionBody()
	if err != nil {
		return nil, err
	}
	def.Body = ast.Attach(def, body)

	if tryBlock {
		if err := p.catchHandlerSequence(def.AddCatchHandler); err != nil {
			return nil, err
		}
	}
	p.finish(def, first)
	return def, nil
}

// declaresNothing reports whether a declaration without declarators is an
// error: only class, enum and elaborated specifiers may stand alone.
func declaresNothing(spec ast.DeclSpecifier) bool {
	switch s := spec.(type) {
	case *ast.SimpleDeclSpecifier:
		return s.HasType()
	case *ast.NamedTypeSpecifier:
		return true
	}
	return false
}

// ctorInitializer parses ": member(args), ..." up to the function body
func (p *state) ctorInitializer() ([]*ast.ConstructorChainInitializer, error) {
	if _, err := p.expect(token.Colon, "ctorInitializer"); err != nil {
		return nil, err
	}
	var chain []*ast.ConstructorChainInitializer
	for p.lt(1) != token.LeftBrace {
		first := p.la(1)
		name, err := p.name()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.LeftParen, "ctorInitializer"); err != nil {
			return nil, err
		}
		c := &ast.ConstructorChainInitializer{}
		c.Member = ast.Attach(c, name)
		if p.lt(1) != token.RightParen {
			value, err := p.expression()
			if err != nil {
				return nil, err
			}
			c.Value = ast.Attach(c, value)
		}
		if _, err := p.expect(token.RightParen, "ctorInitializer"); err != nil {
			return nil, err
		}
		p.finish(c, first)
		chain = append(chain, c)

		if p.lt(1) == token.LeftBrace {
			break
		}
		if _, err := p.expect(token.Comma, "ctorInitializer"); err != nil {
			return nil, err
		}
	}
	return chain, nil
}

// initDeclarator parses a declarator with its optional initializer
func (p *state) initDeclarator(st strategy) (ast.Declarator, error) {
	d, err := p.declarator(st, false)
	if err != nil {
		return nil, err
	}
	init, err := p.optionalInitializer()
	if err != nil {
		return nil, err
	}
	if init != nil {
		ast.SetInitializer(d, init)
		ast.SetEnd(d, endOf(p.cur.Last()))
	}
	return d, nil
}

// optionalInitializer parses "= clause" or "(expression)"
func (p *state) optionalInitializer() (ast.Initializer, error) {
	switch p.lt(1) {
	case token.Assign:
		_, _ = p.consume()
		p.commit()
		return p.initializerClause()
	case token.LeftParen:
		first, _ := p.consume()
		value, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RightParen, "initializer"); err != nil {
			return nil, err
		}
		init := &ast.ConstructorInitializer{}
		init.Value = ast.Attach(init, value)
		p.finish(init, first)
		return init, nil
	}
	return nil, nil
}

// initializerClause parses a brace list or an assignment expression
func (p *state) initializerClause() (ast.Initializer, error) {
	first := p.la(1)
	if first.Kind == token.LeftBrace {
		_, _ = p.consume()
		list := &ast.InitializerList{}
		for p.lt(1) != token.RightBrace {
			clause, err := p.initializerClause()
			if err != nil {
				return nil, err
			}
			list.AddInitializer(clause)
			if p.lt(1) == token.RightBrace {
				break
			}
			if _, err := p.expect(token.Comma, "initializerClause"); err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(token.RightBrace, "initializerClause"); err != nil {
			return nil, err
		}
		p.finish(list, first)
		return list, nil
	}

	value, err := p.assignmentExpression()
	if err != nil {
		return nil, err
	}
	init := &ast.InitializerExpression{}
	init.Value = ast.Attach(init, value)
	p.finish(init, first)
	return init, nil
}

// namespaceDefinitionOrAlias parses "namespace [N] { ... }" or
// "namespace A = B::C;"
func (p *state) namespaceDefinitionOrAlias() (ast.Declaration, error) {
	first, err := p.expect(token.Namespace, "namespaceDefinition")
	if err != nil {
		return nil, err
	}

	name := &ast.SimpleName{}
	if p.lt(1) == token.Identifier {
		id, _ := p.consume()
		name.Value = id.Value
		p.finish(name, id)
	} else {
		ast.SetRange(name, p.file, startOf(p.la(1)), startOf(p.la(1)))
	}

	switch p.lt(1) {
	case token.LeftBrace:
		_, _ = p.consume()
		ns := &ast.NamespaceDefinition{}
		ns.Name = ast.Attach(ns, name)
		if err := p.declarationBody("namespaceDefinition", ns.AddDeclaration); err != nil {
			return nil, err
		}
		p.finish(ns, first)
		return ns, nil
	case token.Assign:
		assign, _ := p.consume()
		if name.IsEmpty() {
			return nil, p.backtrackAt(assign, "namespaceAlias", "namespace alias requires a name")
		}
		target, err := p.name()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Semicolon, "namespaceAlias"); err != nil {
			return nil, err
		}
		alias := &ast.NamespaceAlias{}
		alias.Alias = ast.Attach(alias, name)
		alias.Target = ast.Attach(alias, target)
		p.finish(alias, first)
		return alias, nil
	}
	return nil, p.backtrack("namespaceDefinition", fmt.Sprintf("expected '{' or '=', found %s", describe(p.la(1))))
}

// declarationBody parses declarations up to and including the closing '}'.
// Failures are recorded and skipped so sibling declarations survive.
func (p *state) declarationBody(production string, add func(ast.Declaration)) error {
	for p.lt(1) != token.RightBrace {
		if p.cur.AtEOF() {
			return ErrEndOfInput
		}
		m := p.cur.Mark()
		start := p.la(1)
		var decl ast.Declaration
		err := p.protect("declaration", func() error {
			var err error
			decl, err = p.declaration()
			return err
		})
		switch {
		case err == nil:
			add(decl)
		case IsBacktrack(err):
			p.failParse(err)
			p.cur.Backup(m)
			p.errorHandling()
			add(p.problemDeclaration(err, start))
		default:
			return err
		}
		if p.cur.Mark() == m {
			p.diagnoseAt(SeverityError, p.la(1), production, "no progress")
			p.errorHandling()
		}
	}
	_, err := p.expect(token.RightBrace, production)
	return err
}

// usingClause parses a using-directive or using-declaration
func (p *state) usingClause() (ast.Declaration, error) {
	first, err := p.expect(token.Using, "usingClause")
	if err != nil {
		return nil, err
	}

	if p.lt(1) == token.Namespace {
		_, _ = p.consume()
		if p.lt(1) != token.Identifier && p.lt(1) != token.DoubleColon {
			return nil, p.backtrack("usingDirective", "expected namespace name")
		}
		name, err := p.name()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Semicolon, "usingDirective"); err != nil {
			return nil, err
		}
		ud := &ast.UsingDirective{}
		ud.Namespace = ast.Attach(ud, name)
		p.finish(ud, first)
		return ud, nil
	}

	typename := false
	if p.lt(1) == token.Typename {
		_, _ = p.consume()
		typename = true
	}
	name, err := p.qualifiedOrOperatorName()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semicolon, "usingDeclaration"); err != nil {
		return nil, err
	}
	decl := &ast.UsingDeclaration{Typename: typename}
	decl.Name = ast.Attach(decl, name)
	p.finish(decl, first)
	return decl, nil
}

// linkageSpecification parses `extern "C" { ... }` or `extern "C" decl`
func (p *state) linkageSpecification() (ast.Declaration, error) {
	first, err := p.expect(token.Extern, "linkageSpecification")
	if err != nil {
		return nil, err
	}
	lit, err := p.expect(token.String, "linkageSpecification")
	if err != nil {
		return nil, err
	}
	linkage := &ast.LinkageSpecification{Literal: strings.Trim(lit.Value, `"`)}

	if p.lt(1) == token.LeftBrace {
		_, _ = p.consume()
		if err := p.declarationBody("linkageSpecification", linkage.AddDeclaration); err != nil {
			return nil, err
		}
		p.finish(linkage, first)
		return linkage, nil
	}

	decl, err := p.declaration()
	if err != nil {
		return nil, err
	}
	linkage.AddDeclaration(decl)
	p.finish(linkage, first)
	return linkage, nil
}

// asmDeclaration parses `asm("...");`
func (p *state) asmDeclaration() (ast.Declaration, error) {
	first, err := p.expect(token.Asm, "asmDeclaration")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LeftParen, "asmDeclaration"); err != nil {
		return nil, err
	}
	var parts []string
	for p.lt(1) == token.String {
		s, _ := p.consume()
		parts = append(parts, strings.Trim(s.Value, `"`))
	}
	if len(parts) == 0 {
		return nil, p.backtrack("asmDeclaration", "expected string literal")
	}
	if _, err := p.expect(token.RightParen, "asmDeclaration"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semicolon, "asmDeclaration"); err != nil {
		return nil, err
	}
	decl := &ast.ASMDeclaration{Assembly: strings.Join(parts, "")}
	p.finish(decl, first)
	return decl, nil
}

// functionBody parses the body of a function definition. In structural
// mode the body is skipped and an empty compound statement stands in.
func (p *state) functionBody() (*ast.CompoundStatement, error) {
	if !p.cfg.Structural {
		return p.compoundStatement()
	}
	first, err := p.expect(token.LeftBrace, "functionBody")
	if err != nil {
		return nil, err
	}
	for depth := 1; depth > 0; {
		t, err := p.consume()
		if err != nil {
			return nil, err
		}
		switch t.Kind {
		case token.LeftBrace:
			depth++
		case token.RightBrace:
			depth--
		}
	}
	body := &ast.CompoundStatement{}
	p.finish(body, first)
	return body, nil
}

// catchHandlerSequence parses one or more catch clauses
func (p *state) catchHandlerSequence(add func(*ast.CatchHandler)) error {
	if p.lt(1) != token.Catch {
		return p.backtrack("catchHandler", "expected catch")
	}
	for p.lt(1) == token.Catch {
		first, _ := p.consume()
		m := p.cur.Mark()
		h, err := p.catchHandler(first)
		switch {
		case err == nil:
			add(h)
		case IsBacktrack(err):
			p.failParse(err)
			p.cur.Backup(m)
			p.errorHandling()
		default:
			return err
		}
	}
	return nil
}

func (p *state) catchHandler(first token.Token) (*ast.CatchHandler, error) {
	if _, err := p.expect(token.LeftParen, "catchHandler"); err != nil {
		return nil, err
	}
	h := &ast.CatchHandler{}
	if p.lt(1) == token.Ellipsis {
		_, _ = p.consume()
		h.CatchAll = true
	} else {
		decl, err := p.simpleDeclaration(tryVariable, true)
		if err != nil {
			return nil, err
		}
		h.Declaration = ast.Attach(h, decl)
	}
	if _, err := p.expect(token.RightParen, "catchHandler"); err != nil {
		return nil, err
	}
	body, err := p.functionBody()
	if err != nil {
		return nil, err
	}
	h.Body = ast.Attach(h, body)
	p.finish(h, first)
	return h, nil
}
