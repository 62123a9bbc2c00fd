package parser

import (
	"cppbind/pkg/ast"
	"cppbind/pkg/token"
)

// emptyName is the placeholder name of an abstract declarator or an
// anonymous class, positioned at the next token.
func (p *state) emptyName() *ast.SimpleName {
	n := &ast.SimpleName{}
	at := startOf(p.la(1))
	ast.SetRange(n, p.file, at, at)
	return n
}

// name parses ["::"] segment ("::" segment)* where a segment is an
// identifier, a destructor name or a template-id. Operator names are not
// accepted.
func (p *state) name() (ast.Name, error) {
	return p.parseName(false)
}

// qualifiedOrOperatorName is name extended with operator and conversion
// function names as the final segment.
func (p *state) qualifiedOrOperatorName() (ast.Name, error) {
	return p.parseName(true)
}

func (p *state) parseName(allowOperator bool) (ast.Name, error) {
	m := p.cur.Mark()
	first := p.la(1)

	global := false
	if p.lt(1) == token.DoubleColon {
		_, _ = p.consume()
		global = true
	}

	var segments []ast.Name
	for {
		if len(segments) > 0 && p.lt(1) == token.Template {
			_, _ = p.consume()
		}
		var seg ast.Name
		var err error
		switch {
		case p.lt(1) == token.Operator:
			if !allowOperator {
				at := p.la(1)
				p.cur.Backup(m)
				return nil, p.backtrackAt(at, "name", "")
			}
			seg, err = p.operatorName()
		case p.lt(1) == token.Tilde && p.lt(2) == token.Identifier:
			tilde, _ := p.consume()
			id, _ := p.consume()
			n := &ast.SimpleName{Value: "~" + id.Value}
			p.finish(n, tilde)
			seg = n
		case p.lt(1) == token.Identifier:
			seg, err = p.nameSegment()
		default:
			at := p.la(1)
			p.cur.Backup(m)
			return nil, p.backtrackAt(at, "name", "expected a name")
		}
		if err != nil {
			p.cur.Backup(m)
			return nil, err
		}
		segments = append(segments, seg)

		// operator names end the name; "A::" before a non-name ends it too
		if _, ok := seg.(*ast.OperatorName); ok {
			break
		}
		if _, ok := seg.(*ast.ConversionName); ok {
			break
		}
		if p.lt(1) == token.DoubleColon && p.lt(2) == token.Operator && !allowOperator {
			at := p.la(2)
			p.cur.Backup(m)
			return nil, p.backtrackAt(at, "name", "")
		}
		if p.lt(1) != token.DoubleColon || !startsSegment(p.lt(2), allowOperator) {
			break
		}
		_, _ = p.consume()
	}

	if len(segments) == 1 && !global {
		return segments[0], nil
	}
	q := &ast.QualifiedName{FullyQualified: global}
	for _, seg := range segments {
		q.AddSegment(seg)
	}
	p.finish(q, first)
	return q, nil
}

func startsSegment(k token.Kind, allowOperator bool) bool {
	switch k {
	case token.Identifier, token.Tilde, token.Template:
		return true
	case token.Operator:
		return allowOperator
	}
	return false
}

// nameSegment parses an identifier with optional template arguments. A '<'
// that does not open a well-formed argument list is left for the caller to
// read as less-than.
func (p *state) nameSegment() (ast.Name, error) {
	id, err := p.expect(token.Identifier, "name")
	if err != nil {
		return nil, err
	}
	simple := &ast.SimpleName{Value: id.Value}
	p.finish(simple, id)

	if p.lt(1) != token.Less || p.noTemplateArgs {
		return simple, nil
	}
	args, ok, err := p.templateArguments()
	if err != nil {
		return nil, err
	}
	if !ok {
		return simple, nil
	}
	tid := &ast.TemplateID{}
	tid.Template = ast.Attach(tid, simple)
	for _, a := range args {
		tid.AddArgument(a)
	}
	p.finish(tid, id)
	return tid, nil
}

// templateArguments speculatively parses "< args >". ok is false, with
// the cursor restored, when the tokens do not form an argument list.
func (p *state) templateArguments() (args []ast.TemplateArgument, ok bool, err error) {
	m := p.cur.Mark()
	_, _ = p.consume()

	args, err = p.templateArgumentList()
	if err == nil {
		_, err = p.expect(token.Greater, "templateArguments")
	}
	switch {
	case err == nil:
		return args, true, nil
	case IsBacktrack(err):
		p.retry(m)
		return nil, false, nil
	default:
		return nil, false, err
	}
}

// templateArgumentList parses arguments up to, not including, the closing
// '>'. Each argument is tried as a type-id first, then as an expression.
func (p *state) templateArgumentList() ([]ast.TemplateArgument, error) {
	pushed := p.pushNesting(token.Less)
	defer p.popNesting(pushed)

	var args []ast.TemplateArgument
	for p.lt(1) != token.Greater {
		m := p.cur.Mark()
		var arg ast.TemplateArgument

		typeID, err := p.typeID()
		switch {
		case err == nil:
			arg = typeID
		case IsBacktrack(err):
			p.retry(m)
			expr, err := p.assignmentExpression()
			if err != nil {
				return nil, err
			}
			if ambiguousArgument(expr) {
				p.cur.Backup(m)
				return nil, p.backtrack("templateArgument", "")
			}
			arg = expr
		default:
			return nil, err
		}
		args = append(args, arg)

		switch p.lt(1) {
		case token.Comma:
			_, _ = p.consume()
		case token.Greater:
		default:
			return nil, p.backtrack("templateArgument", "")
		}
	}
	return args, nil
}

// ambiguousArgument rejects argument expressions that more likely mean a
// comparison chain, as in "a < b && c > d".
func ambiguousArgument(e ast.Expression) bool {
	switch e := e.(type) {
	case *ast.ConditionalExpression:
		return true
	case *ast.BinaryExpression:
		return e.Op == ast.BinaryLogicalAnd || e.Op == ast.BinaryLogicalOr
	}
	return false
}

// operatorName parses "operator @", "operator new[]", "operator ()" and
// conversion function names such as "operator const char *".
func (p *state) operatorName() (ast.Name, error) {
	first, err := p.expect(token.Operator, "operatorName")
	if err != nil {
		return nil, err
	}

	var op string
	switch {
	case (p.lt(1) == token.New || p.lt(1) == token.Delete) && p.lt(2) == token.LeftBracket && p.lt(3) == token.RightBracket:
		t, _ := p.consume()
		_, _ = p.consume()
		_, _ = p.consume()
		op = t.Value + "[]"
	case p.lt(1) == token.LeftParen && p.lt(2) == token.RightParen:
		_, _ = p.consume()
		_, _ = p.consume()
		op = "()"
	case p.lt(1) == token.LeftBracket && p.lt(2) == token.RightBracket:
		_, _ = p.consume()
		_, _ = p.consume()
		op = "[]"
	case p.la(1).IsOperator():
		t, _ := p.consume()
		op = t.Value
	case p.lt(1) == token.LeftParen || p.lt(1) == token.LeftBracket:
		return nil, p.backtrack("operatorName", "expected operator")
	default:
		typeID, err := p.shortTypeID()
		if err != nil {
			return nil, err
		}
		conv := &ast.ConversionName{}
		conv.Type = ast.Attach(conv, typeID)
		p.finish(conv, first)
		return conv, nil
	}

	n := &ast.OperatorName{Op: op}
	p.finish(n, first)
	return n, nil
}

// shortTypeID parses specifiers followed by pointer operators only. It
// reads the type of a conversion function and a new-type-id, whose '(' and
// '[' suffixes belong to the enclosing construct.
func (p *state) shortTypeID() (*ast.TypeID, error) {
	first := p.la(1)
	spec, err := p.declSpecifierSeq(false, false)
	if err != nil {
		return nil, err
	}
	if p.la(1) == first {
		return nil, p.backtrack("typeID", "expected type")
	}
	d := &ast.BasicDeclarator{}
	opsFirst := p.la(1)
	ops, err := p.pointerOperators()
	if err != nil {
		return nil, err
	}
	for _, op := range ops {
		ast.AddPointerOperator(d, op)
	}
	ast.SetName(d, p.emptyName())
	p.finish(d, opsFirst)

	t := &ast.TypeID{}
	t.Specifier = ast.Attach(t, spec)
	t.Declarator = ast.Attach(t, ast.Declarator(d))
	p.finish(t, first)
	return t, nil
}
