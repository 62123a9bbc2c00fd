package parser

import (
	"cppbind/pkg/ast"
	"cppbind/pkg/token"
)

// pointerOperators parses a run of '*' and 'C::*' operators, optionally
// ended by a single '&'.
func (p *state) pointerOperators() ([]ast.PointerOperator, error) {
	var ops []ast.PointerOperator
	for {
		if p.lt(1) == token.Ampersand {
			amp, _ := p.consume()
			ref := &ast.Reference{}
			p.finish(ref, amp)
			return append(ops, ref), nil
		}

		m := p.cur.Mark()
		first := p.la(1)
		var class ast.Name
		if p.lt(1) == token.Identifier || p.lt(1) == token.DoubleColon {
			c, ok, err := p.memberPointerClass()
			if err != nil {
				return nil, err
			}
			if !ok {
				p.cur.Backup(m)
				return ops, nil
			}
			class = c
		}
		if p.lt(1) != token.Star {
			p.cur.Backup(m)
			return ops, nil
		}
		_, _ = p.consume()

		var isConst, isVolatile, isRestrict bool
	cv:
		for {
			switch p.lt(1) {
			case token.Const:
				isConst = true
			case token.Volatile:
				isVolatile = true
			case token.Restrict:
				isRestrict = true
			default:
				break cv
			}
			_, _ = p.consume()
		}

		if class != nil {
			pm := &ast.PointerToMember{Const: isConst, Volatile: isVolatile}
			pm.Class = ast.Attach(pm, class)
			p.finish(pm, first)
			ops = append(ops, pm)
			continue
		}
		ptr := &ast.Pointer{Const: isConst, Volatile: isVolatile, Restrict: isRestrict}
		p.finish(ptr, first)
		ops = append(ops, ptr)
	}
}

// memberPointerClass parses the "[::] A :: B ::" prefix of a pointer to
// member. ok is false when the tokens are not such a prefix.
func (p *state) memberPointerClass() (ast.Name, bool, error) {
	first := p.la(1)
	global := false
	if p.lt(1) == token.DoubleColon {
		_, _ = p.consume()
		global = true
	}
	var segs []ast.Name
	for {
		if p.lt(1) != token.Identifier {
			return nil, false, nil
		}
		seg, err := p.nameSegment()
		if err != nil {
			if IsBacktrack(err) {
				return nil, false, nil
			}
			return nil, false, err
		}
		if p.lt(1) != token.DoubleColon {
			return nil, false, nil
		}
		_, _ = p.consume()
		segs = append(segs, seg)
		if p.lt(1) == token.Star {
			break
		}
	}
	if len(segs) == 1 && !global {
		return segs[0], true, nil
	}
	q := &ast.QualifiedName{FullyQualified: global}
	for _, seg := range segs {
		q.AddSegment(seg)
	}
	p.finish(q, first)
	return q, true, nil
}

// declarator parses pointer operators, the declarator-id or a
// parenthesized nested declarator, and the function, array or bit-field
// suffixes. forTypeID parses an abstract declarator.
func (p *state) declarator(st strategy, forTypeID bool) (ast.Declarator, error) {
	first := p.la(1)

	ops, err := p.pointerOperators()
	if err != nil {
		return nil, err
	}

	var (
		nested     ast.Declarator
		name       ast.Name
		isFunction bool
	)
	if p.lt(1) == token.LeftParen && (!forTypeID || p.la(2).IsPointer()) {
		m := p.cur.Mark()
		_, _ = p.consume()
		inner, err := p.declarator(st, forTypeID)
		if err == nil {
			_, err = p.expect(token.RightParen, "declarator")
		}
		switch {
		case err == nil:
			nested = inner
		case IsBacktrack(err):
			p.retry(m)
		default:
			return nil, err
		}
		name = p.emptyName()
	} else {
		m := p.cur.Mark()
		n, err := p.qualifiedOrOperatorName()
		switch {
		case err == nil:
			name = n
			if _, ok := ast.LastSegment(n).(*ast.ConversionName); ok {
				isFunction = true
			}
		case IsBacktrack(err):
			p.cur.Backup(m)
			name = p.emptyName()
		default:
			return nil, err
		}
	}

	fn := &ast.FunctionDeclarator{}
	var (
		modifiers []*ast.ArrayModifier
		bitWidth  ast.Expression
	)

suffixes:
	for {
		switch p.lt(1) {
		case token.LeftParen:
			failed := false
			if !p.la(2).LooksLikeExpression() && st != tryVariable && p.lt(2) == token.Identifier {
				// a parameter list must start with a type name
				m := p.cur.Mark()
				_, _ = p.consume()
				if _, err := p.name(); err != nil {
					if !IsBacktrack(err) {
						return nil, err
					}
					failed = true
				}
				p.cur.Backup(m)
			}
			if p.la(2).LooksLikeExpression() || st == tryVariable || failed {
				break suffixes
			}

			isFunction = true
			if err := p.parameterList(fn); err != nil {
				return nil, err
			}
			if p.lt(1) == token.Colon || p.lt(1) == token.Try {
				break suffixes
			}
			if err := p.functionQualifiers(fn); err != nil {
				return nil, err
			}
			break suffixes
		case token.LeftBracket:
			mods, err := p.arrayModifiers()
			if err != nil {
				return nil, err
			}
			modifiers = append(modifiers, mods...)
		case token.Colon:
			if isFunction {
				break suffixes
			}
			_, _ = p.consume()
			w, err := p.constantExpression()
			if err != nil {
				return nil, err
			}
			bitWidth = w
			break suffixes
		default:
			break suffixes
		}
	}

	var d ast.Declarator
	switch {
	case isFunction:
		d = fn
	case len(modifiers) > 0:
		arr := &ast.ArrayDeclarator{}
		for _, mod := range modifiers {
			arr.AddArrayModifier(mod)
		}
		d = arr
	case bitWidth != nil:
		fd := &ast.FieldDeclarator{}
		fd.BitWidth = ast.Attach(fd, bitWidth)
		d = fd
	default:
		d = &ast.BasicDeclarator{}
	}
	for _, op := range ops {
		ast.AddPointerOperator(d, op)
	}
	if nested != nil {
		ast.SetNested(d, nested)
	}
	ast.SetName(d, name)
	p.finish(d, first)
	return d, nil
}

// parameterList parses "( parameter-declarations [...] )"
func (p *state) parameterList(fn *ast.FunctionDeclarator) error {
	if _, err := p.expect(token.LeftParen, "parameterList"); err != nil {
		return err
	}
	seenParameter := false
	for {
		switch p.lt(1) {
		case token.RightParen:
			_, _ = p.consume()
			return nil
		case token.Ellipsis:
			_, _ = p.consume()
			fn.VarArgs = true
		case token.Comma:
			_, _ = p.consume()
			seenParameter = false
		default:
			if seenParameter {
				return p.backtrack("parameterList", "expected ',' or ')'")
			}
			param, err := p.parameterDeclaration()
			if err != nil {
				return err
			}
			fn.AddParameter(param)
			seenParameter = true
		}
	}
}

// functionQualifiers parses the cv-qualifiers, exception specification and
// pure-specifier that may follow a parameter list.
func (p *state) functionQualifiers(fn *ast.FunctionDeclarator) error {
	for i := 0; i < 2 && (p.lt(1) == token.Const || p.lt(1) == token.Volatile); i++ {
		t, _ := p.consume()
		if t.Kind == token.Const {
			fn.Const = true
		} else {
			fn.Volatile = true
		}
	}

	if p.lt(1) == token.Throw {
		_, _ = p.consume()
		if _, err := p.expect(token.LeftParen, "exceptionSpecification"); err != nil {
			return err
		}
		fn.HasExceptionSpec = true
		for p.lt(1) != token.RightParen {
			if p.lt(1) == token.Comma {
				_, _ = p.consume()
				continue
			}
			m := p.cur.Mark()
			t, err := p.typeID()
			if err != nil {
				if !IsBacktrack(err) {
					return err
				}
				p.failParse(err)
				p.cur.Backup(m)
				if _, err := p.consume(); err != nil {
					return err
				}
				continue
			}
			fn.AddExceptionType(t)
		}
		_, _ = p.consume()
	}

	if p.lt(1) == token.Assign && p.lt(2) == token.Number && p.la(2).Value == "0" {
		_, _ = p.consume()
		_, _ = p.consume()
		fn.PureVirtual = true
	}
	return nil
}

// arrayModifiers parses one or more "[ constant-expression? ]"
func (p *state) arrayModifiers() ([]*ast.ArrayModifier, error) {
	var mods []*ast.ArrayModifier
	for p.lt(1) == token.LeftBracket {
		first, _ := p.consume()
		mod := &ast.ArrayModifier{}
		if p.lt(1) != token.RightBracket {
			pushed := p.pushNesting(token.LeftBracket)
			size, err := p.constantExpression()
			p.popNesting(pushed)
			if err != nil {
				return nil, err
			}
			mod.Size = ast.Attach(mod, size)
		}
		if _, err := p.expect(token.RightBracket, "arrayModifier"); err != nil {
			return nil, err
		}
		p.finish(mod, first)
		mods = append(mods, mod)
	}
	return mods, nil
}

// parameterDeclaration parses one function parameter
func (p *state) parameterDeclaration() (*ast.ParameterDeclaration, error) {
	first := p.la(1)
	spec, err := p.declSpecifierSeq(true, false)
	if err != nil {
		return nil, err
	}
	param := &ast.ParameterDeclaration{}
	param.Specifier = ast.Attach(param, spec)
	if p.lt(1) != token.Semicolon {
		d, err := p.initDeclarator(tryFunction)
		if err != nil {
			return nil, err
		}
		param.Declarator = ast.Attach(param, d)
	}
	if p.la(1) == first {
		return nil, p.backtrackAt(first, "parameterDeclaration", "expected parameter declaration")
	}
	p.finish(param, first)
	return param, nil
}

// typeID parses a type without a declared name, as used in casts, sizeof,
// template arguments and exception specifications.
func (p *state) typeID() (*ast.TypeID, error) {
	m := p.cur.Mark()
	first := p.la(1)

	spec, err := p.declSpecifierSeq(false, false)
	if err != nil {
		p.cur.Backup(m)
		return nil, err
	}
	if p.la(1) == first {
		return nil, p.backtrackAt(first, "typeID", "")
	}
	d, err := p.declarator(tryConstructor, true)
	if err != nil {
		p.cur.Backup(m)
		return nil, err
	}
	if n := ast.InnermostName(d); n != nil && n.Identifier() != "" {
		p.cur.Backup(m)
		return nil, p.backtrackAt(first, "typeID", "")
	}
	if s, ok := spec.(*ast.SimpleDeclSpecifier); ok && !s.HasType() {
		flags := s.Flags()
		if !flags.Const && !flags.Volatile {
			p.cur.Backup(m)
			return nil, p.backtrackAt(first, "typeID", "")
		}
	}

	t := &ast.TypeID{}
	t.Specifier = ast.Attach(t, spec)
	t.Declarator = ast.Attach(t, d)
	p.finish(t, first)
	return t, nil
}
