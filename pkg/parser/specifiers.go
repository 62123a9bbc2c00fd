package parser

import (
	"cppbind/pkg/ast"
	"cppbind/pkg/token"
)

// specFlags tracks what a declaration specifier sequence has seen so far
type specFlags struct {
	parameter   bool
	constructor bool
	rawType     bool
	typename    bool
}

// declSpecifierSeq parses storage classes, qualifiers, function specifiers
// and at most one type specifier. parameter selects the parameter rules;
// constructor is set while the constructor strategy is being tried.
func (p *state) declSpecifierSeq(parameter, constructor bool) (ast.DeclSpecifier, error) {
	first := p.la(1)
	flags := specFlags{parameter: parameter, constructor: constructor}

	var (
		quals    ast.Specifiers
		simple   = &ast.SimpleDeclSpecifier{}
		named    ast.Name
		typename bool
		class    *ast.CompositeTypeSpecifier
		elab     *ast.ElaboratedTypeSpecifier
		enum     *ast.EnumerationSpecifier
	)

loop:
	for {
		switch p.lt(1) {
		case token.Inline:
			quals.Inline = true
		case token.Typedef:
			quals.Storage = ast.StorageTypedef
		case token.Auto:
			quals.Storage = ast.StorageAuto
		case token.Register:
			quals.Storage = ast.StorageRegister
		case token.Static:
			quals.Storage = ast.StorageStatic
		case token.Extern:
			quals.Storage = ast.StorageExtern
		case token.Mutable:
			quals.Storage = ast.StorageMutable
		case token.Virtual:
			quals.Virtual = true
		case token.Explicit:
			quals.Explicit = true
		case token.Friend:
			quals.Friend = true
		case token.Const:
			quals.Const = true
		case token.Volatile:
			quals.Volatile = true
		case token.Restrict:
			quals.Restrict = true
		case token.Signed:
			simple.Signed = true
			flags.rawType = true
		case token.Unsigned:
			simple.Unsigned = true
			flags.rawType = true
		case token.Short:
			simple.Short = true
			flags.rawType = true
		case token.Long:
			if simple.Long && p.cfg.LongLong {
				simple.Long = false
				simple.LongLong = true
			} else {
				simple.Long = true
			}
			flags.rawType = true
		case token.Char:
			simple.Type = ast.TypeChar
			flags.rawType = true
		case token.WcharT:
			simple.Type = ast.TypeWcharT
			flags.rawType = true
		case token.Bool:
			simple.Type = ast.TypeBool
			flags.rawType = true
		case token.Int:
			simple.Type = ast.TypeInt
			flags.rawType = true
		case token.Float:
			simple.Type = ast.TypeFloat
			flags.rawType = true
		case token.Double:
			simple.Type = ast.TypeDouble
			flags.rawType = true
		case token.Void:
			simple.Type = ast.TypeVoid
			flags.rawType = true

		case token.Typename:
			_, _ = p.consume()
			n, err := p.name()
			if err != nil {
				return nil, err
			}
			named, typename = n, true
			flags.typename = true
			continue

		case token.DoubleColon, token.Identifier:
			if flags.rawType {
				break loop
			}
			if flags.parameter && flags.typename {
				break loop
			}
			if p.lookAheadForConstructorOrConversion(flags) {
				break loop
			}
			if p.lookAheadForDeclarator(flags) {
				break loop
			}
			n, err := p.name()
			if err != nil {
				return nil, err
			}
			named = n
			flags.typename = true
			continue

		case token.Class, token.Struct, token.Union:
			m := p.cur.Mark()
			cs, err := p.classSpecifier()
			switch {
			case err == nil:
				class = cs
			case IsBacktrack(err):
				p.retry(m)
				es, err := p.elaboratedTypeSpecifier()
				if err != nil {
					return nil, err
				}
				elab = es
			default:
				return nil, err
			}
			flags.typename = true
			continue

		case token.Enum:
			m := p.cur.Mark()
			es, err := p.enumSpecifier()
			switch {
			case err == nil:
				enum = es
			case IsBacktrack(err):
				p.retry(m)
				el, err := p.elaboratedTypeSpecifier()
				if err != nil {
					return nil, err
				}
				elab = el
			default:
				return nil, err
			}
			flags.typename = true
			continue

		default:
			break loop
		}
		_, _ = p.consume()
	}

	var spec ast.DeclSpecifier
	switch {
	case elab != nil:
		spec = elab
	case enum != nil:
		spec = enum
	case class != nil:
		spec = class
	case named != nil:
		ns := &ast.NamedTypeSpecifier{Typename: typename}
		ns.Name = ast.Attach(ns, named)
		spec = ns
	default:
		spec = simple
	}
	*spec.Flags() = quals
	p.finish(spec, first)
	return spec, nil
}

// lookAheadForConstructorOrConversion reports whether the name at the
// cursor is the declarator of a constructor, destructor or conversion
// function, so the specifier sequence must stop before it.
func (p *state) lookAheadForConstructorOrConversion(flags specFlags) bool {
	if flags.parameter {
		return false
	}
	if p.lt(2) == token.LeftParen && flags.constructor {
		return true
	}

	m := p.cur.Mark()
	defer p.cur.Backup(m)

	n, err := p.qualifiedOrOperatorName()
	if err != nil {
		return false
	}
	q, ok := n.(*ast.QualifiedName)
	if !ok {
		return false
	}
	segs := q.Segments()
	if len(segs) < 2 {
		return false
	}
	last, owner := segs[len(segs)-1], segs[len(segs)-2]
	if _, ok := last.(*ast.ConversionName); ok {
		return true
	}
	className := owner.Identifier()
	if className == "" {
		return false
	}
	id := last.Identifier()
	return id == className || id == "~"+className
}

// lookAheadForDeclarator reports whether, once a type name has been seen,
// the identifier at the cursor starts the declarator.
func (p *state) lookAheadForDeclarator(flags specFlags) bool {
	if !flags.typename {
		return false
	}
	if p.la(2).IsPointer() {
		return false
	}
	return p.lt(2) != token.Identifier || (p.lt(3) != token.LeftParen && p.lt(3) != token.Assign)
}

// elaboratedTypeSpecifier parses "class-key name" or "enum name"
func (p *state) elaboratedTypeSpecifier() (*ast.ElaboratedTypeSpecifier, error) {
	first := p.la(1)
	spec := &ast.ElaboratedTypeSpecifier{}
	switch first.Kind {
	case token.Class:
		spec.Kind = ast.ElaboratedClass
	case token.Struct:
		spec.Kind = ast.ElaboratedStruct
	case token.Union:
		spec.Kind = ast.ElaboratedUnion
	case token.Enum:
		spec.Kind = ast.ElaboratedEnum
	default:
		return nil, p.backtrack("elaboratedTypeSpecifier", "expected class-key")
	}
	_, _ = p.consume()

	name, err := p.name()
	if err != nil {
		return nil, err
	}
	spec.Name = ast.Attach(spec, name)
	p.finish(spec, first)
	return spec, nil
}

// classSpecifier parses a class, struct or union definition
func (p *state) classSpecifier() (*ast.CompositeTypeSpecifier, error) {
	m := p.cur.Mark()
	first := p.la(1)
	spec := &ast.CompositeTypeSpecifier{}
	switch first.Kind {
	case token.Class:
		spec.Key = ast.KeyClass
	case token.Struct:
		spec.Key = ast.KeyStruct
	case token.Union:
		spec.Key = ast.KeyUnion
	default:
		return nil, p.backtrack("classSpecifier", "expected class-key")
	}
	_, _ = p.consume()

	var name ast.Name
	if p.lt(1) == token.Identifier {
		n, err := p.name()
		if err != nil {
			return nil, err
		}
		name = n
	} else {
		name = p.emptyName()
	}

	if p.lt(1) != token.Colon && p.lt(1) != token.LeftBrace {
		at := p.la(1)
		p.cur.Backup(m)
		return nil, p.backtrackAt(at, "classSpecifier", "")
	}
	spec.Name = ast.Attach(spec, name)

	if p.lt(1) == token.Colon {
		if err := p.baseClause(spec); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(token.LeftBrace, "classSpecifier"); err != nil {
		return nil, err
	}
	p.commit()

	for p.lt(1) != token.RightBrace {
		if p.cur.AtEOF() {
			return nil, ErrEndOfInput
		}
		check := p.cur.Mark()
		start := p.la(1)
		switch p.lt(1) {
		case token.Public, token.Protected, token.Private:
			if p.lt(2) == token.Colon {
				key, _ := p.consume()
				_, _ = p.consume()
				label := &ast.VisibilityLabel{Visibility: visibilityOf(key.Kind)}
				p.finish(label, key)
				spec.AddMember(label)
				continue
			}
		}

		var decl ast.Declaration
		err := p.protect("memberDeclaration", func() error {
			var err error
			decl, err = p.declaration()
			return err
		})
		switch {
		case err == nil:
			spec.AddMember(decl)
		case IsBacktrack(err):
			p.failParse(err)
			p.cur.Backup(check)
			p.errorHandling()
			spec.AddMember(p.problemDeclaration(err, start))
		default:
			return nil, err
		}
		if p.cur.Mark() == check {
			p.diagnoseAt(SeverityError, p.la(1), "classSpecifier", "no progress")
			p.errorHandling()
		}
	}
	if _, err := p.expect(token.RightBrace, "classSpecifier"); err != nil {
		return nil, err
	}
	p.commit()
	p.finish(spec, first)
	return spec, nil
}

func visibilityOf(k token.Kind) ast.AccessLevel {
	switch k {
	case token.Public:
		return ast.AccessPublic
	case token.Protected:
		return ast.AccessProtected
	case token.Private:
		return ast.AccessPrivate
	}
	return ast.AccessUnknown
}

// baseClause parses ": [virtual] [access] name, ..." up to the class body
func (p *state) baseClause(spec *ast.CompositeTypeSpecifier) error {
	if _, err := p.expect(token.Colon, "baseClause"); err != nil {
		return err
	}

	base := &ast.BaseSpecifier{}
	first := p.la(1)
	var name ast.Name
	flush := func() {
		if name == nil {
			name = p.emptyName()
		}
		base.Name = ast.Attach(base, name)
		p.finish(base, first)
		spec.AddBase(base)
	}

	for {
		switch p.lt(1) {
		case token.Virtual:
			base.Virtual = true
			_, _ = p.consume()
		case token.Public, token.Protected, token.Private:
			t, _ := p.consume()
			base.Visibility = visibilityOf(t.Kind)
		case token.DoubleColon, token.Identifier:
			n, err := p.name()
			if err != nil {
				return err
			}
			name = n
		case token.Comma:
			flush()
			_, _ = p.consume()
			base, name = &ast.BaseSpecifier{}, nil
			first = p.la(1)
		case token.LeftBrace:
			flush()
			return nil
		default:
			return p.backtrack("baseClause", "expected base class name")
		}
	}
}

// enumSpecifier parses "enum [name] { enumerators }"
func (p *state) enumSpecifier() (*ast.EnumerationSpecifier, error) {
	m := p.cur.Mark()
	first, err := p.expect(token.Enum, "enumSpecifier")
	if err != nil {
		return nil, err
	}

	spec := &ast.EnumerationSpecifier{}
	if p.lt(1) == token.Identifier {
		id, _ := p.consume()
		name := &ast.SimpleName{Value: id.Value}
		p.finish(name, id)
		spec.Name = ast.Attach(spec, name)
	} else {
		spec.Name = ast.Attach(spec, p.emptyName())
	}

	if p.lt(1) != token.LeftBrace {
		at := p.la(1)
		p.cur.Backup(m)
		return nil, p.backtrackAt(at, "enumSpecifier", "")
	}
	_, _ = p.consume()

	for p.lt(1) != token.RightBrace {
		id, err := p.expect(token.Identifier, "enumerator")
		if err != nil {
			return nil, err
		}
		en := &ast.Enumerator{}
		name := &ast.SimpleName{Value: id.Value}
		p.finish(name, id)
		en.Name = ast.Attach(en, name)
		if p.lt(1) == token.Assign {
			_, _ = p.consume()
			value, err := p.constantExpression()
			if err != nil {
				return nil, err
			}
			en.Value = ast.Attach(en, value)
		}
		p.finish(en, id)
		spec.AddEnumerator(en)

		if p.lt(1) == token.RightBrace {
			break
		}
		if _, err := p.expect(token.Comma, "enumSpecifier"); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.RightBrace, "enumSpecifier"); err != nil {
		return nil, err
	}
	p.finish(spec, first)
	return spec, nil
}
