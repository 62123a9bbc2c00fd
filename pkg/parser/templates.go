package parser

import (
	"cppbind/pkg/ast"
	"cppbind/pkg/token"
)

// templateDeclaration parses
//
//	[export] template < parameters > declaration
//	template < > declaration
//	[extern|static|inline] template declaration
func (p *state) templateDeclaration() (ast.Declaration, error) {
	first := p.la(1)
	exported := false
	switch p.lt(1) {
	case token.Export:
		_, _ = p.consume()
		exported = true
	case token.Extern, token.Static, token.Inline:
		_, _ = p.consume()
	}
	if _, err := p.expect(token.Template, "templateDeclaration"); err != nil {
		return nil, err
	}

	if p.lt(1) != token.Less {
		decl, err := p.declaration()
		if err != nil {
			return nil, err
		}
		inst := &ast.ExplicitTemplateInstantiation{}
		inst.Declaration = ast.Attach(inst, decl)
		p.finish(inst, first)
		return inst, nil
	}

	if p.lt(2) == token.Greater {
		_, _ = p.consume()
		_, _ = p.consume()
		decl, err := p.declaration()
		if err != nil {
			return nil, err
		}
		spec := &ast.TemplateSpecialization{}
		spec.Declaration = ast.Attach(spec, decl)
		p.finish(spec, first)
		return spec, nil
	}

	params, err := p.templateParameterList()
	if err != nil {
		return nil, err
	}
	decl, err := p.declaration()
	if err != nil {
		return nil, err
	}
	t := &ast.TemplateDeclaration{Exported: exported}
	for _, param := range params {
		t.AddParameter(param)
	}
	t.Declaration = ast.Attach(t, decl)
	p.finish(t, first)
	return t, nil
}

// templateParameterList parses "< parameter, ... >"
func (p *state) templateParameterList() ([]ast.TemplateParameter, error) {
	if _, err := p.expect(token.Less, "templateParameterList"); err != nil {
		return nil, err
	}
	pushed := p.pushNesting(token.Less)
	defer p.popNesting(pushed)

	var params []ast.TemplateParameter
	for {
		switch p.lt(1) {
		case token.Greater:
			_, _ = p.consume()
			return params, nil
		case token.Comma:
			_, _ = p.consume()
			continue
		}

		var (
			param ast.TemplateParameter
			err   error
		)
		switch {
		case p.isTypeParameter():
			param, err = p.typeParameter()
		case p.lt(1) == token.Template:
			param, err = p.templatedTypeParameter()
		default:
			param, err = p.parameterDeclaration()
		}
		if err != nil {
			return nil, err
		}
		params = append(params, param)

		switch p.lt(1) {
		case token.Comma, token.Greater:
		default:
			return nil, p.backtrack("templateParameterList", "expected ',' or '>', found "+describe(p.la(1)))
		}
	}
}

// isTypeParameter tells "class T" and "typename T = X" from a non-type
// parameter such as "typename T::size_type n".
func (p *state) isTypeParameter() bool {
	if p.lt(1) != token.Class && p.lt(1) != token.Typename {
		return false
	}
	next := p.lt(2)
	if next == token.Identifier {
		next = p.lt(3)
	}
	switch next {
	case token.Comma, token.Greater, token.Assign:
		return true
	}
	return false
}

func (p *state) typeParameter() (*ast.SimpleTypeTemplateParameter, error) {
	first, _ := p.consume()
	param := &ast.SimpleTypeTemplateParameter{Kind: ast.ParameterClass}
	if first.Kind == token.Typename {
		param.Kind = ast.ParameterTypename
	}
	if p.lt(1) == token.Identifier {
		id, _ := p.consume()
		param.Name = ast.Attach(param, p.simpleName(id))
	} else {
		param.Name = ast.Attach(param, p.emptyName())
	}
	if p.lt(1) == token.Assign {
		_, _ = p.consume()
		def, err := p.typeID()
		if err != nil {
			return nil, err
		}
		param.Default = ast.Attach(param, def)
	}
	p.finish(param, first)
	return param, nil
}

// templatedTypeParameter parses "template < ... > class [T] [= X]"
func (p *state) templatedTypeParameter() (*ast.TemplatedTypeTemplateParameter, error) {
	first, _ := p.consume()
	inner, err := p.templateParameterList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Class, "templateParameter"); err != nil {
		return nil, err
	}
	param := &ast.TemplatedTypeTemplateParameter{}
	for _, tp := range inner {
		param.AddParameter(tp)
	}
	if p.lt(1) == token.Identifier {
		id, _ := p.consume()
		param.Name = ast.Attach(param, p.simpleName(id))
	} else {
		param.Name = ast.Attach(param, p.emptyName())
	}
	if p.lt(1) == token.Assign {
		_, _ = p.consume()
		defFirst := p.la(1)
		name, err := p.name()
		if err != nil {
			return nil, err
		}
		id := &ast.IdExpression{}
		id.Name = ast.Attach(id, name)
		p.finish(id, defFirst)
		param.Default = ast.Attach(param, ast.Expression(id))
	}
	p.finish(param, first)
	return param, nil
}
