package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/commonlog"

	"cppbind/pkg/ast"
	"cppbind/pkg/config"
	"cppbind/pkg/token"
)

func parse(t *testing.T, input string, opts ...Option) *Result {
	t.Helper()
	result, err := New(opts...).ParseString("test.cpp", input)
	require.NoError(t, err)
	require.NotNil(t, result.Unit)
	return result
}

func newTestState(input string) *state {
	src := token.NewSource("test.cpp", input)
	return &state{
		cfg:  config.Default().Parser,
		log:  commonlog.GetLogger("cppbind.parser"),
		cur:  token.NewCursor(token.NewTokenizer(src).Tokenize()),
		file: src.Path,
	}
}

func onlyDeclaration(t *testing.T, r *Result) ast.Declaration {
	t.Helper()
	decls := r.Unit.Declarations()
	require.Len(t, decls, 1)
	return decls[0]
}

func bodyOf(t *testing.T, r *Result) []ast.Statement {
	t.Helper()
	def, ok := onlyDeclaration(t, r).(*ast.FunctionDefinition)
	require.True(t, ok, "expected a function definition")
	return def.Body.Statements()
}

func TestParseSimpleVariable(t *testing.T) {
	r := parse(t, "int x;")
	assert.Empty(t, r.Diagnostics)

	decl, ok := onlyDeclaration(t, r).(*ast.SimpleDeclaration)
	require.True(t, ok)
	spec, ok := decl.Specifier.(*ast.SimpleDeclSpecifier)
	require.True(t, ok)
	assert.Equal(t, ast.TypeInt, spec.Type)

	require.Len(t, decl.Declarators(), 1)
	d, ok := decl.Declarators()[0].(*ast.BasicDeclarator)
	require.True(t, ok)
	assert.Equal(t, "x", d.Name().String())
	assert.Nil(t, d.Initializer())
	assert.Equal(t, 0, decl.Offset())
	assert.Equal(t, 6, decl.EndOffset())
}

func TestParseNamespace(t *testing.T) {
	r := parse(t, "namespace N { int y; }")
	assert.Empty(t, r.Diagnostics)

	ns, ok := onlyDeclaration(t, r).(*ast.NamespaceDefinition)
	require.True(t, ok)
	assert.Equal(t, "N", ns.Name.Value)
	require.Len(t, ns.Declarations(), 1)
	inner, ok := ns.Declarations()[0].(*ast.SimpleDeclaration)
	require.True(t, ok)
	assert.Equal(t, "y", inner.Declarators()[0].Name().String())
	assert.Same(t, ns, inner.Parent())
}

func TestParseRecoversFromMissingDeclarator(t *testing.T) {
	r := parse(t, "int ;\nint z;")

	require.Len(t, r.Diagnostics, 1)
	d := r.Diagnostics[0]
	assert.Equal(t, SeverityError, d.Severity)
	assert.Equal(t, 4, d.Offset)
	assert.Equal(t, "declaration does not declare anything", d.Message)
	assert.True(t, r.HasErrors())

	decls := r.Unit.Declarations()
	require.Len(t, decls, 2)
	assert.IsType(t, &ast.ProblemDeclaration{}, decls[0])
	z, ok := decls[1].(*ast.SimpleDeclaration)
	require.True(t, ok)
	assert.Equal(t, "z", z.Declarators()[0].Name().String())
}

func TestParseEndOfInputInsideClass(t *testing.T) {
	r := parse(t, "int a; class X { int b;")

	require.Len(t, r.Diagnostics, 1)
	assert.Equal(t, "unexpected end of input", r.Diagnostics[0].Message)
	decls := r.Unit.Declarations()
	require.Len(t, decls, 2)
	assert.IsType(t, &ast.SimpleDeclaration{}, decls[0])
	assert.IsType(t, &ast.ProblemDeclaration{}, decls[1])
}

func TestDeclarationStrategies(t *testing.T) {
	t.Run("constructor", func(t *testing.T) {
		r := parse(t, "class A { A(int); };")
		assert.Empty(t, r.Diagnostics)

		decl := onlyDeclaration(t, r).(*ast.SimpleDeclaration)
		class, ok := decl.Specifier.(*ast.CompositeTypeSpecifier)
		require.True(t, ok)
		require.Len(t, class.Members(), 1)

		member, ok := class.Members()[0].(*ast.SimpleDeclaration)
		require.True(t, ok)
		fn, ok := member.Declarators()[0].(*ast.FunctionDeclarator)
		require.True(t, ok)
		assert.Equal(t, "A", fn.Name().String())
		assert.Len(t, fn.Parameters(), 1)
		spec := member.Specifier.(*ast.SimpleDeclSpecifier)
		assert.False(t, spec.HasType())
	})

	t.Run("function pointer", func(t *testing.T) {
		r := parse(t, "int (*fp)(int);")
		assert.Empty(t, r.Diagnostics)

		decl := onlyDeclaration(t, r).(*ast.SimpleDeclaration)
		fn, ok := decl.Declarators()[0].(*ast.FunctionDeclarator)
		require.True(t, ok)
		require.NotNil(t, fn.Nested())
		assert.Len(t, fn.Nested().PointerOperators(), 1)
		assert.Equal(t, "fp", ast.InnermostName(fn).String())
	})

	t.Run("variable with constructor initializer", func(t *testing.T) {
		r := parse(t, "A a(1);")
		assert.Empty(t, r.Diagnostics)

		decl := onlyDeclaration(t, r).(*ast.SimpleDeclaration)
		d, ok := decl.Declarators()[0].(*ast.BasicDeclarator)
		require.True(t, ok)
		assert.IsType(t, &ast.ConstructorInitializer{}, d.Initializer())
		named, ok := decl.Specifier.(*ast.NamedTypeSpecifier)
		require.True(t, ok)
		assert.Equal(t, "A", named.Name.String())
	})

	t.Run("parameter names read as function", func(t *testing.T) {
		r := parse(t, "A a(b);")
		decl := onlyDeclaration(t, r).(*ast.SimpleDeclaration)
		assert.IsType(t, &ast.FunctionDeclarator{}, decl.Declarators()[0])
	})
}

func TestPickFailurePrefersDescribedFailures(t *testing.T) {
	at := token.Token{Kind: token.Semicolon, Value: ";"}
	silent := newBacktrack("classSpecifier", at, "")
	first := newBacktrack("simpleDeclaration", at, "first")
	second := newBacktrack("simpleDeclaration", at, "second")

	assert.Same(t, first, pickFailure([]error{first, second}))
	assert.Same(t, second, pickFailure([]error{silent, second}))
	assert.Same(t, silent, pickFailure([]error{silent}))
	assert.Nil(t, pickFailure(nil))
}

func TestTemplateArgumentDisambiguation(t *testing.T) {
	t.Run("less than", func(t *testing.T) {
		r := parse(t, "bool b = a < c;")
		assert.Empty(t, r.Diagnostics)

		decl := onlyDeclaration(t, r).(*ast.SimpleDeclaration)
		init, ok := decl.Declarators()[0].Initializer().(*ast.InitializerExpression)
		require.True(t, ok)
		bin, ok := init.Value.(*ast.BinaryExpression)
		require.True(t, ok)
		assert.Equal(t, ast.BinaryLess, bin.Op)
	})

	t.Run("template id", func(t *testing.T) {
		r := parse(t, "vector<int> v;")
		assert.Empty(t, r.Diagnostics)

		decl := onlyDeclaration(t, r).(*ast.SimpleDeclaration)
		named := decl.Specifier.(*ast.NamedTypeSpecifier)
		tid, ok := named.Name.(*ast.TemplateID)
		require.True(t, ok)
		assert.Equal(t, "vector", tid.Identifier())
		require.Len(t, tid.Arguments(), 1)
		assert.IsType(t, &ast.TypeID{}, tid.Arguments()[0])
		assert.Equal(t, "v", decl.Declarators()[0].Name().String())
	})

	t.Run("greater than inside parentheses", func(t *testing.T) {
		r := parse(t, "A<(1 > 2)> x;")
		assert.Empty(t, r.Diagnostics)

		decl := onlyDeclaration(t, r).(*ast.SimpleDeclaration)
		tid := decl.Specifier.(*ast.NamedTypeSpecifier).Name.(*ast.TemplateID)
		require.Len(t, tid.Arguments(), 1)
		bracketed, ok := tid.Arguments()[0].(*ast.UnaryExpression)
		require.True(t, ok)
		assert.Equal(t, ast.UnaryBracketed, bracketed.Op)
		inner := bracketed.Operand.(*ast.BinaryExpression)
		assert.Equal(t, ast.BinaryGreater, inner.Op)
	})

	t.Run("comparison chain after a closed argument list", func(t *testing.T) {
		r := parse(t, "void g() { int a = 1; a = a < 2 > 1; }")
		assert.Empty(t, r.Diagnostics)

		body := bodyOf(t, r)
		require.Len(t, body, 2)
		stmt, ok := body[1].(*ast.ExpressionStatement)
		require.True(t, ok)
		assign, ok := stmt.Expression.(*ast.BinaryExpression)
		require.True(t, ok)
		assert.Equal(t, ast.BinaryAssign, assign.Op)

		greater, ok := assign.Right.(*ast.BinaryExpression)
		require.True(t, ok)
		assert.Equal(t, ast.BinaryGreater, greater.Op)
		less, ok := greater.Left.(*ast.BinaryExpression)
		require.True(t, ok)
		assert.Equal(t, ast.BinaryLess, less.Op)
		id, ok := less.Left.(*ast.IdExpression)
		require.True(t, ok)
		assert.IsType(t, &ast.SimpleName{}, id.Name)
	})
}

func TestNewExpressions(t *testing.T) {
	r := parse(t, "void f() { p = new (buf) T(1); q = new int[n]; r = new (T); }")
	assert.Empty(t, r.Diagnostics)

	stmts := bodyOf(t, r)
	require.Len(t, stmts, 3)
	newOf := func(s ast.Statement) *ast.NewExpression {
		es, ok := s.(*ast.ExpressionStatement)
		require.True(t, ok)
		assign := es.Expression.(*ast.BinaryExpression)
		n, ok := assign.Right.(*ast.NewExpression)
		require.True(t, ok)
		return n
	}

	placement := newOf(stmts[0])
	require.NotNil(t, placement.Placement)
	assert.Equal(t, "buf", ast.NodeString(placement.Placement))
	assert.True(t, placement.NewTypeID)
	assert.Equal(t, "T", ast.NodeString(placement.Type))
	assert.True(t, placement.HasInit)
	assert.Equal(t, "1", ast.NodeString(placement.Initializer))

	array := newOf(stmts[1])
	assert.Nil(t, array.Placement)
	assert.Equal(t, "int", ast.NodeString(array.Type))
	require.Len(t, array.Dimensions(), 1)
	assert.False(t, array.HasInit)

	parenthesized := newOf(stmts[2])
	assert.Nil(t, parenthesized.Placement)
	assert.False(t, parenthesized.NewTypeID)
	assert.Equal(t, "T", ast.NodeString(parenthesized.Type))
}

func TestStatements(t *testing.T) {
	r := parse(t, `void f() {
	int i = 0;
	for (i = 0; i < 10; i++) {
		if (i) break; else continue;
	}
done:
	goto done;
	return;
}`)
	assert.Empty(t, r.Diagnostics)

	stmts := bodyOf(t, r)
	require.Len(t, stmts, 5)
	assert.IsType(t, &ast.DeclarationStatement{}, stmts[0])
	assert.IsType(t, &ast.LabelStatement{}, stmts[2])
	assert.IsType(t, &ast.GotoStatement{}, stmts[3])
	assert.IsType(t, &ast.ReturnStatement{}, stmts[4])

	loop, ok := stmts[1].(*ast.ForStatement)
	require.True(t, ok)
	assert.IsType(t, &ast.ExpressionStatement{}, loop.Init)
	cond := loop.Condition.(*ast.BinaryExpression)
	assert.Equal(t, ast.BinaryLess, cond.Op)
	assert.Equal(t, "i++", ast.NodeString(loop.Iteration))

	body := loop.Body.(*ast.CompoundStatement)
	require.Len(t, body.Statements(), 1)
	branch := body.Statements()[0].(*ast.IfStatement)
	assert.IsType(t, &ast.BreakStatement{}, branch.Then)
	assert.IsType(t, &ast.ContinueStatement{}, branch.Else)
}

func TestPointerDeclarationStatements(t *testing.T) {
	r := parse(t, "void g() { A * b; x * y = z; c * d + e; }")
	assert.Empty(t, r.Diagnostics)

	stmts := bodyOf(t, r)
	require.Len(t, stmts, 3)

	decl, ok := stmts[0].(*ast.DeclarationStatement)
	require.True(t, ok)
	simple := decl.Declaration.(*ast.SimpleDeclaration)
	assert.Equal(t, "b", simple.Declarators()[0].Name().String())
	assert.Len(t, simple.Declarators()[0].PointerOperators(), 1)

	assert.IsType(t, &ast.DeclarationStatement{}, stmts[1])
	assert.IsType(t, &ast.ExpressionStatement{}, stmts[2])
}

func TestStatementRecovery(t *testing.T) {
	r := parse(t, "void f() { a = ; b = 1; }")

	require.Len(t, r.Diagnostics, 1)
	stmts := bodyOf(t, r)
	require.Len(t, stmts, 2)
	assert.IsType(t, &ast.ProblemStatement{}, stmts[0])
	assert.IsType(t, &ast.ExpressionStatement{}, stmts[1])
}

func TestClassMemberRecovery(t *testing.T) {
	r := parse(t, "class C { int a; int ; int b; }; int after;")

	require.Len(t, r.Diagnostics, 1)
	decls := r.Unit.Declarations()
	require.Len(t, decls, 2)

	class := decls[0].(*ast.SimpleDeclaration).Specifier.(*ast.CompositeTypeSpecifier)
	members := class.Members()
	require.Len(t, members, 3)
	assert.IsType(t, &ast.SimpleDeclaration{}, members[0])
	assert.IsType(t, &ast.ProblemDeclaration{}, members[1])
	assert.IsType(t, &ast.SimpleDeclaration{}, members[2])
}

func TestTemplateDeclarations(t *testing.T) {
	r := parse(t, `template <class T, int N = 3> class Array { T data[N]; };
template <> class Array<int> {};
template class Array<char>;`)
	assert.Empty(t, r.Diagnostics)

	decls := r.Unit.Declarations()
	require.Len(t, decls, 3)

	tmpl, ok := decls[0].(*ast.TemplateDeclaration)
	require.True(t, ok)
	params := tmpl.Parameters()
	require.Len(t, params, 2)
	typeParam, ok := params[0].(*ast.SimpleTypeTemplateParameter)
	require.True(t, ok)
	assert.Equal(t, "T", typeParam.Name.Value)
	assert.IsType(t, &ast.ParameterDeclaration{}, params[1])

	class := tmpl.Declaration.(*ast.SimpleDeclaration).Specifier.(*ast.CompositeTypeSpecifier)
	require.Len(t, class.Members(), 1)
	field := class.Members()[0].(*ast.SimpleDeclaration)
	assert.IsType(t, &ast.ArrayDeclarator{}, field.Declarators()[0])

	assert.IsType(t, &ast.TemplateSpecialization{}, decls[1])
	assert.IsType(t, &ast.ExplicitTemplateInstantiation{}, decls[2])
}

func TestStructuralModeSkipsBodies(t *testing.T) {
	r := parse(t, "void f() { this is not ( valid ; { } } int y;", WithStructuralMode(true))
	assert.Empty(t, r.Diagnostics)

	decls := r.Unit.Declarations()
	require.Len(t, decls, 2)
	def := decls[0].(*ast.FunctionDefinition)
	assert.Empty(t, def.Body.Statements())
	assert.IsType(t, &ast.SimpleDeclaration{}, decls[1])
}

func TestBacktrackBudgetWarning(t *testing.T) {
	cfg := config.Default().Parser
	cfg.MaxBacktracks = 1
	r := parse(t, "bool b = a < c; bool d = e < f;", WithConfig(cfg))

	require.Len(t, r.Diagnostics, 1)
	assert.Equal(t, SeverityWarning, r.Diagnostics[0].Severity)
	assert.False(t, r.HasErrors())
	assert.GreaterOrEqual(t, r.Backtracks, 2)
	assert.Len(t, r.Unit.Declarations(), 2)
}

func TestUnbalancedNestingIsFatal(t *testing.T) {
	t.Run("bracket left open after a declaration", func(t *testing.T) {
		s := newTestState("int x; int y;")
		s.templateIDScopes = []token.Kind{token.LeftParen}

		unit, err := s.translationUnit()
		require.Error(t, err)
		assert.Nil(t, unit)
		assert.True(t, IsFatal(err))
		assert.False(t, IsBacktrack(err))
		assert.True(t, errors.Is(err, errUnbalancedNesting))

		var fe *FatalError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "translationUnit", fe.Production)
		assert.Empty(t, s.diags)
	})

	t.Run("pop without push escapes the strategy union", func(t *testing.T) {
		s := newTestState("int x = 1;")
		s.popNesting(true)

		unit, err := s.translationUnit()
		assert.Nil(t, unit)
		var fe *FatalError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "popNesting", fe.Production)
		assert.False(t, IsBacktrack(err))
		assert.Empty(t, s.diags)
	})
}

func TestFailedProductionRestoresCursor(t *testing.T) {
	t.Run("typeID", func(t *testing.T) {
		s := newTestState("1 + 2")
		before := s.la(1)
		m := s.cur.Mark()

		_, err := s.typeID()
		require.Error(t, err)
		assert.True(t, IsBacktrack(err))
		assert.Equal(t, m, s.cur.Mark())
		assert.Equal(t, before, s.la(1))
	})

	t.Run("template arguments", func(t *testing.T) {
		s := newTestState("a < b ;")
		_, err := s.consume()
		require.NoError(t, err)
		m := s.cur.Mark()

		_, ok, err := s.templateArguments()
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, m, s.cur.Mark())
		assert.Equal(t, token.Less, s.lt(1))
	})

	t.Run("operator name where none is allowed", func(t *testing.T) {
		s := newTestState("A::operator+")
		m := s.cur.Mark()

		_, err := s.name()
		require.Error(t, err)
		assert.True(t, IsBacktrack(err))
		assert.Equal(t, m, s.cur.Mark())
	})
}

func TestExpressionForms(t *testing.T) {
	cases := map[string]string{
		"x = (int) y;":              "x = (int)y",
		"x = static_cast<long>(y);": "x = static_cast<long>(y)",
		"x = sizeof(int);":          "x = sizeof(int)",
		"x = a ? b : c;":            "x = a ? b : c",
		"p->q.r[1](2, 3);":          "p->q.r[1](2, 3)",
		"delete [] p;":              "delete [] p",
		"x = int(3) + !y;":          "x = int(3) + !y",
		"x = a.*m;":                 "x = a .* m",
		"x = -y++;":                 "x = -y++",
		"throw;":                    "throw",
	}
	for input, want := range cases {
		t.Run(input, func(t *testing.T) {
			r := parse(t, "void f() { "+input+" }")
			assert.Empty(t, r.Diagnostics)
			stmts := bodyOf(t, r)
			require.Len(t, stmts, 1)
			es, ok := stmts[0].(*ast.ExpressionStatement)
			require.True(t, ok, "got %T", stmts[0])
			assert.Equal(t, want, ast.NodeString(es.Expression))
		})
	}
}

func TestNumberKind(t *testing.T) {
	assert.Equal(t, ast.LiteralInteger, numberKind("42"))
	assert.Equal(t, ast.LiteralInteger, numberKind("0xFE"))
	assert.Equal(t, ast.LiteralFloat, numberKind("1.5"))
	assert.Equal(t, ast.LiteralFloat, numberKind("1e10"))
	assert.Equal(t, ast.LiteralFloat, numberKind("0x1p3"))
}
