package document

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cppbind/pkg/parser"
	"cppbind/pkg/semantics"
)

const geometry = `namespace geo {
struct Point {
    int x;
    int y;
};
int area(int w, int h);
}
`

func TestNewFromContent(t *testing.T) {
	doc, err := NewFromContent("geo.h", geometry)
	require.NoError(t, err)

	assert.Equal(t, "geo.h", doc.GetFilename())
	assert.Equal(t, geometry, doc.GetContent())
	assert.Equal(t, xxhash.Sum64String(geometry), doc.GetHash())
	assert.Empty(t, doc.GetDiagnostics())
	require.NotNil(t, doc.GetUnit())
	assert.Len(t, doc.GetUnit().Declarations(), 1)
	assert.Same(t, doc.GetUnit(), doc.GetResolver().Unit())
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "geo.h")
	require.NoError(t, os.WriteFile(path, []byte(geometry), 0644))

	doc, err := NewFromFile(path)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(doc.GetFilename()))

	_, err = NewFromFile(filepath.Join(dir, "missing.h"))
	assert.Error(t, err)
}

func TestFindEntity(t *testing.T) {
	doc, err := NewFromContent("geo.h", geometry)
	require.NoError(t, err)

	point, err := doc.FindEntity("geo::Point")
	require.NoError(t, err)
	assert.Equal(t, semantics.KindClass, point.Kind())
	assert.Equal(t, "geo::Point", point.QualifiedName())

	x, err := doc.FindEntity("geo::Point::x")
	require.NoError(t, err)
	assert.Equal(t, semantics.KindField, x.Kind())

	area, err := doc.FindEntity("::geo::area")
	require.NoError(t, err)
	assert.Equal(t, semantics.KindFunction, area.Kind())

	_, err = doc.FindEntity("geo::missing")
	assert.Error(t, err)
	_, err = doc.FindEntity("geo::1bad")
	assert.Error(t, err)
}

func TestFindEntitiesByNameAndKind(t *testing.T) {
	doc, err := NewFromContent("geo.h", geometry)
	require.NoError(t, err)

	xs := doc.FindEntitiesByName("x")
	require.Len(t, xs, 1)
	assert.Equal(t, "geo::Point::x", xs[0].QualifiedName())

	fields := doc.FindEntitiesByKind(semantics.KindField)
	assert.Len(t, fields, 2)

	var names []string
	for _, e := range doc.GetAllEntities() {
		names = append(names, e.Name())
	}
	assert.Subset(t, names, []string{"geo", "Point", "x", "y", "area"})
}

func TestValidate(t *testing.T) {
	doc, err := NewFromContent("count.cpp", "int counter;\nvoid f() { countr = 1; }\n")
	require.NoError(t, err)

	issues, err := doc.Validate(context.Background())
	require.NoError(t, err)
	require.Len(t, issues, 1)

	issue := issues[0]
	assert.Equal(t, parser.SeverityError, issue.Severity)
	assert.Equal(t, 2, issue.Line)
	assert.Contains(t, issue.Message, "countr")
	assert.Equal(t, []string{"counter"}, issue.Suggestions)
	assert.Contains(t, issue.String(), "count.cpp:2:")
}

func TestValidateReportsAmbiguityAsWarning(t *testing.T) {
	doc, err := NewFromContent("bases.cpp", "struct A { int v; };\nstruct B { int v; };\nstruct C : A, B { void f() { v; } };\n")
	require.NoError(t, err)

	issues, err := doc.Validate(context.Background())
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, parser.SeverityWarning, issues[0].Severity)
	assert.Equal(t, 3, issues[0].Line)
	assert.Contains(t, issues[0].Message, "ambiguous")
}

func TestValidateReportsSyntaxErrors(t *testing.T) {
	doc, err := NewFromContent("bad.cpp", "int ;\nint ok;\n")
	require.NoError(t, err)

	issues, err := doc.Validate(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, issues)
	assert.Equal(t, parser.SeverityError, issues[0].Severity)
	assert.Equal(t, 1, issues[0].Line)
}

func TestValidateSkipsUntypedMemberAccess(t *testing.T) {
	doc, err := NewFromContent("member.cpp", "struct S { int v; };\nint f(S s) { return s.v; }\n")
	require.NoError(t, err)

	issues, err := doc.Validate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestValidateReportsQualifiedNameOnce(t *testing.T) {
	doc, err := NewFromContent("q.cpp", "int f() { return missing::value; }\n")
	require.NoError(t, err)

	issues, err := doc.Validate(context.Background())
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "missing")
}

func TestValidateCanceled(t *testing.T) {
	doc, err := NewFromContent("geo.h", geometry)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = doc.Validate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetStats(t *testing.T) {
	doc, err := NewFromContent("geo.h", geometry)
	require.NoError(t, err)

	stats := doc.GetStats()
	assert.Equal(t, 1, stats.Declarations)
	assert.Greater(t, stats.Tokens, 0)
	assert.Greater(t, stats.Nodes, 0)
	assert.Equal(t, 0, stats.Errors)
	assert.GreaterOrEqual(t, stats.Entities, 5)
}
