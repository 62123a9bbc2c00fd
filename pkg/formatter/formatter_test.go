package formatter

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cppbind/pkg/document"
	"cppbind/pkg/parser"
	"cppbind/pkg/semantics"
)

const sample = `namespace geo {
struct Point {
    int x;
};
int area(int w, int h);
}
template <typename T> T id(T v);
`

func load(t *testing.T, content string) *document.Document {
	t.Helper()
	doc, err := document.NewFromContent("sample.h", content)
	require.NoError(t, err)
	return doc
}

func TestOutline(t *testing.T) {
	doc := load(t, sample)
	require.Empty(t, doc.GetDiagnostics())

	entries := New().Outline(doc.GetUnit())
	require.Len(t, entries, 2)

	geo := entries[0]
	assert.Equal(t, "namespace", geo.Kind)
	assert.Equal(t, "namespace geo", geo.Signature)
	assert.Equal(t, 1, geo.Line)
	require.Len(t, geo.Children, 2)

	point := geo.Children[0]
	assert.Equal(t, "struct", point.Kind)
	assert.Equal(t, "struct Point", point.Signature)
	require.Len(t, point.Children, 1)
	assert.Equal(t, "variable", point.Children[0].Kind)
	assert.Equal(t, "int x", point.Children[0].Signature)
	assert.Equal(t, 3, point.Children[0].Line)

	area := geo.Children[1]
	assert.Equal(t, "function", area.Kind)
	assert.Equal(t, "int area(int w, int h)", area.Signature)

	id := entries[1]
	assert.Equal(t, "function", id.Kind)
	assert.Equal(t, "template <typename T> T id(T v)", id.Signature)
	assert.Equal(t, 7, id.Line)
}

func TestOutlineKinds(t *testing.T) {
	doc := load(t, `enum Color { Red, Green };
typedef int Size;
class Fwd;
extern "C" { int c_api(); }
namespace { int hidden; }
using namespace geo;
`)
	entries := New().Outline(doc.GetUnit())
	require.Len(t, entries, 6)

	assert.Equal(t, "enum", entries[0].Kind)
	require.Len(t, entries[0].Children, 2)
	assert.Equal(t, "enumerator", entries[0].Children[1].Kind)
	assert.Equal(t, "Green", entries[0].Children[1].Signature)

	assert.Equal(t, "typedef", entries[1].Kind)
	assert.Equal(t, "class", entries[2].Kind)
	assert.Equal(t, "linkage", entries[3].Kind)
	assert.Equal(t, `extern "C"`, entries[3].Signature)
	require.Len(t, entries[3].Children, 1)
	assert.Equal(t, "namespace <anonymous>", entries[4].Signature)
	assert.Equal(t, "using-directive", entries[5].Kind)
	assert.Equal(t, "using namespace geo", entries[5].Signature)
}

func TestFormatOutline(t *testing.T) {
	doc := load(t, sample)
	f := New()
	text := f.FormatOutline(f.Outline(doc.GetUnit()))

	lines := strings.Split(strings.TrimSpace(text), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "namespace namespace geo  [1:1]", lines[0])
	assert.Equal(t, "    struct struct Point  [2:1]", lines[1])
	assert.Equal(t, "        variable int x  [3:5]", lines[2])

	tabbed := New().WithTabs().FormatOutline(f.Outline(doc.GetUnit()))
	assert.Contains(t, tabbed, "\t\tvariable int x")
}

func TestFormatDiagnostics(t *testing.T) {
	text := New().FormatDiagnostics([]parser.Diagnostic{
		{Severity: parser.SeverityError, Line: 1, Column: 5, File: "a.cpp", Message: "expected ;"},
		{Severity: parser.SeverityWarning, Line: 2, Column: 1, Message: "budget"},
	})
	assert.Equal(t, "a.cpp:1:5: error: expected ;\n2:1: warning: budget\n", text)
}

func TestFormatBindings(t *testing.T) {
	doc := load(t, "int counter;\nint f() { return counter + missing; }\n")
	resolutions, err := doc.Resolve(context.Background())
	require.NoError(t, err)

	table := New().FormatBindings(resolutions)
	lines := strings.Split(strings.TrimSpace(table), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "LOCATION"))
	assert.Contains(t, table, "variable")
	assert.Contains(t, table, "unresolved: not declared in any enclosing scope")
}

func TestDescribeBinding(t *testing.T) {
	doc := load(t, "namespace a { int x; }\nnamespace b { int x; }\nusing namespace a;\nusing namespace b;\nint f() { return x; }\n")
	r := doc.GetResolver()

	var found semantics.Binding
	for _, n := range r.Names() {
		if n.String() == "x" && n.Range().Start.Line == 5 {
			found = r.Resolve(n)
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, "ambiguous: a::x, b::x", DescribeBinding(found))

	e, err := doc.FindEntity("a::x")
	require.NoError(t, err)
	assert.Equal(t, "a::x", DescribeBinding(e))
}

func TestFormatEntity(t *testing.T) {
	doc := load(t, "class C { void f(); };\nvoid C::f() {}\n")
	e, err := doc.FindEntity("C::f")
	require.NoError(t, err)
	_, err = doc.Resolve(context.Background())
	require.NoError(t, err)

	text := New().FormatEntity(e)
	assert.Contains(t, text, "Kind: method\n")
	assert.Contains(t, text, "Full Name: C::f\n")
	assert.Contains(t, text, "Scope: class C\n")
	assert.Contains(t, text, "Definition: 2:6\n")
	assert.Contains(t, text, "Declarations: 2\n")
}

func TestFormatScopes(t *testing.T) {
	doc := load(t, "namespace n { int v; }\nint f(int p) { int local; return p; }\n")
	text := New().FormatScopes(doc.GetResolver().AllScopes())

	lines := strings.Split(strings.TrimSpace(text), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Equal(t, "translation unit  [1:1]: f, n", lines[0])
	assert.Contains(t, text, "    namespace n  [1:1]: v\n")
	assert.Contains(t, text, "local, p")
}

func TestFormatReport(t *testing.T) {
	report := &document.Report{
		Files: []document.FileReport{{
			Path: "a.cpp",
			Issues: []document.ValidationIssue{{
				File:        "a.cpp",
				Severity:    parser.SeverityError,
				Line:        2,
				Column:      12,
				Message:     "countr: not declared in any enclosing scope",
				Suggestions: []string{"counter"},
			}},
		}},
		Errors: 1,
	}
	text := New().FormatReport(report)
	assert.Equal(t, "a.cpp:2:12: error: countr: not declared in any enclosing scope\n"+
		"    did you mean counter?\n"+
		"1 files checked: 1 errors, 0 warnings\n", text)
}

func TestWriteJSON(t *testing.T) {
	doc := load(t, sample)
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, New().Outline(doc.GetUnit())))

	var decoded []OutlineEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "namespace geo", decoded[0].Signature)
	assert.Contains(t, buf.String(), "\n  {")
}
