// Package formatter renders parse and resolution results as text or JSON
package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"cppbind/pkg/ast"
	"cppbind/pkg/document"
	"cppbind/pkg/parser"
	"cppbind/pkg/semantics"
)

// Formatter renders outlines, diagnostics, bindings and scopes
type Formatter struct {
	indentSize int
	useSpaces  bool
}

// New creates a new formatter
func New() *Formatter {
	return &Formatter{
		indentSize: 4,
		useSpaces:  true,
	}
}

// WithTabs makes the formatter indent with one tab per level
func (f *Formatter) WithTabs() *Formatter {
	f.useSpaces = false
	return f
}

// getIndent returns the indentation string for the given depth
func (f *Formatter) getIndent(depth int) string {
	if f.useSpaces {
		return strings.Repeat(" ", depth*f.indentSize)
	}
	return strings.Repeat("\t", depth)
}

// OutlineEntry is one declaration of a file outline
type OutlineEntry struct {
	Kind      string         `json:"kind"`
	Signature string         `json:"signature"`
	Line      int            `json:"line"`
	Column    int            `json:"column"`
	Children  []OutlineEntry `json:"children,omitempty"`
}

// Outline builds the declaration tree of unit
func (f *Formatter) Outline(unit *ast.TranslationUnit) []OutlineEntry {
	return outlineAll(unit.Declarations())
}

func outlineAll(decls []ast.Declaration) []OutlineEntry {
	entries := make([]OutlineEntry, 0, len(decls))
	for _, d := range decls {
		entries = append(entries, outline(d))
	}
	return entries
}

func outline(d ast.Declaration) OutlineEntry {
	start := d.Range().Start
	e := OutlineEntry{Line: start.Line, Column: start.Column}

	switch d := d.(type) {
	case *ast.NamespaceDefinition:
		e.Kind = "namespace"
		e.Signature = "namespace " + d.Name.Value
		if d.Name.Value == "" {
			e.Signature = "namespace <anonymous>"
		}
		e.Children = outlineAll(d.Declarations())
	case *ast.NamespaceAlias:
		e.Kind = "namespace-alias"
		e.Signature = "namespace " + d.Alias.Value + " = " + d.Target.String()
	case *ast.UsingDirective:
		e.Kind = "using-directive"
		e.Signature = "using namespace " + d.Namespace.String()
	case *ast.UsingDeclaration:
		e.Kind = "using"
		e.Signature = "using " + d.Name.String()
		if d.Typename {
			e.Signature = "using typename " + d.Name.String()
		}
	case *ast.LinkageSpecification:
		e.Kind = "linkage"
		e.Signature = fmt.Sprintf("extern %q", d.Literal)
		e.Children = outlineAll(d.Declarations())
	case *ast.TemplateDeclaration:
		inner := outline(d.Declaration)
		inner.Signature = templateHead(d.Parameters()) + " " + inner.Signature
		if d.Exported {
			inner.Signature = "export " + inner.Signature
		}
		inner.Line, inner.Column = e.Line, e.Column
		return inner
	case *ast.TemplateSpecialization:
		inner := outline(d.Declaration)
		inner.Signature = "template <> " + inner.Signature
		inner.Line, inner.Column = e.Line, e.Column
		return inner
	case *ast.ExplicitTemplateInstantiation:
		inner := outline(d.Declaration)
		inner.Kind = "instantiation"
		inner.Signature = "template " + inner.Signature
		inner.Line, inner.Column = e.Line, e.Column
		return inner
	case *ast.ASMDeclaration:
		e.Kind = "asm"
		e.Signature = "asm"
	case *ast.VisibilityLabel:
		e.Kind = "access"
		e.Signature = d.Visibility.String() + ":"
	case *ast.FunctionDefinition:
		e.Kind = "function"
		e.Signature = join(ast.NodeString(d.Specifier), ast.NodeString(d.Declarator))
	case *ast.SimpleDeclaration:
		e.Kind, e.Children = simpleKind(d)
		var declarators []string
		for _, dc := range d.Declarators() {
			declarators = append(declarators, ast.NodeString(dc))
		}
		e.Signature = join(ast.NodeString(d.Specifier), strings.Join(declarators, ", "))
	case *ast.ProblemDeclaration:
		e.Kind = "problem"
		e.Signature = d.Message
	}
	return e
}

// simpleKind classifies a simple declaration by what it introduces
func simpleKind(d *ast.SimpleDeclaration) (string, []OutlineEntry) {
	switch s := d.Specifier.(type) {
	case *ast.CompositeTypeSpecifier:
		return s.Key.String(), outlineAll(s.Members())
	case *ast.EnumerationSpecifier:
		var children []OutlineEntry
		for _, en := range s.Enumerators() {
			start := en.Range().Start
			children = append(children, OutlineEntry{
				Kind:      "enumerator",
				Signature: en.Name.Value,
				Line:      start.Line,
				Column:    start.Column,
			})
		}
		return "enum", children
	}

	if d.Specifier != nil && d.Specifier.Flags().IsTypedef() {
		return "typedef", nil
	}
	decls := d.Declarators()
	if len(decls) == 0 {
		if e, ok := d.Specifier.(*ast.ElaboratedTypeSpecifier); ok {
			return e.Kind.String(), nil
		}
		return "declaration", nil
	}
	if fn, ok := decls[0].(*ast.FunctionDeclarator); ok && fn.Nested() == nil {
		return "function", nil
	}
	return "variable", nil
}

func templateHead(params []ast.TemplateParameter) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		switch p := p.(type) {
		case *ast.SimpleTypeTemplateParameter:
			kw := "class"
			if p.Kind == ast.ParameterTypename {
				kw = "typename"
			}
			parts = append(parts, join(kw, p.Name.Value))
		case *ast.TemplatedTypeTemplateParameter:
			parts = append(parts, join(templateHead(p.Parameters())+" class", p.Name.Value))
		case *ast.ParameterDeclaration:
			parts = append(parts, ast.NodeString(p))
		}
	}
	return "template <" + strings.Join(parts, ", ") + ">"
}

func join(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " " + b
}

// FormatOutline renders entries as an indented tree, one declaration per line
func (f *Formatter) FormatOutline(entries []OutlineEntry) string {
	var sb strings.Builder
	f.writeOutline(&sb, entries, 0)
	return sb.String()
}

func (f *Formatter) writeOutline(sb *strings.Builder, entries []OutlineEntry, depth int) {
	for _, e := range entries {
		fmt.Fprintf(sb, "%s%s %s  [%d:%d]\n", f.getIndent(depth), e.Kind, e.Signature, e.Line, e.Column)
		f.writeOutline(sb, e.Children, depth+1)
	}
}

// FormatDiagnostics renders one diagnostic per line
func (f *Formatter) FormatDiagnostics(diags []parser.Diagnostic) string {
	var sb strings.Builder
	for _, d := range diags {
		sb.WriteString(d.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatBindings renders a table of names and what they resolve to
func (f *Formatter) FormatBindings(resolutions []semantics.Resolution) string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LOCATION\tNAME\tKIND\tBINDING")
	for _, res := range resolutions {
		start := res.Name.Range().Start
		fmt.Fprintf(tw, "%d:%d\t%s\t%s\t%s\n",
			start.Line, start.Column, res.Name.String(), res.Binding.Kind(), DescribeBinding(res.Binding))
	}
	tw.Flush()
	return sb.String()
}

// DescribeBinding names the entity a binding denotes, or explains why there
// is none.
func DescribeBinding(b semantics.Binding) string {
	switch b := b.(type) {
	case *semantics.Entity:
		return b.QualifiedName()
	case *semantics.Problem:
		if b.Reason == semantics.Ambiguous {
			var names []string
			for _, c := range b.Candidates {
				names = append(names, DescribeBinding(c))
			}
			return fmt.Sprintf("ambiguous: %s", strings.Join(names, ", "))
		}
		return "unresolved: " + b.Message
	}
	return "<none>"
}

// FormatEntity returns a summary of an entity and its declarations
func (f *Formatter) FormatEntity(e *semantics.Entity) string {
	var result strings.Builder

	result.WriteString(fmt.Sprintf("Kind: %s\n", e.Kind()))
	result.WriteString(fmt.Sprintf("Name: %s\n", e.Name()))
	result.WriteString(fmt.Sprintf("Full Name: %s\n", e.QualifiedName()))
	if e.Owner() != nil {
		result.WriteString(fmt.Sprintf("Scope: %s\n", e.Owner()))
	}
	if def := e.Definition(); def != nil {
		start := def.Range().Start
		result.WriteString(fmt.Sprintf("Definition: %d:%d\n", start.Line, start.Column))
	}

	decls := e.Declarations()
	result.WriteString(fmt.Sprintf("Declarations: %d\n", len(decls)))
	for _, d := range decls {
		start := d.Range().Start
		result.WriteString(fmt.Sprintf("%s%d:%d %s\n", f.getIndent(1), start.Line, start.Column, d.String()))
	}

	return result.String()
}

// FormatScopes renders scopes as a tree following their parent links
func (f *Formatter) FormatScopes(scopes []*semantics.Scope) string {
	children := map[*semantics.Scope][]*semantics.Scope{}
	var roots []*semantics.Scope
	known := map[*semantics.Scope]bool{}
	for _, s := range scopes {
		known[s] = true
	}
	for _, s := range scopes {
		if p := s.Parent(); p != nil && known[p] {
			children[p] = append(children[p], s)
		} else {
			roots = append(roots, s)
		}
	}

	var sb strings.Builder
	var walk func(s *semantics.Scope, depth int)
	walk = func(s *semantics.Scope, depth int) {
		start := s.Node().Range().Start
		fmt.Fprintf(&sb, "%s%s  [%d:%d]", f.getIndent(depth), s, start.Line, start.Column)
		if names := s.Names(); len(names) > 0 {
			sb.WriteString(": " + strings.Join(names, ", "))
		}
		sb.WriteString("\n")
		for _, c := range children[s] {
			walk(c, depth+1)
		}
	}
	for _, s := range roots {
		walk(s, 0)
	}
	return sb.String()
}

// FormatReport renders a workspace check, one issue per line, followed by
// a summary.
func (f *Formatter) FormatReport(report *document.Report) string {
	var sb strings.Builder
	for _, file := range report.Files {
		for _, issue := range file.Issues {
			sb.WriteString(issue.String())
			sb.WriteString("\n")
			if len(issue.Suggestions) > 0 {
				fmt.Fprintf(&sb, "%sdid you mean %s?\n", f.getIndent(1), strings.Join(issue.Suggestions, " or "))
			}
		}
	}
	fmt.Fprintf(&sb, "%d files checked: %d errors, %d warnings\n", len(report.Files), report.Errors, report.Warnings)
	return sb.String()
}

// WriteJSON encodes v as indented JSON
func WriteJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
