// Package document ties one C++ source file to its parse result and its
// name resolver, and answers the questions the CLI asks about it.
package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/tliron/commonlog"

	"cppbind/pkg/ast"
	"cppbind/pkg/config"
	"cppbind/pkg/parser"
	"cppbind/pkg/semantics"
	"cppbind/pkg/utils"
)

// Option configures how a document is parsed and resolved
type Option func(*options)

type options struct {
	cfg *config.Config
	log commonlog.Logger
}

// WithConfig sets the parser and resolver configuration
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithLogger replaces the default "cppbind.document" logger
func WithLogger(log commonlog.Logger) Option {
	return func(o *options) { o.log = log }
}

// Document represents a parsed C++ file together with its resolver
type Document struct {
	filename string // Original filename (if loaded from file)
	content  string
	hash     uint64 // xxhash of content
	result   *parser.Result
	resolver *semantics.Resolver
	log      commonlog.Logger
}

// NewFromFile creates a new document by loading and parsing a file
func NewFromFile(filename string, opts ...Option) (*Document, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for %s: %w", filename, err)
	}

	return NewFromContent(absPath, string(content), opts...)
}

// NewFromContent creates a new document from content with a given name
func NewFromContent(name, content string, opts ...Option) (*Document, error) {
	o := options{
		cfg: config.Default(),
		log: commonlog.GetLogger("cppbind.document"),
	}
	for _, opt := range opts {
		opt(&o)
	}

	p := parser.New(parser.WithConfig(o.cfg.Parser))
	result, err := p.ParseString(name, content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}

	doc := &Document{
		filename: name,
		content:  content,
		hash:     xxhash.Sum64String(content),
		result:   result,
		resolver: semantics.New(result.Unit, semantics.WithConfig(o.cfg.Resolve)),
		log:      o.log,
	}
	o.log.Debugf("loaded %s (%016x): %d diagnostics", name, doc.hash, len(result.Diagnostics))
	return doc, nil
}

// GetFilename returns the document's filename
func (d *Document) GetFilename() string { return d.filename }

// GetContent returns the source text the document was parsed from
func (d *Document) GetContent() string { return d.content }

// GetHash returns the xxhash of the content
func (d *Document) GetHash() uint64 { return d.hash }

// GetUnit returns the parsed translation unit
func (d *Document) GetUnit() *ast.TranslationUnit { return d.result.Unit }

// GetResult returns the raw parse result
func (d *Document) GetResult() *parser.Result { return d.result }

// GetDiagnostics returns the syntax diagnostics of the parse
func (d *Document) GetDiagnostics() []parser.Diagnostic { return d.result.Diagnostics }

// GetResolver returns the resolver bound to the unit
func (d *Document) GetResolver() *semantics.Resolver { return d.resolver }

// Entity Lookup Methods

// FindEntity finds an entity by its full path (e.g., "MyNamespace::MyClass::myMethod").
// Ambiguous and missing paths are reported as errors.
func (d *Document) FindEntity(path string) (*semantics.Entity, error) {
	ids, err := utils.ParseLookupPath(path)
	if err != nil {
		return nil, err
	}
	switch b := d.resolver.LookupPath(ids).(type) {
	case *semantics.Entity:
		return b, nil
	case *semantics.Problem:
		return nil, fmt.Errorf("%s: %s", path, b.Message)
	}
	return nil, fmt.Errorf("%s: not found", path)
}

// FindEntitiesByName finds all entities with a given name (regardless of scope)
func (d *Document) FindEntitiesByName(name string) []*semantics.Entity {
	var out []*semantics.Entity
	for _, e := range d.resolver.Entities() {
		if e.Name() == name {
			out = append(out, e)
		}
	}
	return out
}

// FindEntitiesByKind returns all entities of a specific kind
func (d *Document) FindEntitiesByKind(kind semantics.Kind) []*semantics.Entity {
	var out []*semantics.Entity
	for _, e := range d.resolver.Entities() {
		if e.Kind() == kind {
			out = append(out, e)
		}
	}
	return out
}

// GetAllEntities returns all entities in the document
func (d *Document) GetAllEntities() []*semantics.Entity {
	return d.resolver.Entities()
}

// Resolution Methods

// Resolve binds every name of the document
func (d *Document) Resolve(ctx context.Context) ([]semantics.Resolution, error) {
	return d.resolver.ResolveAll(ctx)
}

// ValidationIssue is one problem found in a document: a syntax diagnostic
// or a name that does not resolve.
type ValidationIssue struct {
	File        string          `json:"file"`
	Severity    parser.Severity `json:"severity"`
	Line        int             `json:"line"`
	Column      int             `json:"column"`
	Offset      int             `json:"offset"`
	Message     string          `json:"message"`
	Suggestions []string        `json:"suggestions,omitempty"`
}

func (i ValidationIssue) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s", i.File, i.Line, i.Column, i.Severity, i.Message)
}

// Validate returns the syntax diagnostics followed by unresolved and
// ambiguous names, ordered by position. Member accesses that would need
// the type of an expression are not reported.
func (d *Document) Validate(ctx context.Context) ([]ValidationIssue, error) {
	var issues []ValidationIssue
	for _, diag := range d.result.Diagnostics {
		issues = append(issues, ValidationIssue{
			File:     d.filename,
			Severity: diag.Severity,
			Line:     diag.Line,
			Column:   diag.Column,
			Offset:   diag.Offset,
			Message:  diag.Message,
		})
	}

	resolutions, err := d.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	for _, res := range resolutions {
		p, ok := res.Binding.(*semantics.Problem)
		if !ok || p.NeedsType || !d.reportable(res.Name) {
			continue
		}
		start := res.Name.Range().Start
		issue := ValidationIssue{
			File:     d.filename,
			Severity: parser.SeverityError,
			Line:     start.Line,
			Column:   start.Column,
			Offset:   start.Offset,
			Message:  fmt.Sprintf("%s: %s", res.Name.String(), p.Message),
		}
		if p.Reason == semantics.Ambiguous {
			issue.Severity = parser.SeverityWarning
		}
		for _, s := range d.resolver.Suggest(res.Name) {
			issue.Suggestions = append(issue.Suggestions, s.Binding.(*semantics.Entity).QualifiedName())
		}
		issues = append(issues, issue)
	}

	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Offset < issues[j].Offset
	})
	return issues, nil
}

// reportable filters names whose problem is already reported through
// another name: a qualified name or template-id reports through its parts,
// and only the first failing segment of a qualified name counts.
func (d *Document) reportable(n ast.Name) bool {
	switch n.(type) {
	case *ast.QualifiedName, *ast.TemplateID:
		return false
	}
	if q, ok := n.Parent().(*ast.QualifiedName); ok {
		for _, seg := range q.Segments() {
			if seg == n {
				break
			}
			if semantics.IsProblem(d.resolver.Resolve(seg)) {
				return false
			}
		}
	}
	return true
}

// Stats summarizes a document
type Stats struct {
	Tokens       int `json:"tokens"`
	Nodes        int `json:"nodes"`
	Backtracks   int `json:"backtracks"`
	Declarations int `json:"declarations"`
	Entities     int `json:"entities"`
	Errors       int `json:"errors"`
	Warnings     int `json:"warnings"`
}

// GetStats returns parse and declaration counts for the document
func (d *Document) GetStats() *Stats {
	stats := &Stats{
		Tokens:       d.result.Tokens,
		Nodes:        d.result.Nodes,
		Backtracks:   d.result.Backtracks,
		Declarations: len(d.result.Unit.Declarations()),
		Entities:     len(d.resolver.Entities()),
		Errors:       parser.CountErrors(d.result.Diagnostics),
	}
	for _, diag := range d.result.Diagnostics {
		if diag.Severity == parser.SeverityWarning {
			stats.Warnings++
		}
	}
	return stats
}
