// Package parser implements a recursive-descent C++ parser with mark/backup
// backtracking. It always produces a translation unit; syntax errors are
// collected as diagnostics and the parser resynchronizes at the next
// declaration or statement boundary.
package parser

import (
	"fmt"
	"runtime/debug"

	"github.com/tliron/commonlog"

	"cppbind/pkg/ast"
	"cppbind/pkg/config"
	"cppbind/pkg/token"
)

// Option configures a Parser
type Option func(*Parser)

// WithConfig sets the dialect and mode switches
func WithConfig(cfg config.Parser) Option {
	return func(p *Parser) { p.cfg = cfg }
}

// WithLogger replaces the default "cppbind.parser" logger
func WithLogger(log commonlog.Logger) Option {
	return func(p *Parser) { p.log = log }
}

// WithStructuralMode skips function bodies, keeping only declarations
func WithStructuralMode(enabled bool) Option {
	return func(p *Parser) { p.cfg.Structural = enabled }
}

// Parser turns sources into translation units. A Parser holds only
// configuration; each Parse call uses fresh state, so one Parser may serve
// several goroutines.
type Parser struct {
	cfg config.Parser
	log commonlog.Logger
}

// New creates a parser with the default configuration
func New(opts ...Option) *Parser {
	p := &Parser{
		cfg: config.Default().Parser,
		log: commonlog.GetLogger("cppbind.parser"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result is the outcome of parsing one source
type Result struct {
	Source      token.Source
	Unit        *ast.TranslationUnit
	Diagnostics []Diagnostic
	Tokens      int
	Nodes       int
	Backtracks  int
}

// HasErrors reports whether any error diagnostic was recorded
func (r *Result) HasErrors() bool {
	return CountErrors(r.Diagnostics) > 0
}

// Parse parses src. The error is non-nil only for a fatal failure; syntax
// errors are reported in Result.Diagnostics next to a best-effort tree.
func (p *Parser) Parse(src token.Source) (*Result, error) {
	opts := []token.Option{token.WithRestrict(p.cfg.Restrict)}
	if p.cfg.MaxTokens > 0 {
		opts = append(opts, token.WithMaxTokens(p.cfg.MaxTokens))
	}
	tz := token.NewTokenizer(src, opts...)
	tokens := tz.Tokenize()

	s := &state{
		cfg:  p.cfg,
		log:  p.log,
		cur:  token.NewCursor(tokens),
		file: src.Path,
	}
	for _, e := range tz.Errors() {
		s.diagnoseAt(SeverityError, e, "tokenizer", e.Value)
	}

	unit, err := s.translationUnit()
	if err != nil {
		return nil, err
	}

	result := &Result{
		Source:      src,
		Unit:        unit,
		Diagnostics: s.diags,
		Tokens:      s.cur.Len() - 1,
		Nodes:       ast.Number(unit),
		Backtracks:  s.backtracks,
	}
	p.log.Debugf("parsed %s: %d tokens, %d nodes, %d backtracks, %d diagnostics",
		src.Path, result.Tokens, result.Nodes, result.Backtracks, len(result.Diagnostics))
	return result, nil
}

// ParseString is a convenience wrapper for in-memory sources
func (p *Parser) ParseString(path, content string) (*Result, error) {
	return p.Parse(token.NewSource(path, content))
}

// strategy selects how a simple declaration resolves the
// constructor/function/variable ambiguity
type strategy int

const (
	tryConstructor strategy = iota
	tryFunction
	tryVariable
)

func (s strategy) String() string {
	switch s {
	case tryConstructor:
		return "constructor"
	case tryFunction:
		return "function"
	default:
		return "variable"
	}
}

// state is the per-parse mutable state. It is used by one goroutine.
type state struct {
	cfg  config.Parser
	log  commonlog.Logger
	cur  *token.Cursor
	file string

	diags []Diagnostic

	// templateIDScopes tracks open '<', '(' and '[' while template
	// arguments are parsed, so a '>' at the matching level ends the list
	templateIDScopes []token.Kind

	// noTemplateArgs reads every '<' after a name as less-than
	noTemplateArgs bool

	// speculating is true while a declaration strategy may still be
	// abandoned for the next one; commit clears it
	speculating bool

	backtracks   int
	budgetWarned bool

	// fatal is set once the parser's own bookkeeping is found corrupt; it
	// ends the parse when the current top-level declaration returns
	fatal *FatalError
}

// Token helpers

func (p *state) la(n int) token.Token { return p.cur.LA(n) }
func (p *state) lt(n int) token.Kind  { return p.cur.LT(n) }

func (p *state) consume() (token.Token, error) {
	return p.cur.Consume()
}

// expect consumes a token of kind k or fails without advancing
func (p *state) expect(k token.Kind, production string) (token.Token, error) {
	t, err := p.cur.ConsumeKind(k)
	if err == nil {
		return t, nil
	}
	if IsEndOfInput(err) {
		return t, ErrEndOfInput
	}
	return t, p.backtrack(production, fmt.Sprintf("expected %s, found %s", describeKind(k), describe(t)))
}

func (p *state) backtrack(production, message string) error {
	return newBacktrack(production, p.la(1), message)
}

func (p *state) backtrackAt(at token.Token, production, message string) error {
	return newBacktrack(production, at, message)
}

// retry restores m after a failed alternative and accounts for the
// backtrack budget.
func (p *state) retry(m token.Mark) {
	p.cur.Backup(m)
	p.backtracks++
	if p.cfg.MaxBacktracks > 0 && p.backtracks > p.cfg.MaxBacktracks && !p.budgetWarned {
		p.budgetWarned = true
		p.log.Warningf("%s: backtrack budget of %d exceeded", p.file, p.cfg.MaxBacktracks)
		p.diagnoseAt(SeverityWarning, p.la(1), "parser",
			fmt.Sprintf("backtrack budget of %d exceeded; parsing may be slow", p.cfg.MaxBacktracks))
	}
}

// commit marks the current declaration strategy as final
func (p *state) commit() {
	p.speculating = false
}

// pushNesting records an open bracket while template arguments are being
// parsed. Parentheses and brackets are only tracked inside an argument list.
func (p *state) pushNesting(k token.Kind) bool {
	if k != token.Less && len(p.templateIDScopes) == 0 {
		return false
	}
	p.templateIDScopes = append(p.templateIDScopes, k)
	return true
}

func (p *state) popNesting(pushed bool) {
	if !pushed {
		return
	}
	if len(p.templateIDScopes) == 0 {
		p.abort(NewFatalError("popNesting", errUnbalancedNesting))
		return
	}
	p.templateIDScopes = p.templateIDScopes[:len(p.templateIDScopes)-1]
}

// abort records the first fatal error of the parse
func (p *state) abort(err *FatalError) {
	if p.fatal == nil {
		p.log.Criticalf("%s: %s", p.file, err)
		p.fatal = err
	}
}

func (p *state) templateArgumentsOpen() bool {
	n := len(p.templateIDScopes)
	return n > 0 && p.templateIDScopes[n-1] == token.Less
}

// Positions

func startOf(t token.Token) ast.Position {
	return ast.Position{Line: t.Line, Column: t.Column, Offset: t.Offset}
}

func endOf(t token.Token) ast.Position {
	return ast.Position{Line: t.Line, Column: t.Column + (t.EndOffset - t.Offset), Offset: t.EndOffset}
}

// finish records the extent of n from first through the last consumed token
func (p *state) finish(n ast.Node, first token.Token) {
	last := p.cur.Last()
	end := endOf(last)
	if last.EndOffset < first.Offset || last.Kind == token.EOF && last.Offset == 0 {
		end = startOf(first)
	}
	ast.SetRange(n, p.file, startOf(first), end)
}

// Diagnostics and recovery

func (p *state) diagnoseAt(sev Severity, at token.Token, production, message string) {
	p.diags = append(p.diags, Diagnostic{
		Severity:   sev,
		Offset:     at.Offset,
		EndOffset:  at.EndOffset,
		Line:       at.Line,
		Column:     at.Column,
		File:       p.file,
		Production: production,
		Message:    message,
	})
}

// failParse records a backtrack that escaped to a recovery point
func (p *state) failParse(err error) {
	if bt, ok := err.(*BacktrackError); ok {
		d := diagnosticFrom(bt)
		if d.File == "" {
			d.File = p.file
		}
		p.diags = append(p.diags, d)
		p.log.Debugf("%s: %s", p.file, d)
		return
	}
	p.diagnoseAt(SeverityError, p.la(1), "", err.Error())
}

// errorHandling skips to the next ';' at depth zero or past the '}' that
// closes a block opened here, stopping before a '}' that belongs to an
// enclosing construct.
func (p *state) errorHandling() {
	depth := 0
	if p.lt(1) == token.LeftBrace {
		depth = 1
	}
	t, err := p.consume()
	if err != nil || t.Kind == token.Semicolon || (t.Kind == token.RightBrace && depth == 0) {
		return
	}
	for {
		switch p.lt(1) {
		case token.EOF:
			return
		case token.Semicolon:
			if depth == 0 {
				_, _ = p.consume()
				return
			}
		case token.LeftBrace:
			depth++
		case token.RightBrace:
			if depth == 1 {
				_, _ = p.consume()
				return
			}
			depth--
			if depth < 0 {
				return
			}
		}
		_, _ = p.consume()
	}
}

// problemDeclaration stands in for the tokens skipped after err
func (p *state) problemDeclaration(err error, start token.Token) *ast.ProblemDeclaration {
	problem := &ast.ProblemDeclaration{Message: problemMessage(err)}
	p.finish(problem, start)
	return problem
}

func problemMessage(err error) string {
	if bt, ok := err.(*BacktrackError); ok && bt.HasProblem() {
		return bt.Message
	}
	return "syntax error"
}

// protect runs a production with panic isolation. A runtime fault is
// logged and turned into a backtrack at the production's first token.
func (p *state) protect(production string, fn func() error) (err error) {
	first := p.la(1)
	depth := len(p.templateIDScopes)
	defer func() {
		if r := recover(); r != nil {
			p.log.Errorf("%s: panic in %s at line %d: %v\n%s", p.file, production, first.Line, r, debug.Stack())
			if len(p.templateIDScopes) > depth {
				p.templateIDScopes = p.templateIDScopes[:depth]
			}
			p.speculating = false
			err = p.backtrackAt(first, production, fmt.Sprintf("internal error: %v", r))
		}
	}()
	return fn()
}

// translationUnit parses declarations until the end of input
func (p *state) translationUnit() (*ast.TranslationUnit, error) {
	unit := &ast.TranslationUnit{}
	first := p.la(1)

	for !p.cur.AtEOF() {
		start := p.la(1)
		m := p.cur.Mark()
		var decl ast.Declaration
		err := p.protect("declaration", func() error {
			var err error
			decl, err = p.declaration()
			return err
		})
		if p.fatal != nil {
			return nil, p.fatal
		}

		switch {
		case err == nil:
			unit.AddDeclaration(decl)
			if p.cur.Mark() == m {
				p.diagnoseAt(SeverityError, start, "translationUnit", "no progress")
				p.errorHandling()
			}
		case IsFatal(err):
			return nil, err
		case IsEndOfInput(err):
			p.diagnoseAt(SeverityError, p.la(1), "translationUnit", "unexpected end of input")
			problem := &ast.ProblemDeclaration{Message: "unexpected end of input"}
			p.finish(problem, start)
			unit.AddDeclaration(problem)
			p.cur.Backup(token.Mark(p.cur.Len() - 1))
		default:
			p.failParse(err)
			p.cur.Backup(m)
			p.errorHandling()
			unit.AddDeclaration(p.problemDeclaration(err, start))
		}
		if n := len(p.templateIDScopes); n > 0 {
			return nil, NewFatalError("translationUnit",
				fmt.Errorf("%w: %d still open after a declaration", errUnbalancedNesting, n))
		}
	}

	p.finish(unit, first)
	return unit, nil
}

func describe(t token.Token) string {
	if t.Kind == token.EOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", t.Value)
}

func describeKind(k token.Kind) string {
	switch k {
	case token.Identifier:
		return "identifier"
	case token.Semicolon:
		return "';'"
	case token.LeftParen:
		return "'('"
	case token.RightParen:
		return "')'"
	case token.LeftBrace:
		return "'{'"
	case token.RightBrace:
		return "'}'"
	case token.Greater:
		return "'>'"
	case token.RightBracket:
		return "']'"
	case token.Colon:
		return "':'"
	default:
		return k.String()
	}
}
