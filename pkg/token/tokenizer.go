package token

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Option configures a Tokenizer
type Option func(*Tokenizer)

// WithRestrict controls whether `restrict` is a keyword. When disabled it
// scans as an ordinary identifier.
func WithRestrict(enabled bool) Option {
	return func(t *Tokenizer) { t.restrict = enabled }
}

// WithMaxTokens sets the maximum number of tokens before the tokenizer gives up
func WithMaxTokens(max int) Option {
	return func(t *Tokenizer) { t.maxTokens = max }
}

// Tokenizer represents the tokenizer state. Whitespace, comments and
// preprocessor lines are consumed but never emitted.
type Tokenizer struct {
	input     string
	file      string
	pos       int // current position in input
	line      int // current line number
	column    int // current column number
	start     int // start position of current token
	startLine int
	startCol  int
	lineStart bool // only whitespace seen since the last newline
	restrict  bool
	tokens    []Token
	errors    []Token
	maxTokens int // Maximum number of tokens to prevent OOM
	maxPos    int // Maximum position to prevent infinite loops
}

// NewTokenizer creates a new tokenizer over src
func NewTokenizer(src Source, opts ...Option) *Tokenizer {
	const maxTokensLimit = 1000000
	t := &Tokenizer{
		input:     src.Content,
		file:      src.Path,
		line:      1,
		column:    1,
		lineStart: true,
		restrict:  true,
		tokens:    make([]Token, 0, len(src.Content)/4+16),
		maxTokens: maxTokensLimit,
		maxPos:    len(src.Content) + 1000,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// next reads the next rune and advances position
func (t *Tokenizer) next() rune {
	if t.pos >= len(t.input) {
		return 0
	}

	r, w := utf8.DecodeRuneInString(t.input[t.pos:])
	t.pos += w

	if r == '\n' {
		t.line++
		t.column = 1
	} else {
		t.column++
	}

	return r
}

// peek returns the next rune without advancing position
func (t *Tokenizer) peek() rune {
	if t.pos >= len(t.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(t.input[t.pos:])
	return r
}

// peekN returns the nth rune ahead (1 based) without advancing position
func (t *Tokenizer) peekN(n int) rune {
	pos := t.pos
	var r rune
	for i := 0; i < n; i++ {
		if pos >= len(t.input) {
			return 0
		}
		var w int
		r, w = utf8.DecodeRuneInString(t.input[pos:])
		pos += w
	}
	return r
}

// accept consumes the next rune if it is r
func (t *Tokenizer) accept(r rune) bool {
	if t.peek() == r {
		t.next()
		return true
	}
	return false
}

// mark records where the current token begins
func (t *Tokenizer) mark() {
	t.start = t.pos
	t.startLine = t.line
	t.startCol = t.column
}

// emit creates a token from the current span and adds it to the tokens slice
func (t *Tokenizer) emit(kind Kind) {
	if len(t.tokens) >= t.maxTokens {
		return
	}
	t.tokens = append(t.tokens, Token{
		Kind:      kind,
		Value:     t.input[t.start:t.pos],
		Offset:    t.start,
		EndOffset: t.pos,
		Line:      t.startLine,
		Column:    t.startCol,
		File:      t.file,
	})
	t.lineStart = false
}

// emitError records a lexical error for the current span
func (t *Tokenizer) emitError(message string) {
	t.errors = append(t.errors, Token{
		Kind:      Error,
		Value:     message,
		Offset:    t.start,
		EndOffset: t.pos,
		Line:      t.startLine,
		Column:    t.startCol,
		File:      t.file,
	})
}

// Tokenize processes the input and returns all tokens, terminated by EOF
func (t *Tokenizer) Tokenize() []Token {
	iterations := 0
	const maxIterations = 10000000 // Prevent infinite loops

	for t.pos < len(t.input) {
		iterations++
		if iterations > maxIterations {
			t.mark()
			t.emitError("tokenizer exceeded maximum iterations")
			break
		}
		if t.pos > t.maxPos {
			t.mark()
			t.emitError("tokenizer position exceeded maximum bounds")
			break
		}
		if len(t.tokens) >= t.maxTokens {
			t.mark()
			t.emitError("too many tokens")
			break
		}

		oldPos := t.pos
		t.mark()
		r := t.next()

		switch {
		case r == '\n':
			t.lineStart = true

		case unicode.IsSpace(r):
			t.scanWhitespace()

		case r == '/' && (t.peek() == '/' || t.peek() == '*'):
			t.scanComment()

		case r == '#' && t.lineStart:
			t.scanDirective()

		case r == '"':
			t.scanString()

		case r == '\'':
			t.scanChar()

		case r == 'L' && (t.peek() == '"' || t.peek() == '\''):
			if t.next() == '"' {
				t.scanString()
			} else {
				t.scanChar()
			}

		case unicode.IsLetter(r) || r == '_':
			t.scanIdentifier()

		case unicode.IsDigit(r) || (r == '.' && unicode.IsDigit(t.peek())):
			t.scanNumber()

		default:
			t.scanOperator(r)
		}

		if t.pos == oldPos {
			t.emitError(fmt.Sprintf("tokenizer stuck at position %d", t.pos))
			t.pos++
		}
	}

	t.mark()
	return append(t.tokens, Token{
		Kind:      EOF,
		Offset:    t.pos,
		EndOffset: t.pos,
		Line:      t.line,
		Column:    t.column,
		File:      t.file,
	})
}

// HasErrors returns true if the tokenizer encountered any errors
func (t *Tokenizer) HasErrors() bool {
	return len(t.errors) > 0
}

// Errors returns all lexical errors in input order
func (t *Tokenizer) Errors() []Token {
	return t.errors
}

// scanWhitespace skips horizontal whitespace
func (t *Tokenizer) scanWhitespace() {
	for {
		r := t.peek()
		if r == 0 || r == '\n' || !unicode.IsSpace(r) {
			return
		}
		t.next()
	}
}

// scanComment skips a line or block comment; the leading '/' is consumed
func (t *Tokenizer) scanComment() {
	if t.accept('/') {
		for {
			r := t.peek()
			if r == '\n' || r == 0 {
				return
			}
			t.next()
		}
	}
	t.next() // '*'
	for {
		r := t.next()
		if r == 0 {
			t.emitError("unterminated block comment")
			return
		}
		if r == '*' && t.peek() == '/' {
			t.next()
			return
		}
	}
}

// scanDirective skips a preprocessor line including backslash continuations
func (t *Tokenizer) scanDirective() {
	for {
		r := t.next()
		switch r {
		case 0:
			return
		case '\\':
			if t.peek() == '\r' {
				t.next()
			}
			if t.peek() == '\n' {
				t.next()
			}
		case '\n':
			t.lineStart = true
			return
		}
	}
}

// scanString scans a string literal; the opening quote is consumed
func (t *Tokenizer) scanString() {
	for {
		r := t.next()
		if r == 0 || r == '\n' {
			t.emitError("unterminated string literal")
			t.emit(String)
			return
		}
		if r == '"' {
			break
		}
		if r == '\\' && t.next() == 0 {
			t.emitError("unterminated string literal")
			t.emit(String)
			return
		}
	}
	t.emit(String)
}

// scanChar scans a character literal; the opening quote is consumed
func (t *Tokenizer) scanChar() {
	count := 0
	const maxCharLength = 16 // multi-character constants are short

	for {
		r := t.next()
		count++
		if count > maxCharLength || r == 0 || r == '\n' {
			t.emitError("unterminated character literal")
			t.emit(CharLiteral)
			return
		}
		if r == '\'' {
			break
		}
		if r == '\\' {
			t.next()
		}
	}
	t.emit(CharLiteral)
}

// scanIdentifier scans an identifier or keyword
func (t *Tokenizer) scanIdentifier() {
	for {
		r := t.peek()
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		t.next()
	}

	kind := Lookup(t.input[t.start:t.pos])
	if kind == Restrict && !t.restrict {
		kind = Identifier
	}
	t.emit(kind)
}

// scanNumber scans integer and floating literals including suffixes
func (t *Tokenizer) scanNumber() {
	first := t.input[t.start]
	hex := false
	if first == '0' && (t.peek() == 'x' || t.peek() == 'X') {
		t.next()
		hex = true
	}
	for {
		r := t.peek()
		switch {
		case unicode.IsDigit(r), r == '.':
			t.next()
		case hex && isHexLetter(r):
			t.next()
		case !hex && (r == 'e' || r == 'E'):
			t.next()
			if p := t.peek(); p == '+' || p == '-' {
				t.next()
			}
		case r == 'u' || r == 'U' || r == 'l' || r == 'L' || (!hex && (r == 'f' || r == 'F')):
			t.next()
		default:
			t.emit(Number)
			return
		}
	}
}

func isHexLetter(r rune) bool {
	return (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// scanOperator scans operators and punctuation; r is already consumed
func (t *Tokenizer) scanOperator(r rune) {
	switch r {
	case '(':
		t.emit(LeftParen)
	case ')':
		t.emit(RightParen)
	case '{':
		t.emit(LeftBrace)
	case '}':
		t.emit(RightBrace)
	case '[':
		t.emit(LeftBracket)
	case ']':
		t.emit(RightBracket)
	case ';':
		t.emit(Semicolon)
	case ',':
		t.emit(Comma)
	case '?':
		t.emit(Question)
	case '~':
		t.emit(Tilde)

	case ':':
		if t.accept(':') {
			t.emit(DoubleColon)
		} else {
			t.emit(Colon)
		}

	case '.':
		switch {
		case t.peek() == '.' && t.peekN(2) == '.':
			t.next()
			t.next()
			t.emit(Ellipsis)
		case t.accept('*'):
			t.emit(DotStar)
		default:
			t.emit(Dot)
		}

	case '=':
		t.emitEither('=', DoubleEquals, Assign)
	case '!':
		t.emitEither('=', NotEquals, Exclamation)
	case '^':
		t.emitEither('=', CaretAssign, Caret)
	case '%':
		t.emitEither('=', PercentAssign, Percent)
	case '*':
		t.emitEither('=', StarAssign, Star)
	case '/':
		t.emitEither('=', SlashAssign, Slash)

	case '<':
		switch {
		case t.accept('='):
			t.emit(LessEqual)
		case t.accept('<'):
			t.emitEither('=', LeftShiftAssign, LeftShift)
		default:
			t.emit(Less)
		}

	case '>':
		switch {
		case t.accept('='):
			t.emit(GreaterEqual)
		case t.accept('>'):
			t.emitEither('=', RightShiftAssign, RightShift)
		default:
			t.emit(Greater)
		}

	case '&':
		switch {
		case t.accept('&'):
			t.emit(DoubleAmp)
		case t.accept('='):
			t.emit(AmpAssign)
		default:
			t.emit(Ampersand)
		}

	case '|':
		switch {
		case t.accept('|'):
			t.emit(DoublePipe)
		case t.accept('='):
			t.emit(PipeAssign)
		default:
			t.emit(Pipe)
		}

	case '+':
		switch {
		case t.accept('+'):
			t.emit(PlusPlus)
		case t.accept('='):
			t.emit(PlusAssign)
		default:
			t.emit(Plus)
		}

	case '-':
		switch {
		case t.accept('-'):
			t.emit(MinusMinus)
		case t.accept('='):
			t.emit(MinusAssign)
		case t.accept('>'):
			t.emitEither('*', ArrowStar, Arrow)
		default:
			t.emit(Minus)
		}

	default:
		t.emitError(fmt.Sprintf("unexpected character: %c", r))
	}
}

// emitEither emits long when the next rune is r, short otherwise
func (t *Tokenizer) emitEither(r rune, long, short Kind) {
	if t.accept(r) {
		t.emit(long)
		return
	}
	t.emit(short)
}
