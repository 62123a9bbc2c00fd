package token

import (
	"errors"
	"fmt"
)

// ErrEndOfInput is returned when a token is requested past the end of the stream
var ErrEndOfInput = errors.New("end of input")

// MismatchError reports that the current token is not the expected kind
type MismatchError struct {
	Want Kind
	Got  Token
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("expected %s, found %s at line %d", e.Want, e.Got, e.Got.Line)
}

// Mark is a saved cursor position
type Mark int

// Cursor provides mark/backup navigation over a tokenized stream.
// It is not safe for concurrent use.
type Cursor struct {
	tokens  []Token // always terminated by an EOF token
	current int     // index of the next token to consume
}

// NewCursor creates a cursor over tokens. A trailing EOF is appended when
// the slice does not already end with one.
func NewCursor(tokens []Token) *Cursor {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != EOF {
		eof := Token{Kind: EOF}
		if len(tokens) > 0 {
			last := tokens[len(tokens)-1]
			eof.Offset, eof.EndOffset = last.EndOffset, last.EndOffset
			eof.Line, eof.File = last.Line, last.File
		}
		tokens = append(tokens[:len(tokens):len(tokens)], eof)
	}
	return &Cursor{tokens: tokens}
}

// LA returns the token n positions ahead; LA(1) is the current token.
// Positions past the end return the EOF token.
func (c *Cursor) LA(n int) Token {
	i := c.current + n - 1
	if i < 0 {
		i = 0
	}
	if i >= len(c.tokens) {
		return c.tokens[len(c.tokens)-1]
	}
	return c.tokens[i]
}

// LT returns the kind of LA(n)
func (c *Cursor) LT(n int) Kind {
	return c.LA(n).Kind
}

// Current returns the token that Consume would return
func (c *Cursor) Current() Token {
	return c.LA(1)
}

// AtEOF reports whether every token has been consumed
func (c *Cursor) AtEOF() bool {
	return c.LT(1) == EOF
}

// Consume returns the current token and advances past it
func (c *Cursor) Consume() (Token, error) {
	t := c.LA(1)
	if t.Kind == EOF {
		return t, ErrEndOfInput
	}
	c.current++
	return t, nil
}

// ConsumeKind consumes the current token if it has kind k. At EOF it
// returns ErrEndOfInput, otherwise a *MismatchError without advancing.
func (c *Cursor) ConsumeKind(k Kind) (Token, error) {
	t := c.LA(1)
	if t.Kind == EOF && k != EOF {
		return t, ErrEndOfInput
	}
	if t.Kind != k {
		return t, &MismatchError{Want: k, Got: t}
	}
	c.current++
	return t, nil
}

// Last returns the most recently consumed token, or the zero Token
func (c *Cursor) Last() Token {
	if c.current == 0 {
		return Token{}
	}
	return c.tokens[c.current-1]
}

// Mark saves the current position
func (c *Cursor) Mark() Mark {
	return Mark(c.current)
}

// Backup restores a position saved by Mark
func (c *Cursor) Backup(m Mark) {
	switch {
	case m < 0:
		c.current = 0
	case int(m) >= len(c.tokens):
		c.current = len(c.tokens) - 1
	default:
		c.current = int(m)
	}
}

// Len returns the number of tokens including the EOF terminator
func (c *Cursor) Len() int {
	return len(c.tokens)
}
