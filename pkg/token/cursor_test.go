package token

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCursor(input string) *Cursor {
	return NewCursor(tokenize(input))
}

func TestCursorLookahead(t *testing.T) {
	c := newTestCursor("int x;")

	assert.Equal(t, Int, c.LT(1))
	assert.Equal(t, Identifier, c.LT(2))
	assert.Equal(t, Semicolon, c.LT(3))
	assert.Equal(t, EOF, c.LT(4))
	assert.Equal(t, EOF, c.LT(40))
	assert.Equal(t, "x", c.LA(2).Value)
}

func TestCursorConsume(t *testing.T) {
	c := newTestCursor("int x")

	tok, err := c.ConsumeKind(Int)
	require.NoError(t, err)
	assert.Equal(t, "int", tok.Value)
	assert.Equal(t, tok, c.Last())

	_, err = c.ConsumeKind(Semicolon)
	var mismatch *MismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, Semicolon, mismatch.Want)
	assert.Equal(t, "x", mismatch.Got.Value)
	assert.Equal(t, Identifier, c.LT(1), "mismatch must not advance")

	_, err = c.Consume()
	require.NoError(t, err)

	_, err = c.Consume()
	assert.ErrorIs(t, err, ErrEndOfInput)
	_, err = c.ConsumeKind(Identifier)
	assert.ErrorIs(t, err, ErrEndOfInput)
	assert.True(t, c.AtEOF())
}

func TestCursorMarkBackupRoundTrip(t *testing.T) {
	c := newTestCursor("class Foo { int x; };")
	_, err := c.Consume()
	require.NoError(t, err)

	before := c.Current()
	m := c.Mark()
	for i := 0; i < 4; i++ {
		_, err := c.Consume()
		require.NoError(t, err)
	}
	assert.NotEqual(t, before, c.Current())

	c.Backup(m)
	assert.Equal(t, before, c.Current())
	assert.Equal(t, before.Offset, c.Current().Offset)
	assert.Equal(t, "class", c.Last().Value)
}

func TestCursorAppendsEOF(t *testing.T) {
	c := NewCursor([]Token{{Kind: Identifier, Value: "a", Offset: 0, EndOffset: 1, Line: 1}})
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, EOF, c.LT(2))
	assert.Equal(t, 1, c.LA(2).Offset)

	empty := NewCursor(nil)
	assert.True(t, empty.AtEOF())
}
