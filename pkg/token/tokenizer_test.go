package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kindsOf(tokens []Token) []Kind {
	kinds := make([]Kind, 0, len(tokens))
	for _, t := range tokens {
		kinds = append(kinds, t.Kind)
	}
	return kinds
}

func tokenize(input string, opts ...Option) []Token {
	return NewTokenizer(NewSource("test.cpp", input), opts...).Tokenize()
}

func TestTokenizerBasicTokens(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Kind
	}{
		{
			name:     "simple declaration",
			input:    "int x;",
			expected: []Kind{Int, Identifier, Semicolon, EOF},
		},
		{
			name:     "namespace",
			input:    "namespace N { int y; }",
			expected: []Kind{Namespace, Identifier, LeftBrace, Int, Identifier, Semicolon, RightBrace, EOF},
		},
		{
			name:     "compound assignment operators",
			input:    "a %= b &= c |= d ^= e <<= f >>= g",
			expected: []Kind{Identifier, PercentAssign, Identifier, AmpAssign, Identifier, PipeAssign, Identifier, CaretAssign, Identifier, LeftShiftAssign, Identifier, RightShiftAssign, Identifier, EOF},
		},
		{
			name:     "member pointers and ellipsis",
			input:    "p->*q o.*r f(...)",
			expected: []Kind{Identifier, ArrowStar, Identifier, Identifier, DotStar, Identifier, Identifier, LeftParen, Ellipsis, RightParen, EOF},
		},
		{
			name:     "template closers are not split",
			input:    "A<B<int>> x;",
			expected: []Kind{Identifier, Less, Identifier, Less, Int, RightShift, Identifier, Semicolon, EOF},
		},
		{
			name:     "casts and typeid",
			input:    "static_cast dynamic_cast reinterpret_cast const_cast typeid",
			expected: []Kind{StaticCast, DynamicCast, ReinterpretCast, ConstCast, Typeid, EOF},
		},
		{
			name:     "comments are skipped",
			input:    "int /* block */ x; // trailing\n/// doc\nint y;",
			expected: []Kind{Int, Identifier, Semicolon, Int, Identifier, Semicolon, EOF},
		},
		{
			name:     "preprocessor lines are skipped",
			input:    "#include <vector>\n#define X \\\n  1\nint z;",
			expected: []Kind{Int, Identifier, Semicolon, EOF},
		},
		{
			name:     "wide literals",
			input:    `L"wide" L'c'`,
			expected: []Kind{String, CharLiteral, EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, kindsOf(tokenize(tt.input)))
		})
	}
}

func TestTokenizerNumbers(t *testing.T) {
	tests := []struct {
		input string
		value string
	}{
		{"42", "42"},
		{"0x1Fu", "0x1Fu"},
		{"3.14f", "3.14f"},
		{"1e-5", "1e-5"},
		{".5", ".5"},
		{"10UL", "10UL"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := tokenize(tt.input)
			require.Len(t, tokens, 2)
			assert.Equal(t, Number, tokens[0].Kind)
			assert.Equal(t, tt.value, tokens[0].Value)
		})
	}
}

func TestTokenizerPositions(t *testing.T) {
	tokens := tokenize("int x;\n  int ;")
	require.Len(t, tokens, 6)

	semi := tokens[4]
	assert.Equal(t, Semicolon, semi.Kind)
	assert.Equal(t, 13, semi.Offset)
	assert.Equal(t, 14, semi.EndOffset)
	assert.Equal(t, 2, semi.Line)
	assert.Equal(t, 7, semi.Column)
	assert.Equal(t, "test.cpp", semi.File)
}

func TestTokenizerRestrictDialect(t *testing.T) {
	assert.Equal(t, Restrict, tokenize("restrict")[0].Kind)
	assert.Equal(t, Identifier, tokenize("restrict", WithRestrict(false))[0].Kind)
}

func TestTokenizerErrors(t *testing.T) {
	tok := NewTokenizer(NewSource("bad.cpp", "int @x; \"open"))
	tokens := tok.Tokenize()

	require.True(t, tok.HasErrors())
	errs := tok.Errors()
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Value, "unexpected character")
	assert.Equal(t, 4, errs[0].Offset)
	assert.Contains(t, errs[1].Value, "unterminated string")
	assert.Equal(t, EOF, tokens[len(tokens)-1].Kind)
}

func TestTokenizerMaxTokens(t *testing.T) {
	tok := NewTokenizer(NewSource("big.cpp", "a b c d e f g"), WithMaxTokens(3))
	tokens := tok.Tokenize()

	assert.Len(t, tokens, 4)
	assert.True(t, tok.HasErrors())
}

func TestSourceIdentity(t *testing.T) {
	a := NewSource("a.cpp", "int x;")
	b := NewSource("a.cpp", "int x;")
	c := NewSource("b.cpp", "int x;")

	assert.Equal(t, a.ID, b.ID)
	assert.NotEqual(t, a.ID, c.ID)
	assert.Equal(t, a.Fingerprint(), c.Fingerprint())
}
