// Package token defines C++ tokens, the tokenizer that produces them and the
// cursor the parser uses to walk them with mark/backup checkpoints.
package token

import "fmt"

// Kind represents the kind of a token
type Kind int

const (
	EOF Kind = iota
	Error

	// Literals
	Identifier
	Number
	String
	CharLiteral

	// Operators and punctuation
	LeftParen        // (
	RightParen       // )
	LeftBrace        // {
	RightBrace       // }
	LeftBracket      // [
	RightBracket     // ]
	Semicolon        // ;
	Colon            // :
	DoubleColon      // ::
	Comma            // ,
	Dot              // .
	DotStar          // .*
	Ellipsis         // ...
	Arrow            // ->
	ArrowStar        // ->*
	Assign           // =
	DoubleEquals     // ==
	NotEquals        // !=
	Less             // <
	Greater          // >
	LessEqual        // <=
	GreaterEqual     // >=
	Ampersand        // &
	DoubleAmp        // &&
	Pipe             // |
	DoublePipe       // ||
	Caret            // ^
	Tilde            // ~
	Exclamation      // !
	Question         // ?
	Plus             // +
	Minus            // -
	Star             // *
	Slash            // /
	Percent          // %
	PlusPlus         // ++
	MinusMinus       // --
	PlusAssign       // +=
	MinusAssign      // -=
	StarAssign       // *=
	SlashAssign      // /=
	PercentAssign    // %=
	AmpAssign        // &=
	PipeAssign       // |=
	CaretAssign      // ^=
	LeftShift        // <<
	RightShift       // >>
	LeftShiftAssign  // <<=
	RightShiftAssign // >>=

	// Keywords
	KeywordStart // Marker for start of keywords
	Asm
	Auto
	Bool
	Break
	Case
	Catch
	Char
	Class
	Const
	ConstCast
	Continue
	Default
	Delete
	Do
	Double
	DynamicCast
	Else
	Enum
	Explicit
	Export
	Extern
	False
	Float
	For
	Friend
	Goto
	If
	Inline
	Int
	Long
	Mutable
	Namespace
	New
	Nullptr
	Operator
	Private
	Protected
	Public
	Register
	ReinterpretCast
	Restrict
	Return
	Short
	Signed
	Sizeof
	Static
	StaticCast
	Struct
	Switch
	Template
	This
	Throw
	True
	Try
	Typedef
	Typeid
	Typename
	Union
	Unsigned
	Using
	Virtual
	Void
	Volatile
	WcharT
	While
	KeywordEnd // Marker for end of keywords
)

// Token is a single lexical token. Tokens are values and never change once
// the tokenizer has produced them.
type Token struct {
	Kind      Kind
	Value     string
	Offset    int
	EndOffset int
	Line      int
	Column    int
	File      string
}

// IsKeyword reports whether the token is a reserved word
func (t Token) IsKeyword() bool {
	return t.Kind > KeywordStart && t.Kind < KeywordEnd
}

// IsOperator reports whether the token can follow the operator keyword
// in an operator function name.
func (t Token) IsOperator() bool {
	switch t.Kind {
	case New, Delete, Plus, Minus, Star, Slash, Percent, Caret, Ampersand,
		Pipe, Tilde, Exclamation, Assign, Less, Greater, PlusAssign,
		MinusAssign, StarAssign, SlashAssign, PercentAssign, CaretAssign,
		AmpAssign, PipeAssign, LeftShift, RightShift, LeftShiftAssign,
		RightShiftAssign, DoubleEquals, NotEquals, LessEqual, GreaterEqual,
		DoubleAmp, DoublePipe, PlusPlus, MinusMinus, Comma, ArrowStar, Arrow:
		return true
	}
	return false
}

// IsPointer reports whether the token starts a pointer operator
func (t Token) IsPointer() bool {
	return t.Kind == Star || t.Kind == Ampersand
}

// LooksLikeExpression reports whether the token can only start an
// expression, never a parameter declaration. Declarators use it to tell a
// constructor initializer from a parameter list.
func (t Token) LooksLikeExpression() bool {
	switch t.Kind {
	case Number, String, CharLiteral, True, False, This, Nullptr,
		Ampersand, Dot, LeftParen, Minus, Star, Plus, Exclamation, Tilde:
		return true
	}
	return false
}

// String returns a string representation of the token
func (t Token) String() string {
	switch t.Kind {
	case EOF:
		return "EOF"
	case Error:
		return fmt.Sprintf("ERROR:%s", t.Value)
	case Identifier:
		return fmt.Sprintf("IDENTIFIER:%s", t.Value)
	case Number:
		return fmt.Sprintf("NUMBER:%s", t.Value)
	case String:
		return fmt.Sprintf("STRING:%s", t.Value)
	case CharLiteral:
		return fmt.Sprintf("CHAR:%s", t.Value)
	default:
		if t.IsKeyword() {
			return fmt.Sprintf("KEYWORD:%s", t.Value)
		}
		return fmt.Sprintf("%s:%s", t.Kind, t.Value)
	}
}

// String returns the debugging name of a token kind
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	for word, kw := range keywords {
		if kw == k {
			return word
		}
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// kindNames maps token kinds to their names for debugging
var kindNames = map[Kind]string{
	EOF:              "EOF",
	Error:            "ERROR",
	Identifier:       "IDENTIFIER",
	Number:           "NUMBER",
	String:           "STRING",
	CharLiteral:      "CHAR",
	LeftParen:        "LEFT_PAREN",
	RightParen:       "RIGHT_PAREN",
	LeftBrace:        "LEFT_BRACE",
	RightBrace:       "RIGHT_BRACE",
	LeftBracket:      "LEFT_BRACKET",
	RightBracket:     "RIGHT_BRACKET",
	Semicolon:        "SEMICOLON",
	Colon:            "COLON",
	DoubleColon:      "DOUBLE_COLON",
	Comma:            "COMMA",
	Dot:              "DOT",
	DotStar:          "DOT_STAR",
	Ellipsis:         "ELLIPSIS",
	Arrow:            "ARROW",
	ArrowStar:        "ARROW_STAR",
	Assign:           "ASSIGN",
	DoubleEquals:     "DOUBLE_EQUALS",
	NotEquals:        "NOT_EQUALS",
	Less:             "LESS",
	Greater:          "GREATER",
	LessEqual:        "LESS_EQUAL",
	GreaterEqual:     "GREATER_EQUAL",
	Ampersand:        "AMPERSAND",
	DoubleAmp:        "DOUBLE_AMP",
	Pipe:             "PIPE",
	DoublePipe:       "DOUBLE_PIPE",
	Caret:            "CARET",
	Tilde:            "TILDE",
	Exclamation:      "EXCLAMATION",
	Question:         "QUESTION",
	Plus:             "PLUS",
	Minus:            "MINUS",
	Star:             "STAR",
	Slash:            "SLASH",
	Percent:          "PERCENT",
	PlusPlus:         "PLUS_PLUS",
	MinusMinus:       "MINUS_MINUS",
	PlusAssign:       "PLUS_ASSIGN",
	MinusAssign:      "MINUS_ASSIGN",
	StarAssign:       "STAR_ASSIGN",
	SlashAssign:      "SLASH_ASSIGN",
	PercentAssign:    "PERCENT_ASSIGN",
	AmpAssign:        "AMP_ASSIGN",
	PipeAssign:       "PIPE_ASSIGN",
	CaretAssign:      "CARET_ASSIGN",
	LeftShift:        "LEFT_SHIFT",
	RightShift:       "RIGHT_SHIFT",
	LeftShiftAssign:  "LEFT_SHIFT_ASSIGN",
	RightShiftAssign: "RIGHT_SHIFT_ASSIGN",
}

// Keywords map for quick lookup
var keywords = map[string]Kind{
	"asm":              Asm,
	"auto":             Auto,
	"bool":             Bool,
	"break":            Break,
	"case":             Case,
	"catch":            Catch,
	"char":             Char,
	"class":            Class,
	"const":            Const,
	"const_cast":       ConstCast,
	"continue":         Continue,
	"default":          Default,
	"delete":           Delete,
	"do":               Do,
	"double":           Double,
	"dynamic_cast":     DynamicCast,
	"else":             Else,
	"enum":             Enum,
	"explicit":         Explicit,
	"export":           Export,
	"extern":           Extern,
	"false":            False,
	"float":            Float,
	"for":              For,
	"friend":           Friend,
	"goto":             Goto,
	"if":               If,
	"inline":           Inline,
	"int":              Int,
	"long":             Long,
	"mutable":          Mutable,
	"namespace":        Namespace,
	"new":              New,
	"nullptr":          Nullptr,
	"operator":         Operator,
	"private":          Private,
	"protected":        Protected,
	"public":           Public,
	"register":         Register,
	"reinterpret_cast": ReinterpretCast,
	"restrict":         Restrict,
	"return":           Return,
	"short":            Short,
	"signed":           Signed,
	"sizeof":           Sizeof,
	"static":           Static,
	"static_cast":      StaticCast,
	"struct":           Struct,
	"switch":           Switch,
	"template":         Template,
	"this":             This,
	"throw":            Throw,
	"true":             True,
	"try":              Try,
	"typedef":          Typedef,
	"typeid":           Typeid,
	"typename":         Typename,
	"union":            Union,
	"unsigned":         Unsigned,
	"using":            Using,
	"virtual":          Virtual,
	"void":             Void,
	"volatile":         Volatile,
	"wchar_t":          WcharT,
	"while":            While,
}

// Lookup returns the keyword kind for word, or Identifier
func Lookup(word string) Kind {
	if k, ok := keywords[word]; ok {
		return k
	}
	return Identifier
}
