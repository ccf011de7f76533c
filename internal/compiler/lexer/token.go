package lexer

import "fmt"

// TokenType represents the type of a token in the knot declaration language
type TokenType int

const (
	// TOKEN_EOF marks the end of the token stream.
	TOKEN_EOF TokenType = iota
	// TOKEN_ERROR represents a lexical error encountered during scanning.
	TOKEN_ERROR

	// TOKEN_CAPABILITY marks the 'capability' keyword.
	TOKEN_CAPABILITY
	// TOKEN_IMPL marks the 'impl' keyword.
	TOKEN_IMPL
	// TOKEN_PATTERN marks the 'pattern' keyword.
	TOKEN_PATTERN
	// TOKEN_TRACK marks the 'track' keyword.
	TOKEN_TRACK
	// TOKEN_FOR marks the 'for' keyword.
	TOKEN_FOR
	// TOKEN_WHERE marks the 'where' keyword.
	TOKEN_WHERE
	// TOKEN_REQUIRES marks the 'requires' keyword.
	TOKEN_REQUIRES

	// TOKEN_IDENTIFIER is a type, capability, or variable name.
	TOKEN_IDENTIFIER

	// Punctuation
	TOKEN_LT    // <
	TOKEN_GT    // >
	TOKEN_COMMA // ,
	TOKEN_COLON // :
	TOKEN_PLUS  // +
	TOKEN_DOT   // .
)

// TokenTypeNames maps token types to their string representations
var TokenTypeNames = map[TokenType]string{
	TOKEN_EOF:        "EOF",
	TOKEN_ERROR:      "ERROR",
	TOKEN_CAPABILITY: "CAPABILITY",
	TOKEN_IMPL:       "IMPL",
	TOKEN_PATTERN:    "PATTERN",
	TOKEN_TRACK:      "TRACK",
	TOKEN_FOR:        "FOR",
	TOKEN_WHERE:      "WHERE",
	TOKEN_REQUIRES:   "REQUIRES",
	TOKEN_IDENTIFIER: "IDENTIFIER",
	TOKEN_LT:         "LT",
	TOKEN_GT:         "GT",
	TOKEN_COMMA:      "COMMA",
	TOKEN_COLON:      "COLON",
	TOKEN_PLUS:       "PLUS",
	TOKEN_DOT:        "DOT",
}

// String returns the string representation of a TokenType
func (t TokenType) String() string {
	if name, ok := TokenTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", t)
}

// Token represents a single lexical token in knot source code
type Token struct {
	Type   TokenType // The type of the token
	Lexeme string    // The raw text of the token
	Line   int       // Line number (1-indexed)
	Column int       // Column number (1-indexed)
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("%s '%s' at %d:%d",
		t.Type.String(), t.Lexeme, t.Line, t.Column)
}

// Keywords maps reserved words to their token types
var Keywords = map[string]TokenType{
	"capability": TOKEN_CAPABILITY,
	"impl":       TOKEN_IMPL,
	"pattern":    TOKEN_PATTERN,
	"track":      TOKEN_TRACK,
	"for":        TOKEN_FOR,
	"where":      TOKEN_WHERE,
	"requires":   TOKEN_REQUIRES,
}

// IsKeyword checks if a string is a knot keyword
func IsKeyword(s string) bool {
	_, ok := Keywords[s]
	return ok
}

// LexError represents an error encountered during lexical analysis
type LexError struct {
	Message string // Error message
	Line    int    // Line number where error occurred
	Column  int    // Column number where error occurred
	Lexeme  string // The problematic text
}

// Error implements the error interface
func (e LexError) Error() string {
	return fmt.Sprintf("Lexical error at %d:%d: %s (near '%s')",
		e.Line, e.Column, e.Message, e.Lexeme)
}
