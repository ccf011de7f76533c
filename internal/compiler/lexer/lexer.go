// Package lexer provides lexical analysis for knot source code.
// It tokenizes .knot files into a stream of tokens for the parser.
package lexer

import "fmt"

// Lexer tokenizes knot source code.
//
// Thread Safety: Lexer instances are NOT thread-safe. Each goroutine must
// create its own Lexer instance via New().
type Lexer struct {
	source  string     // Source code to tokenize
	start   int        // Start position of current token
	current int        // Current position in source
	line    int        // Current line number (1-indexed)
	column  int        // Current column number (1-indexed)
	tokens  []Token    // Collected tokens
	errors  []LexError // Collected errors
}

// New creates a new Lexer for the given source code
func New(source string) *Lexer {
	return &Lexer{
		source:  source,
		start:   0,
		current: 0,
		line:    1,
		column:  1,
		tokens:  make([]Token, 0),
		errors:  make([]LexError, 0),
	}
}

// ScanTokens tokenizes the entire source and returns tokens and errors
func (l *Lexer) ScanTokens() ([]Token, []LexError) {
	for !l.isAtEnd() {
		l.start = l.current
		l.scanToken()
	}

	// Add EOF token
	l.tokens = append(l.tokens, Token{
		Type:   TOKEN_EOF,
		Lexeme: "",
		Line:   l.line,
		Column: l.column,
	})

	return l.tokens, l.errors
}

// scanToken processes the next token
func (l *Lexer) scanToken() {
	c := l.advance()

	switch c {
	case '<':
		l.addToken(TOKEN_LT)
	case '>':
		l.addToken(TOKEN_GT)
	case ',':
		l.addToken(TOKEN_COMMA)
	case ':':
		l.addToken(TOKEN_COLON)
	case '+':
		l.addToken(TOKEN_PLUS)
	case '.':
		l.addToken(TOKEN_DOT)
	case '#':
		l.comment()
	case ' ', '\r', '\t':
		// Ignore whitespace
	case '\n':
		l.line++
		l.column = 1
	default:
		if l.isAlpha(c) {
			l.identifier()
		} else {
			l.addError(fmt.Sprintf("Unexpected character: '%c'", c))
		}
	}
}

// comment handles single-line comments starting with #
func (l *Lexer) comment() {
	for l.peek() != '\n' && !l.isAtEnd() {
		l.advance()
	}
}

// identifier handles identifiers and keywords
func (l *Lexer) identifier() {
	for l.isAlphaNumeric(l.peek()) {
		l.advance()
	}

	text := l.source[l.start:l.current]

	tokenType, isKeyword := Keywords[text]
	if !isKeyword {
		tokenType = TOKEN_IDENTIFIER
	}

	l.addToken(tokenType)
}

// Helper methods

// isAtEnd checks if we've reached the end of the source
func (l *Lexer) isAtEnd() bool {
	return l.current >= len(l.source)
}

// advance consumes and returns the current character
func (l *Lexer) advance() byte {
	if l.isAtEnd() {
		return 0
	}
	c := l.source[l.current]
	l.current++
	l.column++
	return c
}

// peek returns the current character without consuming it
func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.current]
}

// isDigit checks if a character is a digit
func (l *Lexer) isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// isAlpha checks if a character is alphabetic or underscore
func (l *Lexer) isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		c == '_'
}

// isAlphaNumeric checks if a character is alphanumeric or underscore
func (l *Lexer) isAlphaNumeric(c byte) bool {
	return l.isAlpha(c) || l.isDigit(c)
}

// addToken adds a token with the current lexeme
func (l *Lexer) addToken(tokenType TokenType) {
	lexeme := l.source[l.start:l.current]
	l.tokens = append(l.tokens, Token{
		Type:   tokenType,
		Lexeme: lexeme,
		Line:   l.line,
		Column: l.column - (l.current - l.start),
	})
}

// addError records a lexical error
func (l *Lexer) addError(message string) {
	lexeme := ""
	if l.start < len(l.source) {
		end := l.current
		if end > l.start+20 {
			end = l.start + 20
		}
		lexeme = l.source[l.start:end]
	}

	l.errors = append(l.errors, LexError{
		Message: message,
		Line:    l.line,
		Column:  l.column - (l.current - l.start),
		Lexeme:  lexeme,
	})
}
