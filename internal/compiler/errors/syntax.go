package errors

import (
	"fmt"

	"github.com/unknot-dev/unknot/internal/compiler/ast"
)

// Syntax error codes (SYN001-099)
const (
	// ErrInvalidCharacter indicates an unscannable character in the source
	ErrInvalidCharacter ErrorCode = "SYN001"
	// ErrUnexpectedToken indicates an unexpected token was encountered
	ErrUnexpectedToken ErrorCode = "SYN002"
	// ErrExpectedToken indicates a specific token was expected but not found
	ErrExpectedToken ErrorCode = "SYN003"
	// ErrUnexpectedEOF indicates unexpected end of file
	ErrUnexpectedEOF ErrorCode = "SYN004"
)

// NewInvalidCharacter creates a SYN001 error
func NewInvalidCharacter(loc ast.SourceLocation, message string) *CompilerError {
	return newError(
		ErrInvalidCharacter,
		"invalid_character",
		CategorySyntax,
		SeverityError,
		message,
		loc,
	)
}

// NewUnexpectedToken creates a SYN002 error
func NewUnexpectedToken(loc ast.SourceLocation, found, context string) *CompilerError {
	message := fmt.Sprintf("Unexpected token '%s'", found)
	if context != "" {
		message = fmt.Sprintf("Unexpected token '%s' in %s", found, context)
	}

	return newError(
		ErrUnexpectedToken,
		"unexpected_token",
		CategorySyntax,
		SeverityError,
		message,
		loc,
	).WithSuggestion("Declarations start with 'capability', 'impl', 'pattern', or 'track'")
}

// NewExpectedToken creates a SYN003 error
func NewExpectedToken(loc ast.SourceLocation, expected, found string) *CompilerError {
	return newError(
		ErrExpectedToken,
		"expected_token",
		CategorySyntax,
		SeverityError,
		fmt.Sprintf("Expected '%s' but found '%s'", expected, found),
		loc,
	).WithExpected(expected).WithActual(found)
}

// NewUnexpectedEOF creates a SYN004 error
func NewUnexpectedEOF(loc ast.SourceLocation, context string) *CompilerError {
	message := "Unexpected end of file"
	if context != "" {
		message = fmt.Sprintf("Unexpected end of file while parsing %s", context)
	}

	return newError(
		ErrUnexpectedEOF,
		"unexpected_eof",
		CategorySyntax,
		SeverityError,
		message,
		loc,
	).WithSuggestion("Check for an unclosed generic argument list or a trailing comma")
}
