package errors

import (
	"fmt"

	"github.com/unknot-dev/unknot/internal/compiler/ast"
)

// Declaration error codes (DEC100-199)
const (
	// ErrMalformedSelfType indicates an impl Self type that is not a single
	// name-plus-arguments form
	ErrMalformedSelfType ErrorCode = "DEC101"
	// ErrUnknownCapability indicates an impl or pattern referencing a
	// capability with no capability declaration (warning)
	ErrUnknownCapability ErrorCode = "DEC102"
)

// NewMalformedSelfType creates a DEC101 error. The Self type of an impl must
// reduce to a single unqualified name plus generic arguments; qualified
// paths cannot anchor a constraint graph root.
func NewMalformedSelfType(loc ast.SourceLocation, selfType string) *CompilerError {
	return newError(
		ErrMalformedSelfType,
		"malformed_self_type",
		CategoryDeclaration,
		SeverityError,
		fmt.Sprintf("Malformed Self type '%s'", selfType),
		loc,
	).WithSuggestion("Self types must be a single name plus generic arguments, not a qualified path").
		WithExamples("impl Evaluate for Expr", "impl Evaluate for List<T>")
}

// NewUnknownCapability creates a DEC102 warning
func NewUnknownCapability(loc ast.SourceLocation, capability string) *CompilerError {
	return newError(
		ErrUnknownCapability,
		"unknown_capability",
		CategoryDeclaration,
		SeverityWarning,
		fmt.Sprintf("Capability '%s' is not declared", capability),
		loc,
	).WithActual(capability).
		WithSuggestion(fmt.Sprintf("Add 'capability %s' or check the spelling", capability))
}
