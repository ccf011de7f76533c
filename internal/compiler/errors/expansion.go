package errors

import (
	"fmt"

	"github.com/unknot-dev/unknot/internal/compiler/ast"
)

// Expansion error codes (EXP400-499)
const (
	// ErrExpansionOverflow indicates the caller-imposed work-list iteration
	// cap was exceeded before the fixpoint was reached
	ErrExpansionOverflow ErrorCode = "EXP401"
)

// NewExpansionOverflow creates an EXP401 error
func NewExpansionOverflow(loc ast.SourceLocation, declaration, obligation string, limit int) *CompilerError {
	return newError(
		ErrExpansionOverflow,
		"expansion_overflow",
		CategoryExpansion,
		SeverityError,
		fmt.Sprintf("Expansion did not reach a fixpoint within %d iterations", limit),
		loc,
	).WithDeclaration(declaration).
		WithObligation(obligation).
		WithSuggestion("A pattern likely generates ever-larger obligations; check recursive patterns, or raise analysis.expansion_limit")
}
