package errors

import (
	"fmt"

	"github.com/unknot-dev/unknot/internal/compiler/ast"
)

// Resolution error codes (RES200-299)
const (
	// ErrUnresolvedObligation indicates an obligation whose type matches no
	// registered pattern and names no reachable declaration
	ErrUnresolvedObligation ErrorCode = "RES201"
	// ErrAmbiguousTarget indicates an obligation that resolves against more
	// than one pattern/declaration target
	ErrAmbiguousTarget ErrorCode = "RES202"
)

// NewUnresolvedObligation creates a RES201 error
func NewUnresolvedObligation(loc ast.SourceLocation, declaration, obligation string) *CompilerError {
	return newError(
		ErrUnresolvedObligation,
		"unresolved_obligation",
		CategoryResolution,
		SeverityError,
		fmt.Sprintf("Cannot resolve obligation '%s'", obligation),
		loc,
	).WithDeclaration(declaration).
		WithObligation(obligation).
		WithSuggestion("Declare a pattern for this type shape or an impl whose Self type matches it")
}

// NewAmbiguousTarget creates a RES202 error
func NewAmbiguousTarget(loc ast.SourceLocation, declaration, obligation string, targets []string) *CompilerError {
	message := fmt.Sprintf("Obligation '%s' matches more than one target", obligation)

	err := newError(
		ErrAmbiguousTarget,
		"ambiguous_target",
		CategoryResolution,
		SeverityError,
		message,
		loc,
	).WithDeclaration(declaration).
		WithObligation(obligation).
		WithSuggestion("Remove or narrow one of the matching patterns/impls so the obligation resolves uniquely")

	if len(targets) > 0 {
		err = err.WithExamples(targets...)
	}
	return err
}
