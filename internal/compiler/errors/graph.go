package errors

import (
	"fmt"

	"github.com/unknot-dev/unknot/internal/compiler/ast"
)

// Graph error codes (GRA300-399)
const (
	// ErrGraphLookupFailure indicates an edge or root reference out of range.
	// This is an internal invariant violation and should never surface to a
	// correct caller.
	ErrGraphLookupFailure ErrorCode = "GRA301"
)

// NewGraphLookupFailure creates a GRA301 error
func NewGraphLookupFailure(loc ast.SourceLocation, declaration, detail string) *CompilerError {
	return newError(
		ErrGraphLookupFailure,
		"graph_lookup_failure",
		CategoryGraph,
		SeverityError,
		fmt.Sprintf("Constraint graph invariant violated: %s", detail),
		loc,
	).WithDeclaration(declaration).
		WithSuggestion("This is an analyzer bug; please report it with the input that triggered it")
}
