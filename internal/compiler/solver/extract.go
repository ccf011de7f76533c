package solver

import (
	"github.com/unknot-dev/unknot/internal/compiler/errors"
	"github.com/unknot-dev/unknot/internal/compiler/graph"
)

// Extract builds a declaration's constraint graph. The root node carries
// the declaration's own obligation and every atomic precondition becomes a
// direct child with a root edge, in extraction order. Tracked obligations
// are additionally seeded into the shared work list.
//
// The Self type must be a single name plus generic arguments; a qualified
// head is a fatal MalformedSelfType.
func Extract(decl *Declaration, tracked map[string]bool, work *WorkList) (*graph.ConstraintGraph, *errors.CompilerError) {
	if decl.SelfType.Qualified() {
		return nil, errors.NewMalformedSelfType(decl.Loc, decl.SelfType.String()).
			WithFile(decl.File).
			WithDeclaration(decl.String())
	}

	g := graph.New(decl.RootObligation())
	for _, ob := range decl.Obligations() {
		child := g.InsertNode(ob)
		if err := g.InsertEdge(g.Root(), child); err != nil {
			return nil, errors.NewGraphLookupFailure(decl.Loc, decl.String(), err.Error()).
				WithFile(decl.File)
		}
		if tracked[ob.Capability.Name] {
			work.Push(ob)
		}
	}

	return g, nil
}
