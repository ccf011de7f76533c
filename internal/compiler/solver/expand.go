package solver

import (
	"fmt"

	"github.com/unknot-dev/unknot/internal/compiler/errors"
	"github.com/unknot-dev/unknot/internal/compiler/graph"
	"github.com/unknot-dev/unknot/internal/compiler/pattern"
	"github.com/unknot-dev/unknot/internal/compiler/types"
)

// Expander drives the fixpoint: it pops tracked obligations off the work
// list and extends every graph containing them with the derived
// obligations, until the list drains or a resolution error aborts the run.
//
// Insertion discipline: a derived obligation that already has a
// structurally equal node in a graph reuses that node, and an edge is added
// only if the identical edge is not already present. This is what lets
// mutually recursive declarations close into actual graph cycles instead of
// unrolling into fresh chains.
type Expander struct {
	decls      []*Declaration
	references []*pattern.Pattern
	graphs     []*graph.ConstraintGraph
	patterns   *pattern.Registry
	work       *WorkList
	tracked    map[string]bool
	limit      int
	steps      int
}

// NewExpander prepares an expansion over the batch. decls and graphs are
// parallel slices in batch order. limit caps the number of work list pops;
// 0 means unbounded.
func NewExpander(decls []*Declaration, graphs []*graph.ConstraintGraph, patterns *pattern.Registry, work *WorkList, tracked map[string]bool, limit int) *Expander {
	references := make([]*pattern.Pattern, len(decls))
	for i, decl := range decls {
		references[i] = decl.asPattern()
	}
	return &Expander{
		decls:      decls,
		references: references,
		graphs:     graphs,
		patterns:   patterns,
		work:       work,
		tracked:    tracked,
		limit:      limit,
	}
}

// Run drains the work list. Returns the first fatal error encountered
// under work-list processing order, or nil when the fixpoint is reached.
func (e *Expander) Run() *errors.CompilerError {
	for {
		ob, ok := e.work.Pop()
		if !ok {
			return nil
		}
		e.steps++

		// Locate the obligation in each graph, batch order. Graphs
		// without it are skipped; the first containing declaration is
		// the diagnostic identity for anything that goes wrong here.
		var containing []int
		for i, g := range e.graphs {
			if _, found := g.FindNode(ob); found {
				containing = append(containing, i)
			}
		}
		if len(containing) == 0 {
			continue
		}
		owner := e.decls[containing[0]]

		if e.limit > 0 && e.steps > e.limit {
			return errors.NewExpansionOverflow(owner.Loc, owner.String(), ob.String(), e.limit).
				WithFile(owner.File)
		}

		derived, err := e.resolve(ob, owner)
		if err != nil {
			return err
		}

		for _, idx := range containing {
			g := e.graphs[idx]
			from, _ := g.FindNode(ob)
			for _, d := range derived {
				to, found := g.FindNode(d)
				if !found {
					to = g.InsertNode(d)
				}
				if g.HasEdge(from, to) {
					continue
				}
				if insertErr := g.InsertEdge(from, to); insertErr != nil {
					decl := e.decls[idx]
					return errors.NewGraphLookupFailure(decl.Loc, decl.String(), insertErr.Error()).
						WithFile(decl.File)
				}
			}
		}

		for _, d := range derived {
			if e.tracked[d.Capability.Name] {
				e.work.Push(d)
			}
		}
	}
}

// Steps returns the number of obligations popped so far
func (e *Expander) Steps() int {
	return e.steps
}

// resolve produces the derived obligations for one popped obligation.
// Precedence: a pattern match and a unifying declaration together are
// ambiguous, as are two unifying declarations; a single source wins.
func (e *Expander) resolve(ob types.Obligation, owner *Declaration) ([]types.Obligation, *errors.CompilerError) {
	pat, patBinding := e.patterns.Resolve(ob)

	var matches []int
	var bindings []pattern.Substitution
	for i, ref := range e.references {
		if binding, ok := ref.Match(ob); ok {
			matches = append(matches, i)
			bindings = append(bindings, binding)
		}
	}

	if pat != nil && len(matches) > 0 {
		targets := make([]string, 0, len(matches)+1)
		targets = append(targets, fmt.Sprintf("pattern %s for %s", pat.Capability.String(), pat.Target.String()))
		for _, i := range matches {
			targets = append(targets, e.decls[i].String())
		}
		return nil, errors.NewAmbiguousTarget(owner.Loc, owner.String(), ob.String(), targets).
			WithFile(owner.File)
	}

	if pat != nil {
		return pat.Instantiate(patBinding), nil
	}

	if len(matches) > 1 {
		targets := make([]string, len(matches))
		for j, i := range matches {
			targets[j] = e.decls[i].String()
		}
		return nil, errors.NewAmbiguousTarget(owner.Loc, owner.String(), ob.String(), targets).
			WithFile(owner.File)
	}

	if len(matches) == 1 {
		return e.references[matches[0]].Instantiate(bindings[0]), nil
	}

	return nil, errors.NewUnresolvedObligation(owner.Loc, owner.String(), ob.String()).
		WithFile(owner.File)
}
