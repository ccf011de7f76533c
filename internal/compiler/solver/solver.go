package solver

import (
	"github.com/unknot-dev/unknot/internal/compiler/errors"
	"github.com/unknot-dev/unknot/internal/compiler/graph"
)

// Options tunes one analysis invocation
type Options struct {
	// Tracked overrides the batch's tracked capability list when non-empty
	Tracked []string

	// ExpansionLimit caps work list pops; 0 means unbounded
	ExpansionLimit int
}

// Result is a successful analysis: rewritten declarations in batch order,
// the finished graphs behind them, and anything worth reporting.
type Result struct {
	Declarations []*Declaration
	Graphs       []*graph.ConstraintGraph
	Tracked      []string
	Steps        int
	Warnings     []*errors.CompilerError
}

// Analyze runs the pipeline over a loaded batch: extract a graph per
// declaration, expand tracked obligations to a fixpoint, then break cycles.
// The first fatal error aborts the invocation with no partial output.
func Analyze(batch *Batch, opts Options) (*Result, *errors.CompilerError) {
	tracked := batch.Tracked
	if len(opts.Tracked) > 0 {
		tracked = opts.Tracked
	}
	trackedSet := make(map[string]bool, len(tracked))
	for _, name := range tracked {
		trackedSet[name] = true
	}

	work := NewWorkList()
	graphs := make([]*graph.ConstraintGraph, len(batch.Declarations))
	for i, decl := range batch.Declarations {
		g, err := Extract(decl, trackedSet, work)
		if err != nil {
			return nil, err
		}
		graphs[i] = g
	}

	expander := NewExpander(batch.Declarations, graphs, batch.Patterns, work, trackedSet, opts.ExpansionLimit)
	if err := expander.Run(); err != nil {
		return nil, err
	}

	rewritten := make([]*Declaration, len(batch.Declarations))
	for i, decl := range batch.Declarations {
		rewritten[i] = BreakCycles(decl, graphs[i])
	}

	return &Result{
		Declarations: rewritten,
		Graphs:       graphs,
		Tracked:      tracked,
		Steps:        expander.Steps(),
		Warnings:     batch.Warnings,
	}, nil
}
