package solver

import (
	"sort"

	"github.com/unknot-dev/unknot/internal/compiler/graph"
	"github.com/unknot-dev/unknot/internal/compiler/types"
)

// BreakCycles rewrites one declaration's precondition lists against its
// finished graph and returns the rewritten copy.
//
// A node is cyclic if its SCC has size > 1, or size 1 with a self-edge.
// Preconditions whose node is cyclic are removed in place; preconditions
// with no corresponding node, or a non-cyclic one, keep their original
// position. Non-cyclic nodes reachable from any cyclic node are leaf
// obligations: each missing one is appended to the where clause in
// ascending node id order, deduplicated set-wise against what survived.
func BreakCycles(decl *Declaration, g *graph.ConstraintGraph) *Declaration {
	cyclic := make(map[graph.NodeID]bool)
	for _, scc := range g.SCCs() {
		if len(scc) > 1 {
			for _, id := range scc {
				cyclic[id] = true
			}
		} else if g.HasEdge(scc[0], scc[0]) {
			cyclic[scc[0]] = true
		}
	}

	leaves := make(map[graph.NodeID]bool)
	for id := range cyclic {
		for reached := range g.ReachableFrom(id) {
			if !cyclic[reached] {
				leaves[reached] = true
			}
		}
	}

	removed := func(ob types.Obligation) bool {
		id, found := g.FindNode(ob)
		return found && cyclic[id]
	}

	kept := make(map[string]bool)

	generics := make([]GenericParam, 0, len(decl.Generics))
	for _, param := range decl.Generics {
		next := GenericParam{Name: param.Name}
		paramType := types.NewType(param.Name)
		for _, bound := range param.Bounds {
			ob := types.NewObligation(paramType, bound)
			if removed(ob) {
				continue
			}
			next.Bounds = append(next.Bounds, bound)
			kept[ob.Key()] = true
		}
		generics = append(generics, next)
	}

	where := make([]Predicate, 0, len(decl.Where))
	for _, pred := range decl.Where {
		next := Predicate{Type: pred.Type}
		for _, bound := range pred.Bounds {
			ob := types.NewObligation(pred.Type, bound)
			if removed(ob) {
				continue
			}
			next.Bounds = append(next.Bounds, bound)
			kept[ob.Key()] = true
		}
		if len(next.Bounds) > 0 {
			where = append(where, next)
		}
	}

	leafIDs := make([]graph.NodeID, 0, len(leaves))
	for id := range leaves {
		leafIDs = append(leafIDs, id)
	}
	sort.Slice(leafIDs, func(i, j int) bool { return leafIDs[i] < leafIDs[j] })

	for _, id := range leafIDs {
		ob, ok := g.Obligation(id)
		if !ok || kept[ob.Key()] {
			continue
		}
		kept[ob.Key()] = true
		where = append(where, Predicate{
			Type:   ob.Type,
			Bounds: []types.CapabilityRef{ob.Capability},
		})
	}

	return &Declaration{
		SelfType:   decl.SelfType,
		Capability: decl.Capability,
		Generics:   generics,
		Where:      where,
		File:       decl.File,
		Loc:        decl.Loc,
	}
}
