package solver

import (
	"testing"

	"github.com/unknot-dev/unknot/internal/compiler/graph"
	"github.com/unknot-dev/unknot/internal/compiler/types"
)

// whereStrings renders a declaration's where clause for comparison
func whereStrings(d *Declaration) []string {
	out := make([]string, len(d.Where))
	for i, pred := range d.Where {
		out[i] = pred.String()
	}
	return out
}

func TestBreakCyclesNoCycleIdentity(t *testing.T) {
	decl := &Declaration{
		SelfType:   ty("Expr"),
		Capability: capOf("Evaluate"),
		Where: []Predicate{
			{Type: ty("A"), Bounds: []types.CapabilityRef{capOf("Cap")}},
			{Type: ty("B"), Bounds: []types.CapabilityRef{capOf("Cap")}},
		},
		File: "a.knot",
	}

	g, err := Extract(decl, trackedSet(), NewWorkList())
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	rewritten := BreakCycles(decl, g)
	got := whereStrings(rewritten)
	want := []string{"A: Cap", "B: Cap"}
	if len(got) != len(want) {
		t.Fatalf("where = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("where[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if rewritten.File != "a.knot" || !rewritten.SelfType.Equals(decl.SelfType) {
		t.Error("rewrite must preserve declaration identity")
	}
}

func TestBreakCyclesFull2CycleRemoval(t *testing.T) {
	decl := &Declaration{
		SelfType:   ty("Expr"),
		Capability: capOf("Evaluate"),
		Where:      []Predicate{{Type: ty("Term"), Bounds: []types.CapabilityRef{capOf("Evaluate")}}},
	}

	g := graph.New(ob(ty("Expr"), capOf("Evaluate")))
	term := g.InsertNode(ob(ty("Term"), capOf("Evaluate")))
	mustInsertEdge(t, g, g.Root(), term)
	mustInsertEdge(t, g, term, g.Root())

	rewritten := BreakCycles(decl, g)
	if len(rewritten.Where) != 0 {
		t.Errorf("where = %v, want empty", whereStrings(rewritten))
	}
}

func TestBreakCyclesLeafPromotion(t *testing.T) {
	decl := &Declaration{
		SelfType:   ty("Expr"),
		Capability: capOf("Evaluate"),
		Where:      []Predicate{{Type: ty("Term"), Bounds: []types.CapabilityRef{capOf("Evaluate")}}},
	}

	g := graph.New(ob(ty("Expr"), capOf("Evaluate")))
	term := g.InsertNode(ob(ty("Term"), capOf("Evaluate")))
	leaf := g.InsertNode(ob(ty("C"), capOf("Cap")))
	mustInsertEdge(t, g, g.Root(), term)
	mustInsertEdge(t, g, term, g.Root())
	mustInsertEdge(t, g, term, leaf)

	rewritten := BreakCycles(decl, g)
	got := whereStrings(rewritten)

	// The cyclic precondition goes away; the leaf is retained even though
	// it was never in the original list.
	if len(got) != 1 || got[0] != "C: Cap" {
		t.Errorf("where = %v, want [C: Cap]", got)
	}
}

func TestBreakCyclesSelfEdgeIsCyclic(t *testing.T) {
	decl := &Declaration{
		SelfType:   ty("Expr"),
		Capability: capOf("Evaluate"),
		Where:      []Predicate{{Type: ty("Term"), Bounds: []types.CapabilityRef{capOf("Evaluate")}}},
	}

	g := graph.New(ob(ty("Expr"), capOf("Evaluate")))
	term := g.InsertNode(ob(ty("Term"), capOf("Evaluate")))
	mustInsertEdge(t, g, g.Root(), term)
	mustInsertEdge(t, g, term, term)

	rewritten := BreakCycles(decl, g)
	if len(rewritten.Where) != 0 {
		t.Errorf("where = %v, want empty (self-edge is a 1-cycle)", whereStrings(rewritten))
	}
}

func TestBreakCyclesMissingNodePassthrough(t *testing.T) {
	decl := &Declaration{
		SelfType:   ty("Expr"),
		Capability: capOf("Evaluate"),
		Where: []Predicate{
			{Type: ty("Z"), Bounds: []types.CapabilityRef{capOf("Untracked")}},
			{Type: ty("Term"), Bounds: []types.CapabilityRef{capOf("Evaluate")}},
		},
	}

	// The graph never saw Z: Untracked.
	g := graph.New(ob(ty("Expr"), capOf("Evaluate")))
	term := g.InsertNode(ob(ty("Term"), capOf("Evaluate")))
	mustInsertEdge(t, g, g.Root(), term)
	mustInsertEdge(t, g, term, g.Root())

	rewritten := BreakCycles(decl, g)
	got := whereStrings(rewritten)
	if len(got) != 1 || got[0] != "Z: Untracked" {
		t.Errorf("where = %v, want [Z: Untracked] passed through", got)
	}
}

func TestBreakCyclesGenericBoundsInPlace(t *testing.T) {
	decl := &Declaration{
		SelfType:   ty("List", ty("T")),
		Capability: capOf("Evaluate"),
		Generics: []GenericParam{
			{Name: "T", Bounds: []types.CapabilityRef{capOf("Clone"), capOf("Evaluate")}},
		},
		Where: []Predicate{
			{Type: ty("Pair", ty("T"), ty("T")), Bounds: []types.CapabilityRef{capOf("Evaluate")}},
		},
	}

	g := graph.New(ob(ty("List", ty("T")), capOf("Evaluate")))
	tClone := g.InsertNode(ob(ty("T"), capOf("Clone")))
	tEval := g.InsertNode(ob(ty("T"), capOf("Evaluate")))
	pair := g.InsertNode(ob(ty("Pair", ty("T"), ty("T")), capOf("Evaluate")))
	mustInsertEdge(t, g, g.Root(), tClone)
	mustInsertEdge(t, g, g.Root(), tEval)
	mustInsertEdge(t, g, g.Root(), pair)
	mustInsertEdge(t, g, tEval, tEval)
	mustInsertEdge(t, g, pair, g.Root())

	rewritten := BreakCycles(decl, g)

	// T keeps Clone in the generic position, loses the cyclic Evaluate.
	if len(rewritten.Generics) != 1 || rewritten.Generics[0].String() != "T: Clone" {
		t.Errorf("generics = %v, want [T: Clone]", rewritten.Generics)
	}

	// The Pair precondition was cyclic through the root. T: Clone is a
	// reachable leaf but already survives in place, so nothing is added.
	if len(rewritten.Where) != 0 {
		t.Errorf("where = %v, want empty", whereStrings(rewritten))
	}
}

func TestBreakCyclesLeafOrderIsAscendingNodeID(t *testing.T) {
	decl := &Declaration{
		SelfType:   ty("Expr"),
		Capability: capOf("Evaluate"),
		Where:      []Predicate{{Type: ty("Term"), Bounds: []types.CapabilityRef{capOf("Evaluate")}}},
	}

	g := graph.New(ob(ty("Expr"), capOf("Evaluate")))
	term := g.InsertNode(ob(ty("Term"), capOf("Evaluate")))
	// Leaf node ids run counter to the alphabetical order of their types.
	leafB := g.InsertNode(ob(ty("B"), capOf("Cap")))
	leafA := g.InsertNode(ob(ty("A"), capOf("Cap")))
	mustInsertEdge(t, g, g.Root(), term)
	mustInsertEdge(t, g, term, g.Root())
	mustInsertEdge(t, g, term, leafB)
	mustInsertEdge(t, g, term, leafA)

	rewritten := BreakCycles(decl, g)
	got := whereStrings(rewritten)
	want := []string{"B: Cap", "A: Cap"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("where = %v, want %v (ascending node id)", got, want)
	}
}

func TestBreakCyclesPartialBoundRemoval(t *testing.T) {
	decl := &Declaration{
		SelfType:   ty("Expr"),
		Capability: capOf("Evaluate"),
		Where: []Predicate{
			{Type: ty("T"), Bounds: []types.CapabilityRef{capOf("Clone"), capOf("Evaluate")}},
		},
	}

	g := graph.New(ob(ty("Expr"), capOf("Evaluate")))
	tClone := g.InsertNode(ob(ty("T"), capOf("Clone")))
	tEval := g.InsertNode(ob(ty("T"), capOf("Evaluate")))
	mustInsertEdge(t, g, g.Root(), tClone)
	mustInsertEdge(t, g, g.Root(), tEval)
	mustInsertEdge(t, g, tEval, tEval)

	rewritten := BreakCycles(decl, g)
	got := whereStrings(rewritten)
	if len(got) != 1 || got[0] != "T: Clone" {
		t.Errorf("where = %v, want [T: Clone]", got)
	}
}

func mustInsertEdge(t *testing.T, g *graph.ConstraintGraph, from, to graph.NodeID) {
	t.Helper()
	if err := g.InsertEdge(from, to); err != nil {
		t.Fatalf("insert edge %d -> %d: %v", from, to, err)
	}
}
