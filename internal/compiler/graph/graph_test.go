package graph

import (
	"reflect"
	"testing"

	"github.com/unknot-dev/unknot/internal/compiler/types"
)

// ob builds a simple obligation for tests
func ob(typeName, capability string) types.Obligation {
	return types.NewObligation(types.NewType(typeName), types.NewCapability(capability))
}

func TestGraphRootIsZero(t *testing.T) {
	g := New(ob("Expr", "Evaluate"))

	if g.Root() != 0 {
		t.Errorf("root = %d, want 0", g.Root())
	}
	if g.NodeCount() != 1 {
		t.Errorf("node count = %d, want 1", g.NodeCount())
	}

	root, ok := g.Obligation(0)
	if !ok {
		t.Fatal("root obligation missing")
	}
	if root.String() != "Expr: Evaluate" {
		t.Errorf("root = %q, want %q", root.String(), "Expr: Evaluate")
	}
}

func TestInsertNodeAssignsDenseIDs(t *testing.T) {
	g := New(ob("Expr", "Evaluate"))

	a := g.InsertNode(ob("Term", "Evaluate"))
	b := g.InsertNode(ob("Leaf", "Evaluate"))
	if a != 1 || b != 2 {
		t.Errorf("ids = %d, %d, want 1, 2", a, b)
	}

	// Duplicate obligations occupy distinct nodes.
	c := g.InsertNode(ob("Term", "Evaluate"))
	if c != 3 {
		t.Errorf("duplicate obligation id = %d, want 3", c)
	}
	if g.NodeCount() != 4 {
		t.Errorf("node count = %d, want 4", g.NodeCount())
	}
}

func TestInsertEdgeValidation(t *testing.T) {
	g := New(ob("Expr", "Evaluate"))
	child := g.InsertNode(ob("Term", "Evaluate"))

	if err := g.InsertEdge(g.Root(), child); err != nil {
		t.Errorf("valid edge failed: %v", err)
	}
	if err := g.InsertEdge(0, 99); err == nil {
		t.Error("expected error for out-of-range target")
	}
	if err := g.InsertEdge(99, 0); err == nil {
		t.Error("expected error for out-of-range source")
	}
	if err := g.InsertEdge(-1, 0); err == nil {
		t.Error("expected error for negative source")
	}

	// Failed inserts must not change the edge sequence.
	if g.EdgeCount() != 1 {
		t.Errorf("edge count = %d, want 1", g.EdgeCount())
	}
}

func TestMultiEdgesAndSelfEdges(t *testing.T) {
	g := New(ob("Expr", "Evaluate"))
	child := g.InsertNode(ob("Term", "Evaluate"))

	if err := g.InsertEdge(0, child); err != nil {
		t.Fatalf("insert edge: %v", err)
	}
	if err := g.InsertEdge(0, child); err != nil {
		t.Fatalf("insert duplicate edge: %v", err)
	}
	if g.EdgeCount() != 2 {
		t.Errorf("edge count = %d, want 2 (multi-edges permitted)", g.EdgeCount())
	}

	if err := g.InsertEdge(child, child); err != nil {
		t.Fatalf("insert self-edge: %v", err)
	}
	if !g.HasEdge(child, child) {
		t.Error("self-edge not found")
	}
	if g.HasEdge(child, 0) {
		t.Error("unexpected reverse edge")
	}
}

func TestFindNodeFirstMatch(t *testing.T) {
	g := New(ob("Expr", "Evaluate"))
	first := g.InsertNode(ob("Term", "Evaluate"))
	g.InsertNode(ob("Term", "Evaluate"))

	id, found := g.FindNode(ob("Term", "Evaluate"))
	if !found {
		t.Fatal("node not found")
	}
	if id != first {
		t.Errorf("id = %d, want first match %d", id, first)
	}

	if _, found := g.FindNode(ob("Missing", "Evaluate")); found {
		t.Error("found a node that was never inserted")
	}
}

func TestReachableFrom(t *testing.T) {
	// 0 -> 1 -> 2, 1 -> 3, 4 disconnected
	g := New(ob("A", "Cap"))
	n1 := g.InsertNode(ob("B", "Cap"))
	n2 := g.InsertNode(ob("C", "Cap"))
	n3 := g.InsertNode(ob("D", "Cap"))
	n4 := g.InsertNode(ob("E", "Cap"))

	mustEdge(t, g, 0, n1)
	mustEdge(t, g, n1, n2)
	mustEdge(t, g, n1, n3)

	reached := g.ReachableFrom(n1)
	want := map[NodeID]bool{n1: true, n2: true, n3: true}
	if !reflect.DeepEqual(reached, want) {
		t.Errorf("reachable = %v, want %v", reached, want)
	}

	if g.ReachableFrom(n4)[n1] {
		t.Error("disconnected node reaches n1")
	}
	if len(g.ReachableFrom(99)) != 0 {
		t.Error("out-of-range start should reach nothing")
	}
}

func TestSCCsSingletonsForAcyclicChain(t *testing.T) {
	g := New(ob("A", "Cap"))
	n1 := g.InsertNode(ob("B", "Cap"))
	n2 := g.InsertNode(ob("C", "Cap"))
	mustEdge(t, g, 0, n1)
	mustEdge(t, g, n1, n2)

	sccs := g.SCCs()
	if len(sccs) != 3 {
		t.Fatalf("scc count = %d, want 3", len(sccs))
	}
	for _, scc := range sccs {
		if len(scc) != 1 {
			t.Errorf("acyclic chain produced component %v", scc)
		}
	}
}

func TestSCCsSimpleCycle(t *testing.T) {
	// 0 -> 1 -> 2 -> 0 plus a tail 1 -> 3
	g := New(ob("A", "Cap"))
	n1 := g.InsertNode(ob("B", "Cap"))
	n2 := g.InsertNode(ob("C", "Cap"))
	n3 := g.InsertNode(ob("D", "Cap"))
	mustEdge(t, g, 0, n1)
	mustEdge(t, g, n1, n2)
	mustEdge(t, g, n2, 0)
	mustEdge(t, g, n1, n3)

	sccs := g.SCCs()
	if len(sccs) != 2 {
		t.Fatalf("scc count = %d, want 2: %v", len(sccs), sccs)
	}

	var cycle []NodeID
	for _, scc := range sccs {
		if len(scc) > 1 {
			cycle = scc
		}
	}
	want := []NodeID{0, n1, n2}
	if !reflect.DeepEqual(cycle, want) {
		t.Errorf("cycle component = %v, want %v", cycle, want)
	}
}

func TestSCCsSelfEdgeSingleton(t *testing.T) {
	g := New(ob("A", "Cap"))
	n1 := g.InsertNode(ob("B", "Cap"))
	mustEdge(t, g, 0, n1)
	mustEdge(t, g, n1, n1)

	sccs := g.SCCs()
	if len(sccs) != 2 {
		t.Fatalf("scc count = %d, want 2", len(sccs))
	}

	// Both components are singletons. The self-edge is what marks n1 as
	// cyclic, and that classification lives with the caller.
	for _, scc := range sccs {
		if len(scc) != 1 {
			t.Errorf("unexpected component size: %v", scc)
		}
	}
	if !g.HasEdge(n1, n1) {
		t.Error("expected self-edge on n1")
	}
	if g.HasEdge(0, 0) {
		t.Error("unexpected self-edge on root")
	}
}

func TestSCCsDeterministic(t *testing.T) {
	build := func() *ConstraintGraph {
		// Two disjoint 2-cycles hanging off the root.
		g := New(ob("A", "Cap"))
		n1 := g.InsertNode(ob("B", "Cap"))
		n2 := g.InsertNode(ob("C", "Cap"))
		n3 := g.InsertNode(ob("D", "Cap"))
		n4 := g.InsertNode(ob("E", "Cap"))
		mustEdge(t, g, 0, n1)
		mustEdge(t, g, 0, n3)
		mustEdge(t, g, n1, n2)
		mustEdge(t, g, n2, n1)
		mustEdge(t, g, n3, n4)
		mustEdge(t, g, n4, n3)
		return g
	}

	first := build().SCCs()
	second := build().SCCs()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("SCCs not deterministic:\n%v\n%v", first, second)
	}

	count := 0
	for _, scc := range first {
		if len(scc) == 2 {
			count++
		}
	}
	if count != 2 {
		t.Errorf("expected two 2-cycles, got %v", first)
	}
}

func mustEdge(t *testing.T, g *ConstraintGraph, from, to NodeID) {
	t.Helper()
	if err := g.InsertEdge(from, to); err != nil {
		t.Fatalf("insert edge %d -> %d: %v", from, to, err)
	}
}
