// Package graph provides the constraint graph built per declaration during
// obligation analysis. Nodes carry obligations, edges record that the
// implementation justifying one obligation assumes another holds.
package graph

import (
	"fmt"
	"strings"

	"github.com/unknot-dev/unknot/internal/compiler/types"
)

// NodeID is a dense 0-based node index. IDs are assigned at insertion and
// never reused or reordered.
type NodeID int

// Node pairs a node id with its obligation
type Node struct {
	ID         NodeID
	Obligation types.Obligation
}

// Edge is an ordered pair of node ids. Edges are not deduplicated and
// self-edges are permitted.
type Edge struct {
	From NodeID
	To   NodeID
}

// ConstraintGraph owns an append-only node sequence and edge sequence.
// Node 0 is always the root: the declaration's own obligation.
//
// Thread Safety: ConstraintGraph instances are NOT thread-safe. The analysis
// pipeline is single-threaded by design.
type ConstraintGraph struct {
	nodes []Node
	edges []Edge
	out   [][]NodeID // adjacency in edge insertion order
}

// New creates a graph whose root node (id 0) carries the given obligation
func New(root types.Obligation) *ConstraintGraph {
	g := &ConstraintGraph{}
	g.InsertNode(root)
	return g
}

// Root returns the root node id, which is always 0
func (g *ConstraintGraph) Root() NodeID {
	return 0
}

// InsertNode appends a node and returns its id. Nodes are never
// deduplicated here; duplicate obligations may legitimately occupy distinct
// nodes reached by different edges.
func (g *ConstraintGraph) InsertNode(obligation types.Obligation) NodeID {
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, Node{ID: id, Obligation: obligation})
	g.out = append(g.out, nil)
	return id
}

// InsertEdge appends an edge. Both endpoints must already exist; referencing
// an unknown node id is a contract violation reported as an error.
func (g *ConstraintGraph) InsertEdge(from, to NodeID) error {
	if !g.valid(from) {
		return fmt.Errorf("edge source %d out of range (graph has %d nodes)", from, len(g.nodes))
	}
	if !g.valid(to) {
		return fmt.Errorf("edge target %d out of range (graph has %d nodes)", to, len(g.nodes))
	}
	g.edges = append(g.edges, Edge{From: from, To: to})
	g.out[from] = append(g.out[from], to)
	return nil
}

// FindNode returns the first node whose obligation equals target
// structurally
func (g *ConstraintGraph) FindNode(target types.Obligation) (NodeID, bool) {
	for _, node := range g.nodes {
		if node.Obligation.Equals(target) {
			return node.ID, true
		}
	}
	return 0, false
}

// HasEdge reports whether at least one edge from -> to exists
func (g *ConstraintGraph) HasEdge(from, to NodeID) bool {
	if !g.valid(from) {
		return false
	}
	for _, next := range g.out[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Obligation returns the obligation at the given node id
func (g *ConstraintGraph) Obligation(id NodeID) (types.Obligation, bool) {
	if !g.valid(id) {
		return types.Obligation{}, false
	}
	return g.nodes[id].Obligation, true
}

// Nodes returns the node sequence in insertion order. The slice is owned by
// the graph and must not be modified.
func (g *ConstraintGraph) Nodes() []Node {
	return g.nodes
}

// Edges returns the edge sequence in insertion order. The slice is owned by
// the graph and must not be modified.
func (g *ConstraintGraph) Edges() []Edge {
	return g.edges
}

// NodeCount returns the number of nodes
func (g *ConstraintGraph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges, counting multi-edges
func (g *ConstraintGraph) EdgeCount() int {
	return len(g.edges)
}

// ReachableFrom returns the set of node ids reachable from start by
// following edges forward. The start node itself is included.
func (g *ConstraintGraph) ReachableFrom(start NodeID) map[NodeID]bool {
	reached := make(map[NodeID]bool)
	if !g.valid(start) {
		return reached
	}

	stack := []NodeID{start}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reached[id] {
			continue
		}
		reached[id] = true
		for _, next := range g.out[id] {
			if !reached[next] {
				stack = append(stack, next)
			}
		}
	}

	return reached
}

// String renders the graph for debug output
func (g *ConstraintGraph) String() string {
	var sb strings.Builder
	for _, node := range g.nodes {
		fmt.Fprintf(&sb, "%d: %s\n", node.ID, node.Obligation.String())
	}
	for _, edge := range g.edges {
		fmt.Fprintf(&sb, "%d -> %d\n", edge.From, edge.To)
	}
	return sb.String()
}

// valid checks whether id names an existing node
func (g *ConstraintGraph) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes)
}
