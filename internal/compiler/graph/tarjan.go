package graph

import "sort"

// SCCs computes the strongly connected components of the graph using an
// iterative Tarjan traversal. Roots are visited in ascending node id order
// and neighbors in edge insertion order, so the result is deterministic for
// a given insertion history. Components are emitted in completion order
// (reverse topological) with members sorted ascending.
//
// Note: a component of size 1 is only a cycle if its node has a self-edge.
// Callers that classify cyclic nodes must check HasEdge(id, id) for
// singleton components.
func (g *ConstraintGraph) SCCs() [][]NodeID {
	n := len(g.nodes)
	index := make([]int, n) // 0 means unvisited, otherwise discovery index + 1
	lowlink := make([]int, n)
	onStack := make([]bool, n)
	stack := make([]NodeID, 0, n)
	next := 1

	var sccs [][]NodeID

	type frame struct {
		node NodeID
		edge int
	}

	for start := 0; start < n; start++ {
		if index[start] != 0 {
			continue
		}

		frames := []frame{{node: NodeID(start)}}
		index[start] = next
		lowlink[start] = next
		next++
		stack = append(stack, NodeID(start))
		onStack[start] = true

		for len(frames) > 0 {
			f := &frames[len(frames)-1]
			v := f.node

			if f.edge < len(g.out[v]) {
				w := g.out[v][f.edge]
				f.edge++

				if index[w] == 0 {
					index[w] = next
					lowlink[w] = next
					next++
					stack = append(stack, w)
					onStack[w] = true
					frames = append(frames, frame{node: w})
				} else if onStack[w] && index[w] < lowlink[v] {
					lowlink[v] = index[w]
				}
				continue
			}

			// All neighbors explored: pop the frame, fold the lowlink
			// into the parent, and emit a component if v is its root.
			frames = frames[:len(frames)-1]
			if len(frames) > 0 {
				parent := frames[len(frames)-1].node
				if lowlink[v] < lowlink[parent] {
					lowlink[parent] = lowlink[v]
				}
			}

			if lowlink[v] == index[v] {
				var component []NodeID
				for {
					w := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[w] = false
					component = append(component, w)
					if w == v {
						break
					}
				}
				sort.Slice(component, func(i, j int) bool {
					return component[i] < component[j]
				})
				sccs = append(sccs, component)
			}
		}
	}

	return sccs
}
