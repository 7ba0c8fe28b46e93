package defs

import "sort"

// CallGraph records which function definitions call which. It is built by
// the checker from resolved references and read by the obligation generator
// to find mutually recursive groups.
type CallGraph struct {
	edges map[ID][]ID
}

// NewCallGraph returns an empty call graph
func NewCallGraph() *CallGraph { return &CallGraph{edges: make(map[ID][]ID)} }

// AddEdge records a call from caller to callee
func (g *CallGraph) AddEdge(caller, callee ID) {
	if !g.HasEdge(caller, callee) {
		g.edges[caller] = append(g.edges[caller], callee)
	}
}

// HasEdge reports whether caller calls callee directly
func (g *CallGraph) HasEdge(caller, callee ID) bool {
	for _, c := range g.edges[caller] {
		if c == callee {
			return true
		}
	}
	return false
}

// Callees returns the direct callees of id in the order first seen
func (g *CallGraph) Callees(id ID) []ID { return g.edges[id] }

// nodes returns every ID that appears in the graph, sorted
func (g *CallGraph) nodes() []ID {
	seen := map[ID]bool{}
	for from, tos := range g.edges {
		seen[from] = true
		for _, to := range tos {
			seen[to] = true
		}
	}
	out := make([]ID, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Recursive returns, for every definition that can reach itself, the sorted
// members of its strongly connected component.
func (g *CallGraph) Recursive() map[ID][]ID {
	out := make(map[ID][]ID)
	for _, scc := range g.SCC() {
		if len(scc) == 1 && !g.HasEdge(scc[0], scc[0]) {
			continue
		}
		for _, id := range scc {
			out[id] = scc
		}
	}
	return out
}

// SCC returns the strongly connected components in topological order, each
// sorted by ID so the result does not depend on map iteration.
func (g *CallGraph) SCC() [][]ID {
	nodes := g.nodes()
	index := make(map[ID]int, len(nodes))
	for i, id := range nodes {
		index[id] = i
	}
	state := sccState{
		indexTable: make([]int, len(nodes)),
		lowLink:    make([]int, len(nodes)),
		onStack:    make([]bool, len(nodes)),
	}
	succ := func(v int) []int {
		var out []int
		for _, to := range g.edges[nodes[v]] {
			out = append(out, index[to])
		}
		return out
	}
	for v := range nodes {
		if state.indexTable[v] == 0 {
			tarjan(&state, v, succ)
		}
	}
	sccs := state.sccs
	// Reverse for topological ordering
	for i, j := 0, len(sccs)-1; i < j; i, j = i+1, j-1 {
		sccs[i], sccs[j] = sccs[j], sccs[i]
	}
	out := make([][]ID, len(sccs))
	for i, c := range sccs {
		ids := make([]ID, len(c))
		for k, v := range c {
			ids[k] = nodes[v]
		}
		sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
		out[i] = ids
	}
	return out
}

type sccState struct {
	index      int
	indexTable []int
	lowLink    []int
	onStack    []bool

	stack []int
	sccs  [][]int
}

// tarjan is Tarjan's SCC algorithm; components come out in reverse
// dependency order.
func tarjan(state *sccState, v int, succ func(int) []int) {
	state.index++
	state.indexTable[v] = state.index
	state.lowLink[v] = state.index
	state.stack = append(state.stack, v)
	state.onStack[v] = true

	for _, w := range succ(v) {
		if state.indexTable[w] == 0 {
			tarjan(state, w, succ)
			state.lowLink[v] = min(state.lowLink[v], state.lowLink[w])
		} else if state.onStack[w] {
			state.lowLink[v] = min(state.lowLink[v], state.indexTable[w])
		}
	}

	if state.lowLink[v] == state.indexTable[v] {
		var (
			c []int
			w int
		)
		for {
			w, state.stack = state.stack[len(state.stack)-1], state.stack[:len(state.stack)-1]
			state.onStack[w] = false
			c = append(c, w)
			if w == v {
				break
			}
		}
		state.sccs = append(state.sccs, c)
	}
}
