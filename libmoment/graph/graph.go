// Package graph models the contact network a compartmental process runs on:
// an undirected simple graph whose directed edges carry transmission weights.
package graph

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/moment-systems/gomoment/gomoment"
)

// Graph is a simple undirected contact network over locations 0..n-1.
//
// Each undirected edge carries a transmission weight per direction,
// defaulting to 1 when the edge is added. The diagonal stays zero.
// A Graph is treated as immutable once handed to a tuple generator.
type Graph struct {
	name   string
	n      int
	adj    [][]bool
	weight [][]float64
}

// NewGraph returns an edgeless graph on n locations.
func NewGraph(n int, name string) *Graph {
	if n < 0 {
		n = 0
	}
	g := &Graph{
		name:   name,
		n:      n,
		adj:    make([][]bool, n),
		weight: make([][]float64, n),
	}
	for i := 0; i < n; i++ {
		g.adj[i] = make([]bool, n)
		g.weight[i] = make([]float64, n)
	}
	return g
}

func (g *Graph) Name() string     { return g.name }
func (g *Graph) NumVertices() int { return g.n }

// NumEdges counts undirected edges.
func (g *Graph) NumEdges() int {
	count := 0
	for i := 0; i < g.n; i++ {
		for j := i + 1; j < g.n; j++ {
			if g.adj[i][j] {
				count++
			}
		}
	}
	return count
}

// AddEdge joins locations i and j, setting both directed weights to 1.
// Self loops are rejected.
func (g *Graph) AddEdge(i, j int) error {
	if i < 0 || j < 0 || i >= g.n || j >= g.n {
		return gomoment.ErrBadVertex
	}
	if i == j {
		return gomoment.ErrBadEdge
	}
	g.adj[i][j] = true
	g.adj[j][i] = true
	g.weight[i][j] = 1
	g.weight[j][i] = 1
	return nil
}

func (g *Graph) HasEdge(i, j int) bool {
	if i < 0 || j < 0 || i >= g.n || j >= g.n {
		return false
	}
	return g.adj[i][j]
}

// SetWeight sets the transmission weight for the directed edge i->j.
// The edge must already exist and w must be non-negative.
func (g *Graph) SetWeight(i, j int, w float64) error {
	if !g.HasEdge(i, j) {
		return gomoment.ErrBadEdge
	}
	if w < 0 {
		return gomoment.ErrBadWeight
	}
	g.weight[i][j] = w
	return nil
}

// SetAllWeights sets every directed edge weight to w.
func (g *Graph) SetAllWeights(w float64) error {
	if w < 0 {
		return gomoment.ErrBadWeight
	}
	for i := 0; i < g.n; i++ {
		for j := 0; j < g.n; j++ {
			if g.adj[i][j] {
				g.weight[i][j] = w
			}
		}
	}
	return nil
}

// Weight returns the transmission weight of the directed edge i->j,
// 0 when no edge joins them.
func (g *Graph) Weight(i, j int) float64 {
	if !g.HasEdge(i, j) {
		return 0
	}
	return g.weight[i][j]
}

// Neighbors returns the locations adjacent to i in ascending order.
func (g *Graph) Neighbors(i int) []int {
	if i < 0 || i >= g.n {
		return nil
	}
	var nbrs []int
	for j := 0; j < g.n; j++ {
		if g.adj[i][j] {
			nbrs = append(nbrs, j)
		}
	}
	return nbrs
}

func (g *Graph) Degree(i int) int {
	return len(g.Neighbors(i))
}

// Connected reports whether the given locations induce a connected
// subgraph. Empty and singleton location sets are connected.
func (g *Graph) Connected(locs []int) bool {
	if len(locs) <= 1 {
		return true
	}
	inSet := make(map[int]bool, len(locs))
	for _, loc := range locs {
		if loc < 0 || loc >= g.n {
			return false
		}
		inSet[loc] = true
	}

	seen := map[int]bool{locs[0]: true}
	stack := []int{locs[0]}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for j := 0; j < g.n; j++ {
			if g.adj[v][j] && inSet[j] && !seen[j] {
				seen[j] = true
				stack = append(stack, j)
			}
		}
	}
	return len(seen) == len(locs)
}

// CutVertices returns the articulation points of the graph in ascending
// order: locations whose removal disconnects their component.
func (g *Graph) CutVertices() []int {
	disc := make([]int, g.n)
	low := make([]int, g.n)
	isCut := make([]bool, g.n)
	timer := 0

	var dfs func(v, parent int)
	dfs = func(v, parent int) {
		timer++
		disc[v] = timer
		low[v] = timer
		children := 0
		for j := 0; j < g.n; j++ {
			if !g.adj[v][j] || j == parent {
				continue
			}
			if disc[j] != 0 {
				if disc[j] < low[v] {
					low[v] = disc[j]
				}
				continue
			}
			children++
			dfs(j, v)
			if low[j] < low[v] {
				low[v] = low[j]
			}
			if parent != -1 && low[j] >= disc[v] {
				isCut[v] = true
			}
		}
		if parent == -1 && children > 1 {
			isCut[v] = true
		}
	}

	for v := 0; v < g.n; v++ {
		if disc[v] == 0 {
			dfs(v, -1)
		}
	}

	var cuts []int
	for v, c := range isCut {
		if c {
			cuts = append(cuts, v)
		}
	}
	return cuts
}

// AppendEncoding appends a canonical byte encoding of the adjacency
// structure: vertex count, edge count, then the sorted (i,j) edge list.
// Weights are excluded since tuple sets depend only on adjacency.
func (g *Graph) AppendEncoding(dst []byte) []byte {
	dst = binary.AppendUvarint(dst, uint64(g.n))
	dst = binary.AppendUvarint(dst, uint64(g.NumEdges()))
	for i := 0; i < g.n; i++ {
		for j := i + 1; j < g.n; j++ {
			if g.adj[i][j] {
				dst = binary.AppendUvarint(dst, uint64(i))
				dst = binary.AppendUvarint(dst, uint64(j))
			}
		}
	}
	return dst
}

// String renders the adjacency list, one location per line.
func (g *Graph) String() string {
	var b strings.Builder
	if g.name != "" {
		b.WriteString(g.name)
		b.WriteByte('\n')
	}
	for i := 0; i < g.n; i++ {
		b.WriteString(strconv.Itoa(i))
		b.WriteString(":")
		for _, j := range g.Neighbors(i) {
			b.WriteByte(' ')
			b.WriteString(strconv.Itoa(j))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
