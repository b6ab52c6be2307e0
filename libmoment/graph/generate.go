package graph

import "math/rand"

// Standard contact networks used throughout tests and scenarios.

func EdgeGraph() *Graph {
	g := NewGraph(2, "Edge")
	g.AddEdge(0, 1)
	return g
}

func Triangle() *Graph {
	g := Cycle(3)
	g.name = "Triangle"
	return g
}

// Toast is a 4-cycle with one chord.
func Toast() *Graph {
	g := Cycle(4)
	g.name = "Toast"
	g.AddEdge(0, 2)
	return g
}

// Lollipop is a triangle with a pendant path of length one.
func Lollipop() *Graph {
	g := Triangle()
	g2 := NewGraph(4, "Lollipop")
	copyEdges(g2, g)
	g2.AddEdge(2, 3)
	return g2
}

// BowTie is two triangles sharing a single vertex.
func BowTie() *Graph {
	g := NewGraph(5, "Bow tie")
	g.AddEdge(0, 1)
	g.AddEdge(0, 2)
	g.AddEdge(1, 2)
	g.AddEdge(2, 3)
	g.AddEdge(2, 4)
	g.AddEdge(3, 4)
	return g
}

func Path(n int) *Graph {
	g := NewGraph(n, "Path")
	for i := 0; i+1 < n; i++ {
		g.AddEdge(i, i+1)
	}
	return g
}

func Cycle(n int) *Graph {
	g := Path(n)
	g.name = "Cycle"
	if n > 2 {
		g.AddEdge(n-1, 0)
	}
	return g
}

func Complete(n int) *Graph {
	g := NewGraph(n, "Complete")
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			g.AddEdge(i, j)
		}
	}
	return g
}

// Star joins location 0 to every other location.
func Star(n int) *Graph {
	g := NewGraph(n, "Star")
	for i := 1; i < n; i++ {
		g.AddEdge(0, i)
	}
	return g
}

// Wheel is a cycle over locations 1..n-1 with 0 as hub.
func Wheel(n int) *Graph {
	g := Star(n)
	g.name = "Wheel"
	for i := 1; i+1 < n; i++ {
		g.AddEdge(i, i+1)
	}
	if n > 3 {
		g.AddEdge(n-1, 1)
	}
	return g
}

// ErdosRenyi samples G(n, p) with each edge included independently.
// The same seed reproduces the same graph.
func ErdosRenyi(n int, p float64, seed int64) *Graph {
	g := NewGraph(n, "Erdős–Rényi")
	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if rng.Float64() < p {
				g.AddEdge(i, j)
			}
		}
	}
	return g
}

func copyEdges(dst, src *Graph) {
	for i := 0; i < src.n; i++ {
		for j := i + 1; j < src.n; j++ {
			if src.adj[i][j] {
				dst.AddEdge(i, j)
			}
		}
	}
}
