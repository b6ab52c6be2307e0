package libmoment

import (
	"encoding/binary"
	"strings"

	rbtree "github.com/emirpasic/gods/trees/redblacktree"
	"github.com/pkg/errors"

	"github.com/moment-systems/gomoment/gomoment"
	"github.com/moment-systems/gomoment/libmoment/graph"
)

// RequiredTuples is the closed family of tuples a model needs equations
// for on a given contact network: one single per (tracked state, location),
// plus every connected mixed-state pattern reachable by repeatedly
// extending an admitted tuple with one adjacent (state, location) pair.
// With closures set, every all-susceptible subset of locations joins the
// family as well.
//
// Generation is a fixed-point iteration and its output order is
// deterministic: singles first, then tuples grouped by ascending size.
type RequiredTuples struct {
	g        *graph.Graph
	model    *TransitionModel
	closures bool
	maxOrder int
	tuples   []Tuple
}

// Tuples sort by size, then by canonical key bytes.
func compareTupleKeys(a, b interface{}) int {
	ka, kb := a.(TupleKey), b.(TupleKey)
	la, _ := binary.Uvarint([]byte(ka))
	lb, _ := binary.Uvarint([]byte(kb))
	if la != lb {
		if la < lb {
			return -1
		}
		return 1
	}
	return strings.Compare(string(ka), string(kb))
}

// GenerateTuples enumerates the required tuple family for model on g.
// Tuples never grow past maxOrder members; maxOrder <= 0 means the
// graph order.
func GenerateTuples(g *graph.Graph, model *TransitionModel, closures bool, maxOrder int) (*RequiredTuples, error) {
	if g == nil || model == nil {
		return nil, errors.Wrap(gomoment.ErrUnexpectedConfig, "nil graph or model")
	}
	tracked := model.Tracked()
	n := g.NumVertices()
	if maxOrder <= 0 || maxOrder > n {
		maxOrder = n
	}

	tree := rbtree.NewWith(compareTupleKeys)
	examined := make(map[TupleKey]struct{})

	admit := func(t Tuple) bool {
		key := t.Key()
		if _, dup := examined[key]; dup {
			return false
		}
		examined[key] = struct{}{}
		if !t.IsValid(g, closures) {
			return false
		}
		tree.Put(key, t)
		return true
	}

	var frontier []Tuple
	for _, s := range tracked {
		for loc := 0; loc < n; loc++ {
			single, err := NewTuple(Vertex{State: s, Loc: loc})
			if err != nil {
				return nil, err
			}
			admit(single)
			frontier = append(frontier, single)
		}
	}

	for size := 2; size <= maxOrder && len(frontier) > 0; size++ {
		var grown []Tuple
		for _, t := range frontier {
			for _, v := range t.Vertices() {
				for _, nb := range g.Neighbors(v.Loc) {
					for _, s := range tracked {
						cand, ok := t.With(Vertex{State: s, Loc: nb})
						if !ok || cand.Len() != size {
							continue
						}
						if admit(cand) {
							grown = append(grown, cand)
						}
					}
				}
			}
		}
		frontier = grown
	}

	if closures {
		if err := admitClosureTuples(tree, examined, n, maxOrder); err != nil {
			return nil, err
		}
	}

	rt := &RequiredTuples{
		g:        g,
		model:    model,
		closures: closures,
		maxOrder: maxOrder,
		tuples:   make([]Tuple, 0, tree.Size()),
	}
	it := tree.Iterator()
	for it.Next() {
		rt.tuples = append(rt.tuples, it.Value().(Tuple))
	}
	return rt, nil
}

// Closure accounting tuples are all-susceptible subsets of any locations,
// adjacent or not.
func admitClosureTuples(tree *rbtree.Tree, examined map[TupleKey]struct{}, n, maxOrder int) error {
	verts := make([]Vertex, 0, maxOrder)

	var choose func(start int) error
	choose = func(start int) error {
		if len(verts) >= 2 {
			t, err := NewTuple(verts...)
			if err != nil {
				return err
			}
			key := t.Key()
			if _, dup := examined[key]; !dup {
				examined[key] = struct{}{}
				tree.Put(key, t)
			}
		}
		if len(verts) == maxOrder {
			return nil
		}
		for loc := start; loc < n; loc++ {
			verts = append(verts, Vertex{State: Susceptible, Loc: loc})
			if err := choose(loc + 1); err != nil {
				return err
			}
			verts = verts[:len(verts)-1]
		}
		return nil
	}
	return choose(0)
}

// RestoreTuples rebuilds a RequiredTuples from a previously generated,
// already canonical tuple list, without re-running the generator.
func RestoreTuples(g *graph.Graph, model *TransitionModel, closures bool, maxOrder int, tuples []Tuple) *RequiredTuples {
	if maxOrder <= 0 || maxOrder > g.NumVertices() {
		maxOrder = g.NumVertices()
	}
	return &RequiredTuples{
		g:        g,
		model:    model,
		closures: closures,
		maxOrder: maxOrder,
		tuples:   append([]Tuple(nil), tuples...),
	}
}

func (rt *RequiredTuples) Graph() *graph.Graph     { return rt.g }
func (rt *RequiredTuples) Model() *TransitionModel { return rt.model }
func (rt *RequiredTuples) Closures() bool          { return rt.closures }
func (rt *RequiredTuples) MaxOrder() int           { return rt.maxOrder }
func (rt *RequiredTuples) Len() int                { return len(rt.tuples) }
func (rt *RequiredTuples) At(i int) Tuple          { return rt.tuples[i] }

// Tuples returns the generated family in canonical order.
// Callers must not mutate the returned slice.
func (rt *RequiredTuples) Tuples() []Tuple { return rt.tuples }

// Contains reports whether t is part of the family.
func (rt *RequiredTuples) Contains(t Tuple) bool {
	key := t.Key()
	for _, cur := range rt.tuples {
		if cur.Key() == key {
			return true
		}
	}
	return false
}

// Counts returns the number of tuples of each size; Counts()[k-1] is the
// count of k-member tuples.
func (rt *RequiredTuples) Counts() []int {
	counts := make([]int, rt.maxOrder)
	for _, t := range rt.tuples {
		counts[t.Len()-1]++
	}
	return counts
}

func (rt *RequiredTuples) String() string {
	var b strings.Builder
	for i, t := range rt.tuples {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(t.String())
	}
	return b.String()
}
