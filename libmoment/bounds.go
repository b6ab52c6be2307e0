package libmoment

import "github.com/moment-systems/gomoment/libmoment/graph"

// For a connected contact network without cut vertices, the tuple count is
// bracketed by the cycle (sparsest such graph) and the complete graph on
// the same number of locations.

// LowerBound counts the tuples the model would require on a cycle of the
// same order as g.
func LowerBound(g *graph.Graph, model *TransitionModel, closures bool) (int, error) {
	rt, err := GenerateTuples(graph.Cycle(g.NumVertices()), model, closures, 0)
	if err != nil {
		return 0, err
	}
	return rt.Len(), nil
}

// UpperBound counts the tuples the model would require on a complete graph
// of the same order as g.
func UpperBound(g *graph.Graph, model *TransitionModel, closures bool) (int, error) {
	rt, err := GenerateTuples(graph.Complete(g.NumVertices()), model, closures, 0)
	if err != nil {
		return 0, err
	}
	return rt.Len(), nil
}
