package graph

import (
	"github.com/alecthomas/participle/v2"
	"github.com/pkg/errors"

	"github.com/moment-systems/gomoment/gomoment"
)

// Graphs can be expressed as comma-delimited edge runs over zero-based
// locations, e.g. "0-1-2,2-0" builds the triangle. A run of a single
// location adds an isolated vertex.

type GraphExpr struct {
	Runs []*EdgeRun `parser:"(@@ (\",\" @@)*)?"`
}

type EdgeRun struct {
	Start int64     `parser:"@Int"`
	Edges []*EdgeTo `parser:"@@*"`
}

type EdgeTo struct {
	End int64 `parser:"\"-\" @Int"`
}

var parseGraphExpr = participle.MustBuild[GraphExpr]()

// FromExpr parses an edge-run expression into a Graph.
// The location count is one past the highest location mentioned.
func FromExpr(expr string) (*Graph, error) {
	gx, err := parseGraphExpr.ParseString("", expr)
	if err != nil {
		return nil, err
	}

	maxLoc := int64(-1)
	for _, run := range gx.Runs {
		if run.Start > maxLoc {
			maxLoc = run.Start
		}
		for _, edge := range run.Edges {
			if edge.End > maxLoc {
				maxLoc = edge.End
			}
		}
	}
	if maxLoc < 0 {
		return nil, errors.Wrap(gomoment.ErrBadVertex, "empty graph expression")
	}

	g := NewGraph(int(maxLoc)+1, expr)
	for _, run := range gx.Runs {
		cur := run.Start
		for _, edge := range run.Edges {
			if err := g.AddEdge(int(cur), int(edge.End)); err != nil {
				return nil, errors.Wrapf(err, "edge %d-%d", cur, edge.End)
			}
			cur = edge.End
		}
	}
	return g, nil
}
