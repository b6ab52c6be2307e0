package solve_test

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/moment-systems/gomoment/gomoment"
	"github.com/moment-systems/gomoment/libmoment"
	"github.com/moment-systems/gomoment/libmoment/graph"
	"github.com/moment-systems/gomoment/solve"
)

func newSystem(t *testing.T, g *graph.Graph, m *libmoment.TransitionModel) *libmoment.ODESystem {
	t.Helper()
	rt, err := libmoment.GenerateTuples(g, m, false, 0)
	require.NoError(t, err)
	sys, err := libmoment.NewODESystem(rt)
	require.NoError(t, err)
	return sys
}

// An isolated infected vertex under SIR decays exponentially at the
// recovery rate, with no transmission terms to perturb it.
func TestRK4MatchesExponentialDecay(t *testing.T) {
	const gamma = 0.1
	m, err := libmoment.SIR(0.6, gamma)
	require.NoError(t, err)
	sys := newSystem(t, graph.NewGraph(1, "isolated"), m)

	y0, err := libmoment.InitialState(sys.IndexMap(), []float64{1})
	require.NoError(t, err)

	res, err := solve.RK4(sys, y0, solve.DefaultConfig(1))
	require.NoError(t, err)

	i0, ok := sys.IndexMap().IndexOf(mustTuple(t, libmoment.Vertex{State: libmoment.Infected, Loc: 0}))
	require.True(t, ok)

	tEnd, yEnd := res.Final()
	require.InDelta(t, 1.0, tEnd, 1e-9)
	require.InDelta(t, math.Exp(-gamma), yEnd[i0], 1e-9)
}

func TestRK4ClampsToUnitInterval(t *testing.T) {
	m, err := libmoment.SIR(0.6, 0.1)
	require.NoError(t, err)
	sys := newSystem(t, graph.Triangle(), m)

	y0, err := libmoment.InitialState(sys.IndexMap(), []float64{0.9, 0, 0})
	require.NoError(t, err)

	res, err := solve.RK4(sys, y0, solve.Config{End: 5, Step: 0.01})
	require.NoError(t, err)

	for si, row := range res.Values {
		for _, v := range row {
			require.GreaterOrEqual(t, v, 0.0, "step %d", si)
			require.LessOrEqual(t, v, 1.0, "step %d", si)
			if v > 0 {
				require.GreaterOrEqual(t, v, solve.ProbFloor, "step %d", si)
			}
		}
	}
}

// Once a probability decays below the floor it reports exactly zero.
func TestRK4FloorsVanishingProbabilities(t *testing.T) {
	m, err := libmoment.SIR(0.6, 20)
	require.NoError(t, err)
	sys := newSystem(t, graph.NewGraph(1, "isolated"), m)

	y0, err := libmoment.InitialState(sys.IndexMap(), []float64{1})
	require.NoError(t, err)

	res, err := solve.RK4(sys, y0, solve.DefaultConfig(1))
	require.NoError(t, err)

	i0, ok := sys.IndexMap().IndexOf(mustTuple(t, libmoment.Vertex{State: libmoment.Infected, Loc: 0}))
	require.True(t, ok)

	_, yEnd := res.Final()
	require.Equal(t, 0.0, yEnd[i0])
}

func TestRK4RejectsBadInput(t *testing.T) {
	m, err := libmoment.SIR(0.6, 0.1)
	require.NoError(t, err)
	sys := newSystem(t, graph.Triangle(), m)

	short := make([]float64, sys.Dimension()-1)
	_, err = solve.RK4(sys, short, solve.DefaultConfig(1))
	require.ErrorIs(t, err, gomoment.ErrDimensionMismatch)

	y0 := make([]float64, sys.Dimension())
	_, err = solve.RK4(sys, y0, solve.Config{End: 1, Step: 0})
	require.ErrorIs(t, err, gomoment.ErrBadTimeGrid)
	_, err = solve.RK4(sys, y0, solve.Config{Start: 2, End: 1, Step: 0.001})
	require.ErrorIs(t, err, gomoment.ErrBadTimeGrid)
}

func TestWriteCSV(t *testing.T) {
	m, err := libmoment.SIR(0.6, 0.1)
	require.NoError(t, err)
	sys := newSystem(t, graph.EdgeGraph(), m)

	y0, err := libmoment.InitialState(sys.IndexMap(), []float64{1, 0})
	require.NoError(t, err)

	res, err := solve.RK4(sys, y0, solve.Config{End: 0.01, Step: 0.001})
	require.NoError(t, err)
	res.Labels = sys.IndexMap().Labels()

	var buf bytes.Buffer
	require.NoError(t, res.WriteCSV(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1+11) // header plus initial state plus 10 steps
	require.True(t, strings.HasPrefix(lines[0], "t,"))
	require.Contains(t, lines[0], "⟨S0 I1⟩")
	require.True(t, strings.HasPrefix(lines[1], "0,"))
}

func mustTuple(t *testing.T, verts ...libmoment.Vertex) libmoment.Tuple {
	t.Helper()
	tuple, err := libmoment.NewTuple(verts...)
	require.NoError(t, err)
	return tuple
}
