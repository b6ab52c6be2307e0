package libmoment_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/moment-systems/gomoment/gomoment"
	"github.com/moment-systems/gomoment/libmoment"
	"github.com/moment-systems/gomoment/libmoment/graph"
)

func triangleSIRSystem(t *testing.T) *libmoment.ODESystem {
	t.Helper()
	rt, err := libmoment.GenerateTuples(graph.Triangle(), sirModel(t), false, 0)
	require.NoError(t, err)
	sys, err := libmoment.NewODESystem(rt)
	require.NoError(t, err)
	return sys
}

func indexOf(t *testing.T, sys *libmoment.ODESystem, verts ...libmoment.Vertex) int {
	t.Helper()
	i, ok := sys.IndexMap().IndexOf(tup(t, verts...))
	require.True(t, ok)
	return i
}

// coefficient extracts d(yDot[row])/d(y[col]) by probing with a unit vector.
func coefficient(t *testing.T, sys gomoment.DiffSystem, row, col int) float64 {
	t.Helper()
	y := make([]float64, sys.Dimension())
	yDot := make([]float64, sys.Dimension())
	y[col] = 1
	require.NoError(t, sys.Derivatives(0, y, yDot))
	return yDot[row]
}

// On the triangle under SIR, the pair ⟨S0 I1⟩ drains through infection of
// vertex 0 (by vertex 1 or 2) and recovery of vertex 1, and is fed by
// infection of vertex 1 by vertex 2 while 0 stays susceptible.
func TestPairEquationOnTriangle(t *testing.T) {
	sys := triangleSIRSystem(t)
	const beta, gamma = 0.6, 0.1

	s0i1 := indexOf(t, sys,
		vtx(libmoment.Susceptible, 0), vtx(libmoment.Infected, 1))
	s0i1i2 := indexOf(t, sys,
		vtx(libmoment.Susceptible, 0), vtx(libmoment.Infected, 1), vtx(libmoment.Infected, 2))
	s0s1i2 := indexOf(t, sys,
		vtx(libmoment.Susceptible, 0), vtx(libmoment.Susceptible, 1), vtx(libmoment.Infected, 2))

	require.InDelta(t, -(beta + gamma), coefficient(t, sys, s0i1, s0i1), 1e-12)
	require.InDelta(t, -beta, coefficient(t, sys, s0i1, s0i1i2), 1e-12)
	require.InDelta(t, +beta, coefficient(t, sys, s0i1, s0s1i2), 1e-12)

	for col := 0; col < sys.Dimension(); col++ {
		if col == s0i1 || col == s0i1i2 || col == s0s1i2 {
			continue
		}
		require.InDelta(t, 0, coefficient(t, sys, s0i1, col), 1e-12, "col %d", col)
	}
}

func TestSingleEquationOnTriangle(t *testing.T) {
	sys := triangleSIRSystem(t)
	const beta = 0.6

	s0 := indexOf(t, sys, vtx(libmoment.Susceptible, 0))
	s0i1 := indexOf(t, sys, vtx(libmoment.Susceptible, 0), vtx(libmoment.Infected, 1))
	s0i2 := indexOf(t, sys, vtx(libmoment.Susceptible, 0), vtx(libmoment.Infected, 2))

	require.InDelta(t, -beta, coefficient(t, sys, s0, s0i1), 1e-12)
	require.InDelta(t, -beta, coefficient(t, sys, s0, s0i2), 1e-12)
	require.InDelta(t, 0, coefficient(t, sys, s0, s0), 1e-12)
}

// Under SIS the compartments are closed: at every location the S and I
// derivatives cancel exactly, for any state vector.
func TestSISConservation(t *testing.T) {
	m, err := libmoment.SIS(0.9, 0.3)
	require.NoError(t, err)
	rt, err := libmoment.GenerateTuples(graph.Toast(), m, false, 0)
	require.NoError(t, err)
	sys, err := libmoment.NewODESystem(rt)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	y := make([]float64, sys.Dimension())
	yDot := make([]float64, sys.Dimension())
	for i := range y {
		y[i] = rng.Float64()
	}
	require.NoError(t, sys.Derivatives(0, y, yDot))

	for loc := 0; loc < 4; loc++ {
		s := indexOf(t, sys, vtx(libmoment.Susceptible, loc))
		i := indexOf(t, sys, vtx(libmoment.Infected, loc))
		require.InDelta(t, 0, yDot[s]+yDot[i], 1e-12, "location %d", loc)
	}
}

func TestDerivativesPure(t *testing.T) {
	sys := triangleSIRSystem(t)

	y := make([]float64, sys.Dimension())
	for i := range y {
		y[i] = 1.0 / float64(i+2)
	}
	a := make([]float64, sys.Dimension())
	b := make([]float64, sys.Dimension())
	require.NoError(t, sys.Derivatives(0, y, a))
	require.NoError(t, sys.Derivatives(3.5, y, b))
	require.Equal(t, a, b)
}

func TestDerivativesDimensionCheck(t *testing.T) {
	sys := triangleSIRSystem(t)
	y := make([]float64, sys.Dimension())
	short := make([]float64, sys.Dimension()-1)

	require.ErrorIs(t, sys.Derivatives(0, short, y), gomoment.ErrDimensionMismatch)
	require.ErrorIs(t, sys.Derivatives(0, y, short), gomoment.ErrDimensionMismatch)
}

// A family truncated below the singles' own references is a configuration
// error, not a silent closure.
func TestMissingSingleReferenceFails(t *testing.T) {
	g := graph.EdgeGraph()
	m := sirModel(t)

	only := []libmoment.Tuple{tup(t, vtx(libmoment.Susceptible, 0))}
	rt := libmoment.RestoreTuples(g, m, false, 0, only)

	_, err := libmoment.NewODESystem(rt)
	require.ErrorIs(t, err, gomoment.ErrMissingTuple)
}

// Multi-member tuples tolerate omitted candidates: dropping them is the
// closure truncation.
func TestTruncatedOrderClosesSilently(t *testing.T) {
	rt, err := libmoment.GenerateTuples(graph.Triangle(), sirModel(t), false, 2)
	require.NoError(t, err)
	sys, err := libmoment.NewODESystem(rt)
	require.NoError(t, err)

	s0i1 := indexOf(t, sys, vtx(libmoment.Susceptible, 0), vtx(libmoment.Infected, 1))
	require.InDelta(t, -(0.6 + 0.1), coefficient(t, sys, s0i1, s0i1), 1e-12)
	for col := 0; col < sys.Dimension(); col++ {
		if col != s0i1 {
			require.InDelta(t, 0, coefficient(t, sys, s0i1, col), 1e-12)
		}
	}
}

func TestEdgeWeightScalesInfectionTerms(t *testing.T) {
	g := graph.EdgeGraph()
	require.NoError(t, g.SetAllWeights(0.5))
	rt, err := libmoment.GenerateTuples(g, sirModel(t), false, 0)
	require.NoError(t, err)
	sys, err := libmoment.NewODESystem(rt)
	require.NoError(t, err)

	s0 := indexOf(t, sys, vtx(libmoment.Susceptible, 0))
	s0i1 := indexOf(t, sys, vtx(libmoment.Susceptible, 0), vtx(libmoment.Infected, 1))
	require.InDelta(t, -0.6*0.5, coefficient(t, sys, s0, s0i1), 1e-12)
}

func TestEquationsRendering(t *testing.T) {
	sys := triangleSIRSystem(t)

	s0i1 := indexOf(t, sys, vtx(libmoment.Susceptible, 0), vtx(libmoment.Infected, 1))
	eq := sys.EquationOf(s0i1, gomoment.PrintOpts{})
	require.Contains(t, eq, "⟨S0 I1⟩' =")
	require.Contains(t, eq, "- β⟨S0 I1 I2⟩")
	require.Contains(t, eq, "+ β⟨S0 S1 I2⟩")
	require.Contains(t, eq, "- γ⟨S0 I1⟩")

	rates := sys.EquationOf(s0i1, gomoment.PrintOpts{Rates: true})
	require.Contains(t, rates, "0.6")
	require.NotContains(t, rates, "β")

	all := sys.Equations(gomoment.PrintOpts{Counts: true})
	require.Contains(t, all, "18 equations")
}

func TestInitialState(t *testing.T) {
	sys := triangleSIRSystem(t)
	im := sys.IndexMap()

	y0, err := libmoment.InitialState(im, []float64{1, 0, 0})
	require.NoError(t, err)

	get := func(verts ...libmoment.Vertex) float64 {
		i, ok := im.IndexOf(tup(t, verts...))
		require.True(t, ok)
		return y0[i]
	}
	require.Equal(t, 1.0, get(vtx(libmoment.Infected, 0)))
	require.Equal(t, 0.0, get(vtx(libmoment.Susceptible, 0)))
	require.Equal(t, 1.0, get(vtx(libmoment.Susceptible, 1)))
	require.Equal(t, 1.0, get(vtx(libmoment.Infected, 0), vtx(libmoment.Susceptible, 1)))
	require.Equal(t, 0.0, get(vtx(libmoment.Susceptible, 0), vtx(libmoment.Infected, 1)))

	_, err = libmoment.InitialState(im, []float64{2, 0, 0})
	require.Error(t, err)
}
