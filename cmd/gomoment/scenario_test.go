package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/moment-systems/gomoment/libmoment"
)

const sampleScenario = `
name: lollipop-sir
graph:
  kind: lollipop
  weight: 0.8
model:
  preset: sir
  beta: 0.6
  gamma: 0.1
closures: true
solve:
  end: 5
  step: 0.01
  infect: [0, 3]
  pInfect: 0.9
output: out.csv
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, sampleScenario))
	require.NoError(t, err)

	require.Equal(t, "lollipop-sir", sc.Name)
	require.Equal(t, "lollipop", sc.Graph.Kind)
	require.Equal(t, 0.8, sc.Graph.Weight)
	require.True(t, sc.Closures)
	require.Equal(t, []int{0, 3}, sc.Solve.Infect)
	require.Equal(t, "out.csv", sc.Output)

	g, err := sc.Graph.Build()
	require.NoError(t, err)
	require.Equal(t, 4, g.NumVertices())
	require.Equal(t, 0.8, g.Weight(0, 1))

	m, err := sc.Model.Build()
	require.NoError(t, err)
	require.Equal(t, 0.6, m.Rate(libmoment.Susceptible, libmoment.Infected))

	probs := sc.InitialProbabilities(g.NumVertices())
	require.Equal(t, []float64{0.9, 0, 0, 0.9}, probs)
}

func TestScenarioBuildTuples(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, sampleScenario))
	require.NoError(t, err)

	rt, err := sc.BuildTuples(nil)
	require.NoError(t, err)
	require.Equal(t, 8, rt.Counts()[0])
}

func TestGraphSpecExprWinsOverKind(t *testing.T) {
	gs := GraphSpec{Expr: "0-1", Kind: "complete", Size: 5}
	g, err := gs.Build()
	require.NoError(t, err)
	require.Equal(t, 2, g.NumVertices())
}

func TestBadSpecs(t *testing.T) {
	_, err := (&GraphSpec{Kind: "klein-bottle"}).Build()
	require.Error(t, err)

	_, err = (&ModelSpec{Preset: "seir"}).Build()
	require.Error(t, err)

	_, err = LoadScenario(writeScenario(t, "graph: [not, a, map]"))
	require.Error(t, err)
}
