package main

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/moment-systems/gomoment/gomoment"
	"github.com/moment-systems/gomoment/libmoment"
	"github.com/moment-systems/gomoment/libmoment/catalog"
	"github.com/moment-systems/gomoment/libmoment/graph"
)

// Scenario is the YAML description of one derivation or solver run.
type Scenario struct {
	Name     string    `yaml:"name"`
	Graph    GraphSpec `yaml:"graph"`
	Model    ModelSpec `yaml:"model"`
	Closures bool      `yaml:"closures"`
	MaxOrder int       `yaml:"maxOrder"`
	Solve    SolveSpec `yaml:"solve"`
	Output   string    `yaml:"output"`
}

// GraphSpec names a contact network, either as an edge-run expression or
// as a generator kind with its parameters.
type GraphSpec struct {
	Expr   string  `yaml:"expr"`
	Kind   string  `yaml:"kind"`
	Size   int     `yaml:"size"`
	P      float64 `yaml:"p"`
	Seed   int64   `yaml:"seed"`
	Weight float64 `yaml:"weight"`
}

// ModelSpec names a model preset with its rates, or a transition
// expression applied on top of the preset's arities.
type ModelSpec struct {
	Preset      string  `yaml:"preset"`
	Beta        float64 `yaml:"beta"`
	Gamma       float64 `yaml:"gamma"`
	Zeta        float64 `yaml:"zeta"`
	Alpha       float64 `yaml:"alpha"`
	Transitions string  `yaml:"transitions"`
}

// SolveSpec fixes the time grid and the initial infection seeding.
type SolveSpec struct {
	End     float64 `yaml:"end"`
	Step    float64 `yaml:"step"`
	Infect  []int   `yaml:"infect"`
	PInfect float64 `yaml:"pInfect"`
}

func LoadScenario(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc := &Scenario{}
	if err := yaml.Unmarshal(raw, sc); err != nil {
		return nil, errors.Wrapf(err, "scenario %s", path)
	}
	return sc, nil
}

func (gs *GraphSpec) Build() (*graph.Graph, error) {
	var g *graph.Graph
	var err error

	switch {
	case gs.Expr != "":
		g, err = graph.FromExpr(gs.Expr)
	default:
		g, err = buildKind(gs)
	}
	if err != nil {
		return nil, err
	}
	if gs.Weight > 0 {
		if err := g.SetAllWeights(gs.Weight); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func buildKind(gs *GraphSpec) (*graph.Graph, error) {
	switch strings.ToLower(gs.Kind) {
	case "edge":
		return graph.EdgeGraph(), nil
	case "triangle":
		return graph.Triangle(), nil
	case "toast":
		return graph.Toast(), nil
	case "lollipop":
		return graph.Lollipop(), nil
	case "bowtie":
		return graph.BowTie(), nil
	case "path":
		return graph.Path(gs.Size), nil
	case "cycle":
		return graph.Cycle(gs.Size), nil
	case "complete":
		return graph.Complete(gs.Size), nil
	case "star":
		return graph.Star(gs.Size), nil
	case "wheel":
		return graph.Wheel(gs.Size), nil
	case "random", "erdos-renyi":
		return graph.ErdosRenyi(gs.Size, gs.P, gs.Seed), nil
	}
	return nil, errors.Wrapf(gomoment.ErrUnexpectedConfig, "unknown graph kind %q", gs.Kind)
}

func (ms *ModelSpec) Build() (*libmoment.TransitionModel, error) {
	var m *libmoment.TransitionModel
	var err error

	switch strings.ToLower(ms.Preset) {
	case "", "sir":
		m, err = libmoment.SIR(ms.Beta, ms.Gamma)
	case "sis":
		m, err = libmoment.SIS(ms.Beta, ms.Gamma)
	case "sirp":
		m, err = libmoment.SIRP(ms.Beta, ms.Gamma, ms.Zeta, ms.Alpha)
	default:
		return nil, errors.Wrapf(gomoment.ErrUnexpectedConfig, "unknown model preset %q", ms.Preset)
	}
	if err != nil {
		return nil, err
	}
	if ms.Transitions != "" {
		if err := m.ApplyExpr(ms.Transitions); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// BuildTuples builds the scenario's tuple family, going through the
// catalog when one is open.
func (sc *Scenario) BuildTuples(cat *catalog.Catalog) (*libmoment.RequiredTuples, error) {
	g, err := sc.Graph.Build()
	if err != nil {
		return nil, err
	}
	m, err := sc.Model.Build()
	if err != nil {
		return nil, err
	}
	if cat != nil {
		return cat.FetchTupleSet(g, m, sc.Closures, sc.MaxOrder)
	}
	return libmoment.GenerateTuples(g, m, sc.Closures, sc.MaxOrder)
}

// InitialProbabilities expands the seeding spec into one infection
// probability per location.
func (sc *Scenario) InitialProbabilities(n int) []float64 {
	p := sc.Solve.PInfect
	if p <= 0 || p > 1 {
		p = 1
	}
	probs := make([]float64, n)
	for _, loc := range sc.Solve.Infect {
		if loc >= 0 && loc < n {
			probs[loc] = p
		}
	}
	return probs
}
