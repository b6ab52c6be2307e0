package libmoment

import (
	"github.com/pkg/errors"

	"github.com/moment-systems/gomoment/gomoment"
	"github.com/moment-systems/gomoment/libmoment/graph"
)

// IndexMap is the frozen bijection between a generated tuple family and
// state-vector positions. It is built once per family and never rebuilt:
// a RequiredTuples is immutable, so its ordering is too.
type IndexMap struct {
	tuples []Tuple
	index  map[TupleKey]int
}

// NewIndexMap freezes the family's canonical order into an index.
func NewIndexMap(rt *RequiredTuples) *IndexMap {
	im := &IndexMap{
		tuples: rt.Tuples(),
		index:  make(map[TupleKey]int, rt.Len()),
	}
	for i, t := range im.tuples {
		im.index[t.Key()] = i
	}
	return im
}

func (im *IndexMap) Len() int       { return len(im.tuples) }
func (im *IndexMap) At(i int) Tuple { return im.tuples[i] }

// IndexOf returns the state-vector position of t.
func (im *IndexMap) IndexOf(t Tuple) (int, bool) {
	i, ok := im.index[t.Key()]
	return i, ok
}

// Labels returns the rendered tuple per position, for report headers.
func (im *IndexMap) Labels() []string {
	labels := make([]string, len(im.tuples))
	for i, t := range im.tuples {
		labels[i] = t.String()
	}
	return labels
}

// term is one signed contribution rate × scale × y[index] to a tuple's
// derivative. scale is the transmission weight of the triggering edge,
// 1 for spontaneous transitions.
type term struct {
	rate   float64
	scale  float64
	sign   int
	symbol string
	tuple  Tuple
	index  int
}

func (tm term) coeff() float64 {
	return float64(tm.sign) * tm.rate * tm.scale
}

// ODESystem is the exact moment equation system over a tuple family.
// The right-hand side is linear with constant coefficients, so every
// term is assembled once at construction; Derivatives then reduces to
// a sparse accumulation and stays pure.
type ODESystem struct {
	g     *graph.Graph
	model *TransitionModel
	rt    *RequiredTuples
	im    *IndexMap
	terms [][]term
}

// NewODESystem assembles the equations for a generated tuple family.
//
// Candidate tuples outside the family contribute nothing: their omission
// is the moment-closure truncation itself. Single-member tuples are the
// exception; a single referencing an untracked tuple means the family is
// inconsistent and construction fails with ErrMissingTuple.
func NewODESystem(rt *RequiredTuples) (*ODESystem, error) {
	sys := &ODESystem{
		g:     rt.Graph(),
		model: rt.Model(),
		rt:    rt,
		im:    NewIndexMap(rt),
	}
	sys.terms = make([][]term, rt.Len())
	for i, t := range rt.Tuples() {
		terms, err := sys.assemble(t)
		if err != nil {
			return nil, errors.Wrapf(err, "equation for %v", t)
		}
		sys.terms[i] = terms
	}
	return sys, nil
}

// assemble applies the chain rule over the tuple's members: each member's
// exits drain probability, each member's entries feed it, and
// contact-driven transitions contribute one term per graph neighbour.
func (sys *ODESystem) assemble(t Tuple) ([]term, error) {
	strict := t.Len() == 1
	var out []term

	add := func(sign int, rate, scale float64, symbol string, cand Tuple) error {
		idx, ok := sys.im.IndexOf(cand)
		if !ok {
			if strict {
				return errors.Wrapf(gomoment.ErrMissingTuple, "%v", cand)
			}
			return nil
		}
		out = append(out, term{
			rate:   rate,
			scale:  scale,
			sign:   sign,
			symbol: symbol,
			tuple:  cand,
			index:  idx,
		})
		return nil
	}

	for mi, v := range t.Vertices() {
		// Exits from v.State.
		for _, to := range sys.model.TransitionsFrom(v.State) {
			rate := sys.model.Rate(v.State, to)
			symbol := sys.model.Symbol(v.State, to)
			switch sys.model.EnterArity(to) {
			case 2:
				for _, nb := range sys.g.Neighbors(v.Loc) {
					cand, ok := t.With(Vertex{State: to, Loc: nb})
					if !ok {
						continue
					}
					if err := add(-1, rate, sys.g.Weight(nb, v.Loc), symbol, cand); err != nil {
						return nil, err
					}
				}
			case 1:
				if err := add(-1, rate, 1, symbol, t); err != nil {
					return nil, err
				}
			}
		}

		// Entries into v.State.
		enter := sys.model.EnterArity(v.State)
		if enter == 0 {
			continue
		}
		others := t.Without(mi)
		for _, from := range sys.model.TransitionsInto(v.State) {
			rate := sys.model.Rate(from, v.State)
			symbol := sys.model.Symbol(from, v.State)
			base, ok := others.With(Vertex{State: from, Loc: v.Loc})
			if !ok {
				continue
			}
			switch enter {
			case 2:
				for _, nb := range sys.g.Neighbors(v.Loc) {
					cand, ok := base.With(Vertex{State: v.State, Loc: nb})
					if !ok {
						continue
					}
					if err := add(+1, rate, sys.g.Weight(nb, v.Loc), symbol, cand); err != nil {
						return nil, err
					}
				}
			case 1:
				if err := add(+1, rate, 1, symbol, base); err != nil {
					return nil, err
				}
			}
		}
	}
	return out, nil
}

func (sys *ODESystem) Dimension() int          { return sys.im.Len() }
func (sys *ODESystem) IndexMap() *IndexMap     { return sys.im }
func (sys *ODESystem) Tuples() *RequiredTuples { return sys.rt }

// Derivatives writes the moment equations' right-hand side into yDot.
// Implements gomoment.DiffSystem; the system is autonomous, t is unused.
func (sys *ODESystem) Derivatives(t float64, y, yDot []float64) error {
	dim := sys.im.Len()
	if len(y) != dim || len(yDot) != dim {
		return errors.Wrapf(gomoment.ErrDimensionMismatch,
			"want %d, got y=%d yDot=%d", dim, len(y), len(yDot))
	}
	for i := range yDot {
		yDot[i] = 0
	}
	for i, terms := range sys.terms {
		for _, tm := range terms {
			yDot[i] += tm.coeff() * y[tm.index]
		}
	}
	return nil
}

// InitialState builds the joint initial probability vector from per-location
// infection probabilities, assuming independence: an I member contributes
// pInfect[loc], an S member 1-pInfect[loc], and any other compartment starts
// empty.
func InitialState(im *IndexMap, pInfect []float64) ([]float64, error) {
	for _, p := range pInfect {
		if p < 0 || p > 1 {
			return nil, errors.Wrapf(gomoment.ErrUnexpectedConfig, "infection probability %v", p)
		}
	}
	y0 := make([]float64, im.Len())
	for i := 0; i < im.Len(); i++ {
		prob := 1.0
		for _, v := range im.At(i).Vertices() {
			p := 0.0
			if v.Loc < len(pInfect) {
				p = pInfect[v.Loc]
			}
			switch v.State {
			case Infected:
				prob *= p
			case Susceptible:
				prob *= 1 - p
			default:
				prob = 0
			}
		}
		y0[i] = prob
	}
	return y0, nil
}
