package libmoment

import (
	"github.com/pkg/errors"

	"github.com/moment-systems/gomoment/gomoment"
)

// TransitionModel describes a compartmental model: its alphabet, how each
// compartment is entered and exited, and the rate of each directed
// transition between compartments.
//
// Entry arity drives equation assembly: a compartment with entry arity 2
// is entered through pairwise contact with a neighbour already in that
// compartment; arity 1 is entered spontaneously; arity 0 is never entered.
// Exit arity is only read for zero versus non-zero: compartments that are
// never exited (absorbing sinks) drop out of the tracked alphabet and are
// recovered by conservation.
type TransitionModel struct {
	states  Alphabet
	enter   []int
	exit    []int
	adj     [][]bool
	rates   [][]float64
	symbols [][]string
	tracked Alphabet
}

// NewTransitionModel builds a model over the given alphabet with per-state
// entry and exit arities. The tracked alphabet the arities imply must
// reduce to {S,I} or {S,I,P}.
func NewTransitionModel(states Alphabet, enter, exit []int) (*TransitionModel, error) {
	if len(enter) != len(states) || len(exit) != len(states) {
		return nil, errors.Wrap(gomoment.ErrUnexpectedConfig, "arity counts do not match alphabet")
	}
	for i := range states {
		if enter[i] < 0 || enter[i] > 2 || exit[i] < 0 || exit[i] > 2 {
			return nil, errors.Wrapf(gomoment.ErrUnexpectedConfig, "arity out of range for state %v", states[i])
		}
	}

	var exited Alphabet
	for i, s := range states {
		if exit[i] != 0 {
			exited = append(exited, s)
		}
	}
	tracked, err := exited.Reduce()
	if err != nil {
		return nil, err
	}
	if len(tracked) != len(exited) {
		return nil, errors.Wrapf(gomoment.ErrUnexpectedConfig, "untrackable exited states in %v", exited)
	}

	m := &TransitionModel{
		states:  states,
		enter:   append([]int(nil), enter...),
		exit:    append([]int(nil), exit...),
		adj:     make([][]bool, len(states)),
		rates:   make([][]float64, len(states)),
		symbols: make([][]string, len(states)),
		tracked: tracked,
	}
	for i := range states {
		m.adj[i] = make([]bool, len(states))
		m.rates[i] = make([]float64, len(states))
		m.symbols[i] = make([]string, len(states))
	}
	return m, nil
}

// AddTransition registers the directed transition from -> to at the given
// rate, assigning the conventional symbol for that pair.
func (m *TransitionModel) AddTransition(from, to State, rate float64) error {
	fi, ti := m.states.IndexOf(from), m.states.IndexOf(to)
	if fi < 0 || ti < 0 {
		return errors.Wrapf(gomoment.ErrInvalidState, "transition %v-%v", from, to)
	}
	if fi == ti {
		return errors.Wrapf(gomoment.ErrBadTransition, "self transition %v", from)
	}
	if rate < 0 {
		return errors.Wrapf(gomoment.ErrBadRate, "rate %v for %v-%v", rate, from, to)
	}
	m.adj[fi][ti] = true
	m.rates[fi][ti] = rate
	m.symbols[fi][ti] = defaultSymbol(from, to)
	return nil
}

// SetSymbol overrides the printable rate symbol for a registered transition.
func (m *TransitionModel) SetSymbol(from, to State, symbol string) error {
	fi, ti := m.states.IndexOf(from), m.states.IndexOf(to)
	if fi < 0 || ti < 0 || !m.adj[fi][ti] {
		return errors.Wrapf(gomoment.ErrBadTransition, "no transition %v-%v", from, to)
	}
	m.symbols[fi][ti] = symbol
	return nil
}

func defaultSymbol(from, to State) string {
	switch {
	case from == Susceptible && to == Infected:
		return "β"
	case from == Infected && (to == Recovered || to == Susceptible):
		return "γ"
	case from == Susceptible && to == Protected:
		return "ζ"
	case from == Protected && to == Susceptible:
		return "α"
	}
	return "κ"
}

// States returns the full model alphabet.
func (m *TransitionModel) States() Alphabet { return m.states }

// Tracked returns the reduced alphabet tuples are generated over.
func (m *TransitionModel) Tracked() Alphabet { return m.tracked }

// EnterArity returns the entry arity of s, 0 for unknown states.
func (m *TransitionModel) EnterArity(s State) int {
	if i := m.states.IndexOf(s); i >= 0 {
		return m.enter[i]
	}
	return 0
}

// ExitArity returns the exit arity of s, 0 for unknown states.
func (m *TransitionModel) ExitArity(s State) int {
	if i := m.states.IndexOf(s); i >= 0 {
		return m.exit[i]
	}
	return 0
}

// HasTransition reports whether from -> to is registered.
func (m *TransitionModel) HasTransition(from, to State) bool {
	fi, ti := m.states.IndexOf(from), m.states.IndexOf(to)
	return fi >= 0 && ti >= 0 && m.adj[fi][ti]
}

// Rate returns the rate of from -> to, 0 when unregistered.
func (m *TransitionModel) Rate(from, to State) float64 {
	if m.HasTransition(from, to) {
		return m.rates[m.states.IndexOf(from)][m.states.IndexOf(to)]
	}
	return 0
}

// Symbol returns the printable rate symbol of from -> to.
func (m *TransitionModel) Symbol(from, to State) string {
	if m.HasTransition(from, to) {
		return m.symbols[m.states.IndexOf(from)][m.states.IndexOf(to)]
	}
	return ""
}

// TransitionsFrom returns the destinations reachable from s, in alphabet order.
func (m *TransitionModel) TransitionsFrom(s State) []State {
	var out []State
	for _, to := range m.states {
		if m.HasTransition(s, to) {
			out = append(out, to)
		}
	}
	return out
}

// TransitionsInto returns the sources that can enter s, in alphabet order.
func (m *TransitionModel) TransitionsInto(s State) []State {
	var out []State
	for _, from := range m.states {
		if m.HasTransition(from, s) {
			out = append(out, from)
		}
	}
	return out
}

// SIR is the susceptible-infected-recovered model: infection through
// contact at rate beta, spontaneous recovery at rate gamma.
func SIR(beta, gamma float64) (*TransitionModel, error) {
	m, err := NewTransitionModel(
		Alphabet{Susceptible, Infected, Recovered},
		[]int{0, 2, 1},
		[]int{2, 1, 0},
	)
	if err != nil {
		return nil, err
	}
	if err = m.AddTransition(Susceptible, Infected, beta); err != nil {
		return nil, err
	}
	if err = m.AddTransition(Infected, Recovered, gamma); err != nil {
		return nil, err
	}
	return m, nil
}

// SIS is the susceptible-infected-susceptible model: infection through
// contact at rate beta, spontaneous return to susceptibility at rate gamma.
func SIS(beta, gamma float64) (*TransitionModel, error) {
	m, err := NewTransitionModel(
		Alphabet{Susceptible, Infected},
		[]int{1, 2},
		[]int{2, 1},
	)
	if err != nil {
		return nil, err
	}
	if err = m.AddTransition(Susceptible, Infected, beta); err != nil {
		return nil, err
	}
	if err = m.AddTransition(Infected, Susceptible, gamma); err != nil {
		return nil, err
	}
	return m, nil
}

// SIRP extends SIR with a protected compartment: susceptibles protect at
// rate zeta and protection wanes back to susceptibility at rate alpha.
func SIRP(beta, gamma, zeta, alpha float64) (*TransitionModel, error) {
	m, err := NewTransitionModel(
		Alphabet{Susceptible, Infected, Recovered, Protected},
		[]int{1, 2, 1, 1},
		[]int{2, 1, 0, 1},
	)
	if err != nil {
		return nil, err
	}
	for _, tr := range []struct {
		from, to State
		rate     float64
	}{
		{Susceptible, Infected, beta},
		{Infected, Recovered, gamma},
		{Susceptible, Protected, zeta},
		{Protected, Susceptible, alpha},
	} {
		if err = m.AddTransition(tr.from, tr.to, tr.rate); err != nil {
			return nil, err
		}
	}
	return m, nil
}
