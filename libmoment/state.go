// Package libmoment derives moment-closure ODE systems for compartmental
// epidemic models on contact networks: it enumerates the joint-probability
// tuples a model requires and assembles their exact rate equations.
package libmoment

import (
	"github.com/pkg/errors"

	"github.com/moment-systems/gomoment/gomoment"
)

// State identifies a compartment of an epidemic model.
// The zero value is not a valid state.
type State byte

const (
	Susceptible State = 'S'
	Infected    State = 'I'
	Recovered   State = 'R'
	Protected   State = 'P'
)

// ParseState maps a compartment tag to its State,
// rejecting anything outside the closed enum.
func ParseState(tag byte) (State, error) {
	switch s := State(tag); s {
	case Susceptible, Infected, Recovered, Protected:
		return s, nil
	}
	return 0, errors.Wrapf(gomoment.ErrInvalidState, "state tag %q", tag)
}

func (s State) String() string {
	return string(rune(s))
}

// Alphabet is an ordered set of distinct states.
type Alphabet []State

// ParseAlphabet parses a string of compartment tags such as "SIR".
func ParseAlphabet(tags string) (Alphabet, error) {
	a := make(Alphabet, 0, len(tags))
	for i := 0; i < len(tags); i++ {
		s, err := ParseState(tags[i])
		if err != nil {
			return nil, err
		}
		if a.IndexOf(s) >= 0 {
			return nil, errors.Wrapf(gomoment.ErrInvalidState, "duplicate state %v", s)
		}
		a = append(a, s)
	}
	return a, nil
}

// IndexOf returns the position of s in the alphabet, or -1.
func (a Alphabet) IndexOf(s State) int {
	for i, cur := range a {
		if cur == s {
			return i
		}
	}
	return -1
}

func (a Alphabet) Contains(s State) bool {
	return a.IndexOf(s) >= 0
}

func (a Alphabet) String() string {
	tags := make([]byte, len(a))
	for i, s := range a {
		tags[i] = byte(s)
	}
	return string(tags)
}

var (
	alphabetSI  = Alphabet{Susceptible, Infected}
	alphabetSIP = Alphabet{Susceptible, Infected, Protected}
)

// Reduce maps a model alphabet to the alphabet actually tracked by tuples.
// The trailing sink compartment is recoverable by conservation and drops out:
// {S,I} and {S,I,R} reduce to {S,I}; {S,I,P} and {S,I,R,P} reduce to {S,I,P}.
// Any other alphabet is a configuration error.
func (a Alphabet) Reduce() (Alphabet, error) {
	var hasS, hasI, hasP bool
	for _, s := range a {
		switch s {
		case Susceptible:
			hasS = true
		case Infected:
			hasI = true
		case Protected:
			hasP = true
		}
	}
	if !hasS || !hasI {
		return nil, errors.Wrapf(gomoment.ErrUnexpectedConfig, "unsupported alphabet %v", a)
	}
	if hasP {
		return alphabetSIP, nil
	}
	return alphabetSI, nil
}
