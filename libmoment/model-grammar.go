package libmoment

import (
	"github.com/alecthomas/participle/v2"
	"github.com/pkg/errors"

	"github.com/moment-systems/gomoment/gomoment"
)

// Transition rates can be expressed compactly, e.g. "S-I:0.6, I-R:0.1".

type TransitionExpr struct {
	Transitions []*TransitionSpec `parser:"(@@ (\",\" @@)*)?"`
}

type TransitionSpec struct {
	From string  `parser:"@Ident"`
	To   string  `parser:"\"-\" @Ident"`
	Rate float64 `parser:"\":\" @(Float | Int)"`
}

var parseTransitionExpr = participle.MustBuild[TransitionExpr]()

// ApplyExpr parses a transition expression and registers every pair on m.
func (m *TransitionModel) ApplyExpr(expr string) error {
	tx, err := parseTransitionExpr.ParseString("", expr)
	if err != nil {
		return err
	}
	for _, spec := range tx.Transitions {
		from, err := parseStateTag(spec.From)
		if err != nil {
			return err
		}
		to, err := parseStateTag(spec.To)
		if err != nil {
			return err
		}
		if err := m.AddTransition(from, to, spec.Rate); err != nil {
			return err
		}
	}
	return nil
}

func parseStateTag(tag string) (State, error) {
	if len(tag) != 1 {
		return 0, errors.Wrapf(gomoment.ErrInvalidState, "state tag %q", tag)
	}
	return ParseState(tag[0])
}
