package libmoment

import (
	"strconv"
	"strings"

	"github.com/moment-systems/gomoment/gomoment"
)

// Symbolic rendering is cosmetic: it is recomputed from the assembled
// terms on every call and never feeds back into the numeric path.

// EquationOf renders the moment equation of the tuple at index i.
func (sys *ODESystem) EquationOf(i int, opts gomoment.PrintOpts) string {
	var b strings.Builder
	b.WriteString(sys.im.At(i).String())
	b.WriteString("' =")
	if len(sys.terms[i]) == 0 {
		b.WriteString(" 0")
		return b.String()
	}
	for _, tm := range sys.terms[i] {
		if tm.sign < 0 {
			b.WriteString(" - ")
		} else {
			b.WriteString(" + ")
		}
		if opts.Rates || tm.symbol == "" {
			b.WriteString(formatRate(tm.rate * tm.scale))
		} else {
			if tm.scale != 1 {
				b.WriteString(formatRate(tm.scale))
				b.WriteString("·")
			}
			b.WriteString(tm.symbol)
		}
		b.WriteString(tm.tuple.String())
	}
	return b.String()
}

// Equations renders the full system, one equation per line.
func (sys *ODESystem) Equations(opts gomoment.PrintOpts) string {
	var b strings.Builder
	for i := 0; i < sys.im.Len(); i++ {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(sys.EquationOf(i, opts))
	}
	if opts.Counts {
		b.WriteByte('\n')
		b.WriteString(strconv.Itoa(sys.im.Len()))
		b.WriteString(" equations")
	}
	return b.String()
}

func formatRate(r float64) string {
	return strconv.FormatFloat(r, 'g', -1, 64)
}
