package solve

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/moment-systems/gomoment/gomoment"
)

// Results is the integration record: one row of tuple probabilities per
// recorded time.
type Results struct {
	Labels []string
	Times  []float64
	Values [][]float64
}

func (r *Results) record(t float64, y []float64) {
	r.Times = append(r.Times, t)
	r.Values = append(r.Values, append([]float64(nil), y...))
}

// At returns the row recorded at step index si.
func (r *Results) At(si int) (t float64, y []float64) {
	return r.Times[si], r.Values[si]
}

// Final returns the last recorded row.
func (r *Results) Final() (t float64, y []float64) {
	return r.At(len(r.Times) - 1)
}

// WriteCSV streams the results as a time-by-tuple matrix:
// a "t" column followed by one column per label.
func (r *Results) WriteCSV(w io.Writer) error {
	if len(r.Values) > 0 && len(r.Labels) != len(r.Values[0]) {
		return gomoment.ErrDimensionMismatch
	}
	cw := csv.NewWriter(w)

	header := append([]string{"t"}, r.Labels...)
	if err := cw.Write(header); err != nil {
		return err
	}
	row := make([]string, 1+len(r.Labels))
	for si, t := range r.Times {
		row[0] = strconv.FormatFloat(t, 'g', -1, 64)
		for i, v := range r.Values[si] {
			row[i+1] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
