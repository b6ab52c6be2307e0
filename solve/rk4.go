// Package solve integrates moment equation systems with the classical
// fourth-order Runge-Kutta method on a fixed step, keeping the carried
// probabilities inside [0,1] between steps.
package solve

import (
	"github.com/pkg/errors"

	"github.com/moment-systems/gomoment/gomoment"
)

// ProbFloor is the reporting floor: carried probabilities below it are
// treated as exactly zero.
const ProbFloor = 1e-5

// Config fixes the integration time grid.
type Config struct {
	Start float64
	End   float64
	Step  float64
}

// DefaultConfig integrates [0, tEnd] on the step the reference tooling uses.
func DefaultConfig(tEnd float64) Config {
	return Config{End: tEnd, Step: 0.001}
}

// RK4 integrates sys from y0 over cfg's grid, recording every step
// (including the initial state). The state carried between steps is
// clamped: anything below ProbFloor reports 0, anything above 1 reports 1.
func RK4(sys gomoment.DiffSystem, y0 []float64, cfg Config) (*Results, error) {
	dim := sys.Dimension()
	if len(y0) != dim {
		return nil, errors.Wrapf(gomoment.ErrDimensionMismatch, "want %d, got %d", dim, len(y0))
	}
	if cfg.Step <= 0 || cfg.End <= cfg.Start {
		return nil, errors.Wrapf(gomoment.ErrBadTimeGrid, "start %v end %v step %v", cfg.Start, cfg.End, cfg.Step)
	}

	steps := int((cfg.End-cfg.Start)/cfg.Step + 0.5)
	res := &Results{
		Times:  make([]float64, 0, steps+1),
		Values: make([][]float64, 0, steps+1),
	}

	y := append([]float64(nil), y0...)
	clamp(y)
	res.record(cfg.Start, y)

	k1 := make([]float64, dim)
	k2 := make([]float64, dim)
	k3 := make([]float64, dim)
	k4 := make([]float64, dim)
	tmp := make([]float64, dim)

	h := cfg.Step
	for si := 1; si <= steps; si++ {
		t := cfg.Start + float64(si-1)*h

		if err := sys.Derivatives(t, y, k1); err != nil {
			return nil, err
		}
		for i := range tmp {
			tmp[i] = y[i] + h/2*k1[i]
		}
		if err := sys.Derivatives(t+h/2, tmp, k2); err != nil {
			return nil, err
		}
		for i := range tmp {
			tmp[i] = y[i] + h/2*k2[i]
		}
		if err := sys.Derivatives(t+h/2, tmp, k3); err != nil {
			return nil, err
		}
		for i := range tmp {
			tmp[i] = y[i] + h*k3[i]
		}
		if err := sys.Derivatives(t+h, tmp, k4); err != nil {
			return nil, err
		}

		for i := range y {
			y[i] += h / 6 * (k1[i] + 2*k2[i] + 2*k3[i] + k4[i])
		}
		clamp(y)
		res.record(cfg.Start+float64(si)*h, y)
	}
	return res, nil
}

func clamp(y []float64) {
	for i, v := range y {
		switch {
		case v < ProbFloor:
			y[i] = 0
		case v > 1:
			y[i] = 1
		}
	}
}
