// Package nloptsolve is the concrete trajopt/ik.Solver backed by
// github.com/go-nlopt/nlopt, grounded on the teacher's
// CreateNloptSolver/DoSolve pattern (motionplan/ik/nlopt_test.go): build
// one NLopt instance per solve, set box bounds from the frame's Limits,
// minimize a gradient-free local optimizer (COBYLA) since CostFunc here
// wraps an arbitrary Metric with no analytic gradient.
package nloptsolve

import (
	"context"
	"math"
	"time"

	"github.com/go-nlopt/nlopt"
	"github.com/pkg/errors"

	frame "github.com/kinetic-motion/trajopt/referenceframe"
	"github.com/kinetic-motion/trajopt/trajopt/ik"
)

// Solver adapts nlopt.NLopt to trajopt/ik.Solver.
type Solver struct {
	algorithm nlopt.Algorithm
	timeout   time.Duration
	xtolRel   float64
}

// New builds a Solver using algorithm, aborting a single Solve call after
// timeout. xtolRel is nlopt's relative parameter tolerance for declaring
// convergence.
func New(algorithm nlopt.Algorithm, timeout time.Duration, xtolRel float64) *Solver {
	if xtolRel <= 0 {
		xtolRel = 1e-5
	}
	return &Solver{algorithm: algorithm, timeout: timeout, xtolRel: xtolRel}
}

// NewDefault builds a Solver using COBYLA, the teacher's default for
// gradient-free cost functions, with a one-second timeout.
func NewDefault() *Solver {
	return New(nlopt.LN_COBYLA, time.Second, 1e-5)
}

// Solve implements trajopt/ik.Solver.
func (s *Solver) Solve(ctx context.Context, cost ik.CostFunc, seed []float64, limits []frame.Limit) ([]ik.Solution, error) {
	n := uint(len(seed))
	opt, err := nlopt.NewNLopt(s.algorithm, n)
	if err != nil {
		return nil, errors.Wrap(err, "creating nlopt optimizer")
	}
	defer opt.Destroy()

	lower := make([]float64, n)
	upper := make([]float64, n)
	for i := range lower {
		lower[i] = math.Inf(-1)
		upper[i] = math.Inf(1)
	}
	for i, lim := range limits {
		lower[i] = lim.Min
		upper[i] = lim.Max
	}
	if err := opt.SetLowerBounds(lower); err != nil {
		return nil, errors.Wrap(err, "setting lower bounds")
	}
	if err := opt.SetUpperBounds(upper); err != nil {
		return nil, errors.Wrap(err, "setting upper bounds")
	}
	if err := opt.SetXtolRel(s.xtolRel); err != nil {
		return nil, errors.Wrap(err, "setting xtol")
	}
	if s.timeout > 0 {
		if err := opt.SetMaxTime(s.timeout.Seconds()); err != nil {
			return nil, errors.Wrap(err, "setting max time")
		}
	}

	objective := func(x, gradient []float64) float64 {
		select {
		case <-ctx.Done():
			return posInf
		default:
		}
		return cost(x)
	}
	if err := opt.SetMinObjective(objective); err != nil {
		return nil, errors.Wrap(err, "setting objective")
	}

	x0 := make([]float64, len(seed))
	copy(x0, seed)
	xopt, minf, err := opt.Optimize(x0)
	if err != nil {
		return nil, errors.Wrap(err, "nlopt optimize")
	}
	return []ik.Solution{{Inputs: xopt, Cost: minf}}, nil
}

const posInf = 1e18
