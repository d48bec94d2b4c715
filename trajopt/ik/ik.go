// Package ik is the narrow solver-facing contract used to seed a single
// frame's joint state at switch-introduction time (InitCopy's fuller
// cousin): given a target pose and a frame, find joint values that reach
// it. It mirrors go.viam.com/rdk/motionplan/ik's Metric/CostFunc/Solver
// split so a concrete solver (trajopt/nloptsolve) never needs to know
// about poses or frames: it sees only a CostFunc and referenceframe Limits.
package ik

import (
	"context"

	frame "github.com/kinetic-motion/trajopt/referenceframe"
	spatial "github.com/kinetic-motion/trajopt/spatialmath"
)

// Metric scores how far a candidate pose is from some implicit goal;
// lower is better, zero is exact.
type Metric func(candidate spatial.Pose) float64

// NewSquaredNormMetric returns a Metric that is the squared Euclidean
// distance between candidate and goal's points, plus the squared geodesic
// orientation distance.
func NewSquaredNormMetric(goal spatial.Pose) Metric {
	return func(candidate spatial.Pose) float64 {
		d := candidate.Point().Sub(goal.Point())
		posErr := d.Dot(d)
		angErr := spatial.GeodesicDistance(candidate.Orientation(), goal.Orientation())
		return posErr + angErr*angErr
	}
}

// NewScaledSquaredNormMetric is NewSquaredNormMetric with orientation error
// weighted by orientScale, for targets that care more about position than
// heading (or vice versa).
func NewScaledSquaredNormMetric(goal spatial.Pose, orientScale float64) Metric {
	return func(candidate spatial.Pose) float64 {
		d := candidate.Point().Sub(goal.Point())
		posErr := d.Dot(d)
		angErr := spatial.GeodesicDistance(candidate.Orientation(), goal.Orientation())
		return posErr + orientScale*angErr*angErr
	}
}

// CostFunc is what a Solver minimizes: a function of a frame's raw joint
// vector.
type CostFunc func(inputs []float64) float64

// NewMetricMinFunc builds a CostFunc that transforms inputs through f and
// scores the resulting pose with metric.
func NewMetricMinFunc(metric Metric, f frame.Frame) CostFunc {
	return func(inputs []float64) float64 {
		pose, err := f.Transform(frame.FloatsToInputs(inputs))
		if err != nil {
			return posInf
		}
		return metric(pose)
	}
}

const posInf = 1e18

// Solution is one candidate answer a Solver reports, paired with its final
// cost so callers can rank multiple seeds.
type Solution struct {
	Inputs []float64
	Cost   float64
}

// Solver is the contract a concrete nonlinear optimizer backend satisfies.
type Solver interface {
	// Solve minimizes cost starting from seed, subject to limits, and
	// returns every solution found within the solver's internal budget
	// (a multi-seed solver may report more than one).
	Solve(ctx context.Context, cost CostFunc, seed []float64, limits []frame.Limit) ([]Solution, error)
}

// DoSolve runs solver once per seed in seeds and concatenates the results,
// mirroring the teacher's DoSolve fan-out over multiple starting points.
func DoSolve(ctx context.Context, solver Solver, cost CostFunc, seeds [][]float64, limits [][]frame.Limit) ([]Solution, error) {
	var out []Solution
	for i, seed := range seeds {
		var lim []frame.Limit
		if i < len(limits) {
			lim = limits[i]
		} else if len(limits) > 0 {
			lim = limits[0]
		}
		sols, err := solver.Solve(ctx, cost, seed, lim)
		if err != nil {
			return nil, err
		}
		out = append(out, sols...)
	}
	return out, nil
}
