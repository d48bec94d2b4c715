package trajopt

import (
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	frame "github.com/kinetic-motion/trajopt/referenceframe"
)

// InitStrategy selects how PathState seeds its decision vector before a
// solver run.
type InitStrategy int

const (
	// InitStrategyConstant repeats one joint vector across every live slice.
	InitStrategyConstant InitStrategy = iota
	// InitStrategyWaypoints linearly interpolates between user waypoints.
	InitStrategyWaypoints
	// InitStrategyNoise perturbs the current warm-start by Gaussian noise,
	// used to escape a degenerate previous solution between re-solves.
	InitStrategyNoise
)

// PathState owns the flattened decision vector: one contiguous block of
// joint coordinates per live slice (t = 0..T-1), in a fixed frame order.
// Prefix slices (t < 0) are never part of the decision vector; they hold
// PathConfig's fixed initial condition (spec's Open Question (b)/(c)).
type PathState struct {
	pc          *PathConfig
	frameOrder  []string
	dofPerFrame map[string]int
	offsets     map[string]int
	sliceWidth  int
}

// NewPathState builds a PathState over pc, fixing the decision-vector frame
// order to the sorted original frame IDs plus any switch-introduced frames
// encountered in the frame order, each contributing len(DoF()) columns (as
// of slice 0; a frame absent at slice 0 contributes none).
func NewPathState(pc *PathConfig) (*PathState, error) {
	seen := map[string]bool{}
	var order []string
	for _, id := range pc.world.OriginalFrameIDs() {
		order = append(order, id)
		seen[id] = true
	}
	for _, sw := range pc.switches {
		if sw.Op == OpAddJoint && !seen[sw.Frame] {
			order = append(order, sw.Frame)
			seen[sw.Frame] = true
		}
	}
	dof := map[string]int{}
	offsets := map[string]int{}
	width := 0
	for _, name := range order {
		f, err := pc.Frame(0, name)
		if err != nil {
			// frame not present at t=0 (introduced later): it gets no
			// offset and no columns in the decision vector.
			continue
		}
		dof[name] = len(f.DoF())
		offsets[name] = width
		width += dof[name]
	}
	return &PathState{pc: pc, frameOrder: order, dofPerFrame: dof, offsets: offsets, sliceWidth: width}, nil
}

// SliceWidth is the number of decision-vector columns per live slice.
func (ps *PathState) SliceWidth() int { return ps.sliceWidth }

// Len is the total decision-vector length across all T live slices.
func (ps *PathState) Len() int { return ps.sliceWidth * ps.pc.T }

// column returns the flattened-vector index of frameName's jth coordinate
// at live slice t.
func (ps *PathState) column(t int, frameName string, j int) (int, error) {
	if t < 0 || t >= ps.pc.T {
		return 0, ErrTupleOutOfRange
	}
	off, ok := ps.offsets[frameName]
	if !ok {
		return 0, ErrFrameMissing
	}
	return t*ps.sliceWidth + off + j, nil
}

// Flatten reads PathConfig's current joint state into one flat vector.
func (ps *PathState) Flatten() []float64 {
	x := make([]float64, ps.Len())
	for t := 0; t < ps.pc.T; t++ {
		for _, name := range ps.frameOrder {
			off, ok := ps.offsets[name]
			if !ok {
				continue
			}
			vals, err := ps.pc.JointState(t, name)
			if err != nil {
				continue
			}
			for j, v := range vals {
				x[t*ps.sliceWidth+off+j] = float64(v)
			}
		}
	}
	return x
}

// Unflatten writes x back into PathConfig's joint state.
func (ps *PathState) Unflatten(x []float64) error {
	if len(x) != ps.Len() {
		return errors.Errorf("decision vector has length %d, want %d", len(x), ps.Len())
	}
	for t := 0; t < ps.pc.T; t++ {
		for _, name := range ps.frameOrder {
			off, ok := ps.offsets[name]
			if !ok {
				continue
			}
			n := ps.dofPerFrame[name]
			vals := make([]frame.Input, n)
			for j := 0; j < n; j++ {
				vals[j] = frame.Input(x[t*ps.sliceWidth+off+j])
			}
			if err := ps.pc.SetJointState(t, name, vals); err != nil {
				return err
			}
		}
	}
	return nil
}

// InitConstant seeds every live slice with the same joint vector per frame.
func (ps *PathState) InitConstant(values map[string][]float64) error {
	for t := 0; t < ps.pc.T; t++ {
		for name, v := range values {
			if err := ps.pc.SetJointState(t, name, frame.FloatsToInputs(v)); err != nil {
				return err
			}
		}
	}
	return nil
}

// InitWaypoints linearly interpolates, slice by slice, between consecutive
// user-supplied waypoints for each frame; waypoints[name] must have at
// least 2 rows.
func (ps *PathState) InitWaypoints(waypoints map[string][][]float64) error {
	for name, wps := range waypoints {
		if len(wps) < 2 {
			return errors.Errorf("frame %q needs at least 2 waypoints, got %d", name, len(wps))
		}
		segments := len(wps) - 1
		stepsPerSegment := ps.pc.T / segments
		if stepsPerSegment == 0 {
			stepsPerSegment = 1
		}
		for t := 0; t < ps.pc.T; t++ {
			seg := t / stepsPerSegment
			if seg >= segments {
				seg = segments - 1
			}
			by := float64(t-seg*stepsPerSegment) / float64(stepsPerSegment)
			if by > 1 {
				by = 1
			}
			from := frame.FloatsToInputs(wps[seg])
			to := frame.FloatsToInputs(wps[seg+1])
			vals := frame.InterpolateInputs(from, to, by)
			if err := ps.pc.SetJointState(t, name, vals); err != nil {
				return err
			}
		}
	}
	return nil
}

// InitNoise perturbs the current decision vector in place by i.i.d.
// Gaussian noise of standard deviation sigma, using rng for reproducible
// re-solves (pass rand.New(rand.NewSource(seed)) for determinism).
func (ps *PathState) InitNoise(sigma float64, rng *rand.Rand) error {
	x := ps.Flatten()
	for i := range x {
		x[i] += sigma * rng.NormFloat64()
	}
	return ps.Unflatten(x)
}

// SplineBasis builds the (T x numControlPoints) basis matrix B mapping a
// reduced set of evenly spaced control points to the full T-slice decision
// vector via piecewise-linear interpolation (a first-order spline). Prefix
// slices are excluded from the basis per the Open Question resolved in
// SPEC_FULL.md §13: they are held fixed, not reparameterized.
func (ps *PathState) SplineBasis(numControlPoints int) (*mat.Dense, error) {
	if numControlPoints < 2 {
		return nil, errors.New("spline basis needs at least 2 control points")
	}
	b := mat.NewDense(ps.pc.T, numControlPoints, nil)
	span := float64(ps.pc.T-1) / float64(numControlPoints-1)
	for t := 0; t < ps.pc.T; t++ {
		pos := float64(t) / span
		lo := int(pos)
		if lo >= numControlPoints-1 {
			lo = numControlPoints - 2
		}
		frac := pos - float64(lo)
		b.Set(t, lo, 1-frac)
		b.Set(t, lo+1, b.At(t, lo+1)+frac)
	}
	return b, nil
}

// ApplySplineColumn expands a (numControlPoints)-length control sequence
// for one frame coordinate into T slice values via basis B, and writes them
// into PathConfig.
func (ps *PathState) ApplySplineColumn(b *mat.Dense, frameName string, coord int, controlValues []float64) error {
	rows, cols := b.Dims()
	if rows != ps.pc.T {
		return errors.Errorf("spline basis has %d rows, want %d", rows, ps.pc.T)
	}
	if cols != len(controlValues) {
		return errors.Errorf("spline basis has %d columns, got %d control values", cols, len(controlValues))
	}
	cv := mat.NewVecDense(cols, controlValues)
	var out mat.VecDense
	out.MulVec(b, cv)
	for t := 0; t < ps.pc.T; t++ {
		vals, err := ps.pc.JointState(t, frameName)
		if err != nil {
			return err
		}
		if coord >= len(vals) {
			return errors.Errorf("frame %q has no coordinate %d", frameName, coord)
		}
		vals[coord] = frame.Input(out.AtVec(t))
		if err := ps.pc.SetJointState(t, frameName, vals); err != nil {
			return err
		}
	}
	return nil
}
