package referenceframe

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	spatial "github.com/kinetic-motion/trajopt/spatialmath"
)

// translationalFrame is a prismatic joint: one DOF per enabled axis,
// translating along its parent's x/y/z axes masked by `free`.
type translationalFrame struct {
	baseFrame
	free   []bool
	limits []Limit
}

// NewTranslationalFrame builds a prismatic joint. free marks which of
// (x,y,z) are active DOF; limits must have one entry per true in free.
func NewTranslationalFrame(name string, free []bool, limits []Limit) (Frame, error) {
	nAxes := 0
	for _, b := range free {
		if b {
			nAxes++
		}
	}
	if len(limits) != nAxes {
		return nil, errors.Errorf("given number of limits %d does not match number of axes %d", len(limits), nAxes)
	}
	return &translationalFrame{baseFrame: baseFrame{name: name}, free: free, limits: limits}, nil
}

func (f *translationalFrame) DoF() []Limit { return f.limits }

func (f *translationalFrame) Transform(inputs []Input) (spatial.Pose, error) {
	if len(inputs) != len(f.limits) {
		return nil, errors.Errorf("translationalFrame %q given %d inputs, wants %d", f.name, len(inputs), len(f.limits))
	}
	var point r3.Vector
	axisVals := [3]float64{}
	idx := 0
	for i, isFree := range f.free {
		if !isFree {
			continue
		}
		v := float64(inputs[idx])
		if !f.limits[idx].Valid(v) {
			return nil, errors.Errorf("%.5f input out of bounds %v", v, f.limits[idx])
		}
		axisVals[i] = v
		idx++
	}
	point = r3.Vector{X: axisVals[0], Y: axisVals[1], Z: axisVals[2]}
	return spatial.NewPoseFromPoint(point), nil
}
