package referenceframe

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	spatial "github.com/kinetic-motion/trajopt/spatialmath"
)

// rotationalFrame is a single-DOF revolute joint: rotation by its one input
// (radians) about a fixed axis.
type rotationalFrame struct {
	baseFrame
	axis  spatial.R4AA
	limit Limit
}

// NewRotationalFrame builds a revolute joint frame rotating about axis,
// bounded by limit (radians).
func NewRotationalFrame(name string, axis spatial.R4AA, limit Limit) (Frame, error) {
	return &rotationalFrame{baseFrame: baseFrame{name: name}, axis: axis, limit: limit}, nil
}

func (f *rotationalFrame) DoF() []Limit { return []Limit{f.limit} }

func (f *rotationalFrame) Transform(inputs []Input) (spatial.Pose, error) {
	if len(inputs) != 1 {
		return nil, errors.Errorf("rotationalFrame %q given %d inputs, wants 1", f.name, len(inputs))
	}
	theta := float64(inputs[0])
	if !f.limit.Valid(theta) {
		return nil, errors.Errorf("%.5f input out of rev frame bounds %v", theta, f.limit)
	}
	return spatial.NewPoseFromAxisAngle(r3.Vector{}, r3.Vector{X: f.axis.RX, Y: f.axis.RY, Z: f.axis.RZ}, theta), nil
}
