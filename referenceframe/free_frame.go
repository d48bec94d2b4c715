package referenceframe

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"

	spatial "github.com/kinetic-motion/trajopt/spatialmath"
)

// freeFrame is a 6-DOF floating joint: 3 translational inputs plus a
// 3-input rotation vector (axis scaled by angle); quaternionFrame below is
// the 7-input variant carrying raw quaternion components instead. Switches
// that re-parent a frame "stably" under a new parent use this joint type,
// matching §4.3's "free/stable joint" mode switch.
type freeFrame struct {
	baseFrame
	translationLimits [3]Limit
	rotationLimit     Limit
}

// NewFreeFrame builds a 6-DOF floating joint: 3 translation inputs followed
// by a 3-component rotation vector whose norm is the angle, in radians,
// about the (normalized) vector direction.
func NewFreeFrame(name string, translationLimits [3]Limit, rotationLimit Limit) Frame {
	return &freeFrame{baseFrame: baseFrame{name: name}, translationLimits: translationLimits, rotationLimit: rotationLimit}
}

func (f *freeFrame) DoF() []Limit {
	return []Limit{f.translationLimits[0], f.translationLimits[1], f.translationLimits[2], f.rotationLimit, f.rotationLimit, f.rotationLimit}
}

func (f *freeFrame) Transform(inputs []Input) (spatial.Pose, error) {
	if len(inputs) != 6 {
		return nil, errors.Errorf("freeFrame %q given %d inputs, wants 6", f.name, len(inputs))
	}
	point := r3.Vector{X: float64(inputs[0]), Y: float64(inputs[1]), Z: float64(inputs[2])}
	rv := r3.Vector{X: float64(inputs[3]), Y: float64(inputs[4]), Z: float64(inputs[5])}
	theta := rv.Norm()
	if theta < 1e-12 {
		return spatial.NewPoseFromPoint(point), nil
	}
	axis := rv.Mul(1 / theta)
	return spatial.NewPoseFromAxisAngle(point, axis, theta), nil
}

// quaternionFrame is a 7-DOF joint (3 translation + 4 quaternion
// components) used when a feature needs direct access to the quaternion
// coordinates, e.g. quaternionNorm.
type quaternionFrame struct {
	baseFrame
	translationLimits [3]Limit
}

// NewQuaternionFrame builds a 7-DOF joint whose last 4 inputs are the raw
// (w,x,y,z) quaternion components, unnormalized between optimizer steps;
// quaternionNorm constrains ||q|| = 1.
func NewQuaternionFrame(name string, translationLimits [3]Limit) Frame {
	return &quaternionFrame{baseFrame: baseFrame{name: name}, translationLimits: translationLimits}
}

func (f *quaternionFrame) DoF() []Limit {
	unbounded := Limit{Min: math.Inf(-1), Max: math.Inf(1)}
	return []Limit{f.translationLimits[0], f.translationLimits[1], f.translationLimits[2], unbounded, unbounded, unbounded, unbounded}
}

func (f *quaternionFrame) Transform(inputs []Input) (spatial.Pose, error) {
	if len(inputs) != 7 {
		return nil, errors.Errorf("quaternionFrame %q given %d inputs, wants 7", f.name, len(inputs))
	}
	point := r3.Vector{X: float64(inputs[0]), Y: float64(inputs[1]), Z: float64(inputs[2])}
	q := quat.Number{Real: float64(inputs[3]), Imag: float64(inputs[4]), Jmag: float64(inputs[5]), Kmag: float64(inputs[6])}
	n := math.Sqrt(q.Real*q.Real + q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	if n < 1e-12 {
		return spatial.NewPoseFromPoint(point), nil
	}
	return spatial.NewPose(point, spatial.QuatToOV(quat.Scale(1/n, q))), nil
}

// QuaternionInputs extracts the raw (w,x,y,z) quaternion components from a
// quaternionFrame's input slice, used by the quaternionNorm feature.
func QuaternionInputs(inputs []Input) (w, x, y, z float64) {
	return float64(inputs[3]), float64(inputs[4]), float64(inputs[5]), float64(inputs[6])
}
