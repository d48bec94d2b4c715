package trajopt

import (
	"testing"

	"go.viam.com/test"

	spatial "github.com/kinetic-motion/trajopt/spatialmath"
)

func slice(joints []float64) *FrameSlice {
	return &FrameSlice{
		FrameName: "arm",
		Joints:    joints,
		Pose:      spatial.NewZeroPose(),
	}
}

func TestQItselfEvaluate(t *testing.T) {
	f := NewQItself(2)
	out, err := f.Evaluate([]*FrameSlice{slice([]float64{1, 2})})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out[0], test.ShouldAlmostEqual, 1.0)
	test.That(t, out[1], test.ShouldAlmostEqual, 2.0)
}

func TestQItselfJacobianIsIdentity(t *testing.T) {
	f := NewQItself(2)
	s := slice([]float64{0.3, -0.4})
	jac, err := NumericJacobian(f, []*FrameSlice{s}, 1e-6)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, jac[0][0], test.ShouldAlmostEqual, 1.0)
	test.That(t, jac[0][1], test.ShouldBeLessThan, 1e-6)
	test.That(t, jac[1][1], test.ShouldAlmostEqual, 1.0)
}

func TestControlCostEvaluateAndJacobian(t *testing.T) {
	f := NewControlCost(2, 2.0)
	a := slice([]float64{1, 1})
	b := slice([]float64{1.5, 0.5})
	out, err := f.Evaluate([]*FrameSlice{a, b})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out[0], test.ShouldAlmostEqual, 1.0)
	test.That(t, out[1], test.ShouldAlmostEqual, -1.0)

	jac, err := NumericJacobian(f, []*FrameSlice{a, b}, 1e-6)
	test.That(t, err, test.ShouldBeNil)
	// residual[0] = weight*(b[0]-a[0]); d/d a[0] = -weight, d/d b[0] = weight
	test.That(t, jac[0][0], test.ShouldAlmostEqual, -2.0)
	test.That(t, jac[0][2], test.ShouldAlmostEqual, 2.0)
}

func TestQuaternionNormDimensionMismatch(t *testing.T) {
	f := NewQuaternionNorm()
	_, err := f.Evaluate([]*FrameSlice{slice([]float64{1, 0, 0})})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestQuaternionNormUnitIsZero(t *testing.T) {
	f := NewQuaternionNorm()
	out, err := f.Evaluate([]*FrameSlice{slice([]float64{0, 0, 0, 1, 0, 0, 0})})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out[0], test.ShouldAlmostEqual, 0.0)
}
