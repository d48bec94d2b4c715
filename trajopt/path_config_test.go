package trajopt

import (
	"math"
	"testing"

	"go.viam.com/test"

	frame "github.com/kinetic-motion/trajopt/referenceframe"
)

func TestNewPathConfigSlices(t *testing.T) {
	world, err := buildTestWorld()
	test.That(t, err, test.ShouldBeNil)

	pc, err := NewPathConfig(world, 5, 1)
	test.That(t, err, test.ShouldBeNil)

	for tt := -1; tt < 5; tt++ {
		f, err := pc.Frame(tt, "arm")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, f.Name(), test.ShouldEqual, "arm")
	}

	_, err = pc.Frame(5, "arm")
	test.That(t, err, test.ShouldNotBeNil)
	_, err = pc.Frame(-2, "arm")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPathConfigJointStateIndependentPerSlice(t *testing.T) {
	world, err := buildTestWorld()
	test.That(t, err, test.ShouldBeNil)
	pc, err := NewPathConfig(world, 3, 0)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, pc.SetJointState(0, "arm", []frame.Input{0.1, 0.2}), test.ShouldBeNil)
	test.That(t, pc.SetJointState(1, "arm", []frame.Input{0.5, 0.6}), test.ShouldBeNil)

	v0, err := pc.JointState(0, "arm")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, float64(v0[0]), test.ShouldAlmostEqual, 0.1)

	v1, err := pc.JointState(1, "arm")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, float64(v1[0]), test.ShouldAlmostEqual, 0.5)
}

func TestWorldPoseStraightArm(t *testing.T) {
	world, err := buildTestWorld()
	test.That(t, err, test.ShouldBeNil)
	pc, err := NewPathConfig(world, 1, 0)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, pc.SetJointState(0, "arm", []frame.Input{0, 0}), test.ShouldBeNil)
	pose, err := pc.WorldPose(0, "arm")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pose.Point().X, test.ShouldAlmostEqual, 2.0)

	test.That(t, pc.SetJointState(0, "arm", []frame.Input{math.Pi / 2, 0}), test.ShouldBeNil)
	pose, err = pc.WorldPose(0, "arm")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pose.Point().X, test.ShouldBeLessThan, 1e-6)
}
