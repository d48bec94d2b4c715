package trajopt

import (
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	frame "github.com/kinetic-motion/trajopt/referenceframe"
	spatial "github.com/kinetic-motion/trajopt/spatialmath"
)

func TestApplySwitchAddJointAffectsOnlyLaterSlices(t *testing.T) {
	world, err := buildTestWorld()
	test.That(t, err, test.ShouldBeNil)
	pc, err := NewPathConfig(world, 5, 0)
	test.That(t, err, test.ShouldBeNil)

	sw := NewSwitch(2, false, OpAddJoint)
	sw.Frame = "gripper"
	sw.Reference = "arm"
	sw.JointConstructor = func(name string) (frame.Frame, error) {
		return frame.NewStaticFrameWithGeometry(name, spatial.NewZeroPose(), nil)
	}
	test.That(t, pc.ApplySwitch(sw), test.ShouldBeNil)

	_, err = pc.Frame(1, "gripper")
	test.That(t, err, test.ShouldNotBeNil)

	g, err := pc.Frame(2, "gripper")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, g.Name(), test.ShouldEqual, "gripper")

	g4, err := pc.Frame(4, "gripper")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, g4.Name(), test.ShouldEqual, "gripper")
}

func TestApplySwitchRejectsUnsupportedJointType(t *testing.T) {
	world, err := buildTestWorld()
	test.That(t, err, test.ShouldBeNil)
	pc, err := NewPathConfig(world, 5, 0)
	test.That(t, err, test.ShouldBeNil)

	sw := NewSwitch(0, false, OpAddJoint)
	sw.Frame = "gripper"
	sw.Reference = "arm"
	sw.JointType = "hydraulic"
	err = pc.ApplySwitch(sw)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, ErrUnsupportedJointType), test.ShouldBeTrue)
}

func TestApplySwitchBuildsJointFromJointType(t *testing.T) {
	world, err := buildTestWorld()
	test.That(t, err, test.ShouldBeNil)
	pc, err := NewPathConfig(world, 5, 0)
	test.That(t, err, test.ShouldBeNil)

	sw := NewSwitch(1, false, OpAddJoint)
	sw.Frame = "gripper"
	sw.Reference = "arm"
	sw.JointType = JointStatic
	sw.Pose = spatial.NewZeroPose()
	test.That(t, pc.ApplySwitch(sw), test.ShouldBeNil)

	g, err := pc.Frame(1, "gripper")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, g.Name(), test.ShouldEqual, "gripper")
}

func TestApplySwitchBeforeShiftsEffectiveStart(t *testing.T) {
	world, err := buildTestWorld()
	test.That(t, err, test.ShouldBeNil)
	pc, err := NewPathConfig(world, 5, 0)
	test.That(t, err, test.ShouldBeNil)

	sw := NewSwitch(2, true, OpAddJoint)
	sw.Frame = "gripper"
	sw.Reference = "arm"
	sw.JointConstructor = func(name string) (frame.Frame, error) {
		return frame.NewStaticFrameWithGeometry(name, spatial.NewZeroPose(), nil)
	}
	test.That(t, pc.ApplySwitch(sw), test.ShouldBeNil)

	_, err = pc.Frame(2, "gripper")
	test.That(t, err, test.ShouldNotBeNil)

	_, err = pc.Frame(3, "gripper")
	test.That(t, err, test.ShouldBeNil)
}

func TestApplySwitchRetrospectiveRejected(t *testing.T) {
	world, err := buildTestWorld()
	test.That(t, err, test.ShouldBeNil)
	pc, err := NewPathConfig(world, 5, 0)
	test.That(t, err, test.ShouldBeNil)

	first := NewSwitch(3, false, OpMarkStable)
	first.Frame = "arm"
	test.That(t, pc.ApplySwitch(first), test.ShouldBeNil)

	second := NewSwitch(1, false, OpMarkStable)
	second.Frame = "arm"
	err = pc.ApplySwitch(second)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestApplySwitchReparentDetectsCycle(t *testing.T) {
	world, err := buildTestWorld()
	test.That(t, err, test.ShouldBeNil)
	pc, err := NewPathConfig(world, 2, 0)
	test.That(t, err, test.ShouldBeNil)

	addGripper := NewSwitch(0, false, OpAddJoint)
	addGripper.Frame = "gripper"
	addGripper.Reference = "arm"
	addGripper.JointConstructor = func(name string) (frame.Frame, error) {
		return frame.NewStaticFrameWithGeometry(name, spatial.NewZeroPose(), nil)
	}
	test.That(t, pc.ApplySwitch(addGripper), test.ShouldBeNil)

	cyclical := NewSwitch(0, false, OpReparent)
	cyclical.Frame = "arm"
	cyclical.Reference = "gripper"
	err = pc.ApplySwitch(cyclical)
	test.That(t, err, test.ShouldNotBeNil)
}
