package trajopt

import (
	"github.com/google/uuid"

	frame "github.com/kinetic-motion/trajopt/referenceframe"
	spatial "github.com/kinetic-motion/trajopt/spatialmath"
)

// Joint type names recognized by Switch.JointType, covering the world's
// vocabulary of frame.Frame constructors (spec §3's World description:
// "revolute, prismatic, free, quaternion, rigid" joints).
const (
	JointStatic        = "static"
	JointRotational    = "rotational"
	JointTranslational = "translational"
	JointFree          = "free"
	JointQuaternion    = "quaternion"
)

// SwitchOp names the kind of graph edit a Switch performs at its slice.
type SwitchOp int

const (
	// OpAddJoint inserts a new joint frame under Reference, present only
	// from the switch's effective slice onward.
	OpAddJoint SwitchOp = iota
	// OpReplaceJoint swaps Frame's joint type for one built by
	// JointConstructor, keeping its place in the tree.
	OpReplaceJoint
	// OpReparent moves Frame to be a child of Reference.
	OpReparent
	// OpMarkStable copies Frame's joint value from the slice just before the
	// switch's effective start into that slice and every later one, once, at
	// application time. It adds no constraint: a later decision-vector write
	// can still change those values independently per slice.
	OpMarkStable
)

// InitPolicy controls how a newly introduced or replaced frame's joint
// value is seeded at its first slice.
type InitPolicy int

const (
	// InitZero seeds the joint state at the frame's zero value.
	InitZero InitPolicy = iota
	// InitCopy, for a frame with at least three DoF, copies the X/Y/Z of the
	// frame's world pose (evaluated from the joint values already stored
	// under its name at that slice) into its first three joint values; the
	// rest stay zero. An OpAddJoint frame has no stored values, so its pose
	// cannot be evaluated and InitCopy leaves it at zero, as it does whenever
	// the stored values do not fit the new frame. No rotation is inherited.
	InitCopy
)

// Switch is one graph edit applied to every slice from its effective start
// onward (spec §4: Before decides whether the edit takes effect at Slice
// itself or only from Slice+1).
type Switch struct {
	ID     uuid.UUID
	Slice  int
	Before bool
	Op     SwitchOp

	// Frame is the name of the frame the switch acts on.
	Frame string
	// Reference is the new parent (OpReparent) or attachment point
	// (OpAddJoint); unused by OpReplaceJoint and OpMarkStable.
	Reference string
	// JointConstructor builds the replacement/new frame given its name; an
	// escape hatch for OpAddJoint/OpReplaceJoint that takes precedence over
	// JointType when set, for joint shapes the named vocabulary below can't
	// express.
	JointConstructor func(name string) (frame.Frame, error)

	// JointType names the kind of joint to build when JointConstructor is
	// nil, one of the Joint* constants; an unrecognized name is a
	// setup-invalid ErrUnsupportedJointType. The matching fields below
	// parameterize the constructor for that type.
	JointType         string
	Pose              spatial.Pose   // JointStatic
	Axis              spatial.R4AA   // JointRotational
	Limit             frame.Limit    // JointRotational
	Free              []bool         // JointTranslational
	Limits            []frame.Limit  // JointTranslational
	TranslationLimits [3]frame.Limit // JointFree, JointQuaternion
	RotationLimit     frame.Limit    // JointFree

	Init InitPolicy
}

// buildJoint resolves JointConstructor if set, or else builds a frame from
// JointType and its parameter fields; unrecognized JointType values return
// ErrUnsupportedJointType.
func (s *Switch) buildJoint(name string) (frame.Frame, error) {
	if s.JointConstructor != nil {
		return s.JointConstructor(name)
	}
	switch s.JointType {
	case JointStatic:
		return frame.NewStaticFrame(name, s.Pose)
	case JointRotational:
		return frame.NewRotationalFrame(name, s.Axis, s.Limit)
	case JointTranslational:
		return frame.NewTranslationalFrame(name, s.Free, s.Limits)
	case JointFree:
		return frame.NewFreeFrame(name, s.TranslationLimits, s.RotationLimit), nil
	case JointQuaternion:
		return frame.NewQuaternionFrame(name, s.TranslationLimits), nil
	default:
		return nil, ErrUnsupportedJointType
	}
}

// NewSwitch builds a Switch with a fresh ID.
func NewSwitch(slice int, before bool, op SwitchOp) *Switch {
	return &Switch{ID: uuid.New(), Slice: slice, Before: before, Op: op}
}

// effectiveStart is the first absolute slice index t at which the switch's
// edit is in effect.
func (s *Switch) effectiveStart() int {
	if s.Before {
		return s.Slice + 1
	}
	return s.Slice
}
