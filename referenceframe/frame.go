package referenceframe

import (
	"github.com/pkg/errors"

	spatial "github.com/kinetic-motion/trajopt/spatialmath"
)

// World is the name of the implicit root frame every FrameSystem is rooted
// at.
const World = "world"

// Frame is a single named link in a kinematic tree: an optional joint
// (DoF() > 0) composed with a fixed transform to its parent. Features never
// touch a Frame's joint machinery directly; they call Transform with the
// DOF values PathConfig currently holds for that frame.
type Frame interface {
	Name() string
	// DoF returns one Limit per active joint coordinate, in joint order.
	// A zero-length result means the frame is rigid (a static link).
	DoF() []Limit
	// Transform returns this frame's pose relative to its parent, given
	// values for each of its DoF(). len(inputs) must equal len(DoF()).
	Transform(inputs []Input) (spatial.Pose, error)
	// Geometry returns the collision proxy this frame carries, if any.
	Geometry() spatial.Geometry
}

type baseFrame struct {
	name     string
	geometry spatial.Geometry
}

func (f *baseFrame) Name() string               { return f.name }
func (f *baseFrame) Geometry() spatial.Geometry { return f.geometry }

// staticFrame is a rigid link: DoF() is empty and Transform ignores inputs.
type staticFrame struct {
	baseFrame
	pose spatial.Pose
}

// NewStaticFrame builds a rigid frame with a fixed pose relative to its
// parent.
func NewStaticFrame(name string, pose spatial.Pose) (Frame, error) {
	if pose == nil {
		return nil, errors.New("pose is not allowed to be nil")
	}
	return &staticFrame{baseFrame: baseFrame{name: name}, pose: pose}, nil
}

// NewZeroStaticFrame builds a rigid frame at the identity pose, used as a
// structural placeholder (e.g. an "_origin" tail frame).
func NewZeroStaticFrame(name string) Frame {
	f, _ := NewStaticFrame(name, spatial.NewZeroPose())
	return f
}

// NewStaticFrameWithGeometry attaches a collision proxy to a rigid frame.
func NewStaticFrameWithGeometry(name string, pose spatial.Pose, geom spatial.Geometry) (Frame, error) {
	f, err := NewStaticFrame(name, pose)
	if err != nil {
		return nil, err
	}
	sf := f.(*staticFrame)
	sf.geometry = geom
	return sf, nil
}

func (f *staticFrame) DoF() []Limit { return []Limit{} }

func (f *staticFrame) Transform(inputs []Input) (spatial.Pose, error) {
	if len(inputs) != 0 {
		return nil, errors.Errorf("staticFrame %q given %d inputs, wants 0", f.name, len(inputs))
	}
	return f.pose, nil
}
