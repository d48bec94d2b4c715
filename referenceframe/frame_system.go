package referenceframe

import (
	"github.com/pkg/errors"

	spatial "github.com/kinetic-motion/trajopt/spatialmath"
)

// ErrFrameMissing is returned when a named frame cannot be found in a
// FrameSystem; one of the setup-invalid error kinds (spec §7).
var ErrFrameMissing = errors.New("frame not found in frame system")

// FrameSystem is a tree of Frames rooted at World. PathConfig embeds one
// FrameSystem per slice (plus switch-introduced frames) and relies on
// Parent/Frame lookups to walk the kinematic chain during forward
// kinematics.
type FrameSystem interface {
	Name() string
	World() Frame
	AddFrame(frame, parent Frame) error
	// ReplaceFrame swaps `old` for `replacement` in place, preserving the
	// parentage of old's children and old's own parent. Used by Switch
	// application when a frame's joint type changes.
	ReplaceFrame(fs FrameSystem, old, replacement Frame) error
	// Reparent moves frame to be a child of newParent without altering its
	// own identity; used by Switch application for re-parent ops.
	Reparent(frame, newParent Frame) error
	Frame(name string) Frame
	Parent(frame Frame) (Frame, error)
	TracebackFrame(frame Frame) ([]Frame, error)
	Frames() []Frame
}

type frameSystem struct {
	name    string
	world   Frame
	frames  map[string]Frame
	parents map[string]Frame
}

// NewEmptyFrameSystem builds a FrameSystem containing only World.
func NewEmptyFrameSystem(name string) FrameSystem {
	world := NewZeroStaticFrame(World)
	return &frameSystem{
		name:    name,
		world:   world,
		frames:  map[string]Frame{World: world},
		parents: map[string]Frame{},
	}
}

// NewEmptySimpleFrameSystem is an alias kept for call sites that mirror the
// teacher's naming for an ephemeral single-frame system.
func NewEmptySimpleFrameSystem(name string) FrameSystem {
	return NewEmptyFrameSystem(name)
}

func (fs *frameSystem) Name() string  { return fs.name }
func (fs *frameSystem) World() Frame  { return fs.world }

func (fs *frameSystem) AddFrame(frame, parent Frame) error {
	if frame == nil {
		return errors.New("cannot add nil frame")
	}
	if parent == nil {
		fs.frames[frame.Name()] = frame
		return nil
	}
	if fs.frames[parent.Name()] == nil {
		return errors.Errorf("parent frame %q not in frame system", parent.Name())
	}
	fs.frames[frame.Name()] = frame
	fs.parents[frame.Name()] = parent
	return nil
}

func (fs *frameSystem) Frame(name string) Frame {
	return fs.frames[name]
}

func (fs *frameSystem) Frames() []Frame {
	out := make([]Frame, 0, len(fs.frames))
	for _, f := range fs.frames {
		out = append(out, f)
	}
	return out
}

func (fs *frameSystem) Parent(frame Frame) (Frame, error) {
	if frame.Name() == fs.world.Name() {
		return nil, nil
	}
	p, ok := fs.parents[frame.Name()]
	if !ok {
		return nil, errors.Errorf("frame %q has no parent recorded (nil parent or missing)", frame.Name())
	}
	return p, nil
}

// TracebackFrame returns the chain from World down to frame, inclusive.
func (fs *frameSystem) TracebackFrame(frame Frame) ([]Frame, error) {
	var chain []Frame
	cur := frame
	for cur.Name() != fs.world.Name() {
		chain = append([]Frame{cur}, chain...)
		p, err := fs.Parent(cur)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, errors.Errorf("frame %q is disconnected from world", frame.Name())
		}
		cur = p
	}
	return append([]Frame{fs.world}, chain...), nil
}

// Reparent implements FrameSystem.
func (fs *frameSystem) Reparent(frame, newParent Frame) error {
	if fs.frames[frame.Name()] == nil {
		return errors.Errorf("frame %q not in frame system", frame.Name())
	}
	if newParent != nil && fs.frames[newParent.Name()] == nil {
		return errors.Errorf("parent frame %q not in frame system", newParent.Name())
	}
	// walk up from newParent to detect a cycle through frame.
	if newParent != nil {
		cur := newParent
		for cur.Name() != fs.world.Name() {
			if cur.Name() == frame.Name() {
				return errors.Errorf("re-parenting %q under %q would create a cycle", frame.Name(), newParent.Name())
			}
			p := fs.parents[cur.Name()]
			if p == nil {
				break
			}
			cur = p
		}
	}
	fs.parents[frame.Name()] = newParent
	return nil
}

// ReplaceFrame swaps old for replacement, re-parenting old's children under
// replacement and placing replacement under old's former parent.
func (fs *frameSystem) ReplaceFrame(_ FrameSystem, old, replacement Frame) error {
	if fs.frames[old.Name()] == nil {
		return errors.Errorf("frame %q not in frame system", old.Name())
	}
	oldParent := fs.parents[old.Name()]
	delete(fs.frames, old.Name())
	delete(fs.parents, old.Name())

	fs.frames[replacement.Name()] = replacement
	if oldParent != nil {
		fs.parents[replacement.Name()] = oldParent
	}
	for name, p := range fs.parents {
		if p != nil && p.Name() == old.Name() {
			fs.parents[name] = replacement
		}
	}
	return nil
}

// Transform walks the kinematic chain from World to frame, composing every
// link's pose using the joint values supplied in `inputs` (keyed by
// frame name, with as many Input as that frame's DoF()).
func Transform(fs FrameSystem, inputs map[string][]Input, frame Frame) (spatial.Pose, error) {
	chain, err := fs.TracebackFrame(frame)
	if err != nil {
		return nil, err
	}
	result := spatial.NewZeroPose()
	for _, f := range chain {
		if f.Name() == fs.World().Name() {
			continue
		}
		local, err := f.Transform(inputs[f.Name()])
		if err != nil {
			return nil, errors.Wrapf(err, "transforming frame %q", f.Name())
		}
		result = spatial.Compose(result, local)
	}
	return result, nil
}

// StartPositions returns the zero joint-state vector for every frame in fs.
func StartPositions(fs FrameSystem) map[string][]Input {
	out := map[string][]Input{}
	for _, f := range fs.Frames() {
		out[f.Name()] = make([]Input, len(f.DoF()))
	}
	return out
}
