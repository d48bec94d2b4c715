package trajopt

import (
	"github.com/pkg/errors"

	frame "github.com/kinetic-motion/trajopt/referenceframe"
	spatial "github.com/kinetic-motion/trajopt/spatialmath"
)

// PathConfig is the flattened kinematic graph a k-order path transcribes
// onto: T "live" slices (t = 0..T-1) plus kOrder prefix slices (t =
// -kOrder..-1) holding the fixed initial condition every objective of order
// o may reach back into. Each slice owns its own FrameSystem so that
// Switches can edit one slice's graph (add/replace/re-parent a joint)
// without disturbing any other slice.
type PathConfig struct {
	world  *World
	kOrder int
	T      int

	// slices[i] is the FrameSystem for absolute time t = i - kOrder.
	slices []frame.FrameSystem

	// timeSlices[name][t] is the live Frame handle for the frame called name
	// at absolute slice t, following any switch edits applied at or before
	// t. It holds every original world frame at every slice, plus each
	// OpAddJoint frame at the slices the switch reaches.
	timeSlices map[string]map[int]frame.Frame

	// jointState[t][frameName] is that frame's current joint-value vector.
	jointState map[int]map[string][]frame.Input

	switches         []*Switch
	lastAppliedSlice int
	haveApplied      bool
}

// NewPathConfig clones world into T+kOrder slices and seeds every frame's
// joint state at zero.
func NewPathConfig(world *World, t, kOrder int) (*PathConfig, error) {
	if kOrder < 0 {
		return nil, ErrKOrderTooSmall
	}
	if t <= 0 {
		return nil, errors.New("T must be positive")
	}
	pc := &PathConfig{
		world:      world,
		kOrder:     kOrder,
		T:          t,
		slices:     make([]frame.FrameSystem, t+kOrder),
		timeSlices: map[string]map[int]frame.Frame{},
		jointState: map[int]map[string][]frame.Input{},
	}
	origIDs := world.OriginalFrameIDs()
	for _, id := range origIDs {
		pc.timeSlices[id] = map[int]frame.Frame{}
	}
	for i := range pc.slices {
		abs := i - kOrder
		fs, err := cloneFrameSystem(world.FrameSystem(), "slice")
		if err != nil {
			return nil, errors.Wrapf(err, "cloning slice %d", abs)
		}
		pc.slices[i] = fs
		pc.jointState[abs] = map[string][]frame.Input{}
		for _, id := range origIDs {
			f := fs.Frame(id)
			pc.timeSlices[id][abs] = f
			pc.jointState[abs][id] = make([]frame.Input, len(f.DoF()))
		}
	}
	return pc, nil
}

// sliceIndex converts an absolute time t into an index into pc.slices.
func (pc *PathConfig) sliceIndex(t int) (int, error) {
	if t < -pc.kOrder || t > pc.T-1 {
		return 0, ErrTupleOutOfRange
	}
	return t + pc.kOrder, nil
}

// FrameSystemAt returns the live graph at absolute time t.
func (pc *PathConfig) FrameSystemAt(t int) (frame.FrameSystem, error) {
	i, err := pc.sliceIndex(t)
	if err != nil {
		return nil, err
	}
	return pc.slices[i], nil
}

// Frame returns the live handle for origID at absolute time t.
func (pc *PathConfig) Frame(t int, origID string) (frame.Frame, error) {
	if _, err := pc.sliceIndex(t); err != nil {
		return nil, err
	}
	byT, ok := pc.timeSlices[origID]
	if !ok {
		return nil, ErrFrameMissing
	}
	f, ok := byT[t]
	if !ok || f == nil {
		return nil, ErrFrameMissing
	}
	return f, nil
}

// JointState returns frameName's current joint values at absolute time t.
func (pc *PathConfig) JointState(t int, frameName string) ([]frame.Input, error) {
	if _, err := pc.sliceIndex(t); err != nil {
		return nil, err
	}
	vals, ok := pc.jointState[t][frameName]
	if !ok {
		return nil, ErrFrameMissing
	}
	return vals, nil
}

// SetJointState overwrites frameName's joint values at absolute time t.
func (pc *PathConfig) SetJointState(t int, frameName string, vals []frame.Input) error {
	if _, err := pc.sliceIndex(t); err != nil {
		return err
	}
	pc.jointState[t][frameName] = vals
	return nil
}

// WorldPose returns frameName's pose at absolute time t, composed from
// World down through the live graph's TracebackFrame chain.
func (pc *PathConfig) WorldPose(t int, frameName string) (spatial.Pose, error) {
	fs, err := pc.FrameSystemAt(t)
	if err != nil {
		return nil, err
	}
	f := fs.Frame(frameName)
	if f == nil {
		return nil, ErrFrameMissing
	}
	inputs := map[string][]frame.Input{}
	for name, vals := range pc.jointState[t] {
		inputs[name] = vals
	}
	return frame.Transform(fs, inputs, f)
}

// ApplySwitch records sw and applies its graph edit to every slice from its
// effective start through T-1. Switches must be supplied in non-decreasing
// Slice order (spec: append-only).
func (pc *PathConfig) ApplySwitch(sw *Switch) error {
	if pc.haveApplied && sw.Slice < pc.lastAppliedSlice {
		return ErrRetrospectiveSwitch
	}
	if sw.Slice < -pc.kOrder || sw.Slice > pc.T-1 {
		return ErrTupleOutOfRange
	}
	start := sw.effectiveStart()
	if start < -pc.kOrder {
		start = -pc.kOrder
	}
	for t := start; t < pc.T; t++ {
		if err := pc.applyAt(t, sw); err != nil {
			return errors.Wrapf(err, "applying switch %s at slice %d", sw.ID, t)
		}
	}
	pc.switches = append(pc.switches, sw)
	pc.lastAppliedSlice = sw.Slice
	pc.haveApplied = true
	return nil
}

func (pc *PathConfig) applyAt(t int, sw *Switch) error {
	fs, err := pc.FrameSystemAt(t)
	if err != nil {
		return err
	}
	switch sw.Op {
	case OpAddJoint:
		if sw.JointConstructor == nil && sw.JointType == "" {
			return errors.New("OpAddJoint requires JointConstructor or JointType")
		}
		parent := fs.Frame(sw.Reference)
		if parent == nil {
			return ErrFrameMissing
		}
		f, err := sw.buildJoint(sw.Frame)
		if err != nil {
			return errors.Wrapf(err, "building joint %q", sw.Frame)
		}
		if err := fs.AddFrame(f, parent); err != nil {
			return err
		}
		if pc.timeSlices[sw.Frame] == nil {
			pc.timeSlices[sw.Frame] = map[int]frame.Frame{}
		}
		pc.timeSlices[sw.Frame][t] = f
		pc.jointState[t][sw.Frame] = pc.seedJointState(t, f, sw.Init)

	case OpReplaceJoint:
		if sw.JointConstructor == nil && sw.JointType == "" {
			return errors.New("OpReplaceJoint requires JointConstructor or JointType")
		}
		old := fs.Frame(sw.Frame)
		if old == nil {
			return ErrFrameMissing
		}
		replacement, err := sw.buildJoint(sw.Frame)
		if err != nil {
			return errors.Wrapf(err, "building replacement joint %q", sw.Frame)
		}
		if err := fs.ReplaceFrame(fs, old, replacement); err != nil {
			return err
		}
		pc.timeSlices[sw.Frame][t] = replacement
		pc.jointState[t][sw.Frame] = pc.seedJointState(t, replacement, sw.Init)

	case OpReparent:
		f := fs.Frame(sw.Frame)
		if f == nil {
			return ErrFrameMissing
		}
		newParent := fs.Frame(sw.Reference)
		if newParent == nil && sw.Reference != "" {
			return ErrFrameMissing
		}
		if err := fs.Reparent(f, newParent); err != nil {
			return errors.Wrap(ErrGraphCycle, err.Error())
		}

	case OpMarkStable:
		f := fs.Frame(sw.Frame)
		if f == nil {
			return ErrFrameMissing
		}
		prevT := t - 1
		if prevT >= -pc.kOrder {
			if vals, ok := pc.jointState[prevT][sw.Frame]; ok {
				cp := make([]frame.Input, len(vals))
				copy(cp, vals)
				pc.jointState[t][sw.Frame] = cp
			}
		}

	default:
		return errors.Errorf("unknown switch op %d", sw.Op)
	}
	return nil
}

// seedJointState implements InitPolicy for a freshly introduced or replaced
// frame at slice t. Under InitCopy it evaluates f's world pose from the
// joint values currently stored under f's name at t; when none fit f (as for
// every OpAddJoint frame) the pose cannot be evaluated and all values stay
// zero.
func (pc *PathConfig) seedJointState(t int, f frame.Frame, policy InitPolicy) []frame.Input {
	dof := len(f.DoF())
	vals := make([]frame.Input, dof)
	if policy == InitCopy && dof >= 3 {
		if pose, err := pc.WorldPose(t, f.Name()); err == nil {
			p := pose.Point()
			vals[0], vals[1], vals[2] = frame.Input(p.X), frame.Input(p.Y), frame.Input(p.Z)
		}
	}
	return vals
}

// FrameSliceHandle builds the Feature-facing view of frameName at absolute
// time t: its current joint vector, composed world pose, and a Reevaluate
// closure that recomputes the local-to-world pose with one joint
// coordinate perturbed, without touching PathConfig's stored state. Since
// frameName is typically a SimpleModel spanning its whole upstream chain,
// differentiating through this one frame's Transform already captures the
// full chain's coupling (spec §9).
func (pc *PathConfig) FrameSliceHandle(t int, frameName string) (*FrameSlice, error) {
	fs, err := pc.FrameSystemAt(t)
	if err != nil {
		return nil, err
	}
	f := fs.Frame(frameName)
	if f == nil {
		return nil, ErrFrameMissing
	}
	parent, err := fs.Parent(f)
	if err != nil {
		return nil, err
	}
	var parentPose spatial.Pose
	if parent == nil {
		parentPose = spatial.NewZeroPose()
	} else {
		parentPose, err = pc.WorldPose(t, parent.Name())
		if err != nil {
			return nil, err
		}
	}
	joints, err := pc.JointState(t, frameName)
	if err != nil {
		return nil, err
	}
	local, err := f.Transform(joints)
	if err != nil {
		return nil, errors.Wrapf(err, "transforming %q at slice %d", frameName, t)
	}
	slice := &FrameSlice{
		FrameName: frameName,
		Time:      t,
		Joints:    frame.InputsToFloats(joints),
		Pose:      spatial.Compose(parentPose, local),
		Geometry:  f.Geometry(),
	}
	slice.Reevaluate = func(i int, v float64) (spatial.Pose, error) {
		cp := make([]frame.Input, len(joints))
		copy(cp, joints)
		cp[i] = frame.Input(v)
		local, err := f.Transform(cp)
		if err != nil {
			return nil, err
		}
		return spatial.Compose(parentPose, local), nil
	}
	return slice, nil
}

// Switches returns the switches applied so far, in application order.
func (pc *PathConfig) Switches() []*Switch {
	out := make([]*Switch, len(pc.switches))
	copy(out, pc.switches)
	return out
}

// cloneFrameSystem rebuilds an independent FrameSystem with the same
// frames and parentage as src, so later graph edits on the clone don't
// affect src or any other clone. Frames themselves are immutable value
// types and are shared by reference across clones; only the parent-pointer
// map is per-clone.
func cloneFrameSystem(src frame.FrameSystem, name string) (frame.FrameSystem, error) {
	dst := frame.NewEmptyFrameSystem(name)
	all := src.Frames()
	added := map[string]bool{frame.World: true}
	remaining := make([]frame.Frame, 0, len(all))
	for _, f := range all {
		if f.Name() != frame.World {
			remaining = append(remaining, f)
		}
	}
	for len(remaining) > 0 {
		progressed := false
		next := remaining[:0]
		for _, f := range remaining {
			parent, err := src.Parent(f)
			if err != nil {
				return nil, err
			}
			if parent == nil || added[parent.Name()] {
				var p frame.Frame
				if parent != nil {
					p = dst.Frame(parent.Name())
				}
				if err := dst.AddFrame(f, p); err != nil {
					return nil, err
				}
				added[f.Name()] = true
				progressed = true
			} else {
				next = append(next, f)
			}
		}
		remaining = next
		if !progressed && len(remaining) > 0 {
			return nil, errors.New("frame system has a disconnected or cyclic frame during clone")
		}
	}
	return dst, nil
}
