package referenceframe

import (
	"github.com/pkg/errors"

	spatial "github.com/kinetic-motion/trajopt/spatialmath"
)

// SimpleModel is an ordered chain of frames treated as a single Frame: its
// DoF() is the concatenation of each constituent's DoF(), in order, and
// Transform composes each link's pose in turn. This is the World's
// representation of e.g. a 6-DOF arm as a single named frame.
type SimpleModel struct {
	baseFrame
	OrdTransforms []Frame
}

// NewSerialModel builds a SimpleModel chaining the given frames in order.
func NewSerialModel(name string, chain []Frame) (*SimpleModel, error) {
	if len(chain) == 0 {
		return nil, errors.New("serial model must have at least one frame")
	}
	return &SimpleModel{baseFrame: baseFrame{name: name}, OrdTransforms: chain}, nil
}

// DoF concatenates the DoF of every link in the chain.
func (m *SimpleModel) DoF() []Limit {
	var out []Limit
	for _, f := range m.OrdTransforms {
		out = append(out, f.DoF()...)
	}
	return out
}

// OperationalDoF returns the number of end-effectors this model exposes;
// SimpleModel always has exactly one (its terminal frame).
func (m *SimpleModel) OperationalDoF() int { return 1 }

// AreJointPositionsValid reports whether every joint value is inside its
// declared limit.
func (m *SimpleModel) AreJointPositionsValid(radians []float64) bool {
	limits := m.DoF()
	if len(radians) != len(limits) {
		return false
	}
	for i, v := range radians {
		if !limits[i].Valid(v) {
			return false
		}
	}
	return true
}

// Transform composes every link's transform in chain order, returning the
// terminal frame's pose relative to the model's parent.
func (m *SimpleModel) Transform(inputs []Input) (spatial.Pose, error) {
	limits := m.DoF()
	if len(inputs) != len(limits) {
		return nil, errors.Errorf("model %q given %d inputs, wants %d", m.name, len(inputs), len(limits))
	}
	result := spatial.NewZeroPose()
	idx := 0
	for _, f := range m.OrdTransforms {
		n := len(f.DoF())
		local, err := f.Transform(inputs[idx : idx+n])
		if err != nil {
			return nil, errors.Wrapf(err, "transforming link %q of model %q", f.Name(), m.name)
		}
		result = spatial.Compose(result, local)
		idx += n
	}
	return result, nil
}

// VerboseTransform returns the pose of every named link in the chain,
// keyed by "<model>:<link>", relative to the model's parent.
func (m *SimpleModel) VerboseTransform(inputs []Input) (map[string]spatial.Pose, error) {
	limits := m.DoF()
	if len(inputs) != len(limits) {
		return nil, errors.Errorf("model %q given %d inputs, wants %d", m.name, len(inputs), len(limits))
	}
	out := make(map[string]spatial.Pose, len(m.OrdTransforms))
	result := spatial.NewZeroPose()
	idx := 0
	for _, f := range m.OrdTransforms {
		n := len(f.DoF())
		local, err := f.Transform(inputs[idx : idx+n])
		if err != nil {
			return nil, err
		}
		result = spatial.Compose(result, local)
		out[m.name+":"+f.Name()] = result
		idx += n
	}
	return out, nil
}
