package trajopt

import (
	spatial "github.com/kinetic-motion/trajopt/spatialmath"
)

// Feature is a differentiable residual over a tuple of frame slices. A
// Feature never touches PathConfig or the FrameSystem directly: it is
// handed one FrameSlice per tuple entry and reads world poses and joint
// vectors off those handles, so the same Feature works whether it's
// grounded at order 0, 1, or k.
type Feature interface {
	// Name identifies the feature for diagnostics and error messages.
	Name() string
	// Dim is the declared length of Evaluate's residual.
	Dim() int
	// Evaluate returns the residual vector for this tuple of slices.
	Evaluate(tuple []*FrameSlice) ([]float64, error)
}

// FrameSlice is a Feature's view of one (frame, absolute-time) pair: its
// current joint vector, its composed world pose, and a Reevaluate closure
// that recomputes the world pose after perturbing one joint coordinate,
// used by NumericJacobian to build Jacobian columns without a Feature
// needing access to the kinematic chain itself.
type FrameSlice struct {
	FrameName string
	Time      int
	Joints    []float64
	Pose      spatial.Pose
	// Geometry is the frame's collision proxy in its own local frame, if
	// any; collision features transform it by Pose before handing it to a
	// collision.Backend.
	Geometry spatial.Geometry
	// Reevaluate recomputes this slice's world pose with Joints[i]
	// replaced by v, leaving PathConfig's stored state untouched. The
	// returned pose reflects the whole upstream chain's coupling, since
	// PathConfig composes from World down through this frame.
	Reevaluate func(i int, v float64) (spatial.Pose, error)
}

// NumericJacobian computes the central-difference Jacobian of f's residual
// with respect to every joint coordinate of every slice in tuple, stacking
// columns in tuple order. This is the only differentiation strategy this
// engine uses (spec §9 notes Features are not required to provide an
// analytic Jacobian); h is the perturbation step.
func NumericJacobian(f Feature, tuple []*FrameSlice, h float64) ([][]float64, error) {
	base, err := f.Evaluate(tuple)
	if err != nil {
		return nil, err
	}
	dim := f.Dim()
	if len(base) != dim {
		return nil, &ErrResidualDimensionMismatch{FeatureName: f.Name(), Declared: dim, Got: len(base)}
	}
	cols := 0
	for _, s := range tuple {
		cols += len(s.Joints)
	}
	jac := make([][]float64, dim)
	for r := range jac {
		jac[r] = make([]float64, cols)
	}
	col := 0
	for si, s := range tuple {
		for ji := range s.Joints {
			orig := s.Joints[ji]

			s.Joints[ji] = orig + h
			if s.Reevaluate != nil {
				p, err := s.Reevaluate(ji, s.Joints[ji])
				if err != nil {
					return nil, err
				}
				s.Pose = p
			}
			plus, err := f.Evaluate(tuple)
			if err != nil {
				return nil, err
			}

			s.Joints[ji] = orig - h
			if s.Reevaluate != nil {
				p, err := s.Reevaluate(ji, s.Joints[ji])
				if err != nil {
					return nil, err
				}
				s.Pose = p
			}
			minus, err := f.Evaluate(tuple)
			if err != nil {
				return nil, err
			}

			s.Joints[ji] = orig
			if s.Reevaluate != nil {
				p, err := s.Reevaluate(ji, orig)
				if err != nil {
					return nil, err
				}
				s.Pose = p
			}

			for r := 0; r < dim; r++ {
				jac[r][col] = (plus[r] - minus[r]) / (2 * h)
			}
			col++
		}
		_ = si
	}
	return jac, nil
}
