package trajopt

import (
	"math"

	"github.com/pkg/errors"

	"github.com/kinetic-motion/trajopt/collision"
	spatial "github.com/kinetic-motion/trajopt/spatialmath"
)

// qItself is an order-0 feature returning a tuple slice's raw joint vector,
// used for joint-limit-style sos/ineq objectives and simple regularizers.
type qItself struct {
	name string
	dim  int
}

// NewQItself builds a qItself feature over a frame with the given DoF.
func NewQItself(dim int) Feature { return &qItself{name: "qItself", dim: dim} }

func (f *qItself) Name() string { return f.name }
func (f *qItself) Dim() int     { return f.dim }

func (f *qItself) Evaluate(tuple []*FrameSlice) ([]float64, error) {
	if len(tuple) != 1 {
		return nil, errors.Errorf("qItself wants a 1-slice tuple, got %d", len(tuple))
	}
	s := tuple[0]
	if len(s.Joints) != f.dim {
		return nil, &ErrResidualDimensionMismatch{FeatureName: f.name, Declared: f.dim, Got: len(s.Joints)}
	}
	out := make([]float64, f.dim)
	copy(out, s.Joints)
	return out, nil
}

// positionDiff is an order-1 feature: the raw displacement of a frame's
// world position between two tuple slices. Target subtraction (e.g. "drive
// this displacement to a desired point") is applied by Transcription
// against the owning Objective's Target, not baked into the feature (spec
// §9: composition is a transcription concern, not a feature-subclass one).
type positionDiff struct{}

// NewPositionDiff builds a positionDiff feature.
func NewPositionDiff() Feature { return &positionDiff{} }

func (f *positionDiff) Name() string { return "positionDiff" }
func (f *positionDiff) Dim() int     { return 3 }

func (f *positionDiff) Evaluate(tuple []*FrameSlice) ([]float64, error) {
	if len(tuple) != 2 {
		return nil, errors.Errorf("positionDiff wants a 2-slice tuple, got %d", len(tuple))
	}
	a, b := tuple[0].Pose.Point(), tuple[1].Pose.Point()
	d := b.Sub(a)
	return []float64{d.X, d.Y, d.Z}, nil
}

// quaternionDiff is an order-1 feature: the geodesic (SO(3)) distance
// between two tuple slices' orientations, as a single scalar residual.
type quaternionDiff struct{}

// NewQuaternionDiff builds a quaternionDiff feature.
func NewQuaternionDiff() Feature { return &quaternionDiff{} }

func (f *quaternionDiff) Name() string { return "quaternionDiff" }
func (f *quaternionDiff) Dim() int     { return 1 }

func (f *quaternionDiff) Evaluate(tuple []*FrameSlice) ([]float64, error) {
	if len(tuple) != 2 {
		return nil, errors.Errorf("quaternionDiff wants a 2-slice tuple, got %d", len(tuple))
	}
	d := spatial.GeodesicDistance(tuple[0].Pose.Orientation(), tuple[1].Pose.Orientation())
	return []float64{d}, nil
}

// poseRel is an order-1 feature combining positionDiff and quaternionDiff
// into one 4-vector raw residual: (dx,dy,dz,angle), the pose of tuple[1]
// relative to tuple[0] (angle is the geodesic distance of that relative
// pose's orientation from identity). Used by Reach/Align style end-effector
// objectives that want both position and orientation pinned in one
// grounded residual; the desired relative pose (e.g. a non-zero target
// point, angle 0 for "no relative rotation") is supplied as the owning
// Objective's Target and applied by Transcription, not by this feature
// (spec §9).
type poseRel struct{}

// NewPoseRel builds a poseRel feature.
func NewPoseRel() Feature { return &poseRel{} }

func (f *poseRel) Name() string { return "poseRel" }
func (f *poseRel) Dim() int     { return 4 }

func (f *poseRel) Evaluate(tuple []*FrameSlice) ([]float64, error) {
	if len(tuple) != 2 {
		return nil, errors.Errorf("poseRel wants a 2-slice tuple, got %d", len(tuple))
	}
	rel := spatial.PoseBetween(tuple[0].Pose, tuple[1].Pose)
	p := rel.Point()
	angle := spatial.GeodesicDistance(rel.Orientation(), spatial.NewZeroOrientation())
	return []float64{p.X, p.Y, p.Z, angle}, nil
}

// poseRelConsistency is the 4-vector residual spec §4.3's mode-switch
// composition grounds over tuples (s,s+1),(s,s+2),…: the change in the
// relative pose between a reference frame and an object frame from the
// switch's anchor slice s to a later slice t, driven to zero by an
// equality objective to assert the relative pose stays constant once the
// object is re-parented onto the reference. tuple order is
// (reference@s, object@s, reference@t, object@t).
type poseRelConsistency struct{}

// NewPoseRelConsistency builds a poseRelConsistency feature.
func NewPoseRelConsistency() Feature { return &poseRelConsistency{} }

func (f *poseRelConsistency) Name() string { return "poseRelConsistency" }
func (f *poseRelConsistency) Dim() int     { return 4 }

func (f *poseRelConsistency) Evaluate(tuple []*FrameSlice) ([]float64, error) {
	if len(tuple) != 4 {
		return nil, errors.Errorf("poseRelConsistency wants a 4-slice tuple, got %d", len(tuple))
	}
	relAnchor := spatial.PoseBetween(tuple[0].Pose, tuple[1].Pose)
	relLater := spatial.PoseBetween(tuple[2].Pose, tuple[3].Pose)
	d := relLater.Point().Sub(relAnchor.Point())
	angle := spatial.GeodesicDistance(relLater.Orientation(), relAnchor.Orientation())
	return []float64{d.X, d.Y, d.Z, angle}, nil
}

// controlCost is an order-1 feature penalizing per-step joint displacement,
// the default "keep moving smoothly" sos objective applied densely across
// the whole horizon.
type controlCost struct {
	dim    int
	weight float64
}

// NewControlCost builds a controlCost feature over dim joint coordinates.
func NewControlCost(dim int, weight float64) Feature {
	return &controlCost{dim: dim, weight: weight}
}

func (f *controlCost) Name() string { return "controlCost" }
func (f *controlCost) Dim() int     { return f.dim }

func (f *controlCost) Evaluate(tuple []*FrameSlice) ([]float64, error) {
	if len(tuple) != 2 {
		return nil, errors.Errorf("controlCost wants a 2-slice tuple, got %d", len(tuple))
	}
	a, b := tuple[0].Joints, tuple[1].Joints
	if len(a) != f.dim || len(b) != f.dim {
		return nil, errors.Errorf("controlCost dim mismatch: want %d, got %d/%d", f.dim, len(a), len(b))
	}
	out := make([]float64, f.dim)
	for i := range out {
		out[i] = f.weight * (b[i] - a[i])
	}
	return out, nil
}

// quaternionNorm is an order-0 feature penalizing deviation of a 4-vector
// quaternion joint (the quaternionFrame representation) from unit norm.
// Per the Open Question resolved in SPEC_FULL.md §13, evaluating this on a
// prefix slice still emits its residual (||q||-1 of whatever the prefix
// holds; prefix joint state is seeded at zero) rather than erroring; its
// Jacobian columns are dropped by Transcription.tupleColumns, since prefix
// slices are outside the decision vector.
type quaternionNorm struct{}

// NewQuaternionNorm builds a quaternionNorm feature.
func NewQuaternionNorm() Feature { return &quaternionNorm{} }

func (f *quaternionNorm) Name() string { return "quaternionNorm" }
func (f *quaternionNorm) Dim() int     { return 1 }

func (f *quaternionNorm) Evaluate(tuple []*FrameSlice) ([]float64, error) {
	if len(tuple) != 1 {
		return nil, errors.Errorf("quaternionNorm wants a 1-slice tuple, got %d", len(tuple))
	}
	s := tuple[0]
	if len(s.Joints) != 7 {
		return nil, &ErrResidualDimensionMismatch{FeatureName: f.Name(), Declared: 7, Got: len(s.Joints)}
	}
	w, x, y, z := s.Joints[3], s.Joints[4], s.Joints[5], s.Joints[6]
	n := math.Sqrt(w*w + x*x + y*y + z*z)
	return []float64{n - 1}, nil
}

// accumulatedCollisions is an order-0 feature summing the hinge-loss
// penetration depth over every geometry pair the collision backend reports
// within a single tuple slice's frame set.
type accumulatedCollisions struct {
	backend collision.Backend
}

// NewAccumulatedCollisions builds an accumulatedCollisions feature backed
// by the given collision backend.
func NewAccumulatedCollisions(backend collision.Backend) Feature {
	return &accumulatedCollisions{backend: backend}
}

func (f *accumulatedCollisions) Name() string { return "accumulatedCollisions" }
func (f *accumulatedCollisions) Dim() int     { return 1 }

func (f *accumulatedCollisions) Evaluate(tuple []*FrameSlice) ([]float64, error) {
	if len(tuple) == 0 {
		return nil, errors.New("accumulatedCollisions needs at least one slice")
	}
	named := map[string]spatial.Geometry{}
	for _, s := range tuple {
		if s.Geometry != nil {
			named[s.FrameName] = s.Geometry.Transform(s.Pose)
		}
	}
	proxies, err := f.backend.RefreshProxies(named)
	if err != nil {
		// a failing backend is treated as reporting no proxies.
		proxies = nil
	}
	sum := 0.0
	for _, p := range proxies {
		if p.SignedDistance < 0 {
			sum += -p.SignedDistance
		}
	}
	return []float64{sum}, nil
}

// pairCollision is an order-0 feature reporting signed distance (negative
// means penetrating) between exactly two named geometry-bearing slices, for
// objectives that want a dedicated per-pair clearance constraint instead of
// the whole-slice accumulatedCollisions sum.
type pairCollision struct {
	backend collision.Backend
}

// NewPairCollision builds a pairCollision feature backed by backend.
func NewPairCollision(backend collision.Backend) Feature {
	return &pairCollision{backend: backend}
}

func (f *pairCollision) Name() string { return "pairCollision" }
func (f *pairCollision) Dim() int     { return 1 }

func (f *pairCollision) Evaluate(tuple []*FrameSlice) ([]float64, error) {
	if len(tuple) != 2 {
		return nil, errors.Errorf("pairCollision wants a 2-slice tuple, got %d", len(tuple))
	}
	named := map[string]spatial.Geometry{}
	for _, s := range tuple {
		if s.Geometry == nil {
			return nil, errors.Errorf("slice %q has no geometry for pairCollision", s.FrameName)
		}
		named[s.FrameName] = s.Geometry.Transform(s.Pose)
	}
	proxies, err := f.backend.RefreshProxies(named)
	if err != nil {
		// a failing backend is treated as reporting no proxies.
		proxies = nil
	}
	for _, p := range proxies {
		if (p.FrameA == tuple[0].FrameName && p.FrameB == tuple[1].FrameName) ||
			(p.FrameA == tuple[1].FrameName && p.FrameB == tuple[0].FrameName) {
			return []float64{p.SignedDistance}, nil
		}
	}
	return []float64{math.Inf(1)}, nil
}
