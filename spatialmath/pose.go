package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Pose is a rigid transform: a point plus an orientation, always expressed
// relative to some (contextual) parent frame. Frames compose poses when
// walking the kinematic tree; features read poses off PathConfig frames.
type Pose interface {
	Point() r3.Vector
	Orientation() Orientation
}

type pose struct {
	point       r3.Vector
	orientation Orientation
}

// NewPose builds a pose from a point and an orientation.
func NewPose(point r3.Vector, o Orientation) Pose {
	if o == nil {
		o = NewZeroOrientation()
	}
	return &pose{point: point, orientation: o}
}

// NewPoseFromPoint builds a pose with zero rotation.
func NewPoseFromPoint(point r3.Vector) Pose {
	return &pose{point: point, orientation: NewZeroOrientation()}
}

// NewZeroPose returns the identity pose.
func NewZeroPose() Pose {
	return &pose{orientation: NewZeroOrientation()}
}

// NewPoseFromAxisAngle builds a pose whose orientation is a rotation of
// angleRadians about axis, translated by point.
func NewPoseFromAxisAngle(point, axis r3.Vector, angleRadians float64) Pose {
	return &pose{
		point:       point,
		orientation: &R4AA{Theta: angleRadians, RX: axis.X, RY: axis.Y, RZ: axis.Z},
	}
}

func (p *pose) Point() r3.Vector         { return p.point }
func (p *pose) Orientation() Orientation { return p.orientation }

func (p *pose) String() string {
	ov := p.orientation.OrientationVectorRadians()
	return fmt.Sprintf("{X:%f Y:%f Z:%f OX:%f OY:%f OZ:%f Theta:%frad}",
		p.point.X, p.point.Y, p.point.Z, ov.OX, ov.OY, ov.OZ, ov.Theta)
}

// Compose returns the pose of `child` expressed in the frame that `parent`
// is itself expressed in: parent ∘ child. This is the core kinematic-chain
// operator: PathConfig.forwardKinematics repeatedly composes a frame's
// static/joint transform with its parent's accumulated pose.
func Compose(parent, child Pose) Pose {
	pq := parent.Orientation().Quaternion()
	rotatedChildPoint := rotateVector(pq, child.Point())
	newPoint := parent.Point().Add(rotatedChildPoint)
	newOrient := quat.Mul(pq, child.Orientation().Quaternion())
	return &pose{point: newPoint, orientation: QuatToOV(newOrient)}
}

// Invert returns the pose such that Compose(p, Invert(p)) is the identity.
func Invert(p Pose) Pose {
	q := quat.Conj(quat.Normalize(p.Orientation().Quaternion()))
	negPoint := rotateVector(q, p.Point().Mul(-1))
	return &pose{point: negPoint, orientation: QuatToOV(q)}
}

// PoseBetween returns the pose of `to` expressed in the frame of `from`:
// inverse(from) ∘ to. Used by positionDiff/poseRel/quaternionDiff features.
func PoseBetween(from, to Pose) Pose {
	return Compose(Invert(from), to)
}

// PoseDelta is an alias for PoseBetween kept for teacher-style call sites
// that read as "delta from A to B".
func PoseDelta(from, to Pose) Pose {
	return PoseBetween(from, to)
}

func rotateVector(q quat.Number, v r3.Vector) r3.Vector {
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(q, p), quat.Conj(q))
	return r3.Vector{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

// AlmostCoincident reports whether two poses are equal in position to
// within 1e-6 and in orientation to within OrientationAlmostEqual.
func AlmostCoincident(a, b Pose) bool {
	return R3VectorAlmostEqual(a.Point(), b.Point(), 1e-6) && OrientationAlmostEqual(a.Orientation(), b.Orientation())
}

// R3VectorAlmostEqual reports whether two vectors are within epsilon in
// every component.
func R3VectorAlmostEqual(a, b r3.Vector, epsilon float64) bool {
	d := a.Sub(b)
	return absf(d.X) < epsilon && absf(d.Y) < epsilon && absf(d.Z) < epsilon
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
