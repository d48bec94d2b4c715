// Package spatialmath provides poses, orientations, and simple rigid
// geometry used to represent frames of an articulated kinematic system.
package spatialmath

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// Orientation is anything that can produce and be built from a unit
// quaternion. All joint types that rotate (revolute, quaternion/free)
// express their swept rotation through this interface so that geodesic
// residuals (quaternionDiff, poseRel) only need one code path.
type Orientation interface {
	Quaternion() quat.Number
	OrientationVectorRadians() *OrientationVector
	AxisAngles() *R4AA
}

// OrientationVector is a direction (OX,OY,OZ) plus a right-handed rotation
// Theta about that direction. It is the teacher's preferred human-facing
// orientation representation; Quaternion() is used internally for math.
type OrientationVector struct {
	Theta      float64
	OX, OY, OZ float64
}

// R4AA is an axis-angle rotation: Theta radians about the axis (RX,RY,RZ).
type R4AA struct {
	Theta      float64
	RX, RY, RZ float64
}

// NewZeroOrientation returns the identity orientation.
func NewZeroOrientation() Orientation {
	return &R4AA{}
}

// ToQuat converts an axis-angle rotation to a unit quaternion.
func (r *R4AA) ToQuat() quat.Number {
	n := math.Sqrt(r.RX*r.RX + r.RY*r.RY + r.RZ*r.RZ)
	if n < 1e-12 {
		return quat.Number{Real: 1}
	}
	ax, ay, az := r.RX/n, r.RY/n, r.RZ/n
	s := math.Sin(r.Theta / 2)
	return quat.Number{Real: math.Cos(r.Theta / 2), Imag: ax * s, Jmag: ay * s, Kmag: az * s}
}

// Quaternion implements Orientation.
func (r *R4AA) Quaternion() quat.Number { return r.ToQuat() }

// AxisAngles implements Orientation.
func (r *R4AA) AxisAngles() *R4AA { return r }

// OrientationVectorRadians implements Orientation.
func (r *R4AA) OrientationVectorRadians() *OrientationVector {
	return QuatToOV(r.ToQuat())
}

// QuatToR4AA converts a unit quaternion back to axis-angle form.
func QuatToR4AA(q quat.Number) *R4AA {
	q = quat.Normalize(q)
	theta := 2 * math.Acos(clamp(q.Real, -1, 1))
	s := math.Sqrt(1 - q.Real*q.Real)
	if s < 1e-12 {
		return &R4AA{Theta: 0, RX: 0, RY: 0, RZ: 1}
	}
	return &R4AA{Theta: theta, RX: q.Imag / s, RY: q.Jmag / s, RZ: q.Kmag / s}
}

// QuatToOV converts a unit quaternion to an orientation vector.
func QuatToOV(q quat.Number) *OrientationVector {
	aa := QuatToR4AA(q)
	return &OrientationVector{Theta: aa.Theta, OX: aa.RX, OY: aa.RY, OZ: aa.RZ}
}

// Quaternion implements Orientation.
func (ov *OrientationVector) Quaternion() quat.Number {
	return (&R4AA{Theta: ov.Theta, RX: ov.OX, RY: ov.OY, RZ: ov.OZ}).ToQuat()
}

// OrientationVectorRadians implements Orientation.
func (ov *OrientationVector) OrientationVectorRadians() *OrientationVector { return ov }

// AxisAngles implements Orientation.
func (ov *OrientationVector) AxisAngles() *R4AA {
	return &R4AA{Theta: ov.Theta, RX: ov.OX, RY: ov.OY, RZ: ov.OZ}
}

// Flip negates a quaternion's sign; q and Flip(q) represent the same
// rotation, but geodesic distance computations must pick whichever is
// closer to a reference to avoid the long way around SO(3).
func Flip(q quat.Number) quat.Number {
	return quat.Number{Real: -q.Real, Imag: -q.Imag, Jmag: -q.Jmag, Kmag: -q.Kmag}
}

// OrientationAlmostEqual reports whether two orientations describe the same
// rotation to within a small tolerance, accounting for quaternion double
// cover (q and -q are the same rotation).
func OrientationAlmostEqual(a, b Orientation) bool {
	qa, qb := quat.Normalize(a.Quaternion()), quat.Normalize(b.Quaternion())
	d1 := quatDot(qa, qb)
	d2 := quatDot(qa, Flip(qb))
	return math.Abs(math.Max(d1, d2)-1) < 1e-6
}

func quatDot(a, b quat.Number) float64 {
	return a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
}

// GeodesicDistance returns the shortest angle in radians between two
// orientations on SO(3), used by the quaternionDiff/poseRel features.
func GeodesicDistance(a, b Orientation) float64 {
	qa, qb := quat.Normalize(a.Quaternion()), quat.Normalize(b.Quaternion())
	d := quatDot(qa, qb)
	if dn := quatDot(qa, Flip(qb)); dn > d {
		d = dn
		qb = Flip(qb)
	}
	_ = qb
	return 2 * math.Acos(clamp(math.Abs(d), -1, 1))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
