package spatialmath

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Geometry is a labeled rigid shape attached to a pose, used by the
// collision backend to compute proxy pairs for accumulatedCollisions and
// pairCollision features.
type Geometry interface {
	Pose() Pose
	Label() string
	SetLabel(string)
	// Transform returns a copy of this geometry re-posed by composing
	// `relative` with its current pose.
	Transform(relative Pose) Geometry
}

// Box is an axis-aligned (in its own frame) rectangular prism geometry.
type Box struct {
	pose  Pose
	half  r3.Vector
	label string
}

// NewBox constructs a Box of full dimensions `dims` centered at `pose`.
func NewBox(pose Pose, dims r3.Vector, label string) (*Box, error) {
	if dims.X < 0 || dims.Y < 0 || dims.Z < 0 {
		return nil, errors.New("box dimensions must be non-negative")
	}
	return &Box{pose: pose, half: dims.Mul(0.5), label: label}, nil
}

func (b *Box) Pose() Pose         { return b.pose }
func (b *Box) Label() string      { return b.label }
func (b *Box) SetLabel(l string)  { b.label = l }

func (b *Box) Transform(relative Pose) Geometry {
	return &Box{pose: Compose(relative, b.pose), half: b.half, label: b.label}
}

// HalfSize returns the box's half-extents in its own frame.
func (b *Box) HalfSize() r3.Vector { return b.half }

// Sphere is a ball geometry.
type Sphere struct {
	pose   Pose
	radius float64
	label  string
}

// NewSphere constructs a Sphere of the given radius centered at pose.
func NewSphere(pose Pose, radius float64, label string) (*Sphere, error) {
	if radius < 0 {
		return nil, errors.New("sphere radius must be non-negative")
	}
	return &Sphere{pose: pose, radius: radius, label: label}, nil
}

func (s *Sphere) Pose() Pose      { return s.pose }
func (s *Sphere) Label() string   { return s.label }
func (s *Sphere) SetLabel(l string) { s.label = l }
func (s *Sphere) Radius() float64  { return s.radius }

func (s *Sphere) Transform(relative Pose) Geometry {
	return &Sphere{pose: Compose(relative, s.pose), radius: s.radius, label: s.label}
}
