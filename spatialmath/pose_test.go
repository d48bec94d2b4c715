package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestComposeIdentity(t *testing.T) {
	p := NewPoseFromPoint(r3.Vector{X: 1, Y: 2, Z: 3})
	composed := Compose(NewZeroPose(), p)
	test.That(t, AlmostCoincident(composed, p), test.ShouldBeTrue)
}

func TestComposeInvert(t *testing.T) {
	p := NewPoseFromAxisAngle(r3.Vector{X: 1, Y: 2, Z: 3}, r3.Vector{X: 0, Y: 0, Z: 1}, math.Pi/3)
	inv := Invert(p)
	composed := Compose(p, inv)
	test.That(t, AlmostCoincident(composed, NewZeroPose()), test.ShouldBeTrue)
}

func TestPoseBetweenSelfIsZero(t *testing.T) {
	p := NewPoseFromAxisAngle(r3.Vector{X: 5, Y: -2, Z: 0.5}, r3.Vector{X: 1, Y: 0, Z: 0}, math.Pi/4)
	delta := PoseBetween(p, p)
	test.That(t, AlmostCoincident(delta, NewZeroPose()), test.ShouldBeTrue)
}

func TestGeodesicDistance(t *testing.T) {
	a := &R4AA{Theta: 0, RX: 0, RY: 0, RZ: 1}
	b := &R4AA{Theta: math.Pi / 2, RX: 0, RY: 0, RZ: 1}
	d := GeodesicDistance(a, b)
	test.That(t, d, test.ShouldAlmostEqual, math.Pi/2)
}

func TestQuatRoundTrip(t *testing.T) {
	aa := &R4AA{Theta: 1.234, RX: 0.267, RY: 0.534, RZ: 0.801}
	back := QuatToR4AA(aa.ToQuat())
	test.That(t, math.Abs(back.Theta-aa.Theta), test.ShouldBeLessThan, 1e-6)
}
