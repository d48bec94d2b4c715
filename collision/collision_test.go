package collision

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	spatial "github.com/kinetic-motion/trajopt/spatialmath"
)

func TestSimpleBackendSphereSphere(t *testing.T) {
	s1, err := spatial.NewSphere(spatial.NewZeroPose(), 1, "s1")
	test.That(t, err, test.ShouldBeNil)
	s2, err := spatial.NewSphere(spatial.NewPoseFromPoint(r3.Vector{X: 5}), 1, "s2")
	test.That(t, err, test.ShouldBeNil)

	backend := NewSimpleBackend(0)
	proxies, err := backend.RefreshProxies(map[string]spatial.Geometry{"a": s1, "b": s2})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(proxies), test.ShouldEqual, 1)
	test.That(t, proxies[0].SignedDistance, test.ShouldAlmostEqual, 3.0)
}

func TestSimpleBackendPenetration(t *testing.T) {
	s1, err := spatial.NewSphere(spatial.NewZeroPose(), 2, "s1")
	test.That(t, err, test.ShouldBeNil)
	s2, err := spatial.NewSphere(spatial.NewPoseFromPoint(r3.Vector{X: 1}), 2, "s2")
	test.That(t, err, test.ShouldBeNil)

	backend := NewSimpleBackend(0)
	proxies, err := backend.RefreshProxies(map[string]spatial.Geometry{"a": s1, "b": s2})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(proxies), test.ShouldEqual, 1)
	test.That(t, proxies[0].SignedDistance, test.ShouldBeLessThan, 0)
}
