package trajopt

import (
	"testing"

	"go.viam.com/test"
)

func TestWorldOriginalFrameIDsSortedAndDoF(t *testing.T) {
	world, err := buildTestWorld()
	test.That(t, err, test.ShouldBeNil)

	ids := world.OriginalFrameIDs()
	test.That(t, len(ids) >= 1, test.ShouldBeTrue)
	for i := 1; i < len(ids); i++ {
		test.That(t, ids[i-1] < ids[i], test.ShouldBeTrue)
	}

	test.That(t, world.DoF(), test.ShouldEqual, 2)
}
