package trajopt

import (
	"testing"

	"go.viam.com/test"
)

func TestGroundDeterministicAndIdempotent(t *testing.T) {
	world, err := buildTestWorld()
	test.That(t, err, test.ShouldBeNil)
	pc, err := NewPathConfig(world, 10, 0)
	test.That(t, err, test.ShouldBeNil)
	g, err := NewGrounder(pc, 5)
	test.That(t, err, test.ShouldBeNil)

	obj := NewObjective("ctrl", NewControlCost(2, 1.0), TypeSOS, []string{"arm"}, 0, 1, 1)

	g1, err := g.Ground(obj)
	test.That(t, err, test.ShouldBeNil)
	g2, err := g.Ground(obj)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, len(g1), test.ShouldEqual, len(g2))
	for i := range g1 {
		test.That(t, g1[i].Slice, test.ShouldEqual, g2[i].Slice)
		test.That(t, len(g1[i].Tuple), test.ShouldEqual, len(g2[i].Tuple))
	}

	// slices ascending
	for i := 1; i < len(g1); i++ {
		test.That(t, g1[i].Slice > g1[i-1].Slice || g1[i].Slice == g1[i-1].Slice, test.ShouldBeTrue)
	}
}

func TestGroundSkipsIncompleteTrailingTuple(t *testing.T) {
	world, err := buildTestWorld()
	test.That(t, err, test.ShouldBeNil)
	pc, err := NewPathConfig(world, 5, 0)
	test.That(t, err, test.ShouldBeNil)
	g, err := NewGrounder(pc, 1)
	test.That(t, err, test.ShouldBeNil)

	obj := NewObjective("ctrl", NewControlCost(2, 1.0), TypeSOS, []string{"arm"}, 0, 4, 1)
	grounded, err := g.Ground(obj)
	test.That(t, err, test.ShouldBeNil)
	for _, go_ := range grounded {
		test.That(t, go_.Slice+1, test.ShouldBeLessThanOrEqualTo, pc.T-1)
	}
}

// TestObjectiveExpansionClampsStepDelta covers Open Question (a) (SPEC_FULL.md
// §13): a DeltaFrom/DeltaTo pair pushed far outside the path's domain clamps
// into [-KOrder, T-1] rather than erroring, on both ends independently.
func TestObjectiveExpansionClampsStepDelta(t *testing.T) {
	world, err := buildTestWorld()
	test.That(t, err, test.ShouldBeNil)
	pc, err := NewPathConfig(world, 5, 2)
	test.That(t, err, test.ShouldBeNil)
	g, err := NewGrounder(pc, 1)
	test.That(t, err, test.ShouldBeNil)

	obj := NewObjective("ctrl", NewControlCost(2, 1.0), TypeSOS, []string{"arm"}, 0, 4, 1).
		WithStepDelta(-10, 10)
	grounded, err := g.Ground(obj)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(grounded) > 0, test.ShouldBeTrue)
	test.That(t, grounded[0].Slice, test.ShouldEqual, -pc.kOrder)
	test.That(t, grounded[len(grounded)-1].Slice+obj.Order, test.ShouldEqual, pc.T-1)
}

func TestGroundRejectsDecreasingInterval(t *testing.T) {
	world, err := buildTestWorld()
	test.That(t, err, test.ShouldBeNil)
	pc, err := NewPathConfig(world, 5, 0)
	test.That(t, err, test.ShouldBeNil)
	g, err := NewGrounder(pc, 1)
	test.That(t, err, test.ShouldBeNil)

	obj := NewObjective("bad", NewControlCost(2, 1.0), TypeSOS, []string{"arm"}, 3, 1, 1)
	_, err = g.Ground(obj)
	test.That(t, err, test.ShouldNotBeNil)
}
