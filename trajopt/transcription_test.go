package trajopt

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestTranscriptionEvaluateControlCost(t *testing.T) {
	world, err := buildTestWorld()
	test.That(t, err, test.ShouldBeNil)
	pc, err := NewPathConfig(world, 4, 0)
	test.That(t, err, test.ShouldBeNil)
	ps, err := NewPathState(pc)
	test.That(t, err, test.ShouldBeNil)

	g, err := NewGrounder(pc, 1)
	test.That(t, err, test.ShouldBeNil)
	obj := NewObjective("ctrl", NewControlCost(2, 1.0), TypeSOS, []string{"arm"}, 0, 3, 1)
	grounded, err := g.Ground(obj)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(grounded) > 0, test.ShouldBeTrue)

	tr := NewTranscription(pc, ps, grounded, 1e-6)

	x := make([]float64, ps.Len())
	for i := range x {
		x[i] = float64(i) * 0.01
	}
	result, err := tr.Evaluate(x)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.Cost >= 0, test.ShouldBeTrue)
	test.That(t, len(result.CostGrad), test.ShouldEqual, ps.Len())
	test.That(t, result.Report.SOSTerms, test.ShouldEqual, len(grounded))
}

func TestTranscriptionBoundsMatchLimits(t *testing.T) {
	world, err := buildTestWorld()
	test.That(t, err, test.ShouldBeNil)
	pc, err := NewPathConfig(world, 3, 0)
	test.That(t, err, test.ShouldBeNil)
	ps, err := NewPathState(pc)
	test.That(t, err, test.ShouldBeNil)
	tr := NewTranscription(pc, ps, nil, 1e-6)

	lower, upper, err := tr.Bounds()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(lower), test.ShouldEqual, ps.Len())
	test.That(t, len(upper), test.ShouldEqual, ps.Len())
	for i := range lower {
		test.That(t, lower[i] < upper[i], test.ShouldBeTrue)
	}
}

func TestTranscriptionEqualityConstraint(t *testing.T) {
	world, err := buildTestWorld()
	test.That(t, err, test.ShouldBeNil)
	pc, err := NewPathConfig(world, 3, 0)
	test.That(t, err, test.ShouldBeNil)
	ps, err := NewPathState(pc)
	test.That(t, err, test.ShouldBeNil)

	g, err := NewGrounder(pc, 1)
	test.That(t, err, test.ShouldBeNil)
	obj := NewObjective("hold", NewQItself(2), TypeEq, []string{"arm"}, 1, 1, 0)
	grounded, err := g.Ground(obj)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(grounded), test.ShouldEqual, 1)

	tr := NewTranscription(pc, ps, grounded, 1e-6)
	x := make([]float64, ps.Len())
	result, err := tr.Evaluate(x)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(result.EqResidual), test.ShouldEqual, 2)
	test.That(t, len(result.EqJac), test.ShouldEqual, 2)
	test.That(t, len(result.EqJac[0]), test.ShouldEqual, ps.Len())
}

// TestTranscriptionSplineIdentityMatchesDirectEvaluate exercises spec §4.7's
// spline reparameterization: a spline basis with one control point per live
// slice degenerates to the identity matrix (SplineBasis's piecewise-linear
// interpolation between adjacent, coincident control points), so evaluating
// through WithSpline against the same decision vector must reproduce the
// unreparameterized Evaluate exactly.
func TestTranscriptionSplineIdentityMatchesDirectEvaluate(t *testing.T) {
	world, err := buildTestWorld()
	test.That(t, err, test.ShouldBeNil)
	pc, err := NewPathConfig(world, 4, 0)
	test.That(t, err, test.ShouldBeNil)
	ps, err := NewPathState(pc)
	test.That(t, err, test.ShouldBeNil)

	g, err := NewGrounder(pc, 1)
	test.That(t, err, test.ShouldBeNil)
	obj := NewObjective("ctrl", NewControlCost(2, 1.0), TypeSOS, []string{"arm"}, 0, 3, 1)
	grounded, err := g.Ground(obj)
	test.That(t, err, test.ShouldBeNil)

	x := make([]float64, ps.Len())
	for i := range x {
		x[i] = 0.05 * float64(i+1)
	}

	direct := NewTranscription(pc, ps, grounded, 1e-6)
	want, err := direct.Evaluate(x)
	test.That(t, err, test.ShouldBeNil)

	b, err := ps.SplineBasis(pc.T)
	test.That(t, err, test.ShouldBeNil)
	spline := NewTranscription(pc, ps, grounded, 1e-6).WithSpline(b)
	got, err := spline.Evaluate(x)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, got.Cost, test.ShouldAlmostEqual, want.Cost)
	test.That(t, len(got.CostGrad), test.ShouldEqual, len(want.CostGrad))
	for i := range want.CostGrad {
		test.That(t, math.Abs(got.CostGrad[i]-want.CostGrad[i]) < 1e-9, test.ShouldBeTrue)
	}
}

// TestTranscriptionCostGradMatchesFiniteDifferenceAcrossPrefix grounds an
// order-1 objective whose earliest tuple spans a prefix slice and a live
// slice (t=-1,0), then checks the assembled CostGrad against a
// finite-difference of the total cost. This pins the column remapping in
// tupleColumns: NumericJacobian lays out one Jacobian column per tuple
// entry including the prefix one, so the live-slice columns must be read at
// their tuple-local offset, not at their position among the filtered
// (non-prefix) columns.
func TestTranscriptionCostGradMatchesFiniteDifferenceAcrossPrefix(t *testing.T) {
	world, err := buildTestWorld()
	test.That(t, err, test.ShouldBeNil)
	pc, err := NewPathConfig(world, 3, 1)
	test.That(t, err, test.ShouldBeNil)
	ps, err := NewPathState(pc)
	test.That(t, err, test.ShouldBeNil)

	g, err := NewGrounder(pc, 1)
	test.That(t, err, test.ShouldBeNil)
	obj := NewObjective("ctrl", NewControlCost(2, 1.0), TypeSOS, []string{"arm"}, -1, 2, 1)
	grounded, err := g.Ground(obj)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(grounded) > 0, test.ShouldBeTrue)
	test.That(t, grounded[0].Slice, test.ShouldEqual, -1)

	tr := NewTranscription(pc, ps, grounded, 1e-6)

	x := make([]float64, ps.Len())
	for i := range x {
		x[i] = 0.1 * float64(i+1)
	}
	result, err := tr.Evaluate(x)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(result.CostGrad), test.ShouldEqual, ps.Len())

	const h = 1e-5
	for i := range x {
		xp := append([]float64(nil), x...)
		xp[i] += h
		rp, err := tr.Evaluate(xp)
		test.That(t, err, test.ShouldBeNil)

		xm := append([]float64(nil), x...)
		xm[i] -= h
		rm, err := tr.Evaluate(xm)
		test.That(t, err, test.ShouldBeNil)

		numGrad := (rp.Cost - rm.Cost) / (2 * h)
		test.That(t, math.Abs(numGrad-result.CostGrad[i]) < 1e-4, test.ShouldBeTrue)
	}
}
