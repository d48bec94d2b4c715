package ik

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	frame "github.com/kinetic-motion/trajopt/referenceframe"
	spatial "github.com/kinetic-motion/trajopt/spatialmath"
)

func TestSquaredNormMetricZeroAtGoal(t *testing.T) {
	goal := spatial.NewPoseFromPoint(r3.Vector{X: 1, Y: 2, Z: 3})
	metric := NewSquaredNormMetric(goal)
	test.That(t, metric(goal), test.ShouldAlmostEqual, 0.0)
}

func TestSquaredNormMetricPenalizesDistance(t *testing.T) {
	goal := spatial.NewPoseFromPoint(r3.Vector{X: 0, Y: 0, Z: 0})
	other := spatial.NewPoseFromPoint(r3.Vector{X: 3, Y: 4, Z: 0})
	metric := NewSquaredNormMetric(goal)
	test.That(t, metric(other), test.ShouldAlmostEqual, 25.0)
}

func TestMetricMinFuncWrapsFrameTransform(t *testing.T) {
	limit := frame.Limit{Min: -3.14, Max: 3.14}
	j, err := frame.NewRotationalFrame("joint", spatial.R4AA{RZ: 1}, limit)
	test.That(t, err, test.ShouldBeNil)

	goal, err := j.Transform([]frame.Input{0})
	test.That(t, err, test.ShouldBeNil)

	cost := NewMetricMinFunc(NewSquaredNormMetric(goal), j)
	test.That(t, cost([]float64{0}), test.ShouldAlmostEqual, 0.0)
}
