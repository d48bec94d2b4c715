package trajopt

import (
	"math"

	"github.com/golang/geo/r3"

	frame "github.com/kinetic-motion/trajopt/referenceframe"
	spatial "github.com/kinetic-motion/trajopt/spatialmath"
)

// buildTestWorld returns a single 2-DOF planar arm ("arm") hanging off
// World, shared by every _test.go file in this package.
func buildTestWorld() (*World, error) {
	link1, err := frame.NewStaticFrame("link1", spatial.NewPoseFromPoint(r3.Vector{X: 1}))
	if err != nil {
		return nil, err
	}
	link2, err := frame.NewStaticFrame("link2", spatial.NewPoseFromPoint(r3.Vector{X: 1}))
	if err != nil {
		return nil, err
	}
	limit := frame.Limit{Min: -math.Pi, Max: math.Pi}
	j1, err := frame.NewRotationalFrame("joint1", spatial.R4AA{RZ: 1}, limit)
	if err != nil {
		return nil, err
	}
	j2, err := frame.NewRotationalFrame("joint2", spatial.R4AA{RZ: 1}, limit)
	if err != nil {
		return nil, err
	}
	model, err := frame.NewSerialModel("arm", []frame.Frame{j1, link1, j2, link2})
	if err != nil {
		return nil, err
	}
	fs := frame.NewEmptyFrameSystem("test")
	if err := fs.AddFrame(model, fs.World()); err != nil {
		return nil, err
	}
	return NewWorld("test", fs), nil
}
