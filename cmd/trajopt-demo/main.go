// Command trajopt-demo exercises the engine end-to-end against a small
// planar 3-link arm: it declares an equality objective "reach-end-effector"
// (positionDiff on the arm at phase 1, targeted at the -x/-y point) and a
// dense controlCost smoothing objective, prepares the Transcription,
// evaluates the warm start and prints the cost, equality-residual size and
// factor count. positionDiff measures the arm's displacement between
// consecutive slices, so the target is compared with that displacement, not
// with the arm's position; and since the reach interval is the single
// instant of phase 1 while positionDiff is order 1, it grounds no tuple and
// adds no equality rows. No switch is applied. Grounded on the teacher's
// PlanMotion/PlanWaypoints entry-point style (motionPlanner.go).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang/geo/r3"

	"github.com/kinetic-motion/trajopt/logging"
	frame "github.com/kinetic-motion/trajopt/referenceframe"
	spatial "github.com/kinetic-motion/trajopt/spatialmath"
	"github.com/kinetic-motion/trajopt/trajopt"
)

func main() {
	t := flag.Int("T", 20, "number of live slices")
	kOrder := flag.Int("k", 1, "maximum objective order")
	targetX := flag.Float64("x", 2.5, "target end-effector X")
	targetY := flag.Float64("y", 0.5, "target end-effector Y")
	flag.Parse()

	log := logging.NewLogger("trajopt-demo")

	world, err := buildArmWorld()
	if err != nil {
		log.Errorf("building world: %v", err)
		os.Exit(1)
	}

	engine, err := trajopt.NewEngine(world, trajopt.EngineConfig{
		T:                 *t,
		StepsPerPhase:     *t / 2,
		KOrder:            *kOrder,
		ComputeCollisions: false,
		Logger:            log,
	})
	if err != nil {
		log.Errorf("building engine: %v", err)
		os.Exit(1)
	}

	target := spatial.NewPoseFromPoint(r3.Vector{X: *targetX, Y: *targetY}).Point()
	reach := trajopt.NewObjective(
		"reach-end-effector",
		trajopt.NewPositionDiff(),
		trajopt.TypeEq,
		[]string{"arm"},
		1, 1, 1,
	).WithTarget(target.X, target.Y, target.Z)
	if err := engine.AddObjective(reach); err != nil {
		log.Errorf("declaring reach objective: %v", err)
		os.Exit(1)
	}

	smooth := trajopt.NewObjective(
		"smooth-motion",
		trajopt.NewControlCost(3, 0.1),
		trajopt.TypeSOS,
		[]string{"arm"},
		0, 1, 1,
	)
	if err := engine.AddObjective(smooth); err != nil {
		log.Errorf("declaring smooth objective: %v", err)
		os.Exit(1)
	}

	tr, err := engine.RunPrepare()
	if err != nil {
		log.Errorf("preparing transcription: %v", err)
		os.Exit(1)
	}

	x := engine.WarmStart()
	result, err := tr.Evaluate(x)
	if err != nil {
		log.Errorf("evaluating warm start: %v", err)
		os.Exit(1)
	}

	fmt.Printf("sos cost: %.6f\n", result.Cost)
	fmt.Printf("eq residual dim: %d, max violation: %.6f\n", len(result.EqResidual), result.Report.MaxEqViolation)
	fmt.Printf("factors: %d\n", len(tr.Factors()))
}

// buildArmWorld constructs a 3-link planar arm: three rotational joints
// about Z, each preceded by a fixed-length link along X, all collapsed
// into one SimpleModel named "arm" hanging directly off World.
func buildArmWorld() (*trajopt.World, error) {
	const linkLen = 1.0
	link1, err := frame.NewStaticFrame("link1", spatial.NewPoseFromPoint(r3.Vector{X: linkLen}))
	if err != nil {
		return nil, err
	}
	link2, err := frame.NewStaticFrame("link2", spatial.NewPoseFromPoint(r3.Vector{X: linkLen}))
	if err != nil {
		return nil, err
	}
	link3, err := frame.NewStaticFrame("link3", spatial.NewPoseFromPoint(r3.Vector{X: linkLen}))
	if err != nil {
		return nil, err
	}
	limit := frame.Limit{Min: -3.14, Max: 3.14}
	j1, err := frame.NewRotationalFrame("joint1", spatial.R4AA{RZ: 1}, limit)
	if err != nil {
		return nil, err
	}
	j2, err := frame.NewRotationalFrame("joint2", spatial.R4AA{RZ: 1}, limit)
	if err != nil {
		return nil, err
	}
	j3, err := frame.NewRotationalFrame("joint3", spatial.R4AA{RZ: 1}, limit)
	if err != nil {
		return nil, err
	}

	model, err := frame.NewSerialModel("arm", []frame.Frame{j1, link1, j2, link2, j3, link3})
	if err != nil {
		return nil, err
	}

	fs := frame.NewEmptyFrameSystem("demo")
	if err := fs.AddFrame(model, fs.World()); err != nil {
		return nil, err
	}

	return trajopt.NewWorld("demo", fs), nil
}
