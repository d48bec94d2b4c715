package trajopt

import "github.com/pkg/errors"

// Grounder expands an Objective's phase-interval declaration into concrete
// GroundedObjectives over the PathConfig's absolute slice indices. Grounding
// is a pure function of (PathConfig, Objective): calling Ground again after
// Reset produces byte-identical output, and grounding order is always
// ascending by slice then by declaration order of FrameNames (spec §4.2/§5,
// "deterministic ordering... idempotent on reset").
type Grounder struct {
	pc            *PathConfig
	stepsPerPhase int
}

// NewGrounder builds a Grounder over pc, converting phases to slices at
// stepsPerPhase slices per phase.
func NewGrounder(pc *PathConfig, stepsPerPhase int) (*Grounder, error) {
	if stepsPerPhase <= 0 {
		return nil, errors.New("stepsPerPhase must be positive")
	}
	return &Grounder{pc: pc, stepsPerPhase: stepsPerPhase}, nil
}

// Ground expands obj into its GroundedObjectives. Per spec §4.2 step 2, the
// tuple-ending index ranges over [t0+o, t1]; equivalently (the convention
// used here, with Slice recording a tuple's *earliest* index t-o rather
// than its latest t) the earliest index ranges over [t0, t1-o], so the
// loop's upper bound is reduced by Order — a tuple whose earliest index
// were allowed up to t1 would read up to Order slices past the declared
// interval's end.
func (g *Grounder) Ground(obj *Objective) ([]*GroundedObjective, error) {
	if obj.ToPhase < obj.FromPhase {
		return nil, ErrNonIncreasingTuple
	}
	if obj.Order < 0 {
		return nil, errors.Errorf("objective %q has negative order %d", obj.Name, obj.Order)
	}
	fromSlice := clampInt(obj.FromPhase*g.stepsPerPhase+obj.DeltaFrom, -g.pc.kOrder, g.pc.T-1)
	toSlice := clampInt(obj.ToPhase*g.stepsPerPhase+obj.DeltaTo, -g.pc.kOrder, g.pc.T-1)

	var out []*GroundedObjective
	for t := fromSlice; t <= toSlice-obj.Order; t++ {
		tuple := make([]FrameRef, 0, len(obj.FrameNames)*(obj.Order+1))
		for _, fn := range obj.FrameNames {
			for o := 0; o <= obj.Order; o++ {
				tuple = append(tuple, FrameRef{FrameName: fn, Time: t + o})
			}
		}
		out = append(out, &GroundedObjective{Objective: obj, Slice: t, Tuple: tuple, Scale: obj.Scale, Target: obj.Target})
	}
	return out, nil
}

// GroundAll expands every objective in objs, in declaration order, and
// concatenates the results; this is the ordering Transcription relies on
// for a stable sparse-flat layout.
func (g *Grounder) GroundAll(objs []*Objective) ([]*GroundedObjective, error) {
	var out []*GroundedObjective
	for _, obj := range objs {
		grounded, err := g.Ground(obj)
		if err != nil {
			return nil, errors.Wrapf(err, "grounding objective %q", obj.Name)
		}
		out = append(out, grounded...)
	}
	return out, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
