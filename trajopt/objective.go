package trajopt

import "github.com/google/uuid"

// ObjectiveType classifies how a GroundedObjective's residual enters the
// nonlinear program (spec §4.2).
type ObjectiveType int

const (
	// TypeSOS contributes sum-of-squares cost terms.
	TypeSOS ObjectiveType = iota
	// TypeEq is an equality constraint, residual == 0.
	TypeEq
	// TypeIneq is an inequality constraint, residual <= 0.
	TypeIneq
	// TypeNone computes a residual for diagnostics only; it never enters
	// the NLP's cost or constraint set.
	TypeNone
)

// Objective is a user-declared requirement over a time interval: a Feature
// applied to every order-sized tuple of slices the interval implies, once
// the interval is expanded into absolute slice indices and clamped/extended
// by (DeltaFrom, DeltaTo) (spec §4.2, §3's "stepDelta=(Δfrom,Δto)").
type Objective struct {
	ID      uuid.UUID
	Name    string
	Feature Feature
	Type    ObjectiveType

	// FrameNames are the frame(s) the feature tuple is built from, applied
	// at each grounded slice (or slice-window, for order > 0).
	FrameNames []string

	// FromPhase, ToPhase bound the objective's time interval in phases;
	// Grounder converts phases to absolute slices via StepsPerPhase.
	FromPhase, ToPhase int
	// DeltaFrom, DeltaTo independently shift the grounded interval's start
	// and end by a fixed slice offset before clamping into [-kOrder, T-1]
	// (spec §3's two-sided stepDelta and Open Question (a) in
	// SPEC_FULL.md §13); a uniform shift sets both to the same value, an
	// asymmetric widening sets them to opposite signs.
	DeltaFrom, DeltaTo int

	// Order is one less than the number of consecutive slices each grounded
	// tuple spans per frame name (0 = single slice, 1 = consecutive pair, ...).
	Order int

	// Scale multiplies every residual component after Target is
	// subtracted (spec §4.6 step 3: "Apply scale (uniform or
	// per-component)..."). A single-element slice broadcasts uniformly
	// across every residual component; nil means scale 1. Composition of
	// scale onto a raw Feature residual is a Transcription concern, not a
	// Feature one (spec §9).
	Scale []float64
	// Target is subtracted from each raw residual component before Scale
	// is applied (spec §4.6 step 3: "...and subtract target"). A
	// single-element slice broadcasts uniformly; nil means target 0.
	Target []float64
}

// NewObjective builds an Objective with a fresh ID, scale 1, and target 0.
func NewObjective(name string, feature Feature, typ ObjectiveType, frames []string, fromPhase, toPhase, order int) *Objective {
	return &Objective{
		ID:         uuid.New(),
		Name:       name,
		Feature:    feature,
		Type:       typ,
		FrameNames: frames,
		FromPhase:  fromPhase,
		ToPhase:    toPhase,
		Order:      order,
	}
}

// WithScale sets a uniform (one value) or per-component (one value per
// residual component) scale, returning the Objective for chaining.
func (o *Objective) WithScale(scale ...float64) *Objective {
	o.Scale = scale
	return o
}

// WithTarget sets a uniform or per-component target to subtract from the
// raw residual before scaling, returning the Objective for chaining.
func (o *Objective) WithTarget(target ...float64) *Objective {
	o.Target = target
	return o
}

// WithStepDelta sets the two-sided slice-offset extension described in
// spec §3, returning the Objective for chaining.
func (o *Objective) WithStepDelta(deltaFrom, deltaTo int) *Objective {
	o.DeltaFrom = deltaFrom
	o.DeltaTo = deltaTo
	return o
}

// broadcastAt returns vec[i] when vec has more than one element, vec[0]
// when it has exactly one (the uniform-scale/uniform-target case), or def
// when vec is empty.
func broadcastAt(vec []float64, i int, def float64) float64 {
	switch {
	case len(vec) == 0:
		return def
	case len(vec) == 1:
		return vec[0]
	case i < len(vec):
		return vec[i]
	default:
		return def
	}
}
