package trajopt

// GroundedObjective is one concrete application of an Objective's Feature
// at one absolute tuple of (frameName, time) pairs, produced by Grounder.
// Transcription evaluates every GroundedObjective each Evaluate call.
// Scale/Target are copied from the owning Objective at grounding time,
// since spec §3's data model lists them as part of the grounded instance
// itself ("GroundedObjective: {feature, type, scale, target, frameTuple}"),
// not something Transcription has to chase back through Objective for.
type GroundedObjective struct {
	Objective *Objective
	Slice     int
	Tuple     []FrameRef
	Scale     []float64
	Target    []float64
}

// FrameRef names one (frame, absolute time) pair a grounded tuple spans.
type FrameRef struct {
	FrameName string
	Time      int
}
