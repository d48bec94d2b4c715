// Package trajopt is the trajectory transcription engine: it materializes a
// k-order path as a single large kinematic graph (PathConfig), grounds
// time-interval Objectives into concrete GroundedObjectives, and evaluates
// them coherently under one decision vector (PathState) to expose the
// nonlinear-program contract a solver consumes (Transcription).
package trajopt

import (
	frame "github.com/kinetic-motion/trajopt/referenceframe"
)

// World is the immutable blueprint configuration PathConfig clones T+kOrder
// times. It is read-only after being handed to NewPathConfig, with the one
// documented exception noted in spec §5 (a hull-precomputation step, not
// implemented by this engine since geometry simplification is the
// collision backend's concern).
type World struct {
	fs   frame.FrameSystem
	name string
}

// NewWorld wraps a fully constructed FrameSystem as a World blueprint.
func NewWorld(name string, fs frame.FrameSystem) *World {
	return &World{fs: fs, name: name}
}

// FrameSystem returns the underlying blueprint graph.
func (w *World) FrameSystem() frame.FrameSystem { return w.fs }

// OriginalFrameIDs enumerates every frame name present in the blueprint, in
// a stable (sorted) order. PathConfig's timeSlices index is keyed by these
// IDs (spec §3, "original joint frame IDs").
func (w *World) OriginalFrameIDs() []string {
	names := make([]string, 0)
	for _, f := range w.fs.Frames() {
		names = append(names, f.Name())
	}
	sortStrings(names)
	return names
}

// DoF is the joint-state dimension of one copy of the world: the sum of
// active DOF counts across all its frames.
func (w *World) DoF() int {
	total := 0
	for _, f := range w.fs.Frames() {
		total += len(f.DoF())
	}
	return total
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
