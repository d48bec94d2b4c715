package trajopt

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// EvaluationReport summarizes one Evaluate call's bookkeeping: how many
// grounded objectives contributed to each term, and how many residuals
// came back degenerate (NaN/Inf, or a collision feature with no reported
// proxy). Grounded on the teacher's scoring/diagnostics style in
// motionPlanner.go's getSolutions, adapted to this engine's sos/eq/ineq
// split.
type EvaluationReport struct {
	SOSTerms, EqTerms, IneqTerms int
	DegenerateResiduals          int
	TotalCost                    float64
	MaxEqViolation               float64
	MaxIneqViolation             float64
}

// Transcription is the nonlinear-program contract a solver consumes: a
// sparse-flat view (one cost scalar, one stacked equality vector, one
// stacked inequality vector, each with a matching Jacobian against the
// flattened decision vector) plus a factored view (Factors) listing the
// grounded objectives with their (frame, slice) tuples in evaluation order.
type Transcription struct {
	pc       *PathConfig
	ps       *PathState
	grounded []*GroundedObjective
	jacH     float64

	// spline, when non-nil, reparameterizes Evaluate per spec §4.7: x is a
	// (numControlPoints * SliceWidth) reduced vector lifted through spline
	// (T x numControlPoints) into the full decision vector before every
	// other step runs, and the assembled gradient/Jacobian columns are
	// post-multiplied by spline (by chain rule: full = spline * reduced) on
	// the way back into CostGrad/EqJac/IneqJac.
	spline           *mat.Dense
	numControlPoints int
}

// NewTranscription builds a Transcription over the given grounded
// objectives; jacH is the central-difference step used for every feature's
// numeric Jacobian.
func NewTranscription(pc *PathConfig, ps *PathState, grounded []*GroundedObjective, jacH float64) *Transcription {
	if jacH <= 0 {
		jacH = 1e-6
	}
	return &Transcription{pc: pc, ps: ps, grounded: grounded, jacH: jacH}
}

// WithSpline reparameterizes this Transcription's Evaluate/Bounds to operate
// over a reduced decision vector of b's column count control points per
// frame coordinate instead of one value per live slice (spec §4.7's spline
// reparameterization). b must have t.ps's live-slice count T as its row
// count (see PathState.SplineBasis).
func (t *Transcription) WithSpline(b *mat.Dense) *Transcription {
	rows, cols := b.Dims()
	if rows != t.pc.T {
		panic(errors.Errorf("spline basis has %d rows, want %d", rows, t.pc.T))
	}
	t.spline = b
	t.numControlPoints = cols
	return t
}

// reducedLen is the decision-vector length Evaluate/Bounds expect: the
// spline-reduced length when a spline basis is set, or PathState's full
// length otherwise.
func (t *Transcription) reducedLen() int {
	if t.spline == nil {
		return t.ps.Len()
	}
	return t.numControlPoints * t.ps.sliceWidth
}

// liftSpline expands a reduced control-point vector into the full
// per-live-slice decision vector PathState.Unflatten expects, one frame
// coordinate channel at a time.
func (t *Transcription) liftSpline(reduced []float64) ([]float64, error) {
	want := t.numControlPoints * t.ps.sliceWidth
	if len(reduced) != want {
		return nil, errors.Errorf("reduced decision vector has length %d, want %d", len(reduced), want)
	}
	width := t.ps.sliceWidth
	full := make([]float64, t.ps.Len())
	cv := make([]float64, t.numControlPoints)
	var out mat.VecDense
	for c := 0; c < width; c++ {
		for cp := 0; cp < t.numControlPoints; cp++ {
			cv[cp] = reduced[cp*width+c]
		}
		out.MulVec(t.spline, mat.NewVecDense(t.numControlPoints, cv))
		for ti := 0; ti < t.pc.T; ti++ {
			full[ti*width+c] = out.AtVec(ti)
		}
	}
	return full, nil
}

// scatterGrad adds value into dst at the column global indexes into the
// full decision vector, or, under a spline reparameterization, distributes
// it across every control point weighted by the spline basis (the
// Jacobian-post-multiplied-by-B half of spec §4.7, applied directly to the
// already-assembled gradient/Jacobian row instead of materializing the full
// Jacobian and multiplying it out).
func (t *Transcription) scatterGrad(dst []float64, global int, value float64) {
	if t.spline == nil {
		dst[global] += value
		return
	}
	width := t.ps.sliceWidth
	ti, c := global/width, global%width
	for cp := 0; cp < t.numControlPoints; cp++ {
		w := t.spline.At(ti, cp)
		if w == 0 {
			continue
		}
		dst[cp*width+c] += w * value
	}
}

// Factors returns the grounded objectives this Transcription evaluates, in
// grounding order; the factored view spec §9 asks for alongside the
// sparse-flat one.
func (t *Transcription) Factors() []*GroundedObjective {
	out := make([]*GroundedObjective, len(t.grounded))
	copy(out, t.grounded)
	return out
}

// Labels returns a human-readable name per grounded objective, built from
// the feature name, the owning Objective's Name and the grounded slice
// ("positionDiff(reach)#t=4"), for matching a solver's constraint-failure
// report back to the factor that produced it.
func (t *Transcription) Labels() []string {
	out := make([]string, len(t.grounded))
	for i, g := range t.grounded {
		out[i] = g.Objective.Feature.Name() + "(" + g.Objective.Name + ")#t=" + itoa(g.Slice)
	}
	return out
}

// Bounds returns, per decision-vector column, the [min,max] box a solver
// should respect, built from each live frame's declared DoF Limits. Under a
// spline reparameterization, bounds are reported per control point instead
// of per live slice, each read off the frame as it stands at the live slice
// the control point most closely represents.
func (t *Transcription) Bounds() (lower, upper []float64, err error) {
	n := t.reducedLen()
	lower = make([]float64, n)
	upper = make([]float64, n)
	width := t.ps.sliceWidth

	setRow := func(row, repTime int) {
		for _, name := range t.ps.frameOrder {
			off, ok := t.ps.offsets[name]
			if !ok {
				continue
			}
			f, ferr := t.pc.Frame(repTime, name)
			if ferr != nil {
				continue
			}
			for j, lim := range f.DoF() {
				col := row*width + off + j
				lower[col] = lim.Min
				upper[col] = lim.Max
			}
		}
	}

	if t.spline == nil {
		for ti := 0; ti < t.pc.T; ti++ {
			setRow(ti, ti)
		}
		return lower, upper, nil
	}
	for cp := 0; cp < t.numControlPoints; cp++ {
		repTime := cp * (t.pc.T - 1) / (t.numControlPoints - 1)
		setRow(cp, repTime)
	}
	return lower, upper, nil
}

// EvalResult is the sparse-flat NLP view produced by Evaluate.
type EvalResult struct {
	Cost     float64
	CostGrad []float64

	EqResidual []float64
	EqJac      [][]float64

	IneqResidual []float64
	IneqJac      [][]float64

	Report *EvaluationReport
}

// Evaluate runs the five-step protocol spec §9 describes: (1) write x into
// PathConfig, (2) build a FrameSlice handle per frame referenced by any
// grounded tuple, (3) evaluate every grounded objective's residual against
// its declared dimension, (4) numerically differentiate each residual and
// scatter its columns into the flat Jacobian(s) by ObjectiveType, (5)
// assemble the sos cost/gradient and stacked eq/ineq vectors plus an
// EvaluationReport.
func (t *Transcription) Evaluate(x []float64) (*EvalResult, error) {
	full := x
	if t.spline != nil {
		lifted, err := t.liftSpline(x)
		if err != nil {
			return nil, err
		}
		full = lifted
	}
	if err := t.ps.Unflatten(full); err != nil {
		return nil, err
	}

	n := t.reducedLen()
	res := &EvalResult{
		CostGrad: make([]float64, n),
		Report:   &EvaluationReport{},
	}

	handles := map[string]*FrameSlice{}
	handleFor := func(name string, time int) (*FrameSlice, error) {
		key := handleKey(name, time)
		if h, ok := handles[key]; ok {
			return h, nil
		}
		h, err := t.pc.FrameSliceHandle(time, name)
		if err != nil {
			return nil, err
		}
		handles[key] = h
		return h, nil
	}

	for _, g := range t.grounded {
		tuple := make([]*FrameSlice, len(g.Tuple))
		for i, ref := range g.Tuple {
			h, err := handleFor(ref.FrameName, ref.Time)
			if err != nil {
				return nil, errors.Wrapf(err, "grounding %q at slice %d", g.Objective.Name, g.Slice)
			}
			tuple[i] = h
		}

		residual, err := g.Objective.Feature.Evaluate(tuple)
		if err != nil {
			return nil, errors.Wrapf(err, "evaluating %q at slice %d", g.Objective.Name, g.Slice)
		}
		if len(residual) != g.Objective.Feature.Dim() {
			return nil, &ErrResidualDimensionMismatch{
				FeatureName: g.Objective.Feature.Name(),
				Declared:    g.Objective.Feature.Dim(),
				Got:         len(residual),
			}
		}
		if hasDegenerate(residual) {
			res.Report.DegenerateResiduals++
		}

		jac, err := NumericJacobian(g.Objective.Feature, tuple, t.jacH)
		if err != nil {
			return nil, errors.Wrapf(err, "differentiating %q at slice %d", g.Objective.Name, g.Slice)
		}
		cols, err := t.tupleColumns(g.Tuple)
		if err != nil {
			return nil, err
		}

		// Apply scale (uniform or per-component) and subtract target (spec
		// §4.6 step 3); this is the transcription's job, not the feature's
		// (spec §9 design note), so GroundedObjective's own Scale/Target are
		// applied here against the feature's raw residual and Jacobian.
		for r := range residual {
			scale := broadcastAt(g.Scale, r, 1)
			residual[r] = scale * (residual[r] - broadcastAt(g.Target, r, 0))
			for c := range jac[r] {
				jac[r][c] *= scale
			}
		}

		switch g.Objective.Type {
		case TypeSOS:
			res.Report.SOSTerms++
			for r, rv := range residual {
				res.Cost += rv * rv
				for _, cm := range cols {
					t.scatterGrad(res.CostGrad, cm.global, 2*rv*jac[r][cm.jac])
				}
			}
			res.Report.TotalCost = res.Cost

		case TypeEq:
			res.Report.EqTerms++
			rowBase := len(res.EqResidual)
			res.EqResidual = append(res.EqResidual, residual...)
			for r := range residual {
				row := make([]float64, n)
				for _, cm := range cols {
					t.scatterGrad(row, cm.global, jac[r][cm.jac])
				}
				res.EqJac = append(res.EqJac, row)
				if v := absf64(residual[r]); v > res.Report.MaxEqViolation {
					res.Report.MaxEqViolation = v
				}
			}
			_ = rowBase

		case TypeIneq:
			res.Report.IneqTerms++
			for r := range residual {
				row := make([]float64, n)
				for _, cm := range cols {
					t.scatterGrad(row, cm.global, jac[r][cm.jac])
				}
				res.IneqResidual = append(res.IneqResidual, residual[r])
				res.IneqJac = append(res.IneqJac, row)
				if residual[r] > res.Report.MaxIneqViolation {
					res.Report.MaxIneqViolation = residual[r]
				}
			}

		case TypeNone:
			// diagnostics only; no contribution to cost or constraints.

		default:
			return nil, errors.Errorf("objective %q has unknown type %d", g.Objective.Name, g.Objective.Type)
		}
	}

	return res, nil
}

// colMap pairs a column in NumericJacobian's tuple-local Jacobian (jac,
// counted across every tuple entry including prefix slices, matching
// NumericJacobian's column layout) with the corresponding column in the
// flattened decision vector (global).
type colMap struct {
	jac    int
	global int
}

// tupleColumns maps a grounded tuple's (frame, time) refs to decision
// vector columns. NumericJacobian lays out one Jacobian column per joint
// coordinate of every tuple entry, prefix slices included, so the jac index
// here must walk the full tuple in order; only refs with time >= 0 get a
// global column, since prefix slices are fixed and outside the decision
// vector (spec's prefix-pinning invariant).
func (t *Transcription) tupleColumns(tuple []FrameRef) ([]colMap, error) {
	var cols []colMap
	jacCol := 0
	for _, ref := range tuple {
		n := t.ps.dofPerFrame[ref.FrameName]
		if ref.Time < 0 {
			jacCol += n
			continue
		}
		for j := 0; j < n; j++ {
			col, err := t.ps.column(ref.Time, ref.FrameName, j)
			if err != nil {
				return nil, err
			}
			cols = append(cols, colMap{jac: jacCol, global: col})
			jacCol++
		}
	}
	return cols, nil
}

func handleKey(name string, time int) string {
	return name + "@" + itoa(time)
}

func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func absf64(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func hasDegenerate(residual []float64) bool {
	for _, v := range residual {
		if v != v { // NaN
			return true
		}
		if v > 1e18 || v < -1e18 {
			return true
		}
	}
	return false
}
