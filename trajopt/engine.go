package trajopt

import (
	"github.com/pkg/errors"

	"github.com/kinetic-motion/trajopt/collision"
	"github.com/kinetic-motion/trajopt/logging"
)

// EngineConfig configures one Engine instance (spec's ambient "external
// interfaces" section): horizon shape, collision toggling, and the logger
// every subsystem sublogs from.
type EngineConfig struct {
	// T is the number of live slices (phases * StepsPerPhase, typically).
	T int
	// StepsPerPhase converts an Objective's FromPhase/ToPhase into absolute
	// slices.
	StepsPerPhase int
	// KOrder is the maximum order any Objective in this engine declares;
	// it sizes PathConfig's prefix window.
	KOrder int
	// ComputeCollisions toggles whether accumulatedCollisions/pairCollision
	// objectives are grounded at all; false skips collision checking
	// entirely rather than grounding and always returning zero, so a
	// caller can tell the difference in an EvaluationReport.
	ComputeCollisions bool
	// JacobianStep is the central-difference step NumericJacobian uses.
	JacobianStep float64
	// Logger receives one Sublogger per engine subsystem (kinematics,
	// grounding, collisions); defaults to a zap production logger named
	// "trajopt" if nil.
	Logger logging.Logger
}

// Engine ties World, PathConfig, the declared Objectives/Switches, and
// Transcription together behind the handful of calls a caller driving an
// optimization loop needs.
type Engine struct {
	cfg     EngineConfig
	world   *World
	pc      *PathConfig
	ps      *PathState
	grnd    *Grounder
	backend collision.Backend

	objectives []*Objective
	switches   []*Switch
	log        logging.Logger

	// modeConsistency holds the GroundedObjectives auto-added by
	// AddModeSwitch, appended to every RunPrepare's grounded list alongside
	// the declared Objectives' own grounding.
	modeConsistency []*GroundedObjective
}

// NewEngine constructs an Engine around world with the given config.
func NewEngine(world *World, cfg EngineConfig) (*Engine, error) {
	if cfg.T <= 0 {
		return nil, errors.New("EngineConfig.T must be positive")
	}
	if cfg.StepsPerPhase <= 0 {
		cfg.StepsPerPhase = 1
	}
	if cfg.JacobianStep <= 0 {
		cfg.JacobianStep = 1e-6
	}
	log := cfg.Logger
	if log == nil {
		log = logging.NewLogger("trajopt")
	}

	pc, err := NewPathConfig(world, cfg.T, cfg.KOrder)
	if err != nil {
		return nil, errors.Wrap(err, "building path config")
	}
	grnd, err := NewGrounder(pc, cfg.StepsPerPhase)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:     cfg,
		world:   world,
		pc:      pc,
		grnd:    grnd,
		backend: collision.NewSimpleBackend(0),
		log:     log,
	}, nil
}

// SetCollisionBackend overrides the default in-process collision backend.
func (e *Engine) SetCollisionBackend(b collision.Backend) { e.backend = b }

// PathConfig exposes the underlying flattened kinematic graph.
func (e *Engine) PathConfig() *PathConfig { return e.pc }

// AddObjective declares an Objective for later grounding; it does not take
// effect until RunPrepare is called (or re-called after Reset). Returns
// ErrKOrderTooSmall synchronously (spec §7: setup-invalid errors surface
// before optimization begins) if obj.Order exceeds the engine's configured
// KOrder, since PathConfig's prefix window is sized to KOrder and an
// objective with a larger order would read past it.
func (e *Engine) AddObjective(obj *Objective) error {
	if obj.Order > e.cfg.KOrder {
		return errors.Wrapf(ErrKOrderTooSmall, "objective %q has order %d, kOrder is %d", obj.Name, obj.Order, e.cfg.KOrder)
	}
	e.objectives = append(e.objectives, obj)
	e.log.Sublogger("objective").Debugf("declared %q (type=%d order=%d)", obj.Name, obj.Type, obj.Order)
	return nil
}

// AddSwitch applies sw to PathConfig immediately; Switches, unlike
// Objectives, take effect as soon as they're added (spec §4: the graph
// itself must be live before objectives referencing switch-introduced
// frames can ground against it).
func (e *Engine) AddSwitch(sw *Switch) error {
	if err := e.pc.ApplySwitch(sw); err != nil {
		return errors.Wrapf(err, "applying switch at slice %d", sw.Slice)
	}
	e.switches = append(e.switches, sw)
	e.log.Sublogger("switch").Infof("applied %s op=%d frame=%q at slice %d", sw.ID, sw.Op, sw.Frame, sw.Slice)
	return nil
}

// AddModeSwitch applies sw (expected to be an OpReparent switch moving
// object onto reference) and auto-adds an equality objective over tuples
// (s,s+1),(s,s+2),...,(s,T-1), where s is sw's effective start slice,
// asserting object's pose relative to reference stays constant from s
// onward (spec §4.3's "Mode-switch composition": a high-level mode change
// is a low-level re-parent switch plus this kinematic-consistency
// constraint). The tuples are built directly rather than through Grounder,
// since the consistency objective's shape — one fixed anchor slice s paired
// against every later slice individually — isn't the fixed-order sliding
// window Grounder expands Objectives into.
func (e *Engine) AddModeSwitch(sw *Switch, reference, object string, scale float64) error {
	if err := e.AddSwitch(sw); err != nil {
		return err
	}
	s := sw.effectiveStart()
	obj := NewObjective("modeSwitchConsistency_"+sw.ID.String(), NewPoseRelConsistency(), TypeEq,
		[]string{reference, object}, 0, 0, 0).WithScale(scale)
	for t := s + 1; t <= e.cfg.T-1; t++ {
		tuple := []FrameRef{
			{FrameName: reference, Time: s},
			{FrameName: object, Time: s},
			{FrameName: reference, Time: t},
			{FrameName: object, Time: t},
		}
		e.modeConsistency = append(e.modeConsistency, &GroundedObjective{
			Objective: obj,
			Slice:     t,
			Tuple:     tuple,
			Scale:     obj.Scale,
			Target:    obj.Target,
		})
	}
	e.log.Sublogger("switch").Infof("added mode-switch consistency %s<-%s from slice %d", reference, object, s)
	return nil
}

// RunPrepare builds the PathState (fixing the decision-vector frame order
// to the graph as it stands after every switch added so far) and grounds
// every declared Objective into a Transcription. Call it once all
// Switches/Objectives for this solve are declared.
func (e *Engine) RunPrepare() (*Transcription, error) {
	ps, err := NewPathState(e.pc)
	if err != nil {
		return nil, errors.Wrap(err, "building path state")
	}
	e.ps = ps

	objs := e.objectives
	if !e.cfg.ComputeCollisions {
		filtered := objs[:0:0]
		for _, o := range e.objectives {
			if _, isColl := o.Feature.(*accumulatedCollisions); isColl {
				continue
			}
			if _, isColl := o.Feature.(*pairCollision); isColl {
				continue
			}
			filtered = append(filtered, o)
		}
		objs = filtered
	}

	grounded, err := e.grnd.GroundAll(objs)
	if err != nil {
		return nil, errors.Wrap(err, "grounding objectives")
	}
	grounded = append(grounded, e.modeConsistency...)
	e.log.Sublogger("grounder").Infof("grounded %d objectives into %d factors (%d mode-switch consistency)",
		len(objs), len(grounded), len(e.modeConsistency))
	return NewTranscription(e.pc, e.ps, grounded, e.cfg.JacobianStep), nil
}

// Evaluate is a convenience wrapper building a fresh Transcription and
// evaluating x against it in one call, for callers that don't need to
// reuse the Transcription across iterations.
func (e *Engine) Evaluate(x []float64) (*EvalResult, error) {
	tr, err := e.RunPrepare()
	if err != nil {
		return nil, err
	}
	return tr.Evaluate(x)
}

// Reset clears declared Objectives (Switches remain, since they mutate the
// live graph itself rather than the NLP contract over it), so a caller can
// redeclare a fresh objective set against the same PathConfig.
func (e *Engine) Reset() {
	e.objectives = nil
	e.ps = nil
}

// WarmStart returns the current decision vector for the most recently
// prepared PathState, or nil if RunPrepare hasn't been called yet.
func (e *Engine) WarmStart() []float64 {
	if e.ps == nil {
		return nil
	}
	return e.ps.Flatten()
}
