package trajopt

import "github.com/pkg/errors"

// Setup-invalid errors (spec §7): surfaced synchronously, before
// optimization begins.
var (
	ErrFrameMissing         = errors.New("named frame not found while grounding objective")
	ErrGraphCycle           = errors.New("switch would introduce a re-parent cycle")
	ErrNonIncreasingTuple   = errors.New("objective tuple slice indices must be strictly increasing")
	ErrTupleOutOfRange      = errors.New("objective tuple slice index outside [-kOrder, T-1]")
	ErrKOrderTooSmall       = errors.New("kOrder must be >= the maximum order over all objectives")
	ErrUnsupportedJointType = errors.New("unsupported joint type in switch")
	ErrRetrospectiveSwitch  = errors.New("switches are append-only; rebuild the path to edit retrospectively")
)

// ErrResidualDimensionMismatch is a dimension-mismatch error (spec §7):
// fatal, aborts the evaluate call that triggered it.
type ErrResidualDimensionMismatch struct {
	FeatureName string
	Declared    int
	Got         int
}

func (e *ErrResidualDimensionMismatch) Error() string {
	return errors.Errorf("feature %q declared dim %d but returned residual of length %d",
		e.FeatureName, e.Declared, e.Got).Error()
}
