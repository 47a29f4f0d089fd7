package morph

import (
	"github.com/matzehuels/runigram/pkg/grid"
	"github.com/matzehuels/runigram/pkg/transform"

	rterrors "github.com/matzehuels/runigram/pkg/errors"
)

// State is the position of a Session in the morph state machine.
type State int

const (
	// Initializing: inputs accepted, target not yet resampled.
	Initializing State = iota
	// Scaling: the target is being resampled to the source's shape.
	Scaling
	// Framing: frames 0..n are being produced.
	Framing
	// Done: all n+1 frames have been produced.
	Done
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Scaling:
		return "scaling"
	case Framing:
		return "framing"
	case Done:
		return "done"
	}
	return "unknown"
}

// Alpha returns the source weight of frame i in an n-step morph:
// (n-i)/n, so frame 0 is pure source and frame n pure target.
func Alpha(i, n int) float64 {
	return float64(n-i) / float64(n)
}

// Schedule returns the n+1 alphas of an n-step morph.
func Schedule(n int) ([]float64, error) {
	if err := rterrors.ValidateSteps(n); err != nil {
		return nil, err
	}
	out := make([]float64, n+1)
	for i := range out {
		out[i] = Alpha(i, n)
	}
	return out, nil
}

// Session holds the ephemeral state of one morph: the source, the target
// resampled to the source's shape, the step count and the next step index.
// A Session produces frames one at a time and is not safe for concurrent
// use.
type Session struct {
	source       *grid.Grid
	scaledTarget *grid.Grid
	n            int
	step         int
	state        State
}

// NewSession validates the inputs and resamples target to the source's
// dimensions. On success the session is ready to produce frame 0.
func NewSession(source, target *grid.Grid, n int) (*Session, error) {
	if source == nil || target == nil {
		return nil, rterrors.New(rterrors.ErrCodeInvalidParameter, "morph needs both a source and a target")
	}
	if err := rterrors.ValidateSteps(n); err != nil {
		return nil, err
	}
	s := &Session{source: source, n: n, state: Initializing}

	s.state = Scaling
	scaled, err := transform.Scale(target, source.Cols(), source.Rows())
	if err != nil {
		return nil, err
	}
	s.scaledTarget = scaled
	s.state = Framing
	return s, nil
}

// State returns the current state.
func (s *Session) State() State { return s.state }

// Steps returns n.
func (s *Session) Steps() int { return s.n }

// Step returns the index of the next frame to be produced.
func (s *Session) Step() int { return s.step }

// ScaledTarget returns the target resampled to the source's shape.
func (s *Session) ScaledTarget() *grid.Grid { return s.scaledTarget }

// Next produces the next frame and its alpha. ok is false once the session
// is Done. A blend failure is returned as is; the session must then be
// abandoned.
func (s *Session) Next() (frame *grid.Grid, alpha float64, ok bool, err error) {
	if s.state != Framing {
		return nil, 0, false, nil
	}
	alpha = Alpha(s.step, s.n)
	frame, err = transform.Blend(s.source, s.scaledTarget, alpha)
	if err != nil {
		return nil, alpha, false, err
	}
	s.step++
	if s.step > s.n {
		s.state = Done
	}
	return frame, alpha, true, nil
}
