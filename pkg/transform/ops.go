package transform

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/runigram/pkg/grid"

	rterrors "github.com/matzehuels/runigram/pkg/errors"
)

// Op names accepted by ParseOp.
const (
	OpFlipHorizontal = "flip-h"
	OpFlipVertical   = "flip-v"
	OpGrayscale      = "gray"
	OpScale          = "scale"
)

// Op is a single-input transform that can be chained.
type Op struct {
	Name          string
	Width, Height int // scale only
}

// String returns the textual form understood by ParseOp.
func (o Op) String() string {
	if o.Name == OpScale {
		return fmt.Sprintf("%s=%dx%d", OpScale, o.Width, o.Height)
	}
	return o.Name
}

// MarshalText encodes the op in its ParseOp form, so JSON and TOML carry
// ops as plain strings.
func (o Op) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes an op written in its ParseOp form.
func (o *Op) UnmarshalText(text []byte) error {
	op, err := ParseOp(string(text))
	if err != nil {
		return err
	}
	*o = op
	return nil
}

// ParseOp parses "flip-h", "flip-v", "gray" or "scale=WxH".
func ParseOp(s string) (Op, error) {
	name, arg, hasArg := strings.Cut(strings.TrimSpace(s), "=")
	switch name {
	case OpFlipHorizontal, OpFlipVertical, OpGrayscale:
		if hasArg {
			return Op{}, rterrors.New(rterrors.ErrCodeInvalidParameter, "%s takes no argument", name)
		}
		return Op{Name: name}, nil
	case OpScale:
		w, h, ok := strings.Cut(arg, "x")
		if !ok {
			return Op{}, rterrors.New(rterrors.ErrCodeInvalidParameter, "scale wants WxH, got %q", arg)
		}
		width, errW := strconv.Atoi(w)
		height, errH := strconv.Atoi(h)
		if errW != nil || errH != nil {
			return Op{}, rterrors.New(rterrors.ErrCodeInvalidParameter, "scale wants integer WxH, got %q", arg)
		}
		if err := rterrors.ValidateTargetSize(width, height); err != nil {
			return Op{}, err
		}
		return Op{Name: OpScale, Width: width, Height: height}, nil
	}
	return Op{}, rterrors.New(rterrors.ErrCodeInvalidParameter,
		"unknown transform %q (must be one of: flip-h, flip-v, gray, scale=WxH)", s)
}

// ParseOps parses every entry of specs.
func ParseOps(specs []string) ([]Op, error) {
	ops := make([]Op, 0, len(specs))
	for _, s := range specs {
		op, err := ParseOp(s)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// Apply runs a single op.
func (o Op) Apply(g *grid.Grid) (*grid.Grid, error) {
	switch o.Name {
	case OpFlipHorizontal:
		return FlipHorizontal(g), nil
	case OpFlipVertical:
		return FlipVertical(g), nil
	case OpGrayscale:
		return Grayscale(g), nil
	case OpScale:
		return Scale(g, o.Width, o.Height)
	}
	return nil, rterrors.New(rterrors.ErrCodeUnsupported, "unknown transform %q", o.Name)
}

// Chain applies ops left to right. An empty chain returns g itself, which
// is safe because grids are immutable.
func Chain(g *grid.Grid, ops ...Op) (*grid.Grid, error) {
	out := g
	for _, op := range ops {
		next, err := op.Apply(out)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = next
	}
	return out, nil
}
