// Package grid provides the ColorGrid data model: an immutable, row-major
// rectangle of 8-bit RGB triples.
//
// A [Grid] owns its pixel storage. Constructors copy whatever they are given,
// accessors hand out copies, and no method mutates a grid after it has been
// built, so grids can be shared freely between transforms, sinks and
// goroutines.
package grid

import (
	rterrors "github.com/matzehuels/runigram/pkg/errors"
)

// Color is an RGB triple. Channel values are always in [0,255].
type Color struct {
	R, G, B uint8
}

// MaxDimension bounds rows and cols of decoded grids so corrupt input
// cannot trigger a huge allocation.
const MaxDimension = 1 << 14

// Common colors.
var (
	Black = Color{0, 0, 0}
	White = Color{255, 255, 255}
)

// Grid is an immutable ColorGrid. The zero value is not usable; build grids
// with [New], [FromRows] or [FromChannels].
type Grid struct {
	rows, cols int
	pix        []Color // row-major, len == rows*cols
}

// New creates a rows x cols grid whose pixels are produced by fill.
// A nil fill yields an all-black grid.
func New(rows, cols int, fill func(row, col int) Color) (*Grid, error) {
	if err := rterrors.ValidateDimensions(rows, cols); err != nil {
		return nil, err
	}
	g := &Grid{rows: rows, cols: cols, pix: make([]Color, rows*cols)}
	if fill != nil {
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				g.pix[i*cols+j] = fill(i, j)
			}
		}
	}
	return g, nil
}

// FromRows builds a grid from decoded pixel rows. The data is deep-copied.
// Every row must have the length of the first one; ragged input is
// rejected rather than truncated.
func FromRows(rows [][]Color) (*Grid, error) {
	if len(rows) == 0 {
		return nil, rterrors.New(rterrors.ErrCodeInvalidParameter, "grid must have at least one row")
	}
	cols := len(rows[0])
	if err := rterrors.ValidateDimensions(len(rows), cols); err != nil {
		return nil, err
	}
	g := &Grid{rows: len(rows), cols: cols, pix: make([]Color, 0, len(rows)*cols)}
	for i, row := range rows {
		if len(row) != cols {
			return nil, rterrors.New(rterrors.ErrCodeDimensionMismatch,
				"row %d has %d columns, want %d", i, len(row), cols)
		}
		g.pix = append(g.pix, row...)
	}
	return g, nil
}

// FromChannels builds a grid from raw integer channel values, clamping each
// one to [0,255]. It is the construction boundary for arithmetic that may
// overflow, such as blending with a weight outside [0,1].
func FromChannels(rows, cols int, f func(row, col int) (r, g, b int)) (*Grid, error) {
	return New(rows, cols, func(i, j int) Color {
		r, g, b := f(i, j)
		return Color{Clamp(r), Clamp(g), Clamp(b)}
	})
}

// Clamp saturates v to the channel range [0,255].
func Clamp(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}

// Rows returns the number of rows (the image height).
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns (the image width).
func (g *Grid) Cols() int { return g.cols }

// At returns the color at (row, col). It panics if the position is out of
// range, like a slice index would.
func (g *Grid) At(row, col int) Color {
	if row < 0 || row >= g.rows || col < 0 || col >= g.cols {
		panic("grid: position out of range")
	}
	return g.pix[row*g.cols+col]
}

// Row returns a copy of row i.
func (g *Grid) Row(i int) []Color {
	out := make([]Color, g.cols)
	copy(out, g.pix[i*g.cols:(i+1)*g.cols])
	return out
}

// SameShape reports whether g and other have identical dimensions.
func (g *Grid) SameShape(other *Grid) bool {
	return g.rows == other.rows && g.cols == other.cols
}

// Equal reports whether both grids have the same shape and pixels.
func (g *Grid) Equal(other *Grid) bool {
	if g == nil || other == nil {
		return g == other
	}
	if !g.SameShape(other) {
		return false
	}
	for i, c := range g.pix {
		if other.pix[i] != c {
			return false
		}
	}
	return true
}

// Each calls fn for every pixel in row-major order.
func (g *Grid) Each(fn func(row, col int, c Color)) {
	for i := 0; i < g.rows; i++ {
		for j := 0; j < g.cols; j++ {
			fn(i, j, g.pix[i*g.cols+j])
		}
	}
}
