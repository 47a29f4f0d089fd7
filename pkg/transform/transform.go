// Package transform implements the pure pixel-level and geometric operations
// on [grid.Grid]: flips, grayscale, nearest-neighbor resampling and alpha
// blending.
//
// Every function reads its input grids and returns a freshly allocated
// result. Nothing is computed in place, so an output pixel is never derived
// from another output pixel.
package transform

import (
	"github.com/matzehuels/runigram/pkg/grid"

	rterrors "github.com/matzehuels/runigram/pkg/errors"
)

// FlipHorizontal mirrors g left to right: out[i][j] = g[i][cols-1-j].
func FlipHorizontal(g *grid.Grid) *grid.Grid {
	cols := g.Cols()
	out, _ := grid.New(g.Rows(), cols, func(i, j int) grid.Color {
		return g.At(i, cols-1-j)
	})
	return out
}

// FlipVertical mirrors g top to bottom: out[i][j] = g[rows-1-i][j].
func FlipVertical(g *grid.Grid) *grid.Grid {
	rows := g.Rows()
	out, _ := grid.New(rows, g.Cols(), func(i, j int) grid.Color {
		return g.At(rows-1-i, j)
	})
	return out
}

// Luminance weights in thousandths.
const (
	lumR = 299
	lumG = 587
	lumB = 114
)

// Luminance returns floor(0.299r + 0.587g + 0.114b).
//
// The sum is evaluated in integer thousandths so the floor is exact: a gray
// pixel (v,v,v) has luminance v, and white stays 255.
func Luminance(c grid.Color) uint8 {
	return uint8((lumR*int(c.R) + lumG*int(c.G) + lumB*int(c.B)) / 1000)
}

// Grayscale replaces every pixel with (lum, lum, lum) where lum is the
// luminance of the original pixel.
func Grayscale(g *grid.Grid) *grid.Grid {
	out, _ := grid.New(g.Rows(), g.Cols(), func(i, j int) grid.Color {
		l := Luminance(g.At(i, j))
		return grid.Color{R: l, G: l, B: l}
	})
	return out
}

// Scale resamples g to width x height with nearest-neighbor selection:
// output pixel (i,j) takes source pixel (i*rows/height, j*cols/width),
// using integer division.
func Scale(g *grid.Grid, width, height int) (*grid.Grid, error) {
	if err := rterrors.ValidateTargetSize(width, height); err != nil {
		return nil, err
	}
	srcRows, srcCols := g.Rows(), g.Cols()
	return grid.New(height, width, func(i, j int) grid.Color {
		return g.At(i*srcRows/height, j*srcCols/width)
	})
}
