package transform

import (
	"math"

	"github.com/matzehuels/runigram/pkg/grid"

	rterrors "github.com/matzehuels/runigram/pkg/errors"
)

// Channels is an unclamped blend result. Values leave [0,255] only when
// alpha is outside [0,1], and saturate at ±channelLimit so that huge alphas
// still clamp to the right end of the channel range.
type Channels struct {
	R, G, B int
}

// BlendColor linearly interpolates two colors per channel:
// v = alpha*v1 + (1-alpha)*v2, truncated toward zero.
func BlendColor(c1, c2 grid.Color, alpha float64) Channels {
	beta := 1 - alpha
	return Channels{
		R: mix(c1.R, c2.R, alpha, beta),
		G: mix(c1.G, c2.G, alpha, beta),
		B: mix(c1.B, c2.B, alpha, beta),
	}
}

// channelLimit bounds raw channel values well inside int range.
const channelLimit = math.MaxInt32

// The float64 conversions keep the two products from being fused into a
// single multiply-add, so results are identical on every architecture.
// The sum saturates before the int conversion, which is undefined for
// values int cannot hold.
func mix(v1, v2 uint8, alpha, beta float64) int {
	v := float64(alpha*float64(v1)) + float64(beta*float64(v2))
	switch {
	case v >= channelLimit:
		return channelLimit
	case v <= -channelLimit:
		return -channelLimit
	}
	return int(v)
}

// Color clamps the channels into a color.
func (c Channels) Color() grid.Color {
	return grid.Color{R: grid.Clamp(c.R), G: grid.Clamp(c.G), B: grid.Clamp(c.B)}
}

// Blend combines two grids of identical shape pixel by pixel with
// BlendColor. Channel values are clamped to [0,255] when the result grid is
// built. Grids of different shape yield a DIMENSION_MISMATCH error and no
// grid.
func Blend(g1, g2 *grid.Grid, alpha float64) (*grid.Grid, error) {
	if !g1.SameShape(g2) {
		return nil, rterrors.New(rterrors.ErrCodeDimensionMismatch,
			"blend: %dx%d and %dx%d grids differ in shape", g1.Rows(), g1.Cols(), g2.Rows(), g2.Cols())
	}
	if err := rterrors.ValidateAlpha(alpha); err != nil {
		return nil, err
	}
	return grid.FromChannels(g1.Rows(), g1.Cols(), func(i, j int) (int, int, int) {
		c := BlendColor(g1.At(i, j), g2.At(i, j), alpha)
		return c.R, c.G, c.B
	})
}
