// Package sink defines the display contract that receives rendered frames,
// along with the displays runigram ships.
//
// A [Display] is a factory for canvases. Opening a display yields a
// [Canvas] sized to a grid shape; every [Canvas.Paint] repaints the whole
// canvas and presents it at once, and [Canvas.Close] releases it. There is
// no implicit global surface: callers hold the canvas handle for as long as
// they draw.
//
// # Displays
//
//   - [ANSI]: 24-bit color half-block cells for true-color terminals
//   - [Sixel]: DEC sixel graphics for terminals that support them
//   - [NDJSON]: one JSON document per frame, for HTTP streaming
//   - [Recorder]: keeps frames in memory
//   - [Discard]: drops frames
//
// Pixel (row, col) sits at (col, rows-row-1) in a bottom-left-origin plane,
// so row 0 is the top edge of the picture on every display.
package sink

import (
	"sync"

	"github.com/matzehuels/runigram/pkg/grid"

	rterrors "github.com/matzehuels/runigram/pkg/errors"
)

// Display opens canvases.
type Display interface {
	// Open prepares a drawing surface for rows x cols grids.
	Open(rows, cols int) (Canvas, error)
}

// Canvas is an open drawing surface.
type Canvas interface {
	// Paint draws every pixel of g and presents the frame atomically.
	// g must have the shape the canvas was opened with.
	Paint(g *grid.Grid) error
	// Close releases the surface. Paint after Close fails.
	Close() error
}

// DisplayFunc adapts a function to the Display interface.
type DisplayFunc func(rows, cols int) (Canvas, error)

// Open calls f(rows, cols).
func (f DisplayFunc) Open(rows, cols int) (Canvas, error) { return f(rows, cols) }

// surface carries the bookkeeping shared by all canvases.
type surface struct {
	mu         sync.Mutex
	rows, cols int
	frames     int
	closed     bool
}

func newSurface(rows, cols int) (*surface, error) {
	if err := rterrors.ValidateDimensions(rows, cols); err != nil {
		return nil, err
	}
	return &surface{rows: rows, cols: cols}, nil
}

// begin validates a paint request. It must be called with mu held.
func (s *surface) begin(g *grid.Grid) error {
	if s.closed {
		return rterrors.New(rterrors.ErrCodeInvalidParameter, "paint on closed canvas")
	}
	if g == nil {
		return rterrors.New(rterrors.ErrCodeInvalidParameter, "paint: nil grid")
	}
	if g.Rows() != s.rows || g.Cols() != s.cols {
		return rterrors.New(rterrors.ErrCodeDimensionMismatch,
			"paint: canvas is %dx%d, frame is %dx%d", s.rows, s.cols, g.Rows(), g.Cols())
	}
	return nil
}

// Discard is a display whose canvases validate and drop every frame.
var Discard Display = DisplayFunc(func(rows, cols int) (Canvas, error) {
	s, err := newSurface(rows, cols)
	if err != nil {
		return nil, err
	}
	return discardCanvas{s}, nil
})

type discardCanvas struct{ *surface }

func (c discardCanvas) Paint(g *grid.Grid) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.begin(g); err != nil {
		return err
	}
	c.frames++
	return nil
}

func (c discardCanvas) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
