package sink

import (
	"bytes"
	"image"
	"io"

	"github.com/mattn/go-sixel"
	"golang.org/x/image/draw"

	"github.com/matzehuels/runigram/pkg/grid"
)

const (
	saveCursor    = "\x1b7"
	restoreCursor = "\x1b8"
)

// Sixel draws frames as DEC sixel images. Each grid pixel is magnified to a
// Zoom x Zoom block so small pictures stay visible.
type Sixel struct {
	w    io.Writer
	zoom int
}

// NewSixel creates a sixel display writing to w. zoom values below 1 are
// treated as 1.
func NewSixel(w io.Writer, zoom int) *Sixel {
	if zoom < 1 {
		zoom = 1
	}
	return &Sixel{w: w, zoom: zoom}
}

// Open implements Display. The cursor position at open time becomes the
// top-left corner of every frame.
func (s *Sixel) Open(rows, cols int) (Canvas, error) {
	surf, err := newSurface(rows, cols)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(s.w, saveCursor); err != nil {
		return nil, err
	}
	return &sixelCanvas{surface: surf, display: s}, nil
}

type sixelCanvas struct {
	*surface
	display *Sixel
}

func (c *sixelCanvas) Paint(g *grid.Grid) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.begin(g); err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteString(restoreCursor)
	if err := sixel.NewEncoder(&buf).Encode(Magnify(g, c.display.zoom)); err != nil {
		return err
	}
	if _, err := c.display.w.Write(buf.Bytes()); err != nil {
		return err
	}
	c.frames++
	return nil
}

func (c *sixelCanvas) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Magnify returns g as an image with every pixel repeated zoom times in each
// direction.
func Magnify(g *grid.Grid, zoom int) image.Image {
	src := g.Image()
	if zoom <= 1 {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, g.Cols()*zoom, g.Rows()*zoom))
	draw.NearestNeighbor.Scale(dst, dst.Rect, src, src.Bounds(), draw.Src, nil)
	return dst
}
