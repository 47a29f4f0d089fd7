package sink

import (
	"encoding/json"
	"io"

	"github.com/matzehuels/runigram/pkg/grid"
)

// Frame is the JSON form of one painted frame.
type Frame struct {
	Index  int          `json:"index"`
	Rows   int          `json:"rows"`
	Cols   int          `json:"cols"`
	Pixels [][][3]uint8 `json:"pixels"`
}

// NewFrame converts g into its JSON form.
func NewFrame(index int, g *grid.Grid) Frame {
	f := Frame{Index: index, Rows: g.Rows(), Cols: g.Cols(), Pixels: make([][][3]uint8, g.Rows())}
	for i := range f.Pixels {
		row := make([][3]uint8, g.Cols())
		for j, c := range g.Row(i) {
			row[j] = [3]uint8{c.R, c.G, c.B}
		}
		f.Pixels[i] = row
	}
	return f
}

// flusher matches http.Flusher without importing net/http.
type flusher interface {
	Flush()
}

// NDJSON writes each frame as a single JSON line. When the writer can be
// flushed (an http.ResponseWriter, for example) it is flushed after every
// frame so clients see frames as they are produced.
type NDJSON struct {
	w io.Writer
}

// NewNDJSON creates an NDJSON display writing to w.
func NewNDJSON(w io.Writer) *NDJSON {
	return &NDJSON{w: w}
}

// Open implements Display.
func (n *NDJSON) Open(rows, cols int) (Canvas, error) {
	s, err := newSurface(rows, cols)
	if err != nil {
		return nil, err
	}
	return &ndjsonCanvas{surface: s, enc: json.NewEncoder(n.w), w: n.w}, nil
}

type ndjsonCanvas struct {
	*surface
	enc *json.Encoder
	w   io.Writer
}

func (c *ndjsonCanvas) Paint(g *grid.Grid) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.begin(g); err != nil {
		return err
	}
	if err := c.enc.Encode(NewFrame(c.frames, g)); err != nil {
		return err
	}
	if f, ok := c.w.(flusher); ok {
		f.Flush()
	}
	c.frames++
	return nil
}

func (c *ndjsonCanvas) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
