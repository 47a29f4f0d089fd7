package sink

import (
	"sync"

	"github.com/matzehuels/runigram/pkg/grid"
)

// Recorder is a Display that keeps every painted frame in memory. It is
// safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	frames []*grid.Grid
	opened int
	closed int
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Open implements Display.
func (r *Recorder) Open(rows, cols int) (Canvas, error) {
	s, err := newSurface(rows, cols)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.opened++
	r.mu.Unlock()
	return &recorderCanvas{surface: s, rec: r}, nil
}

// Frames returns the painted frames in order.
func (r *Recorder) Frames() []*grid.Grid {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*grid.Grid, len(r.frames))
	copy(out, r.frames)
	return out
}

// Opened returns how many canvases were opened.
func (r *Recorder) Opened() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opened
}

// Closed returns how many canvases were closed.
func (r *Recorder) Closed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

type recorderCanvas struct {
	*surface
	rec *Recorder
}

func (c *recorderCanvas) Paint(g *grid.Grid) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.begin(g); err != nil {
		return err
	}
	c.frames++
	c.rec.mu.Lock()
	c.rec.frames = append(c.rec.frames, g)
	c.rec.mu.Unlock()
	return nil
}

func (c *recorderCanvas) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.rec.mu.Lock()
	c.rec.closed++
	c.rec.mu.Unlock()
	return nil
}
