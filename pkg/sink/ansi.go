package sink

import (
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"

	"github.com/matzehuels/runigram/pkg/grid"
)

const (
	upperHalfBlock = "▀"
	hideCursor     = "\x1b[?25l"
	showCursor     = "\x1b[?25h"
)

// ANSIOption configures an ANSI display.
type ANSIOption func(*ANSI)

// WithColorProfile overrides the terminal color profile. The default is
// 24-bit true color.
func WithColorProfile(p termenv.Profile) ANSIOption {
	return func(a *ANSI) { a.profile = p }
}

// WithCursor keeps the cursor visible while frames are drawn.
func WithCursor() ANSIOption {
	return func(a *ANSI) { a.keepCursor = true }
}

// ANSI draws frames with the upper-half-block character: each terminal cell
// shows two pixel rows, the top pixel as foreground and the bottom pixel as
// background. Successive frames overwrite the previous one in place.
type ANSI struct {
	w          io.Writer
	profile    termenv.Profile
	keepCursor bool
}

// NewANSI creates an ANSI display writing to w.
func NewANSI(w io.Writer, opts ...ANSIOption) *ANSI {
	a := &ANSI{w: w, profile: termenv.TrueColor}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Open implements Display.
func (a *ANSI) Open(rows, cols int) (Canvas, error) {
	s, err := newSurface(rows, cols)
	if err != nil {
		return nil, err
	}
	r := lipgloss.NewRenderer(a.w)
	r.SetColorProfile(a.profile)
	c := &ansiCanvas{surface: s, display: a, renderer: r, lines: (rows + 1) / 2}
	if !a.keepCursor {
		if _, err := io.WriteString(a.w, hideCursor); err != nil {
			return nil, err
		}
	}
	return c, nil
}

type ansiCanvas struct {
	*surface
	display  *ANSI
	renderer *lipgloss.Renderer
	lines    int
}

func (c *ansiCanvas) Paint(g *grid.Grid) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.begin(g); err != nil {
		return err
	}

	var b strings.Builder
	if c.frames > 0 {
		b.WriteString(cursorUp(c.lines))
	}
	b.WriteString(RenderHalfBlocks(c.renderer, g))
	if _, err := io.WriteString(c.display.w, b.String()); err != nil {
		return err
	}
	c.frames++
	return nil
}

func (c *ansiCanvas) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if !c.display.keepCursor {
		_, err := io.WriteString(c.display.w, showCursor)
		return err
	}
	return nil
}

// RenderHalfBlocks renders g as lines of half-block cells, one line per two
// pixel rows, each line terminated by a newline. An odd final row is drawn
// with the default background below it.
func RenderHalfBlocks(r *lipgloss.Renderer, g *grid.Grid) string {
	var b strings.Builder
	for i := 0; i < g.Rows(); i += 2 {
		for j := 0; j < g.Cols(); j++ {
			style := r.NewStyle().Foreground(hexColor(g.At(i, j)))
			if i+1 < g.Rows() {
				style = style.Background(hexColor(g.At(i+1, j)))
			}
			b.WriteString(style.Render(upperHalfBlock))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func hexColor(c grid.Color) lipgloss.Color {
	cf := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	return lipgloss.Color(cf.Hex())
}

// cursorUp moves the cursor to the start of the line n lines above.
func cursorUp(n int) string {
	return "\x1b[" + strconv.Itoa(n) + "F"
}
