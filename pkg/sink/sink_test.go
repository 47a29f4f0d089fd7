package sink

import (
	"bufio"
	"bytes"
	"encoding/json"
	"image/color"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/matzehuels/runigram/pkg/grid"

	rterrors "github.com/matzehuels/runigram/pkg/errors"
)

func testGrid(t *testing.T, rows, cols int) *grid.Grid {
	t.Helper()
	g, err := grid.New(rows, cols, func(row, col int) grid.Color {
		return grid.Color{R: uint8(10 * row), G: uint8(10 * col), B: 200}
	})
	if err != nil {
		t.Fatalf("grid.New: %v", err)
	}
	return g
}

func TestOpenInvalidDimensions(t *testing.T) {
	displays := map[string]Display{
		"discard":  Discard,
		"recorder": NewRecorder(),
		"ansi":     NewANSI(&bytes.Buffer{}),
		"sixel":    NewSixel(&bytes.Buffer{}, 1),
		"ndjson":   NewNDJSON(&bytes.Buffer{}),
	}
	for name, d := range displays {
		t.Run(name, func(t *testing.T) {
			if _, err := d.Open(0, 3); !rterrors.Is(err, rterrors.ErrCodeInvalidParameter) {
				t.Errorf("Open(0, 3) error = %v, want %s", err, rterrors.ErrCodeInvalidParameter)
			}
		})
	}
}

func TestPaintShapeMismatch(t *testing.T) {
	displays := map[string]Display{
		"discard":  Discard,
		"recorder": NewRecorder(),
		"ansi":     NewANSI(&bytes.Buffer{}),
		"sixel":    NewSixel(&bytes.Buffer{}, 1),
		"ndjson":   NewNDJSON(&bytes.Buffer{}),
	}
	for name, d := range displays {
		t.Run(name, func(t *testing.T) {
			c, err := d.Open(2, 2)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer c.Close()

			if err := c.Paint(testGrid(t, 3, 2)); !rterrors.Is(err, rterrors.ErrCodeDimensionMismatch) {
				t.Errorf("Paint() error = %v, want %s", err, rterrors.ErrCodeDimensionMismatch)
			}
			if err := c.Paint(nil); !rterrors.Is(err, rterrors.ErrCodeInvalidParameter) {
				t.Errorf("Paint(nil) error = %v, want %s", err, rterrors.ErrCodeInvalidParameter)
			}
		})
	}
}

func TestPaintAfterClose(t *testing.T) {
	rec := NewRecorder()
	c, err := rec.Open(1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if err := c.Paint(testGrid(t, 1, 1)); err == nil {
		t.Error("Paint after Close should fail")
	}
	if rec.Closed() != 1 {
		t.Errorf("Closed() = %d, want 1", rec.Closed())
	}
	// Closing twice is harmless.
	if err := c.Close(); err != nil || rec.Closed() != 1 {
		t.Errorf("second Close: err=%v closed=%d", err, rec.Closed())
	}
}

func TestRecorder(t *testing.T) {
	rec := NewRecorder()
	c, err := rec.Open(2, 3)
	if err != nil {
		t.Fatal(err)
	}
	g1, g2 := testGrid(t, 2, 3), testGrid(t, 2, 3)
	if err := c.Paint(g1); err != nil {
		t.Fatal(err)
	}
	if err := c.Paint(g2); err != nil {
		t.Fatal(err)
	}

	frames := rec.Frames()
	if len(frames) != 2 || frames[0] != g1 || frames[1] != g2 {
		t.Errorf("Frames() = %v", frames)
	}
	if rec.Opened() != 1 {
		t.Errorf("Opened() = %d, want 1", rec.Opened())
	}
}

func TestANSIPaint(t *testing.T) {
	var buf bytes.Buffer
	d := NewANSI(&buf)
	c, err := d.Open(3, 2)
	if err != nil {
		t.Fatal(err)
	}
	g := testGrid(t, 3, 2)
	if err := c.Paint(g); err != nil {
		t.Fatal(err)
	}
	if err := c.Paint(g); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, hideCursor) {
		t.Error("expected cursor to be hidden on open")
	}
	if !strings.HasSuffix(out, showCursor) {
		t.Error("expected cursor to be restored on close")
	}
	// 3 pixel rows -> 2 terminal lines per frame.
	if got := strings.Count(out, "\n"); got != 4 {
		t.Errorf("newline count = %d, want 4", got)
	}
	if !strings.Contains(out, cursorUp(2)) {
		t.Error("second frame should move the cursor back over the first")
	}
	if got := strings.Count(out, upperHalfBlock); got != 8 {
		t.Errorf("half-block count = %d, want 8", got)
	}
}

func TestRenderHalfBlocksColors(t *testing.T) {
	r := lipgloss.NewRenderer(&bytes.Buffer{})
	r.SetColorProfile(termenv.TrueColor)

	g, err := grid.FromRows([][]grid.Color{
		{{R: 255}},
		{{B: 255}},
	})
	if err != nil {
		t.Fatal(err)
	}
	out := RenderHalfBlocks(r, g)

	// Foreground red over background blue, in 24-bit SGR form.
	if !strings.Contains(out, "38;2;255;0;0") {
		t.Errorf("missing red foreground in %q", out)
	}
	if !strings.Contains(out, "48;2;0;0;255") {
		t.Errorf("missing blue background in %q", out)
	}
}

func TestRenderHalfBlocksPlain(t *testing.T) {
	r := lipgloss.NewRenderer(&bytes.Buffer{})
	r.SetColorProfile(termenv.Ascii)

	out := RenderHalfBlocks(r, testGrid(t, 2, 3))
	if out != "▀▀▀\n" {
		t.Errorf("RenderHalfBlocks() = %q, want %q", out, "▀▀▀\n")
	}
}

func TestSixelPaint(t *testing.T) {
	var buf bytes.Buffer
	c, err := NewSixel(&buf, 2).Open(2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Paint(testGrid(t, 2, 2)); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, saveCursor+restoreCursor) {
		t.Errorf("unexpected prefix %q", out[:min(len(out), 8)])
	}
	// DCS introducer followed by the sixel 'q' command.
	if !strings.Contains(out, "\x1bP") || !strings.Contains(out, "q") {
		t.Error("output does not look like a sixel stream")
	}
}

func TestMagnify(t *testing.T) {
	g := testGrid(t, 2, 3)
	img := Magnify(g, 3)

	if b := img.Bounds(); b.Dx() != 9 || b.Dy() != 6 {
		t.Fatalf("bounds = %v, want 9x6", b)
	}
	for y := 0; y < 6; y++ {
		for x := 0; x < 9; x++ {
			c := g.At(y/3, x/3)
			want := color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
			if got := color.RGBAModel.Convert(img.At(x, y)); got != want {
				t.Fatalf("At(%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}

	if Magnify(g, 1).Bounds().Dx() != 3 {
		t.Error("zoom 1 should keep the size")
	}
}

type flushRecorder struct {
	bytes.Buffer
	flushes int
}

func (f *flushRecorder) Flush() { f.flushes++ }

func TestNDJSON(t *testing.T) {
	var w flushRecorder
	c, err := NewNDJSON(&w).Open(2, 2)
	if err != nil {
		t.Fatal(err)
	}
	g := testGrid(t, 2, 2)
	for i := 0; i < 3; i++ {
		if err := c.Paint(g); err != nil {
			t.Fatal(err)
		}
	}
	if w.flushes != 3 {
		t.Errorf("flushes = %d, want 3", w.flushes)
	}

	sc := bufio.NewScanner(strings.NewReader(w.String()))
	idx := 0
	for sc.Scan() {
		var f Frame
		if err := json.Unmarshal(sc.Bytes(), &f); err != nil {
			t.Fatalf("line %d: %v", idx, err)
		}
		if f.Index != idx || f.Rows != 2 || f.Cols != 2 {
			t.Errorf("frame %d header = %+v", idx, f)
		}
		if f.Pixels[1][1] != [3]uint8{10, 10, 200} {
			t.Errorf("frame %d pixel (1,1) = %v", idx, f.Pixels[1][1])
		}
		idx++
	}
	if idx != 3 {
		t.Errorf("decoded %d frames, want 3", idx)
	}
}
