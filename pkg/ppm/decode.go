// Package ppm reads and writes the plain-text pixel map format (PPM "P3").
//
// A P3 file is a whitespace-separated token stream:
//
//	P3
//	# optional comments run to the end of the line
//	<cols> <rows>
//	<maxValue>
//	r g b  r g b  ...   (rows*cols triplets, row-major)
//
// Samples are kept as written; maxValue (1..65535) is not used to rescale.
// A sample must fit both maxValue and a byte, so 16-bit headers are read as
// long as no sample exceeds 255. Any truncation, non-numeric token or
// out-of-range sample yields a MALFORMED_INPUT error.
package ppm

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"
	"strconv"

	"github.com/matzehuels/runigram/pkg/grid"

	rterrors "github.com/matzehuels/runigram/pkg/errors"
)

// Magic is the only supported header tag.
const Magic = "P3"

// MaxDimension bounds rows and cols so a corrupt header cannot trigger a huge
// allocation.
const MaxDimension = grid.MaxDimension

// MaxValue is the largest maxValue the format allows.
const MaxValue = 65535

// Decode parses a P3 image from r.
func Decode(r io.Reader) (*grid.Grid, error) {
	t := &tokenizer{r: bufio.NewReader(r)}

	tag, err := t.next()
	if err != nil {
		return nil, t.fail(err, "header")
	}
	if tag != Magic {
		return nil, rterrors.New(rterrors.ErrCodeMalformedInput, "unsupported format tag %q (want %s)", tag, Magic)
	}

	cols, err := t.int("width")
	if err != nil {
		return nil, err
	}
	rows, err := t.int("height")
	if err != nil {
		return nil, err
	}
	if rows < 1 || cols < 1 || rows > MaxDimension || cols > MaxDimension {
		return nil, rterrors.New(rterrors.ErrCodeMalformedInput, "invalid image size %dx%d", cols, rows)
	}
	maxValue, err := t.int("max value")
	if err != nil {
		return nil, err
	}
	if maxValue < 1 || maxValue > MaxValue {
		return nil, rterrors.New(rterrors.ErrCodeMalformedInput, "max value %d outside 1..%d", maxValue, MaxValue)
	}
	limit := min(maxValue, 255)

	var sampleErr error
	sample := func(i, j int, channel string) uint8 {
		if sampleErr != nil {
			return 0
		}
		v, err := t.int("pixel")
		if err != nil {
			sampleErr = err
			return 0
		}
		if v < 0 || v > limit {
			sampleErr = rterrors.New(rterrors.ErrCodeMalformedInput,
				"pixel (%d,%d) %s value %d outside 0..%d", i, j, channel, v, limit)
			return 0
		}
		return uint8(v)
	}

	g, err := grid.New(rows, cols, func(i, j int) grid.Color {
		r := sample(i, j, "red")
		gr := sample(i, j, "green")
		b := sample(i, j, "blue")
		return grid.Color{R: r, G: gr, B: b}
	})
	if err != nil {
		return nil, err
	}
	if sampleErr != nil {
		return nil, sampleErr
	}
	return g, nil
}

// DecodeBytes parses a P3 image held in memory.
func DecodeBytes(data []byte) (*grid.Grid, error) {
	return Decode(bytes.NewReader(data))
}

// ReadFile decodes the P3 image stored at path.
func ReadFile(path string) (*grid.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, rterrors.Wrap(rterrors.ErrCodeFileNotFound, err, "image %s not found", path)
		}
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

type tokenizer struct {
	r   *bufio.Reader
	buf []byte
}

// next returns the next whitespace-delimited token, skipping comments.
func (t *tokenizer) next() (string, error) {
	t.buf = t.buf[:0]
	for {
		b, err := t.r.ReadByte()
		if err != nil {
			if err == io.EOF && len(t.buf) > 0 {
				return string(t.buf), nil
			}
			return "", err
		}
		switch {
		case b == '#' && len(t.buf) == 0:
			if _, err := t.r.ReadBytes('\n'); err != nil && err != io.EOF {
				return "", err
			}
		case isSpace(b):
			if len(t.buf) > 0 {
				return string(t.buf), nil
			}
		default:
			t.buf = append(t.buf, b)
		}
	}
}

func (t *tokenizer) int(what string) (int, error) {
	tok, err := t.next()
	if err != nil {
		return 0, t.fail(err, what)
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, rterrors.New(rterrors.ErrCodeMalformedInput, "%s: non-numeric token %q", what, tok)
	}
	return v, nil
}

func (t *tokenizer) fail(err error, what string) error {
	if err == io.EOF {
		return rterrors.New(rterrors.ErrCodeMalformedInput, "%s: unexpected end of input", what)
	}
	return rterrors.Wrap(rterrors.ErrCodeMalformedInput, err, "%s: read failed", what)
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
