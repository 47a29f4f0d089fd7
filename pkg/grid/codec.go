package grid

import (
	"encoding/binary"

	rterrors "github.com/matzehuels/runigram/pkg/errors"
)

// Binary layout: 4-byte magic, big-endian uint32 rows and cols, then
// rows*cols packed RGB triples.
var magic = [4]byte{'R', 'G', 'R', 'D'}

const headerSize = 12

// MarshalBinary encodes the grid in a compact packed-RGB form.
func (g *Grid) MarshalBinary() ([]byte, error) {
	buf := make([]byte, headerSize, headerSize+3*len(g.pix))
	copy(buf, magic[:])
	binary.BigEndian.PutUint32(buf[4:], uint32(g.rows))
	binary.BigEndian.PutUint32(buf[8:], uint32(g.cols))
	for _, c := range g.pix {
		buf = append(buf, c.R, c.G, c.B)
	}
	return buf, nil
}

// Decode builds a grid from data produced by MarshalBinary. Dimensions
// above MaxDimension are rejected before any size arithmetic.
func Decode(data []byte) (*Grid, error) {
	if len(data) < headerSize || [4]byte(data[:4]) != magic {
		return nil, rterrors.New(rterrors.ErrCodeMalformedInput, "grid: bad binary header")
	}
	rows := binary.BigEndian.Uint32(data[4:])
	cols := binary.BigEndian.Uint32(data[8:])
	if rows > MaxDimension || cols > MaxDimension {
		return nil, rterrors.New(rterrors.ErrCodeMalformedInput, "grid: %dx%d exceeds %d", rows, cols, MaxDimension)
	}
	if err := rterrors.ValidateDimensions(int(rows), int(cols)); err != nil {
		return nil, err
	}
	n := int(rows) * int(cols)
	body := data[headerSize:]
	if len(body) != 3*n {
		return nil, rterrors.New(rterrors.ErrCodeMalformedInput,
			"grid: %dx%d needs %d pixel bytes, got %d", rows, cols, 3*n, len(body))
	}
	g := &Grid{rows: int(rows), cols: int(cols), pix: make([]Color, n)}
	for i := range g.pix {
		g.pix[i] = Color{body[3*i], body[3*i+1], body[3*i+2]}
	}
	return g, nil
}
