package ppm

import (
	"bufio"
	"bytes"
	"io"
	"strconv"

	"github.com/matzehuels/runigram/pkg/grid"
)

// Encode writes g as a P3 image with max value 255, one image row per line.
func Encode(w io.Writer, g *grid.Grid) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(Magic + "\n")
	bw.WriteString(strconv.Itoa(g.Cols()) + " " + strconv.Itoa(g.Rows()) + "\n255\n")

	var num []byte
	for i := 0; i < g.Rows(); i++ {
		for j, c := range g.Row(i) {
			if j > 0 {
				bw.WriteByte(' ')
			}
			num = strconv.AppendUint(num[:0], uint64(c.R), 10)
			num = append(num, ' ')
			num = strconv.AppendUint(num, uint64(c.G), 10)
			num = append(num, ' ')
			num = strconv.AppendUint(num, uint64(c.B), 10)
			bw.Write(num)
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// EncodeBytes returns the P3 encoding of g.
func EncodeBytes(g *grid.Grid) []byte {
	var buf bytes.Buffer
	_ = Encode(&buf, g)
	return buf.Bytes()
}
