package grid

import (
	"image"
	"image/color"
)

// Image returns a read-only image.Image view of g: x is the column and y
// the row, with (0,0) at the top-left pixel.
func (g *Grid) Image() image.Image {
	return imageView{g}
}

type imageView struct{ g *Grid }

func (v imageView) ColorModel() color.Model { return color.RGBAModel }

func (v imageView) Bounds() image.Rectangle {
	return image.Rect(0, 0, v.g.cols, v.g.rows)
}

func (v imageView) At(x, y int) color.Color {
	if x < 0 || x >= v.g.cols || y < 0 || y >= v.g.rows {
		return color.RGBA{}
	}
	c := v.g.pix[y*v.g.cols+x]
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

// FromImage converts any image.Image into a grid, dropping alpha.
func FromImage(img image.Image) (*Grid, error) {
	b := img.Bounds()
	return New(b.Dy(), b.Dx(), func(row, col int) Color {
		c := color.RGBAModel.Convert(img.At(b.Min.X+col, b.Min.Y+row)).(color.RGBA)
		return Color{c.R, c.G, c.B}
	})
}
