package transform_test

import (
	"fmt"

	"github.com/matzehuels/runigram/pkg/grid"
	"github.com/matzehuels/runigram/pkg/transform"
)

func ExampleBlend() {
	g, _ := grid.FromRows([][]grid.Color{
		{{R: 255}, {G: 255}},
		{{B: 255}, grid.White},
	})

	// Blending an image with itself leaves it unchanged.
	same, _ := transform.Blend(g, g, 0.5)
	fmt.Println(same.Equal(g))

	gray := transform.Grayscale(g)
	half, _ := transform.Blend(g, gray, 0.5)
	fmt.Println(half.At(0, 0))
	// Output:
	// true
	// {165 38 38}
}

func ExampleScale() {
	g, _ := grid.FromRows([][]grid.Color{{{R: 1}, {R: 2}, {R: 3}, {R: 4}}})
	small, _ := transform.Scale(g, 2, 1)
	fmt.Println(small.Row(0))
	// Output:
	// [{1 0 0} {3 0 0}]
}
