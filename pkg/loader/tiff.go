package loader

import (
	"fmt"
	"image/color"
	"os"

	"golang.org/x/image/tiff"

	"cubeview/pkg/cube"
)

// openTIFF decodes a tagged-image file as a single-band cube held in
// memory. Samples are taken as 16-bit grayscale intensity, which covers the
// single-band scientific rasters the viewer displays; multi-band TIFF stacks
// need an external handler.
func openTIFF(path string) (cube.Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()

	img, err := tiff.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", path, err, cube.ErrCorruptFile)
	}

	bounds := img.Bounds()
	shape := cube.Shape{Rows: bounds.Dy(), Cols: bounds.Dx(), Bands: 1}
	if !shape.Valid() {
		return nil, fmt.Errorf("%s: empty image: %w", path, cube.ErrInvalidShape)
	}

	data := make([]float64, shape.Len())
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			g := color.Gray16Model.Convert(img.At(x, y)).(color.Gray16)
			data[i] = float64(g.Y)
			i++
		}
	}
	return cube.NewMemorySource(data, shape, cube.WithSourceDType(cube.Uint16))
}
