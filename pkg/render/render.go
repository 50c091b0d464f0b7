// Package render turns slices and composites into standard images for the
// presentation layer: grayscale renderings of single bands and three-band
// RGB composites with per-channel contrast stretching. Missing samples
// (NaN) render as black.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"

	"cubeview/pkg/cube"
)

// Extrema returns the smallest and largest finite values in the matrix.
// Returns (0, 0) when every sample is missing.
func Extrema(m *mat.Dense) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	rows, cols := m.Dims()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := m.At(r, c)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}

// GrayImage renders a slice as a 16-bit grayscale image, linearly
// stretching the finite value range onto [0, 65535]. Missing samples map to
// zero.
func GrayImage(m *mat.Dense) *image.Gray16 {
	rows, cols := m.Dims()
	img := image.NewGray16(image.Rect(0, 0, cols, rows))

	lo, hi := Extrema(m)
	span := hi - lo
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := m.At(r, c)
			if math.IsNaN(v) {
				continue
			}
			var scaled float64
			if span > 0 {
				scaled = (v - lo) / span
			}
			img.SetGray16(c, r, color.Gray16{Y: uint16(math.Max(0, math.Min(65535, scaled*65535)))})
		}
	}
	return img
}

// SavePNG writes an image as PNG.
func SavePNG(img image.Image, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, img)
}

// SaveJPEG writes an image as JPEG with the given quality.
func SaveJPEG(img image.Image, filename string, quality int) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	return jpeg.Encode(f, img, &jpeg.Options{Quality: quality})
}

// SaveSliceSequence renders every band of the cube to a numbered grayscale
// JPEG in outputDir.
func SaveSliceSequence(c *cube.Cube, outputDir string, quality int) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	for band := 0; band < c.Shape().Bands; band++ {
		m, err := c.GetSlice(band)
		if err != nil {
			return err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("band_%03d.jpg", band))
		if err := SaveJPEG(GrayImage(m), filename, quality); err != nil {
			return err
		}
	}
	return nil
}
