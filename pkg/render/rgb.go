package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gonum.org/v1/gonum/mat"

	"cubeview/pkg/cube"
)

// Channel identifies one color channel of a composite.
type Channel int

const (
	Red Channel = iota
	Green
	Blue
)

func (ch Channel) String() string {
	switch ch {
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	}
	return fmt.Sprintf("Channel(%d)", int(ch))
}

type channelState struct {
	band   int
	lo, hi float64
	slice  *mat.Dense
}

// ThreeBandRGB composes a false-color image from three cube bands, one per
// color channel. Each channel carries its own contrast bounds, initialized
// to the band's value range and adjustable independently. Channel slices
// and the composed image are cached; changing a channel's band or bounds
// invalidates only what depends on it.
type ThreeBandRGB struct {
	cube     *cube.Cube
	channels [3]channelState
	rgb      *image.RGBA
}

// NewThreeBandRGB builds a composite over the given bands. Fails with
// cube.ErrOutOfRange if any band index is invalid.
func NewThreeBandRGB(c *cube.Cube, r, g, b int) (*ThreeBandRGB, error) {
	t := &ThreeBandRGB{cube: c}
	for ch, band := range [3]int{r, g, b} {
		if err := t.setBand(Channel(ch), band); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Band returns the band index assigned to a channel.
func (t *ThreeBandRGB) Band(ch Channel) int {
	return t.channels[ch].band
}

// Bounds returns the contrast bounds of a channel.
func (t *ThreeBandRGB) Bounds(ch Channel) (lo, hi float64) {
	return t.channels[ch].lo, t.channels[ch].hi
}

// SetBand reassigns a channel to another band, resetting its contrast
// bounds to the band's value range.
func (t *ThreeBandRGB) SetBand(ch Channel, band int) error {
	return t.setBand(ch, band)
}

// SetBounds overrides the contrast bounds of a channel.
func (t *ThreeBandRGB) SetBounds(ch Channel, lo, hi float64) {
	t.channels[ch].lo, t.channels[ch].hi = lo, hi
	t.rgb = nil
}

func (t *ThreeBandRGB) setBand(ch Channel, band int) error {
	m, err := t.cube.GetSlice(band)
	if err != nil {
		return err
	}

	// Detach from the cube's single-slot cache: the composite holds three
	// slices at once and must survive the cube loading other bands.
	s := mat.DenseCopyOf(m)
	lo, hi := Extrema(s)
	t.channels[ch] = channelState{band: band, lo: lo, hi: hi, slice: s}
	t.rgb = nil
	return nil
}

// Image composes (or returns the cached) RGBA image. Each channel is
// clipped to its bounds and scaled to [0, 255]; pixels missing in every
// channel are fully transparent.
func (t *ThreeBandRGB) Image() *image.RGBA {
	if t.rgb != nil {
		return t.rgb
	}

	rows, cols := t.channels[Red].slice.Dims()
	img := image.NewRGBA(image.Rect(0, 0, cols, rows))
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			var vals [3]uint8
			missing := true
			for ch := range t.channels {
				v := t.channels[ch].slice.At(r, c)
				if !math.IsNaN(v) {
					missing = false
				}
				vals[ch] = t.channels[ch].scale(v)
			}
			a := uint8(255)
			if missing {
				a = 0
			}
			img.SetRGBA(c, r, color.RGBA{R: vals[Red], G: vals[Green], B: vals[Blue], A: a})
		}
	}

	t.rgb = img
	return img
}

func (cs channelState) scale(v float64) uint8 {
	if math.IsNaN(v) {
		return 0
	}
	span := cs.hi - cs.lo
	if span <= 0 {
		return 0
	}
	scaled := (v - cs.lo) / span
	return uint8(math.Max(0, math.Min(255, scaled*255)))
}
