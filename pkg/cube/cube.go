// Package cube provides the unified data model for three-dimensional
// scientific datasets: two spatial axes and one measurement axis. A Cube
// binds a backing Source to optional axis calibration and spatial metadata,
// enforces shape invariants, and extracts 2D slices and 1D profiles with
// no-data masking and single-slot caching.
package cube

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/mat"

	"cubeview/pkg/calibration"
)

// Extent maps pixel indices to spatial coordinates: the position of pixel
// (0, 0) plus the size of one pixel along each axis. Optional; cubes without
// an extent are addressed in plain pixel indices.
type Extent struct {
	OriginX, OriginY         float64
	PixelWidth, PixelHeight float64
}

// Valid reports whether the extent maps one-to-one onto a pixel grid.
func (e Extent) Valid() bool {
	return e.PixelWidth != 0 && e.PixelHeight != 0
}

// Profile is a 1D sequence of measurements across the measurement axis at
// one fixed spatial pixel, paired with the axis labels it was sampled at.
// Missing samples are represented as NaN.
type Profile struct {
	// Row, Col identify the pixel the profile was extracted at.
	Row, Col int

	// Values holds one sample per band; no-data positions are NaN.
	Values []float64

	// Labels holds the calibration label per band, or the band indices
	// 0..n-1 when no calibration is bound.
	Labels []float64

	// Unit is the calibration unit, empty without calibration.
	Unit string
}

// Cube is the viewer's data model for one loaded dataset. It exclusively
// owns its Source and Calibration; closing the cube releases the source.
//
// A cube is not safe for concurrent use. Each viewer session owns its cube
// exclusively, so all access happens on that session's event dispatch.
type Cube struct {
	src   Source
	shape Shape
	cal   *calibration.Calibration
	ext   *Extent

	noData float64
	hasND  bool

	// Single-slot caches: the viewer shows one slice and one profile at a
	// time, so one retained result per kind short-circuits redundant
	// re-renders without unbounded growth.
	sliceBand  int
	sliceCache *mat.Dense
	profRow    int
	profCol    int
	profCache  *Profile
}

// Option configures a Cube during construction.
type Option func(*Cube) error

// WithCalibration binds axis calibration at construction. Fails the
// construction with ErrShapeMismatch if the length disagrees with the
// cube's band count.
func WithCalibration(cal *calibration.Calibration) Option {
	return func(c *Cube) error {
		return c.BindCalibration(cal)
	}
}

// WithExtent attaches spatial georeferencing metadata.
func WithExtent(ext Extent) Option {
	return func(c *Cube) error {
		if !ext.Valid() {
			return fmt.Errorf("extent with zero pixel size: %w", ErrShapeMismatch)
		}
		c.ext = &ext
		return nil
	}
}

// WithNoData overrides the no-data sentinel. Takes precedence over any
// sentinel the source declares.
func WithNoData(v float64) Option {
	return func(c *Cube) error {
		c.noData = v
		c.hasND = true
		return nil
	}
}

// New constructs a cube over the given source. Fails with ErrInvalidShape
// for degenerate dimensions and never exposes a partially constructed cube.
func New(src Source, opts ...Option) (*Cube, error) {
	shape := src.Shape()
	if !shape.Valid() {
		return nil, fmt.Errorf("cube %s: %w", shape, ErrInvalidShape)
	}

	c := &Cube{src: src, shape: shape, sliceBand: -1, profRow: -1, profCol: -1}
	if nd, ok := src.(NoDataProvider); ok {
		c.noData, c.hasND = nd.NoData()
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Shape returns the cube dimensions.
func (c *Cube) Shape() Shape {
	return c.shape
}

// DType returns the element type of the backing store.
func (c *Cube) DType() DType {
	return c.src.DType()
}

// Calibration returns the bound axis calibration, nil if none.
func (c *Cube) Calibration() *calibration.Calibration {
	return c.cal
}

// Extent returns the spatial extent and whether one is set.
func (c *Cube) Extent() (Extent, bool) {
	if c.ext == nil {
		return Extent{}, false
	}
	return *c.ext, true
}

// NoData returns the effective no-data sentinel and whether one is set.
func (c *Cube) NoData() (float64, bool) {
	return c.noData, c.hasND
}

// BindCalibration binds axis calibration to the measurement axis. Fails
// with ErrShapeMismatch if the length disagrees with the band count; on
// failure the existing calibration (or absence thereof) is left unchanged.
func (c *Cube) BindCalibration(cal *calibration.Calibration) error {
	if cal.Len() != c.shape.Bands {
		return fmt.Errorf("calibration length %d for %d bands: %w",
			cal.Len(), c.shape.Bands, ErrShapeMismatch)
	}

	c.cal = cal
	// Cached profiles carry labels from the previous calibration.
	c.profCache = nil
	c.profRow, c.profCol = -1, -1
	return nil
}

// GetSlice returns the spatial image at one band as a rows x cols matrix,
// with no-data positions replaced by NaN. The most recently requested slice
// is cached; repeating the request returns the identical matrix. Callers
// must treat the result as read-only.
func (c *Cube) GetSlice(band int) (*mat.Dense, error) {
	if band < 0 || band >= c.shape.Bands {
		return nil, fmt.Errorf("band %d of %d: %w", band, c.shape.Bands, ErrOutOfRange)
	}
	if c.sliceCache != nil && c.sliceBand == band {
		return c.sliceCache, nil
	}

	data, err := c.src.ReadSlice(band)
	if err != nil {
		return nil, err
	}
	if len(data) != c.shape.SliceLen() {
		return nil, fmt.Errorf("source returned %d samples for slice of %s: %w",
			len(data), c.shape, ErrSourceUnavailable)
	}
	c.mask(data)

	c.sliceCache = mat.NewDense(c.shape.Rows, c.shape.Cols, data)
	c.sliceBand = band
	return c.sliceCache, nil
}

// GetProfile returns the measurement-axis values at one pixel, paired with
// the calibration labels (or index positions when no calibration is bound).
// No-data positions are NaN. Cached for the most recently requested pixel.
func (c *Cube) GetProfile(row, col int) (*Profile, error) {
	if row < 0 || row >= c.shape.Rows || col < 0 || col >= c.shape.Cols {
		return nil, fmt.Errorf("pixel (%d, %d) in %s: %w", row, col, c.shape, ErrOutOfRange)
	}
	if c.profCache != nil && c.profRow == row && c.profCol == col {
		return c.profCache, nil
	}

	values, err := c.src.ReadProfile(row, col)
	if err != nil {
		return nil, err
	}
	if len(values) != c.shape.Bands {
		return nil, fmt.Errorf("source returned %d samples for profile of %s: %w",
			len(values), c.shape, ErrSourceUnavailable)
	}
	c.mask(values)

	p := &Profile{Row: row, Col: col, Values: values}
	if c.cal != nil {
		p.Labels = c.cal.Labels()
		p.Unit = c.cal.Unit()
	} else {
		p.Labels = make([]float64, c.shape.Bands)
		for i := range p.Labels {
			p.Labels[i] = float64(i)
		}
	}

	c.profCache = p
	c.profRow, c.profCol = row, col
	return p, nil
}

// Close releases the backing source if it holds an external handle. The
// cube must not be used afterwards.
func (c *Cube) Close() error {
	c.sliceCache = nil
	c.profCache = nil
	if closer, ok := c.src.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// mask replaces no-data sentinel values with NaN in place.
func (c *Cube) mask(data []float64) {
	if !c.hasND {
		return
	}
	for i, v := range data {
		if v == c.noData {
			data[i] = math.NaN()
		}
	}
}
