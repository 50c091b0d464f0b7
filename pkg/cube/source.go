package cube

import "fmt"

// Source is the abstraction over however cube bytes are actually stored and
// fetched. It decouples "how bytes are read" from "how the viewer addresses
// them", so arbitrarily large cubes can be viewed without full
// materialization: a slice read touches one band's worth of data, a profile
// read touches one pixel across all bands.
//
// Implementations must keep Shape and DType constant after construction.
// Reads outside the shape fail with ErrOutOfRange; reads that cannot reach
// the underlying storage fail with ErrSourceUnavailable.
type Source interface {
	// Shape returns the cube dimensions. Pure and idempotent.
	Shape() Shape

	// DType returns the element type of the backing store.
	DType() DType

	// ReadSlice returns the spatial image at one band as a dense row-major
	// array of length Rows*Cols.
	ReadSlice(band int) ([]float64, error)

	// ReadProfile returns the measurement-axis values at one spatial pixel
	// as an array of length Bands.
	ReadProfile(row, col int) ([]float64, error)
}

// NoDataProvider is an optional Source capability: sources whose format
// declares a no-data sentinel (e.g. an ENVI "data ignore value") expose it
// here so the cube can mask it without an explicit override.
type NoDataProvider interface {
	NoData() (value float64, ok bool)
}

// MemorySource is a Source over a fully materialized cube held in memory.
// Samples are stored band-interleaved-by-pixel: index (row*Cols+col)*Bands +
// band, matching the (row, col, band) orientation cubes are addressed in.
// Profile reads are therefore contiguous copies; slice reads are strided.
type MemorySource struct {
	data   []float64
	shape  Shape
	dtype  DType
	noData float64
	hasND  bool
}

// MemoryOption configures a MemorySource.
type MemoryOption func(*MemorySource)

// WithSourceNoData declares the no-data sentinel present in the data.
func WithSourceNoData(v float64) MemoryOption {
	return func(m *MemorySource) {
		m.noData = v
		m.hasND = true
	}
}

// WithSourceDType overrides the reported element type. The backing array is
// always float64; this records the precision of the original data.
func WithSourceDType(d DType) MemoryOption {
	return func(m *MemorySource) {
		m.dtype = d
	}
}

// NewMemorySource wraps a dense array as a cube source. The array is not
// copied; the caller hands over ownership. Fails with ErrInvalidShape if the
// shape is degenerate or disagrees with the array length.
func NewMemorySource(data []float64, shape Shape, opts ...MemoryOption) (*MemorySource, error) {
	if !shape.Valid() {
		return nil, fmt.Errorf("memory source %s: %w", shape, ErrInvalidShape)
	}
	if len(data) != shape.Len() {
		return nil, fmt.Errorf("memory source: %d samples for shape %s: %w",
			len(data), shape, ErrInvalidShape)
	}

	m := &MemorySource{
		data:  data,
		shape: shape,
		dtype: Float64,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Shape returns the cube dimensions.
func (m *MemorySource) Shape() Shape {
	return m.shape
}

// DType returns the element type of the backing data.
func (m *MemorySource) DType() DType {
	return m.dtype
}

// NoData returns the declared no-data sentinel, if any.
func (m *MemorySource) NoData() (float64, bool) {
	return m.noData, m.hasND
}

// ReadSlice extracts the spatial image at the given band.
func (m *MemorySource) ReadSlice(band int) ([]float64, error) {
	if band < 0 || band >= m.shape.Bands {
		return nil, fmt.Errorf("band %d of %d: %w", band, m.shape.Bands, ErrOutOfRange)
	}

	out := make([]float64, m.shape.SliceLen())
	for i := range out {
		out[i] = m.data[i*m.shape.Bands+band]
	}
	return out, nil
}

// ReadProfile extracts the measurement-axis values at the given pixel.
func (m *MemorySource) ReadProfile(row, col int) ([]float64, error) {
	if row < 0 || row >= m.shape.Rows || col < 0 || col >= m.shape.Cols {
		return nil, fmt.Errorf("pixel (%d, %d) in %s: %w", row, col, m.shape, ErrOutOfRange)
	}

	start := (row*m.shape.Cols + col) * m.shape.Bands
	out := make([]float64, m.shape.Bands)
	copy(out, m.data[start:start+m.shape.Bands])
	return out, nil
}
