package envi

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strings"

	"golang.org/x/exp/mmap"

	"cubeview/pkg/cube"
)

// BSQSource is a lazy cube.Source over a band-sequential ENVI raster. The
// data file is memory-mapped, so a slice read touches exactly one band's
// bytes and a profile read touches one sample per band; the cube is never
// materialized in full.
type BSQSource struct {
	r   *mmap.ReaderAt
	hdr *Header
}

// OpenBSQ opens a band-sequential raster together with its header. The
// header is looked up next to the data file, first as path+".hdr" and then
// with the extension replaced by ".hdr".
func OpenBSQ(path string) (*BSQSource, error) {
	hdrPath, err := findHeader(path)
	if err != nil {
		return nil, err
	}

	hdr, err := ParseHeader(hdrPath)
	if err != nil {
		return nil, err
	}
	if il := strings.ToLower(hdr.Interleave); il != "bsq" {
		return nil, fmt.Errorf("%s: interleave %q (only bsq is supported): %w",
			path, hdr.Interleave, cube.ErrUnsupportedFormat)
	}
	if !hdr.Shape().Valid() {
		return nil, fmt.Errorf("%s: dimensions %s: %w", path, hdr.Shape(), cube.ErrInvalidShape)
	}

	r, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mapping %s: %w", path, err)
	}

	need := hdr.HeaderOffset + hdr.Shape().Len()*hdr.DataType.Size()
	if r.Len() < need {
		r.Close()
		return nil, fmt.Errorf("%s: %d bytes, need %d for %s: %w",
			path, r.Len(), need, hdr.Shape(), cube.ErrCorruptFile)
	}

	return &BSQSource{r: r, hdr: hdr}, nil
}

func findHeader(path string) (string, error) {
	candidates := []string{path + ".hdr"}
	if i := strings.LastIndex(path, "."); i > 0 {
		candidates = append(candidates, path[:i]+".hdr")
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return "", fmt.Errorf("no header file found for %s: %w", path, cube.ErrCorruptFile)
}

// Header returns the parsed ENVI header.
func (s *BSQSource) Header() *Header {
	return s.hdr
}

// Shape returns the cube dimensions.
func (s *BSQSource) Shape() cube.Shape {
	return s.hdr.Shape()
}

// DType returns the stored element type.
func (s *BSQSource) DType() cube.DType {
	return s.hdr.DataType
}

// NoData returns the header's data ignore value, if declared.
func (s *BSQSource) NoData() (float64, bool) {
	if s.hdr.DataIgnoreValue == nil {
		return 0, false
	}
	return *s.hdr.DataIgnoreValue, true
}

// ReadSlice reads one band's spatial image with a single contiguous read.
func (s *BSQSource) ReadSlice(band int) ([]float64, error) {
	shape := s.Shape()
	if band < 0 || band >= shape.Bands {
		return nil, fmt.Errorf("band %d of %d: %w", band, shape.Bands, cube.ErrOutOfRange)
	}

	size := s.hdr.DataType.Size()
	buf := make([]byte, shape.SliceLen()*size)
	off := int64(s.hdr.HeaderOffset) + int64(band)*int64(len(buf))
	if _, err := s.r.ReadAt(buf, off); err != nil {
		return nil, fmt.Errorf("band %d read failed: %v: %w", band, err, cube.ErrSourceUnavailable)
	}

	out := make([]float64, shape.SliceLen())
	decodeSamples(buf, s.hdr.DataType, s.hdr.ByteOrder, out)
	return out, nil
}

// ReadProfile reads one sample per band at the given pixel. Cost is one
// page-sized touch per band, bounded by the band count.
func (s *BSQSource) ReadProfile(row, col int) ([]float64, error) {
	shape := s.Shape()
	if row < 0 || row >= shape.Rows || col < 0 || col >= shape.Cols {
		return nil, fmt.Errorf("pixel (%d, %d) in %s: %w", row, col, shape, cube.ErrOutOfRange)
	}

	size := s.hdr.DataType.Size()
	buf := make([]byte, size)
	one := make([]float64, 1)
	out := make([]float64, shape.Bands)
	for band := 0; band < shape.Bands; band++ {
		idx := (band*shape.Rows+row)*shape.Cols + col
		off := int64(s.hdr.HeaderOffset) + int64(idx)*int64(size)
		if _, err := s.r.ReadAt(buf, off); err != nil {
			return nil, fmt.Errorf("pixel (%d, %d) band %d read failed: %v: %w",
				row, col, band, err, cube.ErrSourceUnavailable)
		}
		decodeSamples(buf, s.hdr.DataType, s.hdr.ByteOrder, one)
		out[band] = one[0]
	}
	return out, nil
}

// Close unmaps the data file.
func (s *BSQSource) Close() error {
	return s.r.Close()
}

// decodeSamples converts raw sample bytes into float64 values. len(buf)
// must equal len(out) times the sample size.
func decodeSamples(buf []byte, dt cube.DType, order binary.ByteOrder, out []float64) {
	size := dt.Size()
	for i := range out {
		b := buf[i*size:]
		switch dt {
		case cube.Float64:
			out[i] = math.Float64frombits(order.Uint64(b))
		case cube.Float32:
			out[i] = float64(math.Float32frombits(order.Uint32(b)))
		case cube.Int32:
			out[i] = float64(int32(order.Uint32(b)))
		case cube.Int16:
			out[i] = float64(int16(order.Uint16(b)))
		case cube.Uint16:
			out[i] = float64(order.Uint16(b))
		case cube.Uint8:
			out[i] = float64(b[0])
		}
	}
}
