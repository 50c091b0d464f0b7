// Package envi reads ENVI-style raster datasets: a plain-text header file
// describing dimensions, element type and band wavelengths, next to a raw
// binary data file. The data file is memory-mapped and read band by band,
// so large cubes are never fully materialized.
package envi

import (
	"encoding/binary"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"cubeview/pkg/cube"
)

// Header holds the fields of an ENVI .hdr file that the viewer needs.
type Header struct {
	// Samples, Lines, Bands are the cube dimensions: samples per line
	// (columns), lines (rows), and spectral bands.
	Samples, Lines, Bands int

	// Interleave is the binary layout of the data file: "bsq", "bil" or
	// "bip".
	Interleave string

	// DataType is the element type of the raw samples.
	DataType cube.DType

	// ByteOrder is the sample byte order of the data file.
	ByteOrder binary.ByteOrder

	// HeaderOffset is the number of bytes to skip at the start of the data
	// file.
	HeaderOffset int

	// Wavelengths holds one wavelength per band, nil if the header has no
	// wavelength field.
	Wavelengths []float64

	// WavelengthUnit is the declared wavelength unit, if any.
	WavelengthUnit string

	// DataIgnoreValue is the declared no-data sentinel, nil if none.
	DataIgnoreValue *float64
}

// Shape returns the cube shape described by the header.
func (h *Header) Shape() cube.Shape {
	return cube.Shape{Rows: h.Lines, Cols: h.Samples, Bands: h.Bands}
}

// ENVI numeric data type codes.
var dataTypes = map[int]cube.DType{
	1:  cube.Uint8,
	2:  cube.Int16,
	3:  cube.Int32,
	4:  cube.Float32,
	5:  cube.Float64,
	12: cube.Uint16,
}

var blockRe = regexp.MustCompile(`(?ms)^\s*([a-z][a-z0-9 ]*?)\s*=\s*\{([^}]*)\}`)
var scalarRe = regexp.MustCompile(`(?m)^\s*([a-z][a-z0-9 ]*?)\s*=\s*([^{\r\n]+)$`)

// ParseHeader reads and parses an ENVI header file. Files that cannot be
// decoded fail with cube.ErrCorruptFile.
func ParseHeader(path string) (*Header, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading header %s: %w", path, err)
	}
	return parseHeader(path, string(raw))
}

func parseHeader(path, contents string) (*Header, error) {
	lower := strings.ToLower(contents)

	blocks := map[string]string{}
	for _, m := range blockRe.FindAllStringSubmatch(lower, -1) {
		blocks[strings.TrimSpace(m[1])] = m[2]
	}
	// Blank out brace blocks so their inner lines are not picked up as
	// scalar fields.
	stripped := blockRe.ReplaceAllString(lower, "")

	fields := map[string]string{}
	for _, m := range scalarRe.FindAllStringSubmatch(stripped, -1) {
		fields[strings.TrimSpace(m[1])] = strings.TrimSpace(m[2])
	}

	h := &Header{Interleave: "bsq", ByteOrder: binary.LittleEndian}

	var err error
	if h.Samples, err = requireInt(fields, "samples"); err != nil {
		return nil, corrupt(path, err)
	}
	if h.Lines, err = requireInt(fields, "lines"); err != nil {
		return nil, corrupt(path, err)
	}
	if h.Bands, err = requireInt(fields, "bands"); err != nil {
		return nil, corrupt(path, err)
	}

	code, err := requireInt(fields, "data type")
	if err != nil {
		return nil, corrupt(path, err)
	}
	dt, ok := dataTypes[code]
	if !ok {
		return nil, corrupt(path, fmt.Errorf("data type code %d not supported", code))
	}
	h.DataType = dt

	if v, ok := fields["interleave"]; ok {
		h.Interleave = v
	}
	if v, ok := fields["byte order"]; ok && v == "1" {
		h.ByteOrder = binary.BigEndian
	}
	if v, ok := fields["header offset"]; ok {
		if h.HeaderOffset, err = strconv.Atoi(v); err != nil {
			return nil, corrupt(path, fmt.Errorf("header offset %q", v))
		}
	}
	if v, ok := fields["wavelength units"]; ok {
		h.WavelengthUnit = v
	}
	if v, ok := fields["data ignore value"]; ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, corrupt(path, fmt.Errorf("data ignore value %q", v))
		}
		h.DataIgnoreValue = &f
	}

	if block, ok := blocks["wavelength"]; ok {
		h.Wavelengths, err = parseFloatList(block)
		if err != nil {
			return nil, corrupt(path, err)
		}
		if len(h.Wavelengths) != h.Bands {
			return nil, fmt.Errorf("%s: %d wavelengths for %d bands: %w",
				path, len(h.Wavelengths), h.Bands, cube.ErrShapeMismatch)
		}
	}

	return h, nil
}

// Wavelengths extracts the wavelength field from a header file, for use as
// axis-calibration data on its own.
func Wavelengths(path string) ([]float64, string, error) {
	h, err := ParseHeader(path)
	if err != nil {
		return nil, "", err
	}
	if h.Wavelengths == nil {
		return nil, "", fmt.Errorf("%s: no wavelength field: %w", path, cube.ErrCorruptFile)
	}
	return h.Wavelengths, h.WavelengthUnit, nil
}

func requireInt(fields map[string]string, key string) (int, error) {
	v, ok := fields[key]
	if !ok {
		return 0, fmt.Errorf("missing %q field", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not an integer", key, v)
	}
	return n, nil
}

func parseFloatList(block string) ([]float64, error) {
	parts := strings.Split(block, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("value %q is not numeric", p)
		}
		out = append(out, f)
	}
	return out, nil
}

func corrupt(path string, err error) error {
	return fmt.Errorf("%s: %v: %w", path, err, cube.ErrCorruptFile)
}
