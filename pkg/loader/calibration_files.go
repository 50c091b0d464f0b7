package loader

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"cubeview/pkg/calibration"
	"cubeview/pkg/cube"
	"cubeview/pkg/envi"
)

// openDelimited reads a plain-text label file (.wvl, .txt): numeric values
// separated by commas, whitespace or newlines. A trailing separator is
// tolerated.
func openDelimited(path string) (*calibration.Calibration, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	parts := strings.FieldsFunc(string(raw), func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(parts) == 0 {
		return nil, fmt.Errorf("%s: no values: %w", path, cube.ErrCorruptFile)
	}

	labels := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: value %q is not numeric: %w", path, p, cube.ErrCorruptFile)
		}
		labels = append(labels, f)
	}
	return calibration.New(labels)
}

// openCSV reads a delimited file with one header row, taking labels from
// the column named "wavelength" (case-insensitive).
func openCSV(path string) (*calibration.Calibration, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", path, err, cube.ErrCorruptFile)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s: need a header row and at least one value: %w", path, cube.ErrCorruptFile)
	}

	colIdx := -1
	for i, name := range records[0] {
		if strings.EqualFold(strings.TrimSpace(name), "wavelength") {
			colIdx = i
			break
		}
	}
	if colIdx < 0 {
		return nil, fmt.Errorf("%s: no \"wavelength\" column: %w", path, cube.ErrCorruptFile)
	}

	labels := make([]float64, 0, len(records)-1)
	for _, rec := range records[1:] {
		if colIdx >= len(rec) {
			return nil, fmt.Errorf("%s: short row: %w", path, cube.ErrCorruptFile)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(rec[colIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("%s: value %q is not numeric: %w", path, rec[colIdx], cube.ErrCorruptFile)
		}
		labels = append(labels, f)
	}
	return calibration.New(labels)
}

// openHeaderWavelengths reads the wavelength field of an ENVI header file.
func openHeaderWavelengths(path string) (*calibration.Calibration, error) {
	labels, unit, err := envi.Wavelengths(path)
	if err != nil {
		return nil, err
	}
	return calibration.New(labels, calibration.WithUnit(unit))
}
