package loader

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cubeview/pkg/cube"
)

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestOpenCalibrationDelimited(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		contents string
		want     []float64
	}{
		{"txt commas", "w.txt", "450.0,550.0,650.0", []float64{450, 550, 650}},
		{"txt trailing separator", "w.txt", "450.0,550.0, ", []float64{450, 550}},
		{"wvl lines", "w.wvl", "450\n550\n650\n", []float64{450, 550, 650}},
		{"wvl mixed separators", "w.wvl", "450, 550\t650", []float64{450, 550, 650}},
	}

	r := NewRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cal, err := r.OpenCalibration(writeFile(t, tt.filename, tt.contents))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cal.Labels())
		})
	}
}

func TestOpenCalibrationCSV(t *testing.T) {
	r := NewRegistry()

	cal, err := r.OpenCalibration(writeFile(t, "w.csv", "band,Wavelength,fwhm\n1,450.5,2\n2,550.5,2\n"))
	require.NoError(t, err)
	assert.Equal(t, []float64{450.5, 550.5}, cal.Labels())

	// Missing wavelength column
	_, err = r.OpenCalibration(writeFile(t, "w.csv", "a,b\n1,2\n"))
	assert.ErrorIs(t, err, cube.ErrCorruptFile)

	// Header only
	_, err = r.OpenCalibration(writeFile(t, "w.csv", "wavelength\n"))
	assert.ErrorIs(t, err, cube.ErrCorruptFile)
}

func TestOpenCalibrationHeader(t *testing.T) {
	r := NewRegistry()
	hdr := "samples = 2\nlines = 2\nbands = 3\ndata type = 4\nwavelength units = nm\nwavelength = {450, 550, 650}\n"
	cal, err := r.OpenCalibration(writeFile(t, "w.hdr", hdr))
	require.NoError(t, err)
	assert.Equal(t, []float64{450, 550, 650}, cal.Labels())
	assert.Equal(t, "nm", cal.Unit())
}

func TestOpenUnsupportedExtension(t *testing.T) {
	r := NewRegistry()

	_, err := r.OpenCube(writeFile(t, "cube.spcub", "opaque"))
	assert.ErrorIs(t, err, cube.ErrUnsupportedFormat)

	_, err = r.OpenCalibration(writeFile(t, "w.bin", "opaque"))
	assert.ErrorIs(t, err, cube.ErrUnsupportedFormat)
}

func TestOpenMissingFile(t *testing.T) {
	r := NewRegistry()
	_, err := r.OpenCube(filepath.Join(t.TempDir(), "absent.bsq"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRegisterCubeHandler(t *testing.T) {
	r := NewRegistry()

	// An external collaborator registers the proprietary format
	r.RegisterCube(".spcub", func(path string) (cube.Source, error) {
		return cube.NewMemorySource(make([]float64, 8), cube.Shape{Rows: 2, Cols: 2, Bands: 2})
	})

	src, err := r.OpenCube(writeFile(t, "cube.spcub", "opaque"))
	require.NoError(t, err)
	assert.Equal(t, cube.Shape{Rows: 2, Cols: 2, Bands: 2}, src.Shape())
}

func writeBSQ(t *testing.T, rows, cols, bands int, extra string) string {
	t.Helper()

	buf := make([]byte, rows*cols*bands*4)
	for i := 0; i < rows*cols*bands; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(float32(i)))
	}

	path := filepath.Join(t.TempDir(), "cube.bsq")
	require.NoError(t, os.WriteFile(path, buf, 0644))
	hdr := fmt.Sprintf("samples = %d\nlines = %d\nbands = %d\ndata type = 4\ninterleave = bsq\n%s",
		cols, rows, bands, extra)
	require.NoError(t, os.WriteFile(path+".hdr", []byte(hdr), 0644))
	return path
}

func TestLoadFromFiles(t *testing.T) {
	r := NewRegistry()
	path := writeBSQ(t, 4, 5, 3, "")
	wvl := writeFile(t, "w.txt", "450,550,650")

	coord, err := r.Load(CubeInput{Path: path}, &CalibrationInput{Path: wvl})
	require.NoError(t, err)
	defer coord.Close()

	c := coord.Cube()
	assert.Equal(t, cube.Shape{Rows: 4, Cols: 5, Bands: 3}, c.Shape())
	require.NotNil(t, c.Calibration())
	assert.Equal(t, 3, c.Calibration().Len())

	view, err := coord.CurrentView()
	require.NoError(t, err)
	assert.Equal(t, []float64{450, 550, 650}, view.Profile.Labels)
}

func TestLoadFromMemory(t *testing.T) {
	r := NewRegistry()
	shape := cube.Shape{Rows: 2, Cols: 3, Bands: 4}
	data := make([]float64, shape.Len())

	coord, err := r.Load(
		CubeInput{Data: data, Shape: shape},
		&CalibrationInput{Labels: []float64{1, 2, 3, 4}, Unit: "days"},
	)
	require.NoError(t, err)
	defer coord.Close()

	require.NotNil(t, coord.Cube().Calibration())
	assert.Equal(t, "days", coord.Cube().Calibration().Unit())
}

func TestLoadCalibrationMismatchKeepsCube(t *testing.T) {
	r := NewRegistry()
	shape := cube.Shape{Rows: 4, Cols: 5, Bands: 10}

	// Length 8 against a 10-band cube: the bind fails but the session is
	// still usable with plain index labels
	coord, err := r.Load(
		CubeInput{Data: make([]float64, shape.Len()), Shape: shape},
		&CalibrationInput{Labels: make([]float64, 8)},
	)
	assert.ErrorIs(t, err, cube.ErrShapeMismatch)
	require.NotNil(t, coord)
	defer coord.Close()

	assert.Nil(t, coord.Cube().Calibration())
	view, err := coord.CurrentView()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, view.Profile.Labels)
}

func TestLoadInvalidInputs(t *testing.T) {
	r := NewRegistry()

	_, err := r.Source(CubeInput{})
	assert.Error(t, err)

	_, err = r.Source(CubeInput{Path: "x.bsq", Data: []float64{1}})
	assert.Error(t, err)

	_, err = r.Calibration(CalibrationInput{})
	assert.Error(t, err)

	// Degenerate in-memory shape propagates ErrInvalidShape
	_, err = r.Load(CubeInput{Data: []float64{}, Shape: cube.Shape{}}, nil)
	assert.ErrorIs(t, err, cube.ErrInvalidShape)
}

func TestLoadWithNoDataOption(t *testing.T) {
	r := NewRegistry()
	shape := cube.Shape{Rows: 2, Cols: 2, Bands: 2}
	data := []float64{-999, 1, -999, 1, -999, 1, -999, 1}

	coord, err := r.Load(CubeInput{Data: data, Shape: shape}, nil, cube.WithNoData(-999))
	require.NoError(t, err)
	defer coord.Close()

	view, err := coord.CurrentView()
	require.NoError(t, err)
	assert.True(t, math.IsNaN(view.Profile.Values[0]))
	assert.Equal(t, 1.0, view.Profile.Values[1])
}

func TestCalibrationMonotonicWarning(t *testing.T) {
	r := NewRegistry()

	// Non-monotonic labels are accepted, not rejected
	cal, err := r.Calibration(CalibrationInput{Labels: []float64{1, 3, 2}})
	require.NoError(t, err)
	assert.False(t, cal.Monotonic())
}

func TestLoadBSQEndToEnd(t *testing.T) {
	r := NewRegistry()
	path := writeBSQ(t, 2, 2, 2, "data ignore value = 0\nwavelength = {700, 710}\n")

	coord, err := r.Load(CubeInput{Path: path}, nil)
	require.NoError(t, err)
	defer coord.Close()

	// The header sentinel masks sample 0 (value 0 at band 0, pixel (0,0))
	view, err := coord.CurrentView()
	require.NoError(t, err)
	assert.True(t, math.IsNaN(view.Profile.Values[0]))
	assert.False(t, math.IsNaN(view.Profile.Values[1]))
}
