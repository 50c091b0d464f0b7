// Package loader resolves heterogeneous inputs into viewer sessions. It
// dispatches file paths by extension to format handlers, mirrors the same
// entry points for in-memory arrays, and assembles cube, calibration and
// coordinator into a ready session.
//
// Two handler registries exist: one for cube data and one for
// axis-calibration data. Handlers for the proprietary spectral-cube formats
// (.spcub, .geospcub) are not built in; external format collaborators
// register them at startup. Unregistered extensions fail with
// cube.ErrUnsupportedFormat.
package loader

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"cubeview/pkg/calibration"
	"cubeview/pkg/cube"
	"cubeview/pkg/envi"
	"cubeview/pkg/viewer"
)

// CubeHandler opens a file as a cube source.
type CubeHandler func(path string) (cube.Source, error)

// CalibrationHandler opens a file as axis-calibration data.
type CalibrationHandler func(path string) (*calibration.Calibration, error)

// Registry maps lowercase file extensions to format handlers. Each viewer
// process builds its own registry; there is no package-level state.
type Registry struct {
	cubes        map[string]CubeHandler
	calibrations map[string]CalibrationHandler
}

// NewRegistry returns a registry with the built-in handlers: ENVI rasters
// (.bsq, .img) read lazily through a memory map, grayscale TIFF images
// (.tif) as single-band cubes, and calibration data from .wvl, .txt, .csv
// and ENVI .hdr files.
func NewRegistry() *Registry {
	r := &Registry{
		cubes:        map[string]CubeHandler{},
		calibrations: map[string]CalibrationHandler{},
	}

	r.RegisterCube(".bsq", openENVI)
	r.RegisterCube(".img", openENVI)
	r.RegisterCube(".tif", openTIFF)

	r.RegisterCalibration(".wvl", openDelimited)
	r.RegisterCalibration(".txt", openDelimited)
	r.RegisterCalibration(".csv", openCSV)
	r.RegisterCalibration(".hdr", openHeaderWavelengths)

	return r
}

// RegisterCube installs a cube handler for an extension, replacing any
// existing one. The extension must include the leading dot.
func (r *Registry) RegisterCube(ext string, h CubeHandler) {
	r.cubes[strings.ToLower(ext)] = h
}

// RegisterCalibration installs a calibration handler for an extension.
func (r *Registry) RegisterCalibration(ext string, h CalibrationHandler) {
	r.calibrations[strings.ToLower(ext)] = h
}

// OpenCube opens a cube data file with the handler registered for its
// extension.
func (r *Registry) OpenCube(path string) (cube.Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("cube data: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	h, ok := r.cubes[ext]
	if !ok {
		return nil, fmt.Errorf("cube data %s (extension %q): %w", path, ext, cube.ErrUnsupportedFormat)
	}
	return h(path)
}

// OpenCalibration opens an axis-calibration file with the handler
// registered for its extension.
func (r *Registry) OpenCalibration(path string) (*calibration.Calibration, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("calibration data: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	h, ok := r.calibrations[ext]
	if !ok {
		return nil, fmt.Errorf("calibration data %s (extension %q): %w", path, ext, cube.ErrUnsupportedFormat)
	}
	return h(path)
}

// CubeInput describes cube data as either a file path or an in-memory
// array. Exactly one of Path and Data must be set; Shape accompanies Data.
type CubeInput struct {
	Path  string
	Data  []float64
	Shape cube.Shape
}

// CalibrationInput describes axis-calibration data as either a file path or
// an in-memory label sequence.
type CalibrationInput struct {
	Path   string
	Labels []float64
	Unit   string
}

// Source resolves a cube input into a source.
func (r *Registry) Source(in CubeInput) (cube.Source, error) {
	switch {
	case in.Path != "" && in.Data != nil:
		return nil, fmt.Errorf("cube input has both path and data")
	case in.Path != "":
		return r.OpenCube(in.Path)
	case in.Data != nil:
		return cube.NewMemorySource(in.Data, in.Shape)
	}
	return nil, fmt.Errorf("empty cube input")
}

// Calibration resolves a calibration input. Non-monotonic label sequences
// are accepted with a logged warning; nearest-label search on such an axis
// may be ambiguous.
func (r *Registry) Calibration(in CalibrationInput) (*calibration.Calibration, error) {
	var cal *calibration.Calibration
	var err error
	switch {
	case in.Path != "" && in.Labels != nil:
		return nil, fmt.Errorf("calibration input has both path and labels")
	case in.Path != "":
		cal, err = r.OpenCalibration(in.Path)
	case in.Labels != nil:
		cal, err = calibration.New(in.Labels, calibration.WithUnit(in.Unit))
	default:
		return nil, fmt.Errorf("empty calibration input")
	}
	if err != nil {
		return nil, err
	}

	if !cal.Monotonic() {
		log.Printf("warning: calibration labels are not monotonic (%s)", cal)
	}
	return cal, nil
}

// Load assembles a viewer session: the cube input is resolved and a cube
// constructed over it, the optional calibration is bound, and a coordinator
// is returned with the selection at pixel (0, 0), band 0.
//
// Cube construction failures abort the load. A calibration whose length
// disagrees with the band count fails the bind with cube.ErrShapeMismatch;
// in that case the coordinator is still returned alongside the error and
// answers slices and profiles with plain index labels.
func (r *Registry) Load(cubeIn CubeInput, calIn *CalibrationInput, opts ...cube.Option) (*viewer.Coordinator, error) {
	src, err := r.Source(cubeIn)
	if err != nil {
		return nil, err
	}

	c, err := cube.New(src, opts...)
	if err != nil {
		closeSource(src)
		return nil, err
	}

	coord := viewer.NewCoordinator(c)
	if calIn != nil {
		cal, err := r.Calibration(*calIn)
		if err != nil {
			return coord, err
		}
		if err := c.BindCalibration(cal); err != nil {
			return coord, err
		}
	}
	return coord, nil
}

func closeSource(src cube.Source) {
	if closer, ok := src.(interface{ Close() error }); ok {
		closer.Close()
	}
}

func openENVI(path string) (cube.Source, error) {
	return envi.OpenBSQ(path)
}
