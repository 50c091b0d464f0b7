// Package spectra collects the profiles a user picks while inspecting a
// cube: single-pixel spectra and averaged region spectra, named in pick
// order. Collections can be exported to YAML, HDF5 and an interactive HTML
// chart.
package spectra

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"cubeview/pkg/cube"
)

// Spectrum is one picked single-pixel spectrum.
type Spectrum struct {
	Name     string
	Row, Col int
	Values   []float64
}

// MeanSpectrum is the averaged spectrum of a picked region, with the
// per-band sample standard deviation as error estimate.
type MeanSpectrum struct {
	Name   string
	Pixels [][2]int
	Mean   []float64
	Error  []float64
}

// Collection accumulates picked spectra against one measurement axis. One
// collection exists per viewer session; clearing it does not reset the
// running pick counters, so names stay unique for the session's lifetime.
type Collection struct {
	labels []float64
	unit   string

	singles []Spectrum
	means   []MeanSpectrum

	singleCount int
	meanCount   int
}

// NewCollection creates a collection for an axis. The label slice is
// retained, not copied; callers pass the cube's label pairing.
func NewCollection(labels []float64, unit string) *Collection {
	return &Collection{labels: labels, unit: unit}
}

// Labels returns the measurement-axis labels.
func (c *Collection) Labels() []float64 {
	return c.labels
}

// Singles returns the picked single-pixel spectra in pick order.
func (c *Collection) Singles() []Spectrum {
	return c.singles
}

// Means returns the picked region spectra in pick order.
func (c *Collection) Means() []MeanSpectrum {
	return c.means
}

// Len returns the total number of collected spectra.
func (c *Collection) Len() int {
	return len(c.singles) + len(c.means)
}

// AddPixel extracts the profile at one pixel and records it under the next
// SPECTRUM_NN name.
func (c *Collection) AddPixel(cb *cube.Cube, row, col int) (Spectrum, error) {
	p, err := cb.GetProfile(row, col)
	if err != nil {
		return Spectrum{}, err
	}

	c.singleCount++
	s := Spectrum{
		Name:   fmt.Sprintf("SPECTRUM_%02d", c.singleCount),
		Row:    row,
		Col:    col,
		Values: append([]float64(nil), p.Values...),
	}
	c.singles = append(c.singles, s)
	return s, nil
}

// AddRegion averages the profiles of a pixel set and records the result
// under the next AREA_NN name. Missing samples are excluded per band; a
// band missing in every pixel stays NaN. The error estimate is the sample
// standard deviation (NaN where fewer than two samples contribute).
func (c *Collection) AddRegion(cb *cube.Cube, pixels [][2]int) (MeanSpectrum, error) {
	if len(pixels) == 0 {
		return MeanSpectrum{}, fmt.Errorf("empty pixel region")
	}

	bands := cb.Shape().Bands
	perBand := make([][]float64, bands)
	for _, px := range pixels {
		p, err := cb.GetProfile(px[0], px[1])
		if err != nil {
			return MeanSpectrum{}, err
		}
		for b, v := range p.Values {
			if !math.IsNaN(v) {
				perBand[b] = append(perBand[b], v)
			}
		}
	}

	mean := make([]float64, bands)
	errs := make([]float64, bands)
	for b, vals := range perBand {
		switch len(vals) {
		case 0:
			mean[b], errs[b] = math.NaN(), math.NaN()
		case 1:
			mean[b], errs[b] = vals[0], math.NaN()
		default:
			mean[b] = stat.Mean(vals, nil)
			errs[b] = stat.StdDev(vals, nil)
		}
	}

	c.meanCount++
	m := MeanSpectrum{
		Name:   fmt.Sprintf("AREA_%02d", c.meanCount),
		Pixels: append([][2]int(nil), pixels...),
		Mean:   mean,
		Error:  errs,
	}
	c.means = append(c.means, m)
	return m, nil
}

// Rename changes a spectrum's display name. Fails if the old name is
// unknown or the new name is already taken.
func (c *Collection) Rename(oldName, newName string) error {
	if c.find(newName) {
		return fmt.Errorf("spectrum %q already exists", newName)
	}
	for i := range c.singles {
		if c.singles[i].Name == oldName {
			c.singles[i].Name = newName
			return nil
		}
	}
	for i := range c.means {
		if c.means[i].Name == oldName {
			c.means[i].Name = newName
			return nil
		}
	}
	return fmt.Errorf("no spectrum named %q", oldName)
}

// Remove deletes a spectrum by name.
func (c *Collection) Remove(name string) error {
	for i := range c.singles {
		if c.singles[i].Name == name {
			c.singles = append(c.singles[:i], c.singles[i+1:]...)
			return nil
		}
	}
	for i := range c.means {
		if c.means[i].Name == name {
			c.means = append(c.means[:i], c.means[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("no spectrum named %q", name)
}

// Clear drops every collected spectrum. Pick counters keep running.
func (c *Collection) Clear() {
	c.singles = nil
	c.means = nil
}

func (c *Collection) find(name string) bool {
	for _, s := range c.singles {
		if s.Name == name {
			return true
		}
	}
	for _, m := range c.means {
		if m.Name == name {
			return true
		}
	}
	return false
}
