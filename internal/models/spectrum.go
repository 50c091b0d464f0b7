// Package models defines the plain records picked spectra are serialized
// as. The records carry no behavior; pkg/spectra converts to and from them
// for export.
package models

// SpectrumRecord is one picked single-pixel spectrum.
type SpectrumRecord struct {
	// Name is the display name, unique within a collection.
	Name string `yaml:"name"`

	// PixelRow and PixelCol locate the picked pixel.
	PixelRow int `yaml:"pixelRow"`
	PixelCol int `yaml:"pixelCol"`

	// Spectrum holds one value per band.
	Spectrum []float64 `yaml:"spectrum"`
}

// MeanSpectrumRecord is the averaged spectrum of a picked pixel region.
type MeanSpectrumRecord struct {
	// Name is the display name, unique within a collection.
	Name string `yaml:"name"`

	// Mean and Error hold the per-band mean and sample standard deviation
	// over the region.
	Mean  []float64 `yaml:"mean"`
	Error []float64 `yaml:"error"`

	// Pixels lists the (row, col) coordinates averaged over.
	Pixels [][2]int `yaml:"pixels"`

	// Total is the number of averaged pixels.
	Total int `yaml:"total"`
}

// CollectionRecord is a saved set of picked spectra sharing one
// measurement axis.
type CollectionRecord struct {
	// Wavelength holds the axis labels shared by every spectrum.
	Wavelength []float64 `yaml:"wavelength"`

	// Unit is the axis unit, empty if unknown.
	Unit string `yaml:"unit,omitempty"`

	// SavedAt is the save timestamp, RFC 3339.
	SavedAt string `yaml:"savedAt"`

	Spectra []SpectrumRecord     `yaml:"spectra"`
	Means   []MeanSpectrumRecord `yaml:"means"`
}
