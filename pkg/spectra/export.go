package spectra

import (
	"fmt"
	"os"
	"time"

	"github.com/robert-malhotra/go-hdf5/hdf5"
	"gopkg.in/yaml.v3"

	"cubeview/internal/models"
)

// Record converts the collection into its serializable form.
func (c *Collection) Record() models.CollectionRecord {
	rec := models.CollectionRecord{
		Wavelength: c.labels,
		Unit:       c.unit,
		SavedAt:    time.Now().Format(time.RFC3339),
	}
	for _, s := range c.singles {
		rec.Spectra = append(rec.Spectra, models.SpectrumRecord{
			Name:     s.Name,
			PixelRow: s.Row,
			PixelCol: s.Col,
			Spectrum: s.Values,
		})
	}
	for _, m := range c.means {
		rec.Means = append(rec.Means, models.MeanSpectrumRecord{
			Name:   m.Name,
			Mean:   m.Mean,
			Error:  m.Error,
			Pixels: m.Pixels,
			Total:  len(m.Pixels),
		})
	}
	return rec
}

// SaveYAML writes the collection as a YAML document.
func (c *Collection) SaveYAML(path string) error {
	data, err := yaml.Marshal(c.Record())
	if err != nil {
		return fmt.Errorf("marshaling spectra: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// SaveHDF5 appends the collection to an HDF5 file under a timestamped
// group: one dataset per spectrum, with _error and _coords companions for
// region means, plus the shared wavelength axis. An existing file gains a
// new save group; a missing one is created.
func (c *Collection) SaveHDF5(path string) error {
	var f *hdf5.File
	var err error
	if _, statErr := os.Stat(path); statErr == nil {
		f, err = hdf5.OpenReadWrite(path)
	} else {
		f, err = hdf5.Create(path)
	}
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	g, err := f.Root().CreateGroup("save_" + time.Now().Format("01022006T150405"))
	if err != nil {
		return fmt.Errorf("creating save group: %w", err)
	}

	if _, err := g.CreateDataset("wavelength", c.labels); err != nil {
		return fmt.Errorf("writing wavelength axis: %w", err)
	}

	for _, s := range c.singles {
		_, err := g.CreateDataset(s.Name, s.Values,
			hdf5.WithAttribute("pixel_row", int32(s.Row)),
			hdf5.WithAttribute("pixel_col", int32(s.Col)),
		)
		if err != nil {
			return fmt.Errorf("writing %s: %w", s.Name, err)
		}
	}

	for _, m := range c.means {
		if _, err := g.CreateDataset(m.Name, m.Mean); err != nil {
			return fmt.Errorf("writing %s: %w", m.Name, err)
		}
		if _, err := g.CreateDataset(m.Name+"_error", m.Error); err != nil {
			return fmt.Errorf("writing %s_error: %w", m.Name, err)
		}
		coords := make([]int32, 0, 2*len(m.Pixels))
		for _, px := range m.Pixels {
			coords = append(coords, int32(px[0]), int32(px[1]))
		}
		if _, err := g.CreateDataset(m.Name+"_coords", coords); err != nil {
			return fmt.Errorf("writing %s_coords: %w", m.Name, err)
		}
	}

	return nil
}
