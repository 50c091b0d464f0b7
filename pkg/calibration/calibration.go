// Package calibration represents the ordered set of labels for a cube's
// measurement axis, such as the wavelength assigned to each spectral band or
// the epoch assigned to each time step. A calibration is validated
// independently of any cube data and is immutable once constructed.
package calibration

import (
	"errors"
	"fmt"
	"math"
)

// ErrEmpty indicates a calibration with no labels.
var ErrEmpty = errors.New("calibration: empty label sequence")

// Calibration holds one numeric label per measurement-axis index, plus an
// optional unit string (e.g. "nm" or "days"). Labels are copied on
// construction and never mutated afterwards.
type Calibration struct {
	labels []float64
	unit   string
}

// Option configures a Calibration during construction.
type Option func(*Calibration)

// WithUnit records the unit the labels are expressed in.
func WithUnit(unit string) Option {
	return func(c *Calibration) {
		c.unit = unit
	}
}

// New builds a calibration from a label sequence. The sequence is copied.
// Fails with ErrEmpty if no labels are given.
func New(labels []float64, opts ...Option) (*Calibration, error) {
	if len(labels) == 0 {
		return nil, ErrEmpty
	}

	c := &Calibration{labels: make([]float64, len(labels))}
	copy(c.labels, labels)
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Indexed builds a placeholder calibration whose labels are the band indices
// 0..n-1. Used when a cube has no axis-calibration data bound.
func Indexed(n int) (*Calibration, error) {
	if n <= 0 {
		return nil, ErrEmpty
	}

	labels := make([]float64, n)
	for i := range labels {
		labels[i] = float64(i)
	}
	return &Calibration{labels: labels}, nil
}

// Len returns the number of labels.
func (c *Calibration) Len() int {
	return len(c.labels)
}

// Unit returns the unit string, empty if none was set.
func (c *Calibration) Unit() string {
	return c.unit
}

// Label returns the label at index i. Panics if i is out of range, matching
// slice indexing semantics; callers validate indices against the bound cube.
func (c *Calibration) Label(i int) float64 {
	return c.labels[i]
}

// Labels returns a copy of the label sequence.
func (c *Calibration) Labels() []float64 {
	out := make([]float64, len(c.labels))
	copy(out, c.labels)
	return out
}

// Monotonic reports whether the labels are strictly increasing or strictly
// decreasing. Non-monotonic numeric labels are a warning condition, not a
// hard failure: nearest-label search still works but may be ambiguous.
func (c *Calibration) Monotonic() bool {
	if len(c.labels) < 2 {
		return true
	}

	increasing := c.labels[1] > c.labels[0]
	for i := 1; i < len(c.labels); i++ {
		if increasing && c.labels[i] <= c.labels[i-1] {
			return false
		}
		if !increasing && c.labels[i] >= c.labels[i-1] {
			return false
		}
	}
	return true
}

// FindNearest returns the index and label closest to the given value. Used
// to translate a position on a labelled axis (e.g. a wavelength under the
// cursor) back into a band index.
func (c *Calibration) FindNearest(value float64) (int, float64) {
	best := 0
	bestDist := math.Abs(c.labels[0] - value)
	for i := 1; i < len(c.labels); i++ {
		if d := math.Abs(c.labels[i] - value); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, c.labels[best]
}

func (c *Calibration) String() string {
	if c.unit == "" {
		return fmt.Sprintf("calibration[%d]", len(c.labels))
	}
	return fmt.Sprintf("calibration[%d %s]", len(c.labels), c.unit)
}
