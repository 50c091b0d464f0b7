// Package selection holds the single source of truth for the viewer's
// current spatial pixel and current band index. Coordinates are clamped
// before they are stored, so no invalid selection is ever observable, and
// every effective change increments a revision counter that consumers can
// poll to detect staleness without subscribing to push notifications.
package selection

import "cubeview/pkg/cube"

// Snapshot is a read-only copy of the selection at one revision.
type Snapshot struct {
	Row, Col int
	Band     int
	Revision uint64
}

// Listener receives a snapshot after every effective selection change.
type Listener func(Snapshot)

// State tracks the current pixel and band for one active cube. One State
// exists per viewer session; it is rebound, not recreated, when a new cube
// replaces the current one. Not safe for concurrent use: all selection
// updates happen synchronously on the session's event dispatch.
type State struct {
	rows, cols, bands int

	row, col int
	band     int
	rev      uint64

	listeners []Listener
}

// NewState creates a selection over the given shape, positioned at pixel
// (0, 0) and band 0. The shape is assumed already validated by the cube.
func NewState(shape cube.Shape) *State {
	return &State{rows: shape.Rows, cols: shape.Cols, bands: shape.Bands}
}

// Rebind resets the selection for a replacement cube: bounds are taken from
// the new shape, the selection returns to pixel (0, 0) and band 0, and the
// revision advances. Subscribers are notified once.
func (s *State) Rebind(shape cube.Shape) {
	s.rows, s.cols, s.bands = shape.Rows, shape.Cols, shape.Bands
	s.row, s.col, s.band = 0, 0, 0
	s.rev++
	s.notify()
}

// SetPixel selects a spatial pixel. Out-of-range coordinates are clamped to
// the nearest valid pixel, never stored invalid. Returns whether the
// effective coordinate changed; redundant requests do not advance the
// revision or notify subscribers.
func (s *State) SetPixel(row, col int) bool {
	row, col = s.ClampPixel(row, col)
	if row == s.row && col == s.col {
		return false
	}

	s.row, s.col = row, col
	s.rev++
	s.notify()
	return true
}

// SetBand selects a band with the same clamping and notification discipline
// as SetPixel.
func (s *State) SetBand(band int) bool {
	band = s.ClampBand(band)
	if band == s.band {
		return false
	}

	s.band = band
	s.rev++
	s.notify()
	return true
}

// ClampPixel maps arbitrary coordinates onto the nearest valid pixel.
func (s *State) ClampPixel(row, col int) (int, int) {
	return clamp(row, s.rows), clamp(col, s.cols)
}

// ClampBand maps an arbitrary index onto the nearest valid band.
func (s *State) ClampBand(band int) int {
	return clamp(band, s.bands)
}

// Snapshot returns the current selection and revision.
func (s *State) Snapshot() Snapshot {
	return Snapshot{Row: s.row, Col: s.col, Band: s.band, Revision: s.rev}
}

// Subscribe registers a listener for effective selection changes.
func (s *State) Subscribe(l Listener) {
	s.listeners = append(s.listeners, l)
}

func (s *State) notify() {
	snap := s.Snapshot()
	for _, l := range s.listeners {
		l(snap)
	}
}

func clamp(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}
