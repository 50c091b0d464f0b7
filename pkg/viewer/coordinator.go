// Package viewer orchestrates selection transitions and data extraction for
// one open viewer session. The presentation layer forwards raw interaction
// events (pixel click, band scrub); the coordinator validates and clamps
// coordinates, updates the selection, pulls the corresponding slice and
// profile from the cube, and hands plain arrays back for redraw. No
// rendering concerns leak in.
package viewer

import (
	"errors"

	"gonum.org/v1/gonum/mat"

	"cubeview/pkg/cube"
	"cubeview/pkg/selection"
)

// ErrNoCube indicates an operation on a coordinator with no cube loaded.
var ErrNoCube = errors.New("viewer: no cube loaded")

// View pairs the slice at the selected band with the profile at the
// selected pixel, for initial render and programmatic refresh.
type View struct {
	Slice   *mat.Dense
	Profile *cube.Profile
	Band    int
	Row     int
	Col     int
}

// Coordinator holds the active cube and selection state for one viewer
// session. All state is reachable from the instance; there is no process
// wide selection. Not safe for concurrent use: slice and profile reads may
// block on I/O for lazily backed cubes, bounded by single-band and
// single-pixel reads.
type Coordinator struct {
	cube *cube.Cube
	sel  *selection.State
}

// NewCoordinator creates a coordinator with the given cube loaded and the
// selection at pixel (0, 0), band 0.
func NewCoordinator(c *cube.Cube) *Coordinator {
	return &Coordinator{cube: c, sel: selection.NewState(c.Shape())}
}

// Load replaces the current cube. The previous cube, if any, is closed and
// its source released; the selection state is rebound and reset.
func (v *Coordinator) Load(c *cube.Cube) error {
	if v.cube != nil {
		if err := v.cube.Close(); err != nil {
			return err
		}
	}

	v.cube = c
	if v.sel == nil {
		v.sel = selection.NewState(c.Shape())
	} else {
		v.sel.Rebind(c.Shape())
	}
	return nil
}

// Cube returns the active cube, nil if none is loaded.
func (v *Coordinator) Cube() *cube.Cube {
	return v.cube
}

// Selection returns a snapshot of the current selection.
func (v *Coordinator) Selection() selection.Snapshot {
	return v.sel.Snapshot()
}

// Subscribe registers a listener for effective selection changes.
func (v *Coordinator) Subscribe(l selection.Listener) {
	v.sel.Subscribe(l)
}

// Stale reports whether a snapshot has been superseded by a newer
// selection. When reads are moved onto a worker, a result arriving with a
// stale snapshot is discarded rather than applied.
func (v *Coordinator) Stale(s selection.Snapshot) bool {
	return s.Revision != v.sel.Snapshot().Revision
}

// OnPixelPicked selects a spatial pixel and returns its profile. The
// coordinate is clamped first, the profile fetched, and only on success is
// the selection committed: a failed read leaves both the selection and any
// previously rendered view untouched.
func (v *Coordinator) OnPixelPicked(row, col int) (*cube.Profile, error) {
	if v.cube == nil {
		return nil, ErrNoCube
	}

	row, col = v.sel.ClampPixel(row, col)
	profile, err := v.cube.GetProfile(row, col)
	if err != nil {
		return nil, err
	}

	v.sel.SetPixel(row, col)
	return profile, nil
}

// OnBandPicked selects a band and returns its slice, with the same
// clamp-fetch-commit discipline as OnPixelPicked. Repicking the current
// band is a cache hit in the cube and does not advance the selection
// revision.
func (v *Coordinator) OnBandPicked(band int) (*mat.Dense, error) {
	if v.cube == nil {
		return nil, ErrNoCube
	}

	band = v.sel.ClampBand(band)
	slice, err := v.cube.GetSlice(band)
	if err != nil {
		return nil, err
	}

	v.sel.SetBand(band)
	return slice, nil
}

// CurrentView pulls the slice and profile for the current selection.
// Calling it twice without an intervening pick returns identical arrays
// from the cube's caches.
func (v *Coordinator) CurrentView() (View, error) {
	if v.cube == nil {
		return View{}, ErrNoCube
	}

	snap := v.sel.Snapshot()
	slice, err := v.cube.GetSlice(snap.Band)
	if err != nil {
		return View{}, err
	}
	profile, err := v.cube.GetProfile(snap.Row, snap.Col)
	if err != nil {
		return View{}, err
	}

	return View{
		Slice:   slice,
		Profile: profile,
		Band:    snap.Band,
		Row:     snap.Row,
		Col:     snap.Col,
	}, nil
}

// Close releases the active cube.
func (v *Coordinator) Close() error {
	if v.cube == nil {
		return nil
	}
	err := v.cube.Close()
	v.cube = nil
	return err
}
