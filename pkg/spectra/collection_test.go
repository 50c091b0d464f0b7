package spectra

import (
	"errors"
	"math"
	"testing"

	"cubeview/pkg/cube"
)

// newTestCube builds a small in-memory cube where sample values encode
// their coordinates: band*100 + row*10 + col.
func newTestCube(t *testing.T, shape cube.Shape, opts ...cube.Option) *cube.Cube {
	t.Helper()

	data := make([]float64, shape.Len())
	for r := 0; r < shape.Rows; r++ {
		for c := 0; c < shape.Cols; c++ {
			for b := 0; b < shape.Bands; b++ {
				data[(r*shape.Cols+c)*shape.Bands+b] = float64(b*100 + r*10 + c)
			}
		}
	}

	src, err := cube.NewMemorySource(data, shape)
	if err != nil {
		t.Fatalf("NewMemorySource failed: %v", err)
	}
	c, err := cube.New(src, opts...)
	if err != nil {
		t.Fatalf("cube.New failed: %v", err)
	}
	return c
}

// TestAddPixel verifies sequential naming and value extraction
func TestAddPixel(t *testing.T) {
	cb := newTestCube(t, cube.Shape{Rows: 4, Cols: 5, Bands: 3})
	col := NewCollection([]float64{450, 550, 650}, "nm")

	s1, err := col.AddPixel(cb, 1, 2)
	if err != nil {
		t.Fatalf("AddPixel failed: %v", err)
	}
	if s1.Name != "SPECTRUM_01" {
		t.Errorf("First spectrum named %q, want SPECTRUM_01", s1.Name)
	}
	if s1.Row != 1 || s1.Col != 2 {
		t.Errorf("Spectrum coords = (%d, %d), want (1, 2)", s1.Row, s1.Col)
	}
	for b, v := range s1.Values {
		want := float64(b*100 + 1*10 + 2)
		if v != want {
			t.Errorf("Values[%d] = %f, want %f", b, v, want)
		}
	}

	s2, err := col.AddPixel(cb, 0, 0)
	if err != nil {
		t.Fatalf("AddPixel failed: %v", err)
	}
	if s2.Name != "SPECTRUM_02" {
		t.Errorf("Second spectrum named %q, want SPECTRUM_02", s2.Name)
	}
	if col.Len() != 2 {
		t.Errorf("Len = %d, want 2", col.Len())
	}

	// Out-of-range pixels propagate the cube's range error
	if _, err := col.AddPixel(cb, 99, 0); !errors.Is(err, cube.ErrOutOfRange) {
		t.Errorf("Expected ErrOutOfRange, got %v", err)
	}
}

// TestAddRegion verifies the per-band mean and sample standard deviation
func TestAddRegion(t *testing.T) {
	cb := newTestCube(t, cube.Shape{Rows: 4, Cols: 5, Bands: 3})
	col := NewCollection([]float64{450, 550, 650}, "nm")

	// Pixels (0,0) and (0,1): band b holds b*100 and b*100+1
	m, err := col.AddRegion(cb, [][2]int{{0, 0}, {0, 1}})
	if err != nil {
		t.Fatalf("AddRegion failed: %v", err)
	}
	if m.Name != "AREA_01" {
		t.Errorf("Region named %q, want AREA_01", m.Name)
	}

	wantStd := math.Sqrt(0.5)
	for b := 0; b < 3; b++ {
		wantMean := float64(b*100) + 0.5
		if math.Abs(m.Mean[b]-wantMean) > 1e-9 {
			t.Errorf("Mean[%d] = %f, want %f", b, m.Mean[b], wantMean)
		}
		if math.Abs(m.Error[b]-wantStd) > 1e-9 {
			t.Errorf("Error[%d] = %f, want %f", b, m.Error[b], wantStd)
		}
	}

	// A single-pixel region has a mean but no error estimate
	m, err = col.AddRegion(cb, [][2]int{{2, 2}})
	if err != nil {
		t.Fatalf("AddRegion failed: %v", err)
	}
	if m.Name != "AREA_02" {
		t.Errorf("Second region named %q, want AREA_02", m.Name)
	}
	if m.Mean[0] != 22 || !math.IsNaN(m.Error[0]) {
		t.Errorf("Single-pixel region = (%f, %f), want (22, NaN)", m.Mean[0], m.Error[0])
	}

	if _, err := col.AddRegion(cb, nil); err == nil {
		t.Error("Expected error for empty region")
	}
}

// TestAddRegionMissingSamples verifies missing samples are excluded per
// band rather than poisoning the mean
func TestAddRegionMissingSamples(t *testing.T) {
	shape := cube.Shape{Rows: 2, Cols: 2, Bands: 2}
	data := []float64{
		// pixel (0,0): bands 10, -999
		10, -999,
		// pixel (0,1): bands 20, -999
		20, -999,
		// pixel (1,0), (1,1): unused
		0, 0, 0, 0,
	}
	src, err := cube.NewMemorySource(data, shape)
	if err != nil {
		t.Fatalf("NewMemorySource failed: %v", err)
	}
	cb, err := cube.New(src, cube.WithNoData(-999))
	if err != nil {
		t.Fatalf("cube.New failed: %v", err)
	}

	col := NewCollection([]float64{1, 2}, "")
	m, err := col.AddRegion(cb, [][2]int{{0, 0}, {0, 1}})
	if err != nil {
		t.Fatalf("AddRegion failed: %v", err)
	}

	if m.Mean[0] != 15 {
		t.Errorf("Mean[0] = %f, want 15", m.Mean[0])
	}
	// Band 1 is missing in every contributing pixel
	if !math.IsNaN(m.Mean[1]) || !math.IsNaN(m.Error[1]) {
		t.Errorf("Mean[1], Error[1] = (%f, %f), want (NaN, NaN)", m.Mean[1], m.Error[1])
	}
}

// TestRename verifies renaming with collision detection
func TestRename(t *testing.T) {
	cb := newTestCube(t, cube.Shape{Rows: 2, Cols: 2, Bands: 2})
	col := NewCollection([]float64{1, 2}, "")

	if _, err := col.AddPixel(cb, 0, 0); err != nil {
		t.Fatalf("AddPixel failed: %v", err)
	}
	if _, err := col.AddPixel(cb, 1, 1); err != nil {
		t.Fatalf("AddPixel failed: %v", err)
	}

	if err := col.Rename("SPECTRUM_01", "background"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if col.Singles()[0].Name != "background" {
		t.Errorf("Name = %q, want background", col.Singles()[0].Name)
	}

	if err := col.Rename("SPECTRUM_02", "background"); err == nil {
		t.Error("Expected collision error for duplicate name")
	}
	if err := col.Rename("no_such", "other"); err == nil {
		t.Error("Expected error for unknown name")
	}
}

// TestRemove verifies deletion by name
func TestRemove(t *testing.T) {
	cb := newTestCube(t, cube.Shape{Rows: 2, Cols: 2, Bands: 2})
	col := NewCollection([]float64{1, 2}, "")

	if _, err := col.AddPixel(cb, 0, 0); err != nil {
		t.Fatalf("AddPixel failed: %v", err)
	}
	if _, err := col.AddRegion(cb, [][2]int{{0, 0}}); err != nil {
		t.Fatalf("AddRegion failed: %v", err)
	}

	if err := col.Remove("SPECTRUM_01"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := col.Remove("AREA_01"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if col.Len() != 0 {
		t.Errorf("Len = %d after removals, want 0", col.Len())
	}
	if err := col.Remove("SPECTRUM_01"); err == nil {
		t.Error("Expected error removing an already-removed spectrum")
	}
}

// TestClearKeepsCounters verifies names stay unique across a clear
func TestClearKeepsCounters(t *testing.T) {
	cb := newTestCube(t, cube.Shape{Rows: 2, Cols: 2, Bands: 2})
	col := NewCollection([]float64{1, 2}, "")

	if _, err := col.AddPixel(cb, 0, 0); err != nil {
		t.Fatalf("AddPixel failed: %v", err)
	}
	col.Clear()
	if col.Len() != 0 {
		t.Errorf("Len = %d after Clear, want 0", col.Len())
	}

	s, err := col.AddPixel(cb, 0, 0)
	if err != nil {
		t.Fatalf("AddPixel failed: %v", err)
	}
	if s.Name != "SPECTRUM_02" {
		t.Errorf("Post-clear spectrum named %q, want SPECTRUM_02", s.Name)
	}
}
