package selection

import (
	"testing"

	"cubeview/pkg/cube"
)

func newTestState() *State {
	return NewState(cube.Shape{Rows: 4, Cols: 5, Bands: 10})
}

// TestInitialState verifies a new selection sits at pixel (0,0), band 0
func TestInitialState(t *testing.T) {
	s := newTestState()
	snap := s.Snapshot()
	if snap.Row != 0 || snap.Col != 0 || snap.Band != 0 {
		t.Errorf("Expected (0,0) band 0, got (%d,%d) band %d", snap.Row, snap.Col, snap.Band)
	}
	if snap.Revision != 0 {
		t.Errorf("Expected revision 0, got %d", snap.Revision)
	}
}

// TestSetPixelClamping verifies out-of-range coordinates clamp, never fail
func TestSetPixelClamping(t *testing.T) {
	tests := []struct {
		name             string
		row, col         int
		wantRow, wantCol int
	}{
		{"inside", 2, 3, 2, 3},
		{"negative row", -5, 1, 0, 1},
		{"negative col", 1, -5, 1, 0},
		{"row too large", 100, 1, 3, 1},
		{"col too large", 1, 100, 1, 4},
		{"both out", -1, 99, 0, 4},
	}

	for _, tt := range tests {
		s := newTestState()
		s.SetPixel(tt.row, tt.col)
		snap := s.Snapshot()
		if snap.Row != tt.wantRow || snap.Col != tt.wantCol {
			t.Errorf("%s: SetPixel(%d,%d) stored (%d,%d), want (%d,%d)",
				tt.name, tt.row, tt.col, snap.Row, snap.Col, tt.wantRow, tt.wantCol)
		}
	}
}

// TestSetBandClamping verifies all out-of-range indices clamp to the
// nearest valid band
func TestSetBandClamping(t *testing.T) {
	tests := []struct {
		band int
		want int
	}{
		{-100, 0},
		{-1, 0},
		{0, 0},
		{5, 5},
		{9, 9},
		{10, 9},
		{1000, 9},
	}

	for _, tt := range tests {
		s := newTestState()
		s.SetBand(tt.band)
		if got := s.Snapshot().Band; got != tt.want {
			t.Errorf("SetBand(%d) stored %d, want %d", tt.band, got, tt.want)
		}
	}
}

// TestRedundantUpdatesSuppressed verifies unchanged selections do not
// advance the revision or notify subscribers
func TestRedundantUpdatesSuppressed(t *testing.T) {
	s := newTestState()

	notifications := 0
	s.Subscribe(func(Snapshot) { notifications++ })

	if !s.SetBand(3) {
		t.Error("First SetBand(3) should report a change")
	}
	rev := s.Snapshot().Revision

	// Second pick of the same band reports unchanged
	if s.SetBand(3) {
		t.Error("Second SetBand(3) should report no change")
	}
	if got := s.Snapshot().Revision; got != rev {
		t.Errorf("Redundant SetBand advanced revision from %d to %d", rev, got)
	}
	if notifications != 1 {
		t.Errorf("Expected 1 notification, got %d", notifications)
	}

	// A clamped request landing on the current value is also redundant
	s.SetPixel(2, 2)
	rev = s.Snapshot().Revision
	if s.SetPixel(2, 100) == false {
		// (2, 100) clamps to (2, 4): a real change
		t.Error("SetPixel(2,100) should clamp to (2,4) and report a change")
	}
	if s.SetPixel(2, 999) {
		t.Error("SetPixel(2,999) clamps to the current (2,4) and should report no change")
	}
	_ = rev
}

// TestRevisionMonotonic verifies every effective change advances the counter
func TestRevisionMonotonic(t *testing.T) {
	s := newTestState()

	var last uint64
	for i := 1; i < 4; i++ {
		s.SetBand(i)
		rev := s.Snapshot().Revision
		if rev <= last {
			t.Fatalf("Revision did not advance: %d after %d", rev, last)
		}
		last = rev
	}

	s.SetPixel(1, 1)
	if rev := s.Snapshot().Revision; rev <= last {
		t.Fatalf("Revision did not advance on pixel change: %d after %d", rev, last)
	}
}

// TestRebind verifies loading a replacement cube resets the selection
func TestRebind(t *testing.T) {
	s := newTestState()
	s.SetPixel(3, 4)
	s.SetBand(9)
	rev := s.Snapshot().Revision

	notified := 0
	s.Subscribe(func(Snapshot) { notified++ })

	s.Rebind(cube.Shape{Rows: 2, Cols: 2, Bands: 3})
	snap := s.Snapshot()
	if snap.Row != 0 || snap.Col != 0 || snap.Band != 0 {
		t.Errorf("Expected reset to (0,0) band 0, got (%d,%d) band %d", snap.Row, snap.Col, snap.Band)
	}
	if snap.Revision <= rev {
		t.Errorf("Rebind must advance revision: %d after %d", snap.Revision, rev)
	}
	if notified != 1 {
		t.Errorf("Expected 1 notification from Rebind, got %d", notified)
	}

	// Bounds now follow the new shape
	s.SetBand(100)
	if got := s.Snapshot().Band; got != 2 {
		t.Errorf("Expected clamp to 2 under new shape, got %d", got)
	}
}
