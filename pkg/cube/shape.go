package cube

import "fmt"

// Shape holds the dimensions of a data cube: two spatial axes (rows, cols)
// and one measurement axis (bands).
type Shape struct {
	// Rows is the vertical spatial dimension.
	Rows int

	// Cols is the horizontal spatial dimension.
	Cols int

	// Bands is the measurement-axis dimension (spectral bands, time epochs
	// or similar).
	Bands int
}

// Valid reports whether every dimension is strictly positive. A cube with
// zero bands or zero spatial extent is rejected at construction.
func (s Shape) Valid() bool {
	return s.Rows > 0 && s.Cols > 0 && s.Bands > 0
}

// SliceLen returns the number of samples in one spatial slice.
func (s Shape) SliceLen() int {
	return s.Rows * s.Cols
}

// Len returns the total number of samples in the cube.
func (s Shape) Len() int {
	return s.Rows * s.Cols * s.Bands
}

func (s Shape) String() string {
	return fmt.Sprintf("(%d, %d, %d)", s.Rows, s.Cols, s.Bands)
}

// DType identifies the element type of a cube's backing store. Reads always
// deliver float64 samples regardless of the stored type; DType lets callers
// reason about precision and storage cost.
type DType int

const (
	Float64 DType = iota
	Float32
	Int32
	Int16
	Uint16
	Uint8
)

// Size returns the width of one stored sample in bytes.
func (d DType) Size() int {
	switch d {
	case Float64:
		return 8
	case Float32, Int32:
		return 4
	case Int16, Uint16:
		return 2
	case Uint8:
		return 1
	}
	return 0
}

func (d DType) String() string {
	switch d {
	case Float64:
		return "float64"
	case Float32:
		return "float32"
	case Int32:
		return "int32"
	case Int16:
		return "int16"
	case Uint16:
		return "uint16"
	case Uint8:
		return "uint8"
	}
	return fmt.Sprintf("DType(%d)", int(d))
}
