package cube

import "errors"

// Error taxonomy for cube construction, metadata binding and data access.
// Loaders and sources wrap these sentinels with contextual detail via
// fmt.Errorf("...: %w", err) so callers can classify failures with errors.Is.
var (
	// ErrInvalidShape indicates degenerate or inconsistent cube dimensions.
	// Construction aborts; no partial cube is ever exposed.
	ErrInvalidShape = errors.New("invalid cube shape")

	// ErrShapeMismatch indicates that calibration or spatial metadata
	// disagrees with the cube's dimensions. Fatal to the bind operation
	// only; the cube remains usable without that metadata.
	ErrShapeMismatch = errors.New("metadata shape mismatch")

	// ErrOutOfRange indicates a band index or pixel coordinate outside the
	// cube's bounds.
	ErrOutOfRange = errors.New("index out of range")

	// ErrSourceUnavailable indicates that the backing store of an already
	// loaded cube could not be read (I/O error, truncated data, closed
	// handle).
	ErrSourceUnavailable = errors.New("cube source unavailable")

	// ErrUnsupportedFormat indicates a file whose extension has no
	// registered handler.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrCorruptFile indicates a file that was recognized but could not be
	// decoded.
	ErrCorruptFile = errors.New("corrupt file")
)
