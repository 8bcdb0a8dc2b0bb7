package motion

import "errors"

var (
	// ErrInvalidGeometry covers polygons with fewer than three vertices and
	// polygons whose bounding box has zero width or height.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrShapeMismatch is returned when coordinate, bound, or table columns
	// disagree on length.
	ErrShapeMismatch = errors.New("shape mismatch")
)
