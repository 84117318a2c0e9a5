package features

import "github.com/pkg/errors"

var (
	// ErrUnsupportedAlgorithm is returned when a detector, descriptor,
	// matcher or selector name is not recognised, or is recognised but has
	// no implementation.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")

	// ErrBackendUnavailable is returned for algorithms that need the OpenCV
	// backend when the binary was built without the opencv tag.
	ErrBackendUnavailable = errors.New("opencv backend unavailable")

	// ErrDescriptorMismatch is returned when source and reference
	// descriptors cannot be compared (column count or format differ).
	ErrDescriptorMismatch = errors.New("descriptor mismatch")

	// ErrInvalidParameter is returned for out-of-range configuration values.
	ErrInvalidParameter = errors.New("invalid parameter")
)
