package allocator

import "errors"

var (
	// ErrInvalidDimensions is returned for non-positive sizes, sizes that do
	// not divide the format's chroma subsampling, or images too large to
	// address.
	ErrInvalidDimensions = errors.New("allocator: invalid dimensions")

	// ErrOutOfMemory is returned when backing storage cannot be obtained.
	ErrOutOfMemory = errors.New("allocator: out of memory")

	// ErrInvalidAlignment is returned when the row alignment is not a power of two.
	ErrInvalidAlignment = errors.New("allocator: alignment must be a power of two")

	// ErrUnknownFormat is returned for a pixel format with no descriptor.
	ErrUnknownFormat = errors.New("allocator: unknown pixel format")
)
