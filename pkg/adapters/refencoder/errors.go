package refencoder

import "errors"

var (
	// ErrNotOpened is returned when encoder methods are called before Open.
	ErrNotOpened = errors.New("refencoder: encoder not opened")

	// ErrFlushing is returned when a frame is pushed after end of input.
	ErrFlushing = errors.New("refencoder: frame pushed after end of input")

	// ErrFrameMismatch is returned when a frame does not match the configured geometry.
	ErrFrameMismatch = errors.New("refencoder: frame does not match encoder configuration")

	// ErrInvalidConfig is returned by Open for unusable settings.
	ErrInvalidConfig = errors.New("refencoder: invalid configuration")

	// ErrCorruptPacket is returned by the decoder for malformed payloads.
	ErrCorruptPacket = errors.New("refencoder: corrupt packet")
)
