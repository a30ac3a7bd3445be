package ffmpegencoder

import "errors"

var (
	// ErrNotOpened is returned when encoder methods are called before Open.
	ErrNotOpened = errors.New("ffmpegencoder: encoder not opened")

	// ErrFFmpegNotFound is returned when no ffmpeg binary can be located.
	ErrFFmpegNotFound = errors.New("ffmpegencoder: ffmpeg not found in PATH")

	// ErrFlushing is returned when a frame is pushed after end of input.
	ErrFlushing = errors.New("ffmpegencoder: frame pushed after end of input")

	// ErrFrameMismatch is returned when a frame does not match the configured geometry.
	ErrFrameMismatch = errors.New("ffmpegencoder: frame does not match encoder configuration")

	// ErrEncodingFailed is returned when the ffmpeg process fails.
	ErrEncodingFailed = errors.New("ffmpegencoder: encoding failed")
)
