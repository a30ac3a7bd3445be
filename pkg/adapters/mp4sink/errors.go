package mp4sink

import "errors"

var (
	// ErrNoSamples is returned when Finalize is called before any packet.
	ErrNoSamples = errors.New("mp4sink: no samples to write")

	// ErrNoParameterSets is returned when no keyframe carried SPS and PPS.
	ErrNoParameterSets = errors.New("mp4sink: SPS/PPS not found")

	// ErrFinalized is returned for writes after Finalize.
	ErrFinalized = errors.New("mp4sink: already finalized")

	// ErrInvalidTimeBase is returned when the stream time base cannot be
	// expressed as an MP4 timescale.
	ErrInvalidTimeBase = errors.New("mp4sink: invalid time base")
)
