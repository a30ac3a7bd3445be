package ports

import "time"

// Metrics receives pipeline counters. Implementations must be cheap; they are
// called once per frame and packet.
type Metrics interface {
	// FrameSubmitted records a frame accepted by the encoder.
	FrameSubmitted()

	// PacketForwarded records a packet that passed the validity filter.
	PacketForwarded(size int, keyframe bool)

	// PacketDiscarded records a packet dropped by the validity filter.
	PacketDiscarded()

	// FlushCompleted records the wall time spent draining after end of input.
	FlushCompleted(d time.Duration)
}
