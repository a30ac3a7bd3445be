package mocks

import (
	"time"

	"github.com/user/planarenc/pkg/ports"
)

// Metrics is a mock implementation of ports.Metrics that counts calls.
type Metrics struct {
	Submitted  int
	Forwarded  int
	Keyframes  int
	Discarded  int
	Bytes      int
	Flushes    int
	FlushTimes []time.Duration
}

func (m *Metrics) FrameSubmitted() {
	m.Submitted++
}

func (m *Metrics) PacketForwarded(size int, keyframe bool) {
	m.Forwarded++
	m.Bytes += size
	if keyframe {
		m.Keyframes++
	}
}

func (m *Metrics) PacketDiscarded() {
	m.Discarded++
}

func (m *Metrics) FlushCompleted(d time.Duration) {
	m.Flushes++
	m.FlushTimes = append(m.FlushTimes, d)
}

var _ ports.Metrics = (*Metrics)(nil)
