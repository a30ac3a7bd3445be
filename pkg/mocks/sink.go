package mocks

import (
	"sync"

	"github.com/user/planarenc/pkg/media"
	"github.com/user/planarenc/pkg/ports"
)

// PacketSink is a mock implementation of ports.PacketSink that records
// every packet it receives.
type PacketSink struct {
	WritePacketFunc func(pkt media.Packet) error
	FinalizeFunc    func() error

	Packets       []media.Packet
	FinalizeCalls int
}

func (m *PacketSink) WritePacket(pkt media.Packet) error {
	if m.WritePacketFunc != nil {
		if err := m.WritePacketFunc(pkt); err != nil {
			return err
		}
	}
	m.Packets = append(m.Packets, pkt)
	return nil
}

func (m *PacketSink) Finalize() error {
	m.FinalizeCalls++
	if m.FinalizeFunc != nil {
		return m.FinalizeFunc()
	}
	return nil
}

// PTS returns the presentation timestamps of the recorded packets.
func (m *PacketSink) PTS() []int64 {
	out := make([]int64, len(m.Packets))
	for i, p := range m.Packets {
		out[i] = p.PTS
	}
	return out
}

var _ ports.PacketSink = (*PacketSink)(nil)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	Frames    map[int][]byte
	PacketLog []byte
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled: enabled,
		Frames:  make(map[int][]byte),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveFrame(index int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Frames[index] = data
	return nil
}

func (m *DebugSink) SavePacketLog(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PacketLog = data
	return nil
}

var _ ports.DebugSink = (*DebugSink)(nil)
