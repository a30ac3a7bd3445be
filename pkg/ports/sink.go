package ports

import "github.com/user/planarenc/pkg/media"

// PacketSink receives compressed packets in output order and finalizes the
// container once the stream has ended.
type PacketSink interface {
	// WritePacket appends a packet to the output.
	WritePacket(pkt media.Packet) error

	// Finalize writes any trailer and releases the sink. It is called exactly
	// once, after the last WritePacket.
	Finalize() error
}

// DebugSink abstracts debug output for intermediate results.
// It allows saving filled frames and the packet log for inspection.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveFrame saves the visible planes of a filled frame as raw planar bytes.
	SaveFrame(index int, data []byte) error

	// SavePacketLog saves the forwarded packet log as JSON.
	SavePacketLog(data []byte) error
}
