package media

// Frame is an image submitted to an encoder together with its presentation
// timestamp in stream time-base units.
type Frame struct {
	Buffer        *ImageBuffer
	PTS           int64
	ForceKeyframe bool
}

// Packet is one unit of compressed output.
type Packet struct {
	Data     []byte
	PTS      int64
	DTS      int64
	Keyframe bool
}

// Size returns the payload length in bytes.
func (p Packet) Size() int {
	return len(p.Data)
}

// IsData reports whether the packet carries stream data. Packets with no
// payload, and non-keyframe packets stamped with a zero timestamp, are
// spurious encoder output and must not reach a sink.
func (p Packet) IsData() bool {
	return (p.PTS != 0 || p.Keyframe) && p.Size() > 0
}
