package ports

import (
	"errors"

	"github.com/user/planarenc/pkg/media"
)

// Encoder contract results. An encoder reports these through the error
// return of PushFrame and PullPacket; any other non-nil error is fatal.
var (
	// ErrBusy is returned by PushFrame when the encoder cannot accept input
	// until some output has been pulled.
	ErrBusy = errors.New("encoder: busy")

	// ErrPending is returned by PullPacket when no output is ready and more
	// input is required.
	ErrPending = errors.New("encoder: output pending")

	// ErrEndOfStream is returned by PullPacket once the encoder has been
	// flushed and every buffered packet has been pulled.
	ErrEndOfStream = errors.New("encoder: end of stream")
)

// VideoEncoder is an opaque, stateful video encoder. It may hold submitted
// frames internally (B-frame reordering, lookahead, rate control) and emit
// their packets later and in coding order.
type VideoEncoder interface {
	// Open configures the encoder. It must be called once before any other method.
	Open(cfg EncoderConfig) error

	// PushFrame submits a frame. A nil frame signals end of input; after it
	// the encoder drains its internal queue through PullPacket.
	// The encoder may keep a reference to frame.Buffer (via Ref) until the
	// corresponding packet has been pulled.
	PushFrame(frame *media.Frame) error

	// PullPacket returns the next packet in output order, ErrPending or
	// ErrEndOfStream. A packet with no data is legal and carries nothing.
	PullPacket() (media.Packet, error)

	// Close releases encoder resources, including any retained frames.
	Close() error
}

// EncoderConfig configures a VideoEncoder.
type EncoderConfig struct {
	Width        int
	Height       int
	PixelFormat  media.PixelFormat
	TimeBase     media.Rational // stream time base of PTS/DTS values
	FrameRate    media.Rational // nominal input frame rate
	Bitrate      int            // target bitrate in bits/sec (0 = encoder default)
	GOPSize      int            // distance between keyframes (0 = encoder default)
	MaxBFrames   int            // maximum consecutive B-frames
	GlobalHeader bool           // place codec headers out of band

	// Options holds codec-specific key/value tuning pairs (e.g. preset=slow).
	Options map[string]string
}

// FrameDuration returns the length of one frame in TimeBase units.
func (c EncoderConfig) FrameDuration() int64 {
	return media.FrameDuration(c.FrameRate, c.TimeBase)
}
