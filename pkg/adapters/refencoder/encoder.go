// Package refencoder provides an in-process reference video encoder.
//
// It exists to exercise the push/pull protocol the way a real codec does:
// frames are held for B-frame reordering, packets come out in coding order
// with decode timestamps, and end of input drains the held frames. Pictures
// are coded losslessly: intra pictures as brotli-compressed planes, predicted
// pictures as a compressed XOR against the last anchor picture.
package refencoder

import (
	"fmt"
	"strconv"

	"github.com/user/planarenc/pkg/media"
	"github.com/user/planarenc/pkg/ports"
)

const (
	// DefaultGOPSize is used when the configuration leaves it at zero.
	DefaultGOPSize = 12

	// DefaultQuality is the brotli quality used when no "quality" option is set.
	DefaultQuality = 5

	// MaxQueuedPackets is the number of unpulled packets after which
	// PushFrame reports ports.ErrBusy.
	MaxQueuedPackets = 64
)

type heldFrame struct {
	frame *media.Frame
	index int
	key   bool
}

// Encoder implements ports.VideoEncoder.
type Encoder struct {
	log ports.Logger

	cfg           ports.EncoderConfig
	gop           int
	quality       int
	frameDuration int64
	opened        bool
	flushing      bool

	pending   []heldFrame
	queue     []media.Packet
	submitted []int64 // pts in display order
	coded     int
	anchor    []byte // visible bytes of the last I or P picture
}

// New creates a reference encoder.
func New(log ports.Logger) *Encoder {
	return &Encoder{log: log.WithComponent("refencoder")}
}

// Open validates cfg and resets the encoder.
func (e *Encoder) Open(cfg ports.EncoderConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidConfig, cfg.Width, cfg.Height)
	}
	if _, ok := media.LookupFormat(cfg.PixelFormat); !ok {
		return fmt.Errorf("%w: pixel format %q", ErrInvalidConfig, cfg.PixelFormat)
	}
	if !cfg.TimeBase.Valid() || !cfg.FrameRate.Valid() {
		return fmt.Errorf("%w: time base %s, frame rate %s", ErrInvalidConfig, cfg.TimeBase, cfg.FrameRate)
	}
	if cfg.MaxBFrames < 0 {
		return fmt.Errorf("%w: max B-frames %d", ErrInvalidConfig, cfg.MaxBFrames)
	}

	quality := DefaultQuality
	for k, v := range cfg.Options {
		switch k {
		case "quality":
			q, err := strconv.Atoi(v)
			if err != nil || q < 0 || q > 11 {
				return fmt.Errorf("%w: quality %q", ErrInvalidConfig, v)
			}
			quality = q
		default:
			e.log.Debug("Ignoring encoder option %s=%s", k, v)
		}
	}

	e.Close()
	e.cfg = cfg
	e.gop = cfg.GOPSize
	if e.gop <= 0 {
		e.gop = DefaultGOPSize
	}
	e.quality = quality
	e.frameDuration = max(cfg.FrameDuration(), 1)
	e.opened = true
	e.flushing = false
	e.queue = nil
	e.submitted = nil
	e.coded = 0
	e.anchor = nil

	e.log.Debug("Opened %dx%d %s, gop %d, max B-frames %d", cfg.Width, cfg.Height, cfg.PixelFormat, e.gop, cfg.MaxBFrames)
	return nil
}

// PushFrame submits a frame, or signals end of input when frame is nil.
func (e *Encoder) PushFrame(frame *media.Frame) error {
	if !e.opened {
		return ErrNotOpened
	}
	if e.flushing {
		return ErrFlushing
	}
	if frame == nil {
		e.flushing = true
		return e.emitPending()
	}
	if len(e.queue) >= MaxQueuedPackets {
		return ports.ErrBusy
	}

	b := frame.Buffer
	if b == nil || b.Width != e.cfg.Width || b.Height != e.cfg.Height || b.Format != e.cfg.PixelFormat {
		return ErrFrameMismatch
	}

	index := len(e.submitted)
	e.submitted = append(e.submitted, frame.PTS)
	held := heldFrame{
		frame: &media.Frame{Buffer: b.Ref(), PTS: frame.PTS},
		index: index,
		key:   index%e.gop == 0 || frame.ForceKeyframe,
	}
	e.pending = append(e.pending, held)

	if held.key || len(e.pending) > e.cfg.MaxBFrames {
		return e.emitPending()
	}
	return nil
}

// emitPending codes the held group: the last frame first as an anchor, then
// the earlier frames as B pictures in display order.
func (e *Encoder) emitPending() error {
	if len(e.pending) == 0 {
		return nil
	}
	group := e.pending
	e.pending = nil
	defer func() {
		for _, h := range group {
			h.frame.Buffer.Release()
		}
	}()

	last := group[len(group)-1]
	typ := PictureP
	if last.key || e.anchor == nil {
		typ = PictureI
	}
	if err := e.code(last, typ); err != nil {
		return err
	}
	for _, h := range group[:len(group)-1] {
		if err := e.code(h, PictureB); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) code(h heldFrame, typ byte) error {
	raw := h.frame.Buffer.AppendVisible(nil)

	body := raw
	if typ != PictureI {
		body = make([]byte, len(raw))
		xorInto(body, raw, e.anchor)
	}
	if typ != PictureB {
		e.anchor = raw
	}

	compressed, err := compress(body, e.quality)
	if err != nil {
		return fmt.Errorf("refencoder: compress picture %d: %w", h.index, err)
	}

	dts := e.submitted[e.coded]
	if e.cfg.MaxBFrames > 0 {
		dts -= e.frameDuration
	}
	e.coded++

	e.queue = append(e.queue, media.Packet{
		Data: marshalPacket(Header{
			Type:   typ,
			Index:  uint32(h.index),
			RawLen: uint32(len(raw)),
		}, compressed),
		PTS:      h.frame.PTS,
		DTS:      dts,
		Keyframe: typ == PictureI,
	})
	e.log.Debug("Coded %c picture %d: %d -> %d bytes", typ, h.index, len(raw), len(compressed))
	return nil
}

// PullPacket returns the next coded packet.
func (e *Encoder) PullPacket() (media.Packet, error) {
	if !e.opened {
		return media.Packet{}, ErrNotOpened
	}
	if len(e.queue) > 0 {
		pkt := e.queue[0]
		e.queue = e.queue[1:]
		return pkt, nil
	}
	if e.flushing {
		return media.Packet{}, ports.ErrEndOfStream
	}
	return media.Packet{}, ports.ErrPending
}

// Close releases any held frames.
func (e *Encoder) Close() error {
	for _, h := range e.pending {
		h.frame.Buffer.Release()
	}
	e.pending = nil
	e.opened = false
	return nil
}

// Held returns the number of frames waiting for reordering.
func (e *Encoder) Held() int {
	return len(e.pending)
}

var _ ports.VideoEncoder = (*Encoder)(nil)
