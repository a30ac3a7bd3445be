package mocks

import (
	"github.com/user/planarenc/pkg/media"
	"github.com/user/planarenc/pkg/ports"
)

// VideoEncoder is a mock implementation of ports.VideoEncoder.
//
// Without PushFrameFunc/PullPacketFunc it behaves like a simple encoder that
// holds up to Delay frames (retaining a buffer reference for each) and emits
// one packet per frame in submission order. The first packet is a keyframe.
// After the nil end-of-input frame it drains the held frames and then
// reports ports.ErrEndOfStream.
type VideoEncoder struct {
	OpenFunc       func(cfg ports.EncoderConfig) error
	PushFrameFunc  func(frame *media.Frame) error
	PullPacketFunc func() (media.Packet, error)
	CloseFunc      func() error

	// Delay is the number of frames held before output becomes available.
	Delay int

	// Recorded calls for verification
	OpenCalled      bool
	Config          ports.EncoderConfig
	PushedPTS       []int64
	EndOfInputCalls int
	PullCalls       int
	CloseCalled     bool

	held    []*media.Frame
	ready   []media.Packet
	flushed bool
}

func (m *VideoEncoder) Open(cfg ports.EncoderConfig) error {
	m.OpenCalled = true
	m.Config = cfg
	if m.OpenFunc != nil {
		return m.OpenFunc(cfg)
	}
	return nil
}

func (m *VideoEncoder) PushFrame(frame *media.Frame) error {
	if frame == nil {
		m.EndOfInputCalls++
	} else {
		m.PushedPTS = append(m.PushedPTS, frame.PTS)
	}
	if m.PushFrameFunc != nil {
		return m.PushFrameFunc(frame)
	}

	if frame == nil {
		m.flushed = true
		for len(m.held) > 0 {
			m.emit()
		}
		return nil
	}
	m.held = append(m.held, &media.Frame{
		Buffer:        frame.Buffer.Ref(),
		PTS:           frame.PTS,
		ForceKeyframe: frame.ForceKeyframe,
	})
	if len(m.held) > m.Delay {
		m.emit()
	}
	return nil
}

func (m *VideoEncoder) emit() {
	f := m.held[0]
	m.held = m.held[1:]
	f.Buffer.Release()
	m.ready = append(m.ready, media.Packet{
		Data:     []byte{byte(f.PTS), byte(f.PTS >> 8), 0xA5},
		PTS:      f.PTS,
		DTS:      f.PTS,
		Keyframe: len(m.PushedPTS) > 0 && f.PTS == m.PushedPTS[0] || f.ForceKeyframe,
	})
}

func (m *VideoEncoder) PullPacket() (media.Packet, error) {
	m.PullCalls++
	if m.PullPacketFunc != nil {
		return m.PullPacketFunc()
	}
	if len(m.ready) > 0 {
		pkt := m.ready[0]
		m.ready = m.ready[1:]
		return pkt, nil
	}
	if m.flushed {
		return media.Packet{}, ports.ErrEndOfStream
	}
	return media.Packet{}, ports.ErrPending
}

func (m *VideoEncoder) Close() error {
	m.CloseCalled = true
	for _, f := range m.held {
		f.Buffer.Release()
	}
	m.held = nil
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Held returns the number of frames the encoder still retains.
func (m *VideoEncoder) Held() int {
	return len(m.held)
}

// PullScript returns a PullPacketFunc that yields the given results in order
// and then ports.ErrEndOfStream forever.
func PullScript(results ...PullResult) func() (media.Packet, error) {
	i := 0
	return func() (media.Packet, error) {
		if i >= len(results) {
			return media.Packet{}, ports.ErrEndOfStream
		}
		r := results[i]
		i++
		return r.Packet, r.Err
	}
}

// PullResult is one scripted PullPacket outcome.
type PullResult struct {
	Packet media.Packet
	Err    error
}

var _ ports.VideoEncoder = (*VideoEncoder)(nil)
