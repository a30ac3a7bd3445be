// Package session drives the submit/drain protocol against an opaque
// encoder and filters its output.
package session

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/user/planarenc/pkg/media"
	"github.com/user/planarenc/pkg/ports"
)

// previewBytes is how much of a suspicious first packet is logged.
const previewBytes = 16

// Stats counts packets through a session. Pulled always equals
// Forwarded + Discarded after a successful drain.
type Stats struct {
	Submitted int
	Pulled    int
	Forwarded int
	Discarded int
	Bytes     int64
}

// Session wraps a VideoEncoder with a state machine:
// Idle -> Accepting (<-> Draining) -> Flushing -> Closed.
type Session struct {
	id      string
	enc     ports.VideoEncoder
	log     ports.Logger
	metrics ports.Metrics

	state          State
	stats          Stats
	forwardedFirst bool
}

// New creates a session over an opened encoder.
func New(enc ports.VideoEncoder, log ports.Logger, metrics ports.Metrics) *Session {
	id := uuid.NewString()
	return &Session{
		id:      id,
		enc:     enc,
		log:     log.WithComponent("session " + id[:8]),
		metrics: metrics,
		state:   Idle,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the current state.
func (s *Session) State() State {
	return s.state
}

// Stats returns the packet counters.
func (s *Session) Stats() Stats {
	return s.stats
}

// Submit pushes one frame to the encoder. It never drains.
// A busy encoder is a protocol violation; the push is not retried.
func (s *Session) Submit(frame *media.Frame) error {
	if frame == nil {
		return fmt.Errorf("%w: submit nil frame, use EndInput", ErrProtocolViolation)
	}
	if s.state != Idle && s.state != Accepting {
		return fmt.Errorf("%w: submit in state %s", ErrProtocolViolation, s.state)
	}

	if err := s.enc.PushFrame(frame); err != nil {
		if errors.Is(err, ports.ErrBusy) {
			return fmt.Errorf("%w: encoder busy at pts %d", ErrProtocolViolation, frame.PTS)
		}
		s.state = Closed
		return fmt.Errorf("%w: push pts %d: %w", ErrEncodeFailure, frame.PTS, err)
	}

	s.state = Accepting
	s.stats.Submitted++
	s.metrics.FrameSubmitted()
	s.log.Debug("Submitted frame pts %d", frame.PTS)
	return nil
}

// Drain pulls packets until the encoder needs more input or reports end of
// stream, and returns the ones that pass the validity filter in encoder
// output order. End of stream is only legal while flushing and moves the
// session to Closed. On error the packets pulled before it are still
// returned; they are already counted as forwarded.
func (s *Session) Drain() ([]media.Packet, error) {
	switch s.state {
	case Accepting:
		s.state = Draining
		defer func() {
			if s.state == Draining {
				s.state = Accepting
			}
		}()
	case Flushing:
	default:
		return nil, fmt.Errorf("%w: drain in state %s", ErrProtocolViolation, s.state)
	}

	var out []media.Packet
	for {
		pkt, err := s.enc.PullPacket()
		switch {
		case err == nil:
			s.stats.Pulled++
			if s.accept(pkt) {
				out = append(out, pkt)
			}

		case errors.Is(err, ports.ErrPending):
			return out, nil

		case errors.Is(err, ports.ErrEndOfStream):
			if s.state != Flushing {
				s.state = Closed
				return out, fmt.Errorf("%w: end of stream before end of input", ErrProtocolViolation)
			}
			s.state = Closed
			s.log.Debug("End of stream: %d forwarded, %d discarded", s.stats.Forwarded, s.stats.Discarded)
			return out, nil

		default:
			s.state = Closed
			return out, fmt.Errorf("%w: pull: %w", ErrEncodeFailure, err)
		}
	}
}

// EndInput signals end of input to the encoder exactly once and moves the
// session to Flushing.
func (s *Session) EndInput() error {
	if s.state != Idle && s.state != Accepting {
		return fmt.Errorf("%w: end of input in state %s", ErrProtocolViolation, s.state)
	}
	if err := s.enc.PushFrame(nil); err != nil {
		if errors.Is(err, ports.ErrBusy) {
			return fmt.Errorf("%w: encoder busy at end of input", ErrProtocolViolation)
		}
		s.state = Closed
		return fmt.Errorf("%w: end of input: %w", ErrEncodeFailure, err)
	}
	s.state = Flushing
	s.log.Debug("End of input after %d frames", s.stats.Submitted)
	return nil
}

// accept applies the validity filter and updates counters.
func (s *Session) accept(pkt media.Packet) bool {
	if !pkt.IsData() {
		s.stats.Discarded++
		s.metrics.PacketDiscarded()
		s.log.Debug("Discarded packet pts %d size %d", pkt.PTS, pkt.Size())
		return false
	}

	if !s.forwardedFirst {
		s.forwardedFirst = true
		if !pkt.Keyframe {
			n := min(len(pkt.Data), previewBytes)
			s.log.Warn("First packet is not a keyframe (pts %d, %d bytes): %s", pkt.PTS, pkt.Size(), hex.EncodeToString(pkt.Data[:n]))
		}
	}

	s.stats.Forwarded++
	s.stats.Bytes += int64(pkt.Size())
	s.metrics.PacketForwarded(pkt.Size(), pkt.Keyframe)
	return true
}
