// Package flush drains an encoder session to completion after end of input.
package flush

import (
	"context"
	"fmt"
	"time"

	"github.com/user/planarenc/pkg/ports"
	"github.com/user/planarenc/pkg/session"
)

// DefaultMaxStalledDrains bounds consecutive drains that yield nothing while
// the encoder has not yet reported end of stream.
const DefaultMaxStalledDrains = 10000

// Coordinator ends input on a session and forwards everything the encoder
// still holds to a sink.
type Coordinator struct {
	// MaxStalledDrains is the number of consecutive empty drains tolerated
	// before the encoder is declared stuck. Zero means DefaultMaxStalledDrains.
	MaxStalledDrains int

	log     ports.Logger
	metrics ports.Metrics
}

// New creates a Coordinator.
func New(log ports.Logger, metrics ports.Metrics) *Coordinator {
	return &Coordinator{
		MaxStalledDrains: DefaultMaxStalledDrains,
		log:              log.WithComponent("flush"),
		metrics:          metrics,
	}
}

// Flush signals end of input exactly once and drains s until it is Closed,
// writing every packet to sink in order. Flushing a session that has already
// ended input is a protocol violation. Packets written before a failure are
// left in the sink.
func (c *Coordinator) Flush(ctx context.Context, s *session.Session, sink ports.PacketSink) error {
	start := time.Now()
	if err := s.EndInput(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	limit := c.MaxStalledDrains
	if limit <= 0 {
		limit = DefaultMaxStalledDrains
	}

	written, stalled := 0, 0
	for s.State() != session.Closed {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("flush: %w", err)
		}

		pkts, drainErr := s.Drain()
		for _, pkt := range pkts {
			if err := sink.WritePacket(pkt); err != nil {
				return fmt.Errorf("flush: %w: pts %d: %w", session.ErrSinkWriteFailure, pkt.PTS, err)
			}
			written++
		}
		if drainErr != nil {
			return fmt.Errorf("flush: %w", drainErr)
		}

		if len(pkts) == 0 && s.State() != session.Closed {
			stalled++
			if stalled >= limit {
				return fmt.Errorf("flush: %w: no output after %d drains", session.ErrEncodeFailure, stalled)
			}
			continue
		}
		stalled = 0
	}

	elapsed := time.Since(start)
	c.metrics.FlushCompleted(elapsed)
	c.log.Debug("Flushed %d packets in %s", written, elapsed)
	return nil
}
