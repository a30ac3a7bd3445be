// Package pipeline drives frames through an encoder session: it allocates and
// fills a buffer per tick, submits it, forwards output, and flushes at the end.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/user/planarenc/pkg/allocator"
	"github.com/user/planarenc/pkg/fill"
	"github.com/user/planarenc/pkg/flush"
	"github.com/user/planarenc/pkg/media"
	"github.com/user/planarenc/pkg/ports"
	"github.com/user/planarenc/pkg/session"
)

// Driver runs the per-tick allocate/fill/submit/drain loop against one
// opened encoder and forwards output to a sink.
type Driver struct {
	alloc   *allocator.Allocator
	encoder ports.VideoEncoder
	sink    ports.PacketSink
	fill    fill.Func
	debug   ports.DebugSink
	logger  ports.Logger
	metrics ports.Metrics
}

// NewDriver creates a Driver. The encoder must already be opened.
func NewDriver(
	alloc *allocator.Allocator,
	encoder ports.VideoEncoder,
	sink ports.PacketSink,
	fillFunc fill.Func,
	debug ports.DebugSink,
	logger ports.Logger,
	metrics ports.Metrics,
) *Driver {
	return &Driver{
		alloc:   alloc,
		encoder: encoder,
		sink:    sink,
		fill:    fillFunc,
		debug:   debug,
		logger:  logger.WithComponent("driver"),
		metrics: metrics,
	}
}

// Execute submits input.Frames frames with timestamps (i+1)*frameDuration,
// drains after each one, flushes the encoder and finalizes the sink once.
// Any error aborts the run; packets already written stay in the sink and the
// sink is not finalized.
func (d *Driver) Execute(ctx context.Context, input RunInput) (RunResult, error) {
	start := time.Now()

	if !input.FrameRate.Valid() || !input.TimeBase.Valid() {
		return RunResult{}, fmt.Errorf("%w: frame rate %s, time base %s", ErrInvalidTiming, input.FrameRate, input.TimeBase)
	}
	frameDuration := media.FrameDuration(input.FrameRate, input.TimeBase)
	if frameDuration <= 0 {
		return RunResult{}, fmt.Errorf("%w: frame rate %s in time base %s rounds to %d", ErrInvalidTiming, input.FrameRate, input.TimeBase, frameDuration)
	}

	buf, err := d.alloc.Allocate(input.Width, input.Height, input.PixelFormat, input.Alignment)
	if err != nil {
		return RunResult{}, fmt.Errorf("allocate frame: %w", err)
	}
	defer func() {
		buf.Release()
	}()

	s := session.New(d.encoder, d.logger, d.metrics)
	result := RunResult{
		SessionID:     s.ID(),
		Strides:       buf.Strides(),
		FrameDuration: frameDuration,
		SubmittedPTS:  make([]int64, 0, input.Frames),
	}
	var packetLog []PacketRecord

	d.logger.Debug("Encoding %d frames, frame duration %d in %s", input.Frames, frameDuration, input.TimeBase)

	for i := 0; i < input.Frames; i++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		writable, err := d.alloc.MakeWritable(buf)
		if err != nil {
			return result, fmt.Errorf("tick %d: make writable: %w", i, err)
		}
		buf = writable

		d.fill(buf, i)
		if d.debug.Enabled() && i < input.DebugFrames {
			if err := d.debug.SaveFrame(i, buf.AppendVisible(nil)); err != nil {
				d.logger.Warn("Failed to save debug frame %d: %s", i, err)
			}
		}

		frame := &media.Frame{
			Buffer:        buf,
			PTS:           int64(i+1) * frameDuration,
			ForceKeyframe: input.KeyframeInterval > 0 && i%input.KeyframeInterval == 0,
		}
		if err := s.Submit(frame); err != nil {
			return result, fmt.Errorf("tick %d: %w", i, err)
		}
		result.SubmittedPTS = append(result.SubmittedPTS, frame.PTS)

		pkts, drainErr := s.Drain()
		for _, pkt := range pkts {
			if err := d.sink.WritePacket(pkt); err != nil {
				return result, fmt.Errorf("tick %d: %w: pts %d: %w", i, session.ErrSinkWriteFailure, pkt.PTS, err)
			}
			if pkt.Keyframe {
				result.Keyframes++
			}
			packetLog = append(packetLog, record(pkt, false))
		}
		if drainErr != nil {
			return result, fmt.Errorf("tick %d: %w", i, drainErr)
		}
	}

	flushStart := time.Now()
	forwarded := s.Stats().Forwarded
	tracking := &trackingSink{PacketSink: d.sink, onWrite: func(pkt media.Packet) {
		if pkt.Keyframe {
			result.Keyframes++
		}
		packetLog = append(packetLog, record(pkt, true))
	}}
	if err := flush.New(d.logger, d.metrics).Flush(ctx, s, tracking); err != nil {
		return result, err
	}
	result.FlushElapsed = time.Since(flushStart)
	d.logger.Debug("Flush forwarded %d packets", s.Stats().Forwarded-forwarded)

	if err := d.sink.Finalize(); err != nil {
		return result, fmt.Errorf("finalize: %w: %w", session.ErrSinkWriteFailure, err)
	}

	if d.debug.Enabled() {
		if data, err := json.MarshalIndent(packetLog, "", "  "); err == nil {
			if err := d.debug.SavePacketLog(data); err != nil {
				d.logger.Warn("Failed to save packet log: %s", err)
			}
		}
	}

	result.State = s.State()
	result.Stats = s.Stats()
	result.Elapsed = time.Since(start)
	return result, nil
}

// trackingSink observes packets written during the flush.
type trackingSink struct {
	ports.PacketSink
	onWrite func(media.Packet)
}

func (t *trackingSink) WritePacket(pkt media.Packet) error {
	if err := t.PacketSink.WritePacket(pkt); err != nil {
		return err
	}
	t.onWrite(pkt)
	return nil
}

func record(pkt media.Packet, flushed bool) PacketRecord {
	return PacketRecord{
		PTS:      pkt.PTS,
		DTS:      pkt.DTS,
		Size:     pkt.Size(),
		Keyframe: pkt.Keyframe,
		Flushed:  flushed,
	}
}

var _ Stage[RunInput, RunResult] = (*Driver)(nil)
