// Package ffmpegencoder provides H.264 encoding through an external ffmpeg
// process.
//
// Raw planes are written to ffmpeg's stdin; its MPEG-TS output is demuxed on
// a reader goroutine and each video PES becomes one packet, with timestamps
// mapped from the 90 kHz transport clock back into the stream time base.
package ffmpegencoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"sync"

	"github.com/asticode/go-astits"
	"github.com/user/planarenc/pkg/media"
	"github.com/user/planarenc/pkg/ports"
)

var tsTimeBase = media.R(1, 90000)

// Encoder implements ports.VideoEncoder on top of ffmpeg/libx264.
type Encoder struct {
	log        ports.Logger
	ffmpegPath string

	cfg      ports.EncoderConfig
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	stderr   stderrBuffer
	cancel   context.CancelFunc
	opened   bool
	flushing bool
	scratch  []byte

	firstPTS  int64
	submitted int

	mu         sync.Mutex
	cond       *sync.Cond
	queue      []media.Packet
	readerDone bool
	readerErr  error
	tsBase     int64
	haveBase   bool
}

// New creates an ffmpeg-backed encoder. ffmpegPath may be empty to search
// the usual locations.
func New(ffmpegPath string, log ports.Logger) *Encoder {
	e := &Encoder{
		log:        log.WithComponent("ffmpeg"),
		ffmpegPath: ffmpegPath,
	}
	e.cond = sync.NewCond(&e.mu)
	return e
}

// Args returns the ffmpeg command line for cfg.
func Args(cfg ports.EncoderConfig) []string {
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", string(cfg.PixelFormat),
		"-s", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"-r", cfg.FrameRate.String(),
		"-i", "pipe:0",
		"-c:v", "libx264",
	}
	if cfg.GOPSize > 0 {
		args = append(args, "-g", fmt.Sprint(cfg.GOPSize))
	}
	args = append(args, "-bf", fmt.Sprint(cfg.MaxBFrames))
	if cfg.Bitrate > 0 {
		args = append(args, "-b:v", fmt.Sprint(cfg.Bitrate))
	}

	keys := make([]string, 0, len(cfg.Options))
	for k := range cfg.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "-"+k, cfg.Options[k])
	}

	if cfg.GlobalHeader {
		args = append(args, "-flags", "+global_header")
	}
	return append(args, "-f", "mpegts", "pipe:1")
}

// Open starts the ffmpeg process.
func (e *Encoder) Open(cfg ports.EncoderConfig) error {
	path, err := FindFFmpeg(e.ffmpegPath)
	if err != nil {
		return err
	}
	if !cfg.TimeBase.Valid() || !cfg.FrameRate.Valid() {
		return fmt.Errorf("%w: time base %s, frame rate %s", ErrEncodingFailed, cfg.TimeBase, cfg.FrameRate)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, path, Args(cfg)...)
	cmd.Stderr = &e.stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("failed to get stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("failed to get stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	e.cfg = cfg
	e.cmd = cmd
	e.stdin = stdin
	e.cancel = cancel
	e.opened = true
	e.flushing = false
	e.submitted = 0
	e.queue = nil
	e.readerDone = false
	e.readerErr = nil
	e.haveBase = false

	go e.readLoop(ctx, stdout)

	e.log.Debug("Started %s %v", path, Args(cfg))
	return nil
}

// readLoop demuxes ffmpeg's transport stream into packets.
func (e *Encoder) readLoop(ctx context.Context, r io.Reader) {
	dmx := astits.NewDemuxer(ctx, r)
	var err error
	for {
		var d *astits.DemuxerData
		d, err = dmx.NextData()
		if err != nil {
			if errors.Is(err, astits.ErrNoMorePackets) {
				err = nil
			}
			break
		}
		if d.PES == nil || d.PES.Header == nil || d.PES.Header.OptionalHeader == nil {
			continue
		}
		oh := d.PES.Header.OptionalHeader
		if oh.PTS == nil {
			continue
		}
		pts90k := oh.PTS.Base
		dts90k := pts90k
		if oh.DTS != nil {
			dts90k = oh.DTS.Base
		}

		e.mu.Lock()
		if !e.haveBase {
			e.tsBase, e.haveBase = pts90k, true
		}
		e.queue = append(e.queue, media.Packet{
			Data:     d.PES.Data,
			PTS:      e.firstPTS + media.Rescale(pts90k-e.tsBase, tsTimeBase, e.cfg.TimeBase),
			DTS:      e.firstPTS + media.Rescale(dts90k-e.tsBase, tsTimeBase, e.cfg.TimeBase),
			Keyframe: media.ContainsIDR(d.PES.Data),
		})
		e.cond.Broadcast()
		e.mu.Unlock()
	}

	e.mu.Lock()
	e.readerDone = true
	e.readerErr = err
	e.cond.Broadcast()
	e.mu.Unlock()
}

// PushFrame writes the visible planes of frame to ffmpeg. A nil frame closes
// stdin, which makes ffmpeg drain its lookahead and exit.
func (e *Encoder) PushFrame(frame *media.Frame) error {
	if !e.opened {
		return ErrNotOpened
	}
	if e.flushing {
		return ErrFlushing
	}
	if frame == nil {
		e.flushing = true
		if err := e.stdin.Close(); err != nil {
			return fmt.Errorf("%w: close stdin: %v", ErrEncodingFailed, err)
		}
		return nil
	}

	b := frame.Buffer
	if b == nil || b.Width != e.cfg.Width || b.Height != e.cfg.Height || b.Format != e.cfg.PixelFormat {
		return ErrFrameMismatch
	}
	if e.submitted == 0 {
		e.mu.Lock()
		e.firstPTS = frame.PTS
		e.mu.Unlock()
	}
	e.submitted++

	e.scratch = b.AppendVisible(e.scratch[:0])
	if _, err := e.stdin.Write(e.scratch); err != nil {
		return fmt.Errorf("%w: write frame: %v: %s", ErrEncodingFailed, err, e.stderr.String())
	}
	return nil
}

// PullPacket returns the next demuxed packet. While accepting input it never
// blocks; after end of input it waits for ffmpeg to produce the remaining
// output and exit.
func (e *Encoder) PullPacket() (media.Packet, error) {
	if !e.opened {
		return media.Packet{}, ErrNotOpened
	}

	e.mu.Lock()
	if e.flushing {
		for len(e.queue) == 0 && !e.readerDone {
			e.cond.Wait()
		}
	}
	if len(e.queue) > 0 {
		pkt := e.queue[0]
		e.queue = e.queue[1:]
		e.mu.Unlock()
		return pkt, nil
	}
	done, readErr := e.readerDone, e.readerErr
	e.mu.Unlock()

	if readErr != nil {
		return media.Packet{}, fmt.Errorf("%w: demux: %v", ErrEncodingFailed, readErr)
	}
	if !done {
		return media.Packet{}, ports.ErrPending
	}
	if !e.flushing {
		return media.Packet{}, fmt.Errorf("%w: ffmpeg exited early: %s", ErrEncodingFailed, e.stderr.String())
	}

	if e.cmd != nil {
		err := e.cmd.Wait()
		e.cmd = nil
		if err != nil {
			return media.Packet{}, fmt.Errorf("%w: %v: %s", ErrEncodingFailed, err, e.stderr.String())
		}
	}
	return media.Packet{}, ports.ErrEndOfStream
}

// Close stops ffmpeg if it is still running.
func (e *Encoder) Close() error {
	if !e.opened {
		return nil
	}
	e.opened = false
	if !e.flushing {
		e.stdin.Close()
	}
	e.cancel()
	if e.cmd != nil {
		e.cmd.Wait()
		e.cmd = nil
	}
	return nil
}

// stderrBuffer collects ffmpeg's diagnostics; exec copies into it from its
// own goroutine.
type stderrBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *stderrBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *stderrBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

var _ ports.VideoEncoder = (*Encoder)(nil)
