// Package mp4sink writes an H.264 elementary stream into a fragmented MP4
// file. Samples are buffered and the container is written on Finalize.
package mp4sink

import (
	"bytes"
	"fmt"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/planarenc/pkg/media"
	"github.com/user/planarenc/pkg/ports"
)

// Options describes the video track.
type Options struct {
	Width  int
	Height int

	// TimeBase is the stream time base that packet timestamps are in.
	TimeBase media.Rational

	// FrameDuration is the duration of the last sample, in TimeBase units.
	FrameDuration int64
}

type sample struct {
	data     []byte
	pts      int64
	dts      int64
	keyframe bool
}

// Sink is a ports.PacketSink producing an MP4 file.
type Sink struct {
	fs   ports.FileSystem
	path string
	opts Options
	log  ports.Logger

	samples   []sample
	sps, pps  []byte
	finalized bool
}

// New creates a sink that writes path through fs on Finalize.
func New(fs ports.FileSystem, path string, opts Options, log ports.Logger) *Sink {
	return &Sink{
		fs:   fs,
		path: path,
		opts: opts,
		log:  log.WithComponent("mp4sink"),
	}
}

// WritePacket buffers one Annex B access unit.
func (s *Sink) WritePacket(pkt media.Packet) error {
	if s.finalized {
		return ErrFinalized
	}
	if s.sps == nil || s.pps == nil {
		sps, pps := media.ParameterSets(pkt.Data)
		if s.sps == nil {
			s.sps = sps
		}
		if s.pps == nil {
			s.pps = pps
		}
	}
	s.samples = append(s.samples, sample{
		data:     media.AnnexBToAVCC(pkt.Data),
		pts:      pkt.PTS,
		dts:      pkt.DTS,
		keyframe: pkt.Keyframe,
	})
	return nil
}

// Finalize writes the MP4 file. It may be called only once.
func (s *Sink) Finalize() error {
	if s.finalized {
		return ErrFinalized
	}
	s.finalized = true

	data, err := s.build()
	if err != nil {
		return err
	}
	if err := s.fs.WriteFile(s.path, data); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	s.log.Info("MP4 written: %s (%d samples, %d bytes)", s.path, len(s.samples), len(data))
	return nil
}

// SampleCount returns the number of buffered samples.
func (s *Sink) SampleCount() int {
	return len(s.samples)
}

func (s *Sink) build() ([]byte, error) {
	if len(s.samples) == 0 {
		return nil, ErrNoSamples
	}
	if s.sps == nil || s.pps == nil {
		return nil, ErrNoParameterSets
	}
	tb := s.opts.TimeBase
	if !tb.Valid() || tb.Den > int64(^uint32(0)) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTimeBase, tb)
	}

	// One tick of the track timescale is 1/Den seconds, so a timestamp of
	// n time-base units is n*Num ticks.
	timescale := uint32(tb.Den)
	ticks := func(v int64) int64 { return v * tb.Num }
	trackID := uint32(1)

	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(timescale, "video", "und")
	trak := init.Moov.Trak

	avcC, err := mp4.CreateAvcC([][]byte{s.sps}, [][]byte{s.pps}, true)
	if err != nil {
		return nil, fmt.Errorf("create avcC: %w", err)
	}
	width, height := uint16(s.opts.Width), uint16(s.opts.Height)
	avc1 := mp4.CreateVisualSampleEntryBox("avc1", width, height, avcC)
	trak.Mdia.Minf.Stbl.Stsd.AddChild(avc1)
	trak.Tkhd.Width = mp4.Fixed32(s.opts.Width << 16)
	trak.Tkhd.Height = mp4.Fixed32(s.opts.Height << 16)

	frag, err := mp4.CreateFragment(1, trackID)
	if err != nil {
		return nil, fmt.Errorf("create fragment: %w", err)
	}

	// Decode times start at zero.
	base := s.samples[0].dts
	for i, smp := range s.samples {
		dur := s.opts.FrameDuration
		if i < len(s.samples)-1 {
			if d := s.samples[i+1].dts - smp.dts; d > 0 {
				dur = d
			}
		}
		if dur <= 0 {
			dur = 1
		}

		flags := mp4.NonSyncSampleFlags
		if smp.keyframe {
			flags = mp4.SyncSampleFlags
		}

		frag.AddFullSample(mp4.FullSample{
			Sample: mp4.Sample{
				Flags:                 flags,
				Size:                  uint32(len(smp.data)),
				Dur:                   uint32(ticks(dur)),
				CompositionTimeOffset: int32(ticks(smp.pts - smp.dts)),
			},
			DecodeTime: uint64(ticks(smp.dts - base)),
			Data:       smp.data,
		})
	}

	var buf bytes.Buffer

	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso2", "avc1", "mp41"})
	if err := ftyp.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode ftyp: %w", err)
	}
	if err := init.Moov.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode moov: %w", err)
	}
	if err := frag.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode fragment: %w", err)
	}

	return buf.Bytes(), nil
}

var _ ports.PacketSink = (*Sink)(nil)
