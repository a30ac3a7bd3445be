// Package mp4probe inspects MP4 files written by the pipeline: codec, track
// geometry, sample count and sync samples.
package mp4probe

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"
)

// Codec represents a video codec type.
type Codec string

const (
	CodecH264    Codec = "h264"
	CodecHEVC    Codec = "hevc"
	CodecAV1     Codec = "av1"
	CodecUnknown Codec = "unknown"
)

// ErrNoVideoTrack is returned when the file has no video track.
var ErrNoVideoTrack = errors.New("mp4probe: no video track found")

// Report summarizes the video track of an MP4 file.
type Report struct {
	Codec      Codec  `json:"codec"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Timescale  uint32 `json:"timescale"`
	Fragmented bool   `json:"fragmented"`

	// Samples is the number of video samples; SyncSamples counts the ones
	// flagged as random access points.
	Samples     int `json:"samples"`
	SyncSamples int `json:"syncSamples"`

	// Duration is the summed sample duration in Timescale ticks.
	Duration uint64 `json:"duration"`
}

// ProbeFile inspects the MP4 file at path.
func ProbeFile(path string) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return ProbeReader(f)
}

// ProbeBytes inspects MP4 data held in memory.
func ProbeBytes(data []byte) (Report, error) {
	return ProbeReader(bytes.NewReader(data))
}

// ProbeReader inspects MP4 data from an io.ReadSeeker.
func ProbeReader(reader io.ReadSeeker) (Report, error) {
	mp4File, err := mp4.DecodeFile(reader)
	if err != nil {
		return Report{}, fmt.Errorf("decode mp4: %w", err)
	}
	return probe(mp4File)
}

func probe(f *mp4.File) (Report, error) {
	moov := f.Moov
	if f.Init != nil && f.Init.Moov != nil {
		moov = f.Init.Moov
	}
	if moov == nil {
		return Report{}, ErrNoVideoTrack
	}

	for _, trak := range moov.Traks {
		if !isVideo(trak) {
			continue
		}
		r := Report{
			Codec:      codecOf(trak),
			Timescale:  trak.Mdia.Mdhd.Timescale,
			Fragmented: f.IsFragmented(),
		}
		if trak.Tkhd != nil {
			r.Width = int(trak.Tkhd.Width >> 16)
			r.Height = int(trak.Tkhd.Height >> 16)
		}

		if r.Fragmented {
			if err := countFragmented(f, moov, trak.Tkhd.TrackID, &r); err != nil {
				return Report{}, err
			}
		} else {
			countProgressive(trak.Mdia.Minf.Stbl, &r)
		}
		return r, nil
	}

	return Report{}, ErrNoVideoTrack
}

func isVideo(trak *mp4.TrakBox) bool {
	if trak.Mdia == nil || trak.Mdia.Hdlr == nil || trak.Mdia.Mdhd == nil {
		return false
	}
	if trak.Mdia.Hdlr.HandlerType != "vide" {
		return false
	}
	return trak.Mdia.Minf != nil && trak.Mdia.Minf.Stbl != nil && trak.Mdia.Minf.Stbl.Stsd != nil
}

func codecOf(trak *mp4.TrakBox) Codec {
	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		switch child.Type() {
		case "avc1", "avc3":
			return CodecH264
		case "hvc1", "hev1":
			return CodecHEVC
		case "av01":
			return CodecAV1
		}
	}
	return CodecUnknown
}

func countFragmented(f *mp4.File, moov *mp4.MoovBox, trackID uint32, r *Report) error {
	var trex *mp4.TrexBox
	if moov.Mvex != nil {
		for _, t := range moov.Mvex.Trexs {
			if t.TrackID == trackID {
				trex = t
			}
		}
	}

	for _, seg := range f.Segments {
		for _, frag := range seg.Fragments {
			samples, err := frag.GetFullSamples(trex)
			if err != nil {
				return fmt.Errorf("read fragment samples: %w", err)
			}
			for _, s := range samples {
				r.Samples++
				r.Duration += uint64(s.Dur)
				if s.IsSync() {
					r.SyncSamples++
				}
			}
		}
	}
	return nil
}

func countProgressive(stbl *mp4.StblBox, r *Report) {
	if stbl.Stsz != nil {
		r.Samples = int(stbl.Stsz.SampleNumber)
	}
	if stbl.Stss != nil {
		r.SyncSamples = len(stbl.Stss.SampleNumber)
	} else {
		r.SyncSamples = r.Samples
	}
	if stbl.Stts != nil {
		for i, n := range stbl.Stts.SampleCount {
			r.Duration += uint64(n) * uint64(stbl.Stts.SampleTimeDelta[i])
		}
	}
}
