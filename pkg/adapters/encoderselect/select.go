// Package encoderselect picks a video encoder by codec name, with fallback
// to the in-process reference encoder when H.264 is unavailable.
package encoderselect

import (
	"errors"
	"fmt"
	"strings"

	"github.com/user/planarenc/pkg/adapters/ffmpegencoder"
	"github.com/user/planarenc/pkg/adapters/refencoder"
	"github.com/user/planarenc/pkg/ports"
)

// Codec represents the video codec type.
type Codec string

const (
	// CodecH264 represents H.264/AVC via libx264.
	CodecH264 Codec = "h264"
	// CodecRef represents the lossless reference codec.
	CodecRef Codec = "ref"
)

// Backend represents the encoding backend used.
type Backend string

const (
	// BackendFFmpeg represents an external ffmpeg process.
	BackendFFmpeg Backend = "ffmpeg"
	// BackendInProcess represents the pure Go reference encoder.
	BackendInProcess Backend = "inprocess"
)

// Info contains information about the selected encoder.
type Info struct {
	// Codec is the actual codec being used.
	Codec Codec
	// Backend is the encoding backend being used.
	Backend Backend
	// RequestedCodec is the codec that was originally requested.
	RequestedCodec Codec
	// FallbackUsed indicates whether a fallback occurred.
	FallbackUsed bool
}

// Options configures encoder selection.
type Options struct {
	// FFmpegPath is an optional custom path to the ffmpeg binary.
	FFmpegPath string
	// AllowFallback enables fallback to the reference codec when H.264 is
	// not available.
	AllowFallback bool
	// Logger is passed to the encoder and used to log fallback warnings.
	Logger ports.Logger
}

var (
	// ErrNoEncoderAvailable is returned when no encoder is available.
	ErrNoEncoderAvailable = errors.New("encoderselect: no encoder available")

	// ErrUnknownCodec is returned for a codec name that is not recognized.
	ErrUnknownCodec = errors.New("encoderselect: unknown codec")
)

// ParseCodec maps a codec name as typed on the command line to a Codec.
func ParseCodec(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "h264", "libx264", "avc", "x264":
		return CodecH264, nil
	case "ref", "reference":
		return CodecRef, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}

// Codecs returns the supported codec names.
func Codecs() []Codec {
	return []Codec{CodecH264, CodecRef}
}

// New creates an encoder for preferred.
//
// The selection flow for H.264:
//  1. Try the FFmpeg encoder
//  2. If AllowFallback is true, fall back to the reference encoder
func New(preferred Codec, opts Options) (ports.VideoEncoder, Info, error) {
	info := Info{RequestedCodec: preferred}

	switch preferred {
	case CodecH264:
		return selectH264Encoder(opts, info)
	case CodecRef:
		return refencoder.New(opts.Logger), Info{
			Codec:          CodecRef,
			Backend:        BackendInProcess,
			RequestedCodec: CodecRef,
		}, nil
	default:
		return nil, Info{}, fmt.Errorf("%w: %q", ErrUnknownCodec, preferred)
	}
}

func selectH264Encoder(opts Options, info Info) (ports.VideoEncoder, Info, error) {
	if ffmpegencoder.IsAvailable(opts.FFmpegPath) {
		return ffmpegencoder.New(opts.FFmpegPath, opts.Logger), Info{
			Codec:          CodecH264,
			Backend:        BackendFFmpeg,
			RequestedCodec: info.RequestedCodec,
		}, nil
	}

	if !opts.AllowFallback {
		return nil, Info{}, ErrNoEncoderAvailable
	}

	opts.Logger.Warn("H.264 encoder not available, falling back to the reference codec")

	return refencoder.New(opts.Logger), Info{
		Codec:          CodecRef,
		Backend:        BackendInProcess,
		RequestedCodec: info.RequestedCodec,
		FallbackUsed:   true,
	}, nil
}

// IsH264Available checks if H.264 encoding is available.
func IsH264Available(ffmpegPath string) bool {
	return ffmpegencoder.IsAvailable(ffmpegPath)
}
