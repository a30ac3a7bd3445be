// Package orchestrator wires the allocator, encoder, sink and driver from a
// run configuration and executes one encoding run.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"strings"
	"time"

	"github.com/ideamans/go-l10n"

	"github.com/user/planarenc/pkg/adapters/encoderselect"
	"github.com/user/planarenc/pkg/adapters/ggfill"
	"github.com/user/planarenc/pkg/adapters/metrics"
	"github.com/user/planarenc/pkg/adapters/mp4sink"
	"github.com/user/planarenc/pkg/adapters/streamsink"
	"github.com/user/planarenc/pkg/allocator"
	"github.com/user/planarenc/pkg/fill"
	"github.com/user/planarenc/pkg/media"
	"github.com/user/planarenc/pkg/pipeline"
	"github.com/user/planarenc/pkg/ports"
	"github.com/user/planarenc/pkg/session"
)

// Container selects the output file format.
type Container string

const (
	// ContainerAuto picks MP4 for H.264 output to a .mp4/.m4v path and a raw
	// stream otherwise.
	ContainerAuto Container = "auto"
	ContainerMP4  Container = "mp4"
	ContainerRaw  Container = "raw"
)

// Pattern selects the synthesized picture content.
type Pattern string

const (
	PatternGradient Pattern = "gradient"
	PatternCard     Pattern = "card"
	PatternSolid    Pattern = "solid"
)

// DefaultH264Preset is applied to H.264 runs that set no preset option.
const DefaultH264Preset = "slow"

// ErrContainerMismatch is returned when MP4 output is requested for a codec
// the MP4 sink cannot carry.
var ErrContainerMismatch = errors.New("orchestrator: container does not support codec")

// Config contains all configuration for the orchestrator.
type Config struct {
	// Output
	OutputPath  string
	Container   Container
	MetricsPath string // Prometheus textfile, empty = none

	// Encoder selection
	Codec         encoderselect.Codec
	FFmpegPath    string
	AllowFallback bool

	// Picture
	Width       int
	Height      int
	PixelFormat media.PixelFormat
	Alignment   int
	Pattern     Pattern
	Title       string // test card label

	// Timing
	Frames    int
	FrameRate media.Rational
	TimeBase  media.Rational

	// Encoding
	Bitrate          int
	GOPSize          int
	MaxBFrames       int
	GlobalHeader     bool
	KeyframeInterval int
	Options          map[string]string

	// Debug
	DebugFrames int
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Container:     ContainerAuto,
		Codec:         encoderselect.CodecH264,
		AllowFallback: true,

		Width:       640,
		Height:      320,
		PixelFormat: media.FormatNV21,
		Alignment:   allocator.DefaultAlignment,
		Pattern:     PatternGradient,
		Title:       "planarenc",

		Frames:    20,
		FrameRate: media.R(2, 1),
		TimeBase:  media.R(1, 2),

		Bitrate:      400000,
		GOPSize:      3,
		GlobalHeader: true,
	}
}

// EncoderFactory creates the (unopened) encoder for a run.
type EncoderFactory func(cfg Config) (ports.VideoEncoder, encoderselect.Info, error)

// Orchestrator builds and executes encoding runs.
type Orchestrator struct {
	fs       ports.FileSystem
	sink     ports.DebugSink
	logger   ports.Logger
	encoders EncoderFactory
}

// New creates a new Orchestrator.
func New(fs ports.FileSystem, sink ports.DebugSink, logger ports.Logger) *Orchestrator {
	return &Orchestrator{
		fs:     fs,
		sink:   sink,
		logger: logger,
		encoders: func(cfg Config) (ports.VideoEncoder, encoderselect.Info, error) {
			return encoderselect.New(cfg.Codec, encoderselect.Options{
				FFmpegPath:    cfg.FFmpegPath,
				AllowFallback: cfg.AllowFallback,
				Logger:        logger,
			})
		},
	}
}

// WithEncoderFactory replaces the encoder selection.
func (o *Orchestrator) WithEncoderFactory(f EncoderFactory) *Orchestrator {
	o.encoders = f
	return o
}

// Run executes the complete pipeline.
func (o *Orchestrator) Run(ctx context.Context, config Config) (RunResult, error) {
	o.logger.Info(l10n.T("Starting pipeline"))

	encoder, info, err := o.encoders(config)
	if err != nil {
		o.logger.Error(l10n.F("Failed to select encoder: %s", err))
		return RunResult{}, fmt.Errorf("select encoder: %w", err)
	}
	o.logger.Info(l10n.F("Encoder: %s (%s backend)", info.Codec, info.Backend))

	container, err := o.resolveContainer(config, info.Codec)
	if err != nil {
		return RunResult{}, err
	}

	if err := encoder.Open(o.buildEncoderConfig(config, info)); err != nil {
		o.logger.Error(l10n.F("Failed to open encoder: %s", err))
		return RunResult{}, fmt.Errorf("open encoder: %w", err)
	}
	defer func() {
		if err := encoder.Close(); err != nil {
			o.logger.Warn(l10n.F("Failed to close encoder: %s", err))
		}
	}()

	input := o.buildRunInput(config)
	sink, err := o.newSink(config, container, input)
	if err != nil {
		o.logger.Error(l10n.F("Failed to write output: %s", err))
		return RunResult{}, fmt.Errorf("create sink: %w", err)
	}

	alloc := allocator.New(o.logger)
	defer alloc.Purge()

	collectors := metrics.New()
	var stage pipeline.Stage[pipeline.RunInput, pipeline.RunResult] = pipeline.NewDriver(
		alloc,
		encoder,
		sink,
		o.fillFunc(config),
		o.sink,
		o.logger,
		collectors,
	)

	o.logger.Info(l10n.F("Encoding %d frames at %.2f fps", config.Frames, config.FrameRate.Float64()))
	run, err := stage.Execute(ctx, input)
	if err != nil {
		// An aborted run never finalizes; release what the sink holds.
		if c, ok := sink.(io.Closer); ok {
			c.Close()
		}
		o.logger.Error(l10n.F("Failed to encode video: %s", err))
		return RunResult{}, fmt.Errorf("encode: %w", err)
	}
	o.logger.Info(l10n.F("Video encoded: %d packets, %d bytes", run.Stats.Forwarded, run.Stats.Bytes))

	if config.MetricsPath != "" {
		if err := collectors.WriteTextfile(config.MetricsPath); err != nil {
			o.logger.Warn(l10n.F("Failed to write metrics: %s", err))
		}
	}

	fileSize, _ := o.fs.Size(config.OutputPath)

	o.logger.Info(l10n.T("Pipeline completed successfully"))

	return RunResult{
		SessionID:      run.SessionID,
		State:          run.State,
		Codec:          info.Codec,
		Backend:        info.Backend,
		FallbackUsed:   info.FallbackUsed,
		Container:      container,
		OutputPath:     config.OutputPath,
		FileSize:       fileSize,
		Strides:        run.Strides,
		FrameDuration:  run.FrameDuration,
		FrameCount:     len(run.SubmittedPTS),
		Stats:          run.Stats,
		Keyframes:      run.Keyframes,
		StreamDuration: time.Duration(media.Rescale(int64(len(run.SubmittedPTS))*run.FrameDuration, config.TimeBase, media.R(1, int64(time.Second)))),
		Elapsed:        run.Elapsed,
		FlushElapsed:   run.FlushElapsed,
	}, nil
}

func (o *Orchestrator) resolveContainer(config Config, codec encoderselect.Codec) (Container, error) {
	switch config.Container {
	case ContainerRaw:
		return ContainerRaw, nil
	case ContainerMP4:
		if codec != encoderselect.CodecH264 {
			return "", fmt.Errorf("%w: %s in %s", ErrContainerMismatch, codec, ContainerMP4)
		}
		return ContainerMP4, nil
	}

	switch strings.ToLower(filepath.Ext(config.OutputPath)) {
	case ".mp4", ".m4v":
		if codec == encoderselect.CodecH264 {
			return ContainerMP4, nil
		}
		o.logger.Warn(l10n.F("MP4 output requires H.264, writing a raw %s stream", codec))
	}
	return ContainerRaw, nil
}

func (o *Orchestrator) newSink(config Config, container Container, input pipeline.RunInput) (ports.PacketSink, error) {
	if container == ContainerMP4 {
		return mp4sink.New(o.fs, config.OutputPath, mp4sink.Options{
			Width:         config.Width,
			Height:        config.Height,
			TimeBase:      config.TimeBase,
			FrameDuration: media.FrameDuration(input.FrameRate, input.TimeBase),
		}, o.logger), nil
	}
	return streamsink.New(o.fs, config.OutputPath, o.logger)
}

func (o *Orchestrator) buildEncoderConfig(config Config, info encoderselect.Info) ports.EncoderConfig {
	options := maps.Clone(config.Options)
	if options == nil {
		options = map[string]string{}
	}
	if _, ok := options["preset"]; !ok && info.Codec == encoderselect.CodecH264 {
		options["preset"] = DefaultH264Preset
	}

	return ports.EncoderConfig{
		Width:        config.Width,
		Height:       config.Height,
		PixelFormat:  config.PixelFormat,
		TimeBase:     config.TimeBase,
		FrameRate:    config.FrameRate,
		Bitrate:      config.Bitrate,
		GOPSize:      config.GOPSize,
		MaxBFrames:   config.MaxBFrames,
		GlobalHeader: config.GlobalHeader,
		Options:      options,
	}
}

func (o *Orchestrator) buildRunInput(config Config) pipeline.RunInput {
	return pipeline.RunInput{
		Width:            config.Width,
		Height:           config.Height,
		PixelFormat:      config.PixelFormat,
		Alignment:        config.Alignment,
		Frames:           config.Frames,
		FrameRate:        config.FrameRate,
		TimeBase:         config.TimeBase,
		KeyframeInterval: config.KeyframeInterval,
		DebugFrames:      config.DebugFrames,
	}
}

func (o *Orchestrator) fillFunc(config Config) fill.Func {
	switch config.Pattern {
	case PatternCard:
		return ggfill.TestCard(config.Title)
	case PatternSolid:
		return fill.Solid(128)
	default:
		return fill.Gradient
	}
}

// RunResult contains the results of a pipeline run for summary generation.
type RunResult struct {
	SessionID string
	State     session.State

	// Encoder information
	Codec        encoderselect.Codec
	Backend      encoderselect.Backend
	FallbackUsed bool

	// Output information
	Container  Container
	OutputPath string
	FileSize   int64

	// Stream information
	Strides        []int
	FrameDuration  int64 // in time base units
	FrameCount     int
	Stats          session.Stats
	Keyframes      int
	StreamDuration time.Duration

	// Timing information
	Elapsed      time.Duration
	FlushElapsed time.Duration
}
