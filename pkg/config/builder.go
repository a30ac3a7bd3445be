package config

import "maps"

// Builder provides a fluent interface for building a Config on top of
// Defaults or a loaded file.
type Builder struct {
	config Config
}

// NewBuilder creates a Builder starting from Defaults.
func NewBuilder() *Builder {
	return &Builder{config: Defaults()}
}

// From creates a Builder starting from cfg.
func From(cfg Config) *Builder {
	cfg.Options = maps.Clone(cfg.Options)
	return &Builder{config: cfg}
}

// Build returns the configuration.
func (b *Builder) Build() Config {
	cfg := b.config
	cfg.Options = maps.Clone(cfg.Options)
	return cfg
}

func (b *Builder) WithOutput(path string) *Builder {
	b.config.OutputPath = path
	return b
}

func (b *Builder) WithContainer(container string) *Builder {
	b.config.Container = container
	return b
}

func (b *Builder) WithCodec(codec string) *Builder {
	b.config.Codec = codec
	return b
}

func (b *Builder) WithFFmpegPath(path string) *Builder {
	b.config.FFmpegPath = path
	return b
}

func (b *Builder) WithFallback(enabled bool) *Builder {
	b.config.Fallback = enabled
	return b
}

func (b *Builder) WithSize(width, height int) *Builder {
	b.config.Width = width
	b.config.Height = height
	return b
}

func (b *Builder) WithPixelFormat(format string) *Builder {
	b.config.PixelFormat = format
	return b
}

func (b *Builder) WithAlignment(alignment int) *Builder {
	b.config.Alignment = alignment
	return b
}

func (b *Builder) WithPattern(pattern string) *Builder {
	b.config.Pattern = pattern
	return b
}

func (b *Builder) WithTitle(title string) *Builder {
	b.config.Title = title
	return b
}

func (b *Builder) WithFrames(frames int) *Builder {
	b.config.Frames = frames
	return b
}

func (b *Builder) WithFrameRate(rate string) *Builder {
	b.config.FrameRate = rate
	return b
}

func (b *Builder) WithTimeBase(timeBase string) *Builder {
	b.config.TimeBase = timeBase
	return b
}

func (b *Builder) WithBitrate(bitsPerSec int) *Builder {
	b.config.Bitrate = bitsPerSec
	return b
}

func (b *Builder) WithGOPSize(size int) *Builder {
	b.config.GOPSize = size
	return b
}

func (b *Builder) WithMaxBFrames(n int) *Builder {
	b.config.MaxBFrames = n
	return b
}

func (b *Builder) WithGlobalHeader(enabled bool) *Builder {
	b.config.GlobalHeader = enabled
	return b
}

func (b *Builder) WithKeyframeInterval(n int) *Builder {
	b.config.KeyframeInterval = n
	return b
}

// WithOption sets one codec-specific key/value option.
func (b *Builder) WithOption(key, value string) *Builder {
	if b.config.Options == nil {
		b.config.Options = map[string]string{}
	}
	b.config.Options[key] = value
	return b
}

func (b *Builder) WithMetricsPath(path string) *Builder {
	b.config.MetricsPath = path
	return b
}

func (b *Builder) WithSummaryPath(path string) *Builder {
	b.config.SummaryPath = path
	return b
}

func (b *Builder) WithDebug(dir string, frames int) *Builder {
	b.config.Debug = true
	b.config.DebugDir = dir
	b.config.DebugFrames = frames
	return b
}
