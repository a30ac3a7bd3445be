// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"maps"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/user/planarenc/pkg/adapters/encoderselect"
	"github.com/user/planarenc/pkg/media"
	"github.com/user/planarenc/pkg/orchestrator"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config represents the full configuration for planarenc.
type Config struct {
	// Output
	OutputPath  string `yaml:"output"`
	Container   string `yaml:"container"`
	MetricsPath string `yaml:"metrics_path"`
	SummaryPath string `yaml:"summary_path"`

	// Encoder
	Codec      string `yaml:"codec"`
	FFmpegPath string `yaml:"ffmpeg_path"`
	Fallback   bool   `yaml:"fallback"`

	// Picture
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	PixelFormat string `yaml:"pixel_format"`
	Alignment   int    `yaml:"alignment"`
	Pattern     string `yaml:"pattern"`
	Title       string `yaml:"title"`

	// Timing, rationals written as "num/den"
	Frames    int    `yaml:"frames"`
	FrameRate string `yaml:"frame_rate"`
	TimeBase  string `yaml:"time_base"`

	// Encoding
	Bitrate          int               `yaml:"bitrate"`
	GOPSize          int               `yaml:"gop_size"`
	MaxBFrames       int               `yaml:"max_b_frames"`
	GlobalHeader     bool              `yaml:"global_header"`
	KeyframeInterval int               `yaml:"keyframe_interval"`
	Options          map[string]string `yaml:"options"`

	// Debug
	Debug       bool   `yaml:"debug"`
	DebugDir    string `yaml:"debug_dir"`
	DebugFrames int    `yaml:"debug_frames"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Container: string(orchestrator.ContainerAuto),

		Codec:    string(encoderselect.CodecH264),
		Fallback: true,

		Width:       640,
		Height:      320,
		PixelFormat: string(media.FormatNV21),
		Alignment:   32,
		Pattern:     string(orchestrator.PatternGradient),
		Title:       "planarenc",

		Frames:    20,
		FrameRate: "2/1",
		TimeBase:  "1/2",

		Bitrate:      400000,
		GOPSize:      3,
		MaxBFrames:   0,
		GlobalHeader: true,

		DebugDir:    "./debug",
		DebugFrames: 5,
	}
}

// LoadFromFile loads configuration from a YAML file. Keys missing from the
// file keep their default values.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks every field and reports the first problem found.
func (c Config) Validate() error {
	_, err := c.ToOrchestratorConfig()
	return err
}

// ToOrchestratorConfig converts Config to orchestrator.Config.
func (c Config) ToOrchestratorConfig() (orchestrator.Config, error) {
	invalid := func(format string, args ...any) (orchestrator.Config, error) {
		return orchestrator.Config{}, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...)
	}

	if c.OutputPath == "" {
		return invalid("output path is required")
	}
	codec, err := encoderselect.ParseCodec(c.Codec)
	if err != nil {
		return invalid("%v", err)
	}
	switch orchestrator.Container(c.Container) {
	case orchestrator.ContainerAuto, orchestrator.ContainerMP4, orchestrator.ContainerRaw:
	default:
		return invalid("unknown container %q", c.Container)
	}
	switch orchestrator.Pattern(c.Pattern) {
	case orchestrator.PatternGradient, orchestrator.PatternCard, orchestrator.PatternSolid:
	default:
		return invalid("unknown pattern %q", c.Pattern)
	}

	if c.Width <= 0 || c.Height <= 0 {
		return invalid("size %dx%d", c.Width, c.Height)
	}
	format := media.PixelFormat(c.PixelFormat)
	if _, ok := media.LookupFormat(format); !ok {
		return invalid("unknown pixel format %q", c.PixelFormat)
	}
	if c.Alignment <= 0 || c.Alignment&(c.Alignment-1) != 0 {
		return invalid("alignment %d is not a positive power of two", c.Alignment)
	}

	if c.Frames < 0 {
		return invalid("frames %d", c.Frames)
	}
	frameRate, err := media.ParseRational(c.FrameRate)
	if err != nil {
		return invalid("frame rate: %v", err)
	}
	timeBase, err := media.ParseRational(c.TimeBase)
	if err != nil {
		return invalid("time base: %v", err)
	}

	if c.Bitrate < 0 || c.GOPSize < 0 || c.MaxBFrames < 0 || c.KeyframeInterval < 0 {
		return invalid("bitrate, gop size, max B-frames and keyframe interval must not be negative")
	}
	if c.DebugFrames < 0 {
		return invalid("debug frames %d", c.DebugFrames)
	}

	debugFrames := 0
	if c.Debug {
		debugFrames = c.DebugFrames
	}

	return orchestrator.Config{
		OutputPath:  c.OutputPath,
		Container:   orchestrator.Container(c.Container),
		MetricsPath: c.MetricsPath,

		Codec:         codec,
		FFmpegPath:    c.FFmpegPath,
		AllowFallback: c.Fallback,

		Width:       c.Width,
		Height:      c.Height,
		PixelFormat: format,
		Alignment:   c.Alignment,
		Pattern:     orchestrator.Pattern(c.Pattern),
		Title:       c.Title,

		Frames:    c.Frames,
		FrameRate: frameRate,
		TimeBase:  timeBase,

		Bitrate:          c.Bitrate,
		GOPSize:          c.GOPSize,
		MaxBFrames:       c.MaxBFrames,
		GlobalHeader:     c.GlobalHeader,
		KeyframeInterval: c.KeyframeInterval,
		Options:          maps.Clone(c.Options),

		DebugFrames: debugFrames,
	}, nil
}
