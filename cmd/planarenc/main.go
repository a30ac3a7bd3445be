// Package main provides the CLI entry point for planarenc.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/planarenc/pkg/adapters/encoderselect"
	"github.com/user/planarenc/pkg/adapters/filesink"
	"github.com/user/planarenc/pkg/adapters/logger"
	"github.com/user/planarenc/pkg/adapters/mp4probe"
	"github.com/user/planarenc/pkg/adapters/nullsink"
	"github.com/user/planarenc/pkg/adapters/osfilesystem"
	"github.com/user/planarenc/pkg/config"
	"github.com/user/planarenc/pkg/media"
	"github.com/user/planarenc/pkg/orchestrator"
	"github.com/user/planarenc/pkg/ports"
	"github.com/user/planarenc/pkg/summarizer"
)

var version = "dev"

// Flag categories
const (
	catOutput   = "Output"
	catEncoder  = "Encoder"
	catPicture  = "Picture"
	catTiming   = "Timing"
	catRate     = "Rate Control"
	catDebug    = "Debug"
	catLogging  = "Logging"
	catReporter = "Reports"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "planarenc",
		Usage:   l10n.T("Encode synthesized planar video frames and write the packet stream"),
		Version: version,
		Commands: []*cli.Command{
			encodeCommand(),
			probeCommand(),
			formatsCommand(),
			versionCommand(),
		},
		HideVersion: true,
	}
}

func encodeCommand() *cli.Command {
	return &cli.Command{
		Name:        "encode",
		Usage:       l10n.T("Encode generated frames to a file"),
		Description: l10n.T("Generate frames, encode them with the named codec and write the stream to the output file."),
		ArgsUsage:   "<output> [codec]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("YAML configuration file"), Category: l10n.T(catOutput)},
			&cli.StringFlag{Name: "container", Usage: l10n.T("Output container (auto, mp4, raw)"), Category: l10n.T(catOutput)},

			&cli.StringFlag{Name: "ffmpeg", Usage: l10n.T("Path to ffmpeg executable"), Category: l10n.T(catEncoder)},
			&cli.BoolFlag{Name: "no-fallback", Usage: l10n.T("Fail instead of falling back to the reference codec"), Category: l10n.T(catEncoder)},
			&cli.StringSliceFlag{Name: "opt", Aliases: []string{"o"}, Usage: l10n.T("Codec option as key=value (repeatable)"), Category: l10n.T(catEncoder)},

			&cli.IntFlag{Name: "width", Aliases: []string{"W"}, Usage: l10n.T("Frame width (default: 640)"), Category: l10n.T(catPicture)},
			&cli.IntFlag{Name: "height", Aliases: []string{"H"}, Usage: l10n.T("Frame height (default: 320)"), Category: l10n.T(catPicture)},
			&cli.StringFlag{Name: "pix-fmt", Usage: l10n.T("Pixel format (default: nv21)"), Category: l10n.T(catPicture)},
			&cli.IntFlag{Name: "align", Usage: l10n.T("Row alignment in bytes (default: 32)"), Category: l10n.T(catPicture)},
			&cli.StringFlag{Name: "pattern", Usage: l10n.T("Frame content (gradient, card, solid)"), Category: l10n.T(catPicture)},
			&cli.StringFlag{Name: "title", Usage: l10n.T("Label drawn on the test card"), Category: l10n.T(catPicture)},

			&cli.IntFlag{Name: "frames", Aliases: []string{"n"}, Usage: l10n.T("Number of frames (default: 20)"), Category: l10n.T(catTiming)},
			&cli.StringFlag{Name: "rate", Aliases: []string{"r"}, Usage: l10n.T("Frame rate as num/den (default: 2/1)"), Category: l10n.T(catTiming)},
			&cli.StringFlag{Name: "time-base", Usage: l10n.T("Stream time base as num/den (default: 1/2)"), Category: l10n.T(catTiming)},

			&cli.IntFlag{Name: "bitrate", Aliases: []string{"b"}, Usage: l10n.T("Target bitrate in bits/sec (default: 400000)"), Category: l10n.T(catRate)},
			&cli.IntFlag{Name: "gop", Aliases: []string{"g"}, Usage: l10n.T("GOP size (default: 3)"), Category: l10n.T(catRate)},
			&cli.IntFlag{Name: "bframes", Usage: l10n.T("Maximum consecutive B-frames (default: 0)"), Category: l10n.T(catRate)},
			&cli.IntFlag{Name: "keyint", Usage: l10n.T("Force a keyframe every n frames (0 = encoder decides)"), Category: l10n.T(catRate)},
			&cli.BoolFlag{Name: "no-global-header", Usage: l10n.T("Repeat parameter sets in-band instead of a global header"), Category: l10n.T(catRate)},

			&cli.StringFlag{Name: "metrics", Usage: l10n.T("Write Prometheus metrics to a textfile"), Category: l10n.T(catReporter)},
			&cli.StringFlag{Name: "summary", Aliases: []string{"s"}, Usage: l10n.T("Output execution summary to file (Markdown, or JSON for .json)"), Category: l10n.T(catReporter)},

			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: l10n.T("Enable debug output"), Category: l10n.T(catDebug)},
			&cli.StringFlag{Name: "debug-dir", Usage: l10n.T("Directory for debug output"), Category: l10n.T(catDebug)},
			&cli.IntFlag{Name: "debug-frames", Usage: l10n.T("Number of raw frames to save (default: 5)"), Category: l10n.T(catDebug)},

			&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Value: "info", Usage: l10n.T("Log level (debug, info, warn, error)"), Category: l10n.T(catLogging)},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Usage: l10n.T("Suppress all log output"), Category: l10n.T(catLogging)},
		},
		Action: runEncode,
	}
}

func runEncode(c *cli.Context) error {
	if c.NArg() < 1 {
		return errors.New(l10n.T("Output file argument is required"))
	}

	cfg, err := buildConfig(c)
	if err != nil {
		return err
	}
	orchConfig, err := cfg.ToOrchestratorConfig()
	if err != nil {
		return err
	}

	// Create logger
	var log ports.Logger
	if c.Bool("quiet") {
		log = logger.NewNoop()
	} else {
		log = logger.NewConsole(ports.ParseLogLevel(c.String("log-level")))
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn(l10n.T("Interrupted, shutting down..."))
			cancel()
		case <-ctx.Done():
		}
	}()

	fs := osfilesystem.New()

	// Create debug sink
	var sink ports.DebugSink
	if cfg.Debug {
		if err := fs.MkdirAll(cfg.DebugDir); err != nil {
			return fmt.Errorf("create debug directory: %w", err)
		}
		sink = filesink.New(cfg.DebugDir, fs)
	} else {
		sink = nullsink.New()
	}

	log.Info(l10n.F("Encoding %s with %s...", cfg.OutputPath, cfg.Codec))

	orch := orchestrator.New(fs, sink, log)
	result, err := orch.Run(ctx, orchConfig)
	if err != nil {
		return err
	}

	log.Info(l10n.F("Output saved to %s", cfg.OutputPath))

	if cfg.SummaryPath != "" {
		writer := summarizer.NewWriter(fs, summarizer.FormatterFor(cfg.SummaryPath,
			summarizer.WithTranslator(l10n.T),
			summarizer.WithVersion(version),
		))
		if err := writer.Write(cfg.SummaryPath, buildSummary(orchConfig, result)); err != nil {
			log.Warn(l10n.F("Failed to write summary: %s", err))
		} else {
			log.Info(l10n.F("Summary saved to %s", cfg.SummaryPath))
		}
	}

	return nil
}

// buildConfig merges defaults, the optional config file, positional
// arguments and explicitly set flags, in that order.
func buildConfig(c *cli.Context) (config.Config, error) {
	base := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return config.Config{}, fmt.Errorf("load config: %w", err)
		}
		base = loaded
	}

	b := config.From(base).WithOutput(c.Args().Get(0))
	if c.NArg() > 1 {
		b.WithCodec(c.Args().Get(1))
	}

	if c.IsSet("container") {
		b.WithContainer(c.String("container"))
	}
	if c.IsSet("ffmpeg") {
		b.WithFFmpegPath(c.String("ffmpeg"))
	}
	if c.Bool("no-fallback") {
		b.WithFallback(false)
	}
	for _, kv := range c.StringSlice("opt") {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return config.Config{}, fmt.Errorf("%w: option %q is not key=value", config.ErrInvalidConfig, kv)
		}
		b.WithOption(key, value)
	}

	width, height := base.Width, base.Height
	if c.IsSet("width") {
		width = c.Int("width")
	}
	if c.IsSet("height") {
		height = c.Int("height")
	}
	b.WithSize(width, height)
	if c.IsSet("pix-fmt") {
		b.WithPixelFormat(c.String("pix-fmt"))
	}
	if c.IsSet("align") {
		b.WithAlignment(c.Int("align"))
	}
	if c.IsSet("pattern") {
		b.WithPattern(c.String("pattern"))
	}
	if c.IsSet("title") {
		b.WithTitle(c.String("title"))
	}

	if c.IsSet("frames") {
		b.WithFrames(c.Int("frames"))
	}
	if c.IsSet("rate") {
		b.WithFrameRate(c.String("rate"))
	}
	if c.IsSet("time-base") {
		b.WithTimeBase(c.String("time-base"))
	}

	if c.IsSet("bitrate") {
		b.WithBitrate(c.Int("bitrate"))
	}
	if c.IsSet("gop") {
		b.WithGOPSize(c.Int("gop"))
	}
	if c.IsSet("bframes") {
		b.WithMaxBFrames(c.Int("bframes"))
	}
	if c.IsSet("keyint") {
		b.WithKeyframeInterval(c.Int("keyint"))
	}
	if c.Bool("no-global-header") {
		b.WithGlobalHeader(false)
	}

	if c.IsSet("metrics") {
		b.WithMetricsPath(c.String("metrics"))
	}
	if c.IsSet("summary") {
		b.WithSummaryPath(c.String("summary"))
	}

	if c.Bool("debug") {
		dir, frames := base.DebugDir, base.DebugFrames
		if c.IsSet("debug-dir") {
			dir = c.String("debug-dir")
		}
		if c.IsSet("debug-frames") {
			frames = c.Int("debug-frames")
		}
		b.WithDebug(dir, frames)
	}

	return b.Build(), nil
}

func buildSummary(cfg orchestrator.Config, r orchestrator.RunResult) *summarizer.Summary {
	return summarizer.NewBuilder().
		WithSession(r.SessionID).
		WithEncoder(summarizer.EncoderInfo{
			Codec:          string(r.Codec),
			Backend:        string(r.Backend),
			RequestedCodec: string(cfg.Codec),
			FallbackUsed:   r.FallbackUsed,
		}).
		WithSettings(summarizer.Settings{
			Width:        cfg.Width,
			Height:       cfg.Height,
			PixelFormat:  string(cfg.PixelFormat),
			FrameRate:    cfg.FrameRate.String(),
			TimeBase:     cfg.TimeBase.String(),
			Bitrate:      cfg.Bitrate,
			GOPSize:      cfg.GOPSize,
			MaxBFrames:   cfg.MaxBFrames,
			GlobalHeader: cfg.GlobalHeader,
		}).
		WithStream(summarizer.StreamInfo{
			Frames:        r.FrameCount,
			Packets:       r.Stats.Forwarded,
			Keyframes:     r.Keyframes,
			Discarded:     r.Stats.Discarded,
			PayloadBytes:  r.Stats.Bytes,
			Strides:       r.Strides,
			FrameDuration: r.FrameDuration,
			Duration:      r.StreamDuration,
		}).
		WithOutput(r.OutputPath, string(r.Container), r.FileSize).
		WithTiming(r.Elapsed, r.FlushElapsed).
		Build()
}

func probeCommand() *cli.Command {
	return &cli.Command{
		Name:      "probe",
		Usage:     l10n.T("Inspect the video track of an MP4 file"),
		ArgsUsage: "<file.mp4>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: l10n.T("Print the report as JSON")},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return errors.New(l10n.T("MP4 file argument is required"))
			}
			report, err := mp4probe.ProbeFile(c.Args().First())
			if err != nil {
				return err
			}

			w := c.App.Writer
			if c.Bool("json") {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			fmt.Fprintf(w, "%s: %s\n", l10n.T("Codec"), report.Codec)
			fmt.Fprintf(w, "%s: %dx%d\n", l10n.T("Frame Size"), report.Width, report.Height)
			fmt.Fprintf(w, "%s: %d\n", l10n.T("Timescale"), report.Timescale)
			fmt.Fprintf(w, "%s: %v\n", l10n.T("Fragmented"), report.Fragmented)
			fmt.Fprintf(w, "%s: %d (%s: %d)\n", l10n.T("Samples"), report.Samples, l10n.T("Keyframes"), report.SyncSamples)
			fmt.Fprintf(w, "%s: %d\n", l10n.T("Duration"), report.Duration)
			return nil
		},
	}
}

func formatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "formats",
		Usage: l10n.T("List supported pixel formats and codecs"),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "ffmpeg", Usage: l10n.T("Path to ffmpeg executable")},
		},
		Action: func(c *cli.Context) error {
			w := c.App.Writer

			fmt.Fprintln(w, l10n.T("Pixel formats:"))
			for _, f := range media.Formats() {
				desc, _ := media.LookupFormat(f)
				fmt.Fprintf(w, "  %-12s %d %s\n", f, desc.PlaneCount(), l10n.T("planes"))
			}

			fmt.Fprintln(w, l10n.T("Codecs:"))
			for _, codec := range encoderselect.Codecs() {
				available := true
				if codec == encoderselect.CodecH264 {
					available = encoderselect.IsH264Available(c.String("ffmpeg"))
				}
				status := l10n.T("available")
				if !available {
					status = l10n.T("unavailable")
				}
				fmt.Fprintf(w, "  %-12s %s\n", codec, status)
			}
			return nil
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: l10n.T("Show version information"),
		Action: func(c *cli.Context) error {
			fmt.Fprintln(c.App.Writer, l10n.F("planarenc version %s", version))
			return nil
		},
	}
}
