package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/user/planarenc/pkg/adapters/encoderselect"
	"github.com/user/planarenc/pkg/media"
	"github.com/user/planarenc/pkg/orchestrator"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Width != 640 || cfg.Height != 320 {
		t.Errorf("size = %dx%d, want 640x320", cfg.Width, cfg.Height)
	}
	if cfg.PixelFormat != "nv21" {
		t.Errorf("pixel format = %s, want nv21", cfg.PixelFormat)
	}
	if cfg.TimeBase != "1/2" || cfg.FrameRate != "2/1" {
		t.Errorf("timing = %s / %s", cfg.TimeBase, cfg.FrameRate)
	}
	if cfg.Bitrate != 400000 || cfg.GOPSize != 3 || cfg.MaxBFrames != 0 || !cfg.GlobalHeader {
		t.Errorf("rate control = %d/%d/%d/%v", cfg.Bitrate, cfg.GOPSize, cfg.MaxBFrames, cfg.GlobalHeader)
	}
	if cfg.Frames != 20 || cfg.Alignment != 32 {
		t.Errorf("frames = %d, alignment = %d", cfg.Frames, cfg.Alignment)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planarenc.yaml")
	content := `
output: out.mp4
codec: ref
width: 320
time_base: 1/90000
frame_rate: 30000/1001
options:
  quality: "9"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.OutputPath != "out.mp4" || cfg.Codec != "ref" || cfg.Width != 320 {
		t.Errorf("loaded = %+v", cfg)
	}
	if cfg.Height != 320 {
		t.Errorf("height should keep default, got %d", cfg.Height)
	}
	if cfg.Options["quality"] != "9" {
		t.Errorf("options = %v", cfg.Options)
	}

	oc, err := cfg.ToOrchestratorConfig()
	if err != nil {
		t.Fatalf("ToOrchestratorConfig failed: %v", err)
	}
	if oc.TimeBase != media.R(1, 90000) || oc.FrameRate != media.R(30000, 1001) {
		t.Errorf("timing = %s / %s", oc.TimeBase, oc.FrameRate)
	}
	if oc.Codec != encoderselect.CodecRef {
		t.Errorf("codec = %s", oc.Codec)
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("width: [1, 2"), 0644)
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Builder { return NewBuilder().WithOutput("out.h264") }

	if err := valid().Build().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	tests := []struct {
		name string
		cfg  Config
	}{
		{"no output", NewBuilder().Build()},
		{"unknown codec", valid().WithCodec("mpeg2").Build()},
		{"unknown container", valid().WithContainer("avi").Build()},
		{"unknown pattern", valid().WithPattern("noise").Build()},
		{"zero width", valid().WithSize(0, 320).Build()},
		{"unknown format", valid().WithPixelFormat("rgb24").Build()},
		{"alignment not power of two", valid().WithAlignment(24).Build()},
		{"negative frames", valid().WithFrames(-1).Build()},
		{"bad frame rate", valid().WithFrameRate("0/1").Build()},
		{"bad time base", valid().WithTimeBase("1/x").Build()},
		{"negative bitrate", valid().WithBitrate(-1).Build()},
		{"negative B-frames", valid().WithMaxBFrames(-2).Build()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestBuilder(t *testing.T) {
	cfg := NewBuilder().
		WithOutput("out.mp4").
		WithCodec("h264").
		WithContainer("mp4").
		WithSize(1280, 720).
		WithPixelFormat("yuv420p").
		WithFrames(60).
		WithFrameRate("30/1").
		WithTimeBase("1/90000").
		WithGOPSize(30).
		WithMaxBFrames(2).
		WithKeyframeInterval(10).
		WithOption("preset", "veryfast").
		WithPattern("card").
		WithTitle("demo").
		WithDebug("dbg", 3).
		Build()

	oc, err := cfg.ToOrchestratorConfig()
	if err != nil {
		t.Fatalf("ToOrchestratorConfig failed: %v", err)
	}
	if oc.Container != orchestrator.ContainerMP4 || oc.Pattern != orchestrator.PatternCard {
		t.Errorf("container/pattern = %s/%s", oc.Container, oc.Pattern)
	}
	if oc.Width != 1280 || oc.Height != 720 || oc.PixelFormat != media.FormatYUV420P {
		t.Errorf("geometry = %dx%d %s", oc.Width, oc.Height, oc.PixelFormat)
	}
	if oc.GOPSize != 30 || oc.MaxBFrames != 2 || oc.KeyframeInterval != 10 {
		t.Errorf("gop = %d, B = %d, kf = %d", oc.GOPSize, oc.MaxBFrames, oc.KeyframeInterval)
	}
	if oc.Options["preset"] != "veryfast" {
		t.Errorf("options = %v", oc.Options)
	}
	if oc.DebugFrames != 3 {
		t.Errorf("debug frames = %d, want 3", oc.DebugFrames)
	}
}

func TestToOrchestratorConfig_DebugDisabled(t *testing.T) {
	cfg := NewBuilder().WithOutput("out.h264").Build()
	oc, err := cfg.ToOrchestratorConfig()
	if err != nil {
		t.Fatal(err)
	}
	if oc.DebugFrames != 0 {
		t.Errorf("debug frames = %d, want 0 when debug is off", oc.DebugFrames)
	}
}

func TestFrom_CopiesOptions(t *testing.T) {
	base := Defaults()
	base.Options = map[string]string{"preset": "slow"}

	From(base).WithOption("preset", "fast").Build()
	if base.Options["preset"] != "slow" {
		t.Error("builder modified the source options")
	}
}
