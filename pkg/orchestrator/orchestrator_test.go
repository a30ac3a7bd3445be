package orchestrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/user/planarenc/pkg/adapters/encoderselect"
	"github.com/user/planarenc/pkg/adapters/logger"
	"github.com/user/planarenc/pkg/adapters/nullsink"
	"github.com/user/planarenc/pkg/adapters/refencoder"
	"github.com/user/planarenc/pkg/media"
	"github.com/user/planarenc/pkg/mocks"
	"github.com/user/planarenc/pkg/ports"
	"github.com/user/planarenc/pkg/session"
)

func refConfig(output string) Config {
	cfg := DefaultConfig()
	cfg.Codec = encoderselect.CodecRef
	cfg.OutputPath = output
	return cfg
}

func mockFactory(enc *mocks.VideoEncoder, codec encoderselect.Codec) EncoderFactory {
	return func(cfg Config) (ports.VideoEncoder, encoderselect.Info, error) {
		return enc, encoderselect.Info{Codec: codec, Backend: encoderselect.BackendInProcess, RequestedCodec: codec}, nil
	}
}

func TestRun_ReferenceCodecRawStream(t *testing.T) {
	fs := mocks.NewFileSystem()
	orch := New(fs, nullsink.New(), logger.NewNoop())

	result, err := orch.Run(context.Background(), refConfig("out.ref"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.State != session.Closed {
		t.Errorf("state = %s, want Closed", result.State)
	}
	if result.Container != ContainerRaw {
		t.Errorf("container = %s, want raw", result.Container)
	}
	if result.FrameCount != 20 || result.Stats.Forwarded != 20 {
		t.Errorf("frames = %d, forwarded = %d, want 20/20", result.FrameCount, result.Stats.Forwarded)
	}
	if result.FrameDuration != 1 {
		t.Errorf("frame duration = %d, want 1", result.FrameDuration)
	}
	if got := result.StreamDuration.Seconds(); got != 10 {
		t.Errorf("stream duration = %vs, want 10s", got)
	}
	if want := []int{640, 640}; len(result.Strides) != 2 || result.Strides[0] != want[0] || result.Strides[1] != want[1] {
		t.Errorf("strides = %v, want %v", result.Strides, want)
	}

	data, ok := fs.GetFile("out.ref")
	if !ok {
		t.Fatal("output not written")
	}
	if result.FileSize != int64(len(data)) {
		t.Errorf("file size = %d, want %d", result.FileSize, len(data))
	}
	pkts, err := refencoder.SplitStream(data)
	if err != nil {
		t.Fatalf("SplitStream failed: %v", err)
	}
	if len(pkts) != 20 {
		t.Errorf("stream holds %d packets, want 20", len(pkts))
	}
}

func TestRun_AutoContainerFallsBackToRaw(t *testing.T) {
	fs := mocks.NewFileSystem()
	orch := New(fs, nullsink.New(), logger.NewNoop())

	result, err := orch.Run(context.Background(), refConfig("out.mp4"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Container != ContainerRaw {
		t.Errorf("container = %s, want raw", result.Container)
	}
}

func TestRun_MP4RequiresH264(t *testing.T) {
	cfg := refConfig("out.mp4")
	cfg.Container = ContainerMP4

	orch := New(mocks.NewFileSystem(), nullsink.New(), logger.NewNoop())
	if _, err := orch.Run(context.Background(), cfg); !errors.Is(err, ErrContainerMismatch) {
		t.Errorf("err = %v, want ErrContainerMismatch", err)
	}
}

func TestRun_EncoderConfig(t *testing.T) {
	enc := &mocks.VideoEncoder{}
	cfg := DefaultConfig()
	cfg.OutputPath = "out.h264"
	cfg.MaxBFrames = 2
	cfg.Options = map[string]string{"tune": "zerolatency"}

	orch := New(mocks.NewFileSystem(), nullsink.New(), logger.NewNoop()).
		WithEncoderFactory(mockFactory(enc, encoderselect.CodecH264))
	if _, err := orch.Run(context.Background(), cfg); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	got := enc.Config
	if got.Width != 640 || got.Height != 320 || got.PixelFormat != media.FormatNV21 {
		t.Errorf("geometry = %dx%d %s", got.Width, got.Height, got.PixelFormat)
	}
	if got.TimeBase != media.R(1, 2) || got.FrameRate != media.R(2, 1) {
		t.Errorf("timing = %s / %s", got.TimeBase, got.FrameRate)
	}
	if got.Bitrate != 400000 || got.GOPSize != 3 || got.MaxBFrames != 2 || !got.GlobalHeader {
		t.Errorf("rate control = %+v", got)
	}
	if got.Options["preset"] != DefaultH264Preset {
		t.Errorf("preset = %q, want %q", got.Options["preset"], DefaultH264Preset)
	}
	if got.Options["tune"] != "zerolatency" {
		t.Errorf("tune option lost: %v", got.Options)
	}
	if _, ok := cfg.Options["preset"]; ok {
		t.Error("caller's option map was modified")
	}
	if !enc.CloseCalled {
		t.Error("encoder not closed")
	}
}

func TestRun_NoPresetForOtherCodecs(t *testing.T) {
	enc := &mocks.VideoEncoder{}
	orch := New(mocks.NewFileSystem(), nullsink.New(), logger.NewNoop()).
		WithEncoderFactory(mockFactory(enc, encoderselect.CodecRef))
	if _, err := orch.Run(context.Background(), refConfig("out.ref")); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if _, ok := enc.Config.Options["preset"]; ok {
		t.Error("preset should only be applied to H.264")
	}
}

func TestRun_OpenFailure(t *testing.T) {
	enc := &mocks.VideoEncoder{
		OpenFunc: func(cfg ports.EncoderConfig) error { return errors.New("no such codec") },
	}
	fs := mocks.NewFileSystem()
	orch := New(fs, nullsink.New(), logger.NewNoop()).
		WithEncoderFactory(mockFactory(enc, encoderselect.CodecRef))

	if _, err := orch.Run(context.Background(), refConfig("out.ref")); err == nil {
		t.Fatal("expected error")
	}
	if _, ok := fs.GetFile("out.ref"); ok {
		t.Error("no output should be created when the encoder fails to open")
	}
}

func TestRun_EncodeFailureReleasesSink(t *testing.T) {
	enc := &mocks.VideoEncoder{
		PushFrameFunc: func(frame *media.Frame) error { return errors.New("device lost") },
	}
	fs := mocks.NewFileSystem()
	orch := New(fs, nullsink.New(), logger.NewNoop()).
		WithEncoderFactory(mockFactory(enc, encoderselect.CodecRef))

	_, err := orch.Run(context.Background(), refConfig("out.ref"))
	if !errors.Is(err, session.ErrEncodeFailure) {
		t.Fatalf("err = %v, want ErrEncodeFailure", err)
	}
	if !enc.CloseCalled {
		t.Error("encoder not closed")
	}
	if data, ok := fs.GetFile("out.ref"); !ok || len(data) != 0 {
		t.Errorf("sink should be closed empty, got %v (%v)", data, ok)
	}
}

func TestRun_SelectFailure(t *testing.T) {
	orch := New(mocks.NewFileSystem(), nullsink.New(), logger.NewNoop()).
		WithEncoderFactory(func(cfg Config) (ports.VideoEncoder, encoderselect.Info, error) {
			return nil, encoderselect.Info{}, encoderselect.ErrNoEncoderAvailable
		})
	if _, err := orch.Run(context.Background(), refConfig("out.ref")); !errors.Is(err, encoderselect.ErrNoEncoderAvailable) {
		t.Errorf("err = %v, want ErrNoEncoderAvailable", err)
	}
}

func TestRun_MetricsTextfile(t *testing.T) {
	cfg := refConfig("out.ref")
	cfg.MetricsPath = filepath.Join(t.TempDir(), "planarenc.prom")

	orch := New(mocks.NewFileSystem(), nullsink.New(), logger.NewNoop())
	if _, err := orch.Run(context.Background(), cfg); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	data, err := os.ReadFile(cfg.MetricsPath)
	if err != nil {
		t.Fatalf("metrics not written: %v", err)
	}
	for _, want := range []string{
		"planarenc_frames_submitted_total 20",
		`planarenc_packets_forwarded_total{type="key"}`,
		"planarenc_flush_duration_seconds_count 1",
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestRun_TestCardWithDebug(t *testing.T) {
	cfg := refConfig("out.ref")
	cfg.Pattern = PatternCard
	cfg.Frames = 4
	cfg.DebugFrames = 2

	debug := mocks.NewDebugSink(true)
	orch := New(mocks.NewFileSystem(), debug, logger.NewNoop())
	if _, err := orch.Run(context.Background(), cfg); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(debug.Frames) != 2 {
		t.Errorf("debug frames = %d, want 2", len(debug.Frames))
	}
	if want := 640*320 + 640*160; len(debug.Frames[0]) != want {
		t.Errorf("debug frame size = %d, want %d", len(debug.Frames[0]), want)
	}
	if len(debug.PacketLog) == 0 {
		t.Error("packet log not saved")
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	orch := New(mocks.NewFileSystem(), nullsink.New(), logger.NewNoop())
	if _, err := orch.Run(ctx, refConfig("out.ref")); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
