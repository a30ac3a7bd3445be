package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/user/planarenc/pkg/adapters/logger"
	"github.com/user/planarenc/pkg/adapters/mp4probe"
	"github.com/user/planarenc/pkg/adapters/mp4sink"
	"github.com/user/planarenc/pkg/adapters/osfilesystem"
	"github.com/user/planarenc/pkg/media"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"planarenc"}, args...))
	return out.String(), err
}

func TestEncode_RefRawStream(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "out.ref")
	summary := filepath.Join(dir, "summary.md")
	metrics := filepath.Join(dir, "metrics.prom")

	_, err := runApp(t, "encode", "-Q",
		"-n", "6",
		"--pattern", "solid",
		"--summary", summary,
		"--metrics", metrics,
		output, "ref")
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	info, err := os.Stat(output)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if info.Size() == 0 {
		t.Error("output is empty")
	}

	md, err := os.ReadFile(summary)
	if err != nil {
		t.Fatalf("summary not written: %v", err)
	}
	if !strings.HasPrefix(string(md), "# ") {
		t.Errorf("summary does not start with a heading:\n%s", md)
	}
	if !strings.Contains(string(md), "640x320") {
		t.Errorf("summary missing frame size:\n%s", md)
	}

	prom, err := os.ReadFile(metrics)
	if err != nil {
		t.Fatalf("metrics not written: %v", err)
	}
	if !strings.Contains(string(prom), "planarenc_frames_submitted_total 6") {
		t.Errorf("metrics missing submitted frame count:\n%s", prom)
	}
}

func TestEncode_ConfigFileAndOverrides(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "planarenc.yaml")
	yaml := "codec: ref\nframes: 4\nwidth: 64\nheight: 32\npattern: gradient\n"
	if err := os.WriteFile(cfgPath, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(dir, "out.ref")

	summary := filepath.Join(dir, "summary.json")

	_, err := runApp(t, "encode", "-Q", "-c", cfgPath, "-W", "96", "-o", "quality=1", "-s", summary, output)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("output not written: %v", err)
	}

	data, err := os.ReadFile(summary)
	if err != nil {
		t.Fatalf("summary not written: %v", err)
	}
	var decoded struct {
		Encoder  struct{ Codec string }       `json:"encoder"`
		Settings struct{ Width, Height int } `json:"settings"`
		Stream   struct{ Frames int }        `json:"stream"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("summary is not JSON: %v", err)
	}
	if decoded.Encoder.Codec != "ref" || decoded.Settings.Width != 96 || decoded.Settings.Height != 32 || decoded.Stream.Frames != 4 {
		t.Errorf("unexpected summary %+v", decoded)
	}
}

func TestEncode_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
	}{
		{"missing output", []string{"encode", "-Q"}},
		{"unknown codec", []string{"encode", "-Q", filepath.Join(dir, "a.bin"), "vp9"}},
		{"bad option", []string{"encode", "-Q", "-o", "novalue", filepath.Join(dir, "b.bin"), "ref"}},
		{"bad rate", []string{"encode", "-Q", "-r", "0/1", filepath.Join(dir, "c.bin"), "ref"}},
		{"missing config", []string{"encode", "-Q", "-c", filepath.Join(dir, "none.yaml"), filepath.Join(dir, "d.bin")}},
		{"mp4 with ref", []string{"encode", "-Q", "--container", "mp4", filepath.Join(dir, "e.mp4"), "ref"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runApp(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestProbe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp4")
	writeTestMP4(t, path)

	out, err := runApp(t, "probe", "--json", path)
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}

	var report mp4probe.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	if report.Codec != mp4probe.CodecH264 {
		t.Errorf("Codec = %q, want %q", report.Codec, mp4probe.CodecH264)
	}
	if report.Samples != 4 || report.SyncSamples != 2 {
		t.Errorf("Samples = %d (sync %d), want 4 (sync 2)", report.Samples, report.SyncSamples)
	}

	out, err = runApp(t, "probe", path)
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if !strings.Contains(out, "h264") || !strings.Contains(out, "640x320") {
		t.Errorf("unexpected text report:\n%s", out)
	}
}

func TestProbe_Errors(t *testing.T) {
	if _, err := runApp(t, "probe"); err == nil {
		t.Error("expected error without file argument")
	}
	if _, err := runApp(t, "probe", filepath.Join(t.TempDir(), "missing.mp4")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFormats(t *testing.T) {
	out, err := runApp(t, "formats", "--ffmpeg", filepath.Join(t.TempDir(), "no-ffmpeg"))
	if err != nil {
		t.Fatalf("formats failed: %v", err)
	}
	for _, want := range []string{"nv12", "nv21", "yuv420p", "h264", "ref"} {
		if !strings.Contains(out, want) {
			t.Errorf("formats output missing %q:\n%s", want, out)
		}
	}
}

func TestVersion(t *testing.T) {
	out, err := runApp(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, version) {
		t.Errorf("version output %q does not contain %q", out, version)
	}
}

// writeTestMP4 muxes four baseline H.264 access units without invoking an
// encoder.
func writeTestMP4(t *testing.T, path string) {
	t.Helper()
	sps := []byte{0x67, 0x42, 0xC0, 0x1E, 0xDA, 0x02, 0x80, 0xA6, 0x40}
	pps := []byte{0x68, 0xCE, 0x3C, 0x80}
	annexB := func(nalus ...[]byte) []byte {
		var out []byte
		for _, n := range nalus {
			out = append(out, 0, 0, 0, 1)
			out = append(out, n...)
		}
		return out
	}

	sink := mp4sink.New(osfilesystem.New(), path, mp4sink.Options{
		Width:         640,
		Height:        320,
		TimeBase:      media.R(1, 2),
		FrameDuration: 1,
	}, logger.NewNoop())

	for i := int64(0); i < 4; i++ {
		pkt := media.Packet{Data: annexB([]byte{0x41, 0x9A, 0x02, 0x11}), PTS: i, DTS: i}
		if i%2 == 0 {
			pkt.Data = annexB(sps, pps, []byte{0x65, 0x88, 0x84, 0x00, 0x33})
			pkt.Keyframe = true
		}
		if err := sink.WritePacket(pkt); err != nil {
			t.Fatalf("WritePacket: %v", err)
		}
	}
	if err := sink.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
}
