package mp4probe

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Eyevinn/mp4ff/mp4"
)

func TestProbeBytes_Invalid(t *testing.T) {
	if _, err := ProbeBytes([]byte("not an mp4 file")); err == nil {
		t.Error("expected error for invalid data")
	}
}

func TestProbeFile_Missing(t *testing.T) {
	if _, err := ProbeFile(filepath.Join(t.TempDir(), "missing.mp4")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestProbeFile_NoVideoTrack(t *testing.T) {
	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(48000, "audio", "und")

	path := filepath.Join(t.TempDir(), "audio.mp4")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := init.Encode(f); err != nil {
		t.Fatal(err)
	}
	f.Close()

	if _, err := ProbeFile(path); !errors.Is(err, ErrNoVideoTrack) {
		t.Errorf("err = %v, want ErrNoVideoTrack", err)
	}
}
