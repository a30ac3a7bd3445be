package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.FrameSubmitted()
	m.FrameSubmitted()
	m.PacketForwarded(1000, true)
	m.PacketForwarded(200, false)
	m.PacketForwarded(300, false)
	m.PacketDiscarded()
	m.FlushCompleted(15 * time.Millisecond)

	if got := testutil.ToFloat64(m.FramesSubmitted); got != 2 {
		t.Errorf("frames submitted = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.PacketsForwarded.WithLabelValues("key")); got != 1 {
		t.Errorf("key packets = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.PacketsForwarded.WithLabelValues("delta")); got != 2 {
		t.Errorf("delta packets = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.PacketBytes); got != 1500 {
		t.Errorf("bytes = %v, want 1500", got)
	}
	if got := testutil.ToFloat64(m.PacketsDropped); got != 1 {
		t.Errorf("discarded = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(m.FlushDuration); n != 1 {
		t.Errorf("flush histogram series = %d, want 1", n)
	}
}

func TestMetrics_PrivateRegistries(t *testing.T) {
	a, b := New(), New()
	a.FrameSubmitted()
	if got := testutil.ToFloat64(b.FramesSubmitted); got != 0 {
		t.Errorf("second instance saw %v frames, want 0", got)
	}
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := New()
	m.FrameSubmitted()

	path := filepath.Join(t.TempDir(), "planarenc.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "planarenc_frames_submitted_total 1") {
		t.Errorf("textfile missing counter:\n%s", data)
	}
}

func TestNoop(t *testing.T) {
	n := NewNoop()
	n.FrameSubmitted()
	n.PacketForwarded(10, true)
	n.PacketDiscarded()
	n.FlushCompleted(time.Second)
}
