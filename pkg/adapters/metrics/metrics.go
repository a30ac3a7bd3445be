// Package metrics implements ports.Metrics with Prometheus collectors held
// on a private registry, so independent runs never share counters.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/user/planarenc/pkg/ports"
)

// Namespace prefixes every metric name.
const Namespace = "planarenc"

// Metrics holds the pipeline collectors.
type Metrics struct {
	registry *prometheus.Registry

	FramesSubmitted  prometheus.Counter
	PacketsForwarded *prometheus.CounterVec
	PacketsDropped   prometheus.Counter
	PacketBytes      prometheus.Counter
	PacketSize       prometheus.Histogram
	FlushDuration    prometheus.Histogram
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		FramesSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "frames_submitted_total",
			Help:      "Total number of frames submitted to the encoder",
		}),
		PacketsForwarded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "packets_forwarded_total",
				Help:      "Total number of packets forwarded to the sink",
			},
			[]string{"type"}, // type: key or delta
		),
		PacketsDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "packets_discarded_total",
			Help:      "Total number of spurious encoder packets discarded",
		}),
		PacketBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "packet_bytes_total",
			Help:      "Total payload bytes forwarded to the sink",
		}),
		PacketSize: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "packet_size_bytes",
			Help:      "Size of forwarded packets in bytes",
			Buckets:   prometheus.ExponentialBuckets(256, 2, 12), // 256B to ~512KB
		}),
		FlushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "flush_duration_seconds",
			Help:      "Time spent draining the encoder after end of input",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8), // 1ms to ~16s
		}),
	}
}

func (m *Metrics) FrameSubmitted() {
	m.FramesSubmitted.Inc()
}

func (m *Metrics) PacketForwarded(size int, keyframe bool) {
	kind := "delta"
	if keyframe {
		kind = "key"
	}
	m.PacketsForwarded.WithLabelValues(kind).Inc()
	m.PacketBytes.Add(float64(size))
	m.PacketSize.Observe(float64(size))
}

func (m *Metrics) PacketDiscarded() {
	m.PacketsDropped.Inc()
}

func (m *Metrics) FlushCompleted(d time.Duration) {
	m.FlushDuration.Observe(d.Seconds())
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the current values in the text exposition format,
// suitable for the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}

// Noop discards all observations.
type Noop struct{}

// NewNoop creates a metrics sink that records nothing.
func NewNoop() Noop {
	return Noop{}
}

func (Noop) FrameSubmitted()                {}
func (Noop) PacketForwarded(int, bool)      {}
func (Noop) PacketDiscarded()               {}
func (Noop) FlushCompleted(d time.Duration) {}

var (
	_ ports.Metrics = (*Metrics)(nil)
	_ ports.Metrics = Noop{}
)
