// Package summarizer provides summary generation for encoding runs.
package summarizer

import "time"

// Summary contains all data collected during an encoding run.
type Summary struct {
	// Metadata
	GeneratedAt time.Time `json:"generated_at"`
	SessionID   string    `json:"session_id"`

	// Encoder selection
	Encoder EncoderInfo `json:"encoder"`

	// Encoding settings
	Settings Settings `json:"settings"`

	// Stream statistics
	Stream StreamInfo `json:"stream"`

	// Output file details
	Output OutputInfo `json:"output"`

	// Timing results
	Timing TimingInfo `json:"timing"`
}

// EncoderInfo describes the encoder that produced the stream.
type EncoderInfo struct {
	Codec          string `json:"codec"`
	Backend        string `json:"backend"`
	RequestedCodec string `json:"requested_codec"`
	FallbackUsed   bool   `json:"fallback_used"`
}

// Settings contains the encoding configuration.
type Settings struct {
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	PixelFormat  string `json:"pixel_format"`
	FrameRate    string `json:"frame_rate"`
	TimeBase     string `json:"time_base"`
	Bitrate      int    `json:"bitrate"`
	GOPSize      int    `json:"gop_size"`
	MaxBFrames   int    `json:"max_b_frames"`
	GlobalHeader bool   `json:"global_header"`
}

// StreamInfo contains packet statistics of the run.
type StreamInfo struct {
	Frames        int           `json:"frames"`
	Packets       int           `json:"packets"`
	Keyframes     int           `json:"keyframes"`
	Discarded     int           `json:"discarded"`
	PayloadBytes  int64         `json:"payload_bytes"`
	Strides       []int         `json:"strides"`
	FrameDuration int64         `json:"frame_duration"` // in time base units
	Duration      time.Duration `json:"duration_ns"`
}

// OutputInfo contains information about the output file.
type OutputInfo struct {
	Path      string `json:"path"`
	Container string `json:"container"`
	FileSize  int64  `json:"file_size"`
}

// TimingInfo contains wall-clock measurements.
type TimingInfo struct {
	TotalMs int64 `json:"total_ms"`
	FlushMs int64 `json:"flush_ms"`
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithSession sets the session identifier.
func (b *Builder) WithSession(id string) *Builder {
	b.summary.SessionID = id
	return b
}

// WithEncoder sets encoder information.
func (b *Builder) WithEncoder(encoder EncoderInfo) *Builder {
	b.summary.Encoder = encoder
	return b
}

// WithSettings sets encoding settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// WithStream sets stream statistics.
func (b *Builder) WithStream(stream StreamInfo) *Builder {
	b.summary.Stream = stream
	return b
}

// WithOutput sets output file information.
func (b *Builder) WithOutput(path, container string, fileSize int64) *Builder {
	b.summary.Output = OutputInfo{
		Path:      path,
		Container: container,
		FileSize:  fileSize,
	}
	return b
}

// WithTiming sets timing information.
func (b *Builder) WithTiming(total, flush time.Duration) *Builder {
	b.summary.Timing = TimingInfo{
		TotalMs: total.Milliseconds(),
		FlushMs: flush.Milliseconds(),
	}
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
