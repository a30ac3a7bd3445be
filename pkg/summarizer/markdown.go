package summarizer

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MarkdownFormatter renders a Summary as a Markdown document.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator sets the function used to translate labels.
func WithTranslator(t func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.translate = t
	}
}

// WithVersion adds the tool version to the footer.
func WithVersion(version string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = version
	}
}

// NewMarkdownFormatter creates a MarkdownFormatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{
		translate: func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements the Formatter interface.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t("Encoding Summary"))
	if s.SessionID != "" {
		fmt.Fprintf(&b, "%s: `%s`\n\n", t("Session"), s.SessionID)
	}

	fmt.Fprintf(&b, "## %s\n\n", t("Encoder"))
	row := tableWriter(&b, t)
	row("Codec", s.Encoder.Codec)
	row("Backend", s.Encoder.Backend)
	if s.Encoder.FallbackUsed {
		row("Fallback", fmt.Sprintf("%s → %s", s.Encoder.RequestedCodec, s.Encoder.Codec))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## %s\n\n", t("Settings"))
	row = tableWriter(&b, t)
	row("Frame Size", fmt.Sprintf("%dx%d", s.Settings.Width, s.Settings.Height))
	row("Pixel Format", s.Settings.PixelFormat)
	row("Frame Rate", s.Settings.FrameRate)
	row("Time Base", s.Settings.TimeBase)
	if s.Settings.Bitrate > 0 {
		row("Bitrate", fmt.Sprintf("%d bps", s.Settings.Bitrate))
	}
	row("GOP Size", strconv.Itoa(s.Settings.GOPSize))
	row("Max B-Frames", strconv.Itoa(s.Settings.MaxBFrames))
	row("Global Header", strconv.FormatBool(s.Settings.GlobalHeader))
	b.WriteString("\n")

	fmt.Fprintf(&b, "## %s\n\n", t("Stream"))
	row = tableWriter(&b, t)
	row("Frames Submitted", strconv.Itoa(s.Stream.Frames))
	row("Packets Written", strconv.Itoa(s.Stream.Packets))
	row("Keyframes", strconv.Itoa(s.Stream.Keyframes))
	row("Packets Discarded", strconv.Itoa(s.Stream.Discarded))
	row("Payload", formatBytes(s.Stream.PayloadBytes))
	if len(s.Stream.Strides) > 0 {
		row("Strides", formatInts(s.Stream.Strides))
	}
	row("Frame Duration", strconv.FormatInt(s.Stream.FrameDuration, 10))
	if s.Stream.Duration > 0 {
		row("Duration", s.Stream.Duration.String())
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## %s\n\n", t("Output"))
	row = tableWriter(&b, t)
	row("File", s.Output.Path)
	row("Container", s.Output.Container)
	row("File Size", formatBytes(s.Output.FileSize))
	b.WriteString("\n")

	fmt.Fprintf(&b, "## %s\n\n", t("Timing"))
	row = tableWriter(&b, t)
	row("Total", fmt.Sprintf("%d ms", s.Timing.TotalMs))
	row("Flush", fmt.Sprintf("%d ms", s.Timing.FlushMs))
	b.WriteString("\n")

	b.WriteString("---\n\n")
	footer := fmt.Sprintf("%s %s", t("Generated at"), s.GeneratedAt.Format(time.RFC3339))
	if f.version != "" {
		footer += fmt.Sprintf(" (planarenc %s)", f.version)
	}
	b.WriteString(footer + "\n")

	return b.String()
}

// tableWriter writes a two-column table header and returns a function that
// appends one row with a translated label.
func tableWriter(b *strings.Builder, t func(string) string) func(label, value string) {
	fmt.Fprintf(b, "| %s | %s |\n|---|---|\n", t("Item"), t("Value"))
	return func(label, value string) {
		fmt.Fprintf(b, "| %s | %s |\n", t(label), value)
	}
}

// formatBytes formats a byte count with binary units.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit && exp < 2; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMG"[exp])
}

func formatInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
