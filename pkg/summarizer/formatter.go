package summarizer

import (
	"encoding/json"
	"path/filepath"
	"strings"
)

// Formatter renders a Summary as a document.
type Formatter interface {
	Format(summary *Summary) string
}

// FormatFunc lets a plain function serve as a Formatter.
type FormatFunc func(summary *Summary) string

func (f FormatFunc) Format(summary *Summary) string {
	return f(summary)
}

// JSONFormatter renders a Summary as indented JSON.
type JSONFormatter struct{}

func (JSONFormatter) Format(summary *Summary) string {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		// Summary holds only plain values, so this cannot happen.
		return "{}\n"
	}
	return string(data) + "\n"
}

// FormatterFor picks a Formatter from the extension of path: ".json" gets
// JSON, anything else Markdown built with opts.
func FormatterFor(path string, opts ...MarkdownOption) Formatter {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return JSONFormatter{}
	}
	return NewMarkdownFormatter(opts...)
}
