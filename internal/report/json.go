package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/contentscale/internal/model"
	"github.com/nao1215/contentscale/internal/scoring"
)

// JSONWriter writes reports as JSON documents.
type JSONWriter struct {
	baseWriter
	version      string
	indent       bool
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables indented output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint indents with two spaces.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that stamps each document with version.
func NewJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
		version:    version,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// JSONReport is the document written for one scan.
type JSONReport struct {
	Version       string                `json:"version"`
	Report        *model.ScanReport     `json:"report"`
	Opportunities []scoring.Opportunity `json:"opportunities"`
}

// NewJSONReport wraps report with its improvement opportunities.
func NewJSONReport(report *model.ScanReport, version string) *JSONReport {
	opportunities := []scoring.Opportunity{}
	if report.Score != nil {
		opportunities = scoring.Opportunities(*report.Score)
	}
	return &JSONReport{
		Version:       version,
		Report:        report,
		Opportunities: opportunities,
	}
}

// Write outputs report as a JSONReport followed by a newline.
func (w *JSONWriter) Write(report *model.ScanReport) (int, error) {
	return w.WriteValue(NewJSONReport(report, w.version))
}

// WriteValue outputs any value with the writer's formatting.
func (w *JSONWriter) WriteValue(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}
