package export

import (
	"encoding/json"
	"io"

	"github.com/iksnae/neuralguard/internal"
)

// JSONExporter exports results in JSON format (pretty-printed)
type JSONExporter struct{}

// Export writes the whole result, counts included, as indented JSON
func (e *JSONExporter) Export(result *internal.AnalysisResult, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(newReport(result))
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
