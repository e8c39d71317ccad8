package export

import (
	"io"

	"github.com/iksnae/neuralguard/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter exports results in YAML format
type YAMLExporter struct{}

// Export exports a result to YAML format
func (e *YAMLExporter) Export(result *internal.AnalysisResult, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()

	return enc.Encode(newReport(result))
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
