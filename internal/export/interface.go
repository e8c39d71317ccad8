package export

import (
	"fmt"
	"io"

	"github.com/iksnae/neuralguard/internal"
)

// Exporter defines the interface for all report formats
type Exporter interface {
	Export(result *internal.AnalysisResult, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: md, json, yaml, jsonl)", format)
	}
}
