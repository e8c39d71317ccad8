package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/neuralguard/internal"
)

// JSONLExporter exports one vulnerability per line
type JSONLExporter struct{}

// Export writes each finding as a single JSON object tagged with the target
// and score, so lines can be concatenated across reports.
func (e *JSONLExporter) Export(result *internal.AnalysisResult, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, v := range result.Vulnerabilities {
		obj := map[string]interface{}{
			"target":         result.Target,
			"score":          result.Score,
			"id":             v.ID,
			"severity":       v.Severity,
			"title":          v.Title,
			"recommendation": v.Recommendation,
		}

		if v.LineNumber > 0 {
			obj["line"] = v.LineNumber
		}

		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode vulnerability %s: %w", v.ID, err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
