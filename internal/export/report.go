package export

import "github.com/iksnae/neuralguard/internal"

// report is the structured (json/yaml) shape of a result
type report struct {
	internal.AnalysisResult `yaml:",inline"`
	Risk                    string                  `json:"risk" yaml:"risk"`
	Counts                  internal.SeverityCounts `json:"counts" yaml:"counts"`
}

func newReport(result *internal.AnalysisResult) report {
	return report{
		AnalysisResult: *result,
		Risk:           result.Risk(),
		Counts:         result.Counts(),
	}
}
