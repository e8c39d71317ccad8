package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/neuralguard/internal"
)

// MarkdownExporter exports results as a Markdown audit report
type MarkdownExporter struct{}

// Export exports a result to Markdown format
func (e *MarkdownExporter) Export(result *internal.AnalysisResult, w io.Writer) error {
	counts := result.Counts()

	_, _ = fmt.Fprintf(w, "# Security Audit Report for %s\n\n", result.Target)
	if result.Kind == internal.InputAddress {
		_, _ = fmt.Fprintf(w, "**Contract Address:** %s  \n", result.Target)
		if result.Network != "" {
			_, _ = fmt.Fprintf(w, "**Network:** %s  \n", result.Network)
		}
	} else {
		_, _ = fmt.Fprintf(w, "**Source:** %s  \n", result.Target)
	}
	_, _ = fmt.Fprintf(w, "**Date:** %s  \n", result.AnalyzedAt.Format("2006-01-02"))
	_, _ = fmt.Fprintf(w, "**Security Score:** %d/100 (%s)\n\n", result.Score, result.Risk())

	_, _ = fmt.Fprintf(w, "## Summary\n\n")
	_, _ = fmt.Fprintf(w, "The contract was analyzed for common vulnerabilities including reentrancy, access control issues, arithmetic operations, and other known attack vectors.\n\n")
	if counts.Critical > 0 {
		_, _ = fmt.Fprintf(w, "Critical issues were found that require immediate attention.\n\n")
	} else {
		_, _ = fmt.Fprintf(w, "No critical vulnerabilities were identified.\n\n")
	}
	if counts.Critical+counts.High > 0 {
		_, _ = fmt.Fprintf(w, "Recommendation: address all critical and high severity issues before deployment.\n\n")
	} else {
		_, _ = fmt.Fprintf(w, "Recommendation: proceed with caution, addressing the issues identified in this report.\n\n")
	}

	_, _ = fmt.Fprintf(w, "## Summary of Findings\n\n")
	_, _ = fmt.Fprintf(w, "| Severity | Count |\n|---|---|\n")
	_, _ = fmt.Fprintf(w, "| Critical | %d |\n| High | %d |\n| Medium | %d |\n| Low | %d |\n\n",
		counts.Critical, counts.High, counts.Medium, counts.Low)

	_, _ = fmt.Fprintf(w, "## Vulnerabilities\n\n")
	for i, v := range result.Vulnerabilities {
		_, _ = fmt.Fprintf(w, "### %d. %s (%s)\n\n", i+1, v.Title, strings.ToUpper(string(v.Severity)))
		if v.LineNumber > 0 {
			_, _ = fmt.Fprintf(w, "**Line:** %d\n\n", v.LineNumber)
		}
		_, _ = fmt.Fprintf(w, "%s\n\n", v.Description)
		if v.CodeSnippet != "" {
			_, _ = fmt.Fprintf(w, "```solidity\n%s\n```\n\n", v.CodeSnippet)
		}
		_, _ = fmt.Fprintf(w, "**Fix:** %s\n\n", v.Recommendation)
	}

	if len(result.Recommendations) > 0 {
		_, _ = fmt.Fprintf(w, "## Recommendations\n\n")
		for _, r := range result.Recommendations {
			_, _ = fmt.Fprintf(w, "- **%s** (%s impact): %s\n", r.Title, r.Impact, r.Description)
		}
		_, _ = fmt.Fprintf(w, "\n")
	}

	return nil
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
