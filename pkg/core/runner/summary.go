package runner

import (
	"fmt"
	"sort"
	"strings"

	"chronos_evaluation/pkg/core/utils"
	"chronos_evaluation/pkg/models"
)

// RenderSummary renders a run as a Markdown document for human review,
// written next to the JSON report.
func RenderSummary(report *models.RunReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Evaluation Run %s\n\n", report.RunID)
	fmt.Fprintf(&b, "- Service: %s\n", report.Service)
	fmt.Fprintf(&b, "- Dataset: %s\n", report.Dataset)
	fmt.Fprintf(&b, "- Started: %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "- Cases: %d\n\n", len(report.Results))

	if len(report.Metrics) > 0 {
		b.WriteString("## Metrics\n\n")
		b.WriteString("| Operation | Mean | Min | Max | Count |\n")
		b.WriteString("|-----------|------|-----|-----|-------|\n")

		keys := make([]string, 0, len(report.Metrics))
		for k := range report.Metrics {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		// "overall" first, the rest alphabetical.
		sort.SliceStable(keys, func(i, j int) bool {
			return keys[i] == "overall" && keys[j] != "overall"
		})

		for _, k := range keys {
			m := report.Metrics[k]
			fmt.Fprintf(&b, "| %s | %.2f%% | %.2f%% | %.2f%% | %d |\n",
				k, m.Mean*100, m.Min*100, m.Max*100, m.Count)
		}
		b.WriteString("\n")
	}

	var flagged []models.CaseResult
	for _, res := range report.Results {
		if res.Report != nil && len(res.Report.Errors) > 0 {
			flagged = append(flagged, res)
		}
	}
	if len(flagged) > 0 {
		b.WriteString("## Findings\n\n")
		for _, res := range flagged {
			fmt.Fprintf(&b, "### Case %d (%s, accuracy %.2f)\n\n", res.Index, res.OperationType, res.Report.OverallAccuracy)
			for _, e := range res.Report.Errors {
				fmt.Fprintf(&b, "- %s\n", e)
			}
			b.WriteString("\n")
		}
	}

	if len(report.ParseNotes) > 0 {
		b.WriteString("## Skipped lines\n\n")
		for _, note := range report.ParseNotes {
			fmt.Fprintf(&b, "- %s\n", note)
		}
		b.WriteString("\n")
	}

	summary := b.String()
	if !utils.ValidateMarkdown(summary) {
		// Unreachable with goldmark's permissive parser, but keep the
		// renderer honest about its contract.
		return "# Evaluation Run\n\nsummary rendering failed\n"
	}
	return summary
}
