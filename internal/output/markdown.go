package output

import (
	"io"

	"github.com/mfields/critic/internal/review"
)

// MarkdownWriter outputs a PR-comment-friendly markdown report. The
// same rendering is used for the forge summary comment.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, result *review.Result) error {
	ew := &errWriter{w: w}

	ew.printf("## Critic Code Review — %s\n\n", result.Decision)
	ew.printf("%s\n\n", result.Summary)

	counts := countBySeverity(result.Issues)
	ew.printf("| Severity | Count |\n")
	ew.printf("|----------|-------|\n")
	for _, sev := range severityOrder {
		ew.printf("| %s | %d |\n", sev, counts[sev])
	}
	ew.printf("| **Total** | **%d** |\n\n", len(result.Issues))
	ew.printf("Risk score: %d | Files analyzed: %d\n\n",
		result.Stats.RiskScore, result.Stats.FilesAnalyzed)

	if len(result.Issues) == 0 {
		ew.println("No issues found. :white_check_mark:")
		return ew.err
	}

	for _, sev := range severityOrder {
		issues := issuesWithSeverity(result.Issues, sev)
		if len(issues) == 0 {
			continue
		}

		ew.printf("<details>\n<summary>%s (%d)</summary>\n\n", sev, len(issues))
		for _, is := range issues {
			ew.printf("### %s\n\n", is.Title)
			ew.printf("**`%s:%d-%d`** | %s | Confidence: %.0f%%\n\n",
				is.Path, is.LineStart, is.LineEnd, is.Category, is.Confidence*100)
			ew.printf("%s\n\n", is.Message)
			if is.Suggestion != "" {
				ew.printf("**Suggestion:**\n\n```\n%s\n```\n\n", is.Suggestion)
			}
			if is.Evidence != nil {
				ew.printf("*Evidence (%s): %s*\n\n", is.Evidence.Kind, is.Evidence.Source)
			}
		}
		ew.printf("</details>\n\n")
	}

	return ew.err
}
