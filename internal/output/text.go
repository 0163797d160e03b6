package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/mfields/critic/internal/review"
)

// TextWriter outputs a human-readable terminal report.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, result *review.Result) error {
	ew := &errWriter{w: w}

	ew.printf("Critic Code Review — %s\n", result.Decision)
	ew.printf("%s\n", result.Summary)
	ew.printf("Risk score: %d | Files analyzed: %d\n",
		result.Stats.RiskScore, result.Stats.FilesAnalyzed)
	ew.println(strings.Repeat("─", 60))

	if len(result.Issues) == 0 {
		ew.println("\nNo issues found. Looks good!")
		return ew.err
	}

	counts := countBySeverity(result.Issues)
	for _, sev := range severityOrder {
		issues := issuesWithSeverity(result.Issues, sev)
		if len(issues) == 0 {
			continue
		}

		ew.printf("\n%s (%d)\n", severityColor(sev).Sprint(string(sev)), counts[sev])
		ew.println(strings.Repeat("─", 40))

		for _, is := range issues {
			ew.printf("\n  %s:%d-%d  %s\n", is.Path, is.LineStart, is.LineEnd, is.Title)
			ew.printf("  Category: %s | Confidence: %.0f%%\n", is.Category, is.Confidence*100)
			for _, line := range wrapText(is.Message, 70) {
				ew.printf("    %s\n", line)
			}
			if is.Suggestion != "" {
				ew.println("  Suggestion:")
				for _, line := range wrapText(is.Suggestion, 70) {
					ew.printf("    %s\n", line)
				}
			}
			if is.Evidence != nil {
				ew.printf("  Evidence (%s): %s\n", is.Evidence.Kind, is.Evidence.Source)
			}
		}
	}

	ew.printf("\n%s\n", strings.Repeat("─", 60))
	ew.printf("%d issue(s) total.\n", len(result.Issues))
	return ew.err
}

func severityColor(s review.Severity) *color.Color {
	switch s {
	case review.SeverityBlocker:
		return color.New(color.FgRed, color.Bold)
	case review.SeverityImportant:
		return color.New(color.FgYellow)
	case review.SeverityQuestion:
		return color.New(color.FgCyan)
	default:
		return color.New(color.FgWhite)
	}
}

func issuesWithSeverity(issues []review.Issue, sev review.Severity) []review.Issue {
	var out []review.Issue
	for _, is := range issues {
		if is.Severity == sev {
			out = append(out, is)
		}
	}
	return out
}

// wrapText wraps text at the given width, preserving words.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
			continue
		}
		current += " " + word
	}
	return append(lines, current)
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}
