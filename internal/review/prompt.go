package review

import (
	"fmt"
	"strings"

	"github.com/mfields/critic/internal/diff"
	"github.com/mfields/critic/internal/filter"
	"github.com/mfields/critic/internal/redact"
)

const triageSystemPrompt = `You are a code review triage agent.
Analyze the pull request metadata and the list of changed files.
Decide which files need a detailed review based on risk and complexity.

You MUST respond with ONLY a JSON object of this exact shape:
{
  "files_to_review": ["path/to/file1", "path/to/file2"],
  "focus_areas": ["security", "performance", "logic"],
  "budget": "low|normal|high",
  "summary": "one sentence on the overall risk"
}`

const reviewSystemPrompt = `You are a senior code reviewer.
Analyze the provided code diff and documentation evidence.
Only report issues you can support from the diff shown.

You MUST respond with ONLY a JSON object of this exact shape:
{
  "issues": [
    {
      "id": "unique_id",
      "severity": "BLOCKER|IMPORTANT|NIT|QUESTION",
      "category": "BUG|SECURITY|PERF|STYLE|ARCH|TESTING|DOCS",
      "title": "Short title",
      "message": "Detailed explanation",
      "line_start": 10,
      "line_end": 12,
      "suggestion": "replacement code if any",
      "confidence": 0.95
    }
  ]
}

Line numbers refer to the new file. Rate confidence from 0.0 to 1.0.
If there are no issues, respond with {"issues": []}.`

// TriageSystemPrompt returns the system prompt for the triage call.
func TriageSystemPrompt() string { return triageSystemPrompt }

// ReviewSystemPrompt returns the system prompt for per-file review.
func ReviewSystemPrompt() string { return reviewSystemPrompt }

// BuildTriagePrompt summarizes the PR and its candidate files, one
// line per file with addition/deletion counts.
func BuildTriagePrompt(fr filter.Result, meta PRInfo) string {
	var files strings.Builder
	for _, f := range fr.FilesToReview {
		fmt.Fprintf(&files, "%s (+%d/-%d)\n", f.Path, f.Additions, f.Deletions)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "PR Title: %s\n", meta.Title)
	fmt.Fprintf(&b, "Description: %s\n", meta.Body)
	fmt.Fprintf(&b, "Risk Score: %d\n", fr.RiskScore)
	fmt.Fprintf(&b, "Risk Factors: %s\n\n", strings.Join(fr.RiskFactors, ", "))
	b.WriteString("Changed Files:\n")
	b.WriteString(files.String())
	return b.String()
}

// BuildReviewPrompt assembles the per-file user prompt: file header,
// documentation evidence, then the diff hunks. The hunk content is
// passed through the privacy redactor; redactPaths are the path
// patterns whose entire content must be withheld from the model.
func BuildReviewPrompt(file diff.ChangedFile, docsEvidence []Evidence, redactPaths []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "File: %s\n", file.Path)
	fmt.Fprintf(&b, "Additions: %d, Deletions: %d\n\n", file.Additions, file.Deletions)

	b.WriteString("Relevant Project Docs:\n")
	for _, e := range docsEvidence {
		fmt.Fprintf(&b, "[%s]: %s\n", e.Source, e.Excerpt)
	}

	b.WriteString("\nDiff:\n")
	b.WriteString(redact.Content(diff.FormatHunks(file), file.Path, redactPaths))
	return b.String()
}
