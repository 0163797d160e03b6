package review

import (
	"fmt"
	"unicode/utf8"

	"github.com/mfields/critic/internal/diff"
)

const (
	// maxEvidenceExcerpt bounds any excerpt attached to an issue.
	maxEvidenceExcerpt = 500
	// docPlaceholderExcerpt substitutes a blank documentation excerpt.
	docPlaceholderExcerpt = "See project documentation."
)

// BuildEvidence resolves the evidence to attach to an issue.
// Documentation evidence is considered stronger than self-referential
// diff context and is always preferred when available; otherwise a
// diff excerpt for the issue's line range is synthesized.
func BuildEvidence(file diff.ChangedFile, docsEvidence []Evidence, lineStart, lineEnd int) Evidence {
	if len(docsEvidence) > 0 {
		primary := docsEvidence[0]
		excerpt := primary.Excerpt
		if excerpt == "" {
			excerpt = docPlaceholderExcerpt
		}
		if len(excerpt) > maxEvidenceExcerpt {
			cut := maxEvidenceExcerpt
			for cut > 0 && !utf8.RuneStart(excerpt[cut]) {
				cut--
			}
			excerpt = excerpt[:cut]
		}
		return Evidence{
			Kind:    primary.Kind,
			Source:  primary.Source,
			Excerpt: excerpt,
		}
	}

	start := lineStart
	if start < 1 {
		start = 1
	}
	return Evidence{
		Kind:    EvidenceDiff,
		Source:  fmt.Sprintf("%s:%d", file.Path, start),
		Excerpt: diff.ExcerptForRange(file, lineStart, lineEnd),
	}
}

// resolveLineRange turns a candidate's optional claimed range into a
// concrete valid one against the file's hunks.
func resolveLineRange(file diff.ChangedFile, c IssueCandidate) (int, int) {
	start := diff.DefaultLine(file)
	if c.LineStart != nil {
		start = *c.LineStart
	}
	if start < 1 {
		start = 1
	}

	end := start
	if c.LineEnd != nil && *c.LineEnd > end {
		end = *c.LineEnd
	}
	return start, end
}
