package review

import (
	"sort"
	"strings"
)

// PolicyConfig is the gating surface for the policy engine. All values
// have documented defaults; zero values mean "use the default".
type PolicyConfig struct {
	MinConfidenceBlocker   float64 `json:"minConfidenceBlocker" yaml:"min_confidence_blocker"`
	MinConfidenceImportant float64 `json:"minConfidenceImportant" yaml:"min_confidence_important"`
	MinConfidenceQuestion  float64 `json:"minConfidenceQuestion" yaml:"min_confidence_question"`
	MinConfidenceNit       float64 `json:"minConfidenceNit" yaml:"min_confidence_nit"`
	// MinSuggestionLength applies to BLOCKER and IMPORTANT issues only.
	MinSuggestionLength int `json:"minSuggestionLength" yaml:"min_suggestion_length"`
	MaxIssuesPerFile    int `json:"maxIssuesPerFile" yaml:"max_issues_per_file"`
	MaxIssuesTotal      int `json:"maxIssuesTotal" yaml:"max_issues_total"`
	// MaxInline caps inline comments; enforced by the posting layer,
	// carried here so the whole policy surface travels together.
	MaxInline int `json:"maxInline" yaml:"max_inline"`
}

// DefaultPolicyConfig returns the documented default gates.
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		MinConfidenceBlocker:   0.8,
		MinConfidenceImportant: 0.7,
		MinConfidenceQuestion:  0.6,
		MinConfidenceNit:       0.6,
		MinSuggestionLength:    10,
		MaxIssuesPerFile:       5,
		MaxIssuesTotal:         15,
		MaxInline:              8,
	}
}

// threshold returns the minimum confidence for a severity. Unknown
// severities are gated at the BLOCKER threshold.
func (c PolicyConfig) threshold(s Severity) float64 {
	switch s {
	case SeverityBlocker:
		return c.MinConfidenceBlocker
	case SeverityImportant:
		return c.MinConfidenceImportant
	case SeverityQuestion:
		return c.MinConfidenceQuestion
	case SeverityNit:
		return c.MinConfidenceNit
	default:
		return c.MinConfidenceBlocker
	}
}

// ApplyPolicy filters, deduplicates, ranks, and caps issues. It is
// deterministic and idempotent: applying it to its own output returns
// the same list.
//
// Gates, in order, each a hard drop: confidence below the per-severity
// threshold; missing or empty evidence; blank title or message; and
// for BLOCKER/IMPORTANT, a suggestion shorter than the configured
// minimum.
func ApplyPolicy(issues []Issue, cfg PolicyConfig) []Issue {
	var kept []Issue
	for _, is := range issues {
		if is.Confidence < cfg.threshold(is.Severity) {
			continue
		}
		if is.Evidence == nil || is.Evidence.Excerpt == "" {
			continue
		}
		if strings.TrimSpace(is.Title) == "" || strings.TrimSpace(is.Message) == "" {
			continue
		}
		if requiresSuggestion(is.Severity) && len(is.Suggestion) < cfg.MinSuggestionLength {
			continue
		}
		if is.Fingerprint == "" {
			is.Fingerprint = fingerprintOf(is)
		}
		kept = append(kept, is)
	}

	kept = dedupe(kept)

	// Stable: input order breaks ties within (severity, confidence).
	sort.SliceStable(kept, func(i, j int) bool {
		ri, rj := SeverityRank(kept[i].Severity), SeverityRank(kept[j].Severity)
		if ri != rj {
			return ri < rj
		}
		return kept[i].Confidence > kept[j].Confidence
	})

	kept = capPerFile(kept, cfg.MaxIssuesPerFile)

	if cfg.MaxIssuesTotal > 0 && len(kept) > cfg.MaxIssuesTotal {
		kept = kept[:cfg.MaxIssuesTotal]
	}
	return kept
}

func requiresSuggestion(s Severity) bool {
	return s == SeverityBlocker || s == SeverityImportant
}

// dedupe keeps the first occurrence of each semantic finding. Two
// issues are the same finding when path, line range, severity, and
// lower-cased title all match, regardless of their generated ids.
func dedupe(issues []Issue) []Issue {
	type key struct {
		path     string
		start    int
		end      int
		severity Severity
		title    string
	}
	seen := make(map[key]bool, len(issues))
	var out []Issue
	for _, is := range issues {
		k := key{
			path:     is.Path,
			start:    is.LineStart,
			end:      is.LineEnd,
			severity: is.Severity,
			title:    strings.ToLower(strings.TrimSpace(is.Title)),
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, is)
	}
	return out
}

func capPerFile(issues []Issue, perFile int) []Issue {
	if perFile <= 0 {
		return issues
	}
	counts := make(map[string]int)
	var out []Issue
	for _, is := range issues {
		if counts[is.Path] >= perFile {
			continue
		}
		counts[is.Path]++
		out = append(out, is)
	}
	return out
}
