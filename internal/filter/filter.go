package filter

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/mfields/critic/internal/diff"
)

// DefaultIgnorePatterns excludes generated and vendored files from
// review by default.
var DefaultIgnorePatterns = []string{
	"*.lock",
	"package-lock.json",
	"yarn.lock",
	"go.sum",
	"*.min.js",
	"*.min.css",
	"dist/**",
	"build/**",
	"node_modules/**",
	"vendor/**",
	"__pycache__/**",
	"*.pyc",
}

// riskPatterns tag files whose paths suggest sensitive areas.
var riskPatterns = map[string][]string{
	"auth":    {"**/auth/**", "**/login/**", "**/security/**", "**/permission/**"},
	"payment": {"**/payment/**", "**/billing/**", "**/stripe/**"},
	"core":    {"**/core/**", "**/kernel/**", "**/infra/**"},
	"api":     {"**/api/**", "**/routes/**", "**/controllers/**"},
	"deps":    {"package.json", "pyproject.toml", "go.mod", "requirements.txt"},
}

// Result partitions a change set and scores its risk.
type Result struct {
	FilesToReview []diff.ChangedFile
	ExcludedFiles []diff.ChangedFile
	RiskScore     int
	RiskFactors   []string
}

// Filter applies ignore patterns and risk tagging to changed files.
type Filter struct {
	ignorePatterns []string
}

// New creates a Filter. Empty patterns mean the defaults.
func New(ignorePatterns []string) *Filter {
	if len(ignorePatterns) == 0 {
		ignorePatterns = DefaultIgnorePatterns
	}
	return &Filter{ignorePatterns: ignorePatterns}
}

// Apply partitions files into review/excluded sets and computes the
// risk score: 10 points per distinct risk factor.
func (f *Filter) Apply(files []diff.ChangedFile) Result {
	var toReview, excluded []diff.ChangedFile
	factors := make(map[string]bool)

	for _, file := range files {
		if MatchesAny(file.Path, f.ignorePatterns) {
			excluded = append(excluded, file)
			continue
		}
		for factor, patterns := range riskPatterns {
			if MatchesAny(file.Path, patterns) {
				factors[factor] = true
			}
		}
		toReview = append(toReview, file)
	}

	sorted := make([]string, 0, len(factors))
	for factor := range factors {
		sorted = append(sorted, factor)
	}
	sort.Strings(sorted)

	return Result{
		FilesToReview: toReview,
		ExcludedFiles: excluded,
		RiskScore:     len(sorted) * 10,
		RiskFactors:   sorted,
	}
}

// MatchesAny returns true if the path matches any of the given glob
// patterns. Patterns with a "**/" prefix also match against the base
// name and the bare path, since filepath.Match has no ** support.
func MatchesAny(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, err := filepath.Match(pattern, path); err == nil && matched {
			return true
		}

		if dir, ok := strings.CutSuffix(pattern, "/**"); ok {
			dir = strings.TrimPrefix(dir, "**/")
			if strings.HasPrefix(path, dir+"/") || strings.Contains(path, "/"+dir+"/") {
				return true
			}
			continue
		}

		if clean, ok := strings.CutPrefix(pattern, "**/"); ok {
			if matched, err := filepath.Match(clean, filepath.Base(path)); err == nil && matched {
				return true
			}
			if matched, err := filepath.Match(clean, path); err == nil && matched {
				return true
			}
		}
	}
	return false
}
