package review

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// Severity is the review severity ladder, most severe first.
type Severity string

const (
	SeverityBlocker   Severity = "BLOCKER"
	SeverityImportant Severity = "IMPORTANT"
	SeverityQuestion  Severity = "QUESTION"
	SeverityNit       Severity = "NIT"
)

// SeverityRank returns the sort rank (lower = more severe). Unknown
// severities rank after everything known.
func SeverityRank(s Severity) int {
	switch s {
	case SeverityBlocker:
		return 0
	case SeverityImportant:
		return 1
	case SeverityQuestion:
		return 2
	case SeverityNit:
		return 3
	default:
		return 4
	}
}

// ParseSeverity normalizes a free-form severity string, defaulting to
// NIT for anything unrecognized.
func ParseSeverity(s string) Severity {
	v := Severity(strings.ToUpper(strings.TrimSpace(s)))
	if ValidSeverity(v) {
		return v
	}
	return SeverityNit
}

// ValidSeverity reports whether s is a known severity value.
func ValidSeverity(s Severity) bool {
	return SeverityRank(s) < 4
}

// Category classifies what kind of problem a finding describes.
type Category string

const (
	CategoryStyle    Category = "STYLE"
	CategoryArch     Category = "ARCH"
	CategoryBug      Category = "BUG"
	CategorySecurity Category = "SECURITY"
	CategoryPerf     Category = "PERF"
	CategoryTesting  Category = "TESTING"
	CategoryDocs     Category = "DOCS"
)

// ValidCategory reports whether c is a known category value.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryStyle, CategoryArch, CategoryBug, CategorySecurity,
		CategoryPerf, CategoryTesting, CategoryDocs:
		return true
	default:
		return false
	}
}

// ParseCategory normalizes a free-form category string, defaulting to
// STYLE for anything unrecognized.
func ParseCategory(s string) Category {
	v := Category(strings.ToUpper(strings.TrimSpace(s)))
	if ValidCategory(v) {
		return v
	}
	return CategoryStyle
}

// Budget is the triage spend level.
type Budget string

const (
	BudgetLow    Budget = "low"
	BudgetNormal Budget = "normal"
	BudgetHigh   Budget = "high"
)

// ValidBudget reports whether b is a known budget value.
func ValidBudget(b Budget) bool {
	return b == BudgetLow || b == BudgetNormal || b == BudgetHigh
}

// ParseBudget normalizes a budget string, defaulting to normal.
func ParseBudget(s string) Budget {
	v := Budget(strings.ToLower(strings.TrimSpace(s)))
	if ValidBudget(v) {
		return v
	}
	return BudgetNormal
}

// EvidenceKind distinguishes documentation evidence from diff evidence.
type EvidenceKind string

const (
	EvidenceDoc  EvidenceKind = "DOC"
	EvidenceDiff EvidenceKind = "DIFF"
)

// Evidence is a bound snippet justifying a finding. An issue is never
// published without one.
type Evidence struct {
	Kind    EvidenceKind `json:"kind"`
	Source  string       `json:"source"` // doc path, or path:line
	Excerpt string       `json:"excerpt"`
}

// IssueCandidate is the untrusted shape produced by structured-output
// parsing. It never leaves the pipeline.
type IssueCandidate struct {
	ID         string   `json:"id"`
	Severity   Severity `json:"severity"`
	Category   Category `json:"category"`
	Title      string   `json:"title"`
	Message    string   `json:"message"`
	LineStart  *int     `json:"line_start"`
	LineEnd    *int     `json:"line_end"`
	Suggestion *string  `json:"suggestion"`
	Confidence float64  `json:"confidence"`
}

// Issue is a validated finding with a resolved line range and bound
// evidence. Immutable once it leaves the policy engine.
type Issue struct {
	ID          string    `json:"id"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	Severity    Severity  `json:"severity"`
	Category    Category  `json:"category"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Path        string    `json:"path"`
	LineStart   int       `json:"lineStart"`
	LineEnd     int       `json:"lineEnd"`
	Suggestion  string    `json:"suggestion,omitempty"`
	Confidence  float64   `json:"confidence"`
	Evidence    *Evidence `json:"evidence,omitempty"`
}

// TriagePlan selects which files get a full model-backed review.
type TriagePlan struct {
	FilesToReview []string `json:"files_to_review"`
	FocusAreas    []string `json:"focus_areas"`
	Budget        Budget   `json:"budget"`
	Summary       *string  `json:"summary"`
}

// PRInfo is the pull-request metadata the pipeline consumes. The forge
// collaborator fills it in.
type PRInfo struct {
	Number int
	Title  string
	Body   string
	Author string
}

// Stats carries run counters for rendering.
type Stats struct {
	RiskScore     int `json:"riskScore"`
	FilesAnalyzed int `json:"filesAnalyzed"`
}

// Result is the final artifact of a run.
type Result struct {
	Summary  string  `json:"summary"`
	Issues   []Issue `json:"issues"`
	Stats    Stats   `json:"stats"`
	Decision string  `json:"decision"` // PASS or WARN
}

var candidateSeq atomic.Int64

// newCandidateID generates a per-run unique id for candidates the
// model did not label.
func newCandidateID() string {
	h := sha256.Sum256(fmt.Appendf(nil, "%d:%d", time.Now().UnixNano(), candidateSeq.Add(1)))
	return fmt.Sprintf("llm-%x", h[:6])
}

// fingerprintOf synthesizes a stable fingerprint from the issue's
// location and title.
func fingerprintOf(is Issue) string {
	h := sha256.Sum256(fmt.Appendf(nil, "%s:%d:%d:%s",
		is.Path, is.LineStart, is.LineEnd, strings.ToLower(strings.TrimSpace(is.Title))))
	return fmt.Sprintf("%x", h[:8])
}
