package review

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mfields/critic/internal/diff"
	"github.com/mfields/critic/internal/filter"
	"github.com/mfields/critic/internal/llm"
)

// partialReviewNote is appended to the run summary when the file loop
// stopped early on a rate limit.
const partialReviewNote = " Partial review only: stopped early due to LLM rate limits."

// Retriever supplies documentation evidence for a query. The docs
// package implements it; a nil Retriever disables doc evidence.
type Retriever interface {
	Retrieve(query string) []Evidence
}

// Engine runs the full pipeline: triage, sequential per-file review,
// policy gating, and the final decision.
type Engine struct {
	analyzer  *Analyzer
	policy    PolicyConfig
	retriever Retriever
	log       io.Writer
}

// NewEngine wires the pipeline. retriever may be nil; a nil log writer
// means stderr.
func NewEngine(analyzer *Analyzer, policy PolicyConfig, retriever Retriever, log io.Writer) *Engine {
	if log == nil {
		log = os.Stderr
	}
	return &Engine{analyzer: analyzer, policy: policy, retriever: retriever, log: log}
}

// Run reviews the filtered change set. Files are processed strictly in
// the order the triage plan selected them; a rate-limit error from any
// file's review stops the loop immediately while keeping the issues
// accumulated so far. The result is always complete and valid, with
// the summary noting when the review was partial.
func (e *Engine) Run(ctx context.Context, fr filter.Result, meta PRInfo) Result {
	plan := e.analyzer.Triage(ctx, fr, meta)

	byPath := make(map[string]diff.ChangedFile, len(fr.FilesToReview))
	for _, f := range fr.FilesToReview {
		byPath[f.Path] = f
	}

	var (
		issues      []Issue
		analyzed    int
		rateLimited bool
	)
	for _, path := range plan.FilesToReview {
		file, ok := byPath[path]
		if !ok {
			fmt.Fprintf(e.log, "critic: triage selected unknown file %s, skipping\n", path)
			continue
		}

		var docsEvidence []Evidence
		if e.retriever != nil {
			docsEvidence = e.retriever.Retrieve("standards for " + file.Path)
		}

		fileIssues, err := e.analyzer.ReviewFile(ctx, file, docsEvidence)
		if err != nil && llm.IsRateLimit(err) {
			fmt.Fprintf(e.log, "critic: %v, stopping file loop\n", err)
			rateLimited = true
			break
		}
		issues = append(issues, fileIssues...)
		analyzed++
	}

	issues = ApplyPolicy(issues, e.policy)

	return Result{
		Summary:  runSummary(plan, issues, analyzed, rateLimited),
		Issues:   issues,
		Stats:    Stats{RiskScore: fr.RiskScore, FilesAnalyzed: analyzed},
		Decision: decide(issues),
	}
}

// decide returns WARN when any blocking or important issue survived
// policy gating, PASS otherwise.
func decide(issues []Issue) string {
	for _, is := range issues {
		if is.Severity == SeverityBlocker || is.Severity == SeverityImportant {
			return "WARN"
		}
	}
	return "PASS"
}

func runSummary(plan TriagePlan, issues []Issue, analyzed int, rateLimited bool) string {
	var b strings.Builder
	if plan.Summary != nil && strings.TrimSpace(*plan.Summary) != "" {
		b.WriteString(strings.TrimSpace(*plan.Summary))
		b.WriteString(" ")
	}
	fmt.Fprintf(&b, "Reviewed %d file(s), %d issue(s) found.", analyzed, len(issues))
	if rateLimited {
		b.WriteString(partialReviewNote)
	}
	return b.String()
}
