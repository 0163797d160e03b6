package review

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mfields/critic/internal/diff"
	"github.com/mfields/critic/internal/filter"
	"github.com/mfields/critic/internal/llm"
	"github.com/mfields/critic/internal/redact"
)

// triageRateLimitSummary is the fixed summary of a run whose triage
// call hit model rate limits. Nothing is reviewed in that case.
const triageRateLimitSummary = "Triage skipped due to LLM rate limits; no files were reviewed this run."

// Completer issues one completion request. *llm.Client satisfies it;
// tests substitute fakes.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, jsonObject bool) (string, error)
}

// Analyzer drives the model calls of a review run: one triage call,
// then one focused call per selected file.
type Analyzer struct {
	client      Completer
	redactPaths []string
	log         io.Writer
}

// NewAnalyzer creates an Analyzer. redactPaths are path patterns whose
// file content is withheld from model prompts. A nil log writer means
// stderr.
func NewAnalyzer(client Completer, redactPaths []string, log io.Writer) *Analyzer {
	if log == nil {
		log = os.Stderr
	}
	return &Analyzer{client: client, redactPaths: redactPaths, log: log}
}

// Triage asks the model which files deserve a full review.
//
// Failure handling is asymmetric on purpose. A rate-limit failure
// returns an empty plan with a low budget, stopping further model
// spend for the run. Any other failure returns a plan listing every
// candidate file: over-reviewing beats silently skipping.
func (a *Analyzer) Triage(ctx context.Context, fr filter.Result, meta PRInfo) TriagePlan {
	prompt := redact.Secrets(BuildTriagePrompt(fr, meta))

	content, err := a.client.Complete(ctx, TriageSystemPrompt(), prompt, true)
	if err != nil {
		if llm.IsRateLimit(err) {
			fmt.Fprintf(a.log, "critic: triage rate limited, skipping review: %v\n", err)
			summary := triageRateLimitSummary
			return TriagePlan{Budget: BudgetLow, Summary: &summary}
		}
		fmt.Fprintf(a.log, "critic: triage failed, reviewing all files: %v\n", err)
		return allFilesPlan(fr)
	}

	plan, err := DecodeTriagePlan(content)
	if err != nil {
		fmt.Fprintf(a.log, "critic: unusable triage response, reviewing all files: %v\n", err)
		return allFilesPlan(fr)
	}
	return plan
}

func allFilesPlan(fr filter.Result) TriagePlan {
	paths := make([]string, 0, len(fr.FilesToReview))
	for _, f := range fr.FilesToReview {
		paths = append(paths, f.Path)
	}
	return TriagePlan{FilesToReview: paths, Budget: BudgetNormal}
}

// ReviewFile runs one focused review call for a file and binds the
// surviving candidates into issues. A rate-limit failure is returned
// to the caller so the file loop can stop; every other failure yields
// zero issues for this file and a nil error so the run continues.
func (a *Analyzer) ReviewFile(ctx context.Context, file diff.ChangedFile, docsEvidence []Evidence) ([]Issue, error) {
	prompt := redact.Secrets(BuildReviewPrompt(file, docsEvidence, a.redactPaths))

	content, err := a.client.Complete(ctx, ReviewSystemPrompt(), prompt, true)
	if err != nil {
		if llm.IsRateLimit(err) {
			return nil, fmt.Errorf("reviewing %s: %w", file.Path, err)
		}
		fmt.Fprintf(a.log, "critic: review of %s failed: %v\n", file.Path, err)
		return nil, nil
	}

	candidates, err := DecodeCandidates(content)
	if err != nil {
		fmt.Fprintf(a.log, "critic: unusable review response for %s: %v\n", file.Path, err)
		return nil, nil
	}

	issues := make([]Issue, 0, len(candidates))
	for _, c := range candidates {
		issues = append(issues, bindCandidate(file, docsEvidence, c))
	}
	return issues, nil
}

// bindCandidate resolves a candidate's line range against the file's
// hunks and attaches evidence, producing a trusted Issue.
func bindCandidate(file diff.ChangedFile, docsEvidence []Evidence, c IssueCandidate) Issue {
	start, end := resolveLineRange(file, c)
	evidence := BuildEvidence(file, docsEvidence, start, end)

	suggestion := ""
	if c.Suggestion != nil {
		suggestion = *c.Suggestion
	}

	is := Issue{
		ID:         c.ID,
		Severity:   c.Severity,
		Category:   c.Category,
		Title:      c.Title,
		Message:    c.Message,
		Path:       file.Path,
		LineStart:  start,
		LineEnd:    end,
		Suggestion: suggestion,
		Confidence: c.Confidence,
		Evidence:   &evidence,
	}
	is.Fingerprint = fingerprintOf(is)
	return is
}
