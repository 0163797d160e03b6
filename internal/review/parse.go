package review

import (
	"fmt"

	"github.com/mfields/critic/internal/safejson"
)

// DecodeTriagePlan recovers a TriagePlan from raw model text. It first
// attempts a strict typed decode; if the payload is valid JSON but does
// not match the expected shape, it falls back to permissive field
// coercion. Only text with no JSON payload at all produces an error.
func DecodeTriagePlan(text string) (TriagePlan, error) {
	var plan TriagePlan
	if err := safejson.Parse(text, &plan); err == nil && validTriagePlan(plan) {
		plan.Budget = ParseBudget(string(plan.Budget))
		return plan, nil
	}

	obj, err := safejson.ParseObject(text)
	if err != nil {
		return TriagePlan{}, fmt.Errorf("decoding triage plan: %w", err)
	}
	return coerceTriagePlan(obj), nil
}

func validTriagePlan(p TriagePlan) bool {
	return p.Budget == "" || ValidBudget(p.Budget)
}

func coerceTriagePlan(obj map[string]any) TriagePlan {
	return TriagePlan{
		FilesToReview: safejson.StringList(obj, "files_to_review"),
		FocusAreas:    safejson.StringList(obj, "focus_areas"),
		Budget:        ParseBudget(safejson.StringField(obj, "budget")),
		Summary:       safejson.StringPointer(obj, "summary"),
	}
}

// focusedReviewResponse is the wire shape of a per-file review answer.
type focusedReviewResponse struct {
	Issues []IssueCandidate `json:"issues"`
}

// DecodeCandidates recovers issue candidates from raw model text with
// the same strict-then-coerce policy as DecodeTriagePlan. The error
// case means "no usable JSON"; callers treat it as zero results.
func DecodeCandidates(text string) ([]IssueCandidate, error) {
	var resp focusedReviewResponse
	if err := safejson.Parse(text, &resp); err == nil && validCandidates(resp.Issues) {
		out := make([]IssueCandidate, 0, len(resp.Issues))
		for _, c := range resp.Issues {
			out = append(out, normalizeCandidate(c))
		}
		return out, nil
	}

	obj, err := safejson.ParseObject(text)
	if err != nil {
		return nil, fmt.Errorf("decoding review response: %w", err)
	}

	var out []IssueCandidate
	for _, item := range safejson.ObjectList(obj, "issues") {
		out = append(out, coerceCandidate(item))
	}
	return out, nil
}

func validCandidates(cands []IssueCandidate) bool {
	for _, c := range cands {
		if !ValidSeverity(c.Severity) || !ValidCategory(c.Category) {
			return false
		}
		if c.Confidence < 0 || c.Confidence > 1 {
			return false
		}
	}
	return true
}

// normalizeCandidate fills defaults the model is allowed to omit.
func normalizeCandidate(c IssueCandidate) IssueCandidate {
	if c.ID == "" {
		c.ID = newCandidateID()
	}
	if c.Title == "" {
		c.Title = "Issue"
	}
	return c
}

func coerceCandidate(item map[string]any) IssueCandidate {
	conf := safejson.FloatField(item, "confidence", 0.5)
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}
	return normalizeCandidate(IssueCandidate{
		ID:         safejson.StringField(item, "id"),
		Severity:   ParseSeverity(safejson.StringField(item, "severity")),
		Category:   ParseCategory(safejson.StringField(item, "category")),
		Title:      safejson.StringField(item, "title"),
		Message:    safejson.StringField(item, "message"),
		LineStart:  safejson.IntPointer(item, "line_start"),
		LineEnd:    safejson.IntPointer(item, "line_end"),
		Suggestion: safejson.StringPointer(item, "suggestion"),
		Confidence: conf,
	})
}
