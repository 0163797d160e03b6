package review

import (
	"testing"
)

func TestDecodeTriagePlanStrict(t *testing.T) {
	text := `{"files_to_review": ["a.go", "b.go"], "focus_areas": ["security"], "budget": "high", "summary": "risky change"}`
	plan, err := DecodeTriagePlan(text)
	if err != nil {
		t.Fatalf("DecodeTriagePlan: %v", err)
	}
	if len(plan.FilesToReview) != 2 || plan.FilesToReview[0] != "a.go" {
		t.Errorf("files = %v", plan.FilesToReview)
	}
	if plan.Budget != BudgetHigh {
		t.Errorf("budget = %q, want high", plan.Budget)
	}
	if plan.Summary == nil || *plan.Summary != "risky change" {
		t.Errorf("summary = %v", plan.Summary)
	}
}

func TestDecodeTriagePlanMissingSummary(t *testing.T) {
	text := `{"files_to_review": ["a.go"], "focus_areas": [], "budget": "normal"}`
	plan, err := DecodeTriagePlan(text)
	if err != nil {
		t.Fatalf("DecodeTriagePlan: %v", err)
	}
	if plan.Summary != nil {
		t.Errorf("summary = %q, want nil", *plan.Summary)
	}
}

func TestDecodeTriagePlanCoercion(t *testing.T) {
	// files_to_review is not a list and the budget is unknown; both
	// coerce instead of failing.
	text := `{"files_to_review": "everything", "budget": "medium", "summary": "odd shape"}`
	plan, err := DecodeTriagePlan(text)
	if err != nil {
		t.Fatalf("DecodeTriagePlan: %v", err)
	}
	if len(plan.FilesToReview) != 0 {
		t.Errorf("files = %v, want empty", plan.FilesToReview)
	}
	if plan.Budget != BudgetNormal {
		t.Errorf("budget = %q, want normal", plan.Budget)
	}
	if plan.Summary == nil || *plan.Summary != "odd shape" {
		t.Errorf("summary = %v", plan.Summary)
	}
}

func TestDecodeTriagePlanNoJSON(t *testing.T) {
	if _, err := DecodeTriagePlan("I could not decide."); err == nil {
		t.Fatal("expected error for text with no JSON payload")
	}
}

func TestDecodeCandidatesFencedEmpty(t *testing.T) {
	text := "```json\n{\"issues\": []}\n```"
	cands, err := DecodeCandidates(text)
	if err != nil {
		t.Fatalf("DecodeCandidates: %v", err)
	}
	if len(cands) != 0 {
		t.Errorf("got %d candidates, want 0", len(cands))
	}
}

func TestDecodeCandidatesStrict(t *testing.T) {
	text := `{"issues": [{"id": "x1", "severity": "BLOCKER", "category": "BUG",
		"title": "Nil deref", "message": "p may be nil", "line_start": 3,
		"line_end": 4, "suggestion": "check p first", "confidence": 0.9}]}`
	cands, err := DecodeCandidates(text)
	if err != nil {
		t.Fatalf("DecodeCandidates: %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("got %d candidates, want 1", len(cands))
	}
	c := cands[0]
	if c.ID != "x1" || c.Severity != SeverityBlocker || c.Category != CategoryBug {
		t.Errorf("candidate = %+v", c)
	}
	if c.LineStart == nil || *c.LineStart != 3 {
		t.Errorf("line_start = %v", c.LineStart)
	}
}

func TestDecodeCandidatesCoercion(t *testing.T) {
	// Unknown enum strings and a missing confidence coerce to the
	// conservative defaults.
	text := `{"issues": [{"severity": "catastrophic", "category": "vibes",
		"title": "Something", "message": "details"}]}`
	cands, err := DecodeCandidates(text)
	if err != nil {
		t.Fatalf("DecodeCandidates: %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("got %d candidates, want 1", len(cands))
	}
	c := cands[0]
	if c.Severity != SeverityNit {
		t.Errorf("severity = %q, want NIT", c.Severity)
	}
	if c.Category != CategoryStyle {
		t.Errorf("category = %q, want STYLE", c.Category)
	}
	if c.Confidence != 0.5 {
		t.Errorf("confidence = %v, want 0.5", c.Confidence)
	}
	if c.ID == "" {
		t.Error("expected a generated id")
	}
}

func TestDecodeCandidatesClampsConfidence(t *testing.T) {
	text := `{"issues": [{"severity": "??", "title": "t", "message": "m", "confidence": 3.5}]}`
	cands, err := DecodeCandidates(text)
	if err != nil {
		t.Fatalf("DecodeCandidates: %v", err)
	}
	if cands[0].Confidence != 1 {
		t.Errorf("confidence = %v, want clamped to 1", cands[0].Confidence)
	}
}

func TestDecodeCandidatesNoJSON(t *testing.T) {
	if _, err := DecodeCandidates("the diff looks fine to me"); err == nil {
		t.Fatal("expected error for text with no JSON payload")
	}
}
