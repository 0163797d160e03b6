package review

import (
	"reflect"
	"testing"
)

func testIssue(mod func(*Issue)) Issue {
	is := Issue{
		ID:         "i1",
		Severity:   SeverityNit,
		Category:   CategoryStyle,
		Title:      "Inconsistent naming",
		Message:    "variable name does not match conventions",
		Path:       "src/main.go",
		LineStart:  3,
		LineEnd:    3,
		Confidence: 0.9,
		Evidence:   &Evidence{Kind: EvidenceDiff, Source: "src/main.go:3", Excerpt: "+x := 1"},
	}
	if mod != nil {
		mod(&is)
	}
	return is
}

func TestApplyPolicyConfidenceThresholds(t *testing.T) {
	cfg := DefaultPolicyConfig()
	issues := []Issue{
		testIssue(func(is *Issue) {
			is.Severity = SeverityBlocker
			is.Confidence = 0.79
			is.Suggestion = "use the safe variant here"
		}),
		testIssue(func(is *Issue) {
			is.ID = "i2"
			is.Title = "Another finding"
			is.Severity = SeverityBlocker
			is.Confidence = 0.8
			is.Suggestion = "use the safe variant here"
		}),
		testIssue(func(is *Issue) {
			is.ID = "i3"
			is.Title = "Low confidence nit"
			is.Confidence = 0.5
		}),
	}
	out := ApplyPolicy(issues, cfg)
	if len(out) != 1 || out[0].ID != "i2" {
		t.Fatalf("kept = %+v, want only i2", out)
	}
	for _, is := range out {
		if is.Confidence < cfg.threshold(is.Severity) {
			t.Errorf("issue %s below threshold survived", is.ID)
		}
	}
}

func TestApplyPolicyRequiresEvidence(t *testing.T) {
	out := ApplyPolicy([]Issue{
		testIssue(func(is *Issue) { is.Evidence = nil }),
		testIssue(func(is *Issue) { is.Evidence = &Evidence{Kind: EvidenceDiff, Source: "x"} }),
	}, DefaultPolicyConfig())
	if len(out) != 0 {
		t.Errorf("issues without evidence survived: %+v", out)
	}
}

func TestApplyPolicyRequiresTitleAndMessage(t *testing.T) {
	out := ApplyPolicy([]Issue{
		testIssue(func(is *Issue) { is.Title = "   " }),
		testIssue(func(is *Issue) { is.Message = "" }),
	}, DefaultPolicyConfig())
	if len(out) != 0 {
		t.Errorf("blank issues survived: %+v", out)
	}
}

func TestApplyPolicyShortSuggestionDropped(t *testing.T) {
	// IMPORTANT at high confidence with evidence still drops when the
	// suggestion is too short to act on.
	is := testIssue(func(is *Issue) {
		is.Severity = SeverityImportant
		is.Confidence = 0.95
		is.Suggestion = "fix"
	})
	out := ApplyPolicy([]Issue{is}, DefaultPolicyConfig())
	if len(out) != 0 {
		t.Errorf("short-suggestion issue survived: %+v", out)
	}
}

func TestApplyPolicySuggestionNotRequiredForNit(t *testing.T) {
	out := ApplyPolicy([]Issue{testIssue(nil)}, DefaultPolicyConfig())
	if len(out) != 1 {
		t.Errorf("NIT without suggestion dropped: %+v", out)
	}
}

func TestApplyPolicyDedupe(t *testing.T) {
	first := testIssue(func(is *Issue) { is.Message = "first occurrence" })
	second := testIssue(func(is *Issue) {
		is.ID = "other-id"
		is.Title = "  INCONSISTENT NAMING " // same after trim+lowercase
		is.Message = "second occurrence"
	})
	out := ApplyPolicy([]Issue{first, second}, DefaultPolicyConfig())
	if len(out) != 1 {
		t.Fatalf("got %d issues, want 1 after dedupe", len(out))
	}
	if out[0].Message != "first occurrence" {
		t.Errorf("dedupe kept the wrong occurrence: %+v", out[0])
	}
}

func TestApplyPolicyRanking(t *testing.T) {
	issues := []Issue{
		testIssue(func(is *Issue) { is.ID = "nit"; is.Title = "a"; is.Confidence = 0.99 }),
		testIssue(func(is *Issue) {
			is.ID = "blocker"
			is.Title = "b"
			is.Severity = SeverityBlocker
			is.Confidence = 0.85
			is.Suggestion = "a real suggestion"
		}),
		testIssue(func(is *Issue) { is.ID = "q-low"; is.Title = "c"; is.Severity = SeverityQuestion; is.Confidence = 0.6 }),
		testIssue(func(is *Issue) { is.ID = "q-high"; is.Title = "d"; is.Severity = SeverityQuestion; is.Confidence = 0.9 }),
	}
	out := ApplyPolicy(issues, DefaultPolicyConfig())
	want := []string{"blocker", "q-high", "q-low", "nit"}
	if len(out) != len(want) {
		t.Fatalf("got %d issues, want %d", len(out), len(want))
	}
	for i, id := range want {
		if out[i].ID != id {
			t.Errorf("position %d = %s, want %s", i, out[i].ID, id)
		}
	}
}

func TestApplyPolicyCaps(t *testing.T) {
	cfg := DefaultPolicyConfig()
	cfg.MaxIssuesPerFile = 2
	cfg.MaxIssuesTotal = 3

	var issues []Issue
	for i := 0; i < 4; i++ {
		issues = append(issues, testIssue(func(is *Issue) {
			is.ID = string(rune('a' + i))
			is.Title = is.ID
			is.LineStart = i + 1
			is.LineEnd = i + 1
		}))
	}
	issues = append(issues, testIssue(func(is *Issue) {
		is.ID = "other"
		is.Title = "other file"
		is.Path = "src/other.go"
	}))

	out := ApplyPolicy(issues, cfg)
	if len(out) != 3 {
		t.Fatalf("got %d issues, want 3", len(out))
	}
	perFile := make(map[string]int)
	for _, is := range out {
		perFile[is.Path]++
	}
	for path, n := range perFile {
		if n > cfg.MaxIssuesPerFile {
			t.Errorf("%s has %d issues, cap is %d", path, n, cfg.MaxIssuesPerFile)
		}
	}
}

func TestApplyPolicyIdempotent(t *testing.T) {
	issues := []Issue{
		testIssue(func(is *Issue) {
			is.ID = "b"
			is.Title = "blocker"
			is.Severity = SeverityBlocker
			is.Confidence = 0.9
			is.Suggestion = "a concrete fix here"
		}),
		testIssue(nil),
		testIssue(func(is *Issue) { is.ID = "q"; is.Title = "question"; is.Severity = SeverityQuestion; is.Confidence = 0.7 }),
	}
	cfg := DefaultPolicyConfig()
	once := ApplyPolicy(issues, cfg)
	twice := ApplyPolicy(once, cfg)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("not a fixed point:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestApplyPolicyFillsFingerprint(t *testing.T) {
	out := ApplyPolicy([]Issue{testIssue(func(is *Issue) { is.Fingerprint = "" })}, DefaultPolicyConfig())
	if len(out) != 1 || out[0].Fingerprint == "" {
		t.Errorf("fingerprint not synthesized: %+v", out)
	}
}
