package review

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/mfields/critic/internal/diff"
	"github.com/mfields/critic/internal/filter"
	"github.com/mfields/critic/internal/llm"
)

func nitResponse(title string) string {
	return fmt.Sprintf(`{"issues": [{"severity": "NIT", "category": "STYLE",
		"title": %q, "message": "details", "confidence": 0.9}]}`, title)
}

func fiveFileResult() filter.Result {
	var files []diff.ChangedFile
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		files = append(files, diff.ChangedFile{
			Path:   "src/" + name + ".go",
			Status: "modified",
			Hunks:  diff.ParsePatch(samplePatch),
		})
	}
	return filter.Result{FilesToReview: files, RiskScore: 10, RiskFactors: []string{"api"}}
}

func TestRunStopsOnRateLimitKeepingPartialResults(t *testing.T) {
	fake := &fakeCompleter{script: []scripted{
		{text: `{"files_to_review": ["src/a.go", "src/b.go", "src/c.go", "src/d.go", "src/e.go"],
			"focus_areas": [], "budget": "normal", "summary": "wide change"}`},
		{text: nitResponse("issue in a")},
		{text: nitResponse("issue in b")},
		{err: &llm.RetryExhaustedError{Attempts: 3, Err: &llm.RateLimitError{Message: "429"}}},
	}}
	e := NewEngine(NewAnalyzer(fake, nil, io.Discard), DefaultPolicyConfig(), nil, io.Discard)

	res := e.Run(context.Background(), fiveFileResult(), PRInfo{Title: "big change"})

	if len(res.Issues) != 2 {
		t.Fatalf("got %d issues, want 2 from the files before the rate limit", len(res.Issues))
	}
	paths := map[string]bool{}
	for _, is := range res.Issues {
		paths[is.Path] = true
	}
	if !paths["src/a.go"] || !paths["src/b.go"] {
		t.Errorf("issue paths = %v, want src/a.go and src/b.go", paths)
	}
	if res.Stats.FilesAnalyzed != 2 {
		t.Errorf("files analyzed = %d, want 2", res.Stats.FilesAnalyzed)
	}
	if !strings.Contains(res.Summary, "stopped early due to LLM rate limits") {
		t.Errorf("summary = %q, want a partial-review notice", res.Summary)
	}
	// The triage call plus three file calls; files d and e never reach
	// the model.
	if fake.calls != 4 {
		t.Errorf("model calls = %d, want 4", fake.calls)
	}
}

func TestRunTriageRateLimitReviewsNothing(t *testing.T) {
	fake := &fakeCompleter{script: []scripted{
		{err: &llm.RateLimitError{Message: "429"}},
	}}
	e := NewEngine(NewAnalyzer(fake, nil, io.Discard), DefaultPolicyConfig(), nil, io.Discard)

	res := e.Run(context.Background(), fiveFileResult(), PRInfo{})
	if len(res.Issues) != 0 || res.Stats.FilesAnalyzed != 0 {
		t.Errorf("result = %+v, want an empty run", res)
	}
	if !strings.Contains(res.Summary, "rate limits") {
		t.Errorf("summary = %q, want the triage rate-limit explanation", res.Summary)
	}
	if fake.calls != 1 {
		t.Errorf("model calls = %d, want only the triage call", fake.calls)
	}
}

func TestRunFollowsPlanOrder(t *testing.T) {
	fake := &fakeCompleter{script: []scripted{
		{text: `{"files_to_review": ["src/b.go", "src/a.go"], "focus_areas": [], "budget": "normal"}`},
		{text: nitResponse("first reviewed")},
		{text: nitResponse("second reviewed")},
	}}
	e := NewEngine(NewAnalyzer(fake, nil, io.Discard), DefaultPolicyConfig(), nil, io.Discard)

	res := e.Run(context.Background(), testFilterResult(), PRInfo{})
	if len(res.Issues) != 2 {
		t.Fatalf("got %d issues, want 2", len(res.Issues))
	}
	// NIT issues with equal confidence keep processing order.
	if res.Issues[0].Path != "src/b.go" || res.Issues[1].Path != "src/a.go" {
		t.Errorf("issue order = %s, %s; want plan order b then a",
			res.Issues[0].Path, res.Issues[1].Path)
	}
}

func TestRunSkipsUnknownPlannedFiles(t *testing.T) {
	fake := &fakeCompleter{script: []scripted{
		{text: `{"files_to_review": ["src/ghost.go", "src/a.go"], "focus_areas": [], "budget": "normal"}`},
		{text: `{"issues": []}`},
	}}
	e := NewEngine(NewAnalyzer(fake, nil, io.Discard), DefaultPolicyConfig(), nil, io.Discard)

	res := e.Run(context.Background(), testFilterResult(), PRInfo{})
	if res.Stats.FilesAnalyzed != 1 {
		t.Errorf("files analyzed = %d, want 1", res.Stats.FilesAnalyzed)
	}
	if fake.calls != 2 {
		t.Errorf("model calls = %d, want 2", fake.calls)
	}
}

type stubRetriever struct {
	queries []string
	result  []Evidence
}

func (s *stubRetriever) Retrieve(query string) []Evidence {
	s.queries = append(s.queries, query)
	return s.result
}

func TestRunConsultsRetriever(t *testing.T) {
	retriever := &stubRetriever{result: []Evidence{
		{Kind: EvidenceDoc, Source: "CONTRIBUTING.md", Excerpt: "check all errors"},
	}}
	fake := &fakeCompleter{script: []scripted{
		{text: `{"files_to_review": ["src/a.go"], "focus_areas": [], "budget": "normal"}`},
		{text: nitResponse("doc-backed issue")},
	}}
	e := NewEngine(NewAnalyzer(fake, nil, io.Discard), DefaultPolicyConfig(), retriever, io.Discard)

	res := e.Run(context.Background(), testFilterResult(), PRInfo{})
	if len(retriever.queries) != 1 || !strings.Contains(retriever.queries[0], "src/a.go") {
		t.Errorf("retriever queries = %v", retriever.queries)
	}
	if len(res.Issues) != 1 || res.Issues[0].Evidence.Kind != EvidenceDoc {
		t.Errorf("issues = %+v, want doc-backed evidence", res.Issues)
	}
}

func TestDecide(t *testing.T) {
	pass := []Issue{testIssue(nil), testIssue(func(is *Issue) { is.Severity = SeverityQuestion })}
	if got := decide(pass); got != "PASS" {
		t.Errorf("decide = %q, want PASS", got)
	}

	warn := append(pass, testIssue(func(is *Issue) { is.Severity = SeverityImportant }))
	if got := decide(warn); got != "WARN" {
		t.Errorf("decide = %q, want WARN", got)
	}

	if got := decide(nil); got != "PASS" {
		t.Errorf("decide(nil) = %q, want PASS", got)
	}
}
