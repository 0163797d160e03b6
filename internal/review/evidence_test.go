package review

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/mfields/critic/internal/diff"
)

const samplePatch = "@@ -1,3 +1,4 @@\n line1\n-line2\n+line2_new\n+line3_new"

func sampleFile() diff.ChangedFile {
	return diff.ChangedFile{
		Path:   "src/a.go",
		Status: "modified",
		Hunks:  diff.ParsePatch(samplePatch),
	}
}

func TestBuildEvidencePrefersDocs(t *testing.T) {
	docs := []Evidence{
		{Kind: EvidenceDoc, Source: "CONTRIBUTING.md", Excerpt: "error returns must be checked"},
		{Kind: EvidenceDoc, Source: "README.md", Excerpt: "second entry"},
	}
	ev := BuildEvidence(sampleFile(), docs, 2, 2)
	if ev.Kind != EvidenceDoc || ev.Source != "CONTRIBUTING.md" {
		t.Errorf("evidence = %+v, want first doc entry", ev)
	}
	if ev.Excerpt != "error returns must be checked" {
		t.Errorf("excerpt = %q", ev.Excerpt)
	}
}

func TestBuildEvidenceBlankDocExcerpt(t *testing.T) {
	docs := []Evidence{{Kind: EvidenceDoc, Source: "STYLE_GUIDE.md"}}
	ev := BuildEvidence(sampleFile(), docs, 2, 2)
	if ev.Excerpt != docPlaceholderExcerpt {
		t.Errorf("excerpt = %q, want placeholder", ev.Excerpt)
	}
}

func TestBuildEvidenceTruncatesDocExcerpt(t *testing.T) {
	docs := []Evidence{{Kind: EvidenceDoc, Source: "README.md", Excerpt: strings.Repeat("x", 900)}}
	ev := BuildEvidence(sampleFile(), docs, 1, 1)
	if len(ev.Excerpt) != maxEvidenceExcerpt {
		t.Errorf("excerpt length = %d, want %d", len(ev.Excerpt), maxEvidenceExcerpt)
	}
}

func TestBuildEvidenceTruncationKeepsRunesIntact(t *testing.T) {
	docs := []Evidence{{Kind: EvidenceDoc, Source: "README.md", Excerpt: strings.Repeat("日本語", 300)}}
	ev := BuildEvidence(sampleFile(), docs, 1, 1)
	if len(ev.Excerpt) > maxEvidenceExcerpt {
		t.Errorf("excerpt length = %d, want <= %d", len(ev.Excerpt), maxEvidenceExcerpt)
	}
	if !utf8.ValidString(ev.Excerpt) {
		t.Errorf("excerpt is not valid UTF-8: %q", ev.Excerpt)
	}
}

func TestBuildEvidenceDiffFallback(t *testing.T) {
	ev := BuildEvidence(sampleFile(), nil, 2, 2)
	if ev.Kind != EvidenceDiff {
		t.Fatalf("kind = %q, want DIFF", ev.Kind)
	}
	if ev.Source != "src/a.go:2" {
		t.Errorf("source = %q, want src/a.go:2", ev.Source)
	}
	if !strings.Contains(ev.Excerpt, "line2_new") {
		t.Errorf("excerpt = %q, want it to contain line2_new", ev.Excerpt)
	}
}

func TestResolveLineRange(t *testing.T) {
	file := sampleFile()
	intp := func(n int) *int { return &n }

	tests := []struct {
		name      string
		candidate IssueCandidate
		wantStart int
		wantEnd   int
	}{
		{"explicit range", IssueCandidate{LineStart: intp(2), LineEnd: intp(4)}, 2, 4},
		{"end before start", IssueCandidate{LineStart: intp(3), LineEnd: intp(1)}, 3, 3},
		{"missing range uses first added line", IssueCandidate{}, 2, 2},
		{"zero start clamps", IssueCandidate{LineStart: intp(0)}, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := resolveLineRange(file, tt.candidate)
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("resolveLineRange = (%d, %d), want (%d, %d)", start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}
