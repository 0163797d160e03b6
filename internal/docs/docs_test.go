package docs

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/mfields/critic/internal/review"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestPathsDiscoversKnownDocs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README.md", "project overview")
	writeFile(t, root, "docs/CONTRIBUTING.md", "how to contribute")
	writeFile(t, root, "ARCHITECTURE.md", "layers and boundaries")
	writeFile(t, root, "notes.txt", "not a doc")
	writeFile(t, root, "node_modules/pkg/README.md", "ignored")
	writeFile(t, root, ".git/README.md", "ignored")

	s := NewStore(root, io.Discard)
	paths := s.Paths()
	want := []string{"ARCHITECTURE.md", "README.md", "docs/CONTRIBUTING.md"}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for i, p := range want {
		if paths[i] != p {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], p)
		}
	}
}

func TestRetrieveMatchesKeywords(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README.md", "All exported functions need doc comments. Naming follows Go conventions.")
	writeFile(t, root, "CONTRIBUTING.md", "Run the linter before sending a patch.")

	s := NewStore(root, io.Discard)
	results := s.Retrieve("naming conventions")
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1: %v", len(results), results)
	}
	ev := results[0]
	if ev.Kind != review.EvidenceDoc || ev.Source != "README.md" {
		t.Errorf("evidence = %+v", ev)
	}
	if !strings.Contains(strings.ToLower(ev.Excerpt), "naming") {
		t.Errorf("excerpt = %q, want it to contain the matched term", ev.Excerpt)
	}
}

func TestRetrieveNoMatch(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README.md", "nothing relevant here")

	s := NewStore(root, io.Discard)
	if results := s.Retrieve("quantum chromodynamics"); len(results) != 0 {
		t.Errorf("results = %v, want none", results)
	}
}

func TestRetrieveEmptyQuery(t *testing.T) {
	s := NewStore(t.TempDir(), io.Discard)
	if results := s.Retrieve("   "); results != nil {
		t.Errorf("results = %v, want nil", results)
	}
}

func TestRetrieveCapsResults(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README.md", "testing guidance")
	writeFile(t, root, "a/README.md", "testing guidance")
	writeFile(t, root, "b/README.md", "testing guidance")
	writeFile(t, root, "c/README.md", "testing guidance")

	s := NewStore(root, io.Discard)
	if results := s.Retrieve("testing"); len(results) != maxResults {
		t.Errorf("got %d results, want %d", len(results), maxResults)
	}
}

func TestExcerptAround(t *testing.T) {
	content := strings.Repeat("a", 100) + "needle" + strings.Repeat("b", 300)
	got := excerptAround(content, 100)
	if !strings.Contains(got, "needle") {
		t.Errorf("excerpt = %q, want needle", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("excerpt missing ellipsis: %q", got)
	}
	if len(got) > excerptBefore+excerptAfter+3 {
		t.Errorf("excerpt too long: %d bytes", len(got))
	}

	if got := excerptAround("short", -1); !strings.HasPrefix(got, "short") {
		t.Errorf("excerptAround(-1) = %q", got)
	}
}

func TestExcerptAroundKeepsRunesIntact(t *testing.T) {
	content := strings.Repeat("é", 80) + "needle" + strings.Repeat("日", 300)
	got := excerptAround(content, strings.Index(content, "needle"))
	if !utf8.ValidString(got) {
		t.Errorf("excerpt is not valid UTF-8: %q", got)
	}
	if !strings.Contains(got, "needle") {
		t.Errorf("excerpt = %q, want needle", got)
	}
}
