package docs

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/mfields/critic/internal/review"
)

const (
	// maxResults caps how many documents one query returns.
	maxResults = 3
	// excerptBefore/excerptAfter bound the window around the first
	// matching term.
	excerptBefore = 50
	excerptAfter  = 200
)

// docFilenames are the well-known project documents worth indexing,
// compared case-insensitively.
var docFilenames = map[string]bool{
	"README.MD":       true,
	"CONTRIBUTING.MD": true,
	"STYLE_GUIDE.MD":  true,
	"ARCHITECTURE.MD": true,
}

var ignoredDirs = map[string]bool{
	".git":         true,
	".venv":        true,
	"__pycache__":  true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
}

type document struct {
	path    string // relative to the root, slash-separated
	content string
}

// Store discovers and indexes project documentation under a workspace
// root, then serves naive keyword queries against it. Documents are
// loaded once, on first use.
type Store struct {
	root string
	log  io.Writer

	once sync.Once
	docs []document
}

// NewStore creates a Store rooted at the given directory. A nil log
// writer means stderr.
func NewStore(root string, log io.Writer) *Store {
	if log == nil {
		log = os.Stderr
	}
	return &Store{root: root, log: log}
}

func (s *Store) load() {
	s.once.Do(func() {
		var paths []string
		err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if path != s.root && ignoredDirs[d.Name()] {
					return filepath.SkipDir
				}
				return nil
			}
			if docFilenames[strings.ToUpper(d.Name())] {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			fmt.Fprintf(s.log, "critic: doc discovery failed: %v\n", err)
			return
		}
		sort.Strings(paths)

		for _, path := range paths {
			content, err := os.ReadFile(path)
			if err != nil {
				fmt.Fprintf(s.log, "critic: failed to read doc %s: %v\n", path, err)
				continue
			}
			rel, err := filepath.Rel(s.root, path)
			if err != nil {
				rel = path
			}
			s.docs = append(s.docs, document{
				path:    filepath.ToSlash(rel),
				content: string(content),
			})
		}
	})
}

// Paths returns the discovered document paths, relative to the root.
func (s *Store) Paths() []string {
	s.load()
	out := make([]string, len(s.docs))
	for i, d := range s.docs {
		out[i] = d.path
	}
	return out
}

// Retrieve scores each document by keyword occurrence and returns an
// excerpt around the first matching term for each document that
// matched, best-effort and bounded. It implements review.Retriever.
func (s *Store) Retrieve(query string) []review.Evidence {
	s.load()

	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil
	}

	var results []review.Evidence
	for _, doc := range s.docs {
		lower := strings.ToLower(doc.content)
		score := 0
		for _, term := range terms {
			score += strings.Count(lower, term)
		}
		if score == 0 {
			continue
		}

		results = append(results, review.Evidence{
			Kind:    review.EvidenceDoc,
			Source:  doc.path,
			Excerpt: excerptAround(doc.content, strings.Index(lower, terms[0])),
		})
		if len(results) == maxResults {
			break
		}
	}
	return results
}

// excerptAround slices a window around idx, clamped to the content
// bounds and to rune boundaries. idx may be -1 when the first term did
// not match; the window then starts at the top of the document.
func excerptAround(content string, idx int) string {
	if idx < 0 {
		idx = 0
	}
	start := idx - excerptBefore
	if start < 0 {
		start = 0
	}
	for start > 0 && !utf8.RuneStart(content[start]) {
		start--
	}
	end := idx + excerptAfter
	if end > len(content) {
		end = len(content)
	}
	for end > start && end < len(content) && !utf8.RuneStart(content[end]) {
		end--
	}
	return content[start:end] + "..."
}
