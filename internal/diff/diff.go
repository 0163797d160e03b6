package diff

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	// maxExcerptLineChars bounds each line included in an excerpt.
	maxExcerptLineChars = 200
	// maxExcerptChars bounds the total excerpt length.
	maxExcerptChars = 500
	// fallbackExcerpt is returned when a file carries no hunks at all.
	fallbackExcerpt = "See changed diff context."
)

// Hunk is one contiguous change region of a unified diff, with new-file
// line numbering.
type Hunk struct {
	Header   string   `json:"header"`
	Lines    []string `json:"lines"` // raw lines including the +/-/space prefix
	OldStart int      `json:"oldStart"`
	NewStart int      `json:"newStart"`
	OldLines int      `json:"oldLines"`
	NewLines int      `json:"newLines"`
}

// ChangedFile is one file of a change set as reported by the forge.
// It is immutable once parsed; the pipeline reads it without mutation.
type ChangedFile struct {
	Path         string `json:"path"`
	OriginalPath string `json:"originalPath,omitempty"` // set for renames
	Status       string `json:"status"`                 // added, modified, deleted, renamed
	Hunks        []Hunk `json:"hunks,omitempty"`
	Additions    int    `json:"additions"`
	Deletions    int    `json:"deletions"`
}

var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// ParsePatch parses a unified-diff patch string into hunks. It never
// fails: malformed or empty input yields an empty slice. Lines before
// the first hunk header are discarded, and hunks that end up with zero
// body lines are dropped.
func ParsePatch(patch string) []Hunk {
	if patch == "" {
		return nil
	}

	var hunks []Hunk
	var current *Hunk

	flush := func() {
		if current != nil && len(current.Lines) > 0 {
			hunks = append(hunks, *current)
		}
		current = nil
	}

	for _, line := range strings.Split(patch, "\n") {
		m := hunkHeaderRe.FindStringSubmatch(line)
		if m == nil {
			if current != nil {
				current.Lines = append(current.Lines, line)
			}
			continue
		}

		flush()
		current = &Hunk{
			Header:   line,
			OldStart: atoiDefault(m[1], 1),
			OldLines: atoiDefault(m[2], 1),
			NewStart: atoiDefault(m[3], 1),
			NewLines: atoiDefault(m[4], 1),
		}
	}
	flush()

	return hunks
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// ExcerptForRange extracts the diff lines whose new-file line numbers
// fall in [lineStart, lineEnd]. Removed lines do not advance the
// new-file counter and are never included. When the range matches
// nothing it falls back to the first lines of the first hunk, and when
// the file has no hunks it returns a fixed placeholder, so callers
// always get usable evidence text.
func ExcerptForRange(file ChangedFile, lineStart, lineEnd int) string {
	targetStart := lineStart
	if targetStart < 1 {
		targetStart = 1
	}
	targetEnd := lineEnd
	if targetEnd < targetStart {
		targetEnd = targetStart
	}

	var matched []string
	for _, h := range file.Hunks {
		newLine := h.NewStart
		for _, raw := range h.Lines {
			var prefix byte
			if raw != "" {
				prefix = raw[0]
			}
			switch prefix {
			case '+', ' ':
				if newLine >= targetStart && newLine <= targetEnd {
					matched = append(matched, truncate(raw, maxExcerptLineChars))
				}
				newLine++
			case '-':
				// Deletions are not present in the new-file line space.
			}
		}
	}

	if len(matched) > 0 {
		return truncate(strings.Join(matched, "\n"), maxExcerptChars)
	}

	if len(file.Hunks) > 0 {
		lines := file.Hunks[0].Lines
		if len(lines) > 5 {
			lines = lines[:5]
		}
		fallback := strings.TrimSpace(strings.Join(lines, "\n"))
		if fallback != "" {
			return truncate(fallback, maxExcerptChars)
		}
	}

	return fallbackExcerpt
}

// DefaultLine picks the line a finding refers to when the model omitted
// a line range: the first added line's new-file number, else the first
// hunk's start, else 1.
func DefaultLine(file ChangedFile) int {
	for _, h := range file.Hunks {
		newLine := h.NewStart
		for _, raw := range h.Lines {
			var prefix byte
			if raw != "" {
				prefix = raw[0]
			}
			switch prefix {
			case '+':
				return newLine
			case ' ':
				newLine++
			}
		}
	}
	if len(file.Hunks) > 0 {
		return file.Hunks[0].NewStart
	}
	return 1
}

// FormatHunks renders a file's hunks back into patch text for prompting.
func FormatHunks(file ChangedFile) string {
	var b strings.Builder
	for _, h := range file.Hunks {
		b.WriteString(h.Header)
		b.WriteString("\n")
		b.WriteString(strings.Join(h.Lines, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}

// truncate clips s to at most n bytes, backing up so a multi-byte
// rune is never split.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
