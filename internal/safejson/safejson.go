package safejson

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Clean strips markdown code-fence lines from model output. Fences can
// appear anywhere in the text, not just at the edges, so every line
// whose trimmed content starts with ``` is removed.
func Clean(text string) string {
	cleaned := strings.TrimSpace(text)
	if !strings.Contains(cleaned, "```") {
		return cleaned
	}

	lines := strings.Split(cleaned, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// ExtractBalanced returns the first balanced JSON object or array in
// text, tolerating surrounding prose. Quoted strings and escape
// sequences are honored, so brackets inside string values do not
// affect nesting. If no balanced payload exists the trimmed input is
// returned unchanged and the downstream decode reports the failure.
func ExtractBalanced(text string) string {
	start := -1
	for i := 0; i < len(text); i++ {
		if text[i] == '{' || text[i] == '[' {
			start = i
			break
		}
	}
	if start < 0 {
		return strings.TrimSpace(text)
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}

	return strings.TrimSpace(text)
}

// Parse cleans and extracts a JSON payload from raw model text and
// decodes it into v. A decode failure means the text contained no
// usable JSON at all; callers treat that as zero results.
func Parse(text string, v any) error {
	payload := ExtractBalanced(Clean(text))
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return fmt.Errorf("no valid JSON payload in model output: %w", err)
	}
	return nil
}

// ParseObject is Parse into a generic map, used by the coercion path.
func ParseObject(text string) (map[string]any, error) {
	var obj map[string]any
	if err := Parse(text, &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// StringField reads a string field from a generic object, returning
// empty when absent or not a string.
func StringField(obj map[string]any, key string) string {
	if s, ok := obj[key].(string); ok {
		return s
	}
	return ""
}

// StringList reads a list-of-strings field from a generic object.
// Non-list values coerce to nil; non-string elements are skipped.
func StringList(obj map[string]any, key string) []string {
	raw, ok := obj[key].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// FloatField reads a numeric field, returning def when absent or not a
// number.
func FloatField(obj map[string]any, key string, def float64) float64 {
	if f, ok := obj[key].(float64); ok {
		return f
	}
	return def
}

// IntPointer reads an optional integer field. JSON numbers decode as
// float64; anything else yields nil.
func IntPointer(obj map[string]any, key string) *int {
	f, ok := obj[key].(float64)
	if !ok {
		return nil
	}
	n := int(f)
	return &n
}

// StringPointer reads an optional string field, nil when absent.
func StringPointer(obj map[string]any, key string) *string {
	s, ok := obj[key].(string)
	if !ok {
		return nil
	}
	return &s
}

// ObjectList reads a list of generic objects, skipping elements that
// are not objects.
func ObjectList(obj map[string]any, key string) []map[string]any {
	raw, ok := obj[key].([]any)
	if !ok {
		return nil
	}
	var out []map[string]any
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
