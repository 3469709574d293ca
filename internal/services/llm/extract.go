package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoJSON is returned by DecodeJSON when no JSON value could be recovered.
var ErrNoJSON = errors.New("no JSON found in model output")

var (
	fencePattern  = regexp.MustCompile("(?i)```(?:json)?")
	objectPattern = regexp.MustCompile(`\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}`)
)

// Result is the outcome of ExtractJSON. When OK is false Value is nil and Raw
// holds the original text.
type Result struct {
	Value any
	Raw   string
	OK    bool
}

// Object returns the value as a JSON object, or nil.
func (r Result) Object() map[string]any {
	m, _ := r.Value.(map[string]any)
	return m
}

// ExtractJSON pulls the first JSON object or array out of noisy model output.
// It never panics; on total failure it returns Result{Raw: text}.
func ExtractJSON(text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Raw: text}
	}

	cleaned := strings.TrimSpace(fencePattern.ReplaceAllString(text, ""))

	if start := strings.IndexAny(cleaned, "{["); start >= 0 {
		candidate := balancedSpan(cleaned[start:])
		if v, ok := parseJSON(candidate); ok {
			return Result{Value: v, Raw: text, OK: true}
		}
		if v, ok := parseJSON(repairJSON(candidate)); ok {
			return Result{Value: v, Raw: text, OK: true}
		}
	}

	for _, match := range objectPattern.FindAllString(cleaned, -1) {
		if v, ok := parseJSON(match); ok {
			return Result{Value: v, Raw: text, OK: true}
		}
	}

	return Result{Raw: text}
}

// DecodeJSON extracts JSON from text and decodes it into v.
func DecodeJSON(text string, v any) error {
	res := ExtractJSON(text)
	if !res.OK {
		return ErrNoJSON
	}
	data, err := json.Marshal(res.Value)
	if err != nil {
		return fmt.Errorf("failed to re-encode extracted JSON: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode extracted JSON: %w", err)
	}
	return nil
}

func parseJSON(s string) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	switch v.(type) {
	case map[string]any, []any:
		return v, true
	}
	return nil, false
}

// balancedSpan returns s up to the bracket matching s[0], ignoring brackets
// inside strings. If s never balances the whole string is returned.
func balancedSpan(s string) string {
	depth := 0
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
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
				return s[:i+1]
			}
		}
	}
	return s
}

// repairJSON fixes the usual truncation damage: dangling commas, an
// unterminated string and missing closers.
func repairJSON(s string) string {
	out := make([]byte, 0, len(s)+8)
	var closers []byte
	inString, escaped := false, false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			out = append(out, c)
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
		case '{':
			closers = append(closers, '}')
		case '[':
			closers = append(closers, ']')
		case '}', ']':
			if len(closers) == 0 || closers[len(closers)-1] != c {
				continue
			}
			closers = closers[:len(closers)-1]
			out = trimDangling(out)
		}
		out = append(out, c)
	}

	if inString {
		if escaped {
			out = out[:len(out)-1]
		}
		out = append(out, '"')
	}
	for i := len(closers) - 1; i >= 0; i-- {
		out = trimDangling(out)
		out = append(out, closers[i])
	}
	return string(out)
}

// trimDangling removes trailing whitespace and a trailing comma. A key left
// without a value gets null.
func trimDangling(b []byte) []byte {
	for len(b) > 0 && isSpace(b[len(b)-1]) {
		b = b[:len(b)-1]
	}
	if len(b) == 0 {
		return b
	}
	switch b[len(b)-1] {
	case ',':
		b = b[:len(b)-1]
	case ':':
		b = append(b, "null"...)
	}
	return b
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\t' || c == '\r'
}
