package llm

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ExtractJSON pulls a JSON object out of a raw generator response. It
// tries, in order: the contents of a fenced code block, the response as a
// bare object, a balanced-brace scan for an object embedded in prose, and
// finally a repair pass over the most promising span. Returns false when
// no valid object can be recovered.
func ExtractJSON(raw string) (string, bool) {
	if strings.TrimSpace(raw) == "" {
		return "", false
	}

	for _, fenced := range extractFencedBlocks(raw) {
		if obj, ok := validObject(fenced); ok {
			return obj, true
		}
	}

	trimmed := strings.TrimSpace(raw)
	if obj, ok := validObject(trimmed); ok {
		return obj, true
	}

	if span, ok := scanBalancedObject(raw); ok {
		if obj, ok := validObject(span); ok {
			return obj, true
		}
		if repaired, err := jsonrepair.JSONRepair(span); err == nil {
			if obj, ok := validObject(repaired); ok {
				return obj, true
			}
		}
	}

	if repaired, err := jsonrepair.JSONRepair(trimmed); err == nil {
		if obj, ok := validObject(repaired); ok {
			return obj, true
		}
	}

	return "", false
}

func validObject(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") || !json.Valid([]byte(s)) {
		return "", false
	}
	return s, true
}

// extractFencedBlocks returns the inner text of every ``` fenced block,
// in order. An optional language tag after the opening fence is dropped.
func extractFencedBlocks(s string) []string {
	var blocks []string
	for {
		start := strings.Index(s, "```")
		if start == -1 {
			return blocks
		}
		rest := s[start+3:]
		// drop the language tag line, if any
		if nl := strings.IndexByte(rest, '\n'); nl != -1 && !strings.Contains(rest[:nl], "```") {
			firstLine := strings.TrimSpace(rest[:nl])
			if firstLine != "" && !strings.ContainsAny(firstLine, "{}") {
				rest = rest[nl+1:]
			}
		}
		end := strings.Index(rest, "```")
		if end == -1 {
			// unterminated fence: take the remainder
			blocks = append(blocks, strings.TrimSpace(rest))
			return blocks
		}
		blocks = append(blocks, strings.TrimSpace(rest[:end]))
		s = rest[end+3:]
	}
}

// scanBalancedObject finds the first balanced {...} span in s, tracking
// string literals and escapes so nested braces inside values are handled.
func scanBalancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
