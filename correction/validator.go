package correction

import (
	"fmt"
	"regexp"
	"strings"
)

var itemSplitRe = regexp.MustCompile(`[\n;]+`)

// Validate checks text against an acceptance spec: either a "keys: a,b,c"
// required-phrase list or a free-form checklist split on newlines and
// semicolons. Every item is a case-insensitive literal substring
// requirement; there is no semantic matching. An empty spec always
// passes.
func Validate(text, spec string) ValidationResult {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return ValidationResult{Pass: true, Missing: []string{}, Reason: "no acceptance criteria"}
	}

	lowerText := strings.ToLower(text)

	if strings.Contains(strings.ToLower(spec), "keys:") {
		_, after, _ := strings.Cut(spec, ":")
		keys := splitAndTrim(strings.ReplaceAll(after, "\n", ","), ",")
		missing := missingItems(lowerText, keys)
		return ValidationResult{
			Pass:    len(missing) == 0,
			Missing: missing,
			Reason:  fmt.Sprintf("required keys %v", keys),
		}
	}

	items := trimItems(itemSplitRe.Split(spec, -1))
	if len(items) == 1 && strings.Contains(items[0], ",") {
		items = splitAndTrim(items[0], ",")
	}

	missing := missingItems(lowerText, items)
	return ValidationResult{
		Pass:    len(missing) == 0,
		Missing: missing,
		Reason:  "checklist",
	}
}

func splitAndTrim(s, sep string) []string {
	return trimItems(strings.Split(s, sep))
}

func trimItems(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func missingItems(lowerText string, items []string) []string {
	missing := []string{}
	for _, item := range items {
		if !strings.Contains(lowerText, strings.ToLower(item)) {
			missing = append(missing, item)
		}
	}
	return missing
}
