package correction

import (
	"encoding/json"

	"github.com/UnfitBeard/prompt-eval/llm"
)

// Note is a free-text remark attached to suggestions and improvements.
type Note struct {
	Text string `json:"text"`
}

// RewriteVersion is one rewrite proposal inside a generator payload.
type RewriteVersion struct {
	Title        string `json:"title"`
	Content      string `json:"content"`
	Prompt       string `json:"prompt"`
	Improvements []Note `json:"improvements"`
}

func (r RewriteVersion) text() string {
	if r.Content != "" {
		return r.Content
	}
	return r.Prompt
}

// EvalPayload is the normalized form of a generator response. Generator
// output varies across the evaluation and improve shapes; this struct
// covers the union so candidate extraction deals with one type. The
// advisory per-dimension scores and suggestions are hints only; they
// never gate acceptance.
type EvalPayload struct {
	Clarity     *float64 `json:"clarity"`
	Context     *float64 `json:"context"`
	Relevance   *float64 `json:"relevance"`
	Specificity *float64 `json:"specificity"`
	Creativity  *float64 `json:"creativity"`

	Suggestions     []Note            `json:"suggestions"`
	RewriteVersions []RewriteVersion  `json:"rewriteVersions"`
	ImprovedPrompt  string            `json:"improved_prompt"`
	Candidates      []json.RawMessage `json:"candidates"`
	Rating          *float64          `json:"rating"`
	Explanation     string            `json:"explanation"`
}

// ParsePayload extracts and decodes the JSON object in a raw generator
// response. Returns false when no payload can be recovered; the caller
// then falls back to treating the raw text as a single candidate.
func ParsePayload(raw string) (*EvalPayload, bool) {
	obj, ok := llm.ExtractJSON(raw)
	if !ok {
		return nil, false
	}
	var payload EvalPayload
	if err := json.Unmarshal([]byte(obj), &payload); err != nil {
		return nil, false
	}
	return &payload, true
}

// CandidateTexts normalizes every rewrite shape the generator is known
// to produce into a flat list of prompt strings, deduplicated by exact
// equality with first-seen order preserved.
func (p *EvalPayload) CandidateTexts() []string {
	if p == nil {
		return nil
	}

	var out []string
	for _, v := range p.RewriteVersions {
		if text := v.text(); text != "" {
			out = append(out, text)
		}
	}
	if p.ImprovedPrompt != "" {
		out = append(out, p.ImprovedPrompt)
	}
	for _, raw := range p.Candidates {
		if text := candidateText(raw); text != "" {
			out = append(out, text)
		}
	}

	return dedupe(out)
}

// candidateText accepts either a bare string or an object carrying the
// text under content, text or prompt.
func candidateText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Content string `json:"content"`
		Text    string `json:"text"`
		Prompt  string `json:"prompt"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}
	switch {
	case obj.Content != "":
		return obj.Content
	case obj.Text != "":
		return obj.Text
	default:
		return obj.Prompt
	}
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}
