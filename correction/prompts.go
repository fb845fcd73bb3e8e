package correction

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/pkoukk/tiktoken-go"

	"github.com/UnfitBeard/prompt-eval/retrieval"
)

// EvalSystemPrompt instructs the generator to act as a strict evaluator
// and return per-dimension scores, suggestions and rewrite proposals as
// JSON in a fenced code block.
const EvalSystemPrompt = `You are a strict evaluator for prompts.

Return ONLY JSON in a single fenced code block like:

` + "```json" + `
{
  "clarity": 7.5,
  "context": 7.0,
  "relevance": 9.0,
  "specificity": 7.5,
  "creativity": 6.0,
  "suggestions": [
    { "text": "Add input/output examples." },
    { "text": "Specify language/runtime and constraints." }
  ],
  "rewriteVersions": [
    { "title": "Enhanced Version", "content": "...", "improvements": [{ "text": "..." }] },
    { "title": "Alternative Version", "content": "...", "improvements": [{ "text": "..." }] },
    { "title": "Minimalist Version", "content": "...", "improvements": [{ "text": "..." }] }
  ]
}
` + "```" + `
Scoring scale: 1-10 (decimals allowed).`

// ImprovePayload is the improve-call response contract. Its reflected
// JSON schema is embedded into the improve system prompt.
type ImprovePayload struct {
	Rating         float64 `json:"rating" jsonschema:"minimum=0,maximum=10"`
	ImprovedPrompt string  `json:"improved_prompt" jsonschema:"required"`
	Explanation    string  `json:"explanation"`
}

var (
	improveSystemOnce sync.Once
	improveSystem     string
)

// ImproveSystemPrompt instructs the generator to produce a single
// improved, production-ready prompt matching the ImprovePayload schema.
func ImproveSystemPrompt() string {
	improveSystemOnce.Do(func() {
		var schemaText string
		schema := jsonschema.Reflect(&ImprovePayload{})
		if b, err := json.MarshalIndent(schema, "", "  "); err == nil {
			schemaText = string(b)
		}
		improveSystem = fmt.Sprintf(`You are a prompt-improvement assistant. Given a user prompt and a set of similar high-quality prompt examples, produce a single improved production-ready prompt.
Return JSON ONLY, valid against this schema:
%s

The improved prompt must be clear and contain intent, input/output spec, and constraints or examples where needed. Briefly explain what you changed.`, schemaText)
	})
	return improveSystem
}

// defaultPreviewTokens bounds each example snippet embedded into a
// generator message so prompt size stays controlled.
const defaultPreviewTokens = 150

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

// truncatePreview cuts text to at most maxTokens tokens. If the token
// encoder is unavailable it falls back to a rune cut at roughly four
// characters per token.
func truncatePreview(text string, maxTokens int) string {
	if maxTokens <= 0 {
		maxTokens = defaultPreviewTokens
	}

	encodingOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			encoding = enc
		}
	})

	if encoding == nil {
		limit := maxTokens * 4
		runes := []rune(text)
		if len(runes) <= limit {
			return text
		}
		return string(runes[:limit])
	}

	tokens := encoding.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return encoding.Decode(tokens[:maxTokens])
}

func formatExamples(examples []retrieval.Example, previewTokens int) string {
	if len(examples) == 0 {
		return "(no similar examples retrieved)\n"
	}
	var sb strings.Builder
	for i, ex := range examples {
		sb.WriteString(fmt.Sprintf("%d) source: %s\n", i+1, ex.Metadata["source_url"]))
		if preview := ex.Metadata["prompt_preview"]; preview != "" {
			sb.WriteString(fmt.Sprintf("PROMPT_PREVIEW: %s\n", preview))
		}
		sb.WriteString(fmt.Sprintf("CONTENT_SNIPPET: %s\n\n", truncatePreview(ex.Content, previewTokens)))
	}
	return sb.String()
}

// buildEvalUserMessage embeds the prompt under evaluation and the
// retrieved examples.
func buildEvalUserMessage(prompt string, examples []retrieval.Example, previewTokens int) string {
	return fmt.Sprintf(`PROMPT TO EVALUATE:
"""%s"""

Similar prompt examples:
%s`, prompt, formatExamples(examples, previewTokens))
}

// buildImproveUserMessage embeds the prompt to improve, the retrieved
// examples and, on retries, a hint naming the missing acceptance items.
func buildImproveUserMessage(prompt string, examples []retrieval.Example, missing []string, previewTokens int) string {
	hint := ""
	if len(missing) > 0 {
		hint = "\n\nMISSING_ITEMS: " + strings.Join(missing, "; ") +
			". Try to be concise and explicitly include these acceptance items."
	}
	return fmt.Sprintf(`User prompt:
"""%s"""%s

Here are similar high-quality prompts:
%s
Task:
1) Provide a numeric rating 0-10.
2) Return an improved prompt that is clear, contains intent, input/output spec, constraints/examples if needed.
3) Briefly (1-2 sentences) explain what you changed.

Return JSON ONLY in the shape specified in the system prompt.`, prompt, hint, formatExamples(examples, previewTokens))
}
