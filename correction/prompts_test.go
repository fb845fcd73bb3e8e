package correction

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/UnfitBeard/prompt-eval/retrieval"
)

func TestBuildEvalUserMessage(t *testing.T) {
	examples := []retrieval.Example{
		{
			Content:  "Example prompt body",
			Metadata: map[string]string{"source_url": "https://example.test/1", "prompt_preview": "Example..."},
		},
	}

	msg := buildEvalUserMessage("my prompt", examples, 0)

	assert.Contains(t, msg, `"""my prompt"""`)
	assert.Contains(t, msg, "https://example.test/1")
	assert.Contains(t, msg, "Example prompt body")
}

func TestBuildEvalUserMessageNoExamples(t *testing.T) {
	msg := buildEvalUserMessage("my prompt", nil, 0)
	assert.Contains(t, msg, "no similar examples retrieved")
}

func TestBuildImproveUserMessageHint(t *testing.T) {
	withHint := buildImproveUserMessage("p", nil, []string{"constraints", "examples"}, 0)
	assert.Contains(t, withHint, "MISSING_ITEMS: constraints; examples")

	withoutHint := buildImproveUserMessage("p", nil, nil, 0)
	assert.NotContains(t, withoutHint, "MISSING_ITEMS")
}

func TestTruncatePreviewBoundsLongText(t *testing.T) {
	long := strings.Repeat("lorem ipsum dolor sit amet ", 200)
	short := "short text"

	truncated := truncatePreview(long, 50)
	assert.Less(t, len(truncated), len(long))

	assert.Equal(t, short, truncatePreview(short, 50))
}

func TestImproveSystemPromptEmbedsSchema(t *testing.T) {
	system := ImproveSystemPrompt()
	assert.Contains(t, system, "improved_prompt")
	assert.Contains(t, system, "$schema")
}
