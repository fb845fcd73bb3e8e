package correction

import (
	"context"
	"strings"
	"time"

	"github.com/UnfitBeard/prompt-eval/llm"
	"github.com/UnfitBeard/prompt-eval/retrieval"
	"github.com/UnfitBeard/prompt-eval/utils"
)

// CandidateGenerator builds evaluation and improve prompts, invokes the
// generator oracle and normalizes its output into candidate prompt
// strings.
type CandidateGenerator struct {
	generator      llm.Generator
	logger         utils.Logger
	previewTokens  int
	evalTimeout    time.Duration
	improveTimeout time.Duration
}

type GeneratorOption func(*CandidateGenerator)

func WithPreviewTokens(n int) GeneratorOption {
	return func(g *CandidateGenerator) { g.previewTokens = n }
}

func WithEvalTimeout(d time.Duration) GeneratorOption {
	return func(g *CandidateGenerator) { g.evalTimeout = d }
}

func WithImproveTimeout(d time.Duration) GeneratorOption {
	return func(g *CandidateGenerator) { g.improveTimeout = d }
}

func NewCandidateGenerator(generator llm.Generator, logger utils.Logger, opts ...GeneratorOption) *CandidateGenerator {
	g := &CandidateGenerator{
		generator:      generator,
		logger:         logger,
		previewTokens:  defaultPreviewTokens,
		evalTimeout:    10 * time.Second,
		improveTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// temperatureFor increases sampling variability modestly with the retry
// count to escape local optima without losing coherence.
func temperatureFor(retry int) float64 {
	switch {
	case retry <= 0:
		return 0.0
	case retry == 1:
		return 0.2
	default:
		return 0.4
	}
}

// Evaluate runs the diagnostic evaluation call. A nil payload with nil
// error means the response carried no parseable JSON; its advisory
// content is simply unavailable.
func (g *CandidateGenerator) Evaluate(ctx context.Context, prompt string, examples []retrieval.Example) (*EvalPayload, string, error) {
	raw, err := g.generator.Generate(ctx,
		EvalSystemPrompt,
		buildEvalUserMessage(prompt, examples, g.previewTokens),
		llm.WithTemperature(0),
		llm.WithTimeout(g.evalTimeout),
	)
	if err != nil {
		return nil, "", err
	}

	payload, ok := ParsePayload(raw)
	if !ok {
		g.logger.Warn("evaluation response carried no parseable JSON")
		return nil, raw, nil
	}
	return payload, raw, nil
}

// Improve runs a dedicated improve call and returns the extracted
// candidates. Unparseable output falls back to the raw response as a
// single candidate rather than discarding the round.
func (g *CandidateGenerator) Improve(ctx context.Context, prompt string, examples []retrieval.Example, missing []string, retry, maxCandidates int) ([]string, *EvalPayload, string, error) {
	raw, err := g.generator.Generate(ctx,
		ImproveSystemPrompt(),
		buildImproveUserMessage(prompt, examples, missing, g.previewTokens),
		llm.WithTemperature(temperatureFor(retry)),
		llm.WithTimeout(g.improveTimeout),
	)
	if err != nil {
		return nil, nil, "", err
	}

	payload, ok := ParsePayload(raw)
	if !ok {
		text := strings.TrimSpace(raw)
		if text == "" {
			return nil, nil, raw, newError(ErrKindMalformedOutput, "generator returned empty output", nil)
		}
		g.logger.Warn("improve response unparseable, using raw text as fallback candidate")
		return []string{text}, nil, raw, nil
	}

	texts := payload.CandidateTexts()
	if len(texts) > maxCandidates {
		texts = texts[:maxCandidates]
	}
	return texts, payload, raw, nil
}
