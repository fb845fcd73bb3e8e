// Package prompteval scores free-text prompts on five quality
// dimensions and, when a prompt falls short, runs a bounded
// self-correction loop: retrieve similar high-quality examples, ask a
// generator for rewrites, score the rewrites and adopt only clear
// improvements.
package prompteval

import (
	"context"
	"fmt"

	"github.com/UnfitBeard/prompt-eval/config"
	"github.com/UnfitBeard/prompt-eval/correction"
	"github.com/UnfitBeard/prompt-eval/llm"
	"github.com/UnfitBeard/prompt-eval/retrieval"
	"github.com/UnfitBeard/prompt-eval/score"
	"github.com/UnfitBeard/prompt-eval/utils"
)

// PromptEval wires the scorer, the example store and the generator into
// a ready-to-use correction pipeline.
type PromptEval struct {
	cfg       *config.Config
	logger    utils.Logger
	evaluator *score.Evaluator
	store     *retrieval.Store
	corrector *correction.Corrector
}

// New builds a pipeline from defaults plus the given options. The
// scorer is the built-in heuristic unless a scorer endpoint is
// configured; the example store is in-memory unless a store path is set.
func New(opts ...config.ConfigOption) (*PromptEval, error) {
	return NewFromConfig(config.NewConfig(opts...))
}

// NewFromEnv builds a pipeline from environment variables.
func NewFromEnv() (*PromptEval, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewFromConfig(cfg)
}

func NewFromConfig(cfg *config.Config) (*PromptEval, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key not set for provider %s", cfg.Provider)
	}
	logger := utils.NewLogger(cfg.LogLevel)

	var scorer score.Scorer
	if cfg.ScorerEndpoint != "" {
		scorer = score.NewHTTPScorer(cfg.ScorerEndpoint, nil)
	} else {
		scorer = score.NewHeuristicScorer()
	}
	evaluator := score.NewEvaluator(scorer, logger,
		score.WithScoreTimeout(cfg.ScoreTimeout),
		score.WithCacheSize(cfg.CacheSize),
	)

	store, err := retrieval.NewStore(retrieval.StoreConfig{
		PersistPath: cfg.StorePath,
		Collection:  cfg.Collection,
	})
	if err != nil {
		return nil, fmt.Errorf("open example store: %w", err)
	}
	retriever := retrieval.NewSafeRetriever(store, cfg.RetrieveTimeout, logger)

	client := llm.NewClient(cfg.Endpoint, cfg.Model, cfg.APIKey, logger,
		llm.WithRateLimit(cfg.RateEvery, cfg.RateBurst),
		llm.WithRetries(cfg.LLMMaxRetries, cfg.RetryDelay),
	)
	generator := correction.NewCandidateGenerator(client, logger,
		correction.WithPreviewTokens(cfg.PreviewTokens),
		correction.WithEvalTimeout(cfg.EvalTimeout),
		correction.WithImproveTimeout(cfg.ImproveTimeout),
	)

	return &PromptEval{
		cfg:       cfg,
		logger:    logger,
		evaluator: evaluator,
		store:     store,
		corrector: correction.NewCorrector(evaluator, retriever, generator, logger),
	}, nil
}

// Score evaluates a prompt without running the correction loop.
func (p *PromptEval) Score(ctx context.Context, prompt string) (score.Evaluation, error) {
	return p.evaluator.Evaluate(ctx, prompt)
}

// Correct runs the full self-correction loop with the configured
// thresholds and budgets. The acceptance string is an optional
// checklist ("keys: a, b" or newline/semicolon-separated items) the
// accepted prompt must mention.
func (p *PromptEval) Correct(ctx context.Context, prompt, acceptance string) (*correction.Result, error) {
	opts := correction.Options{
		K:                     p.cfg.RetrieveK,
		MaxRetries:            p.cfg.MaxRetries,
		OverallThreshold:      p.cfg.OverallThreshold,
		Acceptance:            acceptance,
		MaxCandidatesPerRound: p.cfg.MaxCandidates,
	}
	return p.corrector.Run(ctx, prompt, opts)
}

// CorrectWithOptions runs the loop with caller-controlled options.
func (p *PromptEval) CorrectWithOptions(ctx context.Context, prompt string, opts correction.Options) (*correction.Result, error) {
	return p.corrector.Run(ctx, prompt, opts)
}

// Seed ingests reference examples into the store.
func (p *PromptEval) Seed(ctx context.Context, examples []retrieval.Example) error {
	return p.store.Add(ctx, examples)
}

// StoreCount returns the number of stored reference examples.
func (p *PromptEval) StoreCount() int {
	return p.store.Count()
}
