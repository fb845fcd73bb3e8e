package correction

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/UnfitBeard/prompt-eval/retrieval"
	"github.com/UnfitBeard/prompt-eval/score"
	"github.com/UnfitBeard/prompt-eval/utils"
)

// Options configures one correction run.
type Options struct {
	// K is the number of similar examples retrieved per round. Zero
	// disables retrieval entirely.
	K int `validate:"min=0"`
	// MaxRetries bounds generation rounds. Zero means score-only.
	MaxRetries int `validate:"min=0"`
	// OverallThreshold accepts a prompt whose mean final score reaches
	// it. Leave zero to use per-dimension thresholds instead.
	OverallThreshold float64 `validate:"omitempty,min=1,max=10"`
	// DimensionThresholds, when OverallThreshold is zero, require each
	// listed dimension's final score to reach its value.
	DimensionThresholds map[score.Dimension]float64 `validate:"dive,min=1,max=10"`
	// Acceptance is the free-text acceptance criteria checked by
	// Validate. Empty means no checklist.
	Acceptance string
	// MaxCandidatesPerRound caps how many candidates are scored per
	// round, whatever the generator produced.
	MaxCandidatesPerRound int `validate:"omitempty,min=1,max=10"`
}

// DefaultOptions mirrors the production defaults of the loop.
func DefaultOptions() Options {
	return Options{
		K:                     6,
		MaxRetries:            2,
		OverallThreshold:      7.0,
		MaxCandidatesPerRound: 3,
	}
}

var optionsValidate = validator.New()

// Corrector drives the self-correction loop over the three adapters:
// the scoring evaluator, the example retriever and the candidate
// generator.
type Corrector struct {
	evaluator *score.Evaluator
	retriever retrieval.Retriever
	generator *CandidateGenerator
	logger    utils.Logger
}

func NewCorrector(evaluator *score.Evaluator, retriever retrieval.Retriever, generator *CandidateGenerator, logger utils.Logger) *Corrector {
	return &Corrector{
		evaluator: evaluator,
		retriever: retriever,
		generator: generator,
		logger:    logger,
	}
}

// passes reports whether an evaluation clears the configured thresholds.
func passes(eval score.Evaluation, opts Options) bool {
	if opts.OverallThreshold > 0 {
		return eval.Overall >= opts.OverallThreshold-scoreEpsilon
	}
	for dim, floor := range opts.DimensionThresholds {
		if eval.Final[dim] < floor-scoreEpsilon {
			return false
		}
	}
	return true
}

// retrieve fetches similar examples, absorbing retrieval failures into
// an empty result so the loop keeps running without examples.
func (c *Corrector) retrieve(ctx context.Context, text string, k int) []retrieval.Example {
	if c.retriever == nil || k <= 0 {
		return nil
	}
	examples, err := c.retriever.Retrieve(ctx, text, k)
	if err != nil {
		c.logger.Warn("retrieval degraded, continuing without examples", "error", err)
		return nil
	}
	return examples
}

func limitCandidates(texts []string, limit int) []string {
	if len(texts) > limit {
		return texts[:limit]
	}
	return texts
}

// run carries the mutable state of one invocation so the round logic
// stays readable.
type run struct {
	opts     Options
	start    time.Time
	best     Candidate
	attempts []Attempt
	seen     map[string]bool
}

func (r *run) log(a Attempt) {
	a.Timestamp = time.Now()
	r.attempts = append(r.attempts, a)
}

func (r *run) result(success bool) *Result {
	return &Result{
		Success:        success,
		Best:           r.best,
		Attempts:       r.attempts,
		ElapsedSeconds: time.Since(r.start).Seconds(),
	}
}

// Run executes the self-correction loop for prompt and returns the best
// prompt found, the full attempt log and whether the thresholds were
// met. Scorer failures are fatal at any point; a generator failure is
// fatal only during the mandatory initial evaluation. Cancellation
// between rounds returns the progress made so far rather than an error.
func (c *Corrector) Run(ctx context.Context, prompt string, opts Options) (*Result, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, newError(ErrKindInvalidInput, "prompt must be a non-empty string", nil)
	}
	if opts.MaxCandidatesPerRound == 0 {
		opts.MaxCandidatesPerRound = 3
	}
	if opts.OverallThreshold == 0 && len(opts.DimensionThresholds) == 0 {
		opts.OverallThreshold = 7.0
	}
	if err := optionsValidate.Struct(opts); err != nil {
		return nil, newError(ErrKindInvalidInput, "invalid run options", err)
	}

	r := &run{
		opts:  opts,
		start: time.Now(),
		seen:  map[string]bool{prompt: true},
	}

	// Initial scoring round.
	eval, err := c.evaluator.Evaluate(ctx, prompt)
	if err != nil {
		return nil, newError(ErrKindScorerUnavailable, "initial scoring failed", err)
	}
	examples := c.retrieve(ctx, prompt, opts.K)
	payload, raw, err := c.generator.Evaluate(ctx, prompt, examples)
	if err != nil {
		return nil, newError(ErrKindGenerationFailed, "initial evaluation call failed", err)
	}

	validation := Validate(prompt, opts.Acceptance)
	r.best = Candidate{Prompt: prompt, Evaluation: eval, Validation: validation}

	evalCopy := eval
	valCopy := validation
	r.log(Attempt{
		Round:      0,
		Action:     ActionInitial,
		Prompt:     prompt,
		Evaluation: &evalCopy,
		Validation: &valCopy,
		Retrieved:  len(examples),
		RawOutput:  raw,
	})

	if passes(eval, opts) && validation.Pass {
		c.logger.Info("prompt accepted as-is", "overall", eval.Overall)
		return r.result(true), nil
	}
	if opts.MaxRetries == 0 {
		return r.result(false), nil
	}

	// Candidates for the first generation round come from the
	// evaluation payload when it carried rewrites, otherwise from a
	// dedicated improve call logged as sub-step 0.5.
	candidates := limitCandidates(payload.CandidateTexts(), opts.MaxCandidatesPerRound)
	if len(candidates) == 0 {
		texts, _, improveRaw, err := c.generator.Improve(ctx, prompt, examples, nil, 0, opts.MaxCandidatesPerRound)
		if err != nil {
			r.log(Attempt{Round: 0.5, Action: ActionCallFailed, Error: err.Error()})
			c.logger.Warn("improve call failed, stopping with original prompt", "error", err)
			return r.result(false), nil
		}
		r.log(Attempt{Round: 0.5, Action: ActionGenerate, RawOutput: improveRaw, Generated: texts})
		candidates = texts
	}

	for retry := 0; retry < opts.MaxRetries; retry++ {
		round := float64(retry + 1)
		if ctx.Err() != nil {
			c.logger.Warn("run cancelled, returning progress", "round", round)
			return r.result(false), nil
		}

		batch, accepted, err := c.scoreRound(ctx, r, candidates, round)
		if err != nil {
			return nil, err
		}
		if accepted {
			return r.result(true), nil
		}

		chosen, adopted := Select(batch, r.best)
		if adopted {
			r.best = *chosen
			c.logger.Info("adopted improved candidate",
				"round", round, "overall", chosen.Overall())

			lastRound := retry+1 >= opts.MaxRetries
			if lastRound {
				// Adopted on the final round with no budget left to
				// rescore. The adopted candidate stands as the outcome.
				return r.result(true), nil
			}

			next, done, err := c.rescoreAdopted(ctx, r, round)
			if err != nil {
				return nil, err
			}
			if done {
				return r.result(true), nil
			}
			candidates = next
			continue
		}

		if retry+1 >= opts.MaxRetries {
			break
		}

		// Stalled round with budget left: ask for fresh candidates,
		// hinting at the acceptance items still missing.
		examples = c.retrieve(ctx, r.best.Prompt, opts.K)
		texts, _, improveRaw, err := c.generator.Improve(ctx, r.best.Prompt, examples, r.best.Validation.Missing, retry+1, opts.MaxCandidatesPerRound)
		if err != nil {
			r.log(Attempt{Round: round, Action: ActionCallFailed, Error: err.Error()})
			c.logger.Warn("improve call failed, stopping with best so far", "error", err)
			break
		}
		r.log(Attempt{Round: round + 0.5, Action: ActionGenerate, RawOutput: improveRaw, Generated: texts, Retrieved: len(examples)})

		// Prefer candidates the loop has not scored yet.
		fresh := make([]string, 0, len(texts))
		for _, text := range texts {
			if !r.seen[text] {
				fresh = append(fresh, text)
			}
		}
		if len(fresh) > 0 {
			candidates = fresh
		} else {
			candidates = texts
		}
	}

	return r.result(false), nil
}

// scoreRound scores and validates one batch of candidates. It returns
// accepted=true when a candidate cleared the thresholds, the acceptance
// checklist and the improvement gate in one step, short-circuiting the
// round.
func (c *Corrector) scoreRound(ctx context.Context, r *run, candidates []string, round float64) ([]Candidate, bool, error) {
	var batch []Candidate
	for _, text := range candidates {
		if r.seen[text] {
			continue
		}
		r.seen[text] = true

		eval, err := c.evaluator.Evaluate(ctx, text)
		if err != nil {
			return nil, false, newError(ErrKindScorerUnavailable, "candidate scoring failed", err)
		}
		validation := Validate(text, r.opts.Acceptance)
		cand := Candidate{Prompt: text, Evaluation: eval, Validation: validation}
		batch = append(batch, cand)

		evalCopy := eval
		valCopy := validation
		r.log(Attempt{
			Round:      round,
			Action:     ActionCandidate,
			Prompt:     text,
			Evaluation: &evalCopy,
			Validation: &valCopy,
		})

		if passes(eval, r.opts) && validation.Pass {
			if eval.Overall-r.best.Overall() >= MinOverallImprovement-scoreEpsilon {
				r.best = cand
				c.logger.Info("candidate accepted", "overall", eval.Overall)
				return batch, true, nil
			}
			if eval.Overall > r.best.Overall() {
				r.best = cand
			}
		}
	}
	return batch, false, nil
}

// rescoreAdopted runs a full scoring round on the newly adopted prompt:
// fresh evaluation, retrieval and evaluation call. done=true means the
// adopted prompt now clears acceptance outright. The generator call is
// no longer mandatory here, so its failure only costs the round its
// advisory rewrites.
func (c *Corrector) rescoreAdopted(ctx context.Context, r *run, round float64) ([]string, bool, error) {
	current := r.best.Prompt

	eval, err := c.evaluator.Evaluate(ctx, current)
	if err != nil {
		return nil, false, newError(ErrKindScorerUnavailable, "rescoring adopted prompt failed", err)
	}
	examples := c.retrieve(ctx, current, r.opts.K)
	payload, raw, err := c.generator.Evaluate(ctx, current, examples)
	if err != nil {
		r.log(Attempt{Round: round, Action: ActionCallFailed, Error: err.Error()})
		payload = nil
		raw = ""
	}

	validation := Validate(current, r.opts.Acceptance)
	r.best = Candidate{Prompt: current, Evaluation: eval, Validation: validation}

	evalCopy := eval
	valCopy := validation
	r.log(Attempt{
		Round:      round,
		Action:     ActionRescore,
		Prompt:     current,
		Evaluation: &evalCopy,
		Validation: &valCopy,
		Retrieved:  len(examples),
		RawOutput:  raw,
	})

	if passes(eval, r.opts) && validation.Pass {
		c.logger.Info("adopted prompt accepted on rescore", "overall", eval.Overall)
		return nil, true, nil
	}
	return limitCandidates(payload.CandidateTexts(), r.opts.MaxCandidatesPerRound), false, nil
}
