package score

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/UnfitBeard/prompt-eval/utils"
)

// Evaluator combines a Scorer with a PenaltyFunc into the single
// evaluate step the correction loop consumes. Evaluations are
// deterministic per text for a fixed scorer, so results are cached.
type Evaluator struct {
	scorer  Scorer
	penalty PenaltyFunc
	timeout time.Duration
	cache   *lru.Cache[string, Evaluation]
	logger  utils.Logger
}

type EvaluatorOption func(*Evaluator)

func WithPenalty(p PenaltyFunc) EvaluatorOption {
	return func(e *Evaluator) { e.penalty = p }
}

func WithScoreTimeout(d time.Duration) EvaluatorOption {
	return func(e *Evaluator) { e.timeout = d }
}

func WithCacheSize(size int) EvaluatorOption {
	return func(e *Evaluator) {
		if size > 0 {
			cache, err := lru.New[string, Evaluation](size)
			if err == nil {
				e.cache = cache
			}
		} else {
			e.cache = nil
		}
	}
}

func NewEvaluator(scorer Scorer, logger utils.Logger, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{
		scorer:  scorer,
		penalty: ApplyVaguenessPenalty,
		timeout: 5 * time.Second,
		logger:  logger,
	}
	cache, err := lru.New[string, Evaluation](256)
	if err == nil {
		e.cache = cache
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate scores text and applies the penalty. The empty string is not
// rejected here: it scores as maximally vague, which the penalty clamps
// to the floor. Callers guard against empty input at the boundary.
func (e *Evaluator) Evaluate(ctx context.Context, text string) (Evaluation, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(text); ok {
			return cached, nil
		}
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	base, err := e.scorer.Score(ctx, text)
	if err != nil {
		return Evaluation{}, err
	}

	eval := NewEvaluation(base, e.penalty(base, text))
	if e.cache != nil {
		e.cache.Add(text, eval)
	}
	e.logger.Debug("evaluated prompt", "overall", eval.Overall)
	return eval, nil
}
