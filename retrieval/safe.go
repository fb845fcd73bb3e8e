package retrieval

import (
	"context"
	"time"

	"github.com/UnfitBeard/prompt-eval/utils"
)

// SafeRetriever wraps a Retriever so that failures and timeouts degrade
// to zero results instead of aborting the correction loop. Every failure
// is logged.
type SafeRetriever struct {
	inner   Retriever
	timeout time.Duration
	logger  utils.Logger
}

func NewSafeRetriever(inner Retriever, timeout time.Duration, logger utils.Logger) *SafeRetriever {
	return &SafeRetriever{inner: inner, timeout: timeout, logger: logger}
}

func (r *SafeRetriever) Retrieve(ctx context.Context, text string, k int) ([]Example, error) {
	if k <= 0 {
		return nil, nil
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	examples, err := r.inner.Retrieve(ctx, text, k)
	if err != nil {
		r.logger.Warn("retrieval degraded, proceeding without examples", "error", err)
		return nil, nil
	}
	return examples, nil
}
