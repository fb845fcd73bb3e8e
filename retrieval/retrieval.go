// Package retrieval provides the similarity store of reference prompt
// examples and the retriever adapter the correction loop reads from.
package retrieval

import (
	"context"
)

// Example is one similarity-search hit: the stored text plus provenance
// metadata (source id, preview, and so on). Read-only once returned.
type Example struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
}

// Retriever returns up to k examples similar to text. Fewer than k, or
// zero, results is valid. Implementations must be safe for concurrent
// independent calls.
type Retriever interface {
	Retrieve(ctx context.Context, text string, k int) ([]Example, error)
}
