package retrieval

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	chromem "github.com/philippgille/chromem-go"
)

// StoreConfig holds example store configuration.
type StoreConfig struct {
	// PersistPath is a directory for on-disk persistence. Empty keeps the
	// store in memory.
	PersistPath string
	Collection  string
	// Embedding overrides the embedding function. Nil uses the chromem
	// default (OpenAI, configured via environment).
	Embedding chromem.EmbeddingFunc
}

// Store holds reference prompt examples in an embedded chromem-go vector
// database and serves similarity queries. It implements Retriever.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
}

func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.Collection == "" {
		cfg.Collection = "prompt_examples"
	}

	var db *chromem.DB
	var err error
	if cfg.PersistPath != "" {
		db, err = chromem.NewPersistentDB(filepath.Join(cfg.PersistPath, "examples.gob"), false)
		if err != nil {
			return nil, fmt.Errorf("create persistent store: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}

	embedding := cfg.Embedding
	if embedding == nil {
		embedding = chromem.NewEmbeddingFuncDefault()
	}

	collection, err := db.GetOrCreateCollection(cfg.Collection, nil, embedding)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &Store{db: db, collection: collection}, nil
}

// Add ingests examples. IDs are assigned from the current count so
// repeated seeding appends rather than overwrites.
func (s *Store) Add(ctx context.Context, examples []Example) error {
	next := s.collection.Count()
	for i, ex := range examples {
		err := s.collection.AddDocument(ctx, chromem.Document{
			ID:       strconv.Itoa(next + i),
			Content:  ex.Content,
			Metadata: ex.Metadata,
		})
		if err != nil {
			return fmt.Errorf("add example %d: %w", next+i, err)
		}
	}
	return nil
}

// Count returns the number of stored examples.
func (s *Store) Count() int {
	return s.collection.Count()
}

// Retrieve returns up to k similar examples, most similar first.
func (s *Store) Retrieve(ctx context.Context, text string, k int) ([]Example, error) {
	if k <= 0 {
		return nil, nil
	}
	// chromem rejects queries asking for more results than documents
	if count := s.collection.Count(); count < k {
		k = count
	}
	if k == 0 {
		return nil, nil
	}

	results, err := s.collection.Query(ctx, text, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}

	out := make([]Example, 0, len(results))
	for _, r := range results {
		meta := make(map[string]string, len(r.Metadata)+1)
		for k, v := range r.Metadata {
			meta[k] = v
		}
		meta["similarity"] = strconv.FormatFloat(float64(r.Similarity), 'f', 4, 32)
		out = append(out, Example{Content: r.Content, Metadata: meta})
	}
	return out, nil
}
