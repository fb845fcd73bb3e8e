package retrieval

import (
	"context"
	"errors"
	"hash/fnv"
	"testing"
	"time"

	chromem "github.com/philippgille/chromem-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UnfitBeard/prompt-eval/utils"
)

// stubEmbedding maps texts to deterministic unit vectors so store tests
// run without a real embedding model.
func stubEmbedding(_ context.Context, text string) ([]float32, error) {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	v := make([]float32, 8)
	var norm float32
	for i := range v {
		seed = seed*1664525 + 1013904223
		v[i] = float32(seed%1000)/1000.0 - 0.5
		norm += v[i] * v[i]
	}
	if norm == 0 {
		v[0] = 1
		norm = 1
	}
	for i := range v {
		v[i] /= sqrt32(norm)
	}
	return v, nil
}

func sqrt32(f float32) float32 {
	x := f
	for i := 0; i < 20; i++ {
		x = (x + f/x) / 2
	}
	return x
}

func TestStoreAddAndRetrieve(t *testing.T) {
	store, err := NewStore(StoreConfig{Collection: "test", Embedding: stubEmbedding})
	require.NoError(t, err)

	examples := []Example{
		{Content: "Write a SQL migration adding an index", Metadata: map[string]string{"source": "a"}},
		{Content: "Draft a lesson plan with objectives", Metadata: map[string]string{"source": "b"}},
		{Content: "Implement a REST endpoint with validation", Metadata: map[string]string{"source": "c"}},
	}
	require.NoError(t, store.Add(context.Background(), examples))
	assert.Equal(t, 3, store.Count())

	got, err := store.Retrieve(context.Background(), "REST endpoint", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	for _, ex := range got {
		assert.NotEmpty(t, ex.Content)
		assert.Contains(t, ex.Metadata, "similarity")
	}
}

func TestStoreRetrieveClampsK(t *testing.T) {
	store, err := NewStore(StoreConfig{Collection: "clamp", Embedding: stubEmbedding})
	require.NoError(t, err)

	require.NoError(t, store.Add(context.Background(), []Example{{Content: "only one"}}))

	got, err := store.Retrieve(context.Background(), "anything", 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestStoreRetrieveEmptyStore(t *testing.T) {
	store, err := NewStore(StoreConfig{Collection: "empty", Embedding: stubEmbedding})
	require.NoError(t, err)

	got, err := store.Retrieve(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

type failingRetriever struct{}

func (failingRetriever) Retrieve(context.Context, string, int) ([]Example, error) {
	return nil, errors.New("similarity store timeout")
}

func TestSafeRetrieverDegradesToEmpty(t *testing.T) {
	logger := &utils.MockLogger{}
	safe := NewSafeRetriever(failingRetriever{}, time.Second, logger)

	got, err := safe.Retrieve(context.Background(), "prompt", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotEmpty(t, logger.Warns)
}

func TestSafeRetrieverZeroK(t *testing.T) {
	safe := NewSafeRetriever(failingRetriever{}, time.Second, &utils.MockLogger{})

	got, err := safe.Retrieve(context.Background(), "prompt", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

var _ chromem.EmbeddingFunc = stubEmbedding
