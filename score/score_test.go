package score

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UnfitBeard/prompt-eval/utils"
)

const detailedPrompt = "Implement a REST endpoint in Python using FastAPI that accepts a JSON " +
	"body with fields `name:str` and `age:int`, validates age>0, and returns 201 with the " +
	"created record; include error handling for invalid input."

func TestScoreVectorMean(t *testing.T) {
	v := ScoreVector{
		Clarity: 8, Context: 6, Relevance: 7, Specificity: 9, Creativity: 5,
	}
	assert.InDelta(t, 7.0, v.Mean(), 1e-9)

	assert.Equal(t, 0.0, ScoreVector{}.Mean())
}

func TestVaguenessScore(t *testing.T) {
	tests := []struct {
		name string
		text string
		min  float64
		max  float64
	}{
		{"empty is maximally vague", "", 1.0, 1.0},
		{"short generic prompt", "write code", 0.5, 1.0},
		{"detailed prompt", detailedPrompt, 0.0, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := VaguenessScore(tt.text)
			assert.GreaterOrEqual(t, v, tt.min)
			assert.LessOrEqual(t, v, tt.max)
		})
	}
}

func TestApplyVaguenessPenaltyBounds(t *testing.T) {
	base := ScoreVector{
		Clarity: 2.0, Context: 1.5, Relevance: 9.9, Specificity: 5.0, Creativity: 3.3,
	}
	final := ApplyVaguenessPenalty(base, "do stuff")

	require.Len(t, final, len(Dimensions))
	for _, d := range Dimensions {
		assert.GreaterOrEqual(t, final[d], 1.0, "dimension %s below floor", d)
		assert.LessOrEqual(t, final[d], 10.0, "dimension %s above ceiling", d)
	}
}

func TestHeuristicScorerBounds(t *testing.T) {
	scorer := NewHeuristicScorer()

	for _, text := range []string{"", "write code", "do do do do do", detailedPrompt} {
		scores, err := scorer.Score(context.Background(), text)
		require.NoError(t, err)
		require.Len(t, scores, len(Dimensions))
		for _, d := range Dimensions {
			assert.GreaterOrEqual(t, scores[d], 1.0)
			assert.LessOrEqual(t, scores[d], 10.0)
		}
	}
}

func TestHeuristicScorerSeparatesVagueFromDetailed(t *testing.T) {
	evaluator := NewEvaluator(NewHeuristicScorer(), &utils.MockLogger{})

	vague, err := evaluator.Evaluate(context.Background(), "write code")
	require.NoError(t, err)

	detailed, err := evaluator.Evaluate(context.Background(), detailedPrompt)
	require.NoError(t, err)

	assert.Less(t, vague.Overall, 7.0)
	assert.GreaterOrEqual(t, detailed.Overall, 7.0)
	assert.Greater(t, detailed.Overall, vague.Overall)
}

type failingScorer struct{}

func (failingScorer) Score(context.Context, string) (ScoreVector, error) {
	return nil, errors.New("model not loaded")
}

func TestEvaluatorPropagatesScorerError(t *testing.T) {
	evaluator := NewEvaluator(failingScorer{}, &utils.MockLogger{})

	_, err := evaluator.Evaluate(context.Background(), "anything")
	require.Error(t, err)
}

type countingScorer struct {
	calls int
}

func (c *countingScorer) Score(context.Context, string) (ScoreVector, error) {
	c.calls++
	return ScoreVector{
		Clarity: 5, Context: 5, Relevance: 5, Specificity: 5, Creativity: 5,
	}, nil
}

func TestEvaluatorCaches(t *testing.T) {
	scorer := &countingScorer{}
	evaluator := NewEvaluator(scorer, &utils.MockLogger{})

	first, err := evaluator.Evaluate(context.Background(), "same text")
	require.NoError(t, err)
	second, err := evaluator.Evaluate(context.Background(), "same text")
	require.NoError(t, err)

	assert.Equal(t, 1, scorer.calls)
	assert.Equal(t, first, second)
}

func TestEvaluationOverallDerivedFromFinal(t *testing.T) {
	base := ScoreVector{Clarity: 9, Context: 9, Relevance: 9, Specificity: 9, Creativity: 9}
	final := ScoreVector{Clarity: 4, Context: 4, Relevance: 4, Specificity: 4, Creativity: 4}

	eval := NewEvaluation(base, final)
	assert.InDelta(t, 4.0, eval.Overall, 1e-9)
}
