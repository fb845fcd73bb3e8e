// Package score wraps the numeric prompt scorer and the vagueness
// penalty into one evaluation step. Scores cover five dimensions, each
// clipped into [1,10] and rounded to one decimal.
package score

import (
	"context"
	"math"
)

// Dimension names one of the five scored qualities.
type Dimension string

const (
	Clarity     Dimension = "clarity"
	Context     Dimension = "context"
	Relevance   Dimension = "relevance"
	Specificity Dimension = "specificity"
	Creativity  Dimension = "creativity"
)

// Dimensions lists every dimension in canonical order.
var Dimensions = []Dimension{Clarity, Context, Relevance, Specificity, Creativity}

// ScoreVector maps each dimension to a value in [1,10]. A well-formed
// vector always carries exactly the five canonical keys.
type ScoreVector map[Dimension]float64

// Mean returns the arithmetic mean over the five dimension values. This
// is the overall score every downstream decision uses.
func (v ScoreVector) Mean() float64 {
	if len(v) == 0 {
		return 0
	}
	var sum float64
	var n int
	for _, d := range Dimensions {
		if val, ok := v[d]; ok {
			sum += val
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Clone returns an independent copy.
func (v ScoreVector) Clone() ScoreVector {
	out := make(ScoreVector, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Evaluation pairs the raw scores with the post-penalty scores. Overall
// is derived from Final once at construction and never maintained
// separately.
type Evaluation struct {
	Base    ScoreVector `json:"base_scores"`
	Final   ScoreVector `json:"final_scores"`
	Overall float64     `json:"overall"`
}

// NewEvaluation derives the overall score from the final vector.
func NewEvaluation(base, final ScoreVector) Evaluation {
	return Evaluation{Base: base, Final: final, Overall: final.Mean()}
}

// Scorer produces raw dimension scores for a text. Implementations must
// be safe for concurrent use and deterministic for a fixed model version.
type Scorer interface {
	Score(ctx context.Context, text string) (ScoreVector, error)
}

// PenaltyFunc maps raw scores to post-penalty scores. It must return a
// complete vector with every value clipped into [1,10].
type PenaltyFunc func(scores ScoreVector, text string) ScoreVector

func clip(v float64) float64 {
	return math.Min(10.0, math.Max(1.0, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
