package score

import "context"

// HeuristicScorer scores prompts from surface features alone: length,
// vocabulary variety, digits, detail cues and generic-verb density. It is
// the in-process stand-in for the external regression scorer and shares
// its feature definitions.
type HeuristicScorer struct{}

func NewHeuristicScorer() *HeuristicScorer {
	return &HeuristicScorer{}
}

func (s *HeuristicScorer) Score(_ context.Context, text string) (ScoreVector, error) {
	f := extractFeatures(text)

	detail := 0.0
	if f.hasDetail {
		detail = 1.0
	}
	digits := 0.0
	if f.hasDigits {
		digits = 1.0
	}

	out := ScoreVector{
		Clarity:     4.0 + 3.0*f.uniqueRatio + 1.5*detail + 1.0*digits - 2.0*f.genRatio,
		Context:     2.5 + 4.5*f.lengthNorm + 2.0*detail + 1.0*digits,
		Relevance:   5.0 + 2.0*detail + 1.5*f.uniqueRatio + 0.5*digits,
		Specificity: 2.0 + 3.0*detail + 2.0*digits + 2.5*f.lengthNorm - 1.5*f.genRatio,
		Creativity:  4.0 + 2.0*f.uniqueRatio + 1.5*f.lengthNorm + 1.0*detail,
	}
	for d, v := range out {
		out[d] = round1(clip(v))
	}
	return out, nil
}
