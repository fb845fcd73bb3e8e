package correction

// MinOverallImprovement gates adoption: a candidate must beat the
// current best by at least this much overall, so noisy marginal rewrites
// are not adopted.
const MinOverallImprovement = 0.3

// scoreEpsilon absorbs float rounding when comparing against the gate.
const scoreEpsilon = 1e-9

// Select picks the winning candidate of a round. The candidate with the
// strictly highest overall score wins, first one encountered on ties so
// the decision is deterministic for a fixed candidate order. The chosen
// candidate is nil when nobody beats the current best at all; accepted
// is true only when the winner clears the improvement gate.
func Select(candidates []Candidate, best Candidate) (*Candidate, bool) {
	var chosen *Candidate
	for i := range candidates {
		if chosen == nil || candidates[i].Overall() > chosen.Overall() {
			chosen = &candidates[i]
		}
	}

	if chosen == nil || chosen.Overall() <= best.Overall() {
		return nil, false
	}

	return chosen, chosen.Overall()-best.Overall() >= MinOverallImprovement-scoreEpsilon
}
