// Package correction implements the self-correction loop: score a
// prompt, decide whether to intervene, generate and score candidate
// rewrites, adopt improvements and stop on a threshold, a stalled round
// or an exhausted retry budget.
package correction

import (
	"time"

	"github.com/UnfitBeard/prompt-eval/score"
)

// ValidationResult reports an acceptance check: whether the text passed,
// which required items were missing, and why the check took the shape it
// did. Computed fresh per candidate, never mutated.
type ValidationResult struct {
	Pass    bool     `json:"pass"`
	Missing []string `json:"missing"`
	Reason  string   `json:"reason"`
}

// Candidate is one scored and validated prompt. The current best is
// replaced wholesale whenever a better candidate is adopted.
type Candidate struct {
	Prompt     string           `json:"prompt"`
	Evaluation score.Evaluation `json:"evaluation"`
	Validation ValidationResult `json:"validation"`
}

// Overall is the candidate's mean final score.
func (c Candidate) Overall() float64 {
	return c.Evaluation.Overall
}

// Attempt is an immutable log record of one step. Round is an integer
// for scoring rounds and a half-integer for candidate-generation
// sub-steps. Fields not applicable to a step are left zero.
type Attempt struct {
	Round      float64           `json:"round"`
	Action     string            `json:"action"`
	Prompt     string            `json:"prompt,omitempty"`
	Evaluation *score.Evaluation `json:"evaluation,omitempty"`
	Validation *ValidationResult `json:"validation,omitempty"`
	Retrieved  int               `json:"retrieved_count,omitempty"`
	RawOutput  string            `json:"raw_output,omitempty"`
	Generated  []string          `json:"generated,omitempty"`
	Error      string            `json:"error,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// Attempt actions.
const (
	ActionInitial    = "initial_evaluation"
	ActionRescore    = "rescore_adopted"
	ActionCandidate  = "score_candidate"
	ActionGenerate   = "generate_candidates"
	ActionCallFailed = "generation_error"
)

// Result is the terminal output of one self-correction invocation. Best
// is always populated, at minimum with the original prompt's own
// evaluation.
type Result struct {
	Success        bool      `json:"success"`
	Best           Candidate `json:"best"`
	Attempts       []Attempt `json:"attempts"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`
}
