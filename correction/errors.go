package correction

import (
	"errors"
	"fmt"
)

// ErrorKind classifies correction failures. Fatal kinds abort the
// invocation; the rest are absorbed into the attempt log.
type ErrorKind int

const (
	ErrKindUnknown ErrorKind = iota
	// ErrKindScorerUnavailable: the scoring adapter failed or timed out.
	// Fatal for the invocation.
	ErrKindScorerUnavailable
	// ErrKindRetrievalDegraded: retrieval failed. Non-fatal, treated as
	// zero examples.
	ErrKindRetrievalDegraded
	// ErrKindGenerationFailed: a generator call failed or timed out.
	// Fatal only during the mandatory initial evaluation call.
	ErrKindGenerationFailed
	// ErrKindMalformedOutput: generator output could not be parsed into
	// any candidate. Handled by the raw-text fallback.
	ErrKindMalformedOutput
	// ErrKindInvalidInput: empty prompt or invalid run options, rejected
	// before any adapter call.
	ErrKindInvalidInput
)

func (k ErrorKind) String() string {
	switch k {
	case ErrKindScorerUnavailable:
		return "ScorerUnavailable"
	case ErrKindRetrievalDegraded:
		return "RetrievalDegraded"
	case ErrKindGenerationFailed:
		return "GenerationFailed"
	case ErrKindMalformedOutput:
		return "MalformedGeneratorOutput"
	case ErrKindInvalidInput:
		return "InvalidInput"
	default:
		return "Unknown"
	}
}

// Error is the typed error surfaced to callers for fatal failures.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// IsKind reports whether err is a correction Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == kind
}
