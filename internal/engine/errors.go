package engine

import "errors"

var (
	// ErrGenerationUnavailable is terminal: the generator failed to produce
	// any candidate within the attempt budget.
	ErrGenerationUnavailable = errors.New("content generation unavailable")

	// ErrValidationExhausted is terminal under the fail policy: every
	// candidate failed validation within the attempt budget.
	ErrValidationExhausted = errors.New("validation attempts exhausted")

	// ErrNoEligibleTopic indicates selection itself failed. The selector's
	// fixed fallback makes this unreachable except on store errors.
	ErrNoEligibleTopic = errors.New("no eligible topic")
)
