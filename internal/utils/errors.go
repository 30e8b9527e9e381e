package utils

import "errors"

// Domain-level errors used by the service layer to provide
// fine-grained failure reasons for the deletion flow.
var (
	// Token lookup / lifecycle
	ErrNotFound        = errors.New("not_found")
	ErrExpired         = errors.New("token_expired")
	ErrAlreadyConsumed = errors.New("already_consumed")
	ErrLocked          = errors.New("locked")

	// Proof evaluation
	ErrMethodMismatch = errors.New("method_mismatch")
	ErrInvalidProof   = errors.New("invalid_proof")

	// Issuance
	ErrChallengeNotPossible = errors.New("challenge_not_possible")

	// For rate limiting
	ErrRateLimitExceeded = errors.New("rate_limit_exceeded")

	// For external service failures (e.g., Twilio, SendGrid)
	ErrExternalServiceFailure = errors.New("external_service_failure")
)
