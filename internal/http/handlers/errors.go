// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// This file centralizes symbolic error code constants that are mapped to HTTP responses
// (via the `fail()` helper in this package). These codes provide clients with a stable,
// machine-readable error taxonomy that supplements human-readable messages.
//
// Conventions:
//   - Codes are lowercase, snake_case, and domain-agnostic unless explicitly noted.
//   - Generic codes (e.g., bad_request, too_many_requests) mirror common HTTP
//     status semantics to aid interoperability.
//   - The authentication-equivalent codes (implausible_run, invalid_score_proof,
//     invalid_nonce, invalid_signature) differ in message only; clients must not
//     treat any of them as retriable.
//   - All error responses include both an HTTP status and one of these codes.
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific (authentication-equivalent rejections):
	ErrCodeImplausibleRun    = "implausible_run"
	ErrCodeInvalidScoreProof = "invalid_score_proof"
	ErrCodeInvalidNonce      = "invalid_nonce"
	ErrCodeInvalidSignature  = "invalid_signature"
)
