// Package services defines the business logic for nonce issuance, score
// validation, rate limiting, and leaderboard submission. This file
// centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes is performed at the
// handler layer. Everything from ErrInvalidScoreProof down is an
// authentication-equivalent rejection: the distinctions exist only to give
// clients an accurate message, never a difference in severity.
package services

import (
	"errors"
	"fmt"
	"time"
)

// Malformed-input errors (locally rejected, never retried).
var (
	// ErrInvalidWallet is returned when an address is not a well-formed
	// 0x-prefixed 40-hex-digit wallet.
	ErrInvalidWallet = errors.New("invalid wallet")

	// ErrInvalidDay is returned when a day string is not YYYY-MM-DD.
	ErrInvalidDay = errors.New("invalid day")

	// ErrInvalidMode is returned when a game mode is neither "normal" nor "easy".
	ErrInvalidMode = errors.New("invalid mode")

	// ErrInvalidMonth is returned when a month string is not a valid YYYY-MM.
	ErrInvalidMonth = errors.New("invalid month")

	// ErrMissingNonce is returned when a submission carries no challenge token.
	ErrMissingNonce = errors.New("missing nonce")

	// ErrInvalidSignatureFormat is returned when a signature is not a
	// 0x-prefixed 65-byte hex string. Rejected before any recovery attempt.
	ErrInvalidSignatureFormat = errors.New("invalid signature format")
)

// Authentication-equivalent rejections.
var (
	// ErrInvalidScoreProof is returned when the claimed score does not equal
	// the deterministic recomputation. It signals a forged or tampered claim
	// and is treated with the same severity as a bad signature.
	ErrInvalidScoreProof = errors.New("invalid score proof")

	// ErrNonceNotFound indicates no nonce exists for the (wallet, token) pair.
	ErrNonceNotFound = errors.New("invalid nonce")

	// ErrNonceScopeMismatch indicates the nonce was issued to a different
	// network origin (possible token theft across networks).
	ErrNonceScopeMismatch = errors.New("invalid nonce scope")

	// ErrNonceAlreadyUsed indicates the nonce was consumed before, or the
	// conditional consume lost the race to a concurrent submission.
	ErrNonceAlreadyUsed = errors.New("nonce already used")

	// ErrNonceExpired indicates the nonce outlived its TTL unconsumed.
	ErrNonceExpired = errors.New("nonce expired")

	// ErrInvalidSignature indicates the signature did not recover to the
	// claimed wallet.
	ErrInvalidSignature = errors.New("invalid signature")
)

// ImplausibleRunError rejects a run whose parameters fail the cheap
// plausibility gate before any score or signature work is done.
type ImplausibleRunError struct {
	Reason string // first failing check, e.g. "moves too low"
}

// Error implements the error interface.
func (e *ImplausibleRunError) Error() string {
	return "implausible run: " + e.Reason
}

// RateLimitedError rejects a submission that exceeded a fixed-window limit.
// It is the only rejection clients are expected to retry, after RetryAfter.
type RateLimitedError struct {
	Scope      string        // "ip" or "wallet"
	RetryAfter time.Duration // time until the window resets (>= 1s)
	ResetAtMs  int64         // absolute window end, epoch milliseconds
}

// Error implements the error interface.
func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit (%s): retry in %s", e.Scope, e.RetryAfter)
}
