// Package services: SubmissionService
//
// This file implements the submission orchestrator: one full authorization
// pass over a claimed game run, composed as a fail-fast state machine
//
//	Received → RateChecked → ScoreValidated → NonceConsumed →
//	SignatureVerified → Persisted
//
// Any failure short-circuits to a rejection without attempting later steps,
// and nothing is persisted before the final state. The nonce is consumed
// before the signature is verified on purpose: a forged-signature attempt
// still burns the nonce, so an attacker cannot probe signatures against one
// live challenge. A nonce spent on a bad signature is not refunded.
package services

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-leaderboard-backend/internal/domain"
	"github.com/tbourn/go-leaderboard-backend/internal/repo"
	"github.com/tbourn/go-leaderboard-backend/internal/signing"
)

// dayRE validates the YYYY-MM-DD day partition key.
var dayRE = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// submissionOutcomes counts submission results by terminal state.
var submissionOutcomes = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "leaderboard_submissions_total",
		Help: "Total score submissions by outcome.",
	},
	[]string{"outcome"},
)

func init() {
	prometheus.MustRegister(submissionOutcomes)
}

// SubmitInput is the fully-typed submission request. Numeric fields are
// expected to be clamped and truncated at the transport boundary.
type SubmitInput struct {
	Wallet      string
	Day         string // YYYY-MM-DD
	Mode        string // "normal" or "easy"; empty means normal
	Score       int64
	Moves       int64
	TimeSeconds int64
	Token       string // nonce token from IssueNonce
	Signature   string // 0x-hex personal-message signature
	OriginHash  string // SHA-256 of the client IP
}

// SubmitResult reports an accepted submission.
type SubmitResult struct {
	Updated   bool  // whether the best-of-day row changed
	BestScore int64 // stored best after the write
	YourScore int64 // the submitted score, echoed back
}

// SubmissionService authorizes and persists score submissions end-to-end.
// All coordination happens through atomic conditional statements in the
// store; the service holds no mutable state and is safe for concurrent use.
type SubmissionService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Nonces consumes challenge tokens.
	Nonces *NonceService
	// Limiter enforces the durable fixed-window limits.
	Limiter *RateLimiter
	// AppName and Domain identify this deployment in the signed message.
	AppName string
	Domain  string
	// DedupWindow suppresses identical audit rows inside this window.
	DedupWindow time.Duration
}

// NewSubmissionService wires a SubmissionService with the default 30-minute
// audit dedup window.
func NewSubmissionService(db *gorm.DB, nonces *NonceService, limiter *RateLimiter, appName, domain string) *SubmissionService {
	return &SubmissionService{
		DB:          db,
		Nonces:      nonces,
		Limiter:     limiter,
		AppName:     appName,
		Domain:      domain,
		DedupWindow: 30 * time.Minute,
	}
}

// Submit runs one submission through the whole state machine and returns the
// persisted outcome, or the first rejection encountered.
func (s *SubmissionService) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	res, err := s.submit(ctx, in)
	submissionOutcomes.WithLabelValues(outcomeLabel(err)).Inc()
	return res, err
}

func (s *SubmissionService) submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	// Received: reject malformed input before touching any state.
	wallet, ok := signing.NormalizeWallet(in.Wallet)
	if !ok {
		return nil, ErrInvalidWallet
	}
	if !dayRE.MatchString(in.Day) {
		return nil, ErrInvalidDay
	}
	mode := strings.ToLower(strings.TrimSpace(in.Mode))
	if mode == "" {
		mode = ModeNormal
	}
	if mode != ModeNormal && mode != ModeEasy {
		return nil, ErrInvalidMode
	}
	if strings.TrimSpace(in.Token) == "" {
		return nil, ErrMissingNonce
	}
	if !signing.IsHexSignature(in.Signature) {
		return nil, ErrInvalidSignatureFormat
	}

	now := time.Now()

	// RateChecked: origin scope first, then wallet scope.
	if err := s.Limiter.Allow(ctx, in.OriginHash, wallet, now); err != nil {
		return nil, err
	}

	// ScoreValidated: plausibility gate, then exact recomputation.
	if err := VerifyScoreProof(in.Score, in.Moves, in.TimeSeconds, mode); err != nil {
		return nil, err
	}

	// NonceConsumed: burns the challenge whether or not the signature holds.
	if err := s.Nonces.ValidateAndConsume(ctx, wallet, in.Token, in.OriginHash, now); err != nil {
		return nil, err
	}

	// SignatureVerified: the message embeds the already-consumed token.
	msg := signing.BuildScoreMessage(signing.MessageParams{
		AppName:     s.AppName,
		Domain:      s.Domain,
		Day:         in.Day,
		Score:       in.Score,
		Moves:       in.Moves,
		TimeSeconds: in.TimeSeconds,
		Nonce:       in.Token,
		Mode:        mode,
	})
	recovered, err := signing.RecoverWallet(msg, in.Signature)
	if err != nil || recovered != wallet {
		log.Warn().
			Str("wallet", wallet).
			Str("day", in.Day).
			Msg("signature rejected after nonce consumption")
		return nil, ErrInvalidSignature
	}

	// Persisted: audit row first, then the conditional best-of-day upsert.
	run := &domain.ScoreRun{
		Wallet:      wallet,
		Day:         in.Day,
		ScoreValue:  in.Score,
		Moves:       in.Moves,
		TimeSeconds: in.TimeSeconds,
		IPHash:      in.OriginHash,
		CreatedAt:   now.UTC(),
	}
	if err := repo.RecordRun(ctx, s.DB, run, now.UTC().Add(-s.DedupWindow)); err != nil {
		return nil, err
	}

	updated, err := repo.UpsertBest(ctx, s.DB, wallet, in.Day, in.Score, in.Moves, in.TimeSeconds)
	if err != nil {
		return nil, err
	}

	best := in.Score
	if cur, err := repo.GetBest(ctx, s.DB, wallet, in.Day); err == nil {
		best = cur.ScoreValue
	}

	return &SubmitResult{Updated: updated, BestScore: best, YourScore: in.Score}, nil
}

// outcomeLabel maps a submission error to a bounded metric label.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case isMalformed(err):
		return "malformed"
	case isRateLimited(err):
		return "rate_limited"
	case isImplausible(err):
		return "implausible"
	case err == ErrInvalidScoreProof:
		return "bad_score_proof"
	case isNonceRejection(err):
		return "bad_nonce"
	case err == ErrInvalidSignature:
		return "bad_signature"
	default:
		return "storage_error"
	}
}

func isMalformed(err error) bool {
	switch err {
	case ErrInvalidWallet, ErrInvalidDay, ErrInvalidMode, ErrMissingNonce, ErrInvalidSignatureFormat:
		return true
	}
	return false
}

func isRateLimited(err error) bool {
	_, ok := err.(*RateLimitedError)
	return ok
}

func isImplausible(err error) bool {
	_, ok := err.(*ImplausibleRunError)
	return ok
}

func isNonceRejection(err error) bool {
	switch err {
	case ErrNonceNotFound, ErrNonceScopeMismatch, ErrNonceAlreadyUsed, ErrNonceExpired:
		return true
	}
	return false
}
