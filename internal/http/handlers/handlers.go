// Package handlers provides HTTP handler implementations for the public API.
//
// Handlers are transport-thin: they validate and clamp input, delegate to
// application services, and translate domain/service errors into HTTP
// results. All business rules (rate limits, nonce consumption, score proofs,
// signature recovery) live in the services package.
package handlers

import (
	"context"
	"time"

	"github.com/tbourn/go-leaderboard-backend/internal/domain"
	"github.com/tbourn/go-leaderboard-backend/internal/services"
)

// APIVersion is reported by the health endpoint so clients can detect
// protocol drift.
const APIVersion = "2026-02-20"

//
// Service contracts (context-aware)
//

// NonceService issues single-use challenge tokens.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type NonceService interface {
	// Issue creates a fresh nonce for wallet bound to originHash.
	Issue(ctx context.Context, wallet, originHash string) (*domain.Nonce, error)
}

// SubmissionService authorizes and persists one score submission.
type SubmissionService interface {
	// Submit runs the full authorization state machine for one claimed run.
	Submit(ctx context.Context, in services.SubmitInput) (*services.SubmitResult, error)
}

// LeaderboardService serves the read-side queries.
type LeaderboardService interface {
	// MonthlyTop returns the ranked month view, one row per wallet.
	MonthlyTop(ctx context.Context, month string, limit int) ([]domain.Score, error)
	// Best returns a wallet's best for a day (or latest day when day is "").
	Best(ctx context.Context, wallet, day string) (*domain.Score, error)
	// Recent returns a wallet's accepted runs, newest first.
	Recent(ctx context.Context, wallet string, limit int) ([]domain.ScoreRun, error)
	// RunStats returns audit-log aggregates for conditional responses.
	RunStats(ctx context.Context, wallet string) (int64, *time.Time, error)
}

//
// Handler wiring
//

// SigningInfo echoes the deployment's signing identity to clients so they
// can build the exact challenge message this API verifies.
type SigningInfo struct {
	AppName string `json:"app_name" example:"NFT Solitario"`
	Domain  string `json:"domain"   example:"nft-solitario"`
}

// Handlers groups the HTTP endpoints for nonces, submissions, and
// leaderboard queries. It depends on abstract service interfaces to keep
// transport concerns separate from business logic.
type Handlers struct {
	nonceSvc NonceService
	subSvc   SubmissionService
	lbSvc    LeaderboardService

	signing  SigningInfo
	nonceTTL time.Duration
}

// New constructs a Handlers instance bound to the given services and
// deployment signing identity.
func New(nonceSvc NonceService, subSvc SubmissionService, lbSvc LeaderboardService, signing SigningInfo, nonceTTL time.Duration) *Handlers {
	return &Handlers{
		nonceSvc: nonceSvc,
		subSvc:   subSvc,
		lbSvc:    lbSvc,
		signing:  signing,
		nonceTTL: nonceTTL,
	}
}
