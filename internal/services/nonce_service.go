// Package services: NonceService
//
// This file implements the NonceService, which issues single-use,
// time-bounded challenge tokens and consumes them during submission.
// Issuance binds each token to the requesting network origin (hashed client
// IP) so a stolen token cannot be replayed from another network.
//
// Consumption is two deliberate steps: a plain read that produces a precise,
// friendly error (not found / wrong scope / already used / expired), then a
// conditional UPDATE that is the actual concurrency-safe gate. Authorization
// always rests on the write's affected-row count, never on the read.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-leaderboard-backend/internal/domain"
	"github.com/tbourn/go-leaderboard-backend/internal/repo"
	"github.com/tbourn/go-leaderboard-backend/internal/signing"
)

// NonceService issues and consumes wallet authentication nonces.
type NonceService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// TTL is the challenge lifetime from issuance to expiry.
	TTL time.Duration
	// TokenBytes is the entropy of issued tokens; values below 16 are raised.
	TokenBytes int
}

// NewNonceService constructs a NonceService with the given lifetime and
// 16 bytes of token entropy.
func NewNonceService(db *gorm.DB, ttl time.Duration) *NonceService {
	return &NonceService{DB: db, TTL: ttl, TokenBytes: 16}
}

// Issue creates and stores a fresh unconsumed nonce for wallet, bound to
// originHash. It fails only on token generation or storage errors.
func (s *NonceService) Issue(ctx context.Context, wallet, originHash string) (*domain.Nonce, error) {
	token, err := signing.RandomToken(s.TokenBytes)
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().Add(s.TTL).UnixMilli()
	return repo.CreateNonce(ctx, s.DB, wallet, token, originHash, expiresAt)
}

// ValidateAndConsume marks the nonce for (wallet, token) consumed at now.
//
// The preliminary read yields the precise rejection reason; the conditional
// write then enforces single use atomically. When the write affects zero
// rows the state changed between read and write (or a concurrent consumer
// won), and the call fails with ErrNonceAlreadyUsed.
func (s *NonceService) ValidateAndConsume(ctx context.Context, wallet, token, originHash string, now time.Time) error {
	n, err := repo.GetNonce(ctx, s.DB, wallet, token)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNonceNotFound
		}
		return err
	}

	nowMs := now.UnixMilli()
	switch {
	case n.IPHash != originHash:
		return ErrNonceScopeMismatch
	case n.UsedAtMs != nil:
		return ErrNonceAlreadyUsed
	case n.ExpiresAtMs < nowMs:
		return ErrNonceExpired
	}

	consumed, err := repo.ConsumeNonce(ctx, s.DB, wallet, token, originHash, nowMs)
	if err != nil {
		return err
	}
	if !consumed {
		return ErrNonceAlreadyUsed
	}
	return nil
}
