// Package services: durable fixed-window rate limiting.
//
// Unlike the process-local token bucket in the HTTP middleware, this limiter
// counts against rows in the store, so limits hold across restarts and
// replicas. It is applied per submission at two scopes in order: per-origin
// first (cheaper to reject abuse before touching any wallet-keyed state),
// then per-wallet.
package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-leaderboard-backend/internal/repo"
)

// Rate-limit key namespaces, kept distinct so an origin and a wallet can
// never collide on a counter row.
const (
	rateKeyIPPrefix     = "ip:"
	rateKeyWalletPrefix = "wallet:"
)

// RateLimiter enforces the durable fixed-window submission limits.
type RateLimiter struct {
	// DB is the GORM handle used for counter state.
	DB *gorm.DB
	// Window is the fixed window length shared by both scopes.
	Window time.Duration
	// MaxPerIP caps submissions per hashed origin per window.
	MaxPerIP int64
	// MaxPerWallet caps submissions per wallet per window.
	MaxPerWallet int64
}

// Allow counts one submission against the origin window and, if that passes,
// the wallet window. A denial returns *RateLimitedError carrying the scope
// that tripped and when its window resets; any other error is a storage
// failure.
func (rl *RateLimiter) Allow(ctx context.Context, originHash, wallet string, now time.Time) error {
	nowMs := now.UnixMilli()
	windowMs := rl.Window.Milliseconds()

	d, err := repo.CheckAndBump(ctx, rl.DB, rateKeyIPPrefix+originHash, rl.MaxPerIP, windowMs, nowMs)
	if err != nil {
		return err
	}
	if !d.Allowed {
		return limitedErr("ip", d, nowMs)
	}

	d, err = repo.CheckAndBump(ctx, rl.DB, rateKeyWalletPrefix+wallet, rl.MaxPerWallet, windowMs, nowMs)
	if err != nil {
		return err
	}
	if !d.Allowed {
		return limitedErr("wallet", d, nowMs)
	}
	return nil
}

// limitedErr builds a RateLimitedError with a retry hint of at least one
// second, rounded up to whole seconds.
func limitedErr(scope string, d repo.RateDecision, nowMs int64) *RateLimitedError {
	waitMs := d.ResetAtMs - nowMs
	if waitMs < 1000 {
		waitMs = 1000
	}
	retry := time.Duration((waitMs+999)/1000) * time.Second
	return &RateLimitedError{Scope: scope, RetryAfter: retry, ResetAtMs: d.ResetAtMs}
}
