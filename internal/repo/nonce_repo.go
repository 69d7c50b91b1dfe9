// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Nonce model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only
// persistence and query composition.
//
// Error semantics:
//   - When a nonce is not found, GetNonce returns ErrNotFound.
//   - ConsumeNonce never errors on a lost race; it reports consumed=false.
//     The affected-row count of its conditional UPDATE is the single source
//     of truth for single-use enforcement. Callers must not infer success
//     from an earlier read.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-leaderboard-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateNonce inserts a new unconsumed nonce row. Rows are append-only: they
// are never updated except to set used_at_ms, and never deleted.
func CreateNonce(ctx context.Context, db *gorm.DB, wallet, token, ipHash string, expiresAtMs int64) (*domain.Nonce, error) {
	n := &domain.Nonce{
		Wallet:      wallet,
		Token:       token,
		IPHash:      ipHash,
		ExpiresAtMs: expiresAtMs,
	}
	if err := db.WithContext(ctx).Create(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}

// GetNonce fetches a nonce by its (wallet, token) pair, or ErrNotFound.
// The read is advisory only: it exists so the service layer can report a
// precise failure reason (expired vs. reused vs. wrong scope). Authorization
// always rests on ConsumeNonce.
func GetNonce(ctx context.Context, db *gorm.DB, wallet, token string) (*domain.Nonce, error) {
	var n domain.Nonce
	err := db.WithContext(ctx).
		Where("wallet = ? AND token = ?", wallet, token).
		First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ConsumeNonce marks the nonce used at nowMs, conditioned on it being
// unconsumed, unexpired, and bound to ipHash. The update is a single atomic
// statement; consumed=false means the nonce was already used, expired, had a
// different scope, or lost the race to a concurrent consumer.
func ConsumeNonce(ctx context.Context, db *gorm.DB, wallet, token, ipHash string, nowMs int64) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE auth_nonces
		 SET used_at_ms = ?
		 WHERE wallet = ? AND token = ? AND used_at_ms IS NULL AND expires_at_ms >= ? AND ip_hash = ?`,
		nowMs, wallet, token, nowMs, ipHash,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
