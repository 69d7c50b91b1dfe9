// Package domain defines the persistence models for wallet authentication
// nonces, best-of-day scores, the append-only run audit log, and rate-limit
// counters. These types are mapped with GORM and form the core data layer
// of the leaderboard application.
package domain

import "time"

// Nonce is a single-use, time-bounded challenge token issued to a wallet.
// A nonce is bound to the network origin that requested it (a SHA-256 hash
// of the client IP) and may be consumed at most once; rows are never deleted
// so the table doubles as an authentication audit trail.
//
// Fields:
//   - Wallet: normalized (lowercase, 0x-prefixed) wallet address.
//   - Token: random hex token, unique per (wallet, token).
//   - IPHash: SHA-256 hex of the requesting client IP (scope binding).
//   - ExpiresAtMs: expiry instant in epoch milliseconds.
//   - UsedAtMs: consumption instant in epoch milliseconds; nil while unused.
//     Set exactly once via a conditional update (see repo.ConsumeNonce).
type Nonce struct {
	ID          int64  `json:"-"             gorm:"primaryKey;autoIncrement"`
	Wallet      string `json:"wallet"        gorm:"type:varchar(42);not null;uniqueIndex:ux_nonce_wallet_token,priority:1"`
	Token       string `json:"token"         gorm:"type:varchar(64);not null;uniqueIndex:ux_nonce_wallet_token,priority:2"`
	IPHash      string `json:"-"             gorm:"type:char(64);not null"`
	ExpiresAtMs int64  `json:"expires_at_ms" gorm:"not null;index"`
	UsedAtMs    *int64 `json:"used_at_ms,omitempty"`
}

// TableName returns the database table name for Nonce.
func (Nonce) TableName() string { return "auth_nonces" }

// Score is the canonical best-of-day leaderboard entry: one row per
// (wallet, day), replaced only when a strictly higher score is submitted.
// The stored score never decreases.
type Score struct {
	Wallet      string `json:"wallet"       gorm:"type:varchar(42);primaryKey"`
	Day         string `json:"day"          gorm:"type:char(10);primaryKey"`
	ScoreValue  int64  `json:"score"        gorm:"column:score;not null"`
	Moves       int64  `json:"moves"        gorm:"not null"`
	TimeSeconds int64  `json:"time_seconds" gorm:"not null"`
}

// TableName returns the database table name for Score.
func (Score) TableName() string { return "scores" }

// ScoreRun is an append-only audit entry recording every accepted submission,
// not just daily bests. It backs the recent-activity query and forensic
// replay inspection. Inserts identical in (wallet, day, score, moves,
// time_seconds) to a row created within the trailing 30 minutes are
// suppressed (best-effort duplicate dampening, not a correctness guarantee).
type ScoreRun struct {
	ID          int64     `json:"-"            gorm:"primaryKey;autoIncrement"`
	Wallet      string    `json:"wallet"       gorm:"type:varchar(42);not null;index:idx_runs_wallet_created,priority:1"`
	Day         string    `json:"day"          gorm:"type:char(10);not null"`
	ScoreValue  int64     `json:"score"        gorm:"column:score;not null"`
	Moves       int64     `json:"moves"        gorm:"not null"`
	TimeSeconds int64     `json:"time_seconds" gorm:"not null"`
	IPHash      string    `json:"-"            gorm:"type:char(64);not null"`
	CreatedAt   time.Time `json:"created_at"   gorm:"index:idx_runs_wallet_created,priority:2"`
}

// TableName returns the database table name for ScoreRun.
func (ScoreRun) TableName() string { return "score_runs" }

// RateCounter is a fixed-window request counter. Key is namespaced
// ("ip:<hash>" or "wallet:<address>"); WindowStartMs identifies the current
// window in epoch milliseconds. A counter belonging to an older window is
// reset in place, never deleted.
type RateCounter struct {
	Key           string `gorm:"type:varchar(80);primaryKey"`
	WindowStartMs int64  `gorm:"column:window_start;not null"`
	Count         int64  `gorm:"not null"`
}

// TableName returns the database table name for RateCounter.
func (RateCounter) TableName() string { return "rate_limits" }
