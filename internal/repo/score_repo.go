// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Score and
// ScoreRun models: the conditional best-of-day upsert, the dedup-guarded run
// audit insert, and the leaderboard read queries.
//
// The two mutations here are each expressed as one atomic SQL statement so
// that concurrent submissions cannot interleave a read-then-write race; the
// affected-row count is the authoritative signal of whether anything changed.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-leaderboard-backend/internal/domain"
)

// UpsertBest inserts the (wallet, day) best row or replaces it when score is
// strictly greater than the stored one. Returns whether a change occurred.
// The stored score never decreases.
func UpsertBest(ctx context.Context, db *gorm.DB, wallet, day string, score, moves, timeSeconds int64) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`INSERT INTO scores (wallet, day, score, moves, time_seconds)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(wallet, day)
		 DO UPDATE SET
		   score = excluded.score,
		   moves = excluded.moves,
		   time_seconds = excluded.time_seconds
		 WHERE excluded.score > scores.score`,
		wallet, day, score, moves, timeSeconds,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RecordRun appends an audit row for an accepted submission, unless a row
// identical in (wallet, day, score, moves, time_seconds) was created after
// dedupAfter. Suppression is best-effort duplicate dampening; a suppressed
// insert is not an error.
func RecordRun(ctx context.Context, db *gorm.DB, run *domain.ScoreRun, dedupAfter time.Time) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO score_runs (wallet, day, score, moves, time_seconds, ip_hash, created_at)
		 SELECT ?, ?, ?, ?, ?, ?, ?
		 WHERE NOT EXISTS (
		   SELECT 1 FROM score_runs
		   WHERE wallet = ? AND day = ? AND score = ? AND moves = ? AND time_seconds = ?
		     AND created_at >= ?
		 )`,
		run.Wallet, run.Day, run.ScoreValue, run.Moves, run.TimeSeconds, run.IPHash, run.CreatedAt,
		run.Wallet, run.Day, run.ScoreValue, run.Moves, run.TimeSeconds, dedupAfter,
	).Error
}

// GetBest fetches the stored best for a wallet on a specific day, or
// ErrNotFound when the wallet has no entry for that day.
func GetBest(ctx context.Context, db *gorm.DB, wallet, day string) (*domain.Score, error) {
	var s domain.Score
	err := db.WithContext(ctx).
		Where("wallet = ? AND day = ?", wallet, day).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetLatestBest fetches the wallet's best for its most recent recorded day,
// or ErrNotFound when the wallet has never scored.
func GetLatestBest(ctx context.Context, db *gorm.DB, wallet string) (*domain.Score, error) {
	var s domain.Score
	err := db.WithContext(ctx).
		Where("wallet = ?", wallet).
		Order("day DESC").
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListRecentRuns returns the wallet's audit entries, newest first.
func ListRecentRuns(ctx context.Context, db *gorm.DB, wallet string, limit int) ([]domain.ScoreRun, error) {
	var out []domain.ScoreRun
	err := db.WithContext(ctx).
		Where("wallet = ?", wallet).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// MonthlyTop returns at most limit rows, one per wallet: each wallet's single
// best run with day in [monthStart, monthEnd), ranked by score DESC, then
// time ASC, then moves ASC, then day DESC. The per-wallet pick and the final
// ordering use the same comparator.
func MonthlyTop(ctx context.Context, db *gorm.DB, monthStart, monthEnd string, limit int) ([]domain.Score, error) {
	var out []domain.Score
	err := db.WithContext(ctx).Raw(
		`WITH monthly_best AS (
		   SELECT
		     wallet, day, score, moves, time_seconds,
		     ROW_NUMBER() OVER (
		       PARTITION BY wallet
		       ORDER BY score DESC, time_seconds ASC, moves ASC, day DESC
		     ) AS rn
		   FROM scores
		   WHERE day >= ? AND day < ?
		 )
		 SELECT wallet, day, score, moves, time_seconds
		 FROM monthly_best
		 WHERE rn = 1
		 ORDER BY score DESC, time_seconds ASC, moves ASC, day DESC
		 LIMIT ?`,
		monthStart, monthEnd, limit,
	).Scan(&out).Error
	return out, err
}

// RunStats returns aggregate metadata for a wallet's audit log: the total
// number of runs and the most recent CreatedAt. Used for conditional
// responses (ETag generation) on the recent-activity endpoint. When the
// wallet has no runs, count is 0 and latest is nil.
func RunStats(ctx context.Context, db *gorm.DB, wallet string) (count int64, latest *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.ScoreRun{}).Where("wallet = ?", wallet)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest created_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		CreatedAt time.Time
	}
	if err = q.Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.CreatedAt, nil
}
