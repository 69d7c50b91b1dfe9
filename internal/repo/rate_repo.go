// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the fixed-window rate counter mutation.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-leaderboard-backend/internal/domain"
)

// RateDecision reports the outcome of a CheckAndBump call.
type RateDecision struct {
	Allowed   bool
	Remaining int64
	ResetAtMs int64 // end of the current window
}

// CheckAndBump atomically counts a request against the fixed window
// containing nowMs for key, allowing at most maxCount requests per window.
//
// The whole check-and-increment is one upsert: a missing counter or one from
// an older window is reset to 1, a current-window counter below maxCount is
// incremented, and a full counter matches no row. RowsAffected > 0 is the
// authoritative allow signal, so concurrent requests sharing a key can never
// both claim the last slot.
func CheckAndBump(ctx context.Context, db *gorm.DB, key string, maxCount int64, windowMs, nowMs int64) (RateDecision, error) {
	windowStart := nowMs - (nowMs % windowMs)
	d := RateDecision{ResetAtMs: windowStart + windowMs}

	res := db.WithContext(ctx).Exec(
		`INSERT INTO rate_limits (key, window_start, count)
		 VALUES (?, ?, 1)
		 ON CONFLICT(key) DO UPDATE SET
		   count = CASE WHEN rate_limits.window_start = excluded.window_start
		                THEN rate_limits.count + 1 ELSE 1 END,
		   window_start = excluded.window_start
		 WHERE rate_limits.window_start <> excluded.window_start
		    OR rate_limits.count < ?`,
		key, windowStart, maxCount,
	)
	if res.Error != nil {
		return d, res.Error
	}
	if res.RowsAffected == 0 {
		return d, nil
	}

	d.Allowed = true
	// Remaining is reporting only; the allow decision above is already final.
	var c domain.RateCounter
	if err := db.WithContext(ctx).Where("key = ?", key).First(&c).Error; err == nil {
		d.Remaining = maxCount - c.Count
		if d.Remaining < 0 {
			d.Remaining = 0
		}
	}
	return d, nil
}
