// Package services: LeaderboardService
//
// This file implements the read side of the leaderboard: monthly rankings,
// a wallet's best-of-day lookup, and the recent-activity feed backed by the
// run audit log.
package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-leaderboard-backend/internal/domain"
	"github.com/tbourn/go-leaderboard-backend/internal/repo"
)

var monthRE = regexp.MustCompile(`^\d{4}-\d{2}$`)

// LeaderboardService serves leaderboard read queries.
type LeaderboardService struct {
	// DB is the GORM handle used for queries.
	DB *gorm.DB
}

// CurrentUTCMonth returns the current month as YYYY-MM in UTC, the default
// for MonthlyTop when the caller omits a month.
func CurrentUTCMonth() string {
	return time.Now().UTC().Format("2006-01")
}

// MonthRange expands a YYYY-MM month into the half-open day range
// [first-of-month, first-of-next-month). ok is false for malformed months.
func MonthRange(month string) (start, end string, ok bool) {
	if !monthRE.MatchString(month) {
		return "", "", false
	}
	y, _ := strconv.Atoi(month[:4])
	m, _ := strconv.Atoi(month[5:7])
	if m < 1 || m > 12 {
		return "", "", false
	}
	nextY, nextM := y, m+1
	if m == 12 {
		nextY, nextM = y+1, 1
	}
	return fmt.Sprintf("%04d-%02d-01", y, m), fmt.Sprintf("%04d-%02d-01", nextY, nextM), true
}

// MonthlyTop returns up to limit ranked rows for the month, one per wallet:
// each wallet's best run in the month ordered by score desc, time asc,
// moves asc, day desc. Fails with ErrInvalidMonth on a malformed month.
func (s *LeaderboardService) MonthlyTop(ctx context.Context, month string, limit int) ([]domain.Score, error) {
	start, end, ok := MonthRange(month)
	if !ok {
		return nil, ErrInvalidMonth
	}
	return repo.MonthlyTop(ctx, s.DB, start, end, limit)
}

// Best returns the wallet's stored best for day, or for its most recent day
// when day is empty. A wallet with no entry yields (nil, nil): absence is an
// ordinary answer here, not an error.
func (s *LeaderboardService) Best(ctx context.Context, wallet, day string) (*domain.Score, error) {
	var (
		rec *domain.Score
		err error
	)
	if day != "" {
		rec, err = repo.GetBest(ctx, s.DB, wallet, day)
	} else {
		rec, err = repo.GetLatestBest(ctx, s.DB, wallet)
	}
	if err == repo.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Recent returns the wallet's accepted runs, newest first.
func (s *LeaderboardService) Recent(ctx context.Context, wallet string, limit int) ([]domain.ScoreRun, error) {
	return repo.ListRecentRuns(ctx, s.DB, wallet, limit)
}

// RunStats exposes audit-log aggregates for conditional responses.
func (s *LeaderboardService) RunStats(ctx context.Context, wallet string) (int64, *time.Time, error) {
	return repo.RunStats(ctx, s.DB, wallet)
}
