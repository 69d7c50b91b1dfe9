package repo

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/tbourn/go-leaderboard-backend/internal/domain"
)

func TestUpsertBest_NeverDecreases(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	wallet := "0x" + strings.Repeat("aa", 20)
	day := "2026-02-20"

	changed, err := UpsertBest(ctx, db, wallet, day, 4410, 55, 300)
	if err != nil || !changed {
		t.Fatalf("initial insert: changed=%v err=%v", changed, err)
	}

	// Lower score must not replace the stored best.
	changed, err = UpsertBest(ctx, db, wallet, day, 4000, 60, 350)
	if err != nil {
		t.Fatalf("lower upsert errored: %v", err)
	}
	if changed {
		t.Fatalf("lower score replaced the best")
	}

	// Equal score must not replace it either (strictly greater only).
	changed, err = UpsertBest(ctx, db, wallet, day, 4410, 50, 250)
	if err != nil || changed {
		t.Fatalf("equal-score upsert: changed=%v err=%v", changed, err)
	}

	// Higher score replaces the row including its companion fields.
	changed, err = UpsertBest(ctx, db, wallet, day, 4500, 52, 280)
	if err != nil || !changed {
		t.Fatalf("higher upsert: changed=%v err=%v", changed, err)
	}

	got, err := GetBest(ctx, db, wallet, day)
	if err != nil {
		t.Fatalf("GetBest: %v", err)
	}
	if got.ScoreValue != 4500 || got.Moves != 52 || got.TimeSeconds != 280 {
		t.Fatalf("unexpected stored best: %+v", got)
	}
}

func TestGetBest_And_GetLatestBest(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	wallet := "0x" + strings.Repeat("bb", 20)

	if _, err := GetBest(ctx, db, wallet, "2026-02-20"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := GetLatestBest(ctx, db, wallet); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	for _, e := range []struct {
		day   string
		score int64
	}{
		{"2026-02-18", 4100},
		{"2026-02-20", 4410},
		{"2026-02-19", 4600},
	} {
		if _, err := UpsertBest(ctx, db, wallet, e.day, e.score, 55, 300); err != nil {
			t.Fatalf("seed %s: %v", e.day, err)
		}
	}

	got, err := GetBest(ctx, db, wallet, "2026-02-19")
	if err != nil || got.ScoreValue != 4600 {
		t.Fatalf("GetBest day row: %+v err=%v", got, err)
	}

	// Latest means the most recent day, not the highest score.
	latest, err := GetLatestBest(ctx, db, wallet)
	if err != nil {
		t.Fatalf("GetLatestBest: %v", err)
	}
	if latest.Day != "2026-02-20" || latest.ScoreValue != 4410 {
		t.Fatalf("expected latest day 2026-02-20, got %+v", latest)
	}
}

func TestRecordRun_DedupWindow(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	wallet := "0x" + strings.Repeat("cc", 20)
	ipHash := strings.Repeat("4", 64)
	now := time.Now().UTC()

	run := &domain.ScoreRun{
		Wallet: wallet, Day: "2026-02-20",
		ScoreValue: 4410, Moves: 55, TimeSeconds: 300,
		IPHash: ipHash, CreatedAt: now,
	}
	dedupAfter := now.Add(-30 * time.Minute)

	if err := RecordRun(ctx, db, run, dedupAfter); err != nil {
		t.Fatalf("first RecordRun: %v", err)
	}
	// Identical run inside the window is silently suppressed.
	dup := *run
	dup.CreatedAt = now.Add(time.Second)
	if err := RecordRun(ctx, db, &dup, dedupAfter); err != nil {
		t.Fatalf("duplicate RecordRun: %v", err)
	}

	var count int64
	if err := db.Model(&domain.ScoreRun{}).Where("wallet = ?", wallet).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 audit row after dedup, got %d", count)
	}

	// A different score is a distinct run and must be recorded.
	other := *run
	other.ScoreValue = 4500
	other.CreatedAt = now.Add(2 * time.Second)
	if err := RecordRun(ctx, db, &other, dedupAfter); err != nil {
		t.Fatalf("distinct RecordRun: %v", err)
	}
	if err := db.Model(&domain.ScoreRun{}).Where("wallet = ?", wallet).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 audit rows, got %d", count)
	}

	// The same parameters outside the window are recorded again.
	late := *run
	late.CreatedAt = now.Add(time.Hour)
	if err := RecordRun(ctx, db, &late, now.Add(30*time.Minute)); err != nil {
		t.Fatalf("late RecordRun: %v", err)
	}
	if err := db.Model(&domain.ScoreRun{}).Where("wallet = ?", wallet).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 audit rows, got %d", count)
	}
}

func TestListRecentRuns_OrderAndLimit(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	wallet := "0x" + strings.Repeat("dd", 20)
	base := time.Now().UTC().Add(-time.Hour)

	for i := int64(0); i < 5; i++ {
		run := &domain.ScoreRun{
			Wallet: wallet, Day: "2026-02-20",
			ScoreValue: 4000 + i, Moves: 55, TimeSeconds: 300,
			IPHash: strings.Repeat("5", 64), CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := RecordRun(ctx, db, run, base.Add(-time.Hour)); err != nil {
			t.Fatalf("seed run %d: %v", i, err)
		}
	}

	rows, err := ListRecentRuns(ctx, db, wallet, 3)
	if err != nil {
		t.Fatalf("ListRecentRuns: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	// Newest first.
	if rows[0].ScoreValue != 4004 || rows[1].ScoreValue != 4003 || rows[2].ScoreValue != 4002 {
		t.Fatalf("unexpected ordering: %+v", rows)
	}
}

func TestMonthlyTop_OnePerWalletAndOrdering(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	a := "0x" + strings.Repeat("1a", 20)
	b := "0x" + strings.Repeat("2b", 20)
	c := "0x" + strings.Repeat("3c", 20)
	d := "0x" + strings.Repeat("4d", 20)

	seed := []struct {
		wallet   string
		day      string
		score    int64
		moves    int64
		timeSecs int64
	}{
		// Wallet a: two entries in month; only the 4600 one may rank.
		{a, "2026-02-10", 4100, 60, 400},
		{a, "2026-02-11", 4600, 55, 300},
		// Wallet b ties a's best on score but is slower.
		{b, "2026-02-12", 4600, 50, 350},
		// Wallet c lower score.
		{c, "2026-02-13", 4200, 55, 300},
		// Wallet d scored outside the month; must not appear.
		{d, "2026-03-01", 9000, 55, 300},
	}
	for _, e := range seed {
		if _, err := UpsertBest(ctx, db, e.wallet, e.day, e.score, e.moves, e.timeSecs); err != nil {
			t.Fatalf("seed %s/%s: %v", e.wallet, e.day, err)
		}
	}

	rows, err := MonthlyTop(ctx, db, "2026-02-01", "2026-03-01", 10)
	if err != nil {
		t.Fatalf("MonthlyTop: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows (one per in-month wallet), got %d: %+v", len(rows), rows)
	}
	// a beats b on the time tiebreak, c trails on score.
	if rows[0].Wallet != a || rows[1].Wallet != b || rows[2].Wallet != c {
		t.Fatalf("unexpected ranking: %+v", rows)
	}
	if rows[0].Day != "2026-02-11" {
		t.Fatalf("wallet a must rank with its best day, got %+v", rows[0])
	}

	// Limit applies after ranking.
	rows, err = MonthlyTop(ctx, db, "2026-02-01", "2026-03-01", 1)
	if err != nil || len(rows) != 1 || rows[0].Wallet != a {
		t.Fatalf("limited MonthlyTop: rows=%+v err=%v", rows, err)
	}
}

func TestRunStats(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	wallet := "0x" + strings.Repeat("ee", 20)

	count, latest, err := RunStats(ctx, db, wallet)
	if err != nil || count != 0 || latest != nil {
		t.Fatalf("empty stats: count=%d latest=%v err=%v", count, latest, err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	for i := int64(0); i < 2; i++ {
		run := &domain.ScoreRun{
			Wallet: wallet, Day: "2026-02-20",
			ScoreValue: 4000 + i, Moves: 55, TimeSeconds: 300,
			IPHash: strings.Repeat("6", 64), CreatedAt: now.Add(time.Duration(i) * time.Minute),
		}
		if err := RecordRun(ctx, db, run, now.Add(-time.Hour)); err != nil {
			t.Fatalf("seed run: %v", err)
		}
	}

	count, latest, err = RunStats(ctx, db, wallet)
	if err != nil {
		t.Fatalf("RunStats: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected count=2, got %d", count)
	}
	if latest == nil || !latest.Equal(now.Add(time.Minute)) {
		t.Fatalf("expected latest=%v, got %v", now.Add(time.Minute), latest)
	}
}
