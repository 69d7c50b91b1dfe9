// Leaderboard HTTP handlers.
//
// This file exposes the read-side REST endpoints:
//   - GET /top     (monthly ranking, one row per wallet)
//   - GET /me      (a wallet's best-of-day, or latest best)
//   - GET /recent  (a wallet's accepted runs, newest first; ETag support)
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results into HTTP responses (including
// conditional responses).
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-leaderboard-backend/internal/domain"
	"github.com/tbourn/go-leaderboard-backend/internal/services"
	"github.com/tbourn/go-leaderboard-backend/internal/signing"
	"github.com/tbourn/go-leaderboard-backend/internal/utils"
)

const (
	defaultListLimit = 10
	maxListLimit     = 50
)

// MonthlyTopResponse is the ranked month view.
type MonthlyTopResponse struct {
	OK    bool           `json:"ok"`
	Month string         `json:"month"`
	Rows  []domain.Score `json:"rows"`
}

// BestResponse is a single wallet's best entry; Row is null when the wallet
// has no recorded best.
type BestResponse struct {
	OK  bool          `json:"ok"`
	Row *domain.Score `json:"row"`
}

// RecentRunsResponse lists a wallet's accepted runs, newest first.
type RecentRunsResponse struct {
	OK   bool              `json:"ok"`
	Rows []domain.ScoreRun `json:"rows"`
}

// MonthlyTop godoc
// @ID          monthlyTop
// @Summary     Monthly leaderboard
// @Description Returns up to limit wallets ranked by their best run in the month (score desc, time asc, moves asc, day desc).
// @Tags        Leaderboard
// @Produce     json
//
// @Param       month  query  string  false "Month (YYYY-MM); defaults to the current UTC month"  example(2026-02)
// @Param       limit  query  int     false "Row limit"  minimum(1) maximum(50) default(10)
//
// @Success     200  {object} handlers.MonthlyTopResponse
// @Failure     400  {object} handlers.ErrorResponse "Invalid month"
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /top [get]
func (h *Handlers) MonthlyTop(c *gin.Context) {
	month := strings.TrimSpace(c.Query("month"))
	if month == "" {
		month = services.CurrentUTCMonth()
	}
	limit := utils.ClampInt(utils.AtoiDefault(c.Query("limit"), defaultListLimit), 1, maxListLimit)

	rows, err := h.lbSvc.MonthlyTop(c.Request.Context(), month, limit)
	if err != nil {
		if errors.Is(err, services.ErrInvalidMonth) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid month (YYYY-MM)")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load leaderboard")
		return
	}
	if rows == nil {
		rows = []domain.Score{}
	}

	ok(c, http.StatusOK, MonthlyTopResponse{OK: true, Month: month, Rows: rows})
}

// Best godoc
// @ID          walletBest
// @Summary     A wallet's best entry
// @Description Returns the stored best for a specific day, or for the wallet's most recent day when day is omitted.
// @Tags        Leaderboard
// @Produce     json
//
// @Param       wallet  query  string  true  "Wallet address"  example(0x1f9090aae28b8a3dceadf281b0f12828e676c326)
// @Param       day     query  string  false "Day (YYYY-MM-DD)"  example(2026-02-20)
//
// @Success     200  {object} handlers.BestResponse
// @Failure     400  {object} handlers.ErrorResponse "Missing or invalid wallet"
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /me [get]
func (h *Handlers) Best(c *gin.Context) {
	wallet, valid := requireWallet(c)
	if !valid {
		return
	}
	day := strings.TrimSpace(c.Query("day"))

	row, err := h.lbSvc.Best(c.Request.Context(), wallet, day)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load best score")
		return
	}

	ok(c, http.StatusOK, BestResponse{OK: true, Row: row})
}

// RecentRuns godoc
// @ID          recentRuns
// @Summary     A wallet's recent runs
// @Description Returns the wallet's accepted submissions from the audit log, newest first. Supports ETag revalidation.
// @Tags        Leaderboard
// @Produce     json
//
// @Param       wallet         query   string  true  "Wallet address"  example(0x1f9090aae28b8a3dceadf281b0f12828e676c326)
// @Param       limit          query   int     false "Row limit"  minimum(1) maximum(50) default(10)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
//
// @Success     200  {object} handlers.RecentRunsResponse
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ErrorResponse "Missing or invalid wallet"
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /recent [get]
func (h *Handlers) RecentRuns(c *gin.Context) {
	wallet, valid := requireWallet(c)
	if !valid {
		return
	}
	limit := utils.ClampInt(utils.AtoiDefault(c.Query("limit"), defaultListLimit), 1, maxListLimit)

	// Weak ETag from audit-log aggregates: any accepted run changes it.
	count, latest, err := h.lbSvc.RunStats(c.Request.Context(), wallet)
	if err == nil {
		var ts int64
		if latest != nil {
			ts = latest.UnixMilli()
		}
		etag := fmt.Sprintf(`W/"runs-%s-%d-%d-%d"`, wallet, count, ts, limit)
		c.Header("ETag", etag)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	rows, err := h.lbSvc.Recent(c.Request.Context(), wallet, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load recent runs")
		return
	}
	if rows == nil {
		rows = []domain.ScoreRun{}
	}

	ok(c, http.StatusOK, RecentRunsResponse{OK: true, Rows: rows})
}

// requireWallet extracts and normalizes the wallet query parameter, writing
// a 400 response and returning valid=false when it is missing or malformed.
func requireWallet(c *gin.Context) (string, bool) {
	raw := strings.TrimSpace(c.Query("wallet"))
	if raw == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "missing wallet")
		return "", false
	}
	wallet, valid := signing.NormalizeWallet(raw)
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid wallet")
		return "", false
	}
	return wallet, true
}
