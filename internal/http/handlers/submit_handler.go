// Submission HTTP handler.
//
// This file exposes the REST endpoint for submitting an authenticated score:
//   - POST /submit
//
// The handler clamps numeric input at the boundary, hashes the client origin,
// and delegates the entire authorization state machine to the submission
// service. Every service rejection maps to a stable error code; the
// authentication-equivalent rejections (implausible run, score proof, nonce,
// signature) differ in message only, never in retriability.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-leaderboard-backend/internal/services"
	"github.com/tbourn/go-leaderboard-backend/internal/signing"
	"github.com/tbourn/go-leaderboard-backend/internal/utils"
)

// maxNumericInput bounds every numeric submission field.
const maxNumericInput = 1_000_000_000

// SubmitRunRequest is the JSON payload for submitting a finished run.
// Numeric fields arrive as JSON numbers and are truncated and clamped to
// [0, 1e9] before use.
type SubmitRunRequest struct {
	Wallet      string  `json:"wallet"       binding:"required" example:"0x1f9090aae28b8a3dceadf281b0f12828e676c326"`
	Day         string  `json:"day"          binding:"required" example:"2026-02-20"`
	Mode        string  `json:"mode"         example:"normal"`
	Score       float64 `json:"score"        example:"4410"`
	Moves       float64 `json:"moves"        example:"55"`
	TimeSeconds float64 `json:"time_seconds" example:"300"`
	Nonce       string  `json:"nonce"        binding:"required"`
	Signature   string  `json:"signature"    binding:"required"`
}

// SubmitRunResponse reports an accepted submission.
type SubmitRunResponse struct {
	OK        bool  `json:"ok"`
	Updated   bool  `json:"updated"`
	BestScore int64 `json:"best_score"`
	YourScore int64 `json:"your_score"`
}

// SubmitRun godoc
// @ID          submitRun
// @Summary     Submit an authenticated score
// @Description Verifies the run (rate limits, score proof, nonce, signature) and records it on the leaderboard.
// @Tags        Leaderboard
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.SubmitRunRequest  true  "Signed run submission"
//
// @Success     200  {object} handlers.SubmitRunResponse
// @Failure     400  {object} handlers.ErrorResponse "Malformed input"
// @Failure     401  {object} handlers.ErrorResponse "Score proof, nonce, or signature rejected"
// @Failure     422  {object} handlers.ErrorResponse "Implausible run parameters"
// @Failure     429  {object} handlers.ErrorResponse "Rate limited (Retry-After header set)"
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /submit [post]
func (h *Handlers) SubmitRun(c *gin.Context) {
	var req SubmitRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	in := services.SubmitInput{
		Wallet:      req.Wallet,
		Day:         req.Day,
		Mode:        req.Mode,
		Score:       utils.ClampFloatToInt64(req.Score, 0, maxNumericInput),
		Moves:       utils.ClampFloatToInt64(req.Moves, 0, maxNumericInput),
		TimeSeconds: utils.ClampFloatToInt64(req.TimeSeconds, 0, maxNumericInput),
		Token:       req.Nonce,
		Signature:   req.Signature,
		OriginHash:  signing.HashOrigin(c.ClientIP()),
	}

	res, err := h.subSvc.Submit(c.Request.Context(), in)
	if err != nil {
		failSubmission(c, err)
		return
	}

	ok(c, http.StatusOK, SubmitRunResponse{
		OK:        true,
		Updated:   res.Updated,
		BestScore: res.BestScore,
		YourScore: res.YourScore,
	})
}

// failSubmission translates a submission service error into an HTTP result.
func failSubmission(c *gin.Context, err error) {
	var (
		rateErr        *services.RateLimitedError
		implausibleErr *services.ImplausibleRunError
	)

	switch {
	case errors.As(err, &rateErr):
		secs := int64(rateErr.RetryAfter.Seconds())
		c.Header("Retry-After", strconv.FormatInt(secs, 10))
		fail(c, http.StatusTooManyRequests, ErrCodeRateLimited,
			fmt.Sprintf("rate limit (%s): wait %ds and try again", rateErr.Scope, secs))

	case errors.As(err, &implausibleErr):
		fail(c, http.StatusUnprocessableEntity, ErrCodeImplausibleRun, implausibleErr.Error())

	case errors.Is(err, services.ErrInvalidWallet),
		errors.Is(err, services.ErrInvalidDay),
		errors.Is(err, services.ErrInvalidMode),
		errors.Is(err, services.ErrMissingNonce),
		errors.Is(err, services.ErrInvalidSignatureFormat):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())

	case errors.Is(err, services.ErrInvalidScoreProof):
		fail(c, http.StatusUnauthorized, ErrCodeInvalidScoreProof, "invalid score proof")

	case errors.Is(err, services.ErrNonceNotFound),
		errors.Is(err, services.ErrNonceScopeMismatch),
		errors.Is(err, services.ErrNonceAlreadyUsed),
		errors.Is(err, services.ErrNonceExpired):
		fail(c, http.StatusUnauthorized, ErrCodeInvalidNonce, err.Error())

	case errors.Is(err, services.ErrInvalidSignature):
		fail(c, http.StatusUnauthorized, ErrCodeInvalidSignature, "invalid signature")

	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "submission failed")
	}
}
