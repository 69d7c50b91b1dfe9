// Nonce HTTP handlers.
//
// This file exposes the REST endpoint for issuing wallet challenge tokens:
//   - POST /nonce  (issue a single-use, time-bounded nonce)
//
// The nonce is bound to the requesting network origin (hashed client IP), so
// the same wallet asking from a different network gets an unrelated token.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-leaderboard-backend/internal/signing"
)

// IssueNonceRequest is the JSON payload for requesting a challenge token.
type IssueNonceRequest struct {
	// Wallet is the 0x-prefixed address that will sign the challenge.
	Wallet string `json:"wallet" binding:"required" example:"0x1f9090aae28b8a3dceadf281b0f12828e676c326"`
}

// IssueNonceResponse carries the issued token plus everything a client needs
// to build and sign the challenge message without further round-trips.
type IssueNonceResponse struct {
	OK               bool        `json:"ok"`
	Wallet           string      `json:"wallet"`
	Nonce            string      `json:"nonce"`
	ExpiresAtMs      int64       `json:"expires_at_ms"`
	ExpiresInSeconds int64       `json:"expires_in_seconds"`
	Signing          SigningInfo `json:"signing"`
}

// IssueNonce godoc
// @ID          issueNonce
// @Summary     Issue a challenge nonce
// @Description Issues a single-use, time-bounded token the wallet must embed in its signed score message.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.IssueNonceRequest  true  "Wallet requesting a challenge"
//
// @Success     200  {object} handlers.IssueNonceResponse
// @Failure     400  {object} handlers.ErrorResponse "Invalid wallet or JSON body"
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /nonce [post]
func (h *Handlers) IssueNonce(c *gin.Context) {
	var req IssueNonceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	wallet, valid := signing.NormalizeWallet(req.Wallet)
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid wallet")
		return
	}

	n, err := h.nonceSvc.Issue(c.Request.Context(), wallet, signing.HashOrigin(c.ClientIP()))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not issue nonce")
		return
	}

	ok(c, http.StatusOK, IssueNonceResponse{
		OK:               true,
		Wallet:           wallet,
		Nonce:            n.Token,
		ExpiresAtMs:      n.ExpiresAtMs,
		ExpiresInSeconds: int64(h.nonceTTL.Seconds()),
		Signing:          h.signing,
	})
}
