// Package services: score proof validation.
//
// A claimed score is never trusted: it must equal a deterministic
// recomputation from the claimed run parameters. The formula has no
// randomness and no external state, so any mismatch means the claim was
// forged or tampered with, not that the data is stale.
package services

import "math"

// Game modes accepted by the API.
const (
	ModeNormal = "normal"
	ModeEasy   = "easy"
)

// Scoring constants. These mirror the game client exactly; changing any of
// them invalidates every in-flight submission.
const (
	scoreBase       = 1800
	foundationBonus = 52 * 35 // 1820
	winBonus        = 1200
	easyMultiplier  = 0.65
)

// ScoreMultiplier returns the mode scaling factor (easy runs score less).
func ScoreMultiplier(mode string) float64 {
	if mode == ModeEasy {
		return easyMultiplier
	}
	return 1.0
}

// ExpectedScore recomputes the only score a winning run with the given
// parameters can produce. Floor semantics apply to the scaled value before
// the zero clamp, so a negative raw total always lands on exactly 0.
func ExpectedScore(moves, timeSeconds int64, mode string) int64 {
	raw := float64(scoreBase - timeSeconds - moves*2 + foundationBonus + winBonus)
	scaled := math.Floor(raw * ScoreMultiplier(mode))
	if scaled < 0 {
		return 0
	}
	return int64(scaled)
}

// CheckPlausibility screens run parameters for superhuman play before any
// proof comparison. The three checks are independent; the first failure
// determines the reported reason.
func CheckPlausibility(moves, timeSeconds int64) error {
	if moves < 40 {
		return &ImplausibleRunError{Reason: "moves too low"}
	}
	if timeSeconds < 30 {
		return &ImplausibleRunError{Reason: "time too low"}
	}
	if timeSeconds < int64(math.Floor(float64(moves)*0.35)) {
		return &ImplausibleRunError{Reason: "too fast for moves"}
	}
	return nil
}

// VerifyScoreProof applies the plausibility gate and then requires the
// claimed score to exactly equal the recomputation. A mismatch is an
// authentication-equivalent failure (ErrInvalidScoreProof), not a data error.
func VerifyScoreProof(score, moves, timeSeconds int64, mode string) error {
	if err := CheckPlausibility(moves, timeSeconds); err != nil {
		return err
	}
	if score != ExpectedScore(moves, timeSeconds, mode) {
		return ErrInvalidScoreProof
	}
	return nil
}
