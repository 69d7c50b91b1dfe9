// Package signing implements the wallet authentication primitives: identity
// normalization, origin hashing, the canonical score challenge message, and
// recovery of the signing wallet from an Ethereum personal-message signature.
//
// The challenge message layout is a protocol constant. Signer and verifier
// must produce byte-identical text, so the field order and labels in
// BuildScoreMessage must never change without versioning the API.
package signing

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

var (
	walletRE    = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
	signatureRE = regexp.MustCompile(`^0x[0-9a-fA-F]{130}$`)
)

// ErrInvalidSignature is returned when a signature is malformed or does not
// recover to a valid public key. Callers should treat it as an
// authentication failure, not an input-format error.
var ErrInvalidSignature = errors.New("invalid signature")

// IsHexWallet reports whether s is a well-formed 0x-prefixed 40-hex-digit
// wallet address. It accepts mixed case; normalization is a separate step.
func IsHexWallet(s string) bool { return walletRE.MatchString(s) }

// IsHexSignature reports whether s is a well-formed 0x-prefixed 65-byte
// (130 hex digit) signature. Used to fail fast before attempting recovery.
func IsHexSignature(s string) bool { return signatureRE.MatchString(s) }

// NormalizeWallet trims and lowercases a wallet address, returning ok=false
// when the result is not a well-formed address. The lowercase form is the
// canonical identity used everywhere (storage keys, comparisons, responses).
func NormalizeWallet(s string) (string, bool) {
	w := strings.ToLower(strings.TrimSpace(s))
	if !walletRE.MatchString(w) {
		return "", false
	}
	return w, true
}

// HashOrigin returns the lowercase SHA-256 hex digest of a client IP. Nonces
// are scope-bound to this value; shared NAT/proxy IPs collide by design.
func HashOrigin(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:])
}

// RandomToken returns n cryptographically random bytes rendered as lowercase
// hex. n values below 16 are raised to 16 to keep a minimum of 128 bits of
// entropy per token.
func RandomToken(n int) (string, error) {
	if n < 16 {
		n = 16
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// MessageParams carries the fields embedded in the challenge message.
type MessageParams struct {
	AppName     string
	Domain      string
	Day         string // YYYY-MM-DD
	Score       int64
	Moves       int64
	TimeSeconds int64
	Nonce       string
	Mode        string // omitted from the message when empty
}

// BuildScoreMessage renders the canonical newline-joined challenge message.
// The optional Mode line is appended only when set, matching what wallet
// clients sign.
func BuildScoreMessage(p MessageParams) string {
	lines := []string{
		p.AppName + " Score Submission",
		"Domain: " + p.Domain,
		"Day: " + p.Day,
		fmt.Sprintf("Score: %d", p.Score),
		fmt.Sprintf("Moves: %d", p.Moves),
		fmt.Sprintf("TimeSeconds: %d", p.TimeSeconds),
		"Nonce: " + p.Nonce,
	}
	if p.Mode != "" {
		lines = append(lines, "Mode: "+p.Mode)
	}
	return strings.Join(lines, "\n")
}

// PersonalHash returns the Keccak-256 digest of message wrapped in the
// EIP-191 personal-message prefix ("\x19Ethereum Signed Message:\n<len>").
func PersonalHash(message string) []byte {
	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message)
	return crypto.Keccak256([]byte(prefixed))
}

// RecoverWallet recovers the lowercase wallet address that signed message
// with the given 0x-hex signature.
//
// The signature must be 65 bytes (r||s||v); v is accepted as 0/1 or 27/28.
// Any malformed encoding or failed curve recovery yields ErrInvalidSignature
// without further detail, so callers cannot oracle the failure mode.
func RecoverWallet(message, signature string) (string, error) {
	if !signatureRE.MatchString(signature) {
		return "", ErrInvalidSignature
	}
	sig, err := hex.DecodeString(signature[2:])
	if err != nil || len(sig) != 65 {
		return "", ErrInvalidSignature
	}
	// Normalize the recovery id: wallets emit 27/28, libsecp expects 0/1.
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	if sig[64] > 1 {
		return "", ErrInvalidSignature
	}
	pub, err := crypto.SigToPub(PersonalHash(message), sig)
	if err != nil {
		return "", ErrInvalidSignature
	}
	return strings.ToLower(crypto.PubkeyToAddress(*pub).Hex()), nil
}
