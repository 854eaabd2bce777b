package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifySignature checks a hex-encoded HMAC-SHA256 signature computed over the
// raw request body with the shared webhook secret.
//
// The comparison is constant-time so an attacker cannot learn the expected
// digest byte by byte. An empty signature is rejected up front without
// computing the HMAC.
func VerifySignature(rawBody []byte, providedSignatureHex string, secret string) bool {
	if providedSignatureHex == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(providedSignatureHex))
}

// ComputeSignature returns the hex-encoded HMAC-SHA256 of body keyed by secret.
// Used by tests and by clients constructing signed deliveries.
func ComputeSignature(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
