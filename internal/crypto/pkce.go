package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// pkceCharset is the RFC 7636 unreserved character set for code verifiers.
const pkceCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-._~"

const pkceVerifierLength = 64 // within the 43..128 range the RFC allows

// GenerateCodeVerifier returns a random PKCE code verifier.
func GenerateCodeVerifier() (string, error) {
	buf := make([]byte, pkceVerifierLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("crypto: pkce verifier: %w", err)
	}
	for i, b := range buf {
		buf[i] = pkceCharset[int(b)%len(pkceCharset)]
	}
	return string(buf), nil
}

// CodeChallengeS256 derives the S256 code challenge for a verifier:
// base64url(sha256(verifier)) without padding.
func CodeChallengeS256(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
