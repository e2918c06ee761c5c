package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCodeVerifier(t *testing.T) {
	v, err := GenerateCodeVerifier()
	require.NoError(t, err)
	assert.Len(t, v, 64)
	for _, c := range v {
		assert.True(t, strings.ContainsRune(pkceCharset, c), "character %q outside charset", c)
	}

	v2, err := GenerateCodeVerifier()
	require.NoError(t, err)
	assert.NotEqual(t, v, v2)
}

func TestCodeChallengeS256_KnownVector(t *testing.T) {
	// RFC 7636 appendix B.
	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	assert.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", CodeChallengeS256(verifier))
}
