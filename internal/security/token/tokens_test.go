package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOpaqueToken(t *testing.T) {
	a, err := GenerateOpaqueToken(32)
	require.NoError(t, err)
	b, err := GenerateOpaqueToken(32)
	require.NoError(t, err)

	assert.Len(t, a, 43)
	assert.NotEqual(t, a, b)
}

func TestSHA256Base64URLIsStable(t *testing.T) {
	assert.Equal(t, SHA256Base64URL("abc"), SHA256Base64URL("abc"))
	assert.NotEqual(t, SHA256Base64URL("abc"), SHA256Base64URL("abd"))
	assert.NotContains(t, SHA256Base64URL("abc"), "=")
}

func TestInviteCode(t *testing.T) {
	code, err := InviteCode(8)
	require.NoError(t, err)
	assert.Regexp(t, `^[A-HJ-NP-Z2-9]{8}$`, code)
}
