package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashVerifyArgon2id(t *testing.T) {
	phc, err := Hash(Fast, "secret123")
	require.NoError(t, err)
	assert.Regexp(t, `^\$argon2id\$v=19\$m=1024,t=1,p=1\$`, phc)

	assert.True(t, Verify("secret123", phc))
	assert.False(t, Verify("wrong", phc))
}

func TestHashRejectsEmpty(t *testing.T) {
	_, err := Hash(Fast, "")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestVerifyBcryptLegacy(t *testing.T) {
	h, err := bcrypt.GenerateFromPassword([]byte("legacy"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, Verify("legacy", string(h)))
	assert.False(t, Verify("nope", string(h)))
	assert.True(t, NeedsRehash(Default, string(h)))
}

func TestVerifyMalformed(t *testing.T) {
	for _, s := range []string{"", "plain", "$argon2id$v=19$m=1,t=1,p=1$@@$@@", "$argon2id$v=18$m=1,t=1,p=1$YQ$YQ"} {
		assert.False(t, Verify("x", s), s)
	}
}

func TestNeedsRehash(t *testing.T) {
	phc, err := Hash(Fast, "pw")
	require.NoError(t, err)
	assert.False(t, NeedsRehash(Fast, phc))
	assert.True(t, NeedsRehash(Default, phc))
}

func TestPolicy(t *testing.T) {
	ok, _ := DefaultPolicy.Validate("p1")
	assert.True(t, ok)

	ok, reasons := Policy{MinLength: 4, MaxLength: 8}.Validate("abc")
	assert.False(t, ok)
	assert.Equal(t, []string{"too_short"}, reasons)

	_, reasons = DefaultPolicy.Validate(strings.Repeat("a", 129))
	assert.Equal(t, []string{"too_long"}, reasons)

	strict := Policy{MinLength: 1, RequireUpper: true, RequireDigit: true, RequireSymbol: true}
	_, reasons = strict.Validate("abc")
	assert.ElementsMatch(t, []string{"missing_upper", "missing_digit", "missing_symbol"}, reasons)
}
