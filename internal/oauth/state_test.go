package oauth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateRoundTrip(t *testing.T) {
	s := &StateSigner{Secret: []byte("k"), TTL: time.Minute}
	state, nonce, err := s.Issue("GOOGLE")
	require.NoError(t, err)

	assert.NoError(t, s.Verify(state, "GOOGLE", nonce))
	assert.ErrorIs(t, s.Verify(state, "GOOGLE", "other"), ErrInvalidState)
	assert.ErrorIs(t, s.Verify(state, "GITHUB", nonce), ErrInvalidState)
	assert.ErrorIs(t, s.Verify(state, "GOOGLE", ""), ErrInvalidState)
}

func TestStateExpiredOrForged(t *testing.T) {
	now := time.Now()
	s := &StateSigner{Secret: []byte("k"), TTL: time.Minute, Now: func() time.Time { return now }}
	state, nonce, err := s.Issue("GOOGLE")
	require.NoError(t, err)

	s.Now = func() time.Time { return now.Add(2 * time.Minute) }
	assert.ErrorIs(t, s.Verify(state, "GOOGLE", nonce), ErrInvalidState)

	other := &StateSigner{Secret: []byte("other")}
	assert.ErrorIs(t, other.Verify(state, "GOOGLE", nonce), ErrInvalidState)
}

func TestIssueRequiresSecret(t *testing.T) {
	_, _, err := (&StateSigner{}).Issue("GOOGLE")
	assert.Error(t, err)
}
