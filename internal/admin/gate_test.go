package admin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginWrongPassword(t *testing.T) {
	g := NewGate("1234")

	token, err := g.Login("0000")
	assert.ErrorIs(t, err, ErrWrongPassword)
	assert.Equal(t, "비밀번호가 틀렸습니다!", err.Error())
	assert.Empty(t, token)
}

func TestLoginRightPasswordIssuesVerifiableToken(t *testing.T) {
	g := NewGate("1234")

	token, err := g.Login("1234")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.NoError(t, g.Verify(token))
}

func TestVerifyRejectsGarbage(t *testing.T) {
	g := NewGate("1234")
	assert.ErrorIs(t, g.Verify(""), ErrInvalidToken)
	assert.ErrorIs(t, g.Verify("not.a.token"), ErrInvalidToken)
}

func TestSessionsDoNotSurviveRestart(t *testing.T) {
	// Each gate seeds its own signing secret, so a token from a previous
	// process is worthless after a restart.
	g1 := NewGate("1234")
	g2 := NewGate("1234")

	token, err := g1.Login("1234")
	require.NoError(t, err)
	assert.ErrorIs(t, g2.Verify(token), ErrInvalidToken)
}
