package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueParseRoundtrip(t *testing.T) {
	m := NewManager("secret", time.Hour, "localhost", false)

	value, exp, err := m.Issue("a@x.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	email, err := m.Parse(value)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", email)
}

func TestParseRejectsGarbage(t *testing.T) {
	m := NewManager("secret", time.Hour, "localhost", false)
	_, err := m.Parse("not-a-session")
	assert.Error(t, err)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	issuer := NewManager("secret-a", time.Hour, "localhost", false)
	value, _, err := issuer.Issue("a@x.com")
	require.NoError(t, err)

	verifier := NewManager("secret-b", time.Hour, "localhost", false)
	_, err = verifier.Parse(value)
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	m := NewManager("secret", -time.Minute, "localhost", false)
	value, _, err := m.Issue("a@x.com")
	require.NoError(t, err)

	_, err = m.Parse(value)
	assert.Error(t, err)
}
