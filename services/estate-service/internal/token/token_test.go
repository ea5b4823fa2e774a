package token

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidyaa00/REMS/services/estate-service/internal/model"
	"github.com/vidyaa00/REMS/shared/auth"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newService(clock *fakeClock) *Service {
	a := auth.NewJWTAuthenticator("estate", "estate", []byte("test-secret"), auth.WithClock(clock.Now))
	return NewService(a, 24*time.Hour, time.Hour)
}

func TestIssueVerify_RoundTripAcrossValidityWindow(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	s := newService(clock)

	tok, err := s.Issue("64b7f0c2a1b2c3d4e5f60718", model.RoleAgent)
	require.NoError(t, err)

	for _, offset := range []time.Duration{0, time.Hour, 23*time.Hour + 59*time.Minute} {
		clock.t = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC).Add(offset)
		id, err := s.Verify(tok)
		require.NoError(t, err, "offset %s", offset)
		assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", id.UserID)
		assert.Equal(t, model.RoleAgent, id.Role)
	}

	clock.t = time.Date(2025, 3, 2, 9, 0, 1, 0, time.UTC)
	_, err = s.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResetToken_ExpiresAfterOneHour(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := &fakeClock{t: start}
	s := newService(clock)

	tok, err := s.IssuePasswordReset("u1")
	require.NoError(t, err)

	clock.t = start.Add(30 * time.Minute)
	userID, err := s.VerifyPasswordReset(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)

	clock.t = start.Add(61 * time.Minute)
	_, err = s.VerifyPasswordReset(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPurposesAreNotInterchangeable(t *testing.T) {
	s := newService(&fakeClock{t: time.Now()})

	session, err := s.Issue("u1", model.RoleUser)
	require.NoError(t, err)
	reset, err := s.IssuePasswordReset("u1")
	require.NoError(t, err)

	_, err = s.VerifyPasswordReset(session)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.Verify(reset)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Malformed(t *testing.T) {
	s := newService(&fakeClock{t: time.Now()})

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		_, err := s.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, tok)
	}
}

func TestVerify_TamperedSignature(t *testing.T) {
	s := newService(&fakeClock{t: time.Now()})

	tok, err := s.Issue("u1", model.RoleUser)
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	_, err = s.Verify(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenDoesNotCarrySecrets(t *testing.T) {
	s := newService(&fakeClock{t: time.Now()})

	tok, err := s.Issue("u1", model.RoleUser)
	require.NoError(t, err)

	assert.NotContains(t, tok, "test-secret")
}
