package mailer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledMailer(t *testing.T) {
	m := NewMailer(Config{})

	assert.False(t, m.Enabled())
	assert.ErrorIs(t, m.SendHTML([]string{"a@example.com"}, "hi", "<p>hi</p>"), ErrDisabled)
}

func TestSendRequiresRecipients(t *testing.T) {
	m := NewMailer(Config{Host: "localhost", Port: 2525, From: "noreply@example.com"})

	require.True(t, m.Enabled())
	assert.Error(t, m.Send(Email{Subject: "x"}))
}

func TestMessageHeaders(t *testing.T) {
	m := NewMailer(Config{Host: "localhost", Port: 2525, From: "noreply@example.com"})

	msg := m.message(Email{
		To:       []string{"user@example.com"},
		Cc:       []string{"copy@example.com"},
		Subject:  "Password Reset Request",
		Body:     "plain",
		HTMLBody: "<p>html</p>",
	})

	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "From: noreply@example.com")
	assert.Contains(t, out, "To: user@example.com")
	assert.Contains(t, out, "Cc: copy@example.com")
	assert.Contains(t, out, "Subject: Password Reset Request")
	assert.Contains(t, out, "text/html")
	assert.Contains(t, out, "text/plain")
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{}.Validate())
	assert.Error(t, Config{Host: "smtp.example.com", Port: 587}.Validate())
	assert.NoError(t, Config{Host: "smtp.example.com", Port: 587, From: "a@example.com"}.Validate())
}
