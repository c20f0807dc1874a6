package rawmail

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSimpleMessage(t *testing.T) {
	raw := "From: customer@example.com\r\n" +
		"Subject: Password help\r\n" +
		"Message-Id: <abc123@mail.example.com>\r\n" +
		"Date: Mon, 02 Jan 2006 15:04:05 -0700\r\n" +
		"\r\n" +
		"I cannot log in to my account.\r\n"

	email, err := Normalize(strings.NewReader(raw))

	require.NoError(t, err)
	assert.Equal(t, "customer@example.com", email.Sender)
	assert.Equal(t, "Password help", email.Subject)
	assert.Equal(t, "abc123@mail.example.com", email.ID)
	assert.NotZero(t, email.ReceivedAt)
	assert.Contains(t, email.Body, "I cannot log in")
}

func TestNormalizeAppliesDefaults(t *testing.T) {
	raw := "X-Header: nothing useful\r\n" +
		"\r\n" +
		"\r\n"

	email, err := Normalize(strings.NewReader(raw))

	require.NoError(t, err)
	assert.Equal(t, "No Subject", email.Subject)
	assert.Equal(t, "Unknown Sender", email.Sender)
	assert.Equal(t, "No content available", email.Body)
}

func TestNormalizeDecodesEncodedSubject(t *testing.T) {
	raw := "From: customer@example.com\r\n" +
		"Subject: =?UTF-8?Q?Probl=C3=A8me_de_facturation?=\r\n" +
		"\r\n" +
		"Bonjour\r\n"

	email, err := Normalize(strings.NewReader(raw))

	require.NoError(t, err)
	assert.Equal(t, "Problème de facturation", email.Subject)
}

func TestNormalizeExtractsMultipartTextPlain(t *testing.T) {
	raw := "From: customer@example.com\r\n" +
		"Subject: Multipart\r\n" +
		"Content-Type: multipart/alternative; boundary=SEP\r\n" +
		"\r\n" +
		"--SEP\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"plain text body\r\n" +
		"--SEP\r\n" +
		"Content-Type: text/html\r\n" +
		"\r\n" +
		"<p>html body</p>\r\n" +
		"--SEP--\r\n"

	email, err := Normalize(strings.NewReader(raw))

	require.NoError(t, err)
	assert.Contains(t, email.Body, "plain text body")
	assert.NotContains(t, email.Body, "html body")
}

func TestNormalizeRejectsUnparseableStream(t *testing.T) {
	_, err := Normalize(strings.NewReader("not an email at all"))

	assert.Error(t, err)
}
