// Package rawmail normalizes RFC 2822 messages arriving outside the
// provider API, e.g. through the SMTP intake or the CLI.
package rawmail

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"

	"github.com/helpdeskhq/support-triage/internal/core"
)

const (
	defaultSubject = "No Subject"
	defaultSender  = "Unknown Sender"
	defaultBody    = "No content available"
)

// Normalize reads one RFC 2822 message and produces the canonical email
// record. Missing headers and bodies fall back to fixed defaults; only an
// unreadable stream fails.
func Normalize(r io.Reader) (*core.NormalizedEmail, error) {
	msg, err := mail.ReadMessage(r)
	if err != nil {
		return nil, err
	}

	email := &core.NormalizedEmail{
		Subject:         defaultSubject,
		Sender:          defaultSender,
		Body:            defaultBody,
		BodyContentType: core.ContentTypeText,
	}

	if subject := msg.Header.Get("Subject"); subject != "" {
		if decoded, err := new(mime.WordDecoder).DecodeHeader(subject); err == nil {
			email.Subject = decoded
		} else {
			email.Subject = subject
		}
	}
	if from := msg.Header.Get("From"); from != "" {
		email.Sender = from
	}
	if id := msg.Header.Get("Message-Id"); id != "" {
		email.ID = strings.Trim(id, "<>")
	}
	if date, err := msg.Header.Date(); err == nil {
		email.ReceivedAt = date.UnixMilli()
	}

	if body := extractText(msg); strings.TrimSpace(body) != "" {
		email.Body = body
	}

	return email, nil
}

// extractText extracts the text content from an email message. For multipart
// messages it concatenates the text/plain parts.
func extractText(msg *mail.Message) string {
	contentType := msg.Header.Get("Content-Type")

	if !strings.Contains(strings.ToLower(contentType), "multipart/") {
		return readAll(msg.Body)
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return readAll(msg.Body)
	}

	boundary, ok := params["boundary"]
	if !ok {
		return readAll(msg.Body)
	}

	mr := multipart.NewReader(msg.Body, boundary)

	var textContent bytes.Buffer
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		partContentType := strings.ToLower(part.Header.Get("Content-Type"))
		if strings.Contains(partContentType, "text/plain") {
			partBytes, err := io.ReadAll(part)
			if err != nil {
				continue
			}
			textContent.Write(partBytes)
			textContent.WriteString("\n")
		}
	}

	return textContent.String()
}

func readAll(r io.Reader) string {
	b, err := io.ReadAll(r)
	if err != nil {
		return ""
	}
	return string(b)
}
