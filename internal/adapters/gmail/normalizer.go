package gmail

import (
	"encoding/base64"
	"strings"

	"google.golang.org/api/gmail/v1"

	"github.com/helpdeskhq/support-triage/internal/core"
)

const (
	defaultSubject = "No Subject"
	defaultSender  = "Unknown Sender"
	defaultBody    = "No content available"
)

// Normalize converts a raw Gmail message into the canonical email record.
// It never fails: missing headers and bodies fall back to fixed defaults.
func Normalize(msg *gmail.Message) *core.NormalizedEmail {
	email := &core.NormalizedEmail{
		ID:              msg.Id,
		ThreadID:        msg.ThreadId,
		Subject:         defaultSubject,
		Sender:          defaultSender,
		ReceivedAt:      msg.InternalDate,
		Body:            defaultBody,
		BodyContentType: core.ContentTypeText,
	}

	if msg.Payload != nil {
		if subject := headerValue(msg.Payload.Headers, "Subject"); subject != "" {
			email.Subject = subject
		}
		if sender := headerValue(msg.Payload.Headers, "From"); sender != "" {
			email.Sender = sender
		}
	}

	body, contentType := extractBody(msg)
	if body != "" {
		email.Body = body
		email.BodyContentType = contentType
	}

	return email
}

// NormalizeThread converts a raw Gmail thread into normalized messages
// ordered oldest-first. The provider order is reversed once when it arrives
// newest-first.
func NormalizeThread(thread *gmail.Thread) []*core.NormalizedEmail {
	emails := make([]*core.NormalizedEmail, 0, len(thread.Messages))
	for _, msg := range thread.Messages {
		emails = append(emails, Normalize(msg))
	}

	if len(emails) > 1 && emails[0].ReceivedAt > emails[len(emails)-1].ReceivedAt {
		for i, j := 0, len(emails)-1; i < j; i, j = i+1, j-1 {
			emails[i], emails[j] = emails[j], emails[i]
		}
	}

	return emails
}

// headerValue finds a header by case-insensitive name match.
func headerValue(headers []*gmail.MessagePartHeader, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// extractBody applies the body-extraction policy: concatenated text/plain
// parts first, then an HTML part, then the single body, then the snippet.
func extractBody(msg *gmail.Message) (string, core.ContentType) {
	if msg.Payload != nil {
		if text := collectParts(msg.Payload, "text/plain"); text != "" {
			return text, core.ContentTypeText
		}
		if html := collectParts(msg.Payload, "text/html"); html != "" {
			return html, core.ContentTypeHTML
		}
		if msg.Payload.Body != nil && msg.Payload.Body.Data != "" {
			if decoded := decodeBase64URL(msg.Payload.Body.Data); decoded != "" {
				if strings.HasPrefix(msg.Payload.MimeType, "text/html") {
					return decoded, core.ContentTypeHTML
				}
				return decoded, core.ContentTypeText
			}
		}
	}

	if msg.Snippet != "" {
		return msg.Snippet, core.ContentTypeText
	}

	return "", core.ContentTypeText
}

// collectParts concatenates the decoded bodies of all parts with the given
// MIME type, recursing into nested multipart containers.
func collectParts(part *gmail.MessagePart, mimeType string) string {
	if part == nil {
		return ""
	}

	var b strings.Builder

	if part.MimeType == mimeType && part.Body != nil && part.Body.Data != "" {
		b.WriteString(decodeBase64URL(part.Body.Data))
	}

	for _, child := range part.Parts {
		if text := collectParts(child, mimeType); text != "" {
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(text)
		}
	}

	return b.String()
}

// decodeBase64URL decodes Gmail body data, which arrives base64url encoded
// with or without padding.
func decodeBase64URL(data string) string {
	if decoded, err := base64.URLEncoding.DecodeString(data); err == nil {
		return string(decoded)
	}
	if decoded, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return string(decoded)
	}
	return ""
}
