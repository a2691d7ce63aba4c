package filter

import (
	"bytes"
	"fmt"
	"mime"
	"net/mail"
	"path/filepath"
	"strings"

	"github.com/jaytaylor/html2text"
	"github.com/jhillyerd/enmime"

	"github.com/mailsift/phishscan/internal/core"
)

// BuildRawMessage parses an RFC822 message and materializes every field the
// analysis engine looks at: sender split into display name and address,
// decoded subject, plain and HTML bodies, the raw header block, and the
// content types of all attachments. HTML-only messages get a plain-text
// rendering so the keyword scan still has something to work with.
func BuildRawMessage(raw []byte) (*core.RawMessage, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse MIME message: %w", err)
	}

	msg := &core.RawMessage{
		From:       parseFromHeader(env.GetHeader("From")),
		Subject:    env.GetHeader("Subject"),
		BodyText:   env.Text,
		BodyHTML:   env.HTML,
		RawHeaders: headerBlock(raw),
	}

	if msg.BodyText == "" && msg.BodyHTML != "" {
		if text, err := html2text.FromString(msg.BodyHTML, html2text.Options{TextOnly: true}); err == nil {
			msg.BodyText = text
		}
	}

	for _, part := range append(env.Attachments, env.OtherParts...) {
		msg.Attachments = append(msg.Attachments, core.Attachment{Type: attachmentType(part)})
	}

	return msg, nil
}

// parseFromHeader splits a From header into display name and address.
// Unparsable values are passed through whole so the engine's own address
// extraction gets a chance at them.
func parseFromHeader(from string) core.Address {
	if addr, err := mail.ParseAddress(from); err == nil {
		return core.Address{
			DisplayName:  addr.Name,
			EmailAddress: addr.Address,
		}
	}
	return core.Address{EmailAddress: from}
}

// attachmentType picks the most informative type for an attachment: the
// declared content type, or the file extension when the type is missing or
// generic.
func attachmentType(part *enmime.Part) string {
	contentType := strings.ToLower(strings.TrimSpace(part.ContentType))
	if contentType == "" || contentType == "application/octet-stream" {
		if ext := strings.ToLower(filepath.Ext(part.FileName)); ext != "" {
			return ext
		}
	}
	return contentType
}

// headerBlock returns the raw header section of a message, up to the first
// blank line.
func headerBlock(raw []byte) string {
	if idx := bytes.Index(raw, []byte("\r\n\r\n")); idx != -1 {
		return string(raw[:idx])
	}
	if idx := bytes.Index(raw, []byte("\n\n")); idx != -1 {
		return string(raw[:idx])
	}
	return string(raw)
}

// decodeEncodedHeader decodes RFC2047 encoded-words in a header value.
func decodeEncodedHeader(value string) (string, error) {
	decoder := mime.WordDecoder{}
	return decoder.DecodeHeader(value)
}
