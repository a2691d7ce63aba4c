package engine

import (
	"strings"

	"github.com/mailsift/phishscan/internal/core"
)

// forwardState captures how likely the message is to be forwarded content.
// Forwarded mail legitimately carries third-party links, so this dampens
// (not zeroes) the sender-vs-link domain mismatch penalty.
type forwardState struct {
	// Forwarded is set by Resent-* headers or an embedded message item.
	Forwarded bool

	// EmbeddedMessage is set when an attachment's type indicates an
	// embedded message item and draws its own penalty.
	EmbeddedMessage bool
}

// detectForward flags resent/forwarded messages and embedded-message
// attachments.
func detectForward(headers map[string]string, attachments []core.Attachment, embeddedTypes []string) forwardState {
	var state forwardState

	if _, ok := headers["resent-from"]; ok {
		state.Forwarded = true
	}
	if _, ok := headers["resent-sender"]; ok {
		state.Forwarded = true
	}

	for _, att := range attachments {
		attType := strings.ToLower(att.Type)
		for _, marker := range embeddedTypes {
			if strings.Contains(attType, marker) {
				state.EmbeddedMessage = true
				state.Forwarded = true
				break
			}
		}
		if state.EmbeddedMessage {
			break
		}
	}

	return state
}
