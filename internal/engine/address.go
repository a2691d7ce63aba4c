package engine

import (
	"regexp"
	"strings"

	"github.com/mailsift/phishscan/internal/core"
)

var (
	angleAddrRe = regexp.MustCompile(`<([^<>]+)>`)
	emailLikeRe = regexp.MustCompile(`[\w.+-]+@[\w.-]+`)
)

// Sender is the analyzed view of a message's From value.
type Sender struct {
	Email  string
	Domain string

	// DisplayNameSpoof is set when the display name shows an email address
	// that does not belong to the real sender.
	DisplayNameSpoof bool

	// MalformedDomain is set when the domain part is empty or has no dot.
	MalformedDomain bool
}

// ExtractSender pulls the real email address and its domain out of a
// possibly display-name-wrapped From value. The second return is false
// when no address could be extracted at all, which short-circuits the
// whole analysis.
func ExtractSender(from core.Address) (Sender, bool) {
	email := strings.TrimSpace(from.EmailAddress)
	if m := angleAddrRe.FindStringSubmatch(email); m != nil {
		email = strings.TrimSpace(m[1])
	}
	email = strings.ToLower(email)
	if email == "" {
		return Sender{}, false
	}

	sender := Sender{Email: email}

	if at := strings.LastIndex(email, "@"); at >= 0 {
		sender.Domain = email[at+1:]
	}
	if sender.Domain == "" || !strings.Contains(sender.Domain, ".") {
		sender.MalformedDomain = true
	}

	// Display names that show an address different from the real one are a
	// classic spoof: the client renders "security@bank.com" while the mail
	// actually comes from somewhere else.
	if strings.Contains(from.DisplayName, "@") {
		shown := strings.ToLower(emailLikeRe.FindString(from.DisplayName))
		if shown != "" && !strings.Contains(email, shown) {
			sender.DisplayNameSpoof = true
		}
	}

	return sender, true
}

// shownAddress returns the address-like string rendered in a display name,
// if any. Used for reason text.
func shownAddress(displayName string) string {
	return strings.ToLower(emailLikeRe.FindString(displayName))
}
