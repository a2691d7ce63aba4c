package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mailsift/phishscan/internal/core"
)

// Analyzer is the heuristic phishing analysis engine: a pure, synchronous
// function from RawMessage to AnalysisResult. It holds only the immutable
// tuning tables, so one Analyzer can serve concurrent analyses without
// coordination.
type Analyzer struct {
	tuning Tuning
}

// New creates an analyzer with the given tuning.
func New(tuning Tuning) *Analyzer {
	return &Analyzer{tuning: tuning}
}

// Tuning returns the tables the analyzer was built with.
func (a *Analyzer) Tuning() Tuning {
	return a.tuning
}

// Analyze scores a single message. It never fails: missing or unparsable
// inputs degrade to "signal not detected", and a message without any usable
// sender address short-circuits to a zero-score result.
func (a *Analyzer) Analyze(msg *core.RawMessage) *core.AnalysisResult {
	sender, ok := ExtractSender(msg.From)
	if !ok {
		return &core.AnalysisResult{
			Probability: 0,
			RiskClass:   core.RiskLow,
			Reasons:     []string{"Sender address is missing or unparsable; analysis skipped"},
			LinkDomains: []string{},
		}
	}

	headers := ParseHeaders(msg.RawHeaders)
	auth := ExtractAuthResult(headers)
	links, formCount := a.extractLinks(msg.BodyText, msg.BodyHTML)
	resolved := a.resolveLinks(links)
	forward := detectForward(headers, msg.Attachments, a.tuning.EmbeddedMessageTypes)
	keywordHits := matchKeywords(msg.Subject, msg.BodyText, a.tuning.SuspiciousKeywords)

	score, reasons := a.score(msg, sender, auth, resolved, forward, formCount, keywordHits)

	if len(reasons) == 0 {
		reasons = append(reasons, "No obvious phishing indicators detected")
	}

	probability := clampScore(score)
	return &core.AnalysisResult{
		Probability: probability,
		RiskClass:   a.classify(probability),
		Reasons:     reasons,
		LinkDomains: linkDomainSet(resolved),
		FromDomain:  sender.Domain,
	}
}

// score evaluates every signal in the fixed order and accumulates the
// weighted sum alongside its reason strings.
func (a *Analyzer) score(
	msg *core.RawMessage,
	sender Sender,
	auth core.AuthResult,
	resolved []resolvedLink,
	forward forwardState,
	formCount int,
	keywordHits []string,
) (float64, []string) {
	t := a.tuning
	score := 0.0
	var reasons []string

	// 1. Sender authentication.
	if auth.DMARC == core.AuthFail {
		score += t.DMARCFailWeight
		reasons = append(reasons, "DMARC authentication failed for the sending domain")
	}
	if auth.SPF == core.AuthFail {
		score += t.SPFFailWeight
		reasons = append(reasons, "SPF check failed for the sending server")
	}
	if auth.DKIM == core.AuthFail {
		score += t.DKIMFailWeight
		reasons = append(reasons, "DKIM signature verification failed")
	}

	// 2. Sender address anomalies.
	if sender.DisplayNameSpoof {
		score += t.DisplayNameSpoofWeight
		reasons = append(reasons, fmt.Sprintf(
			"Display name shows %q but the message was sent from %s",
			shownAddress(msg.From.DisplayName), sender.Email))
	}
	if sender.MalformedDomain {
		score += t.MalformedSenderWeight
		reasons = append(reasons, fmt.Sprintf("Sender domain %q looks malformed", sender.Domain))
	}

	// 3. Suspicious wording.
	if len(keywordHits) >= t.MinKeywordHits {
		score += t.KeywordWeight
		reasons = append(reasons, fmt.Sprintf(
			"Message contains %d suspicious keywords (%s)",
			len(keywordHits), strings.Join(keywordHits, ", ")))
	}

	// 4. Link presence is informational only.
	if len(resolved) > 0 {
		reasons = append(reasons, fmt.Sprintf("Message contains %d unique link(s)", len(resolved)))
	}

	// 5. Shortened links.
	if shorteners := a.shortenedDomains(resolved); len(shorteners) > 0 {
		score += t.ShortenedLinkWeight
		reasons = append(reasons, fmt.Sprintf(
			"Shortened link(s) detected: %s", strings.Join(shorteners, ", ")))
	}

	// 6. data: URIs never have a legitimate place in mail bodies.
	if hasDataURI(resolved) {
		score += t.DataURILinkWeight
		reasons = append(reasons, "Link using a data: URI detected")
	}

	// 7. Inline HTML forms.
	if formCount > 0 {
		score += t.HTMLFormWeight
		reasons = append(reasons, "Message body contains an inline HTML form")
	}

	// 8. Embedded message attachments.
	if forward.EmbeddedMessage {
		score += t.EmbeddedMessageWeight
		reasons = append(reasons, "Message carries an embedded message attachment (likely forwarded content)")
	}

	// 9. Anchor text showing a different domain than its href.
	if shown, actual, ok := a.anchorMismatch(resolved); ok {
		score += t.AnchorMismatchWeight
		reasons = append(reasons, fmt.Sprintf(
			"Link text displays %q but the link points to %q", shown, actual))
	}

	// 10. Links pointing outside the sender's organization.
	senderDomain := RegistrableDomain(sender.Domain)
	if mismatched := mismatchedDomains(resolved, senderDomain); len(mismatched) > 0 {
		weight := t.DomainMismatchWeight
		if forward.Forwarded {
			weight *= t.ForwardedMismatchScale
			reasons = append(reasons, fmt.Sprintf(
				"Link domain(s) differ from sender domain %s: %s (penalty reduced: message appears forwarded)",
				senderDomain, strings.Join(mismatched, ", ")))
		} else {
			reasons = append(reasons, fmt.Sprintf(
				"Link domain(s) differ from sender domain %s: %s",
				senderDomain, strings.Join(mismatched, ", ")))
		}
		score += weight
	}

	// 11. Redirector bonus, independent of decode success.
	if n := redirectorCount(resolved); n > 0 {
		score += t.RedirectorWeight * float64(n)
		reasons = append(reasons, fmt.Sprintf(
			"%d link(s) routed through known redirector services", n))
	}

	return score, reasons
}

// shortenedDomains returns the distinct registrable domains of links served
// by known URL shorteners, in link order.
func (a *Analyzer) shortenedDomains(resolved []resolvedLink) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, link := range resolved {
		for _, shortener := range a.tuning.ShortenerDomains {
			if link.Domain == shortener {
				if _, ok := seen[link.Domain]; !ok {
					seen[link.Domain] = struct{}{}
					out = append(out, link.Domain)
				}
				break
			}
		}
	}
	return out
}

// hasDataURI reports whether any link was written as a data: URI.
func hasDataURI(resolved []resolvedLink) bool {
	for _, link := range resolved {
		if strings.HasPrefix(strings.ToLower(link.Raw.Href), "data:") {
			return true
		}
	}
	return false
}

// anchorMismatch finds the first anchor whose visible text names a domain
// that is unrelated to the domain its raw href actually targets. Subdomain
// relationships in either direction are tolerated. The raw pre-decode href
// is compared, because that is what the anchor claimed to point at.
func (a *Analyzer) anchorMismatch(resolved []resolvedLink) (shown, actual string, ok bool) {
	for _, link := range resolved {
		if link.Raw.Origin != core.OriginAnchor {
			continue
		}
		shownDom := shownDomain(link.Raw.ShownText)
		if shownDom == "" {
			continue
		}
		hrefDom := registrableOfURL(link.Raw.Href)
		if hrefDom == "" {
			continue
		}
		shownReg := RegistrableDomain(shownDom)
		if shownReg == "" {
			continue
		}
		if !SameOrSubdomain(shownReg, hrefDom) && !SameOrSubdomain(hrefDom, shownReg) {
			return shownDom, hrefDom, true
		}
	}
	return "", "", false
}

// mismatchedDomains returns the distinct link domains that are neither the
// sender's registrable domain nor a subdomain of it, in link order.
func mismatchedDomains(resolved []resolvedLink, senderDomain string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, link := range resolved {
		if link.Domain == "" {
			continue
		}
		if senderDomain != "" && SameOrSubdomain(link.Domain, senderDomain) {
			continue
		}
		if _, ok := seen[link.Domain]; ok {
			continue
		}
		seen[link.Domain] = struct{}{}
		out = append(out, link.Domain)
	}
	return out
}

// redirectorCount counts the unique links recognized as redirector wrappers.
func redirectorCount(resolved []resolvedLink) int {
	n := 0
	for _, link := range resolved {
		if link.Raw.IsRedirector {
			n++
		}
	}
	return n
}

// linkDomainSet collects the registrable domains of all final link targets
// as a sorted set with no empty strings.
func linkDomainSet(resolved []resolvedLink) []string {
	seen := make(map[string]struct{})
	for _, link := range resolved {
		if link.Domain == "" {
			continue
		}
		seen[link.Domain] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for domain := range seen {
		out = append(out, domain)
	}
	sort.Strings(out)
	return out
}

// registrableOfURL parses a URL and returns the registrable domain of its
// host, or "" when the URL has no usable host.
func registrableOfURL(rawURL string) string {
	host := hostOfURL(rawURL)
	if host == "" {
		return ""
	}
	return RegistrableDomain(host)
}

// clampScore rounds the weighted sum to the nearest integer and clamps it
// into [0,100].
func clampScore(score float64) int {
	probability := int(math.Round(score))
	if probability < 0 {
		return 0
	}
	if probability > 100 {
		return 100
	}
	return probability
}

// classify buckets a clamped probability by the configured thresholds.
func (a *Analyzer) classify(probability int) core.RiskClass {
	switch {
	case probability >= a.tuning.HighThreshold:
		return core.RiskHigh
	case probability >= a.tuning.MediumThreshold:
		return core.RiskMedium
	default:
		return core.RiskLow
	}
}
