package engine

import (
	"reflect"
	"strings"
	"testing"

	"github.com/mailsift/phishscan/internal/core"
)

func plainMessage(from, subject, body string) *core.RawMessage {
	return &core.RawMessage{
		From:     core.Address{EmailAddress: from},
		Subject:  subject,
		BodyText: body,
	}
}

func hasReasonContaining(result *core.AnalysisResult, substr string) bool {
	for _, reason := range result.Reasons {
		if strings.Contains(reason, substr) {
			return true
		}
	}
	return false
}

func TestAnalyze_MissingSenderShortCircuits(t *testing.T) {
	a := New(DefaultTuning())

	result := a.Analyze(&core.RawMessage{
		Subject:  "Hello",
		BodyText: "http://evil.tld and urgent payment now",
	})

	if result.Probability != 0 {
		t.Errorf("Expected probability 0, got %d", result.Probability)
	}
	if result.RiskClass != core.RiskLow {
		t.Errorf("Expected low risk, got %s", result.RiskClass)
	}
	if len(result.Reasons) != 1 || !strings.Contains(result.Reasons[0], "missing or unparsable") {
		t.Errorf("Expected single missing-sender reason, got %v", result.Reasons)
	}
	if len(result.LinkDomains) != 0 {
		t.Errorf("Expected no link domains, got %v", result.LinkDomains)
	}
}

func TestAnalyze_CleanMessage(t *testing.T) {
	a := New(DefaultTuning())

	result := a.Analyze(plainMessage("alice@example.com", "Lunch", "See you at noon."))

	if result.Probability != 0 {
		t.Errorf("Expected probability 0, got %d", result.Probability)
	}
	if result.RiskClass != core.RiskLow {
		t.Errorf("Expected low risk, got %s", result.RiskClass)
	}
	if len(result.Reasons) != 1 || !strings.Contains(result.Reasons[0], "No obvious phishing indicators") {
		t.Errorf("Expected single no-red-flags reason, got %v", result.Reasons)
	}
	if result.FromDomain != "example.com" {
		t.Errorf("Expected from domain example.com, got %q", result.FromDomain)
	}
}

func TestAnalyze_DMARCFailure(t *testing.T) {
	tuning := DefaultTuning()
	a := New(tuning)

	msg := plainMessage("alerts@example.com", "Notice", "Nothing else here.")
	msg.RawHeaders = "Authentication-Results: mx.example.net;\r\n dmarc=fail (p=REJECT)\r\n"

	result := a.Analyze(msg)

	if !hasReasonContaining(result, "DMARC") {
		t.Fatalf("Expected DMARC reason, got %v", result.Reasons)
	}
	if result.Probability != int(tuning.DMARCFailWeight) {
		t.Errorf("Expected probability %d, got %d", int(tuning.DMARCFailWeight), result.Probability)
	}
	if result.RiskClass != core.RiskMedium {
		t.Errorf("Expected medium risk at %d, got %s", result.Probability, result.RiskClass)
	}
}

func TestAnalyze_SenderLinkDomainMismatch(t *testing.T) {
	a := New(DefaultTuning())

	result := a.Analyze(plainMessage("alerts@bank.com", "Security notice",
		"Please review http://bank-security.example/login"))

	found := false
	for _, domain := range result.LinkDomains {
		if domain == "bank-security.example" {
			found = true
		}
		if domain == "bank.com" {
			t.Errorf("Sender domain must not appear as link domain: %v", result.LinkDomains)
		}
	}
	if !found {
		t.Fatalf("Expected bank-security.example in link domains, got %v", result.LinkDomains)
	}
	if !hasReasonContaining(result, "differ from sender domain bank.com") {
		t.Errorf("Expected domain mismatch reason, got %v", result.Reasons)
	}
}

func TestAnalyze_SubdomainLinkIsNotMismatch(t *testing.T) {
	a := New(DefaultTuning())

	result := a.Analyze(plainMessage("alerts@bank.com", "Notice",
		"See https://secure.bank.com/account"))

	if hasReasonContaining(result, "differ from sender domain") {
		t.Errorf("Subdomain link must not trigger mismatch: %v", result.Reasons)
	}
}

func TestAnalyze_ForwardedMismatchPenaltyReduced(t *testing.T) {
	a := New(DefaultTuning())
	body := "Please review http://bank-security.example/login"

	direct := a.Analyze(plainMessage("alerts@bank.com", "Security notice", body))

	forwarded := plainMessage("alerts@bank.com", "Security notice", body)
	forwarded.RawHeaders = "Resent-From: someone@relay.example.com\r\n"
	reduced := a.Analyze(forwarded)

	if reduced.Probability >= direct.Probability {
		t.Errorf("Expected forwarded penalty %d to be strictly smaller than %d",
			reduced.Probability, direct.Probability)
	}
	if reduced.Probability == 0 {
		t.Error("Forwarded penalty must be reduced, not zeroed")
	}
	if !hasReasonContaining(reduced, "penalty reduced") {
		t.Errorf("Expected reduction noted in reason, got %v", reduced.Reasons)
	}
}

func TestAnalyze_EmbeddedMessageAttachment(t *testing.T) {
	a := New(DefaultTuning())

	msg := plainMessage("alerts@bank.com", "FW: notice", "Original below http://bank-security.example/x")
	msg.Attachments = []core.Attachment{{Type: "message/rfc822"}}

	result := a.Analyze(msg)

	if !hasReasonContaining(result, "embedded message attachment") {
		t.Errorf("Expected embedded-message reason, got %v", result.Reasons)
	}
	if !hasReasonContaining(result, "penalty reduced") {
		t.Errorf("Expected embedded attachment to dampen mismatch, got %v", result.Reasons)
	}
}

func TestAnalyze_DisplayNameSpoof(t *testing.T) {
	tuning := DefaultTuning()
	a := New(tuning)

	result := a.Analyze(&core.RawMessage{
		From: core.Address{
			DisplayName:  "Bank Support <security@bank.com>",
			EmailAddress: "phisher@evil.tld",
		},
		Subject:  "Account locked",
		BodyText: "Contact us.",
	})

	if !hasReasonContaining(result, "security@bank.com") {
		t.Fatalf("Expected display-name spoof reason, got %v", result.Reasons)
	}
	if result.Probability < int(tuning.DisplayNameSpoofWeight) {
		t.Errorf("Expected at least the spoof weight, got %d", result.Probability)
	}
}

func TestAnalyze_MultipleKeywords(t *testing.T) {
	a := New(DefaultTuning())

	result := a.Analyze(plainMessage("x@example.com", "Urgent", "Please send the wire transfer immediately."))

	if !hasReasonContaining(result, "suspicious keywords") {
		t.Errorf("Expected keyword reason, got %v", result.Reasons)
	}
}

func TestAnalyze_SingleKeywordNotPenalized(t *testing.T) {
	a := New(DefaultTuning())

	result := a.Analyze(plainMessage("x@example.com", "Note", "The invoice is attached as discussed."))

	if hasReasonContaining(result, "suspicious keywords") {
		t.Errorf("Single keyword must not fire, got %v", result.Reasons)
	}
}

func TestAnalyze_ShortenedLink(t *testing.T) {
	a := New(DefaultTuning())

	result := a.Analyze(plainMessage("x@example.com", "Look", "Check http://bit.ly/abc123"))

	if !hasReasonContaining(result, "Shortened link") {
		t.Errorf("Expected shortened-link reason, got %v", result.Reasons)
	}
	if !hasReasonContaining(result, "bit.ly") {
		t.Errorf("Expected bit.ly named in reasons, got %v", result.Reasons)
	}
}

func TestAnalyze_RedirectorDecodedTarget(t *testing.T) {
	a := New(DefaultTuning())

	result := a.Analyze(plainMessage("x@contoso.com", "Doc",
		"http://nam01.safelinks.protection.outlook.com/?url=http%3A%2F%2Fevil.tld"))

	found := false
	for _, domain := range result.LinkDomains {
		if domain == "evil.tld" {
			found = true
		}
	}
	if !found {
		t.Fatalf("Expected decoded target evil.tld in link domains, got %v", result.LinkDomains)
	}
	if !hasReasonContaining(result, "redirector") {
		t.Errorf("Expected redirector reason, got %v", result.Reasons)
	}
}

func TestAnalyze_AnchorTextMismatch(t *testing.T) {
	a := New(DefaultTuning())

	msg := plainMessage("alerts@bank.com", "Verify", "")
	msg.BodyHTML = `<a href="http://evil.tld/login">www.bank.com</a>`

	result := a.Analyze(msg)

	if !hasReasonContaining(result, "Link text displays") {
		t.Errorf("Expected anchor mismatch reason, got %v", result.Reasons)
	}
}

func TestAnalyze_AnchorSubdomainTextIsNotMismatch(t *testing.T) {
	a := New(DefaultTuning())

	msg := plainMessage("alerts@bank.com", "Verify", "")
	msg.BodyHTML = `<a href="http://bank.com/login">secure.bank.com</a>`

	result := a.Analyze(msg)

	if hasReasonContaining(result, "Link text displays") {
		t.Errorf("Subdomain relationship must not fire mismatch, got %v", result.Reasons)
	}
}

func TestAnalyze_DataURIAndForm(t *testing.T) {
	a := New(DefaultTuning())

	msg := plainMessage("x@example.com", "Login", "")
	msg.BodyHTML = `<form action="http://evil.tld/collect"><input name="pw"></form>` +
		`<a href="data:text/html;base64,PGh0bWw+">open</a>`

	result := a.Analyze(msg)

	if !hasReasonContaining(result, "data: URI") {
		t.Errorf("Expected data-URI reason, got %v", result.Reasons)
	}
	if !hasReasonContaining(result, "inline HTML form") {
		t.Errorf("Expected form reason, got %v", result.Reasons)
	}
}

func TestAnalyze_ProbabilityClampedAndHigh(t *testing.T) {
	a := New(DefaultTuning())

	msg := &core.RawMessage{
		From: core.Address{
			DisplayName:  "IT Desk <admin@example.com>",
			EmailAddress: "attacker@evil.tld",
		},
		Subject:  "Urgent: verify your account",
		BodyText: "Your password is suspended, act now: http://bit.ly/reset and http://evil2.tld/login urgent payment",
		BodyHTML: `<form action="http://evil.tld"><input></form><a href="http://evil.tld/x">www.example.com</a>`,
		RawHeaders: "Authentication-Results: mx; dmarc=fail; dkim=fail; spf=fail\r\n" +
			"Received-SPF: fail (sender not permitted)\r\n",
	}

	result := a.Analyze(msg)

	if result.Probability != 100 {
		t.Errorf("Expected probability clamped to 100, got %d", result.Probability)
	}
	if result.RiskClass != core.RiskHigh {
		t.Errorf("Expected high risk, got %s", result.RiskClass)
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	a := New(DefaultTuning())

	msg := &core.RawMessage{
		From:     core.Address{DisplayName: "Support <help@bank.com>", EmailAddress: "x@evil.tld"},
		Subject:  "Urgent payment",
		BodyText: "verify your account http://bit.ly/a http://evil2.tld/b",
		BodyHTML: `<a href="http://evil.tld/c">www.bank.com</a>`,
		RawHeaders: "Authentication-Results: mx; dmarc=fail\r\n",
		Attachments: []core.Attachment{{Type: "application/pdf"}, {Type: "message/rfc822"}},
	}

	first := a.Analyze(msg)
	second := a.Analyze(msg)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical results, got\n%+v\n%+v", first, second)
	}
}

func TestAnalyze_LinkDomainsSortedUniqueNonEmpty(t *testing.T) {
	a := New(DefaultTuning())

	result := a.Analyze(plainMessage("x@example.com", "Links",
		"http://b.tld/1 http://a.tld/2 http://b.tld/3"))

	if len(result.LinkDomains) != 2 {
		t.Fatalf("Expected 2 unique domains, got %v", result.LinkDomains)
	}
	if result.LinkDomains[0] != "a.tld" || result.LinkDomains[1] != "b.tld" {
		t.Errorf("Expected sorted domains, got %v", result.LinkDomains)
	}
	for _, domain := range result.LinkDomains {
		if domain == "" {
			t.Error("Link domains must not contain empty strings")
		}
	}
}
