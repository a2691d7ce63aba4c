package filter

import (
	"strings"
	"testing"
)

const plainMessage = "From: Alice Example <alice@example.com>\r\n" +
	"To: bob@example.org\r\n" +
	"Subject: Quarterly report\r\n" +
	"Authentication-Results: mx.example.org; spf=pass; dkim=pass; dmarc=pass\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"The report is attached.\r\n"

func TestBuildRawMessagePlainText(t *testing.T) {
	msg, err := BuildRawMessage([]byte(plainMessage))
	if err != nil {
		t.Fatalf("BuildRawMessage: %v", err)
	}

	if msg.From.DisplayName != "Alice Example" {
		t.Errorf("display name = %q", msg.From.DisplayName)
	}
	if msg.From.EmailAddress != "alice@example.com" {
		t.Errorf("email = %q", msg.From.EmailAddress)
	}
	if msg.Subject != "Quarterly report" {
		t.Errorf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.BodyText, "The report is attached.") {
		t.Errorf("body = %q", msg.BodyText)
	}
	if !strings.Contains(msg.RawHeaders, "Authentication-Results:") {
		t.Errorf("raw headers missing auth results: %q", msg.RawHeaders)
	}
	if strings.Contains(msg.RawHeaders, "The report is attached.") {
		t.Errorf("raw headers include body: %q", msg.RawHeaders)
	}
}

func TestBuildRawMessageHTMLOnly(t *testing.T) {
	raw := "From: alice@example.com\r\n" +
		"Subject: Hello\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<html><body><p>Please verify your account today.</p></body></html>\r\n"

	msg, err := BuildRawMessage([]byte(raw))
	if err != nil {
		t.Fatalf("BuildRawMessage: %v", err)
	}

	if msg.BodyHTML == "" {
		t.Fatal("expected HTML body")
	}
	if !strings.Contains(strings.ToLower(msg.BodyText), "verify your account") {
		t.Errorf("expected text rendering of HTML body, got %q", msg.BodyText)
	}
}

func TestBuildRawMessageAttachment(t *testing.T) {
	raw := "From: alice@example.com\r\n" +
		"Subject: Forwarded\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: multipart/mixed; boundary=\"XYZ\"\r\n" +
		"\r\n" +
		"--XYZ\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"See attached.\r\n" +
		"--XYZ\r\n" +
		"Content-Type: message/rfc822\r\n" +
		"Content-Disposition: attachment; filename=\"original.eml\"\r\n" +
		"\r\n" +
		"From: mallory@evil.tld\r\n" +
		"Subject: inner\r\n" +
		"\r\n" +
		"inner body\r\n" +
		"--XYZ--\r\n"

	msg, err := BuildRawMessage([]byte(raw))
	if err != nil {
		t.Fatalf("BuildRawMessage: %v", err)
	}

	if len(msg.Attachments) != 1 {
		t.Fatalf("attachments = %d, want 1", len(msg.Attachments))
	}
	if msg.Attachments[0].Type != "message/rfc822" {
		t.Errorf("attachment type = %q", msg.Attachments[0].Type)
	}
}

func TestParseFromHeaderFallback(t *testing.T) {
	addr := parseFromHeader("not an address at all")
	if addr.EmailAddress != "not an address at all" {
		t.Errorf("fallback email = %q", addr.EmailAddress)
	}
	if addr.DisplayName != "" {
		t.Errorf("fallback display name = %q", addr.DisplayName)
	}
}

func TestDecodeEncodedHeader(t *testing.T) {
	decoded, err := decodeEncodedHeader("=?UTF-8?Q?Rechnung_f=C3=BCr_M=C3=A4rz?=")
	if err != nil {
		t.Fatalf("decodeEncodedHeader: %v", err)
	}
	if decoded != "Rechnung für März" {
		t.Errorf("decoded = %q", decoded)
	}
}
