package engine

import (
	"testing"
)

func TestParseHeaders_Simple(t *testing.T) {
	headers := ParseHeaders("Subject: Hello\r\nFrom: alice@example.com\r\n")

	if got := headers["subject"]; got != "Hello" {
		t.Errorf("Expected subject 'Hello', got %q", got)
	}
	if got := headers["from"]; got != "alice@example.com" {
		t.Errorf("Expected from 'alice@example.com', got %q", got)
	}
}

func TestParseHeaders_FoldedContinuation(t *testing.T) {
	raw := "Authentication-Results: mx.example.com;\r\n" +
		"\tdmarc=fail (p=REJECT);\r\n" +
		" dkim=pass header.d=example.com\r\n"

	headers := ParseHeaders(raw)

	want := "mx.example.com; dmarc=fail (p=REJECT); dkim=pass header.d=example.com"
	if got := headers["authentication-results"]; got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestParseHeaders_LFOnly(t *testing.T) {
	headers := ParseHeaders("X-One: a\nX-Two: b\n")

	if headers["x-one"] != "a" || headers["x-two"] != "b" {
		t.Errorf("Expected both headers parsed, got %v", headers)
	}
}

func TestParseHeaders_MalformedLinesSkipped(t *testing.T) {
	raw := "no colon here\nValid: yes\n: empty name\n"

	headers := ParseHeaders(raw)

	if len(headers) != 1 {
		t.Fatalf("Expected 1 header, got %d: %v", len(headers), headers)
	}
	if headers["valid"] != "yes" {
		t.Errorf("Expected valid header kept, got %v", headers)
	}
}

func TestParseHeaders_EmptyInput(t *testing.T) {
	for _, raw := range []string{"", "   ", "\r\n\r\n"} {
		headers := ParseHeaders(raw)
		if headers == nil {
			t.Fatal("Expected empty map, got nil")
		}
		if len(headers) != 0 {
			t.Errorf("Expected no headers for %q, got %v", raw, headers)
		}
	}
}

func TestParseHeaders_ContinuationWithoutHeader(t *testing.T) {
	headers := ParseHeaders(" leading continuation\nReal: value\n")

	if len(headers) != 1 || headers["real"] != "value" {
		t.Errorf("Expected only the real header, got %v", headers)
	}
}
