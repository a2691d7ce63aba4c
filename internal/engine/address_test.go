package engine

import (
	"testing"

	"github.com/mailsift/phishscan/internal/core"
)

func TestExtractSender_Bare(t *testing.T) {
	sender, ok := ExtractSender(core.Address{EmailAddress: "User@Example.COM"})

	if !ok {
		t.Fatal("Expected sender to be extracted")
	}
	if sender.Email != "user@example.com" {
		t.Errorf("Expected lowercased address, got %q", sender.Email)
	}
	if sender.Domain != "example.com" {
		t.Errorf("Expected domain example.com, got %q", sender.Domain)
	}
	if sender.MalformedDomain {
		t.Error("Did not expect malformed domain")
	}
}

func TestExtractSender_DisplayNameWrapped(t *testing.T) {
	sender, ok := ExtractSender(core.Address{EmailAddress: `"Alice" <alice@example.com>`})

	if !ok {
		t.Fatal("Expected sender to be extracted")
	}
	if sender.Email != "alice@example.com" {
		t.Errorf("Expected unwrapped address, got %q", sender.Email)
	}
}

func TestExtractSender_Missing(t *testing.T) {
	if _, ok := ExtractSender(core.Address{DisplayName: "Ghost"}); ok {
		t.Error("Expected extraction to fail for empty address")
	}
}

func TestExtractSender_MalformedDomain(t *testing.T) {
	tests := []struct {
		name    string
		address string
	}{
		{"no at sign", "not-an-address"},
		{"dotless domain", "user@localhost"},
		{"empty domain", "user@"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender, ok := ExtractSender(core.Address{EmailAddress: tt.address})
			if !ok {
				t.Fatal("Expected extraction to succeed")
			}
			if !sender.MalformedDomain {
				t.Errorf("Expected malformed domain flag for %q", tt.address)
			}
		})
	}
}

func TestExtractSender_DisplayNameSpoof(t *testing.T) {
	sender, ok := ExtractSender(core.Address{
		DisplayName:  "Bank Support <security@bank.com>",
		EmailAddress: "phisher@evil.tld",
	})

	if !ok {
		t.Fatal("Expected sender to be extracted")
	}
	if !sender.DisplayNameSpoof {
		t.Error("Expected display-name spoof flag")
	}
}

func TestExtractSender_DisplayNameMatchingAddressIsNotSpoof(t *testing.T) {
	sender, _ := ExtractSender(core.Address{
		DisplayName:  "Alice <alice@example.com>",
		EmailAddress: "alice@example.com",
	})

	if sender.DisplayNameSpoof {
		t.Error("Matching displayed address must not be flagged as spoof")
	}
}
