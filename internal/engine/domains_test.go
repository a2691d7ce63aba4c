package engine

import (
	"testing"
)

func TestRegistrableDomain(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"www.example.com", "example.com"},
		{"example.com", "example.com"},
		{"deep.sub.example.co.uk", "example.co.uk"},
		{"Example.COM.", "example.com"},
		{"bit.ly", "bit.ly"},
		{"192.168.0.1", "192.168.0.1"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := RegistrableDomain(tt.host); got != tt.want {
			t.Errorf("RegistrableDomain(%q) = %q, want %q", tt.host, got, tt.want)
		}
	}
}

func TestSameOrSubdomain(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"example.com", "example.com", true},
		{"mail.example.com", "example.com", true},
		{"EXAMPLE.com", "example.COM", true},
		{"example.com", "mail.example.com", false},
		{"notexample.com", "example.com", false},
		{"evilexample.com", "example.com", false},
		{"", "example.com", false},
		{"example.com", "", false},
	}

	for _, tt := range tests {
		if got := SameOrSubdomain(tt.a, tt.b); got != tt.want {
			t.Errorf("SameOrSubdomain(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
