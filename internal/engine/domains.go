package engine

import (
	"net"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// RegistrableDomain reduces a hostname to its registrable domain (eTLD+1)
// using the public suffix list. Hostnames the list cannot place fall back
// to the last two dot-separated labels; IP literals are returned as-is.
// The result is always lowercase and never an error.
func RegistrableDomain(host string) string {
	host = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(host), "."))
	if host == "" {
		return ""
	}
	if net.ParseIP(host) != nil {
		return host
	}

	if domain, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return domain
	}

	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return host
	}
	return strings.Join(labels[len(labels)-2:], ".")
}

// SameOrSubdomain reports whether domain a equals b or is a subdomain of b.
// Comparison is case-insensitive.
func SameOrSubdomain(a, b string) bool {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == "" || b == "" {
		return false
	}
	return a == b || strings.HasSuffix(a, "."+b)
}
