package engine

import (
	"net/url"
	"strings"

	"github.com/mailsift/phishscan/internal/core"
)

// resolvedLink pairs an extracted link with its post-decode form. Raw keeps
// the href as written in the message for anchor-text comparison; FinalHref
// is the redirector-decoded target used for deduplication and domain
// comparison.
type resolvedLink struct {
	Raw       core.ExtractedLink
	FinalHref string
	FinalHost string
	Domain    string
}

// DecodeRedirector unwraps one layer of a known link-wrapping service by
// trying the candidate query parameters in order and returning the first
// embedded value that parses as an absolute http(s) URL. Decoding is
// best-effort: when nothing usable is embedded the wrapped URL comes back
// unchanged. It is applied once, never recursively.
func DecodeRedirector(rawURL string, params []string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	query := parsed.Query()
	for _, param := range params {
		candidate := query.Get(param)
		if candidate == "" {
			continue
		}
		target, err := url.Parse(candidate)
		if err != nil {
			continue
		}
		if (target.Scheme == "http" || target.Scheme == "https") && target.Host != "" {
			return target.String()
		}
	}

	return rawURL
}

// resolveLinks runs redirector decoding over the merged link set and
// deduplicates by final href. Domain is the registrable domain of the final
// target, "" when the target has no usable host.
func (a *Analyzer) resolveLinks(links []core.ExtractedLink) []resolvedLink {
	var resolved []resolvedLink
	seen := make(map[string]struct{})

	for _, link := range links {
		final := link.Href
		if link.IsRedirector {
			final = DecodeRedirector(link.Href, a.tuning.RedirectorParams)
		}
		if _, ok := seen[final]; ok {
			continue
		}
		seen[final] = struct{}{}

		entry := resolvedLink{Raw: link, FinalHref: final}
		if parsed, err := url.Parse(final); err == nil {
			entry.FinalHost = strings.ToLower(parsed.Hostname())
			entry.Domain = RegistrableDomain(entry.FinalHost)
		}
		resolved = append(resolved, entry)
	}

	return resolved
}
