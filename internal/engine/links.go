package engine

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mailsift/phishscan/internal/core"
)

// syntheticBase anchors relative hrefs found in HTML bodies. The host is
// deliberately unresolvable so resolved-relative links never collide with
// a real domain.
const syntheticBase = "http://message.invalid/"

var (
	textURLRe      = regexp.MustCompile(`https?://[^\s"'<>\[\]{}]+`)
	trailingPunct  = `.,;:!?)"'>]`
	domainInTextRe = regexp.MustCompile(`(?i)(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\.)+[a-z]{2,}`)
)

// extractLinks finds candidate links from the plain-text body and, when an
// HTML body is available, from its anchors. Anchors are collected first
// because their href is authoritative over displayed text; duplicates by
// href keep the anchor entry. The second return is the number of inline
// HTML forms seen while scanning.
func (a *Analyzer) extractLinks(bodyText, bodyHTML string) ([]core.ExtractedLink, int) {
	var links []core.ExtractedLink
	seen := make(map[string]struct{})
	formCount := 0

	add := func(link core.ExtractedLink) {
		if _, ok := seen[link.Href]; ok {
			return
		}
		seen[link.Href] = struct{}{}
		link.IsRedirector = a.isRedirectorURL(link.Href)
		links = append(links, link)
	}

	if bodyHTML != "" {
		// An unparsable HTML fragment degrades to the text scan only.
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(bodyHTML)); err == nil {
			formCount = doc.Find("form").Length()
			base, _ := url.Parse(syntheticBase)
			doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
				href, _ := sel.Attr("href")
				href = strings.TrimSpace(href)
				if href == "" {
					return
				}
				parsed, err := url.Parse(href)
				if err != nil {
					return
				}
				if !parsed.IsAbs() {
					parsed = base.ResolveReference(parsed)
				}
				add(core.ExtractedLink{
					Href:      parsed.String(),
					ShownText: strings.TrimSpace(sel.Text()),
					Origin:    core.OriginAnchor,
				})
			})
		}
	}

	for _, match := range textURLRe.FindAllString(bodyText, -1) {
		match = strings.TrimRight(match, trailingPunct)
		href := match
		if parsed, err := url.Parse(match); err == nil {
			href = parsed.String()
		}
		add(core.ExtractedLink{
			Href:   href,
			Origin: core.OriginText,
		})
	}

	return links, formCount
}

// isRedirectorURL reports whether the URL's host is, or sits under, one of
// the known link-wrapping services.
func (a *Analyzer) isRedirectorURL(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	for _, wrapper := range a.tuning.RedirectorHosts {
		if SameOrSubdomain(host, wrapper) {
			return true
		}
	}
	return false
}

// shownDomain extracts the first domain-like token from an anchor's visible
// text, or "" when the text shows no domain at all.
func shownDomain(text string) string {
	return strings.ToLower(domainInTextRe.FindString(text))
}

// hostOfURL returns the lowercased hostname of a URL, or "" when the URL
// does not parse or has no host.
func hostOfURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}
