package engine

import (
	"strings"
)

// matchKeywords returns the distinct suspicious keywords present in the
// subject and body, in table order. A single incidental hit is not worth
// penalizing; the scorer only fires when MinKeywordHits are found.
func matchKeywords(subject, body string, keywords []string) []string {
	text := strings.ToLower(subject + " " + body)

	var hits []string
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			hits = append(hits, keyword)
		}
	}
	return hits
}
