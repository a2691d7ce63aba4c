package engine

import (
	"strings"
)

// ParseHeaders turns a raw RFC822 header block into a mapping of lowercased
// header name to trimmed value. Lines beginning with whitespace continue the
// previous header and are appended with a single separating space. Malformed
// lines are skipped; missing input yields an empty map, never an error.
func ParseHeaders(raw string) map[string]string {
	headers := make(map[string]string)
	if strings.TrimSpace(raw) == "" {
		return headers
	}

	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	current := ""
	for _, line := range strings.Split(raw, "\n") {
		if line == "" {
			continue
		}
		if line[0] == ' ' || line[0] == '\t' {
			// Folded continuation of the previous header.
			if current != "" {
				headers[current] += " " + strings.TrimSpace(line)
			}
			continue
		}

		idx := strings.Index(line, ":")
		if idx <= 0 {
			current = ""
			continue
		}
		name := strings.ToLower(strings.TrimSpace(line[:idx]))
		if name == "" || strings.ContainsAny(name, " \t") {
			current = ""
			continue
		}
		headers[name] = strings.TrimSpace(line[idx+1:])
		current = name
	}

	return headers
}
