package engine

import (
	"regexp"
	"strings"

	"github.com/mailsift/phishscan/internal/core"
)

var (
	dmarcResultRe = regexp.MustCompile(`(?i)\bdmarc=([a-z]+)`)
	dkimResultRe  = regexp.MustCompile(`(?i)\bdkim=([a-z]+)`)
	spfResultRe   = regexp.MustCompile(`(?i)\bspf=([a-z]+)`)
	spfTokenRe    = regexp.MustCompile(`(?i)\b(softfail|pass|fail|neutral|none)\b`)
)

// ExtractAuthResult derives DMARC/SPF/DKIM outcomes from parsed headers.
// DMARC and DKIM come from Authentication-Results. For SPF, a bare result
// token in Received-SPF wins; spf=<token> in Authentication-Results is the
// fallback. Anything absent or unrecognized stays at AuthNone.
func ExtractAuthResult(headers map[string]string) core.AuthResult {
	result := core.AuthResult{
		DMARC: core.AuthNone,
		SPF:   core.AuthNone,
		DKIM:  core.AuthNone,
	}

	authResults := headers["authentication-results"]
	if m := dmarcResultRe.FindStringSubmatch(authResults); m != nil {
		result.DMARC = authState(m[1])
	}
	if m := dkimResultRe.FindStringSubmatch(authResults); m != nil {
		result.DKIM = authState(m[1])
	}

	if m := spfTokenRe.FindStringSubmatch(headers["received-spf"]); m != nil {
		result.SPF = authState(m[1])
	} else if m := spfResultRe.FindStringSubmatch(authResults); m != nil {
		result.SPF = authState(m[1])
	}

	return result
}

// authState maps a raw result token onto the known auth states.
func authState(token string) core.AuthState {
	switch strings.ToLower(token) {
	case "pass":
		return core.AuthPass
	case "fail":
		return core.AuthFail
	case "softfail":
		return core.AuthSoftFail
	case "neutral":
		return core.AuthNeutral
	default:
		return core.AuthNone
	}
}
