package engine

import (
	"testing"

	"github.com/mailsift/phishscan/internal/core"
)

func TestExtractAuthResult_FromAuthenticationResults(t *testing.T) {
	headers := map[string]string{
		"authentication-results": "mx.example.com; dmarc=fail (p=REJECT); dkim=pass header.d=example.com; spf=softfail",
	}

	result := ExtractAuthResult(headers)

	if result.DMARC != core.AuthFail {
		t.Errorf("Expected DMARC fail, got %s", result.DMARC)
	}
	if result.DKIM != core.AuthPass {
		t.Errorf("Expected DKIM pass, got %s", result.DKIM)
	}
	if result.SPF != core.AuthSoftFail {
		t.Errorf("Expected SPF softfail, got %s", result.SPF)
	}
}

func TestExtractAuthResult_ReceivedSPFPreferred(t *testing.T) {
	headers := map[string]string{
		"received-spf":           "Fail (protection.outlook.com: domain of example.com does not designate 1.2.3.4 as permitted sender)",
		"authentication-results": "mx.example.com; spf=pass",
	}

	result := ExtractAuthResult(headers)

	if result.SPF != core.AuthFail {
		t.Errorf("Expected Received-SPF to win with fail, got %s", result.SPF)
	}
}

func TestExtractAuthResult_SoftfailNotMistakenForFail(t *testing.T) {
	headers := map[string]string{
		"received-spf": "softfail (transitioning domain)",
	}

	result := ExtractAuthResult(headers)

	if result.SPF != core.AuthSoftFail {
		t.Errorf("Expected softfail, got %s", result.SPF)
	}
}

func TestExtractAuthResult_AbsentDefaultsToNone(t *testing.T) {
	result := ExtractAuthResult(map[string]string{})

	if result.DMARC != core.AuthNone || result.SPF != core.AuthNone || result.DKIM != core.AuthNone {
		t.Errorf("Expected all none, got %+v", result)
	}
}

func TestExtractAuthResult_UnknownTokenIsNone(t *testing.T) {
	headers := map[string]string{
		"authentication-results": "mx.example.com; dmarc=bestguess",
	}

	result := ExtractAuthResult(headers)

	if result.DMARC != core.AuthNone {
		t.Errorf("Expected unknown token mapped to none, got %s", result.DMARC)
	}
}
