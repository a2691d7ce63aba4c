package engine

// Tuning holds every weight, threshold and static table the scorer uses.
// A Tuning value is built once (from configuration or DefaultTuning) and
// treated as immutable afterwards; the engine never writes to it, so a
// single value can be shared across concurrent analyses.
type Tuning struct {
	// Signal weights, in score points out of 100.
	DMARCFailWeight        float64
	SPFFailWeight          float64
	DKIMFailWeight         float64
	DisplayNameSpoofWeight float64
	MalformedSenderWeight  float64
	KeywordWeight          float64
	ShortenedLinkWeight    float64
	DataURILinkWeight      float64
	HTMLFormWeight         float64
	EmbeddedMessageWeight  float64
	AnchorMismatchWeight   float64
	DomainMismatchWeight   float64
	RedirectorWeight       float64

	// ForwardedMismatchScale shrinks the sender-vs-link domain mismatch
	// penalty when the message looks forwarded. Empirically tuned; kept as
	// a named constant rather than re-derived.
	ForwardedMismatchScale float64

	// Classification thresholds on the final 0..100 probability.
	HighThreshold   int
	MediumThreshold int

	// MinKeywordHits is the number of distinct suspicious keywords that
	// must appear before the keyword signal fires.
	MinKeywordHits int

	SuspiciousKeywords   []string
	ShortenerDomains     []string
	RedirectorHosts      []string
	RedirectorParams     []string
	EmbeddedMessageTypes []string
}

// DefaultTuning returns the stock tables. Deployments normally build a
// Tuning from configuration instead; tests substitute their own.
func DefaultTuning() Tuning {
	return Tuning{
		DMARCFailWeight:        40,
		SPFFailWeight:          25,
		DKIMFailWeight:         20,
		DisplayNameSpoofWeight: 30,
		MalformedSenderWeight:  25,
		KeywordWeight:          15,
		ShortenedLinkWeight:    20,
		DataURILinkWeight:      30,
		HTMLFormWeight:         25,
		EmbeddedMessageWeight:  10,
		AnchorMismatchWeight:   35,
		DomainMismatchWeight:   25,
		RedirectorWeight:       10,

		ForwardedMismatchScale: 0.4,

		HighThreshold:   80,
		MediumThreshold: 40,
		MinKeywordHits:  2,

		SuspiciousKeywords: []string{
			"urgent",
			"immediately",
			"verify your account",
			"confirm your identity",
			"password",
			"suspended",
			"security alert",
			"unusual activity",
			"invoice",
			"payment",
			"wire transfer",
			"gift card",
			"click here",
			"act now",
			"limited time",
			"account will be closed",
		},
		ShortenerDomains: []string{
			"bit.ly",
			"tinyurl.com",
			"goo.gl",
			"t.co",
			"ow.ly",
			"is.gd",
			"buff.ly",
			"rebrand.ly",
			"cutt.ly",
			"rb.gy",
			"tiny.cc",
		},
		RedirectorHosts: []string{
			"safelinks.protection.outlook.com",
			"urldefense.com",
			"urldefense.proofpoint.com",
			"protect.mimecast.com",
			"clicktime.symantec.com",
			"linkprotect.cudasvc.com",
			"secure-web.cisco.com",
			"l.facebook.com",
			"lm.facebook.com",
			"out.reddit.com",
		},
		RedirectorParams: []string{
			"url",
			"u",
			"q",
			"target",
			"dest",
			"redirect",
			"r",
		},
		EmbeddedMessageTypes: []string{
			"message/rfc822",
			"application/vnd.ms-outlook",
			"itemattachment",
			".eml",
			".msg",
		},
	}
}
