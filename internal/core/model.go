package core

import (
	"time"
)

// Address is the sender of a message as presented to the recipient: the
// display name shown by the mail client and the underlying address, which
// may itself still be wrapped in display-name syntax.
type Address struct {
	DisplayName  string
	EmailAddress string
}

// Attachment carries the metadata the engine needs about a single
// attachment. Only the declared content type matters for analysis.
type Attachment struct {
	Type string
}

// RawMessage is a fully materialized email message handed to the analyzer.
// The caller owns it; the engine never mutates it.
type RawMessage struct {
	From        Address
	Subject     string
	BodyText    string
	BodyHTML    string
	RawHeaders  string
	Attachments []Attachment
}

// AuthState is the outcome of a single sender-authentication mechanism.
type AuthState string

const (
	AuthPass     AuthState = "pass"
	AuthFail     AuthState = "fail"
	AuthSoftFail AuthState = "softfail"
	AuthNeutral  AuthState = "neutral"
	AuthNone     AuthState = "none"
)

// AuthResult holds the DMARC/SPF/DKIM outcomes derived from the message
// headers. Absent or unparsable results stay at AuthNone.
type AuthResult struct {
	DMARC AuthState
	SPF   AuthState
	DKIM  AuthState
}

// LinkOrigin records where a link was found in the message.
type LinkOrigin string

const (
	OriginText   LinkOrigin = "text"
	OriginAnchor LinkOrigin = "anchor"
)

// ExtractedLink is a single candidate link pulled out of the message body.
// Href is the absolute URL as written in the message; redirector decoding
// happens downstream and keeps this raw form around so anchor text can be
// compared against what the message actually displayed.
type ExtractedLink struct {
	Href         string
	ShownText    string
	Origin       LinkOrigin
	IsRedirector bool
}

// RiskClass buckets a probability into the three levels the display layer
// knows how to render.
type RiskClass string

const (
	RiskLow    RiskClass = "low"
	RiskMedium RiskClass = "medium"
	RiskHigh   RiskClass = "high"
)

// AnalysisResult is the engine's verdict for one message. Probability is
// always in [0,100], Reasons preserves the fixed evaluation order, and
// LinkDomains is sorted with no duplicates or empty strings.
type AnalysisResult struct {
	Probability int
	RiskClass   RiskClass
	Reasons     []string
	LinkDomains []string
	FromDomain  string
}

// CacheEntry is a stored analysis result keyed by message digest.
type CacheEntry struct {
	Digest      string
	Probability int
	RiskClass   RiskClass
	Reasons     []string
	LinkDomains []string
	FromDomain  string
	AnalyzedAt  time.Time
	ExpiresAt   time.Time
}
