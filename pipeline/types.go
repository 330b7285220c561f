package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/randipro1995o7-beep/remix-of-link-shield-sub000/analyzer"
	"github.com/randipro1995o7-beep/remix-of-link-shield-sub000/denylist"
	"github.com/randipro1995o7-beep/remix-of-link-shield-sub000/domainage"
	"github.com/randipro1995o7-beep/remix-of-link-shield-sub000/intelclient"
	"github.com/randipro1995o7-beep/remix-of-link-shield-sub000/redirect"
)

// Action is what the presentation layer should do with an intercepted URL.
type Action string

const (
	// ActionAllow opens the URL without interrupting the user
	ActionAllow Action = "allow"
	// ActionConfirm interposes the calm confirmation step before opening
	ActionConfirm Action = "confirm"
	// ActionBlock refuses to open the URL with no bypass affordance
	ActionBlock Action = "block"
)

// ExternalSignals carries the advisory lookups that contributed to a decision.
// Nil fields mean the lookup was skipped, timed out, or failed; absence of a
// signal is never treated as a threat.
type ExternalSignals struct {
	ThreatIntel *intelclient.Signal `json:"threat_intel,omitempty"`
	DomainAge   *domainage.Age      `json:"domain_age,omitempty"`
	Denylist    *denylist.Match     `json:"denylist,omitempty"`
}

// RiskFlags summarizes threat categories for quick display.
type RiskFlags struct {
	IsPhishing bool `json:"is_phishing"`
	IsMalware  bool `json:"is_malware"`
	IsScam     bool `json:"is_scam"`
}

// InterceptedLink is the immutable record of one intercepted URL. It is
// created once per interception and appended to the bounded history.
type InterceptedLink struct {
	ID           uuid.UUID             `json:"id"`
	OriginalURL  string                `json:"original_url"`
	FinalURL     string                `json:"final_url,omitempty"`
	Source       string                `json:"source,omitempty"`
	Timestamp    time.Time             `json:"timestamp"`
	Analysis     analyzer.Result       `json:"analysis"`
	RedirectInfo *redirect.ChainResult `json:"redirect_info,omitempty"`
	Signals      *ExternalSignals      `json:"external_signals,omitempty"`
}

// Decision is the pipeline's final verdict for one intercepted URL.
type Decision struct {
	Action Action `json:"action"`
	// Bypassed is true when the URL passed through without full analysis
	// (protection disabled, whitelist hit, or the heuristic fast path)
	Bypassed bool `json:"bypassed,omitempty"`
	// BypassReason names the fast path taken when Bypassed is set
	BypassReason string    `json:"bypass_reason,omitempty"`
	Flags        RiskFlags `json:"flags"`
	// Link is the full interception record; zero-valued when analysis was bypassed
	Link InterceptedLink `json:"link"`
}
