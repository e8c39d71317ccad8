package internal

import (
	"encoding/json"
	"fmt"
	"time"
)

// Plan is the subscription tier attached to a session
type Plan string

const (
	PlanFree       Plan = "free"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// IsValid reports whether p is one of the known tiers
func (p Plan) IsValid() bool {
	switch p {
	case PlanFree, PlanPro, PlanEnterprise:
		return true
	default:
		return false
	}
}

// UsageEvent is one entry of a session's usage history
type UsageEvent struct {
	Date            time.Time `json:"date"`
	Action          string    `json:"action"`
	ContractAddress string    `json:"contractAddress,omitempty"`
}

// Session represents the currently logged-in user
type Session struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	Name         string       `json:"name"`
	Plan         Plan         `json:"plan"`
	JoinedAt     time.Time    `json:"joinedDate"`
	LastActive   time.Time    `json:"lastActive"`
	UsageHistory []UsageEvent `json:"usageHistory"`
}

// Clone returns a deep copy so callers never share the store's history slice
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.UsageHistory != nil {
		c.UsageHistory = make([]UsageEvent, len(s.UsageHistory))
		copy(c.UsageHistory, s.UsageHistory)
	}
	return &c
}

// MarshalSession serializes a session into its snapshot form
func MarshalSession(s *Session) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	return data, nil
}

// ParseSession decodes a snapshot. Dates come back as time.Time values.
func ParseSession(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session JSON: %w", err)
	}
	if s.ID == "" || s.Email == "" {
		return nil, fmt.Errorf("session snapshot is missing id or email")
	}
	if !s.Plan.IsValid() {
		return nil, fmt.Errorf("session snapshot has unknown plan %q", s.Plan)
	}
	return &s, nil
}

// Severity classifies a vulnerability
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Severities lists every severity from most to least severe
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// Vulnerability is a single finding shown in an analysis result
type Vulnerability struct {
	ID             string   `json:"id" yaml:"id"`
	Title          string   `json:"title" yaml:"title"`
	Description    string   `json:"description" yaml:"description"`
	Severity       Severity `json:"severity" yaml:"severity"`
	LineNumber     int      `json:"lineNumber,omitempty" yaml:"line_number,omitempty"`
	CodeSnippet    string   `json:"codeSnippet,omitempty" yaml:"code_snippet,omitempty"`
	Recommendation string   `json:"recommendation" yaml:"recommendation"`
}

// Recommendation is a follow-up suggestion attached to a result
type Recommendation struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Impact      string `json:"impact" yaml:"impact"` // "high", "medium", "low"
	Type        string `json:"type" yaml:"type"`     // "improvement", "warning", "info"
}

// InputKind tags an AnalysisInput
type InputKind string

const (
	InputAddress InputKind = "address"
	InputCode    InputKind = "code"
)

// AnalysisInput is either a deployed address or pasted/uploaded source
type AnalysisInput struct {
	Kind     InputKind
	Address  string
	Network  string
	Source   string
	Filename string
}

// AddressInput builds an address submission
func AddressInput(address, network string) AnalysisInput {
	return AnalysisInput{Kind: InputAddress, Address: address, Network: network}
}

// CodeInput builds a source submission
func CodeInput(source, filename string) AnalysisInput {
	return AnalysisInput{Kind: InputCode, Source: source, Filename: filename}
}

// Target is the label shown for the analyzed contract
func (in AnalysisInput) Target() string {
	if in.Kind == InputAddress {
		return in.Address
	}
	if in.Filename != "" {
		return in.Filename
	}
	return "inline source"
}

// SeverityCounts tallies vulnerabilities per severity
type SeverityCounts struct {
	Critical int `json:"critical" yaml:"critical"`
	High     int `json:"high" yaml:"high"`
	Medium   int `json:"medium" yaml:"medium"`
	Low      int `json:"low" yaml:"low"`
}

// AnalysisResult is what a submission produces
type AnalysisResult struct {
	Kind            InputKind        `json:"kind" yaml:"kind"`
	Target          string           `json:"target" yaml:"target"`
	Network         string           `json:"network,omitempty" yaml:"network,omitempty"`
	Score           int              `json:"score" yaml:"score"`
	Vulnerabilities []Vulnerability  `json:"vulnerabilities" yaml:"vulnerabilities"`
	Recommendations []Recommendation `json:"recommendations" yaml:"recommendations"`
	AnalyzedAt      time.Time        `json:"analyzedAt" yaml:"analyzed_at"`
}

// Counts tallies the result's vulnerabilities by severity
func (r *AnalysisResult) Counts() SeverityCounts {
	var c SeverityCounts
	for _, v := range r.Vulnerabilities {
		switch v.Severity {
		case SeverityCritical:
			c.Critical++
		case SeverityHigh:
			c.High++
		case SeverityMedium:
			c.Medium++
		case SeverityLow:
			c.Low++
		}
	}
	return c
}

// Risk labels the score the way the score card does
func (r *AnalysisResult) Risk() string {
	switch {
	case r.Score >= 80:
		return "Low Risk"
	case r.Score >= 60:
		return "Medium Risk"
	default:
		return "High Risk"
	}
}
