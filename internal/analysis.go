package internal

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// AddressLength is the length of a 0x-prefixed address
const AddressLength = 42

// ValidateAddress applies the placeholder format rule: "0x" followed by
// anything, 42 characters in total. There is no checksum or hex check.
func ValidateAddress(address string) error {
	if !strings.HasPrefix(address, "0x") || len(address) != AddressLength {
		return ErrInvalidAddressFormat
	}
	return nil
}

// DefaultNetwork is used when an address submission names no network
const DefaultNetwork = "Ethereum Mainnet"

// Networks lists the chains an address can be analyzed on
var Networks = []string{
	DefaultNetwork,
	"Polygon",
	"Binance Smart Chain",
	"Optimism",
	"Arbitrum",
}

// ResolveNetwork returns the canonical network name, matching case-insensitively
func ResolveNetwork(name string) (string, error) {
	if name == "" {
		return DefaultNetwork, nil
	}
	for _, n := range Networks {
		if strings.EqualFold(n, name) {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w: %s (supported: %s)", ErrUnknownNetwork, name, strings.Join(Networks, ", "))
}

// Advisory is a pre-submission notice about a risky construct in the source
type Advisory struct {
	Pattern string
	Message string
}

var advisoryRules = []struct {
	pattern    string
	ignoreCase bool
	message    string
}{
	{"selfdestruct", false, "Contract uses selfdestruct, which can permanently remove the contract and its balance."},
	{"delegatecall", false, "Contract uses delegatecall; the callee runs with this contract's storage and balance."},
	{"owner", true, "Contract references an owner; review privileged functions for centralization risk."},
}

// ScanSource returns one advisory per flagged substring found in source.
// It is informational and has no effect on the analysis result.
func ScanSource(source string) []Advisory {
	var advisories []Advisory
	lower := strings.ToLower(source)
	for _, rule := range advisoryRules {
		haystack := source
		if rule.ignoreCase {
			haystack = lower
		}
		if strings.Contains(haystack, rule.pattern) {
			advisories = append(advisories, Advisory{Pattern: rule.pattern, Message: rule.message})
		}
	}
	return advisories
}

// ContractFileExtensions are the file types accepted for upload
var ContractFileExtensions = []string{".sol", ".vy", ".json"}

// LoadContractFile reads a contract file as plain text. Only the extension
// is checked; the content is not parsed.
func LoadContractFile(path string) (source, filename string, err error) {
	filename = filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(filename))
	supported := false
	for _, e := range ContractFileExtensions {
		if ext == e {
			supported = true
			break
		}
	}
	if !supported {
		return "", filename, fmt.Errorf("%w: %s", ErrUnsupportedFile, filename)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", filename, &StorageError{Path: path, Op: "read", Err: err}
	}
	return string(data), filename, nil
}

// Score bounds
const (
	MinScore = 60
	MaxScore = 90
)

// RandomSource supplies the randomness behind a score; *rand.Rand satisfies it
type RandomSource interface {
	Intn(n int) int
}

// DrawScore picks a uniform integer score in [MinScore, MaxScore]
func DrawScore(r RandomSource) int {
	return MinScore + r.Intn(MaxScore-MinScore+1)
}

// CriticalCount is how many critical findings a score allows
func CriticalCount(score int) int {
	if score < 70 {
		return 1
	}
	return 0
}

// HighCount is the high-severity allowance for a score
func HighCount(score int) int {
	if score < 80 {
		return 2
	}
	return 1
}

// FilterVulnerabilities keeps the n-th critical item only while
// n < criticalCount and the n-th high item only while
// n < highCount+criticalCount. Medium and low items are always kept; order
// is preserved.
func FilterVulnerabilities(ref []Vulnerability, criticalCount, highCount int) []Vulnerability {
	kept := make([]Vulnerability, 0, len(ref))
	criticalSeen, highSeen := 0, 0
	for _, v := range ref {
		switch v.Severity {
		case SeverityCritical:
			if criticalSeen < criticalCount {
				kept = append(kept, v)
			}
			criticalSeen++
		case SeverityHigh:
			if highSeen < highCount+criticalCount {
				kept = append(kept, v)
			}
			highSeen++
		default:
			kept = append(kept, v)
		}
	}
	return kept
}

// RecommendationCount is max(2, (100-score)/10)
func RecommendationCount(score int) int {
	n := (100 - score) / 10
	if n < 2 {
		return 2
	}
	return n
}

// DeriveResult builds the result for a given score
func DeriveResult(input AnalysisInput, score int, at time.Time) *AnalysisResult {
	recs := ReferenceRecommendations()
	n := RecommendationCount(score)
	if n > len(recs) {
		n = len(recs)
	}

	return &AnalysisResult{
		Kind:            input.Kind,
		Target:          input.Target(),
		Network:         input.Network,
		Score:           score,
		Vulnerabilities: FilterVulnerabilities(ReferenceVulnerabilities(), CriticalCount(score), HighCount(score)),
		Recommendations: recs[:n],
		AnalyzedAt:      at,
	}
}

// Backend produces analysis results. The simulated backend can be swapped
// for a real one without changing Analyzer's callers.
type Backend interface {
	Analyze(ctx context.Context, input AnalysisInput) (*AnalysisResult, error)
}

// DefaultAnalysisDelay is the simulated analysis latency
const DefaultAnalysisDelay = 2 * time.Second

// SimulatedBackend waits a fixed delay and then derives a result from a
// random score.
type SimulatedBackend struct {
	mu    sync.Mutex
	rnd   RandomSource
	delay time.Duration
	now   func() time.Time
}

// NewSimulatedBackend creates a simulated backend. A nil rnd seeds one from
// the clock.
func NewSimulatedBackend(delay time.Duration, rnd RandomSource) *SimulatedBackend {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &SimulatedBackend{rnd: rnd, delay: delay, now: time.Now}
}

func (b *SimulatedBackend) Analyze(ctx context.Context, input AnalysisInput) (*AnalysisResult, error) {
	if b.delay > 0 {
		timer := time.NewTimer(b.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	b.mu.Lock()
	score := DrawScore(b.rnd)
	b.mu.Unlock()

	LogDebug("Simulated analysis of %s scored %d", input.Target(), score)
	return DeriveResult(input, score, b.now()), nil
}

// Pending is an in-flight submission
type Pending struct {
	done   chan struct{}
	result *AnalysisResult
	err    error
}

// Done is closed once the result is available
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks for the result. If ctx ends first the result is discarded.
func (p *Pending) Wait(ctx context.Context) (*AnalysisResult, error) {
	select {
	case <-p.done:
		return p.result, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Analyzer validates submissions and hands them to a Backend
type Analyzer struct {
	backend Backend
}

// NewAnalyzer creates an analyzer over backend
func NewAnalyzer(backend Backend) *Analyzer {
	return &Analyzer{backend: backend}
}

// SubmitAddress validates the address and network, then starts an analysis
func (a *Analyzer) SubmitAddress(ctx context.Context, address, network string) (*Pending, error) {
	if err := ValidateAddress(address); err != nil {
		return nil, err
	}
	resolved, err := ResolveNetwork(network)
	if err != nil {
		return nil, err
	}
	return a.submit(ctx, AddressInput(address, resolved)), nil
}

// SubmitCode starts an analysis of source text; filename may be empty
func (a *Analyzer) SubmitCode(ctx context.Context, source, filename string) (*Pending, error) {
	if strings.TrimSpace(source) == "" {
		return nil, ErrEmptyCodeSubmission
	}
	return a.submit(ctx, CodeInput(source, filename)), nil
}

func (a *Analyzer) submit(ctx context.Context, input AnalysisInput) *Pending {
	p := &Pending{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		p.result, p.err = a.backend.Analyze(ctx, input)
	}()
	return p
}

// ReferenceVulnerabilities returns a copy of the fixed finding list
func ReferenceVulnerabilities() []Vulnerability {
	out := make([]Vulnerability, len(referenceVulnerabilities))
	copy(out, referenceVulnerabilities)
	return out
}

// ReferenceRecommendations returns a copy of the fixed recommendation list
func ReferenceRecommendations() []Recommendation {
	out := make([]Recommendation, len(referenceRecommendations))
	copy(out, referenceRecommendations)
	return out
}

var referenceVulnerabilities = []Vulnerability{
	{
		ID:             "v1",
		Title:          "Reentrancy Vulnerability",
		Description:    "The contract is vulnerable to reentrancy attacks due to state changes after external calls.",
		Severity:       SeverityCritical,
		LineNumber:     42,
		CodeSnippet:    "function withdraw(uint amount) external {\n  require(balances[msg.sender] >= amount);\n  (bool success, ) = msg.sender.call{value: amount}(\"\");\n  require(success);\n  balances[msg.sender] -= amount;\n}",
		Recommendation: "Update state variables before making external calls. Consider using the checks-effects-interactions pattern or a reentrancy guard.",
	},
	{
		ID:             "v2",
		Title:          "Unchecked External Call",
		Description:    "External call does not check the return value, which could lead to silent failures.",
		Severity:       SeverityHigh,
		LineNumber:     78,
		CodeSnippet:    "function distributeFees() external {\n  feeReceiver.call{value: address(this).balance}(\"\");\n}",
		Recommendation: "Check the return value of the external call and handle any failures appropriately.",
	},
	{
		ID:             "v3",
		Title:          "Integer Overflow",
		Description:    "Potential integer overflow in arithmetic operation that could lead to unexpected behavior.",
		Severity:       SeverityMedium,
		LineNumber:     103,
		CodeSnippet:    "function addReward(uint amount) external {\n  totalRewards += amount;\n}",
		Recommendation: "Use SafeMath library or Solidity 0.8.x built-in overflow checks for arithmetic operations.",
	},
	{
		ID:             "v4",
		Title:          "Unprotected Function",
		Description:    "Critical function lacks proper access control, allowing unauthorized calls.",
		Severity:       SeverityHigh,
		LineNumber:     125,
		CodeSnippet:    "function setFeeReceiver(address newReceiver) external {\n  feeReceiver = newReceiver;\n}",
		Recommendation: "Add appropriate access control modifiers like onlyOwner or onlyRole to restrict function access.",
	},
	{
		ID:             "v5",
		Title:          "Gas Optimization",
		Description:    "Storage variable could be changed to memory for gas optimization.",
		Severity:       SeverityLow,
		LineNumber:     167,
		CodeSnippet:    "function getAddresses() external view returns (address[] storage) {\n  return userAddresses;\n}",
		Recommendation: "Consider using memory instead of storage when returning arrays to save gas.",
	},
}

var referenceRecommendations = []Recommendation{
	{
		ID:          "r1",
		Title:       "Adopt checks-effects-interactions",
		Description: "Move all state updates ahead of external calls and add a reentrancy guard to functions that transfer value.",
		Impact:      "high",
		Type:        "warning",
	},
	{
		ID:          "r2",
		Title:       "Tighten access control",
		Description: "Restrict configuration setters with onlyOwner or role-based modifiers and emit events on every change.",
		Impact:      "high",
		Type:        "improvement",
	},
	{
		ID:          "r3",
		Title:       "Handle low-level call results",
		Description: "Check the success flag of every low-level call and revert or retry on failure.",
		Impact:      "medium",
		Type:        "improvement",
	},
	{
		ID:          "r4",
		Title:       "Upgrade the compiler",
		Description: "Compile with Solidity 0.8.x to get built-in overflow checks and drop manual SafeMath usage.",
		Impact:      "medium",
		Type:        "info",
	},
	{
		ID:          "r5",
		Title:       "Reduce storage reads",
		Description: "Cache storage values in memory inside loops and return memory arrays from view functions.",
		Impact:      "low",
		Type:        "info",
	},
}
