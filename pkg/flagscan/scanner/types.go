package scanner

import (
	"github.com/idlab-discover/FlagScan-cli/pkg/flagscan/languages"
)

// MatchType is the coarse category of a found occurrence.
type MatchType string

const (
	MatchSDKCall       MatchType = "sdk_call"
	MatchStringLiteral MatchType = "string_literal"
	MatchConfig        MatchType = "config"
	MatchTest          MatchType = "test"
)

// MatchTypes lists every match type in classification priority order.
var MatchTypes = []MatchType{MatchSDKCall, MatchConfig, MatchTest, MatchStringLiteral}

// Confidence estimates how safe it is to remove an occurrence automatically.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Match is one detected occurrence of a flag key.
type Match struct {
	File       string     `json:"file" yaml:"file"`
	Line       int        `json:"line" yaml:"line"`
	Column     int        `json:"column" yaml:"column"`
	Snippet    string     `json:"snippet" yaml:"snippet"`
	MatchType  MatchType  `json:"matchType" yaml:"matchType"`
	Confidence Confidence `json:"confidence" yaml:"confidence"`
	Language   string     `json:"language" yaml:"language"`
}

// Result is the outcome of one scan invocation.
type Result struct {
	FlagKey        string  `json:"flagKey" yaml:"flagKey"`
	Provider       string  `json:"provider" yaml:"provider"`
	Repo           string  `json:"repo" yaml:"repo"`
	TotalMatches   int     `json:"totalMatches" yaml:"totalMatches"`
	Matches        []Match `json:"matches" yaml:"matches"`
	ScannedFiles   int     `json:"scannedFiles" yaml:"scannedFiles"`
	SkippedFiles   int     `json:"skippedFiles" yaml:"skippedFiles"`
	ScanDurationMs int64   `json:"scanDurationMs" yaml:"scanDurationMs"`
}

// CountByConfidence tallies matches per confidence level.
func (r *Result) CountByConfidence() map[Confidence]int {
	out := map[Confidence]int{}
	if r == nil {
		return out
	}
	for _, m := range r.Matches {
		out[m.Confidence]++
	}
	return out
}

// CountByType tallies matches per match type.
func (r *Result) CountByType() map[MatchType]int {
	out := map[MatchType]int{}
	if r == nil {
		return out
	}
	for _, m := range r.Matches {
		out[m.MatchType]++
	}
	return out
}

// Files returns the distinct matched files in match order.
func (r *Result) Files() []string {
	if r == nil {
		return nil
	}
	var out []string
	seen := map[string]struct{}{}
	for _, m := range r.Matches {
		if _, ok := seen[m.File]; ok {
			continue
		}
		seen[m.File] = struct{}{}
		out = append(out, m.File)
	}
	return out
}

// DefaultMaxFileSize is the size ceiling above which files are skipped unread.
const DefaultMaxFileSize int64 = 1 << 20

// DefaultProvider names the flag provider when the caller gives none.
const DefaultProvider = "launchdarkly"

// Options tunes a scan. The zero value scans with the built-in defaults.
type Options struct {
	// Provider is copied into the result.
	Provider string

	// Repo is copied into the result. Empty means the root's base name.
	Repo string

	// MaxFileSize overrides DefaultMaxFileSize when positive.
	MaxFileSize int64

	// IgnoreDirs replaces the default ignored directory names when non-nil.
	IgnoreDirs []string

	// Exclude holds doublestar patterns matched against slash-separated
	// paths relative to the root, and against base names.
	Exclude []string

	// Workers bounds parallel file scans; <= 0 means runtime.NumCPU().
	Workers int

	// Registry overrides languages.Default().
	Registry *languages.Registry
}
