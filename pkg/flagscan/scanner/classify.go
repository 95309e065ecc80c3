package scanner

import (
	"path"
	"strings"
)

// classifyRule pairs a match type with the predicate that selects it.
// Rules are evaluated top to bottom; the first hit wins.
type classifyRule struct {
	matchType MatchType
	matches   func(line string) bool
}

func containsAny(subs ...string) func(string) bool {
	return func(line string) bool {
		for _, s := range subs {
			if strings.Contains(line, s) {
				return true
			}
		}
		return false
	}
}

var classifyRules = []classifyRule{
	{MatchSDKCall, containsAny(".variation", "Variation")},
	{MatchConfig, containsAny("config", "Config", "FLAG")},
	{MatchTest, containsAny("test", "Test", "spec")},
}

// Classify assigns a match type to the line a flag key was found on.
// The key's own occurrences are blanked first so that a key such as
// OLD_FLAG does not classify its line as config by itself.
func Classify(line, flagKey string) MatchType {
	if flagKey != "" {
		line = strings.ReplaceAll(line, flagKey, "")
	}
	for _, r := range classifyRules {
		if r.matches(line) {
			return r.matchType
		}
	}
	return MatchStringLiteral
}

// Score assigns a confidence level to a classified match.
func Score(mt MatchType, hasSDK bool, relPath string) Confidence {
	switch {
	case mt == MatchSDKCall && hasSDK && !IsTestPath(relPath):
		return ConfidenceHigh
	case mt == MatchSDKCall, mt == MatchStringLiteral && hasSDK:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

var testDirs = map[string]struct{}{
	"test":      {},
	"tests":     {},
	"__tests__": {},
	"spec":      {},
	"specs":     {},
	"__mocks__": {},
	"testdata":  {},
	"e2e":       {},
}

// IsTestPath reports whether a slash-separated relative path points into a
// test directory or names a test file by convention.
func IsTestPath(relPath string) bool {
	p := strings.ReplaceAll(relPath, "\\", "/")
	dir, base := path.Split(p)
	for _, seg := range strings.Split(dir, "/") {
		if _, ok := testDirs[strings.ToLower(seg)]; ok {
			return true
		}
	}

	lower := strings.ToLower(base)
	for _, marker := range []string{"_test.", ".test.", ".spec.", "_spec."} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	if strings.HasPrefix(lower, "test_") {
		return true
	}
	stem := strings.TrimSuffix(base, path.Ext(base))
	return strings.HasSuffix(stem, "Test") || strings.HasSuffix(stem, "Tests")
}

// Snippet returns the match line with one line of context on each side,
// clamped to the bounds of lines.
func Snippet(lines []string, idx int) string {
	if idx < 0 || idx >= len(lines) {
		return ""
	}
	start := idx - 1
	if start < 0 {
		start = 0
	}
	end := idx + 2
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start:end], "\n")
}
