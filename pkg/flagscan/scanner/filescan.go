package scanner

import (
	"strings"

	"github.com/idlab-discover/FlagScan-cli/pkg/flagscan/languages"
)

// splitLines splits content on \n, trims a trailing \r from each line and
// drops the empty element a terminating newline leaves behind.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// ScanFile applies patterns to every line of content and returns at most
// one match per line, in ascending line order. relPath is recorded on each
// match and drives the test-path confidence rule.
func ScanFile(relPath, content, lang, flagKey string, patterns []languages.Pattern, hasSDK bool) []Match {
	if len(patterns) == 0 {
		return nil
	}
	content = strings.ToValidUTF8(content, "�")
	lines := splitLines(content)

	var out []Match
	for i, line := range lines {
		for _, p := range patterns {
			col, ok := p.Find(line)
			if !ok {
				continue
			}
			mt := Classify(line, flagKey)
			out = append(out, Match{
				File:       relPath,
				Line:       i + 1,
				Column:     col,
				Snippet:    Snippet(lines, i),
				MatchType:  mt,
				Confidence: Score(mt, hasSDK, relPath),
				Language:   lang,
			})
			break
		}
	}
	return out
}

// flagPlan caches the compiled occurrence patterns of one flag key for
// every language in a registry. It is read-only once built.
type flagPlan struct {
	reg      *languages.Registry
	key      string
	patterns map[string][]languages.Pattern
}

func newFlagPlan(reg *languages.Registry, key string) *flagPlan {
	fp := &flagPlan{
		reg:      reg,
		key:      key,
		patterns: map[string][]languages.Pattern{},
	}
	for _, p := range reg.Profiles() {
		fp.patterns[p.ID()] = p.OccurrencePatterns(key)
	}
	return fp
}

func (fp *flagPlan) scan(relPath, content, lang string) []Match {
	return ScanFile(relPath, content, lang, fp.key, fp.patterns[lang], fp.reg.HasSDKImport(content, lang))
}
