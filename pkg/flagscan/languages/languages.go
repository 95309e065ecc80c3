// Package languages holds the per-language profiles the flag scanner uses:
// which file suffixes belong to a language, how a file imports the flag
// provider's client library, and which patterns locate a flag key in a line.
//
// Profiles are built once and never mutated; a Registry may be shared by any
// number of concurrent scans.
package languages

import (
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// Pattern is one named occurrence pattern for a specific flag key.
type Pattern struct {
	Name string
	re   *regexp.Regexp
}

// Find returns the byte offset of the first match in line.
func (p Pattern) Find(line string) (int, bool) {
	if p.re == nil {
		return 0, false
	}
	loc := p.re.FindStringIndex(line)
	if loc == nil {
		return 0, false
	}
	return loc[0], true
}

// String returns the pattern source.
func (p Pattern) String() string {
	if p.re == nil {
		return ""
	}
	return p.re.String()
}

// Profile describes one supported language.
type Profile struct {
	id         string
	extensions []string
	sdkImports []*regexp.Regexp

	// quote is a regexp character class of the string delimiters the
	// language accepts around a literal flag key.
	quote string

	// snakeHelpers adds snake_case spellings of the generic helper calls.
	snakeHelpers bool

	extras func(key string) []Pattern
}

// ID returns the language identifier, e.g. "typescript".
func (p *Profile) ID() string { return p.id }

// Extensions returns a copy of the profile's file suffixes.
func (p *Profile) Extensions() []string {
	out := make([]string, len(p.extensions))
	copy(out, p.extensions)
	return out
}

// SDKImportPatterns returns the sources of the SDK import patterns.
func (p *Profile) SDKImportPatterns() []string {
	out := make([]string, 0, len(p.sdkImports))
	for _, re := range p.sdkImports {
		out = append(out, re.String())
	}
	return out
}

// HasSDKImport reports whether content imports the provider SDK.
func (p *Profile) HasSDKImport(content string) bool {
	for _, re := range p.sdkImports {
		if re.MatchString(content) {
			return true
		}
	}
	return false
}

// OccurrencePatterns returns the ordered patterns that locate key in a line
// of this language: provider accessor calls first, then generic helper calls,
// then language extras, and finally the key as a bare string literal.
func (p *Profile) OccurrencePatterns(key string) []Pattern {
	if key == "" {
		return nil
	}
	lit := p.quote + regexp.QuoteMeta(key) + p.quote

	out := []Pattern{
		{
			Name: "sdk_accessor",
			re:   regexp.MustCompile(`\b\w*[Vv]ariation(?:Detail)?\s*\(\s*(?:forKey:\s*)?` + lit),
		},
		{
			Name: "helper_call",
			re:   regexp.MustCompile(`\b(?:isEnabled|getFlag|checkFlag|featureFlag)\s*\(\s*` + lit),
		},
	}
	if p.snakeHelpers {
		out = append(out, Pattern{
			Name: "helper_call_snake",
			re:   regexp.MustCompile(`\b(?:is_enabled|get_flag|check_flag|feature_flag)\s*\(\s*` + lit),
		})
	}
	if p.extras != nil {
		out = append(out, p.extras(key)...)
	}
	out = append(out, Pattern{Name: "string_literal", re: regexp.MustCompile(lit)})
	return out
}

// Registry is an ordered, immutable set of profiles.
type Registry struct {
	profiles []*Profile
	byID     map[string]*Profile
}

// New builds a registry from profiles. Earlier profiles win suffix ties.
func New(profiles ...*Profile) *Registry {
	r := &Registry{
		profiles: profiles,
		byID:     make(map[string]*Profile, len(profiles)),
	}
	for _, p := range profiles {
		if _, dup := r.byID[p.id]; !dup {
			r.byID[p.id] = p
		}
	}
	return r
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the process-wide registry of built-in profiles.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultReg = New(builtinProfiles()...)
	})
	return defaultReg
}

// DetectLanguage maps a file path to a language id by suffix.
func (r *Registry) DetectLanguage(path string) (string, bool) {
	name := strings.ToLower(filepath.Base(path))
	for _, p := range r.profiles {
		for _, ext := range p.extensions {
			if strings.HasSuffix(name, ext) {
				return p.id, true
			}
		}
	}
	return "", false
}

// HasSDKImport reports whether content imports the provider SDK for lang.
// Unknown languages report false.
func (r *Registry) HasSDKImport(content, lang string) bool {
	p, ok := r.byID[lang]
	if !ok {
		return false
	}
	return p.HasSDKImport(content)
}

// PatternsFor returns the occurrence patterns of key for lang.
func (r *Registry) PatternsFor(lang, key string) []Pattern {
	p, ok := r.byID[lang]
	if !ok {
		return nil
	}
	return p.OccurrencePatterns(key)
}

// Profile looks up a profile by id.
func (r *Registry) Profile(lang string) (*Profile, bool) {
	p, ok := r.byID[lang]
	return p, ok
}

// Profiles returns the profiles in registry order.
func (r *Registry) Profiles() []*Profile {
	out := make([]*Profile, len(r.profiles))
	copy(out, r.profiles)
	return out
}
