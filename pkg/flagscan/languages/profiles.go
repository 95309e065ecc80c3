package languages

import (
	"regexp"
	"strings"
	"unicode"
)

// Quote classes.
const (
	qJS     = "[\"'`]"
	qSingle = `["']`
	qDouble = `"`
	qGo     = "[\"`]"
)

// npm packages published by the provider.
const jsSDKImport = `(?m)(?:\bfrom\s+|\brequire\s*\(\s*|\bimport\s*\(?\s*)["'](?:@launchdarkly/[\w./-]+|launchdarkly-[\w./-]+|ldclient-[\w./-]+)["']`

func builtinProfiles() []*Profile {
	return []*Profile{
		{
			id:         "typescript",
			extensions: []string{".ts", ".tsx", ".mts", ".cts"},
			sdkImports: compileAll(jsSDKImport),
			quote:      qJS,
			extras:     jsExtras,
		},
		{
			id:         "javascript",
			extensions: []string{".js", ".jsx", ".mjs", ".cjs"},
			sdkImports: compileAll(jsSDKImport),
			quote:      qJS,
			extras:     jsExtras,
		},
		{
			id:         "python",
			extensions: []string{".py"},
			sdkImports: compileAll(
				`(?m)^\s*import\s+ldclient\b`,
				`(?m)^\s*from\s+ldclient(?:\.[\w.]+)?\s+import\b`,
			),
			quote:        qSingle,
			snakeHelpers: true,
		},
		{
			id:         "go",
			extensions: []string{".go"},
			sdkImports: compileAll(`"(?:github\.com|gopkg\.in)/launchdarkly/go-[\w./-]*"`),
			quote:      qGo,
		},
		{
			id:         "java",
			extensions: []string{".java"},
			sdkImports: compileAll(`(?m)^\s*import\s+(?:static\s+)?com\.launchdarkly\.`),
			quote:      qDouble,
		},
		{
			id:         "kotlin",
			extensions: []string{".kt", ".kts"},
			sdkImports: compileAll(`(?m)^\s*import\s+com\.launchdarkly\.`),
			quote:      qDouble,
		},
		{
			id:           "ruby",
			extensions:   []string{".rb"},
			sdkImports:   compileAll(`(?m)^\s*require\s*\(?\s*["'](?:ldclient-rb|launchdarkly-server-sdk)["']`),
			quote:        qSingle,
			snakeHelpers: true,
			extras:       rubyExtras,
		},
		{
			id:         "php",
			extensions: []string{".php"},
			sdkImports: compileAll(`(?m)^\s*use\s+\\?LaunchDarkly\\`),
			quote:      qSingle,
		},
		{
			id:         "csharp",
			extensions: []string{".cs"},
			sdkImports: compileAll(`(?m)^\s*using\s+(?:static\s+)?LaunchDarkly\.`),
			quote:      qDouble,
		},
		{
			id:         "swift",
			extensions: []string{".swift"},
			sdkImports: compileAll(`(?m)^\s*(?:@testable\s+)?import\s+LaunchDarkly\b`),
			quote:      qDouble,
		},
	}
}

func compileAll(srcs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(srcs))
	for _, s := range srcs {
		out = append(out, regexp.MustCompile(s))
	}
	return out
}

// jsExtras matches the camelCased property the React and client-side SDKs
// expose for a key, e.g. flags.oldFlag for "old-flag".
func jsExtras(key string) []Pattern {
	camel := CamelCase(key)
	if camel == "" {
		return nil
	}
	return []Pattern{{
		Name: "flags_property",
		re:   regexp.MustCompile(`\b(?:flags|useFlags\(\))\??\.` + regexp.QuoteMeta(camel) + `\b`),
	}}
}

var rubySymbol = regexp.MustCompile(`^[A-Za-z_]\w*$`)

func rubyExtras(key string) []Pattern {
	if !rubySymbol.MatchString(key) {
		return nil
	}
	return []Pattern{{
		Name: "symbol",
		re:   regexp.MustCompile(`(?:^|[^:\w]):` + regexp.QuoteMeta(key) + `\b`),
	}}
}

// CamelCase converts a flag key to the camelCase form used by the
// JavaScript SDKs: "old-flag" and "OLD_FLAG" both become "oldFlag".
func CamelCase(key string) string {
	parts := strings.FieldsFunc(key, func(r rune) bool {
		return r == '-' || r == '_' || r == '.' || unicode.IsSpace(r)
	})
	var b strings.Builder
	for i, part := range parts {
		if isUpper(part) {
			part = strings.ToLower(part)
		}
		runes := []rune(part)
		if i == 0 {
			runes[0] = unicode.ToLower(runes[0])
		} else {
			runes[0] = unicode.ToUpper(runes[0])
		}
		b.WriteString(string(runes))
	}
	return b.String()
}

func isUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}
