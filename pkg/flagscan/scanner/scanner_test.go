package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	return root
}

func mustScan(t *testing.T, root, key string, opts Options) *Result {
	t.Helper()
	res, err := Scan(context.Background(), root, key, opts)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if res.TotalMatches != len(res.Matches) {
		t.Fatalf("TotalMatches = %d, len(Matches) = %d", res.TotalMatches, len(res.Matches))
	}
	return res
}

const tsClient = `import { init } from '@launchdarkly/node-server-sdk';
const client = init('sdk-key');
export const on = client.boolVariation('OLD_FLAG', false);
`

func TestScan_CleanSDKCall(t *testing.T) {
	root := writeTree(t, map[string]string{"src/client.ts": tsClient})

	res := mustScan(t, root, "OLD_FLAG", Options{Repo: "web", Provider: "launchdarkly"})

	if res.ScannedFiles != 1 || res.SkippedFiles != 0 {
		t.Fatalf("scanned/skipped = %d/%d, want 1/0", res.ScannedFiles, res.SkippedFiles)
	}
	if len(res.Matches) != 1 {
		t.Fatalf("expected 1 match, got %d: %+v", len(res.Matches), res.Matches)
	}
	want := Match{
		File:       "src/client.ts",
		Line:       3,
		Column:     25,
		Snippet:    "const client = init('sdk-key');\nexport const on = client.boolVariation('OLD_FLAG', false);",
		MatchType:  MatchSDKCall,
		Confidence: ConfidenceHigh,
		Language:   "typescript",
	}
	if res.Matches[0] != want {
		t.Fatalf("match = %+v\nwant    %+v", res.Matches[0], want)
	}
	if res.FlagKey != "OLD_FLAG" || res.Repo != "web" || res.Provider != "launchdarkly" {
		t.Fatalf("unexpected header fields: %+v", res)
	}
}

func TestScan_WeakLiteral(t *testing.T) {
	root := writeTree(t, map[string]string{"app/settings.py": "x = \"OLD_FLAG\"\n"})

	res := mustScan(t, root, "OLD_FLAG", Options{})
	if len(res.Matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(res.Matches))
	}
	m := res.Matches[0]
	if m.MatchType != MatchStringLiteral || m.Confidence != ConfidenceLow {
		t.Fatalf("got (%s,%s), want (string_literal,low)", m.MatchType, m.Confidence)
	}
	if m.Line != 1 || m.Column != 4 || m.Language != "python" {
		t.Fatalf("unexpected position/language: %+v", m)
	}
}

func TestScan_IgnoredDirectoriesAreNeverVisited(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.go":                   "package main\n",
		"vendor/lib/flags.go":       "package lib\nconst k = \"OLD_FLAG\"\n",
		"node_modules/pkg/index.js": "module.exports = 'OLD_FLAG';\n",
		"build/out.js":              "var k = 'OLD_FLAG';\n",
		".git/hooks/pre-commit.py":  "FLAG = 'OLD_FLAG'\n",
	})

	res := mustScan(t, root, "OLD_FLAG", Options{})
	if len(res.Matches) != 0 {
		t.Fatalf("expected no matches, got %+v", res.Matches)
	}
	if res.ScannedFiles != 1 || res.SkippedFiles != 0 {
		t.Fatalf("scanned/skipped = %d/%d, want 1/0", res.ScannedFiles, res.SkippedFiles)
	}
}

func TestScan_RootNamedLikeIgnoredDirIsStillScanned(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "build")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "a.py"), []byte("k = 'OLD_FLAG'\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	res := mustScan(t, root, "OLD_FLAG", Options{})
	if res.TotalMatches != 1 {
		t.Fatalf("expected 1 match, got %d", res.TotalMatches)
	}
	if res.Repo != "build" {
		t.Fatalf("default repo = %q, want root base name", res.Repo)
	}
}

func TestScan_UnknownExtensionIsSkipped(t *testing.T) {
	root := writeTree(t, map[string]string{
		"README.md": "Remove OLD_FLAG after launch.\n",
		"app.py":    "print('hi')\n",
	})

	res := mustScan(t, root, "OLD_FLAG", Options{})
	if len(res.Matches) != 0 {
		t.Fatalf("expected no matches, got %+v", res.Matches)
	}
	if res.ScannedFiles != 1 || res.SkippedFiles != 1 {
		t.Fatalf("scanned/skipped = %d/%d, want 1/1", res.ScannedFiles, res.SkippedFiles)
	}
}

func TestScan_SizeCeiling(t *testing.T) {
	big := strings.Repeat("var k = 'OLD_FLAG';\n", 10)
	root := writeTree(t, map[string]string{
		"big.js":   big,
		"small.js": "var k = 'OLD_FLAG';\n",
	})

	res := mustScan(t, root, "OLD_FLAG", Options{MaxFileSize: 64})
	if res.ScannedFiles != 1 || res.SkippedFiles != 1 {
		t.Fatalf("scanned/skipped = %d/%d, want 1/1", res.ScannedFiles, res.SkippedFiles)
	}
	for _, m := range res.Matches {
		if m.File == "big.js" {
			t.Fatalf("oversized file produced a match: %+v", m)
		}
	}
}

func TestScan_BinaryContentIsSkipped(t *testing.T) {
	root := writeTree(t, map[string]string{
		"blob.js": "var k = 'OLD_FLAG';\x00\x00\x00\x01",
	})

	res := mustScan(t, root, "OLD_FLAG", Options{})
	if res.ScannedFiles != 0 || res.SkippedFiles != 1 || res.TotalMatches != 0 {
		t.Fatalf("got scanned=%d skipped=%d matches=%d, want 0/1/0", res.ScannedFiles, res.SkippedFiles, res.TotalMatches)
	}
}

func TestScan_UnreadableFileIsSkipped(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read files regardless of mode")
	}
	root := writeTree(t, map[string]string{
		"locked.py": "k = 'OLD_FLAG'\n",
		"open.py":   "k = 'OLD_FLAG'\n",
	})
	locked := filepath.Join(root, "locked.py")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Skipf("chmod not supported: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o644) })

	res := mustScan(t, root, "OLD_FLAG", Options{})
	if res.ScannedFiles != 1 || res.SkippedFiles != 1 || res.TotalMatches != 1 {
		t.Fatalf("got scanned=%d skipped=%d matches=%d, want 1/1/1", res.ScannedFiles, res.SkippedFiles, res.TotalMatches)
	}
}

func TestScan_SymlinksAreNotCounted(t *testing.T) {
	root := writeTree(t, map[string]string{"real.py": "k = 'OLD_FLAG'\n"})
	if err := os.Symlink(filepath.Join(root, "real.py"), filepath.Join(root, "link.py")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	res := mustScan(t, root, "OLD_FLAG", Options{})
	if res.ScannedFiles != 1 || res.SkippedFiles != 0 || res.TotalMatches != 1 {
		t.Fatalf("got scanned=%d skipped=%d matches=%d, want 1/0/1", res.ScannedFiles, res.SkippedFiles, res.TotalMatches)
	}
}

func TestScan_OneMatchPerLine(t *testing.T) {
	root := writeTree(t, map[string]string{
		"flags.go": "package flags\n\nvar v, _ = client.BoolVariation(\"OLD_FLAG\", ctx, false) // \"OLD_FLAG\" \"OLD_FLAG\"\n",
	})

	res := mustScan(t, root, "OLD_FLAG", Options{})
	if len(res.Matches) != 1 {
		t.Fatalf("expected exactly 1 match, got %d", len(res.Matches))
	}
	if res.Matches[0].Column != 18 || res.Matches[0].MatchType != MatchSDKCall {
		t.Fatalf("expected accessor pattern to win, got %+v", res.Matches[0])
	}
}

func TestScan_TestPathNeverHigh(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/client.ts":             tsClient,
		"src/__tests__/client.ts":   tsClient,
		"src/client.test.ts":        tsClient,
		"test/integration/flags.ts": tsClient,
	})

	res := mustScan(t, root, "OLD_FLAG", Options{})
	if len(res.Matches) != 4 {
		t.Fatalf("expected 4 matches, got %d", len(res.Matches))
	}
	for _, m := range res.Matches {
		want := ConfidenceMedium
		if m.File == "src/client.ts" {
			want = ConfidenceHigh
		}
		if m.Confidence != want {
			t.Errorf("%s: confidence = %s, want %s", m.File, m.Confidence, want)
		}
	}
}

func TestScan_OrderFollowsTraversalThenLine(t *testing.T) {
	root := writeTree(t, map[string]string{
		"z.py":         "k = 'OLD_FLAG'\n",
		"b/second.py":  "pass\nk = 'OLD_FLAG'\n",
		"a/first.py":   "k = 'OLD_FLAG'\npass\nk = 'OLD_FLAG'\n",
		"a/nothing.py": "pass\n",
	})

	res := mustScan(t, root, "OLD_FLAG", Options{Workers: 4})

	type pos struct {
		file string
		line int
	}
	var got []pos
	for _, m := range res.Matches {
		got = append(got, pos{m.File, m.Line})
	}
	want := []pos{{"a/first.py", 1}, {"a/first.py", 3}, {"b/second.py", 2}, {"z.py", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestScan_DeterministicAcrossWorkerCounts(t *testing.T) {
	files := map[string]string{}
	for i := 0; i < 40; i++ {
		dir := string(rune('a' + i%5))
		name := dir + "/f" + strings.Repeat("x", i%7) + string(rune('a'+i%26)) + ".py"
		files[name] = "import ldclient\nv = ldclient.get().variation('OLD_FLAG', ctx, False)\nx = 'OLD_FLAG'\n"
	}
	files["docs/notes.md"] = "OLD_FLAG"
	root := writeTree(t, files)

	first := mustScan(t, root, "OLD_FLAG", Options{Workers: 1})
	second := mustScan(t, root, "OLD_FLAG", Options{Workers: 8})
	first.ScanDurationMs, second.ScanDurationMs = 0, 0

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("scans differ between worker counts")
	}
}

func TestScan_Conservation(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.py":              "k = 'OLD_FLAG'\n",
		"b.txt":             "OLD_FLAG\n",
		"c.go":              "package c\n",
		"d/e.rb":            "puts 'OLD_FLAG'\n",
		"d/f.json":          "{}\n",
		"big.ts":            strings.Repeat("x", 200),
		"node_modules/x.js": "'OLD_FLAG'\n",
	})

	res := mustScan(t, root, "OLD_FLAG", Options{MaxFileSize: 100})
	// visited outside ignored dirs: a.py b.txt c.go d/e.rb d/f.json big.ts
	if got := res.ScannedFiles + res.SkippedFiles; got != 6 {
		t.Fatalf("scanned+skipped = %d, want 6", got)
	}
	if res.ScannedFiles != 3 {
		t.Fatalf("scanned = %d, want 3", res.ScannedFiles)
	}
}

func TestScan_ZeroMatchesIsNotAnError(t *testing.T) {
	root := writeTree(t, map[string]string{"a.py": "print('hello')\n"})

	res := mustScan(t, root, "OLD_FLAG", Options{})
	if res.Matches == nil {
		t.Fatalf("Matches must be an empty slice, not nil")
	}
	if res.TotalMatches != 0 || res.ScannedFiles != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestScan_Exclude(t *testing.T) {
	root := writeTree(t, map[string]string{
		"generated/api.ts": "const k = 'OLD_FLAG';\n",
		"src/x.gen.ts":     "const k = 'OLD_FLAG';\n",
		"src/x.ts":         "const k = 'OLD_FLAG';\n",
	})

	res := mustScan(t, root, "OLD_FLAG", Options{Exclude: []string{"generated", "**/*.gen.ts"}})
	if res.TotalMatches != 1 || res.Matches[0].File != "src/x.ts" {
		t.Fatalf("expected only src/x.ts, got %+v", res.Matches)
	}
	if res.ScannedFiles != 1 || res.SkippedFiles != 0 {
		t.Fatalf("excluded files must not be counted, got %d/%d", res.ScannedFiles, res.SkippedFiles)
	}
}

func TestScan_InvalidExcludePattern(t *testing.T) {
	root := writeTree(t, map[string]string{"a.py": ""})
	if _, err := Scan(context.Background(), root, "OLD_FLAG", Options{Exclude: []string{"[a-"}}); err == nil {
		t.Fatalf("expected error for invalid pattern")
	}
}

func TestScan_CustomIgnoreDirs(t *testing.T) {
	root := writeTree(t, map[string]string{
		"vendor/a.py":   "k = 'OLD_FLAG'\n",
		"fixtures/b.py": "k = 'OLD_FLAG'\n",
	})

	res := mustScan(t, root, "OLD_FLAG", Options{IgnoreDirs: []string{"fixtures"}})
	if res.TotalMatches != 1 || res.Matches[0].File != "vendor/a.py" {
		t.Fatalf("expected only vendor/a.py, got %+v", res.Matches)
	}
}

func TestScan_FatalErrors(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.py")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	tcs := []struct {
		name string
		root string
		key  string
		want error
	}{
		{"missing root", filepath.Join(dir, "nope"), "OLD_FLAG", ErrRootNotFound},
		{"root is a file", file, "OLD_FLAG", ErrRootNotDir},
		{"empty key", dir, "  ", ErrEmptyFlagKey},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Scan(context.Background(), tc.root, tc.key, Options{})
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if res != nil {
				t.Fatalf("expected nil result on fatal error")
			}
		})
	}
}

func TestScan_ContextCancelled(t *testing.T) {
	root := writeTree(t, map[string]string{"a.py": "k = 'OLD_FLAG'\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Scan(ctx, root, "OLD_FLAG", Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestScan_DefaultProvider(t *testing.T) {
	root := writeTree(t, map[string]string{"a.py": ""})
	res := mustScan(t, root, "OLD_FLAG", Options{})
	if res.Provider != DefaultProvider {
		t.Fatalf("provider = %q, want %q", res.Provider, DefaultProvider)
	}
}

func TestResultSummaries(t *testing.T) {
	res := &Result{Matches: []Match{
		{File: "a.ts", MatchType: MatchSDKCall, Confidence: ConfidenceHigh},
		{File: "a.ts", MatchType: MatchStringLiteral, Confidence: ConfidenceMedium},
		{File: "b.py", MatchType: MatchStringLiteral, Confidence: ConfidenceLow},
	}}

	if got := res.CountByConfidence(); got[ConfidenceHigh] != 1 || got[ConfidenceMedium] != 1 || got[ConfidenceLow] != 1 {
		t.Fatalf("CountByConfidence = %v", got)
	}
	if got := res.CountByType(); got[MatchStringLiteral] != 2 || got[MatchSDKCall] != 1 {
		t.Fatalf("CountByType = %v", got)
	}
	if got := res.Files(); !reflect.DeepEqual(got, []string{"a.ts", "b.py"}) {
		t.Fatalf("Files = %v", got)
	}

	var nilRes *Result
	if len(nilRes.CountByConfidence()) != 0 || nilRes.Files() != nil {
		t.Fatalf("nil result summaries must be empty")
	}
}
