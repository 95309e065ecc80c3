package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestColorAppliesANSICodes(t *testing.T) {
	got := Color("hello", FgGreen)
	want := FgGreen + "hello" + Reset
	if got != want {
		t.Fatalf("Color() = %q, want %q", got, want)
	}
}

func TestColorDisabled(t *testing.T) {
	Init(true)
	t.Cleanup(func() { Init(false) })

	if got := Color("hello", FgGreen); got != "hello" {
		t.Fatalf("Color() with color disabled = %q", got)
	}
}

func TestColorWithoutCode(t *testing.T) {
	if got := Color("hello", ""); got != "hello" {
		t.Fatalf("Color() without code = %q", got)
	}
}

func sampleScan() ScanSummary {
	return ScanSummary{
		FlagKey:      "OLD_FLAG",
		Provider:     "launchdarkly",
		Repo:         "acme/web",
		Branch:       "main",
		TotalMatches: 3,
		ScannedFiles: 12,
		SkippedFiles: 2,
		DurationMs:   42,
		High:         1,
		Medium:       1,
		Low:          1,
		Matches: []MatchRow{
			{File: "src/client.ts", Line: 3, Column: 25, MatchType: "sdk_call", Confidence: "high", Language: "typescript",
				Snippet: "const client = init('sdk-key');\nexport const on = client.boolVariation('OLD_FLAG', false);\n"},
			{File: "src/client.ts", Line: 9, Column: 4, MatchType: "string_literal", Confidence: "medium", Language: "typescript",
				Snippet: "a\nx = 'OLD_FLAG'\nb"},
			{File: "app/settings.py", Line: 1, Column: 4, MatchType: "string_literal", Confidence: "low", Language: "python",
				Snippet: "x = \"OLD_FLAG\""},
		},
	}
}

func TestScanUI_PrintSummary(t *testing.T) {
	tests := []struct {
		name  string
		quiet bool
		want  []string
	}{
		{"standard", false, []string{"Scan Complete", "OLD_FLAG", "acme/web", "main", "Files scanned", "12", "42ms", "out/result.json"}},
		{"quiet", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewScanUI(&buf, tt.quiet).PrintSummary(sampleScan(), "out/result.json")

			out := buf.String()
			if tt.quiet {
				if out != "" {
					t.Fatalf("expected no output in quiet mode, got %q", out)
				}
				return
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestRenderMatches_GroupsByFile(t *testing.T) {
	out := RenderMatches(sampleScan().Matches, 0)

	first := strings.Index(out, "src/client.ts")
	second := strings.Index(out, "app/settings.py")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("expected file sections in match order:\n%s", out)
	}
	if strings.Count(out, "src/client.ts") != 1 {
		t.Fatalf("expected one section per file:\n%s", out)
	}
	for _, w := range []string{"3:25", "9:4", "sdk_call", "client.boolVariation('OLD_FLAG', false);", "x = 'OLD_FLAG'"} {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q:\n%s", w, out)
		}
	}
}

func TestRenderMatches_Limit(t *testing.T) {
	out := RenderMatches(sampleScan().Matches, 2)
	if strings.Contains(out, "app/settings.py") {
		t.Fatalf("limited output must not show the third match:\n%s", out)
	}
	if !strings.Contains(out, "1 more match(es) not shown") {
		t.Fatalf("expected hidden count:\n%s", out)
	}
}

func TestFirstSnippetLine(t *testing.T) {
	tests := []struct {
		m    MatchRow
		want string
	}{
		{MatchRow{Line: 1, Snippet: "first\nsecond"}, "first"},
		{MatchRow{Line: 5, Snippet: "before\n   match  \nafter"}, "match"},
		{MatchRow{Line: 5, Snippet: "only"}, "only"},
		{MatchRow{Line: 1, Snippet: strings.Repeat("é", 100)}, strings.Repeat("é", 71) + "…"},
	}
	for _, tt := range tests {
		if got := firstSnippetLine(tt.m); got != tt.want {
			t.Errorf("firstSnippetLine(%q) = %q, want %q", tt.m.Snippet, got, tt.want)
		}
	}
}

func TestPlainSummary(t *testing.T) {
	got := PlainSummary(sampleScan())
	want := "Flag: OLD_FLAG | Repo: acme/web | Matches: 3 (high 1, medium 1, low 1) | Files: 12 scanned, 2 skipped"
	if got != want {
		t.Fatalf("PlainSummary = %q\nwant %q", got, want)
	}
}

func TestScanUI_PrintNoMatches(t *testing.T) {
	var buf bytes.Buffer
	NewScanUI(&buf, false).PrintNoMatches("dead-flag")
	if !strings.Contains(buf.String(), `No references to "dead-flag" found`) {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestAuditUI_PrintReport(t *testing.T) {
	sum := AuditSummary{
		Provider: "launchdarkly",
		Repo:     "web",
		Flags: []AuditRow{
			{Key: "flag-a", Status: "removable", TotalMatches: 1, High: 1, Files: 1},
			{Key: "flag-b", Status: "review", TotalMatches: 2, High: 1, Low: 1, Files: 2},
			{Key: "flag-c", Status: "unreferenced"},
		},
	}

	var buf bytes.Buffer
	NewAuditUI(&buf, false).PrintReport(sum)
	out := buf.String()

	for _, w := range []string{"Flag Audit Report", "Unreferenced (1)", "Removable (1)", "Needs review (1)", "flag-a", "flag-b", "flag-c", "2 match(es) in 2 file(s)"} {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q:\n%s", w, out)
		}
	}
	if strings.Index(out, "Unreferenced") > strings.Index(out, "Needs review") {
		t.Fatalf("sections out of order:\n%s", out)
	}

	buf.Reset()
	NewAuditUI(&buf, true).PrintReport(sum)
	if buf.Len() != 0 {
		t.Fatalf("expected no output in quiet mode")
	}
}

func TestAuditUI_PrintSimpleReport(t *testing.T) {
	var buf bytes.Buffer
	NewAuditUI(&buf, false).PrintSimpleReport(AuditSummary{Flags: []AuditRow{
		{Key: "flag-b", Status: "review", TotalMatches: 2, High: 1, Low: 1, Files: 2},
	}})
	want := "Flag: flag-b | Status: review | Matches: 2 (high 1, medium 0, low 1) | Files: 2\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestWorkflow_FinalRender(t *testing.T) {
	var buf bytes.Buffer
	wf := NewWorkflow(&buf, "")
	wf.SetAnimated(false)
	resolve := wf.AddTask("Resolving repository")
	scan := wf.AddTask("Scanning files")
	write := wf.AddTask("Writing output")

	wf.Start()
	wf.StartTask(resolve, "path")
	wf.CompleteTask(resolve, "acme/web")
	wf.StartTask(scan, "")
	wf.FailTask(scan, "boom")
	wf.SkipTask(write, "scan failed")
	wf.Stop()

	out := buf.String()
	for _, w := range []string{"Resolving repository", "→ acme/web", "→ boom", "→ scan failed"} {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q:\n%s", w, out)
		}
	}
	if strings.Count(out, "\n") != 3 {
		t.Fatalf("non-animated workflow should print exactly one frame:\n%q", out)
	}

	tasks := wf.Tasks()
	if tasks[resolve].Status != TaskDone || tasks[scan].Status != TaskFailed || tasks[write].Status != TaskSkipped {
		t.Fatalf("unexpected task states: %+v", tasks)
	}

	// Second Stop is a no-op.
	wf.Stop()
	if strings.Count(buf.String(), "\n") != 3 {
		t.Fatalf("Stop must be idempotent")
	}
}

func TestWorkflow_OutOfRangeIndexIgnored(t *testing.T) {
	wf := NewWorkflow(&bytes.Buffer{}, "")
	wf.StartTask(3, "x")
	wf.CompleteTask(-1, "x")
	if len(wf.Tasks()) != 0 {
		t.Fatalf("expected no tasks")
	}
}

func TestProgressModel_VisibleWindow(t *testing.T) {
	steps := make([]string, 30)
	for i := range steps {
		steps[i] = "flag"
	}
	m := NewProgressModel(WithSteps(steps))

	m.current = 0
	if s, e := m.visibleWindow(); s != 0 || e != maxVisibleSteps {
		t.Fatalf("window at start = [%d,%d)", s, e)
	}
	m.current = 15
	if s, e := m.visibleWindow(); s != 15-maxVisibleSteps/2 || e-s != maxVisibleSteps {
		t.Fatalf("window in middle = [%d,%d)", s, e)
	}
	m.current = 29
	if s, e := m.visibleWindow(); e != 30 || e-s != maxVisibleSteps {
		t.Fatalf("window at end = [%d,%d)", s, e)
	}
}

func TestFlagSelector_Selection(t *testing.T) {
	m := newFlagSelector([]string{"flag-a", "flag-b", "other"})
	if got := m.Selected(); len(got) != 3 {
		t.Fatalf("all keys start selected, got %v", got)
	}

	m.query = "flag"
	m.refresh()
	if n := len(m.list.Items()); n != 2 {
		t.Fatalf("filter should leave 2 items, got %d", n)
	}

	m.selected["flag-b"] = false
	if got := m.Selected(); strings.Join(got, ",") != "flag-a,other" {
		t.Fatalf("Selected = %v", got)
	}
}

func TestRenderLanguages(t *testing.T) {
	out := RenderLanguages([]LanguageRow{
		{ID: "typescript", Extensions: []string{".ts", ".tsx"}, SDKImports: 1},
		{ID: "yaml", Extensions: []string{".yml", ".yaml"}},
	})
	for _, w := range []string{"LANGUAGE", "typescript", ".ts .tsx", "yes", "yaml", ".yml .yaml"} {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q:\n%s", w, out)
		}
	}
}
