package logging

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/idlab-discover/FlagScan-cli/internal/ui"
)

func TestLogger_EnabledAndSetWriter(t *testing.T) {
	var l Logger
	if l.Enabled() {
		t.Fatalf("expected disabled when Writer is nil")
	}

	var buf bytes.Buffer
	l.SetWriter(&buf)
	if !l.Enabled() {
		t.Fatalf("expected enabled after setting Writer")
	}

	l.SetWriter(nil)
	if l.Enabled() {
		t.Fatalf("expected disabled after clearing Writer")
	}
}

func TestLogger_Logf_WritesPrefixFlagAndMessage(t *testing.T) {
	ui.Init(true) // disable ANSI color for stable assertions
	t.Cleanup(func() { ui.Init(false) })

	var buf bytes.Buffer
	l := Logger{Writer: &buf, PrefixText: "X:", PrefixColor: ui.FgGreen}
	l.Logf("  new-checkout  ", "skipped %d file(s)", 3)

	out := buf.String()
	if out != "X: flag=new-checkout skipped 3 file(s)\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestLogger_Logf_EmptyFlag_UsesNone(t *testing.T) {
	ui.Init(true)
	t.Cleanup(func() { ui.Init(false) })

	var buf bytes.Buffer
	l := Logger{Writer: &buf, PrefixText: "X:"}
	l.Logf("   ", "x")

	if !strings.Contains(buf.String(), "flag=(none)") {
		t.Fatalf("expected placeholder flag, got %q", buf.String())
	}
}

func TestLogger_Logf_DefaultPrefix(t *testing.T) {
	var buf bytes.Buffer
	l := Logger{Writer: &buf}
	l.Logf("k", "x")

	if !strings.HasPrefix(buf.String(), "Log:") {
		t.Fatalf("expected default prefix, got %q", buf.String())
	}
}

func TestLogger_Logf_OmitFlag(t *testing.T) {
	var buf bytes.Buffer
	l := Logger{Writer: &buf, PrefixText: "X:", OmitFlag: true}
	l.Logf("k", "x")

	if out := buf.String(); out != "X: x\n" {
		t.Fatalf("output = %q, want %q", out, "X: x\\n")
	}
}

func TestLogger_Logf_NilReceiver_NoPanic(t *testing.T) {
	var l *Logger
	l.Logf("k", "x")
	if l.Enabled() {
		t.Fatalf("nil logger must report disabled")
	}
}

func TestLogger_Logf_ConcurrentWriters(t *testing.T) {
	var buf bytes.Buffer
	l := Logger{Writer: &buf, PrefixText: "X:", OmitFlag: true}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Logf("", "line")
		}()
	}
	wg.Wait()

	if got := strings.Count(buf.String(), "X: line\n"); got != 20 {
		t.Fatalf("expected 20 intact lines, got %d", got)
	}
}
