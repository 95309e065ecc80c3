package logging

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/idlab-discover/FlagScan-cli/internal/ui"
)

// Logger is a tiny opt-in logger used across library packages.
// When Writer is nil, logging is disabled.
//
// The output format is:
//
//	<ColoredPrefix> flag=<flagKey> <formattedMessage>\n
//
// where <flagKey> is trimmed and defaults to "(none)".
type Logger struct {
	Writer io.Writer

	PrefixText  string
	PrefixColor string

	// OmitFlag controls whether the flag key field is written.
	OmitFlag bool

	mu sync.Mutex
}

func (l *Logger) SetWriter(w io.Writer) {
	l.mu.Lock()
	l.Writer = w
	l.mu.Unlock()
}

func (l *Logger) Enabled() bool {
	if l == nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Writer != nil
}

// Logf writes one line. Safe for concurrent use; scanner workers log
// skipped files from several goroutines.
func (l *Logger) Logf(flagKey string, format string, args ...any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Writer == nil {
		return
	}

	prefix := l.PrefixText
	if prefix == "" {
		prefix = "Log:"
	}
	if l.PrefixColor != "" {
		prefix = ui.Color(prefix, l.PrefixColor)
	}
	msg := fmt.Sprintf(format, args...)
	if l.OmitFlag {
		fmt.Fprintf(l.Writer, "%s %s\n", prefix, msg)
		return
	}

	k := strings.TrimSpace(flagKey)
	if k == "" {
		k = "(none)"
	}
	fmt.Fprintf(l.Writer, "%s flag=%s %s\n", prefix, k, msg)
}
