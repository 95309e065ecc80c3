package ui

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// AuditRow mirrors audit.FlagSummary.
type AuditRow struct {
	Key          string
	Status       string
	TotalMatches int
	High         int
	Medium       int
	Low          int
	Files        int
}

// AuditSummary mirrors audit.Report without the per-flag results.
type AuditSummary struct {
	Provider   string
	Repo       string
	DurationMs int64
	Flags      []AuditRow
}

var auditSections = []struct {
	status string
	title  string
	hint   string
}{
	{"unreferenced", "Unreferenced", "no references left; archive in the provider"},
	{"removable", "Removable", "only high-confidence SDK calls; safe for automated cleanup"},
	{"review", "Needs review", "medium or low confidence references present"},
}

// AuditUI renders the audit command.
type AuditUI struct {
	writer io.Writer
	quiet  bool
}

// NewAuditUI creates a new UI handler for the audit command
func NewAuditUI(w io.Writer, quiet bool) *AuditUI {
	return &AuditUI{writer: w, quiet: quiet}
}

// PrintReport renders the audit summary box.
func (a *AuditUI) PrintReport(sum AuditSummary) {
	if a.quiet {
		return
	}
	fmt.Fprintln(a.writer)
	fmt.Fprintln(a.writer, RenderAuditSummary(sum))
}

// RenderAuditSummary renders the audit header and one section per status.
func RenderAuditSummary(sum AuditSummary) string {
	var sb strings.Builder

	sb.WriteString(Success.Bold(true).Render("Flag Audit Report"))
	sb.WriteString("\n\n")
	sb.WriteString(FormatKeyValue("Repository", sum.Repo))
	sb.WriteString("\n")
	sb.WriteString(FormatKeyValue("Provider", sum.Provider))
	sb.WriteString("\n")
	sb.WriteString(FormatKeyValue("Flags", fmt.Sprintf("%d", len(sum.Flags))))
	sb.WriteString("\n")
	sb.WriteString(FormatKeyValue("Duration", (time.Duration(sum.DurationMs) * time.Millisecond).String()))

	for _, sec := range auditSections {
		var rows []AuditRow
		for _, f := range sum.Flags {
			if f.Status == sec.status {
				rows = append(rows, f)
			}
		}
		if len(rows) == 0 {
			continue
		}
		sb.WriteString("\n\n")
		sb.WriteString(StatusStyle(sec.status).Render(fmt.Sprintf("▼ %s (%d)", sec.title, len(rows))))
		sb.WriteString(" ")
		sb.WriteString(Muted.Render(sec.hint))
		for _, r := range rows {
			sb.WriteString("\n  ")
			sb.WriteString(auditMark(r.Status))
			sb.WriteString(" ")
			sb.WriteString(Highlight.Render(r.Key))
			if r.TotalMatches > 0 {
				sb.WriteString(Dim.Render(fmt.Sprintf("  %d match(es) in %d file(s) · %d high · %d medium · %d low",
					r.TotalMatches, r.Files, r.High, r.Medium, r.Low)))
			}
		}
	}

	box := SuccessBox
	for _, f := range sum.Flags {
		if f.Status == "review" {
			box = HighlightBox
			break
		}
	}
	return box.Render(sb.String())
}

func auditMark(status string) string {
	switch status {
	case "unreferenced":
		return GetInfoMark()
	case "removable":
		return GetCheckMark()
	default:
		return GetWarnMark()
	}
}

// PrintSimpleReport prints one unstyled line per flag.
func (a *AuditUI) PrintSimpleReport(sum AuditSummary) {
	for _, f := range sum.Flags {
		fmt.Fprintf(a.writer, "Flag: %s | Status: %s | Matches: %d (high %d, medium %d, low %d) | Files: %d\n",
			f.Key, f.Status, f.TotalMatches, f.High, f.Medium, f.Low, f.Files)
	}
}
