package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
)

// MatchRow mirrors scanner.Match. The ui package cannot import the scanner
// because the scanner logs through internal/logging, which imports ui.
type MatchRow struct {
	File       string
	Line       int
	Column     int
	MatchType  string
	Confidence string
	Language   string
	Snippet    string
}

// ScanSummary mirrors scanner.Result plus its derived counts.
type ScanSummary struct {
	FlagKey      string
	Provider     string
	Repo         string
	Branch       string
	TotalMatches int
	ScannedFiles int
	SkippedFiles int
	DurationMs   int64
	High         int
	Medium       int
	Low          int
	Matches      []MatchRow
}

// ScanUI renders the scan command.
type ScanUI struct {
	writer   io.Writer
	quiet    bool
	workflow *Workflow

	resolveIdx, scanIdx, writeIdx int
}

// NewScanUI creates a new UI handler for the scan command
func NewScanUI(w io.Writer, quiet bool) *ScanUI {
	return &ScanUI{writer: w, quiet: quiet}
}

// StartWorkflow sets up the three scan steps and starts the spinner.
func (s *ScanUI) StartWorkflow(animate bool) {
	if s.quiet {
		return
	}
	s.workflow = NewWorkflow(s.writer, "")
	s.workflow.SetAnimated(animate)
	s.resolveIdx = s.workflow.AddTask("Resolving repository")
	s.scanIdx = s.workflow.AddTask("Scanning files")
	s.writeIdx = s.workflow.AddTask("Writing output")
	s.workflow.Start()
}

func (s *ScanUI) active() bool { return !s.quiet && s.workflow != nil }

// StartResolving marks repository resolution as running
func (s *ScanUI) StartResolving(path string) {
	if s.active() {
		s.workflow.StartTask(s.resolveIdx, Dim.Render(path))
	}
}

// CompleteResolving records the resolved repository label
func (s *ScanUI) CompleteResolving(label, branch string) {
	if !s.active() {
		return
	}
	details := label
	if branch != "" {
		details += " @ " + branch
	}
	s.workflow.CompleteTask(s.resolveIdx, details)
}

// StartScanning marks the file scan as running
func (s *ScanUI) StartScanning(flagKey string) {
	if s.active() {
		s.workflow.StartTask(s.scanIdx, Dim.Render("flag "+flagKey))
	}
}

// CompleteScanning records scan totals
func (s *ScanUI) CompleteScanning(sum ScanSummary) {
	if s.active() {
		s.workflow.CompleteTask(s.scanIdx, fmt.Sprintf("%d match(es) in %d file(s)", sum.TotalMatches, sum.ScannedFiles))
	}
}

// FailScanning marks the scan as failed and skips writing
func (s *ScanUI) FailScanning(err error) {
	if !s.active() {
		return
	}
	s.workflow.FailTask(s.scanIdx, err.Error())
	s.workflow.SkipTask(s.writeIdx, "scan failed")
}

// StartWriting marks output writing as running
func (s *ScanUI) StartWriting(path string) {
	if s.active() {
		s.workflow.StartTask(s.writeIdx, Dim.Render(path))
	}
}

// CompleteWriting records the written file
func (s *ScanUI) CompleteWriting(path, format string) {
	if s.active() {
		s.workflow.CompleteTask(s.writeIdx, fmt.Sprintf("%s (%s)", path, format))
	}
}

// FailWriting marks output writing as failed
func (s *ScanUI) FailWriting(err error) {
	if s.active() {
		s.workflow.FailTask(s.writeIdx, err.Error())
	}
}

// SkipWriting marks output writing as skipped
func (s *ScanUI) SkipWriting(reason string) {
	if s.active() {
		s.workflow.SkipTask(s.writeIdx, reason)
	}
}

// FinishWorkflow completes the workflow display
func (s *ScanUI) FinishWorkflow() {
	if s.active() {
		s.workflow.Stop()
	}
}

// PrintSummary prints the result box.
func (s *ScanUI) PrintSummary(sum ScanSummary, outputPath string) {
	if s.quiet {
		return
	}
	fmt.Fprintln(s.writer)
	fmt.Fprintln(s.writer, RenderScanSummary(sum, outputPath))
}

// RenderScanSummary renders the boxed summary of one scan.
func RenderScanSummary(sum ScanSummary, outputPath string) string {
	var b strings.Builder
	b.WriteString(Success.Bold(true).Render("Scan Complete"))
	b.WriteString("\n\n")

	rows := [][2]string{
		{"Flag", Highlight.Render(sum.FlagKey)},
		{"Provider", sum.Provider},
		{"Repository", sum.Repo},
	}
	if sum.Branch != "" {
		rows = append(rows, [2]string{"Branch", sum.Branch})
	}
	rows = append(rows,
		[2]string{"Matches", fmt.Sprintf("%d", sum.TotalMatches)},
		[2]string{"Confidence", fmt.Sprintf("%s high · %s medium · %s low",
			ConfidenceStyle("high").Render(fmt.Sprint(sum.High)),
			ConfidenceStyle("medium").Render(fmt.Sprint(sum.Medium)),
			ConfidenceStyle("low").Render(fmt.Sprint(sum.Low)))},
		[2]string{"Files scanned", fmt.Sprintf("%d", sum.ScannedFiles)},
		[2]string{"Files skipped", fmt.Sprintf("%d", sum.SkippedFiles)},
		[2]string{"Duration", (time.Duration(sum.DurationMs) * time.Millisecond).String()},
	)
	if outputPath != "" {
		rows = append(rows, [2]string{"Output", outputPath})
	}
	for i, r := range rows {
		b.WriteString(FormatKeyValue(r[0], r[1]))
		if i < len(rows)-1 {
			b.WriteString("\n")
		}
	}

	box := SuccessBox
	if sum.TotalMatches > 0 && sum.High < sum.TotalMatches {
		box = HighlightBox
	}
	return box.Render(b.String())
}

// PrintMatches prints the matches grouped by file. limit <= 0 prints all.
func (s *ScanUI) PrintMatches(sum ScanSummary, limit int) {
	if s.quiet || len(sum.Matches) == 0 {
		return
	}
	fmt.Fprintln(s.writer)
	fmt.Fprintln(s.writer, RenderMatches(sum.Matches, limit))
}

// RenderMatches renders one table per file, in match order.
func RenderMatches(matches []MatchRow, limit int) string {
	shown := matches
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	var b strings.Builder
	var file string
	var rows [][]string
	var levels []string
	flush := func() {
		if file == "" {
			return
		}
		b.WriteString(SectionHeader.Render(file))
		b.WriteString("\n")
		b.WriteString(matchTable(rows, levels))
		b.WriteString("\n")
	}
	for _, m := range shown {
		if m.File != file {
			flush()
			file, rows, levels = m.File, nil, nil
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d:%d", m.Line, m.Column),
			m.MatchType,
			m.Confidence,
			firstSnippetLine(m),
		})
		levels = append(levels, m.Confidence)
	}
	flush()

	if hidden := len(matches) - len(shown); hidden > 0 {
		b.WriteString(Muted.Render(fmt.Sprintf("… %d more match(es) not shown", hidden)))
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func matchTable(rows [][]string, levels []string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorMuted)).
		Headers("LINE:COL", "TYPE", "CONFIDENCE", "CODE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			st := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return st.Foreground(ColorSecondary).Bold(true)
			case col == 2 && row >= 0 && row < len(levels):
				return st.Inherit(ConfidenceStyle(levels[row]).style)
			case col == 3:
				return st.Foreground(ColorTextDim)
			}
			return st
		})
	return t.String()
}

// firstSnippetLine picks the matched line out of the three-line snippet.
func firstSnippetLine(m MatchRow) string {
	lines := strings.Split(m.Snippet, "\n")
	idx := 0
	if m.Line > 1 && len(lines) > 1 {
		idx = 1
	}
	line := []rune(strings.TrimSpace(lines[idx]))
	const maxLen = 72
	if len(line) > maxLen {
		return string(line[:maxLen-1]) + "…"
	}
	return string(line)
}

// PrintNoMatches prints a notice when the flag is not referenced.
func (s *ScanUI) PrintNoMatches(flagKey string) {
	if s.quiet {
		return
	}
	msg := fmt.Sprintf("No references to %q found; the flag can be archived in the provider.", flagKey)
	fmt.Fprintln(s.writer, FormatStatus("warning", Warning.Render(msg)))
}

// LogStep prints a one-line status message outside the workflow.
func (s *ScanUI) LogStep(status, message string) {
	if s.quiet {
		return
	}
	fmt.Fprintln(s.writer, FormatStatus(status, message))
}

// PlainSummary is the single unstyled line printed by --plain-summary.
func PlainSummary(sum ScanSummary) string {
	return fmt.Sprintf("Flag: %s | Repo: %s | Matches: %d (high %d, medium %d, low %d) | Files: %d scanned, %d skipped",
		sum.FlagKey, sum.Repo, sum.TotalMatches, sum.High, sum.Medium, sum.Low, sum.ScannedFiles, sum.SkippedFiles)
}
