package cmd

import (
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/viper"

	"github.com/idlab-discover/FlagScan-cli/internal/apperr"
	"github.com/idlab-discover/FlagScan-cli/internal/repoinfo"
	"github.com/idlab-discover/FlagScan-cli/internal/ui"
	"github.com/idlab-discover/FlagScan-cli/pkg/flagscan/audit"
	"github.com/idlab-discover/FlagScan-cli/pkg/flagscan/resultio"
	"github.com/idlab-discover/FlagScan-cli/pkg/flagscan/scanner"
)

// resolveLogLevel reads <command>.log-level and switches on debug logging
// for every library package when asked.
func resolveLogLevel(command string) (string, error) {
	level := strings.ToLower(strings.TrimSpace(viper.GetString(command + ".log-level")))
	if level == "" {
		level = "standard"
	}
	switch level {
	case "quiet", "standard":
	case "debug":
		scanner.SetLogger(os.Stderr)
		audit.SetLogger(os.Stderr)
		repoinfo.SetLogger(os.Stderr)
		resultio.SetLogger(os.Stderr)
	default:
		return "", apperr.Userf("invalid --log-level %q (expected quiet|standard|debug)", level)
	}
	return level, nil
}

// scanOptions builds scanner options from the <command>.* viper keys shared
// by scan and audit.
func scanOptions(command string, repo repoinfo.Info) (scanner.Options, error) {
	opts := scanner.Options{
		Provider: strings.TrimSpace(viper.GetString(command + ".provider")),
		Repo:     repo.Label(),
		Exclude:  cleanList(viper.GetStringSlice(command + ".exclude")),
		Workers:  viper.GetInt(command + ".workers"),
	}
	if opts.Provider == "" {
		opts.Provider = scanner.DefaultProvider
	}
	if dirs := cleanList(viper.GetStringSlice(command + ".ignore-dir")); len(dirs) > 0 {
		opts.IgnoreDirs = append(scanner.DefaultIgnoreDirs(), dirs...)
	}
	if kb := viper.GetInt64(command + ".max-file-size"); kb < 0 {
		return opts, apperr.Userf("invalid --max-file-size %d (expected a positive size in KiB)", kb)
	} else if kb > 0 {
		opts.MaxFileSize = kb * 1024
	}
	return opts, nil
}

// resolveOutputFormat validates the output flag pair before any work is done.
func resolveOutputFormat(path, format string) (string, error) {
	f, err := resultio.ResolveOutput(path, format)
	if err != nil {
		return "", apperr.User(err.Error())
	}
	return f, nil
}

func cleanList(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// isTerminal reports whether stdout is an interactive terminal, which
// decides whether spinners animate.
func isTerminal() bool {
	return term.IsTerminal(os.Stdout.Fd())
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

// toScanSummary converts a scanner result into the view model of the ui package.
func toScanSummary(res *scanner.Result, branch string) ui.ScanSummary {
	byConf := res.CountByConfidence()
	sum := ui.ScanSummary{
		FlagKey:      res.FlagKey,
		Provider:     res.Provider,
		Repo:         res.Repo,
		Branch:       branch,
		TotalMatches: res.TotalMatches,
		ScannedFiles: res.ScannedFiles,
		SkippedFiles: res.SkippedFiles,
		DurationMs:   res.ScanDurationMs,
		High:         byConf[scanner.ConfidenceHigh],
		Medium:       byConf[scanner.ConfidenceMedium],
		Low:          byConf[scanner.ConfidenceLow],
		Matches:      make([]ui.MatchRow, 0, len(res.Matches)),
	}
	for _, m := range res.Matches {
		sum.Matches = append(sum.Matches, ui.MatchRow{
			File:       m.File,
			Line:       m.Line,
			Column:     m.Column,
			MatchType:  string(m.MatchType),
			Confidence: string(m.Confidence),
			Language:   m.Language,
			Snippet:    m.Snippet,
		})
	}
	return sum
}

// toAuditSummary converts an audit report into the view model of the ui package.
func toAuditSummary(rep *audit.Report) ui.AuditSummary {
	sum := ui.AuditSummary{
		Provider:   rep.Provider,
		Repo:       rep.Repo,
		DurationMs: rep.DurationMs,
		Flags:      make([]ui.AuditRow, 0, len(rep.Flags)),
	}
	for _, f := range rep.Flags {
		sum.Flags = append(sum.Flags, ui.AuditRow{
			Key:          f.Key,
			Status:       string(f.Status),
			TotalMatches: f.TotalMatches,
			High:         f.High,
			Medium:       f.Medium,
			Low:          f.Low,
			Files:        f.Files,
		})
	}
	return sum
}

func formatList(items []string) string {
	return strings.Join(items, "|")
}
