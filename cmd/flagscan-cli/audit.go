package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idlab-discover/FlagScan-cli/internal/apperr"
	"github.com/idlab-discover/FlagScan-cli/internal/flagkey"
	"github.com/idlab-discover/FlagScan-cli/internal/repoinfo"
	"github.com/idlab-discover/FlagScan-cli/internal/ui"
	"github.com/idlab-discover/FlagScan-cli/pkg/flagscan/audit"
	"github.com/idlab-discover/FlagScan-cli/pkg/flagscan/resultio"
)

var (
	auditPath         string
	auditFlagsFile    string
	auditFlagKeys     []string
	auditProvider     string
	auditOutput       string
	auditOutputFormat string
	auditExclude      []string
	auditIgnoreDirs   []string
	auditMaxFileSize  int64
	auditWorkers      int
	auditInteractive  bool
	auditPlainSummary bool
	auditLogLevel     string
)

// auditCmd represents the audit command
var auditCmd = &cobra.Command{
	Use:   "audit [path]",
	Short: "Scan for a batch of flag keys and sort them by cleanup effort",
	Long:  "Scan a repository once per flag key and report which flags are unreferenced, which are removable automatically, and which need review. Keys come from --flag or from a --flags list file (YAML, JSON or text).",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAudit,
}

func runAudit(cmd *cobra.Command, args []string) error {
	level, err := resolveLogLevel("audit")
	if err != nil {
		return err
	}
	plain := viper.GetBool("audit.plain-summary")
	quiet := level == "quiet" || plain

	inputPath := viper.GetString("audit.input")
	if len(args) == 1 {
		inputPath = args[0]
	}
	if inputPath == "" {
		inputPath = "."
	}

	keys, err := auditKeys(viper.GetStringSlice("audit.flag"), viper.GetString("audit.flags"))
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return apperr.User("no flag keys given: pass --flag or --flags <file>")
	}

	interactiveMode := viper.GetBool("audit.interactive")
	if interactiveMode {
		if keys, err = ui.RunFlagSelector(keys); err != nil {
			return err
		}
		if len(keys) == 0 {
			return apperr.ErrCancelled
		}
	}

	outputPath := viper.GetString("audit.output")
	var fmtChosen string
	if outputPath != "" {
		if fmtChosen, err = resolveOutputFormat(outputPath, viper.GetString("audit.format")); err != nil {
			return err
		}
		if interactiveMode && fileExists(outputPath) {
			if err := ui.ConfirmOverwrite(outputPath); err != nil {
				return err
			}
		}
	}

	absTarget, err := filepath.Abs(inputPath)
	if err != nil {
		return err
	}
	info := repoinfo.Resolve(absTarget)
	opts, err := scanOptions("audit", info)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	out := cmd.OutOrStdout()
	var tracker *ui.ProgressTracker
	if !quiet && isTerminal() {
		tracker = ui.NewProgressTracker(fmt.Sprintf("Auditing %d flag(s) in %s", len(keys), info.Label()), keys)
		tracker.SetOutput(out)
		tracker.Start()
	}

	onProgress := func(ev audit.Event) {
		if tracker == nil {
			return
		}
		switch ev.Kind {
		case audit.EventStart:
			tracker.UpdateStep(ev.Index, ui.StatusRunning, "")
			tracker.SetMessage(fmt.Sprintf("%d/%d", ev.Index, ev.Total))
		case audit.EventDone:
			tracker.UpdateStep(ev.Index, ui.StatusComplete,
				fmt.Sprintf("%s · %d match(es)", ev.Summary.Status, ev.Summary.TotalMatches))
		}
	}

	rep, err := audit.Run(ctx, absTarget, keys, opts, onProgress)
	if tracker != nil {
		tracker.Complete(err)
	}
	if err != nil {
		return scanError(err)
	}

	if outputPath != "" {
		if err := resultio.WriteAudit(rep, outputPath, fmtChosen); err != nil {
			return err
		}
	}

	auditUI := ui.NewAuditUI(out, level == "quiet")
	sum := toAuditSummary(rep)
	if plain {
		auditUI.PrintSimpleReport(sum)
		return nil
	}
	auditUI.PrintReport(sum)
	if outputPath != "" && !quiet {
		fmt.Fprintln(out, ui.FormatStatus("success", "Report written to "+ui.Highlight.Render(outputPath)+ui.Dim.Render(" ("+fmtChosen+")")))
	}
	return nil
}

// auditKeys merges --flag values and the --flags list, keeping first-seen order.
func auditKeys(flagValues []string, listPath string) ([]string, error) {
	var keys []string
	seen := map[string]struct{}{}
	add := func(k string) {
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}

	for _, k := range cleanList(flagValues) {
		if err := flagkey.Validate(k); err != nil {
			return nil, err
		}
		add(k)
	}
	if listPath = strings.TrimSpace(listPath); listPath != "" {
		fromFile, err := flagkey.LoadList(listPath)
		if err != nil {
			return nil, err
		}
		for _, k := range fromFile {
			add(k)
		}
	}
	return keys, nil
}

func init() {
	auditCmd.Flags().StringVarP(&auditPath, "input", "i", "", "Path to scan (defaults to current directory)")
	auditCmd.Flags().StringVar(&auditFlagsFile, "flags", "", "File listing flag keys (.yaml, .yml, .json or .txt)")
	auditCmd.Flags().StringSliceVarP(&auditFlagKeys, "flag", "k", nil, "Flag key to audit (repeatable)")
	auditCmd.Flags().StringVar(&auditProvider, "provider", "", "Flag provider recorded on the results (default launchdarkly)")
	auditCmd.Flags().StringVarP(&auditOutput, "output", "o", "", "Write the report to this file")
	auditCmd.Flags().StringVarP(&auditOutputFormat, "format", "f", "", "Output format: "+formatList(resultio.Formats))
	auditCmd.Flags().StringSliceVar(&auditExclude, "exclude", nil, "Glob patterns of paths to skip (repeatable, supports **)")
	auditCmd.Flags().StringSliceVar(&auditIgnoreDirs, "ignore-dir", nil, "Extra directory names to skip, on top of the defaults")
	auditCmd.Flags().Int64Var(&auditMaxFileSize, "max-file-size", 0, "Skip files larger than this many KiB (default 1024)")
	auditCmd.Flags().IntVar(&auditWorkers, "workers", 0, "Files scanned in parallel (default number of CPUs)")
	auditCmd.Flags().BoolVar(&auditInteractive, "interactive", false, "Pick the flags to audit from a list")
	auditCmd.Flags().BoolVar(&auditPlainSummary, "plain-summary", false, "Print one unstyled line per flag")
	auditCmd.Flags().StringVar(&auditLogLevel, "log-level", "", "Log level: quiet|standard|debug")

	// Bind all flags to viper for config file support
	for _, name := range []string{
		"input", "flags", "flag", "provider", "output", "format", "exclude", "ignore-dir",
		"max-file-size", "workers", "interactive", "plain-summary", "log-level",
	} {
		viper.BindPFlag("audit."+name, auditCmd.Flags().Lookup(name))
	}
}
