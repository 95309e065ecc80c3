package cmd

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idlab-discover/FlagScan-cli/internal/apperr"
	"github.com/idlab-discover/FlagScan-cli/internal/flagkey"
	"github.com/idlab-discover/FlagScan-cli/internal/repoinfo"
	"github.com/idlab-discover/FlagScan-cli/internal/ui"
	"github.com/idlab-discover/FlagScan-cli/pkg/flagscan/resultio"
	"github.com/idlab-discover/FlagScan-cli/pkg/flagscan/scanner"
)

// knownProviders are offered by the interactive prompt. The provider is
// only recorded on the result.
var knownProviders = []string{scanner.DefaultProvider, "unleash", "flagsmith", "split", "configcat"}

var (
	scanPath         string
	scanFlagKey      string
	scanProvider     string
	scanOutput       string
	scanOutputFormat string
	scanExclude      []string
	scanIgnoreDirs   []string
	scanMaxFileSize  int64
	scanWorkers      int
	scanInteractive  bool
	scanLimit        int
	scanPlainSummary bool

	// Logging is controlled via scanLogLevel.
	scanLogLevel string
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Find every reference to one feature flag key",
	Long:  "Scan a directory or repository for references to a feature flag key. Matches are classified and scored by confidence; use --output to save the result as JSON, YAML or SARIF.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	level, err := resolveLogLevel("scan")
	if err != nil {
		return err
	}
	plain := viper.GetBool("scan.plain-summary")
	quiet := level == "quiet" || plain

	inputPath := viper.GetString("scan.input")
	if len(args) == 1 {
		inputPath = args[0]
	}
	if inputPath == "" {
		inputPath = "."
	}

	key := strings.TrimSpace(viper.GetString("scan.flag"))
	provider := strings.TrimSpace(viper.GetString("scan.provider"))
	interactiveMode := viper.GetBool("scan.interactive")

	if interactiveMode {
		prompt := &ui.ScanPrompt{
			FlagKey:     key,
			Provider:    provider,
			Providers:   knownProviders,
			ValidateKey: flagkey.Validate,
		}
		if err := ui.PromptScanInputs(prompt); err != nil {
			return err
		}
		key, provider = prompt.FlagKey, prompt.Provider
		viper.Set("scan.provider", provider)
	}

	if key == "" {
		return apperr.User("a flag key is required: pass --flag or use --interactive")
	}
	if err := flagkey.Validate(key); err != nil {
		return err
	}

	// Fail fast on format/extension mismatch
	outputPath := viper.GetString("scan.output")
	outputFormat := viper.GetString("scan.format")
	var fmtChosen string
	if outputPath != "" {
		if fmtChosen, err = resolveOutputFormat(outputPath, outputFormat); err != nil {
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

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	out := cmd.OutOrStdout()
	scanUI := ui.NewScanUI(out, quiet)
	scanUI.StartWorkflow(isTerminal())

	// Step 1: Resolve repository
	scanUI.StartResolving(absTarget)
	info := repoinfo.Resolve(absTarget)
	scanUI.CompleteResolving(info.Label(), info.Branch)

	opts, err := scanOptions("scan", info)
	if err != nil {
		scanUI.FailScanning(err)
		scanUI.FinishWorkflow()
		return err
	}

	// Step 2: Scan
	scanUI.StartScanning(key)
	res, err := scanner.Scan(ctx, absTarget, key, opts)
	if err != nil {
		scanUI.FailScanning(err)
		scanUI.FinishWorkflow()
		return scanError(err)
	}
	sum := toScanSummary(res, info.Branch)
	scanUI.CompleteScanning(sum)

	// Step 3: Write output
	if outputPath == "" {
		scanUI.SkipWriting("no --output given")
	} else {
		scanUI.StartWriting(outputPath)
		if err := resultio.Write(res, outputPath, fmtChosen); err != nil {
			scanUI.FailWriting(err)
			scanUI.FinishWorkflow()
			return err
		}
		scanUI.CompleteWriting(outputPath, fmtChosen)
	}
	scanUI.FinishWorkflow()

	if plain {
		_, err := out.Write([]byte(ui.PlainSummary(sum) + "\n"))
		return err
	}
	if res.TotalMatches == 0 {
		scanUI.PrintNoMatches(key)
		return nil
	}
	scanUI.PrintSummary(sum, outputPath)
	scanUI.PrintMatches(sum, viper.GetInt("scan.limit"))
	return nil
}

// scanError turns root problems into user errors; they come from a bad
// --input rather than a failure of the scan itself.
func scanError(err error) error {
	for _, sentinel := range []error{scanner.ErrRootNotFound, scanner.ErrRootNotDir, scanner.ErrRootUnreadable, scanner.ErrEmptyFlagKey} {
		if errors.Is(err, sentinel) {
			return apperr.User(err.Error())
		}
	}
	return err
}

func init() {
	scanCmd.Flags().StringVarP(&scanPath, "input", "i", "", "Path to scan (defaults to current directory)")
	scanCmd.Flags().StringVarP(&scanFlagKey, "flag", "k", "", "Feature flag key to look for")
	scanCmd.Flags().StringVar(&scanProvider, "provider", "", "Flag provider recorded on the result (default launchdarkly)")
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "", "Write the result to this file")
	scanCmd.Flags().StringVarP(&scanOutputFormat, "format", "f", "", "Output format: "+formatList(resultio.Formats))
	scanCmd.Flags().StringSliceVar(&scanExclude, "exclude", nil, "Glob patterns of paths to skip (repeatable, supports **)")
	scanCmd.Flags().StringSliceVar(&scanIgnoreDirs, "ignore-dir", nil, "Extra directory names to skip, on top of the defaults")
	scanCmd.Flags().Int64Var(&scanMaxFileSize, "max-file-size", 0, "Skip files larger than this many KiB (default 1024)")
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 0, "Files scanned in parallel (default number of CPUs)")
	scanCmd.Flags().BoolVar(&scanInteractive, "interactive", false, "Prompt for missing inputs")
	scanCmd.Flags().IntVar(&scanLimit, "limit", 50, "Maximum matches to print; 0 prints all")
	scanCmd.Flags().BoolVar(&scanPlainSummary, "plain-summary", false, "Print a single unstyled summary line")
	scanCmd.Flags().StringVar(&scanLogLevel, "log-level", "", "Log level: quiet|standard|debug")

	// Bind all flags to viper for config file support
	viper.BindPFlag("scan.input", scanCmd.Flags().Lookup("input"))
	viper.BindPFlag("scan.flag", scanCmd.Flags().Lookup("flag"))
	viper.BindPFlag("scan.provider", scanCmd.Flags().Lookup("provider"))
	viper.BindPFlag("scan.output", scanCmd.Flags().Lookup("output"))
	viper.BindPFlag("scan.format", scanCmd.Flags().Lookup("format"))
	viper.BindPFlag("scan.exclude", scanCmd.Flags().Lookup("exclude"))
	viper.BindPFlag("scan.ignore-dir", scanCmd.Flags().Lookup("ignore-dir"))
	viper.BindPFlag("scan.max-file-size", scanCmd.Flags().Lookup("max-file-size"))
	viper.BindPFlag("scan.workers", scanCmd.Flags().Lookup("workers"))
	viper.BindPFlag("scan.interactive", scanCmd.Flags().Lookup("interactive"))
	viper.BindPFlag("scan.limit", scanCmd.Flags().Lookup("limit"))
	viper.BindPFlag("scan.plain-summary", scanCmd.Flags().Lookup("plain-summary"))
	viper.BindPFlag("scan.log-level", scanCmd.Flags().Lookup("log-level"))
}
