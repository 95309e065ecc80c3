package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idlab-discover/FlagScan-cli/internal/apperr"
	"github.com/idlab-discover/FlagScan-cli/internal/ui"
	"github.com/idlab-discover/FlagScan-cli/pkg/flagscan/resultio"
)

var (
	viewInput        string
	viewFormat       string
	viewLimit        int
	viewPlainSummary bool
)

// viewCmd renders a saved scan result
var viewCmd = &cobra.Command{
	Use:   "view [file]",
	Short: "Show a scan result saved with scan --output",
	Long:  "Render a JSON or YAML scan result written by 'scan --output'. SARIF files are meant for code-scanning tools and cannot be viewed.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runView,
}

func runView(cmd *cobra.Command, args []string) error {
	input := viper.GetString("view.input")
	if len(args) == 1 {
		input = args[0]
	}
	if input == "" {
		return apperr.User("a result file is required: pass --input or a path")
	}

	res, err := resultio.Read(input, viper.GetString("view.format"))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	sum := toScanSummary(res, "")
	if viper.GetBool("view.plain-summary") {
		_, err := fmt.Fprintln(out, ui.PlainSummary(sum))
		return err
	}

	viewUI := ui.NewScanUI(out, false)
	if res.TotalMatches == 0 {
		viewUI.PrintNoMatches(res.FlagKey)
		return nil
	}
	viewUI.PrintSummary(sum, "")
	viewUI.PrintMatches(sum, viper.GetInt("view.limit"))
	return nil
}

func init() {
	viewCmd.Flags().StringVarP(&viewInput, "input", "i", "", "Result file to show")
	viewCmd.Flags().StringVarP(&viewFormat, "format", "f", "", "Input format: auto|json|yaml")
	viewCmd.Flags().IntVar(&viewLimit, "limit", 0, "Maximum matches to print; 0 prints all")
	viewCmd.Flags().BoolVar(&viewPlainSummary, "plain-summary", false, "Print a single unstyled summary line")

	viper.BindPFlag("view.input", viewCmd.Flags().Lookup("input"))
	viper.BindPFlag("view.format", viewCmd.Flags().Lookup("format"))
	viper.BindPFlag("view.limit", viewCmd.Flags().Lookup("limit"))
	viper.BindPFlag("view.plain-summary", viewCmd.Flags().Lookup("plain-summary"))
}
