package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/idlab-discover/FlagScan-cli/internal/ui"
	"github.com/idlab-discover/FlagScan-cli/pkg/flagscan/languages"
)

// languagesCmd lists the supported languages
var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List the languages the scanner recognises",
	Long:  "List every language profile with the file extensions it claims and whether SDK imports are detected for it. Files in other languages are skipped.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		profiles := languages.Default().Profiles()
		rows := make([]ui.LanguageRow, 0, len(profiles))
		for _, p := range profiles {
			rows = append(rows, ui.LanguageRow{
				ID:         p.ID(),
				Extensions: p.Extensions(),
				SDKImports: len(p.SDKImportPatterns()),
			})
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), ui.RenderLanguages(rows))
		return err
	},
}
