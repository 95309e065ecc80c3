package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idlab-discover/FlagScan-cli/internal/ui"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "flagscan-cli",
	Short: "Find every reference to a feature flag before you remove it",
	Long:  longDescription,

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initUIAndBanner(cmd)
	},

	// When invoked without a subcommand, show help (with banner) instead of
	// printing a plain usage output.
	RunE: func(cmd *cobra.Command, args []string) error {
		initUIAndBanner(cmd)
		return cmd.Help()
	},
}

var cfgFile string
var noColor bool
var version string

// SetVersion sets the version for the CLI
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// GetRootCmd returns the root command for use with fang
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.flagscan-cli.yaml or ./config/defaults.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable raw ANSI colors in debug logs")

	defaultHelp := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		initUIAndBanner(cmd)
		defaultHelp(cmd, args)
	})

	rootCmd.AddCommand(scanCmd, auditCmd, viewCmd, languagesCmd)
}

func initConfig() {
	// Environment variables apply with or without a config file, e.g.
	// scan.provider -> FLAGSCAN_SCAN_PROVIDER.
	viper.SetEnvPrefix("FLAGSCAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	notFound := &viper.ConfigFileNotFoundError{}

	var err error
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		err = viper.ReadInConfig()
	} else {
		home, herr := os.UserHomeDir()
		cobra.CheckErr(herr)

		viper.SetConfigType("yaml")
		viper.AddConfigPath(home)
		viper.AddConfigPath("./config")

		// Try .flagscan-cli first, then the repository defaults.
		viper.SetConfigName(".flagscan-cli")
		err = viper.ReadInConfig()
		if err != nil && errors.As(err, notFound) {
			viper.SetConfigName("defaults")
			err = viper.ReadInConfig()
		}
	}

	switch {
	case err != nil && !errors.As(err, notFound):
		cobra.CheckErr(err)
	case err != nil:
		// The config file is optional.
	default:
		configMsg := ui.Dim.Render("Using config file: ") + ui.Secondary.Render(viper.ConfigFileUsed())
		fmt.Fprintln(os.Stderr, configMsg)
	}
}

const longDescription = "Scan a repository for every reference to a feature flag key. Each match is classified (SDK call, config, test, string literal) and scored by how safe it is to remove automatically."

func initUIAndBanner(cmd *cobra.Command) {
	if cmd == nil {
		return
	}
	ui.Init(noColor)
	cmd.Root().Long = ui.RenderGradientBanner(ui.BannerASCII) + "\n" + longDescription
}
