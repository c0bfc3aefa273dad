// Package cmd implements the headlines command-line interface.
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jonesrussell/north-cloud/headlines/cmd/common"
	"github.com/jonesrussell/north-cloud/headlines/cmd/scan"
	"github.com/jonesrussell/north-cloud/headlines/cmd/serve"
	cmdsources "github.com/jonesrussell/north-cloud/headlines/cmd/sources"
)

var (
	cfgFile string
	debug   bool

	rootCmd = &cobra.Command{
		Use:   "headlines",
		Short: "Keyword-filtered headline links from news front pages",
		Long: `headlines fetches configured news pages, keeps the links whose title or
URL mentions a keyword, and serves them from a per-source cache.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cobra.OnInitialize(func() {
		if err := initConfig(); err != nil {
			cobra.CheckErr(err)
		}
	})
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $CONFIG_PATH or ./config.yml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", common.ServiceName, common.Version)
		},
	})

	rootCmd.AddCommand(serve.Command())
	rootCmd.AddCommand(scan.Command())
	rootCmd.AddCommand(cmdsources.NewSourcesCommand())
}

// initConfig binds flags and their environment fallbacks. The YAML document
// itself is read by the config package.
func initConfig() error {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config")); err != nil {
		return fmt.Errorf("failed to bind config flag: %w", err)
	}
	if err := viper.BindPFlag("app.debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		return fmt.Errorf("failed to bind debug flag: %w", err)
	}
	if err := viper.BindEnv("config", "CONFIG_PATH"); err != nil {
		return fmt.Errorf("failed to bind CONFIG_PATH: %w", err)
	}
	if err := viper.BindEnv("app.debug", "APP_DEBUG"); err != nil {
		return fmt.Errorf("failed to bind APP_DEBUG: %w", err)
	}
	return nil
}
